package infrastructure

import (
	"context"
	"strings"

	"github.com/LuanFernandes23/SagaPattern/shipment-service/domain"
)

// StaticCarrier is a deterministic carrier. Dispatch fails for addresses
// containing any of the configured markers and succeeds otherwise, which
// makes compensation flows reproducible in local runs and demos.
type StaticCarrier struct {
	unreachable []string
}

// NewStaticCarrier creates a carrier that fails dispatch for addresses
// matching any of the given markers
func NewStaticCarrier(unreachable []string) *StaticCarrier {
	return &StaticCarrier{unreachable: unreachable}
}

// Dispatch implements the Carrier interface
func (c *StaticCarrier) Dispatch(_ context.Context, shipment *domain.Shipment) (bool, string, error) {
	for _, marker := range c.unreachable {
		if marker != "" && strings.Contains(shipment.DeliveryAddress, marker) {
			return false, "address unreachable", nil
		}
	}
	return true, "", nil
}
