package infrastructure

import (
	"context"

	"github.com/LuanFernandes23/SagaPattern/payment-service/domain"
)

// StaticGateway is a deterministic payment gateway. It approves every capture
// up to the configured limit and declines anything above it, which makes
// saga outcomes reproducible in local runs and demos.
type StaticGateway struct {
	approveLimit int64
}

// NewStaticGateway creates a gateway that declines captures above limit.
// A non-positive limit approves everything.
func NewStaticGateway(approveLimit int64) *StaticGateway {
	return &StaticGateway{approveLimit: approveLimit}
}

// Authorize implements the Gateway interface
func (g *StaticGateway) Authorize(_ context.Context, payment *domain.Payment) (bool, string, error) {
	if g.approveLimit > 0 && payment.Amount.Amount > g.approveLimit {
		return false, "insufficient funds", nil
	}
	return true, "", nil
}
