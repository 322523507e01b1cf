package application

import (
	"context"

	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/LuanFernandes23/SagaPattern/shipment-service/domain"
	"github.com/pkg/errors"
)

// GetShipmentQuery represents the query to get a shipment
type GetShipmentQuery struct {
	ShipmentID string `json:"shipment_id"`
}

// GetShipment use case
type GetShipment struct {
	shipmentRepository domain.ShipmentRepository
}

// NewGetShipment creates a new GetShipment use case
func NewGetShipment(shipmentRepository domain.ShipmentRepository) *GetShipment {
	return &GetShipment{shipmentRepository: shipmentRepository}
}

// Execute returns the shipment for the given id
func (uc *GetShipment) Execute(ctx context.Context, query *GetShipmentQuery) (*domain.Shipment, error) {
	shipmentID, err := models.NewID(query.ShipmentID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid shipment ID")
	}

	shipment, err := uc.shipmentRepository.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find shipment")
	}

	return shipment, nil
}
