package application

import (
	"context"

	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/LuanFernandes23/SagaPattern/shipment-service/domain"
	"github.com/pkg/errors"
)

// CancelShipmentCommand represents the command to cancel a shipment
type CancelShipmentCommand struct {
	ShipmentID string `json:"shipment_id"`
	Reason     string `json:"reason"`
}

// CancelShipment use case for the manual cancellation endpoint. Cancelling a
// delivered shipment surfaces domain.ErrInvalidState.
type CancelShipment struct {
	shipmentRepository domain.ShipmentRepository
}

// NewCancelShipment creates a new CancelShipment use case
func NewCancelShipment(shipmentRepository domain.ShipmentRepository) *CancelShipment {
	return &CancelShipment{shipmentRepository: shipmentRepository}
}

// Execute cancels the shipment
func (uc *CancelShipment) Execute(ctx context.Context, cmd *CancelShipmentCommand) error {
	shipmentID, err := models.NewID(cmd.ShipmentID)
	if err != nil {
		return errors.Wrap(err, "invalid shipment ID")
	}

	shipment, err := uc.shipmentRepository.FindByID(ctx, shipmentID)
	if err != nil {
		return errors.Wrap(err, "failed to find shipment")
	}

	alreadyCancelled := shipment.Status == domain.ShipmentStatusCancelled

	if err := shipment.Cancel(cmd.Reason); err != nil {
		return err
	}

	if alreadyCancelled {
		return nil
	}

	return errors.Wrap(uc.shipmentRepository.Update(ctx, shipment), "failed to update shipment")
}
