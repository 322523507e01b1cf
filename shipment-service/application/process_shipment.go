package application

import (
	"context"
	"log/slog"

	orderdomain "github.com/LuanFernandes23/SagaPattern/order-service/domain"
	"github.com/LuanFernandes23/SagaPattern/shared/messaging"
	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/LuanFernandes23/SagaPattern/shipment-service/domain"
	"github.com/pkg/errors"
)

// OrderStore resolves the order a shipment refers to
type OrderStore interface {
	FindByID(ctx context.Context, id models.ID) (*orderdomain.Order, error)
}

// ProcessShipmentCommand represents the ProcessShipment saga command
type ProcessShipmentCommand struct {
	OrderID         models.ID `json:"order_id"`
	DeliveryAddress string    `json:"delivery_address"`
}

// ProcessShipment use case. Dispatches the order through the carrier and
// publishes exactly one outcome event, ShipmentProcessed or ShipmentFailed.
// A command for an unknown order fails the shipment rather than crashes.
//
// Redelivery safe: if a shipment already exists for the order, the stored
// outcome is republished instead of dispatching twice.
type ProcessShipment struct {
	shipmentRepository domain.ShipmentRepository
	orders             OrderStore
	carrier            domain.Carrier
	publisher          messaging.Publisher
	logger             *slog.Logger
}

// NewProcessShipment creates a new ProcessShipment use case
func NewProcessShipment(
	shipmentRepository domain.ShipmentRepository,
	orders OrderStore,
	carrier domain.Carrier,
	publisher messaging.Publisher,
	logger *slog.Logger,
) *ProcessShipment {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessShipment{
		shipmentRepository: shipmentRepository,
		orders:             orders,
		carrier:            carrier,
		publisher:          publisher,
		logger:             logger,
	}
}

// Execute processes one dispatch attempt
func (uc *ProcessShipment) Execute(ctx context.Context, cmd *ProcessShipmentCommand) error {
	if cmd.OrderID.IsEmpty() {
		return errors.New("order ID is required")
	}

	shipment, err := uc.shipmentRepository.FindByOrderID(ctx, cmd.OrderID)
	if err != nil && !errors.Is(err, domain.ErrShipmentNotFound) {
		return errors.Wrap(err, "failed to look up shipment")
	}
	if shipment != nil && shipment.Status != domain.ShipmentStatusPending {
		uc.logger.Info("shipment already processed, republishing outcome",
			"order_id", cmd.OrderID, "status", shipment.Status)
		return uc.publishOutcome(ctx, shipment)
	}

	if shipment == nil {
		if _, err := uc.orders.FindByID(ctx, cmd.OrderID); err != nil {
			if errors.Is(err, orderdomain.ErrOrderNotFound) {
				uc.logger.Warn("failing shipment for unknown order", "order_id", cmd.OrderID)
				return uc.fail(ctx, cmd.OrderID, "order not found")
			}
			return errors.Wrap(err, "failed to load order")
		}

		shipment, err = domain.CreateShipment(cmd.OrderID, cmd.DeliveryAddress)
		if err != nil {
			return errors.Wrap(err, "failed to create shipment")
		}

		if err := uc.shipmentRepository.Add(ctx, shipment); err != nil {
			return errors.Wrap(err, "failed to save shipment")
		}
	}

	delivered, reason, err := uc.carrier.Dispatch(ctx, shipment)
	if err != nil {
		return errors.Wrap(err, "carrier dispatch failed")
	}

	if delivered {
		if err := shipment.Deliver(); err != nil {
			return err
		}
	} else {
		if err := shipment.Cancel(reason); err != nil {
			return err
		}
	}

	if err := uc.shipmentRepository.Update(ctx, shipment); err != nil {
		return errors.Wrap(err, "failed to update shipment")
	}

	return uc.publishOutcome(ctx, shipment)
}

func (uc *ProcessShipment) publishOutcome(ctx context.Context, shipment *domain.Shipment) error {
	switch shipment.Status {
	case domain.ShipmentStatusDelivered:
		outcome, err := messaging.NewMessage(messaging.TypeShipmentProcessed, messaging.ShipmentProcessed{
			ShipmentID: shipment.ID,
			OrderID:    shipment.OrderID,
		})
		if err != nil {
			return err
		}
		outcome.WithOrderID(shipment.OrderID)
		return errors.Wrap(uc.publisher.Publish(ctx, outcome), "failed to publish ShipmentProcessed")
	case domain.ShipmentStatusCancelled:
		return uc.fail(ctx, shipment.OrderID, shipment.FailureReason)
	default:
		return nil
	}
}

func (uc *ProcessShipment) fail(ctx context.Context, orderID models.ID, reason string) error {
	outcome, err := messaging.NewMessage(messaging.TypeShipmentFailed, messaging.ShipmentFailed{
		OrderID: orderID,
		Reason:  reason,
	})
	if err != nil {
		return err
	}
	outcome.WithOrderID(orderID).WithHeader(messaging.HeaderReason, reason)

	return errors.Wrap(uc.publisher.Publish(ctx, outcome), "failed to publish ShipmentFailed")
}
