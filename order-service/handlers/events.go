package handlers

import (
	"context"
	"log/slog"

	"github.com/LuanFernandes23/SagaPattern/order-service/application"
	"github.com/LuanFernandes23/SagaPattern/shared/messaging"
)

// OrderEventHandlers consumes the saga events addressed to the order service:
// OrderCancelled closes the order with the carried reason, ShipmentProcessed
// marks it delivered. Both use cases are idempotent, so redeliveries ack
// cleanly.
type OrderEventHandlers struct {
	cancelOrder  *application.CancelOrder
	deliverOrder *application.DeliverOrder
	logger       *slog.Logger
}

// NewOrderEventHandlers creates new order event handlers
func NewOrderEventHandlers(
	cancelOrder *application.CancelOrder,
	deliverOrder *application.DeliverOrder,
	logger *slog.Logger,
) *OrderEventHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderEventHandlers{
		cancelOrder:  cancelOrder,
		deliverOrder: deliverOrder,
		logger:       logger,
	}
}

// HandlerID returns the unique identifier for this event handler
func (h *OrderEventHandlers) HandlerID() string {
	return "order-service-event-handler"
}

// Handle implements the messaging.Handler interface
func (h *OrderEventHandlers) Handle(ctx context.Context, msg *messaging.Message) error {
	switch msg.Type {
	case messaging.TypeOrderCancelled:
		return h.handleOrderCancelled(ctx, msg)
	case messaging.TypeShipmentProcessed:
		return h.handleShipmentProcessed(ctx, msg)
	default:
		// Not addressed to this service.
		return nil
	}
}

func (h *OrderEventHandlers) handleOrderCancelled(ctx context.Context, msg *messaging.Message) error {
	var event messaging.OrderCancelled
	if err := msg.UnmarshalPayload(&event); err != nil {
		return err
	}

	h.logger.Info("cancelling order", "order_id", event.OrderID, "reason", event.Reason)

	return h.cancelOrder.Execute(ctx, &application.CancelOrderCommand{
		OrderID: event.OrderID.String(),
		Reason:  event.Reason,
	})
}

func (h *OrderEventHandlers) handleShipmentProcessed(ctx context.Context, msg *messaging.Message) error {
	var event messaging.ShipmentProcessed
	if err := msg.UnmarshalPayload(&event); err != nil {
		return err
	}

	h.logger.Info("shipment processed, delivering order", "order_id", event.OrderID)

	return h.deliverOrder.Execute(ctx, &application.DeliverOrderCommand{
		OrderID: event.OrderID.String(),
	})
}
