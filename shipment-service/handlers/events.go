package handlers

import (
	"context"
	"log/slog"

	"github.com/LuanFernandes23/SagaPattern/shared/messaging"
	"github.com/LuanFernandes23/SagaPattern/shipment-service/application"
)

// ShipmentEventHandlers consumes the ProcessShipment saga command
type ShipmentEventHandlers struct {
	processShipment *application.ProcessShipment
	logger          *slog.Logger
}

// NewShipmentEventHandlers creates new shipment event handlers
func NewShipmentEventHandlers(processShipment *application.ProcessShipment, logger *slog.Logger) *ShipmentEventHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &ShipmentEventHandlers{
		processShipment: processShipment,
		logger:          logger,
	}
}

// HandlerID returns the unique identifier for this event handler
func (h *ShipmentEventHandlers) HandlerID() string {
	return "shipment-service-event-handler"
}

// Handle implements the messaging.Handler interface
func (h *ShipmentEventHandlers) Handle(ctx context.Context, msg *messaging.Message) error {
	if msg.Type != messaging.TypeProcessShipment {
		return nil
	}

	var event messaging.ProcessShipment
	if err := msg.UnmarshalPayload(&event); err != nil {
		return err
	}

	h.logger.Info("processing shipment", "order_id", event.OrderID)

	return h.processShipment.Execute(ctx, &application.ProcessShipmentCommand{
		OrderID:         event.OrderID,
		DeliveryAddress: event.DeliveryAddress,
	})
}
