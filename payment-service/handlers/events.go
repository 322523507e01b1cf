package handlers

import (
	"context"
	"log/slog"

	"github.com/LuanFernandes23/SagaPattern/payment-service/application"
	"github.com/LuanFernandes23/SagaPattern/payment-service/domain"
	"github.com/LuanFernandes23/SagaPattern/shared/messaging"
	"github.com/pkg/errors"
)

// PaymentEventHandlers consumes the saga events addressed to the payment
// service: ProcessPayment captures the order total, PaymentRefunded
// compensates a captured payment.
type PaymentEventHandlers struct {
	processPayment *application.ProcessPayment
	refundPayment  *application.RefundPayment
	logger         *slog.Logger
}

// NewPaymentEventHandlers creates new payment event handlers
func NewPaymentEventHandlers(
	processPayment *application.ProcessPayment,
	refundPayment *application.RefundPayment,
	logger *slog.Logger,
) *PaymentEventHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentEventHandlers{
		processPayment: processPayment,
		refundPayment:  refundPayment,
		logger:         logger,
	}
}

// HandlerID returns the unique identifier for this event handler
func (h *PaymentEventHandlers) HandlerID() string {
	return "payment-service-event-handler"
}

// Handle implements the messaging.Handler interface
func (h *PaymentEventHandlers) Handle(ctx context.Context, msg *messaging.Message) error {
	switch msg.Type {
	case messaging.TypeProcessPayment:
		return h.handleProcessPayment(ctx, msg)
	case messaging.TypePaymentRefunded:
		return h.handlePaymentRefunded(ctx, msg)
	default:
		return nil
	}
}

func (h *PaymentEventHandlers) handleProcessPayment(ctx context.Context, msg *messaging.Message) error {
	var event messaging.ProcessPayment
	if err := msg.UnmarshalPayload(&event); err != nil {
		return err
	}

	h.logger.Info("processing payment", "order_id", event.OrderID, "method", event.Method)

	return h.processPayment.Execute(ctx, &application.ProcessPaymentCommand{
		OrderID: event.OrderID,
		Method:  event.Method,
	})
}

func (h *PaymentEventHandlers) handlePaymentRefunded(ctx context.Context, msg *messaging.Message) error {
	var event messaging.PaymentRefunded
	if err := msg.UnmarshalPayload(&event); err != nil {
		return err
	}

	reason, _ := msg.Header(messaging.HeaderReason)

	h.logger.Info("refunding payment", "order_id", event.OrderID, "reason", reason)

	err := h.refundPayment.Execute(ctx, &application.RefundPaymentCommand{
		OrderID: event.OrderID.String(),
		Reason:  reason,
	})
	if errors.Is(err, domain.ErrInvalidState) {
		// Redelivery of an already applied refund; nothing left to do.
		h.logger.Warn("ignoring refund in invalid state", "order_id", event.OrderID, "error", err)
		return nil
	}
	return err
}
