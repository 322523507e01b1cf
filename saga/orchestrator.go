package saga

import (
	"context"
	"log/slog"

	orderdomain "github.com/LuanFernandes23/SagaPattern/order-service/domain"
	"github.com/LuanFernandes23/SagaPattern/shared/messaging"
	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/LuanFernandes23/SagaPattern/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// OrderStore is the only synchronous read on the orchestrator's critical
// path: resolving an order's delivery address when payment is approved.
type OrderStore interface {
	FindByID(ctx context.Context, id models.ID) (*orderdomain.Order, error)
}

// Orchestrator drives the order saga. It keeps no state of its own: the next
// action is derived entirely from the incoming event type and its headers, so
// a restarted process resumes any in-flight saga from the next delivery.
type Orchestrator struct {
	orders    OrderStore
	publisher messaging.Publisher
	logger    *slog.Logger
}

// NewOrchestrator creates a saga orchestrator
func NewOrchestrator(orders OrderStore, publisher messaging.Publisher, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		orders:    orders,
		publisher: publisher,
		logger:    logger,
	}
}

// HandlerID implements messaging.Handler
func (o *Orchestrator) HandlerID() string {
	return "saga-orchestrator"
}

// Handle reacts to one saga event. Unrecognized types are discarded (every
// queue sees every message). Errors propagate to the subscriber, which nacks
// only this message; the delivery loop keeps running.
func (o *Orchestrator) Handle(ctx context.Context, msg *messaging.Message) error {
	switch msg.Type {
	case messaging.TypeOrderCreated,
		messaging.TypePaymentApproved,
		messaging.TypePaymentRefused,
		messaging.TypeShipmentProcessed,
		messaging.TypeShipmentFailed:
	default:
		return nil
	}

	orderID, err := msg.OrderID()
	if err != nil {
		return errors.Wrapf(err, "saga message %s (%s)", msg.ID, msg.Type)
	}

	telemetry.RecordCounter(ctx, "saga_transitions_total", "Saga transitions by incoming event type", 1,
		attribute.String("event_type", msg.Type))

	switch msg.Type {
	case messaging.TypeOrderCreated:
		return o.beginPayment(ctx, msg)
	case messaging.TypePaymentApproved:
		return o.beginShipment(ctx, msg, orderID)
	case messaging.TypePaymentRefused:
		return o.abortOnRefusedPayment(ctx, msg)
	case messaging.TypeShipmentProcessed:
		return o.complete(msg, orderID)
	case messaging.TypeShipmentFailed:
		return o.compensate(ctx, msg)
	}
	return nil
}

// beginPayment starts the saga: OrderCreated -> ProcessPayment
func (o *Orchestrator) beginPayment(ctx context.Context, msg *messaging.Message) error {
	var event messaging.OrderCreated
	if err := msg.UnmarshalPayload(&event); err != nil {
		return err
	}

	o.logger.Info("starting saga", "order_id", event.OrderID)

	cmd, err := messaging.NewMessage(messaging.TypeProcessPayment, messaging.ProcessPayment{
		OrderID: event.OrderID,
		Amount:  event.Total,
		Method:  event.PaymentMethod,
	})
	if err != nil {
		return err
	}
	cmd.WithOrderID(event.OrderID)

	return errors.Wrap(o.publisher.Publish(ctx, cmd), "failed to publish ProcessPayment")
}

// beginShipment continues the saga: PaymentApproved -> ProcessShipment. The
// order's delivery address is read from the order store; if the order cannot
// be found the error surfaces and no shipment command is emitted.
func (o *Orchestrator) beginShipment(ctx context.Context, msg *messaging.Message, orderID models.ID) error {
	var event messaging.PaymentApproved
	if err := msg.UnmarshalPayload(&event); err != nil {
		return err
	}

	order, err := o.orders.FindByID(ctx, orderID)
	if err != nil {
		return errors.Wrapf(err, "cannot begin shipment for order %s", orderID)
	}

	o.logger.Info("payment approved, starting shipment", "order_id", orderID)

	cmd, err := messaging.NewMessage(messaging.TypeProcessShipment, messaging.ProcessShipment{
		OrderID:         orderID,
		DeliveryAddress: order.DeliveryAddress,
	})
	if err != nil {
		return err
	}
	cmd.WithOrderID(orderID)

	return errors.Wrap(o.publisher.Publish(ctx, cmd), "failed to publish ProcessShipment")
}

// abortOnRefusedPayment aborts the saga: PaymentRefused -> OrderCancelled
func (o *Orchestrator) abortOnRefusedPayment(ctx context.Context, msg *messaging.Message) error {
	var event messaging.PaymentRefused
	if err := msg.UnmarshalPayload(&event); err != nil {
		return err
	}

	o.logger.Info("payment refused, cancelling order", "order_id", event.OrderID, "reason", event.Reason)

	reason := "payment refused: " + event.Reason
	cancel, err := messaging.NewMessage(messaging.TypeOrderCancelled, messaging.OrderCancelled{
		OrderID: event.OrderID,
		Reason:  reason,
	})
	if err != nil {
		return err
	}
	cancel.WithOrderID(event.OrderID).WithHeader(messaging.HeaderReason, reason)

	return errors.Wrap(o.publisher.Publish(ctx, cancel), "failed to publish OrderCancelled")
}

// complete finishes the saga: ShipmentProcessed is terminal, nothing is emitted
func (o *Orchestrator) complete(msg *messaging.Message, orderID models.ID) error {
	var event messaging.ShipmentProcessed
	if err := msg.UnmarshalPayload(&event); err != nil {
		return err
	}

	o.logger.Info("saga completed", "order_id", orderID, "shipment_id", event.ShipmentID)
	return nil
}

// compensate undoes the saga after a failed shipment: refund the payment and
// cancel the order. The two publishes are independent compensations; receivers
// must not rely on observing the refund before the cancellation.
func (o *Orchestrator) compensate(ctx context.Context, msg *messaging.Message) error {
	var event messaging.ShipmentFailed
	if err := msg.UnmarshalPayload(&event); err != nil {
		return err
	}

	o.logger.Info("shipment failed, compensating", "order_id", event.OrderID, "reason", event.Reason)

	refund, err := messaging.NewMessage(messaging.TypePaymentRefunded, messaging.PaymentRefunded{
		OrderID: event.OrderID,
	})
	if err != nil {
		return err
	}
	refund.WithOrderID(event.OrderID).WithHeader(messaging.HeaderReason, event.Reason)

	if err := o.publisher.Publish(ctx, refund); err != nil {
		return errors.Wrap(err, "failed to publish PaymentRefunded")
	}

	reason := "shipment failed: " + event.Reason
	cancel, err := messaging.NewMessage(messaging.TypeOrderCancelled, messaging.OrderCancelled{
		OrderID: event.OrderID,
		Reason:  reason,
	})
	if err != nil {
		return err
	}
	cancel.WithOrderID(event.OrderID).WithHeader(messaging.HeaderReason, reason)

	return errors.Wrap(o.publisher.Publish(ctx, cancel), "failed to publish OrderCancelled")
}
