package saga_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	orderapp "github.com/LuanFernandes23/SagaPattern/order-service/application"
	orderdomain "github.com/LuanFernandes23/SagaPattern/order-service/domain"
	orderhandlers "github.com/LuanFernandes23/SagaPattern/order-service/handlers"
	orderinfra "github.com/LuanFernandes23/SagaPattern/order-service/infrastructure"
	paymentapp "github.com/LuanFernandes23/SagaPattern/payment-service/application"
	paymentdomain "github.com/LuanFernandes23/SagaPattern/payment-service/domain"
	paymenthandlers "github.com/LuanFernandes23/SagaPattern/payment-service/handlers"
	paymentinfra "github.com/LuanFernandes23/SagaPattern/payment-service/infrastructure"
	"github.com/LuanFernandes23/SagaPattern/saga"
	sharedinfra "github.com/LuanFernandes23/SagaPattern/shared/infrastructure"
	"github.com/LuanFernandes23/SagaPattern/shared/messaging"
	"github.com/LuanFernandes23/SagaPattern/shared/models"
	shipmentapp "github.com/LuanFernandes23/SagaPattern/shipment-service/application"
	shipmentdomain "github.com/LuanFernandes23/SagaPattern/shipment-service/domain"
	shipmenthandlers "github.com/LuanFernandes23/SagaPattern/shipment-service/handlers"
	shipmentinfra "github.com/LuanFernandes23/SagaPattern/shipment-service/infrastructure"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 3 * time.Second
	tick    = 10 * time.Millisecond
)

// sagaWorld runs all three services plus the orchestrator against the
// in-memory broker, each on its own queue, the way the deployed system runs
// them as separate processes.
type sagaWorld struct {
	orders      *orderinfra.MemoryOrderRepository
	payments    *paymentinfra.MemoryPaymentRepository
	shipments   *shipmentinfra.MemoryShipmentRepository
	deadLetters *sharedinfra.MemoryDeadLetterSink

	createOrder *orderapp.CreateOrder
}

func startSaga(t *testing.T, approveLimit int64, unreachable []string) *sagaWorld {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	broker := sharedinfra.NewMemoryBroker(logger)
	sink := sharedinfra.NewMemoryDeadLetterSink()

	orders := orderinfra.NewMemoryOrderRepository()
	payments := paymentinfra.NewMemoryPaymentRepository()
	shipments := shipmentinfra.NewMemoryShipmentRepository()

	cancelOrder := orderapp.NewCancelOrder(orders)
	deliverOrder := orderapp.NewDeliverOrder(orders)
	processPayment := paymentapp.NewProcessPayment(
		payments, orders, paymentinfra.NewStaticGateway(approveLimit), broker, logger)
	refundPayment := paymentapp.NewRefundPayment(payments)
	processShipment := shipmentapp.NewProcessShipment(
		shipments, orders, shipmentinfra.NewStaticCarrier(unreachable), broker, logger)

	handlers := map[string]messaging.Handler{
		"saga-orchestrator": saga.NewOrchestrator(orders, broker, logger),
		"order-service":     orderhandlers.NewOrderEventHandlers(cancelOrder, deliverOrder, logger),
		"payment-service":   paymenthandlers.NewPaymentEventHandlers(processPayment, refundPayment, logger),
		"shipment-service":  shipmenthandlers.NewShipmentEventHandlers(processShipment, logger),
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	for queue, handler := range handlers {
		sub := broker.Queue(queue, sink)
		go func() {
			_ = sub.Subscribe(ctx, handler)
		}()
	}

	return &sagaWorld{
		orders:      orders,
		payments:    payments,
		shipments:   shipments,
		deadLetters: sink,
		createOrder: orderapp.NewCreateOrder(orders, broker),
	}
}

// placeOrder creates an order with two units of a single product
func (w *sagaWorld) placeOrder(t *testing.T, address string, unitPrice int64) models.ID {
	t.Helper()

	res, err := w.createOrder.Execute(context.Background(), &orderapp.CreateOrderCommand{
		CustomerID:      uuid.NewString(),
		DeliveryAddress: address,
		Currency:        "USD",
		PaymentMethod:   "credit_card",
		Items: []orderapp.CreateOrderItem{
			{ProductID: uuid.NewString(), Quantity: 2, UnitPrice: unitPrice},
		},
	})
	require.NoError(t, err)

	orderID, err := models.NewID(res.OrderID)
	require.NoError(t, err)
	return orderID
}

func (w *sagaWorld) orderStatus(orderID models.ID) orderdomain.OrderStatus {
	order, err := w.orders.FindByID(context.Background(), orderID)
	if err != nil {
		return ""
	}
	return order.Status
}

func TestSagaFlow_HappyPathDeliversOrder(t *testing.T) {
	w := startSaga(t, 0, nil)
	ctx := context.Background()

	orderID := w.placeOrder(t, "221B Baker Street", 2500)

	require.Eventually(t, func() bool {
		return w.orderStatus(orderID) == orderdomain.OrderStatusDelivered
	}, waitFor, tick, "order should end up delivered")

	payment, err := w.payments.FindByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.PaymentStatusApproved, payment.Status)
	assert.Equal(t, models.NewMoney(5000, "USD"), payment.Amount)
	assert.Equal(t, "credit_card", payment.Method)

	shipment, err := w.shipments.FindByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, shipmentdomain.ShipmentStatusDelivered, shipment.Status)
	assert.Equal(t, "221B Baker Street", shipment.DeliveryAddress)

	assert.Empty(t, w.deadLetters.Entries())
}

func TestSagaFlow_RefusedPaymentCancelsOrder(t *testing.T) {
	w := startSaga(t, 1000, nil)
	ctx := context.Background()

	// Total 5000 is above the gateway limit, so the capture is declined
	orderID := w.placeOrder(t, "221B Baker Street", 2500)

	require.Eventually(t, func() bool {
		return w.orderStatus(orderID) == orderdomain.OrderStatusCancelled
	}, waitFor, tick, "order should end up cancelled")

	order, err := w.orders.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "payment refused: insufficient funds", order.FailureReason)

	payment, err := w.payments.FindByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.PaymentStatusRefused, payment.Status)

	_, err = w.shipments.FindByOrderID(ctx, orderID)
	assert.ErrorIs(t, err, shipmentdomain.ErrShipmentNotFound)
}

func TestSagaFlow_FailedShipmentRefundsPaymentAndCancelsOrder(t *testing.T) {
	w := startSaga(t, 0, []string{"Atlantis"})
	ctx := context.Background()

	orderID := w.placeOrder(t, "12 Atlantis Way", 2500)

	require.Eventually(t, func() bool {
		return w.orderStatus(orderID) == orderdomain.OrderStatusCancelled
	}, waitFor, tick, "order should end up cancelled")

	require.Eventually(t, func() bool {
		payment, err := w.payments.FindByOrderID(ctx, orderID)
		return err == nil && payment.Status == paymentdomain.PaymentStatusRefunded
	}, waitFor, tick, "captured payment should be refunded")

	order, err := w.orders.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "shipment failed: address unreachable", order.FailureReason)

	shipment, err := w.shipments.FindByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, shipmentdomain.ShipmentStatusCancelled, shipment.Status)
	assert.Equal(t, "address unreachable", shipment.FailureReason)

	assert.Empty(t, w.deadLetters.Entries())
}
