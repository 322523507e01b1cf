package saga

import (
	"context"
	"log/slog"
	"testing"

	orderdomain "github.com/LuanFernandes23/SagaPattern/order-service/domain"
	ordermocks "github.com/LuanFernandes23/SagaPattern/order-service/mocks"
	"github.com/LuanFernandes23/SagaPattern/shared/messaging"
	"github.com/LuanFernandes23/SagaPattern/shared/mocks"
	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSagaMessage(t *testing.T, msgType string, payload interface{}, orderID models.ID) *messaging.Message {
	t.Helper()
	msg, err := messaging.NewMessage(msgType, payload)
	require.NoError(t, err)
	if !orderID.IsEmpty() {
		msg.WithOrderID(orderID)
	}
	return msg
}

func decodedType(t *testing.T, msg *messaging.Message) interface{} {
	t.Helper()
	event, err := messaging.Decode(msg)
	require.NoError(t, err)
	return event
}

func TestOrchestrator_Handle(t *testing.T) {
	orderID := models.ID("550e8400-e29b-41d4-a716-446655440001")

	storedOrder := &orderdomain.Order{
		ID:              orderID,
		CustomerID:      "550e8400-e29b-41d4-a716-446655440002",
		Total:           models.NewMoney(10000, "USD"),
		DeliveryAddress: "221B Baker Street",
		Status:          orderdomain.OrderStatusCreated,
	}

	tests := []struct {
		name          string
		message       func(t *testing.T) *messaging.Message
		setupMocks    func(orders *ordermocks.MockOrderRepository, publisher *mocks.MockPublisher)
		expectedError string
	}{
		{
			name: "order created begins payment",
			message: func(t *testing.T) *messaging.Message {
				return newSagaMessage(t, messaging.TypeOrderCreated, messaging.OrderCreated{
					OrderID:         orderID,
					Total:           models.NewMoney(10000, "USD"),
					DeliveryAddress: "221B Baker Street",
					PaymentMethod:   "card",
				}, orderID)
			},
			setupMocks: func(orders *ordermocks.MockOrderRepository, publisher *mocks.MockPublisher) {
				publisher.EXPECT().Publish(mock.Anything, mock.MatchedBy(func(msg *messaging.Message) bool {
					cmd, ok := decodedType(t, msg).(*messaging.ProcessPayment)
					if !ok {
						return false
					}
					header, _ := msg.Header(messaging.HeaderOrderID)
					return cmd.OrderID == orderID &&
						cmd.Amount.Amount == 10000 &&
						cmd.Method == "card" &&
						header == orderID.String()
				})).Return(nil).Once()
			},
		},
		{
			name: "payment approved begins shipment with stored address",
			message: func(t *testing.T) *messaging.Message {
				return newSagaMessage(t, messaging.TypePaymentApproved, messaging.PaymentApproved{
					OrderID: orderID,
				}, orderID)
			},
			setupMocks: func(orders *ordermocks.MockOrderRepository, publisher *mocks.MockPublisher) {
				orders.EXPECT().FindByID(mock.Anything, orderID).Return(storedOrder, nil).Once()
				publisher.EXPECT().Publish(mock.Anything, mock.MatchedBy(func(msg *messaging.Message) bool {
					cmd, ok := decodedType(t, msg).(*messaging.ProcessShipment)
					return ok && cmd.OrderID == orderID && cmd.DeliveryAddress == "221B Baker Street"
				})).Return(nil).Once()
			},
		},
		{
			name: "payment approved surfaces missing order, emits nothing",
			message: func(t *testing.T) *messaging.Message {
				return newSagaMessage(t, messaging.TypePaymentApproved, messaging.PaymentApproved{
					OrderID: orderID,
				}, orderID)
			},
			setupMocks: func(orders *ordermocks.MockOrderRepository, publisher *mocks.MockPublisher) {
				orders.EXPECT().FindByID(mock.Anything, orderID).Return(nil, orderdomain.ErrOrderNotFound).Once()
			},
			expectedError: "cannot begin shipment",
		},
		{
			name: "payment refused cancels order",
			message: func(t *testing.T) *messaging.Message {
				return newSagaMessage(t, messaging.TypePaymentRefused, messaging.PaymentRefused{
					OrderID: orderID,
					Reason:  "declined",
				}, orderID)
			},
			setupMocks: func(orders *ordermocks.MockOrderRepository, publisher *mocks.MockPublisher) {
				publisher.EXPECT().Publish(mock.Anything, mock.MatchedBy(func(msg *messaging.Message) bool {
					event, ok := decodedType(t, msg).(*messaging.OrderCancelled)
					return ok && event.OrderID == orderID && event.Reason == "payment refused: declined"
				})).Return(nil).Once()
			},
		},
		{
			name: "shipment processed is terminal, emits nothing",
			message: func(t *testing.T) *messaging.Message {
				return newSagaMessage(t, messaging.TypeShipmentProcessed, messaging.ShipmentProcessed{
					ShipmentID: "550e8400-e29b-41d4-a716-446655440099",
					OrderID:    orderID,
				}, orderID)
			},
			setupMocks: func(orders *ordermocks.MockOrderRepository, publisher *mocks.MockPublisher) {},
		},
		{
			name: "shipment failed compensates with refund and cancel",
			message: func(t *testing.T) *messaging.Message {
				return newSagaMessage(t, messaging.TypeShipmentFailed, messaging.ShipmentFailed{
					OrderID: orderID,
					Reason:  "lost",
				}, orderID)
			},
			setupMocks: func(orders *ordermocks.MockOrderRepository, publisher *mocks.MockPublisher) {
				publisher.EXPECT().Publish(mock.Anything, mock.MatchedBy(func(msg *messaging.Message) bool {
					event, ok := decodedType(t, msg).(*messaging.PaymentRefunded)
					if !ok {
						return false
					}
					reason, _ := msg.Header(messaging.HeaderReason)
					return event.OrderID == orderID && reason == "lost"
				})).Return(nil).Once()
				publisher.EXPECT().Publish(mock.Anything, mock.MatchedBy(func(msg *messaging.Message) bool {
					event, ok := decodedType(t, msg).(*messaging.OrderCancelled)
					return ok && event.OrderID == orderID && event.Reason == "shipment failed: lost"
				})).Return(nil).Once()
			},
		},
		{
			name: "refund publish failure stops compensation and propagates",
			message: func(t *testing.T) *messaging.Message {
				return newSagaMessage(t, messaging.TypeShipmentFailed, messaging.ShipmentFailed{
					OrderID: orderID,
					Reason:  "lost",
				}, orderID)
			},
			setupMocks: func(orders *ordermocks.MockOrderRepository, publisher *mocks.MockPublisher) {
				publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(errors.New("broker unavailable")).Once()
			},
			expectedError: "failed to publish PaymentRefunded",
		},
		{
			name: "missing order id header is fatal",
			message: func(t *testing.T) *messaging.Message {
				return newSagaMessage(t, messaging.TypePaymentRefused, messaging.PaymentRefused{
					OrderID: orderID,
					Reason:  "declined",
				}, "")
			},
			setupMocks:    func(orders *ordermocks.MockOrderRepository, publisher *mocks.MockPublisher) {},
			expectedError: messaging.ErrMissingOrderID.Error(),
		},
		{
			name: "unrecognized type is discarded",
			message: func(t *testing.T) *messaging.Message {
				return newSagaMessage(t, "InventoryReserved", map[string]string{"sku": "A1"}, orderID)
			},
			setupMocks: func(orders *ordermocks.MockOrderRepository, publisher *mocks.MockPublisher) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := ordermocks.NewMockOrderRepository(t)
			publisher := mocks.NewMockPublisher(t)
			tt.setupMocks(orders, publisher)

			orchestrator := NewOrchestrator(orders, publisher, slog.Default())

			err := orchestrator.Handle(context.Background(), tt.message(t))
			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestOrchestrator_MissingHeaderIsNonRetryable(t *testing.T) {
	orders := ordermocks.NewMockOrderRepository(t)
	publisher := mocks.NewMockPublisher(t)
	orchestrator := NewOrchestrator(orders, publisher, nil)

	msg := newSagaMessage(t, messaging.TypeOrderCreated, messaging.OrderCreated{}, "")

	err := orchestrator.Handle(context.Background(), msg)
	require.Error(t, err)
	assert.True(t, messaging.IsNonRetryable(errors.Cause(err)))
}
