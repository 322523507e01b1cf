package application

import (
	"context"
	"testing"

	"github.com/LuanFernandes23/SagaPattern/order-service/domain"
	"github.com/LuanFernandes23/SagaPattern/order-service/mocks"
	"github.com/LuanFernandes23/SagaPattern/shared/messaging"
	sharedmocks "github.com/LuanFernandes23/SagaPattern/shared/mocks"
	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCreateOrder_Execute(t *testing.T) {
	validCommand := func() *CreateOrderCommand {
		return &CreateOrderCommand{
			CustomerID:      "550e8400-e29b-41d4-a716-446655440010",
			DeliveryAddress: "742 Evergreen Terrace",
			Currency:        "USD",
			PaymentMethod:   "card",
			Items: []CreateOrderItem{
				{ProductID: "550e8400-e29b-41d4-a716-446655440020", Quantity: 2, UnitPrice: 2500},
				{ProductID: "550e8400-e29b-41d4-a716-446655440021", Quantity: 1, UnitPrice: 10000},
			},
		}
	}

	tests := []struct {
		name          string
		command       *CreateOrderCommand
		setupMocks    func(*mocks.MockOrderRepository, *sharedmocks.MockPublisher)
		expectedError string
		expectedTotal int64
	}{
		{
			name:    "successful order creation publishes OrderCreated",
			command: validCommand(),
			setupMocks: func(repo *mocks.MockOrderRepository, publisher *sharedmocks.MockPublisher) {
				repo.EXPECT().Add(mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Once()
				publisher.EXPECT().Publish(mock.Anything, mock.MatchedBy(func(msg *messaging.Message) bool {
					if msg.Type != messaging.TypeOrderCreated {
						return false
					}
					var event messaging.OrderCreated
					if err := msg.UnmarshalPayload(&event); err != nil {
						return false
					}
					header, _ := msg.Header(messaging.HeaderOrderID)
					return event.Total.Amount == 15000 &&
						event.PaymentMethod == "card" &&
						header == event.OrderID.String()
				})).Return(nil).Once()
			},
			expectedTotal: 15000,
		},
		{
			name: "missing customer ID",
			command: func() *CreateOrderCommand {
				cmd := validCommand()
				cmd.CustomerID = ""
				return cmd
			}(),
			setupMocks:    func(repo *mocks.MockOrderRepository, publisher *sharedmocks.MockPublisher) {},
			expectedError: "customer ID is required",
		},
		{
			name: "no items",
			command: func() *CreateOrderCommand {
				cmd := validCommand()
				cmd.Items = nil
				return cmd
			}(),
			setupMocks:    func(repo *mocks.MockOrderRepository, publisher *sharedmocks.MockPublisher) {},
			expectedError: "at least one item is required",
		},
		{
			name: "zero quantity item",
			command: func() *CreateOrderCommand {
				cmd := validCommand()
				cmd.Items[0].Quantity = 0
				return cmd
			}(),
			setupMocks:    func(repo *mocks.MockOrderRepository, publisher *sharedmocks.MockPublisher) {},
			expectedError: "quantity must be at least 1",
		},
		{
			name:    "repository error",
			command: validCommand(),
			setupMocks: func(repo *mocks.MockOrderRepository, publisher *sharedmocks.MockPublisher) {
				repo.EXPECT().Add(mock.Anything, mock.AnythingOfType("*domain.Order")).
					Return(errors.New("database error")).Once()
			},
			expectedError: "failed to save order",
		},
		{
			name:    "publisher error",
			command: validCommand(),
			setupMocks: func(repo *mocks.MockOrderRepository, publisher *sharedmocks.MockPublisher) {
				repo.EXPECT().Add(mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Once()
				publisher.EXPECT().Publish(mock.Anything, mock.Anything).
					Return(errors.New("broker unavailable")).Once()
			},
			expectedError: "failed to publish OrderCreated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := mocks.NewMockOrderRepository(t)
			mockPublisher := sharedmocks.NewMockPublisher(t)
			tt.setupMocks(mockRepo, mockPublisher)

			useCase := NewCreateOrder(mockRepo, mockPublisher)

			result, err := useCase.Execute(context.Background(), tt.command)

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.Nil(t, result)
				return
			}

			assert.NoError(t, err)
			assert.NotNil(t, result)
			assert.Equal(t, tt.expectedTotal, result.Total.Amount)

			_, err = models.NewID(result.OrderID)
			assert.NoError(t, err)
		})
	}
}

func TestCancelOrder_Execute(t *testing.T) {
	orderID := "550e8400-e29b-41d4-a716-446655440001"

	newOrder := func(status domain.OrderStatus) *domain.Order {
		return &domain.Order{
			ID:              models.ID(orderID),
			CustomerID:      "550e8400-e29b-41d4-a716-446655440010",
			Total:           models.NewMoney(5000, "USD"),
			DeliveryAddress: "742 Evergreen Terrace",
			Status:          status,
		}
	}

	tests := []struct {
		name          string
		command       *CancelOrderCommand
		setupMocks    func(*mocks.MockOrderRepository)
		expectedError string
	}{
		{
			name:    "cancels a created order",
			command: &CancelOrderCommand{OrderID: orderID, Reason: "payment refused: declined"},
			setupMocks: func(repo *mocks.MockOrderRepository) {
				repo.EXPECT().FindByID(mock.Anything, models.ID(orderID)).
					Return(newOrder(domain.OrderStatusCreated), nil).Once()
				repo.EXPECT().Update(mock.Anything, mock.MatchedBy(func(order *domain.Order) bool {
					return order.Status == domain.OrderStatusCancelled &&
						order.FailureReason == "payment refused: declined"
				})).Return(nil).Once()
			},
		},
		{
			name:    "cancelling an already cancelled order is a no-op",
			command: &CancelOrderCommand{OrderID: orderID, Reason: "another reason"},
			setupMocks: func(repo *mocks.MockOrderRepository) {
				repo.EXPECT().FindByID(mock.Anything, models.ID(orderID)).
					Return(newOrder(domain.OrderStatusCancelled), nil).Once()
				// No Update call: nothing changed.
			},
		},
		{
			name:    "cannot cancel a delivered order",
			command: &CancelOrderCommand{OrderID: orderID, Reason: "too late"},
			setupMocks: func(repo *mocks.MockOrderRepository) {
				repo.EXPECT().FindByID(mock.Anything, models.ID(orderID)).
					Return(newOrder(domain.OrderStatusDelivered), nil).Once()
			},
			expectedError: "cannot cancel a delivered order",
		},
		{
			name:    "order not found",
			command: &CancelOrderCommand{OrderID: orderID, Reason: "whatever"},
			setupMocks: func(repo *mocks.MockOrderRepository) {
				repo.EXPECT().FindByID(mock.Anything, models.ID(orderID)).
					Return(nil, domain.ErrOrderNotFound).Once()
			},
			expectedError: "failed to find order",
		},
		{
			name:          "invalid order ID",
			command:       &CancelOrderCommand{OrderID: "not-a-uuid", Reason: "whatever"},
			setupMocks:    func(repo *mocks.MockOrderRepository) {},
			expectedError: "invalid order ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := mocks.NewMockOrderRepository(t)
			tt.setupMocks(mockRepo)

			useCase := NewCancelOrder(mockRepo)
			err := useCase.Execute(context.Background(), tt.command)

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDeliverOrder_Execute(t *testing.T) {
	orderID := "550e8400-e29b-41d4-a716-446655440001"

	newOrder := func(status domain.OrderStatus) *domain.Order {
		return &domain.Order{
			ID:     models.ID(orderID),
			Status: status,
			Total:  models.NewMoney(5000, "USD"),
		}
	}

	tests := []struct {
		name          string
		setupMocks    func(*mocks.MockOrderRepository)
		expectedError string
	}{
		{
			name: "delivers a created order",
			setupMocks: func(repo *mocks.MockOrderRepository) {
				repo.EXPECT().FindByID(mock.Anything, models.ID(orderID)).
					Return(newOrder(domain.OrderStatusCreated), nil).Once()
				repo.EXPECT().Update(mock.Anything, mock.MatchedBy(func(order *domain.Order) bool {
					return order.Status == domain.OrderStatusDelivered
				})).Return(nil).Once()
			},
		},
		{
			name: "redelivered event is a no-op",
			setupMocks: func(repo *mocks.MockOrderRepository) {
				repo.EXPECT().FindByID(mock.Anything, models.ID(orderID)).
					Return(newOrder(domain.OrderStatusDelivered), nil).Once()
			},
		},
		{
			name: "cannot deliver a cancelled order",
			setupMocks: func(repo *mocks.MockOrderRepository) {
				repo.EXPECT().FindByID(mock.Anything, models.ID(orderID)).
					Return(newOrder(domain.OrderStatusCancelled), nil).Once()
			},
			expectedError: "cannot deliver a cancelled order",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := mocks.NewMockOrderRepository(t)
			tt.setupMocks(mockRepo)

			useCase := NewDeliverOrder(mockRepo)
			err := useCase.Execute(context.Background(), &DeliverOrderCommand{OrderID: orderID})

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}
			assert.NoError(t, err)
		})
	}
}
