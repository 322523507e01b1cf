package application

import (
	"context"
	"testing"

	orderdomain "github.com/LuanFernandes23/SagaPattern/order-service/domain"
	ordermocks "github.com/LuanFernandes23/SagaPattern/order-service/mocks"
	"github.com/LuanFernandes23/SagaPattern/shared/messaging"
	sharedmocks "github.com/LuanFernandes23/SagaPattern/shared/mocks"
	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/LuanFernandes23/SagaPattern/shipment-service/domain"
	"github.com/LuanFernandes23/SagaPattern/shipment-service/mocks"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestProcessShipment_Execute(t *testing.T) {
	orderID := models.ID("550e8400-e29b-41d4-a716-446655440001")

	storedOrder := &orderdomain.Order{
		ID:              orderID,
		CustomerID:      "550e8400-e29b-41d4-a716-446655440010",
		Total:           models.NewMoney(15000, "USD"),
		DeliveryAddress: "742 Evergreen Terrace",
		Status:          orderdomain.OrderStatusCreated,
	}

	isProcessed := func(msg *messaging.Message) bool {
		if msg.Type != messaging.TypeShipmentProcessed {
			return false
		}
		var event messaging.ShipmentProcessed
		if err := msg.UnmarshalPayload(&event); err != nil {
			return false
		}
		header, _ := msg.Header(messaging.HeaderOrderID)
		return event.OrderID == orderID && !event.ShipmentID.IsEmpty() && header == orderID.String()
	}

	isFailed := func(reason string) func(msg *messaging.Message) bool {
		return func(msg *messaging.Message) bool {
			if msg.Type != messaging.TypeShipmentFailed {
				return false
			}
			var event messaging.ShipmentFailed
			if err := msg.UnmarshalPayload(&event); err != nil {
				return false
			}
			return event.OrderID == orderID && event.Reason == reason
		}
	}

	tests := []struct {
		name          string
		command       *ProcessShipmentCommand
		setupMocks    func(*mocks.MockShipmentRepository, *ordermocks.MockOrderRepository, *mocks.MockCarrier, *sharedmocks.MockPublisher)
		expectedError string
	}{
		{
			name:    "delivered dispatch publishes ShipmentProcessed",
			command: &ProcessShipmentCommand{OrderID: orderID, DeliveryAddress: "742 Evergreen Terrace"},
			setupMocks: func(repo *mocks.MockShipmentRepository, orders *ordermocks.MockOrderRepository, carrier *mocks.MockCarrier, publisher *sharedmocks.MockPublisher) {
				repo.EXPECT().FindByOrderID(mock.Anything, orderID).Return(nil, domain.ErrShipmentNotFound).Once()
				orders.EXPECT().FindByID(mock.Anything, orderID).Return(storedOrder, nil).Once()
				repo.EXPECT().Add(mock.Anything, mock.MatchedBy(func(s *domain.Shipment) bool {
					return s.Status == domain.ShipmentStatusPending && s.DeliveryAddress == "742 Evergreen Terrace"
				})).Return(nil).Once()
				carrier.EXPECT().Dispatch(mock.Anything, mock.AnythingOfType("*domain.Shipment")).
					Return(true, "", nil).Once()
				repo.EXPECT().Update(mock.Anything, mock.MatchedBy(func(s *domain.Shipment) bool {
					return s.Status == domain.ShipmentStatusDelivered
				})).Return(nil).Once()
				publisher.EXPECT().Publish(mock.Anything, mock.MatchedBy(isProcessed)).Return(nil).Once()
			},
		},
		{
			name:    "failed dispatch publishes ShipmentFailed with the carrier reason",
			command: &ProcessShipmentCommand{OrderID: orderID, DeliveryAddress: "742 Evergreen Terrace"},
			setupMocks: func(repo *mocks.MockShipmentRepository, orders *ordermocks.MockOrderRepository, carrier *mocks.MockCarrier, publisher *sharedmocks.MockPublisher) {
				repo.EXPECT().FindByOrderID(mock.Anything, orderID).Return(nil, domain.ErrShipmentNotFound).Once()
				orders.EXPECT().FindByID(mock.Anything, orderID).Return(storedOrder, nil).Once()
				repo.EXPECT().Add(mock.Anything, mock.AnythingOfType("*domain.Shipment")).Return(nil).Once()
				carrier.EXPECT().Dispatch(mock.Anything, mock.AnythingOfType("*domain.Shipment")).
					Return(false, "address unreachable", nil).Once()
				repo.EXPECT().Update(mock.Anything, mock.MatchedBy(func(s *domain.Shipment) bool {
					return s.Status == domain.ShipmentStatusCancelled && s.FailureReason == "address unreachable"
				})).Return(nil).Once()
				publisher.EXPECT().Publish(mock.Anything, mock.MatchedBy(isFailed("address unreachable"))).Return(nil).Once()
			},
		},
		{
			name:    "unknown order fails the shipment instead of crashing",
			command: &ProcessShipmentCommand{OrderID: orderID, DeliveryAddress: "742 Evergreen Terrace"},
			setupMocks: func(repo *mocks.MockShipmentRepository, orders *ordermocks.MockOrderRepository, carrier *mocks.MockCarrier, publisher *sharedmocks.MockPublisher) {
				repo.EXPECT().FindByOrderID(mock.Anything, orderID).Return(nil, domain.ErrShipmentNotFound).Once()
				orders.EXPECT().FindByID(mock.Anything, orderID).Return(nil, orderdomain.ErrOrderNotFound).Once()
				publisher.EXPECT().Publish(mock.Anything, mock.MatchedBy(isFailed("order not found"))).Return(nil).Once()
			},
		},
		{
			name:    "redelivered command republishes the stored outcome without dispatching again",
			command: &ProcessShipmentCommand{OrderID: orderID, DeliveryAddress: "742 Evergreen Terrace"},
			setupMocks: func(repo *mocks.MockShipmentRepository, orders *ordermocks.MockOrderRepository, carrier *mocks.MockCarrier, publisher *sharedmocks.MockPublisher) {
				delivered := &domain.Shipment{
					ID:              "550e8400-e29b-41d4-a716-446655440055",
					OrderID:         orderID,
					DeliveryAddress: "742 Evergreen Terrace",
					Status:          domain.ShipmentStatusDelivered,
				}
				repo.EXPECT().FindByOrderID(mock.Anything, orderID).Return(delivered, nil).Once()
				publisher.EXPECT().Publish(mock.Anything, mock.MatchedBy(isProcessed)).Return(nil).Once()
			},
		},
		{
			name:    "carrier error propagates",
			command: &ProcessShipmentCommand{OrderID: orderID, DeliveryAddress: "742 Evergreen Terrace"},
			setupMocks: func(repo *mocks.MockShipmentRepository, orders *ordermocks.MockOrderRepository, carrier *mocks.MockCarrier, publisher *sharedmocks.MockPublisher) {
				repo.EXPECT().FindByOrderID(mock.Anything, orderID).Return(nil, domain.ErrShipmentNotFound).Once()
				orders.EXPECT().FindByID(mock.Anything, orderID).Return(storedOrder, nil).Once()
				repo.EXPECT().Add(mock.Anything, mock.AnythingOfType("*domain.Shipment")).Return(nil).Once()
				carrier.EXPECT().Dispatch(mock.Anything, mock.AnythingOfType("*domain.Shipment")).
					Return(false, "", errors.New("carrier timeout")).Once()
			},
			expectedError: "carrier dispatch failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := mocks.NewMockShipmentRepository(t)
			mockOrders := ordermocks.NewMockOrderRepository(t)
			mockCarrier := mocks.NewMockCarrier(t)
			mockPublisher := sharedmocks.NewMockPublisher(t)
			tt.setupMocks(mockRepo, mockOrders, mockCarrier, mockPublisher)

			useCase := NewProcessShipment(mockRepo, mockOrders, mockCarrier, mockPublisher, nil)
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

func TestCancelShipment_Execute(t *testing.T) {
	shipmentID := models.ID("550e8400-e29b-41d4-a716-446655440055")

	newShipment := func(status domain.ShipmentStatus) *domain.Shipment {
		return &domain.Shipment{
			ID:              shipmentID,
			OrderID:         "550e8400-e29b-41d4-a716-446655440001",
			DeliveryAddress: "742 Evergreen Terrace",
			Status:          status,
		}
	}

	tests := []struct {
		name          string
		setupMocks    func(*mocks.MockShipmentRepository)
		expectedError error
	}{
		{
			name: "cancels a pending shipment",
			setupMocks: func(repo *mocks.MockShipmentRepository) {
				repo.EXPECT().FindByID(mock.Anything, shipmentID).
					Return(newShipment(domain.ShipmentStatusPending), nil).Once()
				repo.EXPECT().Update(mock.Anything, mock.MatchedBy(func(s *domain.Shipment) bool {
					return s.Status == domain.ShipmentStatusCancelled
				})).Return(nil).Once()
			},
		},
		{
			name: "cancelling a delivered shipment is an invalid state",
			setupMocks: func(repo *mocks.MockShipmentRepository) {
				repo.EXPECT().FindByID(mock.Anything, shipmentID).
					Return(newShipment(domain.ShipmentStatusDelivered), nil).Once()
			},
			expectedError: domain.ErrInvalidState,
		},
		{
			name: "cancelling an already cancelled shipment is a no-op",
			setupMocks: func(repo *mocks.MockShipmentRepository) {
				repo.EXPECT().FindByID(mock.Anything, shipmentID).
					Return(newShipment(domain.ShipmentStatusCancelled), nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := mocks.NewMockShipmentRepository(t)
			tt.setupMocks(mockRepo)

			useCase := NewCancelShipment(mockRepo)
			err := useCase.Execute(context.Background(), &CancelShipmentCommand{
				ShipmentID: shipmentID.String(),
				Reason:     "customer request",
			})

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
		})
	}
}
