package application

import (
	"context"

	"github.com/LuanFernandes23/SagaPattern/order-service/domain"
	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/pkg/errors"
)

// DeliverOrderCommand represents the command to mark an order delivered
type DeliverOrderCommand struct {
	OrderID string `json:"order_id"`
}

// DeliverOrder use case, driven by the ShipmentProcessed saga event
type DeliverOrder struct {
	orderRepository domain.OrderRepository
}

// NewDeliverOrder creates a new DeliverOrder use case
func NewDeliverOrder(orderRepository domain.OrderRepository) *DeliverOrder {
	return &DeliverOrder{orderRepository: orderRepository}
}

// Execute marks the order delivered
func (uc *DeliverOrder) Execute(ctx context.Context, cmd *DeliverOrderCommand) error {
	orderID, err := models.NewID(cmd.OrderID)
	if err != nil {
		return errors.Wrap(err, "invalid order ID")
	}

	order, err := uc.orderRepository.FindByID(ctx, orderID)
	if err != nil {
		return errors.Wrap(err, "failed to find order")
	}

	alreadyDelivered := order.Status == domain.OrderStatusDelivered

	if err := order.Deliver(); err != nil {
		return err
	}

	if alreadyDelivered {
		return nil
	}

	return errors.Wrap(uc.orderRepository.Update(ctx, order), "failed to update order")
}
