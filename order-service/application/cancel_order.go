package application

import (
	"context"

	"github.com/LuanFernandes23/SagaPattern/order-service/domain"
	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/pkg/errors"
)

// CancelOrderCommand represents the command to cancel an order
type CancelOrderCommand struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// CancelOrder use case. Serves both the OrderCancelled saga event and the
// manual cancellation endpoint. Re-cancelling is a no-op, so redeliveries are
// safe.
type CancelOrder struct {
	orderRepository domain.OrderRepository
}

// NewCancelOrder creates a new CancelOrder use case
func NewCancelOrder(orderRepository domain.OrderRepository) *CancelOrder {
	return &CancelOrder{orderRepository: orderRepository}
}

// Execute cancels the order
func (uc *CancelOrder) Execute(ctx context.Context, cmd *CancelOrderCommand) error {
	orderID, err := models.NewID(cmd.OrderID)
	if err != nil {
		return errors.Wrap(err, "invalid order ID")
	}

	order, err := uc.orderRepository.FindByID(ctx, orderID)
	if err != nil {
		return errors.Wrap(err, "failed to find order")
	}

	alreadyCancelled := order.Status == domain.OrderStatusCancelled

	if err := order.Cancel(cmd.Reason); err != nil {
		return err
	}

	if alreadyCancelled {
		return nil
	}

	return errors.Wrap(uc.orderRepository.Update(ctx, order), "failed to update order")
}
