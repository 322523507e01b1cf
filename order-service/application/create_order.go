package application

import (
	"context"

	"github.com/LuanFernandes23/SagaPattern/order-service/domain"
	"github.com/LuanFernandes23/SagaPattern/shared/messaging"
	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/pkg/errors"
)

// CreateOrderItem is one line item of the create order command
type CreateOrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// CreateOrderCommand represents the command to create an order
type CreateOrderCommand struct {
	CustomerID      string            `json:"customer_id"`
	DeliveryAddress string            `json:"delivery_address"`
	Currency        string            `json:"currency"`
	PaymentMethod   string            `json:"payment_method"`
	Items           []CreateOrderItem `json:"items"`
}

// CreateOrderResponse represents the response after creating an order
type CreateOrderResponse struct {
	OrderID string       `json:"order_id"`
	Total   models.Money `json:"total"`
}

// CreateOrder use case. Creating an order is the root of a saga run: once the
// order is stored, an OrderCreated event goes out and the orchestrator takes
// over.
type CreateOrder struct {
	orderRepository domain.OrderRepository
	publisher       messaging.Publisher
}

// NewCreateOrder creates a new CreateOrder use case
func NewCreateOrder(orderRepository domain.OrderRepository, publisher messaging.Publisher) *CreateOrder {
	return &CreateOrder{
		orderRepository: orderRepository,
		publisher:       publisher,
	}
}

// Execute validates the command, stores the order and publishes OrderCreated.
// The store write happens first: an order must exist before the orchestrator
// can ever look it up.
func (uc *CreateOrder) Execute(ctx context.Context, cmd *CreateOrderCommand) (*CreateOrderResponse, error) {
	if err := uc.validateCommand(cmd); err != nil {
		return nil, errors.Wrap(err, "invalid command")
	}

	customerID, err := models.NewID(cmd.CustomerID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid customer ID")
	}

	order, err := domain.CreateOrder(customerID, cmd.DeliveryAddress, cmd.Currency)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create order")
	}

	for _, item := range cmd.Items {
		productID, err := models.NewID(item.ProductID)
		if err != nil {
			return nil, errors.Wrap(err, "invalid product ID")
		}
		if err := order.AddItem(productID, item.Quantity, models.NewMoney(item.UnitPrice, cmd.Currency)); err != nil {
			return nil, errors.Wrap(err, "invalid order item")
		}
	}

	if err := uc.orderRepository.Add(ctx, order); err != nil {
		return nil, errors.Wrap(err, "failed to save order")
	}

	event, err := messaging.NewMessage(messaging.TypeOrderCreated, messaging.OrderCreated{
		OrderID:         order.ID,
		CustomerID:      order.CustomerID,
		Total:           order.Total,
		DeliveryAddress: order.DeliveryAddress,
		PaymentMethod:   cmd.PaymentMethod,
	})
	if err != nil {
		return nil, err
	}
	event.WithOrderID(order.ID)

	if err := uc.publisher.Publish(ctx, event); err != nil {
		return nil, errors.Wrap(err, "failed to publish OrderCreated")
	}

	return &CreateOrderResponse{
		OrderID: order.ID.String(),
		Total:   order.Total,
	}, nil
}

func (uc *CreateOrder) validateCommand(cmd *CreateOrderCommand) error {
	if cmd.CustomerID == "" {
		return errors.New("customer ID is required")
	}
	if cmd.DeliveryAddress == "" {
		return errors.New("delivery address is required")
	}
	if cmd.Currency == "" {
		return errors.New("currency is required")
	}
	if cmd.PaymentMethod == "" {
		return errors.New("payment method is required")
	}
	if len(cmd.Items) == 0 {
		return errors.New("at least one item is required")
	}
	return nil
}
