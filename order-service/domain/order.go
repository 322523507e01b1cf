package domain

import (
	"context"

	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/pkg/errors"
)

var (
	// ErrOrderNotFound is returned by repositories when no order exists for an id
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidTransition marks an order status change the state machine forbids
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderItem is a line item owned by its order
type OrderItem struct {
	ProductID models.ID    `json:"product_id"`
	Quantity  int64        `json:"quantity"`
	UnitPrice models.Money `json:"unit_price"`
}

// Order aggregate root. Total always equals the sum over line items;
// Cancelled and Delivered are absorbing except for their idempotent
// re-application, which keeps at-least-once redelivery safe.
type Order struct {
	ID              models.ID
	CustomerID      models.ID
	Items           []OrderItem
	Total           models.Money
	DeliveryAddress string
	Status          OrderStatus
	FailureReason   string
	Timestamps      models.Timestamps
	Version         models.Version
}

// CreateOrder factory method
func CreateOrder(customerID models.ID, deliveryAddress string, currency string) (*Order, error) {
	if customerID.IsEmpty() {
		return nil, errors.New("customer id is required")
	}
	if deliveryAddress == "" {
		return nil, errors.New("delivery address is required")
	}
	if currency == "" {
		return nil, errors.New("currency is required")
	}

	return &Order{
		ID:              models.GenerateUUID(),
		CustomerID:      customerID,
		Items:           make([]OrderItem, 0),
		Total:           models.NewMoney(0, currency),
		DeliveryAddress: deliveryAddress,
		Status:          OrderStatusCreated,
		Timestamps:      models.NewTimestamps(),
		Version:         models.NewVersion(),
	}, nil
}

// AddItem appends a line item and recomputes the total
func (o *Order) AddItem(productID models.ID, quantity int64, unitPrice models.Money) error {
	if quantity < 1 {
		return errors.New("quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return errors.New("unit price must not be negative")
	}
	if unitPrice.Currency != o.Total.Currency {
		return errors.New("item currency must match order currency")
	}

	o.Items = append(o.Items, OrderItem{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	})
	o.recomputeTotal()
	o.Timestamps = o.Timestamps.Update()
	return nil
}

func (o *Order) recomputeTotal() {
	total := models.NewMoney(0, o.Total.Currency)
	for _, item := range o.Items {
		total, _ = total.Add(item.UnitPrice.Multiply(item.Quantity))
	}
	o.Total = total
}

// Cancel moves the order to Cancelled. Cancelling an already cancelled order
// is a no-op regardless of the reason; a delivered order cannot be cancelled.
func (o *Order) Cancel(reason string) error {
	if o.Status == OrderStatusCancelled {
		return nil
	}
	if o.Status == OrderStatusDelivered {
		return errors.Wrap(ErrInvalidTransition, "cannot cancel a delivered order")
	}

	o.Status = OrderStatusCancelled
	o.FailureReason = reason
	o.Timestamps = o.Timestamps.Update()
	o.Version = o.Version.Update()
	return nil
}

// Deliver moves the order to Delivered. Re-applying Delivered is a no-op; a
// cancelled order cannot be delivered.
func (o *Order) Deliver() error {
	if o.Status == OrderStatusDelivered {
		return nil
	}
	if o.Status == OrderStatusCancelled {
		return errors.Wrap(ErrInvalidTransition, "cannot deliver a cancelled order")
	}

	o.Status = OrderStatusDelivered
	o.Timestamps = o.Timestamps.Update()
	o.Version = o.Version.Update()
	return nil
}

// OrderRepository is the durable store contract for orders
type OrderRepository interface {
	Add(ctx context.Context, order *Order) error
	Update(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id models.ID) (*Order, error)
}
