package domain

import (
	"testing"

	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	order, err := CreateOrder("550e8400-e29b-41d4-a716-446655440001", "221B Baker Street", "USD")
	require.NoError(t, err)
	return order
}

func TestCreateOrder_Validation(t *testing.T) {
	tests := []struct {
		name       string
		customerID models.ID
		address    string
		currency   string
	}{
		{name: "missing customer", customerID: "", address: "addr", currency: "USD"},
		{name: "missing address", customerID: "c1", address: "", currency: "USD"},
		{name: "missing currency", customerID: "c1", address: "addr", currency: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateOrder(tt.customerID, tt.address, tt.currency)
			assert.Error(t, err)
		})
	}
}

func TestOrder_AddItem_TotalInvariant(t *testing.T) {
	order := newTestOrder(t)

	require.NoError(t, order.AddItem("p1", 2, models.NewMoney(2500, "USD")))
	assert.Equal(t, int64(5000), order.Total.Amount)

	require.NoError(t, order.AddItem("p2", 1, models.NewMoney(10000, "USD")))
	assert.Equal(t, int64(15000), order.Total.Amount)

	// Total always equals the sum over line items
	var sum int64
	for _, item := range order.Items {
		sum += item.Quantity * item.UnitPrice.Amount
	}
	assert.Equal(t, sum, order.Total.Amount)
}

func TestOrder_AddItem_Validation(t *testing.T) {
	order := newTestOrder(t)

	assert.Error(t, order.AddItem("p1", 0, models.NewMoney(100, "USD")))
	assert.Error(t, order.AddItem("p1", 1, models.NewMoney(-100, "USD")))
	assert.Error(t, order.AddItem("p1", 1, models.NewMoney(100, "EUR")))
	assert.Empty(t, order.Items)

	// Zero price is allowed
	assert.NoError(t, order.AddItem("p2", 3, models.NewMoney(0, "USD")))
	assert.Equal(t, int64(0), order.Total.Amount)
}

func TestOrder_Cancel(t *testing.T) {
	order := newTestOrder(t)

	require.NoError(t, order.Cancel("payment refused: declined"))
	assert.Equal(t, OrderStatusCancelled, order.Status)
	assert.Equal(t, "payment refused: declined", order.FailureReason)

	// Re-applying Cancelled is a no-op, same or different reason
	assert.NoError(t, order.Cancel("payment refused: declined"))
	assert.NoError(t, order.Cancel("shipment failed: lost"))
	assert.Equal(t, "payment refused: declined", order.FailureReason)
	assert.Equal(t, OrderStatusCancelled, order.Status)
}

func TestOrder_Deliver(t *testing.T) {
	order := newTestOrder(t)

	require.NoError(t, order.Deliver())
	assert.Equal(t, OrderStatusDelivered, order.Status)

	// Re-applying Delivered is a no-op
	assert.NoError(t, order.Deliver())
	assert.Equal(t, OrderStatusDelivered, order.Status)
}

func TestOrder_AbsorbingStates(t *testing.T) {
	delivered := newTestOrder(t)
	require.NoError(t, delivered.Deliver())
	err := delivered.Cancel("too late")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, OrderStatusDelivered, delivered.Status)

	cancelled := newTestOrder(t)
	require.NoError(t, cancelled.Cancel("declined"))
	err = cancelled.Deliver()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, OrderStatusCancelled, cancelled.Status)
}
