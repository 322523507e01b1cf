package messaging

import (
	"encoding/json"
	"testing"

	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	orderID := models.ID("550e8400-e29b-41d4-a716-446655440010")

	tests := []struct {
		name     string
		msgType  string
		payload  interface{}
		validate func(t *testing.T, event interface{})
	}{
		{
			name:    "order created",
			msgType: TypeOrderCreated,
			payload: OrderCreated{
				OrderID:         orderID,
				Total:           models.NewMoney(10000, "USD"),
				DeliveryAddress: "221B Baker Street",
				PaymentMethod:   "card",
			},
			validate: func(t *testing.T, event interface{}) {
				e, ok := event.(*OrderCreated)
				require.True(t, ok)
				assert.Equal(t, orderID, e.OrderID)
				assert.Equal(t, "221B Baker Street", e.DeliveryAddress)
			},
		},
		{
			name:    "payment refused",
			msgType: TypePaymentRefused,
			payload: PaymentRefused{OrderID: orderID, Reason: "declined"},
			validate: func(t *testing.T, event interface{}) {
				e, ok := event.(*PaymentRefused)
				require.True(t, ok)
				assert.Equal(t, "declined", e.Reason)
			},
		},
		{
			name:    "shipment processed",
			msgType: TypeShipmentProcessed,
			payload: ShipmentProcessed{ShipmentID: "ship-1", OrderID: orderID},
			validate: func(t *testing.T, event interface{}) {
				e, ok := event.(*ShipmentProcessed)
				require.True(t, ok)
				assert.Equal(t, models.ID("ship-1"), e.ShipmentID)
			},
		},
		{
			name:    "payment refunded",
			msgType: TypePaymentRefunded,
			payload: PaymentRefunded{OrderID: orderID},
			validate: func(t *testing.T, event interface{}) {
				_, ok := event.(*PaymentRefunded)
				require.True(t, ok)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.payload)
			require.NoError(t, err)

			event, err := Decode(msg)
			require.NoError(t, err)
			require.NotNil(t, event)
			tt.validate(t, event)
		})
	}
}

func TestDecode_UnknownType(t *testing.T) {
	msg, err := NewMessage("InventoryReserved", map[string]string{"sku": "A1"})
	require.NoError(t, err)

	event, decodeErr := Decode(msg)
	assert.NoError(t, decodeErr)
	assert.Nil(t, event)
}

func TestDecode_MalformedPayload(t *testing.T) {
	msg := &Message{
		Type:    TypeOrderCreated,
		Payload: json.RawMessage(`{"orderId": 42}`), // wrong type for the field
		Headers: map[string]string{},
	}

	_, err := Decode(msg)
	require.Error(t, err)
	assert.True(t, IsNonRetryable(err))
}
