package messaging

import (
	"encoding/json"
	"testing"

	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	orderID := models.ID("550e8400-e29b-41d4-a716-446655440001")

	msg, err := NewMessage(TypeProcessPayment, ProcessPayment{
		OrderID: orderID,
		Amount:  models.NewMoney(10000, "USD"),
		Method:  "card",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, TypeProcessPayment, msg.Type)
	assert.NotNil(t, msg.Headers)
	assert.False(t, msg.CreatedAt.IsZero())

	var payload ProcessPayment
	require.NoError(t, msg.UnmarshalPayload(&payload))
	assert.Equal(t, orderID, payload.OrderID)
	assert.Equal(t, int64(10000), payload.Amount.Amount)
}

func TestMessage_RoundTrip(t *testing.T) {
	orderID := models.ID("550e8400-e29b-41d4-a716-446655440002")

	msg, err := NewMessage(TypeShipmentFailed, ShipmentFailed{
		OrderID: orderID,
		Reason:  "lost",
	})
	require.NoError(t, err)
	msg.WithOrderID(orderID).WithHeader(HeaderReason, "lost")

	data, err := msg.ToJSON()
	require.NoError(t, err)

	decoded, err := FromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, msg.ID, decoded.ID)
	assert.Equal(t, msg.Type, decoded.Type)
	assert.Equal(t, msg.Headers, decoded.Headers)
	assert.True(t, msg.CreatedAt.Equal(decoded.CreatedAt))
	assert.JSONEq(t, string(msg.Payload), string(decoded.Payload))

	// Header lookup is key-based, independent of map ordering
	reason, ok := decoded.Header(HeaderReason)
	assert.True(t, ok)
	assert.Equal(t, "lost", reason)
}

func TestMessage_WireFormat(t *testing.T) {
	msg, err := NewMessage(TypePaymentApproved, PaymentApproved{
		OrderID: "550e8400-e29b-41d4-a716-446655440003",
	})
	require.NoError(t, err)
	msg.WithOrderID("550e8400-e29b-41d4-a716-446655440003")

	data, err := msg.ToJSON()
	require.NoError(t, err)

	// The field names are the wire contract with the other services
	var wire map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &wire))
	for _, field := range []string{"id", "type", "payload", "headers", "createdAt"} {
		assert.Contains(t, wire, field)
	}
}

func TestMessage_OrderID(t *testing.T) {
	tests := []struct {
		name        string
		headers     map[string]string
		expected    models.ID
		expectedErr error
	}{
		{
			name:     "present",
			headers:  map[string]string{HeaderOrderID: "order-1"},
			expected: models.ID("order-1"),
		},
		{
			name:        "missing",
			headers:     map[string]string{},
			expectedErr: ErrMissingOrderID,
		},
		{
			name:        "empty value",
			headers:     map[string]string{HeaderOrderID: ""},
			expectedErr: ErrMissingOrderID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &Message{Type: TypeOrderCancelled, Headers: tt.headers}

			orderID, err := msg.OrderID()
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.True(t, IsNonRetryable(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, orderID)
		})
	}
}

func TestIsNonRetryable(t *testing.T) {
	malformed := &MalformedPayloadError{Type: TypeOrderCreated, Cause: assert.AnError}
	assert.True(t, IsNonRetryable(malformed))
	assert.True(t, IsNonRetryable(ErrMissingOrderID))
	assert.False(t, IsNonRetryable(assert.AnError))
}
