package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingShipment(t *testing.T) *Shipment {
	t.Helper()
	shipment, err := CreateShipment("550e8400-e29b-41d4-a716-446655440001", "221B Baker Street")
	require.NoError(t, err)
	return shipment
}

func TestCreateShipment(t *testing.T) {
	shipment := newPendingShipment(t)
	assert.Equal(t, ShipmentStatusPending, shipment.Status)

	_, err := CreateShipment("", "addr")
	assert.Error(t, err)
	_, err = CreateShipment("o1", "")
	assert.Error(t, err)
}

func TestShipment_Deliver(t *testing.T) {
	shipment := newPendingShipment(t)

	require.NoError(t, shipment.Deliver())
	assert.Equal(t, ShipmentStatusDelivered, shipment.Status)

	// idempotent
	assert.NoError(t, shipment.Deliver())
}

func TestShipment_Cancel(t *testing.T) {
	shipment := newPendingShipment(t)

	require.NoError(t, shipment.Cancel("lost"))
	assert.Equal(t, ShipmentStatusCancelled, shipment.Status)
	assert.Equal(t, "lost", shipment.FailureReason)

	assert.ErrorIs(t, shipment.Deliver(), ErrInvalidState)
}

func TestShipment_CancelDeliveredFails(t *testing.T) {
	shipment := newPendingShipment(t)
	require.NoError(t, shipment.Deliver())

	err := shipment.Cancel("operator request")
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, ShipmentStatusDelivered, shipment.Status)
}
