package domain

import (
	"context"

	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/pkg/errors"
)

var (
	// ErrShipmentNotFound is returned by repositories when no shipment exists for an id
	ErrShipmentNotFound = errors.New("shipment not found")

	// ErrInvalidState marks a shipment status change the state machine forbids
	ErrInvalidState = errors.New("invalid shipment state")
)

// ShipmentStatus represents the status of a shipment
type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "pending"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
	ShipmentStatusCancelled ShipmentStatus = "cancelled"
)

// Shipment aggregate root. A delivered shipment cannot be cancelled.
type Shipment struct {
	ID              models.ID
	OrderID         models.ID
	DeliveryAddress string
	Status          ShipmentStatus
	FailureReason   string
	Timestamps      models.Timestamps
	Version         models.Version
}

// CreateShipment creates a pending shipment for an order
func CreateShipment(orderID models.ID, deliveryAddress string) (*Shipment, error) {
	if orderID.IsEmpty() {
		return nil, errors.New("order id is required")
	}
	if deliveryAddress == "" {
		return nil, errors.New("delivery address is required")
	}

	return &Shipment{
		ID:              models.GenerateUUID(),
		OrderID:         orderID,
		DeliveryAddress: deliveryAddress,
		Status:          ShipmentStatusPending,
		Timestamps:      models.NewTimestamps(),
		Version:         models.NewVersion(),
	}, nil
}

// Deliver marks a pending shipment as delivered
func (s *Shipment) Deliver() error {
	if s.Status == ShipmentStatusDelivered {
		return nil
	}
	if s.Status == ShipmentStatusCancelled {
		return errors.Wrap(ErrInvalidState, "cannot deliver a cancelled shipment")
	}

	s.Status = ShipmentStatusDelivered
	s.Timestamps = s.Timestamps.Update()
	s.Version = s.Version.Update()
	return nil
}

// Cancel cancels a shipment that has not been delivered yet
func (s *Shipment) Cancel(reason string) error {
	if s.Status == ShipmentStatusDelivered {
		return errors.Wrap(ErrInvalidState, "cannot cancel a delivered shipment")
	}

	s.Status = ShipmentStatusCancelled
	s.FailureReason = reason
	s.Timestamps = s.Timestamps.Update()
	s.Version = s.Version.Update()
	return nil
}

// ShipmentRepository is the durable store contract for shipments
type ShipmentRepository interface {
	Add(ctx context.Context, shipment *Shipment) error
	Update(ctx context.Context, shipment *Shipment) error
	FindByID(ctx context.Context, id models.ID) (*Shipment, error)
	FindByOrderID(ctx context.Context, orderID models.ID) (*Shipment, error)
}

// Carrier decides the outcome of a dispatch attempt. The saga core treats the
// outcome as externally supplied; implementations live at the edge.
type Carrier interface {
	Dispatch(ctx context.Context, shipment *Shipment) (delivered bool, reason string, err error)
}
