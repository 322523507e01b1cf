package domain

import (
	"context"
	"time"

	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/pkg/errors"
)

var (
	// ErrPaymentNotFound is returned by repositories when no payment exists for an id
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrInvalidState marks a payment status change the state machine forbids
	ErrInvalidState = errors.New("invalid payment state")
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusRefused  PaymentStatus = "refused"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Payment aggregate root. Refunded is only reachable from Approved.
type Payment struct {
	ID            models.ID
	OrderID       models.ID
	Amount        models.Money
	Method        string
	Status        PaymentStatus
	FailureReason string
	ProcessedAt   time.Time
	Version       models.Version
}

// CreatePayment creates a pending payment for an order. The amount must be
// the order total at creation time.
func CreatePayment(orderID models.ID, amount models.Money, method string) (*Payment, error) {
	if orderID.IsEmpty() {
		return nil, errors.New("order id is required")
	}
	if !amount.IsPositive() {
		return nil, errors.New("amount must be positive")
	}
	if method == "" {
		return nil, errors.New("payment method is required")
	}

	return &Payment{
		ID:          models.GenerateUUID(),
		OrderID:     orderID,
		Amount:      amount,
		Method:      method,
		Status:      PaymentStatusPending,
		ProcessedAt: time.Now().UTC(),
		Version:     models.NewVersion(),
	}, nil
}

// Approve marks a pending payment as captured
func (p *Payment) Approve() error {
	if p.Status != PaymentStatusPending {
		return errors.Wrapf(ErrInvalidState, "cannot approve a %s payment", p.Status)
	}

	p.Status = PaymentStatusApproved
	p.ProcessedAt = time.Now().UTC()
	p.Version = p.Version.Update()
	return nil
}

// Refuse marks a pending payment as declined
func (p *Payment) Refuse(reason string) error {
	if p.Status != PaymentStatusPending {
		return errors.Wrapf(ErrInvalidState, "cannot refuse a %s payment", p.Status)
	}

	p.Status = PaymentStatusRefused
	p.FailureReason = reason
	p.ProcessedAt = time.Now().UTC()
	p.Version = p.Version.Update()
	return nil
}

// Refund compensates a captured payment. Only approved payments can be
// refunded.
func (p *Payment) Refund(reason string) error {
	if p.Status != PaymentStatusApproved {
		return errors.Wrapf(ErrInvalidState, "only approved payments can be refunded, payment is %s", p.Status)
	}

	p.Status = PaymentStatusRefunded
	if reason != "" {
		p.FailureReason = reason
	}
	p.ProcessedAt = time.Now().UTC()
	p.Version = p.Version.Update()
	return nil
}

// PaymentRepository is the durable store contract for payments
type PaymentRepository interface {
	Add(ctx context.Context, payment *Payment) error
	Update(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id models.ID) (*Payment, error)
	FindByOrderID(ctx context.Context, orderID models.ID) (*Payment, error)
}

// Gateway decides the outcome of a capture attempt. The saga core treats the
// outcome as externally supplied; implementations live at the edge.
type Gateway interface {
	Authorize(ctx context.Context, payment *Payment) (approved bool, reason string, err error)
}
