package application

import (
	"context"

	"github.com/LuanFernandes23/SagaPattern/payment-service/domain"
	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/pkg/errors"
)

// RefundPaymentCommand represents the command to refund a payment. The
// payment is resolved by payment ID when given, otherwise by order ID, which
// is what the PaymentRefunded saga event carries.
type RefundPaymentCommand struct {
	PaymentID string `json:"payment_id,omitempty"`
	OrderID   string `json:"order_id,omitempty"`
	Reason    string `json:"reason"`
}

// RefundPayment use case. Only approved payments can be refunded; anything
// else surfaces domain.ErrInvalidState and the caller decides whether that is
// fatal (HTTP) or an expected redelivery (event handler).
type RefundPayment struct {
	paymentRepository domain.PaymentRepository
}

// NewRefundPayment creates a new RefundPayment use case
func NewRefundPayment(paymentRepository domain.PaymentRepository) *RefundPayment {
	return &RefundPayment{paymentRepository: paymentRepository}
}

// Execute refunds the payment
func (uc *RefundPayment) Execute(ctx context.Context, cmd *RefundPaymentCommand) error {
	payment, err := uc.resolve(ctx, cmd)
	if err != nil {
		return err
	}

	if err := payment.Refund(cmd.Reason); err != nil {
		return err
	}

	return errors.Wrap(uc.paymentRepository.Update(ctx, payment), "failed to update payment")
}

func (uc *RefundPayment) resolve(ctx context.Context, cmd *RefundPaymentCommand) (*domain.Payment, error) {
	if cmd.PaymentID != "" {
		paymentID, err := models.NewID(cmd.PaymentID)
		if err != nil {
			return nil, errors.Wrap(err, "invalid payment ID")
		}
		payment, err := uc.paymentRepository.FindByID(ctx, paymentID)
		return payment, errors.Wrap(err, "failed to find payment")
	}

	orderID, err := models.NewID(cmd.OrderID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid order ID")
	}
	payment, err := uc.paymentRepository.FindByOrderID(ctx, orderID)
	return payment, errors.Wrap(err, "failed to find payment")
}
