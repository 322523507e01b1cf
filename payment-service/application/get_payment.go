package application

import (
	"context"

	"github.com/LuanFernandes23/SagaPattern/payment-service/domain"
	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/pkg/errors"
)

// GetPaymentQuery represents the query to get a payment
type GetPaymentQuery struct {
	PaymentID string `json:"payment_id"`
}

// GetPayment use case
type GetPayment struct {
	paymentRepository domain.PaymentRepository
}

// NewGetPayment creates a new GetPayment use case
func NewGetPayment(paymentRepository domain.PaymentRepository) *GetPayment {
	return &GetPayment{paymentRepository: paymentRepository}
}

// Execute returns the payment for the given id
func (uc *GetPayment) Execute(ctx context.Context, query *GetPaymentQuery) (*domain.Payment, error) {
	paymentID, err := models.NewID(query.PaymentID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid payment ID")
	}

	payment, err := uc.paymentRepository.FindByID(ctx, paymentID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find payment")
	}

	return payment, nil
}
