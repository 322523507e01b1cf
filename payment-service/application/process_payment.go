package application

import (
	"context"
	"log/slog"

	orderdomain "github.com/LuanFernandes23/SagaPattern/order-service/domain"
	"github.com/LuanFernandes23/SagaPattern/payment-service/domain"
	"github.com/LuanFernandes23/SagaPattern/shared/messaging"
	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/pkg/errors"
)

// OrderStore resolves the order a payment capture refers to
type OrderStore interface {
	FindByID(ctx context.Context, id models.ID) (*orderdomain.Order, error)
}

// ProcessPaymentCommand represents the ProcessPayment saga command
type ProcessPaymentCommand struct {
	OrderID models.ID `json:"order_id"`
	Method  string    `json:"method"`
}

// ProcessPayment use case. Captures the order total through the gateway and
// publishes exactly one outcome event, PaymentApproved or PaymentRefused. A
// command for an unknown order refuses rather than crashes: the saga must
// terminate either way.
//
// Redelivery safe: if a payment already exists for the order, the stored
// outcome is republished instead of charging twice.
type ProcessPayment struct {
	paymentRepository domain.PaymentRepository
	orders            OrderStore
	gateway           domain.Gateway
	publisher         messaging.Publisher
	logger            *slog.Logger
}

// NewProcessPayment creates a new ProcessPayment use case
func NewProcessPayment(
	paymentRepository domain.PaymentRepository,
	orders OrderStore,
	gateway domain.Gateway,
	publisher messaging.Publisher,
	logger *slog.Logger,
) *ProcessPayment {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessPayment{
		paymentRepository: paymentRepository,
		orders:            orders,
		gateway:           gateway,
		publisher:         publisher,
		logger:            logger,
	}
}

// Execute processes one payment capture attempt
func (uc *ProcessPayment) Execute(ctx context.Context, cmd *ProcessPaymentCommand) error {
	if cmd.OrderID.IsEmpty() {
		return errors.New("order ID is required")
	}

	payment, err := uc.paymentRepository.FindByOrderID(ctx, cmd.OrderID)
	if err != nil && !errors.Is(err, domain.ErrPaymentNotFound) {
		return errors.Wrap(err, "failed to look up payment")
	}
	if payment != nil && payment.Status != domain.PaymentStatusPending {
		uc.logger.Info("payment already processed, republishing outcome",
			"order_id", cmd.OrderID, "status", payment.Status)
		return uc.publishOutcome(ctx, payment)
	}

	if payment == nil {
		order, err := uc.orders.FindByID(ctx, cmd.OrderID)
		if err != nil {
			if errors.Is(err, orderdomain.ErrOrderNotFound) {
				uc.logger.Warn("refusing payment for unknown order", "order_id", cmd.OrderID)
				return uc.refuse(ctx, cmd.OrderID, "order not found")
			}
			return errors.Wrap(err, "failed to load order")
		}

		payment, err = domain.CreatePayment(cmd.OrderID, order.Total, cmd.Method)
		if err != nil {
			return errors.Wrap(err, "failed to create payment")
		}

		// Persisted before the gateway call so a crash mid-capture resumes
		// from the pending record instead of charging again.
		if err := uc.paymentRepository.Add(ctx, payment); err != nil {
			return errors.Wrap(err, "failed to save payment")
		}
	}

	approved, reason, err := uc.gateway.Authorize(ctx, payment)
	if err != nil {
		return errors.Wrap(err, "gateway authorization failed")
	}

	if approved {
		if err := payment.Approve(); err != nil {
			return err
		}
	} else {
		if err := payment.Refuse(reason); err != nil {
			return err
		}
	}

	if err := uc.paymentRepository.Update(ctx, payment); err != nil {
		return errors.Wrap(err, "failed to update payment")
	}

	return uc.publishOutcome(ctx, payment)
}

func (uc *ProcessPayment) publishOutcome(ctx context.Context, payment *domain.Payment) error {
	switch payment.Status {
	case domain.PaymentStatusApproved:
		outcome, err := messaging.NewMessage(messaging.TypePaymentApproved, messaging.PaymentApproved{
			OrderID: payment.OrderID,
		})
		if err != nil {
			return err
		}
		outcome.WithOrderID(payment.OrderID)
		return errors.Wrap(uc.publisher.Publish(ctx, outcome), "failed to publish PaymentApproved")
	case domain.PaymentStatusRefused:
		return uc.refuse(ctx, payment.OrderID, payment.FailureReason)
	default:
		// Refunded payments already had their outcome published once.
		return nil
	}
}

func (uc *ProcessPayment) refuse(ctx context.Context, orderID models.ID, reason string) error {
	outcome, err := messaging.NewMessage(messaging.TypePaymentRefused, messaging.PaymentRefused{
		OrderID: orderID,
		Reason:  reason,
	})
	if err != nil {
		return err
	}
	outcome.WithOrderID(orderID).WithHeader(messaging.HeaderReason, reason)

	return errors.Wrap(uc.publisher.Publish(ctx, outcome), "failed to publish PaymentRefused")
}
