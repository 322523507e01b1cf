package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/LuanFernandes23/SagaPattern/payment-service/domain"
	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// PostgresPaymentRepository implements PaymentRepository using PostgreSQL
type PostgresPaymentRepository struct {
	db *sqlx.DB
}

// NewPostgresPaymentRepository creates a new PostgresPaymentRepository
func NewPostgresPaymentRepository(db *sqlx.DB) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{db: db}
}

// postgresPayment represents payment in database
type postgresPayment struct {
	ID            string    `db:"id"`
	OrderID       string    `db:"order_id"`
	Amount        int64     `db:"amount"`
	Currency      string    `db:"currency"`
	Method        string    `db:"method"`
	Status        string    `db:"status"`
	FailureReason string    `db:"failure_reason"`
	ProcessedAt   time.Time `db:"processed_at"`
	Version       int       `db:"version"`
}

// Add inserts a new payment
func (r *PostgresPaymentRepository) Add(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			id, order_id, amount, currency, method, status,
			failure_reason, processed_at, version
		) VALUES (
			:id, :order_id, :amount, :currency, :method, :status,
			:failure_reason, :processed_at, :version
		)`

	if _, err := r.db.NamedExecContext(ctx, query, r.toPostgres(payment)); err != nil {
		return errors.Wrap(err, "failed to insert payment")
	}

	return nil
}

// Update updates an existing payment with optimistic locking
func (r *PostgresPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET status = :status, failure_reason = :failure_reason,
			processed_at = :processed_at, version = :version
		WHERE id = :id AND version = :old_version`

	res, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":             payment.ID.String(),
		"status":         string(payment.Status),
		"failure_reason": payment.FailureReason,
		"processed_at":   payment.ProcessedAt,
		"version":        payment.Version.Value,
		"old_version":    payment.Version.Value - 1,
	})
	if err != nil {
		return errors.Wrap(err, "failed to update payment")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read update result")
	}
	if affected == 0 {
		return errors.Errorf("concurrent update of payment %s", payment.ID)
	}

	return nil
}

// FindByID finds a payment by ID
func (r *PostgresPaymentRepository) FindByID(ctx context.Context, id models.ID) (*domain.Payment, error) {
	query := `
		SELECT id, order_id, amount, currency, method, status,
			   failure_reason, processed_at, version
		FROM payments
		WHERE id = $1`

	return r.findOne(ctx, query, id.String())
}

// FindByOrderID finds the payment created for an order
func (r *PostgresPaymentRepository) FindByOrderID(ctx context.Context, orderID models.ID) (*domain.Payment, error) {
	query := `
		SELECT id, order_id, amount, currency, method, status,
			   failure_reason, processed_at, version
		FROM payments
		WHERE order_id = $1`

	return r.findOne(ctx, query, orderID.String())
}

func (r *PostgresPaymentRepository) findOne(ctx context.Context, query string, arg string) (*domain.Payment, error) {
	var pgPayment postgresPayment
	if err := r.db.GetContext(ctx, &pgPayment, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, errors.Wrap(err, "failed to find payment")
	}

	return r.toDomain(&pgPayment)
}

// toPostgres converts domain payment to postgres model
func (r *PostgresPaymentRepository) toPostgres(payment *domain.Payment) *postgresPayment {
	return &postgresPayment{
		ID:            payment.ID.String(),
		OrderID:       payment.OrderID.String(),
		Amount:        payment.Amount.Amount,
		Currency:      payment.Amount.Currency,
		Method:        payment.Method,
		Status:        string(payment.Status),
		FailureReason: payment.FailureReason,
		ProcessedAt:   payment.ProcessedAt,
		Version:       payment.Version.Value,
	}
}

// toDomain converts postgres model to domain payment
func (r *PostgresPaymentRepository) toDomain(pgPayment *postgresPayment) (*domain.Payment, error) {
	id, err := models.NewID(pgPayment.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid payment ID")
	}

	orderID, err := models.NewID(pgPayment.OrderID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid order ID")
	}

	return &domain.Payment{
		ID:            id,
		OrderID:       orderID,
		Amount:        models.NewMoney(pgPayment.Amount, pgPayment.Currency),
		Method:        pgPayment.Method,
		Status:        domain.PaymentStatus(pgPayment.Status),
		FailureReason: pgPayment.FailureReason,
		ProcessedAt:   pgPayment.ProcessedAt,
		Version:       models.Version{Value: pgPayment.Version},
	}, nil
}
