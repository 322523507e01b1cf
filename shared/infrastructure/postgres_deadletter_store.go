package infrastructure

import (
	"context"
	"time"

	"github.com/LuanFernandes23/SagaPattern/shared/messaging"
	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var _ messaging.DeadLetterSink = (*PostgresDeadLetterStore)(nil)

// PostgresDeadLetterStore persists rejected messages so they can be inspected
// and replayed by hand. The raw envelope is kept verbatim; a malformed
// message is stored exactly as it arrived.
type PostgresDeadLetterStore struct {
	db *sqlx.DB
}

// NewPostgresDeadLetterStore creates a new PostgresDeadLetterStore
func NewPostgresDeadLetterStore(db *sqlx.DB) *PostgresDeadLetterStore {
	return &PostgresDeadLetterStore{db: db}
}

type postgresDeadLetter struct {
	ID          string    `db:"id"`
	MessageID   string    `db:"message_id"`
	MessageType string    `db:"message_type"`
	OrderID     string    `db:"order_id"`
	Body        []byte    `db:"body"`
	Cause       string    `db:"cause"`
	RejectedAt  time.Time `db:"rejected_at"`
}

// Store saves one rejected message together with its cause
func (s *PostgresDeadLetterStore) Store(ctx context.Context, msg *messaging.Message, cause error) error {
	body, err := msg.ToJSON()
	if err != nil {
		body = msg.Payload
	}

	orderID := ""
	if id, err := msg.OrderID(); err == nil {
		orderID = id.String()
	}

	row := &postgresDeadLetter{
		ID:          models.GenerateUUID().String(),
		MessageID:   msg.ID.String(),
		MessageType: msg.Type,
		OrderID:     orderID,
		Body:        body,
		Cause:       cause.Error(),
		RejectedAt:  time.Now().UTC(),
	}

	query := `
		INSERT INTO dead_letters (
			id, message_id, message_type, order_id, body, cause, rejected_at
		) VALUES (
			:id, :message_id, :message_type, :order_id, :body, :cause, :rejected_at
		)`

	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return errors.Wrap(err, "failed to insert dead letter")
	}
	return nil
}

// FindByOrderID returns the rejected messages recorded for an order, oldest
// first.
func (s *PostgresDeadLetterStore) FindByOrderID(ctx context.Context, orderID models.ID) ([]*messaging.Message, error) {
	query := `
		SELECT body FROM dead_letters
		WHERE order_id = $1
		ORDER BY rejected_at ASC`

	var bodies [][]byte
	if err := s.db.SelectContext(ctx, &bodies, query, orderID.String()); err != nil {
		return nil, errors.Wrap(err, "failed to query dead letters")
	}

	msgs := make([]*messaging.Message, 0, len(bodies))
	for _, body := range bodies {
		msg, err := messaging.FromJSON(body)
		if err != nil {
			// Malformed envelopes are stored verbatim and cannot round-trip.
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}
