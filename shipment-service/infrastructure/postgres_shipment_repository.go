package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/LuanFernandes23/SagaPattern/shipment-service/domain"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// PostgresShipmentRepository implements ShipmentRepository using PostgreSQL
type PostgresShipmentRepository struct {
	db *sqlx.DB
}

// NewPostgresShipmentRepository creates a new PostgresShipmentRepository
func NewPostgresShipmentRepository(db *sqlx.DB) *PostgresShipmentRepository {
	return &PostgresShipmentRepository{db: db}
}

// postgresShipment represents shipment in database
type postgresShipment struct {
	ID              string    `db:"id"`
	OrderID         string    `db:"order_id"`
	DeliveryAddress string    `db:"delivery_address"`
	Status          string    `db:"status"`
	FailureReason   string    `db:"failure_reason"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
	Version         int       `db:"version"`
}

// Add inserts a new shipment
func (r *PostgresShipmentRepository) Add(ctx context.Context, shipment *domain.Shipment) error {
	query := `
		INSERT INTO shipments (
			id, order_id, delivery_address, status, failure_reason,
			created_at, updated_at, version
		) VALUES (
			:id, :order_id, :delivery_address, :status, :failure_reason,
			:created_at, :updated_at, :version
		)`

	if _, err := r.db.NamedExecContext(ctx, query, r.toPostgres(shipment)); err != nil {
		return errors.Wrap(err, "failed to insert shipment")
	}

	return nil
}

// Update updates an existing shipment with optimistic locking
func (r *PostgresShipmentRepository) Update(ctx context.Context, shipment *domain.Shipment) error {
	query := `
		UPDATE shipments
		SET status = :status, failure_reason = :failure_reason,
			updated_at = :updated_at, version = :version
		WHERE id = :id AND version = :old_version`

	res, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":             shipment.ID.String(),
		"status":         string(shipment.Status),
		"failure_reason": shipment.FailureReason,
		"updated_at":     shipment.Timestamps.UpdatedAt,
		"version":        shipment.Version.Value,
		"old_version":    shipment.Version.Value - 1,
	})
	if err != nil {
		return errors.Wrap(err, "failed to update shipment")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read update result")
	}
	if affected == 0 {
		return errors.Errorf("concurrent update of shipment %s", shipment.ID)
	}

	return nil
}

// FindByID finds a shipment by ID
func (r *PostgresShipmentRepository) FindByID(ctx context.Context, id models.ID) (*domain.Shipment, error) {
	query := `
		SELECT id, order_id, delivery_address, status, failure_reason,
			   created_at, updated_at, version
		FROM shipments
		WHERE id = $1`

	return r.findOne(ctx, query, id.String())
}

// FindByOrderID finds the shipment created for an order
func (r *PostgresShipmentRepository) FindByOrderID(ctx context.Context, orderID models.ID) (*domain.Shipment, error) {
	query := `
		SELECT id, order_id, delivery_address, status, failure_reason,
			   created_at, updated_at, version
		FROM shipments
		WHERE order_id = $1`

	return r.findOne(ctx, query, orderID.String())
}

func (r *PostgresShipmentRepository) findOne(ctx context.Context, query string, arg string) (*domain.Shipment, error) {
	var pgShipment postgresShipment
	if err := r.db.GetContext(ctx, &pgShipment, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, errors.Wrap(err, "failed to find shipment")
	}

	return r.toDomain(&pgShipment)
}

// toPostgres converts domain shipment to postgres model
func (r *PostgresShipmentRepository) toPostgres(shipment *domain.Shipment) *postgresShipment {
	return &postgresShipment{
		ID:              shipment.ID.String(),
		OrderID:         shipment.OrderID.String(),
		DeliveryAddress: shipment.DeliveryAddress,
		Status:          string(shipment.Status),
		FailureReason:   shipment.FailureReason,
		CreatedAt:       shipment.Timestamps.CreatedAt,
		UpdatedAt:       shipment.Timestamps.UpdatedAt,
		Version:         shipment.Version.Value,
	}
}

// toDomain converts postgres model to domain shipment
func (r *PostgresShipmentRepository) toDomain(pgShipment *postgresShipment) (*domain.Shipment, error) {
	id, err := models.NewID(pgShipment.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid shipment ID")
	}

	orderID, err := models.NewID(pgShipment.OrderID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid order ID")
	}

	return &domain.Shipment{
		ID:              id,
		OrderID:         orderID,
		DeliveryAddress: pgShipment.DeliveryAddress,
		Status:          domain.ShipmentStatus(pgShipment.Status),
		FailureReason:   pgShipment.FailureReason,
		Timestamps: models.Timestamps{
			CreatedAt: pgShipment.CreatedAt,
			UpdatedAt: pgShipment.UpdatedAt,
		},
		Version: models.Version{Value: pgShipment.Version},
	}, nil
}
