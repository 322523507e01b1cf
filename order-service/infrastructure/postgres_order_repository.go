package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/LuanFernandes23/SagaPattern/order-service/domain"
	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// PostgresOrderRepository implements OrderRepository using PostgreSQL
type PostgresOrderRepository struct {
	db *sqlx.DB
}

// NewPostgresOrderRepository creates a new PostgresOrderRepository
func NewPostgresOrderRepository(db *sqlx.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

// postgresOrder represents order in database
type postgresOrder struct {
	ID              string    `db:"id"`
	CustomerID      string    `db:"customer_id"`
	Total           int64     `db:"total"`
	Currency        string    `db:"currency"`
	DeliveryAddress string    `db:"delivery_address"`
	Status          string    `db:"status"`
	FailureReason   string    `db:"failure_reason"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
	Version         int       `db:"version"`
}

// postgresOrderItem represents order line item in database
type postgresOrderItem struct {
	OrderID   string `db:"order_id"`
	ProductID string `db:"product_id"`
	Quantity  int64  `db:"quantity"`
	UnitPrice int64  `db:"unit_price"`
}

// Add inserts a new order with its line items
func (r *PostgresOrderRepository) Add(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (
			id, customer_id, total, currency, delivery_address, status,
			failure_reason, created_at, updated_at, version
		) VALUES (
			:id, :customer_id, :total, :currency, :delivery_address, :status,
			:failure_reason, :created_at, :updated_at, :version
		)`

	if _, err := tx.NamedExecContext(ctx, query, r.toPostgres(order)); err != nil {
		return errors.Wrap(err, "failed to insert order")
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price)
		VALUES (:order_id, :product_id, :quantity, :unit_price)`

	for _, item := range order.Items {
		row := &postgresOrderItem{
			OrderID:   order.ID.String(),
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.Amount,
		}
		if _, err := tx.NamedExecContext(ctx, itemQuery, row); err != nil {
			return errors.Wrap(err, "failed to insert order item")
		}
	}

	return tx.Commit()
}

// Update updates an existing order with optimistic locking
func (r *PostgresOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders
		SET status = :status, failure_reason = :failure_reason,
			updated_at = :updated_at, version = :version
		WHERE id = :id AND version = :old_version`

	res, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":             order.ID.String(),
		"status":         string(order.Status),
		"failure_reason": order.FailureReason,
		"updated_at":     order.Timestamps.UpdatedAt,
		"version":        order.Version.Value,
		"old_version":    order.Version.Value - 1,
	})
	if err != nil {
		return errors.Wrap(err, "failed to update order")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read update result")
	}
	if affected == 0 {
		return errors.Errorf("concurrent update of order %s", order.ID)
	}

	return nil
}

// FindByID finds an order by ID
func (r *PostgresOrderRepository) FindByID(ctx context.Context, id models.ID) (*domain.Order, error) {
	query := `
		SELECT id, customer_id, total, currency, delivery_address, status,
			   failure_reason, created_at, updated_at, version
		FROM orders
		WHERE id = $1`

	var pgOrder postgresOrder
	if err := r.db.GetContext(ctx, &pgOrder, query, id.String()); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "failed to find order")
	}

	itemQuery := `
		SELECT order_id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = $1`

	var pgItems []postgresOrderItem
	if err := r.db.SelectContext(ctx, &pgItems, itemQuery, id.String()); err != nil {
		return nil, errors.Wrap(err, "failed to find order items")
	}

	return r.toDomain(&pgOrder, pgItems)
}

// toPostgres converts domain order to postgres model
func (r *PostgresOrderRepository) toPostgres(order *domain.Order) *postgresOrder {
	return &postgresOrder{
		ID:              order.ID.String(),
		CustomerID:      order.CustomerID.String(),
		Total:           order.Total.Amount,
		Currency:        order.Total.Currency,
		DeliveryAddress: order.DeliveryAddress,
		Status:          string(order.Status),
		FailureReason:   order.FailureReason,
		CreatedAt:       order.Timestamps.CreatedAt,
		UpdatedAt:       order.Timestamps.UpdatedAt,
		Version:         order.Version.Value,
	}
}

// toDomain converts postgres model to domain order
func (r *PostgresOrderRepository) toDomain(pgOrder *postgresOrder, pgItems []postgresOrderItem) (*domain.Order, error) {
	id, err := models.NewID(pgOrder.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid order ID")
	}

	customerID, err := models.NewID(pgOrder.CustomerID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid customer ID")
	}

	items := make([]domain.OrderItem, len(pgItems))
	for i, pgItem := range pgItems {
		productID, err := models.NewID(pgItem.ProductID)
		if err != nil {
			return nil, errors.Wrap(err, "invalid product ID")
		}
		items[i] = domain.OrderItem{
			ProductID: productID,
			Quantity:  pgItem.Quantity,
			UnitPrice: models.NewMoney(pgItem.UnitPrice, pgOrder.Currency),
		}
	}

	return &domain.Order{
		ID:              id,
		CustomerID:      customerID,
		Items:           items,
		Total:           models.NewMoney(pgOrder.Total, pgOrder.Currency),
		DeliveryAddress: pgOrder.DeliveryAddress,
		Status:          domain.OrderStatus(pgOrder.Status),
		FailureReason:   pgOrder.FailureReason,
		Timestamps: models.Timestamps{
			CreatedAt: pgOrder.CreatedAt,
			UpdatedAt: pgOrder.UpdatedAt,
		},
		Version: models.Version{Value: pgOrder.Version},
	}, nil
}
