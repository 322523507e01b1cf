package infrastructure

import (
	"context"
	"sync"

	"github.com/LuanFernandes23/SagaPattern/order-service/domain"
	"github.com/LuanFernandes23/SagaPattern/shared/models"
)

// MemoryOrderRepository is an in-memory OrderRepository used in tests and
// local runs
type MemoryOrderRepository struct {
	mux    sync.RWMutex
	orders map[models.ID]*domain.Order
}

// NewMemoryOrderRepository creates an empty repository
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[models.ID]*domain.Order)}
}

// Add stores a new order
func (r *MemoryOrderRepository) Add(_ context.Context, order *domain.Order) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

// Update replaces a stored order
func (r *MemoryOrderRepository) Update(_ context.Context, order *domain.Order) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	if _, ok := r.orders[order.ID]; !ok {
		return domain.ErrOrderNotFound
	}
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

// FindByID returns the order for the given id
func (r *MemoryOrderRepository) FindByID(_ context.Context, id models.ID) (*domain.Order, error) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}
