package infrastructure

import (
	"context"
	"sync"

	"github.com/LuanFernandes23/SagaPattern/payment-service/domain"
	"github.com/LuanFernandes23/SagaPattern/shared/models"
)

// MemoryPaymentRepository is an in-memory PaymentRepository used in tests and
// local runs
type MemoryPaymentRepository struct {
	mux      sync.RWMutex
	payments map[models.ID]*domain.Payment
}

// NewMemoryPaymentRepository creates an empty repository
func NewMemoryPaymentRepository() *MemoryPaymentRepository {
	return &MemoryPaymentRepository{payments: make(map[models.ID]*domain.Payment)}
}

// Add stores a new payment
func (r *MemoryPaymentRepository) Add(_ context.Context, payment *domain.Payment) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	copied := *payment
	r.payments[payment.ID] = &copied
	return nil
}

// Update replaces a stored payment
func (r *MemoryPaymentRepository) Update(_ context.Context, payment *domain.Payment) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	if _, ok := r.payments[payment.ID]; !ok {
		return domain.ErrPaymentNotFound
	}
	copied := *payment
	r.payments[payment.ID] = &copied
	return nil
}

// FindByID returns the payment for the given id
func (r *MemoryPaymentRepository) FindByID(_ context.Context, id models.ID) (*domain.Payment, error) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	payment, ok := r.payments[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	copied := *payment
	return &copied, nil
}

// FindByOrderID returns the payment created for an order
func (r *MemoryPaymentRepository) FindByOrderID(_ context.Context, orderID models.ID) (*domain.Payment, error) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	for _, payment := range r.payments {
		if payment.OrderID == orderID {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}
