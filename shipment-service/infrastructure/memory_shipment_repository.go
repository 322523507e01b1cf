package infrastructure

import (
	"context"
	"sync"

	"github.com/LuanFernandes23/SagaPattern/shared/models"
	"github.com/LuanFernandes23/SagaPattern/shipment-service/domain"
)

// MemoryShipmentRepository is an in-memory ShipmentRepository used in tests
// and local runs
type MemoryShipmentRepository struct {
	mux       sync.RWMutex
	shipments map[models.ID]*domain.Shipment
}

// NewMemoryShipmentRepository creates an empty repository
func NewMemoryShipmentRepository() *MemoryShipmentRepository {
	return &MemoryShipmentRepository{shipments: make(map[models.ID]*domain.Shipment)}
}

// Add stores a new shipment
func (r *MemoryShipmentRepository) Add(_ context.Context, shipment *domain.Shipment) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	copied := *shipment
	r.shipments[shipment.ID] = &copied
	return nil
}

// Update replaces a stored shipment
func (r *MemoryShipmentRepository) Update(_ context.Context, shipment *domain.Shipment) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	if _, ok := r.shipments[shipment.ID]; !ok {
		return domain.ErrShipmentNotFound
	}
	copied := *shipment
	r.shipments[shipment.ID] = &copied
	return nil
}

// FindByID returns the shipment for the given id
func (r *MemoryShipmentRepository) FindByID(_ context.Context, id models.ID) (*domain.Shipment, error) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	shipment, ok := r.shipments[id]
	if !ok {
		return nil, domain.ErrShipmentNotFound
	}
	copied := *shipment
	return &copied, nil
}

// FindByOrderID returns the shipment created for an order
func (r *MemoryShipmentRepository) FindByOrderID(_ context.Context, orderID models.ID) (*domain.Shipment, error) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	for _, shipment := range r.shipments {
		if shipment.OrderID == orderID {
			copied := *shipment
			return &copied, nil
		}
	}
	return nil, domain.ErrShipmentNotFound
}
