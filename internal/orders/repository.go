package orders

import (
	"context"
	"sync"
	"time"

	"maeva_back_end/internal/models"
)

type Repository interface {
	Insert(ctx context.Context, o models.Order) error
	Get(ctx context.Context, trackingCode string) (*models.Order, error)
	UpdateStatus(ctx context.Context, trackingCode, status string, history []models.StatusEvent, updatedAt time.Time) error
	SetPaymentIntent(ctx context.Context, trackingCode, intentID string) error
}

// MemoryRepository garde les commandes en mémoire (développement sans ScyllaDB, tests).
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]models.Order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orders: make(map[string]models.Order)}
}

func (m *MemoryRepository) Insert(_ context.Context, o models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.TrackingCode] = o
	return nil
}

func (m *MemoryRepository) Get(_ context.Context, trackingCode string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[trackingCode]
	if !ok {
		return nil, ErrNotFound
	}
	o.History = append([]models.StatusEvent(nil), o.History...)
	return &o, nil
}

func (m *MemoryRepository) UpdateStatus(_ context.Context, trackingCode, status string, history []models.StatusEvent, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[trackingCode]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	o.History = append([]models.StatusEvent(nil), history...)
	o.UpdatedAt = updatedAt
	m.orders[trackingCode] = o
	return nil
}

func (m *MemoryRepository) SetPaymentIntent(_ context.Context, trackingCode, intentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[trackingCode]
	if !ok {
		return ErrNotFound
	}
	o.PaymentIntentID = intentID
	m.orders[trackingCode] = o
	return nil
}
