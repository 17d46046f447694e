package catalog

import (
	"context"
	"sort"
	"sync"

	"maeva_back_end/internal/models"
)

type Repository interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	SaveProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id string) error

	ListCollections(ctx context.Context) ([]models.Collection, error)
	GetCollection(ctx context.Context, id string) (*models.Collection, error)
	SaveCollection(ctx context.Context, c models.Collection) error
	DeleteCollection(ctx context.Context, id string) error

	ListBlogPosts(ctx context.Context) ([]models.BlogPost, error)

	ListReviews(ctx context.Context, productID string) ([]models.Review, error)
	AddReview(ctx context.Context, r models.Review) error
}

// MemoryRepository garde le catalogue en mémoire (développement sans ScyllaDB, tests).
type MemoryRepository struct {
	mu          sync.RWMutex
	products    map[string]models.Product
	collections map[string]models.Collection
	posts       []models.BlogPost
	reviews     map[string][]models.Review
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		products:    make(map[string]models.Product),
		collections: make(map[string]models.Collection),
		reviews:     make(map[string][]models.Review),
	}
}

// AddBlogPost ajoute un article (il n'y a pas d'écran d'administration du blog).
func (m *MemoryRepository) AddBlogPost(p models.BlogPost) {
	m.mu.Lock()
	m.posts = append(m.posts, p)
	m.mu.Unlock()
}

func (m *MemoryRepository) ListProducts(context.Context) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) GetProduct(_ context.Context, id string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryRepository) SaveProduct(_ context.Context, p models.Product) error {
	m.mu.Lock()
	m.products[p.ID] = p
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepository) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	delete(m.reviews, id)
	return nil
}

func (m *MemoryRepository) ListCollections(context.Context) ([]models.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Collection, 0, len(m.collections))
	for _, c := range m.collections {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRepository) GetCollection(_ context.Context, id string) (*models.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *MemoryRepository) SaveCollection(_ context.Context, c models.Collection) error {
	m.mu.Lock()
	m.collections[c.ID] = c
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepository) DeleteCollection(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[id]; !ok {
		return ErrNotFound
	}
	delete(m.collections, id)
	return nil
}

func (m *MemoryRepository) ListBlogPosts(context.Context) ([]models.BlogPost, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]models.BlogPost(nil), m.posts...)
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	return out, nil
}

func (m *MemoryRepository) ListReviews(_ context.Context, productID string) ([]models.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Review(nil), m.reviews[productID]...), nil
}

func (m *MemoryRepository) AddReview(_ context.Context, r models.Review) error {
	m.mu.Lock()
	m.reviews[r.ProductID] = append([]models.Review{r}, m.reviews[r.ProductID]...)
	m.mu.Unlock()
	return nil
}
