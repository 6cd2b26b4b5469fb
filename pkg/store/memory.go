package store

import (
	"context"
	"sort"
	"sync"

	"citystore-api-io/api/pkg/catalog"
	"citystore-api-io/api/pkg/models"
)

// MemoryProductStore keeps products in insertion order.
type MemoryProductStore struct {
	mu       sync.RWMutex
	products []models.Product
	index    map[string]int
}

func NewMemoryProductStore(seed []models.Product) *MemoryProductStore {
	s := &MemoryProductStore{index: make(map[string]int)}
	for _, p := range seed {
		p.RecomputeDerived()
		s.index[p.Id] = len(s.products)
		s.products = append(s.products, p)
	}
	return s
}

func (s *MemoryProductStore) snapshot() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *MemoryProductStore) Query(_ context.Context, q catalog.Query) (catalog.Page, error) {
	return catalog.Run(s.snapshot(), q), nil
}

func (s *MemoryProductStore) Featured(_ context.Context) ([]models.Product, error) {
	return catalog.Featured(s.snapshot()), nil
}

func (s *MemoryProductStore) Get(_ context.Context, idOrSlug string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i, ok := s.index[idOrSlug]; ok {
		p := s.products[i]
		return &p, nil
	}
	for _, p := range s.products {
		if p.Slug != "" && p.Slug == idOrSlug {
			return &p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (s *MemoryProductStore) Create(_ context.Context, p models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[p.Id]; exists {
		return ErrDuplicateId
	}
	s.index[p.Id] = len(s.products)
	s.products = append(s.products, p)
	return nil
}

func (s *MemoryProductStore) Replace(_ context.Context, p models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[p.Id]
	if !ok {
		return ErrProductNotFound
	}
	s.products[i] = p
	return nil
}

func (s *MemoryProductStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return ErrProductNotFound
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.products); j++ {
		s.index[s.products[j].Id] = j
	}
	return nil
}

type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[string]models.Order
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[string]models.Order)}
}

func (s *MemoryOrderStore) Create(_ context.Context, o models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[o.Id]; exists {
		return ErrDuplicateId
	}
	s.orders[o.Id] = o
	return nil
}

func (s *MemoryOrderStore) Get(_ context.Context, id string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &o, nil
}

func (s *MemoryOrderStore) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	return s.filter(func(o models.Order) bool { return o.UserId == userID }), nil
}

func (s *MemoryOrderStore) List(_ context.Context) ([]models.Order, error) {
	return s.filter(func(models.Order) bool { return true }), nil
}

// filter returns matching orders, newest first.
func (s *MemoryOrderStore) filter(keep func(models.Order) bool) []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Order, 0)
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Id < out[j].Id
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
