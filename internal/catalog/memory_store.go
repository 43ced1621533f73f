package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-formstate/pkg/model"
)

// MemoryStore implements Store with in-memory maps. Intended for demos and
// tests.
type MemoryStore struct {
	mu          sync.RWMutex
	products    map[string]Product
	collections map[string]Collection
	categories  map[string]Category
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:    make(map[string]Product),
		collections: make(map[string]Collection),
		categories:  make(map[string]Category),
	}
}

func (s *MemoryStore) PutProduct(_ context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = cloneProduct(p)
	return nil
}

func (s *MemoryStore) PutCollection(_ context.Context, c Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[c.ID] = c
	return nil
}

func (s *MemoryStore) PutCategory(_ context.Context, c Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
	return nil
}

func (s *MemoryStore) Product(_ context.Context, id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %q", ErrNotFound, id)
	}
	out := cloneProduct(p)
	return &out, nil
}

func (s *MemoryStore) Collection(_ context.Context, id string) (*Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[id]
	if !ok {
		return nil, fmt.Errorf("%w: collection %q", ErrNotFound, id)
	}
	return &c, nil
}

func (s *MemoryStore) SearchCollections(_ context.Context, query string, page PageRequest) (Page[Collection], error) {
	s.mu.RLock()
	var matched []Collection
	for _, c := range s.collections {
		if matches(c.Name, query) {
			matched = append(matched, c)
		}
	}
	s.mu.RUnlock()
	return paginate(matched, collectionName, collectionID, page), nil
}

func (s *MemoryStore) SearchCategories(_ context.Context, query string, page PageRequest) (Page[Category], error) {
	s.mu.RLock()
	var matched []Category
	for _, c := range s.categories {
		if matches(c.Name, query) {
			matched = append(matched, c)
		}
	}
	s.mu.RUnlock()
	return paginate(matched, categoryName, categoryID, page), nil
}

func (s *MemoryStore) UpdateProduct(_ context.Context, id string, input ProductUpdateInput) ([]model.UserError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %q", ErrNotFound, id)
	}
	updated, userErrs, err := applyProductUpdate(p, input, lookups{
		category: func(id string) (*Category, error) {
			c, ok := s.categories[id]
			if !ok {
				return nil, nil
			}
			return &c, nil
		},
		collection: func(id string) (bool, error) {
			_, ok := s.collections[id]
			return ok, nil
		},
	})
	if err != nil || len(userErrs) > 0 {
		return userErrs, err
	}
	s.products[id] = updated
	return nil, nil
}

func (s *MemoryStore) UpdateCollection(_ context.Context, id string, input CollectionUpdateInput) ([]model.UserError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[id]
	if !ok {
		return nil, fmt.Errorf("%w: collection %q", ErrNotFound, id)
	}
	updated, userErrs := applyCollectionUpdate(c, input)
	if len(userErrs) > 0 {
		return userErrs, nil
	}
	s.collections[id] = updated
	return nil, nil
}

func collectionName(c Collection) string { return c.Name }
func collectionID(c Collection) string   { return c.ID }
func categoryName(c Category) string     { return c.Name }
func categoryID(c Category) string       { return c.ID }
