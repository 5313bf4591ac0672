package store

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode"

	perrors "github.com/abgdnv/stockguard/internal/inventory/errors"
)

// Store implements ProductStore as an ordered in-memory table written through a Backend.
type Store struct {
	mu       sync.RWMutex
	backend  Backend
	products []Product
	index    map[string]int
	lastErr  error
}

var _ ProductStore = (*Store)(nil)

// New creates an empty Store on top of backend. Call Load before use.
func New(backend Backend) *Store {
	return &Store{
		backend: backend,
		index:   make(map[string]int),
	}
}

// Load replaces the in-memory table with the backend contents.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.backend.Read()
	if err != nil {
		if errors.Is(err, ErrTableNotExist) {
			s.products = nil
			s.reindex()
			return s.persist()
		}
		return fmt.Errorf("%w: %w", perrors.ErrStorage, err)
	}

	index := make(map[string]int, len(products))
	for i, p := range products {
		if p.ID == "" || p.Name == "" {
			return fmt.Errorf("%w: record %d has an empty product ID or name", perrors.ErrStorage, i+1)
		}
		if _, dup := index[p.ID]; dup {
			return fmt.Errorf("%w: record %d duplicates product ID %q", perrors.ErrStorage, i+1, p.ID)
		}
		index[p.ID] = i
	}
	s.products = products
	s.index = index
	s.lastErr = nil
	return nil
}

// Add appends a new product and persists the table. IDs and names may not hold
// control characters, since the CSV reader turns a quoted CRLF into LF.
func (s *Store) Add(id, name string, stock, dailyDemand int) (Product, error) {
	if id == "" {
		return Product{}, fmt.Errorf("%w: product ID cannot be empty", perrors.ErrValidation)
	}
	if name == "" {
		return Product{}, fmt.Errorf("%w: product name cannot be empty", perrors.ErrValidation)
	}
	if strings.ContainsFunc(id, unicode.IsControl) {
		return Product{}, fmt.Errorf("%w: product ID cannot contain control characters", perrors.ErrValidation)
	}
	if strings.ContainsFunc(name, unicode.IsControl) {
		return Product{}, fmt.Errorf("%w: product name cannot contain control characters", perrors.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[id]; exists {
		return Product{}, fmt.Errorf("%w: %q", perrors.ErrDuplicateProduct, id)
	}

	product := Product{ID: id, Name: name, Stock: stock, DailyDemand: dailyDemand}
	s.products = append(s.products, product)
	s.index[id] = len(s.products) - 1

	if err := s.persist(); err != nil {
		s.products = s.products[:len(s.products)-1]
		delete(s.index, id)
		return Product{}, err
	}
	return product, nil
}

// UpdateStock overwrites the stock of an existing product and persists the table.
func (s *Store) UpdateStock(id string, stock int) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: %q", perrors.ErrProductNotFound, id)
	}

	previous := s.products[i].Stock
	s.products[i].Stock = stock
	if err := s.persist(); err != nil {
		s.products[i].Stock = previous
		return Product{}, err
	}
	return s.products[i], nil
}

// Delete removes a product and persists the table.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return false, nil
	}

	previous := s.products
	s.products = slices.Concat(previous[:i], previous[i+1:])
	s.reindex()
	if err := s.persist(); err != nil {
		s.products = previous
		s.reindex()
		return false, err
	}
	return true, nil
}

// Find retrieves a product by its ID.
func (s *Store) Find(id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: %q", perrors.ErrProductNotFound, id)
	}
	return s.products[i], nil
}

// Snapshot returns a copy of all products in insertion order.
func (s *Store) Snapshot() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, len(s.products))
	copy(list, s.products)
	return list
}

// DurabilityErr returns the error of the last failed persist, or nil.
func (s *Store) DurabilityErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// persist writes the full table. Callers hold the write lock.
func (s *Store) persist() error {
	if err := s.backend.Write(s.products); err != nil {
		s.lastErr = err
		return fmt.Errorf("%w: %w", perrors.ErrStorage, err)
	}
	s.lastErr = nil
	return nil
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.products))
	for i, p := range s.products {
		s.index[p.ID] = i
	}
}
