package store

import "sync"

// InMemoryBackend keeps the last written table in memory. Nothing survives the process.
type InMemoryBackend struct {
	mu       sync.RWMutex
	products []Product
	exists   bool
	writes   int
}

// NewInMemoryBackend creates a backend with no persisted table.
func NewInMemoryBackend() *InMemoryBackend {
	return &InMemoryBackend{}
}

// NewInMemoryBackendWith creates a backend that already holds products.
func NewInMemoryBackendWith(products []Product) *InMemoryBackend {
	b := &InMemoryBackend{exists: true}
	b.products = append([]Product(nil), products...)
	return b
}

// Read returns a copy of the last written table.
func (b *InMemoryBackend) Read() ([]Product, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.exists {
		return nil, ErrTableNotExist
	}
	list := make([]Product, len(b.products))
	copy(list, b.products)
	return list, nil
}

// Write stores a copy of products.
func (b *InMemoryBackend) Write(products []Product) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.products = append([]Product(nil), products...)
	b.exists = true
	b.writes++
	return nil
}

// Writes reports how many times the table has been rewritten.
func (b *InMemoryBackend) Writes() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.writes
}
