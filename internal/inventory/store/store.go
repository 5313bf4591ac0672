// Package store provides the inventory record store and its backing table formats.
package store

import "errors"

// ErrTableNotExist is returned by a Backend when no table has been persisted yet.
var ErrTableNotExist = errors.New("inventory table does not exist")

// Product is one tracked inventory row.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Stock       int    `json:"stock"`
	DailyDemand int    `json:"daily_demand"`
}

// ProductStore is an interface for product storage operations.
// Every mutating method persists the full table before it returns.
type ProductStore interface {
	// Load reads the backing table, creating an empty one when none exists.
	// Returns ErrStorage if the table is unreadable or malformed.
	Load() error

	// Add appends a new product.
	// Returns ErrValidation if id or name is empty or id already exists.
	Add(id, name string, stock, dailyDemand int) (Product, error)

	// UpdateStock replaces the stock of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	UpdateStock(id string, stock int) (Product, error)

	// Delete removes a product by its ID.
	// Reports false without an error if no product exists with the given ID.
	Delete(id string) (bool, error)

	// Find retrieves a single product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Find(id string) (Product, error)

	// Snapshot returns a copy of all products in insertion order.
	Snapshot() []Product

	// DurabilityErr returns the error of the last failed persist, or nil.
	DurabilityErr() error
}

// Backend reads and writes the whole product table.
type Backend interface {
	// Read returns every persisted product in table order.
	// Returns ErrTableNotExist if nothing has been persisted yet.
	Read() ([]Product, error)

	// Write replaces the persisted table with products.
	Write(products []Product) error
}
