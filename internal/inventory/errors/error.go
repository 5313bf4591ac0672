// Package errors provides the error taxonomy for inventory operations.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks rejected input: an empty required field or a duplicate product ID.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateProduct is the ErrValidation returned when a product ID is already taken.
	ErrDuplicateProduct = fmt.Errorf("%w: product ID already exists", ErrValidation)
	// ErrProductNotFound marks a reference to a product ID that is not in the store.
	ErrProductNotFound = errors.New("product not found")
	// ErrStorage marks a backing table that could not be read, parsed or written.
	ErrStorage = errors.New("storage failure")
)
