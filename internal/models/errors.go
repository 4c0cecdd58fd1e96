package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by repositories and services. Callers distinguish
// business outcomes with errors.Is/errors.As; anything else wrapping a store
// failure is treated as infrastructure and is safe to retry.
var (
	// ErrNotFound means an entity id did not resolve.
	ErrNotFound = errors.New("not found")
	// ErrInvalidStatus means a status string outside the closed set.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidTransition means a state-machine edge that does not exist.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrInvalidState means the operation is not allowed in the current state.
	ErrInvalidState = errors.New("invalid state")
	// ErrStockConflict is returned by a conditional stock decrement whose
	// guard failed; the stock ledger enriches it into InsufficientStockError.
	ErrStockConflict = errors.New("stock conflict")
	// ErrConcurrencyConflict means a version-guarded write lost a race.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)

// ValidationError reports a malformed or missing required field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// InsufficientStockError reports a stock reservation that exceeded the
// available quantity for one product.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (requested: %d, available: %d)",
		e.ProductID, e.Requested, e.Available)
}
