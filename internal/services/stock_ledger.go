package services

import (
	"errors"
	"fmt"
	"log"

	"pasar/internal/models"
	"pasar/internal/repositories"
)

// StockLedger enforces non-negative inventory during order creation. It is a
// thin policy layer over the product repository's atomic conditional
// decrement; the order service is responsible for treating a whole batch of
// reservations as all-or-nothing.
type StockLedger struct {
	productRepo repositories.ProductRepository
}

// NewStockLedger creates a new StockLedger.
func NewStockLedger(productRepo repositories.ProductRepository) *StockLedger {
	return &StockLedger{
		productRepo: productRepo,
	}
}

// Reserve decrements qty units of the product's stock. It fails with
// *models.InsufficientStockError when the available quantity is lower than
// qty, without touching the stock.
func (l *StockLedger) Reserve(productID string, qty int) error {
	if qty <= 0 {
		return &models.ValidationError{Field: "quantity", Reason: "must be a positive integer"}
	}

	err := l.productRepo.DecrementStock(productID, qty)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrStockConflict) {
		return err
	}

	// The guard failed; re-read to report what was actually available. The
	// numbers are informational and may already be stale.
	available := 0
	if product, readErr := l.productRepo.GetByID(productID); readErr == nil {
		available = product.Stock
	}
	return &models.InsufficientStockError{
		ProductID: productID,
		Requested: qty,
		Available: available,
	}
}

// Release returns qty units to the product's stock. It compensates a
// reservation that belongs to an order batch that failed later on; a missing
// product is logged rather than escalated, since the reservation itself is
// already undone as far as the caller is concerned.
func (l *StockLedger) Release(productID string, qty int) error {
	if err := l.productRepo.IncrementStock(productID, qty); err != nil {
		log.Printf("Failed to release %d units of product %s: %v", qty, productID, err)
		return fmt.Errorf("failed to release stock for product %s: %w", productID, err)
	}
	return nil
}
