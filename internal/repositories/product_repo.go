package repositories

import (
	"pasar/internal/models"
)

// ProductRepository defines the interface for product data access.
//
// DecrementStock is an atomic conditional decrement: it succeeds only when the
// product's stock is at least qty, and returns models.ErrStockConflict
// otherwise. SaveReviews is guarded by the product's version and returns
// models.ErrConcurrencyConflict when the version moved underneath the caller.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	GetByVendorID(vendorID string) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	DecrementStock(id string, qty int) error
	IncrementStock(id string, qty int) error
	SaveReviews(id string, version int64, reviews []models.Review, rating float64) error
}
