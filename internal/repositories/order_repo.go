package repositories

import (
	"pasar/internal/models"
)

// OrderRepository defines the interface for order data access.
//
// The Update* methods are field-scoped and guarded by the order's version:
// they touch only the named field, bump the version, and return
// models.ErrConcurrencyConflict if another writer got there first. Concurrent
// updates to different aspects of the same order (delivery status vs.
// cancellation vs. vendor acceptance) therefore never overwrite each other
// silently.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByCustomerID(customerID string) ([]models.Order, error)
	GetByVendorID(vendorID string) ([]models.Order, error)
	Create(order *models.Order) error
	UpdateDeliveryStatus(id string, version int64, status models.DeliveryStatus) error
	// UpdateCancelDetails replaces the embedded cancel details; when status is
	// non-empty it also forces the delivery status in the same write.
	UpdateCancelDetails(id string, version int64, details models.CancelDetails, status models.DeliveryStatus) error
	UpdateItems(id string, version int64, items []models.VendorSubOrder) error
}
