package repositories

import (
	"errors"
	"fmt"
	"time"

	"pasar/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository. Sub-orders
// and line items are persisted inside the order row as a JSON document; the
// version column guards every field-scoped update.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves all orders from the database.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order by its ID from the database.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetByCustomerID retrieves all orders placed by a customer.
func (r *GORMOrderRepository) GetByCustomerID(customerID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Find(&orders, "customer_id = ?", customerID).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders for customer %s: %w", customerID, err)
	}
	return orders, nil
}

// GetByVendorID retrieves all orders containing a sub-order for the vendor.
// Items live in a JSON document, so the match is done in memory rather than
// in SQL to stay portable across the postgres and sqlite drivers.
func (r *GORMOrderRepository) GetByVendorID(vendorID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders for vendor %s: %w", vendorID, err)
	}
	matched := make([]models.Order, 0)
	for _, order := range orders {
		if order.SubOrderFor(vendorID) != nil {
			matched = append(matched, order)
		}
	}
	return matched, nil
}

// Create creates a new order in the database.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Version == 0 {
		order.Version = 1
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// UpdateDeliveryStatus sets the delivery status, guarded by the version the
// caller read.
func (r *GORMOrderRepository) UpdateDeliveryStatus(id string, version int64, status models.DeliveryStatus) error {
	return r.conditionalUpdate(id, version, map[string]interface{}{
		"delivery_status": status,
	})
}

// UpdateCancelDetails replaces the embedded cancel details and, when status
// is non-empty, forces the delivery status in the same guarded write.
func (r *GORMOrderRepository) UpdateCancelDetails(id string, version int64, details models.CancelDetails, status models.DeliveryStatus) error {
	fields := map[string]interface{}{
		"cancel_requested": details.Requested,
		"cancel_details":   details.Details,
		"cancel_status":    details.Status,
	}
	if status != "" {
		fields["delivery_status"] = status
	}
	return r.conditionalUpdate(id, version, fields)
}

// UpdateItems replaces the sub-order list, guarded by the version the caller
// read.
func (r *GORMOrderRepository) UpdateItems(id string, version int64, items []models.VendorSubOrder) error {
	return r.conditionalUpdate(id, version, map[string]interface{}{
		"items": items,
	})
}

// conditionalUpdate applies a field-scoped update only if the stored version
// still matches, bumping the version as part of the write.
func (r *GORMOrderRepository) conditionalUpdate(id string, version int64, fields map[string]interface{}) error {
	fields["version"] = gorm.Expr("version + 1")
	fields["updated_at"] = time.Now()
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND version = ?", id, version).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check order %s: %w", id, err)
		}
		if count == 0 {
			return fmt.Errorf("order %s: %w", id, models.ErrNotFound)
		}
		return fmt.Errorf("order %s: %w", id, models.ErrConcurrencyConflict)
	}
	return nil
}
