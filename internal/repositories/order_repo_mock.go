package repositories

import (
	"fmt"
	"sync"
	"time"

	"pasar/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository with
// the same version-guard semantics as the GORM implementation.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// GetAll returns all orders.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, order)
	}
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, models.ErrNotFound)
	}
	return &order, nil
}

// GetByCustomerID returns all orders placed by a customer.
func (r *MockOrderRepository) GetByCustomerID(customerID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0)
	for _, order := range r.orders {
		if order.CustomerID == customerID {
			orderList = append(orderList, order)
		}
	}
	return orderList, nil
}

// GetByVendorID returns all orders containing a sub-order for the vendor.
func (r *MockOrderRepository) GetByVendorID(vendorID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0)
	for _, order := range r.orders {
		if order.SubOrderFor(vendorID) != nil {
			orderList = append(orderList, order)
		}
	}
	return orderList, nil
}

// Create adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Version == 0 {
		order.Version = 1
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// UpdateDeliveryStatus sets the delivery status if the version still matches.
func (r *MockOrderRepository) UpdateDeliveryStatus(id string, version int64, status models.DeliveryStatus) error {
	return r.conditionalUpdate(id, version, func(order *models.Order) {
		order.DeliveryStatus = status
	})
}

// UpdateCancelDetails replaces the cancel details, optionally forcing the
// delivery status, if the version still matches.
func (r *MockOrderRepository) UpdateCancelDetails(id string, version int64, details models.CancelDetails, status models.DeliveryStatus) error {
	return r.conditionalUpdate(id, version, func(order *models.Order) {
		order.CancelDetails = details
		if status != "" {
			order.DeliveryStatus = status
		}
	})
}

// UpdateItems replaces the sub-order list if the version still matches.
func (r *MockOrderRepository) UpdateItems(id string, version int64, items []models.VendorSubOrder) error {
	return r.conditionalUpdate(id, version, func(order *models.Order) {
		order.Items = items
	})
}

func (r *MockOrderRepository) conditionalUpdate(id string, version int64, apply func(*models.Order)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, models.ErrNotFound)
	}
	if order.Version != version {
		return fmt.Errorf("order %s: %w", id, models.ErrConcurrencyConflict)
	}
	apply(&order)
	order.Version++
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}
