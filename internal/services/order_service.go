package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"pasar/internal/models"
	"pasar/internal/repositories"

	"github.com/google/uuid"
)

// deliveryWindow is the default target between placement and delivery.
const deliveryWindow = 7 * 24 * time.Hour

// EventPublisher publishes order lifecycle events to the message broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// OrderLineDraft is one requested product line inside a creation request.
type OrderLineDraft struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// VendorDraft groups the requested lines of one vendor.
type VendorDraft struct {
	VendorID   string           `json:"vendor_id" validate:"required"`
	OrderItems []OrderLineDraft `json:"order_items" validate:"required,min=1,dive"`
}

// OrderDraft is a customer's order creation request, grouped per vendor.
type OrderDraft struct {
	CustomerID      string        `json:"customer_id" validate:"required"`
	DeliveryAddress string        `json:"delivery_address" validate:"required"`
	Items           []VendorDraft `json:"items" validate:"required,min=1,dive"`
}

// OrderService owns order creation, the delivery-status state machine, and
// the cancellation sub-workflow. It orchestrates the stock ledger during
// creation so the whole batch of reservations is all-or-nothing.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	ledger      *StockLedger
	publisher   EventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, ledger *StockLedger, publisher EventPublisher) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		ledger:      ledger,
		publisher:   publisher,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrderByID retrieves a single order by its ID, with line items enriched
// by a display snapshot of their products.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	s.enrichLineItems(order)
	return order, nil
}

// GetOrdersByCustomerID retrieves all orders placed by a customer, enriched
// for display.
func (s *OrderService) GetOrdersByCustomerID(customerID string) ([]models.Order, error) {
	orders, err := s.orderRepo.GetByCustomerID(customerID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		s.enrichLineItems(&orders[i])
	}
	return orders, nil
}

// GetOrdersByVendorID retrieves the orders containing a sub-order for the
// vendor, projected down to that vendor's sub-order only. Other vendors'
// items and acceptance states are never exposed.
func (s *OrderService) GetOrdersByVendorID(vendorID string) ([]models.Order, error) {
	orders, err := s.orderRepo.GetByVendorID(vendorID)
	if err != nil {
		return nil, err
	}
	projected := make([]models.Order, 0, len(orders))
	for _, order := range orders {
		sub := order.SubOrderFor(vendorID)
		if sub == nil {
			continue
		}
		order.Items = []models.VendorSubOrder{*sub}
		s.enrichLineItems(&order)
		projected = append(projected, order)
	}
	return projected, nil
}

// CreateOrder validates the draft, reserves stock for every line item across
// every vendor, and persists the order. Reservation is all-or-nothing: a
// failure on any line releases every reservation already taken, so an aborted
// order never leaves stock partially decremented.
func (s *OrderService) CreateOrder(draft OrderDraft) (*models.Order, error) {
	subOrders, total, err := s.buildSubOrders(draft)
	if err != nil {
		return nil, err
	}

	reserved, err := s.reserveAll(subOrders)
	if err != nil {
		s.releaseAll(reserved)
		return nil, err
	}

	now := time.Now()
	order := &models.Order{
		ID:              uuid.New().String(),
		CustomerID:      draft.CustomerID,
		PlacedDate:      now,
		DeliveryAddress: draft.DeliveryAddress,
		Total:           total,
		DeliveryStatus:  models.DeliveryPending,
		DeliveryDate:    now.Add(deliveryWindow),
		CancelDetails: models.CancelDetails{
			Requested: false,
			Status:    models.CancelPending,
		},
		Items: subOrders,
	}

	if err := s.orderRepo.Create(order); err != nil {
		s.releaseAll(reserved)
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	s.publishEvent("order.created", map[string]interface{}{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"status":      order.DeliveryStatus,
		"total":       order.Total,
	})

	return order, nil
}

// buildSubOrders resolves every draft line against the catalog, snapshots the
// unit price, and computes the order total.
func (s *OrderService) buildSubOrders(draft OrderDraft) ([]models.VendorSubOrder, float64, error) {
	if len(draft.Items) == 0 {
		return nil, 0, &models.ValidationError{Field: "items", Reason: "order must contain at least one vendor sub-order"}
	}

	var total float64
	subOrders := make([]models.VendorSubOrder, 0, len(draft.Items))
	for _, vendor := range draft.Items {
		if len(vendor.OrderItems) == 0 {
			return nil, 0, &models.ValidationError{Field: "order_items", Reason: fmt.Sprintf("sub-order for vendor %s has no items", vendor.VendorID)}
		}

		lines := make([]models.OrderLineItem, 0, len(vendor.OrderItems))
		for _, line := range vendor.OrderItems {
			if line.Quantity <= 0 {
				return nil, 0, &models.ValidationError{Field: "quantity", Reason: fmt.Sprintf("quantity for product %s must be positive", line.ProductID)}
			}
			product, err := s.productRepo.GetByID(line.ProductID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					return nil, 0, &models.ValidationError{Field: "product_id", Reason: fmt.Sprintf("product %s does not exist", line.ProductID)}
				}
				return nil, 0, err
			}

			lines = append(lines, models.OrderLineItem{
				ID:        uuid.New().String(),
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: product.Price, // Price at the time of order
			})
			total += product.Price * float64(line.Quantity)
		}

		subOrders = append(subOrders, models.VendorSubOrder{
			VendorID:         vendor.VendorID,
			AcceptanceStatus: models.AcceptancePending,
			OrderItems:       lines,
		})
	}
	return subOrders, total, nil
}

// reservation records one committed stock decrement, so a later failure in
// the same batch can be compensated.
type reservation struct {
	productID string
	quantity  int
}

func (s *OrderService) reserveAll(subOrders []models.VendorSubOrder) ([]reservation, error) {
	var reserved []reservation
	for _, sub := range subOrders {
		for _, line := range sub.OrderItems {
			if err := s.ledger.Reserve(line.ProductID, line.Quantity); err != nil {
				return reserved, err
			}
			reserved = append(reserved, reservation{productID: line.ProductID, quantity: line.Quantity})
		}
	}
	return reserved, nil
}

func (s *OrderService) releaseAll(reserved []reservation) {
	for _, r := range reserved {
		if err := s.ledger.Release(r.productID, r.quantity); err != nil {
			log.Printf("Compensation failed for product %s (%d units): %v", r.productID, r.quantity, err)
		}
	}
}

// UpdateOrderStatus moves an order along the delivery state machine
// (Pending -> Shipped -> Delivered). Cancelled is not reachable here; it is
// set only by an approved cancellation.
func (s *OrderService) UpdateOrderStatus(id string, rawStatus string) (*models.Order, error) {
	status, ok := models.ParseDeliveryStatus(rawStatus)
	if !ok {
		return nil, fmt.Errorf("%q: %w", rawStatus, models.ErrInvalidStatus)
	}

	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !order.DeliveryStatus.CanTransitionTo(status) {
		return nil, fmt.Errorf("%s -> %s: %w", order.DeliveryStatus, status, models.ErrInvalidTransition)
	}

	if err := s.orderRepo.UpdateDeliveryStatus(id, order.Version, status); err != nil {
		return nil, err
	}
	order.DeliveryStatus = status
	order.Version++

	s.publishEvent("order.status_updated", map[string]interface{}{
		"order_id": order.ID,
		"status":   status,
	})
	return order, nil
}

// RequestCancellation opens a cancellation request on an order that is still
// Pending or Shipped. Re-requesting while a request is unresolved is a no-op;
// requesting after a resolution re-opens the request.
func (s *OrderService) RequestCancellation(id string, reason string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order.DeliveryStatus != models.DeliveryPending && order.DeliveryStatus != models.DeliveryShipped {
		return nil, fmt.Errorf("cannot request cancellation while %s: %w", order.DeliveryStatus, models.ErrInvalidState)
	}

	if order.CancelDetails.Requested && order.CancelDetails.Status == models.CancelPending {
		return order, nil // already requested and unresolved
	}

	details := models.CancelDetails{
		Requested: true,
		Details:   reason,
		Status:    models.CancelPending,
	}
	if err := s.orderRepo.UpdateCancelDetails(id, order.Version, details, ""); err != nil {
		return nil, err
	}
	order.CancelDetails = details
	order.Version++

	s.publishEvent("order.cancellation_requested", map[string]interface{}{
		"order_id": order.ID,
		"reason":   reason,
	})
	return order, nil
}

// ResolveCancellation closes an open cancellation request. Approving it
// (outcome Canceled) additionally forces the delivery status to Cancelled in
// the same write; rejecting it leaves delivery progress untouched.
func (s *OrderService) ResolveCancellation(id string, rawOutcome string) (*models.Order, error) {
	outcome := models.CancelStatus(rawOutcome)
	if outcome != models.CancelCanceled && outcome != models.CancelRejected {
		return nil, fmt.Errorf("%q: %w", rawOutcome, models.ErrInvalidStatus)
	}

	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !order.CancelDetails.Requested || order.CancelDetails.Status != models.CancelPending {
		return nil, fmt.Errorf("no open cancellation request: %w", models.ErrInvalidState)
	}
	// The order may have been delivered while the request sat open; Delivered
	// stays terminal, so the request can only be rejected at that point.
	if outcome == models.CancelCanceled && order.DeliveryStatus.IsTerminal() {
		return nil, fmt.Errorf("cannot cancel a %s order: %w", order.DeliveryStatus, models.ErrInvalidState)
	}

	details := order.CancelDetails
	details.Status = outcome
	forcedStatus := models.DeliveryStatus("")
	if outcome == models.CancelCanceled {
		forcedStatus = models.DeliveryCancelled
	}

	if err := s.orderRepo.UpdateCancelDetails(id, order.Version, details, forcedStatus); err != nil {
		return nil, err
	}
	order.CancelDetails = details
	if forcedStatus != "" {
		order.DeliveryStatus = forcedStatus
	}
	order.Version++

	s.publishEvent("order.cancellation_resolved", map[string]interface{}{
		"order_id": order.ID,
		"outcome":  outcome,
	})
	return order, nil
}

// enrichLineItems joins a display snapshot of each product onto the order's
// line items. The snapshot is read-side only and is never written back.
func (s *OrderService) enrichLineItems(order *models.Order) {
	for i := range order.Items {
		for j := range order.Items[i].OrderItems {
			line := &order.Items[i].OrderItems[j]
			product, err := s.productRepo.GetByID(line.ProductID)
			if err != nil {
				continue // deleted products simply stay unenriched
			}
			product.Reviews = nil // keep order payloads lean
			line.ProductDetails = product
		}
	}
}

// publishEvent marshals and publishes a lifecycle event. Publishing is best
// effort; a broker failure never fails the order operation itself.
func (s *OrderService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := s.publisher.Publish(routingKey, body); err != nil {
		log.Printf("Warning: Failed to publish %s event: %v", routingKey, err)
	}
}
