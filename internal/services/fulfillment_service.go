package services

import (
	"fmt"
	"log"

	"pasar/internal/models"
	"pasar/internal/repositories"
)

// FulfillmentService owns the per-vendor acceptance state nested inside an
// order. A vendor can move only its own sub-order, from Pending to Accepted
// or Rejected, and the decision is terminal. Acceptance is informational to
// the order's overall delivery status; the two are deliberately not coupled.
type FulfillmentService struct {
	orderRepo repositories.OrderRepository
	publisher EventPublisher
}

// NewFulfillmentService creates a new FulfillmentService.
func NewFulfillmentService(orderRepo repositories.OrderRepository, publisher EventPublisher) *FulfillmentService {
	return &FulfillmentService{
		orderRepo: orderRepo,
		publisher: publisher,
	}
}

// UpdateVendorOrderStatus records a vendor's acceptance decision on its
// sub-order of the given order. It fails with models.ErrNotFound when the
// vendor has no sub-order on that order, and with models.ErrInvalidTransition
// when the sub-order has already been decided.
func (s *FulfillmentService) UpdateVendorOrderStatus(orderID, vendorID, rawStatus string) (*models.VendorSubOrder, error) {
	status, ok := models.ParseAcceptanceStatus(rawStatus)
	if !ok {
		return nil, fmt.Errorf("%q: %w", rawStatus, models.ErrInvalidStatus)
	}
	if status == models.AcceptancePending {
		// A sub-order starts Pending; there is no edge back into it.
		return nil, fmt.Errorf("Pending -> Pending: %w", models.ErrInvalidTransition)
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	sub := order.SubOrderFor(vendorID)
	if sub == nil {
		return nil, fmt.Errorf("vendor %s has no sub-order on order %s: %w", vendorID, orderID, models.ErrNotFound)
	}
	if sub.AcceptanceStatus != models.AcceptancePending {
		return nil, fmt.Errorf("%s -> %s: %w", sub.AcceptanceStatus, status, models.ErrInvalidTransition)
	}

	sub.AcceptanceStatus = status
	if err := s.orderRepo.UpdateItems(orderID, order.Version, order.Items); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		body := []byte(fmt.Sprintf(`{"order_id":%q,"vendor_id":%q,"acceptance_status":%q}`, orderID, vendorID, status))
		if err := s.publisher.Publish("order.vendor_decision", body); err != nil {
			log.Printf("Warning: Failed to publish vendor decision for order %s: %v", orderID, err)
		}
	}

	updated := *sub
	return &updated, nil
}
