package models

import "time"

// DeliveryStatus is the overall delivery state of an order.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "Pending"
	DeliveryShipped   DeliveryStatus = "Shipped"
	DeliveryDelivered DeliveryStatus = "Delivered"
	DeliveryCancelled DeliveryStatus = "Cancelled"
)

// ParseDeliveryStatus validates a raw status string against the closed set.
func ParseDeliveryStatus(raw string) (DeliveryStatus, bool) {
	switch DeliveryStatus(raw) {
	case DeliveryPending, DeliveryShipped, DeliveryDelivered, DeliveryCancelled:
		return DeliveryStatus(raw), true
	}
	return "", false
}

// CanTransitionTo reports whether an order may move from s to next via a plain
// status update. Cancelled is never reachable this way; it is set only by an
// approved cancellation.
func (s DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	switch s {
	case DeliveryPending:
		return next == DeliveryShipped
	case DeliveryShipped:
		return next == DeliveryDelivered
	}
	// Delivered and Cancelled are terminal.
	return false
}

// IsTerminal reports whether no further delivery transitions are possible.
func (s DeliveryStatus) IsTerminal() bool {
	return s == DeliveryDelivered || s == DeliveryCancelled
}

// AcceptanceStatus is a vendor's decision on its own sub-order.
type AcceptanceStatus string

const (
	AcceptancePending  AcceptanceStatus = "Pending"
	AcceptanceAccepted AcceptanceStatus = "Accepted"
	AcceptanceRejected AcceptanceStatus = "Rejected"
)

// ParseAcceptanceStatus validates a raw acceptance string against the closed set.
func ParseAcceptanceStatus(raw string) (AcceptanceStatus, bool) {
	switch AcceptanceStatus(raw) {
	case AcceptancePending, AcceptanceAccepted, AcceptanceRejected:
		return AcceptanceStatus(raw), true
	}
	return "", false
}

// CancelStatus is the resolution state of a cancellation request.
type CancelStatus string

const (
	CancelPending  CancelStatus = "Pending"
	CancelCanceled CancelStatus = "Canceled"
	CancelRejected CancelStatus = "Rejected"
)

// CancelDetails tracks the cancellation sub-workflow embedded in an order.
// Requested and Status move independently of DeliveryStatus, except that an
// approved cancellation forces DeliveryStatus to Cancelled.
type CancelDetails struct {
	Requested bool         `json:"requested"`
	Details   string       `json:"details"`
	Status    CancelStatus `json:"status" gorm:"type:varchar(16)"`
}

// OrderLineItem is a single product line inside a vendor sub-order. UnitPrice
// is snapshotted from the catalog at placement time so Total stays immutable
// against later price changes. ProductDetails is filled in at read time for
// display and is never authoritative.
type OrderLineItem struct {
	ID             string   `json:"id"`
	ProductID      string   `json:"product_id" validate:"required"`
	Quantity       int      `json:"quantity" validate:"required,gt=0"`
	UnitPrice      float64  `json:"unit_price"`
	ProductDetails *Product `json:"product_details,omitempty"`
}

// VendorSubOrder is the slice of an order belonging to one vendor, with its
// own acceptance state.
type VendorSubOrder struct {
	VendorID         string           `json:"vendor_id" validate:"required"`
	AcceptanceStatus AcceptanceStatus `json:"acceptance_status"`
	OrderItems       []OrderLineItem  `json:"order_items" validate:"required,min=1,dive"`
}

// Order is a customer's purchase request spanning one or more vendors.
// Version guards every field-scoped update against concurrent writers.
type Order struct {
	ID              string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerID      string           `json:"customer_id" gorm:"index;type:varchar(36)"`
	PlacedDate      time.Time        `json:"placed_date"`
	DeliveryAddress string           `json:"delivery_address"`
	Total           float64          `json:"total"`
	DeliveryStatus  DeliveryStatus   `json:"delivery_status" gorm:"type:varchar(16)"`
	DeliveryDate    time.Time        `json:"delivery_date"`
	CancelDetails   CancelDetails    `json:"cancel_details" gorm:"embedded;embeddedPrefix:cancel_"`
	Items           []VendorSubOrder `json:"items" gorm:"serializer:json"`
	Version         int64            `json:"-" gorm:"default:1"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// SubOrderFor returns the sub-order belonging to the given vendor, or nil.
func (o *Order) SubOrderFor(vendorID string) *VendorSubOrder {
	for i := range o.Items {
		if o.Items[i].VendorID == vendorID {
			return &o.Items[i]
		}
	}
	return nil
}
