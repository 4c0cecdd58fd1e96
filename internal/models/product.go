package models

import "gorm.io/gorm"

// Review is a customer review nested inside a product.
type Review struct {
	ID          string `json:"id"`
	CustomerID  string `json:"customer_id" validate:"required"`
	Description string `json:"description" validate:"required,max=500"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
}

// Product represents a catalog product owned by a vendor. Rating is always
// the arithmetic mean of Reviews, 0 when there are none; it is recomputed on
// every review mutation. Version guards review writes against concurrent
// editors of the same product.
type Product struct {
	ID          string   `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string   `json:"name" validate:"required,min=3,max=100"`
	Brand       string   `json:"brand" validate:"omitempty,max=100"`
	Description string   `json:"description" validate:"omitempty,max=500"`
	CategoryID  string   `json:"category_id" gorm:"index;type:varchar(36)"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Image       string   `json:"image" validate:"omitempty,url"`
	Stock       int      `json:"stock" validate:"gte=0"`
	VendorID    string   `json:"vendor_id" gorm:"index;type:varchar(36)" validate:"required"`
	Reviews     []Review `json:"reviews" gorm:"serializer:json"`
	Rating      float64  `json:"rating"`
	Version     int64    `json:"-" gorm:"default:1"`
	gorm.Model           // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// MeanRating computes the arithmetic mean of the given review ratings, or 0
// for an empty list. Always computed from the full post-mutation list, never
// incrementally.
func MeanRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
