package services

import (
	"fmt"

	"pasar/internal/models"
	"pasar/internal/repositories"

	"github.com/google/uuid"
)

// ReviewService keeps a product's mean rating consistent with its review
// list. Every mutation recomputes the rating from the full post-mutation
// list rather than adjusting it incrementally, so the two can never drift.
// Writes are version guarded; two reviewers editing the same product's
// reviews concurrently surface models.ErrConcurrencyConflict instead of
// silently losing one edit.
type ReviewService struct {
	productRepo repositories.ProductRepository
}

// NewReviewService creates a new ReviewService.
func NewReviewService(productRepo repositories.ProductRepository) *ReviewService {
	return &ReviewService{
		productRepo: productRepo,
	}
}

// GetReviews returns the review list of a product.
func (s *ReviewService) GetReviews(productID string) ([]models.Review, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	return product.Reviews, nil
}

// AddReview appends a review to the product and recomputes its rating.
// Returns the new rating.
func (s *ReviewService) AddReview(productID string, review models.Review) (float64, error) {
	if err := validateReview(review); err != nil {
		return 0, err
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return 0, err
	}

	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	reviews := append(append([]models.Review{}, product.Reviews...), review)
	rating := models.MeanRating(reviews)

	if err := s.productRepo.SaveReviews(productID, product.Version, reviews, rating); err != nil {
		return 0, err
	}
	return rating, nil
}

// UpdateReview replaces the review whose id matches and recomputes the
// product's rating. Returns the new rating.
func (s *ReviewService) UpdateReview(productID, reviewID string, review models.Review) (float64, error) {
	if err := validateReview(review); err != nil {
		return 0, err
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return 0, err
	}

	reviews := append([]models.Review{}, product.Reviews...)
	found := false
	for i := range reviews {
		if reviews[i].ID == reviewID {
			review.ID = reviewID
			reviews[i] = review
			found = true
			break
		}
	}
	if !found {
		return 0, fmt.Errorf("review %s on product %s: %w", reviewID, productID, models.ErrNotFound)
	}

	rating := models.MeanRating(reviews)
	if err := s.productRepo.SaveReviews(productID, product.Version, reviews, rating); err != nil {
		return 0, err
	}
	return rating, nil
}

// DeleteReview removes the review whose id matches and recomputes the
// product's rating, which drops to 0 when no reviews remain. Returns the new
// rating.
func (s *ReviewService) DeleteReview(productID, reviewID string) (float64, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return 0, err
	}

	reviews := make([]models.Review, 0, len(product.Reviews))
	found := false
	for _, r := range product.Reviews {
		if r.ID == reviewID {
			found = true
			continue
		}
		reviews = append(reviews, r)
	}
	if !found {
		return 0, fmt.Errorf("review %s on product %s: %w", reviewID, productID, models.ErrNotFound)
	}

	rating := models.MeanRating(reviews)
	if err := s.productRepo.SaveReviews(productID, product.Version, reviews, rating); err != nil {
		return 0, err
	}
	return rating, nil
}

func validateReview(review models.Review) error {
	if review.CustomerID == "" {
		return &models.ValidationError{Field: "customer_id", Reason: "is required"}
	}
	if review.Rating < 1 || review.Rating > 5 {
		return &models.ValidationError{Field: "rating", Reason: "must be between 1 and 5"}
	}
	return nil
}
