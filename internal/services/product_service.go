package services

import (
	"pasar/internal/models"
	"pasar/internal/repositories"
)

// ProductService handles business logic related to the product catalog.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// GetProductsByVendorID retrieves the catalog of one vendor.
func (s *ProductService) GetProductsByVendorID(vendorID string) ([]models.Product, error) {
	return s.repo.GetByVendorID(vendorID)
}

// CreateProduct creates a new product. A new product starts with no reviews
// and a zero rating regardless of what the caller supplied.
func (s *ProductService) CreateProduct(product *models.Product) error {
	product.Reviews = nil
	product.Rating = 0
	return s.repo.Create(product)
}

// UpdateProduct updates an existing product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	return s.repo.Update(product)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}
