package handlers

import (
	"fmt"
	"log"

	"pasar/internal/models"
	"pasar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the product catalog and its
// nested reviews.
type ProductHandler struct {
	productService *services.ProductService
	reviewService  *services.ReviewService
	validate       *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService *services.ProductService, reviewService *services.ReviewService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		reviewService:  reviewService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the product and review routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Get("/vendor/:vendorId", h.HandleGetProductsByVendorID)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)

	productRoutes.Get("/:id/reviews", h.HandleGetReviews)
	productRoutes.Post("/:id/reviews", h.HandleAddReview)
	productRoutes.Put("/:id/reviews/:reviewId", h.HandleUpdateReview)
	productRoutes.Delete("/:id/reviews/:reviewId", h.HandleDeleteReview)
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.productService.GetAllProducts()
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return errorJSON(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	productID := c.Params("id")
	product, err := h.productService.GetProductByID(productID)
	if err != nil {
		log.Printf("Error getting product by ID %s: %v", productID, err)
		return errorJSON(c, fmt.Sprintf("Could not retrieve product %s", productID), err)
	}
	return c.JSON(product)
}

// HandleGetProductsByVendorID retrieves one vendor's catalog.
func (h *ProductHandler) HandleGetProductsByVendorID(c *fiber.Ctx) error {
	vendorID := c.Params("vendorId")
	products, err := h.productService.GetProductsByVendorID(vendorID)
	if err != nil {
		log.Printf("Error getting products for vendor %s: %v", vendorID, err)
		return errorJSON(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(product); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	if err := h.productService.CreateProduct(&product); err != nil {
		log.Printf("Error creating product: %v", err)
		return errorJSON(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct updates an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	productID := c.Params("id")
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing product update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	product.ID = productID

	if err := h.productService.UpdateProduct(&product); err != nil {
		log.Printf("Error updating product %s: %v", productID, err)
		return errorJSON(c, "Could not update product", err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	productID := c.Params("id")
	if err := h.productService.DeleteProduct(productID); err != nil {
		log.Printf("Error deleting product %s: %v", productID, err)
		return errorJSON(c, "Could not delete product", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetReviews lists the reviews of a product.
func (h *ProductHandler) HandleGetReviews(c *fiber.Ctx) error {
	productID := c.Params("id")
	reviews, err := h.reviewService.GetReviews(productID)
	if err != nil {
		log.Printf("Error getting reviews for product %s: %v", productID, err)
		return errorJSON(c, "Could not retrieve reviews", err)
	}
	return c.JSON(reviews)
}

// HandleAddReview adds a review and returns the recomputed product rating.
func (h *ProductHandler) HandleAddReview(c *fiber.Ctx) error {
	productID := c.Params("id")
	var review models.Review
	if err := c.BodyParser(&review); err != nil {
		log.Printf("Error parsing review body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	rating, err := h.reviewService.AddReview(productID, review)
	if err != nil {
		log.Printf("Error adding review to product %s: %v", productID, err)
		return errorJSON(c, "Could not add review", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"rating": rating})
}

// HandleUpdateReview replaces a review and returns the recomputed rating.
func (h *ProductHandler) HandleUpdateReview(c *fiber.Ctx) error {
	productID := c.Params("id")
	reviewID := c.Params("reviewId")
	var review models.Review
	if err := c.BodyParser(&review); err != nil {
		log.Printf("Error parsing review update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	rating, err := h.reviewService.UpdateReview(productID, reviewID, review)
	if err != nil {
		log.Printf("Error updating review %s on product %s: %v", reviewID, productID, err)
		return errorJSON(c, "Could not update review", err)
	}
	return c.JSON(fiber.Map{"rating": rating})
}

// HandleDeleteReview removes a review and returns the recomputed rating.
func (h *ProductHandler) HandleDeleteReview(c *fiber.Ctx) error {
	productID := c.Params("id")
	reviewID := c.Params("reviewId")

	rating, err := h.reviewService.DeleteReview(productID, reviewID)
	if err != nil {
		log.Printf("Error deleting review %s on product %s: %v", reviewID, productID, err)
		return errorJSON(c, "Could not delete review", err)
	}
	return c.JSON(fiber.Map{"rating": rating})
}
