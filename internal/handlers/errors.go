package handlers

import (
	"errors"

	"pasar/internal/models"

	"github.com/gofiber/fiber/v2"
)

// statusFromError maps a service error to an HTTP status code. Business-rule
// violations map to 409 so clients can tell them apart from malformed input;
// anything unrecognized is treated as an infrastructure failure.
func statusFromError(err error) int {
	var validationErr *models.ValidationError
	var stockErr *models.InsufficientStockError
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &validationErr), errors.Is(err, models.ErrInvalidStatus):
		return fiber.StatusBadRequest
	case errors.As(err, &stockErr),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrInvalidState),
		errors.Is(err, models.ErrConcurrencyConflict):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// errorJSON renders a service error with the mapped status code. Insufficient
// stock failures additionally expose the product, requested, and available
// quantities so the client can adjust the order.
func errorJSON(c *fiber.Ctx, message string, err error) error {
	status := statusFromError(err)
	body := fiber.Map{
		"message": message,
		"error":   err.Error(),
	}
	var stockErr *models.InsufficientStockError
	if errors.As(err, &stockErr) {
		body["product_id"] = stockErr.ProductID
		body["requested"] = stockErr.Requested
		body["available"] = stockErr.Available
	}
	return c.Status(status).JSON(body)
}
