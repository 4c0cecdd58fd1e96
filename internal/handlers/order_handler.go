package handlers

import (
	"fmt"
	"log"

	"pasar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orderService       *services.OrderService
	fulfillmentService *services.FulfillmentService
	validate           *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService, fulfillmentService *services.FulfillmentService) *OrderHandler {
	return &OrderHandler{
		orderService:       orderService,
		fulfillmentService: fulfillmentService,
		validate:           validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/customer/:customerId", h.HandleGetOrdersByCustomerID)
	orderRoutes.Get("/vendor/:vendorId", h.HandleGetOrdersByVendorID)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
	orderRoutes.Patch("/:id/vendors/:vendorId/status", h.HandleUpdateVendorOrderStatus)
	orderRoutes.Post("/:id/cancellation", h.HandleRequestCancellation)
	orderRoutes.Patch("/:id/cancellation", h.HandleResolveCancellation)
}

// HandleGetOrders retrieves all orders. Back-office only in practice; vendor
// and customer views go through the scoped routes below.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.orderService.GetAllOrders()
	if err != nil {
		log.Printf("Error getting all orders: %v", err)
		return errorJSON(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.orderService.GetOrderByID(orderID)
	if err != nil {
		log.Printf("Error getting order by ID %s: %v", orderID, err)
		return errorJSON(c, fmt.Sprintf("Could not retrieve order %s", orderID), err)
	}
	return c.JSON(order)
}

// HandleGetOrdersByCustomerID retrieves all orders placed by a customer.
func (h *OrderHandler) HandleGetOrdersByCustomerID(c *fiber.Ctx) error {
	customerID := c.Params("customerId")
	orders, err := h.orderService.GetOrdersByCustomerID(customerID)
	if err != nil {
		log.Printf("Error getting orders for customer %s: %v", customerID, err)
		return errorJSON(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOrdersByVendorID retrieves the vendor-scoped view of its orders.
func (h *OrderHandler) HandleGetOrdersByVendorID(c *fiber.Ctx) error {
	vendorID := c.Params("vendorId")
	orders, err := h.orderService.GetOrdersByVendorID(vendorID)
	if err != nil {
		log.Printf("Error getting orders for vendor %s: %v", vendorID, err)
		return errorJSON(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleCreateOrder creates a new order from a per-vendor grouped draft.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var draft services.OrderDraft
	if err := c.BodyParser(&draft); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(draft); err != nil {
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

	createdOrder, err := h.orderService.CreateOrder(draft)
	if err != nil {
		log.Printf("Error creating order: %v", err)
		return errorJSON(c, "Could not create order", err)
	}

	return c.Status(fiber.StatusCreated).JSON(createdOrder)
}

// HandleUpdateOrderStatus moves an order along the delivery state machine.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var updateData struct {
		Status string `json:"status"`
	}

	if err := c.BodyParser(&updateData); err != nil {
		log.Printf("Error parsing request body for status update: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}

	if updateData.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required for order status update.",
		})
	}

	order, err := h.orderService.UpdateOrderStatus(orderID, updateData.Status)
	if err != nil {
		log.Printf("Error updating order status for order %s: %v", orderID, err)
		return errorJSON(c, "Could not update order status", err)
	}
	return c.JSON(order)
}

// HandleUpdateVendorOrderStatus records a vendor's acceptance decision.
func (h *OrderHandler) HandleUpdateVendorOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	vendorID := c.Params("vendorId")
	var updateData struct {
		AcceptanceStatus string `json:"acceptance_status"`
	}

	if err := c.BodyParser(&updateData); err != nil {
		log.Printf("Error parsing request body for vendor status update: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for vendor status update",
			"error":   err.Error(),
		})
	}

	subOrder, err := h.fulfillmentService.UpdateVendorOrderStatus(orderID, vendorID, updateData.AcceptanceStatus)
	if err != nil {
		log.Printf("Error updating vendor %s status on order %s: %v", vendorID, orderID, err)
		return errorJSON(c, "Could not update vendor order status", err)
	}
	return c.JSON(subOrder)
}

// HandleRequestCancellation opens a cancellation request on an order.
func (h *OrderHandler) HandleRequestCancellation(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var requestData struct {
		Reason string `json:"reason"`
	}

	if err := c.BodyParser(&requestData); err != nil {
		log.Printf("Error parsing cancellation request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for cancellation request",
			"error":   err.Error(),
		})
	}

	order, err := h.orderService.RequestCancellation(orderID, requestData.Reason)
	if err != nil {
		log.Printf("Error requesting cancellation for order %s: %v", orderID, err)
		return errorJSON(c, "Could not request cancellation", err)
	}
	return c.JSON(order.CancelDetails)
}

// HandleResolveCancellation approves or rejects an open cancellation request.
func (h *OrderHandler) HandleResolveCancellation(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var resolveData struct {
		Outcome string `json:"outcome"`
	}

	if err := c.BodyParser(&resolveData); err != nil {
		log.Printf("Error parsing cancellation resolution body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for cancellation resolution",
			"error":   err.Error(),
		})
	}

	order, err := h.orderService.ResolveCancellation(orderID, resolveData.Outcome)
	if err != nil {
		log.Printf("Error resolving cancellation for order %s: %v", orderID, err)
		return errorJSON(c, "Could not resolve cancellation", err)
	}
	return c.JSON(order)
}
