package services_test

import (
	"testing"

	"pasar/internal/models"
	"pasar/internal/repositories"
	"pasar/internal/services"

	"github.com/stretchr/testify/assert"
)

func newFulfillmentFixture(t *testing.T) (*services.FulfillmentService, *services.OrderService, *models.Order) {
	t.Helper()
	productRepo := repositories.NewMockProductRepository()
	orderRepo := repositories.NewMockOrderRepository()
	for _, p := range []models.Product{
		{ID: "prod-p", Name: "Gaming Laptop", Price: 1200.0, Stock: 5, VendorID: "vendor-a"},
		{ID: "prod-q", Name: "Mechanical Keyboard", Price: 75.0, Stock: 5, VendorID: "vendor-b"},
	} {
		product := p
		assert.NoError(t, productRepo.Create(&product))
	}

	orderService := services.NewOrderService(orderRepo, productRepo, services.NewStockLedger(productRepo), nil)
	order, err := orderService.CreateOrder(services.OrderDraft{
		CustomerID:      "cust-1",
		DeliveryAddress: "x",
		Items: []services.VendorDraft{
			{VendorID: "vendor-a", OrderItems: []services.OrderLineDraft{{ProductID: "prod-p", Quantity: 1}}},
			{VendorID: "vendor-b", OrderItems: []services.OrderLineDraft{{ProductID: "prod-q", Quantity: 1}}},
		},
	})
	assert.NoError(t, err)

	return services.NewFulfillmentService(orderRepo, nil), orderService, order
}

func TestFulfillmentService_AcceptAndReject(t *testing.T) {
	service, orderService, order := newFulfillmentFixture(t)

	sub, err := service.UpdateVendorOrderStatus(order.ID, "vendor-a", "Accepted")
	assert.NoError(t, err)
	assert.Equal(t, models.AcceptanceAccepted, sub.AcceptanceStatus)

	sub, err = service.UpdateVendorOrderStatus(order.ID, "vendor-b", "Rejected")
	assert.NoError(t, err)
	assert.Equal(t, models.AcceptanceRejected, sub.AcceptanceStatus)

	// Both decisions are persisted on the same order.
	fetched, err := orderService.GetOrderByID(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.AcceptanceAccepted, fetched.SubOrderFor("vendor-a").AcceptanceStatus)
	assert.Equal(t, models.AcceptanceRejected, fetched.SubOrderFor("vendor-b").AcceptanceStatus)
}

func TestFulfillmentService_DecisionIsTerminal(t *testing.T) {
	service, _, order := newFulfillmentFixture(t)

	_, err := service.UpdateVendorOrderStatus(order.ID, "vendor-a", "Accepted")
	assert.NoError(t, err)

	_, err = service.UpdateVendorOrderStatus(order.ID, "vendor-a", "Rejected")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	_, err = service.UpdateVendorOrderStatus(order.ID, "vendor-a", "Accepted")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestFulfillmentService_InvalidInputs(t *testing.T) {
	service, _, order := newFulfillmentFixture(t)

	_, err := service.UpdateVendorOrderStatus(order.ID, "vendor-a", "Maybe")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)

	// There is no edge back into Pending.
	_, err = service.UpdateVendorOrderStatus(order.ID, "vendor-a", "Pending")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	// A vendor with no sub-order on the order cannot decide anything.
	_, err = service.UpdateVendorOrderStatus(order.ID, "vendor-c", "Accepted")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = service.UpdateVendorOrderStatus("ghost", "vendor-a", "Accepted")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFulfillmentService_DecoupledFromDeliveryStatus(t *testing.T) {
	service, orderService, order := newFulfillmentFixture(t)

	// The order ships while both vendors are still Pending; acceptance is
	// informational and does not gate delivery progress.
	_, err := orderService.UpdateOrderStatus(order.ID, "Shipped")
	assert.NoError(t, err)

	sub, err := service.UpdateVendorOrderStatus(order.ID, "vendor-a", "Accepted")
	assert.NoError(t, err)
	assert.Equal(t, models.AcceptanceAccepted, sub.AcceptanceStatus)

	fetched, err := orderService.GetOrderByID(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.DeliveryShipped, fetched.DeliveryStatus)
}
