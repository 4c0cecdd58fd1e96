package services_test

import (
	"sync"
	"testing"
	"time"

	"pasar/internal/models"
	"pasar/internal/repositories"
	"pasar/internal/services"

	"github.com/stretchr/testify/assert"
)

// newOrderFixture wires an order service onto in-memory repositories seeded
// with the given products.
func newOrderFixture(t *testing.T, products ...models.Product) (*services.OrderService, *repositories.MockProductRepository, *repositories.MockOrderRepository) {
	t.Helper()
	productRepo := repositories.NewMockProductRepository()
	orderRepo := repositories.NewMockOrderRepository()
	for i := range products {
		assert.NoError(t, productRepo.Create(&products[i]))
	}
	ledger := services.NewStockLedger(productRepo)
	return services.NewOrderService(orderRepo, productRepo, ledger, nil), productRepo, orderRepo
}

func stockOf(t *testing.T, repo *repositories.MockProductRepository, id string) int {
	t.Helper()
	product, err := repo.GetByID(id)
	assert.NoError(t, err)
	return product.Stock
}

func TestOrderService_CreateOrder_MultiVendor(t *testing.T) {
	service, productRepo, _ := newOrderFixture(t,
		models.Product{ID: "prod-p", Name: "Gaming Laptop", Price: 1200.0, Stock: 5, VendorID: "vendor-a"},
		models.Product{ID: "prod-q", Name: "Mechanical Keyboard", Price: 75.0, Stock: 1, VendorID: "vendor-b"},
	)

	draft := services.OrderDraft{
		CustomerID:      "cust-1",
		DeliveryAddress: "12 Harbor Street",
		Items: []services.VendorDraft{
			{VendorID: "vendor-a", OrderItems: []services.OrderLineDraft{{ProductID: "prod-p", Quantity: 2}}},
			{VendorID: "vendor-b", OrderItems: []services.OrderLineDraft{{ProductID: "prod-q", Quantity: 1}}},
		},
	}

	order, err := service.CreateOrder(draft)
	assert.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "cust-1", order.CustomerID)
	assert.Equal(t, models.DeliveryPending, order.DeliveryStatus)
	assert.False(t, order.CancelDetails.Requested)
	assert.Equal(t, models.CancelPending, order.CancelDetails.Status)
	assert.InDelta(t, 2*1200.0+75.0, order.Total, 0.001)
	assert.WithinDuration(t, order.PlacedDate.Add(7*24*time.Hour), order.DeliveryDate, time.Second)

	assert.Len(t, order.Items, 2)
	for _, sub := range order.Items {
		assert.Equal(t, models.AcceptancePending, sub.AcceptanceStatus)
	}
	assert.Equal(t, "prod-p", order.Items[0].OrderItems[0].ProductID)
	assert.InDelta(t, 1200.0, order.Items[0].OrderItems[0].UnitPrice, 0.001)

	assert.Equal(t, 3, stockOf(t, productRepo, "prod-p"))
	assert.Equal(t, 0, stockOf(t, productRepo, "prod-q"))

	// An immediate retry of the same order must fail on the exhausted product
	// and leave the first product's stock untouched by the aborted batch.
	_, err = service.CreateOrder(draft)
	var stockErr *models.InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "prod-q", stockErr.ProductID)
	assert.Equal(t, 1, stockErr.Requested)
	assert.Equal(t, 0, stockErr.Available)
	assert.Equal(t, 3, stockOf(t, productRepo, "prod-p"))
}

func TestOrderService_CreateOrder_TotalMatchesSnapshotPrices(t *testing.T) {
	service, productRepo, _ := newOrderFixture(t,
		models.Product{ID: "prod-1", Name: "Wireless Mouse", Price: 25.0, Stock: 50, VendorID: "vendor-a"},
	)

	order, err := service.CreateOrder(services.OrderDraft{
		CustomerID:      "cust-1",
		DeliveryAddress: "12 Harbor Street",
		Items: []services.VendorDraft{
			{VendorID: "vendor-a", OrderItems: []services.OrderLineDraft{{ProductID: "prod-1", Quantity: 4}}},
		},
	})
	assert.NoError(t, err)
	assert.InDelta(t, 100.0, order.Total, 0.001)

	// A later price change must not affect the placed order's total.
	product, _ := productRepo.GetByID("prod-1")
	product.Price = 99.0
	assert.NoError(t, productRepo.Update(product))

	fetched, err := service.GetOrderByID(order.ID)
	assert.NoError(t, err)
	assert.InDelta(t, 100.0, fetched.Total, 0.001)
	assert.InDelta(t, 25.0, fetched.Items[0].OrderItems[0].UnitPrice, 0.001)
}

func TestOrderService_CreateOrder_ValidationErrors(t *testing.T) {
	service, productRepo, _ := newOrderFixture(t,
		models.Product{ID: "prod-1", Name: "Wireless Mouse", Price: 25.0, Stock: 10, VendorID: "vendor-a"},
	)

	var validationErr *models.ValidationError

	_, err := service.CreateOrder(services.OrderDraft{CustomerID: "cust-1", DeliveryAddress: "x"})
	assert.ErrorAs(t, err, &validationErr)

	_, err = service.CreateOrder(services.OrderDraft{
		CustomerID:      "cust-1",
		DeliveryAddress: "x",
		Items:           []services.VendorDraft{{VendorID: "vendor-a"}},
	})
	assert.ErrorAs(t, err, &validationErr)

	_, err = service.CreateOrder(services.OrderDraft{
		CustomerID:      "cust-1",
		DeliveryAddress: "x",
		Items: []services.VendorDraft{
			{VendorID: "vendor-a", OrderItems: []services.OrderLineDraft{{ProductID: "prod-1", Quantity: 0}}},
		},
	})
	assert.ErrorAs(t, err, &validationErr)

	_, err = service.CreateOrder(services.OrderDraft{
		CustomerID:      "cust-1",
		DeliveryAddress: "x",
		Items: []services.VendorDraft{
			{VendorID: "vendor-a", OrderItems: []services.OrderLineDraft{{ProductID: "ghost", Quantity: 1}}},
		},
	})
	assert.ErrorAs(t, err, &validationErr)

	// None of the rejected drafts may have touched stock.
	assert.Equal(t, 10, stockOf(t, productRepo, "prod-1"))
}

func TestOrderService_CreateOrder_ConcurrentLastUnit(t *testing.T) {
	service, productRepo, _ := newOrderFixture(t,
		models.Product{ID: "prod-1", Name: "Limited Edition", Price: 500.0, Stock: 1, VendorID: "vendor-a"},
	)

	draft := services.OrderDraft{
		CustomerID:      "cust-1",
		DeliveryAddress: "12 Harbor Street",
		Items: []services.VendorDraft{
			{VendorID: "vendor-a", OrderItems: []services.OrderLineDraft{{ProductID: "prod-1", Quantity: 1}}},
		},
	}

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.CreateOrder(draft)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, failures := 0, 0
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var stockErr *models.InsufficientStockError
		assert.ErrorAs(t, err, &stockErr)
		failures++
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, failures)
	assert.Equal(t, 0, stockOf(t, productRepo, "prod-1"))
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	service, _, _ := newOrderFixture(t,
		models.Product{ID: "prod-1", Name: "Wireless Mouse", Price: 25.0, Stock: 10, VendorID: "vendor-a"},
	)
	order, err := service.CreateOrder(services.OrderDraft{
		CustomerID:      "cust-1",
		DeliveryAddress: "x",
		Items: []services.VendorDraft{
			{VendorID: "vendor-a", OrderItems: []services.OrderLineDraft{{ProductID: "prod-1", Quantity: 1}}},
		},
	})
	assert.NoError(t, err)

	// Pending may not jump straight to Delivered.
	_, err = service.UpdateOrderStatus(order.ID, "Delivered")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	// Cancelled is only reachable through an approved cancellation.
	_, err = service.UpdateOrderStatus(order.ID, "Cancelled")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	updated, err := service.UpdateOrderStatus(order.ID, "Shipped")
	assert.NoError(t, err)
	assert.Equal(t, models.DeliveryShipped, updated.DeliveryStatus)

	// No going backwards.
	_, err = service.UpdateOrderStatus(order.ID, "Pending")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	updated, err = service.UpdateOrderStatus(order.ID, "Delivered")
	assert.NoError(t, err)
	assert.Equal(t, models.DeliveryDelivered, updated.DeliveryStatus)

	// Delivered is terminal.
	_, err = service.UpdateOrderStatus(order.ID, "Shipped")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = service.UpdateOrderStatus(order.ID, "Processing")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)

	_, err = service.UpdateOrderStatus("ghost", "Shipped")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestOrderService_CancellationWorkflow(t *testing.T) {
	service, _, _ := newOrderFixture(t,
		models.Product{ID: "prod-1", Name: "Wireless Mouse", Price: 25.0, Stock: 10, VendorID: "vendor-a"},
	)
	order, err := service.CreateOrder(services.OrderDraft{
		CustomerID:      "cust-1",
		DeliveryAddress: "x",
		Items: []services.VendorDraft{
			{VendorID: "vendor-a", OrderItems: []services.OrderLineDraft{{ProductID: "prod-1", Quantity: 1}}},
		},
	})
	assert.NoError(t, err)

	// Resolving before any request is a state error.
	_, err = service.ResolveCancellation(order.ID, "Rejected")
	assert.ErrorIs(t, err, models.ErrInvalidState)

	requested, err := service.RequestCancellation(order.ID, "ordered by mistake")
	assert.NoError(t, err)
	assert.True(t, requested.CancelDetails.Requested)
	assert.Equal(t, "ordered by mistake", requested.CancelDetails.Details)
	assert.Equal(t, models.CancelPending, requested.CancelDetails.Status)
	// Requesting cancellation does not itself change delivery progress.
	assert.Equal(t, models.DeliveryPending, requested.DeliveryStatus)

	// Re-requesting while unresolved is a no-op.
	again, err := service.RequestCancellation(order.ID, "changed my mind twice")
	assert.NoError(t, err)
	assert.Equal(t, "ordered by mistake", again.CancelDetails.Details)

	_, err = service.ResolveCancellation(order.ID, "Maybe")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)

	rejected, err := service.ResolveCancellation(order.ID, "Rejected")
	assert.NoError(t, err)
	assert.Equal(t, models.CancelRejected, rejected.CancelDetails.Status)
	assert.Equal(t, models.DeliveryPending, rejected.DeliveryStatus)

	// A resolved request can be re-opened, even after the order ships.
	_, err = service.UpdateOrderStatus(order.ID, "Shipped")
	assert.NoError(t, err)
	reopened, err := service.RequestCancellation(order.ID, "still want to cancel")
	assert.NoError(t, err)
	assert.True(t, reopened.CancelDetails.Requested)
	assert.Equal(t, "still want to cancel", reopened.CancelDetails.Details)
	assert.Equal(t, models.CancelPending, reopened.CancelDetails.Status)

	// Approving the cancellation forces the delivery status to Cancelled.
	canceled, err := service.ResolveCancellation(order.ID, "Canceled")
	assert.NoError(t, err)
	assert.Equal(t, models.CancelCanceled, canceled.CancelDetails.Status)
	assert.Equal(t, models.DeliveryCancelled, canceled.DeliveryStatus)

	// Cancelled is terminal for both machines.
	_, err = service.RequestCancellation(order.ID, "too late")
	assert.ErrorIs(t, err, models.ErrInvalidState)
	_, err = service.UpdateOrderStatus(order.ID, "Shipped")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestOrderService_RequestCancellation_AfterDelivery(t *testing.T) {
	service, _, _ := newOrderFixture(t,
		models.Product{ID: "prod-1", Name: "Wireless Mouse", Price: 25.0, Stock: 10, VendorID: "vendor-a"},
	)
	order, err := service.CreateOrder(services.OrderDraft{
		CustomerID:      "cust-1",
		DeliveryAddress: "x",
		Items: []services.VendorDraft{
			{VendorID: "vendor-a", OrderItems: []services.OrderLineDraft{{ProductID: "prod-1", Quantity: 1}}},
		},
	})
	assert.NoError(t, err)

	_, err = service.UpdateOrderStatus(order.ID, "Shipped")
	assert.NoError(t, err)
	_, err = service.UpdateOrderStatus(order.ID, "Delivered")
	assert.NoError(t, err)

	_, err = service.RequestCancellation(order.ID, "arrived broken")
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestOrderService_ResolveCancellation_AfterDeliveryOnlyRejects(t *testing.T) {
	service, _, _ := newOrderFixture(t,
		models.Product{ID: "prod-1", Name: "Wireless Mouse", Price: 25.0, Stock: 10, VendorID: "vendor-a"},
	)
	order, err := service.CreateOrder(services.OrderDraft{
		CustomerID:      "cust-1",
		DeliveryAddress: "x",
		Items: []services.VendorDraft{
			{VendorID: "vendor-a", OrderItems: []services.OrderLineDraft{{ProductID: "prod-1", Quantity: 1}}},
		},
	})
	assert.NoError(t, err)

	_, err = service.UpdateOrderStatus(order.ID, "Shipped")
	assert.NoError(t, err)
	_, err = service.RequestCancellation(order.ID, "taking too long")
	assert.NoError(t, err)

	// The request sat open while the order arrived anyway.
	_, err = service.UpdateOrderStatus(order.ID, "Delivered")
	assert.NoError(t, err)

	// Delivered stays terminal; the stale request can only be rejected.
	_, err = service.ResolveCancellation(order.ID, "Canceled")
	assert.ErrorIs(t, err, models.ErrInvalidState)

	resolved, err := service.ResolveCancellation(order.ID, "Rejected")
	assert.NoError(t, err)
	assert.Equal(t, models.CancelRejected, resolved.CancelDetails.Status)
	assert.Equal(t, models.DeliveryDelivered, resolved.DeliveryStatus)
}

func TestOrderService_GetOrdersByVendorID_ProjectsOwnSubOrderOnly(t *testing.T) {
	service, _, _ := newOrderFixture(t,
		models.Product{ID: "prod-p", Name: "Gaming Laptop", Price: 1200.0, Stock: 5, VendorID: "vendor-a"},
		models.Product{ID: "prod-q", Name: "Mechanical Keyboard", Price: 75.0, Stock: 5, VendorID: "vendor-b"},
	)

	_, err := service.CreateOrder(services.OrderDraft{
		CustomerID:      "cust-1",
		DeliveryAddress: "x",
		Items: []services.VendorDraft{
			{VendorID: "vendor-a", OrderItems: []services.OrderLineDraft{{ProductID: "prod-p", Quantity: 1}}},
			{VendorID: "vendor-b", OrderItems: []services.OrderLineDraft{{ProductID: "prod-q", Quantity: 2}}},
		},
	})
	assert.NoError(t, err)

	orders, err := service.GetOrdersByVendorID("vendor-b")
	assert.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Len(t, orders[0].Items, 1)
	assert.Equal(t, "vendor-b", orders[0].Items[0].VendorID)
	for _, line := range orders[0].Items[0].OrderItems {
		assert.Equal(t, "prod-q", line.ProductID)
	}

	// A vendor with no sub-orders sees nothing.
	orders, err = service.GetOrdersByVendorID("vendor-c")
	assert.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_GetOrderByID_EnrichesLineItems(t *testing.T) {
	service, productRepo, _ := newOrderFixture(t,
		models.Product{ID: "prod-1", Name: "Wireless Mouse", Price: 25.0, Stock: 10, VendorID: "vendor-a"},
	)
	order, err := service.CreateOrder(services.OrderDraft{
		CustomerID:      "cust-1",
		DeliveryAddress: "x",
		Items: []services.VendorDraft{
			{VendorID: "vendor-a", OrderItems: []services.OrderLineDraft{{ProductID: "prod-1", Quantity: 1}}},
		},
	})
	assert.NoError(t, err)

	fetched, err := service.GetOrderByID(order.ID)
	assert.NoError(t, err)
	details := fetched.Items[0].OrderItems[0].ProductDetails
	assert.NotNil(t, details)
	assert.Equal(t, "Wireless Mouse", details.Name)

	// The enrichment is a read-side projection; the stored order keeps only
	// the id, quantity, and price snapshot.
	stored, err := service.GetOrdersByCustomerID("cust-1")
	assert.NoError(t, err)
	assert.Len(t, stored, 1)

	// Deleting the product degrades the projection but not the order.
	assert.NoError(t, productRepo.Delete("prod-1"))
	fetched, err = service.GetOrderByID(order.ID)
	assert.NoError(t, err)
	assert.Nil(t, fetched.Items[0].OrderItems[0].ProductDetails)
	assert.InDelta(t, 25.0, fetched.Items[0].OrderItems[0].UnitPrice, 0.001)
}
