package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"orderdesk/internal/apperr"
	"orderdesk/internal/order"
	"orderdesk/internal/product"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, input product.CreateProductInput) (*product.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) AdjustStock(ctx context.Context, id int64, delta int) (*product.Product, error) {
	args := m.Called(ctx, id, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, id int64) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) List(ctx context.Context) ([]*product.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) orderResult(args mock.Arguments) (*order.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Create(ctx context.Context, input order.CreateOrderInput) (*order.Order, error) {
	return m.orderResult(m.Called(ctx, input))
}

func (m *MockOrderService) Confirm(ctx context.Context, id int64) (*order.Order, error) {
	return m.orderResult(m.Called(ctx, id))
}

func (m *MockOrderService) Cancel(ctx context.Context, id int64) (*order.Order, error) {
	return m.orderResult(m.Called(ctx, id))
}

func (m *MockOrderService) Complete(ctx context.Context, id int64) (*order.Order, error) {
	return m.orderResult(m.Called(ctx, id))
}

func (m *MockOrderService) Get(ctx context.Context, id int64) (*order.Order, error) {
	return m.orderResult(m.Called(ctx, id))
}

func (m *MockOrderService) List(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderService) ListByStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func newTestRouter() (*MockProductService, *MockOrderService, http.Handler) {
	products := new(MockProductService)
	orders := new(MockOrderService)
	return products, orders, NewRouter(products, orders)
}

var clientSeq atomic.Int64

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	// Unique client address per request so the rate limiter never
	// throttles the suite.
	req.RemoteAddr = fmt.Sprintf("192.0.2.%d:1234", clientSeq.Add(1))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

// --- Tests ---

func TestHealth(t *testing.T) {
	_, _, router := newTestRouter()

	rec := do(t, router, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestCreateProductEndpoint(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		products, _, router := newTestRouter()
		products.On("Create", mock.Anything, product.CreateProductInput{Name: "Laptop", Price: 2500, Stock: 5}).
			Return(&product.Product{ID: 1, Name: "Laptop", Price: 2500, Stock: 5, CreatedAt: time.Now()}, nil)

		rec := do(t, router, http.MethodPost, "/api/products", `{"name":"Laptop","price":2500,"stock":5}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var p product.Product
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Equal(t, int64(1), p.ID)
	})

	t.Run("ValidationError", func(t *testing.T) {
		products, _, router := newTestRouter()
		products.On("Create", mock.Anything, mock.Anything).
			Return(nil, apperr.Validationf("Price must be greater than zero"))

		rec := do(t, router, http.MethodPost, "/api/products", `{"name":"Laptop","price":0}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Price must be greater than zero", errorBody(t, rec))
	})

	t.Run("BadJSON", func(t *testing.T) {
		_, _, router := newTestRouter()

		rec := do(t, router, http.MethodPost, "/api/products", `{not json`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No data provided", errorBody(t, rec))
	})
}

func TestGetProductEndpoint(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		products, _, router := newTestRouter()
		products.On("Get", mock.Anything, int64(1)).
			Return(&product.Product{ID: 1, Name: "Laptop", Price: 2500, Stock: 5}, nil)

		rec := do(t, router, http.MethodGet, "/api/products/1", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Absent", func(t *testing.T) {
		products, _, router := newTestRouter()
		products.On("Get", mock.Anything, int64(99)).Return(nil, nil)

		rec := do(t, router, http.MethodGet, "/api/products/99", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Product not found", errorBody(t, rec))
	})

	t.Run("NonNumericID", func(t *testing.T) {
		_, _, router := newTestRouter()

		rec := do(t, router, http.MethodGet, "/api/products/abc", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAdjustStockEndpoint(t *testing.T) {
	t.Run("Applied", func(t *testing.T) {
		products, _, router := newTestRouter()
		products.On("AdjustStock", mock.Anything, int64(1), -3).
			Return(&product.Product{ID: 1, Name: "Laptop", Stock: 2}, nil)

		rec := do(t, router, http.MethodPatch, "/api/products/1/stock", `{"quantity_change":-3}`)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("MissingField", func(t *testing.T) {
		_, _, router := newTestRouter()

		rec := do(t, router, http.MethodPatch, "/api/products/1/stock", `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "quantity_change is required", errorBody(t, rec))
	})

	t.Run("Insufficient", func(t *testing.T) {
		products, _, router := newTestRouter()
		products.On("AdjustStock", mock.Anything, int64(1), -10).
			Return(nil, apperr.Validationf("Insufficient stock"))

		rec := do(t, router, http.MethodPatch, "/api/products/1/stock", `{"quantity_change":-10}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Insufficient stock", errorBody(t, rec))
	})
}

func TestCreateOrderEndpoint(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		_, orders, router := newTestRouter()
		name := "Test Product"
		orders.On("Create", mock.Anything, order.CreateOrderInput{
			CustomerName:  "Alice",
			CustomerEmail: "alice@example.com",
			Items:         []order.ItemInput{{ProductID: 10, Quantity: 2}},
		}).Return(&order.Order{
			ID:            1,
			CustomerName:  "Alice",
			CustomerEmail: "alice@example.com",
			Status:        order.StatusPending,
			TotalAmount:   199.98,
			Items: []*order.OrderItem{
				{ID: 5, OrderID: 1, ProductID: 10, ProductName: &name, Quantity: 2, UnitPrice: 99.99, Subtotal: 199.98},
			},
		}, nil)

		rec := do(t, router, http.MethodPost, "/api/orders",
			`{"customer_name":"Alice","customer_email":"alice@example.com","items":[{"product_id":10,"quantity":2}]}`)

		assert.Equal(t, http.StatusCreated, rec.Code)

		var got map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "pending", got["status"])
		assert.Equal(t, 199.98, got["total_amount"])
		items := got["items"].([]any)
		require.Len(t, items, 1)
		item := items[0].(map[string]any)
		assert.Equal(t, "Test Product", item["product_name"])
		assert.NotContains(t, item, "order_id")
	})

	t.Run("NotFound", func(t *testing.T) {
		_, orders, router := newTestRouter()
		orders.On("Create", mock.Anything, mock.Anything).
			Return(nil, apperr.NotFoundf("Product 7 not found"))

		rec := do(t, router, http.MethodPost, "/api/orders",
			`{"customer_name":"Alice","customer_email":"alice@example.com","items":[{"product_id":7,"quantity":1}]}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Product 7 not found", errorBody(t, rec))
	})
}

func TestOrderTransitionEndpoints(t *testing.T) {
	t.Run("Confirm", func(t *testing.T) {
		_, orders, router := newTestRouter()
		orders.On("Confirm", mock.Anything, int64(1)).
			Return(&order.Order{ID: 1, Status: order.StatusConfirmed, Items: []*order.OrderItem{}}, nil)

		rec := do(t, router, http.MethodPost, "/api/orders/1/confirm", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		var got map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "confirmed", got["status"])
	})

	t.Run("CompleteBeforeConfirm", func(t *testing.T) {
		_, orders, router := newTestRouter()
		orders.On("Complete", mock.Anything, int64(1)).
			Return(nil, apperr.Validationf("Only confirmed orders can be completed"))

		rec := do(t, router, http.MethodPost, "/api/orders/1/complete", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Only confirmed orders can be completed", errorBody(t, rec))
	})

	t.Run("CancelMissing", func(t *testing.T) {
		_, orders, router := newTestRouter()
		orders.On("Cancel", mock.Anything, int64(9)).
			Return(nil, apperr.NotFoundf("Order not found"))

		rec := do(t, router, http.MethodPost, "/api/orders/9/cancel", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListOrdersEndpoint(t *testing.T) {
	t.Run("All", func(t *testing.T) {
		_, orders, router := newTestRouter()
		orders.On("List", mock.Anything).Return([]*order.Order{}, nil)

		rec := do(t, router, http.MethodGet, "/api/orders", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("StatusFilter", func(t *testing.T) {
		_, orders, router := newTestRouter()
		orders.On("ListByStatus", mock.Anything, order.StatusCancelled).
			Return([]*order.Order{{ID: 3, Status: order.StatusCancelled, Items: []*order.OrderItem{}}}, nil)

		rec := do(t, router, http.MethodGet, "/api/orders?status=cancelled", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		orders.AssertNotCalled(t, "List", mock.Anything)
	})

	t.Run("UnknownStatusYieldsEmpty", func(t *testing.T) {
		_, orders, router := newTestRouter()
		orders.On("ListByStatus", mock.Anything, order.Status("shipped")).
			Return([]*order.Order{}, nil)

		rec := do(t, router, http.MethodGet, "/api/orders?status=shipped", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}
