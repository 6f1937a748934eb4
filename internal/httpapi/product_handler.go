package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"orderdesk/internal/product"

	"github.com/go-chi/chi/v5"
)

type ProductService interface {
	Create(ctx context.Context, input product.CreateProductInput) (*product.Product, error)
	AdjustStock(ctx context.Context, id int64, delta int) (*product.Product, error)
	Get(ctx context.Context, id int64) (*product.Product, error)
	List(ctx context.Context) ([]*product.Product, error)
}

type ProductHandler struct {
	svc ProductService
}

func NewProductHandler(svc ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

type createProductRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.svc.Create(r.Context(), product.CreateProductInput{
		Name:  req.Name,
		Price: req.Price,
		Stock: req.Stock,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

type adjustStockRequest struct {
	QuantityChange *int `json:"quantity_change"`
}

func (h *ProductHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Product not found")
	if !ok {
		return
	}

	var req adjustStockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.QuantityChange == nil {
		writeErrorMsg(w, http.StatusBadRequest, "quantity_change is required")
		return
	}

	p, err := h.svc.AdjustStock(r.Context(), id, *req.QuantityChange)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Product not found")
	if !ok {
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p == nil {
		writeErrorMsg(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// pathID parses the {id} route segment; a non-numeric id behaves like
// a missing resource.
func pathID(w http.ResponseWriter, r *http.Request, notFoundMsg string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeErrorMsg(w, http.StatusNotFound, notFoundMsg)
		return 0, false
	}
	return id, true
}
