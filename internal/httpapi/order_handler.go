package httpapi

import (
	"context"
	"net/http"

	"orderdesk/internal/order"
)

type OrderService interface {
	Create(ctx context.Context, input order.CreateOrderInput) (*order.Order, error)
	Confirm(ctx context.Context, id int64) (*order.Order, error)
	Cancel(ctx context.Context, id int64) (*order.Order, error)
	Complete(ctx context.Context, id int64) (*order.Order, error)
	Get(ctx context.Context, id int64) (*order.Order, error)
	List(ctx context.Context) ([]*order.Order, error)
	ListByStatus(ctx context.Context, status order.Status) ([]*order.Order, error)
}

type OrderHandler struct {
	svc OrderService
}

func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input order.CreateOrderInput
	if !decodeJSON(w, r, &input) {
		return
	}

	o, err := h.svc.Create(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Order not found")
	if !ok {
		return
	}

	o, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if o == nil {
		writeErrorMsg(w, http.StatusNotFound, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		orders []*order.Order
		err    error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		orders, err = h.svc.ListByStatus(r.Context(), order.Status(status))
	} else {
		orders, err = h.svc.List(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Confirm)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Cancel)
}

func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Complete)
}

func (h *OrderHandler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, int64) (*order.Order, error)) {
	id, ok := pathID(w, r, "Order not found")
	if !ok {
		return
	}

	o, err := op(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
