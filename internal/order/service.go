package order

import (
	"context"
	"database/sql"
	"strings"

	"orderdesk/internal/apperr"
	"orderdesk/internal/logger"
	"orderdesk/internal/product"

	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*Order, error)
	Confirm(ctx context.Context, id int64) (*Order, error)
	Cancel(ctx context.Context, id int64) (*Order, error)
	Complete(ctx context.Context, id int64) (*Order, error)
	Get(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context) ([]*Order, error)
	ListByStatus(ctx context.Context, status Status) ([]*Order, error)
}

// TxRunner scopes a callback to one atomic unit of work.
type TxRunner interface {
	Transact(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// ProductStore is the slice of the catalog repository the reservation
// protocol needs: a locking read and a stock shift inside the caller's
// transaction.
type ProductStore interface {
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*product.Product, error)
	AddStock(ctx context.Context, tx *sql.Tx, id int64, delta int) error
}

type service struct {
	repo     Repository
	products ProductStore
	tx       TxRunner
}

func NewService(repo Repository, products ProductStore, tx TxRunner) Service {
	return &service{repo: repo, products: products, tx: tx}
}

// Create reserves stock for every requested item and persists the
// order in one transaction. Stock is consumed at creation time, not at
// confirmation, so two orders can never both pass the sufficiency
// check for the same units; cancellation credits it back. Any failure
// leaves stock and order state untouched.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.Int("item_count", len(input.Items)),
	)

	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, apperr.Validationf("Customer name is required")
	}
	if !strings.Contains(input.CustomerEmail, "@") {
		return nil, apperr.Validationf("Valid customer email is required")
	}
	if len(input.Items) == 0 {
		return nil, apperr.Validationf("Order must contain at least one item")
	}

	o := &Order{
		CustomerName:  strings.TrimSpace(input.CustomerName),
		CustomerEmail: strings.TrimSpace(input.CustomerEmail),
		Status:        StatusPending,
		Items:         make([]*OrderItem, 0, len(input.Items)),
	}

	err := s.tx.Transact(ctx, func(tx *sql.Tx) error {
		if err := s.repo.InsertOrder(ctx, tx, o); err != nil {
			return err
		}

		for _, line := range input.Items {
			// The row lock serializes concurrent writers of the same
			// product; re-reading under it also makes repeated lines
			// for one product accumulate within this order.
			p, err := s.products.GetForUpdate(ctx, tx, line.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return apperr.NotFoundf("Product %d not found", line.ProductID)
			}
			if line.Quantity <= 0 {
				return apperr.Validationf("Quantity must be positive")
			}
			if !p.IsAvailable(line.Quantity) {
				return apperr.Validationf("Insufficient stock for product %s", p.Name)
			}

			if err := s.products.AddStock(ctx, tx, p.ID, -line.Quantity); err != nil {
				return err
			}

			it := &OrderItem{
				OrderID:     o.ID,
				ProductID:   p.ID,
				ProductName: &p.Name,
				Quantity:    line.Quantity,
				UnitPrice:   p.Price,
				Subtotal:    p.Price * float64(line.Quantity),
			}
			if err := s.repo.InsertItem(ctx, tx, it); err != nil {
				return err
			}
			o.Items = append(o.Items, it)
		}

		o.TotalAmount = o.CalculateTotal()
		return s.repo.UpdateTotal(ctx, tx, o.ID, o.TotalAmount)
	})
	if err != nil {
		log.Warn("create order failed", zap.Error(err))
		return nil, err
	}

	log.Info("order created",
		zap.Int64("order_id", o.ID),
		zap.Float64("total_amount", o.TotalAmount),
	)
	return o, nil
}

func (s *service) Confirm(ctx context.Context, id int64) (*Order, error) {
	return s.transition(ctx, id, StatusConfirmed, func(tx *sql.Tx, o *Order) error {
		if o.Status != StatusPending {
			return apperr.Validationf("Only pending orders can be confirmed")
		}
		return nil
	})
}

// Cancel flips a pending order to cancelled and credits every item's
// quantity back to its product, atomically with the status change.
func (s *service) Cancel(ctx context.Context, id int64) (*Order, error) {
	return s.transition(ctx, id, StatusCancelled, func(tx *sql.Tx, o *Order) error {
		if !o.CanBeCancelled() {
			return apperr.Validationf("Only pending orders can be cancelled")
		}
		for _, it := range o.Items {
			if err := s.products.AddStock(ctx, tx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *service) Complete(ctx context.Context, id int64) (*Order, error) {
	return s.transition(ctx, id, StatusCompleted, func(tx *sql.Tx, o *Order) error {
		if !o.CanBeCompleted() {
			return apperr.Validationf("Only confirmed orders can be completed")
		}
		return nil
	})
}

// transition loads the order under its row lock, runs the
// precondition (plus any side effects) and persists the new status,
// all in one transaction.
func (s *service) transition(ctx context.Context, id int64, to Status, check func(tx *sql.Tx, o *Order) error) (*Order, error) {
	var out *Order
	err := s.tx.Transact(ctx, func(tx *sql.Tx) error {
		o, err := s.repo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.NotFoundf("Order not found")
		}
		if err := check(tx, o); err != nil {
			return err
		}
		if err := s.repo.UpdateStatus(ctx, tx, id, to); err != nil {
			return err
		}
		o.Status = to
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("order status changed",
		zap.String("layer", "service"),
		zap.Int64("order_id", id),
		zap.String("status", string(to)),
	)
	return out, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*Order, error) {
	return s.repo.List(ctx)
}

// ListByStatus applies the filter verbatim; an unrecognized status
// yields an empty result, not an error.
func (s *service) ListByStatus(ctx context.Context, status Status) ([]*Order, error) {
	return s.repo.ListByStatus(ctx, status)
}
