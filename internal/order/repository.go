package order

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

type Repository interface {
	// Mutations run against the caller's transaction so the whole
	// reserve-or-abort sequence commits or rolls back as one unit.
	InsertOrder(ctx context.Context, tx *sql.Tx, o *Order) error
	InsertItem(ctx context.Context, tx *sql.Tx, it *OrderItem) error
	UpdateTotal(ctx context.Context, tx *sql.Tx, orderID int64, total float64) error
	UpdateStatus(ctx context.Context, tx *sql.Tx, orderID int64, status Status) error

	// GetForUpdate loads the aggregate with the order row locked.
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*Order, error)

	Get(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context) ([]*Order, error)
	ListByStatus(ctx context.Context, status Status) ([]*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) InsertOrder(ctx context.Context, tx *sql.Tx, o *Order) error {
	err := tx.QueryRowContext(ctx, `
		INSERT INTO orders (customer_name, customer_email, status, total_amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, o.CustomerName, o.CustomerEmail, o.Status, o.TotalAmount).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *repository) InsertItem(ctx context.Context, tx *sql.Tx, it *OrderItem) error {
	err := tx.QueryRowContext(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, it.OrderID, it.ProductID, it.Quantity, it.UnitPrice, it.Subtotal).Scan(&it.ID)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

func (r *repository) UpdateTotal(ctx context.Context, tx *sql.Tx, orderID int64, total float64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE orders SET total_amount = $1 WHERE id = $2
	`, total, orderID)
	if err != nil {
		return fmt.Errorf("update order total: %w", err)
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, tx *sql.Tx, orderID int64, status Status) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $1 WHERE id = $2
	`, status, orderID)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}

const orderColumns = `id, customer_name, customer_email, status, total_amount, created_at`

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *repository) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*Order, error) {
	o, err := scanOrder(tx.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, id))
	if err != nil || o == nil {
		return o, err
	}
	if err := r.loadItems(ctx, tx, []*Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id))
	if err != nil || o == nil {
		return o, err
	}
	if err := r.loadItems(ctx, r.db, []*Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) List(ctx context.Context) ([]*Order, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY id
	`)
}

func (r *repository) ListByStatus(ctx context.Context, status Status) ([]*Order, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE status = $1
		ORDER BY id
	`, status)
}

func (r *repository) list(ctx context.Context, query string, args ...any) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*Order, 0)
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CustomerName, &o.CustomerEmail, &o.Status, &o.TotalAmount, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, r.db, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func scanOrder(row *sql.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CustomerName, &o.CustomerEmail, &o.Status, &o.TotalAmount, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

// loadItems batch-loads items for the given orders, resolving each
// item's product name against the catalog at read time.
func (r *repository) loadItems(ctx context.Context, q querier, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[int64]*Order, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		o.Items = make([]*OrderItem, 0)
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.unit_price, oi.subtotal
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, &it)
		}
	}
	return rows.Err()
}
