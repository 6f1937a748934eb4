package product

import (
	"context"
	"database/sql"
	"fmt"
)

type Repository interface {
	Insert(ctx context.Context, p *Product) error
	Get(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context) ([]*Product, error)

	// AdjustStock applies delta in a single conditional update and
	// returns the updated product, or (nil, nil) when the guard
	// stock + delta >= 0 refused the change.
	AdjustStock(ctx context.Context, id int64, delta int) (*Product, error)

	// GetForUpdate locks the product row for the lifetime of tx so
	// check-then-decrement sequences serialize across writers.
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*Product, error)

	// AddStock shifts stock by delta inside tx. Callers hold the row
	// lock (reservation) or rely on the update's own row lock
	// (cancellation credit).
	AddStock(ctx context.Context, tx *sql.Tx, id int64, delta int) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `id, name, price, stock, created_at`

func (r *repository) Insert(ctx context.Context, p *Product) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, price, stock)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, p.Name, p.Price, p.Stock).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context) ([]*Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]*Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

func (r *repository) AdjustStock(ctx context.Context, id int64, delta int) (*Product, error) {
	var p Product
	err := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET stock = stock + $1
		WHERE id = $2 AND stock + $1 >= 0
		RETURNING `+productColumns+`
	`, delta, id).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	return &p, nil
}

func (r *repository) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*Product, error) {
	var p Product
	err := tx.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock product: %w", err)
	}
	return &p, nil
}

func (r *repository) AddStock(ctx context.Context, tx *sql.Tx, id int64, delta int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE products
		SET stock = stock + $1
		WHERE id = $2
	`, delta, id)
	if err != nil {
		return fmt.Errorf("add stock: %w", err)
	}
	return nil
}
