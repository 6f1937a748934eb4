package product

import "time"

type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAvailable reports whether the requested quantity can be served
// from current stock.
func (p *Product) IsAvailable(quantity int) bool {
	return p.Stock >= quantity
}

type CreateProductInput struct {
	Name  string
	Price float64
	Stock int
}
