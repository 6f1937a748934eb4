package order

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

type Order struct {
	ID            int64        `json:"id"`
	CustomerName  string       `json:"customer_name"`
	CustomerEmail string       `json:"customer_email"`
	Status        Status       `json:"status"`
	TotalAmount   float64      `json:"total_amount"`
	CreatedAt     time.Time    `json:"created_at"`
	Items         []*OrderItem `json:"items"`
}

// CanBeCancelled: only pending orders can be cancelled.
func (o *Order) CanBeCancelled() bool {
	return o.Status == StatusPending
}

// CanBeCompleted: only confirmed orders can be completed.
func (o *Order) CanBeCompleted() bool {
	return o.Status == StatusConfirmed
}

// CalculateTotal sums item subtotals.
func (o *Order) CalculateTotal() float64 {
	total := 0.0
	for _, it := range o.Items {
		total += it.Subtotal
	}
	return total
}

type OrderItem struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"-"`
	ProductID int64 `json:"product_id"`
	// ProductName is resolved against the catalog at read time and is
	// nil if the product no longer exists.
	ProductName *string `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

type ItemInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type CreateOrderInput struct {
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	Items         []ItemInput `json:"items"`
}
