package domain

import "time"

// Represents one line of an order.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Fulfilled bool   `json:"fulfilled"`
}

// Represents a customer order waiting to be delivered.
// An order has a single destination address. It stays on the delivery list
// until every item is fulfilled, and while listed it loads the vehicle with
// the full quantity of all its items.
type Order struct {
	OrderID     string      `json:"order_id"`
	Destination string      `json:"destination"`
	Items       []OrderItem `json:"items"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Demand sums the quantities of all items.
func (o *Order) Demand() int64 {
	var d int64
	for _, it := range o.Items {
		if it.Quantity > 0 {
			d += it.Quantity
		}
	}
	return d
}

// Pending reports whether any item is not yet fulfilled.
func (o *Order) Pending() bool {
	for _, it := range o.Items {
		if !it.Fulfilled {
			return true
		}
	}
	return false
}

// PendingOrders drops fully fulfilled orders, keeping the input order.
func PendingOrders(orders []*Order) []*Order {
	out := make([]*Order, 0, len(orders))
	for _, o := range orders {
		if o != nil && o.Pending() {
			out = append(out, o)
		}
	}
	return out
}
