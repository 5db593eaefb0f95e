package store

import "time"

// User represents a registered user. Users are created externally;
// this service only reads them.
type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Password    string    `json:"-"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Orders      []Order   `json:"orders,omitempty"`
}

// Product is a catalog item. Price is in the smallest currency unit.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Cart holds a user's pending items. At most one cart exists per user,
// and a cart is never left without items.
type Cart struct {
	ID        int64      `json:"id"`
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem is a single product line in a cart. Price is the unit price
// snapshotted when the item was added or updated, not the product's
// current price.
type CartItem struct {
	ID        int64     `json:"id"`
	CartID    int64     `json:"cart_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Price     int64     `json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Order is a placed order. Total is in the smallest currency unit.
type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Status    string      `json:"status"`
	OrderDate time.Time   `json:"order_date"`
	Total     int64       `json:"total"`
	Items     []OrderItem `json:"items"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// OrderItem is a single product line in an order. Unlike CartItem.Price,
// Price here is the extended line total (unit price x quantity) captured
// at order creation.
type OrderItem struct {
	ID        int64  `json:"id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

// NewCartItem carries the fields needed to insert a cart item.
type NewCartItem struct {
	ProductID string
	Quantity  int
	Price     int64
}

// NewOrder carries the fields needed to insert an order with its items.
type NewOrder struct {
	ID        string
	UserID    string
	Status    string
	OrderDate time.Time
	Total     int64
	Items     []NewOrderItem
}

// NewOrderItem carries the fields needed to insert an order item.
// Price is the extended line total.
type NewOrderItem struct {
	ProductID string
	Quantity  int
	Price     int64
}
