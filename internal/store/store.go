// Package store defines the entities shared across the service and the
// contract every persistence backend must satisfy.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock is returned by DecrementProductStock when the
	// decrement would take stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Storer is the persistence gateway. It is injected into the domain
// packages so backends can be swapped without touching business logic.
//
// InTx runs fn against a transaction-scoped Storer and commits only if fn
// returns nil; any error rolls back every write made inside fn. Calling
// InTx on an already transactional Storer joins the ambient transaction.
type Storer interface {
	InTx(ctx context.Context, fn func(Storer) error) error

	FindCartByUser(ctx context.Context, userID string) (*Cart, error)
	CreateCart(ctx context.Context, userID string, items []NewCartItem) (*Cart, error)
	AddCartItem(ctx context.Context, cartID int64, item NewCartItem) error
	UpdateCartItemQuantity(ctx context.Context, cartItemID int64, quantity int) error
	DeleteCartItem(ctx context.Context, cartItemID int64) error
	DeleteCartItems(ctx context.Context, cartID int64) error
	DeleteCart(ctx context.Context, userID string) error

	FindProduct(ctx context.Context, productID string) (*Product, error)
	DecrementProductStock(ctx context.Context, productID string, decrementBy int) error

	CreateOrder(ctx context.Context, order NewOrder) (*Order, error)
	FindOrder(ctx context.Context, orderID string) (*Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status string) error
	UpdateOrderTotal(ctx context.Context, orderID string, total int64) error

	FindUserWithOrders(ctx context.Context, userID string) (*User, error)
}
