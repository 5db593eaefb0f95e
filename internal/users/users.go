// Package users is a read-only projection of a user's past orders.
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MustafaTarek77/Order-Management-System/internal/store"
	"github.com/MustafaTarek77/Order-Management-System/pkg/apperr"
)

// OrderSummary is the history view of an order. Total and items are
// deliberately omitted.
type OrderSummary struct {
	OrderID   string    `json:"order_id"`
	OrderDate time.Time `json:"order_date"`
	Status    string    `json:"status"`
}

type Conf struct {
	store store.Storer
}

func NewConf(s store.Storer) (*Conf, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	return &Conf{store: s}, nil
}

// GetOrderHistory returns summaries of all orders the user has placed,
// oldest first as the store returns them.
func (c *Conf) GetOrderHistory(ctx context.Context, userID string) ([]OrderSummary, error) {
	user, err := c.store.FindUserWithOrders(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Wrap(apperr.KindNotFound, err, "user %s not found", userID)
		}
		return nil, fmt.Errorf("failed to query user orders: %w", err)
	}

	history := make([]OrderSummary, 0, len(user.Orders))
	for _, order := range user.Orders {
		history = append(history, OrderSummary{
			OrderID:   order.ID,
			OrderDate: order.OrderDate,
			Status:    order.Status,
		})
	}
	return history, nil
}
