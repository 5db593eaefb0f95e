// Package orders owns the cart to order transition: validation, stock
// decrement, cart teardown, status updates and coupon discounting.
package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MustafaTarek77/Order-Management-System/internal/store"
	"github.com/MustafaTarek77/Order-Management-System/pkg/apperr"

	"github.com/google/uuid"
)

const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
)

// CouponSummer2024 is the only recognized coupon code; it takes 10% off
// the order total each time it is applied.
const CouponSummer2024 = "SUMMER2024"

type Conf struct {
	store store.Storer
}

func NewConf(s store.Storer) (*Conf, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	return &Conf{store: s}, nil
}

// CreateOrder converts the user's cart into a PENDING order. Each order
// item carries the extended line total (cart unit price x quantity), the
// order total is their sum, every consumed product's stock is decremented
// exactly once, and the cart is torn down. The whole sequence runs in one
// transaction: either the order exists with stock decremented and the cart
// gone, or nothing changed.
func (c *Conf) CreateOrder(ctx context.Context, userID string) (*store.Order, error) {
	var out *store.Order
	err := c.store.InTx(ctx, func(s store.Storer) error {
		crt, err := s.FindCartByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.Wrap(apperr.KindEmptyCart, err, "cart is empty for user %s", userID)
			}
			return fmt.Errorf("failed to query cart: %w", err)
		}
		if len(crt.Items) == 0 {
			return apperr.New(apperr.KindEmptyCart, "cart is empty for user %s", userID)
		}

		items := make([]store.NewOrderItem, 0, len(crt.Items))
		var total int64
		for _, item := range crt.Items {
			linePrice := item.Price * int64(item.Quantity)
			items = append(items, store.NewOrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     linePrice,
			})
			total += linePrice
		}

		order, err := s.CreateOrder(ctx, store.NewOrder{
			ID:        uuid.NewString(),
			UserID:    userID,
			Status:    StatusPending,
			OrderDate: time.Now().UTC(),
			Total:     total,
			Items:     items,
		})
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, item := range crt.Items {
			if err := s.DecrementProductStock(ctx, item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, store.ErrInsufficientStock) {
					return apperr.Wrap(apperr.KindInsufficientStock, err,
						"insufficient stock for product %s: requested %d", item.ProductID, item.Quantity)
				}
				return fmt.Errorf("failed to decrement stock for product %s: %w", item.ProductID, err)
			}
		}

		if err := s.DeleteCartItems(ctx, crt.ID); err != nil {
			return fmt.Errorf("failed to clear cart items: %w", err)
		}
		if err := s.DeleteCart(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete cart: %w", err)
		}

		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetOrder returns the order with its items.
func (c *Conf) GetOrder(ctx context.Context, orderID string) (*store.Order, error) {
	order, err := c.store.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Wrap(apperr.KindNotFound, err, "order %s not found", orderID)
		}
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	return order, nil
}

// UpdateOrderStatus overwrites the order's status with the given value.
// Status is an open string; callers are trusted on the value and no
// transition graph is enforced.
func (c *Conf) UpdateOrderStatus(ctx context.Context, orderID, status string) (*store.Order, error) {
	var out *store.Order
	err := c.store.InTx(ctx, func(s store.Storer) error {
		order, err := s.FindOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.Wrap(apperr.KindNotFound, err, "order %s not found", orderID)
			}
			return fmt.Errorf("failed to query order: %w", err)
		}
		if err := s.UpdateOrderStatus(ctx, orderID, status); err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		order.Status = status
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyCoupon discounts the order total by 10% for the recognized coupon
// code. The discount multiplies the current total, so reapplying the same
// coupon discounts again; order status is not consulted. Integer division
// truncates toward zero, so a total not divisible by 10 loses the
// sub-unit remainder (1015 discounts to 913, not 913.5).
func (c *Conf) ApplyCoupon(ctx context.Context, orderID, couponCode string) (*store.Order, error) {
	var out *store.Order
	err := c.store.InTx(ctx, func(s store.Storer) error {
		order, err := s.FindOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.Wrap(apperr.KindNotFound, err, "order %s not found", orderID)
			}
			return fmt.Errorf("failed to query order: %w", err)
		}

		if couponCode != CouponSummer2024 {
			return apperr.New(apperr.KindInvalidCoupon, "invalid coupon code %q", couponCode)
		}

		discounted := order.Total * 9 / 10
		if err := s.UpdateOrderTotal(ctx, orderID, discounted); err != nil {
			return fmt.Errorf("failed to update order total: %w", err)
		}
		order.Total = discounted
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
