// Package cart owns the cart line-item logic: stock-checked adds, absolute
// quantity updates, removals, and the one-cart-per-user invariant.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/MustafaTarek77/Order-Management-System/internal/store"
	"github.com/MustafaTarek77/Order-Management-System/pkg/apperr"
)

type Conf struct {
	store store.Storer
}

func NewConf(s store.Storer) (*Conf, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	return &Conf{store: s}, nil
}

// AddToCart puts quantity units of a product into the user's cart, creating
// the cart on first add. The requested quantity is validated against current
// stock; when the product is already in the cart only the delta is validated,
// not the resulting cumulative quantity. The item's unit price is snapshotted
// from the product at this moment and never re-read on later views.
func (c *Conf) AddToCart(ctx context.Context, userID, productID string, quantity int) (*store.Cart, error) {
	var out *store.Cart
	err := c.store.InTx(ctx, func(s store.Storer) error {
		product, err := s.FindProduct(ctx, productID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.Wrap(apperr.KindNotFound, err, "product %s not found", productID)
			}
			return fmt.Errorf("failed to query product: %w", err)
		}

		if quantity < 0 {
			return apperr.New(apperr.KindValidation, "quantity must not be negative, got %d", quantity)
		}
		if quantity > product.Stock {
			return apperr.New(apperr.KindInsufficientStock,
				"insufficient stock for product %s: requested %d, available %d", productID, quantity, product.Stock)
		}

		crt, err := s.FindCartByUser(ctx, userID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("failed to query cart: %w", err)
			}
			// No cart yet; create one with this single item.
			if _, err := s.CreateCart(ctx, userID, []store.NewCartItem{{
				ProductID: productID,
				Quantity:  quantity,
				Price:     product.Price,
			}}); err != nil {
				return fmt.Errorf("failed to create cart: %w", err)
			}
		} else if item := findItem(crt, productID); item != nil {
			if err := s.UpdateCartItemQuantity(ctx, item.ID, item.Quantity+quantity); err != nil {
				return fmt.Errorf("failed to update cart item quantity: %w", err)
			}
		} else {
			if err := s.AddCartItem(ctx, crt.ID, store.NewCartItem{
				ProductID: productID,
				Quantity:  quantity,
				Price:     product.Price,
			}); err != nil {
				return fmt.Errorf("failed to add product to cart: %w", err)
			}
		}

		out, err = s.FindCartByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to reload cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ViewCart returns the user's cart with its items, or nil when the user
// has no cart. Absence is not an error.
func (c *Conf) ViewCart(ctx context.Context, userID string) (*store.Cart, error) {
	crt, err := c.store.FindCartByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	return crt, nil
}

// UpdateCartItem sets the quantity of a product already in the user's cart
// to the given absolute value, validated against current stock.
func (c *Conf) UpdateCartItem(ctx context.Context, userID, productID string, quantity int) (*store.Cart, error) {
	var out *store.Cart
	err := c.store.InTx(ctx, func(s store.Storer) error {
		crt, err := s.FindCartByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.Wrap(apperr.KindNotFound, err, "cart not found for user %s", userID)
			}
			return fmt.Errorf("failed to query cart: %w", err)
		}

		product, err := s.FindProduct(ctx, productID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.Wrap(apperr.KindNotFound, err, "product %s not found", productID)
			}
			return fmt.Errorf("failed to query product: %w", err)
		}

		if quantity < 0 {
			return apperr.New(apperr.KindValidation, "quantity must not be negative, got %d", quantity)
		}
		if quantity > product.Stock {
			return apperr.New(apperr.KindInsufficientStock,
				"insufficient stock for product %s: requested %d, available %d", productID, quantity, product.Stock)
		}

		item := findItem(crt, productID)
		if item == nil {
			return apperr.New(apperr.KindNotFound, "product %s not found in cart of user %s", productID, userID)
		}
		if err := s.UpdateCartItemQuantity(ctx, item.ID, quantity); err != nil {
			return fmt.Errorf("failed to update cart item quantity: %w", err)
		}

		out, err = s.FindCartByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to reload cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveFromCart deletes a product line from the user's cart. Removing the
// last item deletes the cart itself; that case is signalled by a nil cart
// with a nil error, so callers can distinguish it from a refreshed cart.
func (c *Conf) RemoveFromCart(ctx context.Context, userID, productID string) (*store.Cart, error) {
	var out *store.Cart
	err := c.store.InTx(ctx, func(s store.Storer) error {
		crt, err := s.FindCartByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.Wrap(apperr.KindNotFound, err, "cart not found for user %s", userID)
			}
			return fmt.Errorf("failed to query cart: %w", err)
		}

		item := findItem(crt, productID)
		if item == nil {
			return apperr.New(apperr.KindNotFound, "product %s not found in cart of user %s", productID, userID)
		}
		if err := s.DeleteCartItem(ctx, item.ID); err != nil {
			return fmt.Errorf("failed to delete cart item: %w", err)
		}

		// Never leave an empty cart behind.
		if len(crt.Items) == 1 {
			if err := s.DeleteCart(ctx, userID); err != nil {
				return fmt.Errorf("failed to delete emptied cart: %w", err)
			}
			out = nil
			return nil
		}

		out, err = s.FindCartByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to reload cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func findItem(crt *store.Cart, productID string) *store.CartItem {
	for i := range crt.Items {
		if crt.Items[i].ProductID == productID {
			return &crt.Items[i]
		}
	}
	return nil
}
