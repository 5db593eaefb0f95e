package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MustafaTarek77/Order-Management-System/internal/store"
)

// querier is satisfied by both *sql.DB and *sql.Tx so every query method
// works inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	q  querier
}

var _ store.Storer = (*Store)(nil)

func NewStore(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Store{db: db, q: db}, nil
}

// InTx runs fn against a transaction-bound Store and commits only when fn
// returns nil. A Store already bound to a transaction joins it instead of
// opening a nested one.
func (s *Store) InTx(ctx context.Context, fn func(store.Storer) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	if err := fn(&Store{db: s.db, q: tx}); err != nil {
		if er := tx.Rollback(); er != nil && !errors.Is(er, sql.ErrTxDone) {
			return fmt.Errorf("failed to rollback tx after %w: %v", err, er)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}
	return nil
}

func (s *Store) FindCartByUser(ctx context.Context, userID string) (*store.Cart, error) {
	// Lock the cart row so concurrent adds and checkouts against the same
	// cart serialize at the storage layer.
	queryCart := `
		SELECT id, user_id, created_at, updated_at
		FROM cart
		WHERE user_id = $1
		FOR UPDATE
	`
	var crt store.Cart
	err := s.q.QueryRowContext(ctx, queryCart, userID).
		Scan(&crt.ID, &crt.UserID, &crt.CreatedAt, &crt.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("cart for user %s: %w", userID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	queryItems := `
		SELECT id, cart_id, product_id, quantity, price, created_at, updated_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY id
	`
	rows, err := s.q.QueryContext(ctx, queryItems, crt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item store.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
			&item.Price, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		crt.Items = append(crt.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}
	return &crt, nil
}

func (s *Store) CreateCart(ctx context.Context, userID string, items []store.NewCartItem) (*store.Cart, error) {
	queryCreateCart := `
		INSERT INTO cart (user_id, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		RETURNING id, user_id, created_at, updated_at
	`
	var crt store.Cart
	err := s.q.QueryRowContext(ctx, queryCreateCart, userID).
		Scan(&crt.ID, &crt.UserID, &crt.CreatedAt, &crt.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	for _, item := range items {
		if err := s.AddCartItem(ctx, crt.ID, item); err != nil {
			return nil, err
		}
	}
	return &crt, nil
}

func (s *Store) AddCartItem(ctx context.Context, cartID int64, item store.NewCartItem) error {
	queryAddCartItem := `
		INSERT INTO cart_items (cart_id, product_id, quantity, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := s.q.ExecContext(ctx, queryAddCartItem, cartID, item.ProductID, item.Quantity, item.Price)
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

func (s *Store) UpdateCartItemQuantity(ctx context.Context, cartItemID int64, quantity int) error {
	queryUpdateCartItem := `
		UPDATE cart_items
		SET quantity = $1, updated_at = NOW()
		WHERE id = $2
	`
	res, err := s.q.ExecContext(ctx, queryUpdateCartItem, quantity, cartItemID)
	if err != nil {
		return fmt.Errorf("failed to update cart item quantity: %w", err)
	}
	return requireRow(res, fmt.Sprintf("cart item %d", cartItemID))
}

func (s *Store) DeleteCartItem(ctx context.Context, cartItemID int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, cartItemID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	return requireRow(res, fmt.Sprintf("cart item %d", cartItemID))
}

func (s *Store) DeleteCartItems(ctx context.Context, cartID int64) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("failed to delete cart items: %w", err)
	}
	return nil
}

func (s *Store) DeleteCart(ctx context.Context, userID string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM cart WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return requireRow(res, fmt.Sprintf("cart for user %s", userID))
}

func (s *Store) FindProduct(ctx context.Context, productID string) (*store.Product, error) {
	query := `
		SELECT id, name, description, price, stock, created_at, updated_at
		FROM products
		WHERE id = $1
	`
	var p store.Product
	err := s.q.QueryRowContext(ctx, query, productID).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", productID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return &p, nil
}

// DecrementProductStock is a conditional update so two concurrent orders
// cannot both consume the last units; the stock check and the write are a
// single statement.
func (s *Store) DecrementProductStock(ctx context.Context, productID string, decrementBy int) error {
	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`
	res, err := s.q.ExecContext(ctx, query, productID, decrementBy)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		var exists bool
		err := s.q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check product existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("product %s: %w", productID, store.ErrNotFound)
		}
		return fmt.Errorf("product %s: %w", productID, store.ErrInsufficientStock)
	}
	return nil
}

func (s *Store) CreateOrder(ctx context.Context, order store.NewOrder) (*store.Order, error) {
	queryCreateOrder := `
		INSERT INTO orders (id, user_id, status, order_date, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, user_id, status, order_date, total, created_at, updated_at
	`
	var o store.Order
	err := s.q.QueryRowContext(ctx, queryCreateOrder,
		order.ID, order.UserID, order.Status, order.OrderDate, order.Total).
		Scan(&o.ID, &o.UserID, &o.Status, &o.OrderDate, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	queryCreateItem := `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	for _, item := range order.Items {
		var id int64
		err := s.q.QueryRowContext(ctx, queryCreateItem, o.ID, item.ProductID, item.Quantity, item.Price).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
		o.Items = append(o.Items, store.OrderItem{
			ID:        id,
			OrderID:   o.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return &o, nil
}

func (s *Store) FindOrder(ctx context.Context, orderID string) (*store.Order, error) {
	queryOrder := `
		SELECT id, user_id, status, order_date, total, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	var o store.Order
	err := s.q.QueryRowContext(ctx, queryOrder, orderID).
		Scan(&o.ID, &o.UserID, &o.Status, &o.OrderDate, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", orderID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	queryItems := `
		SELECT id, order_id, product_id, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`
	rows, err := s.q.QueryContext(ctx, queryItems, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item store.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}
	return &o, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status string) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`
	res, err := s.q.ExecContext(ctx, query, status, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return requireRow(res, fmt.Sprintf("order %s", orderID))
}

func (s *Store) UpdateOrderTotal(ctx context.Context, orderID string, total int64) error {
	query := `
		UPDATE orders
		SET total = $1, updated_at = NOW()
		WHERE id = $2
	`
	res, err := s.q.ExecContext(ctx, query, total, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order total: %w", err)
	}
	return requireRow(res, fmt.Sprintf("order %s", orderID))
}

func (s *Store) FindUserWithOrders(ctx context.Context, userID string) (*store.User, error) {
	queryUser := `
		SELECT id, name, email, address, description, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var u store.User
	err := s.q.QueryRowContext(ctx, queryUser, userID).
		Scan(&u.ID, &u.Name, &u.Email, &u.Address, &u.Description, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	queryOrders := `
		SELECT id, user_id, status, order_date, total, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY order_date
	`
	rows, err := s.q.QueryContext(ctx, queryOrders, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user orders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o store.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.OrderDate, &o.Total,
			&o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		u.Orders = append(u.Orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return &u, nil
}

func requireRow(res sql.Result, label string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", label, store.ErrNotFound)
	}
	return nil
}
