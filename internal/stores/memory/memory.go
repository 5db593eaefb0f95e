// Package memory implements the persistence gateway in process memory.
// It exists for tests: a single mutex serializes transactions and InTx
// restores a snapshot on failure, giving the same all-or-nothing contract
// the postgres store gets from real transactions.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MustafaTarek77/Order-Management-System/internal/store"
)

type Store struct {
	mu sync.Mutex
	d  data
}

var _ store.Storer = (*Store)(nil)

func NewStore() *Store {
	return &Store{d: data{
		users:    map[string]store.User{},
		products: map[string]store.Product{},
		carts:    map[string]*store.Cart{},
		orders:   map[string]*store.Order{},
	}}
}

// SeedUsers loads users directly, bypassing the gateway contract.
func (s *Store) SeedUsers(users ...store.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		s.d.users[u.ID] = u
	}
}

// SeedProducts loads products directly, bypassing the gateway contract.
func (s *Store) SeedProducts(products ...store.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		s.d.products[p.ID] = p
	}
}

// InTx serializes on the store mutex and restores the pre-transaction
// snapshot when fn fails, so partial writes never become visible.
func (s *Store) InTx(ctx context.Context, fn func(store.Storer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.d.clone()
	if err := fn(&txStore{d: &s.d}); err != nil {
		s.d = snap
		return err
	}
	return nil
}

func (s *Store) FindCartByUser(ctx context.Context, userID string) (*store.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.findCartByUser(userID)
}

func (s *Store) CreateCart(ctx context.Context, userID string, items []store.NewCartItem) (*store.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.createCart(userID, items)
}

func (s *Store) AddCartItem(ctx context.Context, cartID int64, item store.NewCartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.addCartItem(cartID, item)
}

func (s *Store) UpdateCartItemQuantity(ctx context.Context, cartItemID int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.updateCartItemQuantity(cartItemID, quantity)
}

func (s *Store) DeleteCartItem(ctx context.Context, cartItemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.deleteCartItem(cartItemID)
}

func (s *Store) DeleteCartItems(ctx context.Context, cartID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.deleteCartItems(cartID)
}

func (s *Store) DeleteCart(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.deleteCart(userID)
}

func (s *Store) FindProduct(ctx context.Context, productID string) (*store.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.findProduct(productID)
}

func (s *Store) DecrementProductStock(ctx context.Context, productID string, decrementBy int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.decrementProductStock(productID, decrementBy)
}

func (s *Store) CreateOrder(ctx context.Context, order store.NewOrder) (*store.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.createOrder(order)
}

func (s *Store) FindOrder(ctx context.Context, orderID string) (*store.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.findOrder(orderID)
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.updateOrderStatus(orderID, status)
}

func (s *Store) UpdateOrderTotal(ctx context.Context, orderID string, total int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.updateOrderTotal(orderID, total)
}

func (s *Store) FindUserWithOrders(ctx context.Context, userID string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.findUserWithOrders(userID)
}

// txStore is the transaction-scoped view handed to InTx callbacks. The
// parent already holds the mutex, so methods go straight to the data.
type txStore struct {
	d *data
}

var _ store.Storer = (*txStore)(nil)

func (t *txStore) InTx(ctx context.Context, fn func(store.Storer) error) error {
	return fn(t)
}

func (t *txStore) FindCartByUser(ctx context.Context, userID string) (*store.Cart, error) {
	return t.d.findCartByUser(userID)
}

func (t *txStore) CreateCart(ctx context.Context, userID string, items []store.NewCartItem) (*store.Cart, error) {
	return t.d.createCart(userID, items)
}

func (t *txStore) AddCartItem(ctx context.Context, cartID int64, item store.NewCartItem) error {
	return t.d.addCartItem(cartID, item)
}

func (t *txStore) UpdateCartItemQuantity(ctx context.Context, cartItemID int64, quantity int) error {
	return t.d.updateCartItemQuantity(cartItemID, quantity)
}

func (t *txStore) DeleteCartItem(ctx context.Context, cartItemID int64) error {
	return t.d.deleteCartItem(cartItemID)
}

func (t *txStore) DeleteCartItems(ctx context.Context, cartID int64) error {
	return t.d.deleteCartItems(cartID)
}

func (t *txStore) DeleteCart(ctx context.Context, userID string) error {
	return t.d.deleteCart(userID)
}

func (t *txStore) FindProduct(ctx context.Context, productID string) (*store.Product, error) {
	return t.d.findProduct(productID)
}

func (t *txStore) DecrementProductStock(ctx context.Context, productID string, decrementBy int) error {
	return t.d.decrementProductStock(productID, decrementBy)
}

func (t *txStore) CreateOrder(ctx context.Context, order store.NewOrder) (*store.Order, error) {
	return t.d.createOrder(order)
}

func (t *txStore) FindOrder(ctx context.Context, orderID string) (*store.Order, error) {
	return t.d.findOrder(orderID)
}

func (t *txStore) UpdateOrderStatus(ctx context.Context, orderID string, status string) error {
	return t.d.updateOrderStatus(orderID, status)
}

func (t *txStore) UpdateOrderTotal(ctx context.Context, orderID string, total int64) error {
	return t.d.updateOrderTotal(orderID, total)
}

func (t *txStore) FindUserWithOrders(ctx context.Context, userID string) (*store.User, error) {
	return t.d.findUserWithOrders(userID)
}

type data struct {
	users    map[string]store.User
	products map[string]store.Product
	carts    map[string]*store.Cart // keyed by user id
	orders   map[string]*store.Order
	orderSeq []string // creation order, for stable history

	nextCartID      int64
	nextCartItemID  int64
	nextOrderItemID int64
}

func (d *data) clone() data {
	out := data{
		users:           make(map[string]store.User, len(d.users)),
		products:        make(map[string]store.Product, len(d.products)),
		carts:           make(map[string]*store.Cart, len(d.carts)),
		orders:          make(map[string]*store.Order, len(d.orders)),
		orderSeq:        append([]string(nil), d.orderSeq...),
		nextCartID:      d.nextCartID,
		nextCartItemID:  d.nextCartItemID,
		nextOrderItemID: d.nextOrderItemID,
	}
	for k, v := range d.users {
		out.users[k] = v
	}
	for k, v := range d.products {
		out.products[k] = v
	}
	for k, v := range d.carts {
		out.carts[k] = copyCart(v)
	}
	for k, v := range d.orders {
		out.orders[k] = copyOrder(v)
	}
	return out
}

func copyCart(c *store.Cart) *store.Cart {
	out := *c
	out.Items = append([]store.CartItem(nil), c.Items...)
	return &out
}

func copyOrder(o *store.Order) *store.Order {
	out := *o
	out.Items = append([]store.OrderItem(nil), o.Items...)
	return &out
}

func (d *data) findCartByUser(userID string) (*store.Cart, error) {
	c, ok := d.carts[userID]
	if !ok {
		return nil, fmt.Errorf("cart for user %s: %w", userID, store.ErrNotFound)
	}
	return copyCart(c), nil
}

func (d *data) createCart(userID string, items []store.NewCartItem) (*store.Cart, error) {
	d.nextCartID++
	now := time.Now().UTC()
	c := &store.Cart{ID: d.nextCartID, UserID: userID, CreatedAt: now, UpdatedAt: now}
	for _, item := range items {
		d.nextCartItemID++
		c.Items = append(c.Items, store.CartItem{
			ID:        d.nextCartItemID,
			CartID:    c.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	d.carts[userID] = c
	return copyCart(c), nil
}

func (d *data) cartByID(cartID int64) *store.Cart {
	for _, c := range d.carts {
		if c.ID == cartID {
			return c
		}
	}
	return nil
}

func (d *data) addCartItem(cartID int64, item store.NewCartItem) error {
	c := d.cartByID(cartID)
	if c == nil {
		return fmt.Errorf("cart %d: %w", cartID, store.ErrNotFound)
	}
	d.nextCartItemID++
	now := time.Now().UTC()
	c.Items = append(c.Items, store.CartItem{
		ID:        d.nextCartItemID,
		CartID:    cartID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Price:     item.Price,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return nil
}

func (d *data) updateCartItemQuantity(cartItemID int64, quantity int) error {
	for _, c := range d.carts {
		for i := range c.Items {
			if c.Items[i].ID == cartItemID {
				c.Items[i].Quantity = quantity
				c.Items[i].UpdatedAt = time.Now().UTC()
				return nil
			}
		}
	}
	return fmt.Errorf("cart item %d: %w", cartItemID, store.ErrNotFound)
}

func (d *data) deleteCartItem(cartItemID int64) error {
	for _, c := range d.carts {
		for i := range c.Items {
			if c.Items[i].ID == cartItemID {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("cart item %d: %w", cartItemID, store.ErrNotFound)
}

func (d *data) deleteCartItems(cartID int64) error {
	c := d.cartByID(cartID)
	if c == nil {
		return fmt.Errorf("cart %d: %w", cartID, store.ErrNotFound)
	}
	c.Items = nil
	return nil
}

func (d *data) deleteCart(userID string) error {
	if _, ok := d.carts[userID]; !ok {
		return fmt.Errorf("cart for user %s: %w", userID, store.ErrNotFound)
	}
	delete(d.carts, userID)
	return nil
}

func (d *data) findProduct(productID string) (*store.Product, error) {
	p, ok := d.products[productID]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", productID, store.ErrNotFound)
	}
	return &p, nil
}

func (d *data) decrementProductStock(productID string, decrementBy int) error {
	p, ok := d.products[productID]
	if !ok {
		return fmt.Errorf("product %s: %w", productID, store.ErrNotFound)
	}
	if p.Stock < decrementBy {
		return fmt.Errorf("product %s: %w", productID, store.ErrInsufficientStock)
	}
	p.Stock -= decrementBy
	p.UpdatedAt = time.Now().UTC()
	d.products[productID] = p
	return nil
}

func (d *data) createOrder(order store.NewOrder) (*store.Order, error) {
	if _, ok := d.orders[order.ID]; ok {
		return nil, fmt.Errorf("order %s already exists", order.ID)
	}
	now := time.Now().UTC()
	o := &store.Order{
		ID:        order.ID,
		UserID:    order.UserID,
		Status:    order.Status,
		OrderDate: order.OrderDate,
		Total:     order.Total,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, item := range order.Items {
		d.nextOrderItemID++
		o.Items = append(o.Items, store.OrderItem{
			ID:        d.nextOrderItemID,
			OrderID:   o.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	d.orders[o.ID] = o
	d.orderSeq = append(d.orderSeq, o.ID)
	return copyOrder(o), nil
}

func (d *data) findOrder(orderID string) (*store.Order, error) {
	o, ok := d.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", orderID, store.ErrNotFound)
	}
	return copyOrder(o), nil
}

func (d *data) updateOrderStatus(orderID string, status string) error {
	o, ok := d.orders[orderID]
	if !ok {
		return fmt.Errorf("order %s: %w", orderID, store.ErrNotFound)
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (d *data) updateOrderTotal(orderID string, total int64) error {
	o, ok := d.orders[orderID]
	if !ok {
		return fmt.Errorf("order %s: %w", orderID, store.ErrNotFound)
	}
	o.Total = total
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (d *data) findUserWithOrders(userID string) (*store.User, error) {
	u, ok := d.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, store.ErrNotFound)
	}
	for _, id := range d.orderSeq {
		o := d.orders[id]
		if o.UserID == userID {
			u.Orders = append(u.Orders, *copyOrder(o))
		}
	}
	return &u, nil
}
