package orders_test

import (
	"context"
	"sync"
	"testing"

	"github.com/MustafaTarek77/Order-Management-System/internal/cart"
	"github.com/MustafaTarek77/Order-Management-System/internal/orders"
	"github.com/MustafaTarek77/Order-Management-System/internal/store"
	"github.com/MustafaTarek77/Order-Management-System/internal/stores/memory"
	"github.com/MustafaTarek77/Order-Management-System/internal/users"
	"github.com/MustafaTarek77/Order-Management-System/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	userID   = "6d3b2b6c-5a0d-4cb1-9d2f-111111111111"
	pepsiID  = "c0a80121-0001-4000-8000-aaaaaaaaaaaa"
	chepsiID = "c0a80121-0002-4000-8000-bbbbbbbbbbbb"
	sparesID = "c0a80121-0003-4000-8000-cccccccccccc"
)

type testEnv struct {
	store  *memory.Store
	carts  *cart.Conf
	orders *orders.Conf
	users  *users.Conf
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s := memory.NewStore()
	s.SeedUsers(store.User{ID: userID, Name: "Mustafa", Email: "mus@gmail.com"})
	s.SeedProducts(
		store.Product{ID: pepsiID, Name: "pepsi", Price: 1000, Stock: 10},
		store.Product{ID: chepsiID, Name: "chepsi", Price: 1500, Stock: 10},
		store.Product{ID: sparesID, Name: "squeeze", Price: 700, Stock: 5},
	)

	cConf, err := cart.NewConf(s)
	require.NoError(t, err)
	oConf, err := orders.NewConf(s)
	require.NoError(t, err)
	uConf, err := users.NewConf(s)
	require.NoError(t, err)
	return &testEnv{store: s, carts: cConf, orders: oConf, users: uConf}
}

func (e *testEnv) fillCart(t *testing.T, uid string, lines map[string]int) {
	t.Helper()
	for productID, qty := range lines {
		_, err := e.carts.AddToCart(context.Background(), uid, productID, qty)
		require.NoError(t, err)
	}
}

func (e *testEnv) stockOf(t *testing.T, productID string) int {
	t.Helper()
	p, err := e.store.FindProduct(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

func TestCreateOrderTotalsAndLinePrices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.fillCart(t, userID, map[string]int{pepsiID: 2, chepsiID: 1})

	order, err := env.orders.CreateOrder(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, orders.StatusPending, order.Status)
	require.Equal(t, userID, order.UserID)
	require.False(t, order.OrderDate.IsZero())

	// Line prices are extended totals, not unit prices.
	require.Len(t, order.Items, 2)
	linePrices := map[string]int64{}
	for _, item := range order.Items {
		linePrices[item.ProductID] = item.Price
	}
	require.Equal(t, int64(2000), linePrices[pepsiID])
	require.Equal(t, int64(1500), linePrices[chepsiID])
	require.Equal(t, int64(3500), order.Total)
}

func TestCreateOrderDecrementsStockExactly(t *testing.T) {
	env := newTestEnv(t)
	env.fillCart(t, userID, map[string]int{pepsiID: 2, chepsiID: 1})

	_, err := env.orders.CreateOrder(context.Background(), userID)
	require.NoError(t, err)

	require.Equal(t, 8, env.stockOf(t, pepsiID))
	require.Equal(t, 9, env.stockOf(t, chepsiID))
	require.Equal(t, 5, env.stockOf(t, sparesID), "untouched product keeps its stock")
}

func TestCreateOrderCarriesZeroQuantityLine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.fillCart(t, userID, map[string]int{pepsiID: 2, chepsiID: 1})

	// A line updated to zero stays in the cart and must survive checkout
	// as a zero-quantity order item, not fail it.
	_, err := env.carts.UpdateCartItem(ctx, userID, chepsiID, 0)
	require.NoError(t, err)

	order, err := env.orders.CreateOrder(ctx, userID)
	require.NoError(t, err)
	require.Len(t, order.Items, 2)

	linePrices := map[string]int64{}
	quantities := map[string]int{}
	for _, item := range order.Items {
		linePrices[item.ProductID] = item.Price
		quantities[item.ProductID] = item.Quantity
	}
	require.Equal(t, 0, quantities[chepsiID])
	require.Equal(t, int64(0), linePrices[chepsiID])
	require.Equal(t, int64(2000), order.Total)

	require.Equal(t, 8, env.stockOf(t, pepsiID))
	require.Equal(t, 10, env.stockOf(t, chepsiID), "zero-quantity line consumes no stock")
}

func TestCreateOrderClearsCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.fillCart(t, userID, map[string]int{pepsiID: 2})

	_, err := env.orders.CreateOrder(ctx, userID)
	require.NoError(t, err)

	crt, err := env.carts.ViewCart(ctx, userID)
	require.NoError(t, err)
	require.Nil(t, crt)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.orders.CreateOrder(ctx, userID)
	require.Error(t, err)
	require.True(t, apperr.IsKind(err, apperr.KindEmptyCart))

	// Nothing happened: no stock consumed, no order recorded.
	require.Equal(t, 10, env.stockOf(t, pepsiID))
	history, err := env.users.GetOrderHistory(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestCreateOrderRollsBackOnStockShortage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.fillCart(t, userID, map[string]int{pepsiID: 5, chepsiID: 1})

	// Stock shrinks between add and checkout, as a concurrent order would
	// cause. The decrement step must fail and undo everything.
	env.store.SeedProducts(store.Product{ID: pepsiID, Name: "pepsi", Price: 1000, Stock: 3})

	_, err := env.orders.CreateOrder(ctx, userID)
	require.Error(t, err)
	require.True(t, apperr.IsKind(err, apperr.KindInsufficientStock))

	require.Equal(t, 3, env.stockOf(t, pepsiID))
	require.Equal(t, 10, env.stockOf(t, chepsiID), "no partial decrement may survive")

	crt, err := env.carts.ViewCart(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, crt, "cart survives a failed checkout")
	require.Len(t, crt.Items, 2)

	history, err := env.users.GetOrderHistory(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, history, "no order may survive a failed checkout")
}

func TestGetOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.fillCart(t, userID, map[string]int{pepsiID: 1})

	created, err := env.orders.CreateOrder(ctx, userID)
	require.NoError(t, err)

	got, err := env.orders.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Len(t, got.Items, 1)
}

func TestGetOrderNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.orders.GetOrder(context.Background(), uuid.NewString())
	require.Error(t, err)
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestUpdateOrderStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.fillCart(t, userID, map[string]int{pepsiID: 1})

	created, err := env.orders.CreateOrder(ctx, userID)
	require.NoError(t, err)

	updated, err := env.orders.UpdateOrderStatus(ctx, created.ID, orders.StatusCompleted)
	require.NoError(t, err)
	require.Equal(t, orders.StatusCompleted, updated.Status)

	// Status is an open string; any value is accepted.
	updated, err = env.orders.UpdateOrderStatus(ctx, created.ID, "SHIPPED")
	require.NoError(t, err)
	require.Equal(t, "SHIPPED", updated.Status)

	got, err := env.orders.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "SHIPPED", got.Status)
}

func TestUpdateOrderStatusNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.orders.UpdateOrderStatus(context.Background(), uuid.NewString(), orders.StatusCompleted)
	require.Error(t, err)
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestApplyCoupon(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.fillCart(t, userID, map[string]int{pepsiID: 2, chepsiID: 1})

	created, err := env.orders.CreateOrder(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, int64(3500), created.Total)

	discounted, err := env.orders.ApplyCoupon(ctx, created.ID, orders.CouponSummer2024)
	require.NoError(t, err)
	require.Equal(t, int64(3150), discounted.Total)

	// Reapplying discounts the already discounted total again.
	discounted, err = env.orders.ApplyCoupon(ctx, created.ID, orders.CouponSummer2024)
	require.NoError(t, err)
	require.Equal(t, int64(2835), discounted.Total)
}

func TestApplyCouponTruncatesRemainder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.store.SeedProducts(store.Product{ID: sparesID, Name: "squeeze", Price: 1015, Stock: 5})
	env.fillCart(t, userID, map[string]int{sparesID: 1})

	created, err := env.orders.CreateOrder(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, int64(1015), created.Total)

	// Integer division drops the half-unit: 1015 * 9 / 10 = 913, not 913.5.
	discounted, err := env.orders.ApplyCoupon(ctx, created.ID, orders.CouponSummer2024)
	require.NoError(t, err)
	require.Equal(t, int64(913), discounted.Total)
}

func TestApplyCouponInvalidCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.fillCart(t, userID, map[string]int{pepsiID: 2, chepsiID: 1})

	created, err := env.orders.CreateOrder(ctx, userID)
	require.NoError(t, err)

	_, err = env.orders.ApplyCoupon(ctx, created.ID, "WINTER2024")
	require.Error(t, err)
	require.True(t, apperr.IsKind(err, apperr.KindInvalidCoupon))

	got, err := env.orders.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3500), got.Total, "failed coupon leaves total unchanged")
}

func TestApplyCouponNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.orders.ApplyCoupon(context.Background(), uuid.NewString(), orders.CouponSummer2024)
	require.Error(t, err)
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestApplyCouponIgnoresOrderStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.fillCart(t, userID, map[string]int{pepsiID: 1})

	created, err := env.orders.CreateOrder(ctx, userID)
	require.NoError(t, err)
	_, err = env.orders.UpdateOrderStatus(ctx, created.ID, orders.StatusCompleted)
	require.NoError(t, err)

	discounted, err := env.orders.ApplyCoupon(ctx, created.ID, orders.CouponSummer2024)
	require.NoError(t, err)
	require.Equal(t, created.Total*9/10, discounted.Total)
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const n = 10 // matches pepsi's seeded stock
	buyers := make([]string, n)
	for i := range buyers {
		buyers[i] = uuid.NewString()
		env.store.SeedUsers(store.User{ID: buyers[i], Name: "buyer"})
		env.fillCart(t, buyers[i], map[string]int{pepsiID: 1})
	}

	errs := make(chan error, n)
	var wg sync.WaitGroup
	for _, uid := range buyers {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			_, err := env.orders.CreateOrder(ctx, uid)
			errs <- err
		}(uid)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, 0, env.stockOf(t, pepsiID))
}
