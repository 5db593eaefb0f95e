package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MustafaTarek77/Order-Management-System/internal/store"
	"github.com/MustafaTarek77/Order-Management-System/internal/stores/memory"

	"github.com/stretchr/testify/require"
)

func TestInTxRollsBackAllWrites(t *testing.T) {
	s := memory.NewStore()
	s.SeedUsers(store.User{ID: "u1"})
	s.SeedProducts(store.Product{ID: "p1", Name: "pepsi", Price: 100, Stock: 5})
	ctx := context.Background()

	_, err := s.CreateCart(ctx, "u1", []store.NewCartItem{{ProductID: "p1", Quantity: 2, Price: 100}})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.InTx(ctx, func(tx store.Storer) error {
		if _, err := tx.CreateOrder(ctx, store.NewOrder{
			ID: "o1", UserID: "u1", Status: "PENDING", OrderDate: time.Now(), Total: 200,
		}); err != nil {
			return err
		}
		if err := tx.DecrementProductStock(ctx, "p1", 2); err != nil {
			return err
		}
		if err := tx.DeleteCart(ctx, "u1"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Every write inside the failed transaction is undone.
	_, err = s.FindOrder(ctx, "o1")
	require.ErrorIs(t, err, store.ErrNotFound)
	p, err := s.FindProduct(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 5, p.Stock)
	crt, err := s.FindCartByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, crt.Items, 1)
}

func TestInTxCommitsOnSuccess(t *testing.T) {
	s := memory.NewStore()
	s.SeedProducts(store.Product{ID: "p1", Price: 100, Stock: 5})
	ctx := context.Background()

	err := s.InTx(ctx, func(tx store.Storer) error {
		return tx.DecrementProductStock(ctx, "p1", 3)
	})
	require.NoError(t, err)

	p, err := s.FindProduct(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 2, p.Stock)
}

func TestNestedInTxJoinsTransaction(t *testing.T) {
	s := memory.NewStore()
	s.SeedProducts(store.Product{ID: "p1", Price: 100, Stock: 5})
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx store.Storer) error {
		return tx.InTx(ctx, func(inner store.Storer) error {
			if err := inner.DecrementProductStock(ctx, "p1", 1); err != nil {
				return err
			}
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	p, err := s.FindProduct(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 5, p.Stock, "inner failure rolls back the joined transaction")
}

func TestDecrementProductStockNeverGoesNegative(t *testing.T) {
	s := memory.NewStore()
	s.SeedProducts(store.Product{ID: "p1", Price: 100, Stock: 1})
	ctx := context.Background()

	require.NoError(t, s.DecrementProductStock(ctx, "p1", 1))
	err := s.DecrementProductStock(ctx, "p1", 1)
	require.ErrorIs(t, err, store.ErrInsufficientStock)

	p, err := s.FindProduct(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 0, p.Stock)
}
