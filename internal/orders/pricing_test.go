package orders

import (
	"errors"
	"testing"

	"storefront-service/internal/products"
	"storefront-service/internal/shop"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() map[int64]products.Product {
	return map[int64]products.Product{
		1: {ID: 1, Name: "Milk", Price: 2000, Stock: 10, Status: products.StatusOnShelf},
		2: {ID: 2, Name: "Bread", Price: 500, Stock: 5, Status: products.StatusOnShelf},
		3: {ID: 3, Name: "Retired Item", Price: 100, Stock: 3, Status: products.StatusOffShelf},
	}
}

func TestBuildQuoteDeliveryFee(t *testing.T) {
	cfg := shop.DefaultConfig() // fee 3.00, free over 30.00

	t.Run("free delivery above threshold", func(t *testing.T) {
		q, err := BuildQuote([]OrderLine{{ProductID: 1, Quantity: 2}}, testCatalog(), TypeDelivery, cfg)
		require.NoError(t, err)
		assert.Equal(t, int64(4000), q.Subtotal)
		assert.Equal(t, int64(0), q.DeliveryFee)
		assert.Equal(t, int64(4000), q.FinalAmount)
	})

	t.Run("fee charged below threshold", func(t *testing.T) {
		q, err := BuildQuote([]OrderLine{{ProductID: 2, Quantity: 1}}, testCatalog(), TypeDelivery, cfg)
		require.NoError(t, err)
		assert.Equal(t, int64(500), q.Subtotal)
		assert.Equal(t, int64(300), q.DeliveryFee)
		assert.Equal(t, int64(800), q.FinalAmount)
	})

	t.Run("exactly at threshold is free", func(t *testing.T) {
		// 6 * 5.00 = 30.00
		q, err := BuildQuote([]OrderLine{{ProductID: 2, Quantity: 6}}, map[int64]products.Product{
			2: {ID: 2, Name: "Bread", Price: 500, Stock: 10, Status: products.StatusOnShelf},
		}, TypeDelivery, cfg)
		require.NoError(t, err)
		assert.Equal(t, int64(3000), q.Subtotal)
		assert.Equal(t, int64(0), q.DeliveryFee)
		assert.Equal(t, int64(3000), q.FinalAmount)
	})

	t.Run("pickup never pays a fee", func(t *testing.T) {
		q, err := BuildQuote([]OrderLine{{ProductID: 2, Quantity: 1}}, testCatalog(), TypePickup, cfg)
		require.NoError(t, err)
		assert.Equal(t, int64(0), q.DeliveryFee)
		assert.Equal(t, int64(500), q.FinalAmount)
		assert.Equal(t, "Pickup orders have no delivery fee", q.DeliveryMsg)
	})
}

func TestBuildQuoteInvariant(t *testing.T) {
	cfg := shop.DefaultConfig()
	carts := [][]OrderLine{
		{{ProductID: 1, Quantity: 1}},
		{{ProductID: 2, Quantity: 3}},
		{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 4}},
	}
	for _, lines := range carts {
		for _, mode := range []DeliveryType{TypeDelivery, TypePickup} {
			q, err := BuildQuote(lines, testCatalog(), mode, cfg)
			require.NoError(t, err)
			assert.Equal(t, q.Subtotal+q.DeliveryFee, q.FinalAmount)
		}
	}
}

func TestBuildQuoteRejections(t *testing.T) {
	cfg := shop.DefaultConfig()

	t.Run("empty cart", func(t *testing.T) {
		_, err := BuildQuote(nil, testCatalog(), TypeDelivery, cfg)
		assert.ErrorIs(t, err, ErrEmptyOrder)
	})

	t.Run("unknown delivery type", func(t *testing.T) {
		_, err := BuildQuote([]OrderLine{{ProductID: 1, Quantity: 1}}, testCatalog(), DeliveryType("drone"), cfg)
		assert.Error(t, err)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := BuildQuote([]OrderLine{{ProductID: 99, Quantity: 1}}, testCatalog(), TypeDelivery, cfg)
		assert.ErrorIs(t, err, products.ErrProductNotFound)
	})

	t.Run("off-shelf product", func(t *testing.T) {
		_, err := BuildQuote([]OrderLine{{ProductID: 3, Quantity: 1}}, testCatalog(), TypeDelivery, cfg)
		assert.ErrorIs(t, err, ErrProductOffShelf)
	})

	t.Run("insufficient stock", func(t *testing.T) {
		_, err := BuildQuote([]OrderLine{{ProductID: 2, Quantity: 6}}, testCatalog(), TypeDelivery, cfg)
		var stockErr *products.InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		assert.Equal(t, int64(2), stockErr.ProductID)
		assert.Equal(t, 6, stockErr.Requested)
		assert.Equal(t, 5, stockErr.Available)
	})
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "30.50", formatCents(3050))
	assert.Equal(t, "3.00", formatCents(300))
	assert.Equal(t, "0.05", formatCents(5))
	assert.Equal(t, "0.00", formatCents(0))
	assert.Equal(t, "-1.50", formatCents(-150))
}
