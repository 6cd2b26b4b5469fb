package cart

import (
	"context"
	"testing"

	"citystore-api-io/api/pkg/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStorage struct {
	Storage
	fail bool
}

func (f *failingStorage) Save(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Storage.Save(ctx, key, value)
}

func tee(size string, qty int) models.CartItem {
	return models.CartItem{Id: "1", Name: "Classic Cotton T-Shirt", Price: 29.99, Size: size, Color: "White", Quantity: qty}
}

func openEmpty(t *testing.T) (*Cart, Storage) {
	storage := NewMemoryStorage()
	c, err := Open(context.Background(), storage)
	require.NoError(t, err)
	return c, storage
}

func TestAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("merges lines with the same identity", func(t *testing.T) {
		c, _ := openEmpty(t)
		require.NoError(t, c.Add(ctx, tee("M", 2)))
		require.NoError(t, c.Add(ctx, tee("M", 1)))

		require.Len(t, c.Items(), 1)
		assert.Equal(t, 3, c.Items()[0].Quantity)
		assert.Equal(t, 89.97, c.TotalPrice())
	})

	t.Run("different size is a new line", func(t *testing.T) {
		c, _ := openEmpty(t)
		require.NoError(t, c.Add(ctx, tee("M", 1)))
		require.NoError(t, c.Add(ctx, tee("L", 1)))

		assert.Len(t, c.Items(), 2)
		assert.Equal(t, 2, c.TotalItems())
	})

	t.Run("mixed cart totals", func(t *testing.T) {
		c, _ := openEmpty(t)
		require.NoError(t, c.Add(ctx, tee("M", 2)))
		require.NoError(t, c.Add(ctx, models.CartItem{Id: "3", Name: "Premium Denim Jeans", Price: 79.99, Size: "32", Color: "Blue", Quantity: 1}))

		assert.Equal(t, 3, c.TotalItems())
		assert.Equal(t, 139.97, c.TotalPrice())
	})

	t.Run("rejects bad items", func(t *testing.T) {
		c, _ := openEmpty(t)

		err := c.Add(ctx, tee("M", 0))
		verr, ok := models.IsValidationError(err)
		require.True(t, ok)
		assert.Contains(t, verr.Fields, "quantity")

		_, ok = models.IsValidationError(c.Add(ctx, models.CartItem{Quantity: 1}))
		assert.True(t, ok)
		assert.True(t, c.IsEmpty())
	})
}

func TestRemoveAndSetQuantity(t *testing.T) {
	ctx := context.Background()
	c, _ := openEmpty(t)
	require.NoError(t, c.Add(ctx, tee("M", 2)))
	require.NoError(t, c.Add(ctx, tee("L", 1)))

	t.Run("set quantity", func(t *testing.T) {
		require.NoError(t, c.SetQuantity(ctx, "1", "M", "White", 5))
		assert.Equal(t, 6, c.TotalItems())
	})

	t.Run("zero quantity removes the line", func(t *testing.T) {
		require.NoError(t, c.SetQuantity(ctx, "1", "M", "White", 0))
		require.Len(t, c.Items(), 1)
		assert.Equal(t, "L", c.Items()[0].Size)
	})

	t.Run("removing a missing line is a no-op", func(t *testing.T) {
		require.NoError(t, c.Remove(ctx, "1", "XL", "White"))
		assert.Len(t, c.Items(), 1)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, c.Clear(ctx))
		assert.True(t, c.IsEmpty())
		assert.Equal(t, 0, c.TotalItems())
		assert.Equal(t, 0.0, c.TotalPrice())
	})
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()

	t.Run("reopened cart sees the same lines", func(t *testing.T) {
		c, storage := openEmpty(t)
		require.NoError(t, c.Add(ctx, tee("M", 2)))
		require.NoError(t, c.SaveShippingAddress(ctx, models.ShippingInfo{FirstName: "Sam", City: "Cairo"}))
		require.NoError(t, c.SavePaymentMethod(ctx, models.PaymentPaypal))

		again, err := Open(ctx, storage)
		require.NoError(t, err)
		assert.Equal(t, c.Items(), again.Items())
		require.NotNil(t, again.ShippingAddress())
		assert.Equal(t, "Cairo", again.ShippingAddress().City)
		assert.Equal(t, models.PaymentPaypal, again.PaymentMethod())
	})

	t.Run("clear erases persisted lines", func(t *testing.T) {
		c, storage := openEmpty(t)
		require.NoError(t, c.Add(ctx, tee("M", 2)))
		require.NoError(t, c.Clear(ctx))

		_, found, err := storage.Load(ctx, KeyItems)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("failed write leaves memory unchanged", func(t *testing.T) {
		storage := &failingStorage{Storage: NewMemoryStorage()}
		c, err := Open(ctx, storage)
		require.NoError(t, err)
		require.NoError(t, c.Add(ctx, tee("M", 1)))

		storage.fail = true
		assert.Error(t, c.Add(ctx, tee("M", 4)))
		assert.Error(t, c.SetQuantity(ctx, "1", "M", "White", 9))
		assert.Error(t, c.Remove(ctx, "1", "M", "White"))
		assert.Equal(t, 1, c.TotalItems())
	})

	t.Run("unreadable items start empty", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.Save(ctx, KeyItems, []byte("{not json")))

		c, err := Open(ctx, storage)
		require.NoError(t, err)
		assert.True(t, c.IsEmpty())
	})

	t.Run("invalid payment method", func(t *testing.T) {
		c, _ := openEmpty(t)
		_, ok := models.IsValidationError(c.SavePaymentMethod(ctx, "cash"))
		assert.True(t, ok)
	})
}

func TestSummarize(t *testing.T) {
	cases := []struct {
		subtotal string
		want     Summary
	}{
		{"40.00", Summary{Subtotal: 40, Shipping: 5.99, Tax: 3.2, Total: 49.19}},
		{"60.00", Summary{Subtotal: 60, Shipping: 0, Tax: 4.8, Total: 64.8}},
		{"50.00", Summary{Subtotal: 50, Shipping: 0, Tax: 4, Total: 54}},
		{"139.97", Summary{Subtotal: 139.97, Shipping: 0, Tax: 11.2, Total: 151.17}},
		{"0", Summary{Subtotal: 0, Shipping: 5.99, Tax: 0, Total: 5.99}},
	}

	for _, tc := range cases {
		t.Run(tc.subtotal, func(t *testing.T) {
			assert.Equal(t, tc.want, Summarize(decimal.RequireFromString(tc.subtotal)))
		})
	}
}
