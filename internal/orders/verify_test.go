package orders

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePickupCode(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code := generatePickupCode()
		require.Len(t, code, 6)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "code %q contains non-digit", code)
		}
		// Leading zeros never happen: the range starts at 100000.
		assert.NotEqual(t, byte('0'), code[0])
	}
}

func TestGenerateOrderNo(t *testing.T) {
	no := generateOrderNo()
	require.Len(t, no, 18)
	for _, r := range no {
		require.True(t, r >= '0' && r <= '9', "order no %q contains non-digit", no)
	}
}

func TestUniqueConflict(t *testing.T) {
	assert.True(t, uniqueConflict(&pgconn.PgError{Code: "23505", ConstraintName: "orders_order_no_key"}))
	assert.True(t, uniqueConflict(fmt.Errorf("insert order: %w",
		&pgconn.PgError{Code: "23505", ConstraintName: "idx_orders_active_pickup_code"})))

	// Conflicts on unrelated constraints must not trigger a regenerate.
	assert.False(t, uniqueConflict(&pgconn.PgError{Code: "23505", ConstraintName: "cart_items_cart_id_product_id_key"}))
	assert.False(t, uniqueConflict(&pgconn.PgError{Code: "23503", ConstraintName: "order_items_order_id_fkey"}))
	assert.False(t, uniqueConflict(errors.New("connection reset")))
	assert.False(t, uniqueConflict(nil))
}
