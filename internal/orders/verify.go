package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// pickupCodeAttempts bounds regeneration on collision. Running out means the
// active-order space is effectively saturated, which is a deployment
// problem, not a user error.
const pickupCodeAttempts = 5

// createAttempts bounds how many times Create reruns its transaction after
// an insert-time identifier conflict.
const createAttempts = 3

// generatePickupCode returns a code of exactly six ASCII digits.
func generatePickupCode() string {
	return fmt.Sprintf("%06d", 100000+rand.IntN(900000))
}

// generateOrderNo builds the human-facing order number: a UTC timestamp
// plus four random digits. Uniqueness is guaranteed by the DB constraint,
// not by construction; allocateOrderNo retries on collision.
func generateOrderNo() string {
	return time.Now().UTC().Format("20060102150405") + fmt.Sprintf("%04d", rand.IntN(10000))
}

// uniqueConflict reports whether err is a unique violation on one of the
// generated-identifier constraints. Two concurrent creates can pass the
// SELECT checks with the same number or code; the loser's insert fails here
// and a fresh transaction with regenerated identifiers will succeed.
func uniqueConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return pgErr.ConstraintName == "orders_order_no_key" ||
		pgErr.ConstraintName == "idx_orders_active_pickup_code"
}

// allocateOrderNo finds an order number not yet taken. The residual race
// between check and insert is handled by Create retrying the whole
// transaction on a unique-constraint conflict.
func allocateOrderNo(ctx context.Context, tx *sql.Tx) (string, error) {
	for attempt := 0; attempt < pickupCodeAttempts; attempt++ {
		no := generateOrderNo()
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE order_no = $1`, no).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return no, nil
		}
		if err != nil {
			return "", fmt.Errorf("check order no: %w", err)
		}
	}
	return "", fmt.Errorf("could not allocate a unique order number after %d attempts", pickupCodeAttempts)
}

// allocatePickupCode finds a code unused by any non-terminal order. Codes of
// completed or cancelled orders are free for reuse.
func allocatePickupCode(ctx context.Context, tx *sql.Tx) (string, error) {
	query := `
		SELECT 1 FROM orders
		WHERE pickup_code = $1 AND status NOT IN ($2, $3)
	`
	for attempt := 0; attempt < pickupCodeAttempts; attempt++ {
		code := generatePickupCode()
		var exists int
		err := tx.QueryRowContext(ctx, query, code, StatusCompleted, StatusCancelled).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("check pickup code: %w", err)
		}
	}
	return "", fmt.Errorf("could not allocate a unique pickup code after %d attempts", pickupCodeAttempts)
}
