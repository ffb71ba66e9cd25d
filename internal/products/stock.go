package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InsufficientStockError names the offending product and the quantities
// involved so callers can surface an actionable message.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (%s): requested %d, available %d",
		e.ProductID, e.ProductName, e.Requested, e.Available)
}

// Reserve decrements stock and bumps the sales counter in one conditional
// update. Two concurrent reservations cannot both pass the stock check: the
// row lock taken by the first UPDATE serializes them, and the WHERE clause
// rejects the loser. Runs inside the caller's transaction.
func Reserve(ctx context.Context, tx *sql.Tx, productID int64, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("reserve quantity must be positive, got %d", qty)
	}

	query := `
		UPDATE products
		SET stock = stock - $2, sales_count = sales_count + $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`
	res, err := tx.ExecContext(ctx, query, productID, qty)
	if err != nil {
		return fmt.Errorf("reserve stock for product %d: %w", productID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reserve stock rows affected: %w", err)
	}
	if n == 0 {
		// Either the product vanished or the stock check failed; re-read to
		// tell the two apart and report the available quantity.
		var name string
		var available int
		err := tx.QueryRowContext(ctx, `SELECT name, stock FROM products WHERE id = $1`, productID).
			Scan(&name, &available)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if err != nil {
			return fmt.Errorf("read stock for product %d: %w", productID, err)
		}
		return &InsufficientStockError{ProductID: productID, ProductName: name, Requested: qty, Available: available}
	}
	return nil
}

// Release returns previously reserved stock when an order is cancelled or
// rejected. The caller gates on order status so each reservation is released
// exactly once.
func Release(ctx context.Context, tx *sql.Tx, productID int64, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("release quantity must be positive, got %d", qty)
	}

	query := `
		UPDATE products
		SET stock = stock + $2, sales_count = GREATEST(sales_count - $2, 0), updated_at = NOW()
		WHERE id = $1
	`
	_, err := tx.ExecContext(ctx, query, productID, qty)
	if err != nil {
		return fmt.Errorf("release stock for product %d: %w", productID, err)
	}
	return nil
}
