package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (Conf, error) {
	if db == nil {
		return Conf{}, fmt.Errorf("db is nil")
	}
	return Conf{db: db}, nil
}

// AddItem puts qty units of a product into the user's active cart, creating
// the cart on first use. The combined quantity is capped by current stock.
func (c *Conf) AddItem(ctx context.Context, userID string, productID int64, qty int, stock int) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		cartID, err := activeCartID(ctx, tx, userID, true)
		if err != nil {
			return err
		}

		queryItem := `
			SELECT id, quantity
			FROM cart_items
			WHERE cart_id = $1 AND product_id = $2
		`
		var itemID int64
		var existing int
		err = tx.QueryRowContext(ctx, queryItem, cartID, productID).Scan(&itemID, &existing)
		if errors.Is(err, sql.ErrNoRows) {
			if qty > stock {
				return fmt.Errorf("insufficient stock: requested %d, available %d", qty, stock)
			}
			queryInsert := `
				INSERT INTO cart_items (cart_id, product_id, quantity, created_at, updated_at)
				VALUES ($1, $2, $3, NOW(), NOW())
			`
			if _, err := tx.ExecContext(ctx, queryInsert, cartID, productID, qty); err != nil {
				return fmt.Errorf("add cart item: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("query cart item: %w", err)
		}

		newQty := existing + qty
		if newQty > stock {
			return fmt.Errorf("insufficient stock: requested %d, available %d", newQty, stock)
		}
		queryUpdate := `
			UPDATE cart_items
			SET quantity = $1, updated_at = NOW()
			WHERE id = $2
		`
		if _, err := tx.ExecContext(ctx, queryUpdate, newQty, itemID); err != nil {
			return fmt.Errorf("update cart item quantity: %w", err)
		}
		return nil
	})
}

// Items returns the contents of the user's active cart. An absent cart is an
// empty cart, not an error.
func (c *Conf) Items(ctx context.Context, userID string) (*CartResponse, error) {
	var items []CartItem

	err := c.withTx(ctx, func(tx *sql.Tx) error {
		cartID, err := activeCartID(ctx, tx, userID, false)
		if err != nil {
			return err
		}
		if cartID == 0 {
			return nil
		}

		queryItems := `
			SELECT product_id, quantity
			FROM cart_items
			WHERE cart_id = $1
			ORDER BY created_at
		`
		rows, err := tx.QueryContext(ctx, queryItems, cartID)
		if err != nil {
			return fmt.Errorf("query cart items: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var item CartItem
			if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
				return fmt.Errorf("scan cart item: %w", err)
			}
			items = append(items, item)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return &CartResponse{Items: items}, nil
}

// RemoveItem drops one product line from the active cart.
func (c *Conf) RemoveItem(ctx context.Context, userID string, productID int64) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		cartID, err := activeCartID(ctx, tx, userID, false)
		if err != nil {
			return err
		}
		if cartID == 0 {
			return nil
		}
		query := `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`
		if _, err := tx.ExecContext(ctx, query, cartID, productID); err != nil {
			return fmt.Errorf("remove cart item: %w", err)
		}
		return nil
	})
}

// ClearActive empties the user's active cart inside the caller's
// transaction. The order engine calls it after a successful checkout so the
// cart and the new order commit together.
func ClearActive(ctx context.Context, tx *sql.Tx, userID string) error {
	query := `
		DELETE FROM cart_items
		WHERE cart_id IN (SELECT id FROM cart WHERE user_id = $1 AND status = 'active')
	`
	if _, err := tx.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("clear active cart: %w", err)
	}
	return nil
}

// activeCartID finds the user's active cart under a row lock; with create
// set it makes one when none exists, otherwise it reports 0.
func activeCartID(ctx context.Context, tx *sql.Tx, userID string, create bool) (int64, error) {
	queryActive := `
		SELECT id
		FROM cart
		WHERE user_id = $1 AND status = 'active'
		FOR UPDATE
	`
	var cartID int64
	err := tx.QueryRowContext(ctx, queryActive, userID).Scan(&cartID)
	if errors.Is(err, sql.ErrNoRows) {
		if !create {
			return 0, nil
		}
		queryCreate := `
			INSERT INTO cart (user_id, status, created_at, updated_at)
			VALUES ($1, 'active', NOW(), NOW())
			RETURNING id
		`
		if err := tx.QueryRowContext(ctx, queryCreate, userID).Scan(&cartID); err != nil {
			return 0, fmt.Errorf("create cart: %w", err)
		}
		return cartID, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query active cart: %w", err)
	}
	return cartID, nil
}

func (c *Conf) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if er := tx.Rollback(); er != nil && !errors.Is(er, sql.ErrTxDone) {
			return fmt.Errorf("failed to rollback withTx: %w", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit withTx: %w", err)
	}
	return nil
}
