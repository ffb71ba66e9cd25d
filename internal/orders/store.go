package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const orderColumns = `id, order_no, user_id, total_amount, delivery_fee, final_amount,
	status, delivery_type, address_snapshot, COALESCE(pickup_code, ''), pickup_time, verified_at,
	COALESCE(remark, ''), COALESCE(reject_reason, ''), COALESCE(cancel_reason, ''),
	created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var o Order
	var snapshot []byte
	var pickupTime, verifiedAt sql.NullTime

	err := row.Scan(
		&o.ID, &o.OrderNo, &o.UserID, &o.TotalAmount, &o.DeliveryFee, &o.FinalAmount,
		&o.Status, &o.DeliveryType, &snapshot, &o.PickupCode, &pickupTime, &verifiedAt,
		&o.Remark, &o.RejectReason, &o.CancelReason,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return Order{}, err
	}

	if len(snapshot) > 0 {
		var addr AddressSnapshot
		if err := json.Unmarshal(snapshot, &addr); err != nil {
			return Order{}, fmt.Errorf("unmarshal address snapshot: %w", err)
		}
		o.AddressSnapshot = &addr
	}
	if pickupTime.Valid {
		t := pickupTime.Time
		o.PickupTime = &t
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		o.VerifiedAt = &t
	}
	o.StatusText = o.Status.Text(o.DeliveryType)
	return o, nil
}

// lockOrder fetches an order under FOR UPDATE so concurrent transitions
// serialize on the row. A non-empty userID additionally enforces ownership.
func lockOrder(ctx context.Context, tx *sql.Tx, orderID int64, userID string) (Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
	`
	args := []any{orderID}
	if userID != "" {
		args = append(args, userID)
		query += " AND user_id = $2"
	}
	query += " FOR UPDATE"

	o, err := scanOrder(tx.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("lock order %d: %w", orderID, err)
	}
	return o, nil
}

const itemColumns = `id, order_id, product_id, product_name, COALESCE(product_image, ''), price, quantity`

func scanItem(row interface{ Scan(...any) error }) (OrderItem, error) {
	var item OrderItem
	err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
		&item.ProductImage, &item.Price, &item.Quantity)
	return item, err
}

// loadItemsTx reads an order's line items inside a transaction; used by
// transitions that release stock or build handover summaries.
func loadItemsTx(ctx context.Context, tx *sql.Tx, orderID int64) ([]OrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY id`
	rows, err := tx.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("load items for order %d: %w", orderID, err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (c *Conf) queryOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var list []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// attachItems loads the line items for a batch of orders in one query.
func (c *Conf) attachItems(ctx context.Context, list []Order) error {
	if len(list) == 0 {
		return nil
	}

	placeholders := make([]string, len(list))
	args := make([]any, len(list))
	index := make(map[int64]int, len(list))
	for i := range list {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = list[i].ID
		index[list[i].ID] = i
	}

	query := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id IN (` +
		strings.Join(placeholders, ",") + `) ORDER BY order_id, id`
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		i := index[item.OrderID]
		list[i].Items = append(list[i].Items, item)
	}
	return rows.Err()
}
