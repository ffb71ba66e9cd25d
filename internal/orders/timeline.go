package orders

import (
	"context"
	"database/sql"
	"fmt"
)

// Timeline labels. They are stored verbatim and shown to the customer.
const (
	timelineOrderPlaced      = "Order placed"
	timelinePaymentSucceeded = "Payment succeeded"
	timelineOrderCancelled   = "Order cancelled"
	timelineMerchantAccepted = "Merchant accepted"
	timelineMerchantRejected = "Merchant rejected"
	timelineOrderDelivered   = "Order delivered"
	timelinePickupVerified   = "Pickup verified"
)

// appendTimeline inserts one audit record. There is deliberately no update
// or delete counterpart: the timeline is append-only.
func appendTimeline(ctx context.Context, tx *sql.Tx, orderID int64, status, remark string) error {
	query := `
		INSERT INTO order_timeline (order_id, status, remark, created_at)
		VALUES ($1, $2, NULLIF($3, ''), NOW())
	`
	if _, err := tx.ExecContext(ctx, query, orderID, status, remark); err != nil {
		return fmt.Errorf("append timeline for order %d: %w", orderID, err)
	}
	return nil
}

// loadTimeline returns the full history, oldest first.
func (c *Conf) loadTimeline(ctx context.Context, orderID int64) ([]TimelineEntry, error) {
	query := `
		SELECT id, order_id, status, COALESCE(remark, ''), created_at
		FROM order_timeline
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := c.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("load timeline for order %d: %w", orderID, err)
	}
	defer rows.Close()

	var entries []TimelineEntry
	for rows.Next() {
		var e TimelineEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Status, &e.Remark, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan timeline entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timeline: %w", err)
	}
	return entries, nil
}
