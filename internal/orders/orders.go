package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"storefront-service/internal/cart"
	"storefront-service/internal/products"
	"storefront-service/internal/shop"
	"storefront-service/internal/users"
)

// Audit actions a merchant may take on an order awaiting acceptance.
const (
	AuditAccept = "accept"
	AuditReject = "reject"
)

// Conf orchestrates the order lifecycle: it prices carts, reserves and
// releases stock, persists orders with their snapshots, and appends the
// audit timeline. Every mutation runs in a single transaction.
type Conf struct {
	db   *sql.DB
	shop shop.Conf
}

func NewConf(db *sql.DB, shopConf shop.Conf) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db, shop: shopConf}, nil
}

// Preview prices a cart without persisting anything.
func (c *Conf) Preview(ctx context.Context, req PreviewRequest) (PreviewResponse, error) {
	cfg, err := c.shop.GetConfig(ctx)
	if err != nil {
		return PreviewResponse{}, err
	}

	var quote Quote
	err = c.withTx(ctx, func(tx *sql.Tx) error {
		catalog, err := products.GetForPricing(ctx, tx, lineProductIDs(req.Items))
		if err != nil {
			return err
		}
		quote, err = BuildQuote(req.Items, catalog, req.DeliveryType, cfg)
		return err
	})
	if err != nil {
		return PreviewResponse{}, err
	}

	return PreviewResponse{
		TotalGoodsPrice: quote.Subtotal,
		DeliveryFee:     quote.DeliveryFee,
		FinalPrice:      quote.FinalAmount,
		IsOpen:          cfg.IsOpen,
		DeliveryMsg:     quote.DeliveryMsg,
	}, nil
}

// Create places an order: price, reserve stock, persist the order with item
// and address snapshots, issue a pickup code for pickup mode, and append the
// first timeline entries. Payment is mocked, so the order lands directly in
// PendingDelivery or PendingPickup. All of it commits atomically; any
// failure leaves no trace.
func (c *Conf) Create(ctx context.Context, userID string, req CreateRequest) (CreateResponse, error) {
	if userID == "" {
		return CreateResponse{}, fmt.Errorf("user id is empty")
	}
	if len(req.Items) == 0 {
		return CreateResponse{}, ErrEmptyOrder
	}
	if !req.DeliveryType.Valid() {
		return CreateResponse{}, fmt.Errorf("unknown delivery type %q", req.DeliveryType)
	}
	if req.DeliveryType == TypeDelivery && req.AddressID <= 0 {
		return CreateResponse{}, ErrAddressRequired
	}

	cfg, err := c.shop.GetConfig(ctx)
	if err != nil {
		return CreateResponse{}, err
	}
	if !cfg.IsOpen {
		return CreateResponse{}, ErrShopClosed
	}

	var resp CreateResponse
	createTx := func(tx *sql.Tx) error {
		catalog, err := products.GetForPricing(ctx, tx, lineProductIDs(req.Items))
		if err != nil {
			return err
		}
		quote, err := BuildQuote(req.Items, catalog, req.DeliveryType, cfg)
		if err != nil {
			return err
		}
		if quote.Subtotal < cfg.MinOrderAmount {
			return &BelowMinOrderError{Subtotal: quote.Subtotal, Minimum: cfg.MinOrderAmount}
		}

		var snapshot *AddressSnapshot
		if req.DeliveryType == TypeDelivery {
			addr, err := users.GetAddress(ctx, tx, req.AddressID, userID)
			if err != nil {
				return err
			}
			snapshot = &AddressSnapshot{Name: addr.ContactName, Phone: addr.ContactPhone, Address: addr.DetailAddress}
		}

		for _, line := range req.Items {
			if err := products.Reserve(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		orderNo, err := allocateOrderNo(ctx, tx)
		if err != nil {
			return err
		}

		initialStatus := StatusPendingDelivery
		var pickupCode string
		if req.DeliveryType == TypePickup {
			initialStatus = StatusPendingPickup
			pickupCode, err = allocatePickupCode(ctx, tx)
			if err != nil {
				return err
			}
		}

		var snapshotJSON []byte
		if snapshot != nil {
			snapshotJSON, err = json.Marshal(snapshot)
			if err != nil {
				return fmt.Errorf("marshal address snapshot: %w", err)
			}
		}

		queryInsert := `
			INSERT INTO orders (order_no, user_id, total_amount, delivery_fee, final_amount,
			                    status, delivery_type, address_snapshot, pickup_code, pickup_time,
			                    remark, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, NULLIF($11, ''), NOW(), NOW())
			RETURNING id
		`
		var orderID int64
		err = tx.QueryRowContext(ctx, queryInsert,
			orderNo, userID, quote.Subtotal, quote.DeliveryFee, quote.FinalAmount,
			initialStatus, req.DeliveryType, snapshotJSON, pickupCode, req.PickupTime, req.Remark,
		).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		queryItem := `
			INSERT INTO order_items (order_id, product_id, product_name, product_image, price, quantity)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		`
		for _, line := range req.Items {
			p := catalog[line.ProductID]
			if _, err := tx.ExecContext(ctx, queryItem,
				orderID, p.ID, p.Name, p.ThumbURL.String, p.Price, line.Quantity); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}

		// Two entries on creation: the payment step is mocked but the
		// customer-facing history still shows it.
		if err := appendTimeline(ctx, tx, orderID, timelineOrderPlaced, ""); err != nil {
			return err
		}
		if err := appendTimeline(ctx, tx, orderID, timelinePaymentSucceeded, "Mock payment"); err != nil {
			return err
		}

		if err := cart.ClearActive(ctx, tx, userID); err != nil {
			return err
		}

		resp = CreateResponse{OrderID: orderID, OrderNo: orderNo, PayParams: map[string]string{"mock": "pay_params"}}
		return nil
	}

	// A unique violation on the order number or pickup code means two
	// creates raced past the SELECT checks; rerunning the transaction
	// regenerates both identifiers.
	for attempt := 0; ; attempt++ {
		err = c.withTx(ctx, createTx)
		if err == nil || !uniqueConflict(err) || attempt+1 >= createAttempts {
			break
		}
	}
	if err != nil {
		return CreateResponse{}, err
	}
	return resp, nil
}

// Cancel is the customer-initiated cancellation. Allowed only before the
// merchant has moved the order forward; reserved stock is returned to
// inventory in the same transaction.
func (c *Conf) Cancel(ctx context.Context, userID string, orderID int64, reason string) (Order, error) {
	var cancelled Order
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		o, err := lockOrder(ctx, tx, orderID, userID)
		if err != nil {
			return err
		}
		if !o.Status.Cancellable() {
			return ErrInvalidState
		}

		items, err := loadItemsTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		for _, item := range items {
			if !item.ProductID.Valid {
				continue
			}
			if err := products.Release(ctx, tx, item.ProductID.Int64, item.Quantity); err != nil {
				return err
			}
		}

		queryUpdate := `
			UPDATE orders
			SET status = $1, cancel_reason = NULLIF($2, ''), updated_at = NOW()
			WHERE id = $3
		`
		if _, err := tx.ExecContext(ctx, queryUpdate, StatusCancelled, reason, orderID); err != nil {
			return fmt.Errorf("cancel order %d: %w", orderID, err)
		}

		remark := "Cancelled by customer"
		if reason != "" {
			remark = "Cancelled by customer: " + reason
		}
		if err := appendTimeline(ctx, tx, orderID, timelineOrderCancelled, remark); err != nil {
			return err
		}

		o.Status = StatusCancelled
		o.StatusText = o.Status.Text(o.DeliveryType)
		o.CancelReason = reason
		cancelled = o
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return cancelled, nil
}

// Audit is the merchant's accept/reject decision on a delivery order
// awaiting acceptance. Rejection releases the reserved stock, mirroring
// customer cancellation.
func (c *Conf) Audit(ctx context.Context, orderID int64, action, reason string) (Order, error) {
	if action != AuditAccept && action != AuditReject {
		return Order{}, fmt.Errorf("unknown audit action %q", action)
	}
	if action == AuditReject && strings.TrimSpace(reason) == "" {
		return Order{}, ErrRejectReasonRequired
	}

	var audited Order
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		o, err := lockOrder(ctx, tx, orderID, "")
		if err != nil {
			return err
		}
		if o.Status != StatusPendingDelivery {
			return ErrInvalidState
		}

		if action == AuditAccept {
			queryUpdate := `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`
			if _, err := tx.ExecContext(ctx, queryUpdate, StatusDelivering, orderID); err != nil {
				return fmt.Errorf("accept order %d: %w", orderID, err)
			}
			if err := appendTimeline(ctx, tx, orderID, timelineMerchantAccepted, "Preparing for delivery"); err != nil {
				return err
			}
			o.Status = StatusDelivering
		} else {
			items, err := loadItemsTx(ctx, tx, orderID)
			if err != nil {
				return err
			}
			for _, item := range items {
				if !item.ProductID.Valid {
					continue
				}
				if err := products.Release(ctx, tx, item.ProductID.Int64, item.Quantity); err != nil {
					return err
				}
			}
			queryUpdate := `UPDATE orders SET status = $1, reject_reason = $2, updated_at = NOW() WHERE id = $3`
			if _, err := tx.ExecContext(ctx, queryUpdate, StatusCancelled, reason, orderID); err != nil {
				return fmt.Errorf("reject order %d: %w", orderID, err)
			}
			if err := appendTimeline(ctx, tx, orderID, timelineMerchantRejected, "Reason: "+reason); err != nil {
				return err
			}
			o.Status = StatusCancelled
			o.RejectReason = reason
		}

		o.StatusText = o.Status.Text(o.DeliveryType)
		audited = o
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return audited, nil
}

// CompleteDelivery marks a delivery order as handed over.
func (c *Conf) CompleteDelivery(ctx context.Context, orderID int64) (Order, error) {
	var completed Order
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		o, err := lockOrder(ctx, tx, orderID, "")
		if err != nil {
			return err
		}
		if o.Status != StatusDelivering {
			return ErrInvalidState
		}

		queryUpdate := `UPDATE orders SET status = $1, verified_at = NOW(), updated_at = NOW() WHERE id = $2`
		if _, err := tx.ExecContext(ctx, queryUpdate, StatusCompleted, orderID); err != nil {
			return fmt.Errorf("complete delivery for order %d: %w", orderID, err)
		}
		if err := appendTimeline(ctx, tx, orderID, timelineOrderDelivered, "Confirmed by merchant"); err != nil {
			return err
		}

		o.Status = StatusCompleted
		o.StatusText = o.Status.Text(o.DeliveryType)
		completed = o
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return completed, nil
}

// VerifyPickup resolves a 6-digit code to the unique non-terminal pickup
// order, completes it, and returns the handover summary for the merchant's
// confirmation screen.
func (c *Conf) VerifyPickup(ctx context.Context, code string) (VerifyResult, error) {
	var result VerifyResult
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		queryLock := `
			SELECT ` + orderColumns + `
			FROM orders
			WHERE pickup_code = $1 AND status NOT IN ($2, $3)
			FOR UPDATE
		`
		o, err := scanOrder(tx.QueryRowContext(ctx, queryLock, code, StatusCompleted, StatusCancelled))
		if errors.Is(err, sql.ErrNoRows) {
			// Distinguish an already-redeemed code from a bogus one.
			var exists int
			err := tx.QueryRowContext(ctx,
				`SELECT 1 FROM orders WHERE pickup_code = $1 AND status = $2`,
				code, StatusCompleted).Scan(&exists)
			if err == nil {
				return ErrAlreadyVerified
			}
			if errors.Is(err, sql.ErrNoRows) {
				return ErrInvalidPickupCode
			}
			return fmt.Errorf("check redeemed pickup code: %w", err)
		}
		if err != nil {
			return fmt.Errorf("resolve pickup code: %w", err)
		}
		if o.Status != StatusPendingPickup {
			return ErrInvalidState
		}

		queryUpdate := `UPDATE orders SET status = $1, verified_at = NOW(), updated_at = NOW() WHERE id = $2`
		if _, err := tx.ExecContext(ctx, queryUpdate, StatusCompleted, o.ID); err != nil {
			return fmt.Errorf("verify pickup for order %d: %w", o.ID, err)
		}
		if err := appendTimeline(ctx, tx, o.ID, timelinePickupVerified, "Verified by merchant"); err != nil {
			return err
		}

		items, err := loadItemsTx(ctx, tx, o.ID)
		if err != nil {
			return err
		}
		result = VerifyResult{OrderID: o.ID, OrderNo: o.OrderNo, FinalAmount: o.FinalAmount}
		for _, item := range items {
			result.Items = append(result.Items, VerifiedItem{
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				Price:       item.Price,
			})
		}
		return nil
	})
	if err != nil {
		return VerifyResult{}, err
	}
	return result, nil
}

// List returns the user's orders, newest first, with line items loaded for
// thumbnails. A nil status filter means all statuses.
func (c *Conf) List(ctx context.Context, userID string, statusFilter *Status) ([]Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
	`
	args := []any{userID}
	if statusFilter != nil {
		args = append(args, *statusFilter)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC, id DESC"

	list, err := c.queryOrders(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := c.attachItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Detail returns one order with full items and timeline. A non-empty userID
// restricts the lookup to that owner; the merchant side passes "".
func (c *Conf) Detail(ctx context.Context, userID string, orderID int64) (Order, error) {
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

	o, err := scanOrder(c.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("get order %d: %w", orderID, err)
	}

	list := []Order{o}
	if err := c.attachItems(ctx, list); err != nil {
		return Order{}, err
	}
	o = list[0]

	o.Timeline, err = c.loadTimeline(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

// AdminList pages through all orders for the merchant dashboard and reports
// the total for the pager.
func (c *Conf) AdminList(ctx context.Context, statusFilter *Status, page, size int) ([]Order, int, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}

	var filter string
	var args []any
	if statusFilter != nil {
		args = append(args, *statusFilter)
		filter = " WHERE status = $1"
	}

	var total int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+filter, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	args = append(args, size)
	limitPos := len(args)
	args = append(args, (page-1)*size)
	offsetPos := len(args)

	query := `SELECT ` + orderColumns + ` FROM orders` + filter +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", limitPos, offsetPos)

	list, err := c.queryOrders(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	if err := c.attachItems(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func lineProductIDs(lines []OrderLine) []int64 {
	seen := make(map[int64]struct{}, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	return ids
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
