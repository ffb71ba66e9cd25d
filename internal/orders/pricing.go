package orders

import (
	"fmt"

	"storefront-service/internal/products"
	"storefront-service/internal/shop"
)

// Quote is the priced breakdown of a cart. FinalAmount is always
// Subtotal + DeliveryFee.
type Quote struct {
	Subtotal    int64
	DeliveryFee int64
	FinalAmount int64
	DeliveryMsg string
}

// BuildQuote prices the requested lines against the catalog snapshot. It is
// pure: no I/O, same inputs always yield the same quote. Both the preview
// endpoint and order creation go through it.
//
// Every line must reference an on-shelf product with enough stock; the first
// violation aborts pricing with the offending product named.
func BuildQuote(lines []OrderLine, catalog map[int64]products.Product, mode DeliveryType, cfg shop.Config) (Quote, error) {
	if len(lines) == 0 {
		return Quote{}, ErrEmptyOrder
	}
	if !mode.Valid() {
		return Quote{}, fmt.Errorf("unknown delivery type %q", mode)
	}

	var subtotal int64
	for _, line := range lines {
		p, ok := catalog[line.ProductID]
		if !ok {
			return Quote{}, fmt.Errorf("product %d: %w", line.ProductID, products.ErrProductNotFound)
		}
		if !p.OnShelf() {
			return Quote{}, fmt.Errorf("product %q: %w", p.Name, ErrProductOffShelf)
		}
		if p.Stock < line.Quantity {
			return Quote{}, &products.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   line.Quantity,
				Available:   p.Stock,
			}
		}
		subtotal += p.Price * int64(line.Quantity)
	}

	q := Quote{Subtotal: subtotal}
	switch {
	case mode == TypePickup:
		q.DeliveryMsg = "Pickup orders have no delivery fee"
	case subtotal >= cfg.FreeDeliveryThreshold:
		q.DeliveryMsg = fmt.Sprintf("Free delivery on orders over %s", formatCents(cfg.FreeDeliveryThreshold))
	default:
		q.DeliveryFee = cfg.DeliveryFee
		q.DeliveryMsg = fmt.Sprintf("Delivery fee %s, free over %s",
			formatCents(cfg.DeliveryFee), formatCents(cfg.FreeDeliveryThreshold))
	}
	q.FinalAmount = q.Subtotal + q.DeliveryFee

	return q, nil
}

// formatCents renders an amount of cents as a two-decimal string, e.g.
// 3050 -> "30.50".
func formatCents(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
