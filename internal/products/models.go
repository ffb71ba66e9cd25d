package products

import (
	"database/sql"
	"time"
)

const (
	StatusOffShelf = 0
	StatusOnShelf  = 1
)

// Product is a catalog row. Price and OriginalPrice are cents. The order
// engine snapshots name/thumb/price at purchase time, so later catalog edits
// never rewrite history.
type Product struct {
	ID            int64          `json:"id"`
	CategoryID    sql.NullInt64  `json:"category_id"`
	Name          string         `json:"name"`
	Description   sql.NullString `json:"description"`
	ThumbURL      sql.NullString `json:"thumb_url"`
	Price         int64          `json:"price"`
	OriginalPrice sql.NullInt64  `json:"original_price"`
	Stock         int            `json:"stock"`
	SalesCount    int            `json:"sales_count"`
	Status        int            `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// OnShelf reports whether the product is currently purchasable.
func (p Product) OnShelf() bool {
	return p.Status == StatusOnShelf
}
