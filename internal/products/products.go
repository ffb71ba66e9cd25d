package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrProductNotFound is returned when a referenced product id does not exist.
var ErrProductNotFound = errors.New("product not found")

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (Conf, error) {
	if db == nil {
		return Conf{}, fmt.Errorf("db is nil")
	}
	return Conf{db: db}, nil
}

const productColumns = `id, category_id, name, description, thumb_url, price,
	original_price, stock, sales_count, status, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.ThumbURL, &p.Price,
		&p.OriginalPrice, &p.Stock, &p.SalesCount, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// GetProductByID fetches one product.
func (c *Conf) GetProductByID(ctx context.Context, id int64) (Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(c.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// ListProducts returns on-shelf products for the storefront, newest first.
func (c *Conf) ListProducts(ctx context.Context, categoryID int64, limit, offset int) ([]Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var filters []string
	var args []any
	filters = append(filters, fmt.Sprintf("status = %d", StatusOnShelf))
	if categoryID > 0 {
		args = append(args, categoryID)
		filters = append(filters, fmt.Sprintf("category_id = $%d", len(args)))
	}

	args = append(args, limit)
	limitPos := len(args)
	args = append(args, offset)
	offsetPos := len(args)

	query := `SELECT ` + productColumns + ` FROM products WHERE ` + strings.Join(filters, " AND ") +
		fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, limitPos, offsetPos)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var list []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return list, nil
}

// GetForPricing loads the products referenced by an order inside the
// caller's transaction, keyed by id, so pricing and reservation observe the
// same rows.
func GetForPricing(ctx context.Context, tx *sql.Tx, ids []int64) (map[int64]Product, error) {
	if len(ids) == 0 {
		return map[int64]Product{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load products for pricing: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return byID, nil
}
