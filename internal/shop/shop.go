package shop

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Config is the single shop settings row. Monetary values are cents.
type Config struct {
	StoreName             string    `json:"store_name"`
	StoreAddress          string    `json:"store_address"`
	StorePhone            string    `json:"store_phone"`
	IsOpen                bool      `json:"is_open"`
	OpenTime              string    `json:"open_time"`  // "HH:MM"
	CloseTime             string    `json:"close_time"` // "HH:MM"
	DeliveryFee           int64     `json:"delivery_fee"`
	FreeDeliveryThreshold int64     `json:"free_delivery_threshold"`
	MinOrderAmount        int64     `json:"min_order_amount"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// ConfigUpdate carries the admin-editable subset of Config.
type ConfigUpdate struct {
	IsOpen                *bool  `json:"is_open"`
	OpenTime              string `json:"open_time"`
	CloseTime             string `json:"close_time"`
	DeliveryFee           *int64 `json:"delivery_fee"`
	FreeDeliveryThreshold *int64 `json:"free_delivery_threshold"`
	MinOrderAmount        *int64 `json:"min_order_amount"`
}

// DefaultConfig is what the pricing engine sees before the merchant has
// saved any settings: open all day, 3.00 flat fee, free over 30.00.
func DefaultConfig() Config {
	return Config{
		StoreName:             "Corner Store",
		IsOpen:                true,
		OpenTime:              "09:00",
		CloseTime:             "22:00",
		DeliveryFee:           300,
		FreeDeliveryThreshold: 3000,
		MinOrderAmount:        0,
	}
}

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (Conf, error) {
	if db == nil {
		return Conf{}, fmt.Errorf("db is nil")
	}
	return Conf{db: db}, nil
}

// GetConfig returns the stored configuration, or DefaultConfig when the row
// has never been written.
func (c *Conf) GetConfig(ctx context.Context) (Config, error) {
	query := `
		SELECT store_name, store_address, store_phone, is_open,
		       to_char(open_time, 'HH24:MI'), to_char(close_time, 'HH24:MI'),
		       delivery_fee, free_delivery_threshold, min_order_amount, updated_at
		FROM shop_config
		WHERE id = 1
	`
	var cfg Config
	err := c.db.QueryRowContext(ctx, query).Scan(
		&cfg.StoreName, &cfg.StoreAddress, &cfg.StorePhone, &cfg.IsOpen,
		&cfg.OpenTime, &cfg.CloseTime,
		&cfg.DeliveryFee, &cfg.FreeDeliveryThreshold, &cfg.MinOrderAmount, &cfg.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("get shop config: %w", err)
	}
	return cfg, nil
}

// UpdateConfig upserts the settings row, starting from the current (or
// default) values so partial updates keep the rest intact.
func (c *Conf) UpdateConfig(ctx context.Context, upd ConfigUpdate) (Config, error) {
	cfg, err := c.GetConfig(ctx)
	if err != nil {
		return Config{}, err
	}

	if upd.IsOpen != nil {
		cfg.IsOpen = *upd.IsOpen
	}
	if upd.OpenTime != "" {
		if err := validateHHMM(upd.OpenTime); err != nil {
			return Config{}, err
		}
		cfg.OpenTime = upd.OpenTime
	}
	if upd.CloseTime != "" {
		if err := validateHHMM(upd.CloseTime); err != nil {
			return Config{}, err
		}
		cfg.CloseTime = upd.CloseTime
	}
	if upd.DeliveryFee != nil {
		if *upd.DeliveryFee < 0 {
			return Config{}, fmt.Errorf("delivery fee must not be negative")
		}
		cfg.DeliveryFee = *upd.DeliveryFee
	}
	if upd.FreeDeliveryThreshold != nil {
		if *upd.FreeDeliveryThreshold < 0 {
			return Config{}, fmt.Errorf("free delivery threshold must not be negative")
		}
		cfg.FreeDeliveryThreshold = *upd.FreeDeliveryThreshold
	}
	if upd.MinOrderAmount != nil {
		if *upd.MinOrderAmount < 0 {
			return Config{}, fmt.Errorf("minimum order amount must not be negative")
		}
		cfg.MinOrderAmount = *upd.MinOrderAmount
	}

	query := `
		INSERT INTO shop_config (id, store_name, store_address, store_phone, is_open,
		                         open_time, close_time, delivery_fee, free_delivery_threshold,
		                         min_order_amount, updated_at)
		VALUES (1, $1, $2, $3, $4, $5::time, $6::time, $7, $8, $9, NOW())
		ON CONFLICT (id) DO UPDATE SET
			store_name = EXCLUDED.store_name,
			store_address = EXCLUDED.store_address,
			store_phone = EXCLUDED.store_phone,
			is_open = EXCLUDED.is_open,
			open_time = EXCLUDED.open_time,
			close_time = EXCLUDED.close_time,
			delivery_fee = EXCLUDED.delivery_fee,
			free_delivery_threshold = EXCLUDED.free_delivery_threshold,
			min_order_amount = EXCLUDED.min_order_amount,
			updated_at = NOW()
	`
	_, err = c.db.ExecContext(ctx, query,
		cfg.StoreName, cfg.StoreAddress, cfg.StorePhone, cfg.IsOpen,
		cfg.OpenTime, cfg.CloseTime, cfg.DeliveryFee, cfg.FreeDeliveryThreshold, cfg.MinOrderAmount,
	)
	if err != nil {
		return Config{}, fmt.Errorf("update shop config: %w", err)
	}
	return cfg, nil
}

func validateHHMM(v string) error {
	if _, err := time.Parse("15:04", v); err != nil {
		return fmt.Errorf("time must be in HH:MM format, got %q", v)
	}
	return nil
}
