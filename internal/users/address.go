package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrAddressNotFound is returned when the address does not exist or belongs
// to a different user.
var ErrAddressNotFound = errors.New("address not found")

// Address is a row from the externally managed address book. The order
// engine copies it by value into the order; it never holds a live reference.
type Address struct {
	ID            int64  `json:"id"`
	UserID        string `json:"user_id"`
	ContactName   string `json:"contact_name"`
	ContactPhone  string `json:"contact_phone"`
	DetailAddress string `json:"detail_address"`
}

// GetAddress loads one address scoped to its owner, inside the caller's
// transaction.
func GetAddress(ctx context.Context, tx *sql.Tx, addressID int64, userID string) (Address, error) {
	query := `
		SELECT id, user_id, contact_name, contact_phone, detail_address
		FROM user_addresses
		WHERE id = $1 AND user_id = $2
	`
	var a Address
	err := tx.QueryRowContext(ctx, query, addressID, userID).Scan(
		&a.ID, &a.UserID, &a.ContactName, &a.ContactPhone, &a.DetailAddress,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Address{}, ErrAddressNotFound
	}
	if err != nil {
		return Address{}, fmt.Errorf("get address %d: %w", addressID, err)
	}
	return a, nil
}
