package orders

import (
	"database/sql"
	"time"
)

// AddressSnapshot is the recipient's contact info copied by value at order
// time. Later edits to the address book never touch it.
type AddressSnapshot struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Order is the aggregate root of a purchase. All monetary fields are cents.
type Order struct {
	ID              int64            `json:"id"`
	OrderNo         string           `json:"order_no"`
	UserID          string           `json:"user_id"`
	TotalAmount     int64            `json:"total_amount"`
	DeliveryFee     int64            `json:"delivery_fee"`
	FinalAmount     int64            `json:"final_amount"`
	Status          Status           `json:"status"`
	StatusText      string           `json:"status_text"`
	DeliveryType    DeliveryType     `json:"delivery_type"`
	AddressSnapshot *AddressSnapshot `json:"address_snapshot,omitempty"`
	PickupCode      string           `json:"pickup_code,omitempty"`
	PickupTime      *time.Time       `json:"pickup_time,omitempty"`
	VerifiedAt      *time.Time       `json:"verified_at,omitempty"`
	Remark          string           `json:"remark,omitempty"`
	RejectReason    string           `json:"reject_reason,omitempty"`
	CancelReason    string           `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Items           []OrderItem      `json:"items,omitempty"`
	Timeline        []TimelineEntry  `json:"timeline,omitempty"`
}

// OrderItem is a purchased-quantity snapshot. ProductID is best-effort: the
// product row may be deleted later, the snapshot fields stay.
type OrderItem struct {
	ID           int64         `json:"id"`
	OrderID      int64         `json:"order_id"`
	ProductID    sql.NullInt64 `json:"product_id"`
	ProductName  string        `json:"product_name"`
	ProductImage string        `json:"product_image,omitempty"`
	Price        int64         `json:"price"`
	Quantity     int           `json:"quantity"`
}

// TimelineEntry is one immutable audit record; entries are insert-only and
// returned in chronological order.
type TimelineEntry struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	Status    string    `json:"status"`
	Remark    string    `json:"remark,omitempty"`
	CreatedAt time.Time `json:"time"`
}

// OrderLine is one requested cart line in preview/create requests.
type OrderLine struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type PreviewRequest struct {
	Items        []OrderLine  `json:"items" validate:"required,min=1,dive"`
	DeliveryType DeliveryType `json:"delivery_type" validate:"required,oneof=delivery pickup"`
}

type PreviewResponse struct {
	TotalGoodsPrice int64  `json:"total_goods_price"`
	DeliveryFee     int64  `json:"delivery_fee"`
	FinalPrice      int64  `json:"final_price"`
	IsOpen          bool   `json:"is_open"`
	DeliveryMsg     string `json:"delivery_msg"`
}

type CreateRequest struct {
	Items        []OrderLine  `json:"items" validate:"required,min=1,dive"`
	DeliveryType DeliveryType `json:"delivery_type" validate:"required,oneof=delivery pickup"`
	Remark       string       `json:"remark" validate:"max=255"`
	AddressID    int64        `json:"address_id"`
	PickupTime   *time.Time   `json:"pickup_time"`
}

type CreateResponse struct {
	OrderID   int64             `json:"order_id"`
	OrderNo   string            `json:"order_no"`
	PayParams map[string]string `json:"pay_params"` // payment is mocked
}

// VerifiedItem is one line of the merchant's confirmation screen.
type VerifiedItem struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
}

// VerifyResult summarizes the order handed over at the counter.
type VerifyResult struct {
	OrderID     int64          `json:"order_id"`
	OrderNo     string         `json:"order_no"`
	FinalAmount int64          `json:"final_amount"`
	Items       []VerifiedItem `json:"items"`
}
