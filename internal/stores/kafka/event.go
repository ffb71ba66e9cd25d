package kafka

import "time"

const (
	TopicOrderPlaced        = `orders.order-placed`
	TopicOrderStatusChanged = `orders.order-status-changed`
)

// OrderPlacedEvent fans out to fulfillment dashboards and notification
// consumers after an order commits.
type OrderPlacedEvent struct {
	OrderNo      string    `json:"order_no"`
	UserID       string    `json:"user_id"`
	DeliveryType string    `json:"delivery_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// OrderStatusChangedEvent is published on every lifecycle transition.
type OrderStatusChangedEvent struct {
	OrderNo    string    `json:"order_no"`
	Status     int       `json:"status"`
	StatusText string    `json:"status_text"`
	Remark     string    `json:"remark,omitempty"`
	ChangedAt  time.Time `json:"changed_at"`
}
