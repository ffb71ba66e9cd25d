package orders

// Status is the closed set of order lifecycle states. The numeric values
// are what the orders table stores; nothing outside this package should
// interpret them directly.
type Status int

const (
	StatusCancelled       Status = -1
	StatusPendingPayment  Status = 0
	StatusPendingDelivery Status = 1
	StatusPendingPickup   Status = 2
	StatusDelivering      Status = 3
	StatusCompleted       Status = 4
)

// DeliveryType is the fulfillment branch chosen at creation. It never
// changes afterwards.
type DeliveryType string

const (
	TypeDelivery DeliveryType = "delivery"
	TypePickup   DeliveryType = "pickup"
)

func (d DeliveryType) Valid() bool {
	return d == TypeDelivery || d == TypePickup
}

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusCancelled, StatusPendingPayment, StatusPendingDelivery,
		StatusPendingPickup, StatusDelivering, StatusCompleted:
		return true
	}
	return false
}

// Terminal states admit no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Cancellable reports whether a customer may still cancel from s.
func (s Status) Cancellable() bool {
	return s == StatusPendingPayment || s == StatusPendingDelivery || s == StatusPendingPickup
}

// Text derives the customer-facing label. This is the single place status
// display strings come from.
func (s Status) Text(dt DeliveryType) string {
	switch s {
	case StatusPendingPayment:
		return "Pending payment"
	case StatusPendingDelivery:
		return "Awaiting acceptance"
	case StatusPendingPickup:
		if dt == TypeDelivery {
			return "Awaiting shipment"
		}
		return "Awaiting pickup"
	case StatusDelivering:
		return "Out for delivery"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	}
	return "Unknown"
}
