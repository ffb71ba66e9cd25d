package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusCancelled, StatusPendingPayment, StatusPendingDelivery,
		StatusPendingPickup, StatusDelivering, StatusCompleted} {
		assert.True(t, s.Valid(), "status %d", s)
	}
	assert.False(t, Status(5).Valid())
	assert.False(t, Status(-2).Valid())
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPendingDelivery.Terminal())
	assert.False(t, StatusPendingPickup.Terminal())
	assert.False(t, StatusDelivering.Terminal())
}

func TestStatusCancellable(t *testing.T) {
	assert.True(t, StatusPendingPayment.Cancellable())
	assert.True(t, StatusPendingDelivery.Cancellable())
	assert.True(t, StatusPendingPickup.Cancellable())
	assert.False(t, StatusDelivering.Cancellable())
	assert.False(t, StatusCompleted.Cancellable())
	assert.False(t, StatusCancelled.Cancellable())
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "Awaiting shipment", StatusPendingPickup.Text(TypeDelivery))
	assert.Equal(t, "Awaiting pickup", StatusPendingPickup.Text(TypePickup))
	assert.Equal(t, "Awaiting acceptance", StatusPendingDelivery.Text(TypeDelivery))
	assert.Equal(t, "Out for delivery", StatusDelivering.Text(TypeDelivery))
	assert.Equal(t, "Completed", StatusCompleted.Text(TypePickup))
	assert.Equal(t, "Cancelled", StatusCancelled.Text(TypeDelivery))
	assert.Equal(t, "Unknown", Status(9).Text(TypeDelivery))
}
