package shop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.IsOpen)
	assert.Equal(t, int64(300), cfg.DeliveryFee)
	assert.Equal(t, int64(3000), cfg.FreeDeliveryThreshold)
	assert.Equal(t, int64(0), cfg.MinOrderAmount)
}

func TestValidateHHMM(t *testing.T) {
	assert.NoError(t, validateHHMM("09:00"))
	assert.NoError(t, validateHHMM("23:59"))
	assert.Error(t, validateHHMM("24:00"))
	assert.Error(t, validateHHMM("9am"))
	assert.Error(t, validateHHMM(""))
}
