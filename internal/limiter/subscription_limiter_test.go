package limiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionLimiter(t *testing.T) {
	sl := NewSubscriptionLimiterWithLimits(10, 5)

	require.NoError(t, sl.CanSubscribe(5))
	sl.RecordSubscribe(5)
	assert.Equal(t, 5, sl.Subscribed())

	require.NoError(t, sl.CanSubscribe(5))
	sl.RecordSubscribe(5)

	// Connection full
	assert.Error(t, sl.CanSubscribe(1))

	sl.RecordUnsubscribe(3)
	assert.Equal(t, 7, sl.Subscribed())
	assert.NoError(t, sl.CanSubscribe(3))
}

func TestSubscriptionLimiterMessageSize(t *testing.T) {
	sl := NewSubscriptionLimiterWithLimits(100, 5)

	err := sl.CanSubscribe(6)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many symbols")
}

func TestSubscriptionLimiterReset(t *testing.T) {
	sl := NewSubscriptionLimiterWithLimits(10, 5)
	sl.RecordSubscribe(5)

	sl.Reset()
	assert.Zero(t, sl.Subscribed())
}

func TestSubscriptionLimiterUnderflowClamped(t *testing.T) {
	sl := NewSubscriptionLimiterWithLimits(10, 5)

	sl.RecordUnsubscribe(3)
	assert.Zero(t, sl.Subscribed())
}
