package linkmlio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemClockParseAndFormatISO8601RoundTrip(t *testing.T) {
	clock := NewSystemClock()
	t1, err := clock.ParseISO8601("2024-03-15T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 2024, t1.Year())
	assert.Equal(t, time.Month(3), t1.Month())
	assert.Equal(t, 15, t1.Day())

	formatted := clock.FormatISO8601(t1)
	assert.NotEmpty(t, formatted)
}

func TestSystemClockParseInvalidInput(t *testing.T) {
	clock := NewSystemClock()
	_, err := clock.ParseISO8601("not-a-timestamp")
	assert.Error(t, err)
}

func TestSystemClockNowIsRecent(t *testing.T) {
	clock := NewSystemClock()
	now := clock.Now()
	assert.WithinDuration(t, time.Now(), now, time.Second)
}
