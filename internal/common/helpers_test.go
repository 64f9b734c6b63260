package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMillisRoundTrip(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 123_000_000, time.UTC)
	ms := ToMillis(now)
	assert.Equal(t, int64(1751371200123), ms)
	assert.True(t, fromMillis(ms).Equal(now))
}

func TestFormatMillis(t *testing.T) {
	assert.Equal(t, "1970-01-01T00:00:00Z", FormatMillis(0))
	assert.Equal(t, "-", FormatMillis(-5))
	assert.Equal(t, "2025-07-01T12:00:00Z", FormatMillis(1751371200123))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 8))
	assert.Equal(t, "abcdefgh...", Truncate("abcdefghij", 8))
	assert.Equal(t, "", Truncate("abc", 0))
}
