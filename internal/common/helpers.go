package common

import (
	"fmt"
	"time"
)

// ToMillis converts a time to unix milliseconds as stored in wallet records
func ToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// fromMillis converts stored unix milliseconds back to a time
func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// FormatMillis formats stored unix milliseconds for display (RFC3339, UTC)
// Example: FormatMillis(0) = "1970-01-01T00:00:00Z"
func FormatMillis(ms int64) string {
	if ms < 0 {
		return "-"
	}
	return fromMillis(ms).UTC().Format(time.RFC3339)
}

// Truncate shortens s to n characters and appends "..." when it was cut
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
