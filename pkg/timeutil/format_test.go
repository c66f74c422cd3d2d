package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatClock(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0:00.000"},
		{-20, "0:00.000"},
		{1200, "0:01.200"},
		{65_432, "1:05.432"},
		{3_600_000 + 2*60_000 + 3_004, "1:02:03.004"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatClock(tt.ms), "ms=%d", tt.ms)
	}
}

func TestFormatRange(t *testing.T) {
	assert.Equal(t, "0:01.200–0:01.850", FormatRange(1200, 1850))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "450ms", FormatDuration(450))
	assert.Equal(t, "1.2s", FormatDuration(1200))
	assert.Equal(t, "2m 15.3s", FormatDuration(135_300))
}

func TestRelativeTime(t *testing.T) {
	now := time.Unix(10_000, 0)
	tests := map[time.Duration]string{
		100 * time.Millisecond: "just now",
		5 * time.Second:        "5s ago",
		2 * time.Minute:        "2m ago",
		3 * time.Hour:          "3h ago",
		50 * time.Hour:         "2d ago",
	}
	for ago, want := range tests {
		assert.Equal(t, want, relativeTo(now, now.Add(-ago).UnixNano()))
	}
}
