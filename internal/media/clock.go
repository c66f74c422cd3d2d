package media

import (
	"sync"
	"time"
)

// Clock is a simulated player whose position advances with wall time while
// playing. It never fails.
type Clock struct {
	mu       sync.Mutex
	now      func() time.Time
	base     int64
	since    time.Time
	playing  bool
	duration int64
}

// ClockOption configures a Clock.
type ClockOption func(*Clock)

// WithNow replaces the time source.
func WithNow(now func() time.Time) ClockOption {
	return func(c *Clock) { c.now = now }
}

// WithDuration stops the clock at d milliseconds. Zero means unbounded.
func WithDuration(d int64) ClockOption {
	return func(c *Clock) { c.duration = d }
}

// NewClock returns a paused clock at position 0.
func NewClock(opts ...ClockOption) *Clock {
	c := &Clock{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Position returns the current position in milliseconds.
func (c *Clock) Position() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionLocked()
}

func (c *Clock) positionLocked() int64 {
	pos := c.base
	if c.playing {
		pos += c.now().Sub(c.since).Milliseconds()
	}
	return c.clamp(pos)
}

func (c *Clock) clamp(pos int64) int64 {
	if pos < 0 {
		return 0
	}
	if c.duration > 0 && pos > c.duration {
		return c.duration
	}
	return pos
}

// SeekTo moves the position to ms.
func (c *Clock) SeekTo(ms int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = c.clamp(ms)
	c.since = c.now()
	return nil
}

// Skip moves the position by deltaMs.
func (c *Clock) Skip(deltaMs int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = c.clamp(c.positionLocked() + deltaMs)
	c.since = c.now()
	return nil
}

// Play starts advancing the position. Playing an already playing clock is a
// no-op.
func (c *Clock) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing {
		return nil
	}
	c.since = c.now()
	c.playing = true
	return nil
}

// Pause freezes the position.
func (c *Clock) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing {
		return nil
	}
	c.base = c.positionLocked()
	c.playing = false
	return nil
}

// Playing reports whether the clock is advancing.
func (c *Clock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Close is a no-op.
func (c *Clock) Close() error { return nil }
