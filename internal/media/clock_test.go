package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Dark-debug/interlinear/internal/align"
)

var _ align.Transport = (Player)(nil)

type fakeNow struct{ t time.Time }

func (f *fakeNow) now() time.Time          { return f.t }
func (f *fakeNow) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestClockAdvancesOnlyWhilePlaying(t *testing.T) {
	fn := &fakeNow{t: time.Unix(1000, 0)}
	c := NewClock(WithNow(fn.now))

	fn.advance(time.Second)
	assert.EqualValues(t, 0, c.Position())
	assert.False(t, c.Playing())

	require.NoError(t, c.Play())
	fn.advance(1500 * time.Millisecond)
	assert.EqualValues(t, 1500, c.Position())

	require.NoError(t, c.Pause())
	fn.advance(time.Second)
	assert.EqualValues(t, 1500, c.Position())
}

func TestClockSeekAndSkip(t *testing.T) {
	fn := &fakeNow{t: time.Unix(1000, 0)}
	c := NewClock(WithNow(fn.now), WithDuration(10_000))

	require.NoError(t, c.SeekTo(4000))
	assert.EqualValues(t, 4000, c.Position())

	require.NoError(t, c.Play())
	fn.advance(500 * time.Millisecond)
	require.NoError(t, c.Skip(-5000))
	assert.EqualValues(t, 0, c.Position(), "skip clamps at zero")

	require.NoError(t, c.Skip(20_000))
	assert.EqualValues(t, 10_000, c.Position(), "skip clamps at duration")

	fn.advance(time.Minute)
	assert.EqualValues(t, 10_000, c.Position())
}

func TestClockPlayTwiceKeepsPosition(t *testing.T) {
	fn := &fakeNow{t: time.Unix(0, 0)}
	c := NewClock(WithNow(fn.now))
	require.NoError(t, c.Play())
	fn.advance(200 * time.Millisecond)
	require.NoError(t, c.Play())
	fn.advance(200 * time.Millisecond)
	assert.EqualValues(t, 400, c.Position())
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(t.Context(), "vlc", "", nil)
	assert.ErrorContains(t, err, "unknown player backend")

	p, err := Open(t.Context(), BackendClock, "", nil)
	require.NoError(t, err)
	assert.IsType(t, &Clock{}, p)
}
