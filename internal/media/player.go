// Package media provides the playback transports the annotator drives.
//
// A Player reports the playback position in milliseconds and accepts
// transport commands. Clock is a simulated player for annotating without
// audio; MPV controls an mpv instance over its JSON IPC socket.
package media

import (
	"context"
	"fmt"
	"log/slog"
)

// Player is a playback transport. It satisfies align.Transport.
type Player interface {
	SeekTo(ms int64) error
	Play() error
	Pause() error
	Playing() bool
	// Position returns the current playback time in milliseconds.
	Position() int64
	// Skip moves the position by deltaMs, clamped at zero.
	Skip(deltaMs int64) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendClock = "clock"
	BackendMPV   = "mpv"
)

// Open returns the player for backend. socket is only used by mpv.
func Open(ctx context.Context, backend, socket string, logger *slog.Logger) (Player, error) {
	switch backend {
	case BackendClock, "":
		return NewClock(), nil
	case BackendMPV:
		p, err := DialMPV(ctx, socket, logger)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown player backend %q", backend)
	}
}
