package media

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed is returned by commands issued after the connection has gone.
var ErrClosed = errors.New("mpv connection closed")

const (
	mpvRequestTimeout = 2 * time.Second

	observeTimePos = 1
	observePause   = 2
)

// mpvMessage covers both replies and events on the IPC socket. Replies carry
// request_id and error; events carry event, and for property changes id,
// name and data.
type mpvMessage struct {
	RequestID int64           `json:"request_id,omitempty"`
	Error     string          `json:"error,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Event     string          `json:"event,omitempty"`
	ID        int64           `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
}

type mpvCommand struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// MPV controls an mpv process started with --input-ipc-server.
//
// Position and pause state are pushed by mpv through observed properties
// and cached, so Position and Playing never block.
type MPV struct {
	conn   net.Conn
	logger *slog.Logger

	writeMu sync.Mutex
	nextID  atomic.Int64

	mu      sync.Mutex
	pending map[int64]chan mpvMessage
	closed  bool

	position atomic.Int64
	playing  atomic.Bool

	wg        sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
}

// DialMPV connects to the mpv IPC socket and subscribes to time-pos and
// pause.
func DialMPV(ctx context.Context, socket string, logger *slog.Logger) (*MPV, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socket)
	if err != nil {
		return nil, fmt.Errorf("connecting to mpv at %s: %w", socket, err)
	}

	m := &MPV{
		conn:    conn,
		logger:  logger.With(slog.String("component", "mpv")),
		pending: make(map[int64]chan mpvMessage),
		done:    make(chan struct{}),
	}

	m.wg.Add(1)
	go m.readLoop()

	if err := m.command(ctx, "observe_property", observeTimePos, "time-pos"); err != nil {
		m.Close()
		return nil, fmt.Errorf("observing time-pos: %w", err)
	}
	if err := m.command(ctx, "observe_property", observePause, "pause"); err != nil {
		m.Close()
		return nil, fmt.Errorf("observing pause: %w", err)
	}

	m.logger.Info("connected to mpv", slog.String("socket", socket))
	return m, nil
}

// readLoop dispatches replies to waiting commands and applies property
// change events.
func (m *MPV) readLoop() {
	defer m.wg.Done()
	defer m.shutdown()

	scanner := bufio.NewScanner(m.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg mpvMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			m.logger.Warn("skipping malformed mpv message", slog.String("error", err.Error()))
			continue
		}

		if msg.Event != "" {
			m.handleEvent(msg)
			continue
		}

		m.mu.Lock()
		ch, ok := m.pending[msg.RequestID]
		delete(m.pending, msg.RequestID)
		m.mu.Unlock()
		if ok {
			ch <- msg
		}
	}
	if err := scanner.Err(); err != nil {
		select {
		case <-m.done:
		default:
			m.logger.Warn("mpv connection lost", slog.String("error", err.Error()))
		}
	}
}

func (m *MPV) handleEvent(msg mpvMessage) {
	switch msg.Event {
	case "property-change":
		switch msg.Name {
		case "time-pos":
			var secs *float64
			if err := json.Unmarshal(msg.Data, &secs); err == nil && secs != nil {
				m.position.Store(secondsToMillis(*secs))
			}
		case "pause":
			var paused bool
			if err := json.Unmarshal(msg.Data, &paused); err == nil {
				m.playing.Store(!paused)
			}
		}
	case "end-file":
		m.playing.Store(false)
	}
}

// shutdown fails every pending command once the reader stops.
func (m *MPV) shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for id, ch := range m.pending {
		close(ch)
		delete(m.pending, id)
	}
}

// command sends one IPC command and waits for its reply.
func (m *MPV) command(ctx context.Context, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, mpvRequestTimeout)
	defer cancel()

	id := m.nextID.Add(1)
	ch := make(chan mpvMessage, 1)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.pending[id] = ch
	m.mu.Unlock()

	line, err := json.Marshal(mpvCommand{Command: args, RequestID: id})
	if err != nil {
		m.forget(id)
		return fmt.Errorf("encoding mpv command: %w", err)
	}
	line = append(line, '\n')

	m.writeMu.Lock()
	_, err = m.conn.Write(line)
	m.writeMu.Unlock()
	if err != nil {
		m.forget(id)
		return fmt.Errorf("writing mpv command: %w", err)
	}

	select {
	case reply, ok := <-ch:
		if !ok {
			return ErrClosed
		}
		if reply.Error != "" && reply.Error != "success" {
			return fmt.Errorf("mpv %v: %s", args[0], reply.Error)
		}
		return nil
	case <-ctx.Done():
		m.forget(id)
		return fmt.Errorf("mpv %v: %w", args[0], ctx.Err())
	}
}

func (m *MPV) forget(id int64) {
	m.mu.Lock()
	delete(m.pending, id)
	m.mu.Unlock()
}

// SeekTo jumps to ms.
func (m *MPV) SeekTo(ms int64) error {
	if ms < 0 {
		ms = 0
	}
	if err := m.command(context.Background(), "set_property", "time-pos", millisToSeconds(ms)); err != nil {
		return err
	}
	m.position.Store(ms)
	return nil
}

// Skip seeks relative to the current position.
func (m *MPV) Skip(deltaMs int64) error {
	target := max(m.position.Load()+deltaMs, 0)
	return m.SeekTo(target)
}

// Play unpauses.
func (m *MPV) Play() error {
	if err := m.command(context.Background(), "set_property", "pause", false); err != nil {
		return err
	}
	m.playing.Store(true)
	return nil
}

// Pause pauses.
func (m *MPV) Pause() error {
	if err := m.command(context.Background(), "set_property", "pause", true); err != nil {
		return err
	}
	m.playing.Store(false)
	return nil
}

// Playing returns the last observed pause state.
func (m *MPV) Playing() bool {
	return m.playing.Load()
}

// Position returns the last observed time-pos in milliseconds.
func (m *MPV) Position() int64 {
	return m.position.Load()
}

// Close disconnects from mpv. mpv itself keeps running.
func (m *MPV) Close() error {
	var err error
	m.closeOnce.Do(func() {
		close(m.done)
		err = m.conn.Close()
		m.wg.Wait()
	})
	return err
}

func secondsToMillis(s float64) int64 {
	return int64(math.Round(s * 1000))
}

func millisToSeconds(ms int64) float64 {
	return float64(ms) / 1000
}
