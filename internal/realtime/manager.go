// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tasksync/internal/config"
	"github.com/tomtom215/tasksync/internal/logging"
	"github.com/tomtom215/tasksync/internal/metrics"
	"github.com/tomtom215/tasksync/internal/protocol"
)

var (
	// ErrChannelUnavailable is returned by outbound commands when the channel
	// is not open.
	ErrChannelUnavailable = errors.New("realtime channel unavailable")

	// ErrGaveUp is reported to the Observer once reconnect attempts are
	// exhausted.
	ErrGaveUp = errors.New("failed to connect after multiple attempts")
)

// Config holds Manager settings.
type Config struct {
	URL               string
	MaxAttempts       int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	HeartbeatInterval time.Duration
	HandshakeTimeout  time.Duration
	WriteTimeout      time.Duration
	ReadLimit         int64
	Header            http.Header
}

// NewConfig converts the loaded realtime section.
func NewConfig(c config.RealtimeConfig) Config {
	return Config{
		URL:               c.URL,
		MaxAttempts:       c.MaxReconnectAttempts,
		BaseDelay:         c.BaseDelay,
		MaxDelay:          c.MaxDelay,
		HeartbeatInterval: c.HeartbeatInterval,
		HandshakeTimeout:  c.HandshakeTimeout,
		WriteTimeout:      c.WriteTimeout,
		ReadLimit:         c.ReadLimit,
	}
}

// FrameHandler receives every inbound text frame on the event loop.
// *protocol.Dispatcher implements it.
type FrameHandler interface {
	HandleFrame(frame []byte)
}

// FrameHandlerFunc adapts a function to FrameHandler.
type FrameHandlerFunc func([]byte)

// HandleFrame implements FrameHandler.
func (f FrameHandlerFunc) HandleFrame(frame []byte) { f(frame) }

type requestKind int

const (
	requestOpen requestKind = iota
	requestClose
)

type eventKind int

const (
	eventDialed eventKind = iota
	eventFrame
	eventReadError
)

// loopEvent is posted by dial and read goroutines.
type loopEvent struct {
	gen   uint64
	kind  eventKind
	conn  Conn
	frame []byte
	err   error
}

// Manager maintains the realtime channel. Create with NewManager and run
// Serve in its own goroutine (or under a supervisor).
//
// All state lives on a single event loop. Open, Close and the read goroutine
// only post requests and events to it, so state transitions never race.
//
// Lifecycle:
//  1. Open dials the endpoint. On success the state becomes open, the
//     attempt counter resets and the heartbeat ticker starts.
//  2. A read error or failed dial is a loss. The next attempt waits
//     min(BaseDelay*2^n, MaxDelay) where n counts consecutive losses.
//  3. After MaxReconnectAttempts scheduled reconnects fail, the manager gives
//     up, reports ErrGaveUp to the Observer and stays closed until the next
//     Open.
//  4. Close cancels any dial and pending reconnect, sends a normal closure
//     frame and resets the attempt counter. No reconnect follows.
//
// Sends are synchronous and never queued: SendChat and SendHeartbeat return
// ErrChannelUnavailable unless the channel is open, so callers can fall back
// to the request/response path. See the package documentation for an example.
type Manager struct {
	cfg      Config
	dialer   Dialer
	handler  FrameHandler
	observer Observer
	log      zerolog.Logger

	requests chan requestKind
	events   chan loopEvent

	// Owned by the event loop.
	gen            uint64
	conn           Conn
	connDone       chan struct{}
	dialCancel     context.CancelFunc
	attempt        int
	gaveUp         bool
	reconnectTimer *time.Timer
	heartbeat      *time.Ticker

	// Readable from any goroutine.
	mu     sync.RWMutex
	state  State
	wconn  Conn
	status Status

	writeMu sync.Mutex
}

// NewManager creates a Manager. A nil dialer uses WebSocketDialer, a nil
// observer uses NopObserver.
func NewManager(cfg Config, dialer Dialer, handler FrameHandler, observer Observer) *Manager {
	if dialer == nil {
		dialer = WebSocketDialer{HandshakeTimeout: cfg.HandshakeTimeout, Header: cfg.Header}
	}
	if observer == nil {
		observer = NopObserver{}
	}
	if handler == nil {
		handler = FrameHandlerFunc(func([]byte) {})
	}

	m := &Manager{
		cfg:      cfg,
		dialer:   dialer,
		handler:  handler,
		observer: observer,
		log:      logging.WithComponent("realtime"),
		requests: make(chan requestKind, 32),
		events:   make(chan loopEvent, 64),
		state:    StateIdle,
	}
	m.status = Status{
		State:       StateIdle,
		Endpoint:    cfg.URL,
		MaxAttempts: cfg.MaxAttempts,
	}
	metrics.SetConnectionState(StateIdle.String())
	return m
}

// String names the service for the supervisor.
func (m *Manager) String() string {
	return "realtime"
}

// Open asks the loop to establish the channel. It is a no-op while a dial is
// in flight, a reconnect is scheduled, or the channel is open. After a
// terminal failure it resets the attempt counter and dials again.
func (m *Manager) Open() {
	m.requests <- requestOpen
}

// Close asks the loop to tear down the channel, cancelling any in-flight
// dial, scheduled reconnect and heartbeat. No reconnect follows.
func (m *Manager) Close() {
	m.requests <- requestClose
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Status returns a snapshot of the channel state.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := m.status
	st.State = m.state
	return st
}

// ObservePong records the arrival of a pong. It never affects the
// connection.
func (m *Manager) ObservePong(at time.Time) {
	m.mu.Lock()
	m.status.LastPong = at
	m.mu.Unlock()
	metrics.RecordPong(at)
}

// SendChat writes a chat command if the channel is open.
func (m *Manager) SendChat(text string) error {
	return m.send(protocol.ChatCommand(text))
}

// SendHeartbeat writes a ping command if the channel is open.
func (m *Manager) SendHeartbeat() error {
	return m.send(protocol.HeartbeatCommand())
}

func (m *Manager) send(cmd protocol.Command) error {
	m.mu.RLock()
	conn, state := m.wconn, m.state
	m.mu.RUnlock()

	if state != StateOpen || conn == nil {
		metrics.RecordCommand(cmd.Type, "unavailable")
		return ErrChannelUnavailable
	}

	payload, err := cmd.Encode()
	if err != nil {
		metrics.RecordCommand(cmd.Type, "error")
		return fmt.Errorf("encode %s command: %w", cmd.Type, err)
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if m.cfg.WriteTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(m.cfg.WriteTimeout)); err != nil {
			m.log.Debug().Err(err).Msg("Failed to set write deadline")
		}
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		metrics.RecordCommand(cmd.Type, "error")
		return fmt.Errorf("write %s command: %w", cmd.Type, err)
	}

	metrics.RecordCommand(cmd.Type, "sent")
	return nil
}

// Serve runs the event loop until ctx is canceled. The channel is torn down
// on return.
func (m *Manager) Serve(ctx context.Context) error {
	m.log.Info().Str("url", m.cfg.URL).Msg("Realtime manager started")
	defer m.shutdown()

	for {
		var reconnectC, heartbeatC <-chan time.Time
		if m.reconnectTimer != nil {
			reconnectC = m.reconnectTimer.C
		}
		if m.heartbeat != nil {
			heartbeatC = m.heartbeat.C
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case req := <-m.requests:
			switch req {
			case requestOpen:
				m.handleOpen(ctx)
			case requestClose:
				m.handleClose()
			}

		case ev := <-m.events:
			m.handleEvent(ctx, ev)

		case <-reconnectC:
			m.reconnectTimer = nil
			m.setNextDelay(0)
			m.log.Info().Int("attempt", m.attempt).Msg("Reconnecting")
			m.dial(ctx)

		case <-heartbeatC:
			if err := m.SendHeartbeat(); err != nil {
				m.log.Warn().Err(err).Msg("Heartbeat failed")
			}
		}
	}
}

func (m *Manager) handleOpen(ctx context.Context) {
	if m.dialCancel != nil || m.conn != nil || m.reconnectTimer != nil {
		return
	}
	if m.gaveUp {
		m.log.Info().Msg("Manual open after giving up, resetting attempts")
	}
	m.resetAttempts()
	m.dial(ctx)
}

func (m *Manager) handleClose() {
	// Invalidate the in-flight dial and reader.
	m.gen++

	if m.dialCancel != nil {
		m.dialCancel()
		m.dialCancel = nil
	}
	m.stopReconnectTimer()

	if m.conn != nil {
		m.setState(StateClosing)
		m.teardown(true)
	}
	m.resetAttempts()

	if m.State() != StateIdle {
		m.setState(StateClosed)
	}
	m.log.Info().Msg("Realtime channel closed")
}

func (m *Manager) handleEvent(ctx context.Context, ev loopEvent) {
	if ev.gen != m.gen {
		// Superseded transport.
		if ev.kind == eventDialed && ev.conn != nil {
			_ = ev.conn.Close()
		}
		return
	}

	switch ev.kind {
	case eventDialed:
		if m.dialCancel != nil {
			m.dialCancel()
			m.dialCancel = nil
		}
		metrics.RecordDial(ev.err)
		if ev.err != nil {
			m.log.Warn().Err(ev.err).Int("attempt", m.attempt).Msg("Dial failed")
			m.setLastError(ev.err)
			m.setState(StateClosed)
			m.handleLoss(ctx, ev.err)
			return
		}
		m.onConnected(ev.conn)

	case eventFrame:
		metrics.RealtimeFramesReceived.Inc()
		m.handler.HandleFrame(ev.frame)

	case eventReadError:
		if websocket.IsCloseError(ev.err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			m.log.Info().Msg("Connection closed by server")
		} else {
			m.log.Warn().Err(ev.err).Msg("Connection lost")
		}
		m.teardown(false)
		m.setLastError(ev.err)
		m.setState(StateClosed)
		m.handleLoss(ctx, ev.err)
	}
}

func (m *Manager) onConnected(conn Conn) {
	if m.cfg.ReadLimit > 0 {
		conn.SetReadLimit(m.cfg.ReadLimit)
	}

	done := make(chan struct{})
	m.conn = conn
	m.connDone = done
	m.resetAttempts()

	now := time.Now()
	m.mu.Lock()
	m.wconn = conn
	m.status.ConnectedSince = now
	m.status.LastError = nil
	m.mu.Unlock()

	if m.cfg.HeartbeatInterval > 0 {
		m.heartbeat = time.NewTicker(m.cfg.HeartbeatInterval)
	}

	m.log.Info().Str("url", m.cfg.URL).Msg("Connected")
	m.setState(StateOpen)

	go m.readLoop(m.gen, conn, done)
}

// handleLoss schedules the next reconnect or gives up.
func (m *Manager) handleLoss(ctx context.Context, cause error) {
	if ctx.Err() != nil {
		return
	}

	if m.attempt < m.cfg.MaxAttempts {
		m.attempt++
		delay := Backoff(m.attempt, m.cfg.BaseDelay, m.cfg.MaxDelay)
		m.reconnectTimer = time.NewTimer(delay)

		m.mu.Lock()
		m.status.Attempt = m.attempt
		m.status.NextDelay = delay
		m.mu.Unlock()

		metrics.RecordReconnectScheduled(delay)
		m.log.Info().
			Int("attempt", m.attempt).
			Int("max_attempts", m.cfg.MaxAttempts).
			Dur("delay", delay).
			Msg("Reconnect scheduled")
		m.observer.OnReconnectScheduled(m.attempt, delay)
		return
	}

	m.gaveUp = true
	m.mu.Lock()
	m.status.GaveUp = true
	m.status.NextDelay = 0
	m.mu.Unlock()

	metrics.RealtimeGiveUps.Inc()
	err := fmt.Errorf("%w: %w", ErrGaveUp, cause)
	m.log.Error().Err(err).Int("attempts", m.attempt).Msg("Giving up on realtime channel")
	m.observer.OnTerminalFailure(err)
}

func (m *Manager) dial(ctx context.Context) {
	m.gen++
	gen := m.gen

	dialCtx, cancel := context.WithCancel(ctx)
	m.dialCancel = cancel
	m.setState(StateConnecting)

	go func() {
		conn, err := m.dialer.Dial(dialCtx, m.cfg.URL)
		ev := loopEvent{gen: gen, kind: eventDialed, conn: conn, err: err}
		select {
		case m.events <- ev:
		case <-dialCtx.Done():
			if conn != nil {
				_ = conn.Close()
			}
		}
	}()
}

func (m *Manager) readLoop(gen uint64, conn Conn, done <-chan struct{}) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.post(done, loopEvent{gen: gen, kind: eventReadError, err: err})
			return
		}
		if !m.post(done, loopEvent{gen: gen, kind: eventFrame, frame: data}) {
			return
		}
	}
}

func (m *Manager) post(done <-chan struct{}, ev loopEvent) bool {
	select {
	case m.events <- ev:
		return true
	case <-done:
		return false
	}
}

// teardown releases the live transport. graceful sends a close frame first.
func (m *Manager) teardown(graceful bool) {
	if m.heartbeat != nil {
		m.heartbeat.Stop()
		m.heartbeat = nil
	}
	if m.conn == nil {
		return
	}

	m.mu.Lock()
	m.wconn = nil
	m.status.ConnectedSince = time.Time{}
	m.mu.Unlock()

	close(m.connDone)
	m.connDone = nil

	if graceful {
		if err := m.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		); err != nil {
			m.log.Debug().Err(err).Msg("Failed to send close message")
		}
	}
	if err := m.conn.Close(); err != nil {
		m.log.Debug().Err(err).Msg("Failed to close connection")
	}
	m.conn = nil
}

// shutdown runs when Serve returns.
func (m *Manager) shutdown() {
	m.gen++
	if m.dialCancel != nil {
		m.dialCancel()
		m.dialCancel = nil
	}
	m.stopReconnectTimer()

	if m.conn != nil {
		m.setState(StateClosing)
		m.teardown(true)
	}
	if s := m.State(); s != StateIdle && s != StateClosed {
		m.setState(StateClosed)
	}
	m.log.Info().Msg("Realtime manager stopped")
}

func (m *Manager) stopReconnectTimer() {
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
	m.setNextDelay(0)
}

func (m *Manager) resetAttempts() {
	m.attempt = 0
	m.gaveUp = false
	m.mu.Lock()
	m.status.Attempt = 0
	m.status.GaveUp = false
	m.mu.Unlock()
}

func (m *Manager) setNextDelay(d time.Duration) {
	m.mu.Lock()
	m.status.NextDelay = d
	m.mu.Unlock()
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.status.LastError = err
	m.mu.Unlock()
}

func (m *Manager) setState(to State) {
	m.mu.Lock()
	from := m.state
	m.state = to
	m.mu.Unlock()

	if from == to {
		return
	}
	metrics.SetConnectionState(to.String())
	m.log.Debug().Str("from", from.String()).Str("to", to.String()).Msg("State change")
	m.observer.OnStateChange(from, to)
}
