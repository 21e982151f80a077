// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// recordingObserver captures every notification.
type recordingObserver struct {
	mu          sync.Mutex
	transitions []string
	attempts    []int
	delays      []time.Duration
	terminal    chan error
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{terminal: make(chan error, 4)}
}

func (o *recordingObserver) OnStateChange(from, to State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transitions = append(o.transitions, from.String()+"->"+to.String())
}

func (o *recordingObserver) OnReconnectScheduled(attempt int, delay time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attempts = append(o.attempts, attempt)
	o.delays = append(o.delays, delay)
}

func (o *recordingObserver) OnTerminalFailure(err error) {
	o.terminal <- err
}

func (o *recordingObserver) scheduled() ([]int, []time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]int(nil), o.attempts...), append([]time.Duration(nil), o.delays...)
}

func (o *recordingObserver) sawTransition(tr string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, got := range o.transitions {
		if got == tr {
			return true
		}
	}
	return false
}

func (o *recordingObserver) waitTerminal(t *testing.T) error {
	t.Helper()
	select {
	case err := <-o.terminal:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for terminal failure")
		return nil
	}
}

// failingDialer refuses every dial.
type failingDialer struct {
	dials atomic.Int32
}

var errRefused = errors.New("connection refused")

func (d *failingDialer) Dial(context.Context, string) (Conn, error) {
	d.dials.Add(1)
	return nil, errRefused
}

// blockingDialer never completes a dial until its context is canceled.
type blockingDialer struct {
	dials    atomic.Int32
	started  chan struct{}
	canceled chan struct{}
}

func newBlockingDialer() *blockingDialer {
	return &blockingDialer{
		started:  make(chan struct{}, 8),
		canceled: make(chan struct{}, 8),
	}
}

func (d *blockingDialer) Dial(ctx context.Context, _ string) (Conn, error) {
	d.dials.Add(1)
	d.started <- struct{}{}
	<-ctx.Done()
	d.canceled <- struct{}{}
	return nil, ctx.Err()
}

// mockTaskServer is a WebSocket endpoint standing in for the task server.
type mockTaskServer struct {
	server   *httptest.Server
	upgrader websocket.Upgrader
	conns    chan *websocket.Conn
	accepted atomic.Int32

	// onConnect runs in the server handler for each accepted connection.
	onConnect func(n int32, conn *websocket.Conn)
}

func newMockTaskServer(t *testing.T, onConnect func(n int32, conn *websocket.Conn)) *mockTaskServer {
	t.Helper()
	mock := &mockTaskServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		conns:     make(chan *websocket.Conn, 8),
		onConnect: onConnect,
	}
	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := mock.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		n := mock.accepted.Add(1)
		if mock.onConnect != nil {
			mock.onConnect(n, conn)
			return
		}
		mock.conns <- conn
	}))
	t.Cleanup(mock.server.Close)
	return mock
}

func (m *mockTaskServer) url() string {
	return "ws" + strings.TrimPrefix(m.server.URL, "http") + "/ws"
}

// startManager runs Serve until the test ends.
func startManager(t *testing.T, mgr *Manager) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = mgr.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("Serve did not return after cancel")
		}
	})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func waitForState(t *testing.T, mgr *Manager, want State) {
	t.Helper()
	waitFor(t, "state "+want.String(), func() bool { return mgr.State() == want })
}

func testConfig(url string) Config {
	return Config{
		URL:              url,
		MaxAttempts:      5,
		BaseDelay:        time.Millisecond,
		MaxDelay:         10 * time.Millisecond,
		HandshakeTimeout: 2 * time.Second,
		WriteTimeout:     2 * time.Second,
		ReadLimit:        1 << 20,
	}
}
