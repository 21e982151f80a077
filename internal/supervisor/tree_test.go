// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/tasksync/internal/config"
	"github.com/tomtom215/tasksync/internal/realtime"
	"github.com/tomtom215/tasksync/internal/session"
)

// mockService runs until canceled, or fails the first failures times.
type mockService struct {
	name     string
	failures int32
	starts   atomic.Int32
}

func (m *mockService) Serve(ctx context.Context) error {
	if m.starts.Add(1) <= m.failures {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string { return m.name }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error: %v", err)
	}
	if tree.root == nil {
		t.Fatal("nil root")
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want defaults", tree.config)
	}

	tree, _ = NewSupervisorTree(nil, TreeConfig{FailureBackoff: time.Second})
	if tree.config.FailureBackoff != time.Second || tree.config.FailureThreshold != 5 {
		t.Errorf("config = %+v", tree.config)
	}
}

func TestSupervisorTree_RunsBothLayers(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	rt := &mockService{name: "rt"}
	api := &mockService{name: "api"}
	tree.AddRealtimeService(rt)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitUntil(t, "services started", func() bool { return rt.starts.Load() == 1 && api.starts.Load() == 1 })
	cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop")
	}

	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatal(err)
	}
	if len(report) != 0 {
		t.Errorf("unstopped services: %v", report)
	}
}

func TestSupervisorTree_RestartIsolation(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	rt := &mockService{name: "rt"}
	flaky := &mockService{name: "flaky-api", failures: 2}
	tree.AddRealtimeService(rt)
	tree.AddAPIService(flaky)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	waitUntil(t, "flaky service restarted", func() bool { return flaky.starts.Load() >= 3 })
	if got := rt.starts.Load(); got != 1 {
		t.Errorf("realtime layer service restarted: starts = %d", got)
	}

	cancel()
	<-errCh
}

func TestAddSession(t *testing.T) {
	var lists atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/tasks" {
			lists.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("[]"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.API.BaseURL = srv.URL + "/api/v1"
	cfg.API.RateLimit = 0
	// Nothing answers the websocket upgrade.
	cfg.Realtime.URL = "ws" + srv.URL[len("http"):] + "/api/v1/ws"
	cfg.Realtime.BaseDelay = time.Millisecond
	cfg.Realtime.MaxDelay = 2 * time.Millisecond
	cfg.Realtime.MaxReconnectAttempts = 1
	cfg.Sync.ResyncInterval = 0

	sess, err := session.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer sess.Close()

	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	AddSession(tree, sess)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitUntil(t, "initial list", func() bool { return lists.Load() >= 1 })
	waitUntil(t, "realtime give-up", func() bool { return sess.Realtime().Status().GaveUp })
	if !errors.Is(sess.TerminalError(), realtime.ErrGaveUp) {
		t.Errorf("TerminalError() = %v", sess.TerminalError())
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop")
	}
}
