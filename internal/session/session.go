// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tasksync/internal/chat"
	"github.com/tomtom215/tasksync/internal/config"
	"github.com/tomtom215/tasksync/internal/logging"
	"github.com/tomtom215/tasksync/internal/metrics"
	"github.com/tomtom215/tasksync/internal/models"
	"github.com/tomtom215/tasksync/internal/protocol"
	"github.com/tomtom215/tasksync/internal/realtime"
	"github.com/tomtom215/tasksync/internal/reconcile"
	"github.com/tomtom215/tasksync/internal/snapshot"
	"github.com/tomtom215/tasksync/internal/taskapi"
)

// Resync triggers.
const (
	TriggerInitial   = "initial"
	TriggerPeriodic  = "periodic"
	TriggerReconnect = "reconnect"
	TriggerChat      = "chat"
	TriggerManual    = "manual"
)

// Session is the assembled client.
type Session struct {
	cfg *config.Config
	log zerolog.Logger

	engine     *reconcile.Engine
	dispatcher *protocol.Dispatcher
	transcript *chat.Transcript
	realtime   *realtime.Manager
	api        *taskapi.Client
	cache      *snapshot.Store
	ownsCache  bool

	syncLoop *SyncLoop

	everOpened atomic.Bool
	loaded     atomic.Bool
	terminal   atomic.Pointer[error]
}

// Option customizes New.
type Option func(*options)

type options struct {
	dialer realtime.Dialer
	api    *taskapi.Client
	cache  *snapshot.Store
}

// WithDialer replaces the WebSocket dialer.
func WithDialer(d realtime.Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithAPIClient replaces the fallback client built from cfg.API.
func WithAPIClient(c *taskapi.Client) Option {
	return func(o *options) { o.api = c }
}

// WithSnapshotStore uses store as the snapshot cache regardless of
// cfg.Cache. The caller keeps ownership and must close it.
func WithSnapshotStore(store *snapshot.Store) Option {
	return func(o *options) { o.cache = store }
}

// New assembles a session. Nothing is started until Start and the services
// from Realtime and SyncLoop are running.
func New(cfg *config.Config, opts ...Option) (*Session, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		cfg:        cfg,
		log:        logging.WithComponent("session"),
		engine:     reconcile.NewEngine(),
		transcript: chat.NewTranscript(cfg.Chat.HistoryLimit),
		api:        o.api,
		cache:      o.cache,
	}
	if s.api == nil {
		s.api = taskapi.NewClient(cfg.API)
	}
	if s.cache == nil && cfg.Cache.Enabled {
		store, err := snapshot.Open(snapshot.Options{Path: cfg.Cache.Path, Scope: cfg.API.BaseURL})
		if err != nil {
			return nil, fmt.Errorf("open snapshot cache: %w", err)
		}
		s.cache = store
		s.ownsCache = true
	}

	s.dispatcher = protocol.NewDispatcher(s.engine, s.transcript)
	s.dispatcher.Handle(protocol.KindPong, func(protocol.Event) {
		s.realtime.ObservePong(time.Now())
	})

	s.realtime = realtime.NewManager(realtime.NewConfig(cfg.Realtime), o.dialer, s.dispatcher, s)
	s.syncLoop = newSyncLoop(s, cfg.Sync.ResyncInterval)

	if s.cache != nil {
		s.engine.OnChange(func(reconcile.Change) { s.syncLoop.markDirty() })
	}

	return s, nil
}

// Start warms the collection from the cache, loads the full list and opens
// the realtime channel. A failed initial list is logged; the channel or a
// later resync can still bring the collection up to date.
func (s *Session) Start(ctx context.Context) {
	s.warmStart()

	if err := s.Resync(ctx, TriggerInitial); err != nil {
		s.log.Warn().Err(err).Msg("Initial task list unavailable")
	}

	s.realtime.Open()
}

// Stop closes the realtime channel.
func (s *Session) Stop() {
	s.realtime.Close()
}

// Close persists the collection and releases the snapshot cache if the
// session opened it.
func (s *Session) Close() error {
	if s.cache == nil {
		return nil
	}
	s.saveCache()
	if !s.ownsCache {
		return nil
	}
	return s.cache.Close()
}

func (s *Session) warmStart() {
	if s.cache == nil {
		return
	}
	snap, err := s.cache.Load()
	if errors.Is(err, snapshot.ErrNoSnapshot) {
		return
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to load snapshot cache")
		return
	}
	s.engine.ApplySnapshot(snap.Tasks)
	s.log.Info().
		Int("tasks", len(snap.Tasks)).
		Time("saved_at", snap.SavedAt).
		Msg("Warm start from snapshot cache")
}

// Resync replaces the collection with the server's full list.
func (s *Session) Resync(ctx context.Context, trigger string) error {
	ctx = logging.ContextWithNewCorrelationID(ctx)

	tasks, err := s.api.List(ctx, models.Filter{})
	metrics.RecordResync(trigger, err)
	if err != nil {
		return fmt.Errorf("%s resync: %w", trigger, err)
	}

	s.loaded.Store(true)
	changed := s.engine.ApplySnapshot(tasks)
	logging.Ctx(ctx).Debug().
		Str("trigger", trigger).
		Int("tasks", len(tasks)).
		Bool("changed", changed).
		Msg("Resync applied")
	return nil
}

func (s *Session) saveCache() {
	if s.cache == nil {
		return
	}
	if err := s.cache.Save(s.engine.Tasks()); err != nil {
		s.log.Warn().Err(err).Msg("Failed to save snapshot cache")
	}
}

// Status reports the realtime channel and collection size.
func (s *Session) Status() models.ConnectionStatus {
	st := s.realtime.Status()
	out := models.ConnectionStatus{
		State:       st.State.String(),
		Endpoint:    st.Endpoint,
		Attempt:     st.Attempt,
		MaxAttempts: st.MaxAttempts,
		NextDelayMS: st.NextDelay.Milliseconds(),
		GaveUp:      st.GaveUp,
		TaskCount:   s.engine.Len(),

		FallbackBreaker: s.api.BreakerState(),
		ChatPending:     s.transcript.Pending(),
	}
	if st.LastError != nil {
		out.LastError = st.LastError.Error()
	}
	if !st.ConnectedSince.IsZero() {
		t := st.ConnectedSince
		out.ConnectedSince = &t
	}
	if !st.LastPong.IsZero() {
		t := st.LastPong
		out.LastPong = &t
	}
	return out
}

// FallbackHealth probes the request/response server. The probe bypasses the
// circuit breaker.
func (s *Session) FallbackHealth(ctx context.Context) error {
	_, err := s.api.Health(ctx)
	return err
}

// TerminalError returns the last give-up error, or nil.
func (s *Session) TerminalError() error {
	if p := s.terminal.Load(); p != nil {
		return *p
	}
	return nil
}

// Tasks returns the collection, newest first.
func (s *Session) Tasks() []models.Task { return s.engine.Tasks() }

// ChatHistory returns the transcript, oldest first.
func (s *Session) ChatHistory() []models.ChatMessage { return s.transcript.Messages() }

// Engine returns the reconciliation engine.
func (s *Session) Engine() *reconcile.Engine { return s.engine }

// Dispatcher returns the protocol dispatcher, for extra subscribers.
func (s *Session) Dispatcher() *protocol.Dispatcher { return s.dispatcher }

// Transcript returns the chat transcript.
func (s *Session) Transcript() *chat.Transcript { return s.transcript }

// Realtime returns the connection manager service.
func (s *Session) Realtime() *realtime.Manager { return s.realtime }

// SyncLoop returns the background resync service.
func (s *Session) SyncLoop() *SyncLoop { return s.syncLoop }

// API returns the fallback client.
func (s *Session) API() *taskapi.Client { return s.api }

// OnStateChange implements realtime.Observer. On open:
//  1. If no full list has loaded yet, the initial load is retried whatever
//     the reconnect setting says.
//  2. Otherwise every open after the first is a reconnect and resyncs when
//     ResyncOnReconnect is set, to recover events missed while down.
func (s *Session) OnStateChange(_, to realtime.State) {
	if to != realtime.StateOpen {
		return
	}
	s.terminal.Store(nil)
	reopened := s.everOpened.Swap(true)
	switch {
	case !s.loaded.Load():
		s.syncLoop.Trigger(TriggerInitial)
	case reopened && s.cfg.Sync.ResyncOnReconnect:
		s.syncLoop.Trigger(TriggerReconnect)
	}
}

// OnReconnectScheduled implements realtime.Observer.
func (s *Session) OnReconnectScheduled(attempt int, delay time.Duration) {
	s.log.Debug().Int("attempt", attempt).Dur("delay", delay).Msg("Realtime reconnect pending")
}

// OnTerminalFailure implements realtime.Observer.
func (s *Session) OnTerminalFailure(err error) {
	s.terminal.Store(&err)
	s.log.Error().Err(err).Msg("Realtime channel unavailable; using request/response fallback only")
}
