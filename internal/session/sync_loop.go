// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package session

import (
	"context"
	"time"
)

// SyncLoop runs resyncs (periodic and on demand) and writes the snapshot
// cache after changes. It is a supervisor service.
type SyncLoop struct {
	s        *Session
	interval time.Duration

	triggers chan string
	dirty    chan struct{}
}

func newSyncLoop(s *Session, interval time.Duration) *SyncLoop {
	return &SyncLoop{
		s:        s,
		interval: interval,
		triggers: make(chan string, 1),
		dirty:    make(chan struct{}, 1),
	}
}

// String names the service for the supervisor.
func (l *SyncLoop) String() string {
	return "sync-loop"
}

// Trigger requests a resync. Requests arriving while one is queued are
// coalesced.
func (l *SyncLoop) Trigger(trigger string) {
	select {
	case l.triggers <- trigger:
	default:
	}
}

func (l *SyncLoop) markDirty() {
	select {
	case l.dirty <- struct{}{}:
	default:
	}
}

// Serve runs until ctx is canceled.
func (l *SyncLoop) Serve(ctx context.Context) error {
	var tick <-chan time.Time
	if l.interval > 0 {
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-tick:
			l.resync(ctx, TriggerPeriodic)

		case trigger := <-l.triggers:
			l.resync(ctx, trigger)

		case <-l.dirty:
			l.s.saveCache()
		}
	}
}

func (l *SyncLoop) resync(ctx context.Context, trigger string) {
	if err := l.s.Resync(ctx, trigger); err != nil && ctx.Err() == nil {
		l.s.log.Warn().Err(err).Str("trigger", trigger).Msg("Resync failed")
	}
}
