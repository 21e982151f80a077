// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package services

import (
	"context"
)

// SessionStarter is implemented by *session.Session.
type SessionStarter interface {
	Start(ctx context.Context)
}

// SessionService starts a session once the tree is running. The realtime
// manager closes the channel itself when its own Serve returns. If suture
// restarts this service, Start runs again: the initial resync is repeated
// and opening an already open channel does nothing.
type SessionService struct {
	session SessionStarter
}

// NewSessionService wraps s.
func NewSessionService(s SessionStarter) *SessionService {
	return &SessionService{session: s}
}

// Serve implements suture.Service.
func (s *SessionService) Serve(ctx context.Context) error {
	s.session.Start(ctx)
	<-ctx.Done()
	return ctx.Err()
}

func (s *SessionService) String() string {
	return "session"
}
