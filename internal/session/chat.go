// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/tasksync/internal/metrics"
	"github.com/tomtom215/tasksync/internal/models"
	"github.com/tomtom215/tasksync/internal/realtime"
)

// Chat paths.
const (
	PathRealtime = "realtime"
	PathFallback = "fallback"
)

// ErrReplyTimeout is returned by SendChatAndWait when a realtime reply does
// not arrive in time.
var ErrReplyTimeout = errors.New("timed out waiting for chat reply")

// ChatResult describes how a chat message was delivered. Reply is set only
// for the fallback path; realtime replies arrive asynchronously through the
// transcript.
type ChatResult struct {
	Path  string
	Reply *models.ChatMessage
}

// SendChat records text in the transcript and delivers it over the realtime
// channel if open, otherwise through POST /chat. A fallback reply that
// reports updated tasks triggers a resync.
func (s *Session) SendChat(ctx context.Context, text string) (ChatResult, error) {
	s.transcript.AddUser(text)

	err := s.realtime.SendChat(text)
	if err == nil {
		metrics.ChatMessages.WithLabelValues(PathRealtime).Inc()
		return ChatResult{Path: PathRealtime}, nil
	}
	if !errors.Is(err, realtime.ErrChannelUnavailable) {
		s.log.Warn().Err(err).Msg("Realtime chat write failed, using fallback")
	}

	reply, err := s.api.Chat(ctx, text)
	if err != nil {
		s.transcript.CancelPending()
		metrics.ChatMessages.WithLabelValues("failed").Inc()
		return ChatResult{}, fmt.Errorf("send chat: %w", err)
	}
	metrics.ChatMessages.WithLabelValues(PathFallback).Inc()

	msg := s.transcript.AddReply(reply.Response, reply.TasksUpdated, reply.Timestamp.Time)
	if reply.TasksUpdated {
		if err := s.Resync(ctx, TriggerChat); err != nil {
			s.log.Warn().Err(err).Msg("Resync after chat failed")
		}
	}
	return ChatResult{Path: PathFallback, Reply: &msg}, nil
}

// SendChatAndWait sends text and waits for the assistant reply on either
// path. timeout bounds the realtime wait; zero uses the configured reply
// timeout.
func (s *Session) SendChatAndWait(ctx context.Context, text string, timeout time.Duration) (models.ChatMessage, string, error) {
	if timeout <= 0 {
		timeout = s.cfg.Chat.ReplyTimeout
	}

	replies, cancel := s.transcript.NextReply()
	defer cancel()

	res, err := s.SendChat(ctx, text)
	if err != nil {
		return models.ChatMessage{}, "", err
	}
	if res.Reply != nil {
		return *res.Reply, res.Path, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-replies:
		return msg, res.Path, nil
	case <-timer.C:
		return models.ChatMessage{}, res.Path, ErrReplyTimeout
	case <-ctx.Done():
		return models.ChatMessage{}, res.Path, ctx.Err()
	}
}
