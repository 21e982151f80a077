// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

// Package chat keeps the bounded transcript of user messages and assistant
// replies. A Transcript is the dispatcher's ChatSink.
package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/tasksync/internal/models"
	"github.com/tomtom215/tasksync/internal/protocol"
)

// DefaultLimit is used when NewTranscript is given a non-positive limit.
const DefaultLimit = 200

// Transcript is safe for concurrent use.
type Transcript struct {
	mu       sync.RWMutex
	limit    int
	messages []models.ChatMessage
	pending  int
	waiters  map[uint64]chan models.ChatMessage
	nextID   uint64

	now func() time.Time
}

// NewTranscript creates a transcript holding at most limit messages.
func NewTranscript(limit int) *Transcript {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Transcript{
		limit:   limit,
		waiters: make(map[uint64]chan models.ChatMessage),
		now:     time.Now,
	}
}

// AddUser records an outgoing user message and marks a reply as pending.
func (t *Transcript) AddUser(text string) models.ChatMessage {
	msg := models.ChatMessage{
		ID:        uuid.New(),
		Message:   text,
		Timestamp: t.now().UTC(),
		IsUser:    true,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.appendLocked(msg)
	t.pending++
	return msg
}

// AddReply records an assistant reply and wakes every NextReply waiter. A
// zero at is replaced by the local time.
func (t *Transcript) AddReply(response string, tasksUpdated bool, at time.Time) models.ChatMessage {
	if at.IsZero() {
		at = t.now()
	}
	msg := models.ChatMessage{
		ID:           uuid.New(),
		Response:     response,
		Timestamp:    at.UTC(),
		TasksUpdated: tasksUpdated,
	}

	t.mu.Lock()
	t.appendLocked(msg)
	if t.pending > 0 {
		t.pending--
	}
	waiters := t.waiters
	t.waiters = make(map[uint64]chan models.ChatMessage)
	t.mu.Unlock()

	for _, ch := range waiters {
		ch <- msg
	}
	return msg
}

// OnChatResponse implements protocol.ChatSink.
func (t *Transcript) OnChatResponse(r protocol.ChatResponse) {
	t.AddReply(r.Response, r.TasksUpdated, r.Timestamp)
}

// CancelPending clears one pending reply, used when a send failed outright.
func (t *Transcript) CancelPending() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending > 0 {
		t.pending--
	}
}

// Pending reports whether a user message is still awaiting its reply.
func (t *Transcript) Pending() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pending > 0
}

// NextReply registers for the next assistant reply. Register before sending
// to avoid missing a fast reply. cancel unregisters; it is safe to call after
// the reply arrived.
func (t *Transcript) NextReply() (reply <-chan models.ChatMessage, cancel func()) {
	ch := make(chan models.ChatMessage, 1)

	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.waiters[id] = ch
	t.mu.Unlock()

	return ch, func() {
		t.mu.Lock()
		delete(t.waiters, id)
		t.mu.Unlock()
	}
}

// Messages returns a copy of the transcript, oldest first.
func (t *Transcript) Messages() []models.ChatMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.ChatMessage, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages held.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

func (t *Transcript) appendLocked(msg models.ChatMessage) {
	t.messages = append(t.messages, msg)
	if over := len(t.messages) - t.limit; over > 0 {
		// Shift instead of reslicing so the backing array does not grow
		// without bound.
		n := copy(t.messages, t.messages[over:])
		clear(t.messages[n:])
		t.messages = t.messages[:n]
	}
}
