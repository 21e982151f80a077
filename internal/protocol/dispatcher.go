// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package protocol

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tasksync/internal/logging"
	"github.com/tomtom215/tasksync/internal/metrics"
	"github.com/tomtom215/tasksync/internal/models"
)

// Reconciler receives task events. *reconcile.Engine implements it.
type Reconciler interface {
	ApplyCreated(models.Task) bool
	ApplyUpdated(models.Task) bool
	ApplyDeleted(id int64) bool
	ApplySnapshot([]models.Task) bool
}

// ChatSink receives assistant replies.
type ChatSink interface {
	OnChatResponse(ChatResponse)
}

// Handler observes a dispatched event.
type Handler func(Event)

// Dispatcher parses frames and routes the resulting events.
//
// Routing order for every event:
//  1. Task events go to the Reconciler, chat replies to the ChatSink.
//  2. Handlers registered with Handle for the event's kind.
//  3. Generic subscribers registered with Subscribe.
//
// Unrecognized events skip the first two steps and reach subscribers only,
// so they can never change the collection. Frames that fail to parse are
// logged, counted in tasksync_protocol_dropped_total and reach nobody.
//
// HandleFrame is called from the connection's event loop. Handlers run
// synchronously on that loop and should not block.
//
// Example:
//
//	d := protocol.NewDispatcher(engine, transcript)
//	d.Handle(protocol.KindPong, func(protocol.Event) { manager.ObservePong(time.Now()) })
//	d.Subscribe(func(ev protocol.Event) { log.Debug().Str("kind", string(ev.Kind)).Msg("event") })
type Dispatcher struct {
	reconciler Reconciler
	chat       ChatSink

	mu          sync.RWMutex
	handlers    map[Kind][]Handler
	subscribers []Handler

	log zerolog.Logger
}

// NewDispatcher creates a dispatcher. chat may be nil.
func NewDispatcher(reconciler Reconciler, chat ChatSink) *Dispatcher {
	return &Dispatcher{
		reconciler: reconciler,
		chat:       chat,
		handlers:   make(map[Kind][]Handler),
		log:        logging.WithComponent("protocol"),
	}
}

// Handle registers fn for events of kind. Handlers for KindUnrecognized are
// never called; use Subscribe to observe unrecognized frames.
func (d *Dispatcher) Handle(kind Kind, fn Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = append(d.handlers[kind], fn)
}

// Subscribe registers fn for every dispatched event.
func (d *Dispatcher) Subscribe(fn Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, fn)
}

// HandleFrame parses and dispatches one raw frame. Parse failures are
// logged, counted and dropped; they never reach any handler.
func (d *Dispatcher) HandleFrame(frame []byte) {
	ev, err := Parse(frame)
	if err != nil {
		reason := "invalid_payload"
		if errors.Is(err, ErrMalformedFrame) {
			reason = "parse_error"
		}
		metrics.ProtocolDropped.WithLabelValues(reason).Inc()
		d.log.Warn().Err(err).Int("bytes", len(frame)).Msg("Dropping inbound frame")
		return
	}
	d.Dispatch(ev)
}

// Dispatch routes an already parsed event.
func (d *Dispatcher) Dispatch(ev Event) {
	metrics.ProtocolEvents.WithLabelValues(string(ev.Kind)).Inc()

	switch ev.Kind {
	case KindTaskCreated:
		d.reconciler.ApplyCreated(ev.Task)
	case KindTaskUpdated:
		d.reconciler.ApplyUpdated(ev.Task)
	case KindTaskDeleted:
		d.reconciler.ApplyDeleted(ev.TaskID)
	case KindSnapshot:
		d.reconciler.ApplySnapshot(ev.Tasks)
	case KindChatResponse:
		if d.chat != nil {
			d.chat.OnChatResponse(ev.Chat)
		}
	case KindUnrecognized:
		d.log.Debug().Bytes("frame", truncate(ev.Raw, 256)).Msg("Unrecognized frame")
	}

	d.mu.RLock()
	var specific []Handler
	if ev.Kind != KindUnrecognized {
		specific = d.handlers[ev.Kind]
	}
	generic := d.subscribers
	d.mu.RUnlock()

	for _, fn := range specific {
		fn(ev)
	}
	for _, fn := range generic {
		fn(ev)
	}
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
