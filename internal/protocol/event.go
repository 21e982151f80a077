// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tasksync/internal/models"
	"github.com/tomtom215/tasksync/internal/validation"
)

// Kind tags an inbound event.
type Kind string

// Inbound event kinds. The values are the wire "type" tags, except
// KindUnrecognized which never appears on the wire.
const (
	KindTaskCreated  Kind = "task_created"
	KindTaskUpdated  Kind = "task_updated"
	KindTaskDeleted  Kind = "task_deleted"
	KindSnapshot     Kind = "tasks_updated"
	KindChatResponse Kind = "chat_response"
	KindPong         Kind = "pong"
	KindUnrecognized Kind = "unrecognized"
)

// Parse errors. Both cause the frame to be dropped.
var (
	ErrMalformedFrame = errors.New("protocol: malformed frame")
	ErrInvalidPayload = errors.New("protocol: invalid payload")
)

// ChatResponse is the assistant's reply to a chat command.
type ChatResponse struct {
	Response     string
	TasksUpdated bool
	Timestamp    time.Time
}

// Event is one parsed inbound frame. Only the fields for Kind are set.
type Event struct {
	Kind Kind

	Task   models.Task   // task_created, task_updated
	TaskID int64         // task_deleted
	Tasks  []models.Task // tasks_updated

	Chat ChatResponse // chat_response

	// Timestamp is the server time carried by pong and chat_response
	// frames, zero when absent or unparseable.
	Timestamp time.Time

	// Raw is the original frame.
	Raw []byte
}

// envelope carries only the tag. Payload fields are decoded per kind so a
// field that another kind would reject cannot break this frame.
type envelope struct {
	Type json.RawMessage `json:"type"`
}

type taskPayload struct {
	Task json.RawMessage `json:"task"`
}

type deletePayload struct {
	TaskID *int64 `json:"task_id"`
}

type snapshotPayload struct {
	Data json.RawMessage `json:"data"`
}

type chatPayload struct {
	Response     string          `json:"response"`
	TasksUpdated bool            `json:"tasks_updated"`
	Timestamp    json.RawMessage `json:"timestamp"`
}

type pongPayload struct {
	Timestamp json.RawMessage `json:"timestamp"`
}

// Parse classifies and validates a raw frame in two steps:
//  1. Decode the object and read its "type" tag. A frame that is not a JSON
//     object returns ErrMalformedFrame. A missing, non-string or unknown tag
//     yields a KindUnrecognized event and no error.
//  2. Decode only the payload fields of the matched kind. A payload that is
//     missing, mistyped or fails validation returns ErrInvalidPayload.
//
// Fields that belong to other kinds are ignored.
func Parse(frame []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	ev := Event{Raw: frame, Kind: KindUnrecognized}
	var tag string
	if isNull(env.Type) || json.Unmarshal(env.Type, &tag) != nil {
		return ev, nil
	}

	switch kind := Kind(tag); kind {
	case KindTaskCreated, KindTaskUpdated:
		var p taskPayload
		if err := decodePayload(frame, &p); err != nil {
			return Event{}, err
		}
		task, err := decodeTask(p.Task)
		if err != nil {
			return Event{}, err
		}
		ev.Kind = kind
		ev.Task = task

	case KindTaskDeleted:
		var p deletePayload
		if err := decodePayload(frame, &p); err != nil {
			return Event{}, err
		}
		if p.TaskID == nil || *p.TaskID <= 0 {
			return Event{}, fmt.Errorf("%w: task_deleted requires a positive task_id", ErrInvalidPayload)
		}
		ev.Kind = KindTaskDeleted
		ev.TaskID = *p.TaskID

	case KindSnapshot:
		var p snapshotPayload
		if err := decodePayload(frame, &p); err != nil {
			return Event{}, err
		}
		tasks, err := decodeSnapshot(p.Data)
		if err != nil {
			return Event{}, err
		}
		ev.Kind = KindSnapshot
		ev.Tasks = tasks

	case KindChatResponse:
		var p chatPayload
		if err := decodePayload(frame, &p); err != nil {
			return Event{}, err
		}
		ev.Kind = KindChatResponse
		ev.Timestamp = parseTimestamp(p.Timestamp)
		ev.Chat = ChatResponse{
			Response:     p.Response,
			TasksUpdated: p.TasksUpdated,
			Timestamp:    ev.Timestamp,
		}

	case KindPong:
		var p pongPayload
		if err := decodePayload(frame, &p); err != nil {
			return Event{}, err
		}
		ev.Kind = KindPong
		ev.Timestamp = parseTimestamp(p.Timestamp)
	}

	return ev, nil
}

func decodePayload(frame []byte, v any) error {
	if err := json.Unmarshal(frame, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeTask(raw json.RawMessage) (models.Task, error) {
	if isNull(raw) {
		return models.Task{}, fmt.Errorf("%w: missing task", ErrInvalidPayload)
	}

	var task models.Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return models.Task{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if verr := validation.ValidateStruct(&task); verr != nil {
		return models.Task{}, fmt.Errorf("%w: %v", ErrInvalidPayload, verr)
	}
	return task, nil
}

// decodeSnapshot requires an array whose every record is valid. A partial
// snapshot cannot be authoritative, so one bad record rejects the frame.
func decodeSnapshot(raw json.RawMessage) ([]models.Task, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: tasks_updated requires a data array", ErrInvalidPayload)
	}

	var tasks []models.Task
	if err := json.Unmarshal(trimmed, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	for i := range tasks {
		if verr := validation.ValidateStruct(&tasks[i]); verr != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidPayload, i, verr)
		}
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// parseTimestamp is lenient: timestamps are informational only.
func parseTimestamp(raw json.RawMessage) time.Time {
	if isNull(raw) {
		return time.Time{}
	}
	var ts models.Timestamp
	if err := json.Unmarshal(raw, &ts); err != nil {
		return time.Time{}
	}
	return ts.Time
}
