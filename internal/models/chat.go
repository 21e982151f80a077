// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package models

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// ChatMessage is one entry of the chat transcript.
//
// User messages carry Message; assistant replies carry Response and the
// TasksUpdated flag reported by the server.
type ChatMessage struct {
	ID           uuid.UUID `json:"id"`
	Message      string    `json:"message"`
	Response     string    `json:"response,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	IsUser       bool      `json:"is_user"`
	TasksUpdated bool      `json:"tasks_updated,omitempty"`
}

// ChatRequest is the fallback API request body for POST /chat.
type ChatRequest struct {
	Message   string    `json:"message" validate:"required"`
	Timestamp Timestamp `json:"timestamp"`
}

// ChatReply is the fallback API response for POST /chat.
//
// TaskData mirrors whatever the interpreter touched; it is informational only
// and never merged into the collection directly.
type ChatReply struct {
	Response     string          `json:"response"`
	TasksUpdated bool            `json:"tasks_updated"`
	TaskData     json.RawMessage `json:"task_data,omitempty"`
	Timestamp    Timestamp       `json:"timestamp"`
}

// HealthStatus is the fallback API response for GET /health.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp Timestamp `json:"timestamp"`
}
