// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package models

import (
	"time"
)

// APIResponse is the envelope returned by every status API endpoint.
//
// Status field values:
//   - "success": see Data
//   - "error": see Error
//
// Example:
//
//	{
//	  "status": "success",
//	  "data": [{"id": 3, "title": "Buy milk", ...}],
//	  "metadata": {"timestamp": "2026-01-03T12:00:00Z", "count": 1}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata describes a status API response.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Count     *int      `json:"count,omitempty"`
}

// APIError is a structured error payload.
//
// Common codes:
//   - VALIDATION_ERROR: bad query parameters
//   - NOT_FOUND: unknown task
//   - RATE_LIMIT_EXCEEDED: too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ConnectionStatus is the status API view of the realtime channel.
type ConnectionStatus struct {
	State          string     `json:"state"`
	Endpoint       string     `json:"endpoint"`
	Attempt        int        `json:"reconnect_attempt"`
	MaxAttempts    int        `json:"max_reconnect_attempts"`
	NextDelayMS    int64      `json:"next_delay_ms,omitempty"`
	GaveUp         bool       `json:"gave_up"`
	LastError      string     `json:"last_error,omitempty"`
	ConnectedSince *time.Time `json:"connected_since,omitempty"`
	LastPong       *time.Time `json:"last_pong,omitempty"`
	TaskCount      int        `json:"task_count"`

	// FallbackBreaker is the request/response client's circuit state:
	// closed, half-open or open.
	FallbackBreaker string `json:"fallback_breaker"`
	ChatPending     bool   `json:"chat_pending"`
}
