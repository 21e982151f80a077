// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package taskapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

var (
	// ErrNotFound matches a 404 StatusError.
	ErrNotFound = errors.New("task not found")

	// ErrRateLimited matches a 429 StatusError returned after retries ran out.
	ErrRateLimited = errors.New("rate limited by task server")

	// ErrCircuitOpen is returned when the circuit breaker rejects a call.
	ErrCircuitOpen = errors.New("task server circuit open")

	// ErrInvalidResponse is returned when a response body fails validation.
	ErrInvalidResponse = errors.New("invalid response from task server")
)

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Is maps well-known status codes onto the package sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	default:
		return false
	}
}

// serverFault reports whether the error should count against the breaker.
func (e *StatusError) serverFault() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

const maxErrorBody = 512

// newStatusError reads a bounded amount of the body and extracts the
// server's "detail" message when present.
func newStatusError(resp *http.Response, method, path string) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	msg := strings.TrimSpace(string(body))
	var detail struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &detail); err == nil && detail.Detail != nil {
		if s, ok := detail.Detail.(string); ok {
			msg = s
		}
	}

	return &StatusError{
		StatusCode: resp.StatusCode,
		Method:     method,
		Path:       path,
		Message:    msg,
	}
}
