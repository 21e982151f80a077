// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package realtime

import "time"

// State is the connection lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Observer receives lifecycle notifications. Calls are made from the
// Manager's event loop and must not block.
type Observer interface {
	OnStateChange(from, to State)
	OnReconnectScheduled(attempt int, delay time.Duration)
	OnTerminalFailure(err error)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) OnStateChange(State, State)              {}
func (NopObserver) OnReconnectScheduled(int, time.Duration) {}
func (NopObserver) OnTerminalFailure(error)                 {}

// Status is a point-in-time view of the channel.
type Status struct {
	State       State
	Endpoint    string
	Attempt     int
	MaxAttempts int

	// NextDelay is the delay of the currently scheduled reconnect, zero when
	// none is pending.
	NextDelay time.Duration
	GaveUp    bool
	LastError error

	ConnectedSince time.Time
	LastPong       time.Time
}
