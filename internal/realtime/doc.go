// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

/*
Package realtime owns the persistent WebSocket channel to the task server.

A Manager runs one event loop (Serve) that processes open and close requests,
dial results, inbound frames, the reconnect timer and the heartbeat ticker one
at a time in arrival order. Dials and reads run on helper goroutines that only
post events to the loop, tagged with a generation number so events from a
superseded transport are discarded.

Lifecycle:

	idle -> connecting -> open -> closed -> (backoff) -> connecting ...
	                                    \-> gave up after MaxAttempts

After a loss the attempt counter n is incremented and the next dial is
scheduled after min(base * 2^n, max). With the defaults (1s, 10s, 5 attempts)
that is 2s, 4s, 8s, 10s, 10s and then a terminal failure reported as
ErrGaveUp. A successful dial resets the counter. A manual Open after giving
up starts over.

While open, a ping command is written every HeartbeatInterval. Pong frames
are recorded with ObservePong for liveness reporting only.

Outbound commands (SendChat, SendHeartbeat) are at-most-once: when the
channel is not open they fail immediately with ErrChannelUnavailable and the
caller decides whether to use the request/response fallback.

Usage:

	mgr := realtime.NewManager(realtime.NewConfig(cfg.Realtime), nil, dispatcher, observer)
	go mgr.Serve(ctx)
	mgr.Open()
	if err := mgr.SendChat("add milk to groceries"); errors.Is(err, realtime.ErrChannelUnavailable) {
	    // use the fallback API
	}
*/
package realtime
