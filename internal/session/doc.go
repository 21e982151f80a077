// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

/*
Package session wires the realtime channel, the protocol dispatcher, the
reconciliation engine, the chat transcript, the fallback API client and the
optional snapshot cache into one client.

Data flow:

	WebSocket frame -> realtime.Manager -> protocol.Dispatcher -> reconcile.Engine
	                                                          \-> chat.Transcript
	REST response   -> taskapi.Client   -> Session            -> reconcile.Engine

Every change to the collection goes through the engine, whether it arrived
as a push event, a resync or the canonical result of a local edit.

Writes take the mixed path: chat goes over the realtime channel when it is
open and falls back to POST /chat otherwise. Direct task edits always use the
REST API and apply the server's canonical record locally.

Background work runs in two supervised services: the realtime Manager and
the SyncLoop (periodic and on-reconnect resyncs, snapshot cache writes).

Usage:

	s, err := session.New(cfg)
	if err != nil {
	    return err
	}
	defer s.Close()
	// run s.Realtime() and s.SyncLoop() under a supervisor, then:
	s.Start(ctx)
*/
package session
