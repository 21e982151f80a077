// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

/*
Package supervisor runs the client's long-lived services under a suture v4
tree.

Layout:

	RootSupervisor ("tasksync")
	├── RealtimeSupervisor ("realtime-layer")
	│   ├── realtime.Manager      connection loop, heartbeat, reconnect timer
	│   ├── session.SyncLoop      periodic and triggered resync, cache writes
	│   └── services.SessionService   initial list load and channel open
	└── APISupervisor ("api-layer")
	    └── services.HTTPServerService   status API (if enabled)

A panic or error in the status server restarts only the api layer; the
connection loop keeps its state. Supervisor events are logged through
sutureslog and the zerolog slog adapter:

	logger := logging.NewSlogLogger("supervisor")
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	supervisor.AddSession(tree, sess)
	if cfg.Status.Enabled {
	    tree.AddAPIService(services.NewHTTPServerService(statusapi.NewServer(cfg.Status, sess), cfg.Status.ShutdownTimeout))
	}
	err = <-tree.ServeBackground(ctx)

Reconnect backoff for the realtime channel is handled by realtime.Manager
itself. Suture's failure backoff only applies when a service returns or
panics, which the manager does not do short of context cancellation.
*/
package supervisor
