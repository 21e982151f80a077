// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

/*
Package services adapts client components to suture's Serve(ctx) error
contract.

HTTPServerService wraps the status API's *http.Server: ListenAndServe runs
in a goroutine and context cancellation triggers Shutdown with a bounded
timeout. http.ErrServerClosed is not an error.

SessionService performs the session's startup sequence (warm start, initial
list, channel open) and then blocks until its context ends, so suture does
not restart it.

Components that already implement Serve, such as realtime.Manager and
session.SyncLoop, are added to the tree directly.
*/
package services
