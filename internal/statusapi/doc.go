// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

/*
Package statusapi serves a local, read-only HTTP view of a running client.

Routes:

	GET /healthz   liveness; 503 once the realtime channel has given up
	GET /status    realtime channel state, reconnect attempt, task count
	GET /tasks     the local collection, filtered by completed, priority,
	               category and search query parameters
	GET /chat      the chat transcript, oldest first
	GET /metrics   Prometheus metrics

Every JSON response uses the models.APIResponse envelope. Nothing here writes
to the task server; mutations go through the session.

Middleware order: request ID with logging context, real IP, panic recovery,
CORS, per-IP rate limiting (go-chi/httprate) and request metrics.
*/
package statusapi
