// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

/*
Package taskapi is the request/response fallback client for the task server.

It is used for the initial full list, periodic resyncs, direct task edits
and chat messages sent while the realtime channel is unavailable.

Endpoints (relative to the configured base URL):

	GET    /tasks            list, optional completed/priority/category/search
	POST   /tasks            create
	GET    /tasks/{id}       fetch one
	PUT    /tasks/{id}       partial update
	DELETE /tasks/{id}       delete
	POST   /chat             natural-language command
	GET    /health           liveness

Resilience:

  - Client-side rate limiting with golang.org/x/time/rate
  - Retry on HTTP 429 with exponential backoff, honoring Retry-After
  - Circuit breaker (sony/gobreaker) that opens after consecutive server-side
    failures; 4xx responses other than 429 do not count against it

Errors:

Non-2xx responses are returned as *StatusError. Use errors.Is with
ErrNotFound or ErrRateLimited for the common cases, and ErrCircuitOpen when
the breaker rejected the call without contacting the server.
*/
package taskapi
