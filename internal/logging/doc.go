// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

/*
Package logging provides the process-wide zerolog logger for Tasksync.

Every package logs through the package-level helpers so that level and format
are controlled in one place:

	logging.Init(logging.Config{Level: "debug", Format: "console"})

	logging.Info().Str("url", endpoint).Msg("Realtime channel open")
	logging.Warn().Err(err).Int("attempt", n).Msg("Reconnect scheduled")

Components that log a lot take a child logger once:

	log := logging.WithComponent("realtime")
	log.Debug().Str("type", kind).Msg("frame dispatched")

Context Correlation:

Operations that span several components (a resync, a chat fallback) carry a
short correlation ID in their context. Ctx(ctx) returns a logger with it
attached.

	ctx = logging.ContextWithNewCorrelationID(ctx)
	logging.Ctx(ctx).Info().Msg("Resync started")

slog Bridge:

The supervisor library logs through log/slog. NewSlogLogger returns an
*slog.Logger whose records are written by zerolog.

Environment Variables:

  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json, console (default: json)
  - LOG_CALLER: include caller file:line (default: false)
*/
package logging
