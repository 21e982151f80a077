// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

// Package validation wraps go-playground/validator v10 for Tasksync.
//
// A single validator instance is shared process-wide (it caches struct
// metadata). It is used to check inbound task records before they reach the
// reconciliation engine, request bodies before they are sent to the fallback
// API, and the loaded configuration.
//
//	if verr := validation.ValidateStruct(&task); verr != nil {
//	    logging.Warn().Err(verr).Msg("dropping malformed task")
//	    return
//	}
package validation
