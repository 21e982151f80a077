// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

/*
Package models defines the data structures shared by every Tasksync layer.

Key Components:

  - Task: the synchronized record (server-assigned integer ID)
  - TaskCreate / TaskUpdate: fallback API request bodies
  - Filter: list narrowing used by both the fallback API and the local view
  - Timestamp: time.Time wrapper that accepts the server's zone-less ISO-8601
  - ChatMessage / ChatReply: chat transcript entries and fallback chat replies
  - APIResponse: envelope used by the local status API

Validation:

Struct tags are consumed by internal/validation. The custom "priority" tag
accepts only low, medium and high.

	if err := validation.ValidateStruct(&task); err != nil {
	    // drop the record
	}

Filter Semantics:

	f := models.Filter{Search: "milk"}
	f.Matches(&task) // case-insensitive match on title, description, category
*/
package models
