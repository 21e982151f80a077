// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

/*
Package reconcile owns the local task collection.

The Engine is the only component that mutates the collection. Push events,
fallback API results and periodic full-list snapshots all funnel through its
four operations:

  - ApplyCreated: prepend unless the ID is already present
  - ApplyUpdated: replace in place; unknown IDs are dropped
  - ApplyDeleted: remove every entry with the ID; absent IDs are a no-op
  - ApplySnapshot: replace everything, keeping the first occurrence of each ID

No operation has an error path. Each reports whether the collection changed.

Thread Safety:

Writes build a new slice and swap it in under the write lock, so readers see
either the old collection or the new one and never a partial merge. Change
listeners run after the swap, outside the lock.

	engine := reconcile.NewEngine()
	engine.OnChange(func(c reconcile.Change) {
	    logging.Debug().Str("op", string(c.Op)).Int("size", c.Size).Msg("collection changed")
	})
	engine.ApplySnapshot(tasks)
	open := engine.Filtered(models.Filter{Completed: models.BoolPtr(false)})
*/
package reconcile
