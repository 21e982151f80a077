// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package reconcile

import (
	"sync"

	"github.com/tomtom215/tasksync/internal/metrics"
	"github.com/tomtom215/tasksync/internal/models"
)

// Op names a reconciliation operation.
type Op string

const (
	OpCreated  Op = "created"
	OpUpdated  Op = "updated"
	OpDeleted  Op = "deleted"
	OpSnapshot Op = "snapshot"
)

// Change describes an applied operation. TaskID is zero for snapshots.
type Change struct {
	Op     Op
	TaskID int64
	Size   int
}

// Listener is notified after every operation that changed the collection.
type Listener func(Change)

// Engine holds the ordered, duplicate-free task collection.
//
// Every operation is defined for every input, so none of them return an
// error. Each reports whether the collection changed:
//   - ApplyCreated prepends a task whose ID is not present. A repeated
//     create is ignored, which makes replayed events harmless.
//   - ApplyUpdated replaces a present task in place and keeps its position.
//     An update for an unknown ID is ignored.
//   - ApplyDeleted removes the ID if present.
//   - ApplySnapshot replaces the collection, keeping the first occurrence of
//     each ID.
//
// Readers get copies. The backing slice is replaced on every write and never
// mutated after publication, so Tasks and Filtered never block a writer for
// longer than a slice copy. Listeners registered with OnChange run after the
// write lock is released.
//
//	e := reconcile.NewEngine()
//	e.ApplyCreated(task)
//	e.ApplyCreated(task) // false: already present
//	open := e.Filtered(models.Filter{Completed: models.BoolPtr(false)})
type Engine struct {
	mu    sync.RWMutex
	tasks []models.Task // never mutated after publication
	index map[int64]int // id -> position in tasks

	listenersMu sync.RWMutex
	listeners   []Listener
}

// NewEngine returns an empty engine.
func NewEngine() *Engine {
	return &Engine{index: map[int64]int{}}
}

// OnChange registers fn. Listeners must not call back into a write
// operation synchronously.
func (e *Engine) OnChange(fn Listener) {
	e.listenersMu.Lock()
	e.listeners = append(e.listeners, fn)
	e.listenersMu.Unlock()
}

// ApplyCreated prepends t unless a task with the same ID exists.
func (e *Engine) ApplyCreated(t models.Task) bool {
	e.mu.Lock()
	if _, exists := e.index[t.ID]; exists {
		size := len(e.tasks)
		e.mu.Unlock()
		metrics.RecordReconcile(string(OpCreated), false, size)
		return false
	}

	next := make([]models.Task, 0, len(e.tasks)+1)
	next = append(next, t)
	next = append(next, e.tasks...)
	size := e.publish(next)
	e.mu.Unlock()

	e.applied(Change{Op: OpCreated, TaskID: t.ID, Size: size})
	return true
}

// ApplyUpdated replaces the task with t.ID in place. An update for an ID that
// is not present is dropped rather than inserted.
func (e *Engine) ApplyUpdated(t models.Task) bool {
	e.mu.Lock()
	pos, exists := e.index[t.ID]
	if !exists {
		size := len(e.tasks)
		e.mu.Unlock()
		metrics.RecordReconcile(string(OpUpdated), false, size)
		return false
	}

	next := make([]models.Task, len(e.tasks))
	copy(next, e.tasks)
	next[pos] = t
	size := e.publish(next)
	e.mu.Unlock()

	e.applied(Change{Op: OpUpdated, TaskID: t.ID, Size: size})
	return true
}

// ApplyDeleted removes every task with id.
func (e *Engine) ApplyDeleted(id int64) bool {
	e.mu.Lock()
	if _, exists := e.index[id]; !exists {
		size := len(e.tasks)
		e.mu.Unlock()
		metrics.RecordReconcile(string(OpDeleted), false, size)
		return false
	}

	next := make([]models.Task, 0, len(e.tasks)-1)
	for i := range e.tasks {
		if e.tasks[i].ID != id {
			next = append(next, e.tasks[i])
		}
	}
	size := e.publish(next)
	e.mu.Unlock()

	e.applied(Change{Op: OpDeleted, TaskID: id, Size: size})
	return true
}

// ApplySnapshot replaces the whole collection with tasks, keeping the first
// occurrence of each ID. It reports a change unless the result is identical
// in order and content to the current collection.
func (e *Engine) ApplySnapshot(tasks []models.Task) bool {
	next := Dedupe(tasks)

	e.mu.Lock()
	if sameTasks(e.tasks, next) {
		size := len(e.tasks)
		e.mu.Unlock()
		metrics.RecordReconcile(string(OpSnapshot), false, size)
		return false
	}
	size := e.publish(next)
	e.mu.Unlock()

	e.applied(Change{Op: OpSnapshot, Size: size})
	return true
}

// publish swaps in next and rebuilds the index. Caller holds e.mu.
func (e *Engine) publish(next []models.Task) int {
	index := make(map[int64]int, len(next))
	for i := range next {
		index[next[i].ID] = i
	}
	e.tasks = next
	e.index = index
	return len(next)
}

func (e *Engine) applied(c Change) {
	metrics.RecordReconcile(string(c.Op), true, c.Size)

	e.listenersMu.RLock()
	listeners := e.listeners
	e.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(c)
	}
}

// Tasks returns a copy of the collection, newest creations first.
func (e *Engine) Tasks() []models.Task {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]models.Task, len(e.tasks))
	copy(out, e.tasks)
	return out
}

// Get returns the task with id.
func (e *Engine) Get(id int64) (models.Task, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	pos, ok := e.index[id]
	if !ok {
		return models.Task{}, false
	}
	return e.tasks[pos], true
}

// Len returns the number of tasks.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.tasks)
}

// Filtered returns the tasks matching f, in collection order.
func (e *Engine) Filtered(f models.Filter) []models.Task {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]models.Task, 0, len(e.tasks))
	for i := range e.tasks {
		if f.Matches(&e.tasks[i]) {
			out = append(out, e.tasks[i])
		}
	}
	return out
}

// Dedupe returns tasks with later duplicates of an ID removed. The input is
// not modified.
func Dedupe(tasks []models.Task) []models.Task {
	seen := make(map[int64]struct{}, len(tasks))
	out := make([]models.Task, 0, len(tasks))
	for i := range tasks {
		if _, dup := seen[tasks[i].ID]; dup {
			continue
		}
		seen[tasks[i].ID] = struct{}{}
		out = append(out, tasks[i])
	}
	return out
}

func sameTasks(a, b []models.Task) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalTask(&a[i], &b[i]) {
			return false
		}
	}
	return true
}

func equalTask(a, b *models.Task) bool {
	return a.ID == b.ID &&
		a.Title == b.Title &&
		a.Completed == b.Completed &&
		a.Priority == b.Priority &&
		a.CreatedAt.Equal(b.CreatedAt.Time) &&
		equalString(a.Description, b.Description) &&
		equalString(a.Category, b.Category) &&
		equalTimestamp(a.DueDate, b.DueDate) &&
		equalTimestamp(a.UpdatedAt, b.UpdatedAt)
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTimestamp(a, b *models.Timestamp) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(b.Time)
}
