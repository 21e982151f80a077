// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package models

import (
	"strings"
)

// Priority is the urgency of a task.
type Priority string

// Priority values accepted by the task server.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Task is a single to-do record synchronized with the task server.
//
// Identity (ID) is always assigned by the server. The client never invents an
// ID, and within a collection no two tasks share one.
//
// Optional string fields are pointers so that "absent" and "empty" stay
// distinguishable when a task is echoed back to the server.
type Task struct {
	ID          int64      `json:"id" validate:"required,gt=0"`
	Title       string     `json:"title" validate:"required,min=1,max=255"`
	Description *string    `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority" validate:"required,priority"`
	Category    *string    `json:"category,omitempty"`
	DueDate     *Timestamp `json:"due_date,omitempty"`
	CreatedAt   Timestamp  `json:"created_at"`
	UpdatedAt   *Timestamp `json:"updated_at,omitempty"`
}

// TaskCreate is the request body for creating a task through the fallback API.
type TaskCreate struct {
	Title       string     `json:"title" validate:"required,min=1,max=255"`
	Description *string    `json:"description,omitempty"`
	Priority    Priority   `json:"priority,omitempty" validate:"omitempty,priority"`
	Category    *string    `json:"category,omitempty"`
	DueDate     *Timestamp `json:"due_date,omitempty"`
}

// TaskUpdate is a partial update. Nil fields are left untouched by the server.
type TaskUpdate struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	Priority    *Priority  `json:"priority,omitempty" validate:"omitempty,priority"`
	Category    *string    `json:"category,omitempty"`
	DueDate     *Timestamp `json:"due_date,omitempty"`
}

// Filter narrows a task list.
//
// Completed, Priority and Category are exact matches. Search is a
// case-insensitive substring match against title, description and category.
// Zero values mean "no constraint".
type Filter struct {
	Completed *bool    `json:"completed,omitempty"`
	Priority  Priority `json:"priority,omitempty" validate:"omitempty,priority"`
	Category  string   `json:"category,omitempty"`
	Search    string   `json:"search,omitempty"`
}

// IsZero reports whether the filter has no constraints.
func (f Filter) IsZero() bool {
	return f.Completed == nil && f.Priority == "" && f.Category == "" && strings.TrimSpace(f.Search) == ""
}

// Matches reports whether t satisfies every constraint of f.
func (f Filter) Matches(t *Task) bool {
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Category != "" && (t.Category == nil || *t.Category != f.Category) {
		return false
	}

	query := strings.ToLower(strings.TrimSpace(f.Search))
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Title), query) {
		return true
	}
	if t.Description != nil && strings.Contains(strings.ToLower(*t.Description), query) {
		return true
	}
	return t.Category != nil && strings.Contains(strings.ToLower(*t.Category), query)
}

// StringPtr returns a pointer to s. Handy for optional task fields.
func StringPtr(s string) *string {
	return &s
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}
