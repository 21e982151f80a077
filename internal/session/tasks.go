// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package session

import (
	"context"
	"errors"

	"github.com/tomtom215/tasksync/internal/models"
	"github.com/tomtom215/tasksync/internal/taskapi"
)

// CreateTask creates a task on the server and applies the stored record as
// a created event. A push event for the same task is then a no-op.
func (s *Session) CreateTask(ctx context.Context, in models.TaskCreate) (*models.Task, error) {
	task, err := s.api.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.engine.ApplyCreated(*task)
	return task, nil
}

// UpdateTask applies a partial update and merges the canonical result.
func (s *Session) UpdateTask(ctx context.Context, id int64, in models.TaskUpdate) (*models.Task, error) {
	task, err := s.api.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.engine.ApplyUpdated(*task)
	return task, nil
}

// ToggleTask flips the completed flag. The current value comes from the
// local collection, or the server when the task is not held locally.
func (s *Session) ToggleTask(ctx context.Context, id int64) (*models.Task, error) {
	current, ok := s.engine.Get(id)
	if !ok {
		fetched, err := s.api.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		current = *fetched
	}
	return s.UpdateTask(ctx, id, models.TaskUpdate{Completed: models.BoolPtr(!current.Completed)})
}

// DeleteTask deletes a task on the server and locally. A task the server no
// longer knows is removed locally without error.
func (s *Session) DeleteTask(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, id); err != nil && !errors.Is(err, taskapi.ErrNotFound) {
		return err
	}
	s.engine.ApplyDeleted(id)
	return nil
}

// FilteredTasks returns the local collection narrowed by f.
func (s *Session) FilteredTasks(f models.Filter) []models.Task {
	return s.engine.Filtered(f)
}
