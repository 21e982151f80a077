// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package taskapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tomtom215/tasksync/internal/models"
	"github.com/tomtom215/tasksync/internal/validation"
)

// List fetches the full task list, narrowed server-side by f. Every record
// must validate; a list containing an invalid record is rejected as a whole.
func (c *Client) List(ctx context.Context, f models.Filter) ([]models.Task, error) {
	path := "/tasks"
	if q := filterQuery(f); q != "" {
		path += "?" + q
	}

	tasks, err := castResult[[]models.Task](c.execute(func() (any, error) {
		var out []models.Task
		if err := c.roundTrip(ctx, request{method: http.MethodGet, endpoint: "/tasks", path: path}, &out); err != nil {
			return nil, err
		}
		for i := range out {
			if verr := validation.ValidateStruct(&out[i]); verr != nil {
				return nil, fmt.Errorf("%w: task %d: %v", ErrInvalidResponse, i, verr)
			}
		}
		if out == nil {
			out = []models.Task{}
		}
		return &out, nil
	}))
	if err != nil {
		return nil, err
	}
	return *tasks, nil
}

// Get fetches one task.
func (c *Client) Get(ctx context.Context, id int64) (*models.Task, error) {
	return c.taskCall(ctx, request{
		method:   http.MethodGet,
		endpoint: "/tasks/{id}",
		path:     taskPath(id),
	})
}

// Create asks the server to create a task and returns the stored record.
func (c *Client) Create(ctx context.Context, in models.TaskCreate) (*models.Task, error) {
	if err := validation.Check(&in); err != nil {
		return nil, err
	}
	return c.taskCall(ctx, request{
		method:   http.MethodPost,
		endpoint: "/tasks",
		path:     "/tasks",
		body:     in,
	})
}

// Update applies a partial update and returns the stored record.
func (c *Client) Update(ctx context.Context, id int64, in models.TaskUpdate) (*models.Task, error) {
	if err := validation.Check(&in); err != nil {
		return nil, err
	}
	return c.taskCall(ctx, request{
		method:   http.MethodPut,
		endpoint: "/tasks/{id}",
		path:     taskPath(id),
		body:     in,
	})
}

// Delete removes a task.
func (c *Client) Delete(ctx context.Context, id int64) error {
	_, err := c.execute(func() (any, error) {
		return nil, c.roundTrip(ctx, request{
			method:   http.MethodDelete,
			endpoint: "/tasks/{id}",
			path:     taskPath(id),
		}, nil)
	})
	return err
}

// Chat sends a natural-language command to the server's interpreter.
func (c *Client) Chat(ctx context.Context, text string) (*models.ChatReply, error) {
	body := models.ChatRequest{
		Message:   text,
		Timestamp: models.NewTimestamp(time.Now().UTC()),
	}
	if err := validation.Check(&body); err != nil {
		return nil, err
	}

	return castResult[models.ChatReply](c.execute(func() (any, error) {
		var out models.ChatReply
		if err := c.roundTrip(ctx, request{
			method:   http.MethodPost,
			endpoint: "/chat",
			path:     "/chat",
			body:     body,
		}, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}))
}

// Health checks server liveness. It bypasses the circuit breaker so it can
// be used to probe a server the breaker has given up on.
func (c *Client) Health(ctx context.Context) (*models.HealthStatus, error) {
	var out models.HealthStatus
	if err := c.roundTrip(ctx, request{method: http.MethodGet, endpoint: "/health", path: "/health"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) taskCall(ctx context.Context, req request) (*models.Task, error) {
	return castResult[models.Task](c.execute(func() (any, error) {
		var out models.Task
		if err := c.roundTrip(ctx, req, &out); err != nil {
			return nil, err
		}
		if verr := validation.ValidateStruct(&out); verr != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, verr)
		}
		return &out, nil
	}))
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}

func filterQuery(f models.Filter) string {
	q := url.Values{}
	if f.Completed != nil {
		q.Set("completed", strconv.FormatBool(*f.Completed))
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q.Encode()
}
