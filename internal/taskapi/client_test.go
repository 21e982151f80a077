// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package taskapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tasksync/internal/config"
	"github.com/tomtom215/tasksync/internal/models"
)

const taskJSON = `{"id":7,"title":"Water plants","completed":false,"priority":"medium","category":"home","created_at":"2026-02-01T09:30:00.123456"}`

func testAPIConfig(baseURL string) config.APIConfig {
	return config.APIConfig{
		BaseURL:                 baseURL,
		Timeout:                 5 * time.Second,
		MaxRetries:              3,
		RetryBaseDelay:          time.Millisecond,
		BreakerMaxRequests:      1,
		BreakerInterval:         time.Minute,
		BreakerTimeout:          time.Minute,
		BreakerFailureThreshold: 3,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(testAPIConfig(srv.URL + "/api/v1")), &calls
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func checkNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func checkCalls(t *testing.T, calls *atomic.Int32, want int32) {
	t.Helper()
	if got := calls.Load(); got != want {
		t.Errorf("server calls = %d, want %d", got, want)
	}
}

func TestList_SendsFilterAndDecodes(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/v1/tasks" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("completed") != "false" || q.Get("priority") != "medium" || q.Get("search") != "plants" {
			t.Errorf("query = %v", q)
		}
		if q.Has("category") {
			t.Error("empty category should not be sent")
		}
		writeJSON(w, http.StatusOK, "["+taskJSON+"]")
	})

	tasks, err := client.List(context.Background(), models.Filter{
		Completed: models.BoolPtr(false),
		Priority:  models.PriorityMedium,
		Search:    "plants",
	})
	checkNoError(t, err)

	if len(tasks) != 1 || tasks[0].ID != 7 {
		t.Fatalf("tasks = %+v", tasks)
	}
	if tasks[0].Category == nil || *tasks[0].Category != "home" {
		t.Errorf("category = %v", tasks[0].Category)
	}
	if tasks[0].CreatedAt.Nanosecond() != 123456000 {
		t.Errorf("created_at = %v", tasks[0].CreatedAt)
	}
}

func TestList_EmptyAndNull(t *testing.T) {
	for _, body := range []string{"[]", "null"} {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, body)
		})
		tasks, err := client.List(context.Background(), models.Filter{})
		checkNoError(t, err)
		if tasks == nil || len(tasks) != 0 {
			t.Errorf("body %s: tasks = %#v, want empty", body, tasks)
		}
	}
}

func TestList_RejectsInvalidRecord(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, "["+taskJSON+`,{"id":0,"title":"","priority":"low"}]`)
	})

	_, err := client.List(context.Background(), models.Filter{})
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("error = %v, want ErrInvalidResponse", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/tasks/42" {
			t.Errorf("path = %s", r.URL.Path)
		}
		writeJSON(w, http.StatusNotFound, `{"detail":"Task not found"}`)
	})

	_, err := client.Get(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error %T is not *StatusError", err)
	}
	if se.StatusCode != 404 || se.Message != "Task not found" || se.Method != http.MethodGet {
		t.Errorf("StatusError = %+v", se)
	}
}

func TestCreate(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var in map[string]any
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if in["title"] != "Water plants" || in["priority"] != "medium" {
			t.Errorf("body = %v", in)
		}
		if _, ok := in["description"]; ok {
			t.Error("nil description should be omitted")
		}
		writeJSON(w, http.StatusOK, taskJSON)
	})

	task, err := client.Create(context.Background(), models.TaskCreate{
		Title:    "Water plants",
		Priority: models.PriorityMedium,
	})
	checkNoError(t, err)
	if task.ID != 7 {
		t.Errorf("ID = %d, want 7", task.ID)
	}
	checkCalls(t, calls, 1)
}

func TestCreate_ValidatesBeforeSending(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, taskJSON)
	})

	if _, err := client.Create(context.Background(), models.TaskCreate{Title: ""}); err == nil {
		t.Error("expected validation error for empty title")
	}
	if _, err := client.Create(context.Background(), models.TaskCreate{Title: "x", Priority: "urgent"}); err == nil {
		t.Error("expected validation error for bad priority")
	}
	checkCalls(t, calls, 0)
}

func TestUpdate_SendsOnlySetFields(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/v1/tasks/7" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"completed":true}` {
			t.Errorf("body = %s", body)
		}
		writeJSON(w, http.StatusOK, taskJSON)
	})

	_, err := client.Update(context.Background(), 7, models.TaskUpdate{Completed: models.BoolPtr(true)})
	checkNoError(t, err)
}

func TestDelete(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/v1/tasks/7" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		writeJSON(w, http.StatusOK, `{"message":"Task deleted successfully"}`)
	})

	checkNoError(t, client.Delete(context.Background(), 7))
	checkCalls(t, calls, 1)
}

func TestChat(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var in models.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode: %v", err)
		}
		if in.Message != "add milk" || in.Timestamp.IsZero() {
			t.Errorf("request = %+v", in)
		}
		writeJSON(w, http.StatusOK, `{"response":"Added milk","tasks_updated":true,"task_data":{"id":9}}`)
	})

	reply, err := client.Chat(context.Background(), "add milk")
	checkNoError(t, err)
	if reply.Response != "Added milk" || !reply.TasksUpdated {
		t.Errorf("reply = %+v", reply)
	}
	if string(reply.TaskData) != `{"id":9}` {
		t.Errorf("task_data = %s", reply.TaskData)
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})
	if _, err := client.Chat(context.Background(), ""); err == nil {
		t.Error("expected validation error")
	}
	checkCalls(t, calls, 0)
}

func TestHealth(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/health" {
			t.Errorf("path = %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, `{"status":"healthy","timestamp":"2026-02-01T10:00:00"}`)
	})

	h, err := client.Health(context.Background())
	checkNoError(t, err)
	if h.Status != "healthy" {
		t.Errorf("status = %q", h.Status)
	}
}

func TestRateLimitRetry(t *testing.T) {
	var n atomic.Int32
	client, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if n.Add(1) <= 2 {
			w.Header().Set("Retry-After", "0")
			writeJSON(w, http.StatusTooManyRequests, `{"detail":"slow down"}`)
			return
		}
		writeJSON(w, http.StatusOK, taskJSON)
	})

	task, err := client.Get(context.Background(), 7)
	checkNoError(t, err)
	if task.ID != 7 {
		t.Errorf("ID = %d", task.ID)
	}
	checkCalls(t, calls, 3)
}

func TestRateLimitRetriesExhausted(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, `{"detail":"slow down"}`)
	})

	_, err := client.Get(context.Background(), 7)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("error = %v, want ErrRateLimited", err)
	}
	// one initial request plus MaxRetries
	checkCalls(t, calls, 4)
}

func TestRetryDelay(t *testing.T) {
	c := &Client{retryBaseDelay: 100 * time.Millisecond}

	tests := []struct {
		name       string
		retryAfter string
		attempt    int
		want       time.Duration
	}{
		{"exponential first", "", 0, 100 * time.Millisecond},
		{"exponential third", "", 2, 400 * time.Millisecond},
		{"retry-after seconds", "2", 0, 2 * time.Second},
		{"retry-after capped", "3600", 0, maxRetryDelay},
		{"garbage falls back", "soon", 1, 200 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			if tt.retryAfter != "" {
				resp.Header.Set("Retry-After", tt.retryAfter)
			}
			if got := c.retryDelay(resp, tt.attempt); got != tt.want {
				t.Errorf("retryDelay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCircuitBreakerOpensOnServerErrors(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"detail":"boom"}`)
	})

	for i := 0; i < 3; i++ {
		if _, err := client.List(context.Background(), models.Filter{}); err == nil {
			t.Fatal("expected error")
		}
	}
	if client.BreakerState() != "open" {
		t.Fatalf("breaker state = %s, want open", client.BreakerState())
	}

	_, err := client.List(context.Background(), models.Filter{})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("error = %v, want ErrCircuitOpen", err)
	}
	checkCalls(t, calls, 3)
}

func TestCircuitBreakerIgnoresClientErrors(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"detail":"Task not found"}`)
	})

	for i := 0; i < 5; i++ {
		if _, err := client.Get(context.Background(), 1); !errors.Is(err, ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	}
	if client.BreakerState() != "closed" {
		t.Errorf("breaker state = %s, want closed", client.BreakerState())
	}
	checkCalls(t, calls, 5)
}

func TestStatusErrorPlainBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "bad input\n")
	})

	err := client.Delete(context.Background(), 3)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error %v is not *StatusError", err)
	}
	if se.Message != "bad input" {
		t.Errorf("Message = %q", se.Message)
	}
	if se.Error() != "DELETE /tasks/3: status 400: bad input" {
		t.Errorf("Error() = %q", se.Error())
	}
}

func TestFilterQuery(t *testing.T) {
	if q := filterQuery(models.Filter{}); q != "" {
		t.Errorf("empty filter query = %q", q)
	}
	q := filterQuery(models.Filter{Completed: models.BoolPtr(true), Category: "work"})
	if q != "category=work&completed=true" {
		t.Errorf("query = %q", q)
	}
}
