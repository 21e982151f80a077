// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/tasksync/internal/config"
	"github.com/tomtom215/tasksync/internal/models"
	"github.com/tomtom215/tasksync/internal/realtime"
)

// fakeTaskServer is an in-memory task server with REST and WebSocket
// endpoints under /api/v1.
type fakeTaskServer struct {
	t      *testing.T
	server *httptest.Server

	mu     sync.Mutex
	tasks  []models.Task
	nextID int64
	conns  []*fakeConn

	listCalls atomic.Int32
	wsAccepts atomic.Int32

	// failList makes GET /tasks return 500.
	failList atomic.Bool
	// failChat makes POST /chat return 500.
	failChat atomic.Bool
	// dropFirstWS closes the first WebSocket right after the upgrade.
	dropFirstWS atomic.Bool
}

type fakeConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *fakeConn) write(v any) {
	data, _ := json.Marshal(v)
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteMessage(websocket.TextMessage, data)
}

func newFakeTaskServer(t *testing.T, titles ...string) *fakeTaskServer {
	t.Helper()
	f := &fakeTaskServer{t: t, nextID: 1}
	for _, title := range titles {
		f.addLocked(title)
	}

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/tasks", f.handleList)
		r.Post("/tasks", f.handleCreate)
		r.Get("/tasks/{id}", f.handleGet)
		r.Put("/tasks/{id}", f.handleUpdate)
		r.Delete("/tasks/{id}", f.handleDelete)
		r.Post("/chat", f.handleChat)
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
		})
		r.Get("/ws", f.handleWS)
	})

	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeTaskServer) apiURL() string { return f.server.URL + "/api/v1" }

func (f *fakeTaskServer) wsURL() string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/v1/ws"
}

// addLocked prepends a task; callers hold mu (or own f exclusively).
func (f *fakeTaskServer) addLocked(title string) models.Task {
	task := models.Task{
		ID:        f.nextID,
		Title:     title,
		Priority:  models.PriorityMedium,
		CreatedAt: models.NewTimestamp(time.Now().UTC()),
	}
	f.nextID++
	f.tasks = append([]models.Task{task}, f.tasks...)
	return task
}

func (f *fakeTaskServer) broadcast(v any) {
	f.mu.Lock()
	conns := append([]*fakeConn(nil), f.conns...)
	f.mu.Unlock()
	for _, c := range conns {
		c.write(v)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeTaskServer) handleList(w http.ResponseWriter, _ *http.Request) {
	f.listCalls.Add(1)
	if f.failList.Load() {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "down"})
		return
	}
	f.mu.Lock()
	out := append([]models.Task{}, f.tasks...)
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (f *fakeTaskServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in models.TaskCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	f.mu.Lock()
	task := f.addLocked(in.Title)
	f.mu.Unlock()
	f.broadcast(map[string]any{"type": "task_created", "task": task})
	writeJSON(w, http.StatusOK, task)
}

func (f *fakeTaskServer) find(r *http.Request) (int, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, false
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

func (f *fakeTaskServer) handleGet(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.find(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Task not found"})
		return
	}
	writeJSON(w, http.StatusOK, f.tasks[i])
}

func (f *fakeTaskServer) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var in models.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	f.mu.Lock()
	i, ok := f.find(r)
	if !ok {
		f.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Task not found"})
		return
	}
	if in.Completed != nil {
		f.tasks[i].Completed = *in.Completed
	}
	if in.Title != nil {
		f.tasks[i].Title = *in.Title
	}
	task := f.tasks[i]
	f.mu.Unlock()

	f.broadcast(map[string]any{"type": "task_updated", "task": task})
	writeJSON(w, http.StatusOK, task)
}

func (f *fakeTaskServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	i, ok := f.find(r)
	if !ok {
		f.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Task not found"})
		return
	}
	id := f.tasks[i].ID
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	f.mu.Unlock()

	f.broadcast(map[string]any{"type": "task_deleted", "task_id": id})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

// interpret handles "add <title>" and returns the reply text.
func (f *fakeTaskServer) interpret(message string) (string, bool) {
	title, ok := strings.CutPrefix(message, "add ")
	if !ok {
		return "I can only add tasks", false
	}
	f.mu.Lock()
	f.addLocked(title)
	f.mu.Unlock()
	return "Added " + title, true
}

func (f *fakeTaskServer) handleChat(w http.ResponseWriter, r *http.Request) {
	if f.failChat.Load() {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "agent down"})
		return
	}
	var in models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	reply, updated := f.interpret(in.Message)
	writeJSON(w, http.StatusOK, map[string]any{"response": reply, "tasks_updated": updated})
}

func (f *fakeTaskServer) handleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	n := f.wsAccepts.Add(1)
	if n == 1 && f.dropFirstWS.Load() {
		_ = conn.Close()
		return
	}

	fc := &fakeConn{conn: conn}
	f.mu.Lock()
	f.conns = append(f.conns, fc)
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		for i, c := range f.conns {
			if c == fc {
				f.conns = append(f.conns[:i], f.conns[i+1:]...)
				break
			}
		}
		f.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &cmd) != nil {
			continue
		}
		switch cmd.Type {
		case "ping":
			fc.write(map[string]any{"type": "pong", "timestamp": time.Now().UTC().Format(time.RFC3339Nano)})
		case "chat":
			reply, updated := f.interpret(cmd.Message)
			if updated {
				f.mu.Lock()
				all := append([]models.Task{}, f.tasks...)
				f.mu.Unlock()
				f.broadcast(map[string]any{"type": "tasks_updated", "data": all})
			}
			fc.write(map[string]any{"type": "chat_response", "response": reply, "tasks_updated": updated})
		}
	}
}

// refusingDialer never connects.
type refusingDialer struct{ dials atomic.Int32 }

func (d *refusingDialer) Dial(context.Context, string) (realtime.Conn, error) {
	d.dials.Add(1)
	return nil, errors.New("connection refused")
}

// gatedDialer holds every dial until release is closed.
type gatedDialer struct {
	release chan struct{}
}

func (d *gatedDialer) Dial(ctx context.Context, url string) (realtime.Conn, error) {
	select {
	case <-d.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return realtime.WebSocketDialer{HandshakeTimeout: time.Second}.Dial(ctx, url)
}

func testConfig(f *fakeTaskServer) *config.Config {
	cfg := config.Default()
	cfg.Realtime.URL = f.wsURL()
	cfg.Realtime.BaseDelay = 5 * time.Millisecond
	cfg.Realtime.MaxDelay = 20 * time.Millisecond
	cfg.API.BaseURL = f.apiURL()
	cfg.API.RateLimit = 0
	cfg.API.RetryBaseDelay = time.Millisecond
	cfg.Sync.ResyncInterval = 0
	cfg.Chat.ReplyTimeout = 5 * time.Second
	return cfg
}

// runServices runs the session's background services until the test ends.
func runServices(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = s.Realtime().Serve(ctx) }()
	go func() { defer wg.Done(); _ = s.SyncLoop().Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func hasTitle(tasks []models.Task, title string) bool {
	for _, task := range tasks {
		if task.Title == title {
			return true
		}
	}
	return false
}
