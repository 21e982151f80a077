// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package statusapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tasksync/internal/logging"
	"github.com/tomtom215/tasksync/internal/models"
	"github.com/tomtom215/tasksync/internal/validation"
)

// healthProbeTimeout bounds the fallback probe made by /healthz.
const healthProbeTimeout = 2 * time.Second

// Source is the read side of a running session.
type Source interface {
	Status() models.ConnectionStatus
	FallbackHealth(ctx context.Context) error
	FilteredTasks(f models.Filter) []models.Task
	ChatHistory() []models.ChatMessage
}

type handlers struct {
	src Source
}

func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondData(w http.ResponseWriter, data interface{}, count *int) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: models.Metadata{Timestamp: time.Now().UTC(), Count: count},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// health reports each sync path. The client is usable while either path
// works:
//
//	both paths up                      -> 200 "ok"
//	fallback down or realtime gave up  -> 200 "degraded"
//	realtime gave up and fallback down -> 503
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	st := h.src.Status()

	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()
	fallback := "ok"
	ferr := h.src.FallbackHealth(ctx)
	if ferr != nil {
		fallback = "unreachable"
	}

	if st.GaveUp && ferr != nil {
		respondError(w, http.StatusServiceUnavailable, "SYNC_UNAVAILABLE",
			"Realtime channel gave up reconnecting and the fallback server is unreachable",
			map[string]interface{}{"last_error": st.LastError, "fallback_error": ferr.Error()})
		return
	}

	status := "ok"
	if st.GaveUp || ferr != nil {
		status = "degraded"
	}
	respondData(w, map[string]string{
		"status":           status,
		"realtime":         st.State,
		"fallback":         fallback,
		"fallback_breaker": st.FallbackBreaker,
	}, nil)
}

func (h *handlers) status(w http.ResponseWriter, _ *http.Request) {
	respondData(w, h.src.Status(), nil)
}

func (h *handlers) tasks(w http.ResponseWriter, r *http.Request) {
	f, apiErr := parseFilter(r)
	if apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}
	tasks := h.src.FilteredTasks(f)
	n := len(tasks)
	respondData(w, tasks, &n)
}

func (h *handlers) chat(w http.ResponseWriter, _ *http.Request) {
	msgs := h.src.ChatHistory()
	n := len(msgs)
	respondData(w, msgs, &n)
}

// parseFilter reads the filter query parameters used by the task server's
// list endpoint.
func parseFilter(r *http.Request) (models.Filter, *models.APIError) {
	q := r.URL.Query()
	f := models.Filter{
		Priority: models.Priority(strings.ToLower(strings.TrimSpace(q.Get("priority")))),
		Category: strings.TrimSpace(q.Get("category")),
		Search:   q.Get("search"),
	}
	if v := q.Get("completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, &models.APIError{
				Code:    "VALIDATION_ERROR",
				Message: "completed must be true or false",
				Details: map[string]interface{}{"completed": v},
			}
		}
		f.Completed = models.BoolPtr(b)
	}
	if verr := validation.ValidateStruct(&f); verr != nil {
		return f, verr.ToAPIError()
	}
	return f, nil
}
