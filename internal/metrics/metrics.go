// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Connection states exported as the "state" label of RealtimeState.
var connectionStates = []string{"idle", "connecting", "open", "closing", "closed"}

var (
	// Realtime Channel Metrics
	RealtimeState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tasksync_realtime_state",
			Help: "Current connection state (1 for the active state, 0 otherwise)",
		},
		[]string{"state"},
	)

	RealtimeDials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksync_realtime_dials_total",
			Help: "Total number of realtime dial attempts",
		},
		[]string{"result"}, // "success", "failure"
	)

	RealtimeReconnectsScheduled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tasksync_realtime_reconnects_scheduled_total",
			Help: "Total number of reconnects scheduled after a transport loss",
		},
	)

	RealtimeReconnectDelay = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tasksync_realtime_reconnect_delay_seconds",
			Help:    "Backoff delay chosen for scheduled reconnects",
			Buckets: []float64{0.5, 1, 2, 4, 8, 10, 30, 60},
		},
	)

	RealtimeGiveUps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tasksync_realtime_give_ups_total",
			Help: "Total number of times reconnecting was abandoned after the attempt limit",
		},
	)

	RealtimeFramesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tasksync_realtime_frames_received_total",
			Help: "Total number of inbound frames read from the realtime channel",
		},
	)

	RealtimeCommands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksync_realtime_commands_total",
			Help: "Outbound commands by type and result",
		},
		[]string{"type", "result"}, // result: "sent", "unavailable", "error"
	)

	RealtimeLastPong = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tasksync_realtime_last_pong_timestamp_seconds",
			Help: "Unix timestamp of the last pong received",
		},
	)

	// Protocol Metrics
	ProtocolEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksync_protocol_events_total",
			Help: "Inbound events dispatched, by event type",
		},
		[]string{"type"},
	)

	ProtocolDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksync_protocol_dropped_total",
			Help: "Inbound frames dropped before dispatch",
		},
		[]string{"reason"}, // "parse_error", "invalid_payload"
	)

	// Reconciliation Metrics
	ReconcileOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksync_reconcile_operations_total",
			Help: "Reconciliation operations by kind and outcome",
		},
		[]string{"op", "result"}, // result: "applied", "ignored"
	)

	CollectionSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tasksync_collection_size",
			Help: "Number of tasks in the local collection",
		},
	)

	// Fallback API Metrics
	FallbackRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksync_fallback_requests_total",
			Help: "Fallback API requests by method, endpoint and status",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	FallbackRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tasksync_fallback_request_duration_seconds",
			Help:    "Fallback API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	FallbackRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksync_fallback_retries_total",
			Help: "Fallback API retries after HTTP 429",
		},
		[]string{"endpoint"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tasksync_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksync_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksync_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Session Metrics
	ChatMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksync_chat_messages_total",
			Help: "Chat messages sent, by path taken",
		},
		[]string{"path"}, // "realtime", "fallback", "failed"
	)

	Resyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksync_resyncs_total",
			Help: "Full list resynchronizations by trigger and result",
		},
		[]string{"trigger", "result"},
	)

	SnapshotCacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksync_snapshot_cache_operations_total",
			Help: "Snapshot cache operations by kind and result",
		},
		[]string{"op", "result"},
	)

	// Status API Metrics
	StatusAPIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksync_status_api_requests_total",
			Help: "Status API requests by method, route and status",
		},
		[]string{"method", "route", "status_code"},
	)

	StatusAPIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tasksync_status_api_request_duration_seconds",
			Help:    "Status API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// SetConnectionState marks state as the single active connection state.
func SetConnectionState(state string) {
	for _, s := range connectionStates {
		v := 0.0
		if s == state {
			v = 1
		}
		RealtimeState.WithLabelValues(s).Set(v)
	}
}

// RecordDial records the outcome of one dial attempt.
func RecordDial(err error) {
	if err != nil {
		RealtimeDials.WithLabelValues("failure").Inc()
		return
	}
	RealtimeDials.WithLabelValues("success").Inc()
}

// RecordReconnectScheduled records a scheduled reconnect and its delay.
func RecordReconnectScheduled(delay time.Duration) {
	RealtimeReconnectsScheduled.Inc()
	RealtimeReconnectDelay.Observe(delay.Seconds())
}

// RecordCommand records an outbound command write.
func RecordCommand(cmdType, result string) {
	RealtimeCommands.WithLabelValues(cmdType, result).Inc()
}

// RecordPong stores the time of the latest pong.
func RecordPong(at time.Time) {
	RealtimeLastPong.Set(float64(at.Unix()))
}

// RecordReconcile records one reconciliation operation.
func RecordReconcile(op string, applied bool, size int) {
	result := "ignored"
	if applied {
		result = "applied"
	}
	ReconcileOperations.WithLabelValues(op, result).Inc()
	CollectionSize.Set(float64(size))
}

// RecordFallbackRequest records a fallback API round trip. statusCode is 0
// when no response was received.
func RecordFallbackRequest(method, endpoint string, statusCode int, duration time.Duration) {
	code := "error"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	FallbackRequests.WithLabelValues(method, endpoint, code).Inc()
	FallbackRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordResync records a full resynchronization.
func RecordResync(trigger string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	Resyncs.WithLabelValues(trigger, result).Inc()
}

// RecordCacheOperation records a snapshot cache load or save.
func RecordCacheOperation(op string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	SnapshotCacheOperations.WithLabelValues(op, result).Inc()
}

// RecordStatusAPIRequest records a status API request.
func RecordStatusAPIRequest(method, route string, statusCode int, duration time.Duration) {
	StatusAPIRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	StatusAPIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
