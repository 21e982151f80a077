// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

/*
Package metrics defines the Prometheus collectors for Tasksync.

Collectors are registered on the default registry through promauto and are
exposed by the status API at /metrics:

	curl http://127.0.0.1:8787/metrics

# Available Metrics

Realtime channel:
  - tasksync_realtime_state{state}: 1 for the current connection state
  - tasksync_realtime_dials_total{result}
  - tasksync_realtime_reconnects_scheduled_total
  - tasksync_realtime_reconnect_delay_seconds (histogram)
  - tasksync_realtime_give_ups_total
  - tasksync_realtime_commands_total{type,result}
  - tasksync_realtime_last_pong_timestamp_seconds

Protocol and reconciliation:
  - tasksync_protocol_events_total{type}
  - tasksync_protocol_dropped_total{reason}
  - tasksync_reconcile_operations_total{op,result}
  - tasksync_collection_size

Fallback API:
  - tasksync_fallback_requests_total{method,endpoint,status_code}
  - tasksync_fallback_request_duration_seconds{method,endpoint}
  - tasksync_fallback_retries_total{endpoint}
  - tasksync_circuit_breaker_state{name} (0=closed, 1=half-open, 2=open)

Session:
  - tasksync_chat_messages_total{path}
  - tasksync_resyncs_total{trigger,result}
  - tasksync_snapshot_cache_operations_total{op,result}

# Example Alert

	- alert: TasksyncGaveUp
	  expr: increase(tasksync_realtime_give_ups_total[10m]) > 0
	  annotations:
	    summary: "Realtime channel abandoned after repeated failures"
*/
package metrics
