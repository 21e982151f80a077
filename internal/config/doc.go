// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

/*
Package config loads and validates Tasksync configuration.

# Configuration Sources

Sources are layered with Koanf v2; later layers override earlier ones:

 1. Built-in defaults (defaultConfig)
 2. YAML file: the --config flag, CONFIG_PATH, ./config.yaml or
    /etc/tasksync/config.yaml
 3. Environment variables

Both endpoints are always supplied from configuration. The realtime URL is
never derived from the API base URL.

# Environment Variables

Realtime channel:
  - TASKSYNC_WS_URL: WebSocket endpoint (default: ws://localhost:8000/api/v1/ws)
  - TASKSYNC_MAX_RECONNECT_ATTEMPTS: automatic reconnects before giving up (default: 5)
  - TASKSYNC_RECONNECT_BASE_DELAY / TASKSYNC_RECONNECT_MAX_DELAY: backoff (default: 1s / 10s)
  - TASKSYNC_HEARTBEAT_INTERVAL: ping period while open (default: 30s)

Fallback API:
  - TASKSYNC_API_URL: task server base URL (default: http://localhost:8000/api/v1)
  - TASKSYNC_API_TIMEOUT, TASKSYNC_API_RATE_LIMIT, TASKSYNC_API_MAX_RETRIES

Sync and cache:
  - TASKSYNC_RESYNC_INTERVAL: periodic full re-list, 0 disables (default: 5m)
  - TASKSYNC_RESYNC_ON_RECONNECT (default: true)
  - TASKSYNC_CACHE_ENABLED, TASKSYNC_CACHE_PATH

Status API:
  - TASKSYNC_STATUS_ENABLED, TASKSYNC_STATUS_ADDR (default: 127.0.0.1:8787)
  - CORS_ORIGINS: comma-separated
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Example YAML

	realtime:
	  url: wss://tasks.example.com/ws
	  heartbeat_interval: 30s
	api:
	  base_url: https://tasks.example.com
	sync:
	  resync_interval: 2m
	status:
	  cors_origins: ["http://localhost:3000"]
*/
package config
