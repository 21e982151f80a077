// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package config

import (
	"time"
)

// Config holds all client configuration.
//
// Loading order (Koanf v2), later layers win:
//  1. Defaults from defaultConfig()
//  2. Optional YAML file (see DefaultConfigPaths and CONFIG_PATH)
//  3. Environment variables (explicit mapping in envTransformFunc)
//
// Example:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	client := taskapi.NewClient(cfg.API)
type Config struct {
	Realtime RealtimeConfig `koanf:"realtime"`
	API      APIConfig      `koanf:"api"`
	Sync     SyncConfig     `koanf:"sync"`
	Chat     ChatConfig     `koanf:"chat"`
	Cache    CacheConfig    `koanf:"cache"`
	Status   StatusConfig   `koanf:"status"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// RealtimeConfig configures the persistent WebSocket channel.
type RealtimeConfig struct {
	// URL is the full realtime endpoint (ws:// or wss://). It is supplied
	// externally and never derived from the API base URL.
	URL string `koanf:"url" validate:"required,wsurl"`

	// MaxReconnectAttempts bounds automatic reconnects after a loss.
	// Default: 5
	MaxReconnectAttempts int `koanf:"max_reconnect_attempts" validate:"gte=0"`

	// BaseDelay and MaxDelay shape the backoff: min(base * 2^n, max).
	// Defaults: 1s and 10s
	BaseDelay time.Duration `koanf:"base_delay"`
	MaxDelay  time.Duration `koanf:"max_delay"`

	// HeartbeatInterval is the ping period while open. Default: 30s
	HeartbeatInterval time.Duration `koanf:"heartbeat_interval"`

	HandshakeTimeout time.Duration `koanf:"handshake_timeout"`
	WriteTimeout     time.Duration `koanf:"write_timeout"`

	// ReadLimit caps inbound frame size in bytes. Snapshots carry the whole
	// list so this is generous.
	ReadLimit int64 `koanf:"read_limit" validate:"gt=0"`
}

// APIConfig configures the request/response fallback client.
type APIConfig struct {
	// BaseURL is the task server root including any path prefix, e.g.
	// http://localhost:8000/api/v1.
	BaseURL string `koanf:"base_url" validate:"required"`

	Timeout time.Duration `koanf:"timeout"`

	// RateLimit is the client-side request budget per second (0 disables).
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`
	RateBurst int     `koanf:"rate_burst" validate:"gte=0"`

	// MaxRetries applies to HTTP 429 responses only.
	MaxRetries     int           `koanf:"max_retries" validate:"gte=0"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`

	// Circuit breaker settings (sony/gobreaker).
	BreakerMaxRequests      uint32        `koanf:"breaker_max_requests"`
	BreakerInterval         time.Duration `koanf:"breaker_interval"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
}

// SyncConfig controls snapshot resynchronization.
type SyncConfig struct {
	// ResyncInterval triggers a full list replacement periodically.
	// 0 disables periodic resync.
	ResyncInterval time.Duration `koanf:"resync_interval"`

	// ResyncOnReconnect re-lists after every successful reconnect so events
	// missed while disconnected are recovered.
	ResyncOnReconnect bool `koanf:"resync_on_reconnect"`
}

// ChatConfig configures the chat transcript.
type ChatConfig struct {
	// HistoryLimit bounds the transcript; oldest entries are dropped.
	HistoryLimit int `koanf:"history_limit" validate:"gt=0"`

	// ReplyTimeout bounds how long the CLI waits for a realtime reply.
	ReplyTimeout time.Duration `koanf:"reply_timeout"`
}

// CacheConfig configures the BadgerDB warm-start snapshot.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// StatusConfig configures the local read-only status API.
type StatusConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is json or console. Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}
