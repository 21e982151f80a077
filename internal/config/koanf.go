// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tasksync/config.yaml",
	"/etc/tasksync/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Default returns the built-in configuration without reading a file or the
// environment.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		Realtime: RealtimeConfig{
			URL:                  "ws://localhost:8000/api/v1/ws",
			MaxReconnectAttempts: 5,
			BaseDelay:            1 * time.Second,
			MaxDelay:             10 * time.Second,
			HeartbeatInterval:    30 * time.Second,
			HandshakeTimeout:     10 * time.Second,
			WriteTimeout:         10 * time.Second,
			ReadLimit:            4 << 20, // 4MB
		},
		API: APIConfig{
			BaseURL:                 "http://localhost:8000/api/v1",
			Timeout:                 15 * time.Second,
			RateLimit:               10,
			RateBurst:               20,
			MaxRetries:              3,
			RetryBaseDelay:          500 * time.Millisecond,
			BreakerMaxRequests:      3,
			BreakerInterval:         time.Minute,
			BreakerTimeout:          30 * time.Second,
			BreakerFailureThreshold: 5,
		},
		Sync: SyncConfig{
			ResyncInterval:    5 * time.Minute,
			ResyncOnReconnect: true,
		},
		Chat: ChatConfig{
			HistoryLimit: 200,
			ReplyTimeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: false,
			Path:    "tasksync-cache",
		},
		Status: StatusConfig{
			Enabled:         true,
			Addr:            "127.0.0.1:8787",
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from defaults, a YAML file and the
// environment, then validates it. An explicit configPath takes precedence
// over CONFIG_PATH and DefaultConfigPaths; it must exist.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath == "" {
		configPath = findConfigFile()
	} else if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"status.cors_origins",
}

// processSliceFields splits comma-separated env strings for known slice
// fields. YAML lists pass through untouched.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Unlisted variables are ignored so unrelated environment does not leak in.
var envMappings = map[string]string{
	// Realtime channel
	"tasksync_ws_url":                 "realtime.url",
	"tasksync_max_reconnect_attempts": "realtime.max_reconnect_attempts",
	"tasksync_reconnect_base_delay":   "realtime.base_delay",
	"tasksync_reconnect_max_delay":    "realtime.max_delay",
	"tasksync_heartbeat_interval":     "realtime.heartbeat_interval",
	"tasksync_handshake_timeout":      "realtime.handshake_timeout",
	"tasksync_write_timeout":          "realtime.write_timeout",
	"tasksync_read_limit":             "realtime.read_limit",

	// Fallback API
	"tasksync_api_url":               "api.base_url",
	"tasksync_api_timeout":           "api.timeout",
	"tasksync_api_rate_limit":        "api.rate_limit",
	"tasksync_api_rate_burst":        "api.rate_burst",
	"tasksync_api_max_retries":       "api.max_retries",
	"tasksync_api_retry_delay":       "api.retry_base_delay",
	"tasksync_breaker_max_requests":  "api.breaker_max_requests",
	"tasksync_breaker_interval":      "api.breaker_interval",
	"tasksync_breaker_timeout":       "api.breaker_timeout",
	"tasksync_breaker_failure_limit": "api.breaker_failure_threshold",

	// Sync
	"tasksync_resync_interval":     "sync.resync_interval",
	"tasksync_resync_on_reconnect": "sync.resync_on_reconnect",

	// Chat
	"tasksync_chat_history_limit": "chat.history_limit",
	"tasksync_chat_reply_timeout": "chat.reply_timeout",

	// Cache
	"tasksync_cache_enabled": "cache.enabled",
	"tasksync_cache_path":    "cache.path",

	// Status API
	"tasksync_status_enabled": "status.enabled",
	"tasksync_status_addr":    "status.addr",
	"cors_origins":            "status.cors_origins",
	"rate_limit_requests":     "status.rate_limit_reqs",
	"rate_limit_window":       "status.rate_limit_window",
	"disable_rate_limit":      "status.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path, or
// "" to skip it.
//
// Examples:
//   - TASKSYNC_WS_URL -> realtime.url
//   - TASKSYNC_API_URL -> api.base_url
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
