// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"http realtime url", func(c *Config) { c.Realtime.URL = "http://localhost:8000/ws" }, "URL"},
		{"missing realtime url", func(c *Config) { c.Realtime.URL = "" }, "url is required"},
		{"ws host missing", func(c *Config) { c.Realtime.URL = "ws:///ws" }, "host is required"},
		{"negative attempts", func(c *Config) { c.Realtime.MaxReconnectAttempts = -1 }, "max_reconnect_attempts"},
		{"zero attempts allowed", func(c *Config) { c.Realtime.MaxReconnectAttempts = 0 }, ""},
		{"zero base delay", func(c *Config) { c.Realtime.BaseDelay = 0 }, "BASE_DELAY"},
		{"max below base", func(c *Config) { c.Realtime.MaxDelay = 500 * time.Millisecond }, "MAX_DELAY"},
		{"heartbeat too fast", func(c *Config) { c.Realtime.HeartbeatInterval = 100 * time.Millisecond }, "HEARTBEAT"},
		{"api ws scheme", func(c *Config) { c.API.BaseURL = "ws://localhost:8000" }, "TASKSYNC_API_URL"},
		{"api path prefix ok", func(c *Config) { c.API.BaseURL = "http://localhost:8000/api" }, ""},
		{"api query", func(c *Config) { c.API.BaseURL = "http://localhost:8000?x=1" }, "query"},
		{"api burst zero", func(c *Config) { c.API.RateBurst = 0 }, "RATE_BURST"},
		{"rate limit disabled", func(c *Config) { c.API.RateLimit = 0; c.API.RateBurst = 0 }, ""},
		{"breaker threshold zero", func(c *Config) { c.API.BreakerFailureThreshold = 0 }, "BREAKER"},
		{"cache without path", func(c *Config) { c.Cache.Enabled = true; c.Cache.Path = "" }, "CACHE_PATH"},
		{"status bad addr", func(c *Config) { c.Status.Addr = "8787" }, "STATUS_ADDR"},
		{"status disabled ignores addr", func(c *Config) { c.Status.Enabled = false; c.Status.Addr = "" }, ""},
		{"history zero", func(c *Config) { c.Chat.HistoryLimit = 0 }, "history_limit"},
		{"bad log level", func(c *Config) { c.Logging.Level = "chatty" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
