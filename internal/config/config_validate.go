// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/tasksync/internal/logging"
	"github.com/tomtom215/tasksync/internal/validation"
)

// Validate checks that required configuration is present and consistent.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateRealtime(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateStatus(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateRealtime() error {
	r := &c.Realtime
	if err := validateWebSocketURL(r.URL, "TASKSYNC_WS_URL"); err != nil {
		return err
	}
	if r.BaseDelay <= 0 {
		return fmt.Errorf("TASKSYNC_RECONNECT_BASE_DELAY must be positive, got %v", r.BaseDelay)
	}
	if r.MaxDelay < r.BaseDelay {
		return fmt.Errorf("TASKSYNC_RECONNECT_MAX_DELAY (%v) must be >= base delay (%v)", r.MaxDelay, r.BaseDelay)
	}
	if r.HeartbeatInterval < time.Second {
		return fmt.Errorf("TASKSYNC_HEARTBEAT_INTERVAL must be at least 1s, got %v", r.HeartbeatInterval)
	}
	if r.HandshakeTimeout <= 0 || r.WriteTimeout <= 0 {
		return fmt.Errorf("realtime handshake and write timeouts must be positive")
	}
	return nil
}

func (c *Config) validateAPI() error {
	a := &c.API
	if err := validateHTTPURL(a.BaseURL, "TASKSYNC_API_URL"); err != nil {
		return err
	}
	if a.Timeout <= 0 {
		return fmt.Errorf("TASKSYNC_API_TIMEOUT must be positive, got %v", a.Timeout)
	}
	if a.RateLimit > 0 && a.RateBurst < 1 {
		return fmt.Errorf("TASKSYNC_API_RATE_BURST must be at least 1 when rate limiting is enabled")
	}
	if a.MaxRetries > 0 && a.RetryBaseDelay <= 0 {
		return fmt.Errorf("TASKSYNC_API_RETRY_DELAY must be positive when retries are enabled")
	}
	if a.BreakerFailureThreshold == 0 {
		return fmt.Errorf("TASKSYNC_BREAKER_FAILURE_LIMIT must be at least 1")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Enabled && c.Cache.Path == "" {
		return fmt.Errorf("TASKSYNC_CACHE_PATH is required when the cache is enabled")
	}
	return nil
}

func (c *Config) validateStatus() error {
	s := &c.Status
	if !s.Enabled {
		return nil
	}
	if err := validateListenAddr(s.Addr, "TASKSYNC_STATUS_ADDR"); err != nil {
		return err
	}
	if !s.RateLimitDisabled && (s.RateLimitReqs <= 0 || s.RateLimitWindow <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive unless DISABLE_RATE_LIMIT=true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
