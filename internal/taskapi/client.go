// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package taskapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/tasksync/internal/config"
	"github.com/tomtom215/tasksync/internal/logging"
	"github.com/tomtom215/tasksync/internal/metrics"
)

// maxRetryDelay caps both computed backoff and Retry-After.
const maxRetryDelay = 30 * time.Second

// Client talks to the task server's REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter

	maxRetries     int
	retryBaseDelay time.Duration

	cb *gobreaker.CircuitBreaker[any]
}

// NewClient creates a client from the api config section.
func NewClient(cfg config.APIConfig) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		cb:             newBreaker(cfg),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes one API call. endpoint is the low-cardinality route used
// for metrics, path the concrete request path.
type request struct {
	method   string
	endpoint string
	path     string
	body     any
}

// roundTrip sends req, retrying on HTTP 429, and decodes a 2xx body into out
// when out is non-nil.
func (c *Client) roundTrip(ctx context.Context, req request, out any) error {
	var payload []byte
	if req.body != nil {
		var err error
		if payload, err = json.Marshal(req.body); err != nil {
			return fmt.Errorf("encode %s %s body: %w", req.method, req.path, err)
		}
	}

	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}
		}

		resp, err := c.send(ctx, req, payload)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.maxRetries {
			delay := c.retryDelay(resp, attempt)
			drainAndClose(resp.Body)

			metrics.FallbackRetries.WithLabelValues(req.endpoint).Inc()
			logging.Ctx(ctx).Warn().
				Str("path", req.path).
				Dur("retry_delay", delay).
				Int("attempt", attempt+1).
				Int("max_retries", c.maxRetries).
				Msg("Task API rate limited (HTTP 429), retrying")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}

		return c.handleResponse(resp, req, out)
	}
}

func (c *Client) send(ctx context.Context, req request, payload []byte) (*http.Response, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		httpReq.Header.Set("X-Correlation-ID", id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.RecordFallbackRequest(req.method, req.endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	metrics.RecordFallbackRequest(req.method, req.endpoint, resp.StatusCode, time.Since(start))
	return resp, nil
}

func (c *Client) handleResponse(resp *http.Response, req request, out any) error {
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp, req.method, req.path)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", ErrInvalidResponse, req.method, req.path, err)
	}
	return nil
}

// retryDelay is retryBaseDelay * 2^attempt unless the server sent
// Retry-After (seconds or HTTP date).
func (c *Client) retryDelay(resp *http.Response, attempt int) time.Duration {
	delay := c.retryBaseDelay << attempt
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(strings.TrimSpace(ra)); err == nil && secs >= 0 {
			delay = time.Duration(secs) * time.Second
		} else if at, err := http.ParseTime(ra); err == nil {
			delay = time.Until(at)
		}
	}
	if delay < 0 {
		delay = 0
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	if err := body.Close(); err != nil {
		logging.Debug().Err(err).Msg("Failed to close response body")
	}
}
