// Recserve - Go Client for Recommendation Serving Layers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recserve

/*
client.go - Core Serving Layer API Client

This file provides the core Client struct and HTTP communication layer for
interacting with a recommendation serving layer's REST API.

Client Features:
  - HTTP client with configurable timeout
  - Automatic HTTP 429 rate limit handling with exponential backoff
  - Optional client-side request throttling (x/time/rate)
  - Typed error classification for non-2xx responses
  - JSON and newline-delimited-float response decoding
  - Context support for cancellation and timeouts

Related Files:
  - mutators.go: preference and tag mutation operations
  - queries.go: recommendation query operations
  - similarity.go: similarity and estimation operations
  - status.go: readiness, refresh and ID listing operations
  - breaker.go: circuit breaker wrapper
*/

//nolint:staticcheck // File documentation, not package doc
package serving

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/tomtom215/recserve/internal/logging"
	"github.com/tomtom215/recserve/internal/metrics"
)

// maxErrorBodySize limits the amount of response body read for error
// reporting, preventing unbounded allocation on large error pages.
const maxErrorBodySize = 64 * 1024 // 64KB

// ClientInterface defines the full set of serving layer API operations.
//
// It is implemented by Client for production use and by BreakerClient for
// circuit-breaker-protected use; tests may supply their own implementations.
//
// All methods follow a consistent pattern:
//   - Accept context.Context as first parameter for cancellation/timeout support
//   - Return an error on HTTP failures, non-2xx statuses, or decode failures
//   - Never retain state between calls
//
// Thread Safety: All methods are safe for concurrent use.
type ClientInterface interface {
	AddPreference(ctx context.Context, userID, itemID int64, strength *float64) error
	RemovePreference(ctx context.Context, userID, itemID int64) error
	SetUserTag(ctx context.Context, userID int64, tag string, strength float64) error
	SetItemTag(ctx context.Context, itemID int64, tag string, strength float64) error
	Ingest(ctx context.Context, preferences []Preference) error

	Recommend(ctx context.Context, userID int64, opts *QueryOptions) ([]ScoredItem, error)
	RecommendToMany(ctx context.Context, userIDs []int64, opts *QueryOptions) ([]ScoredItem, error)
	RecommendToAnonymous(ctx context.Context, preferences []ItemStrength, opts *QueryOptions) ([]ScoredItem, error)
	MostPopularItems(ctx context.Context, opts *QueryOptions) ([]ScoredItem, error)
	Because(ctx context.Context, userID, itemID int64, howMany int) ([]ScoredItem, error)

	MostSimilarItems(ctx context.Context, itemIDs []int64, opts *QueryOptions) ([]ScoredItem, error)
	SimilarityToItem(ctx context.Context, toItemID int64, itemIDs []int64) ([]float64, error)
	Estimate(ctx context.Context, userID int64, itemIDs []int64) ([]float64, error)
	EstimateForAnonymous(ctx context.Context, toItemID int64, preferences []ItemStrength) (float64, error)

	Refresh(ctx context.Context) error
	IsReady(ctx context.Context) (bool, error)
	AllUserIDs(ctx context.Context) ([]int64, error)
	AllItemIDs(ctx context.Context) ([]int64, error)
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// Client handles communication with a recommendation serving layer.
//
// The client owns no state beyond its immutable configuration: the serving
// layer holds all model state, and every method is a single synchronous
// request/response exchange.
//
// Features:
//   - 30-second request timeout by default
//   - Automatic retry on HTTP 429 with exponential backoff (1s, 2s, 4s, 8s, 16s)
//   - Optional client-side throttling via x/time/rate
//
// Thread Safety: Safe for concurrent use. Each call creates its own HTTP request.
//
// Example:
//
//	client := serving.NewClient(serving.Config{Host: "localhost", Port: 8080})
//	ready, err := client.IsReady(ctx)
type Client struct {
	baseURL        string
	httpClient     *http.Client
	limiter        *rate.Limiter // nil = no client-side throttling
	maxRetries     int           // Maximum retries for rate limiting
	retryBaseDelay time.Duration // Base delay for exponential backoff
}

// NewClient creates a serving layer client from the given configuration.
// Zero-valued optional fields fall back to defaults: 30s timeout, 5 rate
// limit retries, no client-side throttling.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 5
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		baseURL:        fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port),
		httpClient:     &http.Client{Timeout: timeout},
		limiter:        limiter,
		maxRetries:     maxRetries,
		retryBaseDelay: 1 * time.Second,
	}
}

// readBodyForError reads the response body for error reporting (max 64KB).
// Returns the body content or a placeholder message if reading fails.
func readBodyForError(r io.Reader) []byte {
	limitedReader := io.LimitReader(r, maxErrorBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// buildURL forms the absolute request URL from the configured host/port,
// the relative path and optional query parameters.
func (c *Client) buildURL(path string, params url.Values) string {
	reqURL := c.baseURL + "/" + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	return reqURL
}

// doRequest performs an HTTP request with automatic rate limit handling.
// HTTP 429 responses are retried with exponential backoff (1s, 2s, 4s, 8s,
// 16s), honoring a Retry-After header when present. Other statuses are
// returned as-is; status validation happens in the caller.
//
// The request body carries no explicit Content-Type: the serving layer
// accepts plain decimal strings and CSV rows without one.
func (c *Client) doRequest(ctx context.Context, method, reqURL, body string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// Build a fresh request each attempt so the body reader is rewound
		var reader io.Reader = http.NoBody
		if body != "" {
			reader = strings.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Rate limited (HTTP 429) - close body and retry with backoff
		_ = resp.Body.Close()
		metrics.RateLimitRetries.Inc()

		if attempt == c.maxRetries {
			lastErr = fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
			break
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))

		// Check for Retry-After header (RFC 6585)
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				delay = seconds
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// call executes one serving layer API request and validates its status.
// It wraps doRequest with per-operation metrics and debug logging; on a
// non-2xx status the response body is consumed into a *StatusError.
func (c *Client) call(ctx context.Context, op, method, path string, params url.Values, body string) (*http.Response, error) {
	reqURL := c.buildURL(path, params)
	requestID := uuid.NewString()
	start := time.Now()

	logging.Debug().
		Str("request_id", requestID).
		Str("operation", op).
		Str("method", method).
		Str("url", reqURL).
		Msg("Serving layer request")

	resp, err := c.doRequest(ctx, method, reqURL, body)
	metrics.RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RequestErrors.WithLabelValues(op, "transport").Inc()
		return nil, fmt.Errorf("%s request failed: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody := readBodyForError(resp.Body)
		_ = resp.Body.Close()
		statusErr := &StatusError{Code: resp.StatusCode, Body: string(errBody)}
		metrics.RequestErrors.WithLabelValues(op, errorKind(statusErr)).Inc()
		logging.Debug().
			Str("request_id", requestID).
			Str("operation", op).
			Int("status", resp.StatusCode).
			Msg("Serving layer request rejected")
		return nil, fmt.Errorf("%s: %w", op, statusErr)
	}

	return resp, nil
}

// errorKind classifies a StatusError for the error metrics label.
func errorKind(e *StatusError) string {
	switch {
	case e.Code == http.StatusNotFound:
		return "not_found"
	case e.Code == http.StatusBadGateway,
		e.Code == http.StatusServiceUnavailable,
		e.Code == http.StatusGatewayTimeout:
		return "unavailable"
	default:
		return "status"
	}
}

// send executes a fire-and-forget mutation. The response body is discarded,
// but unlike the historical contract the outcome is returned so callers can
// distinguish an accepted request from a failed one.
func (c *Client) send(ctx context.Context, op, method, path, body string) error {
	resp, err := c.call(ctx, op, method, path, nil, body)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// getJSON executes a GET request and decodes the JSON response into result.
func (c *Client) getJSON(ctx context.Context, op, path string, params url.Values, result interface{}) error {
	resp, err := c.call(ctx, op, http.MethodGet, path, params, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(result); err != nil {
		metrics.RequestErrors.WithLabelValues(op, "decode").Inc()
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

// getFloatLines executes a GET request and decodes the newline-delimited
// float response used by the estimate endpoint. Values are returned in
// response order, which matches the request's item order positionally.
func (c *Client) getFloatLines(ctx context.Context, op, path string, params url.Values) ([]float64, error) {
	resp, err := c.call(ctx, op, http.MethodGet, path, params, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RequestErrors.WithLabelValues(op, "decode").Inc()
		return nil, fmt.Errorf("failed to read %s response: %w", op, err)
	}

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return []float64{}, nil
	}

	lines := strings.Split(trimmed, "\n")
	values := make([]float64, 0, len(lines))
	for _, line := range lines {
		v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if err != nil {
			metrics.RequestErrors.WithLabelValues(op, "decode").Inc()
			return nil, fmt.Errorf("failed to parse %s response line %q: %w", op, line, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// getScoredItems executes a GET request against an endpoint returning a
// JSON array of [itemID, score] pairs and decodes it into ScoredItems.
func (c *Client) getScoredItems(ctx context.Context, op, path string, params url.Values) ([]ScoredItem, error) {
	var raw [][]json.Number
	if err := c.getJSON(ctx, op, path, params, &raw); err != nil {
		return nil, err
	}
	return decodeScoredItems(op, raw)
}

// decodeScoredItems converts raw [id, score] pairs into ScoredItems.
// Identifiers are parsed through json.Number so 64-bit IDs survive intact
// instead of being truncated through float64.
func decodeScoredItems(op string, raw [][]json.Number) ([]ScoredItem, error) {
	items := make([]ScoredItem, 0, len(raw))
	for _, pair := range raw {
		if len(pair) < 2 {
			return nil, fmt.Errorf("%s: malformed result pair %v", op, pair)
		}
		id, err := pair[0].Int64()
		if err != nil {
			return nil, fmt.Errorf("%s: invalid item ID %q: %w", op, pair[0], err)
		}
		score, err := pair[1].Float64()
		if err != nil {
			return nil, fmt.Errorf("%s: invalid score %q: %w", op, pair[1], err)
		}
		items = append(items, ScoredItem{ItemID: id, Score: score})
	}
	return items, nil
}

// getIDList executes a GET request against an endpoint returning a JSON
// array of numeric identifiers.
func (c *Client) getIDList(ctx context.Context, op, path string) ([]int64, error) {
	var raw []json.Number
	if err := c.getJSON(ctx, op, path, nil, &raw); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(raw))
	for _, n := range raw {
		id, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("%s: invalid ID %q: %w", op, n, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
