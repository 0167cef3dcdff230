// Recserve - Go Client for Recommendation Serving Layers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recserve

package serving

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
)

// newTestClient builds a Client pointed at an httptest server.
func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("failed to parse test server URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("failed to parse test server port: %v", err)
	}

	client := NewClient(Config{Host: u.Hostname(), Port: port})
	client.retryBaseDelay = 1 // effectively no backoff wait in tests
	return client
}

// recordedRequest captures what the fake serving layer received.
type recordedRequest struct {
	Method      string
	Path        string
	EscapedPath string
	Query       url.Values
	Body        string
	Accept      string
}

// requestRecorder is a fake serving layer that records every request and
// answers each with a fixed status and body.
type requestRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest

	status int
	body   string
}

func newRecorder(status int, body string) *requestRecorder {
	return &requestRecorder{status: status, body: body}
}

func (rr *requestRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)

	rr.mu.Lock()
	rr.requests = append(rr.requests, recordedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		EscapedPath: r.URL.EscapedPath(),
		Query:       r.URL.Query(),
		Body:        string(raw),
		Accept:      r.Header.Get("Accept"),
	})
	rr.mu.Unlock()

	w.WriteHeader(rr.status)
	_, _ = w.Write([]byte(rr.body))
}

// last returns the most recent request, failing the test if none was made.
func (rr *requestRecorder) last(t *testing.T) recordedRequest {
	t.Helper()
	rr.mu.Lock()
	defer rr.mu.Unlock()
	if len(rr.requests) == 0 {
		t.Fatal("no request was made")
	}
	return rr.requests[len(rr.requests)-1]
}

// count returns the number of requests received.
func (rr *requestRecorder) count() int {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return len(rr.requests)
}
