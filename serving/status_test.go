// Recserve - Go Client for Recommendation Serving Layers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recserve

package serving

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestIsReady(t *testing.T) {
	t.Parallel()

	t.Run("ready", func(t *testing.T) {
		t.Parallel()

		recorder := newRecorder(http.StatusOK, "")
		server := httptest.NewServer(recorder)
		defer server.Close()

		client := newTestClient(t, server)
		ready, err := client.IsReady(context.Background())
		if err != nil {
			t.Fatalf("IsReady() error = %v", err)
		}
		if !ready {
			t.Error("IsReady() = false, want true")
		}

		req := recorder.last(t)
		if req.Method != http.MethodHead {
			t.Errorf("method = %q, want HEAD", req.Method)
		}
		if req.Path != "/ready" {
			t.Errorf("path = %q, want /ready", req.Path)
		}
	})

	t.Run("not ready is not an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(newRecorder(http.StatusServiceUnavailable, ""))
		defer server.Close()

		client := newTestClient(t, server)
		ready, err := client.IsReady(context.Background())
		if err != nil {
			t.Fatalf("IsReady() error = %v", err)
		}
		if ready {
			t.Error("IsReady() = true, want false")
		}
	})

	t.Run("404 yields false", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(newRecorder(http.StatusNotFound, ""))
		defer server.Close()

		client := newTestClient(t, server)
		ready, err := client.IsReady(context.Background())
		if err != nil {
			t.Fatalf("IsReady() error = %v", err)
		}
		if ready {
			t.Error("IsReady() = true, want false")
		}
	})

	t.Run("transport failure is an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(newRecorder(http.StatusOK, ""))
		server.Close()

		client := newTestClient(t, server)
		ready, err := client.IsReady(context.Background())
		if err == nil {
			t.Error("IsReady() expected transport error")
		}
		if ready {
			t.Error("IsReady() = true, want false on transport failure")
		}
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	recorder := newRecorder(http.StatusOK, "")
	server := httptest.NewServer(recorder)
	defer server.Close()

	client := newTestClient(t, server)
	if err := client.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	req := recorder.last(t)
	if req.Method != http.MethodPost {
		t.Errorf("method = %q, want POST", req.Method)
	}
	if req.Path != "/refresh" {
		t.Errorf("path = %q, want /refresh", req.Path)
	}
	if req.Body != "" {
		t.Errorf("body = %q, want empty", req.Body)
	}
}

func TestAllIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		call     func(*Client) ([]int64, error)
		wantPath string
	}{
		{
			name:     "user IDs",
			call:     func(c *Client) ([]int64, error) { return c.AllUserIDs(context.Background()) },
			wantPath: "/user/allIDs",
		},
		{
			name:     "item IDs",
			call:     func(c *Client) ([]int64, error) { return c.AllItemIDs(context.Background()) },
			wantPath: "/item/allIDs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			recorder := newRecorder(http.StatusOK, `[1, 2, 9007199254740995]`)
			server := httptest.NewServer(recorder)
			defer server.Close()

			client := newTestClient(t, server)
			ids, err := tt.call(client)
			if err != nil {
				t.Fatalf("error = %v", err)
			}

			if got := recorder.last(t).Path; got != tt.wantPath {
				t.Errorf("path = %q, want %q", got, tt.wantPath)
			}
			want := []int64{1, 2, 9007199254740995}
			if !reflect.DeepEqual(ids, want) {
				t.Errorf("ids = %v, want %v", ids, want)
			}
		})
	}
}
