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

func TestMostSimilarItems(t *testing.T) {
	t.Parallel()

	recorder := newRecorder(http.StatusOK, `[[7, 0.81], [8, 0.6]]`)
	server := httptest.NewServer(recorder)
	defer server.Close()

	client := newTestClient(t, server)
	items, err := client.MostSimilarItems(context.Background(), []int64{1, 2}, &QueryOptions{HowMany: 3})
	if err != nil {
		t.Fatalf("MostSimilarItems() error = %v", err)
	}

	req := recorder.last(t)
	if req.Path != "/similarity/1/2" {
		t.Errorf("path = %q, want /similarity/1/2", req.Path)
	}
	if got := req.Query.Get("howMany"); got != "3" {
		t.Errorf("howMany = %q, want %q", got, "3")
	}
	if len(items) != 2 || items[0].ItemID != 7 {
		t.Errorf("items = %v, want [7 8]", items)
	}
}

func TestMostSimilarItemsSingleItem(t *testing.T) {
	t.Parallel()

	recorder := newRecorder(http.StatusOK, "[]")
	server := httptest.NewServer(recorder)
	defer server.Close()

	client := newTestClient(t, server)
	if _, err := client.MostSimilarItems(context.Background(), []int64{9}, nil); err != nil {
		t.Fatalf("MostSimilarItems() error = %v", err)
	}
	if got := recorder.last(t).Path; got != "/similarity/9" {
		t.Errorf("path = %q, want /similarity/9", got)
	}
}

func TestSimilarityToItem(t *testing.T) {
	t.Parallel()

	recorder := newRecorder(http.StatusOK, `[0.9, 0.1, 0.5]`)
	server := httptest.NewServer(recorder)
	defer server.Close()

	client := newTestClient(t, server)
	values, err := client.SimilarityToItem(context.Background(), 5, []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("SimilarityToItem() error = %v", err)
	}

	req := recorder.last(t)
	if req.Path != "/similarityToItem/5/1/2/3" {
		t.Errorf("path = %q, want /similarityToItem/5/1/2/3", req.Path)
	}
	if len(req.Query) != 0 {
		t.Errorf("query = %v, want none", req.Query)
	}

	// Values correspond positionally to the requested item order.
	want := []float64{0.9, 0.1, 0.5}
	if !reflect.DeepEqual(values, want) {
		t.Errorf("values = %v, want %v", values, want)
	}
}

func TestEstimate(t *testing.T) {
	t.Parallel()

	t.Run("decodes newline-separated floats in request order", func(t *testing.T) {
		t.Parallel()

		recorder := newRecorder(http.StatusOK, "0.5\n1.2\n-0.3")
		server := httptest.NewServer(recorder)
		defer server.Close()

		client := newTestClient(t, server)
		values, err := client.Estimate(context.Background(), 7, []int64{1, 2, 3})
		if err != nil {
			t.Fatalf("Estimate() error = %v", err)
		}

		if got := recorder.last(t).Path; got != "/estimate/7/1/2/3" {
			t.Errorf("path = %q, want /estimate/7/1/2/3", got)
		}
		want := []float64{0.5, 1.2, -0.3}
		if !reflect.DeepEqual(values, want) {
			t.Errorf("values = %v, want %v", values, want)
		}
	})

	t.Run("trailing newline is tolerated", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(newRecorder(http.StatusOK, "0.5\n1.2\n"))
		defer server.Close()

		client := newTestClient(t, server)
		values, err := client.Estimate(context.Background(), 7, []int64{1, 2})
		if err != nil {
			t.Fatalf("Estimate() error = %v", err)
		}
		if !reflect.DeepEqual(values, []float64{0.5, 1.2}) {
			t.Errorf("values = %v, want [0.5 1.2]", values)
		}
	})

	t.Run("empty body yields empty result", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(newRecorder(http.StatusOK, ""))
		defer server.Close()

		client := newTestClient(t, server)
		values, err := client.Estimate(context.Background(), 7, nil)
		if err != nil {
			t.Fatalf("Estimate() error = %v", err)
		}
		if len(values) != 0 {
			t.Errorf("values = %v, want empty", values)
		}
	})

	t.Run("non-numeric line is a decode error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(newRecorder(http.StatusOK, "0.5\nnot-a-number"))
		defer server.Close()

		client := newTestClient(t, server)
		if _, err := client.Estimate(context.Background(), 7, []int64{1, 2}); err == nil {
			t.Error("Estimate() expected decode error")
		}
	})
}

func TestEstimateForAnonymous(t *testing.T) {
	t.Parallel()

	recorder := newRecorder(http.StatusOK, "0.731")
	server := httptest.NewServer(recorder)
	defer server.Close()

	client := newTestClient(t, server)
	prefs := []ItemStrength{
		{ItemID: 10, Strength: Float(2)},
		{ItemID: 11},
	}
	value, err := client.EstimateForAnonymous(context.Background(), 5, prefs)
	if err != nil {
		t.Fatalf("EstimateForAnonymous() error = %v", err)
	}

	if got := recorder.last(t).Path; got != "/estimateForAnonymous/5/10=2/11" {
		t.Errorf("path = %q, want /estimateForAnonymous/5/10=2/11", got)
	}
	if value != 0.731 {
		t.Errorf("value = %v, want 0.731", value)
	}
}
