// Recserve - Go Client for Recommendation Serving Layers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recserve

package serving

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tomtom215/recserve/internal/metrics"
)

// Refresh requests that the serving layer rebuild its internal state and
// models. It is only a suggestion and may have no effect; any rebuild
// proceeds asynchronously and takes effect at some later time. A nil error
// means the request was accepted, not that a rebuild completed.
func (c *Client) Refresh(ctx context.Context) error {
	return c.send(ctx, "refresh", http.MethodPost, "refresh", "")
}

// IsReady tells whether the serving layer is ready to answer requests,
// i.e. has loaded or computed a model. A non-2xx status yields (false, nil);
// the error is non-nil only for transport failures.
func (c *Client) IsReady(ctx context.Context) (bool, error) {
	start := time.Now()
	resp, err := c.doRequest(ctx, http.MethodHead, c.baseURL+"/ready", "")
	metrics.RequestDuration.WithLabelValues("isReady").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RequestErrors.WithLabelValues("isReady", "transport").Inc()
		return false, fmt.Errorf("isReady request failed: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode <= 299, nil
}

// AllUserIDs retrieves the IDs of all users in the model.
func (c *Client) AllUserIDs(ctx context.Context) ([]int64, error) {
	return c.getIDList(ctx, "allUserIDs", "user/allIDs")
}

// AllItemIDs retrieves the IDs of all items in the model.
func (c *Client) AllItemIDs(ctx context.Context) ([]int64, error) {
	return c.getIDList(ctx, "allItemIDs", "item/allIDs")
}
