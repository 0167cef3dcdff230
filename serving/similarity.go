// Recserve - Go Client for Recommendation Serving Layers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recserve

package serving

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

// MostSimilarItems computes the items most similar to an item or group of
// items. The result is ordered by similarity; the similarity value is
// opaque, larger means more similar.
func (c *Client) MostSimilarItems(ctx context.Context, itemIDs []int64, opts *QueryOptions) ([]ScoredItem, error) {
	path := "similarity/" + idSegments(itemIDs)
	return c.getScoredItems(ctx, "mostSimilarItems", path, opts.values())
}

// SimilarityToItem computes the similarity of a set of items to one item.
// The result holds one similarity value per requested item, in request
// order. The value is opaque; larger means more similar.
func (c *Client) SimilarityToItem(ctx context.Context, toItemID int64, itemIDs []int64) ([]float64, error) {
	path := "similarityToItem/" + formatID(toItemID) + "/" + idSegments(itemIDs)
	var values []float64
	if err := c.getJSON(ctx, "similarityToItem", path, nil, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// Estimate estimates the strength of the association between a user and one
// or more items. The returned values are opaque (higher is stronger) and
// comparable to Recommend scores.
//
// Unlike the other query endpoints this one responds with one float per
// requested item, newline-separated rather than JSON; values are returned
// in request order.
func (c *Client) Estimate(ctx context.Context, userID int64, itemIDs []int64) ([]float64, error) {
	path := "estimate/" + formatID(userID) + "/" + idSegments(itemIDs)
	return c.getFloatLines(ctx, "estimate", path, nil)
}

// EstimateForAnonymous estimates the association strength between an
// anonymous user, defined by an inline list of item interactions, and one
// target item.
func (c *Client) EstimateForAnonymous(ctx context.Context, toItemID int64, preferences []ItemStrength) (float64, error) {
	path := "estimateForAnonymous/" + formatID(toItemID) + "/" + preferenceSegments(preferences)
	var raw json.Number
	if err := c.getJSON(ctx, "estimateForAnonymous", path, nil, &raw); err != nil {
		return 0, err
	}
	v, err := raw.Float64()
	if err != nil {
		return 0, fmt.Errorf("estimateForAnonymous: invalid estimate %q: %w", raw, err)
	}
	return v, nil
}
