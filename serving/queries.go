// Recserve - Go Client for Recommendation Serving Layers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recserve

package serving

import (
	"context"
	"net/url"
	"strconv"
)

// Recommend calculates the items that should be most highly recommended to
// a user. The result is ordered by a quality score; the score value is
// opaque, larger means a better recommendation.
//
// A nil opts uses the server defaults (10 results, known items excluded).
// Returns ErrNotFound for users unknown to the serving layer.
func (c *Client) Recommend(ctx context.Context, userID int64, opts *QueryOptions) ([]ScoredItem, error) {
	path := "recommend/" + formatID(userID)
	return c.getScoredItems(ctx, "recommend", path, opts.values())
}

// RecommendToMany computes recommendations for a group of users instead of
// one. Each user is given equal weight.
func (c *Client) RecommendToMany(ctx context.Context, userIDs []int64, opts *QueryOptions) ([]ScoredItem, error) {
	path := "recommendToMany/" + idSegments(userIDs)
	return c.getScoredItems(ctx, "recommendToMany", path, opts.values())
}

// RecommendToAnonymous recommends to an "anonymous" user not already known
// to the serving layer. The user's item interactions are sent inline with
// the request and recommendations are computed strictly from them.
func (c *Client) RecommendToAnonymous(ctx context.Context, preferences []ItemStrength, opts *QueryOptions) ([]ScoredItem, error) {
	path := "recommendToAnonymous/" + preferenceSegments(preferences)
	return c.getScoredItems(ctx, "recommendToAnonymous", path, opts.values())
}

// MostPopularItems computes the items most popular overall, i.e. interacted
// with by the most users. The score is currently a count.
func (c *Client) MostPopularItems(ctx context.Context, opts *QueryOptions) ([]ScoredItem, error) {
	return c.getScoredItems(ctx, "mostPopularItems", "mostPopularItems", opts.values())
}

// Because attempts to explain why an item was recommended to a user. The
// result contains items the user is associated to which most contributed to
// the recommendation, ordered from most explanatory to least, each with an
// opaque strength value. howMany caps the result size; zero means the
// server default (10).
func (c *Client) Because(ctx context.Context, userID, itemID int64, howMany int) ([]ScoredItem, error) {
	var params url.Values
	if howMany > 0 {
		params = url.Values{"howMany": []string{strconv.Itoa(howMany)}}
	}
	path := "because/" + formatID(userID) + "/" + formatID(itemID)
	return c.getScoredItems(ctx, "because", path, params)
}
