// Recserve - Go Client for Recommendation Serving Layers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recserve

package serving

import (
	"net/url"
	"strconv"
	"time"
)

// Config holds the connection settings for one serving layer instance.
// Host and Port are required; everything else has working defaults.
type Config struct {
	// Host is the serving layer hostname or IP address.
	Host string

	// Port is the serving layer HTTP port.
	Port int

	// Timeout is the per-request HTTP timeout.
	// Default: 30 seconds.
	Timeout time.Duration

	// RequestsPerSecond throttles outgoing requests client-side.
	// Zero disables throttling.
	RequestsPerSecond float64

	// MaxRetries bounds retries on HTTP 429 responses.
	// Other statuses are never retried. Default: 5.
	MaxRetries int
}

// ScoredItem is one entry of a ranked result list. Score is opaque;
// larger means a better recommendation (or stronger similarity).
type ScoredItem struct {
	ItemID int64   `json:"item_id"`
	Score  float64 `json:"score"`
}

// Preference represents one observed user-item association for bulk ingest.
//
// Strength is not a rating. It is a signed magnitude indicating how strongly
// an observed event associates the user with the item; it may be negative.
// A nil Strength lets the serving layer apply its default (1.0).
type Preference struct {
	UserID   int64    `json:"user_id"`
	ItemID   int64    `json:"item_id"`
	Strength *float64 `json:"strength,omitempty"`
}

// ItemStrength is one item interaction of an anonymous user, used by the
// RecommendToAnonymous and EstimateForAnonymous operations. A nil Strength
// lets the serving layer apply its default.
type ItemStrength struct {
	ItemID   int64    `json:"item_id"`
	Strength *float64 `json:"strength,omitempty"`
}

// Float returns a pointer to v, for filling optional strength fields.
func Float(v float64) *float64 { return &v }

// QueryOptions carries the optional parameters shared by the recommendation
// and similarity query operations. A nil *QueryOptions means server defaults.
type QueryOptions struct {
	// HowMany is the maximum number of results to return.
	// Zero means the server default (10).
	HowMany int

	// ConsiderKnownItems includes the user's known items as recommendation
	// candidates. Server default is false.
	ConsiderKnownItems bool

	// RescorerParams are opaque strings passed through to server-side
	// rescoring logic. They may repeat and their order is significant;
	// the server may interpret positional pairing.
	RescorerParams []string
}

// values encodes the options as URL query parameters. Repeated
// rescorerParams entries keep their insertion order (url.Values preserves
// per-key value order through Encode).
func (o *QueryOptions) values() url.Values {
	if o == nil {
		return nil
	}
	params := url.Values{}
	if o.HowMany > 0 {
		params.Set("howMany", strconv.Itoa(o.HowMany))
	}
	if o.ConsiderKnownItems {
		params.Set("considerKnownItems", "true")
	}
	for _, p := range o.RescorerParams {
		params.Add("rescorerParams", p)
	}
	return params
}
