// Recserve - Go Client for Recommendation Serving Layers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recserve

package serving

import (
	"net/url"
	"strconv"
	"strings"
)

// All path building funnels through these helpers so that escaping of
// caller-supplied segments (tags in particular) happens in exactly one place.

// pathSegment escapes one caller-supplied path segment.
func pathSegment(s string) string {
	return url.PathEscape(s)
}

// formatID renders a user or item identifier as a path segment.
func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// formatStrength renders a strength value in its plain decimal string form,
// as the serving layer expects in request bodies and preference lists.
func formatStrength(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// idSegments joins identifiers with "/" for endpoints that enumerate
// subject IDs in the path (recommendToMany, similarity, estimate).
func idSegments(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = formatID(id)
	}
	return strings.Join(parts, "/")
}

// preferenceSegments joins anonymous-user item interactions with "/",
// rendering each as "itemID" or "itemID=strength".
func preferenceSegments(prefs []ItemStrength) string {
	parts := make([]string, len(prefs))
	for i, p := range prefs {
		if p.Strength != nil {
			parts[i] = formatID(p.ItemID) + "=" + formatStrength(*p.Strength)
		} else {
			parts[i] = formatID(p.ItemID)
		}
	}
	return strings.Join(parts, "/")
}
