// Recserve - Go Client for Recommendation Serving Layers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recserve

package serving

import (
	"context"
	"net/http"
	"strings"
)

// AddPreference adds to a user-item association. It is called in response to
// some action indicating the user has a stronger association to an item, like
// a click or a purchase, and is intended to be called many times for a user
// and item as more such events are observed.
//
// Strength is not a rating but an association magnitude. It may be negative;
// a value twice as big should correspond to an event suggesting twice as
// strong an association. A nil strength sends no body and lets the serving
// layer apply its default of 1.0.
func (c *Client) AddPreference(ctx context.Context, userID, itemID int64, strength *float64) error {
	body := ""
	if strength != nil {
		body = formatStrength(*strength)
	}
	path := "pref/" + formatID(userID) + "/" + formatID(itemID)
	return c.send(ctx, "addPreference", http.MethodPost, path, body)
}

// RemovePreference removes the item from the user's set of known items,
// making it eligible for recommendation again. Once a user has no remaining
// items the serving layer removes the user entirely, after which recommend
// calls for that user fail with ErrNotFound. Removal does not record any
// change in association strength.
func (c *Client) RemovePreference(ctx context.Context, userID, itemID int64) error {
	path := "pref/" + formatID(userID) + "/" + formatID(itemID)
	return c.send(ctx, "removePreference", http.MethodDelete, path, "")
}

// SetUserTag adds to a user-tag association, where a tag is any string
// representing a concept like a label or category (many users can be tagged
// "female", for example). It operates like AddPreference, including the
// strength semantics, except that tags are never returned in results.
func (c *Client) SetUserTag(ctx context.Context, userID int64, tag string, strength float64) error {
	path := "tag/user/" + formatID(userID) + "/" + pathSegment(tag)
	return c.send(ctx, "setUserTag", http.MethodPost, path, formatStrength(strength))
}

// SetItemTag is entirely analogous to SetUserTag, except it tags items
// instead of users.
func (c *Client) SetItemTag(ctx context.Context, itemID int64, tag string, strength float64) error {
	path := "tag/item/" + formatID(itemID) + "/" + pathSegment(tag)
	return c.send(ctx, "setItemTag", http.MethodPost, path, formatStrength(strength))
}

// Ingest bulk-loads new preferences in a single call. The batch is
// serialized as CSV rows "userID,itemID[,strength]", one per line.
// A nil strength defaults to 1.0 on the serving layer.
func (c *Client) Ingest(ctx context.Context, preferences []Preference) error {
	var b strings.Builder
	for i, p := range preferences {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(formatID(p.UserID))
		b.WriteByte(',')
		b.WriteString(formatID(p.ItemID))
		if p.Strength != nil {
			b.WriteByte(',')
			b.WriteString(formatStrength(*p.Strength))
		}
	}
	return c.send(ctx, "ingest", http.MethodPost, "ingest", b.String())
}
