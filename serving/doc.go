// Recserve - Go Client for Recommendation Serving Layers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recserve

// Package serving provides a client binding for the REST API of a
// recommendation serving layer.
//
// The serving layer owns all model state and computation (collaborative
// filtering, similarity, ranking). This package only translates high-level
// recommendation operations into HTTP requests and decodes the responses
// into plain Go values. Nothing is cached or retained between calls.
//
// # Quick Start
//
//	client := serving.NewClient(serving.Config{Host: "localhost", Port: 8080})
//
//	ready, err := client.IsReady(ctx)
//	if err != nil || !ready {
//	    // serving layer has not loaded a model yet
//	}
//
//	items, err := client.Recommend(ctx, userID, &serving.QueryOptions{HowMany: 5})
//
// # Error Handling
//
// Non-2xx responses are returned as *StatusError. Two status classes have
// sentinel values matchable with errors.Is:
//
//	if errors.Is(err, serving.ErrNotFound) { ... }           // HTTP 404
//	if errors.Is(err, serving.ErrServerUnavailable) { ... }  // HTTP 502/503/504
//
// Mutating calls (AddPreference, SetUserTag, Ingest, Refresh) remain
// fire-and-forget with respect to server-side effects: a nil error means the
// serving layer accepted the request, not that the effect has been applied.
//
// # Thread Safety
//
// A Client is immutable after construction and safe for concurrent use.
package serving
