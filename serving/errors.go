// Recserve - Go Client for Recommendation Serving Layers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recserve

package serving

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound indicates the serving layer returned HTTP 404, e.g. a
	// recommendation request for a user with no recorded items.
	ErrNotFound = errors.New("serving layer: not found")

	// ErrServerUnavailable indicates the serving layer returned HTTP
	// 502, 503 or 504 and may recover on its own.
	ErrServerUnavailable = errors.New("serving layer: unavailable")
)

// StatusError reports a non-2xx response from the serving layer. It carries
// the HTTP status code and a bounded excerpt of the response body so a
// failed call is distinguishable from an empty successful one.
type StatusError struct {
	// Code is the HTTP status code of the response.
	Code int

	// Body is the response body, truncated for large error pages.
	Body string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("serving layer returned status %d", e.Code)
	}
	return fmt.Sprintf("serving layer returned status %d: %s", e.Code, e.Body)
}

// Is maps well-known status classes onto the package sentinels so callers
// can classify failures with errors.Is without unpacking the StatusError.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrServerUnavailable:
		return e.Code == http.StatusBadGateway ||
			e.Code == http.StatusServiceUnavailable ||
			e.Code == http.StatusGatewayTimeout
	}
	return false
}
