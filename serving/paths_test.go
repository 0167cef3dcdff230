// Recserve - Go Client for Recommendation Serving Layers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recserve

package serving

import (
	"net/url"
	"testing"
)

func TestPathSegmentRoundTrip(t *testing.T) {
	t.Parallel()

	// Escaping must round-trip arbitrary tag strings through a URL path.
	tags := []string{
		"female",
		"sci-fi/fantasy",
		"with space",
		"percent%sign",
		"q?a=b&c=d",
		"ünïcodé",
		"trailing.",
		"#fragment",
	}

	for _, tag := range tags {
		t.Run(tag, func(t *testing.T) {
			t.Parallel()

			escaped := pathSegment(tag)
			decoded, err := url.PathUnescape(escaped)
			if err != nil {
				t.Fatalf("PathUnescape(%q) error = %v", escaped, err)
			}
			if decoded != tag {
				t.Errorf("round-trip = %q, want %q", decoded, tag)
			}
		})
	}
}

func TestFormatStrength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value float64
		want  string
	}{
		{value: 2.5, want: "2.5"},
		{value: 3, want: "3"},
		{value: -0.25, want: "-0.25"},
		{value: 0, want: "0"},
		{value: 1000000, want: "1000000"}, // plain decimal, no exponent
	}

	for _, tt := range tests {
		if got := formatStrength(tt.value); got != tt.want {
			t.Errorf("formatStrength(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestIDSegments(t *testing.T) {
	t.Parallel()

	if got := idSegments([]int64{1, 2, 3}); got != "1/2/3" {
		t.Errorf("idSegments = %q, want %q", got, "1/2/3")
	}
	if got := idSegments([]int64{42}); got != "42" {
		t.Errorf("idSegments = %q, want %q", got, "42")
	}
	if got := idSegments(nil); got != "" {
		t.Errorf("idSegments = %q, want empty", got)
	}
}

func TestPreferenceSegments(t *testing.T) {
	t.Parallel()

	prefs := []ItemStrength{
		{ItemID: 325, Strength: Float(2.5)},
		{ItemID: 98},
		{ItemID: 7, Strength: Float(-1)},
	}
	want := "325=2.5/98/7=-1"
	if got := preferenceSegments(prefs); got != want {
		t.Errorf("preferenceSegments = %q, want %q", got, want)
	}
}
