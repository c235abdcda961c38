// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package usfm performs shallow structural validation of USFM markup
// returned by the completion model. It checks marker presence and open/close
// pair balance by counting tokens; it is deliberately not a USFM parser.
// The goal is to catch gross truncation or malformation in generated text,
// not to verify semantic USFM correctness.
package usfm

import (
	"fmt"
	"regexp"
	"strings"
)

// requiredMarkers are the header markers every converted document must
// contain. Presence is a plain substring check, so \mt also accepts \mt1.
var requiredMarkers = []string{`\id`, `\h`, `\mt`}

// MarkerPair is an open/close marker pair whose occurrence counts must match.
type MarkerPair struct {
	// Name is the opening token, used in failure messages.
	Name string

	open  *regexp.Regexp
	close *regexp.Regexp
}

// markerPairs are checked in this fixed order; validation stops at the first
// unbalanced pair. The open pattern requires trailing whitespace or end of
// text so \f matches neither \f* nor the \ef open marker.
var markerPairs = []MarkerPair{
	{Name: `\f`, open: openPattern(`f`), close: closePattern(`f`)},
	{Name: `\x`, open: openPattern(`x`), close: closePattern(`x`)},
	{Name: `\ef`, open: openPattern(`ef`), close: closePattern(`ef`)},
}

func openPattern(marker string) *regexp.Regexp {
	return regexp.MustCompile(`\\` + marker + `(\s|$)`)
}

func closePattern(marker string) *regexp.Regexp {
	return regexp.MustCompile(`\\` + marker + `\*`)
}

// ValidationError describes the first structural defect found. Exactly one
// of Missing or MismatchedPair is populated.
type ValidationError struct {
	// Missing lists required markers absent from the text.
	Missing []string

	// MismatchedPair names the opening token of the first pair whose open
	// and close counts differ.
	MismatchedPair string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing required markers: %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("mismatched marker pair: %s has unequal open/close counts", e.MismatchedPair)
}

// Validate checks text for the required header markers and balanced marker
// pairs. It short-circuits: a header defect is reported before any pair is
// counted, and only the first unbalanced pair is reported. Returns nil when
// the text passes both checks.
func Validate(text string) error {
	var missing []string
	for _, marker := range requiredMarkers {
		if !strings.Contains(text, marker) {
			missing = append(missing, marker)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}

	for _, pair := range markerPairs {
		opens := len(pair.open.FindAllStringIndex(text, -1))
		closes := len(pair.close.FindAllStringIndex(text, -1))
		if opens != closes {
			return &ValidationError{MismatchedPair: pair.Name}
		}
	}

	return nil
}
