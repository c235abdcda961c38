// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package usfm

import (
	"errors"
	"strings"
	"testing"
)

// wellFormed is a minimal document that passes both checks.
const wellFormed = `\id GEN
\h Genesis
\toc1 Genesis
\mt Genesis
\c 1
\p
\v 1 In the beginning God created the heavens and the earth. \f + \fr 1:1 \ft Or "when God began to create" \f*
\v 2 The earth was formless. \x + \xo 1:2 \xt Jer 4:23 \x*
\v 3 And God said, "Let there be light." \ef + \fr 1:3 \ft Light precedes the luminaries of day four. \ef*`

func TestValidateWellFormed(t *testing.T) {
	if err := Validate(wellFormed); err != nil {
		t.Fatalf("Validate(wellFormed) = %v, want nil", err)
	}
}

func TestValidateMissingMarkers(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantMissing []string
	}{
		{
			name:        "no markers at all",
			text:        "plain prose with no markup",
			wantMissing: []string{`\id`, `\h`, `\mt`},
		},
		{
			name:        "missing main title",
			text:        "\\id GEN\n\\h Genesis\n\\c 1",
			wantMissing: []string{`\mt`},
		},
		{
			name:        "missing id and main title",
			text:        "\\h Genesis\n\\c 1\n\\v 1 Text",
			wantMissing: []string{`\id`, `\mt`},
		},
		{
			name:        "numbered title counts as present",
			text:        "\\id GEN\n\\h Genesis\n\\mt1 Genesis",
			wantMissing: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.text)
			if tt.wantMissing == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if len(verr.Missing) != len(tt.wantMissing) {
				t.Fatalf("Missing = %v, want %v", verr.Missing, tt.wantMissing)
			}
			for i, m := range tt.wantMissing {
				if verr.Missing[i] != m {
					t.Errorf("Missing[%d] = %q, want %q", i, verr.Missing[i], m)
				}
			}
			for _, m := range tt.wantMissing {
				if !strings.Contains(verr.Error(), m) {
					t.Errorf("error message %q does not name %s", verr.Error(), m)
				}
			}
		})
	}
}

func TestValidateMismatchedPairs(t *testing.T) {
	header := "\\id GEN\n\\h Genesis\n\\mt Genesis\n"

	tests := []struct {
		name     string
		text     string
		wantPair string
	}{
		{
			name:     "unclosed footnote",
			text:     header + `\v 1 Text \f + \fr 1:1 \ft note \f* \v 2 More \f + \fr 1:2 \ft truncated`,
			wantPair: `\f`,
		},
		{
			name:     "unclosed cross reference",
			text:     header + `\v 1 Text \x + \xo 1:1 \xt Jer 4:23`,
			wantPair: `\x`,
		},
		{
			name:     "unclosed study note",
			text:     header + `\v 1 Text \ef + \fr 1:1 \ft dangling`,
			wantPair: `\ef`,
		},
		{
			name:     "close without open",
			text:     header + `\v 1 Text \f*`,
			wantPair: `\f`,
		},
		{
			name: "footnote reported before study note",
			text: header + `\v 1 \f + truncated \v 2 \ef + also truncated`,
			// Fixed iteration order: the footnote defect masks the study-note one.
			wantPair: `\f`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.text)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if verr.MismatchedPair != tt.wantPair {
				t.Errorf("MismatchedPair = %q, want %q", verr.MismatchedPair, tt.wantPair)
			}
			if len(verr.Missing) != 0 {
				t.Errorf("Missing = %v, want empty for a pair defect", verr.Missing)
			}
		})
	}
}

func TestValidateHeadersCheckedBeforePairs(t *testing.T) {
	// Both defect classes present: the missing-marker failure wins.
	err := Validate(`\v 1 Text \f + truncated`)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() = %v, want *ValidationError", err)
	}
	if len(verr.Missing) == 0 {
		t.Error("expected missing markers to be reported before the pair defect")
	}
	if verr.MismatchedPair != "" {
		t.Errorf("MismatchedPair = %q, want empty when headers are missing", verr.MismatchedPair)
	}
}

func TestOpenTokenDoesNotMatchCloseOrSubMarkers(t *testing.T) {
	header := "\\id GEN\n\\h Genesis\n\\mt Genesis\n"

	// \fr, \ft and \f* must not count as \f opens; \ef must not count as \f.
	text := header + `\v 1 Balanced \f + \fr 1:1 \ft note \f* and \ef + \fr 1:1 \ft study \ef*`
	if err := Validate(text); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	// A document ending in a bare open marker still counts the open.
	truncated := header + `\v 1 Cut off \f`
	err := Validate(truncated)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate(truncated) = %v, want *ValidationError", err)
	}
	if verr.MismatchedPair != `\f` {
		t.Errorf("MismatchedPair = %q, want \\f", verr.MismatchedPair)
	}
}
