// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package converter sequences the conversion pipeline: prompt construction,
// the remote completion call, and structural validation of the returned
// USFM. It is the one path external callers use.
package converter

import (
	"context"
	"fmt"
	"strings"

	"github.com/digitallegionke/USFM/internal/prompt"
	"github.com/digitallegionke/USFM/internal/usfm"
	"github.com/digitallegionke/USFM/pkg/types"
)

// Completer abstracts the completion client so tests can supply a mock.
type Completer interface {
	Complete(ctx context.Context, messages []types.Message) (string, error)
}

// Result is a successful conversion outcome. Result is a plain comparable
// value: identical input against a deterministic completer yields identical
// Results, so timing lives with the caller's reporting, not here.
type Result struct {
	// USFM is the validated markup, unchanged from the completion text.
	USFM string

	// Model is the model identifier the conversion ran against.
	Model string
}

// Converter runs conversions. Converter values are safe for concurrent use;
// each Convert call owns its request and response exclusively.
type Converter struct {
	completer Completer
	model     string
}

// New returns a Converter that sends conversations to the given completer.
// The model identifier is only recorded in results; the completer itself
// carries the model used on the wire.
func New(completer Completer, model string) *Converter {
	return &Converter{completer: completer, model: model}
}

// ErrEmptyInput is returned before any network call when the note text is
// empty or whitespace-only.
var ErrEmptyInput = fmt.Errorf("empty input: provide non-empty note text to convert")

// Convert turns note text into validated USFM. It fails without a network
// call on empty input, propagates completion failures verbatim, and rejects
// structurally invalid output. Every failure is terminal for this call;
// re-invoking Convert is always safe.
func (c *Converter) Convert(ctx context.Context, noteText string) (Result, error) {
	if strings.TrimSpace(noteText) == "" {
		return Result{}, ErrEmptyInput
	}

	messages := prompt.Build(noteText)

	text, err := c.completer.Complete(ctx, messages)
	if err != nil {
		return Result{}, err
	}

	if err := usfm.Validate(text); err != nil {
		return Result{}, fmt.Errorf("completion produced invalid USFM: %w", err)
	}

	return Result{
		USFM:  text,
		Model: c.model,
	}, nil
}
