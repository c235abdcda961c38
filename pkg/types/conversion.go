// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Message roles for the completion conversation. The system message always
// comes first; order is significant.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single message in a completion conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversionStatus records the outcome of one conversion attempt.
type ConversionStatus string

const (
	ConversionDone   ConversionStatus = "done"
	ConversionFailed ConversionStatus = "failed"
)

// ConversionRecord is one row of the conversion history.
type ConversionRecord struct {
	// ID is a stable hash of the source text and model.
	ID string `json:"id" yaml:"id"`

	CreatedAt time.Time        `json:"created_at" yaml:"created_at"`
	Model     string           `json:"model" yaml:"model"`
	Status    ConversionStatus `json:"status" yaml:"status"`

	// SourceChars and OutputChars are character counts of the note text
	// and the produced USFM respectively.
	SourceChars int `json:"source_chars" yaml:"source_chars"`
	OutputChars int `json:"output_chars" yaml:"output_chars"`

	// USFM is the converted markup (empty when the attempt failed).
	USFM string `json:"usfm,omitempty" yaml:"usfm,omitempty"`

	// Error is the failure message (empty when the attempt succeeded).
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}
