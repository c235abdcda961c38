// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared value types and configuration for the
// conversion pipeline stages.
package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "usfm/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CompletionConfig holds settings for the remote completion stage.
type CompletionConfig struct {
	HTTPConfig `yaml:",inline"`

	// Model is the completion model identifier sent with every request.
	Model string `json:"model" yaml:"model"`

	// APIKey is the bearer credential for the completion endpoint.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for transient failures.
	// Zero disables retries; the CLI defaults it to 3. Only transport
	// errors, HTTP 429 and 5xx are retried.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// MaxTokens caps the completion length (default 8192).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Referer is sent as the HTTP-Referer header identifying the
	// application to the completion provider.
	Referer string `json:"referer" yaml:"referer"`

	// AppTitle is sent as the X-Title header.
	AppTitle string `json:"app_title" yaml:"app_title"`
}

// ExtractorBackend identifies the document text extraction tool.
type ExtractorBackend string

const (
	ExtractorPlainText ExtractorBackend = "plaintext"
	ExtractorPandoc    ExtractorBackend = "pandoc"
)

// ExtractorConfig holds settings for turning uploaded documents into plain text.
type ExtractorConfig struct {
	// Backend selects the extraction tool: plaintext or pandoc.
	Backend ExtractorBackend `json:"backend" yaml:"backend"`
}

// HistoryConfig holds settings for the conversion history store.
type HistoryConfig struct {
	// HistoryDir is the base directory for history data (contains usfm.db).
	HistoryDir string `json:"history_dir" yaml:"history_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Completion CompletionConfig `json:"completion" yaml:"completion"`
	Extractor  ExtractorConfig  `json:"extractor" yaml:"extractor"`
	History    HistoryConfig    `json:"history" yaml:"history"`
}
