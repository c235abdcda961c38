// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package completion calls the remote chat-completion endpoint and
// classifies the outcome. One authenticated POST per call; transient
// failures are retried with backoff, everything else maps to a typed Error.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/digitallegionke/USFM/internal/httputil"
	"github.com/digitallegionke/USFM/pkg/types"
)

// completionsURL is the chat-completions endpoint. Declared as a var so
// tests can substitute an httptest server.
var completionsURL = "https://openrouter.ai/api/v1/chat/completions"

const (
	defaultTimeout   = 120 * time.Second
	defaultMaxTokens = 8192
)

// Client performs chat-completion calls against an OpenRouter-compatible
// endpoint. The zero Client is not usable; construct with New.
type Client struct {
	cfg        types.CompletionConfig
	httpClient *http.Client
}

// New returns a Client for the given configuration. A nil httpClient gets a
// client with the configured (or default) timeout.
func New(cfg types.CompletionConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

// chatRequest is the request body for the chat-completions endpoint.
type chatRequest struct {
	Model     string          `json:"model"`
	Messages  []types.Message `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

// chatResponse is the success envelope: the completion text lives at
// choices[0].message.content. The error envelope may accompany any status.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *errorEnvelope `json:"error"`
}

// errorEnvelope is the provider's error body.
type errorEnvelope struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Code    any    `json:"code,omitempty"`
}

// Complete sends the conversation and returns the completion text. Failures
// come back as *Error with a classified Kind; the method never panics and
// never returns both a result and an error.
//
// Transport errors, 429 and 5xx are retried with exponential backoff up to
// the configured MaxRetries before the final outcome is classified. Other
// statuses are classified immediately.
func (c *Client) Complete(ctx context.Context, messages []types.Message) (string, error) {
	maxTokens := c.cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	body, err := json.Marshal(chatRequest{
		Model:     c.cfg.Model,
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", &Error{Kind: KindGeneric, Message: fmt.Sprintf("encoding completion request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, completionsURL, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindGeneric, Message: fmt.Sprintf("creating completion request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if c.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", c.cfg.Referer)
	}
	if c.cfg.AppTitle != "" {
		req.Header.Set("X-Title", c.cfg.AppTitle)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.cfg.MaxRetries)
	if err != nil {
		return "", errTransport(err)
	}
	defer resp.Body.Close()

	var envelope chatResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&envelope)

	if kindErr := classifyStatus(resp.StatusCode, &envelope, decodeErr); kindErr != nil {
		return "", kindErr
	}

	if decodeErr != nil {
		return "", errMalformed(decodeErr.Error())
	}
	// Some providers report failures in the error envelope with a success
	// status; honor the embedded message.
	if envelope.Error != nil && envelope.Error.Message != "" {
		return "", &Error{Kind: KindGeneric, Message: envelope.Error.Message}
	}
	if len(envelope.Choices) == 0 {
		return "", errMalformed("no choices in response")
	}
	content := envelope.Choices[0].Message.Content
	if content == "" {
		return "", errMalformed("empty message content in first choice")
	}

	return content, nil
}

// classifyStatus maps a non-success HTTP status to a typed Error. Returns
// nil for 2xx statuses. The embedded error envelope, when present and
// parseable, supplies the message for statuses without a dedicated kind.
func classifyStatus(status int, envelope *chatResponse, decodeErr error) *Error {
	if status >= 200 && status < 300 {
		return nil
	}

	switch status {
	case http.StatusUnauthorized:
		return &Error{Kind: KindInvalidCredential, Message: "completion service rejected the API credential (HTTP 401)"}
	case http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, Message: "completion service rate limit exceeded (HTTP 429)"}
	case http.StatusPaymentRequired:
		return &Error{Kind: KindInsufficientBalance, Message: "completion service reports insufficient account balance (HTTP 402)"}
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return &Error{Kind: KindUpstreamError, Message: fmt.Sprintf("completion service is unavailable (HTTP %d)", status)}
	}

	if decodeErr == nil && envelope.Error != nil && envelope.Error.Message != "" {
		return &Error{Kind: KindGeneric, Message: envelope.Error.Message}
	}
	return &Error{Kind: KindGeneric, Message: fmt.Sprintf("completion service returned HTTP %d", status)}
}
