// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package completion

import "fmt"

// Kind classifies a completion failure. The orchestrator surfaces the
// message; callers that need to branch (retry policy, exit codes) switch on
// the kind.
type Kind string

const (
	KindTransport           Kind = "transport-failure"
	KindInvalidCredential   Kind = "invalid-credential"
	KindRateLimited         Kind = "rate-limited"
	KindInsufficientBalance Kind = "insufficient-balance"
	KindUpstreamError       Kind = "upstream-service-error"
	KindMalformedResponse   Kind = "malformed-response"
	KindGeneric             Kind = "generic-failure"
)

// Error is a classified completion failure. Exactly one is returned per
// failed call; nothing panics past the client boundary.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func errTransport(err error) *Error {
	return &Error{Kind: KindTransport, Message: fmt.Sprintf("completion request failed: %v", err)}
}

func errMalformed(detail string) *Error {
	return &Error{Kind: KindMalformedResponse, Message: "completion service returned a malformed response: " + detail}
}
