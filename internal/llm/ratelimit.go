package llm

import (
	"errors"
	"strings"

	"google.golang.org/genai"
)

// ErrRateLimited marks a model call rejected for quota reasons. It is
// the one gateway failure the rest of the app is expected to surface
// to the user instead of swallowing.
var ErrRateLimited = errors.New("model rate limited")

// FailureKind classifies a gateway error for callers that need to pick
// a user-facing message.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureRateLimited
	FailureOther
)

// IsRateLimited reports whether err looks like a quota rejection. The
// genai SDK surfaces these as APIError with HTTP code 429, but errors
// wrapped by intermediate layers or stringified by transports also
// count when they mention 429, RESOURCE_EXHAUSTED, or quota. The
// string match is case-sensitive on purpose: those are the exact
// tokens the Gemini API uses.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == 429 {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(msg, "quota")
}

// Classify buckets a gateway error for message selection.
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case IsRateLimited(err):
		return FailureRateLimited
	default:
		return FailureOther
	}
}
