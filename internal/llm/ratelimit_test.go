package llm

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/genai"
)

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "sentinel", err: ErrRateLimited, want: true},
		{name: "wrapped sentinel", err: fmt.Errorf("categorize: %w", ErrRateLimited), want: true},
		{name: "api error 429", err: genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, want: true},
		{name: "wrapped api error 429", err: fmt.Errorf("categorize transactions: %w", genai.APIError{Code: 429}), want: true},
		{name: "string 429", err: errors.New("got 429 from upstream"), want: true},
		{name: "string RESOURCE_EXHAUSTED", err: errors.New("rpc error: RESOURCE_EXHAUSTED"), want: true},
		{name: "string quota", err: errors.New("quota exceeded for model"), want: true},
		{name: "capitalized Quota does not match", err: errors.New("Quota exceeded"), want: false},
		{name: "unrelated api error", err: genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"}, want: false},
		{name: "unrelated error", err: errors.New("connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRateLimited(tt.err); got != tt.want {
				t.Errorf("IsRateLimited(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{name: "nil", err: nil, want: FailureNone},
		{name: "rate limited", err: genai.APIError{Code: 429}, want: FailureRateLimited},
		{name: "other", err: errors.New("boom"), want: FailureOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
