// Package llm talks to the Gemini API. It exposes a small gateway
// interface so the rest of the app never touches the genai SDK
// directly and tests can swap in fakes.
package llm

import (
	"context"
	"iter"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// Gateway is the model-facing surface of the app.
type Gateway interface {
	// Categorize asks the model to assign a category and anomaly flag
	// to every given transaction. An empty input returns (nil, nil)
	// without calling the model. A response the model returns but that
	// does not decode is treated as "no data", not an error.
	Categorize(ctx context.Context, txs []domain.Transaction) ([]domain.CategoryUpdate, error)

	// Insights asks the model for a short free-text summary of the
	// given transactions. Only the first 50 are sent.
	Insights(ctx context.Context, txs []domain.Transaction) (string, error)

	// NewChat opens a conversation grounded in the given transactions.
	// The caller owns the returned session and must Close it.
	NewChat(ctx context.Context, txs []domain.Transaction) (ChatSession, error)
}

// ChatSession is one ongoing conversation with the model. It keeps the
// message history on the model side, so callers only send new turns.
type ChatSession interface {
	// Send streams the model's reply to one user message. The sequence
	// yields text chunks in order; a non-nil error ends the stream.
	Send(ctx context.Context, message string) iter.Seq2[string, error]

	Close() error
}
