// Package dashboard implements the application-facing operations
// behind every view: listing and importing transactions, batch
// categorization, insights, and the chat conversation. It owns the
// chat session and the policy decisions around model failures, so the
// HTTP handlers and the CLI stay thin.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-dashboard/internal/config"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/importer"
	"github.com/dvloznov/finance-dashboard/internal/llm"
	"github.com/dvloznov/finance-dashboard/internal/store"
)

// Fixed user-facing strings for model outcomes. The busy text is
// shared by insights and chat; the generic-failure texts name the
// feature that broke.
const (
	// NoInsightsMessage is shown when the model has nothing to say.
	NoInsightsMessage = "No insights available at the moment."

	// BusyMessage is shown when a model call was rejected for quota
	// reasons.
	BusyMessage = "The AI service is busy right now. Please try again in a minute."

	// InsightsFailureMessage is shown when the insights call fails for
	// any non-quota reason.
	InsightsFailureMessage = "Unable to generate insights right now. Please try again later."

	// ChatFailureMessage replaces an empty reply when the stream fails
	// for any non-quota reason.
	ChatFailureMessage = "Unable to reach the AI service right now. Please try again later."
)

var (
	// ErrChatBusy means a reply is already streaming; one chat request
	// runs at a time.
	ErrChatBusy = errors.New("a chat reply is already streaming")

	// ErrNoGateway means the app runs without model credentials.
	ErrNoGateway = errors.New("model features are disabled")

	// ErrUnknownCategory rejects manual category updates outside the
	// fixed set.
	ErrUnknownCategory = errors.New("unknown category")
)

// Service wires the transaction store to the model gateway. A nil
// gateway is valid and degrades every model feature gracefully.
type Service struct {
	store  *store.Store
	gw     llm.Gateway
	log    zerolog.Logger
	policy string

	// catGen tags categorize requests so a response that arrives after
	// a newer request started is discarded instead of applied.
	catGen atomic.Uint64

	chatMu   sync.Mutex
	chat     llm.ChatSession
	messages []domain.ChatMessage
	busy     bool
}

// New builds a Service. policy is one of the config.Policy* values and
// decides what happens to model-returned categories outside the fixed
// set. gw may be nil.
func New(st *store.Store, gw llm.Gateway, policy string, log zerolog.Logger) *Service {
	return &Service{
		store:  st,
		gw:     gw,
		log:    log,
		policy: policy,
	}
}

// ModelEnabled reports whether model features are configured.
func (s *Service) ModelEnabled() bool {
	return s.gw != nil
}

// Transactions returns the current transaction list.
func (s *Service) Transactions() []domain.Transaction {
	return s.store.List()
}

// Transaction returns one transaction by id.
func (s *Service) Transaction(id string) (domain.Transaction, bool) {
	return s.store.Get(id)
}

// FilterTransactions returns transactions matching the optional
// category and type filters. Empty filter values match everything.
// Filtering by "Uncategorized" also matches transactions with an
// empty category.
func (s *Service) FilterTransactions(category, txType string) []domain.Transaction {
	txs := s.store.List()
	if category == "" && txType == "" {
		return txs
	}

	out := make([]domain.Transaction, 0, len(txs))
	for _, t := range txs {
		if category != "" && !matchesCategory(t, category) {
			continue
		}
		if txType != "" && string(t.Type) != txType {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Summary aggregates the current transaction list.
func (s *Service) Summary() domain.Summary {
	return domain.Summarize(s.store.List())
}

// Categories returns the fixed category set.
func (s *Service) Categories() []string {
	return domain.Categories()
}

// ImportCSV parses CSV content and appends whatever rows survived.
// Bad rows are dropped, not reported; the stats carry the counts.
func (s *Service) ImportCSV(ctx context.Context, content string) (importer.Stats, error) {
	txs, stats := importer.Parse(content, civil.DateOf(time.Now()))
	if err := s.store.Append(ctx, txs); err != nil {
		return stats, err
	}

	s.log.Info().
		Int("lines", stats.Lines).
		Int("imported", stats.Imported).
		Int("dropped", stats.Dropped).
		Msg("CSV import finished")
	return stats, nil
}

// SetCategory manually recategorizes one transaction. Only members of
// the fixed set, or the Uncategorized sentinel, are accepted.
func (s *Service) SetCategory(ctx context.Context, id, category string) error {
	if category != domain.CategoryUncategorized && !domain.IsKnownCategory(category) {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	return s.store.SetCategory(ctx, id, category)
}

// CategorizeResult reports what one categorization run did.
type CategorizeResult struct {
	Requested int  `json:"requested"`
	Updated   int  `json:"updated"`
	Stale     bool `json:"stale"`
}

// Categorize sends every uncategorized transaction to the model and
// merges the returned categories back by id. Rate limits surface as
// llm.ErrRateLimited; any other model failure is logged and swallowed,
// leaving the transactions untouched. A response that arrives after a
// newer run started is discarded.
func (s *Service) Categorize(ctx context.Context) (CategorizeResult, error) {
	if s.gw == nil {
		s.log.Warn().Msg("Categorization skipped, model features are disabled")
		return CategorizeResult{}, nil
	}

	pending := uncategorized(s.store.List())
	if len(pending) == 0 {
		return CategorizeResult{}, nil
	}
	res := CategorizeResult{Requested: len(pending)}

	gen := s.catGen.Add(1)

	updates, err := s.gw.Categorize(ctx, pending)
	switch llm.Classify(err) {
	case llm.FailureRateLimited:
		s.log.Warn().Err(err).Msg("Categorization rate limited")
		return res, llm.ErrRateLimited
	case llm.FailureOther:
		s.log.Error().Err(err).Msg("Categorization failed")
		return res, nil
	}

	if s.catGen.Load() != gen {
		s.log.Warn().Uint64("generation", gen).Msg("Discarding stale categorization response")
		res.Stale = true
		return res, nil
	}

	n, err := s.store.ApplyUpdates(ctx, s.applyPolicy(updates))
	if err != nil {
		return res, err
	}
	res.Updated = n

	s.log.Info().Int("requested", res.Requested).Int("updated", res.Updated).Msg("Categorization applied")
	return res, nil
}

// applyPolicy handles model-returned categories outside the fixed set
// according to the configured policy. The Uncategorized sentinel is
// always allowed through.
func (s *Service) applyPolicy(updates []domain.CategoryUpdate) []domain.CategoryUpdate {
	out := make([]domain.CategoryUpdate, 0, len(updates))
	for _, u := range updates {
		known := u.Category == domain.CategoryUncategorized || domain.IsKnownCategory(u.Category)
		switch {
		case known:
		case s.policy == config.PolicyReject:
			s.log.Warn().Str("id", u.ID).Str("category", u.Category).Msg("Dropping update with unknown category")
			continue
		case s.policy == config.PolicyCoerce:
			u.Category = domain.CategoryUncategorized
		}
		out = append(out, u)
	}
	return out
}

// InsightsResult is what the insights view renders. Failures never
// escape as errors here: the text is always ready to display, and the
// flag tells the caller which kind of trouble produced it.
type InsightsResult struct {
	Text        string `json:"text"`
	RateLimited bool   `json:"rate_limited"`
}

// Insights asks the model for a spending summary of the current
// transactions.
func (s *Service) Insights(ctx context.Context) InsightsResult {
	if s.gw == nil {
		return InsightsResult{Text: NoInsightsMessage}
	}

	text, err := s.gw.Insights(ctx, s.store.List())
	switch llm.Classify(err) {
	case llm.FailureRateLimited:
		s.log.Warn().Err(err).Msg("Insights rate limited")
		return InsightsResult{Text: BusyMessage, RateLimited: true}
	case llm.FailureOther:
		s.log.Error().Err(err).Msg("Insights failed")
		return InsightsResult{Text: InsightsFailureMessage}
	}

	if text == "" {
		return InsightsResult{Text: NoInsightsMessage}
	}
	return InsightsResult{Text: text}
}

// SendChat streams one reply to a user message. The session is opened
// lazily on first use with the transactions known at that moment, and
// lives until Close. render, when non-nil, is called with a fresh
// snapshot of the message list after every visible change: first the
// inserted user message with its pending reply, then once per chunk,
// then the terminal state.
//
// The returned message is the reply in its final state. On stream
// failure the reply is marked failed; if nothing had streamed yet its
// text becomes the busy or failure string, otherwise the partial text
// stays.
func (s *Service) SendChat(ctx context.Context, text string, render func([]domain.ChatMessage)) (domain.ChatMessage, error) {
	if s.gw == nil {
		return domain.ChatMessage{}, ErrNoGateway
	}

	// Claim the busy slot first, then open the session outside the
	// lock: session creation is a network call and must not block the
	// chat views. The busy flag guarantees a single creator.
	s.chatMu.Lock()
	if s.busy {
		s.chatMu.Unlock()
		return domain.ChatMessage{}, ErrChatBusy
	}
	s.busy = true
	session := s.chat
	s.chatMu.Unlock()

	defer func() {
		s.chatMu.Lock()
		s.busy = false
		s.chatMu.Unlock()
	}()

	if session == nil {
		created, err := s.gw.NewChat(ctx, s.store.List())
		if err != nil {
			return domain.ChatMessage{}, fmt.Errorf("open chat session: %w", err)
		}
		s.chatMu.Lock()
		s.chat = created
		s.chatMu.Unlock()
		session = created
	}

	s.chatMu.Lock()
	user := domain.NewUserMessage(text)
	reply := domain.NewModelMessage()
	s.messages = append(s.messages, user, reply)
	snapshot := snapshotMessages(s.messages)
	s.chatMu.Unlock()

	if render != nil {
		render(snapshot)
	}

	gotChunk := false
	var streamErr error
	for chunk, err := range session.Send(ctx, text) {
		if err != nil {
			streamErr = err
			break
		}
		gotChunk = true
		s.applyEvent(reply.ID, domain.ChunkEvent(chunk), render)
	}

	if streamErr != nil {
		s.log.Error().Err(streamErr).Msg("Chat stream failed")

		// A reply that never got a chunk would otherwise render empty.
		replacement := ""
		if !gotChunk {
			replacement = ChatFailureMessage
			if llm.IsRateLimited(streamErr) {
				replacement = BusyMessage
			}
		}
		final := s.applyEvent(reply.ID, domain.FailEvent(replacement), render)

		if llm.IsRateLimited(streamErr) {
			return final, llm.ErrRateLimited
		}
		return final, fmt.Errorf("chat stream: %w", streamErr)
	}

	return s.applyEvent(reply.ID, domain.CompleteEvent(), render), nil
}

// applyEvent advances the message state machine, snapshots the list,
// and pushes it to render. Returns the affected message as of after
// the event.
func (s *Service) applyEvent(id string, ev domain.ChatEvent, render func([]domain.ChatMessage)) domain.ChatMessage {
	s.chatMu.Lock()
	s.messages = domain.ApplyChatEvent(s.messages, id, ev)
	snapshot := snapshotMessages(s.messages)
	var msg domain.ChatMessage
	for _, m := range s.messages {
		if m.ID == id {
			msg = m
			break
		}
	}
	s.chatMu.Unlock()

	if render != nil {
		render(snapshot)
	}
	return msg
}

// ChatMessages returns a copy of the conversation so far.
func (s *Service) ChatMessages() []domain.ChatMessage {
	s.chatMu.Lock()
	defer s.chatMu.Unlock()
	return snapshotMessages(s.messages)
}

// ChatBusy reports whether a reply is currently streaming.
func (s *Service) ChatBusy() bool {
	s.chatMu.Lock()
	defer s.chatMu.Unlock()
	return s.busy
}

// Reset reinstalls the seed transactions.
func (s *Service) Reset(ctx context.Context) error {
	return s.store.Reset(ctx)
}

// Close disposes the chat session if one was opened.
func (s *Service) Close() error {
	s.chatMu.Lock()
	defer s.chatMu.Unlock()

	if s.chat == nil {
		return nil
	}
	err := s.chat.Close()
	s.chat = nil
	return err
}

func uncategorized(txs []domain.Transaction) []domain.Transaction {
	var out []domain.Transaction
	for _, t := range txs {
		if t.Uncategorized() {
			out = append(out, t)
		}
	}
	return out
}

func matchesCategory(t domain.Transaction, category string) bool {
	if category == domain.CategoryUncategorized {
		return t.Uncategorized()
	}
	return t.Category == category
}

func snapshotMessages(msgs []domain.ChatMessage) []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}
