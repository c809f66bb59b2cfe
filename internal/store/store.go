// Package store holds the in-memory transaction list and keeps it
// persisted as one JSON blob under a fixed key in the kv store. Every
// mutation reads the latest list, produces a new one, installs it, and
// writes it back - all under a single lock, so there is exactly one
// writer timeline.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/kv"
)

// transactionsKey is the fixed persistence key. There is no schema
// versioning; the value is the JSON transaction list as-is.
const transactionsKey = "finance_dashboard_transactions"

// ErrNotFound is returned when a transaction id matches nothing.
var ErrNotFound = errors.New("transaction not found")

// Store is the single source of truth for transactions.
type Store struct {
	mu  sync.RWMutex
	kv  kv.Store
	log zerolog.Logger
	txs []domain.Transaction
}

// New wraps the given kv backend. Call Load before first use.
func New(kvs kv.Store, log zerolog.Logger) *Store {
	return &Store{
		kv:  kvs,
		log: log,
	}
}

// Load reads the persisted transaction list once at startup. When
// nothing is persisted yet, or the blob does not decode, the store
// starts from the static seed data and persists it.
func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, transactionsKey)
	if err != nil {
		return fmt.Errorf("store: load transactions: %w", err)
	}

	if ok && raw != "" {
		var txs []domain.Transaction
		if err := json.Unmarshal([]byte(raw), &txs); err == nil {
			s.mu.Lock()
			s.txs = txs
			s.mu.Unlock()
			s.log.Info().Int("count", len(txs)).Msg("Loaded transactions")
			return nil
		}
		s.log.Warn().Str("key", transactionsKey).Msg("Persisted transactions are unreadable, starting from seed data")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = SeedTransactions()
	if err := s.persistLocked(ctx); err != nil {
		return err
	}
	s.log.Info().Int("count", len(s.txs)).Msg("Seeded transactions")
	return nil
}

// List returns a copy of the current transaction list.
func (s *Store) List() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Transaction, len(s.txs))
	copy(out, s.txs)
	return out
}

// Get returns the transaction with the given id.
func (s *Store) Get(id string) (domain.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.txs {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Transaction{}, false
}

// Count returns the number of stored transactions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}

// Append adds new transactions to the end of the list and persists.
func (s *Store) Append(ctx context.Context, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Transaction, 0, len(s.txs)+len(txs))
	next = append(next, s.txs...)
	next = append(next, txs...)
	s.txs = next

	return s.persistLocked(ctx)
}

// SetCategory updates one transaction's category by id and persists.
func (s *Store) SetCategory(ctx context.Context, id, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Transaction, len(s.txs))
	copy(next, s.txs)

	found := false
	for i := range next {
		if next[i].ID == id {
			next[i].Category = category
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.txs = next
	return s.persistLocked(ctx)
}

// ApplyUpdates merges categorization results into the list by id and
// persists. Ids absent from updates stay unchanged. Returns the number
// of transactions updated.
func (s *Store) ApplyUpdates(ctx context.Context, updates []domain.CategoryUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, n := domain.ApplyCategoryUpdates(s.txs, updates)
	if n == 0 {
		return 0, nil
	}

	s.txs = next
	if err := s.persistLocked(ctx); err != nil {
		return 0, err
	}
	return n, nil
}

// Replace installs a whole new transaction list and persists it.
func (s *Store) Replace(ctx context.Context, txs []domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txs = make([]domain.Transaction, len(txs))
	copy(s.txs, txs)
	return s.persistLocked(ctx)
}

// Reset reinstalls the seed data, discarding everything else.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txs = SeedTransactions()
	return s.persistLocked(ctx)
}

// persistLocked writes the current list to the kv store. Callers must
// hold the write lock.
func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.txs)
	if err != nil {
		return fmt.Errorf("store: marshal transactions: %w", err)
	}
	if err := s.kv.Set(ctx, transactionsKey, string(data)); err != nil {
		return fmt.Errorf("store: persist transactions: %w", err)
	}
	return nil
}
