package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/kv"
	"github.com/dvloznov/finance-dashboard/internal/logger"
)

func newTestStore(t *testing.T) (*Store, kv.Store) {
	t.Helper()

	kvs := kv.NewMemoryStore()
	s := New(kvs, logger.New())
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return s, kvs
}

func TestLoadSeedsWhenEmpty(t *testing.T) {
	s, kvs := newTestStore(t)

	if s.Count() == 0 {
		t.Fatal("expected seed transactions, got empty store")
	}

	raw, ok, err := kvs.Get(context.Background(), transactionsKey)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("expected seed data to be persisted")
	}

	var persisted []domain.Transaction
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		t.Fatalf("persisted blob does not decode: %v", err)
	}
	if len(persisted) != s.Count() {
		t.Errorf("persisted %d transactions, store has %d", len(persisted), s.Count())
	}
}

func TestLoadSeedsWhenCorrupt(t *testing.T) {
	ctx := context.Background()
	kvs := kv.NewMemoryStore()
	if err := kvs.Set(ctx, transactionsKey, "{not json"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	s := New(kvs, logger.New())
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Count() == 0 {
		t.Fatal("expected seed transactions after corrupt blob")
	}

	raw, _, err := kvs.Get(ctx, transactionsKey)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	var persisted []domain.Transaction
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		t.Errorf("corrupt blob was not replaced: %v", err)
	}
}

func TestLoadReadsPersisted(t *testing.T) {
	ctx := context.Background()
	kvs := kv.NewMemoryStore()

	want := []domain.Transaction{
		{
			ID:          "tx-1",
			Date:        civil.Date{Year: 2025, Month: time.March, Day: 15},
			Description: "Coffee Shop",
			Amount:      6.50,
			Type:        domain.TypeExpense,
			Category:    domain.CategoryUncategorized,
		},
	}
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if err := kvs.Set(ctx, transactionsKey, string(data)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	s := New(kvs, logger.New())
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := s.List()
	if len(got) != 1 {
		t.Fatalf("List() returned %d transactions, want 1", len(got))
	}
	if got[0] != want[0] {
		t.Errorf("List()[0] = %+v, want %+v", got[0], want[0])
	}
}

func TestAppendPersists(t *testing.T) {
	ctx := context.Background()
	s, kvs := newTestStore(t)
	before := s.Count()

	added := []domain.Transaction{
		{
			ID:          "tx-new",
			Date:        civil.DateOf(time.Now()),
			Description: "Bookstore",
			Amount:      24.99,
			Type:        domain.TypeExpense,
			Category:    domain.CategoryUncategorized,
		},
	}
	if err := s.Append(ctx, added); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if s.Count() != before+1 {
		t.Errorf("Count() = %d, want %d", s.Count(), before+1)
	}

	// A second store over the same kv sees the change.
	s2 := New(kvs, logger.New())
	if err := s2.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := s2.Get("tx-new"); !ok {
		t.Error("appended transaction not visible after reload")
	}
}

func TestAppendEmptyIsNoop(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	before := s.Count()

	if err := s.Append(ctx, nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if s.Count() != before {
		t.Errorf("Count() = %d, want %d", s.Count(), before)
	}
}

func TestSetCategory(t *testing.T) {
	ctx := context.Background()
	s, kvs := newTestStore(t)

	id := s.List()[0].ID
	if err := s.SetCategory(ctx, id, "Travel"); err != nil {
		t.Fatalf("SetCategory() error = %v", err)
	}

	got, ok := s.Get(id)
	if !ok {
		t.Fatalf("Get(%q) missing", id)
	}
	if got.Category != "Travel" {
		t.Errorf("Category = %q, want %q", got.Category, "Travel")
	}

	s2 := New(kvs, logger.New())
	if err := s2.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got2, _ := s2.Get(id)
	if got2.Category != "Travel" {
		t.Errorf("persisted Category = %q, want %q", got2.Category, "Travel")
	}
}

func TestSetCategoryNotFound(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.SetCategory(context.Background(), "no-such-id", "Travel")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("SetCategory() error = %v, want ErrNotFound", err)
	}
}

func TestApplyUpdates(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	id := s.List()[0].ID
	updates := []domain.CategoryUpdate{
		{ID: id, Category: "Food & Dining", IsAnomaly: true},
		{ID: "ghost", Category: "Travel"},
	}

	n, err := s.ApplyUpdates(ctx, updates)
	if err != nil {
		t.Fatalf("ApplyUpdates() error = %v", err)
	}
	if n != 1 {
		t.Errorf("ApplyUpdates() = %d, want 1", n)
	}

	got, _ := s.Get(id)
	if got.Category != "Food & Dining" || !got.IsAnomaly {
		t.Errorf("transaction after update = %+v", got)
	}
}

func TestApplyUpdatesNoMatches(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	before := s.List()

	n, err := s.ApplyUpdates(ctx, []domain.CategoryUpdate{{ID: "ghost", Category: "Travel"}})
	if err != nil {
		t.Fatalf("ApplyUpdates() error = %v", err)
	}
	if n != 0 {
		t.Errorf("ApplyUpdates() = %d, want 0", n)
	}

	after := s.List()
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("transaction %d changed: %+v != %+v", i, before[i], after[i])
		}
	}
}

func TestReplace(t *testing.T) {
	ctx := context.Background()
	s, kvs := newTestStore(t)

	want := []domain.Transaction{
		{ID: "tx-only", Description: "Only One", Amount: 1, Type: domain.TypeExpense},
	}
	if err := s.Replace(ctx, want); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if s.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", s.Count())
	}

	s2 := New(kvs, logger.New())
	if err := s2.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s2.Count() != 1 {
		t.Errorf("reloaded Count() = %d, want 1", s2.Count())
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	if err := s.Append(ctx, []domain.Transaction{{ID: "tx-extra", Description: "Extra", Type: domain.TypeExpense}}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if _, ok := s.Get("tx-extra"); ok {
		t.Error("Reset() kept an appended transaction")
	}
	if s.Count() != len(SeedTransactions()) {
		t.Errorf("Count() = %d, want %d", s.Count(), len(SeedTransactions()))
	}
}

func TestListReturnsCopy(t *testing.T) {
	s, _ := newTestStore(t)

	list := s.List()
	list[0].Description = "mutated"

	if s.List()[0].Description == "mutated" {
		t.Error("List() exposed internal state")
	}
}
