package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"havenlist/internal/infra/slots/slottest"
	"havenlist/pkg/domain"
)

func TestContract(t *testing.T) {
	s, err := NewStore(context.Background(), filepath.Join(t.TempDir(), "slots.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = s.Close() }()
	slottest.Run(t, s)
}

func TestInMemoryDatabase(t *testing.T) {
	s, err := NewStore(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = s.Close() }()
	slottest.Run(t, s)
	if s.Path() != ":memory:" {
		t.Fatalf("unexpected path %s", s.Path())
	}
}

func TestReopenKeepsSlotsAndMigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "slots.db")
	s, err := NewStore(ctx, path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.Put(ctx, domain.SlotVisits, []byte(`[{"id":"v1"}]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	_ = s.Close()

	reopened, err := NewStore(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	got, found, err := reopened.Get(ctx, domain.SlotVisits)
	if err != nil || !found || string(got) != `[{"id":"v1"}]` {
		t.Fatalf("slot lost across reopen: %s found=%v err=%v", got, found, err)
	}
}

func TestEntries(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(ctx, ":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = s.Close() }()
	_ = s.Put(ctx, domain.SlotVisits, []byte(`[]`))
	_ = s.Put(ctx, domain.SlotDonations, []byte(`[{"id":"d"}]`))

	entries, err := s.Entries(ctx)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "donations" || entries[1].Name != "visits" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if entries[0].Size != len(`[{"id":"d"}]`) || entries[0].UpdatedAt == "" {
		t.Fatalf("unexpected donations entry %+v", entries[0])
	}
	if s.DB() == nil {
		t.Fatalf("expected underlying db handle")
	}
}
