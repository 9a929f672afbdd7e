package core

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"havenlist/internal/infra/slots/fs"
	slotsmemory "havenlist/internal/infra/slots/memory"
	"havenlist/internal/infra/slots/sqlite"
	"havenlist/internal/platform/config"
	"havenlist/pkg/domain"
)

func TestOpenSlotStoreDrivers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	mem, err := OpenSlotStore(ctx, config.Storage{Driver: config.StorageMemory})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := mem.(*slotsmemory.Store); !ok {
		t.Fatalf("expected memory store, got %T", mem)
	}

	fsStore, err := OpenSlotStore(ctx, config.Storage{Driver: config.StorageFS, FSRoot: filepath.Join(dir, "slots")})
	if err != nil {
		t.Fatalf("fs: %v", err)
	}
	if s, ok := fsStore.(*fs.Store); !ok || s.Root() != filepath.Join(dir, "slots") {
		t.Fatalf("unexpected fs store %T", fsStore)
	}

	path := filepath.Join(dir, "db", "custom.db")
	lite, err := OpenSlotStore(ctx, config.Storage{SQLitePath: path})
	if err != nil {
		t.Fatalf("default driver: %v", err)
	}
	defer func() { _ = lite.Close() }()
	if s, ok := lite.(*sqlite.Store); !ok || s.Path() != path {
		t.Fatalf("expected sqlite store at %s, got %T", path, lite)
	}

	if _, err := OpenSlotStore(ctx, config.Storage{Driver: "tape"}); err == nil || !strings.Contains(err.Error(), "unknown storage driver") {
		t.Fatalf("expected unknown driver error, got %v", err)
	}
}

func TestOpenFromConfigAppliesSettings(t *testing.T) {
	cfg := config.Config{
		Storage:          config.Storage{Driver: config.StorageSQLite, SQLitePath: filepath.Join(t.TempDir(), "haven.db")},
		IDStrategy:       config.IDSequence,
		PersistHomes:     true,
		MetricsNamespace: "havenlist_cfg",
	}
	reg := prometheus.NewRegistry()
	ctx := context.Background()
	c, err := OpenFromConfig(ctx, cfg, reg, WithClock(fixedClock()))
	if err != nil {
		t.Fatalf("open from config: %v", err)
	}
	d, err := c.AddDonation(ctx, domain.DonationFields{HomeID: "1"})
	if err != nil {
		t.Fatalf("add donation: %v", err)
	}
	if d.ID != "seq-1" {
		t.Fatalf("expected sequence id, got %s", d.ID)
	}
	if d.Date != "2024-01-02T03:04:05.006Z" {
		t.Fatalf("caller options should apply after config: %s", d.Date)
	}
	_ = c.Close()

	families, err := reg.Gather()
	if err != nil || len(families) == 0 {
		t.Fatalf("expected registered metrics, err=%v", err)
	}

	reopened, err := OpenFromConfig(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if h, _ := reopened.Home("1"); h.DonationCount != 46 {
		t.Fatalf("homes policy should persist counters, got %d", h.DonationCount)
	}
}

func TestOpenFromConfigRejectsDuplicateMetrics(t *testing.T) {
	cfg := config.Config{Storage: config.Storage{Driver: config.StorageMemory}, MetricsNamespace: "dup"}
	reg := prometheus.NewRegistry()
	c, err := OpenFromConfig(context.Background(), cfg, reg)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	defer func() { _ = c.Close() }()
	if _, err := OpenFromConfig(context.Background(), cfg, reg); err == nil {
		t.Fatalf("expected metrics registration error")
	}
}
