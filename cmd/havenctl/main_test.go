package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"havenlist/internal/platform/config"
	"havenlist/pkg/domain"
)

func withConfig(t *testing.T, cfg config.Config, err error) {
	t.Helper()
	prev := loadEnv
	loadEnv = func() (config.Config, error) { return cfg, err }
	t.Cleanup(func() { loadEnv = prev })
}

func fsConfig(t *testing.T) config.Config {
	return config.Config{
		Storage:          config.Storage{Driver: config.StorageFS, FSRoot: filepath.Join(t.TempDir(), "slots")},
		Log:              config.Log{Level: "error"},
		IDStrategy:       config.IDSequence,
		MetricsNamespace: "havenctl_test",
	}
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := cli(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestDonateThenListAcrossInvocations(t *testing.T) {
	withConfig(t, fsConfig(t), nil)

	code, out, errOut := runCLI(t, "donate", "-home", "1", "-amount", "10", "-donor", "Amina")
	if code != 0 {
		t.Fatalf("donate exit %d: %s", code, errOut)
	}
	var d domain.Donation
	if err := json.Unmarshal([]byte(out), &d); err != nil {
		t.Fatalf("decode donation: %v", err)
	}
	if d.HomeID != "1" || d.Amount != 10 || d.ID != "seq-1" {
		t.Fatalf("unexpected donation %+v", d)
	}

	code, out, _ = runCLI(t, "donations", "-home", "1")
	if code != 0 {
		t.Fatalf("donations exit %d", code)
	}
	var list []domain.Donation
	if err := json.Unmarshal([]byte(out), &list); err != nil || len(list) != 1 {
		t.Fatalf("expected one persisted donation, got %s (%v)", out, err)
	}

	code, out, _ = runCLI(t, "donate", "-home", "2")
	if code != 0 || !strings.Contains(out, `"seq-2"`) {
		t.Fatalf("second session should continue the sequence: %s", out)
	}
}

func TestVisitAndHomeDetail(t *testing.T) {
	withConfig(t, fsConfig(t), nil)
	if code, _, errOut := runCLI(t, "visit", "-home", "3", "-when", "2024-01-01"); code != 0 {
		t.Fatalf("visit exit %d: %s", code, errOut)
	}
	code, out, _ := runCLI(t, "home", "-id", "3")
	if code != 0 {
		t.Fatalf("home exit %d", code)
	}
	var detail struct {
		Home      domain.ChildrensHome `json:"home"`
		Donations []domain.Donation    `json:"donations"`
		Visits    []domain.Visit       `json:"visits"`
	}
	if err := json.Unmarshal([]byte(out), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(detail.Visits) != 1 || detail.Visits[0].Status != domain.VisitPending || detail.Donations == nil || !strings.Contains(out, `"donations": []`) {
		t.Fatalf("unexpected detail %+v", detail)
	}
	// homes reset every session under the default policy
	if detail.Home.VisitCount != 15 {
		t.Fatalf("visitCount = %d want seed value 15", detail.Home.VisitCount)
	}
	if code, _, _ := runCLI(t, "home", "-id", "nope"); code != 1 {
		t.Fatalf("missing home should exit 1")
	}
}

func TestHomeMutations(t *testing.T) {
	cfg := fsConfig(t)
	cfg.PersistHomes = true
	withConfig(t, cfg, nil)

	code, out, _ := runCLI(t, "add-home", "-name", "Nakuru Light", "-needs", "Books, Shoes,")
	if code != 0 {
		t.Fatalf("add-home exit %d", code)
	}
	var h domain.ChildrensHome
	_ = json.Unmarshal([]byte(out), &h)
	if len(h.Needs) != 2 || h.DonationCount != 0 {
		t.Fatalf("unexpected home %+v", h)
	}

	if code, out, _ = runCLI(t, "update-home", "-id", h.ID, "-location", "Nakuru"); code != 0 || !strings.Contains(out, `"matched": true`) {
		t.Fatalf("update-home: %d %s", code, out)
	}
	if code, out, _ = runCLI(t, "review", "-home", h.ID, "-rating", "5"); code != 0 || !strings.Contains(out, `"attached": true`) {
		t.Fatalf("review: %d %s", code, out)
	}
	if code, out, _ = runCLI(t, "review", "-home", "nope", "-rating", "1"); code != 0 || strings.Contains(out, `"review"`) {
		t.Fatalf("review for missing home should report attached=false only: %d %s", code, out)
	}
	code, out, _ = runCLI(t, "homes")
	var homes []domain.ChildrensHome
	if err := json.Unmarshal([]byte(out), &homes); err != nil || code != 0 {
		t.Fatalf("homes: %d %v", code, err)
	}
	last := homes[len(homes)-1]
	if last.Location != "Nakuru" || len(last.Reviews) != 1 {
		t.Fatalf("home changes not persisted: %+v", last)
	}
	if code, out, _ = runCLI(t, "delete-home", "-id", h.ID); code != 0 || !strings.Contains(out, `"removed": true`) {
		t.Fatalf("delete-home: %d %s", code, out)
	}
}

func TestUsageErrors(t *testing.T) {
	withConfig(t, fsConfig(t), nil)
	if code, _, errOut := runCLI(t); code != 2 || !strings.Contains(errOut, "usage") {
		t.Fatalf("no args: %d %s", code, errOut)
	}
	if code, _, errOut := runCLI(t, "explode"); code != 2 || !strings.Contains(errOut, "unknown command") {
		t.Fatalf("unknown command: %d %s", code, errOut)
	}
	if code, _, _ := runCLI(t, "donate", "-amount", "lots"); code != 2 {
		t.Fatalf("bad flag should exit 2")
	}
}

func TestConfigErrorExitsOne(t *testing.T) {
	withConfig(t, config.Config{}, errors.New("bad env"))
	if code, _, errOut := runCLI(t, "homes"); code != 1 || !strings.Contains(errOut, "bad env") {
		t.Fatalf("config error: %d %s", code, errOut)
	}
}

func TestMetricsFlag(t *testing.T) {
	withConfig(t, fsConfig(t), nil)
	code, _, errOut := runCLI(t, "-metrics", "visit", "-home", "1")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(errOut, `havenctl_test_operations_total{operation="add_visit",status="success"} 1`) {
		t.Fatalf("metrics not printed: %s", errOut)
	}
}
