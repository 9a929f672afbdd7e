package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	slotsmemory "havenlist/internal/infra/slots/memory"
	"havenlist/pkg/domain"
)

var fixedNow = time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC)

func fixedClock() Clock { return ClockFunc(func() time.Time { return fixedNow }) }

// openTest opens a container over slots with deterministic ids and time.
func openTest(t *testing.T, slots domain.SlotStore, opts ...Option) *Container {
	t.Helper()
	if slots == nil {
		slots = slotsmemory.New()
	}
	base := []Option{WithClock(fixedClock()), WithIDGenerator(NewSequenceGenerator("t-"))}
	c, err := Open(context.Background(), slots, append(base, opts...)...)
	if err != nil {
		t.Fatalf("open container: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func mustHome(t *testing.T, c *Container, id string) domain.ChildrensHome {
	t.Helper()
	h, ok := c.Home(id)
	if !ok {
		t.Fatalf("home %s not found", id)
	}
	return h
}

func expectPanic(t *testing.T, want error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic %v", want)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, want) {
			t.Fatalf("expected panic %v, got %v", want, r)
		}
	}()
	fn()
}

type metricsCall struct {
	op      string
	success bool
}

type captureMetricsRecorder struct {
	mu    sync.Mutex
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, metricsCall{op: op, success: success})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

type captureLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *captureLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *captureLogger) Debug(msg string, args ...any) { l.add("debug", msg, args) }
func (l *captureLogger) Info(msg string, args ...any)  { l.add("info", msg, args) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.add("warn", msg, args) }
func (l *captureLogger) Error(msg string, args ...any) { l.add("error", msg, args) }

func (l *captureLogger) has(level, msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.level == level && e.msg == msg {
			return true
		}
	}
	return false
}

// failingSlots accepts reads and rejects every write.
type failingSlots struct {
	*slotsmemory.Store
	err error
}

func (f failingSlots) Put(context.Context, domain.Slot, []byte) error { return f.err }
