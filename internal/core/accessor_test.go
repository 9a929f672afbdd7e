package core

import (
	"context"
	"errors"
	"testing"

	slotsmemory "havenlist/internal/infra/slots/memory"
	"havenlist/pkg/domain"
)

func TestAccessorFromPanicsOutsideScope(t *testing.T) {
	expectPanic(t, domain.ErrNoContainer, func() { AccessorFrom(context.Background()) })
	expectPanic(t, domain.ErrNoContainer, func() { AccessorFrom(WithAccessor(context.Background(), nil)) })
}

func TestClosedContainerPanics(t *testing.T) {
	c := openTest(t, nil)
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}
	ctx := context.Background()
	expectPanic(t, domain.ErrContainerClosed, func() { c.Homes() })
	expectPanic(t, domain.ErrContainerClosed, func() { _, _ = c.AddDonation(ctx, domain.DonationFields{HomeID: "1"}) })
	expectPanic(t, domain.ErrContainerClosed, func() { _, _ = c.UpdateHome(ctx, "1", domain.HomePatch{}) })
	expectPanic(t, domain.ErrContainerClosed, func() { c.Subscribe(func(domain.Change) {}) })
}

func TestNilContainerPanicsWithUsageError(t *testing.T) {
	var c *Container
	expectPanic(t, domain.ErrNoContainer, func() { c.Visits() })
}

func TestProvideScopesContainer(t *testing.T) {
	slots := slotsmemory.New()
	var leaked Accessor
	err := Provide(context.Background(), slots, func(ctx context.Context) error {
		a := AccessorFrom(ctx)
		leaked = a
		if _, err := a.AddDonation(ctx, domain.DonationFields{HomeID: "6", Amount: 1}); err != nil {
			return err
		}
		if len(a.Donations()) != 1 {
			t.Fatalf("expected one donation inside scope")
		}
		return nil
	}, WithClock(fixedClock()))
	if err != nil {
		t.Fatalf("provide: %v", err)
	}
	expectPanic(t, domain.ErrContainerClosed, func() { leaked.Homes() })
	if _, found, _ := slots.Get(context.Background(), domain.SlotDonations); !found {
		t.Fatalf("donation should be durable after scope ends")
	}
}

func TestProvideReturnsCallbackError(t *testing.T) {
	boom := errors.New("render failed")
	err := Provide(context.Background(), slotsmemory.New(), func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
}

func TestProvideReportsOpenFailure(t *testing.T) {
	slots := slotsmemory.New()
	_ = slots.Put(context.Background(), domain.SlotVisits, []byte(`nope`))
	called := false
	err := Provide(context.Background(), slots, func(context.Context) error { called = true; return nil })
	var corrupt *domain.SlotCorruptError
	if !errors.As(err, &corrupt) || called {
		t.Fatalf("expected open failure before callback, got err=%v called=%v", err, called)
	}
}
