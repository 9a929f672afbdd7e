// Package core implements the havenlist state container: the entity store,
// the mutation API that keeps derived counters in step, the persistence
// adapter and the accessor handed to the presentation layer.
package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"havenlist/internal/core/seed"
	"havenlist/internal/infra/persistence/memory"
	"havenlist/pkg/domain"
)

var _ Accessor = (*Container)(nil)

// Container owns the directory state for one application session. Construct
// it with Open and release it with Close.
type Container struct {
	store   *memory.Store
	adapter *persistenceAdapter
	ids     domain.IDGenerator
	clock   Clock
	logger  Logger
	metrics MetricsRecorder
	tracer  trace.Tracer
	closed  atomic.Bool

	// commitMu orders commit and notification across goroutines.
	commitMu sync.Mutex

	subsMu  sync.Mutex
	subs    map[int]func(domain.Change)
	nextSub int
}

// Open builds a container over slots: the seed homes are installed, then
// donations and visits (and homes, when the policy says so) are loaded from
// their durable slots. The container takes ownership of slots and closes it
// on Close.
func Open(ctx context.Context, slots domain.SlotStore, opts ...Option) (*Container, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !o.seeded {
		homes, err := seed.Homes()
		if err != nil {
			return nil, err
		}
		o.seed = homes
	}

	adapter := &persistenceAdapter{slots: slots, policy: o.policy, logger: o.logger}
	snapshot, homesLoaded, err := adapter.load(ctx)
	if err != nil {
		return nil, err
	}
	if !homesLoaded {
		snapshot.Homes = o.seed
	}

	store := memory.NewStore(nil, memory.WithCommitHook(adapter.commit))
	store.ImportState(snapshot)

	c := &Container{
		store:   store,
		adapter: adapter,
		ids:     o.ids,
		clock:   o.clock,
		logger:  o.logger,
		metrics: o.metrics,
		tracer:  o.tracer,
		subs:    make(map[int]func(domain.Change)),
	}
	c.observeLoadedIDs()
	c.logger.Info("container opened",
		"homes", len(c.store.ListHomes()),
		"donations", len(c.store.ListDonations()),
		"visits", len(c.store.ListVisits()),
		"persist_homes", o.policy.Homes)
	return c, nil
}

// observeLoadedIDs lets stateful id generators skip ids already in use.
func (c *Container) observeLoadedIDs() {
	obs, ok := c.ids.(interface{ Observe(id string) })
	if !ok {
		return
	}
	snap := c.store.ExportState()
	for _, h := range snap.Homes {
		obs.Observe(h.ID)
		for _, r := range h.Reviews {
			obs.Observe(r.ID)
		}
	}
	for _, d := range snap.Donations {
		obs.Observe(d.ID)
	}
	for _, v := range snap.Visits {
		obs.Observe(v.ID)
	}
}

// Close ends the container's lifecycle and closes its slot store. Further
// use of the container panics with domain.ErrContainerClosed.
func (c *Container) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.logger.Info("container closed")
	return c.adapter.slots.Close()
}

func (c *Container) mustBeOpen() {
	if c == nil {
		panic(domain.ErrNoContainer)
	}
	if c.closed.Load() {
		panic(domain.ErrContainerClosed)
	}
}

// Subscribe registers fn to receive every committed change, in commit
// order, after the state is visible to readers. Delivery happens while
// commits are held, so fn must not mutate the container. The returned
// function removes the subscription.
func (c *Container) Subscribe(fn func(domain.Change)) (unsubscribe func()) {
	c.mustBeOpen()
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.subsMu.Lock()
		defer c.subsMu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Container) notify(changes []domain.Change) {
	if len(changes) == 0 {
		return
	}
	c.subsMu.Lock()
	fns := make([]func(domain.Change), 0, len(c.subs))
	for i := 0; i < c.nextSub; i++ {
		if fn, ok := c.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	c.subsMu.Unlock()
	for _, ch := range changes {
		for _, fn := range fns {
			fn(ch)
		}
	}
}

// mutate runs fn in a store transaction wrapped with tracing, metrics and
// change notification.
func (c *Container) mutate(ctx context.Context, op string, fn func(tx *memory.Transaction) error) error {
	c.mustBeOpen()
	c.commitMu.Lock()
	defer c.commitMu.Unlock()
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "havenlist."+op)
	changes, err := c.store.RunInTransaction(ctx, fn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("mutation failed", "operation", op, "error", err)
	} else {
		span.SetAttributes(attribute.Int("havenlist.changes", len(changes)))
	}
	span.End()
	c.metrics.Observe(ctx, op, err == nil, time.Since(start))
	if err != nil {
		return err
	}
	c.notify(changes)
	return nil
}

// Homes returns a copy of the homes collection in insertion order.
func (c *Container) Homes() []domain.ChildrensHome {
	c.mustBeOpen()
	return c.store.ListHomes()
}

// Donations returns a copy of the donations collection in insertion order.
func (c *Container) Donations() []domain.Donation {
	c.mustBeOpen()
	return c.store.ListDonations()
}

// Visits returns a copy of the visits collection in insertion order.
func (c *Container) Visits() []domain.Visit {
	c.mustBeOpen()
	return c.store.ListVisits()
}

// Home looks up a single home.
func (c *Container) Home(id string) (domain.ChildrensHome, bool) {
	c.mustBeOpen()
	return c.store.GetHome(id)
}

// DonationsForHome returns the donations whose HomeID is id, never nil.
func (c *Container) DonationsForHome(id string) []domain.Donation {
	c.mustBeOpen()
	out := []domain.Donation{}
	_ = c.store.View(context.Background(), func(v memory.View) error {
		for _, d := range v.Donations() {
			if d.HomeID == id {
				out = append(out, d)
			}
		}
		return nil
	})
	return out
}

// VisitsForHome returns the visits whose HomeID is id, never nil.
func (c *Container) VisitsForHome(id string) []domain.Visit {
	c.mustBeOpen()
	out := []domain.Visit{}
	_ = c.store.View(context.Background(), func(v memory.View) error {
		for _, visit := range v.Visits() {
			if visit.HomeID == id {
				out = append(out, visit)
			}
		}
		return nil
	})
	return out
}

// AddHome appends a new home built from f with a fresh id, zero counters and
// no reviews.
func (c *Container) AddHome(ctx context.Context, f domain.HomeFields) (domain.ChildrensHome, error) {
	c.mustBeOpen()
	home := domain.ChildrensHome{
		ID:              c.ids.NewID(),
		Name:            f.Name,
		Location:        f.Location,
		Description:     f.Description,
		Needs:           append([]string{}, f.Needs...),
		Image:           f.Image,
		ContactInfo:     f.ContactInfo,
		VisitationHours: f.VisitationHours,
		DonationCount:   0,
		VisitCount:      0,
		Reviews:         []domain.Review{},
	}
	var created domain.ChildrensHome
	err := c.mutate(ctx, "add_home", func(tx *memory.Transaction) error {
		var err error
		created, err = tx.CreateHome(home)
		return err
	})
	if err != nil {
		return domain.ChildrensHome{}, err
	}
	c.logger.Debug("home added", "home_id", created.ID)
	return created, nil
}

// UpdateHome shallow-merges patch onto the home matching id. It reports
// whether a home matched; no match is not an error.
func (c *Container) UpdateHome(ctx context.Context, id string, patch domain.HomePatch) (bool, error) {
	var matched bool
	err := c.mutate(ctx, "update_home", func(tx *memory.Transaction) error {
		_, matched = tx.UpdateHome(id, patch.Apply)
		return nil
	})
	if err != nil {
		return false, err
	}
	c.logger.Debug("home updated", "home_id", id, "matched", matched)
	return matched, nil
}

// DeleteHome removes the home matching id. Donations, visits and reviews
// referencing it are not touched.
func (c *Container) DeleteHome(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := c.mutate(ctx, "delete_home", func(tx *memory.Transaction) error {
		_, removed = tx.DeleteHome(id)
		return nil
	})
	if err != nil {
		return false, err
	}
	c.logger.Debug("home deleted", "home_id", id, "matched", removed)
	return removed, nil
}

// AddDonation records a donation, rewrites the donations slot and bumps the
// matching home's DonationCount. A donation for an unknown home is still
// recorded.
func (c *Container) AddDonation(ctx context.Context, f domain.DonationFields) (domain.Donation, error) {
	c.mustBeOpen()
	donation := domain.Donation{
		ID:         c.ids.NewID(),
		HomeID:     f.HomeID,
		Date:       domain.FormatDate(c.clock.Now()),
		Amount:     f.Amount,
		Currency:   f.Currency,
		DonorName:  f.DonorName,
		DonorEmail: f.DonorEmail,
		Message:    f.Message,
		Anonymous:  f.Anonymous,
	}
	var counted bool
	err := c.mutate(ctx, "add_donation", func(tx *memory.Transaction) error {
		if _, err := tx.CreateDonation(donation); err != nil {
			return err
		}
		if home, ok := tx.FindHome(f.HomeID); ok {
			next := home.DonationCount + 1
			_, counted = tx.UpdateHome(home.ID, domain.HomePatch{DonationCount: &next}.Apply)
		}
		return nil
	})
	if err != nil {
		return domain.Donation{}, err
	}
	c.logger.Debug("donation recorded", "donation_id", donation.ID, "home_id", f.HomeID, "counted", counted)
	return donation, nil
}

// AddVisit records a pending visit, rewrites the visits slot and bumps the
// matching home's VisitCount.
func (c *Container) AddVisit(ctx context.Context, f domain.VisitFields) (domain.Visit, error) {
	c.mustBeOpen()
	visit := domain.Visit{
		ID:           c.ids.NewID(),
		HomeID:       f.HomeID,
		Status:       domain.VisitPending,
		VisitorName:  f.VisitorName,
		VisitorEmail: f.VisitorEmail,
		VisitorPhone: f.VisitorPhone,
		ScheduledFor: f.ScheduledFor,
		GroupSize:    f.GroupSize,
		Purpose:      f.Purpose,
	}
	var counted bool
	err := c.mutate(ctx, "add_visit", func(tx *memory.Transaction) error {
		if _, err := tx.CreateVisit(visit); err != nil {
			return err
		}
		if home, ok := tx.FindHome(f.HomeID); ok {
			next := home.VisitCount + 1
			_, counted = tx.UpdateHome(home.ID, domain.HomePatch{VisitCount: &next}.Apply)
		}
		return nil
	})
	if err != nil {
		return domain.Visit{}, err
	}
	c.logger.Debug("visit scheduled", "visit_id", visit.ID, "home_id", f.HomeID, "counted", counted)
	return visit, nil
}

// AddReview appends a review to the home matching homeID. The bool reports
// whether a home matched; when it did not, nothing is stored and the
// returned review is zero.
func (c *Container) AddReview(ctx context.Context, homeID string, f domain.ReviewFields) (domain.Review, bool, error) {
	c.mustBeOpen()
	review := domain.Review{
		ID:           c.ids.NewID(),
		Date:         domain.FormatDate(c.clock.Now()),
		Rating:       f.Rating,
		Comment:      f.Comment,
		ReviewerName: f.ReviewerName,
	}
	var attached bool
	err := c.mutate(ctx, "add_review", func(tx *memory.Transaction) error {
		_, attached = tx.AppendReview(homeID, review)
		return nil
	})
	if err != nil {
		return domain.Review{}, false, err
	}
	if !attached {
		c.logger.Debug("review dropped", "home_id", homeID)
		return domain.Review{}, false, nil
	}
	c.logger.Debug("review added", "review_id", review.ID, "home_id", homeID)
	return review, true, nil
}
