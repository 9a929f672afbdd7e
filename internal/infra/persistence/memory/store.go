// Package memory provides the in-memory entity store that backs the state
// container: ordered home, donation and visit collections with transactional
// clone-and-swap mutation.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"havenlist/pkg/domain"
)

type (
	// ChildrensHome aliases domain.ChildrensHome.
	ChildrensHome = domain.ChildrensHome
	// Donation aliases domain.Donation.
	Donation = domain.Donation
	// Visit aliases domain.Visit.
	Visit = domain.Visit
	// Review aliases domain.Review.
	Review = domain.Review
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
)

type memoryState struct {
	homes     []ChildrensHome
	donations []Donation
	visits    []Visit
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Homes     []ChildrensHome `json:"homes"`
	Donations []Donation      `json:"donations"`
	Visits    []Visit         `json:"visits"`
}

func newMemoryState() memoryState {
	return memoryState{
		homes:     []ChildrensHome{},
		donations: []Donation{},
		visits:    []Visit{},
	}
}

func (s memoryState) clone() memoryState {
	cloned := memoryState{
		homes:     make([]ChildrensHome, 0, len(s.homes)),
		donations: make([]Donation, 0, len(s.donations)),
		visits:    make([]Visit, 0, len(s.visits)),
	}
	for _, h := range s.homes {
		cloned.homes = append(cloned.homes, cloneHome(h))
	}
	cloned.donations = append(cloned.donations, s.donations...)
	cloned.visits = append(cloned.visits, s.visits...)
	return cloned
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	c := state.clone()
	return Snapshot{Homes: c.homes, Donations: c.donations, Visits: c.visits}
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	return memoryState{homes: s.Homes, donations: s.Donations, visits: s.Visits}.clone()
}

// migrateSnapshot normalises snapshots decoded from older or hand-edited
// payloads: nil collections become empty and visits without a status are
// treated as pending.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	if snapshot.Homes == nil {
		snapshot.Homes = []ChildrensHome{}
	}
	if snapshot.Donations == nil {
		snapshot.Donations = []Donation{}
	}
	if snapshot.Visits == nil {
		snapshot.Visits = []Visit{}
	}
	for i := range snapshot.Homes {
		snapshot.Homes[i] = normalizeHome(snapshot.Homes[i])
	}
	for i, v := range snapshot.Visits {
		if v.Status == "" {
			v.Status = domain.VisitPending
			snapshot.Visits[i] = v
		}
	}
	return snapshot
}

func normalizeHome(h ChildrensHome) ChildrensHome {
	if h.Needs == nil {
		h.Needs = []string{}
	}
	if h.Reviews == nil {
		h.Reviews = []Review{}
	}
	return h
}

func cloneHome(h ChildrensHome) ChildrensHome {
	cp := h
	cp.Needs = append(make([]string, 0, len(h.Needs)), h.Needs...)
	cp.Reviews = append(make([]Review, 0, len(h.Reviews)), h.Reviews...)
	return cp
}

func indexOfHome(homes []ChildrensHome, id string) int {
	return slices.IndexFunc(homes, func(h ChildrensHome) bool { return h.ID == id })
}

// CommitHook runs against the transactional state after fn succeeds and
// before the state is swapped in. A non-nil error aborts the transaction.
type CommitHook func(ctx context.Context, view View, changes []Change) error

// Option configures a Store.
type Option func(*Store)

// WithCommitHook installs a hook invoked before every commit.
func WithCommitHook(hook CommitHook) Option {
	return func(s *Store) { s.beforeCommit = hook }
}

// Store provides an in-memory transactional store for the directory domain.
type Store struct {
	mu           sync.RWMutex
	state        memoryState
	beforeCommit CommitHook
}

// NewStore constructs a store holding a copy of the provided seed homes.
func NewStore(seed []ChildrensHome, opts ...Option) *Store {
	s := &Store{state: newMemoryState()}
	for _, opt := range opts {
		opt(s)
	}
	for _, h := range seed {
		s.state.homes = append(s.state.homes, normalizeHome(cloneHome(h)))
	}
	return s
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// Transaction represents a mutation set applied to the store state.
type Transaction struct {
	state   memoryState
	changes []Change
}

// View exposes read-only access to a consistent state.
type View interface {
	Homes() []ChildrensHome
	Donations() []Donation
	Visits() []Visit
	FindHome(id string) (ChildrensHome, bool)
}

type transactionView struct {
	state *memoryState
}

func (v transactionView) Homes() []ChildrensHome {
	out := make([]ChildrensHome, 0, len(v.state.homes))
	for _, h := range v.state.homes {
		out = append(out, cloneHome(h))
	}
	return out
}

func (v transactionView) Donations() []Donation {
	return append(make([]Donation, 0, len(v.state.donations)), v.state.donations...)
}

func (v transactionView) Visits() []Visit {
	return append(make([]Visit, 0, len(v.state.visits)), v.state.visits...)
}

func (v transactionView) FindHome(id string) (ChildrensHome, bool) {
	i := indexOfHome(v.state.homes, id)
	if i < 0 {
		return ChildrensHome{}, false
	}
	return cloneHome(v.state.homes[i]), true
}

// RunInTransaction executes fn within a transactional copy of the store state.
// The copy replaces the committed state only when fn and the commit hook both
// succeed. The committed changes are returned.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx *Transaction) error) ([]Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Transaction{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return nil, err
	}
	if s.beforeCommit != nil && len(tx.changes) > 0 {
		if err := s.beforeCommit(ctx, tx.Snapshot(), tx.changes); err != nil {
			return nil, err
		}
	}
	s.state = tx.state
	return tx.changes, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(View) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := s.state.clone()
	return fn(transactionView{state: &snapshot})
}

func (tx *Transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *Transaction) Snapshot() View {
	return transactionView{state: &tx.state}
}

// FindHome exposes home lookup within the transaction scope.
func (tx *Transaction) FindHome(id string) (ChildrensHome, bool) {
	return tx.Snapshot().FindHome(id)
}

// CreateHome appends a new home. The id must be set and unused.
func (tx *Transaction) CreateHome(h ChildrensHome) (ChildrensHome, error) {
	if h.ID == "" {
		return ChildrensHome{}, fmt.Errorf("home id required")
	}
	if indexOfHome(tx.state.homes, h.ID) >= 0 {
		return ChildrensHome{}, fmt.Errorf("home %q already exists", h.ID)
	}
	h = normalizeHome(cloneHome(h))
	tx.state.homes = append(tx.state.homes, h)
	tx.recordChange(Change{Entity: domain.EntityHome, Action: domain.ActionCreate, ID: h.ID, After: cloneHome(h)})
	return cloneHome(h), nil
}

// UpdateHome mutates the home matching id. It reports false, without
// recording a change, when no home matches.
func (tx *Transaction) UpdateHome(id string, mutator func(*ChildrensHome)) (ChildrensHome, bool) {
	i := indexOfHome(tx.state.homes, id)
	if i < 0 {
		return ChildrensHome{}, false
	}
	before := cloneHome(tx.state.homes[i])
	current := cloneHome(tx.state.homes[i])
	mutator(&current)
	current.ID = id
	current = normalizeHome(current)
	tx.state.homes[i] = current
	tx.recordChange(Change{Entity: domain.EntityHome, Action: domain.ActionUpdate, ID: id, Before: before, After: cloneHome(current)})
	return cloneHome(current), true
}

// DeleteHome removes the home matching id. Donations and visits that
// reference it are left in place.
func (tx *Transaction) DeleteHome(id string) (ChildrensHome, bool) {
	i := indexOfHome(tx.state.homes, id)
	if i < 0 {
		return ChildrensHome{}, false
	}
	removed := tx.state.homes[i]
	tx.state.homes = slices.Delete(tx.state.homes, i, i+1)
	tx.recordChange(Change{Entity: domain.EntityHome, Action: domain.ActionDelete, ID: id, Before: cloneHome(removed)})
	return removed, true
}

// CreateDonation appends a donation record.
func (tx *Transaction) CreateDonation(d Donation) (Donation, error) {
	if d.ID == "" {
		return Donation{}, fmt.Errorf("donation id required")
	}
	if slices.ContainsFunc(tx.state.donations, func(x Donation) bool { return x.ID == d.ID }) {
		return Donation{}, fmt.Errorf("donation %q already exists", d.ID)
	}
	tx.state.donations = append(tx.state.donations, d)
	tx.recordChange(Change{Entity: domain.EntityDonation, Action: domain.ActionCreate, ID: d.ID, After: d})
	return d, nil
}

// CreateVisit appends a visit record.
func (tx *Transaction) CreateVisit(v Visit) (Visit, error) {
	if v.ID == "" {
		return Visit{}, fmt.Errorf("visit id required")
	}
	if slices.ContainsFunc(tx.state.visits, func(x Visit) bool { return x.ID == v.ID }) {
		return Visit{}, fmt.Errorf("visit %q already exists", v.ID)
	}
	tx.state.visits = append(tx.state.visits, v)
	tx.recordChange(Change{Entity: domain.EntityVisit, Action: domain.ActionCreate, ID: v.ID, After: v})
	return v, nil
}

// AppendReview embeds a review into the home matching homeID.
func (tx *Transaction) AppendReview(homeID string, r Review) (Review, bool) {
	if _, ok := tx.UpdateHome(homeID, func(h *ChildrensHome) {
		h.Reviews = append(h.Reviews, r)
	}); !ok {
		return Review{}, false
	}
	tx.recordChange(Change{Entity: domain.EntityReview, Action: domain.ActionCreate, ID: r.ID, After: r})
	return r, true
}

// Read helpers ---------------------------------------------------------------

// GetHome retrieves a home by id from committed state.
func (s *Store) GetHome(id string) (ChildrensHome, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionView{state: &s.state}.FindHome(id)
}

// ListHomes returns all homes in insertion order.
func (s *Store) ListHomes() []ChildrensHome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionView{state: &s.state}.Homes()
}

// ListDonations returns all donations in insertion order.
func (s *Store) ListDonations() []Donation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionView{state: &s.state}.Donations()
}

// ListVisits returns all visits in insertion order.
func (s *Store) ListVisits() []Visit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionView{state: &s.state}.Visits()
}
