package domain

import "context"

// Slot names a durable storage unit holding one text-serialized collection.
type Slot string

// Durable slots known to the container.
const (
	SlotDonations Slot = "donations"
	SlotVisits    Slot = "visits"
	// SlotHomes is only read and written when PersistencePolicy.Homes is set.
	SlotHomes Slot = "homes"
)

// SlotStore is the durable-storage primitive behind the persistence adapter.
// Get reports found=false for a slot that was never written. Put overwrites
// the whole slot.
type SlotStore interface {
	Get(ctx context.Context, slot Slot) (payload []byte, found bool, err error)
	Put(ctx context.Context, slot Slot, payload []byte) error
	Close() error
}

// PersistencePolicy states which collections survive a reload. Donations and
// visits are always durable. Homes (with their embedded reviews) are durable
// only when Homes is true; otherwise they reset to the seed set on every load.
type PersistencePolicy struct {
	Homes bool
}

// Slots returns the durable slots covered by the policy, in load order.
func (p PersistencePolicy) Slots() []Slot {
	slots := []Slot{SlotDonations, SlotVisits}
	if p.Homes {
		slots = append(slots, SlotHomes)
	}
	return slots
}

// IDGenerator produces identifiers for newly created records.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() string

// NewID implements IDGenerator.
func (f IDGeneratorFunc) NewID() string { return f() }
