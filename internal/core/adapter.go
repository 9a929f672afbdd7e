package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"havenlist/internal/infra/persistence/memory"
	"havenlist/pkg/domain"
)

// persistenceAdapter moves whole collections between the entity store and
// durable slots. Every write re-encodes the complete collection.
type persistenceAdapter struct {
	slots  domain.SlotStore
	policy domain.PersistencePolicy
	logger Logger
}

// load reads every slot covered by the policy. Missing or blank slots yield
// empty collections; homes is reported as not loaded so the caller keeps
// its seed set.
func (a *persistenceAdapter) load(ctx context.Context) (snapshot memory.Snapshot, homesLoaded bool, err error) {
	for _, slot := range a.policy.Slots() {
		payload, found, err := a.slots.Get(ctx, slot)
		if err != nil {
			return memory.Snapshot{}, false, fmt.Errorf("load slot %s: %w", slot, err)
		}
		if !found || len(bytes.TrimSpace(payload)) == 0 {
			a.logger.Debug("slot empty", "slot", slot)
			continue
		}
		var target any
		switch slot {
		case domain.SlotDonations:
			target = &snapshot.Donations
		case domain.SlotVisits:
			target = &snapshot.Visits
		case domain.SlotHomes:
			target = &snapshot.Homes
			homesLoaded = true
		default:
			continue
		}
		if err := json.Unmarshal(payload, target); err != nil {
			a.logger.Error("slot corrupt", "slot", slot, "error", err)
			return memory.Snapshot{}, false, &domain.SlotCorruptError{Slot: slot, Err: err}
		}
	}
	return snapshot, homesLoaded, nil
}

// dirtySlots maps committed changes to the durable slots they touch.
func (a *persistenceAdapter) dirtySlots(changes []domain.Change) []domain.Slot {
	var donations, visits, homes bool
	for _, ch := range changes {
		switch ch.Entity {
		case domain.EntityDonation:
			donations = true
		case domain.EntityVisit:
			visits = true
		case domain.EntityHome, domain.EntityReview:
			homes = a.policy.Homes
		}
	}
	var out []domain.Slot
	if donations {
		out = append(out, domain.SlotDonations)
	}
	if visits {
		out = append(out, domain.SlotVisits)
	}
	if homes {
		out = append(out, domain.SlotHomes)
	}
	return out
}

// commit is installed as the entity store's commit hook: it rewrites the
// touched slots from the transactional state before that state is swapped in.
func (a *persistenceAdapter) commit(ctx context.Context, view memory.View, changes []domain.Change) error {
	for _, slot := range a.dirtySlots(changes) {
		payload, err := encodeSlot(view, slot)
		if err != nil {
			return fmt.Errorf("encode slot %s: %w", slot, err)
		}
		if err := a.slots.Put(ctx, slot, payload); err != nil {
			a.logger.Error("slot write failed", "slot", slot, "error", err)
			return fmt.Errorf("persist slot %s: %w", slot, err)
		}
		a.logger.Debug("slot written", "slot", slot, "bytes", len(payload))
	}
	return nil
}

func encodeSlot(view memory.View, slot domain.Slot) ([]byte, error) {
	switch slot {
	case domain.SlotDonations:
		return json.Marshal(view.Donations())
	case domain.SlotVisits:
		return json.Marshal(view.Visits())
	case domain.SlotHomes:
		return json.Marshal(view.Homes())
	default:
		return nil, fmt.Errorf("unknown slot %s", slot)
	}
}
