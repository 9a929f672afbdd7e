// Package slottest holds the behavioural contract every domain.SlotStore
// backend must satisfy.
package slottest

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"havenlist/pkg/domain"
)

// Run exercises store against the slot contract. The store must start empty.
func Run(t *testing.T, store domain.SlotStore) {
	t.Helper()
	ctx := context.Background()

	if _, found, err := store.Get(ctx, domain.SlotDonations); err != nil || found {
		t.Fatalf("empty store: found=%v err=%v", found, err)
	}

	first := []byte(`[{"id":"d1","homeId":"1","date":"2024-01-02T03:04:05.006Z","amount":10}]`)
	if err := store.Put(ctx, domain.SlotDonations, first); err != nil {
		t.Fatalf("put donations: %v", err)
	}
	got, found, err := store.Get(ctx, domain.SlotDonations)
	if err != nil || !found {
		t.Fatalf("get donations: found=%v err=%v", found, err)
	}
	assertJSONEqual(t, first, got)

	second := []byte(`[]`)
	if err := store.Put(ctx, domain.SlotDonations, second); err != nil {
		t.Fatalf("overwrite donations: %v", err)
	}
	got, _, _ = store.Get(ctx, domain.SlotDonations)
	assertJSONEqual(t, second, got)

	visits := []byte(`[{"id":"v1","homeId":"3","status":"pending"}]`)
	if err := store.Put(ctx, domain.SlotVisits, visits); err != nil {
		t.Fatalf("put visits: %v", err)
	}
	got, _, _ = store.Get(ctx, domain.SlotVisits)
	assertJSONEqual(t, visits, got)
	got, _, _ = store.Get(ctx, domain.SlotDonations)
	assertJSONEqual(t, second, got)
}

// assertJSONEqual compares payloads as decoded JSON; JSONB columns keep
// neither the original formatting nor key order.
func assertJSONEqual(t *testing.T, want, got []byte) {
	t.Helper()
	var w, g any
	if err := json.Unmarshal(want, &w); err != nil {
		t.Fatalf("decode expected payload: %v", err)
	}
	if err := json.Unmarshal(got, &g); err != nil {
		t.Fatalf("decode stored payload %q: %v", got, err)
	}
	if !reflect.DeepEqual(w, g) {
		t.Fatalf("payload mismatch:\nwant %s\ngot  %s", want, got)
	}
}
