package seed

import "testing"

func TestHomes(t *testing.T) {
	homes, err := Homes()
	if err != nil {
		t.Fatalf("decode seed: %v", err)
	}
	if len(homes) != 6 {
		t.Fatalf("expected 6 seed homes, got %d", len(homes))
	}
	for i, h := range homes {
		if h.ID == "" || h.Name == "" || len(h.Needs) == 0 {
			t.Fatalf("seed home %d incomplete: %+v", i, h)
		}
		if h.Reviews == nil || len(h.Reviews) != 0 {
			t.Fatalf("seed home %s should have an empty review list", h.ID)
		}
	}
	if homes[0].ID != "1" || homes[0].DonationCount != 45 {
		t.Fatalf("unexpected first seed home %+v", homes[0])
	}
	if homes[2].ID != "3" || homes[2].VisitCount != 15 {
		t.Fatalf("unexpected third seed home %+v", homes[2])
	}
}

func TestHomesReturnsFreshCopies(t *testing.T) {
	a := MustHomes()
	a[0].Name = "changed"
	b := MustHomes()
	if b[0].Name == "changed" {
		t.Fatalf("seed table shared between calls")
	}
}
