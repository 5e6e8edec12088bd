package domain

import (
	"testing"
	"time"
)

func TestArchiveToggle(t *testing.T) {
	var e Equipment
	if e.IsArchived() {
		t.Fatal("new entity should be active")
	}
	at := time.Date(2025, 3, 14, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	if !e.SoftDelete(at) {
		t.Fatal("first archive should report a change")
	}
	if !e.IsArchived() || !e.DeletedAt.Equal(at) || e.DeletedAt.Location() != time.UTC {
		t.Fatalf("unexpected deleted_at %v", e.DeletedAt)
	}
	if e.SoftDelete(at.Add(time.Hour)) {
		t.Fatal("second archive should be a no-op")
	}
	if !e.DeletedAt.Equal(at) {
		t.Fatal("no-op archive moved the timestamp")
	}
	if !e.Restore() || e.IsArchived() {
		t.Fatal("restore should clear the mark")
	}
	if e.Restore() {
		t.Fatal("restoring an active entity should be a no-op")
	}
}

func TestMovementSigned(t *testing.T) {
	inc, dec := Increase, Decrease
	cases := []struct {
		m    Movement
		want int
	}{
		{Movement{Type: MovementAddition, Quantity: 3}, -3},
		{Movement{Type: MovementReturn, Quantity: 2}, 2},
		{Movement{Type: MovementAdjustment, Quantity: 4, Direction: &inc}, 4},
		{Movement{Type: MovementAdjustment, Quantity: 4, Direction: &dec}, -4},
		{Movement{Type: "bogus", Quantity: 9}, 0},
	}
	for _, c := range cases {
		if got := c.m.Signed(); got != c.want {
			t.Errorf("%s %v: got %d, want %d", c.m.Type, c.m.Direction, got, c.want)
		}
	}
}

func TestAssignmentQuantities(t *testing.T) {
	a := Assignment{Quantity: 5, ReturnedQuantity: 2}
	if a.Outstanding() != 3 || a.Closed() {
		t.Fatalf("partial return: outstanding %d closed %v", a.Outstanding(), a.Closed())
	}
	a.ReturnedQuantity = 5
	if a.Outstanding() != 0 || !a.Closed() {
		t.Fatal("full return should close the assignment")
	}
	if !MovementReturn.Valid() || MovementType("transfer").Valid() {
		t.Fatal("movement type validation")
	}
	if (&User{Role: RoleUser}).IsAdmin() || !(&User{Role: RoleAdmin}).IsAdmin() {
		t.Fatal("role check")
	}
}
