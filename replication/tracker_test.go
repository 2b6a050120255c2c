package replication

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/signature/components"
)

func newGrid(w *ecs.World, id uint32) ecs.Entity {
	ids := ecs.NewMap[components.Identity](w)
	return ids.NewEntity(&components.Identity{ID: id, Kind: components.KindGrid})
}

func TestTracker_CoalescesMarks(t *testing.T) {
	world := ecs.NewWorld()
	w := &world
	tr := NewTracker(w)

	a := newGrid(w, 7)
	b := newGrid(w, 3)

	tr.MarkDirty(a, components.ThermalSignature{StoredHeat: 1, TotalHeat: 2})
	tr.MarkDirty(b, components.ThermalSignature{StoredHeat: 5, TotalHeat: 5})
	tr.MarkDirty(a, components.ThermalSignature{StoredHeat: 1, TotalHeat: 9})

	if got := tr.Pending(); got != 2 {
		t.Fatalf("Pending = %d, want 2", got)
	}

	updates := tr.Drain()
	if len(updates) != 2 {
		t.Fatalf("Drain returned %d updates, want 2", len(updates))
	}
	if updates[0].Grid != 3 || updates[1].Grid != 7 {
		t.Errorf("updates not ordered by grid ID: %+v", updates)
	}
	if updates[1].TotalHeat != 9 {
		t.Errorf("latest mark should win, got TotalHeat %f", updates[1].TotalHeat)
	}

	if tr.Pending() != 0 {
		t.Error("Drain should clear pending set")
	}
	if tr.Drain() != nil {
		t.Error("second Drain should be empty")
	}
	if tr.Drained() != 2 {
		t.Errorf("Drained = %d, want 2", tr.Drained())
	}
}

func TestTracker_UnknownIdentity(t *testing.T) {
	world := ecs.NewWorld()
	w := &world
	tr := NewTracker(w)

	pos := ecs.NewMap[components.Position](w)
	e := pos.NewEntity(&components.Position{})
	tr.MarkDirty(e, components.ThermalSignature{TotalHeat: 4})

	updates := tr.Drain()
	if len(updates) != 1 || updates[0].Grid != 0 {
		t.Errorf("expected one update with zero ID, got %+v", updates)
	}
}
