// Package replication publishes grid heat changes to remote viewers.
package replication

import (
	"sort"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/signature/components"
)

// HeatUpdate is the wire form of a grid's published heat.
type HeatUpdate struct {
	Grid       uint32  `json:"grid"`
	StoredHeat float32 `json:"stored_heat"`
	TotalHeat  float32 `json:"total_heat"`
}

// Batch groups the updates of one drain.
type Batch struct {
	Type    string       `json:"type"`
	Tick    int32        `json:"tick"`
	Updates []HeatUpdate `json:"updates"`
}

// Tracker collects grids marked dirty by the thermal system until drained.
// A grid marked twice between drains is sent once with its latest values.
type Tracker struct {
	mu      sync.Mutex
	ids     *ecs.Map[components.Identity]
	dirty   map[ecs.Entity]HeatUpdate
	drained int
}

// NewTracker creates a tracker that resolves grid IDs through Identity.
func NewTracker(w *ecs.World) *Tracker {
	return &Tracker{
		ids:   ecs.NewMap[components.Identity](w),
		dirty: make(map[ecs.Entity]HeatUpdate),
	}
}

// MarkDirty records the grid's latest heat.
func (t *Tracker) MarkDirty(grid ecs.Entity, sig components.ThermalSignature) {
	var id uint32
	if t.ids.Has(grid) {
		id = t.ids.Get(grid).ID
	}

	t.mu.Lock()
	t.dirty[grid] = HeatUpdate{Grid: id, StoredHeat: sig.StoredHeat, TotalHeat: sig.TotalHeat}
	t.mu.Unlock()
}

// Pending returns how many grids are waiting to be sent.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.dirty)
}

// Drained returns the total number of updates handed out by Drain.
func (t *Tracker) Drained() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.drained
}

// Drain returns the pending updates ordered by grid ID and clears the set.
func (t *Tracker) Drain() []HeatUpdate {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.dirty) == 0 {
		return nil
	}
	out := make([]HeatUpdate, 0, len(t.dirty))
	for _, u := range t.dirty {
		out = append(out, u)
	}
	clear(t.dirty)
	t.drained += len(out)

	sort.Slice(out, func(i, j int) bool { return out[i].Grid < out[j].Grid })
	return out
}
