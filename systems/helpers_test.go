package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/signature/components"
)

// testWorld bundles a world with the mappers tests need to build scenes.
type testWorld struct {
	w        *ecs.World
	pos      *ecs.Map[components.Position]
	grid     *ecs.Map[components.Grid]
	sig      *ecs.Map[components.ThermalSignature]
	attached *ecs.Map[components.Attached]
	bounds   *ecs.Map[components.Bounds]
	power    *ecs.Map[components.PowerSupplier]
	thruster *ecs.Map[components.Thruster]
	vel      *ecs.Map[components.Velocity]
}

func newTestWorld() *testWorld {
	world := ecs.NewWorld()
	w := &world
	return &testWorld{
		w:        w,
		pos:      ecs.NewMap[components.Position](w),
		grid:     ecs.NewMap[components.Grid](w),
		sig:      ecs.NewMap[components.ThermalSignature](w),
		attached: ecs.NewMap[components.Attached](w),
		bounds:   ecs.NewMap[components.Bounds](w),
		power:    ecs.NewMap[components.PowerSupplier](w),
		thruster: ecs.NewMap[components.Thruster](w),
		vel:      ecs.NewMap[components.Velocity](w),
	}
}

func (tw *testWorld) spawnGrid(x, y, width, height float32) ecs.Entity {
	e := tw.pos.NewEntity(&components.Position{X: x, Y: y})
	tw.grid.Add(e, &components.Grid{LocalAABB: components.Bounds{Width: width, Height: height}})
	return e
}

func (tw *testWorld) spawnAt(x, y float32) ecs.Entity {
	return tw.pos.NewEntity(&components.Position{X: x, Y: y})
}

func (tw *testWorld) setHeat(e ecs.Entity, stored, dissipation float32) {
	sig := components.ThermalSignature{StoredHeat: stored, HeatDissipation: dissipation}
	if tw.sig.Has(e) {
		*tw.sig.Get(e) = sig
		return
	}
	tw.sig.Add(e, &sig)
}

func (tw *testWorld) attach(e, grid ecs.Entity) {
	tw.attached.Add(e, &components.Attached{Grid: grid})
}

// recordingSink captures MarkDirty calls.
type recordingSink struct {
	marked map[ecs.Entity]components.ThermalSignature
	calls  int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{marked: make(map[ecs.Entity]components.ThermalSignature)}
}

func (r *recordingSink) MarkDirty(grid ecs.Entity, sig components.ThermalSignature) {
	r.marked[grid] = sig
	r.calls++
}

func (r *recordingSink) reset() {
	clear(r.marked)
	r.calls = 0
}

func approxEqual(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) <= float64(eps)
}
