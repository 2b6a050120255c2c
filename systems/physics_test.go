package systems

import (
	"testing"

	"github.com/pthm-cable/signature/components"
)

func TestPhysics_MovesAndBounces(t *testing.T) {
	tw := newTestWorld()
	e := tw.spawnAt(95, 50)
	tw.vel.Add(e, &components.Velocity{X: 10, Y: 0})

	ps := NewPhysicsSystem(tw.w, Bounds{Width: 100, Height: 100})
	ps.Update(1)

	pos := tw.pos.Get(e)
	vel := tw.vel.Get(e)
	if !approxEqual(pos.X, 95, 1e-5) {
		t.Errorf("X after bounce = %f, want 95", pos.X)
	}
	if vel.X != -10 {
		t.Errorf("velocity X after bounce = %f, want -10", vel.X)
	}
}

func TestPhysics_CrewRidesGrid(t *testing.T) {
	tw := newTestWorld()
	grid := tw.spawnGrid(10, 10, 20, 20)
	tw.vel.Add(grid, &components.Velocity{X: 5, Y: 0})

	crew := tw.spawnAt(0, 0)
	tw.vel.Add(crew, &components.Velocity{X: 100, Y: 100})
	tw.attached.Add(crew, &components.Attached{Grid: grid, OffsetX: 2, OffsetY: -3})

	ps := NewPhysicsSystem(tw.w, Bounds{Width: 1000, Height: 1000})
	ps.Update(2)

	pos := tw.pos.Get(crew)
	if !approxEqual(pos.X, 22, 1e-5) || !approxEqual(pos.Y, 7, 1e-5) {
		t.Errorf("crew position = (%f, %f), want (22, 7)", pos.X, pos.Y)
	}
}
