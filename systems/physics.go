package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/signature/components"
)

// Bounds represents the simulation bounds.
type Bounds struct {
	Width, Height float32
}

// PhysicsSystem moves free entities and keeps attached entities on their grid.
type PhysicsSystem struct {
	world    *ecs.World
	movers   *ecs.Filter2[components.Position, components.Velocity]
	riders   *ecs.Filter2[components.Position, components.Attached]
	posMap   *ecs.Map[components.Position]
	attached *ecs.Map[components.Attached]
	bounds   Bounds
}

// NewPhysicsSystem creates a new physics system.
func NewPhysicsSystem(w *ecs.World, bounds Bounds) *PhysicsSystem {
	return &PhysicsSystem{
		world:    w,
		movers:   ecs.NewFilter2[components.Position, components.Velocity](w),
		riders:   ecs.NewFilter2[components.Position, components.Attached](w),
		posMap:   ecs.NewMap[components.Position](w),
		attached: ecs.NewMap[components.Attached](w),
		bounds:   bounds,
	}
}

// Update integrates velocities over dt seconds.
func (s *PhysicsSystem) Update(dt float32) {
	query := s.movers.Query()
	for query.Next() {
		e := query.Entity()
		pos, vel := query.Get()

		// Docked entities ride their grid instead
		if s.attached.Has(e) && s.attached.Get(e).Docked() {
			continue
		}

		pos.X += vel.X * dt
		pos.Y += vel.Y * dt

		// Walls bounce
		if pos.X < 0 {
			pos.X = -pos.X
			vel.X = -vel.X
		} else if pos.X > s.bounds.Width {
			pos.X = 2*s.bounds.Width - pos.X
			vel.X = -vel.X
		}
		if pos.Y < 0 {
			pos.Y = -pos.Y
			vel.Y = -vel.Y
		} else if pos.Y > s.bounds.Height {
			pos.Y = 2*s.bounds.Height - pos.Y
			vel.Y = -vel.Y
		}
	}

	riders := s.riders.Query()
	for riders.Next() {
		pos, att := riders.Get()
		if !att.Docked() || !s.world.Alive(att.Grid) || !s.posMap.Has(att.Grid) {
			continue
		}
		grid := s.posMap.Get(att.Grid)
		pos.X = grid.X + att.OffsetX
		pos.Y = grid.Y + att.OffsetY
		pos.Map = grid.Map
	}
}
