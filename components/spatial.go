package components

import "github.com/mlange-42/ark/ecs"

// MapID identifies the map an entity lives on.
// Distances are only defined between entities on the same map.
type MapID uint32

// Position represents an entity's world position.
type Position struct {
	X, Y float32
	Map  MapID
}

// Velocity represents an entity's velocity in world units per second.
type Velocity struct {
	X, Y float32
}

// Bounds is an axis-aligned extent used as the visual silhouette
// of a free-floating entity.
type Bounds struct {
	Width, Height float32
}

// Diagonal returns the Euclidean diagonal of the box.
func (b Bounds) Diagonal() float32 {
	return sqrt32(b.Width*b.Width + b.Height*b.Height)
}

// Grid marks a composite spatial unit (a ship or station).
// LocalAABB is the grid's extent in its own frame.
type Grid struct {
	LocalAABB Bounds
	Name      string
}

// Attached links a standalone entity to the grid it currently stands on.
// The zero entity means the entity floats free.
type Attached struct {
	Grid             ecs.Entity
	OffsetX, OffsetY float32 // Position relative to the grid origin
}

// Docked reports whether the entity is attached to a grid.
func (a Attached) Docked() bool {
	return !a.Grid.IsZero()
}
