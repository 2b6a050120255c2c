// Package systems provides ECS systems for the simulation.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/signature/components"
)

// Neighbor holds a nearby entity with precomputed spatial data.
type Neighbor struct {
	E      ecs.Entity
	DX, DY float32 // Delta from query origin
	DistSq float32 // Squared distance (avoid sqrt in hot path)
}

// SpatialIndex provides O(1) neighbor lookups using a cell-based grid.
// The world is bounded; positions outside it are clamped into edge cells.
type SpatialIndex struct {
	cellSize float32
	cols     int
	rows     int
	cells    [][]ecs.Entity // flat grid of entity lists
}

// NewSpatialIndex creates a spatial index covering the given world size.
func NewSpatialIndex(width, height, cellSize float32) *SpatialIndex {
	if cellSize <= 0 {
		cellSize = 64
	}
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]ecs.Entity, cols*rows)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 8) // pre-allocate small capacity
	}

	return &SpatialIndex{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all entities from the index.
func (g *SpatialIndex) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity to the index at the given position.
func (g *SpatialIndex) Insert(e ecs.Entity, x, y float32) {
	idx := g.cellIndex(g.clampCol(int(x/g.cellSize)), g.clampRow(int(y/g.cellSize)))
	g.cells[idx] = append(g.cells[idx], e)
}

// MaxQueryResults caps the number of neighbors returned by spatial queries.
// This prevents density spikes from causing unbounded work.
const MaxQueryResults = 256

// QueryRadiusInto finds entities on origin's map within radius and appends
// them to dst (up to MaxQueryResults). Reuse dst across calls to avoid allocations.
func (g *SpatialIndex) QueryRadiusInto(dst []Neighbor, origin components.Position, radius float32, exclude ecs.Entity, posMap *ecs.Map[components.Position]) []Neighbor {
	return g.QueryRadiusLimit(dst, origin, radius, exclude, posMap, MaxQueryResults)
}

// QueryRadiusLimit is QueryRadiusInto with an explicit cap on len(dst).
// A limit <= 0 returns every match.
func (g *SpatialIndex) QueryRadiusLimit(dst []Neighbor, origin components.Position, radius float32, exclude ecs.Entity, posMap *ecs.Map[components.Position], limit int) []Neighbor {
	minCol := g.clampCol(int((origin.X - radius) / g.cellSize))
	maxCol := g.clampCol(int((origin.X + radius) / g.cellSize))
	minRow := g.clampRow(int((origin.Y - radius) / g.cellSize))
	maxRow := g.clampRow(int((origin.Y + radius) / g.cellSize))

	radiusSq := radius * radius

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			for _, e := range g.cells[g.cellIndex(col, row)] {
				if e == exclude || !posMap.Has(e) {
					continue
				}

				pos := posMap.Get(e)
				if pos.Map != origin.Map {
					continue
				}

				dx := pos.X - origin.X
				dy := pos.Y - origin.Y
				distSq := dx*dx + dy*dy

				if distSq <= radiusSq {
					dst = append(dst, Neighbor{E: e, DX: dx, DY: dy, DistSq: distSq})
					if limit > 0 && len(dst) >= limit {
						return dst
					}
				}
			}
		}
	}

	return dst
}

func (g *SpatialIndex) cellIndex(col, row int) int {
	return row*g.cols + col
}

func (g *SpatialIndex) clampCol(col int) int {
	if col < 0 {
		return 0
	}
	if col >= g.cols {
		return g.cols - 1
	}
	return col
}

func (g *SpatialIndex) clampRow(row int) int {
	if row < 0 {
		return 0
	}
	if row >= g.rows {
		return g.rows - 1
	}
	return row
}
