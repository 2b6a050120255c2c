package game

import (
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/signature/components"
)

// spawnInitialPopulation creates grids with their crew, drifters and observers.
func (g *Game) spawnInitialPopulation() {
	pop := g.cfg.Population
	for i := 0; i < pop.Grids; i++ {
		grid := g.spawnGrid(g.randomPosition())
		for j := 0; j < pop.CrewPerGrid; j++ {
			g.spawnCrew(grid)
		}
	}
	for i := 0; i < pop.Drifters; i++ {
		g.spawnDrifter(g.randomPosition())
	}
	for i := 0; i < pop.Observers; i++ {
		g.spawnObserver(g.randomPosition())
	}
}

func (g *Game) allocID() uint32 {
	id := g.nextID
	g.nextID++
	return id
}

func (g *Game) randomPosition() components.Position {
	return components.Position{
		X: g.rng.Float32() * g.cfg.Derived.WorldW32,
		Y: g.rng.Float32() * g.cfg.Derived.WorldH32,
	}
}

func (g *Game) randomVelocity() components.Velocity {
	speed := g.rng.Float32() * float32(g.cfg.Population.MaxSpeed)
	heading := g.rng.Float64() * 2 * math.Pi
	return components.Velocity{
		X: speed * float32(math.Cos(heading)),
		Y: speed * float32(math.Sin(heading)),
	}
}

func (g *Game) randomSize() float32 {
	pop := g.cfg.Population
	return float32(pop.MinGridSize + g.rng.Float64()*(pop.MaxGridSize-pop.MinGridSize))
}

func (g *Game) newThruster() *components.Thruster {
	return &components.Thruster{
		Thrust:             g.rng.Float32() * float32(g.cfg.Population.MaxThrust),
		HeatSignatureRatio: float32(g.cfg.Emitters.Thruster.HeatSignatureRatio),
	}
}

// spawnGrid creates a moving grid with a thruster.
func (g *Game) spawnGrid(pos components.Position) ecs.Entity {
	id := g.allocID()
	vel := g.randomVelocity()

	e := g.posMap.NewEntity(&pos)
	g.velMap.Add(e, &vel)
	g.gridMap.Add(e, &components.Grid{
		LocalAABB: components.Bounds{Width: g.randomSize(), Height: g.randomSize()},
		Name:      fmt.Sprintf("Grid-%02d", id),
	})
	g.idMap.Add(e, &components.Identity{ID: id, Kind: components.KindGrid})
	g.thrusterMap.Add(e, g.newThruster())

	g.numGrids++
	return e
}

// spawnCrew docks a generator-carrying crew member somewhere on the grid.
func (g *Game) spawnCrew(grid ecs.Entity) ecs.Entity {
	extent := g.gridMap.Get(grid).LocalAABB
	gridPos := *g.posMap.Get(grid)

	att := components.Attached{
		Grid:    grid,
		OffsetX: (g.rng.Float32() - 0.5) * extent.Width,
		OffsetY: (g.rng.Float32() - 0.5) * extent.Height,
	}
	pos := components.Position{X: gridPos.X + att.OffsetX, Y: gridPos.Y + att.OffsetY, Map: gridPos.Map}

	e := g.posMap.NewEntity(&pos)
	g.attachedMap.Add(e, &att)
	g.powerMap.Add(e, &components.PowerSupplier{
		CurrentSupply:      g.rng.Float32() * float32(g.cfg.Population.MaxSupply),
		HeatSignatureRatio: float32(g.cfg.Emitters.Power.HeatSignatureRatio),
	})
	g.idMap.Add(e, &components.Identity{ID: g.allocID(), Kind: components.KindCrew})

	g.numCrew++
	return e
}

// spawnDrifter creates a free-floating entity with its own silhouette and thruster.
func (g *Game) spawnDrifter(pos components.Position) ecs.Entity {
	size := g.randomSize() / 4
	vel := g.randomVelocity()

	e := g.posMap.NewEntity(&pos)
	g.velMap.Add(e, &vel)
	g.boundsMap.Add(e, &components.Bounds{Width: size, Height: size})
	g.thrusterMap.Add(e, g.newThruster())
	g.idMap.Add(e, &components.Identity{ID: g.allocID(), Kind: components.KindDrifter})

	g.numDrifters++
	return e
}

// spawnObserver places a stationary observer.
func (g *Game) spawnObserver(pos components.Position) ecs.Entity {
	e := g.posMap.NewEntity(&pos)
	g.idMap.Add(e, &components.Identity{ID: g.allocID(), Kind: components.KindObserver})
	g.observers = append(g.observers, e)
	return e
}
