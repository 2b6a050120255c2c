// Package components defines ECS components for the simulation.
package components

import "math"

// Kind distinguishes the spawned entity archetypes.
type Kind uint8

const (
	KindGrid     Kind = iota // Composite spatial unit
	KindCrew                 // Entity standing on a grid
	KindDrifter              // Free-floating entity
	KindObserver             // Entity performing detection queries
)

// String returns the display name of the kind.
func (k Kind) String() string {
	switch k {
	case KindGrid:
		return "grid"
	case KindCrew:
		return "crew"
	case KindDrifter:
		return "drifter"
	case KindObserver:
		return "observer"
	default:
		return "unknown"
	}
}

// Identity holds a stable, human-facing ID and archetype.
type Identity struct {
	ID   uint32
	Kind Kind
}

// PowerSupplier is a generator whose output radiates heat.
type PowerSupplier struct {
	CurrentSupply      float32 // Power currently supplied
	HeatSignatureRatio float32 // Heat rate per unit of supply
}

// Thruster radiates heat only while firing.
type Thruster struct {
	Thrust             float32 // Force produced while firing
	Firing             bool
	BurnRemaining      float32 // Seconds left in the current burn
	HeatSignatureRatio float32 // Heat rate per unit of thrust
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
