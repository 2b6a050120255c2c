package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/signature/components"
)

// ThrusterSystem schedules burns: an idle thruster ignites with a fixed
// per-second chance and burns for a fixed duration.
type ThrusterSystem struct {
	filter       *ecs.Filter1[components.Thruster]
	rng          *rand.Rand
	fireChance   float32
	fireDuration float32
}

// NewThrusterSystem creates a thruster scheduler.
func NewThrusterSystem(w *ecs.World, rng *rand.Rand, fireChance, fireDuration float32) *ThrusterSystem {
	return &ThrusterSystem{
		filter:       ecs.NewFilter1[components.Thruster](w),
		rng:          rng,
		fireChance:   fireChance,
		fireDuration: fireDuration,
	}
}

// Update advances every thruster by dt seconds.
func (s *ThrusterSystem) Update(dt float32) {
	query := s.filter.Query()
	for query.Next() {
		UpdateThruster(query.Get(), s.rng.Float32(), s.fireChance, s.fireDuration, dt)
	}
}

// UpdateThruster advances one thruster. roll is a uniform sample in [0,1).
func UpdateThruster(th *components.Thruster, roll, fireChance, fireDuration, dt float32) {
	if th.Firing {
		th.BurnRemaining -= dt
		if th.BurnRemaining <= 0 {
			th.BurnRemaining = 0
			th.Firing = false
		}
		return
	}
	if roll < fireChance*dt {
		th.Firing = true
		th.BurnRemaining = fireDuration
	}
}
