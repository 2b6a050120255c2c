package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/signature/components"
)

// Emitter reports how much heat an entity radiates per second over the
// given interval. Entities the emitter knows nothing about return 0.
type Emitter interface {
	HeatRate(e ecs.Entity, interval float32) float32
}

// EmitterFunc adapts a plain function to the Emitter interface.
type EmitterFunc func(e ecs.Entity, interval float32) float32

// HeatRate calls f.
func (f EmitterFunc) HeatRate(e ecs.Entity, interval float32) float32 {
	return f(e, interval)
}

// SourceLister is implemented by emitters that can enumerate the entities
// they radiate from, so the thermal system can give those entities state
// before their first pass.
type SourceLister interface {
	Sources(fn func(e ecs.Entity))
}

// PowerEmitter radiates heat proportional to a generator's current supply.
type PowerEmitter struct {
	filter *ecs.Filter1[components.PowerSupplier]
	supply *ecs.Map[components.PowerSupplier]
}

// NewPowerEmitter creates a power emitter for the world.
func NewPowerEmitter(w *ecs.World) *PowerEmitter {
	return &PowerEmitter{
		filter: ecs.NewFilter1[components.PowerSupplier](w),
		supply: ecs.NewMap[components.PowerSupplier](w),
	}
}

// HeatRate returns CurrentSupply * HeatSignatureRatio.
func (p *PowerEmitter) HeatRate(e ecs.Entity, _ float32) float32 {
	if !p.supply.Has(e) {
		return 0
	}
	s := p.supply.Get(e)
	return s.CurrentSupply * s.HeatSignatureRatio
}

// Sources visits every entity with a power supplier.
func (p *PowerEmitter) Sources(fn func(e ecs.Entity)) {
	query := p.filter.Query()
	for query.Next() {
		fn(query.Entity())
	}
}

// ThrusterEmitter radiates heat while a thruster is firing.
type ThrusterEmitter struct {
	filter    *ecs.Filter1[components.Thruster]
	thrusters *ecs.Map[components.Thruster]
}

// NewThrusterEmitter creates a thruster emitter for the world.
func NewThrusterEmitter(w *ecs.World) *ThrusterEmitter {
	return &ThrusterEmitter{
		filter:    ecs.NewFilter1[components.Thruster](w),
		thrusters: ecs.NewMap[components.Thruster](w),
	}
}

// HeatRate returns Thrust * HeatSignatureRatio while firing, 0 otherwise.
func (t *ThrusterEmitter) HeatRate(e ecs.Entity, _ float32) float32 {
	if !t.thrusters.Has(e) {
		return 0
	}
	th := t.thrusters.Get(e)
	if !th.Firing {
		return 0
	}
	return th.Thrust * th.HeatSignatureRatio
}

// Sources visits every entity with a thruster.
func (t *ThrusterEmitter) Sources(fn func(e ecs.Entity)) {
	query := t.filter.Query()
	for query.Next() {
		fn(query.Entity())
	}
}
