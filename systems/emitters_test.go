package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/signature/components"
)

func TestPowerEmitter_HeatRate(t *testing.T) {
	tw := newTestWorld()
	gen := tw.spawnAt(0, 0)
	tw.power.Add(gen, &components.PowerSupplier{CurrentSupply: 2000, HeatSignatureRatio: 0.01})
	plain := tw.spawnAt(0, 0)

	em := NewPowerEmitter(tw.w)
	if got := em.HeatRate(gen, 0.5); !approxEqual(got, 20, 1e-4) {
		t.Errorf("HeatRate = %f, want 20", got)
	}
	if got := em.HeatRate(plain, 0.5); got != 0 {
		t.Errorf("HeatRate without supplier = %f, want 0", got)
	}
}

func TestThrusterEmitter_OnlyWhileFiring(t *testing.T) {
	tw := newTestWorld()
	e := tw.spawnAt(0, 0)
	tw.thruster.Add(e, &components.Thruster{Thrust: 300, HeatSignatureRatio: 0.1})

	em := NewThrusterEmitter(tw.w)
	if got := em.HeatRate(e, 0.5); got != 0 {
		t.Errorf("idle thruster HeatRate = %f, want 0", got)
	}

	tw.thruster.Get(e).Firing = true
	if got := em.HeatRate(e, 0.5); !approxEqual(got, 30, 1e-4) {
		t.Errorf("firing thruster HeatRate = %f, want 30", got)
	}
}

func TestEmitters_ListSources(t *testing.T) {
	tw := newTestWorld()
	a := tw.spawnAt(0, 0)
	b := tw.spawnAt(1, 1)
	tw.power.Add(a, &components.PowerSupplier{})
	tw.thruster.Add(a, &components.Thruster{})
	tw.thruster.Add(b, &components.Thruster{})

	count := func(l SourceLister) map[ecs.Entity]bool {
		seen := make(map[ecs.Entity]bool)
		l.Sources(func(e ecs.Entity) { seen[e] = true })
		return seen
	}

	power := count(NewPowerEmitter(tw.w))
	if len(power) != 1 || !power[a] {
		t.Errorf("power sources = %v, want only a", power)
	}
	thrusters := count(NewThrusterEmitter(tw.w))
	if len(thrusters) != 2 || !thrusters[a] || !thrusters[b] {
		t.Errorf("thruster sources = %v, want a and b", thrusters)
	}
}

func TestThermal_SharedSourceGetsOneState(t *testing.T) {
	tw := newTestWorld()
	e := tw.spawnAt(0, 0)
	tw.power.Add(e, &components.PowerSupplier{CurrentSupply: 10, HeatSignatureRatio: 1})
	tw.thruster.Add(e, &components.Thruster{Thrust: 10, Firing: true, HeatSignatureRatio: 1})

	ts := newTestThermal(tw, nil)
	ts.Register(NewPowerEmitter(tw.w))
	ts.Register(NewThrusterEmitter(tw.w))
	ts.Pass()

	// (10 + 10) * 0.5 * 0.6^0.5
	want := 10 * pow32(0.6, 0.5)
	if got := tw.sig.Get(e).StoredHeat; !approxEqual(got, want, 1e-4) {
		t.Errorf("StoredHeat = %f, want %f", got, want)
	}
}
