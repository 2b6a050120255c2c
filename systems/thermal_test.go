package systems

import (
	"math"
	"testing"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/signature/components"
)

func newTestThermal(tw *testWorld, sink SyncSink) *ThermalSystem {
	return NewThermalSystem(tw.w, ThermalOptions{
		Interval:          500 * time.Millisecond,
		GridDissipation:   0.8,
		EntityDissipation: 0.6,
		Sink:              sink,
	})
}

// constantEmitter emits a fixed rate for a fixed set of entities.
func constantEmitter(rates map[ecs.Entity]float32) EmitterFunc {
	return func(e ecs.Entity, _ float32) float32 {
		return rates[e]
	}
}

// ---------- Lazy state ----------

func TestThermal_GridGetsStateOnFirstPass(t *testing.T) {
	tw := newTestWorld()
	grid := tw.spawnGrid(0, 0, 10, 10)
	ts := newTestThermal(tw, nil)

	if tw.sig.Has(grid) {
		t.Fatal("grid should start without thermal state")
	}

	ts.Pass()

	if !tw.sig.Has(grid) {
		t.Fatal("expected grid to receive thermal state on first pass")
	}
	sig := tw.sig.Get(grid)
	if sig.HeatDissipation != 0.8 {
		t.Errorf("grid dissipation = %f, want 0.8", sig.HeatDissipation)
	}
	if sig.StoredHeat != 0 || sig.TotalHeat != 0 {
		t.Errorf("new grid state should be zero, got stored=%f total=%f", sig.StoredHeat, sig.TotalHeat)
	}
}

func TestThermal_EmitterSourceGetsState(t *testing.T) {
	tw := newTestWorld()
	drifter := tw.spawnAt(5, 5)
	tw.power.Add(drifter, &components.PowerSupplier{CurrentSupply: 100, HeatSignatureRatio: 0.1})

	ts := newTestThermal(tw, nil)
	ts.Register(NewPowerEmitter(tw.w))
	ts.Pass()

	if !tw.sig.Has(drifter) {
		t.Fatal("expected power source to receive thermal state")
	}
	sig := tw.sig.Get(drifter)
	if sig.HeatDissipation != 0.6 {
		t.Errorf("entity dissipation = %f, want 0.6", sig.HeatDissipation)
	}
	if sig.StoredHeat <= 0 {
		t.Errorf("expected stored heat after first pass, got %f", sig.StoredHeat)
	}
}

func TestThermal_EntityWithNothingIsSkipped(t *testing.T) {
	tw := newTestWorld()
	bare := tw.spawnAt(1, 1)
	ts := newTestThermal(tw, nil)
	ts.Register(NewPowerEmitter(tw.w))
	ts.Register(NewThrusterEmitter(tw.w))

	ts.Pass()

	if tw.sig.Has(bare) {
		t.Error("entity with no state and no emitters should not gain state")
	}
	if ts.TotalHeat(bare) != 0 {
		t.Errorf("TotalHeat of stateless entity = %f, want 0", ts.TotalHeat(bare))
	}
}

func TestThermal_TotalHeatReadDoesNotCreateState(t *testing.T) {
	tw := newTestWorld()
	e := tw.spawnAt(0, 0)
	ts := newTestThermal(tw, nil)

	if got := ts.TotalHeat(e); got != 0 {
		t.Errorf("TotalHeat = %f, want 0", got)
	}
	if tw.sig.Has(e) {
		t.Error("TotalHeat must not add state")
	}

	sig := ts.EnsureSignature(e)
	if sig == nil || !tw.sig.Has(e) {
		t.Fatal("EnsureSignature should add state")
	}
	if sig.HeatDissipation != 0.6 {
		t.Errorf("EnsureSignature dissipation = %f, want entity default 0.6", sig.HeatDissipation)
	}
}

// ---------- Integration and decay ----------

func TestThermal_IntegrateThenDecay(t *testing.T) {
	tw := newTestWorld()
	e := tw.spawnAt(0, 0)
	tw.setHeat(e, 0, 0.5)

	ts := newTestThermal(tw, nil)
	ts.Register(constantEmitter(map[ecs.Entity]float32{e: 10}))
	ts.Pass()

	// stored = (0 + 10*0.5) * 0.5^0.5
	want := float32(5 * math.Sqrt(0.5))
	sig := tw.sig.Get(e)
	if !approxEqual(sig.StoredHeat, want, 1e-4) {
		t.Errorf("StoredHeat = %f, want %f", sig.StoredHeat, want)
	}
	if sig.TotalHeat != sig.StoredHeat {
		t.Errorf("standalone TotalHeat (%f) should equal StoredHeat (%f)", sig.TotalHeat, sig.StoredHeat)
	}
}

func TestThermal_DecayToZero(t *testing.T) {
	tw := newTestWorld()
	e := tw.spawnAt(0, 0)
	tw.setHeat(e, 1000, 0.3)

	ts := newTestThermal(tw, nil)

	prev := tw.sig.Get(e).StoredHeat
	for i := 0; i < 200; i++ {
		ts.Pass()
		cur := tw.sig.Get(e).StoredHeat
		if cur < 0 {
			t.Fatalf("pass %d: stored heat went negative: %f", i, cur)
		}
		if cur > prev {
			t.Fatalf("pass %d: stored heat increased from %f to %f", i, prev, cur)
		}
		prev = cur
	}
	if prev > 1e-3 {
		t.Errorf("expected heat to approach zero, got %f", prev)
	}
}

func TestThermal_NoDecayAtDissipationOne(t *testing.T) {
	tw := newTestWorld()
	e := tw.spawnAt(0, 0)
	tw.setHeat(e, 42, 1)

	ts := newTestThermal(tw, nil)
	for i := 0; i < 10; i++ {
		ts.Pass()
	}
	if got := tw.sig.Get(e).StoredHeat; got != 42 {
		t.Errorf("StoredHeat = %f, want 42 with dissipation 1", got)
	}
}

func TestThermal_NegativeContributionsIgnored(t *testing.T) {
	tw := newTestWorld()
	e := tw.spawnAt(0, 0)
	tw.setHeat(e, 10, 1)

	ts := newTestThermal(tw, nil)
	ts.Register(constantEmitter(map[ecs.Entity]float32{e: -100}))
	ts.Register(constantEmitter(map[ecs.Entity]float32{e: 4}))
	ts.Pass()

	// Only the positive emitter counts: 10 + 4*0.5
	if got := tw.sig.Get(e).StoredHeat; !approxEqual(got, 12, 1e-5) {
		t.Errorf("StoredHeat = %f, want 12", got)
	}
}

func TestThermal_EmitterOrderDoesNotMatter(t *testing.T) {
	run := func(reverse bool) float32 {
		tw := newTestWorld()
		e := tw.spawnAt(0, 0)
		tw.setHeat(e, 3, 0.9)
		a := constantEmitter(map[ecs.Entity]float32{e: 7})
		b := constantEmitter(map[ecs.Entity]float32{e: 11})

		ts := newTestThermal(tw, nil)
		if reverse {
			ts.Register(b)
			ts.Register(a)
		} else {
			ts.Register(a)
			ts.Register(b)
		}
		for i := 0; i < 5; i++ {
			ts.Pass()
		}
		return tw.sig.Get(e).StoredHeat
	}

	if fwd, rev := run(false), run(true); !approxEqual(fwd, rev, 1e-5) {
		t.Errorf("emitter order changed result: %f vs %f", fwd, rev)
	}
}

func TestThermal_RemovedEmitterStopsContributing(t *testing.T) {
	tw := newTestWorld()
	e := tw.spawnAt(0, 0)
	tw.thruster.Add(e, &components.Thruster{Thrust: 100, Firing: true, HeatSignatureRatio: 1})
	tw.setHeat(e, 0, 1)

	ts := newTestThermal(tw, nil)
	ts.Register(NewThrusterEmitter(tw.w))
	ts.Pass()
	afterFirst := tw.sig.Get(e).StoredHeat

	tw.thruster.Remove(e)
	ts.Pass()

	if got := tw.sig.Get(e).StoredHeat; got != afterFirst {
		t.Errorf("heat changed after thruster removal: %f -> %f", afterFirst, got)
	}
}

// ---------- Roll-up ----------

func TestThermal_RollUpIntoGrid(t *testing.T) {
	tw := newTestWorld()
	grid := tw.spawnGrid(100, 100, 20, 20)
	tw.setHeat(grid, 5, 1)

	heats := []float32{1, 2.5, 7, 11}
	var crew []ecs.Entity
	for _, h := range heats {
		c := tw.spawnAt(100, 100)
		tw.setHeat(c, h, 1)
		tw.attach(c, grid)
		crew = append(crew, c)
	}

	// A free drifter never counts toward the grid
	drifter := tw.spawnAt(300, 300)
	tw.setHeat(drifter, 1000, 1)

	ts := newTestThermal(tw, nil)
	ts.Pass()

	want := float32(5 + 1 + 2.5 + 7 + 11)
	if got := tw.sig.Get(grid).TotalHeat; !approxEqual(got, want, 1e-4) {
		t.Errorf("grid TotalHeat = %f, want %f", got, want)
	}
	for i, c := range crew {
		sig := tw.sig.Get(c)
		if sig.TotalHeat != sig.StoredHeat {
			t.Errorf("crew %d TotalHeat (%f) should mirror StoredHeat (%f)", i, sig.TotalHeat, sig.StoredHeat)
		}
	}
	if got := tw.sig.Get(drifter).TotalHeat; got != 1000 {
		t.Errorf("drifter TotalHeat = %f, want 1000", got)
	}
}

func TestThermal_TotalRebuiltEveryPass(t *testing.T) {
	tw := newTestWorld()
	grid := tw.spawnGrid(0, 0, 10, 10)
	tw.setHeat(grid, 0, 1)
	c := tw.spawnAt(0, 0)
	tw.setHeat(c, 50, 1)
	tw.attach(c, grid)

	ts := newTestThermal(tw, nil)
	ts.Pass()
	ts.Pass()
	if got := tw.sig.Get(grid).TotalHeat; got != 50 {
		t.Fatalf("grid TotalHeat = %f, want 50 (no accumulation across passes)", got)
	}

	// Detach: next pass must drop the crew contribution entirely
	tw.attached.Get(c).Grid = ecs.Entity{}
	ts.Pass()
	if got := tw.sig.Get(grid).TotalHeat; got != 0 {
		t.Errorf("grid TotalHeat after detach = %f, want 0", got)
	}
}

func TestThermal_AttachedToRemovedGrid(t *testing.T) {
	tw := newTestWorld()
	grid := tw.spawnGrid(0, 0, 10, 10)
	c := tw.spawnAt(0, 0)
	tw.setHeat(c, 9, 1)
	tw.attach(c, grid)

	ts := newTestThermal(tw, nil)
	ts.Pass()
	tw.w.RemoveEntity(grid)
	ts.Pass()

	if got := tw.sig.Get(c).TotalHeat; got != 9 {
		t.Errorf("orphaned crew TotalHeat = %f, want 9", got)
	}
}

// ---------- Accumulator ----------

func TestThermal_AccumulatorExactness(t *testing.T) {
	interval := 500 * time.Millisecond
	chunkings := map[string][]time.Duration{
		"whole intervals": {interval, interval, interval, interval},
		"tenths":          repeat(interval/10, 40),
		"uneven":          {120 * time.Millisecond, 380 * time.Millisecond, 499 * time.Millisecond, 1 * time.Millisecond, 250 * time.Millisecond, 250 * time.Millisecond, 333 * time.Millisecond, 167 * time.Millisecond},
		"fiftieths":       repeat(interval/50, 200),
	}

	const want = 4
	for name, frames := range chunkings {
		t.Run(name, func(t *testing.T) {
			tw := newTestWorld()
			ts := newTestThermal(tw, nil)

			var total time.Duration
			for _, d := range frames {
				ts.Advance(d)
				total += d
			}
			if total != want*interval {
				t.Fatalf("frames sum to %v, want exactly %v", total, want*interval)
			}
			if ts.Passes() != want {
				t.Errorf("passes = %d, want %d", ts.Passes(), want)
			}
		})
	}
}

func TestThermal_LongFrameRunsOnePassAndBanksSurplus(t *testing.T) {
	tw := newTestWorld()
	ts := newTestThermal(tw, nil)

	if !ts.Advance(1600 * time.Millisecond) {
		t.Fatal("expected a pass after a long frame")
	}
	if ts.Passes() != 1 {
		t.Fatalf("passes = %d, want 1 for a single long frame", ts.Passes())
	}

	// Surplus drains one interval per call
	if !ts.Advance(0) || !ts.Advance(0) {
		t.Fatal("expected banked surplus to run two more passes")
	}
	if ts.Advance(0) {
		t.Error("only 100ms should remain banked")
	}
	if !ts.Advance(400 * time.Millisecond) {
		t.Error("banked 100ms plus 400ms should complete an interval")
	}
	if ts.Passes() != 4 {
		t.Errorf("passes = %d, want 4", ts.Passes())
	}
}

func TestThermal_UpdateUsesSeconds(t *testing.T) {
	tw := newTestWorld()
	ts := newTestThermal(tw, nil)

	if ts.Update(0.25) {
		t.Error("quarter second should not trigger a pass")
	}
	if !ts.Update(0.25) {
		t.Error("half second total should trigger a pass")
	}
}

func repeat(d time.Duration, n int) []time.Duration {
	out := make([]time.Duration, n)
	for i := range out {
		out[i] = d
	}
	return out
}

// ---------- Publishing ----------

func TestThermal_MarksChangedGridsDirty(t *testing.T) {
	tw := newTestWorld()
	cold := tw.spawnGrid(0, 0, 10, 10)
	hot := tw.spawnGrid(50, 50, 10, 10)

	sink := newRecordingSink()
	ts := newTestThermal(tw, sink)
	ts.Register(constantEmitter(map[ecs.Entity]float32{hot: 20}))

	// First pass: both grids are new to observers
	ts.Pass()
	if _, ok := sink.marked[cold]; !ok {
		t.Error("new cold grid should be published on its first pass")
	}
	if _, ok := sink.marked[hot]; !ok {
		t.Error("hot grid should be published")
	}

	sink.reset()
	ts.Pass()
	if _, ok := sink.marked[cold]; ok {
		t.Error("cold grid did not change and should not be republished")
	}
	sig, ok := sink.marked[hot]
	if !ok {
		t.Fatal("hot grid changed and should be republished")
	}
	if sig.TotalHeat != tw.sig.Get(hot).TotalHeat {
		t.Errorf("published TotalHeat %f does not match state %f", sig.TotalHeat, tw.sig.Get(hot).TotalHeat)
	}
}

func TestThermal_NoSinkIsFine(t *testing.T) {
	tw := newTestWorld()
	tw.spawnGrid(0, 0, 10, 10)
	ts := newTestThermal(tw, nil)
	ts.Pass()
	if ts.Passes() != 1 {
		t.Errorf("passes = %d, want 1", ts.Passes())
	}
}
