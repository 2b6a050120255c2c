package systems

import (
	"log/slog"
	"math"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/signature/components"
)

// SyncSink receives grids whose published heat changed during a pass.
type SyncSink interface {
	MarkDirty(grid ecs.Entity, sig components.ThermalSignature)
}

// ThermalSystem integrates emitter output into ThermalSignature components
// on a fixed interval and rolls entity heat up into the containing grid.
type ThermalSystem struct {
	world *ecs.World

	interval    time.Duration
	accumulator time.Duration
	passes      int

	gridDissipation   float32
	entityDissipation float32

	emitters []Emitter
	sink     SyncSink

	gridFilter  *ecs.Filter1[components.Grid]
	gridSigs    *ecs.Filter2[components.Grid, components.ThermalSignature]
	sigFilter   *ecs.Filter1[components.ThermalSignature]
	sigMap      *ecs.Map[components.ThermalSignature]
	gridMap     *ecs.Map[components.Grid]
	attachedMap *ecs.Map[components.Attached]

	// Scratch reused across passes
	pending  []ecs.Entity
	previous map[ecs.Entity]float32
}

// ThermalOptions configures a ThermalSystem.
type ThermalOptions struct {
	Interval          time.Duration
	GridDissipation   float32
	EntityDissipation float32
	Sink              SyncSink // May be nil
}

// NewThermalSystem creates a thermal system. Emitters are added with Register.
func NewThermalSystem(w *ecs.World, opts ThermalOptions) *ThermalSystem {
	if opts.Interval <= 0 {
		opts.Interval = 500 * time.Millisecond
	}
	return &ThermalSystem{
		world:             w,
		interval:          opts.Interval,
		gridDissipation:   opts.GridDissipation,
		entityDissipation: opts.EntityDissipation,
		sink:              opts.Sink,
		gridFilter:        ecs.NewFilter1[components.Grid](w),
		gridSigs:          ecs.NewFilter2[components.Grid, components.ThermalSignature](w),
		sigFilter:         ecs.NewFilter1[components.ThermalSignature](w),
		sigMap:            ecs.NewMap[components.ThermalSignature](w),
		gridMap:           ecs.NewMap[components.Grid](w),
		attachedMap:       ecs.NewMap[components.Attached](w),
		previous:          make(map[ecs.Entity]float32),
	}
}

// Register adds an emitter. Emitters are polled on every pass in no particular order.
func (s *ThermalSystem) Register(e Emitter) {
	s.emitters = append(s.emitters, e)
}

// SetSink replaces the sync sink.
func (s *ThermalSystem) SetSink(sink SyncSink) {
	s.sink = sink
}

// Interval returns the configured pass interval.
func (s *ThermalSystem) Interval() time.Duration {
	return s.interval
}

// Passes returns the number of completed passes.
func (s *ThermalSystem) Passes() int {
	return s.passes
}

// Update banks frameTime seconds and runs a pass once a full interval is banked.
func (s *ThermalSystem) Update(frameTime float32) bool {
	return s.Advance(time.Duration(float64(frameTime) * float64(time.Second)))
}

// Advance banks d and runs at most one pass. Surplus time stays banked
// for the next call. Reports whether a pass ran.
func (s *ThermalSystem) Advance(d time.Duration) bool {
	s.accumulator += d
	if s.accumulator < s.interval {
		return false
	}
	s.accumulator -= s.interval

	s.Pass()
	return true
}

// Pass runs one aggregation pass immediately, leaving the accumulator alone.
// Must not be called while a query on the world is open.
func (s *ThermalSystem) Pass() {
	interval := float32(s.interval.Seconds())

	s.ensureState()

	// Reset grid totals
	clear(s.previous)
	gq := s.gridSigs.Query()
	for gq.Next() {
		_, sig := gq.Get()
		s.previous[gq.Entity()] = sig.TotalHeat
		sig.TotalHeat = 0
	}

	// Integrate, decay and roll up
	sq := s.sigFilter.Query()
	for sq.Next() {
		e := sq.Entity()
		sig := sq.Get()

		sig.StoredHeat += s.heatRate(e, interval) * interval
		sig.StoredHeat *= pow32(sig.HeatDissipation, interval)

		if s.gridMap.Has(e) {
			sig.TotalHeat += sig.StoredHeat
			continue
		}

		sig.TotalHeat = sig.StoredHeat
		if grid, ok := s.containingGrid(e); ok {
			s.sigMap.Get(grid).TotalHeat += sig.StoredHeat
		}
	}

	s.passes++

	// Publish changed grids
	dirty := 0
	pq := s.gridSigs.Query()
	for pq.Next() {
		e := pq.Entity()
		_, sig := pq.Get()
		prev, seen := s.previous[e]
		if seen && prev == sig.TotalHeat {
			continue
		}
		dirty++
		if s.sink != nil {
			s.sink.MarkDirty(e, *sig)
		}
	}

	slog.Debug("thermal pass", "pass", s.passes, "interval", interval, "dirty_grids", dirty)
}

// heatRate sums every emitter's contribution for e.
// Negative contributions are treated as zero.
func (s *ThermalSystem) heatRate(e ecs.Entity, interval float32) float32 {
	var rate float32
	for _, em := range s.emitters {
		if r := em.HeatRate(e, interval); r > 0 {
			rate += r
		}
	}
	return rate
}

// containingGrid returns the live grid e is attached to, if it has thermal state.
func (s *ThermalSystem) containingGrid(e ecs.Entity) (ecs.Entity, bool) {
	if !s.attachedMap.Has(e) {
		return ecs.Entity{}, false
	}
	att := s.attachedMap.Get(e)
	if !att.Docked() || !s.world.Alive(att.Grid) || !s.sigMap.Has(att.Grid) {
		return ecs.Entity{}, false
	}
	return att.Grid, true
}

// ensureState gives every grid and every emitter source a ThermalSignature.
// Entities are collected first because components cannot be added while a
// query is open.
func (s *ThermalSystem) ensureState() {
	s.pending = s.pending[:0]

	gq := s.gridFilter.Query()
	for gq.Next() {
		if e := gq.Entity(); !s.sigMap.Has(e) {
			s.pending = append(s.pending, e)
		}
	}

	for _, em := range s.emitters {
		lister, ok := em.(SourceLister)
		if !ok {
			continue
		}
		lister.Sources(func(e ecs.Entity) {
			if !s.sigMap.Has(e) {
				s.pending = append(s.pending, e)
			}
		})
	}

	for _, e := range s.pending {
		// An entity can be listed by more than one emitter
		if s.sigMap.Has(e) {
			continue
		}
		s.EnsureSignature(e)
	}
}

// EnsureSignature returns e's ThermalSignature, adding a zero-heat one with
// the default dissipation for its kind if it has none.
// Must not be called while a query on the world is open.
func (s *ThermalSystem) EnsureSignature(e ecs.Entity) *components.ThermalSignature {
	if s.sigMap.Has(e) {
		return s.sigMap.Get(e)
	}
	dissipation := s.entityDissipation
	if s.gridMap.Has(e) {
		dissipation = s.gridDissipation
	}
	sig := components.NewThermalSignature(dissipation)
	s.sigMap.Add(e, &sig)
	return s.sigMap.Get(e)
}

// TotalHeat returns the published heat of e. Entities without thermal
// state read as zero; the read never adds state.
func (s *ThermalSystem) TotalHeat(e ecs.Entity) float32 {
	if !s.world.Alive(e) || !s.sigMap.Has(e) {
		return 0
	}
	return s.sigMap.Get(e).TotalHeat
}

// pow32 returns base^exp in float32.
func pow32(base, exp float32) float32 {
	return float32(math.Pow(float64(base), float64(exp)))
}
