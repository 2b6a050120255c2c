package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/signature/systems"
)

// Phases lists the simulation phases in step order.
var Phases = []string{
	systems.PhaseThrusters,
	systems.PhasePhysics,
	systems.PhaseThermal,
	systems.PhaseIndex,
	systems.PhaseRadar,
	systems.PhaseTelemetry,
}

// perfSample holds timing data for a single tick. phases is indexed by slot.
type perfSample struct {
	tick   time.Duration
	phases []time.Duration
	ran    uint64 // Bit per slot that started during the tick
	pass   bool   // Tick ran a thermal aggregation pass
}

// PerfCollector tracks performance metrics over a rolling window.
// Ticks that run a thermal pass are tracked separately because the pass
// dominates them while most ticks skip it.
type PerfCollector struct {
	windowSize  int
	samples     []perfSample
	writeIndex  int
	sampleCount int

	names []string       // Phase name per slot
	slots map[string]int // Phase name to slot

	current    perfSample
	tickStart  time.Time
	phaseStart time.Time
	lastSlot   int // -1 when no phase is open

	// Frame timing (for graphics mode)
	lastFrameTime time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of ticks to average over (e.g., 60 for 1 second at 60fps).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	p := &PerfCollector{
		windowSize: windowSize,
		samples:    make([]perfSample, windowSize),
		slots:      make(map[string]int, len(Phases)),
		lastSlot:   -1,
	}
	for _, phase := range Phases {
		p.slot(phase)
	}
	return p
}

// slot returns the index for a phase, registering unknown names.
// At most 64 phases fit the ran mask.
func (p *PerfCollector) slot(phase string) int {
	if i, ok := p.slots[phase]; ok {
		return i
	}
	i := len(p.names)
	p.names = append(p.names, phase)
	p.slots[phase] = i
	return i
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.current.phases = p.current.phases[:0]
	for range p.names {
		p.current.phases = append(p.current.phases, 0)
	}
	p.current.ran = 0
	p.current.pass = false
	p.lastSlot = -1
}

// StartPhase closes the open phase and begins timing the next one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.closePhase(now)

	i := p.slot(phase)
	for len(p.current.phases) <= i {
		p.current.phases = append(p.current.phases, 0)
	}
	p.current.ran |= 1 << uint(i)
	p.phaseStart = now
	p.lastSlot = i
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.lastSlot >= 0 {
		p.current.phases[p.lastSlot] += now.Sub(p.phaseStart)
	}
}

// MarkPass flags the current tick as one that ran a thermal pass.
func (p *PerfCollector) MarkPass() {
	p.current.pass = true
}

// EndTick finishes timing the current tick and records the sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.lastSlot = -1

	dst := &p.samples[p.writeIndex]
	dst.tick = now.Sub(p.tickStart)
	dst.phases = append(dst.phases[:0], p.current.phases...)
	dst.ran = p.current.ran
	dst.pass = p.current.pass

	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// RecordFrame records frame timing for graphics mode.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Tick timing
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Ticks with and without a thermal pass
	PassTicks    int
	AvgPassTick  time.Duration
	AvgQuietTick time.Duration

	// Phase breakdown (average durations) for phases that ran in the window
	PhaseAvg map[string]time.Duration

	// Phase percentages of total tick time
	PhasePct map[string]float64

	// Throughput
	TicksPerSecond float64

	// Frame timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frameDuration,
	}
	if p.frameDuration > 0 {
		stats.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if p.sampleCount == 0 {
		return stats
	}

	var total, passTotal, quietTotal time.Duration
	var ran uint64
	phaseSum := make([]time.Duration, len(p.names))

	for i := 0; i < p.sampleCount; i++ {
		s := &p.samples[i]
		total += s.tick
		if i == 0 || s.tick < stats.MinTickDuration {
			stats.MinTickDuration = s.tick
		}
		stats.MaxTickDuration = max(stats.MaxTickDuration, s.tick)

		if s.pass {
			stats.PassTicks++
			passTotal += s.tick
		} else {
			quietTotal += s.tick
		}

		ran |= s.ran
		for slot, d := range s.phases {
			phaseSum[slot] += d
		}
	}

	n := time.Duration(p.sampleCount)
	stats.AvgTickDuration = total / n
	if stats.PassTicks > 0 {
		stats.AvgPassTick = passTotal / time.Duration(stats.PassTicks)
	}
	if quiet := p.sampleCount - stats.PassTicks; quiet > 0 {
		stats.AvgQuietTick = quietTotal / time.Duration(quiet)
	}

	for slot, sum := range phaseSum {
		if ran&(1<<uint(slot)) == 0 {
			continue
		}
		name := p.names[slot]
		avg := sum / n
		stats.PhaseAvg[name] = avg
		if stats.AvgTickDuration > 0 {
			stats.PhasePct[name] = float64(avg) / float64(stats.AvgTickDuration) * 100
		}
	}

	if stats.AvgTickDuration > 0 {
		stats.TicksPerSecond = float64(time.Second) / float64(stats.AvgTickDuration)
	}
	return stats
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	if s.PassTicks > 0 {
		attrs = append(attrs,
			"pass_ticks", s.PassTicks,
			"avg_pass_tick_us", s.AvgPassTick.Microseconds(),
			"avg_quiet_tick_us", s.AvgQuietTick.Microseconds(),
		)
	}

	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}

	// Add phase breakdowns
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
		slog.Int("pass_ticks", s.PassTicks),
		slog.Int64("avg_pass_tick_us", s.AvgPassTick.Microseconds()),
	}

	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}

	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	PassTicks    int     `csv:"pass_ticks"`
	PassTickUS   int64   `csv:"avg_pass_tick_us"`
	QuietTickUS  int64   `csv:"avg_quiet_tick_us"`
	ThrustersPct float64 `csv:"thrusters_pct"`
	PhysicsPct   float64 `csv:"physics_pct"`
	ThermalPct   float64 `csv:"thermal_pct"`
	IndexPct     float64 `csv:"index_pct"`
	RadarPct     float64 `csv:"radar_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		PassTicks:    s.PassTicks,
		PassTickUS:   s.AvgPassTick.Microseconds(),
		QuietTickUS:  s.AvgQuietTick.Microseconds(),
		ThrustersPct: s.PhasePct[systems.PhaseThrusters],
		PhysicsPct:   s.PhasePct[systems.PhasePhysics],
		ThermalPct:   s.PhasePct[systems.PhaseThermal],
		IndexPct:     s.PhasePct[systems.PhaseIndex],
		RadarPct:     s.PhasePct[systems.PhaseRadar],
		TelemetryPct: s.PhasePct[systems.PhaseTelemetry],
	}
}
