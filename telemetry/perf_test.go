package telemetry

import (
	"testing"
	"time"

	"github.com/pthm-cable/signature/systems"
)

func runTicks(pc *PerfCollector, n int, phases map[string]time.Duration) {
	for i := 0; i < n; i++ {
		pc.StartTick()
		for _, phase := range Phases {
			d, ok := phases[phase]
			if !ok {
				continue
			}
			pc.StartPhase(phase)
			time.Sleep(d)
		}
		pc.EndTick()
	}
}

func TestPerfCollector_TracksPhases(t *testing.T) {
	pc := NewPerfCollector(10)
	runTicks(pc, 5, map[string]time.Duration{
		systems.PhaseThermal: 100 * time.Microsecond,
		systems.PhaseRadar:   200 * time.Microsecond,
	})

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	for _, phase := range []string{systems.PhaseThermal, systems.PhaseRadar} {
		if _, ok := stats.PhaseAvg[phase]; !ok {
			t.Errorf("expected %s phase to be tracked", phase)
		}
	}
	if _, ok := stats.PhaseAvg[systems.PhasePhysics]; ok {
		t.Error("phase that never ran should not be tracked")
	}
	if stats.MinTickDuration > stats.AvgTickDuration || stats.AvgTickDuration > stats.MaxTickDuration {
		t.Errorf("expected min <= avg <= max, got %v %v %v",
			stats.MinTickDuration, stats.AvgTickDuration, stats.MaxTickDuration)
	}
}

func TestPerfCollector_SlowPhaseDominates(t *testing.T) {
	pc := NewPerfCollector(10)
	runTicks(pc, 5, map[string]time.Duration{
		systems.PhaseIndex:   10 * time.Microsecond,
		systems.PhaseThermal: 2 * time.Millisecond,
	})

	stats := pc.Stats()
	if stats.PhasePct[systems.PhaseThermal] <= stats.PhasePct[systems.PhaseIndex] {
		t.Errorf("expected thermal (%v%%) > index (%v%%)",
			stats.PhasePct[systems.PhaseThermal], stats.PhasePct[systems.PhaseIndex])
	}
}

func TestPerfCollector_WindowWraps(t *testing.T) {
	pc := NewPerfCollector(3)
	runTicks(pc, 8, map[string]time.Duration{systems.PhasePhysics: 0})

	if pc.sampleCount != 3 {
		t.Errorf("sampleCount = %d, want window size 3", pc.sampleCount)
	}
	if pc.Stats().TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfCollector_Empty(t *testing.T) {
	stats := NewPerfCollector(0).Stats()
	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	s := PerfStats{
		AvgTickDuration: 1500 * time.Microsecond,
		PhasePct: map[string]float64{
			systems.PhaseThermal: 40,
			systems.PhaseRadar:   25,
		},
	}
	row := s.ToCSV(600)
	if row.WindowEnd != 600 || row.AvgTickUS != 1500 {
		t.Errorf("unexpected header fields: %+v", row)
	}
	if row.ThermalPct != 40 || row.RadarPct != 25 || row.PhysicsPct != 0 {
		t.Errorf("unexpected phase columns: %+v", row)
	}
}

func TestPerfCollector_SplitsPassTicks(t *testing.T) {
	pc := NewPerfCollector(10)
	for i := 0; i < 4; i++ {
		pc.StartTick()
		pc.StartPhase(systems.PhaseThermal)
		if i == 0 {
			pc.MarkPass()
			time.Sleep(2 * time.Millisecond)
		}
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.PassTicks != 1 {
		t.Fatalf("PassTicks = %d, want 1", stats.PassTicks)
	}
	if stats.AvgPassTick <= stats.AvgQuietTick {
		t.Errorf("pass tick %v should be slower than quiet tick %v", stats.AvgPassTick, stats.AvgQuietTick)
	}

	row := stats.ToCSV(4)
	if row.PassTicks != 1 || row.PassTickUS < 2000 {
		t.Errorf("unexpected pass columns: %+v", row)
	}
}

func TestPerfCollector_RegistersUnknownPhase(t *testing.T) {
	pc := NewPerfCollector(4)
	pc.StartTick()
	pc.StartPhase("replay")
	pc.EndTick()

	if _, ok := pc.Stats().PhaseAvg["replay"]; !ok {
		t.Error("unknown phase should be tracked once started")
	}
}
