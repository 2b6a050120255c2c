// Package game wires the thermal and detection systems into a runnable
// simulation with optional raylib rendering.
package game

import (
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/signature/camera"
	"github.com/pthm-cable/signature/components"
	"github.com/pthm-cable/signature/config"
	"github.com/pthm-cable/signature/replication"
	"github.com/pthm-cable/signature/systems"
	"github.com/pthm-cable/signature/telemetry"
	"github.com/pthm-cable/signature/ui"
)

// Options configures a Game.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 = use config
	SnapshotDir    string  // Snapshots on bookmarks and at exit (empty = disabled)
	OutputDir      string  // CSV + config output (empty = disabled)
	Headless       bool
	StepsPerUpdate int
	Hub            *replication.Hub // Receives heat batches (nil = local only)
}

// Game holds the complete simulation state.
type Game struct {
	world *ecs.World
	rng   *rand.Rand
	cfg   *config.Config
	seed  int64
	runID string

	// Component mappers
	posMap      *ecs.Map[components.Position]
	velMap      *ecs.Map[components.Velocity]
	gridMap     *ecs.Map[components.Grid]
	attachedMap *ecs.Map[components.Attached]
	boundsMap   *ecs.Map[components.Bounds]
	idMap       *ecs.Map[components.Identity]
	powerMap    *ecs.Map[components.PowerSupplier]
	thrusterMap *ecs.Map[components.Thruster]
	sigMap      *ecs.Map[components.ThermalSignature]

	identities *ecs.Filter2[components.Identity, components.Position]
	burners    *ecs.Filter1[components.Thruster]

	// Systems
	registry  *systems.SystemRegistry
	thrusters *systems.ThrusterSystem
	physics   *systems.PhysicsSystem
	thermal   *systems.ThermalSystem
	detection *systems.DetectionSystem

	// Replication
	sink    *passSink
	tracker *replication.Tracker
	hub     *replication.Hub

	// Radar
	observers  []ecs.Entity
	contacts   map[ecs.Entity][]systems.Contact
	sweepTicks int32

	// Telemetry
	perfCollector    *telemetry.PerfCollector
	collector        *telemetry.Collector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	snapshotDir      string
	statsCallback    func(telemetry.WindowStats)

	// State
	tick           int32
	nextID         uint32
	paused         bool
	stepsPerUpdate int
	numGrids       int
	numCrew        int
	numDrifters    int

	// Graphical mode only
	camera       *camera.Camera
	hud          *ui.HUD
	perfPanel    *ui.PerfPanel
	inspector    *ui.Inspector
	controls     *ui.ControlsPanel
	overlays     *ui.OverlayRegistry
	viewer       int // Index into observers
	showPerf     bool
	selected     ecs.Entity
	hasSelection bool
	screenWidth  float32
	screenHeight float32
}

// passSink forwards dirty grids to the tracker and counts them per pass.
type passSink struct {
	next  systems.SyncSink
	count int
}

func (s *passSink) MarkDirty(grid ecs.Entity, sig components.ThermalSignature) {
	s.count++
	s.next.MarkDirty(grid, sig)
}

// NewGameWithOptions creates a game from the loaded config.
func NewGameWithOptions(opts Options) *Game {
	cfg := config.Cfg()

	world := ecs.NewWorld()
	w := &world

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	g := &Game{
		world:          w,
		rng:            rand.New(rand.NewSource(opts.Seed)),
		cfg:            cfg,
		seed:           opts.Seed,
		runID:          uuid.NewString(),
		posMap:         ecs.NewMap[components.Position](w),
		velMap:         ecs.NewMap[components.Velocity](w),
		gridMap:        ecs.NewMap[components.Grid](w),
		attachedMap:    ecs.NewMap[components.Attached](w),
		boundsMap:      ecs.NewMap[components.Bounds](w),
		idMap:          ecs.NewMap[components.Identity](w),
		powerMap:       ecs.NewMap[components.PowerSupplier](w),
		thrusterMap:    ecs.NewMap[components.Thruster](w),
		sigMap:         ecs.NewMap[components.ThermalSignature](w),
		identities:     ecs.NewFilter2[components.Identity, components.Position](w),
		burners:        ecs.NewFilter1[components.Thruster](w),
		registry:       systems.NewSystemRegistry(),
		contacts:       make(map[ecs.Entity][]systems.Contact),
		hub:            opts.Hub,
		logStats:       opts.LogStats,
		snapshotDir:    opts.SnapshotDir,
		stepsPerUpdate: steps,
		nextID:         1,
	}

	g.tracker = replication.NewTracker(w)
	g.sink = &passSink{next: g.tracker}

	g.thrusters = systems.NewThrusterSystem(w, g.rng,
		float32(cfg.Population.FireChance), float32(cfg.Population.FireDuration))
	g.physics = systems.NewPhysicsSystem(w, systems.Bounds{
		Width:  cfg.Derived.WorldW32,
		Height: cfg.Derived.WorldH32,
	})

	g.thermal = systems.NewThermalSystem(w, systems.ThermalOptions{
		Interval:          time.Duration(cfg.Detection.UpdateInterval * float64(time.Second)),
		GridDissipation:   float32(cfg.Detection.GridDissipation),
		EntityDissipation: float32(cfg.Detection.EntityDissipation),
		Sink:              g.sink,
	})
	g.thermal.Register(systems.NewPowerEmitter(w))
	g.thermal.Register(systems.NewThrusterEmitter(w))

	g.detection = systems.NewDetectionSystem(w, systems.DetectionOptions{
		Defaults: components.DetectionProfile{
			VisualMultiplier:       float32(cfg.Detection.Observer.VisualMultiplier),
			InfraredMultiplier:     float32(cfg.Detection.Observer.InfraredMultiplier),
			InfraredOutlinePortion: float32(cfg.Detection.Observer.InfraredOutlinePortion),
		},
		MaxRange:      float32(cfg.Detection.Radar.MaxRange),
		WorldW:        cfg.Derived.WorldW32,
		WorldH:        cfg.Derived.WorldH32,
		IndexCellSize: float32(cfg.Physics.GridCellSize),
	})
	g.sweepTicks = int32(math.Round(cfg.Detection.Radar.SweepInterval / cfg.Physics.DT))
	if g.sweepTicks < 1 {
		g.sweepTicks = 1
	}

	// Telemetry
	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	g.collector = telemetry.NewCollector(statsWindow, cfg.Derived.DT32)
	g.bookmarkDetector = telemetry.NewBookmarkDetector(10)

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			slog.Error("failed to create output manager", "error", err)
		} else {
			g.outputManager = om
			if err := om.WriteConfig(cfg); err != nil {
				slog.Error("failed to write config", "error", err)
			}
		}
	}

	if !opts.Headless {
		g.initGraphics()
	}

	g.spawnInitialPopulation()

	slog.Info("game created",
		"run_id", g.runID,
		"seed", opts.Seed,
		"grids", g.numGrids,
		"crew", g.numCrew,
		"drifters", g.numDrifters,
		"observers", len(g.observers),
		"sweep_ticks", g.sweepTicks,
		"thermal_interval", g.thermal.Interval(),
	)

	return g
}

// Update handles input and runs stepsPerUpdate ticks unless paused.
func (g *Game) Update() {
	g.handleInput()

	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// UpdateHeadless runs stepsPerUpdate ticks without touching raylib.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// simulationStep runs a single fixed-dt tick.
func (g *Game) simulationStep() {
	dt := g.cfg.Derived.DT32
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(systems.PhaseThrusters)
	g.thrusters.Update(dt)

	g.perfCollector.StartPhase(systems.PhasePhysics)
	g.physics.Update(dt)

	g.perfCollector.StartPhase(systems.PhaseThermal)
	g.sink.count = 0
	if g.thermal.Update(dt) {
		g.perfCollector.MarkPass()
		g.collector.RecordPass(g.sink.count)
		g.publishHeat()
	}

	if g.tick%g.sweepTicks == 0 {
		g.perfCollector.StartPhase(systems.PhaseIndex)
		g.detection.RebuildIndex()

		g.perfCollector.StartPhase(systems.PhaseRadar)
		g.sweepAll()
	}

	g.tick++

	g.perfCollector.StartPhase(systems.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// publishHeat hands the grids changed by the last pass to the hub.
func (g *Game) publishHeat() {
	if g.hub == nil {
		g.tracker.Drain()
		return
	}
	if _, err := g.hub.Publish(g.tracker, g.tick); err != nil {
		slog.Error("failed to publish heat", "error", err)
	}
}

// sweepAll runs a radar sweep for every live observer.
func (g *Game) sweepAll() {
	for _, obs := range g.observers {
		if !g.world.Alive(obs) {
			continue
		}
		found := g.detection.Sweep(obs, g.contacts[obs][:0])
		g.contacts[obs] = found

		g.collector.RecordSweep()
		for _, c := range found {
			g.collector.RecordContact(c.Level, c.Distance)
		}
	}
}

// Contacts returns the observer's contacts from the most recent sweep.
func (g *Game) Contacts(observer ecs.Entity) []systems.Contact {
	return g.contacts[observer]
}

// Observers returns the observer entities in spawn order.
func (g *Game) Observers() []ecs.Entity {
	return g.observers
}

// Classify exposes the detection query for tools and tests.
func (g *Game) Classify(observer, target ecs.Entity) components.DetectionLevel {
	return g.detection.Classify(observer, target)
}

// TotalHeat returns the published heat of an entity.
func (g *Game) TotalHeat(e ecs.Entity) float32 {
	return g.thermal.TotalHeat(e)
}

// Passes returns the number of completed thermal passes.
func (g *Game) Passes() int {
	return g.thermal.Passes()
}

// SetStatsCallback registers a function called on every stats flush.
func (g *Game) SetStatsCallback(fn func(telemetry.WindowStats)) {
	g.statsCallback = fn
}

// RunID returns the identifier stamped on this run's logs and snapshots.
func (g *Game) RunID() string {
	return g.runID
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// Unload flushes output and releases resources.
func (g *Game) Unload() {
	if g.snapshotDir != "" {
		g.saveSnapshot(nil)
	}
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}
}
