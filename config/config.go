// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	World       WorldConfig       `yaml:"world"`
	Physics     PhysicsConfig     `yaml:"physics"`
	Detection   DetectionConfig   `yaml:"detection"`
	Emitters    EmittersConfig    `yaml:"emitters"`
	Population  PopulationConfig  `yaml:"population"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Replication ReplicationConfig `yaml:"replication"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds simulation world dimensions.
// World can be larger than the screen; camera handles the viewport.
type WorldConfig struct {
	Width  int `yaml:"width"`  // World width in world units (0 = use screen width)
	Height int `yaml:"height"` // World height in world units (0 = use screen height)
}

// PhysicsConfig holds simulation physics parameters.
type PhysicsConfig struct {
	DT           float64 `yaml:"dt"`
	GridCellSize float64 `yaml:"grid_cell_size"` // Spatial index cell size
}

// DetectionConfig holds thermal aggregation and detection parameters.
type DetectionConfig struct {
	UpdateInterval    float64        `yaml:"update_interval"`    // Seconds between aggregation passes
	GridDissipation   float64        `yaml:"grid_dissipation"`   // Default decay coefficient for grids, (0,1]
	EntityDissipation float64        `yaml:"entity_dissipation"` // Default decay coefficient for other entities, (0,1]
	Observer          ObserverConfig `yaml:"observer"`
	Radar             RadarConfig    `yaml:"radar"`
}

// ObserverConfig holds the default observer sensitivity.
type ObserverConfig struct {
	VisualMultiplier       float64 `yaml:"visual_multiplier"`
	InfraredMultiplier     float64 `yaml:"infrared_multiplier"`
	InfraredOutlinePortion float64 `yaml:"infrared_outline_portion"`
}

// RadarConfig holds radar sweep parameters.
type RadarConfig struct {
	MaxRange      float64 `yaml:"max_range"`      // Targets beyond this are never considered
	SweepInterval float64 `yaml:"sweep_interval"` // Seconds between observer sweeps
}

// EmittersConfig holds built-in emitter tuning.
type EmittersConfig struct {
	Power    EmitterConfig `yaml:"power"`
	Thruster EmitterConfig `yaml:"thruster"`
}

// EmitterConfig holds one emitter kind's defaults.
type EmitterConfig struct {
	HeatSignatureRatio float64 `yaml:"heat_signature_ratio"` // Heat rate per unit of supply/thrust
}

// PopulationConfig holds initial spawn counts.
type PopulationConfig struct {
	Grids        int     `yaml:"grids"`
	CrewPerGrid  int     `yaml:"crew_per_grid"`
	Drifters     int     `yaml:"drifters"`
	Observers    int     `yaml:"observers"`
	MinGridSize  float64 `yaml:"min_grid_size"`
	MaxGridSize  float64 `yaml:"max_grid_size"`
	MaxSupply    float64 `yaml:"max_supply"`
	MaxThrust    float64 `yaml:"max_thrust"`
	MaxSpeed     float64 `yaml:"max_speed"`
	FireChance   float64 `yaml:"fire_chance"`   // Per-second chance a thruster toggles on
	FireDuration float64 `yaml:"fire_duration"` // Seconds a thruster burn lasts
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// ReplicationConfig holds the signature sync transport parameters.
type ReplicationConfig struct {
	Listen     string `yaml:"listen"`      // Address for the websocket hub (empty = disabled)
	SendBuffer int    `yaml:"send_buffer"` // Per-client outbound queue length
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32      float32 // Physics.DT as float32
	ScreenW32 float32 // Screen.Width as float32
	ScreenH32 float32 // Screen.Height as float32
	WorldW32  float32 // Effective world width as float32
	WorldH32  float32 // Effective world height as float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.validate()
	cfg.computeDerived()

	return cfg, nil
}

// validate clamps values that would make the simulation unstable.
// Dissipation outside (0,1] either grows heat without bound or wipes it instantly.
func (c *Config) validate() {
	if !(c.Physics.DT > 0) || math.IsInf(c.Physics.DT, 0) {
		slog.Warn("config: physics.dt must be positive, using 1/60", "value", c.Physics.DT)
		c.Physics.DT = 1.0 / 60
	}
	if !(c.Physics.GridCellSize > 0) || math.IsInf(c.Physics.GridCellSize, 0) {
		slog.Warn("config: physics.grid_cell_size must be positive, using 250", "value", c.Physics.GridCellSize)
		c.Physics.GridCellSize = 250
	}

	d := &c.Detection
	d.GridDissipation = clampDissipation("grid_dissipation", d.GridDissipation)
	d.EntityDissipation = clampDissipation("entity_dissipation", d.EntityDissipation)

	if !(d.UpdateInterval > 0) || math.IsInf(d.UpdateInterval, 0) {
		slog.Warn("config: update_interval must be positive, using 0.5", "value", d.UpdateInterval)
		d.UpdateInterval = 0.5
	}

	if !(d.Radar.SweepInterval > 0) || math.IsInf(d.Radar.SweepInterval, 0) {
		slog.Warn("config: radar.sweep_interval must be positive, using 1.0", "value", d.Radar.SweepInterval)
		d.Radar.SweepInterval = 1.0
	}

	obs := &d.Observer
	obs.VisualMultiplier = clampNonNegative("visual_multiplier", obs.VisualMultiplier)
	obs.InfraredMultiplier = clampNonNegative("infrared_multiplier", obs.InfraredMultiplier)
	obs.InfraredOutlinePortion = clampNonNegative("infrared_outline_portion", obs.InfraredOutlinePortion)

	c.Emitters.Power.HeatSignatureRatio = clampNonNegative("power.heat_signature_ratio", c.Emitters.Power.HeatSignatureRatio)
	c.Emitters.Thruster.HeatSignatureRatio = clampNonNegative("thruster.heat_signature_ratio", c.Emitters.Thruster.HeatSignatureRatio)
}

// MinDissipation is the smallest accepted decay coefficient.
const MinDissipation = 1e-6

// ClampDissipation forces a decay coefficient into (0,1]. NaN maps to
// MinDissipation.
func ClampDissipation(v float64) float64 {
	if !(v >= MinDissipation) {
		return MinDissipation
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampDissipation(name string, v float64) float64 {
	clamped := ClampDissipation(v)
	if clamped != v {
		slog.Warn("config: dissipation out of range, clamped", "field", name, "value", v, "clamped", clamped)
	}
	return clamped
}

// clampNonNegative maps negative and non-finite values to zero.
func clampNonNegative(name string, v float64) float64 {
	if !(v >= 0) || math.IsInf(v, 1) {
		slog.Warn("config: negative or non-finite value clamped to zero", "field", name, "value", v)
		return 0
	}
	return v
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	// World dimensions default to screen size if not specified
	worldW := c.World.Width
	if worldW == 0 {
		worldW = c.Screen.Width
	}
	worldH := c.World.Height
	if worldH == 0 {
		worldH = c.Screen.Height
	}
	c.Derived.WorldW32 = float32(worldW)
	c.Derived.WorldH32 = float32(worldH)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
