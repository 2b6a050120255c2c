package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	Thermal   ThermalStats
	Detection DetectionStats
}

// ThermalStats is one thermal.csv row.
type ThermalStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Grids    int `csv:"grids"`
	Crew     int `csv:"crew"`
	Drifters int `csv:"drifters"`

	// Aggregation passes during the window
	Passes     int `csv:"passes"`
	DirtyGrids int `csv:"dirty_grids"`

	// Grid TotalHeat distribution (sampled at window end)
	GridHeatMean float64 `csv:"grid_heat_mean"`
	GridHeatStd  float64 `csv:"grid_heat_std"`
	GridHeatP50  float64 `csv:"grid_heat_p50"`
	GridHeatP90  float64 `csv:"grid_heat_p90"`
	GridHeatMax  float64 `csv:"grid_heat_max"`
	HottestGrid  uint32  `csv:"hottest_grid"`

	// Sum of every StoredHeat in the world
	TotalStored float64 `csv:"total_stored"`

	FiringThrusters int `csv:"firing_thrusters"`
}

// DetectionStats is one detection.csv row.
type DetectionStats struct {
	WindowEndTick int32 `csv:"window_end"`
	Sweeps        int   `csv:"sweeps"`

	Detected        int `csv:"detected"`
	PartialDetected int `csv:"partial"`

	// Mean contacts per sweep
	ContactsPerSweep float64 `csv:"contacts_per_sweep"`

	// Range at which contacts were made
	MeanContactRange float64 `csv:"mean_contact_range"`
	MaxContactRange  float64 `csv:"max_contact_range"`
}

// HeatSummary describes a heat distribution.
type HeatSummary struct {
	Mean, Std, P50, P90, Max float64
}

// SummarizeHeat computes mean, sample standard deviation, empirical
// quantiles and the maximum. Empty input yields zeros.
func SummarizeHeat(values []float64) HeatSummary {
	if len(values) == 0 {
		return HeatSummary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var s HeatSummary
	if len(sorted) > 1 {
		s.Mean, s.Std = stat.MeanStdDev(sorted, nil)
	} else {
		s.Mean = sorted[0]
	}
	s.P50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.P90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	s.Max = floats.Max(sorted)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.Thermal.WindowStartTick)),
		slog.Int("window_end", int(s.Thermal.WindowEndTick)),
		slog.Float64("sim_time", s.Thermal.SimTimeSec),
		slog.Int("grids", s.Thermal.Grids),
		slog.Int("passes", s.Thermal.Passes),
		slog.Float64("grid_heat_mean", s.Thermal.GridHeatMean),
		slog.Float64("grid_heat_max", s.Thermal.GridHeatMax),
		slog.Int("sweeps", s.Detection.Sweeps),
		slog.Int("detected", s.Detection.Detected),
		slog.Int("partial", s.Detection.PartialDetected),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.Thermal.WindowEndTick,
		"sim_time", s.Thermal.SimTimeSec,
		"grids", s.Thermal.Grids,
		"crew", s.Thermal.Crew,
		"drifters", s.Thermal.Drifters,
		"passes", s.Thermal.Passes,
		"dirty_grids", s.Thermal.DirtyGrids,
		"grid_heat_mean", s.Thermal.GridHeatMean,
		"grid_heat_p50", s.Thermal.GridHeatP50,
		"grid_heat_p90", s.Thermal.GridHeatP90,
		"grid_heat_max", s.Thermal.GridHeatMax,
		"hottest_grid", s.Thermal.HottestGrid,
		"total_stored", s.Thermal.TotalStored,
		"firing_thrusters", s.Thermal.FiringThrusters,
		"sweeps", s.Detection.Sweeps,
		"detected", s.Detection.Detected,
		"partial", s.Detection.PartialDetected,
		"contacts_per_sweep", s.Detection.ContactsPerSweep,
		"mean_contact_range", s.Detection.MeanContactRange,
	)
}
