package telemetry

import "github.com/pthm-cable/signature/components"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	passes     int
	dirtyGrids int
	sweeps     int
	contacts   [components.Undetected]int
	rangeSum   float64
	rangeMax   float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordPass records a completed thermal pass and how many grids it published.
func (c *Collector) RecordPass(dirty int) {
	c.passes++
	c.dirtyGrids += dirty
}

// RecordSweep records one observer sweep.
func (c *Collector) RecordSweep() {
	c.sweeps++
}

// RecordContact records a sweep contact. Undetected targets are not contacts.
func (c *Collector) RecordContact(level components.DetectionLevel, distance float32) {
	if level >= components.Undetected {
		return
	}
	c.contacts[level]++
	d := float64(distance)
	c.rangeSum += d
	if d > c.rangeMax {
		c.rangeMax = d
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// WorldSample is the state the caller samples at window end.
type WorldSample struct {
	Grids, Crew, Drifters int
	GridHeat              []float64 // TotalHeat of every grid
	GridIDs               []uint32  // Parallel to GridHeat
	TotalStored           float64
	FiringThrusters       int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, sample WorldSample) WindowStats {
	heat := SummarizeHeat(sample.GridHeat)

	var hottest uint32
	var hottestHeat float64
	for i, h := range sample.GridHeat {
		if i < len(sample.GridIDs) && (i == 0 || h > hottestHeat) {
			hottest = sample.GridIDs[i]
			hottestHeat = h
		}
	}

	total := c.contacts[components.Detected] + c.contacts[components.PartialDetected]
	var perSweep, meanRange float64
	if c.sweeps > 0 {
		perSweep = float64(total) / float64(c.sweeps)
	}
	if total > 0 {
		meanRange = c.rangeSum / float64(total)
	}

	stats := WindowStats{
		Thermal: ThermalStats{
			WindowStartTick: c.windowStartTick,
			WindowEndTick:   currentTick,
			SimTimeSec:      float64(currentTick) * float64(c.dt),

			Grids:    sample.Grids,
			Crew:     sample.Crew,
			Drifters: sample.Drifters,

			Passes:     c.passes,
			DirtyGrids: c.dirtyGrids,

			GridHeatMean: heat.Mean,
			GridHeatStd:  heat.Std,
			GridHeatP50:  heat.P50,
			GridHeatP90:  heat.P90,
			GridHeatMax:  heat.Max,
			HottestGrid:  hottest,

			TotalStored:     sample.TotalStored,
			FiringThrusters: sample.FiringThrusters,
		},
		Detection: DetectionStats{
			WindowEndTick:    currentTick,
			Sweeps:           c.sweeps,
			Detected:         c.contacts[components.Detected],
			PartialDetected:  c.contacts[components.PartialDetected],
			ContactsPerSweep: perSweep,
			MeanContactRange: meanRange,
			MaxContactRange:  c.rangeMax,
		},
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.passes = 0
	c.dirtyGrids = 0
	c.sweeps = 0
	c.contacts = [components.Undetected]int{}
	c.rangeSum = 0
	c.rangeMax = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
