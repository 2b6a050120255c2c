package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/signature/components"
)

// Bands are the detection radii an observer has against one target.
type Bands struct {
	Visual  float32 // Silhouette diagonal scaled by VisualMultiplier
	Thermal float32 // sqrt(heat) scaled by InfraredMultiplier
	Outline float32 // max(Thermal*InfraredOutlinePortion, Visual)
}

// ComputeBands derives the detection radii for a target of the given extent
// and heat as seen through profile. Negative heat counts as zero.
func ComputeBands(extent components.Bounds, totalHeat float32, profile components.DetectionProfile) Bands {
	visual := extent.Diagonal() * profile.VisualMultiplier

	heat := totalHeat
	if heat < 0 {
		heat = 0
	}
	thermal := float32(math.Sqrt(float64(heat))) * profile.InfraredMultiplier

	outline := thermal * profile.InfraredOutlinePortion
	if visual > outline {
		outline = visual
	}

	return Bands{Visual: visual, Thermal: thermal, Outline: outline}
}

// Classify maps a distance onto a detection level.
// When Outline >= Thermal the partial band is empty: anything past the
// outline is Undetected even if it is still inside the thermal radius.
func (b Bands) Classify(distance float32) components.DetectionLevel {
	if distance <= b.Outline {
		return components.Detected
	}
	if distance < b.Thermal {
		return components.PartialDetected
	}
	return components.Undetected
}

// HasPartialBand reports whether any distance classifies as PartialDetected.
func (b Bands) HasPartialBand() bool {
	return b.Thermal > b.Outline
}

// Contact is one target resolved by a radar sweep.
type Contact struct {
	Target   ecs.Entity
	Level    components.DetectionLevel
	Distance float32
	Bands    Bands
}

// DetectionSystem answers detection queries between observers and targets.
// Queries never change heat; the only state they create is an observer's
// default profile on first use.
type DetectionSystem struct {
	world    *ecs.World
	defaults components.DetectionProfile
	maxRange float32

	profileMap *ecs.Map[components.DetectionProfile]
	posMap     *ecs.Map[components.Position]
	gridMap    *ecs.Map[components.Grid]
	boundsMap  *ecs.Map[components.Bounds]
	sigMap     *ecs.Map[components.ThermalSignature]

	targets   *ecs.Filter1[components.Position]
	index     *SpatialIndex
	neighbors []Neighbor
}

// DetectionOptions configures a DetectionSystem.
type DetectionOptions struct {
	Defaults      components.DetectionProfile // Profile given to observers on first query
	MaxRange      float32                     // Sweep radius
	WorldW        float32
	WorldH        float32
	IndexCellSize float32
}

// NewDetectionSystem creates a detection system.
func NewDetectionSystem(w *ecs.World, opts DetectionOptions) *DetectionSystem {
	return &DetectionSystem{
		world:      w,
		defaults:   opts.Defaults,
		maxRange:   opts.MaxRange,
		profileMap: ecs.NewMap[components.DetectionProfile](w),
		posMap:     ecs.NewMap[components.Position](w),
		gridMap:    ecs.NewMap[components.Grid](w),
		boundsMap:  ecs.NewMap[components.Bounds](w),
		sigMap:     ecs.NewMap[components.ThermalSignature](w),
		targets:    ecs.NewFilter1[components.Position](w),
		index:      NewSpatialIndex(opts.WorldW, opts.WorldH, opts.IndexCellSize),
	}
}

// Defaults returns the profile given to new observers.
func (s *DetectionSystem) Defaults() components.DetectionProfile {
	return s.defaults
}

// Profile returns the observer's profile, attaching the defaults on first use.
// Must not be called while a query on the world is open.
func (s *DetectionSystem) Profile(observer ecs.Entity) *components.DetectionProfile {
	if !s.profileMap.Has(observer) {
		p := s.defaults
		s.profileMap.Add(observer, &p)
	}
	return s.profileMap.Get(observer)
}

// SetProfile overwrites the observer's profile.
func (s *DetectionSystem) SetProfile(observer ecs.Entity, p components.DetectionProfile) {
	*s.Profile(observer) = p
}

// Extent returns the target's visual extent: the local AABB for grids,
// Bounds for anything else.
func (s *DetectionSystem) Extent(target ecs.Entity) (components.Bounds, bool) {
	if s.gridMap.Has(target) {
		return s.gridMap.Get(target).LocalAABB, true
	}
	if s.boundsMap.Has(target) {
		return *s.boundsMap.Get(target), true
	}
	return components.Bounds{}, false
}

// Distance returns the Euclidean distance between two entities.
// It fails when either has no position or they are on different maps.
func (s *DetectionSystem) Distance(a, b ecs.Entity) (float32, bool) {
	if !s.posMap.Has(a) || !s.posMap.Has(b) {
		return 0, false
	}
	pa, pb := s.posMap.Get(a), s.posMap.Get(b)
	if pa.Map != pb.Map {
		return 0, false
	}
	dx := pb.X - pa.X
	dy := pb.Y - pa.Y
	return float32(math.Sqrt(float64(dx*dx + dy*dy))), true
}

// Bands returns the observer's radii against target. Reports false when the
// target has no geometry.
func (s *DetectionSystem) Bands(observer, target ecs.Entity) (Bands, bool) {
	extent, ok := s.Extent(target)
	if !ok {
		return Bands{}, false
	}
	return ComputeBands(extent, s.totalHeat(target), *s.Profile(observer)), true
}

// Classify returns how well observer detects target. Anything that cannot be
// resolved (dead entities, missing geometry, unrelated maps) is Undetected.
func (s *DetectionSystem) Classify(observer, target ecs.Entity) components.DetectionLevel {
	if !s.world.Alive(observer) || !s.world.Alive(target) {
		return components.Undetected
	}
	bands, ok := s.Bands(observer, target)
	if !ok {
		return components.Undetected
	}
	distance, ok := s.Distance(observer, target)
	if !ok {
		return components.Undetected
	}
	return bands.Classify(distance)
}

// IsGridDetected classifies a grid target. Non-grid targets are Undetected.
func (s *DetectionSystem) IsGridDetected(grid, observer ecs.Entity) components.DetectionLevel {
	if !s.world.Alive(grid) || !s.gridMap.Has(grid) {
		return components.Undetected
	}
	return s.Classify(observer, grid)
}

// RebuildIndex re-inserts every positioned target into the sweep index.
// Call once per frame before sweeping.
func (s *DetectionSystem) RebuildIndex() {
	s.index.Clear()
	query := s.targets.Query()
	for query.Next() {
		e := query.Entity()
		if !s.gridMap.Has(e) && !s.boundsMap.Has(e) {
			continue
		}
		pos := query.Get()
		s.index.Insert(e, pos.X, pos.Y)
	}
}

// Sweep appends every target within radar range that the observer detects
// at least partially. The neighbor query is uncapped so dense sectors are
// reported in full. The index must be current (see RebuildIndex).
// Must not be called while a query on the world is open.
func (s *DetectionSystem) Sweep(observer ecs.Entity, dst []Contact) []Contact {
	if !s.world.Alive(observer) || !s.posMap.Has(observer) {
		return dst
	}
	profile := *s.Profile(observer)
	origin := *s.posMap.Get(observer)

	s.neighbors = s.index.QueryRadiusLimit(s.neighbors[:0], origin, s.maxRange, observer, s.posMap, 0)
	for _, n := range s.neighbors {
		extent, ok := s.Extent(n.E)
		if !ok {
			continue
		}
		bands := ComputeBands(extent, s.totalHeat(n.E), profile)
		distance := float32(math.Sqrt(float64(n.DistSq)))
		level := bands.Classify(distance)
		if level == components.Undetected {
			continue
		}
		dst = append(dst, Contact{Target: n.E, Level: level, Distance: distance, Bands: bands})
	}
	return dst
}

func (s *DetectionSystem) totalHeat(e ecs.Entity) float32 {
	if !s.sigMap.Has(e) {
		return 0
	}
	return s.sigMap.Get(e).TotalHeat
}
