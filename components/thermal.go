package components

// ThermalSignature is the per-entity heat state.
//
// StoredHeat is integrated and decayed by the thermal system on every pass.
// TotalHeat is what observers see: for a standalone entity it mirrors
// StoredHeat, for a grid it is the grid's own StoredHeat plus the StoredHeat
// of every entity attached to it. TotalHeat is rebuilt from scratch each pass.
type ThermalSignature struct {
	StoredHeat      float32
	TotalHeat       float32
	HeatDissipation float32 // Fraction of heat kept per second, in (0,1]
}

// NewThermalSignature returns a zero-heat signature with the given decay.
func NewThermalSignature(dissipation float32) ThermalSignature {
	return ThermalSignature{HeatDissipation: dissipation}
}

// DetectionProfile holds an observer's sensor sensitivity.
type DetectionProfile struct {
	VisualMultiplier       float32 // Scales the target's visual silhouette into a range
	InfraredMultiplier     float32 // Scales sqrt(heat) into a range
	InfraredOutlinePortion float32 // Fraction of the thermal range at which outlines resolve
}

// DetectionLevel is the verdict of a detection query.
// Declaration order runs from most to least information.
type DetectionLevel uint8

const (
	Detected DetectionLevel = iota
	PartialDetected
	Undetected
)

// String returns the display name of the level.
func (l DetectionLevel) String() string {
	names := DetectionLevelNames()
	if int(l) < len(names) {
		return names[l]
	}
	return "Unknown"
}

// MoreThan reports whether l carries strictly more information than other.
func (l DetectionLevel) MoreThan(other DetectionLevel) bool {
	return l < other
}

// DetectionLevelNames returns the display names for all levels.
// The order matches the DetectionLevel constants.
func DetectionLevelNames() []string {
	return []string{"Detected", "PartialDetected", "Undetected"}
}

// DetectionLevelCount returns the number of detection levels.
func DetectionLevelCount() int {
	return len(DetectionLevelNames())
}
