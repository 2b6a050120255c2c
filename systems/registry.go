package systems

// Phase IDs for the simulation step. Perf tracking and logs key on these.
const (
	PhaseThrusters = "thrusters"
	PhasePhysics   = "physics"
	PhaseThermal   = "thermal"
	PhaseIndex     = "index"
	PhaseRadar     = "radar"
	PhaseTelemetry = "telemetry"
)

// SystemInfo describes a simulation system for display.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this system does
}

// SystemRegistry holds metadata about all systems.
// This centralizes system naming so the HUD and perf logs stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all known systems.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.Register(SystemInfo{ID: PhaseThrusters, Name: "Thrusters", Description: "Schedules thruster burns"})
	reg.Register(SystemInfo{ID: PhasePhysics, Name: "Physics", Description: "Moves entities and keeps crew on their grid"})
	reg.Register(SystemInfo{ID: PhaseThermal, Name: "Thermal", Description: "Integrates, decays and rolls up heat"})
	reg.Register(SystemInfo{ID: PhaseIndex, Name: "Index", Description: "Rebuilds the radar spatial index"})
	reg.Register(SystemInfo{ID: PhaseRadar, Name: "Radar", Description: "Runs observer detection sweeps"})
	reg.Register(SystemInfo{ID: PhaseTelemetry, Name: "Telemetry", Description: "Collects window stats"})
	return reg
}

// Register adds a system to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// GetName returns the display name for a system ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// IDs returns all system IDs in registration order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
