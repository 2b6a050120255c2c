package game

import (
	"log/slog"

	"github.com/pthm-cable/signature/components"
	"github.com/pthm-cable/signature/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.sampleWorld())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteStats(stats); err != nil {
		slog.Error("failed to write stats", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.Thermal.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// sampleWorld gathers the window-end state the collector summarizes.
func (g *Game) sampleWorld() telemetry.WorldSample {
	sample := telemetry.WorldSample{
		Grids:    g.numGrids,
		Crew:     g.numCrew,
		Drifters: g.numDrifters,
	}

	query := g.identities.Query()
	for query.Next() {
		e := query.Entity()
		id, _ := query.Get()

		if !g.sigMap.Has(e) {
			continue
		}
		sig := g.sigMap.Get(e)
		sample.TotalStored += float64(sig.StoredHeat)

		if id.Kind == components.KindGrid {
			sample.GridHeat = append(sample.GridHeat, float64(sig.TotalHeat))
			sample.GridIDs = append(sample.GridIDs, id.ID)
		}
	}

	burners := g.burners.Query()
	for burners.Next() {
		if burners.Get().Firing {
			sample.FiringThrusters++
		}
	}

	return sample
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	snapshot := g.createSnapshot(bookmark)

	path, err := telemetry.SaveSnapshot(snapshot, g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

// createSnapshot builds a snapshot from the current state.
func (g *Game) createSnapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		RunID:       g.runID,
		RNGSeed:     g.seed,
		WorldWidth:  g.cfg.Derived.WorldW32,
		WorldHeight: g.cfg.Derived.WorldH32,
		Tick:        g.tick,
		Passes:      g.thermal.Passes(),
		Bookmark:    bookmark,
	}

	query := g.identities.Query()
	for query.Next() {
		e := query.Entity()
		id, pos := query.Get()

		state := telemetry.EntityState{
			ID:   id.ID,
			Kind: id.Kind,
			X:    pos.X,
			Y:    pos.Y,
			Map:  pos.Map,
		}
		if g.attachedMap.Has(e) {
			if att := g.attachedMap.Get(e); att.Docked() && g.world.Alive(att.Grid) && g.idMap.Has(att.Grid) {
				state.Grid = g.idMap.Get(att.Grid).ID
			}
		}
		if g.sigMap.Has(e) {
			sig := g.sigMap.Get(e)
			state.StoredHeat = sig.StoredHeat
			state.TotalHeat = sig.TotalHeat
			state.HeatDissipation = sig.HeatDissipation
		}
		if g.thrusterMap.Has(e) {
			state.Firing = g.thrusterMap.Get(e).Firing
		}
		snapshot.Entities = append(snapshot.Entities, state)
	}

	return snapshot
}
