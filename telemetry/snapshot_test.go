package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/signature/components"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:     SnapshotVersion,
		RNGSeed:     42,
		WorldWidth:  4000,
		WorldHeight: 4000,
		Tick:        1200,
		Passes:      40,
		Entities: []EntityState{
			{ID: 1, Kind: components.KindGrid, X: 100, Y: 200, StoredHeat: 3, TotalHeat: 12.5, HeatDissipation: 0.9},
			{ID: 2, Kind: components.KindCrew, X: 104, Y: 198, Grid: 1, StoredHeat: 9.5, TotalHeat: 9.5, HeatDissipation: 0.9, Firing: true},
		},
		Bookmark: &Bookmark{Type: BookmarkHeatSpike, Tick: 1200, Description: "test"},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if !strings.HasSuffix(path, "snapshot_1200_heat_spike.json") {
		t.Errorf("unexpected path %q", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if loaded.Tick != 1200 || loaded.Passes != 40 || loaded.RNGSeed != 42 {
		t.Errorf("header mismatch: %+v", loaded)
	}

	crew, ok := loaded.Find(2)
	if !ok {
		t.Fatal("crew entity missing")
	}
	if crew.Grid != 1 || crew.StoredHeat != 9.5 || !crew.Firing {
		t.Errorf("crew state mismatch: %+v", crew)
	}
	if _, ok := loaded.Find(99); ok {
		t.Error("Find should fail for unknown ID")
	}
}

func TestLoadSnapshot_RejectsOtherVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 99, "tick": 5}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected version mismatch error")
	}
}

func TestLoadSnapshot_Missing(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
