package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNew_FitsWorld(t *testing.T) {
	cam := New(1280, 800, 4000, 4000)

	if cam.X != 2000 || cam.Y != 2000 {
		t.Errorf("expected camera at (2000, 2000), got (%f, %f)", cam.X, cam.Y)
	}
	// Height is the tighter axis: 800/4000
	if !near(cam.Zoom, 0.2) || !near(cam.MinZoom, 0.2) {
		t.Errorf("expected fit zoom 0.2, got zoom %f min %f", cam.Zoom, cam.MinZoom)
	}

	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	if minY > 0 || maxY < 4000 || minX > 0 || maxX < 4000 {
		t.Errorf("whole world should be visible, got (%f,%f)-(%f,%f)", minX, minY, maxX, maxY)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(1.5)
	cam.Pan(100, -40)

	for _, tc := range []struct{ sx, sy float32 }{
		{640, 360},
		{0, 0},
		{1200, 600},
	} {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)", tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestPan_StopsAtEdges(t *testing.T) {
	cam := New(1000, 1000, 2000, 2000)
	cam.SetZoom(1)

	cam.Pan(-5000, 0)
	if cam.X != 0 {
		t.Errorf("expected X clamped to 0, got %f", cam.X)
	}
	cam.Pan(0, 99999)
	if cam.Y != 2000 {
		t.Errorf("expected Y clamped to 2000, got %f", cam.Y)
	}
}

func TestZoomClamped(t *testing.T) {
	cam := New(1000, 1000, 2000, 2000)

	cam.SetZoom(100)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("expected zoom clamped to max %f, got %f", cam.MaxZoom, cam.Zoom)
	}
	cam.ZoomBy(0.0001)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom clamped to min %f, got %f", cam.MinZoom, cam.Zoom)
	}
}

func TestZoomAt_KeepsPointFixed(t *testing.T) {
	cam := New(1000, 1000, 4000, 4000)
	cam.SetZoom(1)

	wx, wy := cam.ScreenToWorld(800, 300)
	cam.ZoomAt(800, 300, 2)
	sx, sy := cam.WorldToScreen(wx, wy)
	if !near(sx, 800) || !near(sy, 300) {
		t.Errorf("point under cursor moved to (%f, %f)", sx, sy)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1000, 1000, 4000, 4000)
	cam.SetZoom(1)
	cam.CenterOn(1000, 1000)

	if !cam.IsVisible(1000, 1000, 1) {
		t.Error("center should be visible")
	}
	if cam.IsVisible(3000, 3000, 10) {
		t.Error("far point should not be visible")
	}
	// Just outside the view but within radius
	if !cam.IsVisible(1520, 1000, 30) {
		t.Error("circle overlapping the edge should be visible")
	}
}

func TestResize(t *testing.T) {
	cam := New(1000, 1000, 2000, 2000)
	cam.Resize(500, 500)
	if !near(cam.MinZoom, 0.25) {
		t.Errorf("MinZoom = %f, want 0.25", cam.MinZoom)
	}
	cam.Resize(2000, 2000)
	if cam.Zoom < cam.MinZoom {
		t.Errorf("zoom %f below new minimum %f", cam.Zoom, cam.MinZoom)
	}
}
