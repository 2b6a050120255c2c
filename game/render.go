package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/signature/camera"
	"github.com/pthm-cable/signature/components"
	"github.com/pthm-cable/signature/ui"
)

const controlsLegend = "[Space] pause  [</>] speed  [Tab] observer  [Click] select  [O] overlays  [P] perf  [Home] camera"

var (
	neutralColor  = rl.Color{R: 120, G: 130, B: 140, A: 255}
	observerColor = rl.Color{R: 90, G: 220, B: 140, A: 255}
)

// initGraphics creates the camera and UI panels. Requires an open window.
func (g *Game) initGraphics() {
	g.screenWidth = g.cfg.Derived.ScreenW32
	g.screenHeight = g.cfg.Derived.ScreenH32

	g.camera = camera.New(g.screenWidth, g.screenHeight, g.cfg.Derived.WorldW32, g.cfg.Derived.WorldH32)
	g.hud = ui.NewHUD()
	g.perfPanel = ui.NewPerfPanel(int32(g.screenWidth)-270, 110)
	g.inspector = ui.NewInspector(int32(g.screenWidth)-270, 110, 260)
	g.controls = ui.NewControlsPanel(10, 100, 220)
	g.overlays = ui.NewOverlayRegistry()
}

// Draw renders the game state.
func (g *Game) Draw() {
	g.perfCollector.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 8, G: 10, B: 16, A: 255})

	if g.overlays.IsEnabled(ui.OverlaySpatialGrid) {
		g.drawSpatialGrid()
	}

	viewer, hasViewer := g.viewerEntity()
	if hasViewer {
		// Profile creation is structural; do it before any query opens.
		g.detection.Profile(viewer)

		if g.overlays.IsEnabled(ui.OverlayRadarRange) {
			g.drawRadarRange(viewer)
		}
		if g.overlays.IsEnabled(ui.OverlayContacts) {
			g.drawContacts(viewer)
		}
	}

	g.drawEntities(viewer, hasViewer)

	if g.hasSelection && g.world.Alive(g.selected) {
		g.drawSelection(viewer, hasViewer)
	}

	g.drawUI(viewer, hasViewer)

	rl.EndDrawing()
}

// viewerEntity returns the observer whose view is rendered.
func (g *Game) viewerEntity() (ecs.Entity, bool) {
	if len(g.observers) == 0 {
		return ecs.Entity{}, false
	}
	e := g.observers[g.viewer%len(g.observers)]
	return e, g.world.Alive(e)
}

// maxGridHeat returns the hottest grid's TotalHeat for color scaling.
func (g *Game) maxGridHeat() float32 {
	var hottest float32
	query := g.identities.Query()
	for query.Next() {
		e := query.Entity()
		id, _ := query.Get()
		if id.Kind != components.KindGrid || !g.sigMap.Has(e) {
			continue
		}
		if t := g.sigMap.Get(e).TotalHeat; t > hottest {
			hottest = t
		}
	}
	return hottest
}

// entityColor picks the tint for a target under the active overlay.
func (g *Game) entityColor(e ecs.Entity, viewer ecs.Entity, hasViewer bool, maxHeat float32) rl.Color {
	if g.overlays.IsEnabled(ui.OverlayLevelTint) && hasViewer {
		target := e
		if g.attachedMap.Has(e) && g.attachedMap.Get(e).Docked() {
			target = g.attachedMap.Get(e).Grid
		}
		return ui.LevelColor(g.detection.Classify(viewer, target).String())
	}
	if g.overlays.IsEnabled(ui.OverlayHeatTint) && maxHeat > 0 && g.sigMap.Has(e) {
		return ui.HeatColor(g.sigMap.Get(e).TotalHeat / maxHeat)
	}
	return neutralColor
}

func (g *Game) drawEntities(viewer ecs.Entity, hasViewer bool) {
	maxHeat := g.maxGridHeat()
	showLabels := g.overlays.IsEnabled(ui.OverlayHeatLabels)

	query := g.identities.Query()
	for query.Next() {
		e := query.Entity()
		id, pos := query.Get()

		sx, sy := g.camera.WorldToScreen(pos.X, pos.Y)

		switch id.Kind {
		case components.KindGrid:
			box := g.gridMap.Get(e).LocalAABB
			if !g.camera.IsVisible(pos.X, pos.Y, box.Diagonal()) {
				continue
			}
			w := g.camera.WorldLength(box.Width)
			h := g.camera.WorldLength(box.Height)
			color := g.entityColor(e, viewer, hasViewer, maxHeat)
			rl.DrawRectangleLinesEx(rl.Rectangle{X: sx - w/2, Y: sy - h/2, Width: w, Height: h}, 2, color)
			if g.thrusterMap.Has(e) && g.thrusterMap.Get(e).Firing {
				rl.DrawCircle(int32(sx), int32(sy+h/2), 3, rl.Orange)
			}
			if showLabels && g.sigMap.Has(e) {
				rl.DrawText(fmt.Sprintf("%.0f", g.sigMap.Get(e).TotalHeat), int32(sx-w/2), int32(sy-h/2)-14, 12, rl.LightGray)
			}

		case components.KindCrew:
			if !g.camera.IsVisible(pos.X, pos.Y, 2) {
				continue
			}
			rl.DrawCircle(int32(sx), int32(sy), 2, g.entityColor(e, viewer, hasViewer, maxHeat))

		case components.KindDrifter:
			box := g.boundsMap.Get(e)
			if !g.camera.IsVisible(pos.X, pos.Y, box.Diagonal()) {
				continue
			}
			w := g.camera.WorldLength(box.Width)
			h := g.camera.WorldLength(box.Height)
			rl.DrawRectangleV(rl.Vector2{X: sx - w/2, Y: sy - h/2}, rl.Vector2{X: w, Y: h}, g.entityColor(e, viewer, hasViewer, maxHeat))

		case components.KindObserver:
			color := observerColor
			if hasViewer && e == viewer {
				color = rl.White
			}
			rl.DrawTriangle(
				rl.Vector2{X: sx, Y: sy - 7},
				rl.Vector2{X: sx - 6, Y: sy + 5},
				rl.Vector2{X: sx + 6, Y: sy + 5},
				color,
			)
		}
	}
}

func (g *Game) drawSpatialGrid() {
	cell := float32(g.cfg.Physics.GridCellSize)
	if cell <= 0 {
		return
	}
	color := rl.Color{R: 40, G: 45, B: 55, A: 255}
	worldW, worldH := g.cfg.Derived.WorldW32, g.cfg.Derived.WorldH32

	for x := float32(0); x <= worldW; x += cell {
		x0, y0 := g.camera.WorldToScreen(x, 0)
		x1, y1 := g.camera.WorldToScreen(x, worldH)
		rl.DrawLineV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, color)
	}
	for y := float32(0); y <= worldH; y += cell {
		x0, y0 := g.camera.WorldToScreen(0, y)
		x1, y1 := g.camera.WorldToScreen(worldW, y)
		rl.DrawLineV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, color)
	}
}

func (g *Game) drawRadarRange(viewer ecs.Entity) {
	pos := g.posMap.Get(viewer)
	sx, sy := g.camera.WorldToScreen(pos.X, pos.Y)
	r := g.camera.WorldLength(float32(g.cfg.Detection.Radar.MaxRange))
	rl.DrawCircleLinesV(rl.Vector2{X: sx, Y: sy}, r, rl.Color{R: 90, G: 220, B: 140, A: 80})
}

func (g *Game) drawContacts(viewer ecs.Entity) {
	from := g.posMap.Get(viewer)
	fx, fy := g.camera.WorldToScreen(from.X, from.Y)

	for _, c := range g.contacts[viewer] {
		if !g.world.Alive(c.Target) || !g.posMap.Has(c.Target) {
			continue
		}
		to := g.posMap.Get(c.Target)
		tx, ty := g.camera.WorldToScreen(to.X, to.Y)
		color := ui.LevelColor(c.Level.String())
		color.A = 140
		rl.DrawLineV(rl.Vector2{X: fx, Y: fy}, rl.Vector2{X: tx, Y: ty}, color)
	}
}

// drawSelection highlights the selected entity and, with the bands overlay,
// draws the viewer's detection radii around it.
func (g *Game) drawSelection(viewer ecs.Entity, hasViewer bool) {
	pos := g.posMap.Get(g.selected)
	sx, sy := g.camera.WorldToScreen(pos.X, pos.Y)
	center := rl.Vector2{X: sx, Y: sy}
	rl.DrawCircleLinesV(center, 14, rl.Yellow)

	if !hasViewer || !g.overlays.IsEnabled(ui.OverlayBands) {
		return
	}
	bands, ok := g.detection.Bands(viewer, g.selected)
	if !ok {
		return
	}
	rl.DrawCircleLinesV(center, g.camera.WorldLength(bands.Visual), rl.SkyBlue)
	rl.DrawCircleLinesV(center, g.camera.WorldLength(bands.Thermal), ui.LevelColor("PartialDetected"))
	rl.DrawCircleLinesV(center, g.camera.WorldLength(bands.Outline), ui.LevelColor("Detected"))
}

func (g *Game) drawUI(viewer ecs.Entity, hasViewer bool) {
	screenH := int32(rl.GetScreenHeight())

	observerLabel := "nobody"
	if hasViewer {
		observerLabel = fmt.Sprintf("observer #%d", g.idMap.Get(viewer).ID)
	}
	viewers := 0
	if g.hub != nil {
		viewers = g.hub.ClientCount()
	}

	g.hud.Draw(ui.HUDData{
		Title:     "Signature",
		Grids:     g.numGrids,
		Crew:      g.numCrew,
		Drifters:  g.numDrifters,
		Observers: len(g.observers),
		Tick:      g.tick,
		Passes:    g.thermal.Passes(),
		Speed:     g.stepsPerUpdate,
		FPS:       rl.GetFPS(),
		Viewers:   viewers,
		Paused:    g.paused,
		Observer:  observerLabel,
	})
	g.hud.DrawControls(screenH, controlsLegend)
	g.controls.Draw(g.overlays)

	if g.hasSelection && g.world.Alive(g.selected) {
		g.inspector.Draw(g.inspectorData(viewer, hasViewer))
		return
	}
	if g.showPerf {
		stats := g.perfCollector.Stats()
		g.perfPanel.Draw(ui.PerfPanelData{
			PhaseTimes: stats.PhaseAvg,
			Total:      stats.AvgTickDuration,
			Registry:   g.registry,
		})
	}
}

// inspectorData describes the selected entity as seen by the viewer.
func (g *Game) inspectorData(viewer ecs.Entity, hasViewer bool) ui.InspectorData {
	e := g.selected
	id := g.idMap.Get(e)
	data := ui.InspectorData{
		ID:      id.ID,
		Kind:    id.Kind.String(),
		Level:   components.Undetected.String(),
		MaxHeat: g.maxGridHeat(),
	}

	if g.gridMap.Has(e) {
		data.Name = g.gridMap.Get(e).Name
	}
	if extent, ok := g.detection.Extent(e); ok {
		data.Width, data.Height = extent.Width, extent.Height
	}
	if g.attachedMap.Has(e) {
		if att := g.attachedMap.Get(e); att.Docked() && g.idMap.Has(att.Grid) {
			data.Docked = true
			data.GridID = g.idMap.Get(att.Grid).ID
		}
	}
	if g.sigMap.Has(e) {
		sig := g.sigMap.Get(e)
		data.Stored, data.Total, data.Dissip = sig.StoredHeat, sig.TotalHeat, sig.HeatDissipation
	}
	if g.thrusterMap.Has(e) {
		data.Firing = g.thrusterMap.Get(e).Firing
	}
	if g.powerMap.Has(e) {
		data.Supply = g.powerMap.Get(e).CurrentSupply
	}

	if hasViewer && e != viewer {
		data.Level = g.detection.Classify(viewer, e).String()
		data.Distance, data.HasRange = g.detection.Distance(viewer, e)
		if bands, ok := g.detection.Bands(viewer, e); ok {
			data.Visual, data.Thermal, data.Outline = bands.Visual, bands.Thermal, bands.Outline
		}
	}
	return data
}
