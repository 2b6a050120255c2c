package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// InspectorData describes the selected target as seen by the current observer.
type InspectorData struct {
	ID       uint32
	Kind     string
	Name     string
	Docked   bool
	GridID   uint32
	Width    float32
	Height   float32
	Stored   float32
	Total    float32
	Dissip   float32
	MaxHeat  float32 // Hottest grid, for bar scaling
	Level    string
	Distance float32
	HasRange bool
	Visual   float32
	Thermal  float32
	Outline  float32
	Firing   bool
	Supply   float32
}

// Inspector renders the selected target panel.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector panel and returns the bottom Y.
func (ins *Inspector) Draw(data InspectorData) int32 {
	r := ins.renderer
	padding := r.Theme.Padding
	contentWidth := ins.width - padding*2
	x := ins.x + padding

	r.DrawPanel(ins.x, ins.y, ins.width, 300)
	y := ins.y + padding

	title := fmt.Sprintf("%s #%d", data.Kind, data.ID)
	if data.Name != "" {
		title += " " + data.Name
	}
	rl.DrawText(title, x, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	if data.Docked {
		y = r.DrawLabelValue(x, y, "Docked to", fmt.Sprintf("grid #%d", data.GridID))
	}
	y = r.DrawLabelValue(x, y, "Extent", fmt.Sprintf("%.0f x %.0f", data.Width, data.Height))
	if data.Supply > 0 {
		y = r.DrawLabelValue(x, y, "Supply", fmt.Sprintf("%.0f", data.Supply))
	}
	if data.Firing {
		y = r.DrawLabelValue(x, y, "Thrusters", "FIRING")
	}
	y = r.DrawSpacer(y, 4)

	y = r.DrawSectionHeader(x, y, "Heat")
	y = r.DrawHeatBar(x, y, "Total", data.Total, data.MaxHeat, contentWidth)
	y = r.DrawHeatBar(x, y, "Stored", data.Stored, data.MaxHeat, contentWidth)
	y = r.DrawLabelValue(x, y, "Dissipation", fmt.Sprintf("%.3f", data.Dissip))
	y = r.DrawSpacer(y, 4)

	y = r.DrawSectionHeader(x, y, "Detection")
	y = r.DrawColorSwatch(x, y, "Level", data.Level, LevelColor(data.Level))
	if data.HasRange {
		y = r.DrawLabelValue(x, y, "Distance", fmt.Sprintf("%.0f", data.Distance))
	} else {
		y = r.DrawLabelValue(x, y, "Distance", "n/a")
	}
	y = r.DrawLabelValue(x, y, "Visual", fmt.Sprintf("%.0f", data.Visual))
	y = r.DrawLabelValue(x, y, "Thermal", fmt.Sprintf("%.0f", data.Thermal))
	y = r.DrawLabelValue(x, y, "Outline", fmt.Sprintf("%.0f", data.Outline))

	return y
}
