package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// legendRows is the level swatches plus the heat gradient.
const legendRows = 4

var (
	toggleOff = rl.Color{R: 80, G: 80, B: 80, A: 255}
	toggleOn  = rl.Color{R: 100, G: 200, B: 100, A: 255}
	keyColor  = rl.Color{R: 150, G: 150, B: 150, A: 255}
)

// ControlsPanel lists the overlay toggles grouped by category, followed by
// a legend for the tint colors.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a hidden controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Height returns the panel height for the registry's current contents.
func (c *ControlsPanel) Height(overlays *OverlayRegistry) int32 {
	t := c.renderer.Theme
	rows := int32(1) // Title
	for _, cat := range overlays.Categories() {
		rows += int32(len(overlays.ByCategory(cat))) + 1
	}
	rows += legendRows + 1
	return rows*t.LineHeight + t.Padding*3
}

// Draw renders the panel and returns the bottom Y.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	t := r.Theme
	inner := c.width - t.Padding*2
	x := c.x + t.Padding

	r.DrawPanel(c.x, c.y, c.width, c.Height(overlays))
	y := c.y + t.Padding

	rl.DrawText("Overlays", x, y, 16, rl.White)
	y += t.LineHeight + 4

	for _, cat := range overlays.Categories() {
		y = r.DrawSectionHeader(x, y, categoryLabel(cat))
		for _, desc := range overlays.ByCategory(cat) {
			c.drawToggle(x, y, desc, overlays.IsEnabled(desc.ID), inner)
			y += t.LineHeight
		}
	}

	y = r.DrawSectionHeader(x, y, "Legend")
	for _, level := range []string{"Detected", "PartialDetected", "Undetected"} {
		y = r.DrawColorSwatch(x, y, "Level", level, LevelColor(level))
	}
	return c.drawHeatGradient(x, y, inner)
}

func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	t := c.renderer.Theme

	status, name := toggleOff, t.LabelColor
	if enabled {
		status, name = toggleOn, rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, status)
	rl.DrawText(desc.Name, x+14, y, t.FontSize, name)

	if desc.KeyLabel == "" {
		return
	}
	key := fmt.Sprintf("[%s]", desc.KeyLabel)
	rl.DrawText(key, x+width-rl.MeasureText(key, t.FontSize), y, t.FontSize, keyColor)
}

// drawHeatGradient draws the cold-to-hot scale used by the heat tint.
func (c *ControlsPanel) drawHeatGradient(x, y, width int32) int32 {
	t := c.renderer.Theme
	rl.DrawText("Heat", x, y, t.FontSize, t.LabelColor)

	barX := x + t.LabelWidth
	barW := width - t.LabelWidth
	for i := int32(0); i < barW; i++ {
		rl.DrawRectangle(barX+i, y+2, 1, t.BarHeight-2, HeatColor(float32(i)/float32(barW)))
	}
	return y + t.LineHeight
}

func categoryLabel(cat string) string {
	switch cat {
	case "visual":
		return "Visual"
	case "sensors":
		return "Sensors"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}
