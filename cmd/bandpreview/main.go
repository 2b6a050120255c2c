// Detection band preview tool - interactive visualization with sliders.
//
// Usage: go run ./cmd/bandpreview
package main

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/signature/components"
	"github.com/pthm-cable/signature/systems"
	"github.com/pthm-cable/signature/ui"
)

const (
	windowWidth  = 1100
	windowHeight = 720
	previewSize  = 600
	panelWidth   = windowWidth - previewSize - 30
	curvePasses  = 40
)

// previewParams holds everything the sliders control.
type previewParams struct {
	Width       float32
	Height      float32
	Heat        float32
	Distance    float32
	Visual      float32
	Infrared    float32
	Outline     float32
	Rate        float32 // Heat per second for the decay curve
	Dissipation float32
	Interval    float32
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Detection Band Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := previewParams{
		Width:       40,
		Height:      25,
		Heat:        2500,
		Distance:    60,
		Visual:      1,
		Infrared:    1,
		Outline:     0.5,
		Rate:        500,
		Dissipation: 0.9,
		Interval:    0.5,
	}

	for !rl.WindowShouldClose() {
		profile := components.DetectionProfile{
			VisualMultiplier:       params.Visual,
			InfraredMultiplier:     params.Infrared,
			InfraredOutlinePortion: params.Outline,
		}
		extent := components.Bounds{Width: params.Width, Height: params.Height}
		bands := systems.ComputeBands(extent, params.Heat, profile)
		level := bands.Classify(params.Distance)

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		drawBands(bands, extent, params.Distance, level)
		drawCurve(params)

		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Visual: %.1f  Thermal: %.1f  Outline: %.1f", bands.Visual, bands.Thermal, bands.Outline), 15, statsY, 16, rl.DarkGray)
		partial := "none (outline covers thermal)"
		if bands.HasPartialBand() {
			partial = fmt.Sprintf("%.1f .. %.1f", bands.Outline, bands.Thermal)
		}
		rl.DrawText("Partial band: "+partial, 15, statsY+20, 16, rl.DarkGray)
		rl.DrawText("Level at distance: "+level.String(), 15, statsY+40, 16, ui.LevelColor(level.String()))

		panelX := float32(previewSize + 20)
		panelY := float32(10)
		rl.DrawText("Target", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 30
		panelY = slider(panelX, panelY, "Width", &params.Width, 1, 200, "%.0f")
		panelY = slider(panelX, panelY, "Height", &params.Height, 1, 200, "%.0f")
		panelY = slider(panelX, panelY, "Total heat", &params.Heat, 0, 40000, "%.0f")
		panelY = slider(panelX, panelY, "Observer distance", &params.Distance, 0, 300, "%.0f")

		rl.DrawText("Observer", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 30
		panelY = slider(panelX, panelY, "Visual multiplier", &params.Visual, 0, 4, "%.2f")
		panelY = slider(panelX, panelY, "Infrared multiplier", &params.Infrared, 0, 4, "%.2f")
		panelY = slider(panelX, panelY, "Infrared outline portion", &params.Outline, 0, 1, "%.2f")

		rl.DrawText("Decay curve", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 30
		panelY = slider(panelX, panelY, "Heat rate (per second)", &params.Rate, 0, 2000, "%.0f")
		panelY = slider(panelX, panelY, "Dissipation", &params.Dissipation, 0.01, 1, "%.2f")
		slider(panelX, panelY, "Pass interval (s)", &params.Interval, 0.05, 2, "%.2f")

		rl.EndDrawing()
	}
}

// slider draws a labelled slider bound to v and returns the next Y.
func slider(x, y float32, label string, v *float32, min, max float32, format string) float32 {
	rl.DrawText(label, int32(x), int32(y), 14, rl.Gray)
	y += 18
	*v = gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: float32(panelWidth - 80), Height: 20},
		"", "",
		*v, min, max,
	)
	rl.DrawText(fmt.Sprintf(format, *v), int32(x+float32(panelWidth-70)), int32(y+2), 16, rl.DarkGray)
	return y + 32
}

// drawBands renders the target at the center with its three radii and
// the observer on the horizontal axis.
func drawBands(bands systems.Bands, extent components.Bounds, distance float32, level components.DetectionLevel) {
	rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

	largest := max(bands.Visual, bands.Thermal, bands.Outline, distance, 1)
	scale := float32(previewSize/2-20) / largest
	cx := float32(10 + previewSize/2)
	cy := float32(10 + previewSize/2)
	center := rl.Vector2{X: cx, Y: cy}

	rl.DrawCircleV(center, bands.Thermal*scale, rl.Fade(ui.LevelColor("PartialDetected"), 0.25))
	rl.DrawCircleV(center, bands.Outline*scale, rl.Fade(ui.LevelColor("Detected"), 0.35))
	rl.DrawCircleLinesV(center, bands.Visual*scale, rl.Blue)

	w, h := extent.Width*scale, extent.Height*scale
	rl.DrawRectangleLinesEx(rl.Rectangle{X: cx - w/2, Y: cy - h/2, Width: w, Height: h}, 2, rl.Black)

	ox := cx + distance*scale
	rl.DrawLineV(center, rl.Vector2{X: ox, Y: cy}, rl.Gray)
	rl.DrawCircleV(rl.Vector2{X: ox, Y: cy}, 6, ui.LevelColor(level.String()))
}

// drawCurve plots StoredHeat over successive passes for a constant rate.
func drawCurve(p previewParams) {
	const (
		x0     = 20
		y0     = 30
		width  = 220
		height = 90
	)
	rl.DrawRectangle(x0-5, y0-20, width+10, height+25, rl.Fade(rl.White, 0.9))
	rl.DrawText("StoredHeat per pass", x0, y0-18, 12, rl.DarkGray)

	values := make([]float32, curvePasses)
	var stored, peak float32
	decay := float32(math.Pow(float64(p.Dissipation), float64(p.Interval)))
	for i := range values {
		stored = (stored + p.Rate*p.Interval) * decay
		values[i] = stored
		peak = max(peak, stored)
	}
	if peak <= 0 {
		return
	}

	step := float32(width) / float32(curvePasses-1)
	for i := 1; i < len(values); i++ {
		a := rl.Vector2{X: x0 + float32(i-1)*step, Y: y0 + height - values[i-1]/peak*height}
		b := rl.Vector2{X: x0 + float32(i)*step, Y: y0 + height - values[i]/peak*height}
		rl.DrawLineV(a, b, rl.Red)
	}
	rl.DrawText(fmt.Sprintf("peak %.0f", peak), x0+width-70, y0, 12, rl.DarkGray)
}
