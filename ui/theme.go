// Package ui draws the HUD, panels and overlay toggles for graphical mode.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	BarFillLow     rl.Color
	BarFillMedium  rl.Color
	BarFillHigh    rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.LightGray,
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:        rl.Color{R: 100, G: 150, B: 200, A: 255},
		BarFillLow:     rl.Color{R: 100, G: 150, B: 220, A: 255},
		BarFillMedium:  rl.Color{R: 220, G: 180, B: 90, A: 255},
		BarFillHigh:    rl.Color{R: 230, G: 80, B: 60, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     90,
		BarHeight:      12,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}

// LevelColor returns the display color for a detection level name.
// Detected is hot red, PartialDetected amber, anything else dim blue.
func LevelColor(level string) rl.Color {
	switch level {
	case "Detected":
		return rl.Color{R: 235, G: 70, B: 55, A: 255}
	case "PartialDetected":
		return rl.Color{R: 240, G: 180, B: 60, A: 255}
	default:
		return rl.Color{R: 70, G: 90, B: 130, A: 255}
	}
}

// HeatColor maps a heat ratio in [0,1] from cold blue to hot red.
func HeatColor(ratio float32) rl.Color {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return rl.Color{
		R: uint8(60 + ratio*195),
		G: uint8(90 - ratio*40),
		B: uint8(200 - ratio*170),
		A: 255,
	}
}
