package ui

import "image/color"

// Theme is the color set of the calculator window.
type Theme struct {
	Name string

	Window    color.RGBA
	DisplayBG color.RGBA
	DisplayFG color.RGBA

	Button    color.RGBA
	ButtonAlt color.RGBA
	ButtonFG  color.RGBA
	Focus     color.RGBA

	PanelBG  color.RGBA
	StatusFG color.RGBA
}

func rgb(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
}

var (
	LightTheme = Theme{
		Name:      "light",
		Window:    rgb(0xf0f0f0),
		DisplayBG: rgb(0xffffff),
		DisplayFG: rgb(0x000000),
		Button:    rgb(0xdddddd),
		ButtonAlt: rgb(0xc6d3e6),
		ButtonFG:  rgb(0x000000),
		Focus:     rgb(0x2f6fd0),
		PanelBG:   rgb(0x000000),
		StatusFG:  rgb(0x333333),
	}
	DarkTheme = Theme{
		Name:      "dark",
		Window:    rgb(0x222222),
		DisplayBG: rgb(0x000000),
		DisplayFG: rgb(0x00ff00),
		Button:    rgb(0x3a3a3a),
		ButtonAlt: rgb(0x2d3f58),
		ButtonFG:  rgb(0xeeeeee),
		Focus:     rgb(0x00ff00),
		PanelBG:   rgb(0x000000),
		StatusFG:  rgb(0xcccccc),
	}
)

// ThemeByName resolves "light" or "dark".
func ThemeByName(name string) (Theme, bool) {
	switch name {
	case LightTheme.Name:
		return LightTheme, true
	case DarkTheme.Name:
		return DarkTheme, true
	}
	return Theme{}, false
}
