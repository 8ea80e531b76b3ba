package render

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorRed   = color.RGBA{255, 0, 0, 255}
	ColorGreen = color.RGBA{0, 255, 0, 255}
	ColorBlue  = color.RGBA{0, 0, 255, 255}
	ColorGray  = color.RGBA{100, 100, 100, 255}
)

// RGB creates an opaque color from RGB values.
func RGB(r, g, b uint8) Color {
	return color.RGBA{r, g, b, 255}
}

// linear converts an 8-bit color to float channels in [0,1].
// No gamma conversion is applied.
func linear(c Color) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// pack clamps every channel to [0,1] and packs the result as an opaque
// 8-bit color. Values above one are truncated, not tone-mapped.
func pack(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return RGB(r, g, b)
}

func gray(v float64) colorful.Color {
	return colorful.Color{R: v, G: v, B: v}
}

func scaled(c colorful.Color, s float64) colorful.Color {
	return colorful.Color{R: c.R * s, G: c.G * s, B: c.B * s}
}

func added(a, b colorful.Color) colorful.Color {
	return colorful.Color{R: a.R + b.R, G: a.G + b.G, B: a.B + b.B}
}
