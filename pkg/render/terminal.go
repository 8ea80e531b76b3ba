package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// upperHalf is drawn with the top pixel as foreground and the bottom pixel
// as background, packing two framebuffer rows into one terminal row.
const upperHalf = "▀"

// TerminalSize returns the framebuffer dimensions that exactly cover area.
func TerminalSize(area uv.Rectangle) (width, height int) {
	return area.Dx(), area.Dy() * 2
}

// Draw presents the framebuffer on scr inside area, one cell per column and
// two pixel rows per cell. Pixels beyond the framebuffer are left untouched.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		top := (row - area.Min.Y) * 2
		if top >= fb.Height {
			break
		}
		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			scr.SetCell(col, row, &uv.Cell{
				Content: upperHalf,
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(fb.GetPixel(x, top)),
					Bg: cellColor(fb.GetPixel(x, top+1)),
				},
			})
		}
	}
}

// cellColor maps a pixel to a terminal color. Fully transparent pixels,
// including those past the last row, use the terminal default.
func cellColor(c Color) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}
