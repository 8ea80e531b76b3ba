package main

import (
	"fmt"
	"image/color"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/scene"
)

// hud is the status line under the image.
type hud struct {
	fps       float64
	fpsFrames int
	fpsTime   time.Time
	stats     render.Stats
}

func newHUD() *hud {
	return &hud{fpsTime: time.Now()}
}

// update counts a frame and keeps its statistics.
func (h *hud) update(stats render.Stats) {
	h.stats = stats
	h.fpsFrames++
	if elapsed := time.Since(h.fpsTime); elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

var (
	hudFg = color.RGBA{220, 220, 220, 255}
	hudBg = color.RGBA{20, 20, 28, 255}
)

func (h *hud) draw(scr uv.Screen, width, height int, sh *render.Shader, sc *scene.Scene) {
	if height < 1 {
		return
	}
	text := statusLine(h.fps, h.stats, sh, sc.Rotating)

	row := height - 1
	runes := []rune(text)
	for col := range width {
		content := " "
		if col < len(runes) {
			content = string(runes[col])
		}
		scr.SetCell(col, row, &uv.Cell{
			Content: content,
			Width:   1,
			Style:   uv.Style{Fg: hudFg, Bg: hudBg},
		})
	}
}

func statusLine(fps float64, stats render.Stats, sh *render.Shader, rotating bool) string {
	return fmt.Sprintf(" %3.0f fps | %s/%s | normal map %s | F5 rotate %s | tris %d drawn %d culled %d | frags %d",
		fps,
		sh.Render, sh.Shading,
		onOff(sh.NormalMapping),
		onOff(rotating),
		stats.Triangles,
		stats.Triangles-stats.Degenerate-stats.Clipped-stats.BackFacing-stats.ZeroArea,
		stats.Clipped+stats.BackFacing,
		stats.Fragments,
	)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
