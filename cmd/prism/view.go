package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"
	"github.com/taigrr/prism/pkg/config"
	"github.com/taigrr/prism/pkg/input"
	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/scene"
)

func newViewCmd(opts *rootOptions) *cobra.Command {
	var fps int

	cmd := &cobra.Command{
		Use:   "view [model.glb|model.gltf]",
		Short: "Interactive viewer in the terminal",
		Long:  "Render a glTF model (or a textured cube) in the terminal using half-block cells.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Model = args[0]
			}
			v := &viewer{fps: max(fps, 1)}
			return v.run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().IntVar(&fps, "fps", 60, "target frames per second")
	return cmd
}

// viewer owns the terminal loop. Events arrive on their own goroutine and
// are folded into pending input that the frame loop drains once per frame.
type viewer struct {
	fps int

	mu      sync.Mutex
	pending input.State
	resized bool
	width   int
	height  int
	dragX   int
	dragY   int
	drag    bool
}

// statusRows are the terminal rows reserved below the image.
const statusRows = 1

func (v *viewer) run(ctx context.Context, cfg config.Config) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// any-event mouse tracking with SGR coordinates
	fmt.Fprint(os.Stdout, "\x1b[?1003h\x1b[?1006h")

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	v.width, v.height = width, height
	area := imageArea(width, height)
	fbWidth, fbHeight := render.TerminalSize(area)

	sc, err := buildScene(cfg, fbWidth, fbHeight, v.fps)
	if err != nil {
		return err
	}
	renderer := newRenderer(cfg, fbWidth, fbHeight)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	bindings := input.DefaultBindings()
	go v.handleEvents(term, bindings, cancel)

	edges := input.NewEdgeDetector()
	hud := newHUD()
	targetDuration := time.Second / time.Duration(v.fps)
	lastFrame := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		now := time.Now()
		dt := min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now

		frame, fired, resized := v.drain(edges)
		if resized {
			width, height = v.size()
			term.Erase()
			term.Resize(width, height)
			area = imageArea(width, height)
			fbWidth, fbHeight = render.TerminalSize(area)
			renderer.Resize(fbWidth, fbHeight)
			sc.Camera().SetAspect(fbWidth, fbHeight)
		}
		for _, a := range fired {
			applyToggle(a, &renderer.Shader, sc)
		}

		sc.Update(dt, &frame)
		stats := renderer.Render(sc)

		renderer.Framebuffer.Draw(term, area)
		hud.update(stats)
		hud.draw(term, width, height, &renderer.Shader, sc)
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

// imageArea is the part of a width x height terminal the frame is drawn to.
func imageArea(width, height int) uv.Rectangle {
	return image.Rect(0, 0, width, max(height-statusRows, 0))
}

func (v *viewer) size() (width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width, v.height
}

// drain takes the input gathered since the last frame and resets it.
func (v *viewer) drain(edges *input.EdgeDetector) (frame input.State, fired []input.Action, resized bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	fired = edges.Pressed(&v.pending, input.Toggles...)
	frame = input.State{Move: v.pending.Move, Look: v.pending.Look, Fast: v.pending.Fast}
	resized, v.resized = v.resized, false
	v.pending.Reset()
	return frame, fired, resized
}

func (v *viewer) handleEvents(term *uv.Terminal, bindings map[string]input.Action, cancel context.CancelFunc) {
	for ev := range term.Events() {
		v.mu.Lock()
		switch ev := ev.(type) {
		case uv.WindowSizeEvent:
			v.width, v.height = ev.Width, ev.Height
			v.resized = true

		case uv.KeyPressEvent:
			switch {
			case ev.MatchString("escape", "ctrl+c"):
				v.mu.Unlock()
				cancel()
				return
			case ev.MatchString("shift+w", "shift+up"):
				v.pending.Move.Z, v.pending.Fast = 1, true
			case ev.MatchString("shift+s", "shift+down"):
				v.pending.Move.Z, v.pending.Fast = -1, true
			case ev.MatchString("shift+d", "shift+right"):
				v.pending.Move.X, v.pending.Fast = 1, true
			case ev.MatchString("shift+a", "shift+left"):
				v.pending.Move.X, v.pending.Fast = -1, true
			case ev.MatchString("w", "up"):
				v.pending.Move.Z = 1
			case ev.MatchString("s", "down"):
				v.pending.Move.Z = -1
			case ev.MatchString("d", "right"):
				v.pending.Move.X = 1
			case ev.MatchString("a", "left"):
				v.pending.Move.X = -1
			case ev.MatchString("r"):
				v.pending.Move.Y = 1
			case ev.MatchString("f"):
				v.pending.Move.Y = -1
			default:
				for key, action := range bindings {
					if ev.MatchString(key) {
						v.pending.Hold(action)
					}
				}
			}

		case uv.MouseClickEvent:
			v.drag = true
			v.dragX, v.dragY = ev.X, ev.Y

		case uv.MouseReleaseEvent:
			v.drag = false

		case uv.MouseMotionEvent:
			if v.drag {
				v.pending.Look.X += float64(ev.X - v.dragX)
				v.pending.Look.Y += float64(ev.Y - v.dragY)
				v.dragX, v.dragY = ev.X, ev.Y
			}

		case uv.MouseWheelEvent:
			switch ev.Button {
			case uv.MouseWheelUp:
				v.pending.Move.Z, v.pending.Fast = 1, true
			case uv.MouseWheelDown:
				v.pending.Move.Z, v.pending.Fast = -1, true
			}
		}
		v.mu.Unlock()
	}
}

// applyToggle performs a one-shot action on the shader or scene.
func applyToggle(a input.Action, sh *render.Shader, sc *scene.Scene) {
	switch a {
	case input.ToggleDepth:
		if sh.Render == render.RenderDepth {
			sh.Render = render.RenderDefault
		} else {
			sh.Render = render.RenderDepth
		}
	case input.ToggleRotation:
		sc.Rotating = !sc.Rotating
	case input.ToggleNormalMap:
		sh.NormalMapping = !sh.NormalMapping
	case input.CycleShading:
		sh.Shading = render.NextShadingMode(sh.Shading)
	case input.CycleRender:
		sh.Render = render.NextRenderMode(sh.Render)
	}
}
