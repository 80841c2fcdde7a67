// Parameter preview tool - a small live field on the CPU backend with sliders
// for the reaction coefficients.
//
// Usage: go run ./cmd/preview
package main

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"strings"
	"unsafe"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/turing/config"
	"github.com/pthm-cable/turing/cpu"
	"github.com/pthm-cable/turing/engine"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	gridSize     = 192
	panelWidth   = windowWidth - previewSize - 30
)

// slider is one labelled coefficient control.
type slider struct {
	label    string
	min, max float32
	format   string
	get      func(engine.SimParams) float32
	set      func(*engine.ParamStore, float32)
}

var sliders = []slider{
	{"Feed rate", 0.0, 0.1, "%.4f",
		func(p engine.SimParams) float32 { return p.FeedRate },
		(*engine.ParamStore).SetFeedRate},
	{"Kill rate", 0.0, 0.1, "%.4f",
		func(p engine.SimParams) float32 { return p.KillRate },
		(*engine.ParamStore).SetKillRate},
	{"Diffusion U", 0.0, 1.0, "%.3f",
		func(p engine.SimParams) float32 { return p.DiffuseU },
		(*engine.ParamStore).SetDiffuseU},
	{"Diffusion V", 0.0, 1.0, "%.3f",
		func(p engine.SimParams) float32 { return p.DiffuseV },
		(*engine.ParamStore).SetDiffuseV},
	{"Time step", 0.1, 1.5, "%.2f",
		func(p engine.SimParams) float32 { return p.DeltaTime },
		(*engine.ParamStore).SetDeltaTime},
}

// presetYAML is the clipboard export, shaped as a config overlay.
type presetYAML struct {
	Simulation struct {
		FeedRate  float32 `yaml:"feed_rate"`
		KillRate  float32 `yaml:"kill_rate"`
		DiffuseU  float32 `yaml:"diffuse_u"`
		DiffuseV  float32 `yaml:"diffuse_v"`
		DeltaTime float32 `yaml:"delta_time"`
	} `yaml:"simulation"`
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Parameter Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	cfg := config.Default()
	cfg.Grid.Width, cfg.Grid.Height = gridSize, gridSize

	back, err := cpu.New(gridSize, gridSize, cpu.WithSurface(gridSize, gridSize))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create backend: %v\n", err)
		os.Exit(1)
	}
	defer back.Close()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	e, err := engine.New(cfg, back, engine.WithLogger(log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create engine: %v\n", err)
		os.Exit(1)
	}
	if _, err := e.ScatterBlobs(-1); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed field: %v\n", err)
		os.Exit(1)
	}

	img := rl.GenImageColor(gridSize, gridSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	for !rl.WindowShouldClose() {
		if err := e.Frame(); err != nil {
			fmt.Fprintf(os.Stderr, "Frame failed: %v\n", err)
			return
		}
		updateTexture(texture, back)

		// Paint with the left mouse button inside the preview
		m := rl.GetMousePosition()
		sx, sy := (m.X-10)/previewSize, (m.Y-10)/previewSize
		inside := sx >= 0 && sx < 1 && sy >= 0 && sy < 1
		switch {
		case rl.IsMouseButtonPressed(rl.MouseButtonLeft) && inside:
			e.PointerDown(sx, sy)
		case rl.IsMouseButtonDown(rl.MouseButtonLeft):
			e.PointerMove(sx, sy)
		case rl.IsMouseButtonReleased(rl.MouseButtonLeft):
			e.PointerUp()
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: gridSize, Height: gridSize},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Steps: %d  Flips: %d", e.Steps(), e.Flips()), 15, statsY, 16, rl.DarkGray)
		rl.DrawText("Drag on the preview to paint", 15, statsY+20, 16, rl.Gray)

		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Reaction Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		params := e.Params()
		for _, s := range sliders {
			cur := s.get(params.Params())
			rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			next := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				fmt.Sprintf("%.1f", s.min), fmt.Sprintf("%.1f", s.max),
				cur, s.min, s.max,
			)
			rl.DrawText(fmt.Sprintf(s.format, cur), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if next != cur {
				s.set(params, next)
			}
			panelY += 35
		}

		rl.DrawLine(int32(panelX), int32(panelY), int32(panelX)+int32(panelWidth)-20, int32(panelY), rl.LightGray)
		panelY += 15

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(e.Paused(), "Resume", "Pause")) {
			e.SetPaused(!e.Paused())
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Scatter") {
			e.ScatterBlobs(-1)
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Seed") {
			e.SeedDefault()
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			p := params.Params()
			p.FeedRate = float32(cfg.Simulation.FeedRate)
			p.KillRate = float32(cfg.Simulation.KillRate)
			p.DiffuseU = float32(cfg.Simulation.DiffuseU)
			p.DiffuseV = float32(cfg.Simulation.DiffuseV)
			p.DeltaTime = float32(cfg.Simulation.DeltaTime)
			if err := params.Replace(p); err != nil {
				fmt.Fprintf(os.Stderr, "Reset failed: %v\n", err)
			}
			e.ScatterBlobs(-1)
		}
		panelY += 55

		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		text := presetText(params.Params())
		for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(text)
		}

		rl.EndDrawing()
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

// presetText renders the current coefficients as a config overlay.
func presetText(p engine.SimParams) string {
	var out presetYAML
	out.Simulation.FeedRate = p.FeedRate
	out.Simulation.KillRate = p.KillRate
	out.Simulation.DiffuseU = p.DiffuseU
	out.Simulation.DiffuseV = p.DiffuseV
	out.Simulation.DeltaTime = p.DeltaTime
	data, err := yaml.Marshal(&out)
	if err != nil {
		return err.Error()
	}
	return string(data)
}

// updateTexture uploads the backend's last rendered surface.
func updateTexture(texture rl.Texture2D, back *cpu.Backend) {
	surf := back.Surface()
	if surf == nil {
		return
	}
	pixels := unsafe.Slice((*color.RGBA)(unsafe.Pointer(&surf.Pix[0])), len(surf.Pix)/4)
	rl.UpdateTexture(texture, pixels)
}
