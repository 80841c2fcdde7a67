// Shader debug tool - runs the GPU kernels for a few frames and writes the
// rendered field to a PNG file for inspection. With -compare the same run is
// repeated on the CPU backend and the field difference is reported.
//
// Usage: go run ./cmd/shaderdebug -frames 60 -out debug.png -compare
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/turing/config"
	"github.com/pthm-cable/turing/cpu"
	"github.com/pthm-cable/turing/engine"
	"github.com/pthm-cable/turing/renderer"
	"github.com/pthm-cable/turing/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	shaderDir := flag.String("shaders", "", "Directory overriding the embedded shaders")
	outPath := flag.String("out", "debug.png", "Output PNG path")
	width := flag.Int("width", 256, "Grid width")
	height := flag.Int("height", 256, "Grid height")
	frames := flag.Int("frames", 30, "Frames to simulate")
	seed := flag.Uint64("seed", 1, "Blob RNG seed")
	compare := flag.Bool("compare", false, "Repeat the run on the CPU backend and report the difference")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.Grid.Width, cfg.Grid.Height = *width, *height

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Shader Debug")
	defer rl.CloseWindow()

	gpu, err := renderer.New(*width, *height,
		renderer.WithShaderDir(*shaderDir),
		renderer.WithPaintRadius(float32(cfg.Paint.Radius)),
		renderer.WithSurface(*width, *height))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create GPU backend: %v\n", err)
		os.Exit(1)
	}
	defer gpu.Close()

	gpuField, err := run(cfg, gpu, *seed, *frames, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "GPU run failed: %v\n", err)
		os.Exit(1)
	}
	if err := gpu.Capture(*outPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to export image: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Rendered %d frames to %s\n", *frames, *outPath)

	stats := telemetry.ComputeFieldStats(gpuField)
	fmt.Printf("GPU field: v_mean=%.4f v_max=%.4f coverage=%.3f\n", stats.VMean, stats.VMax, stats.Coverage)

	if !*compare {
		return
	}

	back, err := cpu.New(*width, *height,
		cpu.WithPaintRadius(float32(cfg.Paint.Radius)),
		cpu.WithSurface(*width, *height))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create CPU backend: %v\n", err)
		os.Exit(1)
	}
	defer back.Close()

	cpuField, err := run(cfg, back, *seed, *frames, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CPU run failed: %v\n", err)
		os.Exit(1)
	}

	a, b := widen(gpuField), widen(cpuField)
	fmt.Printf("CPU/GPU difference: max=%.6f l2=%.6f\n",
		floats.Distance(a, b, math.Inf(1)), floats.Distance(a, b, 2))
}

// run seeds a fresh engine on back and advances it frames times, rendering
// once at the end. It returns the active field.
func run(cfg *config.Config, back engine.Backend, seed uint64, frames int, log *slog.Logger) ([]float32, error) {
	e, err := engine.New(cfg, back, engine.WithSeed(seed), engine.WithLogger(log))
	if err != nil {
		return nil, err
	}
	for range frames {
		if err := e.RunFrame(); err != nil {
			return nil, err
		}
	}
	if err := e.Render(); err != nil {
		return nil, err
	}
	return e.ReadActive()
}

func widen(src []float32) []float64 {
	dst := make([]float64, len(src))
	for i, v := range src {
		dst[i] = float64(v)
	}
	return dst
}
