package main

import (
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/turing/config"
	"github.com/pthm-cable/turing/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics on the CPU backend")
	backend := flag.String("backend", game.BackendGPU, "Compute backend for graphical mode: gpu or cpu")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	snapshotPath := flag.String("snapshot", "", "Snapshot to restore at startup")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config snapshot and captures")
	seed := flag.Uint64("seed", 0, "Blob RNG seed (0 = config, then time-based)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	stepsPerFrame := flag.Int("steps-per-frame", -1, "Simulation steps per frame (-1 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	opts := game.Options{
		Seed:          *seed,
		Backend:       *backend,
		OutputDir:     *outputDir,
		SnapshotDir:   *snapshotDir,
		SnapshotPath:  *snapshotPath,
		StepsPerFrame: *stepsPerFrame,
		MaxFrames:     *maxFrames,
		LogStats:      *logStats,
	}

	if *headless {
		os.Exit(runHeadless(cfg, opts, logger))
	}
	os.Exit(runWindow(cfg, opts, logger))
}

func runHeadless(cfg *config.Config, opts game.Options, log *slog.Logger) int {
	h, err := game.NewHeadless(cfg, opts, log)
	if err != nil {
		log.Error("failed to start headless run", "error", err)
		return 1
	}
	runErr := h.Run()
	if err := h.Close(); err != nil {
		log.Warn("closing output", "error", err)
	}
	if runErr != nil {
		log.Error("simulation failed", "error", runErr)
		return 1
	}
	return 0
}

func runWindow(cfg *config.Config, opts game.Options, log *slog.Logger) int {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width+cfg.Screen.PanelWidth), int32(cfg.Screen.Height), "Gray-Scott")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.New(cfg, opts, log)
	if err != nil {
		log.Error("failed to start", "error", err)
		return 1
	}

	for !rl.WindowShouldClose() && !g.Done() {
		g.Update()
		g.Draw()
	}
	g.Unload()

	if g.Err() != nil {
		return 1
	}
	return 0
}
