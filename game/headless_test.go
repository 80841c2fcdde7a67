package game

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/turing/config"
)

func smallConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Grid.Width, cfg.Grid.Height = 48, 32
	cfg.Screen.Width, cfg.Screen.Height = 48, 32
	cfg.Simulation.StepsPerFrame = 2
	cfg.Initializer.BlobMinRadius, cfg.Initializer.BlobMaxRadius = 2, 5
	cfg.Telemetry.StatsInterval = 2
	return cfg
}

func TestHeadlessRunWritesOutput(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.Backend = BackendCPU
	opts.Seed = 7
	opts.OutputDir = dir
	opts.MaxFrames = 6

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h, err := NewHeadless(smallConfig(t), opts, log)
	if err != nil {
		t.Fatalf("NewHeadless error: %v", err)
	}
	if err := h.Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if h.Frame() != 6 {
		t.Errorf("frames = %d, want 6", h.Frame())
	}
	if h.Engine().Steps() != 12 {
		t.Errorf("steps = %d, want 12", h.Engine().Steps())
	}
	if h.LastStats().UMean == 0 {
		t.Error("expected field stats after a flush")
	}

	if err := h.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	for _, name := range []string{"config.yaml", "frames.csv", "perf.csv", "bookmarks.csv", "final.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestHeadlessStepsPerFrameOverride(t *testing.T) {
	opts := DefaultOptions()
	opts.StepsPerFrame = 0
	opts.MaxFrames = 3

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h, err := NewHeadless(smallConfig(t), opts, log)
	if err != nil {
		t.Fatalf("NewHeadless error: %v", err)
	}
	defer h.Close()

	if err := h.Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if h.Engine().Steps() != 0 {
		t.Errorf("steps = %d, want 0 with steps_per_frame=0", h.Engine().Steps())
	}
}
