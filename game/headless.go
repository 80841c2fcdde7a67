package game

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/pthm-cable/turing/config"
	"github.com/pthm-cable/turing/cpu"
	"github.com/pthm-cable/turing/engine"
	"github.com/pthm-cable/turing/telemetry"
)

// Headless runs the simulation on the CPU backend without a window.
type Headless struct {
	cfg    *config.Config
	opts   Options
	log    *slog.Logger
	engine *engine.Engine
	back   *cpu.Backend
	tel    *telemetrySink
	last   telemetry.FieldStats
}

// NewHeadless builds a headless runner. The render surface matches the
// configured screen size so captures look like the interactive view.
func NewHeadless(cfg *config.Config, opts Options, log *slog.Logger) (*Headless, error) {
	back, err := cpu.New(cfg.Grid.Width, cfg.Grid.Height,
		cpu.WithPaintRadius(float32(cfg.Paint.Radius)),
		cpu.WithSurface(cfg.Screen.Width, cfg.Screen.Height))
	if err != nil {
		return nil, fmt.Errorf("creating cpu backend: %w", err)
	}

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	e, err := newEngine(cfg, back, opts, log, perf)
	if err != nil {
		back.Close()
		return nil, err
	}
	if opts.SnapshotPath != "" {
		if err := restoreSnapshot(e, opts.SnapshotPath); err != nil {
			back.Close()
			return nil, err
		}
		log.Info("snapshot restored", "path", opts.SnapshotPath)
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		back.Close()
		return nil, err
	}
	if output != nil {
		if err := output.WriteConfig(cfg); err != nil {
			log.Warn("failed to write config snapshot", "error", err)
		}
	}

	return &Headless{
		cfg:    cfg,
		opts:   opts,
		log:    log,
		engine: e,
		back:   back,
		tel: &telemetrySink{
			log:       log,
			logStats:  opts.LogStats,
			collector: telemetry.NewCollector(cfg.Telemetry.StatsInterval),
			perf:      perf,
			bookmarks: telemetry.NewBookmarkDetector(10),
			output:    output,
			snapDir:   snapshotDir(opts),
		},
	}, nil
}

// Engine returns the engine driven by this runner.
func (h *Headless) Engine() *engine.Engine { return h.engine }

// Frame returns the number of completed frames.
func (h *Headless) Frame() int64 { return h.tel.collector.Frame() }

// LastStats returns the field statistics from the most recent flush.
func (h *Headless) LastStats() telemetry.FieldStats { return h.last }

// Update advances one frame and records telemetry. Rendering is skipped;
// the field is only drawn for captures.
func (h *Headless) Update() error {
	h.tel.perf.StartFrame()
	if err := h.engine.RunFrame(); err != nil {
		return err
	}
	h.tel.perf.StartPhase(telemetry.PhaseTelemetry)
	h.tel.collector.RecordFrame()
	if stats, ok := h.tel.flush(h.engine); ok {
		h.last = stats
	}
	h.tel.perf.EndFrame()
	return nil
}

// Run advances frames until MaxFrames is reached (forever if zero).
func (h *Headless) Run() error {
	start := time.Now()
	h.log.Info("starting headless simulation",
		"grid_w", h.cfg.Grid.Width,
		"grid_h", h.cfg.Grid.Height,
		"steps_per_frame", h.engine.StepsPerFrame(),
		"max_frames", h.opts.MaxFrames,
	)

	for h.opts.MaxFrames <= 0 || h.Frame() < int64(h.opts.MaxFrames) {
		if err := h.Update(); err != nil {
			return err
		}
	}

	h.log.Info("max frames reached",
		"frames", h.Frame(),
		"steps", h.engine.Steps(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// Capture renders the active buffer and writes it as a PNG.
func (h *Headless) Capture(path string) error {
	if err := h.engine.Render(); err != nil {
		return err
	}
	return telemetry.WritePNG(path, h.back.Surface())
}

// Close writes the final capture when output is enabled and releases resources.
func (h *Headless) Close() error {
	defer h.back.Close()
	if h.tel.output == nil {
		return nil
	}
	path := filepath.Join(h.tel.output.Dir(), "final.png")
	if err := h.Capture(path); err != nil {
		h.log.Warn("final capture failed", "error", err)
	} else {
		h.log.Info("final frame captured", "path", path)
	}
	return h.tel.output.Close()
}
