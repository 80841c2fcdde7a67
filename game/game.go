// Package game hosts the simulation: the interactive window loop and the
// headless runner. It turns platform input into engine calls and owns
// telemetry output.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/turing/config"
	"github.com/pthm-cable/turing/engine"
	"github.com/pthm-cable/turing/telemetry"
	"github.com/pthm-cable/turing/ui"
)

// Options configures a run.
type Options struct {
	Seed          uint64 // Blob RNG seed (0 = config, then time-based)
	Backend       string // "gpu" (default) or "cpu"
	OutputDir     string // CSV logs, config snapshot and captures (empty = disabled)
	SnapshotDir   string // Snapshot destination (empty = OutputDir/snapshots or ./snapshots)
	SnapshotPath  string // Snapshot to restore at startup
	StepsPerFrame int    // Overrides the config when >= 0
	MaxFrames     int    // Stop after N frames (0 = unlimited)
	LogStats      bool   // Log frame and perf stats at each telemetry flush
}

// DefaultOptions returns options that keep every config value.
func DefaultOptions() Options {
	return Options{Backend: BackendGPU, StepsPerFrame: -1}
}

// Game holds the interactive session state.
type Game struct {
	cfg    *config.Config
	opts   Options
	log    *slog.Logger
	engine *engine.Engine
	back   Presenter

	// UI
	panel      *ui.ControlPanel
	controller *ui.Controller
	bindings   []ui.KeyBinding
	overlays   *ui.OverlayRegistry
	hud        *ui.HUD
	perfPanel  *ui.PerfPanel
	statsPanel *ui.StatsPanel
	probePanel *ui.ProbePanel

	// Telemetry
	perf          *telemetry.PerfCollector
	collector     *telemetry.Collector
	bookmarks     *telemetry.BookmarkDetector
	outputManager *telemetry.OutputManager
	lastStats     telemetry.FieldStats
	snapshotDir   string
	tel           *telemetrySink

	// Window layout
	screenW, screenH int
	viewport         rl.Rectangle

	started time.Time
	err     error
}

// New creates an interactive game. The window must already be open.
func New(cfg *config.Config, opts Options, log *slog.Logger) (*Game, error) {
	g := &Game{
		cfg:       cfg,
		opts:      opts,
		log:       log,
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		collector: telemetry.NewCollector(cfg.Telemetry.StatsInterval),
		bookmarks: telemetry.NewBookmarkDetector(10),
		overlays:  ui.NewOverlayRegistry(),
		hud:       ui.NewHUD(),
		screenW:   rl.GetScreenWidth(),
		screenH:   rl.GetScreenHeight(),
		started:   time.Now(),
	}
	g.snapshotDir = snapshotDir(opts)

	back, err := newPresenter(opts.Backend, cfg.Grid.Width, cfg.Grid.Height,
		float32(cfg.Paint.Radius), cfg.GPU.ShaderDir)
	if err != nil {
		return nil, fmt.Errorf("creating %s backend: %w", opts.Backend, err)
	}
	g.back = back

	g.engine, err = newEngine(cfg, back, opts, log, g.perf)
	if err != nil {
		back.Close()
		return nil, err
	}

	if opts.SnapshotPath != "" {
		if err := restoreSnapshot(g.engine, opts.SnapshotPath); err != nil {
			back.Close()
			return nil, err
		}
		log.Info("snapshot restored", "path", opts.SnapshotPath)
	}

	g.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		back.Close()
		return nil, err
	}
	if g.outputManager != nil {
		if err := g.outputManager.WriteConfig(cfg); err != nil {
			log.Warn("failed to write config snapshot", "error", err)
		}
	}

	g.tel = &telemetrySink{
		log:       log,
		logStats:  opts.LogStats,
		collector: g.collector,
		perf:      g.perf,
		bookmarks: g.bookmarks,
		output:    g.outputManager,
		snapDir:   g.snapshotDir,
	}

	presetNames := make([]string, len(cfg.Presets))
	presets := make(map[string][2]float32, len(cfg.Presets))
	for i, p := range cfg.Presets {
		presetNames[i] = p.Name
		presets[p.Name] = [2]float32{float32(p.Feed), float32(p.Kill)}
	}
	sliders := ui.DefaultSliders(cfg.Simulation.MaxStepsPerFrame)
	g.controller = ui.NewController(sliders, presets)
	g.bindings = ui.DefaultBindings(presetNames)
	g.panel = ui.NewControlPanel(0, 0, int32(cfg.Screen.PanelWidth), int32(g.screenH), sliders, presetNames)
	g.panel.SetOverlays(g.overlays.All())

	g.layout()
	return g, nil
}

// newEngine builds the engine with the run's seed and logger.
func newEngine(cfg *config.Config, back engine.Backend, opts Options, log *slog.Logger, timer engine.PhaseTimer) (*engine.Engine, error) {
	engOpts := []engine.Option{engine.WithLogger(log)}
	if timer != nil {
		engOpts = append(engOpts, engine.WithPhaseTimer(timer))
	}
	if opts.Seed != 0 {
		engOpts = append(engOpts, engine.WithSeed(opts.Seed))
	}
	e, err := engine.New(cfg, back, engOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	if opts.StepsPerFrame >= 0 {
		e.SetStepsPerFrame(opts.StepsPerFrame)
	}
	return e, nil
}

func restoreSnapshot(e *engine.Engine, path string) error {
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return err
	}
	if err := snap.Restore(e); err != nil {
		return fmt.Errorf("restoring snapshot: %w", err)
	}
	return nil
}

func snapshotDir(opts Options) string {
	switch {
	case opts.SnapshotDir != "":
		return opts.SnapshotDir
	case opts.OutputDir != "":
		return filepath.Join(opts.OutputDir, "snapshots")
	default:
		return "snapshots"
	}
}

// layout recomputes the field viewport and resizes the render surface.
func (g *Game) layout() {
	g.viewport = fieldViewport(g.screenW, g.screenH, g.cfg.Screen.PanelWidth)
	g.back.SetSurfaceSize(int(g.viewport.Width), int(g.viewport.Height))
	g.panel.SetHeight(int32(g.screenH))

	right := int32(g.screenW) - 250
	g.perfPanel = ui.NewPerfPanel(right, 10)
	g.statsPanel = ui.NewStatsPanel(right, 180, 240)
	g.probePanel = ui.NewProbePanel(right, 360, 240)
}

// Engine returns the engine driven by this game.
func (g *Game) Engine() *engine.Engine { return g.engine }

// Frame returns the number of completed frames.
func (g *Game) Frame() int64 { return g.collector.Frame() }

// Err returns the fatal error that stopped the game, if any.
func (g *Game) Err() error { return g.err }

// Done reports whether the loop should stop.
func (g *Game) Done() bool {
	if g.err != nil {
		return true
	}
	return g.opts.MaxFrames > 0 && g.collector.Frame() >= int64(g.opts.MaxFrames)
}

// Update handles input and advances the simulation by one frame.
func (g *Game) Update() {
	g.perf.StartFrame()

	g.perf.StartPhase(telemetry.PhaseInput)
	g.handleInput()
	if g.err != nil {
		return
	}

	if err := g.engine.RunFrame(); err != nil {
		g.fail(err)
	}
}

// Draw renders the field and UI, then records telemetry for the frame.
func (g *Game) Draw() {
	if g.err != nil {
		return
	}

	if err := g.engine.Render(); err != nil && !engine.IsTransient(err) {
		g.fail(err)
		return
	}

	g.perf.StartPhase(telemetry.PhaseUI)
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.back.Draw(g.viewport)
	actions := g.panel.Draw(g.engine)
	g.drawOverlays()

	rl.EndDrawing()

	for _, a := range actions {
		g.apply(a)
	}

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.collector.RecordFrame()
	g.flushTelemetry()

	g.perf.EndFrame()
	g.perf.RecordPresent()
}

// drawOverlays draws the HUD and any enabled readouts.
func (g *Game) drawOverlays() {
	x := int32(g.viewport.X) + 10

	if g.overlays.IsEnabled(ui.OverlayHUD) {
		sp := g.engine.Params().Params()
		rp := g.engine.View().RenderParams()
		g.hud.Draw(x, 10, ui.HUDData{
			Title:         "Gray-Scott",
			Steps:         g.engine.Steps(),
			Flips:         g.engine.Flips(),
			StepsPerFrame: g.engine.StepsPerFrame(),
			FPS:           rl.GetFPS(),
			Paused:        g.engine.Paused(),
			Feed:          sp.FeedRate,
			Kill:          sp.KillRate,
			Kernel:        sp.Kernel.String(),
			Boundary:      sp.Boundary.String(),
			Palette:       rp.Palette.String(),
			Zoom:          rp.Zoom,
			PanX:          rp.PanX,
			PanY:          rp.PanY,
			Painting:      g.engine.Pointer().Down,
		})
		g.hud.DrawControls(x, int32(g.screenH), "Drag: paint | Wheel: zoom | Arrows: pan | F1: help")
	}
	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(g.perf.Stats())
	}
	if g.overlays.IsEnabled(ui.OverlayStats) {
		g.statsPanel.Draw(g.lastStats)
	}
	if g.overlays.IsEnabled(ui.OverlayProbe) {
		g.probePanel.Draw(g.probe())
	}
	if g.overlays.IsEnabled(ui.OverlayHelp) {
		ui.DrawHelp(int32(g.viewport.X), 0, int32(g.viewport.Width), int32(g.screenH), g.bindings, g.overlays.All())
	}
}

// probe samples the most recently read field under the cursor.
func (g *Game) probe() ui.ProbeData {
	m := rl.GetMousePosition()
	sx, sy, _ := toNormalized(m.X, m.Y, g.viewport)
	view := g.engine.View().View()
	tx, ty := view.ScreenToTexel(sx, sy)
	return ui.ProbeAt(g.collector.LastField(), g.cfg.Grid.Width, g.cfg.Grid.Height, tx, ty)
}

// apply executes one UI action, handling the ones the engine does not own.
func (g *Game) apply(a ui.Action) {
	err := g.controller.Apply(g.engine, a)
	switch {
	case err == nil:
		g.log.Debug("action applied", "kind", a.Kind, "slider", a.Slider, "preset", a.Preset)
	case errors.Is(err, ui.ErrHostAction):
		switch a.Kind {
		case ui.ActionSnapshot:
			g.saveSnapshot(nil)
		case ui.ActionToggleOverlay:
			g.overlays.Toggle(a.Overlay)
		}
	case isFatal(err):
		g.fail(err)
	default:
		g.log.Warn("action rejected", "kind", a.Kind, "error", err)
	}
}

// isFatal reports whether err came from a failed backend operation.
func isFatal(err error) bool {
	var se *engine.StepError
	return errors.As(err, &se) || errors.Is(err, engine.ErrDeviceLost)
}

func (g *Game) fail(err error) {
	g.log.Error("fatal engine error", "error", err, "frame", g.collector.Frame())
	g.err = err
}

// Unload writes a final capture and releases all resources.
func (g *Game) Unload() {
	if g.outputManager != nil && g.err == nil {
		path := filepath.Join(g.outputManager.Dir(), "final.png")
		if err := g.back.Capture(path); err != nil {
			g.log.Warn("final capture failed", "error", err)
		}
	}
	if err := g.outputManager.Close(); err != nil {
		g.log.Warn("closing output", "error", err)
	}
	g.back.Close()
	g.log.Info("session ended", "frames", g.collector.Frame(), "steps", g.engine.Steps(),
		"elapsed", time.Since(g.started).Round(time.Millisecond))
}
