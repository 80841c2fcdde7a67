// Package engine orchestrates a Gray-Scott reaction-diffusion simulation over
// a pair of ping-pong field buffers held by a Backend.
//
// An Engine has a single owner and is not safe for concurrent use; wrap it in
// Serialized when several goroutines need access.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/pthm-cable/turing/camera"
	"github.com/pthm-cable/turing/config"
	"github.com/pthm-cable/turing/field"
)

// Phase timer labels reported through PhaseTimer.
const (
	TimerStep   = "step"
	TimerPaint  = "paint"
	TimerRender = "render"
	TimerInit   = "init"
)

// PhaseTimer receives phase boundaries for performance accounting.
type PhaseTimer interface {
	StartPhase(name string)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithPhaseTimer reports kernel phases to t.
func WithPhaseTimer(t PhaseTimer) Option {
	return func(e *Engine) { e.timer = t }
}

// WithSeed fixes the random source used by ScatterBlobs.
func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.rng = field.NewRand(seed) }
}

// Engine is the simulation orchestrator.
type Engine struct {
	backend Backend
	log     *slog.Logger
	timer   PhaseTimer
	rng     *rand.Rand

	params *ParamStore
	view   *ViewMapper

	active BufferID
	flips  uint64
	steps  uint64

	paused           bool
	stepsPerFrame    int
	maxStepsPerFrame int

	// Scratch grid for initializer content, reused across resets
	grid       *field.Grid
	initParams field.InitParams
	blobCount  int

	pointer Pointer
}

// Pointer is the last known pointer state in normalized screen coordinates.
type Pointer struct {
	X, Y  float32
	Known bool
	Down  bool
}

// New builds an engine from cfg, uploads every parameter block and writes the
// default seed into buffer A.
func New(cfg *config.Config, backend Backend, opts ...Option) (*Engine, error) {
	start := time.Now()
	e := &Engine{
		backend:          backend,
		log:              slog.Default(),
		active:           BufferA,
		stepsPerFrame:    cfg.Simulation.StepsPerFrame,
		maxStepsPerFrame: max(cfg.Simulation.MaxStepsPerFrame, cfg.Simulation.StepsPerFrame),
		blobCount:        cfg.Initializer.BlobCount,
		initParams: field.InitParams{
			SeedRadiusSq:  cfg.Initializer.SeedRadiusSq,
			BlobMinRadius: cfg.Initializer.BlobMinRadius,
			BlobMaxRadius: cfg.Initializer.BlobMaxRadius,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		seed := uint64(cfg.Initializer.RandomSeed)
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		e.rng = field.NewRand(seed)
	}
	e.startPhase(TimerInit)

	grid, err := field.New(cfg.Grid.Width, cfg.Grid.Height)
	if err != nil {
		return nil, err
	}
	e.grid = grid

	view, err := newViewMapper(
		camera.New(cfg.Grid.Width, cfg.Grid.Height),
		RenderParams{
			Palette:  Palette(cfg.View.Palette),
			Emboss:   cfg.View.Emboss,
			Boundary: Boundary(cfg.Simulation.Boundary),
			Zoom:     float32(cfg.View.Zoom),
			PanX:     float32(cfg.View.PanX),
			PanY:     float32(cfg.View.PanY),
		},
		gradientFromConfig(cfg),
		backend,
	)
	if err != nil {
		return nil, err
	}
	e.view = view

	params, err := newParamStore(simParamsFromConfig(cfg), backend, view)
	if err != nil {
		return nil, err
	}
	e.params = params

	backend.UploadPaintParams(mustMarshal(PaintParams{}))

	if err := e.SeedDefault(); err != nil {
		return nil, err
	}

	e.log.Info("engine ready",
		"grid_w", cfg.Grid.Width,
		"grid_h", cfg.Grid.Height,
		"steps_per_frame", e.stepsPerFrame,
		"kernel", e.params.params.Kernel.String(),
		"boundary", e.params.params.Boundary.String(),
		"init_ms", time.Since(start).Milliseconds(),
	)
	return e, nil
}

func simParamsFromConfig(cfg *config.Config) SimParams {
	s := cfg.Simulation
	return SimParams{
		FeedRate:      float32(s.FeedRate),
		KillRate:      float32(s.KillRate),
		DiffuseU:      float32(s.DiffuseU),
		DiffuseV:      float32(s.DiffuseV),
		DeltaTime:     float32(s.DeltaTime),
		NoiseStrength: float32(s.NoiseStrength),
		GridWidth:     uint32(cfg.Grid.Width),
		GridHeight:    uint32(cfg.Grid.Height),
		Kernel:        Kernel(s.Kernel),
		Boundary:      Boundary(s.Boundary),
		MapMode:       s.MapMode,
	}
}

func gradientFromConfig(cfg *config.Config) Gradient {
	if len(cfg.Gradient.Stops) == 0 {
		return DefaultGradient()
	}
	return NewGradient(cfg.Derived.GradientPos, cfg.Derived.GradientColors)
}

// Params returns the parameter store.
func (e *Engine) Params() *ParamStore { return e.params }

// View returns the view and colour mapper.
func (e *Engine) View() *ViewMapper { return e.view }

// Backend returns the backend the engine drives.
func (e *Engine) Backend() Backend { return e.backend }

// Active returns the buffer holding the current field state.
func (e *Engine) Active() BufferID { return e.active }

// Flips returns the number of buffer swaps since creation.
func (e *Engine) Flips() uint64 { return e.flips }

// Steps returns the number of integration steps run since creation.
func (e *Engine) Steps() uint64 { return e.steps }

// Paused reports whether scheduling is suspended.
func (e *Engine) Paused() bool { return e.paused }

// SetPaused suspends or resumes step scheduling. Painting and rendering are unaffected.
func (e *Engine) SetPaused(p bool) {
	if p != e.paused {
		e.log.Debug("pause", "paused", p)
	}
	e.paused = p
}

// StepsPerFrame returns the number of steps RunFrame schedules.
func (e *Engine) StepsPerFrame() int { return e.stepsPerFrame }

// SetStepsPerFrame sets the number of steps per frame, clamped to
// [0, max_steps_per_frame].
func (e *Engine) SetStepsPerFrame(n int) {
	e.stepsPerFrame = max(0, min(n, e.maxStepsPerFrame))
}

// ReadActive returns a copy of the current field state.
func (e *Engine) ReadActive() ([]float32, error) {
	return e.backend.ReadField(e.active)
}

func (e *Engine) startPhase(name string) {
	if e.timer != nil {
		e.timer.StartPhase(name)
	}
}

func (e *Engine) flip() {
	e.active = e.active.Other()
	e.flips++
}

// Step runs one integration step from the active buffer into the inactive
// one, then swaps them. On failure the buffers are not swapped.
func (e *Engine) Step() error {
	e.startPhase(TimerStep)
	if err := e.backend.DispatchStep(e.active, e.active.Other()); err != nil {
		return &StepError{Phase: PhaseStep, Step: 0, Err: err}
	}
	e.flip()
	e.steps++
	return nil
}

// RunFrame runs StepsPerFrame sequential steps unless paused.
// A failed step aborts the rest of the frame; earlier steps stand.
func (e *Engine) RunFrame() error {
	if e.paused {
		return nil
	}
	return e.runSteps(e.stepsPerFrame)
}

func (e *Engine) runSteps(n int) error {
	for i := range n {
		if err := e.Step(); err != nil {
			var se *StepError
			if errors.As(err, &se) {
				se.Step = i
			}
			e.log.Error("step failed", "step", i, "steps", n, "error", err)
			return err
		}
	}
	return nil
}

// Render draws the active buffer. Surface errors are transient; see IsTransient.
func (e *Engine) Render() error {
	e.startPhase(TimerRender)
	if err := e.backend.Render(e.active); err != nil {
		if IsTransient(err) {
			e.log.Warn("render skipped", "error", err)
		} else {
			e.log.Error("render failed", "error", err)
		}
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// Frame runs one frame of steps followed by a render.
func (e *Engine) Frame() error {
	if err := e.RunFrame(); err != nil {
		return err
	}
	return e.Render()
}

// StepOnce runs one frame of steps regardless of pause, then renders.
// The pause state is left as it was.
func (e *Engine) StepOnce() error {
	if err := e.runSteps(e.stepsPerFrame); err != nil {
		return err
	}
	return e.Render()
}
