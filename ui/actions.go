package ui

import (
	"errors"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/turing/engine"
)

// ActionKind identifies a user command.
type ActionKind int

const (
	ActionSlider ActionKind = iota
	ActionTogglePause
	ActionStepOnce
	ActionClear
	ActionSeed
	ActionScatter
	ActionPreset
	ActionCycleKernel
	ActionCycleBoundary
	ActionCyclePalette
	ActionToggleEmboss
	ActionToggleMapMode
	ActionResetView
	ActionSnapshot
	ActionToggleOverlay
)

// Action is one command from the control panel or the keyboard.
type Action struct {
	Kind    ActionKind
	Slider  string    // Slider ID for ActionSlider
	Value   float32   // New slider value
	Preset  string    // Preset name for ActionPreset
	Overlay OverlayID // Overlay for ActionToggleOverlay
}

// ErrHostAction is returned by Apply for actions the host must carry out itself.
var ErrHostAction = errors.New("action handled by host")

// SliderDescriptor binds a panel slider to one engine parameter.
type SliderDescriptor struct {
	ID     string
	Label  string
	Min    float32
	Max    float32
	Format string
	Get    func(e *engine.Engine) float32
	Set    func(e *engine.Engine, v float32)
}

// DefaultSliders returns the simulation sliders. maxSteps bounds the
// steps-per-frame slider.
func DefaultSliders(maxSteps int) []SliderDescriptor {
	return []SliderDescriptor{
		{
			ID: "feed", Label: "Feed", Min: 0, Max: 0.1, Format: "%.4f",
			Get: func(e *engine.Engine) float32 { return e.Params().Params().FeedRate },
			Set: func(e *engine.Engine, v float32) { e.Params().SetFeedRate(v) },
		},
		{
			ID: "kill", Label: "Kill", Min: 0, Max: 0.1, Format: "%.4f",
			Get: func(e *engine.Engine) float32 { return e.Params().Params().KillRate },
			Set: func(e *engine.Engine, v float32) { e.Params().SetKillRate(v) },
		},
		{
			ID: "du", Label: "Diffuse U", Min: 0, Max: 1.5, Format: "%.3f",
			Get: func(e *engine.Engine) float32 { return e.Params().Params().DiffuseU },
			Set: func(e *engine.Engine, v float32) { e.Params().SetDiffuseU(v) },
		},
		{
			ID: "dv", Label: "Diffuse V", Min: 0, Max: 1.0, Format: "%.3f",
			Get: func(e *engine.Engine) float32 { return e.Params().Params().DiffuseV },
			Set: func(e *engine.Engine, v float32) { e.Params().SetDiffuseV(v) },
		},
		{
			ID: "dt", Label: "Delta T", Min: 0.1, Max: 1.5, Format: "%.2f",
			Get: func(e *engine.Engine) float32 { return e.Params().Params().DeltaTime },
			Set: func(e *engine.Engine, v float32) { e.Params().SetDeltaTime(v) },
		},
		{
			ID: "noise", Label: "Noise", Min: 0, Max: 0.1, Format: "%.3f",
			Get: func(e *engine.Engine) float32 { return e.Params().Params().NoiseStrength },
			Set: func(e *engine.Engine, v float32) { e.Params().SetNoise(v) },
		},
		{
			ID: "steps", Label: "Steps/frame", Min: 0, Max: float32(maxSteps), Format: "%.0f",
			Get: func(e *engine.Engine) float32 { return float32(e.StepsPerFrame()) },
			Set: func(e *engine.Engine, v float32) { e.SetStepsPerFrame(int(v + 0.5)) },
		},
	}
}

// Controller applies actions to an engine.
type Controller struct {
	sliders map[string]SliderDescriptor
	presets map[string][2]float32
}

// NewController builds a controller over the given sliders and presets.
func NewController(sliders []SliderDescriptor, presets map[string][2]float32) *Controller {
	c := &Controller{
		sliders: make(map[string]SliderDescriptor, len(sliders)),
		presets: presets,
	}
	for _, s := range sliders {
		c.sliders[s.ID] = s
	}
	return c
}

// Apply executes a against e. Snapshot and overlay actions are not engine
// operations; Apply returns ErrHostAction for them.
func (c *Controller) Apply(e *engine.Engine, a Action) error {
	switch a.Kind {
	case ActionSlider:
		s, ok := c.sliders[a.Slider]
		if !ok {
			return fmt.Errorf("unknown slider %q", a.Slider)
		}
		s.Set(e, a.Value)
	case ActionTogglePause:
		e.SetPaused(!e.Paused())
	case ActionStepOnce:
		return e.StepOnce()
	case ActionClear:
		return e.Clear()
	case ActionSeed:
		return e.SeedDefault()
	case ActionScatter:
		_, err := e.ScatterBlobs(-1)
		return err
	case ActionPreset:
		p, ok := c.presets[a.Preset]
		if !ok {
			return fmt.Errorf("unknown preset %q", a.Preset)
		}
		e.Params().ApplyPreset(p[0], p[1])
	case ActionCycleKernel:
		next, err := engine.ParseKernel(uint32(e.Params().Params().Kernel) + 1)
		if err != nil {
			next = engine.KernelDefault
		}
		return e.Params().SetKernel(next)
	case ActionCycleBoundary:
		next, err := engine.ParseBoundary(uint32(e.Params().Params().Boundary) + 1)
		if err != nil {
			next = engine.BoundaryWrap
		}
		return e.Params().SetBoundary(next)
	case ActionCyclePalette:
		next, err := engine.ParsePalette(uint32(e.View().RenderParams().Palette) + 1)
		if err != nil {
			next = engine.PaletteGradient
		}
		return e.View().SetPalette(next)
	case ActionToggleEmboss:
		e.View().SetEmboss(!e.View().RenderParams().Emboss)
	case ActionToggleMapMode:
		e.Params().SetMapMode(!e.Params().Params().MapMode)
	case ActionResetView:
		e.View().ResetView()
	case ActionSnapshot, ActionToggleOverlay:
		return ErrHostAction
	default:
		return fmt.Errorf("unknown action %d", a.Kind)
	}
	return nil
}

// KeyBinding maps a key to an action.
type KeyBinding struct {
	Key    int32
	Label  string
	Action Action
}

var presetKeys = []int32{rl.KeyOne, rl.KeyTwo, rl.KeyThree, rl.KeyFour, rl.KeyFive, rl.KeySix, rl.KeySeven, rl.KeyEight, rl.KeyNine}

// DefaultBindings returns the keyboard shortcuts. Number keys select presets
// in order.
func DefaultBindings(presetNames []string) []KeyBinding {
	b := []KeyBinding{
		{Key: rl.KeySpace, Label: "Space", Action: Action{Kind: ActionTogglePause}},
		{Key: rl.KeyS, Label: "S", Action: Action{Kind: ActionStepOnce}},
		{Key: rl.KeyC, Label: "C", Action: Action{Kind: ActionClear}},
		{Key: rl.KeyR, Label: "R", Action: Action{Kind: ActionSeed}},
		{Key: rl.KeyB, Label: "B", Action: Action{Kind: ActionScatter}},
		{Key: rl.KeyK, Label: "K", Action: Action{Kind: ActionCycleKernel}},
		{Key: rl.KeyO, Label: "O", Action: Action{Kind: ActionCycleBoundary}},
		{Key: rl.KeyG, Label: "G", Action: Action{Kind: ActionCyclePalette}},
		{Key: rl.KeyE, Label: "E", Action: Action{Kind: ActionToggleEmboss}},
		{Key: rl.KeyM, Label: "M", Action: Action{Kind: ActionToggleMapMode}},
		{Key: rl.KeyHome, Label: "Home", Action: Action{Kind: ActionResetView}},
		{Key: rl.KeyP, Label: "P", Action: Action{Kind: ActionSnapshot}},
	}
	for i, name := range presetNames {
		if i >= len(presetKeys) {
			break
		}
		b = append(b, KeyBinding{
			Key:    presetKeys[i],
			Label:  fmt.Sprintf("%d", i+1),
			Action: Action{Kind: ActionPreset, Preset: name},
		})
	}
	return b
}

// BindingFor returns the binding for key, if any.
func BindingFor(bindings []KeyBinding, key int32) (KeyBinding, bool) {
	for _, b := range bindings {
		if b.Key == key {
			return b, true
		}
	}
	return KeyBinding{}, false
}

// PressedActions returns the actions whose keys were pressed this frame.
func PressedActions(bindings []KeyBinding) []Action {
	var out []Action
	for _, b := range bindings {
		if rl.IsKeyPressed(b.Key) {
			out = append(out, b.Action)
		}
	}
	return out
}
