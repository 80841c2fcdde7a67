package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/turing/engine"
)

// ControlPanel renders the left-side control panel and reports the actions
// the user triggered. It never mutates the engine itself.
type ControlPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   int32
	sliders  []SliderDescriptor
	presets  []string
	overlays []OverlayDescriptor
}

// NewControlPanel creates a control panel.
func NewControlPanel(x, y, width, height int32, sliders []SliderDescriptor, presets []string) *ControlPanel {
	return &ControlPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		height:   height,
		sliders:  sliders,
		presets:  presets,
	}
}

// SetOverlays adds toggle buttons for the given overlays.
func (c *ControlPanel) SetOverlays(overlays []OverlayDescriptor) {
	c.overlays = overlays
}

// SetHeight updates the panel height after a window resize.
func (c *ControlPanel) SetHeight(h int32) {
	c.height = h
}

// Contains reports whether a screen point lies over the panel.
func (c *ControlPanel) Contains(px, py int32) bool {
	return px >= c.x && px < c.x+c.width && py >= c.y && py < c.y+c.height
}

// Draw renders the panel and returns the actions triggered this frame.
func (c *ControlPanel) Draw(e *engine.Engine) []Action {
	r := c.renderer
	th := r.Theme
	padding := th.Padding
	lineHeight := th.LineHeight
	ctrlH := th.ControlHeight

	r.DrawPanel(c.x, c.y, c.width, c.height)

	var actions []Action
	x := float32(c.x + padding)
	y := c.y + padding
	contentW := float32(c.width - padding*2)

	rl.DrawText("Reaction-Diffusion", c.x+padding, y, 16, rl.White)
	y += lineHeight + 8

	// Parameters
	y = r.DrawSectionHeader(c.x+padding, y, "Parameters")
	for _, s := range c.sliders {
		cur := s.Get(e)
		rl.DrawText(s.Label, c.x+padding, y, th.FontSize, th.LabelColor)
		val := fmt.Sprintf(s.Format, cur)
		valW := rl.MeasureText(val, th.FontSize)
		rl.DrawText(val, c.x+c.width-padding-valW, y, th.FontSize, th.ValueColor)
		y += lineHeight

		next := gui.SliderBar(rl.Rectangle{X: x, Y: float32(y), Width: contentW, Height: ctrlH}, "", "", cur, s.Min, s.Max)
		if next != cur {
			actions = append(actions, Action{Kind: ActionSlider, Slider: s.ID, Value: next})
		}
		y += int32(ctrlH) + 6
	}
	y += 4

	// Simulation
	y = r.DrawSectionHeader(c.x+padding, y, "Simulation")
	half := (contentW - 6) / 2
	pauseText := "Pause"
	if e.Paused() {
		pauseText = "Resume"
	}
	y = c.buttonRow(&actions, x, y, half, []button{
		{pauseText, Action{Kind: ActionTogglePause}},
		{"Step", Action{Kind: ActionStepOnce}},
	})
	y = c.buttonRow(&actions, x, y, half, []button{
		{"Clear", Action{Kind: ActionClear}},
		{"Seed", Action{Kind: ActionSeed}},
	})
	y = c.buttonRow(&actions, x, y, half, []button{
		{"Blobs", Action{Kind: ActionScatter}},
		{"Snapshot", Action{Kind: ActionSnapshot}},
	})
	y += 4

	// Modes
	sp := e.Params().Params()
	rp := e.View().RenderParams()
	y = r.DrawSectionHeader(c.x+padding, y, "Modes")
	y = c.buttonRow(&actions, x, y, half, []button{
		{"Kernel: " + sp.Kernel.String(), Action{Kind: ActionCycleKernel}},
		{"Edge: " + sp.Boundary.String(), Action{Kind: ActionCycleBoundary}},
	})
	y = c.buttonRow(&actions, x, y, half, []button{
		{"Palette: " + rp.Palette.String(), Action{Kind: ActionCyclePalette}},
		{toggleText(rp.Emboss, "Emboss: on", "Emboss: off"), Action{Kind: ActionToggleEmboss}},
	})
	y = c.buttonRow(&actions, x, y, half, []button{
		{toggleText(sp.MapMode, "Map: on", "Map: off"), Action{Kind: ActionToggleMapMode}},
		{"Reset view", Action{Kind: ActionResetView}},
	})
	y += 4

	// Presets
	y = r.DrawSectionHeader(c.x+padding, y, "Presets")
	for i := 0; i < len(c.presets); i += 2 {
		row := []button{{c.presets[i], Action{Kind: ActionPreset, Preset: c.presets[i]}}}
		if i+1 < len(c.presets) {
			row = append(row, button{c.presets[i+1], Action{Kind: ActionPreset, Preset: c.presets[i+1]}})
		}
		y = c.buttonRow(&actions, x, y, half, row)
	}
	y += 4

	if len(c.overlays) > 0 {
		y = r.DrawSectionHeader(c.x+padding, y, "Overlays")
		for i := 0; i < len(c.overlays); i += 2 {
			row := []button{overlayButton(c.overlays[i])}
			if i+1 < len(c.overlays) {
				row = append(row, overlayButton(c.overlays[i+1]))
			}
			y = c.buttonRow(&actions, x, y, half, row)
		}
	}

	return actions
}

type button struct {
	text   string
	action Action
}

// buttonRow draws up to two buttons side by side and returns the next Y.
func (c *ControlPanel) buttonRow(actions *[]Action, x float32, y int32, w float32, row []button) int32 {
	h := c.renderer.Theme.ControlHeight + 4
	for i, b := range row {
		bx := x + float32(i)*(w+6)
		if gui.Button(rl.Rectangle{X: bx, Y: float32(y), Width: w, Height: h}, b.text) {
			*actions = append(*actions, b.action)
		}
	}
	return y + int32(h) + 4
}

func overlayButton(d OverlayDescriptor) button {
	return button{
		text:   fmt.Sprintf("%s [%s]", d.Name, d.KeyLabel),
		action: Action{Kind: ActionToggleOverlay, Overlay: d.ID},
	}
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
