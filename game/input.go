package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/turing/ui"
)

// handleInput processes window, mouse and keyboard input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	g.overlays.PollKeys()
	for _, a := range ui.PressedActions(g.bindings) {
		g.apply(a)
		if g.err != nil {
			return
		}
	}

	g.handlePointer()
	if g.err != nil {
		return
	}
	g.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
	if w == g.screenW && h == g.screenH {
		return
	}
	g.screenW, g.screenH = w, h
	g.layout()
	g.log.Debug("window resized", "width", w, "height", h)
}

// handlePointer forwards press, drag and release to the engine's painter.
// Presses that start over the control panel are left to the panel.
func (g *Game) handlePointer() {
	m := rl.GetMousePosition()
	sx, sy, inside := toNormalized(m.X, m.Y, g.viewport)

	var err error
	switch {
	case rl.IsMouseButtonPressed(rl.MouseButtonLeft):
		if inside {
			err = g.engine.PointerDown(sx, sy)
			g.collector.RecordPaint()
		}
	case rl.IsMouseButtonReleased(rl.MouseButtonLeft):
		g.engine.PointerUp()
	default:
		d := rl.GetMouseDelta()
		if d.X == 0 && d.Y == 0 {
			return
		}
		if g.engine.Pointer().Down {
			g.collector.RecordPaint()
		}
		err = g.engine.PointerMove(sx, sy)
	}
	if err != nil {
		g.fail(err)
	}
}

// handleCameraInput processes zoom and pan controls.
func (g *Game) handleCameraInput() {
	view := g.engine.View()
	zoomStep := float32(g.cfg.View.ZoomStep)
	panStep := float32(g.cfg.View.PanStep)

	m := rl.GetMousePosition()
	if _, _, inside := toNormalized(m.X, m.Y, g.viewport); inside {
		if wheel := rl.GetMouseWheelMove(); wheel > 0 {
			view.ZoomBy(zoomStep)
		} else if wheel < 0 {
			view.ZoomBy(1 / zoomStep)
		}
	}

	// PanBy divides by zoom, so steps are a fraction of the visible area
	if rl.IsKeyDown(rl.KeyRight) {
		view.PanBy(panStep, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		view.PanBy(-panStep, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		view.PanBy(0, panStep)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		view.PanBy(0, -panStep)
	}

	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		view.ZoomBy(zoomStep)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		view.ZoomBy(1 / zoomStep)
	}
}
