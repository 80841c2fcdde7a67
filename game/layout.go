package game

import rl "github.com/gen2brain/raylib-go/raylib"

// fieldViewport returns the window area the field is drawn into: everything
// right of the control panel.
func fieldViewport(screenW, screenH, panelW int) rl.Rectangle {
	panelW = max(0, min(panelW, screenW))
	return rl.Rectangle{
		X:      float32(panelW),
		Y:      0,
		Width:  float32(screenW - panelW),
		Height: float32(screenH),
	}
}

// toNormalized maps a window pixel to normalized screen coordinates of the
// viewport. inside reports whether the pixel lies within it; coordinates
// outside [0,1] are still returned for drags that leave the viewport.
func toNormalized(mx, my float32, vp rl.Rectangle) (sx, sy float32, inside bool) {
	if vp.Width <= 0 || vp.Height <= 0 {
		return 0, 0, false
	}
	sx = (mx - vp.X) / vp.Width
	sy = (my - vp.Y) / vp.Height
	inside = sx >= 0 && sx < 1 && sy >= 0 && sy < 1
	return sx, sy, inside
}
