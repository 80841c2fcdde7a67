// Package camera provides the view transform between screen and field space.
package camera

// MinZoom is the smallest zoom accepted by SetZoom. Zoom has no upper bound.
const MinZoom = 1.0

// MaxPan bounds each pan axis to [-MaxPan, MaxPan].
const MaxPan = 1.0

// View controls the viewport into the field.
// Screen and field coordinates are both normalized so that [0,1] spans
// the visible surface or the whole grid respectively.
type View struct {
	// Zoom level (1.0 = whole field visible, 2.0 = 2x magnification)
	Zoom float32

	// Pan offset in normalized field units
	PanX, PanY float32

	// Grid dimensions in texels, used for texel conversion
	GridW, GridH int
}

// New creates a view over a grid of the given size with zoom 1 and no pan.
func New(gridW, gridH int) *View {
	return &View{
		Zoom:  1.0,
		GridW: gridW,
		GridH: gridH,
	}
}

// ScreenToField converts normalized screen coordinates to normalized field
// coordinates. This is the exact mapping the render kernels sample with.
func (v *View) ScreenToField(sx, sy float32) (fx, fy float32) {
	fx = (sx-0.5)/v.Zoom + 0.5 + v.PanX
	fy = (sy-0.5)/v.Zoom + 0.5 + v.PanY
	return fx, fy
}

// FieldToScreen converts normalized field coordinates to normalized screen
// coordinates. Inverse of ScreenToField.
func (v *View) FieldToScreen(fx, fy float32) (sx, sy float32) {
	sx = (fx-0.5-v.PanX)*v.Zoom + 0.5
	sy = (fy-0.5-v.PanY)*v.Zoom + 0.5
	return sx, sy
}

// ScreenToTexel maps normalized screen coordinates to integer texel
// coordinates. Truncates toward zero and does not clamp: targets outside
// the grid, including negative ones, are returned as-is.
func (v *View) ScreenToTexel(sx, sy float32) (tx, ty int32) {
	fx, fy := v.ScreenToField(sx, sy)
	return Texel(fx, v.GridW), Texel(fy, v.GridH)
}

// Texel scales a normalized field coordinate by size and truncates toward zero.
func Texel(f float32, size int) int32 {
	return int32(f * float32(size))
}

// SetZoom sets the zoom level, clamped to MinZoom.
func (v *View) SetZoom(zoom float32) {
	if zoom < MinZoom || zoom != zoom {
		zoom = MinZoom
	}
	v.Zoom = zoom
}

// ZoomBy multiplies the current zoom by the given factor.
func (v *View) ZoomBy(factor float32) {
	v.SetZoom(v.Zoom * factor)
}

// SetPan sets the pan offset, clamping each axis independently.
func (v *View) SetPan(x, y float32) {
	v.PanX = clamp(x, -MaxPan, MaxPan)
	v.PanY = clamp(y, -MaxPan, MaxPan)
}

// PanBy moves the view by a delta in normalized screen units.
// The delta is divided by zoom so a key press moves the same screen distance
// at every magnification.
func (v *View) PanBy(dx, dy float32) {
	v.SetPan(v.PanX+dx/v.Zoom, v.PanY+dy/v.Zoom)
}

// Reset returns the view to zoom 1 with no pan.
func (v *View) Reset() {
	v.Zoom = 1.0
	v.PanX = 0
	v.PanY = 0
}

// VisibleFieldBounds returns the normalized field rectangle covered by the
// screen. Values may fall outside [0,1] when panned past the edge.
func (v *View) VisibleFieldBounds() (minX, minY, maxX, maxY float32) {
	minX, minY = v.ScreenToField(0, 0)
	maxX, maxY = v.ScreenToField(1, 1)
	return
}

// clamp restricts a value to a range. NaN maps to lo.
func clamp(x, lo, hi float32) float32 {
	if x != x || x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
