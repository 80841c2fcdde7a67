package engine

import (
	"fmt"

	"github.com/pthm-cable/turing/camera"
)

// ViewMapper owns the view transform and colour mapping state. Each change
// re-uploads the whole render block; gradient changes upload the gradient block.
type ViewMapper struct {
	view     *camera.View
	palette  Palette
	emboss   bool
	boundary Boundary
	gradient Gradient
	backend  Backend
}

func newViewMapper(view *camera.View, rp RenderParams, g Gradient, backend Backend) (*ViewMapper, error) {
	if _, err := ParsePalette(uint32(rp.Palette)); err != nil {
		return nil, fmt.Errorf("palette %d: %w", rp.Palette, err)
	}
	m := &ViewMapper{
		view:     view,
		palette:  rp.Palette,
		emboss:   rp.Emboss,
		boundary: rp.Boundary,
		gradient: g,
		backend:  backend,
	}
	m.view.SetZoom(rp.Zoom)
	m.view.SetPan(rp.PanX, rp.PanY)
	m.upload()
	m.uploadGradient()
	return m, nil
}

// RenderParams returns the current render block contents.
func (m *ViewMapper) RenderParams() RenderParams {
	return RenderParams{
		Palette:  m.palette,
		Emboss:   m.emboss,
		Boundary: m.boundary,
		Zoom:     m.view.Zoom,
		PanX:     m.view.PanX,
		PanY:     m.view.PanY,
	}
}

// View returns a copy of the current view transform.
func (m *ViewMapper) View() camera.View {
	return *m.view
}

// Gradient returns the current gradient.
func (m *ViewMapper) Gradient() Gradient {
	return m.gradient
}

func (m *ViewMapper) upload() {
	m.backend.UploadRenderParams(mustMarshal(m.RenderParams()))
}

func (m *ViewMapper) uploadGradient() {
	m.backend.UploadGradient(mustMarshal(m.gradient))
}

// SetZoom sets the zoom, clamped to at least 1.
func (m *ViewMapper) SetZoom(z float32) {
	m.view.SetZoom(z)
	m.upload()
}

// ZoomBy multiplies the zoom by factor.
func (m *ViewMapper) ZoomBy(factor float32) {
	m.view.ZoomBy(factor)
	m.upload()
}

// SetPan sets the pan offset, clamped to [-1,1] per axis.
func (m *ViewMapper) SetPan(x, y float32) {
	m.view.SetPan(x, y)
	m.upload()
}

// PanBy moves the view by a screen-space delta.
func (m *ViewMapper) PanBy(dx, dy float32) {
	m.view.PanBy(dx, dy)
	m.upload()
}

// ResetView returns to zoom 1 with no pan.
func (m *ViewMapper) ResetView() {
	m.view.Reset()
	m.upload()
}

// SetPalette selects the colour palette. Unknown palettes are rejected without upload.
func (m *ViewMapper) SetPalette(p Palette) error {
	if _, err := ParsePalette(uint32(p)); err != nil {
		return fmt.Errorf("set palette %d: %w", p, err)
	}
	m.palette = p
	m.upload()
	return nil
}

// SetEmboss toggles emboss shading.
func (m *ViewMapper) SetEmboss(on bool) {
	m.emboss = on
	m.upload()
}

// SetGradient replaces the gradient and returns the number of stops kept.
func (m *ViewMapper) SetGradient(positions, colors []float32) int {
	m.gradient = NewGradient(positions, colors)
	m.uploadGradient()
	return int(m.gradient.Count)
}

func (m *ViewMapper) setBoundary(b Boundary) {
	m.boundary = b
	m.upload()
}
