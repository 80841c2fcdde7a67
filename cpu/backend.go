// Package cpu implements the simulation kernels in Go.
//
// It is the reference backend: deterministic for a given parameter and paint
// history, usable without a GPU, and parallel across rows within a dispatch.
package cpu

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/blas/blas32"

	"github.com/pthm-cable/turing/engine"
)

// DefaultPaintRadius is the paint stamp radius in texels.
const DefaultPaintRadius = 10

// Option configures a Backend.
type Option func(*Backend)

// WithWorkers sets the number of row workers. Zero uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(b *Backend) { b.pool = newRowPool(n) }
}

// WithPaintRadius sets the paint stamp radius in texels.
func WithPaintRadius(r float32) Option {
	return func(b *Backend) { b.paintRadius = r }
}

// WithSurface sets the render surface size in pixels.
func WithSurface(w, h int) Option {
	return func(b *Backend) { b.SetSurfaceSize(w, h) }
}

// Backend is a CPU implementation of engine.Backend.
type Backend struct {
	w, h    int
	buffers [2][]float32

	sim      engine.SimParams
	paint    engine.PaintParams
	render   engine.RenderParams
	gradient engine.Gradient

	paintRadius float32
	pool        *rowPool
	stepIndex   uint32

	surface *image.RGBA
	renders int
}

var _ engine.Backend = (*Backend)(nil)

// New allocates both buffers for a w×h grid. The surface defaults to the grid size.
func New(w, h int, opts ...Option) (*Backend, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", w, h)
	}
	n := w * h * 2
	b := &Backend{
		w:           w,
		h:           h,
		buffers:     [2][]float32{make([]float32, n), make([]float32, n)},
		sim:         engine.DefaultSimParams(w, h),
		render:      engine.RenderParams{Zoom: 1, Emboss: true, Boundary: engine.BoundaryReflect},
		gradient:    engine.DefaultGradient(),
		paintRadius: DefaultPaintRadius,
		pool:        newRowPool(0),
		surface:     image.NewRGBA(image.Rect(0, 0, w, h)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Close stops the worker pool.
func (b *Backend) Close() {
	b.pool.stop()
}

// SetSurfaceSize resizes the render surface. A zero size models a surface
// that cannot be acquired, e.g. a minimized window.
func (b *Backend) SetSurfaceSize(w, h int) {
	if w <= 0 || h <= 0 {
		b.surface = nil
		return
	}
	b.surface = image.NewRGBA(image.Rect(0, 0, w, h))
}

// Surface returns the most recently rendered image, or nil if none is available.
func (b *Backend) Surface() *image.RGBA {
	return b.surface
}

// Renders returns how many render passes completed.
func (b *Backend) Renders() int {
	return b.renders
}

// SimParams returns the last uploaded simulation block.
func (b *Backend) SimParams() engine.SimParams {
	return b.sim
}

func vec(data []float32) blas32.Vector {
	return blas32.Vector{N: len(data), Inc: 1, Data: data}
}

// WriteField replaces dst with texels.
func (b *Backend) WriteField(dst engine.BufferID, texels []float32) error {
	if len(texels) != len(b.buffers[dst]) {
		return fmt.Errorf("write buffer %v: got %d values, want %d", dst, len(texels), len(b.buffers[dst]))
	}
	blas32.Copy(vec(texels), vec(b.buffers[dst]))
	return nil
}

// ReadField returns a copy of src.
func (b *Backend) ReadField(src engine.BufferID) ([]float32, error) {
	out := make([]float32, len(b.buffers[src]))
	blas32.Copy(vec(b.buffers[src]), vec(out))
	return out, nil
}

func (b *Backend) UploadSimParams(block []byte) {
	if len(block) >= engine.SimParamsSize {
		b.sim = engine.DecodeSimParams(block)
	}
}

func (b *Backend) UploadPaintParams(block []byte) {
	if len(block) >= engine.PaintParamsSize {
		b.paint = engine.DecodePaintParams(block)
	}
}

func (b *Backend) UploadRenderParams(block []byte) {
	if len(block) >= engine.RenderParamsSize {
		b.render = engine.DecodeRenderParams(block)
	}
}

func (b *Backend) UploadGradient(block []byte) {
	if len(block) >= engine.GradientSize {
		b.gradient = engine.DecodeGradient(block)
	}
}

func (b *Backend) checkPair(src, dst engine.BufferID) error {
	if src == dst {
		return fmt.Errorf("src and dst are both buffer %v", src)
	}
	if int(src) > 1 || int(dst) > 1 {
		return fmt.Errorf("unknown buffer pair %v/%v", src, dst)
	}
	return nil
}

// DispatchStep integrates one step from src into dst.
func (b *Backend) DispatchStep(src, dst engine.BufferID) error {
	if err := b.checkPair(src, dst); err != nil {
		return err
	}
	if b.sim.GridWidth != uint32(b.w) || b.sim.GridHeight != uint32(b.h) {
		return fmt.Errorf("parameter grid %dx%d does not match buffers %dx%d",
			b.sim.GridWidth, b.sim.GridHeight, b.w, b.h)
	}
	s, d := b.buffers[src], b.buffers[dst]
	p, step := b.sim, b.stepIndex
	b.pool.run(b.h, func(y0, y1 int) {
		stepRows(s, d, b.w, b.h, p, step, y0, y1)
	})
	b.stepIndex++
	return nil
}

// DispatchPaint copies src into dst with the paint stamp applied.
func (b *Backend) DispatchPaint(src, dst engine.BufferID) error {
	if err := b.checkPair(src, dst); err != nil {
		return err
	}
	s, d := b.buffers[src], b.buffers[dst]
	cx, cy, r := b.paint.CenterX, b.paint.CenterY, b.paintRadius
	b.pool.run(b.h, func(y0, y1 int) {
		paintRows(s, d, b.w, cx, cy, r, y0, y1)
	})
	return nil
}

// Render draws src to the surface.
func (b *Backend) Render(src engine.BufferID) error {
	if b.surface == nil {
		return engine.ErrSurfaceUnavailable
	}
	s, img := b.buffers[src], b.surface
	rp, g := b.render, b.gradient
	b.pool.run(img.Rect.Dy(), func(y0, y1 int) {
		renderRows(s, b.w, b.h, rp, &g, img, y0, y1)
	})
	b.renders++
	return nil
}
