// Package renderer implements the simulation kernels on the GPU with raylib.
package renderer

import (
	"fmt"
	"image/color"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/turing/engine"
)

// DefaultPaintRadius is the paint stamp radius in texels.
const DefaultPaintRadius = 10

// Option configures a GPU backend.
type Option func(*GPU)

// WithShaderDir loads kernel sources from dir, falling back to the embedded copies.
func WithShaderDir(dir string) Option {
	return func(g *GPU) { g.shaderDir = dir }
}

// WithPaintRadius sets the paint stamp radius in texels.
func WithPaintRadius(r float32) Option {
	return func(g *GPU) { g.paintRadius = r }
}

// WithSurface sets the presentation surface size in pixels.
func WithSurface(w, h int) Option {
	return func(g *GPU) { g.surfaceW, g.surfaceH = w, h }
}

// GPU is a raylib implementation of engine.Backend. The field lives in two
// float RGBA textures (U in red, V in green), each attached to its own
// framebuffer so either can be a render target.
//
// Requires an initialized window. Not safe for concurrent use.
type GPU struct {
	w, h    int
	buffers [2]rl.RenderTexture2D

	step, paint, render *program
	shaderDir           string

	sim      engine.SimParams
	paintP   engine.PaintParams
	renderP  engine.RenderParams
	gradient engine.Gradient

	paintRadius float32
	stepIndex   uint32

	surface            rl.RenderTexture2D
	surfaceW, surfaceH int
	renders            int

	// Staging buffer for uploads, 4 floats per texel
	staging []float32
	closed  bool
}

var _ engine.Backend = (*GPU)(nil)

// New allocates the field textures and compiles the kernels.
func New(w, h int, opts ...Option) (*GPU, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", w, h)
	}
	g := &GPU{
		w:           w,
		h:           h,
		sim:         engine.DefaultSimParams(w, h),
		renderP:     engine.RenderParams{Zoom: 1, Emboss: true, Boundary: engine.BoundaryReflect},
		gradient:    engine.DefaultGradient(),
		paintRadius: DefaultPaintRadius,
		surfaceW:    w,
		surfaceH:    h,
		staging:     make([]float32, w*h*4),
	}
	for _, opt := range opts {
		opt(g)
	}

	var err error
	if g.step, err = loadProgram(g.shaderDir, programStep); err != nil {
		return nil, err
	}
	if g.paint, err = loadProgram(g.shaderDir, programPaint); err != nil {
		g.step.unload()
		return nil, err
	}
	if g.render, err = loadProgram(g.shaderDir, programRender); err != nil {
		g.step.unload()
		g.paint.unload()
		return nil, err
	}

	for i := range g.buffers {
		rt, err := newFloatTarget(w, h)
		if err != nil {
			g.Close()
			return nil, fmt.Errorf("buffer %s: %w", engine.BufferID(i), err)
		}
		g.buffers[i] = rt
	}
	g.SetSurfaceSize(g.surfaceW, g.surfaceH)

	return g, nil
}

// newFloatTarget creates a w×h RGBA32F texture and attaches it to a new framebuffer.
func newFloatTarget(w, h int) (rl.RenderTexture2D, error) {
	pixels := make([]byte, w*h*16)
	img := rl.NewImage(pixels, int32(w), int32(h), 1, rl.UncompressedR32g32b32a32)
	tex := rl.LoadTextureFromImage(img)
	if tex.ID == 0 {
		return rl.RenderTexture2D{}, engine.ErrDeviceLost
	}
	rl.SetTextureFilter(tex, rl.FilterPoint)

	fbo := rl.LoadFramebuffer()
	rl.FramebufferAttach(fbo, tex.ID, int32(rl.AttachmentColorChannel0), int32(rl.AttachmentTexture2d), 0)
	if !rl.FramebufferComplete(fbo) {
		rl.UnloadFramebuffer(fbo)
		rl.UnloadTexture(tex)
		return rl.RenderTexture2D{}, fmt.Errorf("framebuffer incomplete: %w", engine.ErrDeviceLost)
	}
	return rl.RenderTexture2D{ID: fbo, Texture: tex}, nil
}

// Close releases all GPU resources. Further dispatches report ErrDeviceLost.
func (g *GPU) Close() {
	if g.closed {
		return
	}
	g.closed = true
	for _, rt := range g.buffers {
		if rt.ID != 0 {
			rl.UnloadFramebuffer(rt.ID)
			rl.UnloadTexture(rt.Texture)
		}
	}
	if g.surface.ID != 0 {
		rl.UnloadRenderTexture(g.surface)
	}
	for _, p := range []*program{g.step, g.paint, g.render} {
		if p != nil {
			p.unload()
		}
	}
}

// WriteField uploads interleaved (U, V) texels into dst.
func (g *GPU) WriteField(dst engine.BufferID, texels []float32) error {
	if g.closed {
		return engine.ErrDeviceLost
	}
	if len(texels) != g.w*g.h*2 {
		return fmt.Errorf("field has %d values, want %d", len(texels), g.w*g.h*2)
	}
	for i := 0; i < g.w*g.h; i++ {
		g.staging[4*i] = texels[2*i]
		g.staging[4*i+1] = texels[2*i+1]
		g.staging[4*i+2] = 0
		g.staging[4*i+3] = 1
	}
	// UpdateTexture takes RGBA8 pixels; reinterpret the float staging buffer.
	pixels := unsafe.Slice((*color.RGBA)(unsafe.Pointer(&g.staging[0])), len(g.staging))
	rl.UpdateTexture(g.buffers[dst].Texture, pixels)
	return nil
}

// ReadField reads src back to the CPU as interleaved (U, V) texels.
func (g *GPU) ReadField(src engine.BufferID) ([]float32, error) {
	if g.closed {
		return nil, engine.ErrDeviceLost
	}
	img := rl.LoadImageFromTexture(g.buffers[src].Texture)
	if img == nil || img.Data == nil {
		return nil, fmt.Errorf("readback of buffer %s: %w", src, engine.ErrDeviceLost)
	}
	defer rl.UnloadImage(img)

	rgba := unsafe.Slice((*float32)(img.Data), g.w*g.h*4)
	out := make([]float32, g.w*g.h*2)
	for i := 0; i < g.w*g.h; i++ {
		out[2*i] = rgba[4*i]
		out[2*i+1] = rgba[4*i+1]
	}
	return out, nil
}

// UploadSimParams queues a simulation block. It is applied at the next step.
func (g *GPU) UploadSimParams(block []byte) { g.sim = engine.DecodeSimParams(block) }

// UploadPaintParams queues a paint block.
func (g *GPU) UploadPaintParams(block []byte) { g.paintP = engine.DecodePaintParams(block) }

// UploadRenderParams queues a render block.
func (g *GPU) UploadRenderParams(block []byte) { g.renderP = engine.DecodeRenderParams(block) }

// UploadGradient queues a gradient block.
func (g *GPU) UploadGradient(block []byte) { g.gradient = engine.DecodeGradient(block) }

func (g *GPU) checkPair(src, dst engine.BufferID) error {
	if g.closed {
		return engine.ErrDeviceLost
	}
	if src == dst {
		return fmt.Errorf("source and destination are both buffer %s", src)
	}
	return nil
}

// runKernel draws a full-grid quad with p into dst, sampling src.
func (g *GPU) runKernel(p *program, src, dst engine.BufferID) {
	rl.BeginTextureMode(g.buffers[dst])
	rl.BeginShaderMode(p.shader)
	p.setTexture("field", g.buffers[src].Texture)
	rl.DrawRectangle(0, 0, int32(g.w), int32(g.h), rl.White)
	rl.EndShaderMode()
	rl.EndTextureMode()
}

// DispatchStep runs one integration step from src into dst.
func (g *GPU) DispatchStep(src, dst engine.BufferID) error {
	if err := g.checkPair(src, dst); err != nil {
		return err
	}
	if int(g.sim.GridWidth) != g.w || int(g.sim.GridHeight) != g.h {
		return fmt.Errorf("sim params grid %dx%d does not match buffers %dx%d",
			g.sim.GridWidth, g.sim.GridHeight, g.w, g.h)
	}

	s := g.step
	s.setVec2("gridSize", float32(g.w), float32(g.h))
	s.setFloat("feedRate", g.sim.FeedRate)
	s.setFloat("killRate", g.sim.KillRate)
	s.setFloat("diffuseU", g.sim.DiffuseU)
	s.setFloat("diffuseV", g.sim.DiffuseV)
	s.setFloat("deltaTime", g.sim.DeltaTime)
	s.setFloat("noiseStrength", g.sim.NoiseStrength)
	s.setFloat("kernel", float32(g.sim.Kernel))
	s.setFloat("boundary", float32(g.sim.Boundary))
	s.setFloat("mapMode", boolF32(g.sim.MapMode))
	s.setFloat("stepIndex", float32(g.stepIndex))

	g.runKernel(s, src, dst)
	g.stepIndex++
	return nil
}

// DispatchPaint copies src into dst with the paint stamp applied.
func (g *GPU) DispatchPaint(src, dst engine.BufferID) error {
	if err := g.checkPair(src, dst); err != nil {
		return err
	}
	g.paint.setVec2("center", g.paintP.CenterX, g.paintP.CenterY)
	g.paint.setFloat("radius", g.paintRadius)
	g.runKernel(g.paint, src, dst)
	return nil
}

// Steps returns the number of step dispatches executed.
func (g *GPU) Steps() uint32 { return g.stepIndex }

func boolF32(v bool) float32 {
	if v {
		return 1
	}
	return 0
}
