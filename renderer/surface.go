package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/turing/engine"
)

// SetSurfaceSize resizes the presentation surface. A zero dimension leaves
// the backend without a surface and Render reports ErrSurfaceUnavailable.
func (g *GPU) SetSurfaceSize(w, h int) {
	if g.surface.ID != 0 {
		if int(g.surface.Texture.Width) == w && int(g.surface.Texture.Height) == h {
			return
		}
		rl.UnloadRenderTexture(g.surface)
		g.surface = rl.RenderTexture2D{}
	}
	g.surfaceW, g.surfaceH = w, h
	if w <= 0 || h <= 0 {
		return
	}
	g.surface = rl.LoadRenderTexture(int32(w), int32(h))
	rl.SetTextureFilter(g.surface.Texture, rl.FilterBilinear)
}

// Render draws src into the presentation surface through the view transform.
func (g *GPU) Render(src engine.BufferID) error {
	if g.closed {
		return engine.ErrDeviceLost
	}
	if g.surface.ID == 0 || rl.IsWindowMinimized() {
		return engine.ErrSurfaceUnavailable
	}

	r := g.render
	r.setVec2("gridSize", float32(g.w), float32(g.h))
	r.setVec2("surfaceSize", float32(g.surfaceW), float32(g.surfaceH))
	r.setFloat("palette", float32(g.renderP.Palette))
	r.setFloat("emboss", boolF32(g.renderP.Emboss))
	r.setFloat("boundary", float32(g.renderP.Boundary))
	r.setFloat("zoom", g.renderP.Zoom)
	r.setVec2("pan", g.renderP.PanX, g.renderP.PanY)

	pos := make([]float32, engine.MaxGradientStops)
	colors := make([]float32, 0, 4*engine.MaxGradientStops)
	for i, s := range g.gradient.Stops {
		pos[i] = s.Position
		colors = append(colors, s.Color[:]...)
	}
	rl.SetShaderValueV(r.shader, r.locs["stopPos"], pos, rl.ShaderUniformFloat, engine.MaxGradientStops)
	rl.SetShaderValueV(r.shader, r.locs["stopColor"], colors, rl.ShaderUniformVec4, engine.MaxGradientStops)
	r.setFloat("stopCount", float32(g.gradient.Count))

	rl.BeginTextureMode(g.surface)
	rl.ClearBackground(rl.Black)
	rl.BeginShaderMode(r.shader)
	r.setTexture("field", g.buffers[src].Texture)
	rl.DrawRectangle(0, 0, int32(g.surfaceW), int32(g.surfaceH), rl.White)
	rl.EndShaderMode()
	rl.EndTextureMode()

	g.renders++
	return nil
}

// Draw blits the last rendered surface into dst. Call between BeginDrawing and EndDrawing.
func (g *GPU) Draw(dst rl.Rectangle) {
	if g.surface.ID == 0 {
		return
	}
	// The texture is upside down (OpenGL convention), so flip it
	srcRect := rl.Rectangle{
		X:      0,
		Y:      float32(g.surfaceH),
		Width:  float32(g.surfaceW),
		Height: -float32(g.surfaceH),
	}
	rl.DrawTexturePro(g.surface.Texture, srcRect, dst, rl.Vector2{}, 0, rl.White)
}

// Capture writes the last rendered surface to a PNG file.
func (g *GPU) Capture(path string) error {
	if g.surface.ID == 0 {
		return engine.ErrSurfaceUnavailable
	}
	img := rl.LoadImageFromTexture(g.surface.Texture)
	defer rl.UnloadImage(img)
	rl.ImageFlipVertical(img)
	if !rl.ExportImage(*img, path) {
		return fmt.Errorf("exporting %s failed", path)
	}
	return nil
}

// Renders returns the number of successful renders.
func (g *GPU) Renders() int { return g.renders }

// SurfaceSize returns the presentation surface size in pixels.
func (g *GPU) SurfaceSize() (int, int) { return g.surfaceW, g.surfaceH }
