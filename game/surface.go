package game

import (
	"fmt"
	"image/color"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/turing/cpu"
	"github.com/pthm-cable/turing/engine"
	"github.com/pthm-cable/turing/renderer"
	"github.com/pthm-cable/turing/telemetry"
)

// Backend names accepted by Options.Backend.
const (
	BackendGPU = "gpu"
	BackendCPU = "cpu"
)

// Presenter is a backend whose rendered surface can be shown in the window.
type Presenter interface {
	engine.Backend
	SetSurfaceSize(w, h int)
	// Draw blits the last rendered surface into dst.
	Draw(dst rl.Rectangle)
	// Capture writes the last rendered surface to a PNG file.
	Capture(path string) error
	Close()
}

var (
	_ Presenter = (*renderer.GPU)(nil)
	_ Presenter = (*cpuPresenter)(nil)
)

// cpuPresenter shows the CPU backend's RGBA surface through a streaming texture.
type cpuPresenter struct {
	*cpu.Backend
	tex        rl.Texture2D
	texW, texH int
}

func newCPUPresenter(b *cpu.Backend) *cpuPresenter {
	return &cpuPresenter{Backend: b}
}

func (p *cpuPresenter) Draw(dst rl.Rectangle) {
	img := p.Surface()
	if img == nil {
		return
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if p.tex.ID == 0 || p.texW != w || p.texH != h {
		if p.tex.ID != 0 {
			rl.UnloadTexture(p.tex)
		}
		staging := rl.NewImage(img.Pix, int32(w), int32(h), 1, rl.UncompressedR8g8b8a8)
		p.tex = rl.LoadTextureFromImage(staging)
		p.texW, p.texH = w, h
	} else {
		pixels := unsafe.Slice((*color.RGBA)(unsafe.Pointer(&img.Pix[0])), len(img.Pix)/4)
		rl.UpdateTexture(p.tex, pixels)
	}
	src := rl.Rectangle{Width: float32(w), Height: float32(h)}
	rl.DrawTexturePro(p.tex, src, dst, rl.Vector2{}, 0, rl.White)
}

func (p *cpuPresenter) Capture(path string) error {
	img := p.Surface()
	if img == nil {
		return engine.ErrSurfaceUnavailable
	}
	return telemetry.WritePNG(path, img)
}

func (p *cpuPresenter) Close() {
	if p.tex.ID != 0 {
		rl.UnloadTexture(p.tex)
		p.tex = rl.Texture2D{}
	}
	p.Backend.Close()
}

// newPresenter builds the named backend for a w×h grid. The GPU backend
// needs an open window.
func newPresenter(name string, w, h int, paintRadius float32, shaderDir string) (Presenter, error) {
	switch name {
	case BackendGPU, "":
		return renderer.New(w, h,
			renderer.WithPaintRadius(paintRadius),
			renderer.WithShaderDir(shaderDir))
	case BackendCPU:
		b, err := cpu.New(w, h, cpu.WithPaintRadius(paintRadius))
		if err != nil {
			return nil, err
		}
		return newCPUPresenter(b), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}
