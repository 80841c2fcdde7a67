package cpu

import (
	"image"
	"image/color"

	"github.com/pthm-cable/turing/camera"
	"github.com/pthm-cable/turing/engine"
)

// embossStrength scales the directional derivative used for relief shading.
const embossStrength = 4.0

// tone maps a texel to the scalar fed through the palette: 0 for the base
// state, rising as U is consumed and V grows.
func tone(u, v float32) float32 {
	return clamp01(1 - u + v)
}

// paletteColor maps t in [0,1] to RGBA components in [0,1].
func paletteColor(p engine.Palette, g *engine.Gradient, t float32) [4]float32 {
	switch p {
	case engine.PaletteGrayscale:
		return [4]float32{t, t, t, 1}
	case engine.PaletteInverted:
		return [4]float32{1 - t, 1 - t, 1 - t, 1}
	case engine.PaletteHeat:
		return [4]float32{clamp01(t * 3), clamp01(t*3 - 1), clamp01(t*3 - 2), 1}
	default:
		return g.Sample(t)
	}
}

// renderRows draws surface rows [y0, y1). Each pixel centre is mapped through
// the inverse view transform and sampled under the boundary mode.
func renderRows(src []float32, w, h int, rp engine.RenderParams, g *engine.Gradient, img *image.RGBA, y0, y1 int) {
	sw, sh := img.Rect.Dx(), img.Rect.Dy()
	toneAt := func(x, y int) float32 {
		x = sampleIndex(x, w, rp.Boundary)
		y = sampleIndex(y, h, rp.Boundary)
		i := (y*w + x) * 2
		return tone(src[i], src[i+1])
	}

	view := camera.View{Zoom: rp.Zoom, PanX: rp.PanX, PanY: rp.PanY, GridW: w, GridH: h}

	for py := y0; py < y1; py++ {
		sy := (float32(py) + 0.5) / float32(sh)
		for px := 0; px < sw; px++ {
			sx := (float32(px) + 0.5) / float32(sw)
			fx, fy := view.ScreenToField(sx, sy)
			tx := int(floor(fx * float32(w)))
			ty := int(floor(fy * float32(h)))

			t := toneAt(tx, ty)
			c := paletteColor(rp.Palette, g, t)
			if rp.Emboss {
				shade := clampRange(1+(toneAt(tx-1, ty-1)-toneAt(tx+1, ty+1))*embossStrength, 0.5, 1.5)
				c[0], c[1], c[2] = clamp01(c[0]*shade), clamp01(c[1]*shade), clamp01(c[2]*shade)
			}
			img.SetRGBA(px, py, color.RGBA{
				R: uint8(c[0]*255 + 0.5),
				G: uint8(c[1]*255 + 0.5),
				B: uint8(c[2]*255 + 0.5),
				A: uint8(c[3]*255 + 0.5),
			})
		}
	}
}

func floor(x float32) float32 {
	t := float32(int(x))
	if t > x {
		t--
	}
	return t
}

func clampRange(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
