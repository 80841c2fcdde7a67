package cpu

import "github.com/pthm-cable/turing/engine"

// Parameter map ranges used when map mode is on: feed varies along y, kill along x.
const (
	mapFeedMin = 0.01
	mapFeedMax = 0.10
	mapKillMin = 0.045
	mapKillMax = 0.07
)

// tap is one weighted neighbour offset of a Laplacian stencil.
type tap struct {
	dx, dy int
	w      float32
}

// stencils hold the neighbour weights per kernel. Each sums to 1, giving an
// implicit centre weight of -1. Differences are taken against the centre so a
// uniform field has an exactly zero Laplacian.
var stencils = [...][]tap{
	engine.KernelDefault: {
		{-1, 0, 0.2}, {1, 0, 0.2}, {0, -1, 0.2}, {0, 1, 0.2},
		{-1, -1, 0.05}, {1, -1, 0.05}, {-1, 1, 0.05}, {1, 1, 0.05},
	},
	engine.KernelCross: {
		{-1, 0, 0.25}, {1, 0, 0.25}, {0, -1, 0.25}, {0, 1, 0.25},
	},
	engine.KernelDiagonal: {
		{-1, -1, 0.25}, {1, -1, 0.25}, {-1, 1, 0.25}, {1, 1, 0.25},
	},
	// Asymmetric weights bias diffusion in one rotational direction.
	engine.KernelSpiral: {
		{1, 0, 0.25}, {0, 1, 0.15}, {-1, 0, 0.25}, {0, -1, 0.15},
		{1, 1, 0.1}, {-1, -1, 0.1},
	},
}

// sampleIndex resolves coordinate i on an axis of length n under the boundary
// mode. Reflect mirrors without repeating the edge texel.
func sampleIndex(i, n int, b engine.Boundary) int {
	if i >= 0 && i < n {
		return i
	}
	switch b {
	case engine.BoundaryWrap:
		i %= n
		if i < 0 {
			i += n
		}
		return i
	case engine.BoundaryReflect:
		if n == 1 {
			return 0
		}
		period := 2 * (n - 1)
		i %= period
		if i < 0 {
			i += period
		}
		if i >= n {
			i = period - i
		}
		return i
	default:
		return max(0, min(i, n-1))
	}
}

// stepRows integrates rows [y0, y1) of dst from src.
func stepRows(src, dst []float32, w, h int, p engine.SimParams, step uint32, y0, y1 int) {
	taps := stencils[engine.KernelDefault]
	if int(p.Kernel) < len(stencils) {
		taps = stencils[p.Kernel]
	}

	feed, kill := p.FeedRate, p.KillRate
	for y := y0; y < y1; y++ {
		if p.MapMode {
			feed = lerp(mapFeedMin, mapFeedMax, axisFraction(y, h))
		}
		for x := 0; x < w; x++ {
			i := (y*w + x) * 2
			u, v := src[i], src[i+1]

			var lapU, lapV float32
			for _, t := range taps {
				nx := sampleIndex(x+t.dx, w, p.Boundary)
				ny := sampleIndex(y+t.dy, h, p.Boundary)
				j := (ny*w + nx) * 2
				lapU += t.w * (src[j] - u)
				lapV += t.w * (src[j+1] - v)
			}

			if p.MapMode {
				kill = lerp(mapKillMin, mapKillMax, axisFraction(x, w))
			}

			uvv := u * v * v
			du := p.DiffuseU*lapU - uvv + feed*(1-u)
			dv := p.DiffuseV*lapV + uvv - (feed+kill)*v

			nu := u + p.DeltaTime*du
			nv := v + p.DeltaTime*dv
			if p.NoiseStrength != 0 {
				nv += p.NoiseStrength * (hashNoise(uint32(x), uint32(y), step) - 0.5) * p.DeltaTime
			}

			dst[i] = clamp01(nu)
			dst[i+1] = clamp01(nv)
		}
	}
}

// paintRows copies rows [y0, y1) from src to dst, setting V=1 within radius
// of (cx, cy). The centre may lie outside the grid.
func paintRows(src, dst []float32, w int, cx, cy, radius float32, y0, y1 int) {
	r2 := radius * radius
	for y := y0; y < y1; y++ {
		row := src[y*w*2 : (y+1)*w*2]
		copy(dst[y*w*2:(y+1)*w*2], row)
		dy := float32(y) - cy
		if dy*dy > r2 {
			continue
		}
		for x := 0; x < w; x++ {
			dx := float32(x) - cx
			if dx*dx+dy*dy <= r2 {
				dst[(y*w+x)*2+1] = 1
			}
		}
	}
}

// hashNoise returns a deterministic value in [0,1) for a texel and step.
func hashNoise(x, y, step uint32) float32 {
	h := x*0x8da6b343 ^ y*0xd8163841 ^ step*0xcb1ab31f
	h ^= h >> 16
	h *= 0x7feb352d
	h ^= h >> 15
	h *= 0x846ca68b
	h ^= h >> 16
	return float32(h>>8) / float32(1<<24)
}

func axisFraction(i, n int) float32 {
	if n <= 1 {
		return 0
	}
	return float32(i) / float32(n-1)
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
