package engine

import (
	"encoding/binary"
	"math"
)

// Block sizes in bytes. Kernels read these layouts verbatim.
const (
	SimParamsSize    = 48
	PaintParamsSize  = 8
	RenderParamsSize = 32
	GradientSize     = MaxGradientStops*gradientStopSize + 32

	MaxGradientStops = 8
	gradientStopSize = 32
)

// Kernel selects the Laplacian stencil.
type Kernel uint32

const (
	KernelDefault Kernel = iota
	KernelCross
	KernelDiagonal
	KernelSpiral
	kernelCount
)

var kernelNames = [...]string{"default", "cross", "diagonal", "spiral"}

func (k Kernel) String() string {
	if k < kernelCount {
		return kernelNames[k]
	}
	return "unknown"
}

// Boundary selects how neighbours outside the grid are sampled.
type Boundary uint32

const (
	BoundaryWrap Boundary = iota
	BoundaryClamp
	BoundaryReflect
	boundaryCount
)

var boundaryNames = [...]string{"wrap", "clamp", "reflect"}

func (b Boundary) String() string {
	if b < boundaryCount {
		return boundaryNames[b]
	}
	return "unknown"
}

// Palette selects the colour mapping used by the render kernel.
type Palette uint32

const (
	PaletteGradient Palette = iota
	PaletteGrayscale
	PaletteInverted
	PaletteHeat
	paletteCount
)

var paletteNames = [...]string{"gradient", "grayscale", "inverted", "heat"}

func (p Palette) String() string {
	if p < paletteCount {
		return paletteNames[p]
	}
	return "unknown"
}

// ParseKernel converts a raw code, rejecting unknown values.
func ParseKernel(code uint32) (Kernel, error) {
	if Kernel(code) >= kernelCount {
		return 0, ErrUnknownKernel
	}
	return Kernel(code), nil
}

// ParseBoundary converts a raw code, rejecting unknown values.
func ParseBoundary(code uint32) (Boundary, error) {
	if Boundary(code) >= boundaryCount {
		return 0, ErrUnknownBoundary
	}
	return Boundary(code), nil
}

// ParsePalette converts a raw code, rejecting unknown values.
func ParsePalette(code uint32) (Palette, error) {
	if Palette(code) >= paletteCount {
		return 0, ErrUnknownPalette
	}
	return Palette(code), nil
}

// SimParams is the simulation parameter block.
type SimParams struct {
	FeedRate      float32
	KillRate      float32
	DiffuseU      float32
	DiffuseV      float32
	DeltaTime     float32
	NoiseStrength float32
	GridWidth     uint32
	GridHeight    uint32
	Kernel        Kernel
	Boundary      Boundary
	MapMode       bool
}

// DefaultSimParams returns the stock parameters for a grid of the given size.
func DefaultSimParams(w, h int) SimParams {
	return SimParams{
		FeedRate:   0.055,
		KillRate:   0.062,
		DiffuseU:   1.0,
		DiffuseV:   0.5,
		DeltaTime:  1.0,
		GridWidth:  uint32(w),
		GridHeight: uint32(h),
		Kernel:     KernelDefault,
		Boundary:   BoundaryReflect,
	}
}

// MarshalBinary encodes the 48-byte little-endian block.
func (p SimParams) MarshalBinary() ([]byte, error) {
	return p.AppendBinary(make([]byte, 0, SimParamsSize))
}

// AppendBinary appends the encoded block to b.
func (p SimParams) AppendBinary(b []byte) ([]byte, error) {
	le := binary.LittleEndian
	b = le.AppendUint32(b, math.Float32bits(p.FeedRate))
	b = le.AppendUint32(b, math.Float32bits(p.KillRate))
	b = le.AppendUint32(b, math.Float32bits(p.DiffuseU))
	b = le.AppendUint32(b, math.Float32bits(p.DiffuseV))
	b = le.AppendUint32(b, math.Float32bits(p.DeltaTime))
	b = le.AppendUint32(b, math.Float32bits(p.NoiseStrength))
	b = le.AppendUint32(b, p.GridWidth)
	b = le.AppendUint32(b, p.GridHeight)
	b = le.AppendUint32(b, uint32(p.Kernel))
	b = le.AppendUint32(b, uint32(p.Boundary))
	b = le.AppendUint32(b, boolU32(p.MapMode))
	b = le.AppendUint32(b, 0)
	return b, nil
}

// DecodeSimParams decodes a block produced by MarshalBinary. Backends use it
// to read uploads back into typed form.
func DecodeSimParams(b []byte) SimParams {
	le := binary.LittleEndian
	return SimParams{
		FeedRate:      math.Float32frombits(le.Uint32(b[0:])),
		KillRate:      math.Float32frombits(le.Uint32(b[4:])),
		DiffuseU:      math.Float32frombits(le.Uint32(b[8:])),
		DiffuseV:      math.Float32frombits(le.Uint32(b[12:])),
		DeltaTime:     math.Float32frombits(le.Uint32(b[16:])),
		NoiseStrength: math.Float32frombits(le.Uint32(b[20:])),
		GridWidth:     le.Uint32(b[24:]),
		GridHeight:    le.Uint32(b[28:]),
		Kernel:        Kernel(le.Uint32(b[32:])),
		Boundary:      Boundary(le.Uint32(b[36:])),
		MapMode:       le.Uint32(b[40:]) != 0,
	}
}

// PaintParams is the paint target block in integer texel coordinates,
// carried as f32 to match the kernel layout.
type PaintParams struct {
	CenterX, CenterY float32
}

// MarshalBinary encodes the 8-byte block.
func (p PaintParams) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, PaintParamsSize)
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(p.CenterX))
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(p.CenterY))
	return b, nil
}

// DecodePaintParams decodes an 8-byte paint block.
func DecodePaintParams(b []byte) PaintParams {
	return PaintParams{
		CenterX: math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		CenterY: math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
	}
}

// RenderParams is the render parameter block.
type RenderParams struct {
	Palette  Palette
	Emboss   bool
	Boundary Boundary
	Zoom     float32
	PanX     float32
	PanY     float32
}

// MarshalBinary encodes the 32-byte block.
func (p RenderParams) MarshalBinary() ([]byte, error) {
	le := binary.LittleEndian
	b := make([]byte, 0, RenderParamsSize)
	b = le.AppendUint32(b, uint32(p.Palette))
	b = le.AppendUint32(b, boolU32(p.Emboss))
	b = le.AppendUint32(b, uint32(p.Boundary))
	b = le.AppendUint32(b, 0)
	b = le.AppendUint32(b, math.Float32bits(p.Zoom))
	b = le.AppendUint32(b, math.Float32bits(p.PanX))
	b = le.AppendUint32(b, math.Float32bits(p.PanY))
	b = le.AppendUint32(b, 0)
	return b, nil
}

// DecodeRenderParams decodes a 32-byte render block.
func DecodeRenderParams(b []byte) RenderParams {
	le := binary.LittleEndian
	return RenderParams{
		Palette:  Palette(le.Uint32(b[0:])),
		Emboss:   le.Uint32(b[4:]) != 0,
		Boundary: Boundary(le.Uint32(b[8:])),
		Zoom:     math.Float32frombits(le.Uint32(b[16:])),
		PanX:     math.Float32frombits(le.Uint32(b[20:])),
		PanY:     math.Float32frombits(le.Uint32(b[24:])),
	}
}

// GradientStop is one colour anchor.
type GradientStop struct {
	Position float32
	Color    [4]float32
}

// Gradient is a fixed-capacity list of colour stops. Count stops are valid;
// the rest hold opaque black.
type Gradient struct {
	Stops [MaxGradientStops]GradientStop
	Count uint32
}

// NewGradient builds a gradient from parallel slices. colors holds four
// components per stop. The stop count is the smaller of len(positions),
// len(colors)/4 and MaxGradientStops; excess input is ignored.
func NewGradient(positions, colors []float32) Gradient {
	n := min(len(positions), len(colors)/4, MaxGradientStops)
	var g Gradient
	for i := range g.Stops {
		g.Stops[i].Color = [4]float32{0, 0, 0, 1}
	}
	for i := range n {
		g.Stops[i] = GradientStop{
			Position: positions[i],
			Color:    [4]float32{colors[4*i], colors[4*i+1], colors[4*i+2], colors[4*i+3]},
		}
	}
	g.Count = uint32(n)
	return g
}

// DefaultGradient is the stock six-stop rainbow.
func DefaultGradient() Gradient {
	return NewGradient(
		[]float32{0.0, 0.2, 0.4, 0.6, 0.8, 1.0},
		[]float32{
			0.2, 0.0, 0.3, 1.0, // dark purple
			0.5, 0.0, 1.0, 1.0, // purple
			0.0, 0.5, 1.0, 1.0, // blue
			0.0, 1.0, 0.8, 1.0, // cyan
			1.0, 0.3, 0.0, 1.0, // orange
			1.0, 0.0, 0.0, 1.0, // red
		},
	)
}

// MarshalBinary encodes the 288-byte block.
func (g Gradient) MarshalBinary() ([]byte, error) {
	le := binary.LittleEndian
	b := make([]byte, 0, GradientSize)
	for _, s := range g.Stops {
		b = le.AppendUint32(b, math.Float32bits(s.Position))
		b = append(b, make([]byte, 12)...)
		for _, c := range s.Color {
			b = le.AppendUint32(b, math.Float32bits(c))
		}
	}
	b = le.AppendUint32(b, g.Count)
	b = append(b, make([]byte, 28)...)
	return b, nil
}

// DecodeGradient decodes a 288-byte gradient block.
func DecodeGradient(b []byte) Gradient {
	le := binary.LittleEndian
	var g Gradient
	for i := range g.Stops {
		off := i * gradientStopSize
		g.Stops[i].Position = math.Float32frombits(le.Uint32(b[off:]))
		for c := range 4 {
			g.Stops[i].Color[c] = math.Float32frombits(le.Uint32(b[off+16+4*c:]))
		}
	}
	g.Count = le.Uint32(b[MaxGradientStops*gradientStopSize:])
	return g
}

// Sample returns the interpolated colour at t. Values outside the first and
// last stop take the end colours. An empty gradient samples opaque black.
func (g Gradient) Sample(t float32) [4]float32 {
	n := int(g.Count)
	if n == 0 {
		return [4]float32{0, 0, 0, 1}
	}
	if t <= g.Stops[0].Position {
		return g.Stops[0].Color
	}
	for i := 1; i < n; i++ {
		a, b := g.Stops[i-1], g.Stops[i]
		if t <= b.Position {
			span := b.Position - a.Position
			if span <= 0 {
				return b.Color
			}
			f := (t - a.Position) / span
			var out [4]float32
			for c := range 4 {
				out[c] = a.Color[c] + (b.Color[c]-a.Color[c])*f
			}
			return out
		}
	}
	return g.Stops[n-1].Color
}

func boolU32(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}

// mustMarshal encodes blocks whose MarshalBinary never fails.
func mustMarshal(m interface{ MarshalBinary() ([]byte, error) }) []byte {
	b, err := m.MarshalBinary()
	if err != nil {
		panic(err)
	}
	return b
}
