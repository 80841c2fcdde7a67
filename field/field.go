// Package field holds the texel storage for the two chemical concentrations
// and generates initial field content.
package field

import (
	"fmt"
	"math/rand/v2"
)

// Channels is the number of float32 values per texel (U, V).
const Channels = 2

// Grid is a W×H field of interleaved (U, V) texels in row-major order.
type Grid struct {
	W, H int
	Data []float32
}

// Blob is one circular V-patch placed by ScatterBlobs.
type Blob struct {
	X, Y   int
	Radius int
}

// InitParams controls the generated initial states.
type InitParams struct {
	SeedRadiusSq  int // Seed covers dx²+dy² < SeedRadiusSq around the centre
	BlobMinRadius int
	BlobMaxRadius int // Exclusive
}

// DefaultInitParams matches the stock initial states.
var DefaultInitParams = InitParams{
	SeedRadiusSq:  400,
	BlobMinRadius: 10,
	BlobMaxRadius: 40,
}

// New allocates a grid in the base state (U=1, V=0 everywhere).
func New(w, h int) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", w, h)
	}
	g := &Grid{W: w, H: h, Data: make([]float32, w*h*Channels)}
	g.Clear()
	return g, nil
}

// Len returns the number of float32 values in the grid.
func (g *Grid) Len() int {
	return g.W * g.H * Channels
}

// Index returns the offset of texel (x, y)'s U value in Data.
func (g *Grid) Index(x, y int) int {
	return (y*g.W + x) * Channels
}

// At returns the (U, V) pair at texel (x, y).
func (g *Grid) At(x, y int) (u, v float32) {
	i := g.Index(x, y)
	return g.Data[i], g.Data[i+1]
}

// Set writes the (U, V) pair at texel (x, y).
func (g *Grid) Set(x, y int, u, v float32) {
	i := g.Index(x, y)
	g.Data[i] = u
	g.Data[i+1] = v
}

// Clear sets every texel to the base state.
func (g *Grid) Clear() {
	for i := 0; i < len(g.Data); i += Channels {
		g.Data[i] = 1
		g.Data[i+1] = 0
	}
}

// Seed writes the default initial state: base everywhere plus a disc of V=1
// centred on (W/2, H/2) covering dx²+dy² < radiusSq.
func (g *Grid) Seed(radiusSq int) {
	g.Clear()
	cx, cy := g.W/2, g.H/2
	for y := 0; y < g.H; y++ {
		dy := y - cy
		for x := 0; x < g.W; x++ {
			dx := x - cx
			if dx*dx+dy*dy < radiusSq {
				g.Data[g.Index(x, y)+1] = 1
			}
		}
	}
}

// Scatter resets to the base state then stamps count discs of V=1 at random
// centres with radius in [minR, maxR). Discs are clipped to the grid and
// later discs overwrite earlier ones.
func (g *Grid) Scatter(rng *rand.Rand, count, minR, maxR int) []Blob {
	g.Clear()
	if count <= 0 {
		return nil
	}
	blobs := make([]Blob, 0, count)
	for range count {
		b := Blob{
			X:      rng.IntN(g.W),
			Y:      rng.IntN(g.H),
			Radius: minR + rng.IntN(maxR-minR),
		}
		g.stampDisc(b)
		blobs = append(blobs, b)
	}
	return blobs
}

// stampDisc sets V=1 for texels with dx²+dy² <= r², skipping texels outside the grid.
func (g *Grid) stampDisc(b Blob) {
	r2 := b.Radius * b.Radius
	x0, x1 := max(b.X-b.Radius, 0), min(b.X+b.Radius, g.W-1)
	y0, y1 := max(b.Y-b.Radius, 0), min(b.Y+b.Radius, g.H-1)
	for y := y0; y <= y1; y++ {
		dy := y - b.Y
		for x := x0; x <= x1; x++ {
			dx := x - b.X
			if dx*dx+dy*dy <= r2 {
				g.Data[g.Index(x, y)+1] = 1
			}
		}
	}
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	c := &Grid{W: g.W, H: g.H, Data: make([]float32, len(g.Data))}
	copy(c.Data, g.Data)
	return c
}

// NewRand returns a PCG source seeded from seed. Equal seeds yield equal scatters.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
