package engine

// BufferID identifies one of the two field buffers.
type BufferID uint8

const (
	BufferA BufferID = iota
	BufferB
)

// Other returns the opposite buffer.
func (b BufferID) Other() BufferID {
	return b ^ 1
}

func (b BufferID) String() string {
	if b == BufferA {
		return "A"
	}
	return "B"
}

// Backend executes the numerical kernels and owns the buffer memory.
//
// Uploads are queued writes with no completion signal. Commands are consumed
// in issue order, so a dispatch always observes every upload issued before it.
type Backend interface {
	// WriteField replaces the whole content of dst with texels (interleaved U, V).
	WriteField(dst BufferID, texels []float32) error
	// ReadField returns a copy of src.
	ReadField(src BufferID) ([]float32, error)

	UploadSimParams(block []byte)
	UploadPaintParams(block []byte)
	UploadRenderParams(block []byte)
	UploadGradient(block []byte)

	// DispatchStep advances one integration step reading src and writing all of dst.
	DispatchStep(src, dst BufferID) error
	// DispatchPaint copies src into dst with the paint stamp applied.
	DispatchPaint(src, dst BufferID) error
	// Render draws src to the presentation surface.
	Render(src BufferID) error
}
