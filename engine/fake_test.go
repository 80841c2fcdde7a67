package engine

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/pthm-cable/turing/config"
)

// call is one backend invocation recorded by fakeBackend.
type call struct {
	op       string
	src, dst BufferID
	block    []byte
}

// fakeBackend records every call and keeps buffer contents in memory.
// Step and paint copy src into dst and add a marker so flips are observable.
type fakeBackend struct {
	buffers [2][]float32
	calls   []call

	failStepAt int // 1-based dispatch number that fails; 0 never
	stepCount  int
	renderErr  error
	paintErr   error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{}
}

func (f *fakeBackend) record(c call) { f.calls = append(f.calls, c) }

func (f *fakeBackend) WriteField(dst BufferID, texels []float32) error {
	f.buffers[dst] = append([]float32(nil), texels...)
	f.record(call{op: "write", dst: dst})
	return nil
}

func (f *fakeBackend) ReadField(src BufferID) ([]float32, error) {
	return append([]float32(nil), f.buffers[src]...), nil
}

func (f *fakeBackend) UploadSimParams(b []byte) {
	f.record(call{op: "sim", block: append([]byte(nil), b...)})
}

func (f *fakeBackend) UploadPaintParams(b []byte) {
	f.record(call{op: "paint_params", block: append([]byte(nil), b...)})
}

func (f *fakeBackend) UploadRenderParams(b []byte) {
	f.record(call{op: "render_params", block: append([]byte(nil), b...)})
}

func (f *fakeBackend) UploadGradient(b []byte) {
	f.record(call{op: "gradient", block: append([]byte(nil), b...)})
}

func (f *fakeBackend) DispatchStep(src, dst BufferID) error {
	f.stepCount++
	if f.failStepAt != 0 && f.stepCount == f.failStepAt {
		return fmt.Errorf("queue rejected dispatch")
	}
	f.buffers[dst] = append([]float32(nil), f.buffers[src]...)
	f.record(call{op: "step", src: src, dst: dst})
	return nil
}

func (f *fakeBackend) DispatchPaint(src, dst BufferID) error {
	if f.paintErr != nil {
		return f.paintErr
	}
	f.buffers[dst] = append([]float32(nil), f.buffers[src]...)
	f.record(call{op: "paint", src: src, dst: dst})
	return nil
}

func (f *fakeBackend) Render(src BufferID) error {
	if f.renderErr != nil {
		return f.renderErr
	}
	f.record(call{op: "render", src: src})
	return nil
}

// count returns how many recorded calls have the given op.
func (f *fakeBackend) count(op string) int {
	n := 0
	for _, c := range f.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

// last returns the most recent call with the given op.
func (f *fakeBackend) last(op string) (call, bool) {
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].op == op {
			return f.calls[i], true
		}
	}
	return call{}, false
}

// reset forgets recorded calls without touching buffers.
func (f *fakeBackend) reset() { f.calls = nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Grid.Width = 64
	cfg.Grid.Height = 64
	cfg.Initializer.RandomSeed = 1
	return cfg
}

func newTestEngine(t *testing.T) (*Engine, *fakeBackend) {
	t.Helper()
	fb := newFakeBackend()
	e, err := New(testConfig(t), fb, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), WithSeed(3))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fb.reset()
	return e, fb
}
