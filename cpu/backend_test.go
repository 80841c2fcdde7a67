package cpu

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/pthm-cable/turing/config"
	"github.com/pthm-cable/turing/engine"
)

func newEngine(t *testing.T, w, h int) (*engine.Engine, *Backend) {
	t.Helper()
	cfg := config.Default()
	cfg.Grid.Width = w
	cfg.Grid.Height = h

	b, err := New(w, h, WithWorkers(4), WithSurface(32, 32))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(b.Close)

	e, err := engine.New(cfg, b,
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		engine.WithSeed(11))
	if err != nil {
		t.Fatal(err)
	}
	return e, b
}

func TestNewRejectsEmptyGrid(t *testing.T) {
	if _, err := New(0, 10); err == nil {
		t.Error("expected error")
	}
}

func TestWriteFieldLength(t *testing.T) {
	b, _ := New(4, 4)
	if err := b.WriteField(engine.BufferA, make([]float32, 3)); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestUploadsDecoded(t *testing.T) {
	e, b := newEngine(t, 16, 16)
	e.Params().SetKillRate(0.07)
	if b.SimParams().KillRate != 0.07 {
		t.Errorf("backend kill = %v, want 0.07", b.SimParams().KillRate)
	}
}

// The default seed spreads when stepped on a parallel pool, and the result
// is identical to a single-worker run.
func TestStepParallelMatchesSerial(t *testing.T) {
	run := func(workers int) []float32 {
		cfg := config.Default()
		cfg.Grid.Width, cfg.Grid.Height = 64, 64
		b, err := New(64, 64, WithWorkers(workers))
		if err != nil {
			t.Fatal(err)
		}
		defer b.Close()
		e, err := engine.New(cfg, b, engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
		if err != nil {
			t.Fatal(err)
		}
		e.SetStepsPerFrame(20)
		if err := e.RunFrame(); err != nil {
			t.Fatal(err)
		}
		out, err := e.ReadActive()
		if err != nil {
			t.Fatal(err)
		}
		return out
	}

	serial := run(1)
	parallel := run(8)
	for i := range serial {
		if serial[i] != parallel[i] {
			t.Fatalf("texel %d differs: %v vs %v", i/2, serial[i], parallel[i])
		}
	}
	// The seed disc has grown past its original radius of 20
	if serial[(32*64+53)*2+1] == 0 {
		t.Error("expected V to diffuse beyond the seed")
	}
}

func TestPaintThenClear(t *testing.T) {
	e, _ := newEngine(t, 64, 64)
	if err := e.Clear(); err != nil {
		t.Fatal(err)
	}
	if err := e.Paint(0.25, 0.25); err != nil {
		t.Fatal(err)
	}
	data, _ := e.ReadActive()
	if data[(16*64+16)*2+1] != 1 {
		t.Error("paint did not reach texel (16,16)")
	}

	if err := e.Clear(); err != nil {
		t.Fatal(err)
	}
	data, _ = e.ReadActive()
	for i := 0; i < len(data); i += 2 {
		if data[i] != 1 || data[i+1] != 0 {
			t.Fatalf("texel %d = (%v,%v) after clear", i/2, data[i], data[i+1])
		}
	}
}

func TestPaintIsDeterministic(t *testing.T) {
	a, _ := newEngine(t, 64, 64)
	b, _ := newEngine(t, 64, 64)
	for _, e := range []*engine.Engine{a, b} {
		e.View().SetZoom(2)
		if err := e.Paint(0.6, 0.4); err != nil {
			t.Fatal(err)
		}
	}
	da, _ := a.ReadActive()
	db, _ := b.ReadActive()
	for i := range da {
		if da[i] != db[i] {
			t.Fatalf("texel %d differs", i/2)
		}
	}
}

func TestRenderSurfaceUnavailable(t *testing.T) {
	e, b := newEngine(t, 16, 16)
	b.SetSurfaceSize(0, 0)

	err := e.Render()
	if !engine.IsTransient(err) {
		t.Fatalf("err = %v, want transient", err)
	}
	if b.Renders() != 0 {
		t.Error("no render should have completed")
	}

	b.SetSurfaceSize(8, 8)
	if err := e.Render(); err != nil {
		t.Fatal(err)
	}
	if b.Renders() != 1 {
		t.Errorf("renders = %d, want 1", b.Renders())
	}
}

func TestRenderBaseStateUsesFirstStop(t *testing.T) {
	e, b := newEngine(t, 16, 16)
	if err := e.Clear(); err != nil {
		t.Fatal(err)
	}
	e.View().SetEmboss(false)
	if err := e.Render(); err != nil {
		t.Fatal(err)
	}
	// Base state tone is 0, which samples the dark purple first stop
	c := b.Surface().RGBAAt(5, 5)
	if c.R != 51 || c.G != 0 || c.B != 77 || c.A != 255 {
		t.Errorf("pixel = %+v, want dark purple (51,0,77,255)", c)
	}
}

func TestRenderPalettes(t *testing.T) {
	testCases := []struct {
		palette engine.Palette
		want    uint8 // red channel for the base state
	}{
		{engine.PaletteGrayscale, 0},
		{engine.PaletteInverted, 255},
		{engine.PaletteHeat, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.palette.String(), func(t *testing.T) {
			e, b := newEngine(t, 16, 16)
			if err := e.Clear(); err != nil {
				t.Fatal(err)
			}
			e.View().SetEmboss(false)
			if err := e.View().SetPalette(tc.palette); err != nil {
				t.Fatal(err)
			}
			if err := e.Render(); err != nil {
				t.Fatal(err)
			}
			if got := b.Surface().RGBAAt(3, 3).R; got != tc.want {
				t.Errorf("red = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestDispatchRejectsSameBuffer(t *testing.T) {
	b, _ := New(4, 4)
	err := b.DispatchStep(engine.BufferA, engine.BufferA)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, engine.ErrDeviceLost) {
		t.Error("misuse is not device loss")
	}
}
