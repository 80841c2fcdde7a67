package engine

import (
	"errors"
	"testing"
)

func TestPaintCentre(t *testing.T) {
	e, fb := newTestEngine(t)

	if err := e.Paint(0.5, 0.5); err != nil {
		t.Fatal(err)
	}
	c, ok := fb.last("paint_params")
	if !ok {
		t.Fatal("no paint target uploaded")
	}
	p := DecodePaintParams(c.block)
	if p.CenterX != 32 || p.CenterY != 32 {
		t.Errorf("target = (%v,%v), want (32,32)", p.CenterX, p.CenterY)
	}
	d, _ := fb.last("paint")
	if d.src != BufferA || d.dst != BufferB {
		t.Errorf("paint %v->%v, want A->B", d.src, d.dst)
	}
	if e.Active() != BufferB || e.Flips() != 1 {
		t.Errorf("active=%v flips=%d after paint", e.Active(), e.Flips())
	}
}

func TestPaintDeterministic(t *testing.T) {
	var targets [2]PaintParams
	for i := range targets {
		e, fb := newTestEngine(t)
		e.View().SetZoom(3)
		e.View().SetPan(0.2, -0.1)
		if err := e.Paint(0.3, 0.7); err != nil {
			t.Fatal(err)
		}
		c, _ := fb.last("paint_params")
		targets[i] = DecodePaintParams(c.block)
	}
	if targets[0] != targets[1] {
		t.Errorf("paint targets differ: %+v vs %+v", targets[0], targets[1])
	}
}

func TestPaintOutOfRangeNotClamped(t *testing.T) {
	e, fb := newTestEngine(t)
	e.View().SetPan(-1, 1)

	if err := e.Paint(0.25, 0.5); err != nil {
		t.Fatal(err)
	}
	c, _ := fb.last("paint_params")
	p := DecodePaintParams(c.block)
	// fx = -0.75 -> -48, fy = 1.5 -> 96 on a 64 grid
	if p.CenterX != -48 || p.CenterY != 96 {
		t.Errorf("target = (%v,%v), want (-48,96)", p.CenterX, p.CenterY)
	}
}

func TestPaintZoomedMatchesRenderMapping(t *testing.T) {
	e, fb := newTestEngine(t)
	e.View().SetZoom(2)
	e.View().SetPan(0.1, 0.1)

	if err := e.Paint(0.75, 0.25); err != nil {
		t.Fatal(err)
	}
	v := e.View().View()
	fx, fy := v.ScreenToField(0.75, 0.25)
	c, _ := fb.last("paint_params")
	p := DecodePaintParams(c.block)
	if p.CenterX != float32(int32(fx*64)) || p.CenterY != float32(int32(fy*64)) {
		t.Errorf("target = (%v,%v), render maps to (%v,%v)", p.CenterX, p.CenterY, fx*64, fy*64)
	}
}

func TestPaintFailureDoesNotFlip(t *testing.T) {
	e, fb := newTestEngine(t)
	fb.paintErr = ErrDeviceLost

	err := e.Paint(0.5, 0.5)
	var se *StepError
	if !errors.As(err, &se) || se.Phase != PhasePaint {
		t.Fatalf("err = %v, want paint StepError", err)
	}
	if !errors.Is(err, ErrDeviceLost) {
		t.Error("cause not wrapped")
	}
	if e.Active() != BufferA || e.Flips() != 0 {
		t.Errorf("failed paint flipped: active=%v flips=%d", e.Active(), e.Flips())
	}
}

func TestPointerEvents(t *testing.T) {
	e, fb := newTestEngine(t)

	if err := e.PointerMove(0.1, 0.1); err != nil {
		t.Fatal(err)
	}
	if fb.count("paint") != 0 {
		t.Error("move without press painted")
	}
	if p := e.Pointer(); !p.Known || p.X != 0.1 {
		t.Errorf("pointer = %+v", p)
	}

	if err := e.PointerDown(0.2, 0.2); err != nil {
		t.Fatal(err)
	}
	if err := e.PointerMove(0.3, 0.3); err != nil {
		t.Fatal(err)
	}
	if err := e.PointerMove(0.4, 0.4); err != nil {
		t.Fatal(err)
	}
	e.PointerUp()
	if err := e.PointerMove(0.5, 0.5); err != nil {
		t.Fatal(err)
	}

	// One paint for the press, one per move while held, none after release
	if got := fb.count("paint"); got != 3 {
		t.Errorf("paints = %d, want 3", got)
	}
	if e.Flips() != 3 {
		t.Errorf("flips = %d, want 3", e.Flips())
	}
	if p := e.Pointer(); p.Down || p.X != 0.5 {
		t.Errorf("pointer = %+v", p)
	}
}
