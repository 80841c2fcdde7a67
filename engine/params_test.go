package engine

import (
	"errors"
	"testing"
)

func TestSettersUploadEveryCall(t *testing.T) {
	testCases := []struct {
		name  string
		apply func(p *ParamStore)
		check func(p SimParams) bool
	}{
		{"feed", func(p *ParamStore) { p.SetFeedRate(0.03) }, func(p SimParams) bool { return p.FeedRate == 0.03 }},
		{"kill", func(p *ParamStore) { p.SetKillRate(0.05) }, func(p SimParams) bool { return p.KillRate == 0.05 }},
		{"du", func(p *ParamStore) { p.SetDiffuseU(0.8) }, func(p SimParams) bool { return p.DiffuseU == 0.8 }},
		{"dv", func(p *ParamStore) { p.SetDiffuseV(0.3) }, func(p SimParams) bool { return p.DiffuseV == 0.3 }},
		{"dt", func(p *ParamStore) { p.SetDeltaTime(0.5) }, func(p SimParams) bool { return p.DeltaTime == 0.5 }},
		{"noise", func(p *ParamStore) { p.SetNoise(0.1) }, func(p SimParams) bool { return p.NoiseStrength == 0.1 }},
		{"map", func(p *ParamStore) { p.SetMapMode(true) }, func(p SimParams) bool { return p.MapMode }},
		{"negative feed", func(p *ParamStore) { p.SetFeedRate(-1) }, func(p SimParams) bool { return p.FeedRate == -1 }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, fb := newTestEngine(t)
			tc.apply(e.Params())

			if fb.count("sim") != 1 {
				t.Fatalf("uploads = %d, want 1", fb.count("sim"))
			}
			c, _ := fb.last("sim")
			if len(c.block) != SimParamsSize {
				t.Fatalf("block size = %d, want %d", len(c.block), SimParamsSize)
			}
			if !tc.check(DecodeSimParams(c.block)) {
				t.Errorf("uploaded block %+v does not reflect the change", DecodeSimParams(c.block))
			}
			if !tc.check(e.Params().Params()) {
				t.Errorf("stored params %+v do not reflect the change", e.Params().Params())
			}
		})
	}
}

func TestRepeatedSetterStillUploads(t *testing.T) {
	e, fb := newTestEngine(t)
	e.Params().SetFeedRate(0.04)
	e.Params().SetFeedRate(0.04)
	if fb.count("sim") != 2 {
		t.Errorf("uploads = %d, want 2", fb.count("sim"))
	}
}

func TestApplyPresetSingleUpload(t *testing.T) {
	e, fb := newTestEngine(t)
	e.Params().ApplyPreset(0.0367, 0.0649)

	if fb.count("sim") != 1 {
		t.Errorf("uploads = %d, want 1", fb.count("sim"))
	}
	p := e.Params().Params()
	if p.FeedRate != 0.0367 || p.KillRate != 0.0649 {
		t.Errorf("params = %v/%v", p.FeedRate, p.KillRate)
	}
}

func TestSetKernel(t *testing.T) {
	e, fb := newTestEngine(t)

	if err := e.Params().SetKernel(KernelSpiral); err != nil {
		t.Fatal(err)
	}
	if e.Params().Params().Kernel != KernelSpiral {
		t.Error("kernel not stored")
	}

	fb.reset()
	err := e.Params().SetKernel(Kernel(4))
	if !errors.Is(err, ErrUnknownKernel) {
		t.Errorf("err = %v, want ErrUnknownKernel", err)
	}
	if fb.count("sim") != 0 {
		t.Error("rejected kernel must not upload")
	}
	if e.Params().Params().Kernel != KernelSpiral {
		t.Error("rejected kernel changed state")
	}
}

func TestSetBoundaryMirrorsRender(t *testing.T) {
	e, fb := newTestEngine(t)

	if err := e.Params().SetBoundary(BoundaryWrap); err != nil {
		t.Fatal(err)
	}
	if fb.count("sim") != 1 || fb.count("render_params") != 1 {
		t.Errorf("sim=%d render=%d uploads, want 1 each", fb.count("sim"), fb.count("render_params"))
	}
	c, _ := fb.last("render_params")
	if DecodeRenderParams(c.block).Boundary != BoundaryWrap {
		t.Error("render block boundary not updated")
	}

	fb.reset()
	if err := e.Params().SetBoundary(Boundary(3)); !errors.Is(err, ErrUnknownBoundary) {
		t.Errorf("err = %v, want ErrUnknownBoundary", err)
	}
	if len(fb.calls) != 0 {
		t.Errorf("rejected boundary caused %d backend calls", len(fb.calls))
	}
}

func TestSimParamsLayout(t *testing.T) {
	p := DefaultSimParams(2048, 1024)
	p.MapMode = true
	b := mustMarshal(p)

	if len(b) != 48 {
		t.Fatalf("len = %d, want 48", len(b))
	}
	// grid_width at 24, boundary at 36, map_mode at 40, little endian
	if b[24] != 0x00 || b[25] != 0x08 {
		t.Errorf("grid_width bytes = %x", b[24:28])
	}
	if b[36] != 2 {
		t.Errorf("boundary byte = %d, want 2", b[36])
	}
	if b[40] != 1 {
		t.Errorf("map_mode byte = %d, want 1", b[40])
	}
	if got := DecodeSimParams(b); got != p {
		t.Errorf("decode = %+v, want %+v", got, p)
	}
}

func TestEnumStrings(t *testing.T) {
	if KernelDiagonal.String() != "diagonal" || BoundaryReflect.String() != "reflect" || PaletteHeat.String() != "heat" {
		t.Error("unexpected enum names")
	}
	if Kernel(99).String() != "unknown" {
		t.Error("out-of-range kernel should be unknown")
	}
}

func TestReplaceKeepsGrid(t *testing.T) {
	e, fb := newTestEngine(t)
	p := DefaultSimParams(1, 1)
	p.FeedRate = 0.02
	p.Boundary = BoundaryClamp

	if err := e.Params().Replace(p); err != nil {
		t.Fatal(err)
	}
	got := e.Params().Params()
	if got.GridWidth != 64 || got.GridHeight != 64 {
		t.Errorf("grid = %dx%d, want 64x64", got.GridWidth, got.GridHeight)
	}
	if got.FeedRate != 0.02 {
		t.Errorf("feed = %v", got.FeedRate)
	}
	if fb.count("sim") != 1 || fb.count("render_params") != 1 {
		t.Errorf("sim=%d render=%d uploads", fb.count("sim"), fb.count("render_params"))
	}

	p.Kernel = Kernel(12)
	if err := e.Params().Replace(p); !errors.Is(err, ErrUnknownKernel) {
		t.Errorf("err = %v, want ErrUnknownKernel", err)
	}
}
