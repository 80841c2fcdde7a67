package camera

import (
	"math"
	"testing"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestNew(t *testing.T) {
	v := New(2048, 1024)

	if v.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", v.Zoom)
	}
	if v.PanX != 0 || v.PanY != 0 {
		t.Errorf("expected no pan, got (%f, %f)", v.PanX, v.PanY)
	}
}

func TestScreenToFieldIdentity(t *testing.T) {
	v := New(2048, 2048)

	// At zoom 1 with no pan the mapping is the identity
	for _, s := range []float32{0, 0.25, 0.5, 1} {
		fx, fy := v.ScreenToField(s, s)
		if !approx(fx, s) || !approx(fy, s) {
			t.Errorf("ScreenToField(%f) = (%f, %f), want identity", s, fx, fy)
		}
	}
}

func TestScreenToFieldZoomed(t *testing.T) {
	v := New(2048, 2048)
	v.SetZoom(2)
	v.SetPan(0.1, -0.2)

	// (0.75-0.5)/2 + 0.5 + 0.1 = 0.725; (0.25-0.5)/2 + 0.5 - 0.2 = 0.175
	fx, fy := v.ScreenToField(0.75, 0.25)
	if !approx(fx, 0.725) || !approx(fy, 0.175) {
		t.Errorf("got (%f, %f), want (0.725, 0.175)", fx, fy)
	}
}

func TestRoundtrip(t *testing.T) {
	testCases := []struct {
		zoom, panX, panY float32
	}{
		{1, 0, 0},
		{2, 0.3, -0.3},
		{7.5, -1, 1},
		{100, 0.01, 0.02},
	}
	points := []struct{ sx, sy float32 }{
		{0.5, 0.5},
		{0, 0},
		{0.1, 0.9},
		{1, 1},
	}

	for _, tc := range testCases {
		v := New(512, 512)
		v.SetZoom(tc.zoom)
		v.SetPan(tc.panX, tc.panY)
		for _, p := range points {
			fx, fy := v.ScreenToField(p.sx, p.sy)
			sx, sy := v.FieldToScreen(fx, fy)
			if math.Abs(float64(sx-p.sx)) > 1e-4 || math.Abs(float64(sy-p.sy)) > 1e-4 {
				t.Errorf("zoom=%v pan=(%v,%v): (%f,%f) -> (%f,%f) -> (%f,%f)",
					tc.zoom, tc.panX, tc.panY, p.sx, p.sy, fx, fy, sx, sy)
			}
		}
	}
}

func TestScreenToTexel(t *testing.T) {
	v := New(2048, 2048)

	tx, ty := v.ScreenToTexel(0.5, 0.5)
	if tx != 1024 || ty != 1024 {
		t.Errorf("centre texel = (%d, %d), want (1024, 1024)", tx, ty)
	}

	// Panned past the edge: no clamping, truncation toward zero
	v.SetPan(-1, 1)
	tx, ty = v.ScreenToTexel(0.25, 0.5)
	// fx = 0.25 - 1 = -0.75 -> -1536; fy = 1.5 -> 3072
	if tx != -1536 || ty != 3072 {
		t.Errorf("out-of-range texel = (%d, %d), want (-1536, 3072)", tx, ty)
	}
}

func TestTexelTruncatesTowardZero(t *testing.T) {
	testCases := []struct {
		f    float32
		size int
		want int32
	}{
		{0.5, 10, 5},
		{0.59, 10, 5},
		{-0.01, 10, 0},
		{-0.15, 10, -1},
		{1.0, 10, 10},
	}
	for _, tc := range testCases {
		if got := Texel(tc.f, tc.size); got != tc.want {
			t.Errorf("Texel(%v, %d) = %d, want %d", tc.f, tc.size, got, tc.want)
		}
	}
}

func TestZoomClamp(t *testing.T) {
	v := New(64, 64)

	v.SetZoom(0.5)
	if v.Zoom != 1 {
		t.Errorf("SetZoom(0.5) = %f, want 1", v.Zoom)
	}
	v.SetZoom(1000)
	if v.Zoom != 1000 {
		t.Errorf("SetZoom(1000) = %f, want 1000 (no upper bound)", v.Zoom)
	}
	v.SetZoom(2)
	v.ZoomBy(0.25)
	if v.Zoom != 1 {
		t.Errorf("ZoomBy below min = %f, want 1", v.Zoom)
	}
}

func TestPanClamp(t *testing.T) {
	v := New(64, 64)

	v.SetPan(2, -3)
	if v.PanX != 1 || v.PanY != -1 {
		t.Errorf("SetPan(2,-3) = (%f, %f), want (1, -1)", v.PanX, v.PanY)
	}
	v.SetPan(0.5, -0.25)
	if v.PanX != 0.5 || v.PanY != -0.25 {
		t.Errorf("in-range pan altered: (%f, %f)", v.PanX, v.PanY)
	}
}

func TestPanByScalesWithZoom(t *testing.T) {
	v := New(64, 64)
	v.SetZoom(4)
	v.PanBy(0.2, -0.4)
	if !approx(v.PanX, 0.05) || !approx(v.PanY, -0.1) {
		t.Errorf("PanBy at zoom 4 = (%f, %f), want (0.05, -0.1)", v.PanX, v.PanY)
	}
}

func TestReset(t *testing.T) {
	v := New(64, 64)
	v.SetZoom(3)
	v.SetPan(0.4, 0.4)
	v.Reset()
	if v.Zoom != 1 || v.PanX != 0 || v.PanY != 0 {
		t.Errorf("after Reset got zoom=%f pan=(%f,%f)", v.Zoom, v.PanX, v.PanY)
	}
}

func TestVisibleFieldBounds(t *testing.T) {
	v := New(64, 64)
	v.SetZoom(2)
	minX, minY, maxX, maxY := v.VisibleFieldBounds()
	if !approx(minX, 0.25) || !approx(minY, 0.25) || !approx(maxX, 0.75) || !approx(maxY, 0.75) {
		t.Errorf("bounds = (%f,%f)-(%f,%f), want (0.25,0.25)-(0.75,0.75)", minX, minY, maxX, maxY)
	}
}
