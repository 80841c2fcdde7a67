package ui

import (
	"testing"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestOverlayDefaults(t *testing.T) {
	r := NewOverlayRegistry()
	if !r.IsEnabled(OverlayHUD) {
		t.Error("HUD should be on by default")
	}
	if r.IsEnabled(OverlayPerf) {
		t.Error("perf should be off by default")
	}
}

func TestOverlayToggleExclusive(t *testing.T) {
	r := NewOverlayRegistry()
	r.SetEnabled(OverlayPerf, true)
	r.SetEnabled(OverlayStats, true)

	if !r.Toggle(OverlayHelp) {
		t.Fatal("help should toggle on")
	}
	if r.IsEnabled(OverlayPerf) || r.IsEnabled(OverlayStats) {
		t.Error("help should disable perf and stats")
	}
	if r.Toggle(OverlayHelp) {
		t.Error("help should toggle off")
	}
	if r.Toggle("missing") {
		t.Error("unknown overlay should not toggle")
	}
}

func TestOverlayHandleKeyPress(t *testing.T) {
	r := NewOverlayRegistry()
	id, on, ok := r.HandleKeyPress(rl.KeyI)
	if !ok || id != OverlayProbe || !on {
		t.Errorf("HandleKeyPress(I) = %v, %v, %v", id, on, ok)
	}
	if _, _, ok := r.HandleKeyPress(rl.KeyZ); ok {
		t.Error("Z should not be bound")
	}
}

func TestProbeAt(t *testing.T) {
	// 2x2 field, texel (1,1) holds U=0.25 V=0.75
	texels := []float32{1, 0, 1, 0, 1, 0, 0.25, 0.75}

	tests := []struct {
		name   string
		tx, ty int32
		valid  bool
		u, v   float32
	}{
		{"inside", 1, 1, true, 0.25, 0.75},
		{"origin", 0, 0, true, 1, 0},
		{"negative", -1, 0, false, 0, 0},
		{"past edge", 0, 2, false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ProbeAt(texels, 2, 2, tt.tx, tt.ty)
			if d.Valid != tt.valid || d.U != tt.u || d.V != tt.v {
				t.Errorf("ProbeAt(%d,%d) = %+v", tt.tx, tt.ty, d)
			}
		})
	}

	if ProbeAt(nil, 2, 2, 0, 0).Valid {
		t.Error("missing field should not be valid")
	}
}

func TestSortedPhases(t *testing.T) {
	names := sortedPhases(map[string]time.Duration{
		"render": 2 * time.Millisecond,
		"step":   5 * time.Millisecond,
		"paint":  2 * time.Millisecond,
	})
	want := []string{"step", "paint", "render"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("sortedPhases = %v, want %v", names, want)
		}
	}
}
