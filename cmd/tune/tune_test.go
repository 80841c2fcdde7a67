package main

import (
	"path/filepath"
	"testing"

	"github.com/pthm-cable/turing/config"
	"github.com/pthm-cable/turing/telemetry"
)

func TestParamVectorRoundtrip(t *testing.T) {
	pv := NewParamVector(config.Default())
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if d := raw[i] - back[i]; d > 1e-12 || d < -1e-12 {
			t.Errorf("%s: %v != %v", pv.Specs[i].Name, back[i], raw[i])
		}
	}

	clamped := pv.Clamp([]float64{-1, 1})
	if clamped[0] != pv.Specs[0].Min || clamped[1] != pv.Specs[1].Max {
		t.Errorf("Clamp = %v, want bounds", clamped)
	}
}

func TestComputeQuality(t *testing.T) {
	steady := telemetry.FieldStats{VMax: 0.6, VStd: 0.2, Coverage: targetCoverage}

	repeat := func(s telemetry.FieldStats, n int) []telemetry.FieldStats {
		out := make([]telemetry.FieldStats, n)
		for i := range out {
			out[i] = s
		}
		return out
	}

	tests := []struct {
		name    string
		samples []telemetry.FieldStats
		wantMin float64
		wantMax float64
	}{
		{"too few samples", repeat(steady, qualityWarmupSamples), 0, 0},
		{"dead field", repeat(telemetry.FieldStats{VMax: 0.01}, 10), 0, 0},
		{"saturated", repeat(telemetry.FieldStats{VMax: 1, Coverage: 0.99}, 10), 0, 0},
		{"steady pattern", repeat(steady, 10), 0.9, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := computeQuality(tt.samples)
			if q < tt.wantMin || q > tt.wantMax {
				t.Errorf("quality = %v, want in [%v, %v]", q, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestWritePresetLoadsAsOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")
	base := config.Default()
	if err := writePreset(path, base, "tuned", []float64{0.03, 0.06}); err != nil {
		t.Fatalf("writePreset error: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Simulation.FeedRate != 0.03 || cfg.Simulation.KillRate != 0.06 {
		t.Errorf("feed/kill = %v/%v, want 0.03/0.06", cfg.Simulation.FeedRate, cfg.Simulation.KillRate)
	}
	p, ok := cfg.Preset("tuned")
	if !ok || p.Feed != 0.03 {
		t.Errorf("tuned preset = %+v, %v", p, ok)
	}
	if len(cfg.Presets) != len(base.Presets)+1 {
		t.Errorf("presets = %d, want %d", len(cfg.Presets), len(base.Presets)+1)
	}
}

func TestEvaluateSmallGrid(t *testing.T) {
	cfg := config.Default()
	cfg.Grid.Width, cfg.Grid.Height = 32, 32
	cfg.Initializer.BlobCount = 3
	cfg.Initializer.BlobMinRadius, cfg.Initializer.BlobMaxRadius = 2, 4

	pv := NewParamVector(cfg)
	fe := NewFitnessEvaluator(pv, 10, []uint64{1, 2}, cfg)
	fitness := fe.Evaluate(pv.DefaultVector())
	if fitness > 0 || fitness < -1 {
		t.Errorf("fitness = %v, want in [-1, 0]", fitness)
	}
	if fe.LastQuality() != -fitness {
		t.Errorf("LastQuality = %v, want %v", fe.LastQuality(), -fitness)
	}
}
