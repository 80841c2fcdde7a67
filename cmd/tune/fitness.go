package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/turing/config"
	"github.com/pthm-cable/turing/cpu"
	"github.com/pthm-cable/turing/engine"
	"github.com/pthm-cable/turing/telemetry"
)

// FitnessEvaluator runs headless simulations on the CPU backend and scores
// the patterns they settle into.
type FitnessEvaluator struct {
	params     *ParamVector
	frames     int
	window     int // Frames between field samples
	seeds      []uint64
	baseConfig *config.Config

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
	lastStats   telemetry.FieldStats
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, frames int, seeds []uint64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		frames:     frames,
		window:     max(1, frames/20),
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// LastStats returns the final field stats of the first seed of the most
// recent evaluation.
func (fe *FitnessEvaluator) LastStats() telemetry.FieldStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastStats
}

var quiet = slog.New(slog.DiscardHandler)

// runResult holds the field samples from a single run.
type runResult struct {
	samples []telemetry.FieldStats
	err     error
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative quality averaged over seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	// Run all seeds in parallel
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s uint64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	for _, r := range results {
		if r.err == nil {
			total += computeQuality(r.samples)
		}
	}
	quality := total / float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = quality
	if first := results[0].samples; len(first) > 0 {
		fe.lastStats = first[len(first)-1]
	}
	fe.mu.Unlock()

	return -quality
}

// runSimulation seeds a fresh engine and samples the field every window.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed uint64) runResult {
	// One worker per run; seeds already run in parallel.
	back, err := cpu.New(cfg.Grid.Width, cfg.Grid.Height,
		cpu.WithWorkers(1),
		cpu.WithPaintRadius(float32(cfg.Paint.Radius)))
	if err != nil {
		return runResult{err: err}
	}
	defer back.Close()

	e, err := engine.New(cfg, back, engine.WithSeed(seed), engine.WithLogger(quiet))
	if err != nil {
		return runResult{err: err}
	}
	if _, err := e.ScatterBlobs(-1); err != nil {
		return runResult{err: err}
	}

	var result runResult
	for frame := 1; frame <= fe.frames; frame++ {
		if err := e.RunFrame(); err != nil {
			result.err = err
			return result
		}
		if frame%fe.window != 0 {
			continue
		}
		texels, err := e.ReadActive()
		if err != nil {
			result.err = err
			return result
		}
		stats := telemetry.ComputeFieldStats(texels)
		result.samples = append(result.samples, stats)

		// Dead fields never recover without painting.
		if stats.VMax < deadThreshold {
			break
		}
	}
	return result
}

// copyConfig returns a shallow copy of the base config. Slices and the
// derived preset index are shared and treated as read-only.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// Quality component weights.
const (
	qualityWeightCoverage  = 0.40
	qualityWeightContrast  = 0.30
	qualityWeightStability = 0.30

	qualityWarmupSamples = 5 // skip first N samples (pattern still growing)

	targetCoverage = 0.35
	deadThreshold  = 0.05 // V max below this means the pattern died out
	saturated      = 0.95 // coverage above this means V filled the field
)

// computeQuality scores a run's samples in [0, 1]. A good pattern covers a
// moderate fraction of the field with sharp edges and has stopped changing.
func computeQuality(samples []telemetry.FieldStats) float64 {
	if len(samples) <= qualityWarmupSamples {
		return 0
	}
	last := samples[len(samples)-1]
	if last.VMax < deadThreshold || last.Coverage > saturated {
		return 0
	}

	valid := samples[qualityWarmupSamples:]
	coverage := make([]float64, len(valid))
	var coverageScore, contrastScore float64
	for i, s := range valid {
		coverage[i] = s.Coverage
		d := (s.Coverage - targetCoverage) / 0.2
		coverageScore += math.Exp(-d * d)
		contrastScore += clamp01(s.VStd / 0.25)
	}
	n := float64(len(valid))
	coverageScore /= n
	contrastScore /= n

	stabilityScore := 0.0
	if mean, std := stat.MeanStdDev(coverage, nil); mean > 0 && len(coverage) >= 2 {
		cv := std / mean
		stabilityScore = math.Exp(-cv * cv * 25)
	}

	quality := qualityWeightCoverage*coverageScore +
		qualityWeightContrast*contrastScore +
		qualityWeightStability*stabilityScore
	return clamp01(quality)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
