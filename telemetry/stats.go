package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CoverageThreshold is the V level above which a texel counts as patterned.
const CoverageThreshold = 0.25

// maxPercentileSamples caps the texels sorted for percentiles. Larger fields
// are sampled with a fixed stride.
const maxPercentileSamples = 1 << 16

// FieldStats summarizes one field state.
type FieldStats struct {
	UMean    float64 `csv:"u_mean"`
	VMean    float64 `csv:"v_mean"`
	VStd     float64 `csv:"v_std"`
	VMin     float64 `csv:"v_min"`
	VMax     float64 `csv:"v_max"`
	VP50     float64 `csv:"v_p50"`
	VP90     float64 `csv:"v_p90"`
	Coverage float64 `csv:"coverage"` // Fraction of texels with V > CoverageThreshold
}

// FrameStats is one row of frames.csv.
type FrameStats struct {
	Frame   int64   `csv:"frame"`
	Steps   uint64  `csv:"steps"`
	Flips   uint64  `csv:"flips"`
	Feed    float32 `csv:"feed"`
	Kill    float32 `csv:"kill"`
	Kernel  string  `csv:"kernel"`
	Paused  bool    `csv:"paused"`
	Painted int     `csv:"paints"` // Paint calls since the previous row

	FieldStats
}

// ComputeFieldStats summarizes interleaved (U, V) texels.
func ComputeFieldStats(texels []float32) FieldStats {
	n := len(texels) / 2
	if n == 0 {
		return FieldStats{}
	}

	u := make([]float64, n)
	v := make([]float64, n)
	covered := 0
	for i := range n {
		u[i] = float64(texels[2*i])
		v[i] = float64(texels[2*i+1])
		if v[i] > CoverageThreshold {
			covered++
		}
	}

	vMean, vStd := stat.MeanStdDev(v, nil)
	s := FieldStats{
		UMean:    stat.Mean(u, nil),
		VMean:    vMean,
		VStd:     vStd,
		VMin:     floats.Min(v),
		VMax:     floats.Max(v),
		Coverage: float64(covered) / float64(n),
	}
	if n == 1 {
		s.VStd = 0
	}

	sample := v
	if n > maxPercentileSamples {
		stride := (n + maxPercentileSamples - 1) / maxPercentileSamples
		sample = make([]float64, 0, n/stride+1)
		for i := 0; i < n; i += stride {
			sample = append(sample, v[i])
		}
	}
	sort.Float64s(sample)
	s.VP50 = Percentile(sample, 0.5)
	s.VP90 = Percentile(sample, 0.9)
	return s
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// LogValue implements slog.LogValuer for structured logging.
func (s FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("frame", s.Frame),
		slog.Uint64("steps", s.Steps),
		slog.Float64("feed", float64(s.Feed)),
		slog.Float64("kill", float64(s.Kill)),
		slog.Float64("u_mean", s.UMean),
		slog.Float64("v_mean", s.VMean),
		slog.Float64("v_max", s.VMax),
		slog.Float64("coverage", s.Coverage),
	)
}
