package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one frame. The kernel phases match the labels the engine
// reports through its phase timer.
const (
	PhaseStep      = "step"
	PhasePaint     = "paint"
	PhaseRender    = "render"
	PhaseInit      = "init"
	PhaseInput     = "input"
	PhaseUI        = "ui"
	PhaseTelemetry = "telemetry"
)

// phaseOrder is the logging order for phase breakdowns.
var phaseOrder = []string{
	PhaseStep, PhasePaint, PhaseRender, PhaseInit,
	PhaseInput, PhaseUI, PhaseTelemetry,
}

// PerfSample holds timing data for a single frame.
type PerfSample struct {
	Work   time.Duration
	Phases map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	frameStart    time.Time
	phaseStart    time.Time
	lastPhase     string
	inFrame       bool

	// Wall-clock interval between presented frames
	lastPresent time.Time
	interval    time.Duration
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of frames to average over (e.g., 60 for 1 second at 60fps).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartFrame begins timing a new frame.
func (p *PerfCollector) StartFrame() {
	p.frameStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
	p.inFrame = true
}

// StartPhase begins timing a specific phase, ending the previous one.
// Calls outside StartFrame/EndFrame are ignored.
func (p *PerfCollector) StartPhase(phase string) {
	if !p.inFrame {
		return
	}
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndFrame finishes timing the current frame and records the sample.
func (p *PerfCollector) EndFrame() {
	if !p.inFrame {
		return
	}
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		Work:   now.Sub(p.frameStart),
		Phases: p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	p.inFrame = false
}

// RecordPresent records the time a frame reached the screen.
func (p *PerfCollector) RecordPresent() {
	now := time.Now()
	if !p.lastPresent.IsZero() {
		p.interval = now.Sub(p.lastPresent)
	}
	p.lastPresent = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Frame work timing
	AvgWork time.Duration
	MinWork time.Duration
	MaxWork time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total frame work
	PhasePct map[string]float64

	// Frames per second if work were the only cost
	WorkRate float64

	// Presentation timing (interactive mode)
	Interval time.Duration
	FPS      float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	var fps float64
	if p.interval > 0 {
		fps = float64(time.Second) / float64(p.interval)
	}

	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
			Interval: p.interval,
			FPS:      fps,
		}
	}

	var total, minWork, maxWork time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.Work

		if i == 0 || s.Work < minWork {
			minWork = s.Work
		}
		if s.Work > maxWork {
			maxWork = s.Work
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var rate float64
	if avg > 0 {
		rate = float64(time.Second) / float64(avg)
	}

	return PerfStats{
		AvgWork:  avg,
		MinWork:  minWork,
		MaxWork:  maxWork,
		PhaseAvg: phaseAvg,
		PhasePct: phasePct,
		WorkRate: rate,
		Interval: p.interval,
		FPS:      fps,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats(log *slog.Logger) {
	attrs := []any{
		"avg_frame_us", s.AvgWork.Microseconds(),
		"min_frame_us", s.MinWork.Microseconds(),
		"max_frame_us", s.MaxWork.Microseconds(),
		"work_rate", int(s.WorkRate),
	}

	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}

	for _, phase := range phaseOrder {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", float64(int(pct*10))/10.0)
		}
	}

	log.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_frame_us", s.AvgWork.Microseconds()),
		slog.Int64("min_frame_us", s.MinWork.Microseconds()),
		slog.Int64("max_frame_us", s.MaxWork.Microseconds()),
		slog.Float64("work_rate", s.WorkRate),
	}

	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}

	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Frame        int64   `csv:"frame"`
	AvgFrameUS   int64   `csv:"avg_frame_us"`
	MinFrameUS   int64   `csv:"min_frame_us"`
	MaxFrameUS   int64   `csv:"max_frame_us"`
	WorkRate     float64 `csv:"work_rate"`
	FPS          float64 `csv:"fps"`
	StepPct      float64 `csv:"step_pct"`
	PaintPct     float64 `csv:"paint_pct"`
	RenderPct    float64 `csv:"render_pct"`
	InitPct      float64 `csv:"init_pct"`
	InputPct     float64 `csv:"input_pct"`
	UIPct        float64 `csv:"ui_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(frame int64) PerfStatsCSV {
	return PerfStatsCSV{
		Frame:        frame,
		AvgFrameUS:   s.AvgWork.Microseconds(),
		MinFrameUS:   s.MinWork.Microseconds(),
		MaxFrameUS:   s.MaxWork.Microseconds(),
		WorkRate:     s.WorkRate,
		FPS:          s.FPS,
		StepPct:      s.PhasePct[PhaseStep],
		PaintPct:     s.PhasePct[PhasePaint],
		RenderPct:    s.PhasePct[PhaseRender],
		InitPct:      s.PhasePct[PhaseInit],
		InputPct:     s.PhasePct[PhaseInput],
		UIPct:        s.PhasePct[PhaseUI],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
