package telemetry

import (
	"testing"
	"time"

	"github.com/pthm-cable/turing/engine"
)

// The engine reports kernel phases through this interface.
var _ engine.PhaseTimer = (*PerfCollector)(nil)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseStep)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseRender)
		time.Sleep(200 * time.Microsecond)
		pc.EndFrame()
	}

	stats := pc.Stats()

	if stats.AvgWork <= 0 {
		t.Error("expected positive average frame work")
	}
	if _, ok := stats.PhaseAvg[PhaseStep]; !ok {
		t.Error("expected step phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseRender]; !ok {
		t.Error("expected render phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseStep)
		time.Sleep(10 * time.Microsecond)
		pc.EndFrame()
	}

	stats := pc.Stats()
	if stats.AvgWork <= 0 {
		t.Error("expected positive average after window filled")
	}
	if stats.WorkRate <= 0 {
		t.Error("expected positive work rate")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(2 * time.Millisecond)
		pc.EndFrame()
	}

	stats := pc.Stats()
	if stats.PhasePct["slow"] <= stats.PhasePct["fast"] {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)",
			stats.PhasePct["slow"], stats.PhasePct["fast"])
	}
}

func TestPerfCollector_PhaseOutsideFrameIgnored(t *testing.T) {
	pc := NewPerfCollector(4)

	pc.StartPhase(PhaseInit)
	pc.EndFrame()

	stats := pc.Stats()
	if stats.AvgWork != 0 || len(stats.PhaseAvg) != 0 {
		t.Errorf("expected no samples, got %+v", stats)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()
	if stats.AvgWork != 0 {
		t.Error("expected zero avg work for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil maps")
	}
}

func TestPerfCollector_PresentTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordPresent()
	time.Sleep(16 * time.Millisecond)
	pc.RecordPresent()

	stats := pc.Stats()
	if stats.Interval < 15*time.Millisecond {
		t.Errorf("expected interval >= 15ms, got %v", stats.Interval)
	}
	if stats.FPS <= 0 || stats.FPS > 70 {
		t.Errorf("expected FPS in (0, 70] with 16ms interval, got %v", stats.FPS)
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	s := PerfStats{
		AvgWork:  2 * time.Millisecond,
		PhasePct: map[string]float64{PhaseStep: 80, PhaseRender: 15},
	}
	rec := s.ToCSV(120)
	if rec.Frame != 120 || rec.AvgFrameUS != 2000 || rec.StepPct != 80 || rec.RenderPct != 15 {
		t.Errorf("unexpected record %+v", rec)
	}
}
