package game

import (
	"log/slog"

	"github.com/pthm-cable/turing/engine"
	"github.com/pthm-cable/turing/telemetry"
)

// telemetrySink is the per-run telemetry state shared by the interactive and
// headless hosts.
type telemetrySink struct {
	log       *slog.Logger
	logStats  bool
	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	bookmarks *telemetry.BookmarkDetector
	output    *telemetry.OutputManager
	snapDir   string
}

// flush samples the field if the stats window is complete, writes CSV rows
// and saves a snapshot for every bookmark. It returns the new stats and
// whether a flush happened.
func (s *telemetrySink) flush(e *engine.Engine) (telemetry.FieldStats, bool) {
	if !s.collector.ShouldFlush() {
		return telemetry.FieldStats{}, false
	}

	sp := e.Params().Params()
	stats, err := s.collector.Flush(e, telemetry.FrameInfo{
		Steps:  e.Steps(),
		Flips:  e.Flips(),
		Feed:   sp.FeedRate,
		Kill:   sp.KillRate,
		Kernel: sp.Kernel.String(),
		Paused: e.Paused(),
	})
	if err != nil {
		s.log.Error("failed to read field for telemetry", "error", err)
		return telemetry.FieldStats{}, false
	}
	perfStats := s.perf.Stats()

	if s.logStats {
		s.log.Info("frame", "stats", stats)
		perfStats.LogStats(s.log)
	}

	if s.output != nil {
		if err := s.output.WriteFrame(stats); err != nil {
			s.log.Error("failed to write frame stats", "error", err)
		}
		if err := s.output.WritePerf(perfStats, stats.Frame); err != nil {
			s.log.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range s.bookmarks.Check(stats) {
		if s.logStats {
			bm.LogBookmark(s.log)
		}
		if s.output != nil {
			if err := s.output.WriteBookmark(bm); err != nil {
				s.log.Error("failed to write bookmark", "error", err)
			}
			s.saveSnapshot(e, &bm)
		}
	}

	return stats.FieldStats, true
}

// saveSnapshot captures and saves the engine state.
func (s *telemetrySink) saveSnapshot(e *engine.Engine, bookmark *telemetry.Bookmark) {
	snapshot, err := telemetry.CaptureSnapshot(e, s.collector.Frame())
	if err != nil {
		s.log.Error("failed to capture snapshot", "error", err)
		return
	}
	snapshot.Bookmark = bookmark

	path, err := telemetry.SaveSnapshot(snapshot, s.snapDir)
	if err != nil {
		s.log.Error("failed to save snapshot", "error", err)
		return
	}

	s.log.Info("snapshot saved", "path", path, "frame", snapshot.Frame)
}

// flushTelemetry runs the sink for the interactive game.
func (g *Game) flushTelemetry() {
	if stats, ok := g.tel.flush(g.engine); ok {
		g.lastStats = stats
	}
}

// saveSnapshot saves the current state on user request.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	g.tel.saveSnapshot(g.engine, bookmark)
}
