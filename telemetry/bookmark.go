package telemetry

import (
	"fmt"
	"log/slog"
	"math"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPatternOnset BookmarkType = "pattern_onset"
	BookmarkExtinction   BookmarkType = "extinction"
	BookmarkSaturation   BookmarkType = "saturation"
	BookmarkGrowthBurst  BookmarkType = "growth_burst"
	BookmarkSteadyState  BookmarkType = "steady_state"
)

// Detection thresholds.
const (
	onsetCoverage      = 0.05
	onsetResetCoverage = 0.01
	extinctVMax        = 1e-3
	saturatedCoverage  = 0.9
	steadyWindows      = 5
	steadyCV2          = 1e-4 // squared coefficient of variation of V mean
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Frame       int64        `csv:"frame"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark.
func (b Bookmark) LogBookmark(log *slog.Logger) {
	log.Info("bookmark",
		"type", string(b.Type),
		"frame", b.Frame,
		"description", b.Description,
	)
}

// BookmarkDetector detects qualitative changes in the field.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []FrameStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	patterned   bool // coverage has crossed the onset threshold
	alive       bool // V has been present since the last extinction
	saturated   bool
	steadyCount int // consecutive windows with a stable V mean
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < steadyWindows {
		historySize = steadyWindows
	}
	return &BookmarkDetector{
		history:     make([]FrameStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats FrameStats) []Bookmark {
	var bookmarks []Bookmark

	for _, check := range []func(FrameStats) *Bookmark{
		bd.checkOnset,
		bd.checkExtinction,
		bd.checkSaturation,
		bd.checkGrowthBurst,
		bd.checkSteadyState,
	} {
		if b := check(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	return bookmarks
}

// Reset forgets history, e.g. after the field is reinitialized.
func (bd *BookmarkDetector) Reset() {
	*bd = *NewBookmarkDetector(bd.historySize)
}

func (bd *BookmarkDetector) addToHistory(stats FrameStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []FrameStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkOnset(stats FrameStats) *Bookmark {
	if stats.Coverage < onsetResetCoverage {
		bd.patterned = false
		return nil
	}
	if bd.patterned || stats.Coverage < onsetCoverage {
		return nil
	}
	bd.patterned = true
	return &Bookmark{
		Type:        BookmarkPatternOnset,
		Frame:       stats.Frame,
		Description: fmt.Sprintf("Pattern covers %.1f%% of the field", stats.Coverage*100),
	}
}

func (bd *BookmarkDetector) checkExtinction(stats FrameStats) *Bookmark {
	if stats.VMax >= extinctVMax {
		bd.alive = true
		return nil
	}
	if !bd.alive {
		return nil
	}
	bd.alive = false
	return &Bookmark{
		Type:        BookmarkExtinction,
		Frame:       stats.Frame,
		Description: fmt.Sprintf("V died out at feed %.4f kill %.4f", stats.Feed, stats.Kill),
	}
}

func (bd *BookmarkDetector) checkSaturation(stats FrameStats) *Bookmark {
	if stats.Coverage <= saturatedCoverage {
		bd.saturated = false
		return nil
	}
	if bd.saturated {
		return nil
	}
	bd.saturated = true
	return &Bookmark{
		Type:        BookmarkSaturation,
		Frame:       stats.Frame,
		Description: fmt.Sprintf("Pattern saturated at %.1f%% coverage", stats.Coverage*100),
	}
}

func (bd *BookmarkDetector) checkGrowthBurst(stats FrameStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.VMean
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.VMean > avg*2.0 && stats.VMean > 0.05 {
		return &Bookmark{
			Type:        BookmarkGrowthBurst,
			Frame:       stats.Frame,
			Description: fmt.Sprintf("V mean %.3f is %.1fx average (%.3f)", stats.VMean, stats.VMean/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSteadyState(stats FrameStats) *Bookmark {
	if stats.VMax < extinctVMax {
		bd.steadyCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	if bd.historyFull {
		recent = make([]FrameStats, 0, 4)
		for i := 4; i > 0; i-- {
			recent = append(recent, bd.history[(bd.historyIdx-i+bd.historySize)%bd.historySize])
		}
	}

	var sum float64
	for _, h := range recent {
		sum += h.VMean
	}
	mean := sum / 4
	var variance float64
	for _, h := range recent {
		d := h.VMean - mean
		variance += d * d
	}
	variance /= 4

	if mean > 0 && variance/(mean*mean) < steadyCV2 && math.Abs(stats.VMean-mean) < mean*0.01 {
		bd.steadyCount++
	} else {
		bd.steadyCount = 0
	}

	if bd.steadyCount == steadyWindows {
		return &Bookmark{
			Type:        BookmarkSteadyState,
			Frame:       stats.Frame,
			Description: fmt.Sprintf("Field steady at V mean %.4f over %d windows", stats.VMean, steadyWindows),
		}
	}
	return nil
}
