package telemetry

import "testing"

func hasBookmark(bms []Bookmark, typ BookmarkType) bool {
	for _, bm := range bms {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_PatternOnset(t *testing.T) {
	bd := NewBookmarkDetector(10)

	bd.Check(FrameStats{Frame: 30, FieldStats: FieldStats{Coverage: 0.001, VMax: 1}})
	bms := bd.Check(FrameStats{Frame: 60, FieldStats: FieldStats{Coverage: 0.08, VMax: 1}})
	if !hasBookmark(bms, BookmarkPatternOnset) {
		t.Fatal("expected pattern_onset bookmark")
	}

	// Does not retrigger while patterned
	bms = bd.Check(FrameStats{Frame: 90, FieldStats: FieldStats{Coverage: 0.2, VMax: 1}})
	if hasBookmark(bms, BookmarkPatternOnset) {
		t.Error("onset retriggered without reset")
	}
}

func TestBookmarkDetector_Extinction(t *testing.T) {
	bd := NewBookmarkDetector(10)

	// Never alive: no bookmark
	if bms := bd.Check(FrameStats{FieldStats: FieldStats{VMax: 0}}); hasBookmark(bms, BookmarkExtinction) {
		t.Error("extinction reported for a field that never had V")
	}

	bd.Check(FrameStats{Frame: 30, FieldStats: FieldStats{VMax: 0.6}})
	bms := bd.Check(FrameStats{Frame: 60, Feed: 0.01, Kill: 0.07, FieldStats: FieldStats{VMax: 0}})
	if !hasBookmark(bms, BookmarkExtinction) {
		t.Fatal("expected extinction bookmark")
	}
	if bms := bd.Check(FrameStats{Frame: 90}); hasBookmark(bms, BookmarkExtinction) {
		t.Error("extinction reported twice")
	}
}

func TestBookmarkDetector_Saturation(t *testing.T) {
	bd := NewBookmarkDetector(10)

	bms := bd.Check(FrameStats{FieldStats: FieldStats{Coverage: 0.95, VMax: 1}})
	if !hasBookmark(bms, BookmarkSaturation) {
		t.Fatal("expected saturation bookmark")
	}
	bms = bd.Check(FrameStats{FieldStats: FieldStats{Coverage: 0.97, VMax: 1}})
	if hasBookmark(bms, BookmarkSaturation) {
		t.Error("saturation retriggered")
	}
}

func TestBookmarkDetector_GrowthBurst(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(FrameStats{Frame: int64(i * 30), FieldStats: FieldStats{VMean: 0.04, VMax: 0.5}})
	}
	bms := bd.Check(FrameStats{Frame: 150, FieldStats: FieldStats{VMean: 0.12, VMax: 0.5}})
	if !hasBookmark(bms, BookmarkGrowthBurst) {
		t.Error("expected growth_burst bookmark")
	}
}

func TestBookmarkDetector_SteadyState(t *testing.T) {
	bd := NewBookmarkDetector(6)

	triggered := 0
	for i := 0; i < 20; i++ {
		bms := bd.Check(FrameStats{Frame: int64(i * 30), FieldStats: FieldStats{VMean: 0.2, VMax: 0.5}})
		if hasBookmark(bms, BookmarkSteadyState) {
			triggered++
		}
	}
	if triggered != 1 {
		t.Errorf("steady_state triggered %d times, want exactly 1", triggered)
	}
}

func TestBookmarkDetector_Reset(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(FrameStats{FieldStats: FieldStats{Coverage: 0.5, VMax: 1}})
	bd.Reset()
	bms := bd.Check(FrameStats{FieldStats: FieldStats{Coverage: 0.5, VMax: 1}})
	if !hasBookmark(bms, BookmarkPatternOnset) {
		t.Error("onset should trigger again after reset")
	}
}
