package telemetry

// FieldSource is the part of the engine the collector samples.
type FieldSource interface {
	ReadActive() ([]float32, error)
}

// FrameInfo carries the per-frame engine counters the collector records.
type FrameInfo struct {
	Steps  uint64
	Flips  uint64
	Feed   float32
	Kill   float32
	Kernel string
	Paused bool
}

// Collector counts frames and paint calls and produces FrameStats at a
// fixed frame interval.
type Collector struct {
	interval int64

	frame       int64
	windowStart int64
	paints      int
	last        []float32
}

// NewCollector creates a collector that flushes every interval frames.
func NewCollector(interval int) *Collector {
	if interval < 1 {
		interval = 1
	}
	return &Collector{interval: int64(interval)}
}

// RecordFrame advances the frame counter.
func (c *Collector) RecordFrame() {
	c.frame++
}

// RecordPaint counts one paint call.
func (c *Collector) RecordPaint() {
	c.paints++
}

// Frame returns the number of recorded frames.
func (c *Collector) Frame() int64 {
	return c.frame
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush() bool {
	return c.frame-c.windowStart >= c.interval
}

// Flush reads the field, produces FrameStats and resets counters for the
// next window.
func (c *Collector) Flush(src FieldSource, info FrameInfo) (FrameStats, error) {
	texels, err := src.ReadActive()
	if err != nil {
		return FrameStats{}, err
	}
	stats := FrameStats{
		Frame:      c.frame,
		Steps:      info.Steps,
		Flips:      info.Flips,
		Feed:       info.Feed,
		Kill:       info.Kill,
		Kernel:     info.Kernel,
		Paused:     info.Paused,
		Painted:    c.paints,
		FieldStats: ComputeFieldStats(texels),
	}
	c.windowStart = c.frame
	c.paints = 0
	c.last = texels
	return stats, nil
}

// LastField returns the field read by the most recent flush, or nil.
func (c *Collector) LastField() []float32 {
	return c.last
}
