package ui

import (
	"fmt"
	"sort"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/turing/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title         string
	Steps         uint64
	Flips         uint64
	StepsPerFrame int
	FPS           int32
	Paused        bool
	Feed, Kill    float32
	Kernel        string
	Boundary      string
	Palette       string
	Zoom          float32
	PanX, PanY    float32
	Painting      bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD with its top-left corner at (x, y).
func (h *HUD) Draw(x, y int32, data HUDData) {
	rl.DrawText(data.Title, x, y, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Steps: %d | %d/frame | FPS: %d", data.Steps, data.StepsPerFrame, data.FPS),
		x, y+25, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("F=%.4f K=%.4f | %s | %s | %s", data.Feed, data.Kill, data.Kernel, data.Boundary, data.Palette),
		x, y+45, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Zoom: %.2fx | Pan: %+.3f, %+.3f", data.Zoom, data.PanX, data.PanY),
		x, y+65, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	if data.Painting {
		statusText += " | painting"
	}
	rl.DrawText(statusText, x, y+85, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(x, screenHeight int32, controls string) {
	rl.DrawText(controls, x, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase frame timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Frame Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Work: %s (max %s)", stats.AvgWork.Round(time.Microsecond), stats.MaxWork.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, name := range sortedPhases(stats.PhaseAvg) {
		avg := stats.PhaseAvg[name]
		pct := stats.PhasePct[name]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", name, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}

// sortedPhases returns phase names ordered by descending average time.
func sortedPhases(avg map[string]time.Duration) []string {
	names := make([]string, 0, len(avg))
	for name := range avg {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if avg[names[i]] != avg[names[j]] {
			return avg[names[i]] > avg[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// fieldStatsSection describes the field statistics readout.
var fieldStatsSection = SectionDescriptor{
	ID:    "field_stats",
	Title: "Field",
	Fields: []FieldDescriptor{
		{ID: "u_mean", Label: "U mean", Widget: WidgetBar, Range: DefaultRange(),
			Getter: func(d any) float32 { return float32(d.(telemetry.FieldStats).UMean) }},
		{ID: "v_mean", Label: "V mean", Widget: WidgetBar, Range: FieldRange{Min: 0, Max: 0.5},
			Getter: func(d any) float32 { return float32(d.(telemetry.FieldStats).VMean) }},
		{ID: "v_std", Label: "V std", Widget: WidgetText, Format: "%.4f",
			Getter: func(d any) float32 { return float32(d.(telemetry.FieldStats).VStd) }},
		{ID: "v_range", Label: "V range", Widget: WidgetText,
			TextGetter: func(d any) string {
				s := d.(telemetry.FieldStats)
				return fmt.Sprintf("%.3f .. %.3f", s.VMin, s.VMax)
			}},
		{ID: "v_p50", Label: "V p50", Widget: WidgetText, Format: "%.4f",
			Getter: func(d any) float32 { return float32(d.(telemetry.FieldStats).VP50) }},
		{ID: "v_p90", Label: "V p90", Widget: WidgetText, Format: "%.4f",
			Getter: func(d any) float32 { return float32(d.(telemetry.FieldStats).VP90) }},
		{ID: "coverage", Label: "Coverage", Widget: WidgetBar, Range: DefaultRange(),
			Getter: func(d any) float32 { return float32(d.(telemetry.FieldStats).Coverage) }},
	},
}

// StatsPanel renders the most recent field statistics.
type StatsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewStatsPanel creates a new field statistics panel.
func NewStatsPanel(x, y, width int32) *StatsPanel {
	return &StatsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (s *StatsPanel) SetPosition(x, y int32) {
	s.x = x
	s.y = y
}

// Draw renders the statistics panel and returns the Y below it.
func (s *StatsPanel) Draw(stats telemetry.FieldStats) int32 {
	r := s.renderer
	padding := r.Theme.Padding
	h := r.SectionHeight(fieldStatsSection, stats) + padding*2
	r.DrawPanel(s.x, s.y, s.width, h)
	return r.DrawSection(s.x+padding, s.y+padding, fieldStatsSection, stats, s.width-padding*2)
}

// ProbeData is the field state under the cursor.
type ProbeData struct {
	TX, TY int32
	U, V   float32
	Valid  bool // Texel lies inside the grid and a field sample exists
}

// ProbeAt reads texel (tx, ty) from interleaved texels of a w×h field.
func ProbeAt(texels []float32, w, h int, tx, ty int32) ProbeData {
	d := ProbeData{TX: tx, TY: ty}
	if tx < 0 || ty < 0 || int(tx) >= w || int(ty) >= h || len(texels) != w*h*2 {
		return d
	}
	i := (int(ty)*w + int(tx)) * 2
	d.U, d.V = texels[i], texels[i+1]
	d.Valid = true
	return d
}

var probeSection = SectionDescriptor{
	ID:    "probe",
	Title: "Probe",
	Fields: []FieldDescriptor{
		{ID: "texel", Label: "Texel", Widget: WidgetText,
			TextGetter: func(d any) string {
				p := d.(ProbeData)
				return fmt.Sprintf("%d, %d", p.TX, p.TY)
			}},
		{ID: "u", Label: "U", Widget: WidgetBar, Range: DefaultRange(),
			Visible: func(d any) bool { return d.(ProbeData).Valid },
			Getter:  func(d any) float32 { return d.(ProbeData).U }},
		{ID: "v", Label: "V", Widget: WidgetBar, Range: DefaultRange(),
			Visible: func(d any) bool { return d.(ProbeData).Valid },
			Getter:  func(d any) float32 { return d.(ProbeData).V }},
		{ID: "outside", Label: "State", Widget: WidgetText,
			Visible:    func(d any) bool { return !d.(ProbeData).Valid },
			TextGetter: func(any) string { return "outside grid" }},
	},
}

// ProbePanel renders the texel readout under the cursor.
type ProbePanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewProbePanel creates a probe panel.
func NewProbePanel(x, y, width int32) *ProbePanel {
	return &ProbePanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (p *ProbePanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the probe panel and returns the Y below it.
func (p *ProbePanel) Draw(data ProbeData) int32 {
	r := p.renderer
	padding := r.Theme.Padding
	h := r.SectionHeight(probeSection, data) + padding*2
	r.DrawPanel(p.x, p.y, p.width, h)
	return r.DrawSection(p.x+padding, p.y+padding, probeSection, data, p.width-padding*2)
}

// DrawHelp renders the keyboard shortcut list centred in the given area.
func DrawHelp(x, y, width, height int32, bindings []KeyBinding, overlays []OverlayDescriptor) {
	r := NewRenderer()
	lines := make([]string, 0, len(bindings)+len(overlays)+4)
	lines = append(lines, "Drag to paint | Wheel to zoom | Arrows to pan")
	for _, b := range bindings {
		lines = append(lines, fmt.Sprintf("%-6s %s", b.Label, actionLabel(b.Action)))
	}
	for _, o := range overlays {
		lines = append(lines, fmt.Sprintf("%-6s toggle %s", o.KeyLabel, o.Name))
	}

	panelW := int32(340)
	panelH := int32(len(lines))*r.Theme.LineHeight + r.Theme.Padding*2 + 20
	px := x + (width-panelW)/2
	py := y + (height-panelH)/2
	r.DrawPanel(px, py, panelW, panelH)

	ly := r.DrawSectionHeader(px+r.Theme.Padding, py+r.Theme.Padding, "Shortcuts")
	for _, line := range lines {
		rl.DrawText(line, px+r.Theme.Padding, ly, r.Theme.FontSize, r.Theme.LabelColor)
		ly += r.Theme.LineHeight
	}
}

// actionLabel describes an action for the help overlay.
func actionLabel(a Action) string {
	switch a.Kind {
	case ActionTogglePause:
		return "pause / resume"
	case ActionStepOnce:
		return "single step"
	case ActionClear:
		return "clear field"
	case ActionSeed:
		return "reseed centre"
	case ActionScatter:
		return "scatter blobs"
	case ActionPreset:
		return "preset " + a.Preset
	case ActionCycleKernel:
		return "next kernel"
	case ActionCycleBoundary:
		return "next boundary"
	case ActionCyclePalette:
		return "next palette"
	case ActionToggleEmboss:
		return "toggle emboss"
	case ActionToggleMapMode:
		return "toggle map mode"
	case ActionResetView:
		return "reset view"
	case ActionSnapshot:
		return "save snapshot"
	case ActionSlider:
		return "set " + a.Slider
	case ActionToggleOverlay:
		return "toggle " + string(a.Overlay)
	}
	return "?"
}
