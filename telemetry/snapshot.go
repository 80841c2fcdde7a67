package telemetry

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/turing/engine"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete engine state for later restore. The header is
// JSON; the field texels live in a sidecar file of little-endian float32.
type Snapshot struct {
	Version int    `json:"version"`
	Frame   int64  `json:"frame"`
	Steps   uint64 `json:"steps"`

	GridWidth  int `json:"grid_width"`
	GridHeight int `json:"grid_height"`

	Sim      SimState       `json:"sim"`
	View     ViewState      `json:"view"`
	Gradient []GradientStop `json:"gradient"`
	Bookmark *Bookmark      `json:"bookmark,omitempty"`

	FieldFile string    `json:"field_file"`
	Field     []float32 `json:"-"`
}

// SimState is the JSON form of the simulation parameters.
type SimState struct {
	FeedRate      float32 `json:"feed_rate"`
	KillRate      float32 `json:"kill_rate"`
	DiffuseU      float32 `json:"diffuse_u"`
	DiffuseV      float32 `json:"diffuse_v"`
	DeltaTime     float32 `json:"delta_time"`
	NoiseStrength float32 `json:"noise_strength"`
	Kernel        uint32  `json:"kernel"`
	Boundary      uint32  `json:"boundary"`
	MapMode       bool    `json:"map_mode"`
}

// ViewState is the JSON form of the view and colour mapping.
type ViewState struct {
	Zoom    float32 `json:"zoom"`
	PanX    float32 `json:"pan_x"`
	PanY    float32 `json:"pan_y"`
	Palette uint32  `json:"palette"`
	Emboss  bool    `json:"emboss"`
}

// GradientStop is the JSON form of one gradient stop.
type GradientStop struct {
	Position float32    `json:"position"`
	Color    [4]float32 `json:"color"`
}

// CaptureSnapshot reads the engine state including the active field.
func CaptureSnapshot(e *engine.Engine, frame int64) (*Snapshot, error) {
	texels, err := e.ReadActive()
	if err != nil {
		return nil, fmt.Errorf("read field: %w", err)
	}
	p := e.Params().Params()
	rp := e.View().RenderParams()
	g := e.View().Gradient()

	s := &Snapshot{
		Version:    SnapshotVersion,
		Frame:      frame,
		Steps:      e.Steps(),
		GridWidth:  int(p.GridWidth),
		GridHeight: int(p.GridHeight),
		Sim: SimState{
			FeedRate:      p.FeedRate,
			KillRate:      p.KillRate,
			DiffuseU:      p.DiffuseU,
			DiffuseV:      p.DiffuseV,
			DeltaTime:     p.DeltaTime,
			NoiseStrength: p.NoiseStrength,
			Kernel:        uint32(p.Kernel),
			Boundary:      uint32(p.Boundary),
			MapMode:       p.MapMode,
		},
		View: ViewState{
			Zoom:    rp.Zoom,
			PanX:    rp.PanX,
			PanY:    rp.PanY,
			Palette: uint32(rp.Palette),
			Emboss:  rp.Emboss,
		},
		Field: texels,
	}
	for i := range int(g.Count) {
		s.Gradient = append(s.Gradient, GradientStop{Position: g.Stops[i].Position, Color: g.Stops[i].Color})
	}
	return s, nil
}

// Restore applies the snapshot to e. The grid size must match.
func (s *Snapshot) Restore(e *engine.Engine) error {
	p := e.Params().Params()
	if int(p.GridWidth) != s.GridWidth || int(p.GridHeight) != s.GridHeight {
		return fmt.Errorf("snapshot grid %dx%d does not match engine %dx%d",
			s.GridWidth, s.GridHeight, p.GridWidth, p.GridHeight)
	}

	p.FeedRate = s.Sim.FeedRate
	p.KillRate = s.Sim.KillRate
	p.DiffuseU = s.Sim.DiffuseU
	p.DiffuseV = s.Sim.DiffuseV
	p.DeltaTime = s.Sim.DeltaTime
	p.NoiseStrength = s.Sim.NoiseStrength
	p.Kernel = engine.Kernel(s.Sim.Kernel)
	p.Boundary = engine.Boundary(s.Sim.Boundary)
	p.MapMode = s.Sim.MapMode
	if err := e.Params().Replace(p); err != nil {
		return err
	}

	v := e.View()
	if err := v.SetPalette(engine.Palette(s.View.Palette)); err != nil {
		return err
	}
	v.SetEmboss(s.View.Emboss)
	v.SetZoom(s.View.Zoom)
	v.SetPan(s.View.PanX, s.View.PanY)

	pos := make([]float32, 0, len(s.Gradient))
	col := make([]float32, 0, 4*len(s.Gradient))
	for _, st := range s.Gradient {
		pos = append(pos, st.Position)
		col = append(col, st.Color[:]...)
	}
	v.SetGradient(pos, col)

	return e.LoadField(s.Field)
}

// SaveSnapshot writes a snapshot header and field to dir.
// Returns the header path.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Frame)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Frame, sanitized)
	}

	snapshot.FieldFile = name + ".field"
	if err := writeField(filepath.Join(dir, snapshot.FieldFile), snapshot.Field); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name+".json")
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot header and its field from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	n := snapshot.GridWidth * snapshot.GridHeight * 2
	snapshot.Field, err = readField(filepath.Join(filepath.Dir(path), snapshot.FieldFile), n)
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func writeField(path string, texels []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create field file: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, texels); err != nil {
		f.Close()
		return fmt.Errorf("write field: %w", err)
	}
	return f.Close()
}

func readField(path string, n int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open field file: %w", err)
	}
	defer f.Close()

	texels := make([]float32, n)
	if err := binary.Read(f, binary.LittleEndian, texels); err != nil {
		return nil, fmt.Errorf("read field: %w", err)
	}
	return texels, nil
}
