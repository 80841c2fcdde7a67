// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Grid        GridConfig        `yaml:"grid"`
	Screen      ScreenConfig      `yaml:"screen"`
	Simulation  SimulationConfig  `yaml:"simulation"`
	View        ViewConfig        `yaml:"view"`
	Gradient    GradientConfig    `yaml:"gradient"`
	Initializer InitializerConfig `yaml:"initializer"`
	Paint       PaintConfig       `yaml:"paint"`
	Presets     []PresetConfig    `yaml:"presets"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	GPU         GPUConfig         `yaml:"gpu"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// GridConfig holds the field dimensions. Fixed for the lifetime of an engine.
type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width      int `yaml:"width"`
	Height     int `yaml:"height"`
	TargetFPS  int `yaml:"target_fps"`
	PanelWidth int `yaml:"panel_width"` // Control panel width in pixels (0 hides the panel)
}

// SimulationConfig holds the initial reaction-diffusion parameters.
type SimulationConfig struct {
	FeedRate         float64 `yaml:"feed_rate"`
	KillRate         float64 `yaml:"kill_rate"`
	DiffuseU         float64 `yaml:"diffuse_u"`
	DiffuseV         float64 `yaml:"diffuse_v"`
	DeltaTime        float64 `yaml:"delta_time"`
	NoiseStrength    float64 `yaml:"noise_strength"`
	Kernel           int     `yaml:"kernel"`   // 0=default, 1=cross, 2=diagonal, 3=spiral
	Boundary         int     `yaml:"boundary"` // 0=wrap, 1=clamp, 2=reflect
	MapMode          bool    `yaml:"map_mode"`
	StepsPerFrame    int     `yaml:"steps_per_frame"`
	MaxStepsPerFrame int     `yaml:"max_steps_per_frame"`
}

// ViewConfig holds the initial view transform and colour mapping toggles.
type ViewConfig struct {
	Zoom     float64 `yaml:"zoom"`
	PanX     float64 `yaml:"pan_x"`
	PanY     float64 `yaml:"pan_y"`
	Palette  int     `yaml:"palette"`
	Emboss   bool    `yaml:"emboss"`
	ZoomStep float64 `yaml:"zoom_step"` // Multiplier per wheel notch
	PanStep  float64 `yaml:"pan_step"`  // Normalized pan per key press at zoom 1
}

// GradientStopConfig is one colour anchor of the default gradient.
type GradientStopConfig struct {
	Position float64    `yaml:"position"`
	Color    [4]float64 `yaml:"color"` // RGBA in [0,1]
}

// GradientConfig holds the default colour gradient.
type GradientConfig struct {
	Stops []GradientStopConfig `yaml:"stops"`
}

// InitializerConfig holds field initialization parameters.
type InitializerConfig struct {
	SeedRadiusSq  int   `yaml:"seed_radius_sq"` // Seed covers dx²+dy² < this around the centre
	BlobCount     int   `yaml:"blob_count"`
	BlobMinRadius int   `yaml:"blob_min_radius"`
	BlobMaxRadius int   `yaml:"blob_max_radius"` // Exclusive
	RandomSeed    int64 `yaml:"random_seed"`     // 0 = time-based
}

// PaintConfig holds paint stamp parameters used by the kernels.
type PaintConfig struct {
	Radius float64 `yaml:"radius"` // Stamp radius in texels
}

// PresetConfig is a named feed/kill pair.
type PresetConfig struct {
	Name string  `yaml:"name"`
	Feed float64 `yaml:"feed"`
	Kill float64 `yaml:"kill"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsInterval int `yaml:"stats_interval"` // Frames between field statistics samples
	PerfWindow    int `yaml:"perf_window"`    // Frames in the rolling perf window
}

// GPUConfig holds GPU backend parameters.
type GPUConfig struct {
	ShaderDir string `yaml:"shader_dir"` // Override embedded shaders with files from this directory
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	GridW32        float32        // Grid.Width as float32
	GridH32        float32        // Grid.Height as float32
	ScreenW32      float32        // Screen.Width as float32
	ScreenH32      float32        // Screen.Height as float32
	GradientPos    []float32      // Gradient positions, parallel to GradientColors
	GradientColors []float32      // Gradient RGBA components, 4 per stop
	PresetIndex    map[string]int // name -> index into Presets
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects configurations the engine cannot be built from.
// Rates and coefficients are deliberately not range-checked.
func (c *Config) validate() error {
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		return fmt.Errorf("grid dimensions must be positive, got %dx%d", c.Grid.Width, c.Grid.Height)
	}
	if c.Initializer.BlobMaxRadius <= c.Initializer.BlobMinRadius {
		return fmt.Errorf("initializer.blob_max_radius (%d) must exceed blob_min_radius (%d)",
			c.Initializer.BlobMaxRadius, c.Initializer.BlobMinRadius)
	}
	if c.Simulation.StepsPerFrame < 0 {
		return fmt.Errorf("simulation.steps_per_frame must not be negative, got %d", c.Simulation.StepsPerFrame)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.GridW32 = float32(c.Grid.Width)
	c.Derived.GridH32 = float32(c.Grid.Height)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	if c.Simulation.MaxStepsPerFrame < c.Simulation.StepsPerFrame {
		c.Simulation.MaxStepsPerFrame = c.Simulation.StepsPerFrame
	}
	if c.Telemetry.PerfWindow < 1 {
		c.Telemetry.PerfWindow = 60
	}
	if c.Telemetry.StatsInterval < 1 {
		c.Telemetry.StatsInterval = 1
	}

	c.Derived.GradientPos = make([]float32, 0, len(c.Gradient.Stops))
	c.Derived.GradientColors = make([]float32, 0, 4*len(c.Gradient.Stops))
	for _, s := range c.Gradient.Stops {
		c.Derived.GradientPos = append(c.Derived.GradientPos, float32(s.Position))
		for _, ch := range s.Color {
			c.Derived.GradientColors = append(c.Derived.GradientColors, float32(ch))
		}
	}

	c.Derived.PresetIndex = make(map[string]int, len(c.Presets))
	for i, p := range c.Presets {
		c.Derived.PresetIndex[p.Name] = i
	}
}

// Preset looks up a named preset.
func (c *Config) Preset(name string) (PresetConfig, bool) {
	i, ok := c.Derived.PresetIndex[name]
	if !ok {
		return PresetConfig{}, false
	}
	return c.Presets[i], true
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
