// Package main provides CMA-ES search for feed/kill pairs that settle into
// stable, well-defined patterns. The best pair is written as a preset overlay
// that can be passed to the simulator with -config.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/turing/config"
)

// evalRecord is one row of tune_log.csv.
type evalRecord struct {
	Eval     int     `csv:"eval"`
	Fitness  float64 `csv:"fitness"`
	Quality  float64 `csv:"quality"`
	Feed     float64 `csv:"feed"`
	Kill     float64 `csv:"kill"`
	Coverage float64 `csv:"coverage"`
	VStd     float64 `csv:"v_std"`
}

// presetOverlay is the config overlay written for the best parameters.
type presetOverlay struct {
	Simulation struct {
		FeedRate float64 `yaml:"feed_rate"`
		KillRate float64 `yaml:"kill_rate"`
	} `yaml:"simulation"`
	Presets []config.PresetConfig `yaml:"presets"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	frames := flag.Int("frames", 400, "Frames simulated per evaluation")
	grid := flag.Int("grid", 128, "Square grid size used for evaluation")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 100, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	name := flag.String("name", "tuned", "Name of the generated preset")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg.Grid.Width, baseCfg.Grid.Height = *grid, *grid

	params := NewParamVector(baseCfg)

	evalSeeds := make([]uint64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = uint64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, *frames, evalSeeds, baseCfg)

	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential; seeds already run in parallel
	}

	logPath := filepath.Join(*outputDir, "tune_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	evalCount := 0
	headerWritten := false
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			fitness := evaluator.Evaluate(raw)
			evalCount++

			// Clamped values are the ones actually simulated
			clamped := params.Clamp(raw)
			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			stats := evaluator.LastStats()
			rec := []evalRecord{{
				Eval:     evalCount,
				Fitness:  fitness,
				Quality:  evaluator.LastQuality(),
				Feed:     clamped[0],
				Kill:     clamped[1],
				Coverage: stats.Coverage,
				VStd:     stats.VStd,
			}}
			if !headerWritten {
				err = gocsv.Marshal(rec, logFile)
				headerWritten = true
			} else {
				err = gocsv.MarshalWithoutHeaders(rec, logFile)
			}
			if err != nil {
				log.Printf("failed to write log row: %v", err)
			}

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(*maxEvals-evalCount) * avgPerEval
			fmt.Printf("Eval %d/%d: feed=%.4f kill=%.4f quality=%.3f (best=%.3f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, clamped[0], clamped[1], evaluator.LastQuality(), -bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	fmt.Printf("Starting CMA-ES search with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, frames per run: %d, grid: %dx%d\n", *seeds, *frames, *grid, *grid)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if bestParams == nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}

	fmt.Printf("\nSearch complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best quality: %.3f\n", -bestFitness)
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	presetPath := filepath.Join(*outputDir, "preset.yaml")
	if err := writePreset(presetPath, baseCfg, *name, bestParams); err != nil {
		log.Fatalf("failed to write preset: %v", err)
	}
	fmt.Printf("\nPreset saved to: %s\n", presetPath)
}

// writePreset writes a config overlay that starts on the tuned pair and adds
// it to the preset table.
func writePreset(path string, base *config.Config, name string, values []float64) error {
	var out presetOverlay
	out.Simulation.FeedRate = values[0]
	out.Simulation.KillRate = values[1]
	for _, p := range base.Presets {
		if p.Name != name {
			out.Presets = append(out.Presets, p)
		}
	}
	out.Presets = append(out.Presets, config.PresetConfig{Name: name, Feed: values[0], Kill: values[1]})

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshaling preset: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
