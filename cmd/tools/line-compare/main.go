// Package main provides a comparison tool for racing-line optimization.
// It runs the optimizer across a set of seeds on one track and compares
// the results against each other and against the heuristic starting line.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/raceline/internal/config"
	"github.com/banshee-data/raceline/internal/raceline"
	"github.com/banshee-data/raceline/internal/runs"
	"github.com/banshee-data/raceline/internal/security"
	"github.com/banshee-data/raceline/internal/track"
	"github.com/banshee-data/raceline/internal/units"
)

// Config holds configuration for the line comparison.
type Config struct {
	TrackFile  string
	Seeds      int
	Iterations int
	HalfWidth  float64
	Grip       float64
	Units      string
	OutputJSON string
	ConfigPath string
}

// ComparisonResult holds the results of comparing seeds on one track.
type ComparisonResult struct {
	TrackFile        string       `json:"track_file"`
	TrackPoints      int          `json:"track_points"`
	Seeds            int          `json:"seeds"`
	Iterations       int          `json:"iterations"`
	Grip             float64      `json:"grip"`
	HeuristicLapTime float64      `json:"heuristic_lap_time_s"`
	ProcessingTimeMs int64        `json:"processing_time_ms"`
	PerSeed          []SeedResult `json:"per_seed"`
	Best             SeedResult   `json:"best"`
	Spread           SpreadStats  `json:"spread"`
}

// SeedResult holds per-seed statistics.
type SeedResult struct {
	Seed       int64   `json:"seed"`
	LapTime    float64 `json:"lap_time_s"`
	LinePoints int     `json:"line_points"`
	Improved   float64 `json:"improvement_s"` // over the heuristic line
	ElapsedMs  int64   `json:"elapsed_ms"`
}

// SpreadStats summarizes how much results vary across seeds.
type SpreadStats struct {
	MinLapTime float64 `json:"min_lap_time_s"`
	MaxLapTime float64 `json:"max_lap_time_s"`
	AvgLapTime float64 `json:"avg_lap_time_s"`
}

func main() {
	cfg := parseFlags()

	if cfg.TrackFile == "" {
		log.Fatal("track file is required")
	}
	if !units.IsValid(cfg.Units) {
		log.Fatalf("invalid units %q, want one of %v", cfg.Units, units.ValidUnits)
	}

	result, err := runComparison(cfg)
	if err != nil {
		log.Fatalf("Comparison failed: %v", err)
	}

	printResults(result, cfg.Units)

	if cfg.OutputJSON != "" {
		if err := exportJSON(result, cfg.OutputJSON); err != nil {
			log.Printf("Warning: failed to export JSON: %v", err)
		} else {
			log.Printf("Results exported to: %s", cfg.OutputJSON)
		}
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.TrackFile, "track", "", "Path to a track record JSON file")
	flag.IntVar(&cfg.Seeds, "seeds", 5, "Number of seeds to compare")
	flag.IntVar(&cfg.Iterations, "iterations", 0, "Annealing iterations per seed (0 = tuning default)")
	flag.Float64Var(&cfg.HalfWidth, "half-width", 0, "Track half-width override in drawing units")
	flag.Float64Var(&cfg.Grip, "grip", 0, "Grip coefficient override (0 = tuning default)")
	flag.StringVar(&cfg.Units, "units", units.MPS, "Display units for speeds (mps, mph, kph)")
	flag.StringVar(&cfg.OutputJSON, "json", "", "Output JSON filename (e.g., results.json)")
	flag.StringVar(&cfg.ConfigPath, "config", "", "Path to a tuning config JSON")

	flag.Parse()

	return cfg
}

func runComparison(cfg Config) (*ComparisonResult, error) {
	data, err := os.ReadFile(cfg.TrackFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read track file: %w", err)
	}
	rec, err := track.ParseRecord(data)
	if err != nil {
		return nil, fmt.Errorf("invalid track file: %w", err)
	}

	tuning := config.EmptyTuningConfig()
	if cfg.ConfigPath != "" {
		tuning, err = config.LoadTuningConfig(cfg.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load tuning config: %w", err)
		}
	}

	vehicle := tuning.PhysicsConfig()
	if cfg.Grip != 0 {
		vehicle.SetGrip(cfg.Grip)
	}
	halfWidth := cfg.HalfWidth
	if halfWidth == 0 {
		halfWidth = tuning.GetTrackHalfWidth()
	}
	iterations := cfg.Iterations
	if iterations == 0 {
		iterations = tuning.GetIterations()
	}

	heuristicLap := raceline.LapTime(raceline.Heuristic(rec.TrackPoints, halfWidth), vehicle)

	manager := runs.NewManager(nil, nil, halfWidth, 0)
	startTime := time.Now()

	result := &ComparisonResult{
		TrackFile:        cfg.TrackFile,
		TrackPoints:      len(rec.TrackPoints),
		Seeds:            cfg.Seeds,
		Iterations:       iterations,
		Grip:             vehicle.Grip,
		HeuristicLapTime: heuristicLap,
	}

	best := SeedResult{LapTime: heuristicLap, Seed: -1}
	total := 0.0
	spread := SpreadStats{MinLapTime: heuristicLap, MaxLapTime: 0}
	for i := 0; i < cfg.Seeds; i++ {
		seed := int64(i + 1)
		seedStart := time.Now()
		optimized, lapTime, err := manager.GenerateSync(runs.Request{
			TrackPoints: rec.TrackPoints,
			HalfWidth:   halfWidth,
			Physics:     &vehicle,
			Iterations:  iterations,
			Seed:        &seed,
		})
		if err != nil {
			return nil, fmt.Errorf("seed %d failed: %w", seed, err)
		}

		sr := SeedResult{
			Seed:       seed,
			LapTime:    lapTime,
			LinePoints: len(optimized.RacingLine),
			Improved:   heuristicLap - lapTime,
			ElapsedMs:  time.Since(seedStart).Milliseconds(),
		}
		result.PerSeed = append(result.PerSeed, sr)
		total += lapTime
		if lapTime < spread.MinLapTime {
			spread.MinLapTime = lapTime
		}
		if lapTime > spread.MaxLapTime {
			spread.MaxLapTime = lapTime
		}
		if lapTime < best.LapTime {
			best = sr
		}
	}

	spread.AvgLapTime = total / float64(cfg.Seeds)
	result.Spread = spread
	result.Best = best
	result.ProcessingTimeMs = time.Since(startTime).Milliseconds()

	return result, nil
}

func printResults(result *ComparisonResult, speedUnits string) {
	fmt.Println("\n=== Racing Line Comparison Results ===")
	fmt.Printf("Track: %s (%d points)\n", result.TrackFile, result.TrackPoints)
	fmt.Printf("Grip: %.2f  Iterations: %d\n", result.Grip, result.Iterations)
	fmt.Printf("Heuristic Lap Time: %s\n", units.FormatLapTime(result.HeuristicLapTime))
	fmt.Printf("Processing Time: %dms\n", result.ProcessingTimeMs)

	fmt.Println("\n--- Per-Seed Results ---")
	for _, sr := range result.PerSeed {
		fmt.Printf("seed %2d: lap %s  improvement %+.3fs  %d points  %dms\n",
			sr.Seed, units.FormatLapTime(sr.LapTime), sr.Improved, sr.LinePoints, sr.ElapsedMs)
	}

	fmt.Println("\n--- Spread ---")
	fmt.Printf("Best: seed %d at %s\n", result.Best.Seed, units.FormatLapTime(result.Best.LapTime))
	fmt.Printf("Min: %s  Max: %s  Avg: %s\n",
		units.FormatLapTime(result.Spread.MinLapTime),
		units.FormatLapTime(result.Spread.MaxLapTime),
		units.FormatLapTime(result.Spread.AvgLapTime))
}

func exportJSON(result *ComparisonResult, path string) error {
	if err := security.ValidateExportPath(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
