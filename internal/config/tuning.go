// Package config loads and validates the racing-line tuning
// parameters.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/raceline/internal/physics"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for tuning
// parameters. The schema matches the /api/physics endpoint so the same
// JSON can be used for both startup configuration and runtime updates.
// All fields are pointers so partial configs merge over defaults.
type TuningConfig struct {
	// Vehicle params
	Grip            *float64 `json:"grip,omitempty"`
	MaxAcceleration *float64 `json:"max_acceleration,omitempty"`
	MaxBraking      *float64 `json:"max_braking,omitempty"`
	MaxSpeed        *float64 `json:"max_speed,omitempty"`

	// Track params
	TrackHalfWidth *float64 `json:"track_half_width,omitempty"`

	// Optimizer params
	Iterations      *int `json:"iterations,omitempty"`
	SmoothingPasses *int `json:"smoothing_passes,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset. Use
// LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file is
// validated to have a .json extension and to be under the max file
// size. Fields omitted from the JSON retain their defaults, so partial
// configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from
// DefaultConfigPath, searching the current directory and common parent
// directories so tests can run from package subdirectories.
func MustLoadDefaultConfig() *TuningConfig {
	for _, prefix := range []string{"", "../", "../../", "../../../"} {
		path := prefix + DefaultConfigPath
		if _, err := os.Stat(path); err == nil {
			cfg, err := LoadTuningConfig(path)
			if err != nil {
				panic(fmt.Sprintf("failed to load %s: %v", path, err))
			}
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.Grip != nil {
		if *c.Grip < physics.MinGrip || *c.Grip > physics.MaxGrip {
			return fmt.Errorf("grip must be between %.1f and %.1f, got %f", physics.MinGrip, physics.MaxGrip, *c.Grip)
		}
	}
	if c.MaxAcceleration != nil && *c.MaxAcceleration <= 0 {
		return fmt.Errorf("max_acceleration must be positive, got %f", *c.MaxAcceleration)
	}
	if c.MaxBraking != nil && *c.MaxBraking <= 0 {
		return fmt.Errorf("max_braking must be positive, got %f", *c.MaxBraking)
	}
	if c.MaxSpeed != nil && *c.MaxSpeed <= 0 {
		return fmt.Errorf("max_speed must be positive, got %f", *c.MaxSpeed)
	}
	if c.TrackHalfWidth != nil && *c.TrackHalfWidth <= 0 {
		return fmt.Errorf("track_half_width must be positive, got %f", *c.TrackHalfWidth)
	}
	if c.Iterations != nil && *c.Iterations < 0 {
		return fmt.Errorf("iterations must be non-negative, got %d", *c.Iterations)
	}
	if c.SmoothingPasses != nil && *c.SmoothingPasses < 0 {
		return fmt.Errorf("smoothing_passes must be non-negative, got %d", *c.SmoothingPasses)
	}
	return nil
}

// GetGrip returns the grip value or the default.
func (c *TuningConfig) GetGrip() float64 {
	if c.Grip == nil {
		return 1.0
	}
	return *c.Grip
}

// GetMaxAcceleration returns the max_acceleration value or the default.
func (c *TuningConfig) GetMaxAcceleration() float64 {
	if c.MaxAcceleration == nil {
		return 8.0
	}
	return *c.MaxAcceleration
}

// GetMaxBraking returns the max_braking value or the default.
func (c *TuningConfig) GetMaxBraking() float64 {
	if c.MaxBraking == nil {
		return 12.0
	}
	return *c.MaxBraking
}

// GetMaxSpeed returns the max_speed value or the default.
func (c *TuningConfig) GetMaxSpeed() float64 {
	if c.MaxSpeed == nil {
		return 80.0
	}
	return *c.MaxSpeed
}

// GetTrackHalfWidth returns the track_half_width value or the default.
func (c *TuningConfig) GetTrackHalfWidth() float64 {
	if c.TrackHalfWidth == nil {
		return 20.0
	}
	return *c.TrackHalfWidth
}

// GetIterations returns the iterations value or the default.
func (c *TuningConfig) GetIterations() int {
	if c.Iterations == nil {
		return 30
	}
	return *c.Iterations
}

// GetSmoothingPasses returns the smoothing_passes value or the default.
func (c *TuningConfig) GetSmoothingPasses() int {
	if c.SmoothingPasses == nil {
		return 4
	}
	return *c.SmoothingPasses
}

// PhysicsConfig assembles a physics.Config snapshot from the tuning
// values, clamping grip through the explicit setter.
func (c *TuningConfig) PhysicsConfig() physics.Config {
	cfg := physics.Config{
		MaxAcceleration: c.GetMaxAcceleration(),
		MaxBraking:      c.GetMaxBraking(),
		MaxSpeed:        c.GetMaxSpeed(),
	}
	cfg.SetGrip(c.GetGrip())
	return cfg
}
