// Package generate synthesizes validated strategy maps from a seed.
package generate

import (
	"log/slog"
	"skirmish/internal/gamemap"
	"skirmish/internal/noise"
)

// DefaultMaxAttempts is the retry cap used when Config.MaxAttempts is unset.
const DefaultMaxAttempts = 10

// Stage names the part of an attempt currently running.
type Stage uint8

const (
	StageGenerate Stage = iota
	StageValidate
)

// Validator decides whether a synthesized map is playable. A non-nil error
// rejects the attempt; the error becomes the recorded reason.
type Validator func(m *gamemap.Map, cfg *Config) error

// Config drives map synthesis and validation. Terrain fractions are
// quantiles of the generated fields, so they hold for every seed.
type Config struct {
	Players int

	Elevation noise.Octaves
	Moisture  noise.Octaves

	WaterFraction    float64 // lowest share of elevation that floods
	MountainFraction float64 // highest share of elevation that becomes mountain
	ForestFraction   float64 // wettest share of the map that grows forest
	ResourceMoisture float64 // moisture quantile above which resources may appear
	ResourceDensity  float64 // chance a qualifying land tile holds a resource

	MinLandRatio         float64 // non-water tiles / all tiles
	MinReachableFraction float64 // of passable tiles, reachable from each start
	MinResources         int
	MinStartSpacing      int // Chebyshev distance between starts

	MaxAttempts int
	Validator   Validator
	// OnStage, when set, is called as each attempt enters a stage.
	OnStage func(stage Stage, attempt int)
	Logger  *slog.Logger
}

// DefaultConfig returns conservative thresholds for a two-player map.
func DefaultConfig() Config {
	return Config{
		Players:              2,
		Elevation:            noise.Octaves{Count: 4, Frequency: 0.045, Persistence: 0.5, Lacunarity: 2},
		Moisture:             noise.Octaves{Count: 3, Frequency: 0.07, Persistence: 0.5, Lacunarity: 2},
		WaterFraction:        0.22,
		MountainFraction:     0.08,
		ForestFraction:       0.35,
		ResourceMoisture:     0.75,
		ResourceDensity:      0.15,
		MinLandRatio:         0.6,
		MinReachableFraction: 0.6,
		MinResources:         6,
		MinStartSpacing:      8,
		MaxAttempts:          DefaultMaxAttempts,
	}
}

func (c Config) withDefaults() Config {
	if c.Players < 1 {
		c.Players = 1
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.Validator == nil {
		c.Validator = Validate
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

func (c *Config) stage(s Stage, attempt int) {
	if c.OnStage != nil {
		c.OnStage(s, attempt)
	}
}
