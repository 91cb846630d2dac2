// Package config loads match settings and generation overrides from the
// environment.
package config

import (
	"errors"
	"fmt"
	"skirmish/internal/generate"
	"strings"
	"time"
)

// MaxAI bounds the number of AI opponents in one match.
const MaxAI = 7

// BaseTick is the tick interval at normal game speed.
const BaseTick = 250 * time.Millisecond

var ErrInvalidSettings = errors.New("invalid settings")

// MapSize is the map size class chosen in the menu.
type MapSize string

const (
	MapSmall  MapSize = "small"
	MapMedium MapSize = "medium"
	MapLarge  MapSize = "large"
)

func (s *MapSize) UnmarshalText(b []byte) error {
	v := MapSize(strings.ToLower(strings.TrimSpace(string(b))))
	switch v {
	case MapSmall, MapMedium, MapLarge:
		*s = v
		return nil
	}
	return fmt.Errorf("%w: map size %q", ErrInvalidSettings, b)
}

// Side returns the edge length of a square map of this class.
func (s MapSize) Side() int {
	switch s {
	case MapSmall:
		return 32
	case MapLarge:
		return 96
	default:
		return 64
	}
}

// Difficulty scales resource scarcity.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

func (d *Difficulty) UnmarshalText(b []byte) error {
	v := Difficulty(strings.ToLower(strings.TrimSpace(string(b))))
	switch v {
	case Easy, Medium, Hard:
		*d = v
		return nil
	}
	return fmt.Errorf("%w: difficulty %q", ErrInvalidSettings, b)
}

// GameSpeed scales the tick interval.
type GameSpeed string

const (
	Slow   GameSpeed = "slow"
	Normal GameSpeed = "normal"
	Fast   GameSpeed = "fast"
)

func (g *GameSpeed) UnmarshalText(b []byte) error {
	v := GameSpeed(strings.ToLower(strings.TrimSpace(string(b))))
	switch v {
	case Slow, Normal, Fast:
		*g = v
		return nil
	}
	return fmt.Errorf("%w: game speed %q", ErrInvalidSettings, b)
}

// Settings are the player-facing match options.
type Settings struct {
	MapSize    MapSize    `env:"SKIRMISH_MAP_SIZE" envDefault:"medium"`
	Seed       int64      `env:"SKIRMISH_SEED" envDefault:"0"` // 0 picks a random seed
	Difficulty Difficulty `env:"SKIRMISH_DIFFICULTY" envDefault:"medium"`
	FogOfWar   bool       `env:"SKIRMISH_FOG_OF_WAR" envDefault:"true"`
	AICount    int        `env:"SKIRMISH_AI_COUNT" envDefault:"1"`
	GameSpeed  GameSpeed  `env:"SKIRMISH_GAME_SPEED" envDefault:"normal"`
}

// DefaultSettings mirrors the environment defaults.
func DefaultSettings() Settings {
	return Settings{
		MapSize:    MapMedium,
		Difficulty: Medium,
		FogOfWar:   true,
		AICount:    1,
		GameSpeed:  Normal,
	}
}

// Validate reports the first out-of-range field.
func (s Settings) Validate() error {
	switch s.MapSize {
	case MapSmall, MapMedium, MapLarge:
	default:
		return fmt.Errorf("%w: map size %q", ErrInvalidSettings, s.MapSize)
	}
	switch s.Difficulty {
	case Easy, Medium, Hard:
	default:
		return fmt.Errorf("%w: difficulty %q", ErrInvalidSettings, s.Difficulty)
	}
	switch s.GameSpeed {
	case Slow, Normal, Fast:
	default:
		return fmt.Errorf("%w: game speed %q", ErrInvalidSettings, s.GameSpeed)
	}
	if s.AICount < 0 || s.AICount > MaxAI {
		return fmt.Errorf("%w: ai count %d not in [0,%d]", ErrInvalidSettings, s.AICount, MaxAI)
	}
	return nil
}

// Dimensions returns the map width and height.
func (s Settings) Dimensions() (int, int) {
	side := s.MapSize.Side()
	return side, side
}

// Players counts the human player plus AI opponents.
func (s Settings) Players() int { return s.AICount + 1 }

// TickInterval returns the simulation step for the chosen speed.
func (s Settings) TickInterval() time.Duration {
	switch s.GameSpeed {
	case Slow:
		return BaseTick * 2
	case Fast:
		return BaseTick / 2
	default:
		return BaseTick
	}
}

// Overrides replace individual generation thresholds. Unset fields keep the
// generator defaults.
type Overrides struct {
	WaterFraction        *float64 `env:"WATER_FRACTION"`
	MountainFraction     *float64 `env:"MOUNTAIN_FRACTION"`
	ForestFraction       *float64 `env:"FOREST_FRACTION"`
	ResourceDensity      *float64 `env:"RESOURCE_DENSITY"`
	MinLandRatio         *float64 `env:"MIN_LAND_RATIO"`
	MinReachableFraction *float64 `env:"MIN_REACHABLE_FRACTION"`
	MinResources         *int     `env:"MIN_RESOURCES"`
	MinStartSpacing      *int     `env:"MIN_START_SPACING"`
	MaxAttempts          *int     `env:"MAX_ATTEMPTS"`
}

// Apply writes every set override into cfg.
func (o Overrides) Apply(cfg *generate.Config) {
	setf := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	seti := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	setf(&cfg.WaterFraction, o.WaterFraction)
	setf(&cfg.MountainFraction, o.MountainFraction)
	setf(&cfg.ForestFraction, o.ForestFraction)
	setf(&cfg.ResourceDensity, o.ResourceDensity)
	setf(&cfg.MinLandRatio, o.MinLandRatio)
	setf(&cfg.MinReachableFraction, o.MinReachableFraction)
	seti(&cfg.MinResources, o.MinResources)
	seti(&cfg.MinStartSpacing, o.MinStartSpacing)
	seti(&cfg.MaxAttempts, o.MaxAttempts)
}

// Telemetry controls the OTLP trace exporter.
type Telemetry struct {
	Enabled  bool   `env:"SKIRMISH_OTEL_ENABLED" envDefault:"true"`
	Endpoint string `env:"SKIRMISH_OTEL_ENDPOINT"`
}

// Config is everything read from the environment at startup.
type Config struct {
	Settings   Settings
	Generation Overrides `envPrefix:"SKIRMISH_GEN_"`
	Telemetry  Telemetry
}

// Load parses and validates the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Settings.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
