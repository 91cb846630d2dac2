package match

import (
	"skirmish/internal/config"
	"skirmish/internal/generate"
)

// difficultyTable sets resource scarcity per difficulty.
var difficultyTable = map[config.Difficulty]struct {
	density   float64
	perPlayer int
}{
	config.Easy:   {density: 0.2, perPlayer: 4},
	config.Medium: {density: 0.15, perPlayer: 3},
	config.Hard:   {density: 0.1, perPlayer: 2},
}

// generationConfig builds a generate.Config for the given settings.
// Environment overrides win over the derived values.
func generationConfig(s config.Settings, o config.Overrides) generate.Config {
	cfg := generate.DefaultConfig()
	players := s.Players()
	side, _ := s.Dimensions()

	cfg.Players = players
	cfg.MinStartSpacing = max(4, side/(players+2))
	if d, ok := difficultyTable[s.Difficulty]; ok {
		cfg.ResourceDensity = d.density
		cfg.MinResources = d.perPlayer * players
	}
	o.Apply(&cfg)
	return cfg
}
