package generate

import (
	"errors"
	"fmt"
	"skirmish/internal/gamemap"
	"skirmish/internal/pathfind"
)

// Rejection reasons reported by Validate.
var (
	ErrTooLittleLand    = errors.New("land ratio below minimum")
	ErrTooFewResources  = errors.New("too few resource tiles")
	ErrMissingStarts    = errors.New("not enough start positions")
	ErrDisconnected     = errors.New("start positions not connected")
	ErrStartUnreachable = errors.New("start reaches too little land")
)

// Validate is the default Validator. It checks the land ratio, the resource
// count, and that every start is passable, reaches MinReachableFraction of
// all passable tiles, and can reach every other start.
func Validate(m *gamemap.Map, cfg *Config) error {
	total := m.Len()
	if total == 0 {
		return ErrTooLittleLand
	}
	land := total - m.Count(gamemap.TerrainWater)
	if ratio := float64(land) / float64(total); ratio < cfg.MinLandRatio {
		return fmt.Errorf("%w: %.2f < %.2f", ErrTooLittleLand, ratio, cfg.MinLandRatio)
	}
	if res := m.Count(gamemap.TerrainResource); res < cfg.MinResources {
		return fmt.Errorf("%w: %d < %d", ErrTooFewResources, res, cfg.MinResources)
	}
	if len(m.Starts) < cfg.Players {
		return fmt.Errorf("%w: %d < %d", ErrMissingStarts, len(m.Starts), cfg.Players)
	}

	passable := 0
	for i := 0; i < total; i++ {
		p := m.PointAt(i)
		if m.IsPassable(p.X, p.Y) {
			passable++
		}
	}
	for i, s := range m.Starts {
		if !m.IsPassable(s.X, s.Y) {
			return fmt.Errorf("%w: start %v is impassable", ErrDisconnected, s)
		}
		reach, err := pathfind.Reachable(m, s, pathfind.Four)
		if err != nil {
			return fmt.Errorf("start %v: %w", s, err)
		}
		if frac := float64(reach.Size()) / float64(passable); frac < cfg.MinReachableFraction {
			return fmt.Errorf("%w: %v reaches %.2f < %.2f", ErrStartUnreachable, s, frac, cfg.MinReachableFraction)
		}
		for _, other := range m.Starts[i+1:] {
			if !reach.Has(other) {
				return fmt.Errorf("%w: %v cannot reach %v", ErrDisconnected, s, other)
			}
		}
	}
	return nil
}
