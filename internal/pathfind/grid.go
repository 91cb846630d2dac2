// Package pathfind answers route and reachability queries over a tile map.
package pathfind

import (
	"fmt"
	"math"
	"skirmish/internal/gamemap"
	"strings"
)

// Adjacency selects which neighbours a unit may step to.
type Adjacency uint8

const (
	Four  Adjacency = iota // orthogonal steps only
	Eight                  // orthogonal and diagonal steps
)

func (a Adjacency) String() string {
	if a == Eight {
		return "8"
	}
	return "4"
}

// Profile describes how a unit moves.
type Profile struct {
	Adjacency Adjacency
	// Modifiers scales the base cost of a terrain class. Missing or
	// non-positive entries count as 1; +Inf makes the terrain impassable for
	// this profile.
	Modifiers map[gamemap.Terrain]float64
}

// Infantry is the default four-direction profile with no modifiers.
var Infantry = Profile{Adjacency: Four}

func (p Profile) modifier(t gamemap.Terrain) float64 {
	m, ok := p.Modifiers[t]
	if !ok || m <= 0 || math.IsNaN(m) {
		return 1
	}
	return m
}

// key is a stable identity for cache lookups.
func (p Profile) key() string {
	var b strings.Builder
	b.WriteString(p.Adjacency.String())
	for _, t := range gamemap.Terrains {
		if m := p.modifier(t); m != 1 {
			fmt.Fprintf(&b, "|%d=%g", t, m)
		}
	}
	return b.String()
}

// minStep is the cheapest cost any passable step can have under p. It scales
// the heuristic so it never overestimates.
func (p Profile) minStep() float64 {
	best := math.Inf(1)
	for _, t := range gamemap.Terrains {
		if !t.Walkable() {
			continue
		}
		if c := t.BaseCost() * p.modifier(t); c < best {
			best = c
		}
	}
	if math.IsInf(best, 1) {
		return 1
	}
	return best
}

type neighbor struct {
	dx, dy   int
	diagonal bool
}

var neighborOffsets = [...]neighbor{
	{dx: 0, dy: -1},
	{dx: 1, dy: 0},
	{dx: 0, dy: 1},
	{dx: -1, dy: 0},
	{dx: 1, dy: -1, diagonal: true},
	{dx: 1, dy: 1, diagonal: true},
	{dx: -1, dy: 1, diagonal: true},
	{dx: -1, dy: -1, diagonal: true},
}

func (a Adjacency) offsets() []neighbor {
	if a == Eight {
		return neighborOffsets[:]
	}
	return neighborOffsets[:4]
}

// Grid is the navigation view of a map under one movement profile. It reads
// passability from the map on every call and stores nothing derived.
type Grid struct {
	m       *gamemap.Map
	profile Profile
}

// NewGrid wraps m for profile.
func NewGrid(m *gamemap.Map, profile Profile) Grid {
	return Grid{m: m, profile: profile}
}

// Cost returns the cost of stepping onto (x, y), +Inf when unusable.
func (g Grid) Cost(x, y int) float64 {
	if !g.m.InBounds(x, y) {
		return gamemap.Blocked
	}
	tile := g.m.At(x, y)
	c := tile.Cost()
	if math.IsInf(c, 1) {
		return c
	}
	return c * g.profile.modifier(tile.Terrain)
}

// Passable reports whether a unit with this profile may enter (x, y).
func (g Grid) Passable(x, y int) bool {
	return !math.IsInf(g.Cost(x, y), 1)
}

// canStep reports whether moving from (x, y) by n is allowed. Diagonal moves
// require both orthogonal neighbours to be passable so units never squeeze
// between two blocked corners.
func (g Grid) canStep(x, y int, n neighbor) bool {
	if !g.Passable(x+n.dx, y+n.dy) {
		return false
	}
	if !n.diagonal {
		return true
	}
	return g.Passable(x+n.dx, y) && g.Passable(x, y+n.dy)
}

func (g Grid) heuristic(a, b gamemap.Point) float64 {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if g.profile.Adjacency == Eight {
		return float64(max(dx, dy)) * g.profile.minStep()
	}
	return float64(dx+dy) * g.profile.minStep()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
