// Package component defines the data attached to units in the ecs world.
package component

import (
	"skirmish/internal/ecs"
	"skirmish/internal/gamemap"
)

const (
	CPosition ecs.ComponentType = iota + 1
	COwner
	CVision
	CRoute
	CRenderable
)

// Position is the tile a unit stands on.
type Position struct {
	X, Y int
}

func (Position) Type() ecs.ComponentType { return CPosition }

// Point returns the position as a map coordinate.
func (p Position) Point() gamemap.Point { return gamemap.Point{X: p.X, Y: p.Y} }

// Owner is the player controlling a unit.
type Owner struct {
	Player int
}

func (Owner) Type() ecs.ComponentType { return COwner }

// Vision makes a unit a sight source for its owner.
type Vision struct {
	Radius int
}

func (Vision) Type() ecs.ComponentType { return CVision }
