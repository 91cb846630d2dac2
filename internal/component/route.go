package component

import (
	"skirmish/internal/ecs"
	"skirmish/internal/gamemap"
)

// Route is a unit's current movement plan. While Pending the order has been
// submitted and no path has come back yet.
type Route struct {
	Goal    gamemap.Point
	Path    []gamemap.Point
	Next    int // index into Path of the next tile to enter
	Pending bool
	Stalled int // consecutive ticks the next tile was blocked
}

func (Route) Type() ecs.ComponentType { return CRoute }

// Done reports whether every step of the path has been taken.
func (r Route) Done() bool { return !r.Pending && r.Next >= len(r.Path) }
