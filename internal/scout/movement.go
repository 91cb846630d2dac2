package scout

import (
	"skirmish/internal/component"
	"skirmish/internal/ecs"
)

// maxStall is how many ticks a scout waits on a blocked tile before dropping
// its route and planning again.
const maxStall = 3

// MoveResult describes the outcome of one advance.
type MoveResult uint8

const (
	MoveOK      MoveResult = iota // position updated
	MoveBlocked                   // next tile occupied or impassable
	MoveArrived                   // route finished, nothing to do
	MoveWaiting                   // path not resolved yet
)

// advance moves entity id one tile along its route, keeping the map's
// occupancy flags in step with the move.
func (r *Registry) advance(id ecs.EntityID) MoveResult {
	route, ok := ecs.Lookup[component.Route](r.World, id)
	if !ok || route.Pending {
		return MoveWaiting
	}
	if route.Done() {
		r.World.Remove(id, component.CRoute)
		return MoveArrived
	}
	pos, _ := ecs.Lookup[component.Position](r.World, id)
	next := route.Path[route.Next]

	if !r.m.IsPassable(next.X, next.Y) {
		route.Stalled++
		if route.Stalled >= maxStall {
			r.World.Remove(id, component.CRoute)
		} else {
			r.World.Add(id, route)
		}
		return MoveBlocked
	}

	r.m.SetOccupied(pos.X, pos.Y, false)
	r.m.SetOccupied(next.X, next.Y, true)
	r.World.Add(id, component.Position{X: next.X, Y: next.Y})
	route.Next++
	route.Stalled = 0
	if route.Done() {
		r.World.Remove(id, component.CRoute)
	} else {
		r.World.Add(id, route)
	}
	return MoveOK
}
