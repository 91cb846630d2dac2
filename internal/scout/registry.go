// Package scout is a reference unit registry: each player fields a few scouts
// that wander toward unexplored ground, giving the match loop path orders to
// resolve and vision sources to feed the fog tracker.
package scout

import (
	"cmp"
	"log/slog"
	"math/rand"
	"skirmish/internal/component"
	"skirmish/internal/ecs"
	"skirmish/internal/fog"
	"skirmish/internal/gamemap"
	"skirmish/internal/match"
	"skirmish/internal/pathfind"
	"slices"

	"github.com/gdamore/tcell/v2"
	"github.com/zyedidia/generic/mapset"
)

// Defaults for New.
const (
	DefaultPerPlayer = 3
	DefaultRadius    = 5
	spawnRadius      = 3
)

// Glyphs and colors per player index.
var (
	playerGlyphs = []string{"🔵", "🔴", "🟢", "🟡", "🟣", "🟠", "⚪", "🟤"}
	playerColors = []tcell.Color{
		tcell.ColorBlue, tcell.ColorRed, tcell.ColorGreen, tcell.ColorYellow,
		tcell.ColorPurple, tcell.ColorOrange, tcell.ColorWhite, tcell.ColorBrown,
	}
)

// Scouts avoid forest when a clear route exists.
var scoutProfile = pathfind.Profile{
	Adjacency: pathfind.Eight,
	Modifiers: map[gamemap.Terrain]float64{gamemap.TerrainForest: 1.5},
}

// Board is the part of a match the registry drives. *match.Match implements it.
type Board interface {
	Reachable(origin gamemap.Point, adj pathfind.Adjacency) (mapset.Set[gamemap.Point], error)
	Visibility(player int) (*fog.Grid, error)
	Order(o match.Order) error
}

// Registry owns every unit on the map.
type Registry struct {
	World     *ecs.World
	PerPlayer int
	Radius    int
	Profile   pathfind.Profile

	m      *gamemap.Map
	rng    *rand.Rand
	logger *slog.Logger
}

// New creates an empty registry. A nil logger uses slog.Default().
func New(rng *rand.Rand, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		World:     ecs.NewWorld(),
		PerPlayer: DefaultPerPlayer,
		Radius:    DefaultRadius,
		Profile:   scoutProfile,
		rng:       rng,
		logger:    logger,
	}
}

// Spawn clears the world and places PerPlayer scouts around each start tile,
// marking their tiles occupied.
func (r *Registry) Spawn(m *gamemap.Map, players int) {
	r.World = ecs.NewWorld()
	r.m = m
	for p := 0; p < players && p < len(m.Starts); p++ {
		for _, pos := range spawnTiles(m, m.Starts[p], r.PerPlayer) {
			id := r.World.CreateEntity()
			r.World.Add(id, component.Position{X: pos.X, Y: pos.Y})
			r.World.Add(id, component.Owner{Player: p})
			r.World.Add(id, component.Vision{Radius: r.Radius})
			r.World.Add(id, component.Renderable{
				Glyph:       playerGlyphs[p%len(playerGlyphs)],
				FGColor:     playerColors[p%len(playerColors)],
				RenderOrder: 1,
			})
			m.SetOccupied(pos.X, pos.Y, true)
		}
		r.logger.Debug("scouts spawned", "player", p, "start", m.Starts[p])
	}
}

// spawnTiles returns up to n free tiles nearest start, nearest first.
func spawnTiles(m *gamemap.Map, start gamemap.Point, n int) []gamemap.Point {
	var free []gamemap.Point
	for y := start.Y - spawnRadius; y <= start.Y+spawnRadius; y++ {
		for x := start.X - spawnRadius; x <= start.X+spawnRadius; x++ {
			if m.IsPassable(x, y) {
				free = append(free, gamemap.Point{X: x, Y: y})
			}
		}
	}
	dist := func(p gamemap.Point) int { return max(abs(p.X-start.X), abs(p.Y-start.Y)) }
	slices.SortStableFunc(free, func(a, b gamemap.Point) int {
		return cmp.Compare(dist(a), dist(b))
	})
	return free[:min(n, len(free))]
}

// Plan gives every idle scout a new goal: a random reachable tile its owner
// has never seen, or any reachable tile once the reachable area is explored.
func (r *Registry) Plan(b Board) {
	for _, id := range r.World.Query(component.CPosition, component.COwner) {
		if r.World.Has(id, component.CRoute) {
			continue
		}
		pos, _ := ecs.Lookup[component.Position](r.World, id)
		owner, _ := ecs.Lookup[component.Owner](r.World, id)

		reach, err := b.Reachable(pos.Point(), r.Profile.Adjacency)
		if err != nil {
			r.logger.Debug("scout cannot plan", "unit", id, "error", err)
			continue
		}
		grid, _ := b.Visibility(owner.Player)
		goal, ok := r.pickGoal(pos.Point(), reach, grid)
		if !ok {
			continue
		}
		o := match.Order{Unit: uint64(id), Player: owner.Player, Start: pos.Point(), Goal: goal, Profile: r.Profile}
		if err := b.Order(o); err != nil {
			r.logger.Debug("scout order refused", "unit", id, "error", err)
			continue
		}
		r.World.Add(id, component.Route{Goal: goal, Pending: true})
	}
}

func (r *Registry) pickGoal(from gamemap.Point, reach mapset.Set[gamemap.Point], grid *fog.Grid) (gamemap.Point, bool) {
	var hidden, all []gamemap.Point
	reach.Each(func(p gamemap.Point) {
		if p == from {
			return
		}
		all = append(all, p)
		if grid != nil && grid.At(p.X, p.Y) == fog.Hidden {
			hidden = append(hidden, p)
		}
	})
	pool := hidden
	if len(pool) == 0 {
		pool = all
	}
	if len(pool) == 0 {
		return gamemap.Point{}, false
	}
	// Set iteration order is random; sort before drawing so the rng decides.
	slices.SortFunc(pool, func(a, b gamemap.Point) int {
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.X, b.X)
	})
	return pool[r.rng.Intn(len(pool))], true
}

// ApplyPaths installs this tick's routes and moves every routed scout one
// tile.
func (r *Registry) ApplyPaths(outcomes []match.PathOutcome) {
	for _, out := range outcomes {
		id := ecs.EntityID(out.Order.Unit)
		if !r.World.Alive(id) {
			continue
		}
		if out.Err != nil {
			r.World.Remove(id, component.CRoute)
			r.logger.Debug("scout route failed", "unit", id, "goal", out.Order.Goal, "error", out.Err)
			continue
		}
		r.World.Add(id, component.Route{Goal: out.Order.Goal, Path: out.Path, Next: 1})
	}
	for _, id := range r.World.Query(component.CPosition, component.CRoute) {
		r.advance(id)
	}
}

// VisionSources returns the sight of every scout owned by player.
func (r *Registry) VisionSources(player int) []fog.VisionSource {
	var out []fog.VisionSource
	for _, id := range r.World.Query(component.CPosition, component.COwner, component.CVision) {
		owner, _ := ecs.Lookup[component.Owner](r.World, id)
		if owner.Player != player {
			continue
		}
		pos, _ := ecs.Lookup[component.Position](r.World, id)
		vis, _ := ecs.Lookup[component.Vision](r.World, id)
		out = append(out, fog.VisionSource{Pos: pos.Point(), Radius: vis.Radius})
	}
	return out
}

// Units returns the number of live scouts.
func (r *Registry) Units() int { return r.World.Len() }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
