// Package match owns one skirmish: the accepted map, the pathfinding engine,
// and each player's fog of war. A Match is driven by a single tick loop and
// is not safe for concurrent use; hosts serialize access with their own lock.
package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"skirmish/internal/config"
	"skirmish/internal/fog"
	"skirmish/internal/gamemap"
	"skirmish/internal/generate"
	"skirmish/internal/pathfind"
	"time"

	"github.com/zyedidia/generic/mapset"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("skirmish/internal/match")

// Order asks for a route for one unit. Start is normally the unit's own tile,
// which may be occupied by that unit.
type Order struct {
	Unit    uint64
	Player  int
	Start   gamemap.Point
	Goal    gamemap.Point
	Profile pathfind.Profile
}

// PathOutcome pairs an order with its route or failure.
type PathOutcome struct {
	Order Order
	Path  []gamemap.Point
	Err   error
}

// Registry is the unit store the match consults every tick.
type Registry interface {
	// VisionSources snapshots the sight providers owned by player.
	VisionSources(player int) []fog.VisionSource
	// ApplyPaths receives this tick's route results in submission order,
	// possibly none, and then moves units. It is called once per playing tick.
	ApplyPaths(outcomes []PathOutcome)
}

// Spawner is implemented by registries that place units when a new map is
// accepted.
type Spawner interface {
	Spawn(m *gamemap.Map, players int)
}

// Report summarizes one tick.
type Report struct {
	Tick  uint64
	State State
	// Outcome is set on ticks that processed a StartMatch.
	Outcome *Outcome
	// Rejected lists requests that did not apply to the state they met.
	Rejected []error
	Failures []PathOutcome
	// Diffs holds one visibility diff per player while playing.
	Diffs []fog.Diff
}

// Options configures a Match.
type Options struct {
	Logger *slog.Logger
	// Overrides replace individual generation thresholds.
	Overrides config.Overrides
	// Validator replaces generate.Validate.
	Validator generate.Validator
	// Seeder picks the seed when Settings.Seed is 0.
	Seeder func() int64
	// OnOutcome, when set, receives every generation outcome.
	OnOutcome func(Outcome)
}

// Match is the world context for one skirmish.
type Match struct {
	opts   Options
	logger *slog.Logger

	state    State
	phase    Phase
	settings config.Settings
	outcome  Outcome

	m       *gamemap.Map
	version uint64
	engine  *pathfind.Engine
	tracker *fog.Tracker
	grids   []*fog.Grid

	pending []Request
	orders  []Order
	tick    uint64
}

// New creates a Match in the menu state.
func New(opts Options) *Match {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Seeder == nil {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		opts.Seeder = rng.Int63
	}
	return &Match{
		opts:     opts,
		logger:   opts.Logger,
		settings: config.DefaultSettings(),
		engine:   pathfind.NewEngine(nil, opts.Logger),
		tracker:  fog.NewTracker(nil, true),
	}
}

func (mt *Match) State() State              { return mt.state }
func (mt *Match) Phase() Phase              { return mt.phase }
func (mt *Match) Settings() config.Settings { return mt.settings }

// LastOutcome returns the most recent generation outcome.
func (mt *Match) LastOutcome() Outcome { return mt.outcome }

// Stats returns the pathfinding cache counters.
func (mt *Match) Stats() pathfind.Stats { return mt.engine.Stats() }

// Submit queues a transition for the next tick.
func (mt *Match) Submit(r Request) {
	mt.pending = append(mt.pending, r)
}

// Map returns the accepted map.
func (mt *Match) Map() (*gamemap.Map, error) {
	if mt.phase != PhaseReady {
		return nil, ErrNotReady
	}
	return mt.m, nil
}

// Visibility returns player's visibility grid.
func (mt *Match) Visibility(player int) (*fog.Grid, error) {
	if mt.phase != PhaseReady {
		return nil, ErrNotReady
	}
	if player < 0 || player >= len(mt.grids) {
		return nil, fmt.Errorf("match: unknown player %d", player)
	}
	return mt.grids[player], nil
}

// Players returns the number of players in the current match.
func (mt *Match) Players() int { return len(mt.grids) }

// FindPath answers a route query immediately.
func (mt *Match) FindPath(start, goal gamemap.Point, profile pathfind.Profile) ([]gamemap.Point, error) {
	if mt.phase != PhaseReady {
		return nil, ErrNotReady
	}
	return mt.engine.FindPath(start, goal, profile)
}

// Reachable returns the tiles reachable from origin.
func (mt *Match) Reachable(origin gamemap.Point, adj pathfind.Adjacency) (mapset.Set[gamemap.Point], error) {
	if mt.phase != PhaseReady {
		return mapset.Set[gamemap.Point]{}, ErrNotReady
	}
	return mt.engine.Reachable(origin, adj)
}

// Order queues a route request for the next tick.
func (mt *Match) Order(o Order) error {
	if mt.phase != PhaseReady {
		return ErrNotReady
	}
	if !mt.m.Contains(o.Start) || !mt.m.Contains(o.Goal) {
		return fmt.Errorf("order for unit %d: %w", o.Unit, pathfind.ErrInvalidCoordinates)
	}
	mt.orders = append(mt.orders, o)
	return nil
}

// SetOccupied marks p as blocked or free. Cached routes are invalidated
// before the next query.
func (mt *Match) SetOccupied(p gamemap.Point, occupied bool) error {
	if mt.phase != PhaseReady {
		return ErrNotReady
	}
	if !mt.m.Contains(p) {
		return pathfind.ErrInvalidCoordinates
	}
	mt.m.SetOccupied(p.X, p.Y, occupied)
	return nil
}

// Tick applies queued transitions, then while playing resolves queued
// orders and recomputes each player's fog.
func (mt *Match) Tick(ctx context.Context, reg Registry) Report {
	mt.tick++
	rep := Report{Tick: mt.tick}

	pending := mt.pending
	mt.pending = nil
	for _, r := range pending {
		mt.apply(ctx, r, reg, &rep)
	}

	rep.State = mt.state
	if mt.state != StatePlaying {
		return rep
	}
	if rep.Diffs == nil {
		rep.Diffs = make([]fog.Diff, len(mt.grids))
	}

	outcomes := make([]PathOutcome, 0, len(mt.orders))
	for _, o := range mt.orders {
		path, err := mt.engine.FindPath(o.Start, o.Goal, o.Profile)
		out := PathOutcome{Order: o, Path: path, Err: err}
		if err != nil {
			rep.Failures = append(rep.Failures, out)
		}
		outcomes = append(outcomes, out)
	}
	mt.orders = mt.orders[:0]
	if reg != nil {
		reg.ApplyPaths(outcomes)
	}

	for p, g := range mt.grids {
		var sources []fog.VisionSource
		if reg != nil {
			sources = reg.VisionSources(p)
		}
		d := mt.tracker.Recompute(g, sources)
		rep.Diffs[p].Revealed = append(rep.Diffs[p].Revealed, d.Revealed...)
		rep.Diffs[p].Concealed = append(rep.Diffs[p].Concealed, d.Concealed...)
	}
	return rep
}

func (mt *Match) apply(ctx context.Context, r Request, reg Registry, rep *Report) {
	switch r := r.(type) {
	case StartMatch:
		if mt.state == StateInitializing {
			mt.reject(rep, r)
			return
		}
		out := mt.start(ctx, r.Settings, reg)
		rep.Outcome = &out
		rep.Diffs = nil
	case ReturnToMenu:
		if mt.state == StateMenu {
			mt.reject(rep, r)
			return
		}
		mt.clear()
		mt.state = StateMenu
		rep.Diffs = nil
	case SetFogOfWar:
		mt.settings.FogOfWar = r.Enabled
		diffs := mt.tracker.SetEnabled(mt.grids, r.Enabled)
		if mt.state == StatePlaying {
			rep.Diffs = diffs
		}
	}
}

func (mt *Match) reject(rep *Report, r Request) {
	err := fmt.Errorf("%w: %T in state %s", ErrInvalidTransition, r, mt.state)
	mt.logger.Warn("request rejected", "error", err)
	rep.Rejected = append(rep.Rejected, err)
}

func (mt *Match) clear() {
	mt.m = nil
	mt.phase = PhaseInit
	mt.grids = nil
	mt.orders = nil
	mt.engine.SetMap(nil)
	mt.tracker.SetMap(nil)
}

// start runs generation for s and installs the result. On failure the match
// returns to the menu with no map.
func (mt *Match) start(ctx context.Context, s config.Settings, reg Registry) Outcome {
	mt.clear()
	mt.state = StateInitializing
	mt.settings = s

	seed := s.Seed
	if seed == 0 {
		seed = mt.opts.Seeder()
	}
	width, height := s.Dimensions()
	out := Outcome{
		Timestamp:  time.Now().UTC(),
		Seed:       seed,
		Width:      width,
		Height:     height,
		Players:    s.Players(),
		Difficulty: string(s.Difficulty),
	}

	ctx, span := tracer.Start(ctx, "match.Start", trace.WithAttributes(
		attribute.Int64("seed", seed),
		attribute.String("map_size", string(s.MapSize)),
		attribute.String("difficulty", string(s.Difficulty)),
		attribute.Int("players", s.Players()),
	))
	defer span.End()

	res, err := mt.generate(ctx, s, seed)
	if err != nil {
		mt.clear()
		mt.state = StateMenu
		out.Message = MsgFailed
		out.Reason = err.Error()
		var gerr *generate.GenerationError
		if errors.As(err, &gerr) {
			out.Attempts = gerr.Attempts
		}
		span.RecordError(err)
		mt.logger.Warn("map generation failed", "seed", seed, "error", err)
		return mt.finish(out)
	}

	mt.version++
	res.Map.Version = mt.version
	mt.m = res.Map
	mt.engine.SetMap(res.Map)
	mt.tracker.SetMap(res.Map)
	mt.tracker.SetEnabled(nil, s.FogOfWar)
	mt.grids = make([]*fog.Grid, s.Players())
	for i := range mt.grids {
		mt.grids[i] = fog.NewGrid(width, height)
		if !s.FogOfWar {
			mt.tracker.RevealAll(mt.grids[i])
		}
	}
	mt.phase = PhaseReady
	mt.state = StatePlaying
	if sp, ok := reg.(Spawner); ok {
		sp.Spawn(res.Map, s.Players())
	}

	out.OK = true
	out.Message = MsgGenerated
	out.Seed = res.Seed
	out.Attempts = res.Attempts
	mt.logger.Info("map ready", "seed", res.Seed, "attempts", res.Attempts, "version", mt.version)
	return mt.finish(out)
}

func (mt *Match) generate(ctx context.Context, s config.Settings, seed int64) (generate.Result, error) {
	if err := s.Validate(); err != nil {
		return generate.Result{}, err
	}
	cfg := generationConfig(s, mt.opts.Overrides)
	cfg.Logger = mt.logger
	cfg.Validator = mt.opts.Validator
	cfg.OnStage = func(stage generate.Stage, _ int) {
		switch stage {
		case generate.StageGenerate:
			mt.phase = PhaseGenerate
		case generate.StageValidate:
			mt.phase = PhaseValidate
		}
	}
	width, height := s.Dimensions()
	return generate.Generate(ctx, seed, width, height, cfg)
}

func (mt *Match) finish(out Outcome) Outcome {
	mt.outcome = out
	if mt.opts.OnOutcome != nil {
		mt.opts.OnOutcome(out)
	}
	return out
}
