package pathfind

import (
	"errors"
	"log/slog"
	"skirmish/internal/gamemap"
	"slices"

	"github.com/zyedidia/generic/mapset"
)

// DefaultMaxCacheEntries bounds the route cache. When it fills, the whole
// cache is dropped.
const DefaultMaxCacheEntries = 4096

type cacheKey struct {
	start, goal gamemap.Point
	profile     string
}

type cacheEntry struct {
	path []gamemap.Point
	err  error
}

// Stats counts cache activity since the engine was created.
type Stats struct {
	Hits          int
	Misses        int
	Invalidations int
}

// Engine serves route queries for one map, memoizing results. Every entry is
// tagged with the map's generation-version and occupancy epoch; when either
// moves on, the entire cache is discarded before the next lookup.
type Engine struct {
	// MaxCacheEntries overrides DefaultMaxCacheEntries when positive.
	MaxCacheEntries int

	m       *gamemap.Map
	cache   map[cacheKey]cacheEntry
	version uint64
	epoch   uint64
	stats   Stats
	logger  *slog.Logger
}

// NewEngine creates an Engine over m. A nil logger uses slog.Default().
func NewEngine(m *gamemap.Map, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{logger: logger}
	e.SetMap(m)
	e.stats = Stats{}
	return e
}

// SetMap swaps the map the engine serves and drops the cache.
func (e *Engine) SetMap(m *gamemap.Map) {
	e.m = m
	e.Invalidate()
}

// Map returns the map currently served.
func (e *Engine) Map() *gamemap.Map { return e.m }

// Invalidate drops every cached result.
func (e *Engine) Invalidate() {
	e.cache = make(map[cacheKey]cacheEntry)
	if e.m != nil {
		e.version = e.m.Version
		e.epoch = e.m.Epoch()
	}
	e.stats.Invalidations++
}

// sync discards the cache when the map has changed underneath it.
func (e *Engine) sync() {
	if e.m.Version != e.version || e.m.Epoch() != e.epoch {
		e.Invalidate()
	}
}

// FindPath returns the route from start to goal for profile, inclusive of
// both ends. See the package-level FindPath for failure semantics.
func (e *Engine) FindPath(start, goal gamemap.Point, profile Profile) ([]gamemap.Point, error) {
	if e.m == nil {
		return nil, ErrInvalidCoordinates
	}
	e.sync()
	key := cacheKey{start: start, goal: goal, profile: profile.key()}
	if hit, ok := e.cache[key]; ok {
		e.stats.Hits++
		return slices.Clone(hit.path), hit.err
	}
	e.stats.Misses++

	path, err := FindPath(e.m, start, goal, profile)
	if errors.Is(err, ErrInvalidCoordinates) {
		return nil, err
	}
	if errors.Is(err, ErrNoPath) {
		e.logger.Debug("no path", "start", start, "goal", goal, "profile", key.profile)
	}
	limit := e.MaxCacheEntries
	if limit <= 0 {
		limit = DefaultMaxCacheEntries
	}
	if len(e.cache) >= limit {
		e.Invalidate()
	}
	e.cache[key] = cacheEntry{path: path, err: err}
	return slices.Clone(path), err
}

// Reachable returns the set of tiles a unit at origin can reach. Results are
// not cached; callers that highlight move range once per order can afford it.
func (e *Engine) Reachable(origin gamemap.Point, adj Adjacency) (mapset.Set[gamemap.Point], error) {
	if e.m == nil {
		return mapset.Set[gamemap.Point]{}, ErrInvalidCoordinates
	}
	return Reachable(e.m, origin, adj)
}

// Stats returns cache counters.
func (e *Engine) Stats() Stats { return e.stats }

// CacheLen returns the number of cached routes.
func (e *Engine) CacheLen() int { return len(e.cache) }
