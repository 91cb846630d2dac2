package pathfind

import (
	"errors"
	"skirmish/internal/gamemap"
	"slices"
	"testing"
)

func TestEngineCachesResults(t *testing.T) {
	m := openMap(8, 8)
	e := NewEngine(m, nil)

	first, err := e.FindPath(pt(0, 0), pt(7, 7), Infantry)
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.FindPath(pt(0, 0), pt(7, 7), Infantry)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(first, second) {
		t.Fatalf("cached path %v differs from %v", second, first)
	}
	if s := e.Stats(); s.Hits != 1 || s.Misses != 1 {
		t.Fatalf("stats = %+v, want 1 hit 1 miss", s)
	}
}

func TestEngineReturnsCopies(t *testing.T) {
	m := openMap(4, 1)
	e := NewEngine(m, nil)
	path, _ := e.FindPath(pt(0, 0), pt(3, 0), Infantry)
	path[1] = pt(9, 9)
	again, _ := e.FindPath(pt(0, 0), pt(3, 0), Infantry)
	if again[1] != pt(1, 0) {
		t.Fatalf("mutating a returned path leaked into the cache: %v", again)
	}
}

// TestEngineInvalidatesOnOccupancy blocks a corridor after a route was cached.
func TestEngineInvalidatesOnOccupancy(t *testing.T) {
	m := openMap(5, 1)
	m.Seal()
	e := NewEngine(m, nil)
	if _, err := e.FindPath(pt(0, 0), pt(4, 0), Infantry); err != nil {
		t.Fatal(err)
	}

	m.SetOccupied(2, 0, true)
	if _, err := e.FindPath(pt(0, 0), pt(4, 0), Infantry); !errors.Is(err, ErrNoPath) {
		t.Fatalf("after blocking, err = %v, want ErrNoPath", err)
	}
	if e.Stats().Invalidations != 1 {
		t.Errorf("Invalidations = %d, want 1", e.Stats().Invalidations)
	}

	m.SetOccupied(2, 0, false)
	if _, err := e.FindPath(pt(0, 0), pt(4, 0), Infantry); err != nil {
		t.Fatalf("after clearing, err = %v", err)
	}
}

func TestEngineInvalidatesOnVersion(t *testing.T) {
	m := openMap(3, 1)
	e := NewEngine(m, nil)
	e.FindPath(pt(0, 0), pt(2, 0), Infantry)
	if e.CacheLen() != 1 {
		t.Fatalf("CacheLen = %d, want 1", e.CacheLen())
	}
	m.Version++
	e.FindPath(pt(0, 0), pt(1, 0), Infantry)
	if e.CacheLen() != 1 {
		t.Fatalf("stale entries survived a version change: CacheLen = %d", e.CacheLen())
	}
}

func TestEngineCachesFailures(t *testing.T) {
	m := openMap(3, 1)
	m.SetTerrain(1, 0, gamemap.TerrainWater)
	e := NewEngine(m, nil)
	for range 2 {
		if _, err := e.FindPath(pt(0, 0), pt(2, 0), Infantry); !errors.Is(err, ErrNoPath) {
			t.Fatalf("err = %v, want ErrNoPath", err)
		}
	}
	if e.Stats().Hits != 1 {
		t.Errorf("failed lookup should be served from cache, stats = %+v", e.Stats())
	}
}

func TestEngineCacheBound(t *testing.T) {
	m := openMap(10, 1)
	e := NewEngine(m, nil)
	e.MaxCacheEntries = 3
	for x := 1; x < 10; x++ {
		e.FindPath(pt(0, 0), pt(x, 0), Infantry)
		if e.CacheLen() > 3 {
			t.Fatalf("cache grew to %d entries", e.CacheLen())
		}
	}
}

func TestEngineInvalidCoordinatesNotCached(t *testing.T) {
	m := openMap(2, 2)
	e := NewEngine(m, nil)
	if _, err := e.FindPath(pt(0, 0), pt(5, 5), Infantry); !errors.Is(err, ErrInvalidCoordinates) {
		t.Fatalf("err = %v", err)
	}
	if e.CacheLen() != 0 {
		t.Errorf("CacheLen = %d, want 0", e.CacheLen())
	}
}

func TestEngineReachableMatchesFlood(t *testing.T) {
	m := openMap(4, 4)
	m.SetTerrain(2, 0, gamemap.TerrainWater)
	e := NewEngine(m, nil)
	a, err := e.Reachable(pt(0, 0), Four)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Reachable(m, pt(0, 0), Four)
	if a.Size() != b.Size() || a.Size() != 15 {
		t.Fatalf("sizes %d and %d, want 15", a.Size(), b.Size())
	}
}
