package fog

import (
	"math/rand"
	"skirmish/internal/gamemap"
	"testing"
)

// openMap creates a fully open (all plains) map for visibility tests.
func openMap(width, height int) *gamemap.Map {
	m := gamemap.New(width, height, 1)
	for y := range height {
		for x := range width {
			m.SetTerrain(x, y, gamemap.TerrainPlains)
		}
	}
	return m
}

func source(x, y, r int) VisionSource {
	return VisionSource{Pos: gamemap.Point{X: x, Y: y}, Radius: r}
}

func withinRadius(x, y, cx, cy, r int) bool {
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}

func TestVisionCoverage(t *testing.T) {
	m := openMap(20, 20)
	tr := NewTracker(m, true)
	g := NewGrid(20, 20)

	d := tr.Recompute(g, []VisionSource{source(5, 5, 3)})

	for y := range 20 {
		for x := range 20 {
			want := Hidden
			if withinRadius(x, y, 5, 5, 3) {
				want = Visible
			}
			if got := g.At(x, y); got != want {
				t.Errorf("At(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
	if len(d.Revealed) != 29 || len(d.Concealed) != 0 {
		t.Errorf("diff = %d revealed %d concealed, want 29/0", len(d.Revealed), len(d.Concealed))
	}

	d = tr.Recompute(g, nil)
	for y := range 20 {
		for x := range 20 {
			want := Hidden
			if withinRadius(x, y, 5, 5, 3) {
				want = Explored
			}
			if got := g.At(x, y); got != want {
				t.Errorf("after removal At(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
	if len(d.Concealed) != 29 || len(d.Revealed) != 0 {
		t.Errorf("diff = %d revealed %d concealed, want 0/29", len(d.Revealed), len(d.Concealed))
	}
}

func TestRecomputeReportsOnlyChanges(t *testing.T) {
	m := openMap(10, 10)
	tr := NewTracker(m, true)
	g := NewGrid(10, 10)
	tr.Recompute(g, []VisionSource{source(4, 4, 2)})

	if d := tr.Recompute(g, []VisionSource{source(4, 4, 2)}); !d.Empty() {
		t.Fatalf("unchanged sources produced diff %+v", d)
	}

	d := tr.Recompute(g, []VisionSource{source(5, 4, 2)})
	// Shifting right reveals only on the leading edge and conceals only on the trailing one.
	for _, p := range d.Revealed {
		if p.X < 5 {
			t.Errorf("unexpected reveal %v", p)
		}
	}
	for _, p := range d.Concealed {
		if p.X > 4 {
			t.Errorf("unexpected conceal %v", p)
		}
	}
	if len(d.Revealed) == 0 || len(d.Revealed) != len(d.Concealed) {
		t.Errorf("shift diff = %d/%d, want equal non-zero", len(d.Revealed), len(d.Concealed))
	}
}

func TestMountainBlocksSight(t *testing.T) {
	m := openMap(20, 20)
	m.SetTerrain(10, 8, gamemap.TerrainMountain)
	tr := NewTracker(m, true)
	g := NewGrid(20, 20)

	tr.Recompute(g, []VisionSource{source(10, 10, 8)})

	if g.At(10, 8) != Visible {
		t.Error("the mountain itself should be visible")
	}
	if g.At(10, 7) != Hidden {
		t.Error("tile behind the mountain should stay hidden")
	}
	if g.At(10, 10) != Visible {
		t.Error("the source tile must always be visible")
	}
}

func TestSourceOnMountainSeesItself(t *testing.T) {
	m := openMap(5, 5)
	m.SetTerrain(2, 2, gamemap.TerrainMountain)
	tr := NewTracker(m, true)
	g := NewGrid(5, 5)
	tr.Recompute(g, []VisionSource{source(2, 2, 0)})
	if g.At(2, 2) != Visible || g.Count(Visible) != 1 {
		t.Fatalf("radius-0 source should see exactly its own tile, saw %d", g.Count(Visible))
	}
}

func TestSourcesOutsideMapIgnored(t *testing.T) {
	m := openMap(5, 5)
	tr := NewTracker(m, true)
	g := NewGrid(5, 5)
	if d := tr.Recompute(g, []VisionSource{source(-3, 2, 2)}); !d.Empty() {
		t.Fatalf("off-map source revealed %v", d.Revealed)
	}
}

// TestNeverReturnsToHidden drives random sources over a map with mountains and
// checks no tile ever goes back to Hidden after being seen.
func TestNeverReturnsToHidden(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	m := openMap(24, 24)
	for i := 0; i < 60; i++ {
		m.SetTerrain(rng.Intn(24), rng.Intn(24), gamemap.TerrainMountain)
	}
	tr := NewTracker(m, true)
	g := NewGrid(24, 24)
	seen := make([]bool, 24*24)

	for tick := 0; tick < 200; tick++ {
		var sources []VisionSource
		for range rng.Intn(4) {
			sources = append(sources, source(rng.Intn(24), rng.Intn(24), 1+rng.Intn(6)))
		}
		tr.Recompute(g, sources)
		for y := range 24 {
			for x := range 24 {
				s := g.At(x, y)
				i := y*24 + x
				if seen[i] && s == Hidden {
					t.Fatalf("tick %d: (%d,%d) regressed to hidden", tick, x, y)
				}
				if s != Hidden {
					seen[i] = true
				}
			}
		}
	}
}

func TestDisabledFogRevealsOnce(t *testing.T) {
	m := openMap(6, 4)
	tr := NewTracker(m, true)
	grids := []*Grid{NewGrid(6, 4), NewGrid(6, 4)}
	tr.Recompute(grids[0], []VisionSource{source(0, 0, 1)})

	diffs := tr.SetEnabled(grids, false)
	if got := len(diffs[0].Revealed); got != 24-3 {
		t.Errorf("player 0 reveal = %d, want 21", got)
	}
	if got := len(diffs[1].Revealed); got != 24 {
		t.Errorf("player 1 reveal = %d, want 24", got)
	}
	for _, g := range grids {
		if g.Count(Visible) != 24 {
			t.Fatalf("disabled fog left %d tiles not visible", 24-g.Count(Visible))
		}
	}
	if d := tr.Recompute(grids[0], nil); !d.Empty() {
		t.Error("Recompute should be a no-op while fog is disabled")
	}
	if again := tr.SetEnabled(grids, false); !again[0].Empty() {
		t.Error("repeated disable should not report another diff")
	}

	tr.SetEnabled(grids, true)
	d := tr.Recompute(grids[1], []VisionSource{source(0, 0, 1)})
	if len(d.Concealed) != 21 {
		t.Errorf("re-enable conceal = %d, want 21", len(d.Concealed))
	}
	if grids[1].Count(Hidden) != 0 {
		t.Error("re-enabling fog must not hide explored tiles")
	}
}

func TestGridReset(t *testing.T) {
	g := NewGrid(3, 3)
	m := openMap(3, 3)
	NewTracker(m, true).Recompute(g, []VisionSource{source(1, 1, 1)})
	g.Reset(4, 2)
	if g.Width != 4 || g.Height != 2 || g.Count(Hidden) != 8 {
		t.Fatalf("Reset gave %dx%d with %d hidden", g.Width, g.Height, g.Count(Hidden))
	}
}
