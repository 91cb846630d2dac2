package fog

import "skirmish/internal/gamemap"

// Tracker recomputes player visibility from vision sources each tick.
type Tracker struct {
	m       *gamemap.Map
	enabled bool
	lit     []bool
}

// NewTracker creates a tracker over m.
func NewTracker(m *gamemap.Map, enabled bool) *Tracker {
	t := &Tracker{enabled: enabled}
	t.SetMap(m)
	return t
}

// SetMap points the tracker at a replacement map. Grids must be Reset by
// their owner.
func (t *Tracker) SetMap(m *gamemap.Map) {
	t.m = m
	if m != nil {
		t.lit = make([]bool, m.Len())
	}
}

// Enabled reports whether fog of war is active.
func (t *Tracker) Enabled() bool { return t.enabled }

// Recompute updates g from sources and returns the tiles that changed.
// Tiles in sight become Visible; tiles that were Visible and are no longer in
// sight become Explored. Hidden is never written. With fog disabled this is a
// no-op.
func (t *Tracker) Recompute(g *Grid, sources []VisionSource) Diff {
	if !t.enabled || t.m == nil {
		return Diff{}
	}
	clear(t.lit)
	for _, src := range sources {
		castVision(t.m, src, t.lit)
	}

	var d Diff
	for i, seen := range t.lit {
		switch {
		case seen && g.cells[i] != Visible:
			g.cells[i] = Visible
			d.Revealed = append(d.Revealed, t.m.PointAt(i))
		case !seen && g.cells[i] == Visible:
			g.cells[i] = Explored
			d.Concealed = append(d.Concealed, t.m.PointAt(i))
		}
	}
	return d
}

// RevealAll forces every tile of g Visible and returns the tiles that changed.
func (t *Tracker) RevealAll(g *Grid) Diff {
	var d Diff
	for i, c := range g.cells {
		if c != Visible {
			g.cells[i] = Visible
			d.Revealed = append(d.Revealed, gamemap.Point{X: i % g.Width, Y: i / g.Width})
		}
	}
	return d
}

// SetEnabled switches fog of war on or off for every grid. Turning it off
// reveals the whole map and returns that diff once per grid; turning it on
// changes nothing until the next Recompute conceals what is out of sight.
func (t *Tracker) SetEnabled(grids []*Grid, enabled bool) []Diff {
	diffs := make([]Diff, len(grids))
	if t.enabled == enabled {
		return diffs
	}
	t.enabled = enabled
	if !enabled {
		for i, g := range grids {
			diffs[i] = t.RevealAll(g)
		}
	}
	return diffs
}
