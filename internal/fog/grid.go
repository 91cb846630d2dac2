// Package fog tracks what each player can currently see and has seen before.
package fog

import "skirmish/internal/gamemap"

// State is the visibility of one tile for one player.
type State uint8

const (
	Hidden   State = iota // never seen
	Explored              // seen before, not now
	Visible               // currently seen
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Explored:
		return "explored"
	case Visible:
		return "visible"
	}
	return "unknown"
}

// Grid is one player's visibility, parallel to the map. Only the Tracker
// writes to it.
type Grid struct {
	Width, Height int
	cells         []State
}

// NewGrid creates an all-Hidden grid.
func NewGrid(width, height int) *Grid {
	return &Grid{Width: width, Height: height, cells: make([]State, width*height)}
}

// At returns the state at (x, y). Out of bounds reads as Hidden.
func (g *Grid) At(x, y int) State {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return Hidden
	}
	return g.cells[y*g.Width+x]
}

// Reset resizes the grid and returns every tile to Hidden. It is the only way
// back to Hidden and is used when the map is replaced.
func (g *Grid) Reset(width, height int) {
	g.Width, g.Height = width, height
	g.cells = make([]State, width*height)
}

// Count returns the number of tiles in state s.
func (g *Grid) Count(s State) int {
	n := 0
	for _, c := range g.cells {
		if c == s {
			n++
		}
	}
	return n
}

// Diff lists the tiles whose state changed in one update, in row-major order.
type Diff struct {
	Revealed  []gamemap.Point // now Visible
	Concealed []gamemap.Point // Visible → Explored
}

// Empty reports whether nothing changed.
func (d Diff) Empty() bool { return len(d.Revealed) == 0 && len(d.Concealed) == 0 }

// VisionSource is a unit or building snapshot contributing sight.
type VisionSource struct {
	Pos    gamemap.Point
	Radius int
}
