package gamemap

import "fmt"

// Point is an integer tile coordinate.
type Point struct {
	X, Y int
}

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Add returns p offset by (dx, dy).
func (p Point) Add(dx, dy int) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// Map is the tile grid for one match. Tiles are stored row-major.
//
// Terrain may only be written before Seal; afterwards the only mutation is
// SetOccupied, which advances Epoch so derived caches can detect the change.
type Map struct {
	Width, Height int
	Seed          int64
	// Version is the generation-version stamped by the owner on acceptance.
	Version uint64
	// Starts holds the designated player start tiles.
	Starts []Point

	tiles  []Tile
	epoch  uint64
	sealed bool
}

// New creates a Map filled with water.
func New(width, height int, seed int64) *Map {
	return &Map{
		Width:  width,
		Height: height,
		Seed:   seed,
		tiles:  make([]Tile, width*height),
	}
}

// InBounds reports whether (x, y) is within the map boundaries.
func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// Contains reports whether p is within the map boundaries.
func (m *Map) Contains(p Point) bool { return m.InBounds(p.X, p.Y) }

// Index returns the row-major index of (x, y). The caller checks bounds.
func (m *Map) Index(x, y int) int { return y*m.Width + x }

// PointAt is the inverse of Index.
func (m *Map) PointAt(i int) Point { return Point{X: i % m.Width, Y: i / m.Width} }

// Len returns the number of tiles.
func (m *Map) Len() int { return len(m.tiles) }

// At returns the tile at (x, y). Panics if out of bounds.
func (m *Map) At(x, y int) Tile {
	return m.tiles[m.Index(x, y)]
}

// SetTerrain writes the terrain at (x, y). Panics once the map is sealed.
func (m *Map) SetTerrain(x, y int, t Terrain) {
	if m.sealed {
		panic("gamemap: terrain written after seal")
	}
	m.tiles[m.Index(x, y)].Terrain = t
}

// Seal freezes terrain.
func (m *Map) Seal() { m.sealed = true }

// Sealed reports whether terrain is frozen.
func (m *Map) Sealed() bool { return m.sealed }

// SetOccupied sets the dynamic occupancy flag and reports whether it changed.
// Any change advances the epoch.
func (m *Map) SetOccupied(x, y int, occupied bool) bool {
	t := &m.tiles[m.Index(x, y)]
	if t.Occupied == occupied {
		return false
	}
	t.Occupied = occupied
	m.epoch++
	return true
}

// Epoch counts occupancy changes since the map was created.
func (m *Map) Epoch() uint64 { return m.epoch }

// IsPassable returns true when (x, y) is in bounds and passable.
func (m *Map) IsPassable(x, y int) bool {
	if !m.InBounds(x, y) {
		return false
	}
	return m.tiles[m.Index(x, y)].Passable()
}

// IsOpaque returns true when (x, y) blocks sight. Out of bounds is opaque.
func (m *Map) IsOpaque(x, y int) bool {
	if !m.InBounds(x, y) {
		return true
	}
	return m.tiles[m.Index(x, y)].Terrain.Opaque()
}

// Count returns the number of tiles with terrain t.
func (m *Map) Count(t Terrain) int {
	n := 0
	for _, tile := range m.tiles {
		if tile.Terrain == t {
			n++
		}
	}
	return n
}

// Terrains returns a copy of the terrain layer in row-major order.
func (m *Map) Terrains() []Terrain {
	out := make([]Terrain, len(m.tiles))
	for i, tile := range m.tiles {
		out[i] = tile.Terrain
	}
	return out
}

// SameTerrain reports whether o has identical dimensions, terrain and starts.
func (m *Map) SameTerrain(o *Map) bool {
	if o == nil || m.Width != o.Width || m.Height != o.Height || len(m.Starts) != len(o.Starts) {
		return false
	}
	for i := range m.tiles {
		if m.tiles[i].Terrain != o.tiles[i].Terrain {
			return false
		}
	}
	for i := range m.Starts {
		if m.Starts[i] != o.Starts[i] {
			return false
		}
	}
	return true
}
