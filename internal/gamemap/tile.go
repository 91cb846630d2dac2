package gamemap

import "math"

// Terrain identifies the class of a map tile.
type Terrain uint8

const (
	TerrainWater Terrain = iota
	TerrainPlains
	TerrainForest
	TerrainMountain
	TerrainResource
)

// Terrains lists every terrain class in declaration order.
var Terrains = [...]Terrain{TerrainWater, TerrainPlains, TerrainForest, TerrainMountain, TerrainResource}

// Blocked is the movement cost of a tile no unit can enter.
var Blocked = math.Inf(1)

func (t Terrain) String() string {
	switch t {
	case TerrainWater:
		return "water"
	case TerrainPlains:
		return "plains"
	case TerrainForest:
		return "forest"
	case TerrainMountain:
		return "mountain"
	case TerrainResource:
		return "resource"
	}
	return "unknown"
}

// BaseCost returns the cost of stepping onto an unoccupied tile of this terrain.
func (t Terrain) BaseCost() float64 {
	switch t {
	case TerrainPlains, TerrainResource:
		return 1
	case TerrainForest:
		return 2
	}
	return Blocked
}

// Walkable reports whether units can ever stand on this terrain.
func (t Terrain) Walkable() bool { return !math.IsInf(t.BaseCost(), 1) }

// Land reports whether the terrain counts as land (anything but water).
func (t Terrain) Land() bool { return t != TerrainWater }

// Opaque reports whether the terrain blocks line of sight.
func (t Terrain) Opaque() bool { return t == TerrainMountain }

// Tile is one map cell. Terrain is write-once; Occupied is layered on top by
// buildings and units during play.
type Tile struct {
	Terrain  Terrain
	Occupied bool
}

// Passable is derived from terrain and occupancy, never stored.
func (t Tile) Passable() bool {
	return t.Terrain.Walkable() && !t.Occupied
}

// Cost returns the movement cost of entering the tile, Blocked when impassable.
func (t Tile) Cost() float64 {
	if !t.Passable() {
		return Blocked
	}
	return t.Terrain.BaseCost()
}
