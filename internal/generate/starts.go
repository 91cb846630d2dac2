package generate

import (
	"math"
	"skirmish/internal/gamemap"
	"skirmish/internal/pathfind"

	"github.com/zyedidia/generic/mapset"
)

// largestRegion returns the biggest four-connected passable region. Ties go
// to the region found first in row-major order.
func largestRegion(m *gamemap.Map) mapset.Set[gamemap.Point] {
	visited := make([]bool, m.Len())
	best := mapset.New[gamemap.Point]()
	for i := range visited {
		p := m.PointAt(i)
		if visited[i] || !m.IsPassable(p.X, p.Y) {
			continue
		}
		region, _ := pathfind.Reachable(m, p, pathfind.Four)
		region.Each(func(q gamemap.Point) {
			visited[m.Index(q.X, q.Y)] = true
		})
		if region.Size() > best.Size() {
			best = region
		}
	}
	return best
}

// placeStarts picks one start per player inside the largest passable region,
// each the tile nearest an anchor spaced evenly on an ellipse around the map
// centre. It returns fewer starts than players when spacing cannot be met;
// the validator rejects such maps.
func placeStarts(m *gamemap.Map, players, spacing int) []gamemap.Point {
	region := largestRegion(m)
	cx := float64(m.Width-1) / 2
	cy := float64(m.Height-1) / 2
	rx := float64(m.Width) * 0.3
	ry := float64(m.Height) * 0.3

	starts := make([]gamemap.Point, 0, players)
	for i := 0; i < players; i++ {
		angle := math.Pi/4 + 2*math.Pi*float64(i)/float64(players)
		ax := cx + rx*math.Cos(angle)
		ay := cy + ry*math.Sin(angle)

		bestDist := math.Inf(1)
		var best gamemap.Point
		found := false
		for idx := 0; idx < m.Len(); idx++ {
			p := m.PointAt(idx)
			if !region.Has(p) || tooClose(p, starts, spacing) {
				continue
			}
			dx, dy := float64(p.X)-ax, float64(p.Y)-ay
			if d := dx*dx + dy*dy; d < bestDist {
				bestDist, best, found = d, p, true
			}
		}
		if !found {
			break
		}
		starts = append(starts, best)
	}
	return starts
}

func tooClose(p gamemap.Point, starts []gamemap.Point, spacing int) bool {
	for _, s := range starts {
		if max(abs(p.X-s.X), abs(p.Y-s.Y)) < spacing {
			return true
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
