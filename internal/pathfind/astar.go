package pathfind

import (
	"container/heap"
	"errors"
	"math"
	"skirmish/internal/gamemap"

	"github.com/zyedidia/generic/mapset"
)

var (
	// ErrNoPath means the goal cannot be reached from the start.
	ErrNoPath = errors.New("pathfind: no path found")
	// ErrInvalidCoordinates means a query referenced a tile outside the map.
	ErrInvalidCoordinates = errors.New("pathfind: coordinates out of bounds")
)

type pathNode struct {
	idx    int
	g      float64
	f      float64
	h      float64
	seq    int
	parent *pathNode
	index  int
}

type pathQueue []*pathNode

func (pq pathQueue) Len() int { return len(pq) }

// Less orders by f, then by h so nodes nearer the goal win, then by
// insertion sequence. The last key is unique, which makes the order total.
func (pq pathQueue) Less(i, j int) bool {
	a, b := pq[i], pq[j]
	if a.f != b.f {
		return a.f < b.f
	}
	if a.h != b.h {
		return a.h < b.h
	}
	return a.seq < b.seq
}

func (pq pathQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *pathQueue) Push(x any) {
	item := x.(*pathNode)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *pathQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// FindPath runs A* from start to goal and returns every tile from start to
// goal inclusive. The start tile is never checked for passability, since the
// unit asking usually occupies it. It returns ErrNoPath rather than a partial
// route when the goal is unreachable.
func FindPath(m *gamemap.Map, start, goal gamemap.Point, profile Profile) ([]gamemap.Point, error) {
	if !m.Contains(start) || !m.Contains(goal) {
		return nil, ErrInvalidCoordinates
	}
	if start == goal {
		return []gamemap.Point{start}, nil
	}
	g := NewGrid(m, profile)
	if !g.Passable(goal.X, goal.Y) {
		return nil, ErrNoPath
	}

	gScore := make([]float64, m.Len())
	for i := range gScore {
		gScore[i] = math.Inf(1)
	}
	closed := make([]bool, m.Len())

	seq := 0
	open := &pathQueue{}
	h := g.heuristic(start, goal)
	startIdx := m.Index(start.X, start.Y)
	heap.Push(open, &pathNode{idx: startIdx, f: h, h: h})
	gScore[startIdx] = 0
	goalIdx := m.Index(goal.X, goal.Y)

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		if closed[current.idx] {
			continue
		}
		closed[current.idx] = true
		if current.idx == goalIdx {
			return reconstructPath(m, current), nil
		}
		cur := m.PointAt(current.idx)
		for _, n := range profile.Adjacency.offsets() {
			if !g.canStep(cur.X, cur.Y, n) {
				continue
			}
			next := cur.Add(n.dx, n.dy)
			idx := m.Index(next.X, next.Y)
			if closed[idx] {
				continue
			}
			tentative := current.g + g.Cost(next.X, next.Y)
			if tentative >= gScore[idx] {
				continue
			}
			gScore[idx] = tentative
			seq++
			nh := g.heuristic(next, goal)
			heap.Push(open, &pathNode{
				idx:    idx,
				g:      tentative,
				f:      tentative + nh,
				h:      nh,
				seq:    seq,
				parent: current,
			})
		}
	}
	return nil, ErrNoPath
}

func reconstructPath(m *gamemap.Map, end *pathNode) []gamemap.Point {
	var path []gamemap.Point
	for node := end; node != nil; node = node.parent {
		path = append(path, m.PointAt(node.idx))
	}
	for i := 0; i < len(path)/2; i++ {
		j := len(path) - 1 - i
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Reachable flood-fills from origin over passable tiles and returns every tile
// reached, origin included. Like FindPath, the origin itself is not required
// to be passable. The map generator validates connectivity with this same
// traversal.
func Reachable(m *gamemap.Map, origin gamemap.Point, adj Adjacency) (mapset.Set[gamemap.Point], error) {
	if !m.Contains(origin) {
		return mapset.Set[gamemap.Point]{}, ErrInvalidCoordinates
	}
	g := NewGrid(m, Profile{Adjacency: adj})
	seen := mapset.New[gamemap.Point]()
	seen.Put(origin)
	queue := []gamemap.Point{origin}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range adj.offsets() {
			if !g.canStep(cur.X, cur.Y, n) {
				continue
			}
			next := cur.Add(n.dx, n.dy)
			if seen.Has(next) {
				continue
			}
			seen.Put(next)
			queue = append(queue, next)
		}
	}
	return seen, nil
}
