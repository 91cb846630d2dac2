package fog

import "skirmish/internal/gamemap"

// octant transform matrices.
// For each octant, a (dx, dy) sweep pair maps to a world offset via:
//
//	worldX = cx + dx*xx + dy*xy
//	worldY = cy + dx*yx + dy*yy
var octants = [8][4]int{
	{1, 0, 0, 1},
	{0, 1, 1, 0},
	{0, -1, 1, 0},
	{-1, 0, 0, 1},
	{-1, 0, 0, -1},
	{0, -1, -1, 0},
	{0, 1, -1, 0},
	{1, 0, 0, -1},
}

// castVision marks every tile src can see in lit. Opaque tiles are seen but
// hide everything behind them; the radius test is dx²+dy² <= r².
func castVision(m *gamemap.Map, src VisionSource, lit []bool) {
	if !m.Contains(src.Pos) || src.Radius < 0 {
		return
	}
	lit[m.Index(src.Pos.X, src.Pos.Y)] = true
	for _, o := range octants {
		castLight(m, lit, src.Pos.X, src.Pos.Y, 1, 1.0, 0.0, src.Radius, o[0], o[1], o[2], o[3])
	}
}

// castLight scans one octant row by row with recursive shadowcasting.
// j is the row distance from the origin; dx sweeps across the row.
func castLight(m *gamemap.Map, lit []bool, cx, cy, row int, start, end float64, radius, xx, xy, yx, yy int) {
	if start < end {
		return
	}
	radiusSq := radius * radius
	newStart := start

	for j := row; j <= radius; j++ {
		dy := -j
		blocked := false

		for dx := -j; dx <= 0; dx++ {
			wx := cx + dx*xx + dy*xy
			wy := cy + dx*yx + dy*yy

			lSlope := (float64(dx) - 0.5) / (float64(dy) + 0.5)
			rSlope := (float64(dx) + 0.5) / (float64(dy) - 0.5)

			if start < rSlope {
				continue
			}
			if end > lSlope {
				break
			}

			if dx*dx+dy*dy <= radiusSq && m.InBounds(wx, wy) {
				lit[m.Index(wx, wy)] = true
			}

			opaque := m.IsOpaque(wx, wy)
			if blocked {
				if opaque {
					newStart = rSlope
				} else {
					blocked = false
					start = newStart
				}
			} else if opaque && j < radius {
				blocked = true
				castLight(m, lit, cx, cy, j+1, start, lSlope, radius, xx, xy, yx, yy)
				newStart = rSlope
			}
		}
		if blocked {
			break
		}
	}
}
