// Package render draws a map snapshot, masked by one player's fog of war,
// onto a tcell screen.
package render

import (
	"skirmish/internal/component"
	"skirmish/internal/ecs"
	"skirmish/internal/fog"
	"skirmish/internal/gamemap"
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// hudRows is the number of rows reserved below the map.
const hudRows = 4

// Frame is everything needed to draw one tick.
type Frame struct {
	Map *gamemap.Map
	// Vision masks the map; nil draws everything lit.
	Vision *fog.Grid
	// World holds the units; may be nil.
	World *ecs.World
	// Viewer's own units are drawn even on tiles it cannot currently see.
	Viewer int
}

// Renderer draws frames onto a tcell screen.
type Renderer struct {
	screen tcell.Screen
	camera *Camera
}

// NewRenderer creates a Renderer for the given screen.
func NewRenderer(screen tcell.Screen) *Renderer {
	w, h := screen.Size()
	return &Renderer{
		screen: screen,
		camera: NewCamera(0, 0, w, max(h-hudRows, 1)),
	}
}

// Resize recomputes the viewport after the terminal size changes.
func (r *Renderer) Resize() {
	w, h := r.screen.Size()
	r.camera.ViewWidth = w
	r.camera.ViewHeight = max(h-hudRows, 1)
}

// CenterOn recenters the camera on map position (x, y).
func (r *Renderer) CenterOn(x, y int) { r.camera.Center(x, y) }

// Pan scrolls the view by (dx, dy) tiles.
func (r *Renderer) Pan(dx, dy int) { r.camera.Pan(dx, dy) }

// WorldToScreen converts map coordinates to screen coordinates.
func (r *Renderer) WorldToScreen(wx, wy int) (sx, sy int, visible bool) {
	return r.camera.WorldToScreen(wx, wy)
}

// DrawFrame clears the screen and renders tiles and units.
func (r *Renderer) DrawFrame(f Frame) {
	r.screen.Clear()
	if f.Map == nil {
		return
	}
	r.drawMap(f)
	if f.World != nil {
		r.drawUnits(f)
	}
}

func stateAt(g *fog.Grid, x, y int) fog.State {
	if g == nil {
		return fog.Visible
	}
	return g.At(x, y)
}

// drawMap renders every tile on screen; unseen tiles get HiddenGlyph.
func (r *Renderer) drawMap(f Frame) {
	style := tcell.StyleDefault.Background(tcell.ColorBlack)
	for y := 0; y < f.Map.Height; y++ {
		for x := 0; x < f.Map.Width; x++ {
			sx, sy, onScreen := r.camera.WorldToScreen(x, y)
			if !onScreen {
				continue
			}
			glyph := HiddenGlyph
			switch stateAt(f.Vision, x, y) {
			case fog.Visible:
				glyph = glyphFor(f.Map.At(x, y).Terrain, true)
			case fog.Explored:
				glyph = glyphFor(f.Map.At(x, y).Terrain, false)
			}
			r.putGlyph(sx, sy, glyph, style)
		}
	}
}

type renderableUnit struct {
	order int
	pos   component.Position
	rend  component.Renderable
}

// drawUnits renders units on visible tiles, ordered by RenderOrder.
func (r *Renderer) drawUnits(f Frame) {
	ids := f.World.Query(component.CRenderable, component.CPosition)
	units := make([]renderableUnit, 0, len(ids))
	for _, id := range ids {
		pos, _ := ecs.Lookup[component.Position](f.World, id)
		rend, _ := ecs.Lookup[component.Renderable](f.World, id)
		owner, owned := ecs.Lookup[component.Owner](f.World, id)
		mine := owned && owner.Player == f.Viewer
		if !mine && stateAt(f.Vision, pos.X, pos.Y) != fog.Visible {
			continue
		}
		units = append(units, renderableUnit{order: rend.RenderOrder, pos: pos, rend: rend})
	}

	// Lower order is drawn first, behind.
	sort.SliceStable(units, func(i, j int) bool {
		return units[i].order < units[j].order
	})

	for _, u := range units {
		sx, sy, onScreen := r.camera.WorldToScreen(u.pos.X, u.pos.Y)
		if !onScreen {
			continue
		}
		style := tcell.StyleDefault.Foreground(u.rend.FGColor).Background(tcell.ColorBlack)
		r.putGlyph(sx, sy, u.rend.Glyph, style)
	}
}

// putGlyph draws a single glyph (ASCII or multi-rune emoji) at screen position (x, y).
func (r *Renderer) putGlyph(x, y int, glyph string, style tcell.Style) {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return
	}
	var combc []rune
	if len(runes) > 1 {
		combc = runes[1:]
	}
	r.screen.SetContent(x, y, runes[0], combc, style)
	if runewidth.StringWidth(glyph) == 2 {
		// Fill the second column to avoid rendering artifacts.
		r.screen.SetContent(x+1, y, ' ', nil, style)
	}
}
