package render

import "skirmish/internal/gamemap"

// TerrainGlyphs holds the glyphs for one terrain type. Emoji are rendered by
// the terminal with their own colors, so explored-but-dark tiles get their
// own glyph instead of a tint.
type TerrainGlyphs struct {
	Lit string
	Dim string
}

// Theme maps each terrain to its glyphs.
var Theme = map[gamemap.Terrain]TerrainGlyphs{
	gamemap.TerrainWater:    {Lit: "🟦", Dim: "🌊"},
	gamemap.TerrainPlains:   {Lit: "🟩", Dim: "🔲"},
	gamemap.TerrainForest:   {Lit: "🌲", Dim: "🌳"},
	gamemap.TerrainMountain: {Lit: "🗻", Dim: "🌑"},
	gamemap.TerrainResource: {Lit: "💎", Dim: "🔹"},
}

// HiddenGlyph is drawn for tiles a player has never seen.
const HiddenGlyph = "⬛"

// glyphFor picks the glyph for terrain t; lit is false for explored tiles.
func glyphFor(t gamemap.Terrain, lit bool) string {
	g, ok := Theme[t]
	if !ok {
		return "?"
	}
	if lit {
		return g.Lit
	}
	return g.Dim
}
