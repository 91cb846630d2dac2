package generate

import (
	"skirmish/internal/gamemap"
	"skirmish/internal/noise"
	"sort"
)

// moistureSalt separates the moisture seed from the elevation seeds of later
// attempts, which are seed+1, seed+2, ...
const moistureSalt = 0x632BE5AB

// synthesize fills a fresh map from the elevation and moisture fields of seed.
func synthesize(seed int64, width, height int, cfg *Config) *gamemap.Map {
	elevSrc := noise.New(seed)
	moistSrc := noise.New(seed + moistureSalt)

	n := width * height
	elev := make([]float64, n)
	moist := make([]float64, n)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			elev[i] = elevSrc.Fractal(float64(x), float64(y), cfg.Elevation)
			moist[i] = moistSrc.Fractal(float64(x), float64(y), cfg.Moisture)
		}
	}

	waterCut := quantile(elev, cfg.WaterFraction)
	mountainCut := quantile(elev, 1-cfg.MountainFraction)
	forestCut := quantile(moist, 1-cfg.ForestFraction)
	resourceCut := quantile(moist, cfg.ResourceMoisture)

	m := gamemap.New(width, height, seed)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			var t gamemap.Terrain
			switch e, w := elev[i], moist[i]; {
			case e < waterCut:
				t = gamemap.TerrainWater
			case e > mountainCut:
				t = gamemap.TerrainMountain
			case w >= resourceCut && moistSrc.Hash(x, y) < cfg.ResourceDensity:
				t = gamemap.TerrainResource
			case w >= forestCut:
				t = gamemap.TerrainForest
			default:
				t = gamemap.TerrainPlains
			}
			m.SetTerrain(x, y, t)
		}
	}
	return m
}

// quantile returns the value below which fraction f of vals fall.
func quantile(vals []float64, f float64) float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	f = min(max(f, 0), 1)
	return sorted[int(f*float64(len(sorted)-1))]
}
