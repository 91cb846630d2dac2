// Package noise provides seeded coherent noise fields for terrain synthesis.
package noise

import opensimplex "github.com/ojrac/opensimplex-go"

// Source is a 2D gradient noise field fixed by its seed. It holds no mutable
// state after New returns, so sampling is side-effect free.
type Source struct {
	seed  int64
	field opensimplex.Noise
}

// New builds a Source for seed.
func New(seed int64) Source {
	return Source{seed: seed, field: opensimplex.NewNormalized(seed)}
}

// Seed returns the seed the source was built from.
func (s Source) Seed() int64 { return s.seed }

// At samples the field at (x, y). The result lies in [0, 1].
func (s Source) At(x, y float64) float64 {
	return s.field.Eval2(x, y)
}

// Octaves configures a fractal sum of the base field.
type Octaves struct {
	Count       int
	Frequency   float64
	Persistence float64
	Lacunarity  float64
}

// Fractal layers Count octaves of the field, each at Lacunarity times the
// previous frequency and Persistence times the previous amplitude. The result
// is normalized back to [0, 1].
func (s Source) Fractal(x, y float64, o Octaves) float64 {
	total := 0.0
	amplitude := 1.0
	norm := 0.0
	frequency := o.Frequency
	for range max(o.Count, 1) {
		total += s.At(x*frequency, y*frequency) * amplitude
		norm += amplitude
		amplitude *= o.Persistence
		frequency *= o.Lacunarity
	}
	return total / norm
}

// Hash returns a uniform value in [0, 1) for the lattice point (x, y).
// Unlike At it has no spatial coherence; it is used for sparse scatter.
func (s Source) Hash(x, y int) float64 {
	// SplitMix64 finalizer over the packed coordinates.
	v := uint64(int64(x)) + (uint64(int64(y)) << 32) + uint64(s.seed)*0x9E3779B97F4A7C15
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	v ^= v >> 31
	return float64(v>>11) / float64(1<<53)
}
