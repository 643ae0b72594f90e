package terrain

import (
	"fmt"
	"math"
	"strings"

	perlin "github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// NoiseKind selects the coherent noise used for heightfield synthesis.
type NoiseKind string

const (
	NoiseSimplex NoiseKind = "simplex"
	NoisePerlin  NoiseKind = "perlin"
	NoiseValue   NoiseKind = "value"
)

// ParseNoiseKind maps a configuration label onto a NoiseKind. Empty selects simplex.
func ParseNoiseKind(value string) (NoiseKind, error) {
	switch NoiseKind(strings.ToLower(strings.TrimSpace(value))) {
	case "", NoiseSimplex:
		return NoiseSimplex, nil
	case NoisePerlin:
		return NoisePerlin, nil
	case NoiseValue:
		return NoiseValue, nil
	default:
		return "", fmt.Errorf("unknown noise kind %q", value)
	}
}

// Source samples 2D coherent noise normalised to [0,1].
type Source interface {
	Sample(x, y float64) float64
}

// NewSource builds a seeded noise source of the requested kind.
func NewSource(kind NoiseKind, seed int64) (Source, error) {
	switch kind {
	case "", NoiseSimplex:
		return simplexSource{noise: opensimplex.NewNormalized(seed)}, nil
	case NoisePerlin:
		return perlinSource{noise: perlin.NewPerlin(2, 2, 3, seed)}, nil
	case NoiseValue:
		return valueSource{seed: seed}, nil
	default:
		return nil, fmt.Errorf("unknown noise kind %q", kind)
	}
}

type simplexSource struct {
	noise opensimplex.Noise
}

func (s simplexSource) Sample(x, y float64) float64 {
	return clamp01(s.noise.Eval2(x, y))
}

type perlinSource struct {
	noise *perlin.Perlin
}

func (s perlinSource) Sample(x, y float64) float64 {
	return clamp01((s.noise.Noise2D(x, y) + 1) * 0.5)
}

// valueSource is hashed lattice noise with smoothstep interpolation.
type valueSource struct {
	seed int64
}

func (s valueSource) Sample(x, y float64) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := x0 + 1
	y1 := y0 + 1

	sx := smooth(x - float64(x0))
	sy := smooth(y - float64(y0))

	ix0 := lerp(lattice(x0, y0, s.seed), lattice(x1, y0, s.seed), sx)
	ix1 := lerp(lattice(x0, y1, s.seed), lattice(x1, y1, s.seed), sx)
	return clamp01(lerp(ix0, ix1, sy))
}

// fractal sums octaves of a source and renormalises to [0,1].
type fractal struct {
	base        Source
	octaves     int
	persistence float64
	lacunarity  float64
}

func (f fractal) Sample(x, y float64) float64 {
	frequency := 1.0
	amplitude := 1.0
	noiseSum := 0.0
	maxAmplitude := 0.0

	for i := 0; i < f.octaves; i++ {
		noiseSum += f.base.Sample(x*frequency, y*frequency) * amplitude
		maxAmplitude += amplitude
		amplitude *= f.persistence
		frequency *= f.lacunarity
	}

	if maxAmplitude == 0 {
		return 0
	}
	return clamp01(noiseSum / maxAmplitude)
}

func withOctaves(base Source, octaves int, persistence, lacunarity float64) Source {
	if octaves <= 1 {
		return base
	}
	if persistence <= 0 {
		persistence = 0.5
	}
	if lacunarity <= 0 {
		lacunarity = 2
	}
	return fractal{base: base, octaves: octaves, persistence: persistence, lacunarity: lacunarity}
}

func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}

// smoothstep clamps t to [edge0, edge1] before applying the cubic.
func smoothstep(edge0, edge1, t float64) float64 {
	if edge1 == edge0 {
		if t < edge0 {
			return 0
		}
		return 1
	}
	v := (t - edge0) / (edge1 - edge0)
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return smooth(v)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func lattice(x, y int, seed int64) float64 {
	return float64(hash3(x, y, int(seed))&0xFFFF) / 0xFFFF
}

func hash3(x, y, z int) uint32 {
	h := uint32(x*374761393 + y*668265263 + z*2147483647)
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
