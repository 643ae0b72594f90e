// Package terrain synthesises the arena heightfield and reshapes it around carved paths.
package terrain

import (
	"errors"
	"fmt"
	"math"

	"arenagen/internal/grid"
	"arenagen/internal/rng"
)

// Params controls heightfield synthesis.
type Params struct {
	Noise          NoiseKind
	NoiseScale     float64
	ElevationScale float64
	// OffsetRange bounds the seeded sampling offset on each axis to [-OffsetRange, OffsetRange).
	OffsetRange float64
	Octaves     int
	Persistence float64
	Lacunarity  float64
}

// Synthesize samples a noise basin over the (W+1)x(H+1) vertex lattice. Elevation is highest
// near the centre and falls to zero on the boundary. A non-positive noise scale yields a flat
// plane at zero elevation.
func Synthesize(dim grid.Dimensions, params Params, rnd *rng.Random) (*grid.HeightField, error) {
	field, err := grid.NewHeightField(dim)
	if err != nil {
		return nil, err
	}
	if rnd == nil {
		return nil, errors.New("terrain: random source is nil")
	}
	if params.ElevationScale < 0 || math.IsNaN(params.ElevationScale) || math.IsInf(params.ElevationScale, 0) {
		return nil, fmt.Errorf("terrain: elevation scale must be finite and non-negative, got %f", params.ElevationScale)
	}

	// Draw order is fixed so later stages see the same stream whatever the scale settings.
	offsetX := rnd.Range(-params.OffsetRange, params.OffsetRange)
	offsetY := rnd.Range(-params.OffsetRange, params.OffsetRange)
	sourceSeed := int64(rnd.Uint64() >> 1)

	if params.NoiseScale <= 0 || params.ElevationScale == 0 {
		return field, nil
	}

	base, err := NewSource(params.Noise, sourceSeed)
	if err != nil {
		return nil, fmt.Errorf("terrain: %w", err)
	}
	source := withOctaves(base, params.Octaves, params.Persistence, params.Lacunarity)

	width := float64(dim.Width)
	height := float64(dim.Height)
	for y := 0; y <= dim.Height; y++ {
		for x := 0; x <= dim.Width; x++ {
			sx := float64(x)/width*params.NoiseScale + offsetX
			sy := float64(y)/height*params.NoiseScale + offsetY
			value := source.Sample(sx, sy) * params.ElevationScale * edgeFalloff(x, y, dim)
			field.Set(x, y, value)
		}
	}
	return field, nil
}

// edgeFalloff is 1 at the centre of the lattice and 0 on its boundary.
func edgeFalloff(x, y int, dim grid.Dimensions) float64 {
	halfW := float64(dim.Width) / 2
	halfH := float64(dim.Height) / 2
	dx := math.Abs(float64(x)-halfW) / halfW
	dy := math.Abs(float64(y)-halfH) / halfH
	return smoothstep(0, 1, 1-math.Max(dx, dy))
}
