package terrain

import (
	"errors"
	"fmt"
	"math"

	"arenagen/internal/grid"
)

// ShapeParams controls path flattening and widening.
type ShapeParams struct {
	// Radius is the square (Chebyshev) neighbourhood around each path tile.
	Radius int
	// FlattenHeight caps the elevation of vertices near a path.
	FlattenHeight float64
}

// ShapeStats summarises what a shaping pass changed.
type ShapeStats struct {
	FlattenedVertices int
	WidenedTiles      int
}

// Shape lowers vertices near path tiles to at most FlattenHeight and, for a positive radius,
// returns the widened path grid. Flattening and widening share one proximity pass so the
// flattened ground always matches the final path footprint. The input tile grid is not
// modified; field is.
func Shape(field *grid.HeightField, tiles *grid.TileGrid, params ShapeParams) (*grid.TileGrid, ShapeStats, error) {
	var stats ShapeStats
	if field == nil || tiles == nil {
		return nil, stats, errors.New("terrain: shape requires a heightfield and a tile grid")
	}
	if params.Radius < 0 {
		return nil, stats, fmt.Errorf("terrain: shape radius cannot be negative, got %d", params.Radius)
	}
	if params.FlattenHeight < 0 || math.IsNaN(params.FlattenHeight) || math.IsInf(params.FlattenHeight, 0) {
		return nil, stats, fmt.Errorf("terrain: flatten height must be finite and non-negative, got %f", params.FlattenHeight)
	}
	dim := field.Dimensions()
	if tiles.Dimensions() != dim {
		return nil, stats, fmt.Errorf("terrain: tile grid %+v does not match heightfield %+v", tiles.Dimensions(), dim)
	}

	near := nearPath(tiles, params.Radius)

	for y := 0; y <= dim.Height; y++ {
		for x := 0; x <= dim.Width; x++ {
			tile := dim.ClampTile(grid.Coord{X: x, Y: y})
			if !near.At(tile) {
				continue
			}
			if h := field.At(x, y); h > params.FlattenHeight {
				field.Set(x, y, params.FlattenHeight)
				stats.FlattenedVertices++
			}
		}
	}

	if params.Radius == 0 {
		return tiles.Clone(), stats, nil
	}
	stats.WidenedTiles = near.Count() - tiles.Count()
	return near, stats, nil
}

func nearPath(tiles *grid.TileGrid, radius int) *grid.TileGrid {
	near := tiles.Clone()
	if radius == 0 {
		return near
	}
	for _, tile := range tiles.Marked() {
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				near.Set(tile.Add(dx, dy), true)
			}
		}
	}
	return near
}
