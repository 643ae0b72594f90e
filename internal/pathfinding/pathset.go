package pathfinding

import (
	"fmt"

	"arenagen/internal/grid"
)

// PathSet owns the carved paths and the tile grid derived from them.
type PathSet struct {
	Paths []Path
	Tiles *grid.TileGrid
}

// NewPathSet marks every tile touched by any path.
func NewPathSet(dim grid.Dimensions, paths []Path) (*PathSet, error) {
	tiles, err := grid.NewTileGrid(dim)
	if err != nil {
		return nil, err
	}
	for i, path := range paths {
		for _, tile := range path {
			if !tiles.Set(tile, true) {
				return nil, fmt.Errorf("path %d leaves the grid at %v", i, tile)
			}
		}
	}
	return &PathSet{Paths: paths, Tiles: tiles}, nil
}

// Contains reports whether c is a path tile.
func (s *PathSet) Contains(c grid.Coord) bool {
	return s.Tiles.At(c)
}

// TileCoords lists path tiles in row-major order.
func (s *PathSet) TileCoords() []grid.Coord {
	return s.Tiles.Marked()
}
