// Package grid holds the coordinate, heightfield and tile containers shared by every stage of
// arena generation. Grids are row-major (y outer, x inner) and addressed by (x, y).
package grid

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDimensions reports a grid with a non-positive width or height.
var ErrInvalidDimensions = errors.New("grid dimensions must be positive")

// Coord addresses a tile (0 <= x < W) or a vertex (0 <= x <= W).
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Coord) Add(dx, dy int) Coord {
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

// Manhattan returns the 4-connected step distance between two coordinates.
func Manhattan(a, b Coord) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Chebyshev returns the square-neighbourhood distance between two coordinates.
func Chebyshev(a, b Coord) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Adjacent reports whether a and b differ by exactly one unit on exactly one axis.
func Adjacent(a, b Coord) bool {
	return Manhattan(a, b) == 1
}

// Vec2 is a texture coordinate.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec3 is a world-space point: X east, Y up, Z north.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HorizontalDistance ignores elevation.
func (v Vec3) HorizontalDistance(o Vec3) float64 {
	return math.Hypot(v.X-o.X, v.Z-o.Z)
}

// Distance is the full 3D euclidean distance.
func (v Vec3) Distance(o Vec3) float64 {
	dy := v.Y - o.Y
	return math.Sqrt((v.X-o.X)*(v.X-o.X) + dy*dy + (v.Z-o.Z)*(v.Z-o.Z))
}

// Dimensions is the tile extent of an arena.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (d Dimensions) Validate() error {
	if d.Width < 1 || d.Height < 1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, d.Width, d.Height)
	}
	return nil
}

// InTile reports whether c lies in tile space.
func (d Dimensions) InTile(c Coord) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < d.Width && c.Y < d.Height
}

// ClampTile moves c onto the nearest tile.
func (d Dimensions) ClampTile(c Coord) Coord {
	return Coord{X: clamp(c.X, 0, d.Width-1), Y: clamp(c.Y, 0, d.Height-1)}
}

// TileCenter returns the world position of a tile centre at the given elevation.
func TileCenter(c Coord, tileSize, elevation float64) Vec3 {
	return Vec3{
		X: (float64(c.X) + 0.5) * tileSize,
		Y: elevation,
		Z: (float64(c.Y) + 0.5) * tileSize,
	}
}

// HeightField stores one elevation per tile corner, (W+1)x(H+1) samples.
type HeightField struct {
	dim    Dimensions
	stride int
	values []float64
}

// NewHeightField allocates a zeroed field for dim, rejecting empty dimensions.
func NewHeightField(dim Dimensions) (*HeightField, error) {
	if err := dim.Validate(); err != nil {
		return nil, err
	}
	stride := dim.Width + 1
	return &HeightField{
		dim:    dim,
		stride: stride,
		values: make([]float64, stride*(dim.Height+1)),
	}, nil
}

// Dimensions returns the tile extent; the vertex extent is one larger on each axis.
func (h *HeightField) Dimensions() Dimensions {
	return h.dim
}

func (h *HeightField) Width() int  { return h.dim.Width }
func (h *HeightField) Height() int { return h.dim.Height }

// VertexCount is (W+1)*(H+1).
func (h *HeightField) VertexCount() int {
	return len(h.values)
}

func (h *HeightField) index(x, y int) int {
	return y*h.stride + x
}

// InBounds reports whether (x, y) is a vertex of the field.
func (h *HeightField) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x <= h.dim.Width && y <= h.dim.Height
}

// At returns the elevation at vertex (x, y). Out-of-range vertices read as zero.
func (h *HeightField) At(x, y int) float64 {
	if !h.InBounds(x, y) {
		return 0
	}
	return h.values[h.index(x, y)]
}

// Set writes the elevation at vertex (x, y) and reports whether the vertex exists.
func (h *HeightField) Set(x, y int, v float64) bool {
	if !h.InBounds(x, y) {
		return false
	}
	h.values[h.index(x, y)] = v
	return true
}

// TileCenterHeight averages the four corner samples of a tile.
func (h *HeightField) TileCenterHeight(c Coord) float64 {
	c = h.dim.ClampTile(c)
	return (h.At(c.X, c.Y) + h.At(c.X+1, c.Y) + h.At(c.X, c.Y+1) + h.At(c.X+1, c.Y+1)) / 4
}

// Values returns a row-major copy of the samples.
func (h *HeightField) Values() []float64 {
	out := make([]float64, len(h.values))
	copy(out, h.values)
	return out
}

// Clone returns an independent copy.
func (h *HeightField) Clone() *HeightField {
	return &HeightField{dim: h.dim, stride: h.stride, values: h.Values()}
}

// MinMax returns the lowest and highest samples.
func (h *HeightField) MinMax() (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range h.values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// TileGrid marks tiles with a boolean flag, W*H entries.
type TileGrid struct {
	dim   Dimensions
	tiles []bool
}

// NewTileGrid allocates an unmarked grid for dim, rejecting empty dimensions.
func NewTileGrid(dim Dimensions) (*TileGrid, error) {
	if err := dim.Validate(); err != nil {
		return nil, err
	}
	return &TileGrid{dim: dim, tiles: make([]bool, dim.Width*dim.Height)}, nil
}

func (g *TileGrid) Dimensions() Dimensions {
	return g.dim
}

func (g *TileGrid) InBounds(c Coord) bool {
	return g.dim.InTile(c)
}

// At reports whether c is marked. Tiles outside the grid read as unmarked.
func (g *TileGrid) At(c Coord) bool {
	if !g.dim.InTile(c) {
		return false
	}
	return g.tiles[c.Y*g.dim.Width+c.X]
}

// Set marks or clears c and reports whether c lies in the grid.
func (g *TileGrid) Set(c Coord, v bool) bool {
	if !g.dim.InTile(c) {
		return false
	}
	g.tiles[c.Y*g.dim.Width+c.X] = v
	return true
}

// Count returns the number of marked tiles.
func (g *TileGrid) Count() int {
	n := 0
	for _, v := range g.tiles {
		if v {
			n++
		}
	}
	return n
}

// Marked lists marked tiles in row-major order.
func (g *TileGrid) Marked() []Coord {
	out := make([]Coord, 0, g.Count())
	for y := 0; y < g.dim.Height; y++ {
		for x := 0; x < g.dim.Width; x++ {
			if g.tiles[y*g.dim.Width+x] {
				out = append(out, Coord{X: x, Y: y})
			}
		}
	}
	return out
}

// Clone returns an independent copy.
func (g *TileGrid) Clone() *TileGrid {
	tiles := make([]bool, len(g.tiles))
	copy(tiles, g.tiles)
	return &TileGrid{dim: g.dim, tiles: tiles}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
