// Package mesh turns a finished heightfield into renderable grid geometry.
package mesh

import (
	"errors"
	"fmt"

	"arenagen/internal/grid"
)

// ErrDimensionMismatch reports geometry whose buffers disagree with the source grid.
var ErrDimensionMismatch = errors.New("mesh dimension mismatch")

// Up is the normal assigned to every vertex.
var Up = grid.Vec3{X: 0, Y: 1, Z: 0}

// Mesh is an immutable snapshot of the arena surface.
type Mesh struct {
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	TileSize  float64     `json:"tileSize"`
	Vertices  []grid.Vec3 `json:"vertices"`
	UVs       []grid.Vec2 `json:"uvs"`
	Normals   []grid.Vec3 `json:"normals"`
	Triangles []int       `json:"triangles"`
}

// Build emits one vertex per heightfield sample in row-major order and two triangles per
// tile. For the quad with corners a=(x,y), b=(x+1,y), c=(x,y+1), d=(x+1,y+1) the triangles
// are (a, c, b) and (b, c, d): clockwise when viewed from +Y, so the upper face is the front
// face in a left-handed y-up renderer.
func Build(field *grid.HeightField, tileSize float64) (*Mesh, error) {
	if field == nil {
		return nil, errors.New("mesh: heightfield is nil")
	}
	if tileSize <= 0 {
		return nil, fmt.Errorf("mesh: tile size must be positive, got %f", tileSize)
	}
	w, h := field.Width(), field.Height()
	stride := w + 1
	count := stride * (h + 1)

	m := &Mesh{
		Width:     w,
		Height:    h,
		TileSize:  tileSize,
		Vertices:  make([]grid.Vec3, 0, count),
		UVs:       make([]grid.Vec2, 0, count),
		Normals:   make([]grid.Vec3, 0, count),
		Triangles: make([]int, 0, w*h*6),
	}

	for y := 0; y <= h; y++ {
		for x := 0; x <= w; x++ {
			m.Vertices = append(m.Vertices, grid.Vec3{
				X: float64(x) * tileSize,
				Y: field.At(x, y),
				Z: float64(y) * tileSize,
			})
			m.UVs = append(m.UVs, grid.Vec2{X: float64(x) / float64(w), Y: float64(y) / float64(h)})
			m.Normals = append(m.Normals, Up)
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := y*stride + x
			b := a + 1
			c := a + stride
			d := c + 1
			m.Triangles = append(m.Triangles, a, c, b, b, c, d)
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// VertexCount is (W+1)*(H+1).
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount is 2*W*H.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles) / 3
}

// Validate checks buffer sizes and index ranges against the grid extent.
func (m *Mesh) Validate() error {
	vertices := (m.Width + 1) * (m.Height + 1)
	if len(m.Vertices) != vertices || len(m.UVs) != vertices || len(m.Normals) != vertices {
		return fmt.Errorf("%w: %d vertices, %d uvs, %d normals for %dx%d tiles",
			ErrDimensionMismatch, len(m.Vertices), len(m.UVs), len(m.Normals), m.Width, m.Height)
	}
	if len(m.Triangles) != m.Width*m.Height*6 {
		return fmt.Errorf("%w: %d indices for %dx%d tiles", ErrDimensionMismatch, len(m.Triangles), m.Width, m.Height)
	}
	for i, idx := range m.Triangles {
		if idx < 0 || idx >= vertices {
			return fmt.Errorf("%w: index %d at %d out of range", ErrDimensionMismatch, idx, i)
		}
	}
	return nil
}
