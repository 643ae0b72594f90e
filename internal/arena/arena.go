// Package arena runs a full generation pass and exposes the finished arena.
package arena

import (
	"slices"
	"time"

	"arenagen/internal/config"
	"arenagen/internal/grid"
	"arenagen/internal/mesh"
	"arenagen/internal/pathfinding"
	"arenagen/internal/placement"
	"arenagen/internal/rng"
	"arenagen/internal/terrain"

	"github.com/google/uuid"
)

// placementSalt keys the stream used by GetCandidatePlacementNodes.
const placementSalt = 0x706c6163656d656e

// StageTiming records how long one generation stage took.
type StageTiming struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
}

// Stats summarises a generation pass.
type Stats struct {
	PathCount    int                         `json:"pathCount"`
	PathsReached int                         `json:"pathsReached"`
	Carve        pathfinding.MetricsSnapshot `json:"carve"`
	Shape        terrain.ShapeStats          `json:"shape"`
	Stages       []StageTiming               `json:"stages"`
	Total        time.Duration               `json:"total"`
}

// Arena is the immutable result of one generation pass. Accessors hand out copies, so
// callers cannot disturb the arena's own grids.
type Arena struct {
	ID       uuid.UUID
	Seed     int64
	TileSize float64
	Stats    Stats

	dim       grid.Dimensions
	hub       grid.Coord
	paths     []pathfinding.Path
	field     *grid.HeightField
	tiles     *grid.TileGrid
	mesh      *mesh.Mesh
	sampler   *placement.Sampler
	placement config.PlacementConfig
}

// Dimensions is the arena's tile extent.
func (a *Arena) Dimensions() grid.Dimensions {
	return a.dim
}

// Hub is the tile every path is carved toward.
func (a *Arena) Hub() grid.Coord {
	return a.hub
}

// HubPosition is the world-space centre of the hub tile.
func (a *Arena) HubPosition() grid.Vec3 {
	return a.tileCenter(a.hub)
}

// SpawnPositions lists the world-space start of every path, in carve order.
func (a *Arena) SpawnPositions() []grid.Vec3 {
	out := make([]grid.Vec3, len(a.paths))
	for i, path := range a.paths {
		out[i] = a.tileCenter(path.Start())
	}
	return out
}

// Paths returns each path as world-space waypoints on the shaped terrain.
func (a *Arena) Paths() [][]grid.Vec3 {
	out := make([][]grid.Vec3, len(a.paths))
	for i, path := range a.paths {
		waypoints := make([]grid.Vec3, len(path))
		for j, tile := range path {
			waypoints[j] = a.tileCenter(tile)
		}
		out[i] = waypoints
	}
	return out
}

// TilePaths returns the carved tile sequences.
func (a *Arena) TilePaths() []pathfinding.Path {
	out := make([]pathfinding.Path, len(a.paths))
	for i, path := range a.paths {
		out[i] = slices.Clone(path)
	}
	return out
}

// PathTiles lists every path tile after widening, row-major.
func (a *Arena) PathTiles() []grid.Coord {
	return a.tiles.Marked()
}

// IsPathTile reports whether c belongs to the final path footprint.
func (a *Arena) IsPathTile(c grid.Coord) bool {
	return a.tiles.At(c)
}

// Mesh returns a copy of the terrain mesh built from the shaped heightfield.
func (a *Arena) Mesh() *mesh.Mesh {
	m := *a.mesh
	m.Vertices = slices.Clone(a.mesh.Vertices)
	m.UVs = slices.Clone(a.mesh.UVs)
	m.Normals = slices.Clone(a.mesh.Normals)
	m.Triangles = slices.Clone(a.mesh.Triangles)
	return &m
}

// HeightField returns a copy of the shaped heightfield.
func (a *Arena) HeightField() *grid.HeightField {
	return a.field.Clone()
}

// TileGrid returns a copy of the final path grid.
func (a *Arena) TileGrid() *grid.TileGrid {
	return a.tiles.Clone()
}

// GetCandidatePlacementNodes returns up to desired build positions that sit at or above
// minHeight and at least minPathDistance from every path tile, spaced apart by the configured
// minimum spacing. Each call reshuffles from the same seeded stream, so repeated calls with
// the same arguments agree.
func (a *Arena) GetCandidatePlacementNodes(desired int, minHeight, minPathDistance float64) []grid.Vec3 {
	return a.sampler.Candidates(a.placementStream(), desired, minHeight, minPathDistance)
}

// PlacementSites is GetCandidatePlacementNodes with tile and path distance detail.
func (a *Arena) PlacementSites(desired int, minHeight, minPathDistance float64) []placement.Site {
	return a.sampler.Sites(a.placementStream(), desired, minHeight, minPathDistance)
}

// DefaultPlacementSites samples with the configured placement defaults.
func (a *Arena) DefaultPlacementSites() []placement.Site {
	return a.PlacementSites(a.placement.DefaultCount, a.placement.MinHeight, a.placement.MinPathDistance)
}

// PlacementSpacing is the enforced world-space gap between candidates.
func (a *Arena) PlacementSpacing() float64 {
	return a.sampler.Spacing()
}

func (a *Arena) placementStream() *rng.Random {
	return rng.New(a.Seed).Derive(placementSalt)
}

func (a *Arena) tileCenter(c grid.Coord) grid.Vec3 {
	return grid.TileCenter(c, a.TileSize, a.field.TileCenterHeight(c))
}
