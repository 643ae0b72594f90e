// Package placement finds spaced-out build sites on the finished arena.
package placement

import (
	"errors"
	"fmt"
	"math"

	"arenagen/internal/grid"
	"arenagen/internal/rng"
)

// DefaultMinSpacing is the default separation between accepted sites, in tiles.
const DefaultMinSpacing = 2.0

// Site is an accepted build location.
type Site struct {
	Tile         grid.Coord `json:"tile"`
	Position     grid.Vec3  `json:"position"`
	PathDistance float64    `json:"pathDistance"`
}

// Sampler scans non-path tiles of a finished arena for build sites.
type Sampler struct {
	field    *grid.HeightField
	tiles    *grid.TileGrid
	tileSize float64
	spacing  float64
}

// NewSampler binds the final heightfield and path grid. minSpacing is in tiles; zero or less
// selects DefaultMinSpacing.
func NewSampler(field *grid.HeightField, tiles *grid.TileGrid, tileSize, minSpacing float64) (*Sampler, error) {
	if field == nil || tiles == nil {
		return nil, errors.New("placement: sampler requires a heightfield and a tile grid")
	}
	if field.Dimensions() != tiles.Dimensions() {
		return nil, fmt.Errorf("placement: tile grid %+v does not match heightfield %+v", tiles.Dimensions(), field.Dimensions())
	}
	if tileSize <= 0 {
		return nil, fmt.Errorf("placement: tile size must be positive, got %f", tileSize)
	}
	if minSpacing <= 0 {
		minSpacing = DefaultMinSpacing
	}
	return &Sampler{field: field, tiles: tiles, tileSize: tileSize, spacing: minSpacing * tileSize}, nil
}

// Spacing is the world-space separation enforced between accepted sites.
func (s *Sampler) Spacing() float64 {
	return s.spacing
}

// Sites returns up to desired build sites. Eligible tiles are off the path, have a centre at or
// above minHeight and lie at least minPathDistance (world units, horizontal) from every path
// tile. Eligible tiles are shuffled with rnd and accepted greedily while they keep Spacing from
// every site already taken. Fewer than desired is a normal result.
func (s *Sampler) Sites(rnd *rng.Random, desired int, minHeight, minPathDistance float64) []Site {
	if desired <= 0 {
		return []Site{}
	}
	pathTiles := s.tiles.Marked()
	dim := s.tiles.Dimensions()

	var candidates []Site
	for y := 0; y < dim.Height; y++ {
		for x := 0; x < dim.Width; x++ {
			tile := grid.Coord{X: x, Y: y}
			if s.tiles.At(tile) {
				continue
			}
			height := s.field.TileCenterHeight(tile)
			if height < minHeight {
				continue
			}
			distance := s.nearestPath(tile, pathTiles)
			if distance < minPathDistance {
				continue
			}
			candidates = append(candidates, Site{
				Tile:         tile,
				Position:     grid.TileCenter(tile, s.tileSize, height),
				PathDistance: distance,
			})
		}
	}

	if rnd != nil {
		rnd.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
	}

	accepted := make([]Site, 0, desired)
	for _, candidate := range candidates {
		if len(accepted) >= desired {
			break
		}
		if s.tooClose(candidate, accepted) {
			continue
		}
		accepted = append(accepted, candidate)
	}
	return accepted
}

// Candidates is Sites reduced to world positions.
func (s *Sampler) Candidates(rnd *rng.Random, desired int, minHeight, minPathDistance float64) []grid.Vec3 {
	sites := s.Sites(rnd, desired, minHeight, minPathDistance)
	out := make([]grid.Vec3, len(sites))
	for i, site := range sites {
		out[i] = site.Position
	}
	return out
}

func (s *Sampler) nearestPath(tile grid.Coord, pathTiles []grid.Coord) float64 {
	best := math.Inf(1)
	for _, p := range pathTiles {
		d := math.Hypot(float64(tile.X-p.X), float64(tile.Y-p.Y)) * s.tileSize
		if d < best {
			best = d
		}
	}
	return best
}

func (s *Sampler) tooClose(candidate Site, accepted []Site) bool {
	for _, site := range accepted {
		if candidate.Position.HorizontalDistance(site.Position) < s.spacing {
			return true
		}
	}
	return false
}
