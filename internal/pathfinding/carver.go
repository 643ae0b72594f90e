// Package pathfinding carves the enemy approach paths that converge on the arena hub.
package pathfinding

import (
	"context"
	"math"

	"arenagen/internal/grid"
	"arenagen/internal/rng"
)

const defaultStepCeilingFactor = 4

// Path is an ordered run of 4-connected tiles from a boundary start toward the hub.
type Path []grid.Coord

// Start returns the first tile of the path.
func (p Path) Start() grid.Coord {
	if len(p) == 0 {
		return grid.Coord{}
	}
	return p[0]
}

// End returns the last tile of the path.
func (p Path) End() grid.Coord {
	if len(p) == 0 {
		return grid.Coord{}
	}
	return p[len(p)-1]
}

// Reaches reports whether the path terminates on goal.
func (p Path) Reaches(goal grid.Coord) bool {
	return len(p) > 0 && p[len(p)-1] == goal
}

// Connected reports whether every consecutive pair of tiles is a single axis-aligned step.
func (p Path) Connected() bool {
	for i := 1; i < len(p); i++ {
		if !grid.Adjacent(p[i-1], p[i]) {
			return false
		}
	}
	return true
}

// CarveParams tunes the greedy scoring.
type CarveParams struct {
	// SlopeWeight scales the elevation difference between neighbouring tile centres.
	SlopeWeight float64
	// Jitter is the upper bound of the uniform tie-breaking noise added to each score.
	Jitter float64
	// MaxStepSlope excludes steeper neighbours from scoring. Zero or less disables the limit.
	MaxStepSlope float64
	// StepCeilingFactor bounds a carve to factor*W*H steps.
	StepCeilingFactor int
}

// Carver performs greedy weighted search over a heightfield's tiles.
type Carver struct {
	field  *grid.HeightField
	dim    grid.Dimensions
	params CarveParams
}

// NewCarver binds a carver to field. A non-positive StepCeilingFactor selects the default of 4.
func NewCarver(field *grid.HeightField, params CarveParams) *Carver {
	if params.StepCeilingFactor <= 0 {
		params.StepCeilingFactor = defaultStepCeilingFactor
	}
	return &Carver{field: field, dim: field.Dimensions(), params: params}
}

// StepCeiling is the maximum number of moves a single carve may make.
func (c *Carver) StepCeiling() int {
	return c.params.StepCeilingFactor * c.dim.Width * c.dim.Height
}

var neighborOffsets = [...]struct{ dx, dy int }{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// Carve walks from start toward goal, one tile per step, never revisiting a tile. Each step
// takes the lowest scoring walkable neighbour. When no neighbour is walkable a uniformly
// random unvisited neighbour is taken instead, and when every neighbour has been visited the
// path ends where it is. A path that misses goal is still a valid result.
func (c *Carver) Carve(ctx context.Context, start, goal grid.Coord, rnd *rng.Random) Path {
	profiler := profilerFromContext(ctx)
	start = c.dim.ClampTile(start)
	goal = c.dim.ClampTile(goal)

	visited, _ := grid.NewTileGrid(c.dim)
	visited.Set(start, true)
	path := Path{start}
	current := start
	ceiling := c.StepCeiling()

	open := make([]grid.Coord, 0, len(neighborOffsets))
	for steps := 0; current != goal; steps++ {
		if steps >= ceiling {
			if profiler != nil {
				profiler.RecordCeilingHit()
			}
			break
		}
		if ctx != nil && ctx.Err() != nil {
			break
		}

		open = open[:0]
		for _, offset := range neighborOffsets {
			candidate := current.Add(offset.dx, offset.dy)
			if c.dim.InTile(candidate) && !visited.At(candidate) {
				open = append(open, candidate)
			}
		}
		if len(open) == 0 {
			if profiler != nil {
				profiler.RecordDeadEnd()
			}
			break
		}

		next, ok := c.best(current, goal, open, rnd)
		if !ok {
			next = open[rnd.Intn(len(open))]
			if profiler != nil {
				profiler.RecordRecoveryMove()
			}
		}

		visited.Set(next, true)
		path = append(path, next)
		current = next
		if profiler != nil {
			profiler.RecordStep()
		}
	}

	if profiler != nil {
		profiler.RecordPathCarved(len(path), path.Reaches(goal))
	}
	return path
}

// best scores the walkable candidates in neighbour order; earlier candidates win ties.
func (c *Carver) best(current, goal grid.Coord, open []grid.Coord, rnd *rng.Random) (grid.Coord, bool) {
	currentHeight := c.field.TileCenterHeight(current)
	bestScore := math.Inf(1)
	var best grid.Coord
	found := false
	for _, candidate := range open {
		slope := math.Abs(c.field.TileCenterHeight(candidate) - currentHeight)
		if c.params.MaxStepSlope > 0 && slope > c.params.MaxStepSlope {
			continue
		}
		score := float64(grid.Manhattan(candidate, goal)) +
			c.params.SlopeWeight*slope +
			rnd.Range(0, c.params.Jitter)
		if score < bestScore {
			bestScore = score
			best = candidate
			found = true
		}
	}
	return best, found
}
