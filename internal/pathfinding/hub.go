package pathfinding

import (
	"context"

	"arenagen/internal/grid"
	"arenagen/internal/rng"
)

// Edge identifies a side of the arena.
type Edge int

const (
	EdgeSouth Edge = iota
	EdgeNorth
	EdgeWest
	EdgeEast
)

// Hub returns the convergence tile shared by every path: the grid centre.
func Hub(dim grid.Dimensions) grid.Coord {
	return grid.Coord{X: dim.Width / 2, Y: dim.Height / 2}
}

// EdgeCell returns the tile at offset along the given edge.
func EdgeCell(dim grid.Dimensions, edge Edge, offset int) grid.Coord {
	switch edge {
	case EdgeNorth:
		return grid.Coord{X: offset, Y: dim.Height - 1}
	case EdgeWest:
		return grid.Coord{X: 0, Y: offset}
	case EdgeEast:
		return grid.Coord{X: dim.Width - 1, Y: offset}
	default:
		return grid.Coord{X: offset, Y: 0}
	}
}

func randomEdgeCell(dim grid.Dimensions, rnd *rng.Random) grid.Coord {
	edge := Edge(rnd.Intn(4))
	switch edge {
	case EdgeWest, EdgeEast:
		return EdgeCell(dim, edge, rnd.Intn(dim.Height))
	default:
		return EdgeCell(dim, edge, rnd.Intn(dim.Width))
	}
}

// ChooseStarts picks count boundary tiles. A draw that repeats an earlier start is redrawn up
// to retries times; after that the duplicate is kept.
func ChooseStarts(ctx context.Context, dim grid.Dimensions, count, retries int, rnd *rng.Random) []grid.Coord {
	if count <= 0 {
		return nil
	}
	profiler := profilerFromContext(ctx)
	starts := make([]grid.Coord, 0, count)
	used := make(map[grid.Coord]struct{}, count)
	for len(starts) < count {
		cell := randomEdgeCell(dim, rnd)
		for attempt := 0; attempt < retries; attempt++ {
			if _, dup := used[cell]; !dup {
				break
			}
			if profiler != nil {
				profiler.RecordStartRetry()
			}
			cell = randomEdgeCell(dim, rnd)
		}
		used[cell] = struct{}{}
		starts = append(starts, cell)
	}
	return starts
}
