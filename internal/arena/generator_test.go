package arena

import (
	"bytes"
	"context"
	"errors"
	"log"
	"reflect"
	"strings"
	"testing"

	"arenagen/internal/config"
	"arenagen/internal/grid"
)

func exampleConfig() *config.Config {
	cfg := config.Default()
	cfg.Arena.Width = 20
	cfg.Arena.Height = 20
	cfg.Arena.TileSize = 1
	cfg.Terrain.Seed = 42
	cfg.Paths.MinCount = 3
	cfg.Paths.MaxCount = 0
	cfg.Placement.MinSpacing = 2
	return cfg
}

func generate(t *testing.T, cfg *config.Config) *Arena {
	t.Helper()
	gen, err := NewGenerator(cfg)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	a, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return a
}

func quietLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	originalWriter := log.Writer()
	originalFlags := log.Flags()
	originalPrefix := log.Prefix()
	log.SetFlags(0)
	log.SetPrefix("")
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetOutput(originalWriter)
		log.SetPrefix(originalPrefix)
		log.SetFlags(originalFlags)
	})
	return &buf
}

func onBoundary(c grid.Coord, dim grid.Dimensions) bool {
	return c.X == 0 || c.Y == 0 || c.X == dim.Width-1 || c.Y == dim.Height-1
}

func TestGenerateExampleArena(t *testing.T) {
	quietLogs(t)
	a := generate(t, exampleConfig())
	dim := a.Dimensions()

	if got := a.Hub(); got != (grid.Coord{X: 10, Y: 10}) {
		t.Fatalf("unexpected hub %v", got)
	}
	hub := a.HubPosition()
	if hub.X != 10.5 || hub.Z != 10.5 {
		t.Fatalf("unexpected hub position %+v", hub)
	}

	paths := a.TilePaths()
	if len(paths) != 3 {
		t.Fatalf("expected 3 paths, got %d", len(paths))
	}
	if got := len(a.SpawnPositions()); got != 3 {
		t.Fatalf("expected 3 spawn positions, got %d", got)
	}
	for i, path := range paths {
		if len(path) == 0 {
			t.Fatalf("path %d is empty", i)
		}
		if !onBoundary(path.Start(), dim) {
			t.Fatalf("path %d starts off the boundary at %v", i, path.Start())
		}
		if !path.Connected() {
			t.Fatalf("path %d is not 4-connected", i)
		}
		for _, tile := range path {
			if !dim.InTile(tile) {
				t.Fatalf("path %d leaves the grid at %v", i, tile)
			}
			if !a.IsPathTile(tile) {
				t.Fatalf("path %d tile %v missing from the path grid", i, tile)
			}
		}
	}

	m := a.Mesh()
	if got, want := len(m.Vertices), 21*21; got != want {
		t.Fatalf("vertex count: got %d want %d", got, want)
	}
	if got, want := len(m.Triangles), 6*20*20; got != want {
		t.Fatalf("index count: got %d want %d", got, want)
	}

	nodes := a.GetCandidatePlacementNodes(16, 0.8, 1.5)
	if len(nodes) > 16 {
		t.Fatalf("too many candidates: %d", len(nodes))
	}
	pathTiles := a.PathTiles()
	for i, node := range nodes {
		if node.Y < 0.8 {
			t.Fatalf("candidate %d below min height: %+v", i, node)
		}
		for _, tile := range pathTiles {
			centre := grid.TileCenter(tile, 1, 0)
			if d := node.HorizontalDistance(centre); d < 1.5 {
				t.Fatalf("candidate %d only %f from path tile %v", i, d, tile)
			}
		}
		for j := 0; j < i; j++ {
			if d := node.HorizontalDistance(nodes[j]); d < 2 {
				t.Fatalf("candidates %d and %d only %f apart", i, j, d)
			}
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	quietLogs(t)
	first := generate(t, exampleConfig())
	second := generate(t, exampleConfig())

	if first.ID == second.ID {
		t.Fatalf("expected distinct pass ids")
	}
	if !reflect.DeepEqual(first.TilePaths(), second.TilePaths()) {
		t.Fatalf("paths differ between identical passes")
	}
	if !reflect.DeepEqual(first.HeightField().Values(), second.HeightField().Values()) {
		t.Fatalf("heightfields differ between identical passes")
	}
	if !reflect.DeepEqual(first.PathTiles(), second.PathTiles()) {
		t.Fatalf("path tiles differ between identical passes")
	}
	a := first.GetCandidatePlacementNodes(16, 0.8, 1.5)
	b := second.GetCandidatePlacementNodes(16, 0.8, 1.5)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("candidates differ between identical passes")
	}
}

func TestCandidatePlacementNodesRepeatable(t *testing.T) {
	quietLogs(t)
	a := generate(t, exampleConfig())
	first := a.GetCandidatePlacementNodes(16, 0.8, 1.5)
	second := a.GetCandidatePlacementNodes(16, 0.8, 1.5)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated calls disagree:\n%v\n%v", first, second)
	}
	if got := a.GetCandidatePlacementNodes(0, 0.8, 1.5); len(got) != 0 {
		t.Fatalf("expected no candidates for zero desired, got %d", len(got))
	}
	if got := a.GetCandidatePlacementNodes(-4, 0, 0); len(got) != 0 {
		t.Fatalf("expected no candidates for negative desired, got %d", len(got))
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	quietLogs(t)
	gen, err := NewGenerator(exampleConfig())
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	one, err := gen.Regenerate(context.Background(), 1)
	if err != nil {
		t.Fatalf("regenerate seed 1: %v", err)
	}
	two, err := gen.Regenerate(context.Background(), 2)
	if err != nil {
		t.Fatalf("regenerate seed 2: %v", err)
	}
	if one.Seed != 1 || two.Seed != 2 {
		t.Fatalf("unexpected seeds %d and %d", one.Seed, two.Seed)
	}
	if reflect.DeepEqual(one.HeightField().Values(), two.HeightField().Values()) {
		t.Fatalf("seeds 1 and 2 produced identical terrain")
	}
}

func TestShapedTerrainMatchesPathFootprint(t *testing.T) {
	quietLogs(t)
	for _, radius := range []int{0, 1, 2} {
		cfg := exampleConfig()
		cfg.Shaping.WidenRadius = radius
		a := generate(t, cfg)
		field := a.HeightField()
		dim := a.Dimensions()
		for y := 0; y <= dim.Height; y++ {
			for x := 0; x <= dim.Width; x++ {
				tile := dim.ClampTile(grid.Coord{X: x, Y: y})
				if a.IsPathTile(tile) && field.At(x, y) > cfg.Shaping.FlattenHeight {
					t.Fatalf("radius %d: vertex (%d,%d) on path tile %v at %f above flatten height",
						radius, x, y, tile, field.At(x, y))
				}
				if v := field.At(x, y); v < 0 || v > cfg.Terrain.ElevationScale {
					t.Fatalf("radius %d: vertex (%d,%d) elevation %f out of range", radius, x, y, v)
				}
			}
		}
		if radius == 0 {
			continue
		}
		// With a positive radius every corner of an original path tile is flattened.
		for i, path := range a.Paths() {
			for j, waypoint := range path {
				if waypoint.Y > cfg.Shaping.FlattenHeight {
					t.Fatalf("radius %d: path %d waypoint %d at %f above flatten height", radius, i, j, waypoint.Y)
				}
			}
		}
	}
}

func TestFlatTerrainPathsReachHub(t *testing.T) {
	quietLogs(t)
	cfg := exampleConfig()
	cfg.Terrain.NoiseScale = 0
	cfg.Paths.MinCount = 4
	cfg.Paths.MaxCount = 4
	a := generate(t, cfg)
	for i, path := range a.TilePaths() {
		if !path.Reaches(a.Hub()) {
			t.Fatalf("path %d stopped at %v short of the hub", i, path.End())
		}
	}
	if a.Stats.PathsReached != 4 {
		t.Fatalf("expected 4 paths to reach the hub, got %d", a.Stats.PathsReached)
	}
	if a.Stats.Carve.RecoveryMoves != 0 {
		t.Fatalf("flat terrain should not need recovery moves, got %d", a.Stats.Carve.RecoveryMoves)
	}
}

func TestPathCountRange(t *testing.T) {
	quietLogs(t)
	cfg := exampleConfig()
	cfg.Paths.MinCount = 2
	cfg.Paths.MaxCount = 5
	gen, err := NewGenerator(cfg)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	for seed := int64(0); seed < 10; seed++ {
		a, err := gen.Regenerate(context.Background(), seed)
		if err != nil {
			t.Fatalf("regenerate %d: %v", seed, err)
		}
		if n := len(a.TilePaths()); n < 2 || n > 5 {
			t.Fatalf("seed %d: path count %d outside [2,5]", seed, n)
		}
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	quietLogs(t)
	a := generate(t, exampleConfig())

	field := a.HeightField()
	field.Set(3, 3, 99)
	if a.HeightField().At(3, 3) == 99 {
		t.Fatalf("heightfield accessor leaked internal state")
	}

	tiles := a.TileGrid()
	target := grid.Coord{X: 0, Y: 0}
	was := a.IsPathTile(target)
	tiles.Set(target, !was)
	if a.IsPathTile(target) != was {
		t.Fatalf("tile grid accessor leaked internal state")
	}

	m := a.Mesh()
	m.Triangles[0] = -1
	if a.Mesh().Triangles[0] == -1 {
		t.Fatalf("mesh accessor leaked internal state")
	}
}

func TestGenerateCancelledContext(t *testing.T) {
	quietLogs(t)
	gen, err := NewGenerator(exampleConfig())
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a, err := gen.Generate(ctx)
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if a != nil {
		t.Fatalf("expected cancelled pass to discard its arena")
	}
}

func TestNewGeneratorRejectsInvalidConfig(t *testing.T) {
	cfg := exampleConfig()
	cfg.Arena.Width = 0
	if _, err := NewGenerator(cfg); err == nil || !strings.Contains(err.Error(), "arena dimensions must be positive") {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg = exampleConfig()
	cfg.Terrain.ElevationScale = -1
	if _, err := NewGenerator(cfg); err == nil {
		t.Fatalf("expected negative elevation scale to be rejected")
	}
}

func TestNewGeneratorNilConfigUsesDefaults(t *testing.T) {
	gen, err := NewGenerator(nil)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	if got, want := gen.Config(), *config.Default(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected default config, got %#v", got)
	}
}

func TestGenerateLogsStages(t *testing.T) {
	buf := quietLogs(t)
	a := generate(t, exampleConfig())

	output := buf.String()
	for i, stage := range []string{"heightfield", "paths", "shaping", "mesh", "placement"} {
		want := "generation stage " + stage + " ("
		if !strings.Contains(output, want) {
			t.Fatalf("expected log for stage %d %q, got:\n%s", i, stage, output)
		}
	}
	if !strings.Contains(output, "arena "+a.ID.String()+" generated") {
		t.Fatalf("expected summary log, got:\n%s", output)
	}
	if len(a.Stats.Stages) != 5 {
		t.Fatalf("expected 5 stage timings, got %d", len(a.Stats.Stages))
	}
}

func TestSingleTileArena(t *testing.T) {
	quietLogs(t)
	cfg := exampleConfig()
	cfg.Arena.Width = 1
	cfg.Arena.Height = 1
	a := generate(t, cfg)
	if a.Hub() != (grid.Coord{}) {
		t.Fatalf("unexpected hub %v", a.Hub())
	}
	for i, path := range a.TilePaths() {
		if len(path) != 1 || path[0] != (grid.Coord{}) {
			t.Fatalf("path %d should be the single tile, got %v", i, path)
		}
	}
	if got := a.GetCandidatePlacementNodes(5, 0, 0); len(got) != 0 {
		t.Fatalf("expected no room for candidates, got %v", got)
	}
}
