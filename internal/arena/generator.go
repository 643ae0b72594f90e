package arena

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
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

var stageNames = [...]string{"heightfield", "paths", "shaping", "mesh", "placement"}

// Generator turns a configuration into arenas. Passes are serialised; each builds its own
// grids and never touches an arena handed out earlier.
type Generator struct {
	mu    sync.Mutex
	cfg   config.Config
	noise terrain.NoiseKind
}

// NewGenerator validates cfg up front so generation fails fast on bad input. A nil cfg uses
// the defaults.
func NewGenerator(cfg *config.Config) (*Generator, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	noise, err := terrain.ParseNoiseKind(cfg.Terrain.Noise)
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &Generator{cfg: *cfg, noise: noise}, nil
}

// Config returns a copy of the generator's configuration.
func (g *Generator) Config() config.Config {
	return g.cfg
}

// Generate runs a pass with the configured seed.
func (g *Generator) Generate(ctx context.Context) (*Arena, error) {
	return g.Regenerate(ctx, g.cfg.Terrain.Seed)
}

// Regenerate runs a pass with seed in place of the configured one. A cancelled or expired
// context discards the partial result and returns the context's error.
func (g *Generator) Regenerate(ctx context.Context, seed int64) (*Arena, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if timeout := g.cfg.Generation.Timeout.Duration(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return g.run(ctx, seed)
}

type stageClock struct {
	id      uuid.UUID
	index   int
	started time.Time
	timings []StageTiming
}

func (c *stageClock) begin() {
	if c.index > 0 {
		c.finish()
	}
	c.started = time.Now()
	log.Printf("arena %s generation stage %s (%d/%d)", c.id, stageNames[c.index], c.index+1, len(stageNames))
	c.index++
}

func (c *stageClock) finish() {
	c.timings = append(c.timings, StageTiming{Name: stageNames[c.index-1], Duration: time.Since(c.started)})
}

func (g *Generator) run(ctx context.Context, seed int64) (*Arena, error) {
	cfg := g.cfg
	id := uuid.New()
	began := time.Now()
	clock := &stageClock{id: id}
	dim := grid.Dimensions{Width: cfg.Arena.Width, Height: cfg.Arena.Height}
	rnd := rng.New(seed)

	var metrics pathfinding.CarveMetrics
	carveCtx := pathfinding.ContextWithProfiler(ctx, metrics.Profiler())

	clock.begin()
	field, err := terrain.Synthesize(dim, terrain.Params{
		Noise:          g.noise,
		NoiseScale:     cfg.Terrain.NoiseScale,
		ElevationScale: cfg.Terrain.ElevationScale,
		OffsetRange:    cfg.Terrain.OffsetRange,
		Octaves:        cfg.Terrain.Octaves,
		Persistence:    cfg.Terrain.Persistence,
		Lacunarity:     cfg.Terrain.Lacunarity,
	}, rnd)
	if err != nil {
		return nil, fmt.Errorf("synthesize heightfield: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, cancelled(id, err)
	}

	clock.begin()
	hub := pathfinding.Hub(dim)
	count := rnd.IntRange(cfg.Paths.MinCount, cfg.Paths.MaxCount)
	starts := pathfinding.ChooseStarts(carveCtx, dim, count, cfg.Paths.StartRetries, rnd)
	carver := pathfinding.NewCarver(field, pathfinding.CarveParams{
		SlopeWeight:       cfg.Paths.SlopeWeight,
		Jitter:            cfg.Paths.Jitter,
		MaxStepSlope:      cfg.Paths.MaxStepSlope,
		StepCeilingFactor: cfg.Paths.StepCeilingFactor,
	})
	paths := make([]pathfinding.Path, 0, len(starts))
	for _, start := range starts {
		paths = append(paths, carver.Carve(carveCtx, start, hub, rnd))
		if err := ctx.Err(); err != nil {
			return nil, cancelled(id, err)
		}
	}
	set, err := pathfinding.NewPathSet(dim, paths)
	if err != nil {
		return nil, fmt.Errorf("collect path tiles: %w", err)
	}

	clock.begin()
	tiles, shapeStats, err := terrain.Shape(field, set.Tiles, terrain.ShapeParams{
		Radius:        cfg.Shaping.WidenRadius,
		FlattenHeight: cfg.Shaping.FlattenHeight,
	})
	if err != nil {
		return nil, fmt.Errorf("shape terrain: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, cancelled(id, err)
	}

	clock.begin()
	m, err := mesh.Build(field, cfg.Arena.TileSize)
	if err != nil {
		return nil, fmt.Errorf("build mesh: %w", err)
	}

	clock.begin()
	sampler, err := placement.NewSampler(field, tiles, cfg.Arena.TileSize, cfg.Placement.MinSpacing)
	if err != nil {
		return nil, fmt.Errorf("prepare placement: %w", err)
	}
	clock.finish()
	if err := ctx.Err(); err != nil {
		return nil, cancelled(id, err)
	}

	reached := 0
	for _, path := range paths {
		if path.Reaches(hub) {
			reached++
		}
	}

	a := &Arena{
		ID:       id,
		Seed:     seed,
		TileSize: cfg.Arena.TileSize,
		Stats: Stats{
			PathCount:    len(paths),
			PathsReached: reached,
			Carve:        metrics.Snapshot(),
			Shape:        shapeStats,
			Stages:       clock.timings,
			Total:        time.Since(began),
		},
		dim:       dim,
		hub:       hub,
		paths:     paths,
		field:     field,
		tiles:     tiles,
		mesh:      m,
		sampler:   sampler,
		placement: cfg.Placement,
	}

	log.Printf("arena %s generated: seed %d, %dx%d tiles, %d/%d paths reached hub, %d path tiles, %d recovery moves, %s",
		id, seed, dim.Width, dim.Height, reached, len(paths), tiles.Count(), a.Stats.Carve.RecoveryMoves,
		a.Stats.Total.Round(time.Microsecond))
	return a, nil
}

func cancelled(id uuid.UUID, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("arena %s generation timed out: %w", id, err)
	}
	return fmt.Errorf("arena %s generation cancelled: %w", id, err)
}
