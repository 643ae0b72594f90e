package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"arenagen/internal/arena"
	"arenagen/internal/config"
)

type profileOptions struct {
	passes      int
	concurrency int
	firstSeed   int64
	timeout     time.Duration
}

type profileReport struct {
	Passes        int64
	Failures      int64
	Timeouts      int64
	Paths         int64
	PathsReached  int64
	PathTiles     int64
	RecoveryMoves int64
	DeadEnds      int64
	CeilingHits   int64
	StartRetries  int64
	Candidates    int64
	TotalDuration time.Duration
	Wall          time.Duration
}

func main() {
	var (
		cfgPath     = flag.String("config", "", "path to arena configuration file (JSON or YAML)")
		passes      = flag.Int("passes", 200, "number of generation passes to run")
		concurrency = flag.Int("concurrency", runtime.NumCPU(), "number of concurrent workers")
		seed        = flag.Int64("seed", 1, "seed of the first pass; later passes count upward")
		timeout     = flag.Duration("timeout", 0, "per-pass timeout, overriding generation.timeout")
		verbose     = flag.Bool("v", false, "keep per-pass generation logs")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	report, err := runProfile(context.Background(), cfg, profileOptions{
		passes:      *passes,
		concurrency: *concurrency,
		firstSeed:   *seed,
		timeout:     *timeout,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	printReport(os.Stdout, cfg, *concurrency, report)
}

func runProfile(ctx context.Context, cfg *config.Config, opts profileOptions) (profileReport, error) {
	if opts.passes <= 0 {
		return profileReport{}, errors.New("passes must be positive")
	}
	if opts.concurrency <= 0 {
		return profileReport{}, errors.New("concurrency must be positive")
	}
	if opts.timeout > 0 {
		copied := *cfg
		copied.Generation.Timeout = config.Duration(opts.timeout)
		cfg = &copied
	}

	// Generators serialise their own passes, so each worker gets one.
	generators := make([]*arena.Generator, opts.concurrency)
	for i := range generators {
		gen, err := arena.NewGenerator(cfg)
		if err != nil {
			return profileReport{}, fmt.Errorf("initialise generator: %w", err)
		}
		generators[i] = gen
	}

	seeds := make(chan int64)
	go func() {
		defer close(seeds)
		for i := 0; i < opts.passes; i++ {
			select {
			case seeds <- opts.firstSeed + int64(i):
			case <-ctx.Done():
				return
			}
		}
	}()

	var (
		wg                                                  sync.WaitGroup
		passes, failures, timeouts                          atomic.Int64
		paths, reached, pathTiles                           atomic.Int64
		recoveries, deadEnds, ceilingHits, retries, offered atomic.Int64
		totalDuration                                       atomic.Int64
	)

	worker := func(gen *arena.Generator) {
		defer wg.Done()
		for seed := range seeds {
			start := time.Now()
			a, err := gen.Regenerate(ctx, seed)
			totalDuration.Add(int64(time.Since(start)))
			passes.Add(1)
			if errors.Is(err, context.DeadlineExceeded) {
				timeouts.Add(1)
				continue
			}
			if err != nil {
				failures.Add(1)
				continue
			}
			stats := a.Stats
			paths.Add(int64(stats.PathCount))
			reached.Add(int64(stats.PathsReached))
			pathTiles.Add(int64(len(a.PathTiles())))
			recoveries.Add(stats.Carve.RecoveryMoves)
			deadEnds.Add(stats.Carve.DeadEnds)
			ceilingHits.Add(stats.Carve.CeilingHits)
			retries.Add(stats.Carve.StartRetries)
			offered.Add(int64(len(a.DefaultPlacementSites())))
		}
	}

	startWall := time.Now()
	wg.Add(len(generators))
	for _, gen := range generators {
		go worker(gen)
	}
	wg.Wait()

	return profileReport{
		Passes:        passes.Load(),
		Failures:      failures.Load(),
		Timeouts:      timeouts.Load(),
		Paths:         paths.Load(),
		PathsReached:  reached.Load(),
		PathTiles:     pathTiles.Load(),
		RecoveryMoves: recoveries.Load(),
		DeadEnds:      deadEnds.Load(),
		CeilingHits:   ceilingHits.Load(),
		StartRetries:  retries.Load(),
		Candidates:    offered.Load(),
		TotalDuration: time.Duration(totalDuration.Load()),
		Wall:          time.Since(startWall),
	}, ctx.Err()
}

func printReport(w io.Writer, cfg *config.Config, concurrency int, r profileReport) {
	perPass := func(v int64) float64 {
		if r.Passes == 0 {
			return 0
		}
		return float64(v) / float64(r.Passes)
	}
	reachRatio := 0.0
	if r.Paths > 0 {
		reachRatio = float64(r.PathsReached) / float64(r.Paths) * 100
	}
	avgDuration := time.Duration(0)
	if r.Passes > 0 {
		avgDuration = r.TotalDuration / time.Duration(r.Passes)
	}

	fmt.Fprintln(w, "== Arena Generation Profile ==")
	fmt.Fprintf(w, "Arena: %dx%d tiles, noise %s\n", cfg.Arena.Width, cfg.Arena.Height, cfg.Terrain.Noise)
	fmt.Fprintf(w, "Passes: %d, Concurrency: %d\n", r.Passes, concurrency)
	fmt.Fprintf(w, "Failures: %d, Timeouts: %d\n", r.Failures, r.Timeouts)
	fmt.Fprintf(w, "Paths reaching hub: %.2f%% (%d of %d)\n", reachRatio, r.PathsReached, r.Paths)
	fmt.Fprintf(w, "Average path tiles: %.2f\n", perPass(r.PathTiles))
	fmt.Fprintf(w, "Average recovery moves: %.2f\n", perPass(r.RecoveryMoves))
	fmt.Fprintf(w, "Average dead ends: %.2f, ceiling hits: %.2f\n", perPass(r.DeadEnds), perPass(r.CeilingHits))
	fmt.Fprintf(w, "Average start retries: %.2f\n", perPass(r.StartRetries))
	fmt.Fprintf(w, "Average placement candidates: %.2f\n", perPass(r.Candidates))
	fmt.Fprintf(w, "Average per-pass duration: %s\n", avgDuration)
	fmt.Fprintf(w, "Wall clock duration: %s\n", r.Wall)
}
