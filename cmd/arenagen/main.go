package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"arenagen/internal/arena"
	"arenagen/internal/config"
	"arenagen/internal/placement"
	"arenagen/internal/preview"

	"github.com/gdamore/tcell/v2"
)

type options struct {
	cfgPath    string
	seed       int64
	seedSet    bool
	previewDir string
	outPath    string
	withMesh   bool
	view       bool
	candidates int
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("arenagen", flag.ContinueOnError)
	fs.StringVar(&opts.cfgPath, "config", "", "path to arena configuration file (JSON or YAML)")
	fs.Int64Var(&opts.seed, "seed", 0, "override the configured terrain seed")
	fs.StringVar(&opts.previewDir, "preview", "", "directory to write a PNG preview into")
	fs.StringVar(&opts.outPath, "out", "", "write the arena as JSON to this file")
	fs.BoolVar(&opts.withMesh, "mesh", false, "include the terrain mesh in -out")
	fs.BoolVar(&opts.view, "view", false, "show the arena in the terminal")
	fs.IntVar(&opts.candidates, "candidates", -1, "number of placement candidates (default from config)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			opts.seedSet = true
		}
	})
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if wrote, err := writeConfigFromEnv(opts.cfgPath); err != nil {
		log.Fatalf("sync env config: %v", err)
	} else if wrote {
		log.Printf("wrote environment supplied config to %s", opts.cfgPath)
	}

	cfg, err := config.Load(opts.cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if opts.seedSet {
		cfg.Terrain.Seed = opts.seed
	}

	gen, err := arena.NewGenerator(cfg)
	if err != nil {
		log.Fatalf("initialise generator: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	a, err := gen.Generate(ctx)
	if err != nil {
		log.Fatalf("generate arena: %v", err)
	}

	desired := opts.candidates
	if desired < 0 {
		desired = cfg.Placement.DefaultCount
	}
	sites := a.PlacementSites(desired, cfg.Placement.MinHeight, cfg.Placement.MinPathDistance)
	log.Printf("arena %s: %d of %d placement candidates, spacing %.2f", a.ID, len(sites), desired, a.PlacementSpacing())

	if err := writeOutputs(a, sites, opts); err != nil {
		log.Fatalf("%v", err)
	}

	if opts.view {
		if err := runViewer(ctx, a, sites); err != nil {
			log.Fatalf("terminal view: %v", err)
		}
	}
}

func writeOutputs(a *arena.Arena, sites []placement.Site, opts options) error {
	if opts.previewDir != "" {
		path, err := preview.SavePNG(a, sites, opts.previewDir)
		if err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
		log.Printf("arena %s preview written to %s", a.ID, path)
	}
	if opts.outPath != "" {
		if dir := filepath.Dir(opts.outPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
		}
		file, err := os.Create(opts.outPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer file.Close()
		if err := arena.WriteJSON(file, a.Snapshot(sites, opts.withMesh)); err != nil {
			return err
		}
		log.Printf("arena %s written to %s", a.ID, opts.outPath)
	}
	return nil
}

func runViewer(ctx context.Context, a *arena.Arena, sites []placement.Site) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	return preview.View(ctx, screen, a, sites)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
			return
		}

		time.AfterFunc(10*time.Second, func() {
			log.Printf("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	return ctx, cancel
}
