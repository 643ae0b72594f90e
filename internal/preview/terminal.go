package preview

import (
	"context"
	"fmt"
	"image/color"

	"arenagen/internal/arena"
	"arenagen/internal/grid"
	"arenagen/internal/placement"

	"github.com/gdamore/tcell/v2"
)

const (
	RuneHub       = 'H'
	RuneSpawn     = 'S'
	RunePath      = '#'
	RuneCandidate = '*'
)

// terrainRunes run from lowest to highest elevation band.
var terrainRunes = []rune{'.', ':', '-', '=', '+', '^'}

// DrawTerminal renders a one cell per tile top-down map with north up, clipped to the
// screen, followed by a status line when there is room. It does not call Show.
func DrawTerminal(screen tcell.Screen, a *arena.Arena, sites []placement.Site) {
	colors := DefaultPalette.resolve()
	screen.Clear()

	dim := a.Dimensions()
	field := a.HeightField()
	low, high := field.MinMax()
	span := high - low
	width, height := screen.Size()

	background := rgb(colors.background)
	for y := 0; y < dim.Height; y++ {
		row := dim.Height - 1 - y
		if row >= height {
			continue
		}
		for x := 0; x < dim.Width && x < width; x++ {
			tile := grid.Coord{X: x, Y: y}
			if a.IsPathTile(tile) {
				screen.SetContent(x, row, RunePath, nil, tcell.StyleDefault.Foreground(rgb(colors.path)).Background(background))
				continue
			}
			t := 0.0
			if span > 0 {
				t = (field.TileCenterHeight(tile) - low) / span
			}
			band := min(int(t*float64(len(terrainRunes))), len(terrainRunes)-1)
			fg := rgb(applyLighting(blend(colors.low, colors.high, t), previewAmbientLight+0.65*t))
			screen.SetContent(x, row, terrainRunes[band], nil, tcell.StyleDefault.Foreground(fg).Background(background))
		}
	}

	mark := func(tile grid.Coord, r rune, col color.NRGBA) {
		x, row := tile.X, dim.Height-1-tile.Y
		if x < width && row < height {
			screen.SetContent(x, row, r, nil, tcell.StyleDefault.Foreground(rgb(col)).Background(background).Bold(true))
		}
	}
	for _, spawn := range spawnTiles(a) {
		mark(spawn, RuneSpawn, colors.spawn)
	}
	for _, site := range sites {
		mark(site.Tile, RuneCandidate, colors.candidate)
	}
	mark(a.Hub(), RuneHub, colors.hub)

	if dim.Height < height {
		status := fmt.Sprintf("seed %d  %dx%d  paths %d/%d  sites %d  esc/q quits",
			a.Seed, dim.Width, dim.Height, a.Stats.PathsReached, a.Stats.PathCount, len(sites))
		for i, r := range status {
			if i >= width {
				break
			}
			screen.SetContent(i, dim.Height, r, nil, tcell.StyleDefault)
		}
	}
}

// View draws the arena and blocks until the user presses Escape, q or Ctrl-C, or ctx ends.
// The caller owns the screen: it must Init it beforehand and Fini it afterwards.
func View(ctx context.Context, screen tcell.Screen, a *arena.Arena, sites []placement.Site) error {
	if a == nil {
		return fmt.Errorf("arena is nil")
	}
	DrawTerminal(screen, a, sites)
	screen.Show()

	done := make(chan struct{})
	defer close(done)
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					return nil
				}
			case *tcell.EventResize:
				screen.Sync()
				DrawTerminal(screen, a, sites)
				screen.Show()
			}
		}
	}
}

func rgb(c color.NRGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
