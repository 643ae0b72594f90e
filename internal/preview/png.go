// Package preview renders finished arenas for inspection, as PNG images or in a terminal.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"arenagen/internal/arena"
	"arenagen/internal/grid"
	"arenagen/internal/placement"
)

const (
	previewCellSize     = 12
	previewAmbientLight = 0.35
	previewMarkerRadius = 4
)

// DefaultPalette is the colour scheme SavePNG and the terminal viewer use.
var DefaultPalette = Palette{
	Background: "#0a0a12",
	Low:        "#3b5b2a",
	High:       "#c9c2a3",
	Path:       "#b08850",
	Hub:        "#d23c3c",
	Spawn:      "#f0a030",
	Candidate:  "#3c78d2",
}

// Palette holds "#rrggbb" colours. Unparseable entries fall back to DefaultPalette.
type Palette struct {
	Background string
	Low        string
	High       string
	Path       string
	Hub        string
	Spawn      string
	Candidate  string
}

type resolvedPalette struct {
	background, low, high, path, hub, spawn, candidate color.NRGBA
}

func (p Palette) resolve() resolvedPalette {
	pick := func(value, fallback string) color.NRGBA {
		if col, ok := parseHexColor(value); ok {
			return col
		}
		col, _ := parseHexColor(fallback)
		return col
	}
	return resolvedPalette{
		background: pick(p.Background, DefaultPalette.Background),
		low:        pick(p.Low, DefaultPalette.Low),
		high:       pick(p.High, DefaultPalette.High),
		path:       pick(p.Path, DefaultPalette.Path),
		hub:        pick(p.Hub, DefaultPalette.Hub),
		spawn:      pick(p.Spawn, DefaultPalette.Spawn),
		candidate:  pick(p.Candidate, DefaultPalette.Candidate),
	}
}

// RenderImage draws a top-down view of a: terrain shaded by elevation, path tiles, the hub,
// spawn tiles and the given placement sites. North is up.
func RenderImage(a *arena.Arena, sites []placement.Site, palette Palette) (*image.NRGBA, error) {
	if a == nil {
		return nil, fmt.Errorf("arena is nil")
	}
	dim := a.Dimensions()
	if dim.Width <= 0 || dim.Height <= 0 {
		return nil, fmt.Errorf("invalid arena dimensions: %+v", dim)
	}

	colors := palette.resolve()
	img := image.NewNRGBA(image.Rect(0, 0, dim.Width*previewCellSize, dim.Height*previewCellSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{colors.background}, image.Point{}, draw.Src)

	field := a.HeightField()
	low, high := field.MinMax()
	span := high - low

	for y := 0; y < dim.Height; y++ {
		for x := 0; x < dim.Width; x++ {
			tile := grid.Coord{X: x, Y: y}
			var col color.NRGBA
			if a.IsPathTile(tile) {
				col = colors.path
			} else {
				t := 0.0
				if span > 0 {
					t = (field.TileCenterHeight(tile) - low) / span
				}
				col = applyLighting(blend(colors.low, colors.high, t), previewAmbientLight+0.65*t)
			}
			fillCell(img, dim, tile, col)
		}
	}

	for _, spawn := range spawnTiles(a) {
		fillCell(img, dim, spawn, colors.spawn)
	}
	fillCell(img, dim, a.Hub(), colors.hub)

	for _, site := range sites {
		cx, cy := cellOrigin(dim, site.Tile)
		cx += previewCellSize / 2
		cy += previewCellSize / 2
		fillPolygon(img, []image.Point{
			{X: cx, Y: cy - previewMarkerRadius},
			{X: cx + previewMarkerRadius, Y: cy},
			{X: cx, Y: cy + previewMarkerRadius},
			{X: cx - previewMarkerRadius, Y: cy},
		}, colors.candidate)
	}
	return img, nil
}

// SavePNG writes RenderImage output to outputDir/arena_<seed>.png and returns the file path.
func SavePNG(a *arena.Arena, sites []placement.Site, outputDir string) (string, error) {
	img, err := RenderImage(a, sites, DefaultPalette)
	if err != nil {
		return "", err
	}
	if err := ensurePreviewDir(outputDir); err != nil {
		return "", err
	}

	path := filepath.Join(outputDir, fmt.Sprintf("arena_%d.png", a.Seed))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create preview: %w", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encode preview: %w", err)
	}
	return path, nil
}

func spawnTiles(a *arena.Arena) []grid.Coord {
	paths := a.TilePaths()
	out := make([]grid.Coord, 0, len(paths))
	for _, path := range paths {
		if len(path) > 0 {
			out = append(out, path.Start())
		}
	}
	return out
}

func cellOrigin(dim grid.Dimensions, tile grid.Coord) (int, int) {
	return tile.X * previewCellSize, (dim.Height - 1 - tile.Y) * previewCellSize
}

func fillCell(img *image.NRGBA, dim grid.Dimensions, tile grid.Coord, col color.NRGBA) {
	x, y := cellOrigin(dim, tile)
	draw.Draw(img, image.Rect(x, y, x+previewCellSize, y+previewCellSize), &image.Uniform{col}, image.Point{}, draw.Src)
}

func blend(a, b color.NRGBA, t float64) color.NRGBA {
	t = clamp(t, 0, 1)
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

func parseHexColor(value string) (color.NRGBA, bool) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(trimmed) != 6 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

func applyLighting(base color.NRGBA, factor float64) color.NRGBA {
	factor = clamp(factor, 0, 1)
	r := uint8(math.Round(float64(base.R) * factor))
	g := uint8(math.Round(float64(base.G) * factor))
	b := uint8(math.Round(float64(base.B) * factor))
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// fillPolygon is a scanline fill clipped to the image bounds.
func fillPolygon(img *image.NRGBA, pts []image.Point, col color.NRGBA) {
	if len(pts) < 3 {
		return
	}
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	bounds := img.Bounds()
	minY = max(minY, bounds.Min.Y)
	maxY = min(maxY, bounds.Max.Y-1)

	crossings := make([]int, 0, len(pts))
	for y := minY; y <= maxY; y++ {
		crossings = crossings[:0]
		for i := range pts {
			j := (i + 1) % len(pts)
			x1, y1 := pts[i].X, pts[i].Y
			x2, y2 := pts[j].X, pts[j].Y
			if y1 == y2 || y < min(y1, y2) || y >= max(y1, y2) {
				continue
			}
			crossings = append(crossings, x1+(y-y1)*(x2-x1)/(y2-y1))
		}
		sort.Ints(crossings)
		for i := 0; i+1 < len(crossings); i += 2 {
			xStart := max(crossings[i], bounds.Min.X)
			xEnd := min(crossings[i+1], bounds.Max.X-1)
			for x := xStart; x <= xEnd; x++ {
				img.SetNRGBA(x, y, col)
			}
		}
	}
}

func ensurePreviewDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("output directory is empty")
	}
	return os.MkdirAll(dir, 0o755)
}
