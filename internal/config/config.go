package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a JSON and YAML friendly wrapper around time.Duration that accepts human
// readable strings such as "5s" in configuration files while still allowing numeric
// representations when necessary.
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalJSON encodes the duration using the canonical string representation.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON decodes a duration from either a string (e.g. "250ms") or a
// numeric value representing nanoseconds. Empty strings and null values decode
// to zero.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("duration: empty value")
	}
	if string(b) == "null" {
		*d = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("duration: decode string: %w", err)
		}
		return d.parse(s)
	}
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*d = Duration(time.Duration(f))
		return nil
	}
	return fmt.Errorf("duration: invalid value %s", string(b))
}

// MarshalYAML encodes the duration using the canonical string representation.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML accepts the same forms as UnmarshalJSON.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration: expected scalar, got kind %d", value.Kind)
	}
	if value.Tag == "!!int" {
		var n int64
		if err := value.Decode(&n); err != nil {
			return fmt.Errorf("duration: decode int: %w", err)
		}
		*d = Duration(time.Duration(n))
		return nil
	}
	if value.Tag == "!!null" {
		*d = 0
		return nil
	}
	return d.parse(value.Value)
}

func (d *Duration) parse(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration: parse %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config captures every tunable of an arena generation pass.
type Config struct {
	Arena      ArenaConfig      `json:"arena" yaml:"arena"`
	Terrain    TerrainConfig    `json:"terrain" yaml:"terrain"`
	Paths      PathConfig       `json:"paths" yaml:"paths"`
	Shaping    ShapingConfig    `json:"shaping" yaml:"shaping"`
	Placement  PlacementConfig  `json:"placement" yaml:"placement"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
}

type ArenaConfig struct {
	Width    int     `json:"width" yaml:"width"`       // tiles along X
	Height   int     `json:"height" yaml:"height"`     // tiles along Z
	TileSize float64 `json:"tileSize" yaml:"tileSize"` // world units per tile
}

type TerrainConfig struct {
	Seed           int64   `json:"seed" yaml:"seed"`
	Noise          string  `json:"noise" yaml:"noise"` // simplex, perlin or value
	NoiseScale     float64 `json:"noiseScale" yaml:"noiseScale"`
	ElevationScale float64 `json:"elevationScale" yaml:"elevationScale"`
	OffsetRange    float64 `json:"offsetRange" yaml:"offsetRange"`
	Octaves        int     `json:"octaves" yaml:"octaves"`
	Persistence    float64 `json:"persistence" yaml:"persistence"`
	Lacunarity     float64 `json:"lacunarity" yaml:"lacunarity"`
}

type PathConfig struct {
	MinCount          int     `json:"minCount" yaml:"minCount"`
	MaxCount          int     `json:"maxCount" yaml:"maxCount"` // 0 pins the count to minCount
	SlopeWeight       float64 `json:"slopeWeight" yaml:"slopeWeight"`
	Jitter            float64 `json:"jitter" yaml:"jitter"`
	MaxStepSlope      float64 `json:"maxStepSlope" yaml:"maxStepSlope"` // 0 disables the limit
	StartRetries      int     `json:"startRetries" yaml:"startRetries"`
	StepCeilingFactor int     `json:"stepCeilingFactor" yaml:"stepCeilingFactor"`
}

type ShapingConfig struct {
	WidenRadius   int     `json:"widenRadius" yaml:"widenRadius"`
	FlattenHeight float64 `json:"flattenHeight" yaml:"flattenHeight"`
}

type PlacementConfig struct {
	MinSpacing      float64 `json:"minSpacing" yaml:"minSpacing"` // tiles
	DefaultCount    int     `json:"defaultCount" yaml:"defaultCount"`
	MinHeight       float64 `json:"minHeight" yaml:"minHeight"`
	MinPathDistance float64 `json:"minPathDistance" yaml:"minPathDistance"`
}

type GenerationConfig struct {
	Timeout Duration `json:"timeout" yaml:"timeout"` // 0 waits indefinitely
}

// Load reads configuration from a JSON or YAML file if provided. An empty path returns
// defaults. Files ending in .yaml or .yml are decoded as YAML.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := Decode(data, IsYAMLPath(path), cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Decode overlays data onto cfg.
func Decode(data []byte, isYAML bool, cfg *Config) error {
	if isYAML {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config yaml: %w", err)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// IsYAMLPath reports whether a path names a YAML document.
func IsYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Arena: ArenaConfig{
			Width:    20,
			Height:   20,
			TileSize: 1,
		},
		Terrain: TerrainConfig{
			Seed:           42,
			Noise:          "simplex",
			NoiseScale:     3,
			ElevationScale: 3,
			OffsetRange:    10_000,
			Octaves:        1,
			Persistence:    0.5,
			Lacunarity:     2,
		},
		Paths: PathConfig{
			MinCount:          3,
			MaxCount:          0,
			SlopeWeight:       4,
			Jitter:            0.35,
			MaxStepSlope:      1,
			StartRetries:      10,
			StepCeilingFactor: 4,
		},
		Shaping: ShapingConfig{
			WidenRadius:   1,
			FlattenHeight: 0.5,
		},
		Placement: PlacementConfig{
			MinSpacing:      2,
			DefaultCount:    16,
			MinHeight:       0.8,
			MinPathDistance: 1.5,
		},
		Generation: GenerationConfig{
			Timeout: Duration(5 * time.Second),
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Arena.Width <= 0 || c.Arena.Height <= 0 {
		return errors.New("arena dimensions must be positive")
	}
	for _, field := range []struct {
		name  string
		value float64
	}{
		{"arena.tileSize", c.Arena.TileSize},
		{"terrain.noiseScale", c.Terrain.NoiseScale},
		{"terrain.elevationScale", c.Terrain.ElevationScale},
		{"terrain.offsetRange", c.Terrain.OffsetRange},
		{"terrain.persistence", c.Terrain.Persistence},
		{"terrain.lacunarity", c.Terrain.Lacunarity},
		{"paths.slopeWeight", c.Paths.SlopeWeight},
		{"paths.jitter", c.Paths.Jitter},
		{"paths.maxStepSlope", c.Paths.MaxStepSlope},
		{"shaping.flattenHeight", c.Shaping.FlattenHeight},
		{"placement.minSpacing", c.Placement.MinSpacing},
		{"placement.minHeight", c.Placement.MinHeight},
		{"placement.minPathDistance", c.Placement.MinPathDistance},
	} {
		if math.IsNaN(field.value) || math.IsInf(field.value, 0) {
			return fmt.Errorf("%s must be finite", field.name)
		}
	}
	if c.Arena.TileSize <= 0 {
		return errors.New("arena.tileSize must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(c.Terrain.Noise)) {
	case "", "simplex", "perlin", "value":
	default:
		return errors.New("terrain.noise must be one of simplex, perlin, value")
	}
	if c.Terrain.ElevationScale < 0 {
		return errors.New("terrain.elevationScale cannot be negative")
	}
	if c.Terrain.OffsetRange < 0 {
		return errors.New("terrain.offsetRange cannot be negative")
	}
	if c.Terrain.Octaves < 0 {
		return errors.New("terrain.octaves cannot be negative")
	}
	if c.Paths.MinCount < 1 {
		return errors.New("paths.minCount must be at least 1")
	}
	if c.Paths.MaxCount != 0 && c.Paths.MaxCount < c.Paths.MinCount {
		return errors.New("paths.maxCount must be 0 or >= paths.minCount")
	}
	if c.Paths.SlopeWeight < 0 || c.Paths.Jitter < 0 || c.Paths.MaxStepSlope < 0 {
		return errors.New("paths slope weight, jitter and max step slope cannot be negative")
	}
	if c.Paths.StartRetries < 0 {
		return errors.New("paths.startRetries cannot be negative")
	}
	if c.Paths.StepCeilingFactor < 0 {
		return errors.New("paths.stepCeilingFactor cannot be negative")
	}
	if c.Shaping.WidenRadius < 0 {
		return errors.New("shaping.widenRadius cannot be negative")
	}
	if c.Shaping.FlattenHeight < 0 {
		return errors.New("shaping.flattenHeight cannot be negative")
	}
	if c.Placement.MinSpacing < 0 {
		return errors.New("placement.minSpacing cannot be negative")
	}
	if c.Placement.DefaultCount < 0 {
		return errors.New("placement.defaultCount cannot be negative")
	}
	if c.Generation.Timeout < 0 {
		return errors.New("generation.timeout cannot be negative")
	}
	return nil
}
