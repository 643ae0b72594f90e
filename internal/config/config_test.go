package config

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestValidateDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
}

func TestValidateDetectsInvalidConfigurations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "zero width",
			mutate: func(cfg *Config) {
				cfg.Arena.Width = 0
			},
			wantErr: "arena dimensions must be positive",
		},
		{
			name: "negative height",
			mutate: func(cfg *Config) {
				cfg.Arena.Height = -3
			},
			wantErr: "arena dimensions must be positive",
		},
		{
			name: "zero tile size",
			mutate: func(cfg *Config) {
				cfg.Arena.TileSize = 0
			},
			wantErr: "arena.tileSize must be positive",
		},
		{
			name: "unknown noise",
			mutate: func(cfg *Config) {
				cfg.Terrain.Noise = "worley"
			},
			wantErr: "terrain.noise must be one of simplex, perlin, value",
		},
		{
			name: "negative elevation scale",
			mutate: func(cfg *Config) {
				cfg.Terrain.ElevationScale = -1
			},
			wantErr: "terrain.elevationScale cannot be negative",
		},
		{
			name: "negative offset range",
			mutate: func(cfg *Config) {
				cfg.Terrain.OffsetRange = -5
			},
			wantErr: "terrain.offsetRange cannot be negative",
		},
		{
			name: "negative octaves",
			mutate: func(cfg *Config) {
				cfg.Terrain.Octaves = -1
			},
			wantErr: "terrain.octaves cannot be negative",
		},
		{
			name: "no paths",
			mutate: func(cfg *Config) {
				cfg.Paths.MinCount = 0
			},
			wantErr: "paths.minCount must be at least 1",
		},
		{
			name: "max below min",
			mutate: func(cfg *Config) {
				cfg.Paths.MinCount = 4
				cfg.Paths.MaxCount = 2
			},
			wantErr: "paths.maxCount must be 0 or >= paths.minCount",
		},
		{
			name: "negative jitter",
			mutate: func(cfg *Config) {
				cfg.Paths.Jitter = -0.1
			},
			wantErr: "paths slope weight, jitter and max step slope cannot be negative",
		},
		{
			name: "negative start retries",
			mutate: func(cfg *Config) {
				cfg.Paths.StartRetries = -1
			},
			wantErr: "paths.startRetries cannot be negative",
		},
		{
			name: "negative ceiling factor",
			mutate: func(cfg *Config) {
				cfg.Paths.StepCeilingFactor = -1
			},
			wantErr: "paths.stepCeilingFactor cannot be negative",
		},
		{
			name: "negative widen radius",
			mutate: func(cfg *Config) {
				cfg.Shaping.WidenRadius = -1
			},
			wantErr: "shaping.widenRadius cannot be negative",
		},
		{
			name: "negative flatten height",
			mutate: func(cfg *Config) {
				cfg.Shaping.FlattenHeight = -0.5
			},
			wantErr: "shaping.flattenHeight cannot be negative",
		},
		{
			name: "negative spacing",
			mutate: func(cfg *Config) {
				cfg.Placement.MinSpacing = -2
			},
			wantErr: "placement.minSpacing cannot be negative",
		},
		{
			name: "negative default count",
			mutate: func(cfg *Config) {
				cfg.Placement.DefaultCount = -1
			},
			wantErr: "placement.defaultCount cannot be negative",
		},
		{
			name: "nan noise scale",
			mutate: func(cfg *Config) {
				cfg.Terrain.NoiseScale = math.NaN()
			},
			wantErr: "terrain.noiseScale must be finite",
		},
		{
			name: "infinite elevation scale",
			mutate: func(cfg *Config) {
				cfg.Terrain.ElevationScale = math.Inf(1)
			},
			wantErr: "terrain.elevationScale must be finite",
		},
		{
			name: "infinite flatten height",
			mutate: func(cfg *Config) {
				cfg.Shaping.FlattenHeight = math.Inf(-1)
			},
			wantErr: "shaping.flattenHeight must be finite",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Generation.Timeout = Duration(-time.Second)
			},
			wantErr: "generation.timeout cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected an error, got nil")
			}
			if err.Error() != tt.wantErr {
				t.Fatalf("unexpected error: got %q want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateAcceptsFlatTerrain(t *testing.T) {
	cfg := Default()
	cfg.Terrain.NoiseScale = 0
	cfg.Terrain.ElevationScale = 0
	cfg.Terrain.Noise = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("flat terrain should be valid: %v", err)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load default config: %v", err)
	}
	if want := Default(); !reflect.DeepEqual(cfg, want) {
		t.Fatalf("default configuration mismatch:\nwant: %#v\n got: %#v", want, cfg)
	}
}

func TestLoadReadsFileAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.Terrain.Seed = 1234
	cfg.Terrain.Noise = "perlin"
	cfg.Paths.MaxCount = 5

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("loaded configuration mismatch:\nwant: %#v\n got: %#v", cfg, got)
	}
}

func TestLoadReadsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arena.yaml")

	cfg := Default()
	cfg.Arena.Width = 32
	cfg.Shaping.WidenRadius = 2
	cfg.Generation.Timeout = Duration(1500 * time.Millisecond)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal yaml: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("loaded configuration mismatch:\nwant: %#v\n got: %#v", cfg, got)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arena.yml")
	contents := "arena:\n  width: 12\nterrain:\n  seed: 7\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	want := Default()
	want.Arena.Width = 12
	want.Terrain.Seed = 7
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("partial configuration mismatch:\nwant: %#v\n got: %#v", want, got)
	}
}

func TestLoadInvalidConfiguration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.Arena.Width = 0

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err = Load(path)
	if err == nil {
		t.Fatalf("expected load to fail")
	}
	if !strings.Contains(err.Error(), "validate config: arena dimensions must be positive") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDurationDecoding(t *testing.T) {
	tests := []struct {
		name string
		json string
		yaml string
		want time.Duration
	}{
		{name: "string", json: `"250ms"`, yaml: "250ms", want: 250 * time.Millisecond},
		{name: "nanoseconds", json: `1000`, yaml: "1000", want: time.Microsecond},
		{name: "empty", json: `""`, yaml: `""`, want: 0},
		{name: "null", json: `null`, yaml: "null", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fromJSON Duration
			if err := json.Unmarshal([]byte(tt.json), &fromJSON); err != nil {
				t.Fatalf("json decode: %v", err)
			}
			if fromJSON.Duration() != tt.want {
				t.Fatalf("json: got %v want %v", fromJSON.Duration(), tt.want)
			}

			var holder struct {
				D Duration `yaml:"d"`
			}
			if err := yaml.Unmarshal([]byte("d: "+tt.yaml), &holder); err != nil {
				t.Fatalf("yaml decode: %v", err)
			}
			if holder.D.Duration() != tt.want {
				t.Fatalf("yaml: got %v want %v", holder.D.Duration(), tt.want)
			}
		})
	}
}

func TestDurationRejectsGarbage(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"soon"`), &d); err == nil {
		t.Fatalf("expected json decode error")
	}
	var holder struct {
		D Duration `yaml:"d"`
	}
	if err := yaml.Unmarshal([]byte("d: soon"), &holder); err == nil {
		t.Fatalf("expected yaml decode error")
	}
}

func TestLoadRejectsNonFiniteYAMLScales(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		wantErr  string
	}{
		{name: "nan noise scale", contents: "terrain:\n  noiseScale: .nan\n", wantErr: "terrain.noiseScale must be finite"},
		{name: "inf elevation scale", contents: "terrain:\n  elevationScale: .inf\n", wantErr: "terrain.elevationScale must be finite"},
		{name: "inf flatten height", contents: "shaping:\n  flattenHeight: .inf\n", wantErr: "shaping.flattenHeight must be finite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "arena.yaml")
			if err := os.WriteFile(path, []byte(tt.contents), 0o600); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatalf("expected load to fail")
			}
			if !strings.Contains(err.Error(), "validate config: "+tt.wantErr) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
