package arena

import (
	"encoding/json"
	"fmt"
	"io"

	"arenagen/internal/grid"
	"arenagen/internal/mesh"
	"arenagen/internal/placement"
)

// Snapshot is the serialisable form of an arena handed to a renderer or game client.
type Snapshot struct {
	ID         string           `json:"id"`
	Seed       int64            `json:"seed"`
	Dimensions grid.Dimensions  `json:"dimensions"`
	TileSize   float64          `json:"tileSize"`
	Hub        grid.Vec3        `json:"hub"`
	Spawns     []grid.Vec3      `json:"spawns"`
	Paths      [][]grid.Vec3    `json:"paths"`
	PathTiles  []grid.Coord     `json:"pathTiles"`
	Sites      []placement.Site `json:"sites"`
	Mesh       *mesh.Mesh       `json:"mesh,omitempty"`
	Stats      Stats            `json:"stats"`
}

// Snapshot captures a and the given placement sites. The mesh is included only when
// withMesh is set.
func (a *Arena) Snapshot(sites []placement.Site, withMesh bool) Snapshot {
	if sites == nil {
		sites = []placement.Site{}
	}
	snap := Snapshot{
		ID:         a.ID.String(),
		Seed:       a.Seed,
		Dimensions: a.dim,
		TileSize:   a.TileSize,
		Hub:        a.HubPosition(),
		Spawns:     a.SpawnPositions(),
		Paths:      a.Paths(),
		PathTiles:  a.PathTiles(),
		Sites:      sites,
		Stats:      a.Stats,
	}
	if withMesh {
		snap.Mesh = a.Mesh()
	}
	return snap
}

// WriteJSON encodes a snapshot as indented JSON.
func WriteJSON(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode arena %s: %w", snap.ID, err)
	}
	return nil
}
