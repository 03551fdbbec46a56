// Package manifest defines the engine-side YAML form of a tileset: every tile
// slot resolved to its pixel rectangle and weight, and wang ids expanded into
// plain integer lists.
package manifest

import (
	"fmt"

	"github.com/cory-johannsen/tileset/internal/tileset"
)

// ManifestData is the top-level YAML document.
type ManifestData struct {
	Tileset TilesetSpec `yaml:"tileset"`
}

// TilesetSpec holds tileset-level metadata, its tiles and wang sets.
type TilesetSpec struct {
	ID         string        `yaml:"id"`
	Name       string        `yaml:"name"`
	Image      ImageSpec     `yaml:"image"`
	TileWidth  int           `yaml:"tile_width"`
	TileHeight int           `yaml:"tile_height"`
	Columns    int           `yaml:"columns"`
	TileCount  int           `yaml:"tile_count"`
	Tiles      []TileSpec    `yaml:"tiles"`
	WangSets   []WangSetSpec `yaml:"wang_sets"`
}

// ImageSpec references the source bitmap.
type ImageSpec struct {
	Source string `yaml:"source"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// TileSpec is one tile slot with its source rectangle.
type TileSpec struct {
	ID         int               `yaml:"id"`
	X          int               `yaml:"x"`
	Y          int               `yaml:"y"`
	W          int               `yaml:"w"`
	H          int               `yaml:"h"`
	Weight     float64           `yaml:"weight"`
	Properties map[string]string `yaml:"properties,omitempty"`
}

// WangSetSpec is one wang set.
type WangSetSpec struct {
	ID     string         `yaml:"id"`
	Name   string         `yaml:"name"`
	Type   string         `yaml:"type"`
	Colors []ColorSpec    `yaml:"colors"`
	Tiles  []WangTileSpec `yaml:"tiles"`
}

// ColorSpec is one wang color with its 1-based index.
type ColorSpec struct {
	Index  int     `yaml:"index"`
	Name   string  `yaml:"name"`
	Color  string  `yaml:"color,omitempty"`
	Weight float64 `yaml:"weight"`
}

// WangTileSpec is the wang id of one tile. Corners is set for corner sets only.
type WangTileSpec struct {
	TileID  int   `yaml:"tile_id"`
	WangID  []int `yaml:"wang_id,flow"`
	Corners []int `yaml:"corners,omitempty,flow"`
}

// Validate checks manifest invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (m *ManifestData) Validate() error {
	ts := &m.Tileset
	if ts.ID == "" {
		return fmt.Errorf("tileset ID must not be empty")
	}
	if ts.Name == "" {
		return fmt.Errorf("tileset %q: name must not be empty", ts.ID)
	}
	if ts.Image.Source == "" {
		return fmt.Errorf("tileset %q: image source must not be empty", ts.ID)
	}
	if ts.TileWidth <= 0 || ts.TileHeight <= 0 {
		return fmt.Errorf("tileset %q: tile size must be positive, got %dx%d", ts.ID, ts.TileWidth, ts.TileHeight)
	}
	if ts.TileCount <= 0 || ts.Columns <= 0 {
		return fmt.Errorf("tileset %q: tile_count and columns must be positive", ts.ID)
	}
	if len(ts.Tiles) != ts.TileCount {
		return fmt.Errorf("tileset %q: %d tiles listed, tile_count is %d", ts.ID, len(ts.Tiles), ts.TileCount)
	}
	for i, t := range ts.Tiles {
		if t.ID != i {
			return fmt.Errorf("tileset %q: tile at position %d has id %d", ts.ID, i, t.ID)
		}
		if t.W != ts.TileWidth || t.H != ts.TileHeight {
			return fmt.Errorf("tileset %q: tile %d: size %dx%d does not match tile size", ts.ID, t.ID, t.W, t.H)
		}
		if t.X < 0 || t.Y < 0 || t.X+t.W > ts.Image.Width || t.Y+t.H > ts.Image.Height {
			return fmt.Errorf("tileset %q: tile %d: rect (%d,%d,%d,%d) outside image", ts.ID, t.ID, t.X, t.Y, t.W, t.H)
		}
		if t.Weight <= 0 || t.Weight > 1 {
			return fmt.Errorf("tileset %q: tile %d: weight %v outside (0, 1]", ts.ID, t.ID, t.Weight)
		}
	}
	for _, ws := range ts.WangSets {
		if err := ws.validate(ts); err != nil {
			return err
		}
	}
	return nil
}

func (ws *WangSetSpec) validate(ts *TilesetSpec) error {
	if ws.ID == "" {
		return fmt.Errorf("tileset %q: wang set ID must not be empty", ts.ID)
	}
	if !tileset.WangSetType(ws.Type).Valid() {
		return fmt.Errorf("tileset %q: wang set %q: unknown type %q", ts.ID, ws.ID, ws.Type)
	}
	for i, c := range ws.Colors {
		if c.Index != i+1 {
			return fmt.Errorf("tileset %q: wang set %q: color %q has index %d, want %d", ts.ID, ws.ID, c.Name, c.Index, i+1)
		}
	}
	for _, wt := range ws.Tiles {
		if wt.TileID < 0 || wt.TileID >= ts.TileCount {
			return fmt.Errorf("tileset %q: wang set %q: tile %d outside [0, %d)", ts.ID, ws.ID, wt.TileID, ts.TileCount)
		}
		if len(wt.WangID) != tileset.WangIDLen {
			return fmt.Errorf("tileset %q: wang set %q: tile %d: wang id has %d entries", ts.ID, ws.ID, wt.TileID, len(wt.WangID))
		}
		for _, idx := range wt.WangID {
			if idx < 0 || idx > len(ws.Colors) {
				return fmt.Errorf("tileset %q: wang set %q: tile %d: color index %d not declared", ts.ID, ws.ID, wt.TileID, idx)
			}
		}
	}
	return nil
}
