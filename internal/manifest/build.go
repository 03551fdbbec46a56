package manifest

import (
	"fmt"

	"github.com/cory-johannsen/tileset/internal/tileset"
)

// Build derives the manifest for d. Every tile slot is listed; overrides
// contribute weights and properties.
//
// Precondition: d must be valid; id must be non-empty.
// Postcondition: Returns a non-nil ManifestData that passes Validate.
func Build(id string, d *tileset.Descriptor) *ManifestData {
	ts := TilesetSpec{
		ID:   id,
		Name: d.Name,
		Image: ImageSpec{
			Source: d.Image.Source,
			Width:  d.Image.Width,
			Height: d.Image.Height,
		},
		TileWidth:  d.TileWidth,
		TileHeight: d.TileHeight,
		Columns:    d.Columns,
		TileCount:  d.TileCount,
		Tiles:      make([]TileSpec, d.TileCount),
	}

	for i := range ts.Tiles {
		r := d.TileRect(i)
		ts.Tiles[i] = TileSpec{ID: i, X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy(), Weight: 1}
	}
	for _, o := range d.Tiles {
		spec := &ts.Tiles[o.ID]
		spec.Weight = o.Weight()
		if len(o.Properties) > 0 {
			spec.Properties = make(map[string]string, len(o.Properties))
			for _, p := range o.Properties {
				spec.Properties[p.Name] = p.Value
			}
		}
	}

	for i, s := range d.WangSets {
		ws := WangSetSpec{
			ID:   fmt.Sprintf("%s_%d", id, i),
			Name: s.Name,
			Type: string(s.Type),
		}
		for j, c := range s.Colors {
			ws.Colors = append(ws.Colors, ColorSpec{Index: j + 1, Name: c.Name, Color: c.Color, Weight: c.Weight()})
		}
		for _, wt := range s.Tiles {
			spec := WangTileSpec{TileID: wt.TileID, WangID: wt.WangID[:]}
			if s.Type == tileset.WangCorner {
				corners := wt.WangID.Corners()
				spec.Corners = corners[:]
			}
			ws.Tiles = append(ws.Tiles, spec)
		}
		ts.WangSets = append(ts.WangSets, ws)
	}

	return &ManifestData{Tileset: ts}
}
