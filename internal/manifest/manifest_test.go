package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tileset/internal/manifest"
	"github.com/cory-johannsen/tileset/internal/tileset"
)

func altFloor(t *testing.T) *tileset.Descriptor {
	t.Helper()
	d, err := tileset.LoadFromFile(filepath.Join("..", "tileset", "testdata", "alt_floor.tsx"))
	require.NoError(t, err)
	return d
}

func TestBuild_AltFloor(t *testing.T) {
	m := manifest.Build("alt_floor", altFloor(t))
	require.NoError(t, m.Validate())

	ts := m.Tileset
	assert.Equal(t, "alt_floor", ts.ID)
	require.Len(t, ts.Tiles, 48)

	// tile 13 sits at column 1, row 2 of a 6-column sheet
	assert.Equal(t, manifest.TileSpec{ID: 13, X: 16, Y: 32, W: 16, H: 16, Weight: 1}, ts.Tiles[13])
	assert.Equal(t, 0.2, ts.Tiles[5].Weight)
	assert.Equal(t, 0.02, ts.Tiles[11].Weight)

	require.Len(t, ts.WangSets, 1)
	ws := ts.WangSets[0]
	assert.Equal(t, "alt_floor_0", ws.ID)
	assert.Equal(t, "corner", ws.Type)
	require.Len(t, ws.Colors, 3)
	assert.Equal(t, manifest.ColorSpec{Index: 3, Name: "INNER", Color: "#0000ff", Weight: 1}, ws.Colors[2])
	require.Len(t, ws.Tiles, 37)
	assert.Equal(t, []int{0, 3, 0, 3, 0, 3, 0, 3}, ws.Tiles[4].WangID)
	assert.Equal(t, []int{3, 3, 3, 3}, ws.Tiles[4].Corners)
}

func TestBuild_NonCornerSetOmitsCorners(t *testing.T) {
	d := altFloor(t)
	d.WangSets[0].Type = tileset.WangMixed
	m := manifest.Build("alt_floor", d)
	assert.Nil(t, m.Tileset.WangSets[0].Tiles[0].Corners)
}

func TestBuild_Properties(t *testing.T) {
	d := altFloor(t)
	d.Tiles[0].Properties = []tileset.Property{{Name: "solid", Type: "bool", Value: "true"}}
	m := manifest.Build("alt_floor", d)
	assert.Equal(t, map[string]string{"solid": "true"}, m.Tileset.Tiles[5].Properties)
}

func TestMarshal_LoadFromBytes(t *testing.T) {
	m := manifest.Build("alt_floor", altFloor(t))
	data, err := manifest.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), "wang_id: [0, 3, 0, 3, 0, 3, 0, 3]")

	back, err := manifest.LoadFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, m, back)
}

func TestLoadFromFile(t *testing.T) {
	data, err := manifest.Marshal(manifest.Build("alt_floor", altFloor(t)))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "alt_floor.yaml")
	require.NoError(t, os.WriteFile(path, data, 0644))

	m, err := manifest.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "alt_floor", m.Tileset.ID)

	_, err = manifest.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFromBytes_Invalid(t *testing.T) {
	cases := map[string]string{
		"not yaml":   "tileset: [",
		"missing id": "tileset:\n  name: x\n",
		"tile count mismatch": `tileset:
  id: t
  name: t
  image: {source: t.png, width: 16, height: 16}
  tile_width: 16
  tile_height: 16
  columns: 1
  tile_count: 2
  tiles:
    - {id: 0, x: 0, y: 0, w: 16, h: 16, weight: 1}
`,
		"rect outside image": `tileset:
  id: t
  name: t
  image: {source: t.png, width: 16, height: 16}
  tile_width: 16
  tile_height: 16
  columns: 1
  tile_count: 1
  tiles:
    - {id: 0, x: 8, y: 0, w: 16, h: 16, weight: 1}
`,
		"short wang id": `tileset:
  id: t
  name: t
  image: {source: t.png, width: 16, height: 16}
  tile_width: 16
  tile_height: 16
  columns: 1
  tile_count: 1
  tiles:
    - {id: 0, x: 0, y: 0, w: 16, h: 16, weight: 1}
  wang_sets:
    - id: t_0
      name: ground
      type: corner
      colors: [{index: 1, name: a, weight: 1}]
      tiles: [{tile_id: 0, wang_id: [0, 1, 0]}]
`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := manifest.LoadFromBytes([]byte(data))
			assert.Error(t, err)
		})
	}
}

// TestBuild_AlwaysLoadable is a property-based test verifying that the
// manifest of any valid grid survives a YAML round trip and validation.
func TestBuild_AlwaysLoadable(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tw := rapid.IntRange(1, 32).Draw(rt, "tileWidth")
		th := rapid.IntRange(1, 32).Draw(rt, "tileHeight")
		cols := rapid.IntRange(1, 10).Draw(rt, "columns")
		count := rapid.IntRange(1, 40).Draw(rt, "tileCount")
		spacing := rapid.IntRange(0, 2).Draw(rt, "spacing")
		margin := rapid.IntRange(0, 2).Draw(rt, "margin")
		rows := (count + cols - 1) / cols

		d := &tileset.Descriptor{
			Name:       "grid",
			TileWidth:  tw,
			TileHeight: th,
			Spacing:    spacing,
			Margin:     margin,
			TileCount:  count,
			Columns:    cols,
			Image: tileset.Image{
				Source: "grid.png",
				Width:  2*margin + cols*tw + (cols-1)*spacing,
				Height: 2*margin + rows*th + (rows-1)*spacing,
			},
			WangSets: []tileset.WangSet{{
				Name:   "ground",
				Type:   tileset.WangCorner,
				Tile:   tileset.NoTile,
				Colors: []tileset.WangColor{{Name: "a", Tile: tileset.NoTile}},
				Tiles:  []tileset.WangTile{{TileID: count - 1, WangID: tileset.WangID{0, 1, 0, 1, 0, 1, 0, 1}}},
			}},
		}
		require.NoError(rt, tileset.Validate(d))

		data, err := manifest.Marshal(manifest.Build("grid", d))
		require.NoError(rt, err)
		m, err := manifest.LoadFromBytes(data)
		if err != nil {
			rt.Fatalf("manifest for %dx%d grid failed to load: %v", cols, rows, err)
		}
		assert.Len(rt, m.Tileset.Tiles, count)
	})
}
