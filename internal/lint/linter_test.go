package lint_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tileset/internal/lint"
	"github.com/cory-johannsen/tileset/internal/tileset"
)

func writeScripts(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0644))
	}
	return dir
}

func altFloor(t *testing.T) *tileset.Descriptor {
	t.Helper()
	d, err := tileset.LoadFromFile(filepath.Join("..", "tileset", "testdata", "alt_floor.tsx"))
	require.NoError(t, err)
	return d
}

func newLinter(t *testing.T, limit int) *lint.Linter {
	t.Helper()
	l := lint.New(limit, zap.NewNop())
	t.Cleanup(l.Close)
	return l
}

func TestUnusedTiles_TileCountOutOfBounds(t *testing.T) {
	d := altFloor(t)
	d.TileCount = math.MaxInt32
	assert.Nil(t, lint.UnusedTiles(d))
	d.TileCount = -1
	assert.Nil(t, lint.UnusedTiles(d))
}

func TestUnusedTiles_AltFloor(t *testing.T) {
	d := altFloor(t)
	unused := lint.UnusedTiles(d)
	assert.Len(t, unused, 48-37)
	for _, ws := range d.WangSets {
		for _, wt := range ws.Tiles {
			assert.NotContains(t, unused, wt.TileID)
		}
	}
}

func TestCheck_BuiltinOnly(t *testing.T) {
	warnings, err := newLinter(t, 0).Check(altFloor(t))
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "unused-tiles: 11 of 48 tiles carry no wang id")
}

func TestCheck_ScriptWarningsPrefixed(t *testing.T) {
	dir := writeScripts(t, map[string]string{
		"b_names.lua": `
			function lint(ts)
				local out = {}
				for _, ws in ipairs(ts.wangsets) do
					for _, c in ipairs(ws.colors) do
						if c.name == string.upper(c.name) then
							table.insert(out, "color " .. c.name .. " is upper case")
						end
					end
				end
				return out
			end`,
		"a_size.lua": `
			function lint(ts)
				if ts.tilewidth ~= 32 then
					return {"tile width " .. ts.tilewidth .. " is not 32"}
				end
			end`,
		"readme.txt": "not a script",
	})
	l := newLinter(t, 0)
	require.NoError(t, l.LoadDir(dir))
	assert.Equal(t, []string{"a_size", "b_names"}, l.Scripts())

	warnings, err := l.Check(altFloor(t))
	require.NoError(t, err)
	require.Len(t, warnings, 5)
	assert.Equal(t, "a_size: tile width 16 is not 32", warnings[1])
	assert.Equal(t, "b_names: color WALKABLE is upper case", warnings[2])
	assert.Equal(t, "b_names: color INNER is upper case", warnings[4])
}

func TestCheck_DescriptorTable(t *testing.T) {
	dir := writeScripts(t, map[string]string{"shape.lua": `
		function lint(ts)
			local ws = ts.wangsets[1]
			local wt = ws.tiles[5]
			return {
				ts.name, ts.image.source, ts.columns, #ts.tiles,
				ts.tiles[1].probability, ws.type, #wt.wangid, wt.wangid[2],
			}
		end`})
	l := newLinter(t, 0)
	require.NoError(t, l.LoadDir(dir))

	warnings, err := l.Check(altFloor(t))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"shape: alt_floor", "shape: alt_floor.png", "shape: 6", "shape: 3",
		"shape: 0.2", "shape: corner", "shape: 8", "shape: 3",
	}, warnings[1:])
}

func TestCheck_RuntimeErrorNamesScript(t *testing.T) {
	dir := writeScripts(t, map[string]string{"broken.lua": `function lint(ts) return ts.nope.field end`})
	l := newLinter(t, 0)
	require.NoError(t, l.LoadDir(dir))
	_, err := l.Check(altFloor(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"broken"`)
}

func TestCheck_NonTableResult(t *testing.T) {
	dir := writeScripts(t, map[string]string{"num.lua": `function lint(ts) return 4 end`})
	l := newLinter(t, 0)
	require.NoError(t, l.LoadDir(dir))
	_, err := l.Check(altFloor(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want table")
}

func TestCheck_InstructionLimit(t *testing.T) {
	dir := writeScripts(t, map[string]string{"spin.lua": `function lint(ts) while true do end end`})
	l := newLinter(t, 1000)
	require.NoError(t, l.LoadDir(dir))
	_, err := l.Check(altFloor(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"spin"`)
}

func TestCheck_LimitResetsPerRun(t *testing.T) {
	dir := writeScripts(t, map[string]string{"loop.lua": `
		function lint(ts)
			local n = 0
			for i = 1, 100 do n = n + i end
			return {}
		end`})
	l := newLinter(t, 2000)
	require.NoError(t, l.LoadDir(dir))
	d := altFloor(t)
	for i := 0; i < 20; i++ {
		_, err := l.Check(d)
		require.NoError(t, err, "run %d", i)
	}
}

func TestLoadDir_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"syntax":  {"bad.lua": `function lint(`},
		"no hook": {"nohook.lua": `x = 1`},
	}
	for name, files := range cases {
		t.Run(name, func(t *testing.T) {
			l := newLinter(t, 0)
			require.Error(t, l.LoadDir(writeScripts(t, files)))
			assert.Empty(t, l.Scripts())
		})
	}

	t.Run("missing dir", func(t *testing.T) {
		assert.Error(t, newLinter(t, 0).LoadDir("/nonexistent/dir"))
	})
}

// TestUnusedTiles_Complement is a property-based test verifying that every
// tile id is either unused or referenced by some wang tile, never both.
func TestUnusedTiles_Complement(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 30).Draw(rt, "tileCount")
		ids := rapid.SliceOfDistinct(rapid.IntRange(0, count-1), rapid.ID[int]).Draw(rt, "ids")
		ws := tileset.WangSet{Name: "s", Type: tileset.WangCorner, Tile: tileset.NoTile}
		for _, id := range ids {
			ws.Tiles = append(ws.Tiles, tileset.WangTile{TileID: id})
		}
		d := &tileset.Descriptor{TileCount: count, WangSets: []tileset.WangSet{ws}}

		unused := lint.UnusedTiles(d)
		assert.Len(rt, unused, count-len(ids))
		for _, id := range ids {
			assert.NotContains(rt, unused, id)
		}
	})
}
