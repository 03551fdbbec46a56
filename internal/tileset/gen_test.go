package tileset_test

import (
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tileset/internal/tileset"
)

// genDescriptor draws descriptors that satisfy every invariant.
func genDescriptor() *rapid.Generator[*tileset.Descriptor] {
	return rapid.Custom(func(t *rapid.T) *tileset.Descriptor {
		tw := rapid.IntRange(1, 64).Draw(t, "tileWidth")
		th := rapid.IntRange(1, 64).Draw(t, "tileHeight")
		cols := rapid.IntRange(1, 12).Draw(t, "columns")
		count := rapid.IntRange(1, 60).Draw(t, "tileCount")
		spacing := rapid.IntRange(0, 3).Draw(t, "spacing")
		margin := rapid.IntRange(0, 3).Draw(t, "margin")
		rows := (count + cols - 1) / cols
		name := genText(1, 16).Draw(t, "name")

		d := &tileset.Descriptor{
			Version:      rapid.SampledFrom([]string{"", "1.10"}).Draw(t, "version"),
			TiledVersion: rapid.SampledFrom([]string{"", "1.10.1"}).Draw(t, "tiledVersion"),
			Name:         name,
			TileWidth:    tw,
			TileHeight:   th,
			Spacing:      spacing,
			Margin:       margin,
			TileCount:    count,
			Columns:      cols,
			Image: tileset.Image{
				Source: name + ".png",
				Width:  2*margin + cols*tw + (cols-1)*spacing,
				Height: 2*margin + rows*th + (rows-1)*spacing,
			},
		}

		tileIDs := genTileIDs(count).Draw(t, "overrideIDs")
		for _, id := range tileIDs {
			o := tileset.TileOverride{ID: id, Probability: genProbability().Draw(t, "tileProbability")}
			nprops := rapid.IntRange(0, 2).Draw(t, "propertyCount")
			for j := 0; j < nprops; j++ {
				o.Properties = append(o.Properties, tileset.Property{
					Name:  genText(1, 8).Draw(t, "propertyName"),
					Type:  rapid.SampledFrom([]string{"", "int", "bool"}).Draw(t, "propertyType"),
					Value: genText(0, 8).Draw(t, "propertyValue"),
				})
			}
			d.Tiles = append(d.Tiles, o)
		}

		nsets := rapid.IntRange(1, 3).Draw(t, "wangSetCount")
		for i := 0; i < nsets; i++ {
			d.WangSets = append(d.WangSets, genWangSet(count).Draw(t, "wangSet"))
		}
		return d
	})
}

// genText draws attribute text that needs escaping: markup characters,
// whitespace control characters and non-ASCII runes.
func genText(minLen, maxLen int) *rapid.Generator[string] {
	return rapid.StringOfN(rapid.OneOf(
		rapid.RuneFrom([]rune(`<>&"' `+"\t\n\r")),
		rapid.RuneFrom([]rune("abcXYZ019_-é草\U0001F600")),
	), minLen, maxLen, -1)
}

func genTileIDs(count int) *rapid.Generator[[]int] {
	return rapid.SliceOfNDistinct(rapid.IntRange(0, count-1), 0, min(count, 6), rapid.ID[int])
}

// genProbability draws 0 (undeclared) or a value in (0, 1].
func genProbability() *rapid.Generator[float64] {
	return rapid.OneOf(rapid.Just(0.0), rapid.Just(1.0), rapid.Float64Range(0.001, 1))
}

func genRepresentative(count int) *rapid.Generator[int] {
	return rapid.OneOf(rapid.Just(tileset.NoTile), rapid.IntRange(0, count-1))
}

func genWangSet(count int) *rapid.Generator[tileset.WangSet] {
	return rapid.Custom(func(t *rapid.T) tileset.WangSet {
		s := tileset.WangSet{
			Name: genText(1, 12).Draw(t, "setName"),
			Type: rapid.SampledFrom([]tileset.WangSetType{tileset.WangCorner, tileset.WangEdge, tileset.WangMixed}).Draw(t, "setType"),
			Tile: genRepresentative(count).Draw(t, "setTile"),
		}
		ncolors := rapid.IntRange(0, 5).Draw(t, "colorCount")
		for i := 0; i < ncolors; i++ {
			s.Colors = append(s.Colors, tileset.WangColor{
				Name:        genText(1, 10).Draw(t, "colorName"),
				Color:       rapid.StringMatching(`#[0-9a-f]{6}`).Draw(t, "color"),
				Tile:        genRepresentative(count).Draw(t, "colorTile"),
				Probability: genProbability().Draw(t, "colorProbability"),
			})
		}
		for _, id := range genTileIDs(count).Draw(t, "wangTileIDs") {
			var w tileset.WangID
			for slot := range w {
				allowed := s.Type == tileset.WangMixed ||
					(s.Type == tileset.WangCorner && slot%2 == 1) ||
					(s.Type == tileset.WangEdge && slot%2 == 0)
				if allowed {
					w[slot] = rapid.IntRange(0, ncolors).Draw(t, "colorIndex")
				}
			}
			s.Tiles = append(s.Tiles, tileset.WangTile{TileID: id, WangID: w})
		}
		return s
	})
}
