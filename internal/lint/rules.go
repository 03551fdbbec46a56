package lint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/tileset/internal/tileset"
)

// Rule is a built-in check. It returns zero or more warnings.
type Rule func(d *tileset.Descriptor) []string

// builtinRules run before any script, in this order.
var builtinRules = []struct {
	name string
	rule Rule
}{
	{"unused-tiles", unusedTilesRule},
}

// UnusedTiles returns, in ascending order, the ids of tile slots that carry no
// wang id in any wang set. A tile count outside [0, MaxTileCount] yields nil.
func UnusedTiles(d *tileset.Descriptor) []int {
	if d.TileCount < 0 || d.TileCount > tileset.MaxTileCount {
		return nil
	}
	used := make([]bool, d.TileCount)
	for _, ws := range d.WangSets {
		for _, wt := range ws.Tiles {
			if wt.TileID >= 0 && wt.TileID < d.TileCount {
				used[wt.TileID] = true
			}
		}
	}
	var ids []int
	for id, ok := range used {
		if !ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func unusedTilesRule(d *tileset.Descriptor) []string {
	ids := UnusedTiles(d)
	if len(ids) == 0 {
		return nil
	}
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = strconv.Itoa(id)
	}
	return []string{fmt.Sprintf("%d of %d tiles carry no wang id: %s",
		len(ids), d.TileCount, strings.Join(strs, ", "))}
}
