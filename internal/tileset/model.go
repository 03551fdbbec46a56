// Package tileset decodes, validates and encodes Tiled tileset descriptors
// (.tsx): image slicing metadata, sparse per-tile overrides and wang sets.
package tileset

import "image"

// WangIDLen is the number of slots in a wang id.
const WangIDLen = 8

// MaxWangColors is the largest number of colors a wang set may declare.
const MaxWangColors = 254

// MaxTileCount bounds tilecount and columns. Loaders allocate per tile slot.
const MaxTileCount = 1 << 20

// MaxDimension bounds tile width and height, spacing and margin in pixels.
const MaxDimension = 1 << 16

// NoTile marks an unset representative tile on a wang set or wang color.
const NoTile = -1

// Wang id slot positions, clockwise from the top edge.
const (
	SlotTop = iota
	SlotTopRight
	SlotRight
	SlotBottomRight
	SlotBottom
	SlotBottomLeft
	SlotLeft
	SlotTopLeft
)

// WangSetType selects which wang id slots a set constrains.
type WangSetType string

// Supported wang set types.
const (
	// WangCorner constrains only the four corner (odd) slots.
	WangCorner WangSetType = "corner"
	// WangEdge constrains only the four edge (even) slots.
	WangEdge WangSetType = "edge"
	// WangMixed constrains all eight slots.
	WangMixed WangSetType = "mixed"
)

// Valid reports whether t is a known wang set type.
func (t WangSetType) Valid() bool {
	switch t {
	case WangCorner, WangEdge, WangMixed:
		return true
	}
	return false
}

// allowsSlot reports whether a set of type t may carry a color in slot i.
func (t WangSetType) allowsSlot(i int) bool {
	switch t {
	case WangCorner:
		return i%2 == 1
	case WangEdge:
		return i%2 == 0
	}
	return true
}

// Image references the source bitmap the tiles are sliced from.
type Image struct {
	Source string
	Width  int
	Height int
}

// Property is one custom property attached to a tile.
type Property struct {
	Name string
	// Type is empty for string properties.
	Type  string
	Value string
}

// TileOverride carries the per-tile attributes that differ from the defaults.
type TileOverride struct {
	ID int
	// Probability is the relative selection weight in (0, 1]. Zero means the
	// attribute was not declared.
	Probability float64
	Properties  []Property
}

// Weight returns the effective selection weight: Probability, or 1 when undeclared.
func (t TileOverride) Weight() float64 {
	if t.Probability == 0 {
		return 1
	}
	return t.Probability
}

// WangColor is one named color of a wang set. Its index within the set is its
// position in WangSet.Colors plus one; index 0 means "no color".
type WangColor struct {
	Name string
	// Color is the editor display color, "#rrggbb" or "#aarrggbb".
	Color string
	// Tile is the representative tile id, or NoTile.
	Tile int
	// Probability is in (0, 1]; zero means the attribute was not declared.
	Probability float64
}

// Weight returns the effective weight of the color: Probability, or 1 when undeclared.
func (c WangColor) Weight() float64 {
	if c.Probability == 0 {
		return 1
	}
	return c.Probability
}

// WangID holds the color index of each slot, clockwise from the top edge.
type WangID [WangIDLen]int

// Corners returns the corner slots in order top-right, bottom-right,
// bottom-left, top-left.
func (w WangID) Corners() [4]int {
	return [4]int{w[SlotTopRight], w[SlotBottomRight], w[SlotBottomLeft], w[SlotTopLeft]}
}

// Edges returns the edge slots in order top, right, bottom, left.
func (w WangID) Edges() [4]int {
	return [4]int{w[SlotTop], w[SlotRight], w[SlotBottom], w[SlotLeft]}
}

// WangTile assigns a wang id to one tile slot.
type WangTile struct {
	TileID int
	WangID WangID
}

// WangSet is one autotiling rule set.
type WangSet struct {
	Name string
	Type WangSetType
	// Tile is the representative tile id, or NoTile.
	Tile   int
	Colors []WangColor
	Tiles  []WangTile
}

// ValidColorIndex reports whether idx is 0 or refers to a declared color.
func (s *WangSet) ValidColorIndex(idx int) bool {
	return idx >= 0 && idx <= len(s.Colors)
}

// Color returns the color for a non-zero index.
//
// Postcondition: Returns (color, true) for 1 <= idx <= len(Colors), or (WangColor{}, false).
func (s *WangSet) Color(idx int) (WangColor, bool) {
	if idx < 1 || idx > len(s.Colors) {
		return WangColor{}, false
	}
	return s.Colors[idx-1], true
}

// WangIDFor returns the wang id assigned to tileID, if any.
func (s *WangSet) WangIDFor(tileID int) (WangID, bool) {
	for _, wt := range s.Tiles {
		if wt.TileID == tileID {
			return wt.WangID, true
		}
	}
	return WangID{}, false
}

// Descriptor is a whole tileset document.
type Descriptor struct {
	// Version and TiledVersion record the editor that wrote the file.
	Version      string
	TiledVersion string

	Name       string
	TileWidth  int
	TileHeight int
	// Spacing and Margin are in pixels; both default to 0.
	Spacing   int
	Margin    int
	TileCount int
	Columns   int
	Image     Image

	Tiles    []TileOverride
	WangSets []WangSet
}

// Rows returns the number of tile rows in the image grid.
func (d *Descriptor) Rows() int {
	if d.Columns <= 0 {
		return 0
	}
	return (d.TileCount + d.Columns - 1) / d.Columns
}

// TileRect returns the pixel rectangle of tile slot id within the source image.
//
// Precondition: d must be valid and 0 <= id < TileCount.
func (d *Descriptor) TileRect(id int) image.Rectangle {
	col, row := id%d.Columns, id/d.Columns
	x := d.Margin + col*(d.TileWidth+d.Spacing)
	y := d.Margin + row*(d.TileHeight+d.Spacing)
	return image.Rect(x, y, x+d.TileWidth, y+d.TileHeight)
}

// Override returns the override declared for tile id, if any.
func (d *Descriptor) Override(id int) (TileOverride, bool) {
	for _, t := range d.Tiles {
		if t.ID == id {
			return t, true
		}
	}
	return TileOverride{}, false
}

// Weight returns the effective selection weight of tile id.
func (d *Descriptor) Weight(id int) float64 {
	if t, ok := d.Override(id); ok {
		return t.Weight()
	}
	return 1
}

// WangSet returns the wang set with the given name, if any.
func (d *Descriptor) WangSet(name string) (*WangSet, bool) {
	for i := range d.WangSets {
		if d.WangSets[i].Name == name {
			return &d.WangSets[i], true
		}
	}
	return nil, false
}
