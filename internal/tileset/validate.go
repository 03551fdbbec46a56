package tileset

import (
	"fmt"
	"math"
	"regexp"
	"unicode/utf8"
)

var colorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// Validate checks every descriptor invariant.
//
// Postcondition: Returns nil if d is valid, or a *ParseError describing the
// first violation in document order.
func Validate(d *Descriptor) error {
	if d == nil {
		return fieldErr(ErrMalformedInput, "", "descriptor is nil")
	}
	if d.Name == "" {
		return fieldErr(ErrMissingField, "name", "must not be empty")
	}
	if err := checkTexts(
		text{"version", d.Version},
		text{"tiledversion", d.TiledVersion},
		text{"name", d.Name},
	); err != nil {
		return err
	}
	if d.Image.Source == "" {
		return fieldErr(ErrMissingField, "image.source", "must not be empty")
	}
	if err := checkTexts(text{"image.source", d.Image.Source}); err != nil {
		return err
	}
	if err := checkGeometry(d); err != nil {
		return err
	}

	seen := make(map[int]bool, len(d.Tiles))
	for i, t := range d.Tiles {
		field := fmt.Sprintf("tile[%d]", i)
		if err := checkTileRef(field+".id", t.ID, d.TileCount, seen); err != nil {
			return err
		}
		if err := checkProbability(field+".probability", t.ID, true, t.Probability); err != nil {
			return err
		}
		for j, p := range t.Properties {
			pf := fmt.Sprintf("%s.property[%d]", field, j)
			if p.Name == "" {
				return tileErr(ErrMissingField, pf+".name", t.ID, "must not be empty")
			}
			if err := checkTexts(
				text{pf + ".name", p.Name},
				text{pf + ".type", p.Type},
				text{pf + ".value", p.Value},
			); err != nil {
				err.TileID, err.HasTile = t.ID, true
				return err
			}
		}
	}

	if len(d.WangSets) == 0 {
		return fieldErr(ErrMissingField, "wangsets", "at least one wang set is required")
	}
	for i := range d.WangSets {
		if err := validateWangSet(d, i); err != nil {
			return err
		}
	}
	return nil
}

func validateWangSet(d *Descriptor, i int) error {
	s := &d.WangSets[i]
	field := fmt.Sprintf("wangset[%d]", i)
	if s.Name == "" {
		return fieldErr(ErrMissingField, field+".name", "must not be empty")
	}
	if err := checkTexts(text{field + ".name", s.Name}); err != nil {
		return err
	}
	if err := checkSetType(field+".type", s.Type); err != nil {
		return err
	}
	if err := checkRepresentative(field+".tile", s.Tile, d.TileCount); err != nil {
		return err
	}
	if len(s.Colors) > MaxWangColors {
		return fieldErr(ErrMalformedInput, field, "%d colors declared, at most %d allowed", len(s.Colors), MaxWangColors)
	}
	for j, c := range s.Colors {
		if err := checkColor(fmt.Sprintf("%s.wangcolor[%d]", field, j), c, d.TileCount); err != nil {
			return err
		}
	}

	seen := make(map[int]bool, len(s.Tiles))
	for j, wt := range s.Tiles {
		tf := fmt.Sprintf("%s.wangtile[%d]", field, j)
		if err := checkTileRef(tf+".tileid", wt.TileID, d.TileCount, seen); err != nil {
			return err
		}
		if err := checkWangID(tf+".wangid", wt.TileID, s, wt.WangID); err != nil {
			return err
		}
	}
	return nil
}

func checkGeometry(d *Descriptor) error {
	positive := []struct {
		field string
		v     int
	}{
		{"tilewidth", d.TileWidth},
		{"tileheight", d.TileHeight},
		{"tilecount", d.TileCount},
		{"columns", d.Columns},
		{"image.width", d.Image.Width},
		{"image.height", d.Image.Height},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return fieldErr(ErrInvalidGeometry, p.field, "must be positive, got %d", p.v)
		}
	}
	if d.Spacing < 0 {
		return fieldErr(ErrInvalidGeometry, "spacing", "must not be negative, got %d", d.Spacing)
	}
	if d.Margin < 0 {
		return fieldErr(ErrInvalidGeometry, "margin", "must not be negative, got %d", d.Margin)
	}

	// Caps keep the size arithmetic below from overflowing.
	bounded := []struct {
		field string
		v     int
		limit int
	}{
		{"tilewidth", d.TileWidth, MaxDimension},
		{"tileheight", d.TileHeight, MaxDimension},
		{"spacing", d.Spacing, MaxDimension},
		{"margin", d.Margin, MaxDimension},
		{"tilecount", d.TileCount, MaxTileCount},
		{"columns", d.Columns, MaxTileCount},
	}
	for _, b := range bounded {
		if b.v > b.limit {
			return fieldErr(ErrInvalidGeometry, b.field, "%d exceeds the limit of %d", b.v, b.limit)
		}
	}

	wantW := 2*d.Margin + d.Columns*d.TileWidth + (d.Columns-1)*d.Spacing
	if d.Image.Width != wantW {
		return fieldErr(ErrInvalidGeometry, "image.width", "got %d, want %d for %d columns", d.Image.Width, wantW, d.Columns)
	}
	rows := d.Rows()
	wantH := 2*d.Margin + rows*d.TileHeight + (rows-1)*d.Spacing
	if d.Image.Height != wantH {
		return fieldErr(ErrInvalidGeometry, "image.height", "got %d, want %d for %d rows", d.Image.Height, wantH, rows)
	}
	return nil
}

// checkTileRef checks id against [0, tileCount) and records it in seen.
func checkTileRef(field string, id, tileCount int, seen map[int]bool) error {
	if id < 0 || id >= tileCount {
		return tileErr(ErrInvalidReference, field, id, "outside [0, %d)", tileCount)
	}
	if seen[id] {
		return tileErr(ErrInvalidReference, field, id, "duplicate tile id")
	}
	seen[id] = true
	return nil
}

func checkRepresentative(field string, id, tileCount int) error {
	if id == NoTile {
		return nil
	}
	if id < 0 || id >= tileCount {
		return tileErr(ErrInvalidReference, field, id, "outside [0, %d) and not %d", tileCount, NoTile)
	}
	return nil
}

// checkProbability accepts 0 as "not declared".
func checkProbability(field string, id int, hasTile bool, p float64) error {
	if p == 0 {
		return nil
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		err := fieldErr(ErrInvalidProbability, field, "%v outside (0, 1]", p)
		err.TileID, err.HasTile = id, hasTile
		return err
	}
	return nil
}

func checkSetType(field string, t WangSetType) error {
	if t == "" {
		return fieldErr(ErrMissingField, field, "must not be empty")
	}
	if !t.Valid() {
		return fieldErr(ErrMalformedInput, field, "unknown wang set type %q", t)
	}
	return nil
}

// checkColor checks name text, hex color, representative tile, then probability.
// Parse follows the same order.
func checkColor(field string, c WangColor, tileCount int) error {
	if err := checkTexts(text{field + ".name", c.Name}); err != nil {
		return err
	}
	if err := checkColorHex(field, c); err != nil {
		return err
	}
	if err := checkRepresentative(field+".tile", c.Tile, tileCount); err != nil {
		return err
	}
	return checkProbability(field+".probability", 0, false, c.Probability)
}

// checkWangID checks slot usage for the set type, then color indices.
func checkWangID(field string, tileID int, s *WangSet, w WangID) error {
	for i, idx := range w {
		if idx != 0 && !s.Type.allowsSlot(i) {
			return tileErr(ErrMalformedWangID, field, tileID, "slot %d must be 0 in a %s set, got %d", i, s.Type, idx)
		}
	}
	for i, idx := range w {
		if !s.ValidColorIndex(idx) {
			return tileErr(ErrInvalidColorIndex, field, tileID, "slot %d references color %d, set declares %d", i, idx, len(s.Colors))
		}
	}
	return nil
}

func checkColorHex(field string, c WangColor) error {
	if c.Color != "" && !colorPattern.MatchString(c.Color) {
		return fieldErr(ErrMalformedInput, field+".color", "%q is not #rrggbb or #aarrggbb", c.Color)
	}
	return nil
}

type text struct {
	field string
	value string
}

// checkTexts rejects strings an XML attribute cannot carry: invalid UTF-8 or
// characters outside the XML Char production.
func checkTexts(texts ...text) *ParseError {
	for _, t := range texts {
		if !utf8.ValidString(t.value) {
			return fieldErr(ErrMalformedInput, t.field, "%q is not valid UTF-8", t.value)
		}
		for _, r := range t.value {
			if !isXMLChar(r) {
				return fieldErr(ErrMalformedInput, t.field, "character %U is not allowed in XML", r)
			}
		}
	}
	return nil
}

func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}
