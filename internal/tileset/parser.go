package tileset

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// xmlTileset mirrors the TSX document. Attributes are kept as text so that
// absence and bad encodings can be told apart from zero values. Every element
// carries catch-alls so that markup the model does not hold is rejected
// instead of dropped.
type xmlTileset struct {
	XMLName      xml.Name     `xml:"tileset"`
	Version      string       `xml:"version,attr"`
	TiledVersion string       `xml:"tiledversion,attr"`
	Name         string       `xml:"name,attr"`
	TileWidth    string       `xml:"tilewidth,attr"`
	TileHeight   string       `xml:"tileheight,attr"`
	Spacing      string       `xml:"spacing,attr"`
	Margin       string       `xml:"margin,attr"`
	TileCount    string       `xml:"tilecount,attr"`
	Columns      string       `xml:"columns,attr"`
	Image        *xmlImage    `xml:"image"`
	Tiles        []xmlTile    `xml:"tile"`
	WangSets     *xmlWangSets `xml:"wangsets"`
	extras
}

// extras collects attributes and child elements no other field matched.
type extras struct {
	Attrs []xml.Attr   `xml:",any,attr"`
	Elems []xmlUnknown `xml:",any"`
}

type xmlUnknown struct {
	XMLName xml.Name
}

// reject returns a MalformedInput error for the first unmatched attribute or
// element under field.
func (e *extras) reject(field string) error {
	if len(e.Attrs) > 0 {
		return fieldErr(ErrMalformedInput, field, "unsupported attribute %q", e.Attrs[0].Name.Local)
	}
	if len(e.Elems) > 0 {
		return fieldErr(ErrMalformedInput, field, "unsupported element <%s>", e.Elems[0].XMLName.Local)
	}
	return nil
}

type xmlImage struct {
	Source string `xml:"source,attr"`
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
	extras
}

type xmlTile struct {
	ID          string         `xml:"id,attr"`
	Probability string         `xml:"probability,attr"`
	Properties  *xmlProperties `xml:"properties"`
	extras
}

type xmlProperties struct {
	Items []xmlProperty `xml:"property"`
	extras
}

type xmlProperty struct {
	Name  string `xml:"name,attr"`
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
	extras
}

type xmlWangSets struct {
	Sets []xmlWangSet `xml:"wangset"`
	extras
}

type xmlWangSet struct {
	Name   string         `xml:"name,attr"`
	Type   string         `xml:"type,attr"`
	Tile   string         `xml:"tile,attr"`
	Colors []xmlWangColor `xml:"wangcolor"`
	Tiles  []xmlWangTile  `xml:"wangtile"`
	extras
}

type xmlWangColor struct {
	Name        string `xml:"name,attr"`
	Color       string `xml:"color,attr"`
	Tile        string `xml:"tile,attr"`
	Probability string `xml:"probability,attr"`
	extras
}

type xmlWangTile struct {
	TileID string `xml:"tileid,attr"`
	WangID string `xml:"wangid,attr"`
	extras
}

// Parse decodes a TSX document and validates it.
//
// Precondition: raw holds the complete document text.
// Postcondition: Returns a Descriptor satisfying every invariant checked by
// Validate, or a *ParseError for the first violation found.
func Parse(raw []byte) (*Descriptor, error) {
	var doc xmlTileset
	dec := xml.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&doc); err != nil {
		return nil, &ParseError{Kind: ErrMalformedInput, Err: err}
	}
	if err := checkTrailer(dec); err != nil {
		return nil, err
	}

	d, err := decodeRoot(&doc)
	if err != nil {
		return nil, err
	}
	if err := checkGeometry(d); err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(doc.Tiles))
	for i := range doc.Tiles {
		t, err := decodeTile(i, &doc.Tiles[i], d.TileCount, seen)
		if err != nil {
			return nil, err
		}
		d.Tiles = append(d.Tiles, t)
	}

	if doc.WangSets != nil {
		if err := doc.WangSets.reject("wangsets"); err != nil {
			return nil, err
		}
	}
	if doc.WangSets == nil || len(doc.WangSets.Sets) == 0 {
		return nil, fieldErr(ErrMissingField, "wangsets", "at least one wang set is required")
	}
	for i := range doc.WangSets.Sets {
		s, err := decodeWangSet(i, &doc.WangSets.Sets[i], d.TileCount)
		if err != nil {
			return nil, err
		}
		d.WangSets = append(d.WangSets, s)
	}
	// Structural checks above report first; this catches text that arrived
	// through character references the decoder does not screen.
	if err := Validate(d); err != nil {
		return nil, err
	}
	return d, nil
}

// checkTrailer accepts only whitespace, comments and processing instructions
// after the root element.
func checkTrailer(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &ParseError{Kind: ErrMalformedInput, Detail: "after root element", Err: err}
		}
		switch tok := tok.(type) {
		case xml.Comment, xml.ProcInst:
		case xml.CharData:
			if len(bytes.TrimSpace(tok)) != 0 {
				return &ParseError{Kind: ErrMalformedInput, Detail: "text after root element"}
			}
		default:
			return &ParseError{Kind: ErrMalformedInput, Detail: "content after root element"}
		}
	}
}

func decodeRoot(doc *xmlTileset) (*Descriptor, error) {
	d := &Descriptor{
		Version:      doc.Version,
		TiledVersion: doc.TiledVersion,
		Name:         doc.Name,
	}
	if err := doc.reject("tileset"); err != nil {
		return nil, err
	}
	if d.Name == "" {
		return nil, fieldErr(ErrMissingField, "name", "attribute is required")
	}

	required := []struct {
		field string
		raw   string
		dst   *int
	}{
		{"tilewidth", doc.TileWidth, &d.TileWidth},
		{"tileheight", doc.TileHeight, &d.TileHeight},
		{"tilecount", doc.TileCount, &d.TileCount},
		{"columns", doc.Columns, &d.Columns},
	}
	for _, r := range required {
		v, err := requiredInt(r.field, r.raw)
		if err != nil {
			return nil, err
		}
		*r.dst = v
	}

	var err error
	if d.Spacing, err = optionalInt("spacing", doc.Spacing, 0); err != nil {
		return nil, err
	}
	if d.Margin, err = optionalInt("margin", doc.Margin, 0); err != nil {
		return nil, err
	}

	if doc.Image == nil {
		return nil, fieldErr(ErrMissingField, "image", "element is required")
	}
	if err := doc.Image.reject("image"); err != nil {
		return nil, err
	}
	if doc.Image.Source == "" {
		return nil, fieldErr(ErrMissingField, "image.source", "attribute is required")
	}
	d.Image.Source = doc.Image.Source
	if d.Image.Width, err = requiredInt("image.width", doc.Image.Width); err != nil {
		return nil, err
	}
	if d.Image.Height, err = requiredInt("image.height", doc.Image.Height); err != nil {
		return nil, err
	}
	return d, nil
}

func decodeTile(i int, xt *xmlTile, tileCount int, seen map[int]bool) (TileOverride, error) {
	field := fmt.Sprintf("tile[%d]", i)
	if err := xt.reject(field); err != nil {
		return TileOverride{}, err
	}
	id, err := requiredInt(field+".id", xt.ID)
	if err != nil {
		return TileOverride{}, err
	}
	if err := checkTileRef(field+".id", id, tileCount, seen); err != nil {
		return TileOverride{}, err
	}
	p, err := parseProbability(field+".probability", xt.Probability)
	if err != nil {
		perr := err.(*ParseError)
		perr.TileID, perr.HasTile = id, true
		return TileOverride{}, perr
	}

	t := TileOverride{ID: id, Probability: p}
	if xt.Properties == nil {
		return t, nil
	}
	if err := xt.Properties.reject(field + ".properties"); err != nil {
		return TileOverride{}, err
	}
	for j, xp := range xt.Properties.Items {
		pf := fmt.Sprintf("%s.property[%d]", field, j)
		if err := xp.reject(pf); err != nil {
			return TileOverride{}, err
		}
		if xp.Name == "" {
			return TileOverride{}, tileErr(ErrMissingField, pf+".name", id, "attribute is required")
		}
		t.Properties = append(t.Properties, Property{Name: xp.Name, Type: xp.Type, Value: xp.Value})
	}
	return t, nil
}

func decodeWangSet(i int, xs *xmlWangSet, tileCount int) (WangSet, error) {
	field := fmt.Sprintf("wangset[%d]", i)
	if err := xs.reject(field); err != nil {
		return WangSet{}, err
	}
	if xs.Name == "" {
		return WangSet{}, fieldErr(ErrMissingField, field+".name", "attribute is required")
	}
	if err := checkTexts(text{field + ".name", xs.Name}); err != nil {
		return WangSet{}, err
	}
	s := WangSet{Name: xs.Name, Type: WangSetType(xs.Type)}
	if err := checkSetType(field+".type", s.Type); err != nil {
		return WangSet{}, err
	}

	var err error
	if s.Tile, err = optionalInt(field+".tile", xs.Tile, NoTile); err != nil {
		return WangSet{}, err
	}
	if err := checkRepresentative(field+".tile", s.Tile, tileCount); err != nil {
		return WangSet{}, err
	}

	if len(xs.Colors) > MaxWangColors {
		return WangSet{}, fieldErr(ErrMalformedInput, field, "%d colors declared, at most %d allowed", len(xs.Colors), MaxWangColors)
	}
	for j, xc := range xs.Colors {
		cf := fmt.Sprintf("%s.wangcolor[%d]", field, j)
		if err := xc.reject(cf); err != nil {
			return WangSet{}, err
		}
		// Same order as checkColor: name, color, tile, probability.
		c := WangColor{Name: xc.Name, Color: xc.Color}
		if err := checkTexts(text{cf + ".name", c.Name}); err != nil {
			return WangSet{}, err
		}
		if err := checkColorHex(cf, c); err != nil {
			return WangSet{}, err
		}
		if c.Tile, err = optionalInt(cf+".tile", xc.Tile, NoTile); err != nil {
			return WangSet{}, err
		}
		if err := checkRepresentative(cf+".tile", c.Tile, tileCount); err != nil {
			return WangSet{}, err
		}
		if c.Probability, err = parseProbability(cf+".probability", xc.Probability); err != nil {
			return WangSet{}, err
		}
		s.Colors = append(s.Colors, c)
	}

	seen := make(map[int]bool, len(xs.Tiles))
	for j, xw := range xs.Tiles {
		tf := fmt.Sprintf("%s.wangtile[%d]", field, j)
		if err := xw.reject(tf); err != nil {
			return WangSet{}, err
		}
		id, err := requiredInt(tf+".tileid", xw.TileID)
		if err != nil {
			return WangSet{}, err
		}
		if err := checkTileRef(tf+".tileid", id, tileCount, seen); err != nil {
			return WangSet{}, err
		}
		if xw.WangID == "" {
			return WangSet{}, tileErr(ErrMissingField, tf+".wangid", id, "attribute is required")
		}
		w, err := ParseWangID(xw.WangID)
		if err != nil {
			return WangSet{}, tileErr(ErrMalformedWangID, tf+".wangid", id, "%v", err)
		}
		if err := checkWangID(tf+".wangid", id, &s, w); err != nil {
			return WangSet{}, err
		}
		s.Tiles = append(s.Tiles, WangTile{TileID: id, WangID: w})
	}
	return s, nil
}

// ParseWangID decodes the comma-joined form, e.g. "0,3,0,3,0,3,0,3".
//
// Postcondition: Returns the 8 slots, or an error if the text does not hold
// exactly 8 comma-separated integers.
func ParseWangID(s string) (WangID, error) {
	parts := strings.Split(s, ",")
	if len(parts) != WangIDLen {
		return WangID{}, fmt.Errorf("%q has %d entries, want %d", s, len(parts), WangIDLen)
	}
	var w WangID
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return WangID{}, fmt.Errorf("entry %d of %q is not an integer", i, s)
		}
		w[i] = v
	}
	return w, nil
}

// String returns the comma-joined form of w.
func (w WangID) String() string {
	var b strings.Builder
	for i, v := range w {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

func requiredInt(field, raw string) (int, error) {
	if raw == "" {
		return 0, fieldErr(ErrMissingField, field, "attribute is required")
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ParseError{Kind: ErrMalformedInput, Field: field, Detail: fmt.Sprintf("%q is not an integer", raw)}
	}
	return v, nil
}

func optionalInt(field, raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ParseError{Kind: ErrMalformedInput, Field: field, Detail: fmt.Sprintf("%q is not an integer", raw)}
	}
	return v, nil
}

// parseProbability returns 0 for an absent attribute. A declared value must lie in (0, 1].
func parseProbability(field, raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ParseError{Kind: ErrMalformedInput, Field: field, Detail: fmt.Sprintf("%q is not a number", raw)}
	}
	if math.IsNaN(p) || p <= 0 || p > 1 {
		return 0, fieldErr(ErrInvalidProbability, field, "%s outside (0, 1]", raw)
	}
	return p, nil
}
