package tileset

import (
	"bytes"
	"encoding/xml"
	"strconv"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// Serialize encodes d in the layout Tiled writes: one-space indentation,
// self-closing leaf elements, decimal integers and shortest-form floats.
//
// Precondition: d must pass Validate.
// Postcondition: Parse(Serialize(d)) is equal to d, or a non-nil error is
// returned for an invalid descriptor.
func Serialize(d *Descriptor) ([]byte, error) {
	if err := Validate(d); err != nil {
		return nil, err
	}

	w := &tsxWriter{}
	w.buf.WriteString(xmlHeader)

	root := []attr{}
	if d.Version != "" {
		root = append(root, attr{"version", d.Version})
	}
	if d.TiledVersion != "" {
		root = append(root, attr{"tiledversion", d.TiledVersion})
	}
	root = append(root,
		attr{"name", d.Name},
		intAttr("tilewidth", d.TileWidth),
		intAttr("tileheight", d.TileHeight),
	)
	if d.Spacing != 0 {
		root = append(root, intAttr("spacing", d.Spacing))
	}
	if d.Margin != 0 {
		root = append(root, intAttr("margin", d.Margin))
	}
	root = append(root, intAttr("tilecount", d.TileCount), intAttr("columns", d.Columns))
	w.open(0, "tileset", root)

	w.leaf(1, "image", []attr{
		{"source", d.Image.Source},
		intAttr("width", d.Image.Width),
		intAttr("height", d.Image.Height),
	})

	for _, t := range d.Tiles {
		attrs := []attr{intAttr("id", t.ID)}
		if t.Probability != 0 {
			attrs = append(attrs, floatAttr("probability", t.Probability))
		}
		if len(t.Properties) == 0 {
			w.leaf(1, "tile", attrs)
			continue
		}
		w.open(1, "tile", attrs)
		w.open(2, "properties", nil)
		for _, p := range t.Properties {
			pa := []attr{{"name", p.Name}}
			if p.Type != "" {
				pa = append(pa, attr{"type", p.Type})
			}
			pa = append(pa, attr{"value", p.Value})
			w.leaf(3, "property", pa)
		}
		w.close(2, "properties")
		w.close(1, "tile")
	}

	w.open(1, "wangsets", nil)
	for _, s := range d.WangSets {
		attrs := []attr{{"name", s.Name}, {"type", string(s.Type)}, intAttr("tile", s.Tile)}
		if len(s.Colors) == 0 && len(s.Tiles) == 0 {
			w.leaf(2, "wangset", attrs)
			continue
		}
		w.open(2, "wangset", attrs)
		for _, c := range s.Colors {
			ca := []attr{{"name", c.Name}}
			if c.Color != "" {
				ca = append(ca, attr{"color", c.Color})
			}
			ca = append(ca, intAttr("tile", c.Tile))
			if c.Probability != 0 {
				ca = append(ca, floatAttr("probability", c.Probability))
			}
			w.leaf(3, "wangcolor", ca)
		}
		for _, wt := range s.Tiles {
			w.leaf(3, "wangtile", []attr{intAttr("tileid", wt.TileID), {"wangid", wt.WangID.String()}})
		}
		w.close(2, "wangset")
	}
	w.close(1, "wangsets")
	w.close(0, "tileset")

	return w.buf.Bytes(), nil
}

type attr struct {
	name  string
	value string
}

func intAttr(name string, v int) attr {
	return attr{name, strconv.Itoa(v)}
}

func floatAttr(name string, v float64) attr {
	return attr{name, strconv.FormatFloat(v, 'g', -1, 64)}
}

// tsxWriter emits elements with Tiled's indentation. encoding/xml cannot
// produce self-closing elements, so tags are written directly.
type tsxWriter struct {
	buf bytes.Buffer
}

func (w *tsxWriter) start(depth int, name string, attrs []attr) {
	for i := 0; i < depth; i++ {
		w.buf.WriteByte(' ')
	}
	w.buf.WriteByte('<')
	w.buf.WriteString(name)
	for _, a := range attrs {
		w.buf.WriteByte(' ')
		w.buf.WriteString(a.name)
		w.buf.WriteString(`="`)
		// EscapeText only fails when the underlying writer does.
		_ = xml.EscapeText(&w.buf, []byte(a.value))
		w.buf.WriteByte('"')
	}
}

func (w *tsxWriter) open(depth int, name string, attrs []attr) {
	w.start(depth, name, attrs)
	w.buf.WriteString(">\n")
}

func (w *tsxWriter) leaf(depth int, name string, attrs []attr) {
	w.start(depth, name, attrs)
	w.buf.WriteString("/>\n")
}

func (w *tsxWriter) close(depth int, name string) {
	for i := 0; i < depth; i++ {
		w.buf.WriteByte(' ')
	}
	w.buf.WriteString("</")
	w.buf.WriteString(name)
	w.buf.WriteString(">\n")
}
