package lint

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tileset/internal/tileset"
)

// hook is the global every rule script must define.
const hook = "lint"

type script struct {
	name string
	L    *lua.LState
}

// Linter runs the built-in rules followed by every loaded Lua rule script.
//
// Each script gets its own VM so that scripts cannot see each other's globals.
// Check calls are serialized.
type Linter struct {
	mu        sync.Mutex
	scripts   []*script
	instLimit int
	logger    *zap.Logger
}

// New creates a Linter with only the built-in rules.
//
// Precondition: logger must be non-nil; instLimit >= 0 (0 = default).
// Postcondition: Returns a non-nil Linter with no scripts loaded.
func New(instLimit int, logger *zap.Logger) *Linter {
	return &Linter{instLimit: instLimit, logger: logger}
}

// LoadDir loads every *.lua file in dir in lexicographic order. Each file must
// define a global function named lint.
//
// Precondition: dir must be a readable directory.
// Postcondition: On success every script is appended to the rule list. On
// error no script from dir is kept.
func (l *Linter) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("lint: reading script dir %q: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	loaded := make([]*script, 0, len(luaFiles))
	closeAll := func() {
		for _, s := range loaded {
			s.L.Close()
		}
	}
	for _, path := range luaFiles {
		name := strings.TrimSuffix(filepath.Base(path), ".lua")
		L := NewSandboxedState(l.instLimit)
		if err := L.DoFile(path); err != nil {
			L.Close()
			closeAll()
			return fmt.Errorf("lint: loading %q: %w", path, err)
		}
		if _, ok := L.GetGlobal(hook).(*lua.LFunction); !ok {
			L.Close()
			closeAll()
			return fmt.Errorf("lint: %q does not define a %s function", path, hook)
		}
		loaded = append(loaded, &script{name: name, L: L})
		l.logger.Debug("lint script loaded", zap.String("script", name), zap.String("path", path))
	}

	l.mu.Lock()
	l.scripts = append(l.scripts, loaded...)
	l.mu.Unlock()
	return nil
}

// Scripts returns the names of the loaded scripts in run order.
func (l *Linter) Scripts() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, len(l.scripts))
	for i, s := range l.scripts {
		names[i] = s.name
	}
	return names
}

// Check runs every rule against d and returns the warnings, each prefixed with
// the name of the rule that produced it.
//
// Precondition: d must be a valid descriptor.
// Postcondition: A script runtime error, a non-table result or an exceeded
// instruction limit returns an error naming the script.
func (l *Linter) Check(d *tileset.Descriptor) ([]string, error) {
	var warnings []string
	for _, r := range builtinRules {
		for _, w := range r.rule(d) {
			warnings = append(warnings, r.name+": "+w)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.scripts {
		found, err := l.run(s, d)
		if err != nil {
			return nil, err
		}
		for _, w := range found {
			warnings = append(warnings, s.name+": "+w)
		}
	}
	return warnings, nil
}

func (l *Linter) run(s *script, d *tileset.Descriptor) ([]string, error) {
	L := s.L
	resetLimit(L, l.instLimit)
	if err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal(hook),
		NRet:    1,
		Protect: true,
	}, descriptorTable(L, d)); err != nil {
		return nil, fmt.Errorf("lint: script %q: %w", s.name, err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	switch v := ret.(type) {
	case *lua.LNilType:
		return nil, nil
	case *lua.LTable:
		var out []string
		for i := 1; i <= v.Len(); i++ {
			item := v.RawGetInt(i)
			switch item.Type() {
			case lua.LTString, lua.LTNumber:
				out = append(out, item.String())
			default:
				return nil, fmt.Errorf("lint: script %q: warning %d is a %s, want string", s.name, i, item.Type())
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("lint: script %q: %s returned %s, want table", s.name, hook, ret.Type())
	}
}

// Close releases every script VM.
func (l *Linter) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.scripts {
		s.L.Close()
	}
	l.scripts = nil
}

// descriptorTable converts d to the table passed to lint. Arrays are 1-based.
func descriptorTable(L *lua.LState, d *tileset.Descriptor) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("name", lua.LString(d.Name))
	t.RawSetString("tilewidth", lua.LNumber(d.TileWidth))
	t.RawSetString("tileheight", lua.LNumber(d.TileHeight))
	t.RawSetString("spacing", lua.LNumber(d.Spacing))
	t.RawSetString("margin", lua.LNumber(d.Margin))
	t.RawSetString("tilecount", lua.LNumber(d.TileCount))
	t.RawSetString("columns", lua.LNumber(d.Columns))

	img := L.NewTable()
	img.RawSetString("source", lua.LString(d.Image.Source))
	img.RawSetString("width", lua.LNumber(d.Image.Width))
	img.RawSetString("height", lua.LNumber(d.Image.Height))
	t.RawSetString("image", img)

	tiles := L.NewTable()
	for _, o := range d.Tiles {
		tt := L.NewTable()
		tt.RawSetString("id", lua.LNumber(o.ID))
		tt.RawSetString("probability", lua.LNumber(o.Weight()))
		tiles.Append(tt)
	}
	t.RawSetString("tiles", tiles)

	sets := L.NewTable()
	for _, ws := range d.WangSets {
		st := L.NewTable()
		st.RawSetString("name", lua.LString(ws.Name))
		st.RawSetString("type", lua.LString(ws.Type))
		st.RawSetString("tile", lua.LNumber(ws.Tile))

		colors := L.NewTable()
		for _, c := range ws.Colors {
			ct := L.NewTable()
			ct.RawSetString("name", lua.LString(c.Name))
			ct.RawSetString("color", lua.LString(c.Color))
			ct.RawSetString("probability", lua.LNumber(c.Weight()))
			colors.Append(ct)
		}
		st.RawSetString("colors", colors)

		wts := L.NewTable()
		for _, wt := range ws.Tiles {
			wtt := L.NewTable()
			wtt.RawSetString("tileid", lua.LNumber(wt.TileID))
			id := L.NewTable()
			for _, c := range wt.WangID {
				id.Append(lua.LNumber(c))
			}
			wtt.RawSetString("wangid", id)
			wts.Append(wtt)
		}
		st.RawSetString("tiles", wts)
		sets.Append(st)
	}
	t.RawSetString("wangsets", sets)
	return t
}
