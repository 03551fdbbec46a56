package tileset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extension is the file suffix of tileset descriptors.
const Extension = ".tsx"

// LoadFromFile reads and parses a single descriptor file.
//
// Precondition: path must point to a readable TSX file.
// Postcondition: Returns a validated Descriptor or a non-nil error.
func LoadFromFile(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tileset file %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing tileset file %s: %w", path, err)
	}
	return d, nil
}

// Files returns the sorted paths of every descriptor directly inside dir.
//
// Postcondition: Returns the paths (possibly empty) or a non-nil error.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading tileset directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Extension) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadFromDir parses every descriptor directly inside dir, in name order.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all descriptors or the first error encountered.
func LoadFromDir(dir string) ([]*Descriptor, error) {
	paths, err := Files(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no tileset files found in %s", dir)
	}
	out := make([]*Descriptor, 0, len(paths))
	for _, p := range paths {
		d, err := LoadFromFile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// WriteFile serializes d to path.
//
// Postcondition: path holds the canonical encoding of d, or an error is returned
// and path is left untouched.
func WriteFile(path string, d *Descriptor) error {
	data, err := Serialize(d)
	if err != nil {
		return fmt.Errorf("serialising tileset for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing tileset to %s: %w", path, err)
	}
	return nil
}
