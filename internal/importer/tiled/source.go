// Package tiled implements importer.Source for directories of Tiled .tsx files.
package tiled

import (
	"context"
	"fmt"
	"os"

	"github.com/cory-johannsen/tileset/internal/importer"
	"github.com/cory-johannsen/tileset/internal/tileset"
)

var _ importer.Source = (*Source)(nil)

// Source reads every *.tsx file directly inside the source directory:
//
//	sourceDir/
//	  floor.tsx
//	  walls.tsx
type Source struct{}

// NewSource constructs a Source.
func NewSource() *Source { return &Source{} }

// Load parses each descriptor in file name order and fails on the first
// invalid one, naming its path.
//
// Precondition: sourceDir must be a readable directory.
// Postcondition: returns at least one SourceTileset or a non-nil error.
func (s *Source) Load(ctx context.Context, sourceDir string) ([]*importer.SourceTileset, error) {
	paths, err := tileset.Files(sourceDir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no tileset files found in %s", sourceDir)
	}

	results := make([]*importer.SourceTileset, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading tileset file %s: %w", path, err)
		}
		d, err := tileset.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing tileset file %s: %w", path, err)
		}
		results = append(results, &importer.SourceTileset{Path: path, Raw: raw, Descriptor: d})
	}
	return results, nil
}
