package importer

import (
	"context"

	"github.com/cory-johannsen/tileset/internal/tileset"
)

// SourceTileset is one parsed descriptor together with where it came from.
type SourceTileset struct {
	// Path is the file the descriptor was read from.
	Path string
	// Raw is the file content as read.
	Raw        []byte
	Descriptor *tileset.Descriptor
}

// Source loads tileset descriptors from a format-specific source directory.
//
// Precondition: sourceDir must exist and contain the expected layout for the format.
// Postcondition: returns at least one SourceTileset, or a non-nil error.
type Source interface {
	Load(ctx context.Context, sourceDir string) ([]*SourceTileset, error)
}

// Linter reports non-fatal findings about a descriptor.
type Linter interface {
	Check(d *tileset.Descriptor) ([]string, error)
}

// Store persists descriptors alongside the TSX bytes they were parsed from.
// Save reports whether the stored copy changed.
type Store interface {
	Save(ctx context.Context, d *tileset.Descriptor, raw []byte) (bool, error)
}

// Progress receives per-tileset progress. It matches *progressbar.ProgressBar.
type Progress interface {
	ChangeMax(max int)
	Add(n int) error
}
