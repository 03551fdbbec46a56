package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tileset/internal/manifest"
	"github.com/cory-johannsen/tileset/internal/observability"
	"github.com/cory-johannsen/tileset/internal/tileset"
)

// Summary counts what a Run produced.
type Summary struct {
	Written   int
	Persisted int
	Unchanged int
	Warnings  int
}

// Importer orchestrates tileset import from a Source to an output directory.
type Importer struct {
	source Source
	logger *zap.Logger

	// Injected after construction. nil = step skipped.
	Linter   Linter
	Store    Store
	Progress Progress
}

// New constructs an Importer backed by the given Source.
//
// Precondition: source and logger must be non-nil.
// Postcondition: returns a non-nil Importer with linting, persistence and
// progress reporting disabled.
func New(source Source, logger *zap.Logger) *Importer {
	return &Importer{source: source, logger: logger}
}

// Run loads descriptors from sourceDir, lints each, and writes its manifest
// as <id>.yaml to outputDir, where id is NameToID of the tileset name. When a
// Store is set, the source bytes are persisted as well; a tileset without Raw
// content is persisted in its canonical TSX encoding.
//
// Precondition: sourceDir must satisfy the source's layout requirements;
// outputDir must exist or be creatable.
// Postcondition: one manifest per tileset is written to outputDir, or an error
// is returned.
func (imp *Importer) Run(ctx context.Context, sourceDir, outputDir string) (Summary, error) {
	overall := time.Now()
	var sum Summary

	t0 := time.Now()
	tilesets, err := imp.source.Load(ctx, sourceDir)
	if err != nil {
		return sum, fmt.Errorf("loading source: %w", err)
	}
	imp.logger.Info("tilesets loaded",
		zap.Int("count", len(tilesets)),
		zap.Duration("elapsed", time.Since(t0)),
	)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return sum, fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}
	if imp.Progress != nil {
		imp.Progress.ChangeMax(len(tilesets))
	}

	ids := make(map[string]string, len(tilesets))
	for _, ts := range tilesets {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		id := NameToID(ts.Descriptor.Name)
		if id == "" {
			return sum, fmt.Errorf("tileset %q in %s: name yields an empty id", ts.Descriptor.Name, ts.Path)
		}
		if prev, dup := ids[id]; dup {
			return sum, fmt.Errorf("tileset id %q produced by both %s and %s", id, prev, ts.Path)
		}
		ids[id] = ts.Path

		if err := imp.importOne(ctx, id, ts, outputDir, &sum); err != nil {
			return sum, err
		}
		if imp.Progress != nil {
			if err := imp.Progress.Add(1); err != nil {
				imp.logger.Debug("progress update failed", zap.Error(err))
			}
		}
	}

	imp.logger.Info("import complete",
		zap.Int("written", sum.Written),
		zap.Int("persisted", sum.Persisted),
		zap.Int("unchanged", sum.Unchanged),
		zap.Int("warnings", sum.Warnings),
		zap.Duration("elapsed", time.Since(overall)),
	)
	return sum, nil
}

func (imp *Importer) importOne(ctx context.Context, id string, ts *SourceTileset, outputDir string, sum *Summary) error {
	t1 := time.Now()
	d := ts.Descriptor
	field := observability.Tileset(d.Name, ts.Path)

	if imp.Linter != nil {
		warnings, err := imp.Linter.Check(d)
		if err != nil {
			return fmt.Errorf("linting tileset %q: %w", id, err)
		}
		for _, w := range warnings {
			imp.logger.Warn("lint", field, zap.String("finding", w))
		}
		sum.Warnings += len(warnings)
	}

	data, err := manifest.Marshal(manifest.Build(id, d))
	if err != nil {
		return err
	}
	// Validate output is loadable before writing.
	if _, err := manifest.LoadFromBytes(data); err != nil {
		return fmt.Errorf("manifest %q failed validation: %w", id, err)
	}
	outPath := filepath.Join(outputDir, id+".yaml")
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("writing manifest %q to %s: %w", id, outPath, err)
	}
	sum.Written++

	if imp.Store != nil {
		raw := ts.Raw
		if len(raw) == 0 {
			var err error
			if raw, err = tileset.Serialize(d); err != nil {
				return fmt.Errorf("serialising tileset %q: %w", id, err)
			}
		}
		changed, err := imp.Store.Save(ctx, d, raw)
		if err != nil {
			return fmt.Errorf("persisting tileset %q: %w", id, err)
		}
		if changed {
			sum.Persisted++
		} else {
			sum.Unchanged++
		}
	}

	imp.logger.Debug("tileset imported",
		field,
		zap.String("manifest", outPath),
		zap.Int("tiles", d.TileCount),
		zap.Int("wang_sets", len(d.WangSets)),
		zap.Duration("elapsed", time.Since(t1)),
	)
	return nil
}
