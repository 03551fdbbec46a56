package postgres

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/blake2b"

	"github.com/cory-johannsen/tileset/internal/tileset"
)

// ErrTilesetNotFound is returned when a tileset lookup yields no results.
var ErrTilesetNotFound = errors.New("tileset not found")

// Record is one stored tileset. Source holds the TSX bytes it was imported from.
type Record struct {
	ID           uuid.UUID
	Name         string
	TileCount    int
	Columns      int
	WangSetCount int
	Checksum     string
	Source       []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Descriptor parses the stored source.
func (r Record) Descriptor() (*tileset.Descriptor, error) {
	d, err := tileset.Parse(r.Source)
	if err != nil {
		return nil, fmt.Errorf("parsing stored tileset %q: %w", r.Name, err)
	}
	return d, nil
}

// Checksum returns the hex-encoded BLAKE2b-256 digest of raw.
func Checksum(raw []byte) string {
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

const recordColumns = `id, name, tile_count, column_count, wang_set_count, checksum, source, created_at, updated_at`

// TilesetRepository provides tileset catalog persistence operations.
type TilesetRepository struct {
	db *pgxpool.Pool
}

// NewTilesetRepository creates a TilesetRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewTilesetRepository(db *pgxpool.Pool) *TilesetRepository {
	return &TilesetRepository{db: db}
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.Name, &rec.TileCount, &rec.Columns, &rec.WangSetCount,
		&rec.Checksum, &rec.Source, &rec.CreatedAt, &rec.UpdatedAt)
	return rec, err
}

// Upsert stores raw as the source of the tileset named d.Name, replacing any
// existing row with that name. The row keeps its ID and CreatedAt on update.
//
// Precondition: d must be valid; raw must be the TSX it was parsed from.
// Postcondition: Returns the stored Record with its checksum set.
func (r *TilesetRepository) Upsert(ctx context.Context, d *tileset.Descriptor, raw []byte) (Record, error) {
	rec, err := scanRecord(r.db.QueryRow(ctx,
		`INSERT INTO tilesets (id, name, tile_count, column_count, wang_set_count, checksum, source)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (name) DO UPDATE SET
		     tile_count     = EXCLUDED.tile_count,
		     column_count   = EXCLUDED.column_count,
		     wang_set_count = EXCLUDED.wang_set_count,
		     checksum       = EXCLUDED.checksum,
		     source         = EXCLUDED.source,
		     updated_at     = NOW()
		 RETURNING `+recordColumns,
		uuid.New(), d.Name, d.TileCount, d.Columns, len(d.WangSets), Checksum(raw), raw,
	))
	if err != nil {
		return Record{}, fmt.Errorf("upserting tileset %q: %w", d.Name, err)
	}
	return rec, nil
}

// Save upserts d unless the stored checksum already matches raw. It reports
// whether a write happened and satisfies importer.Store.
func (r *TilesetRepository) Save(ctx context.Context, d *tileset.Descriptor, raw []byte) (bool, error) {
	stored, err := r.Checksum(ctx, d.Name)
	switch {
	case err == nil && stored == Checksum(raw):
		return false, nil
	case err != nil && !errors.Is(err, ErrTilesetNotFound):
		return false, err
	}
	if _, err := r.Upsert(ctx, d, raw); err != nil {
		return false, err
	}
	return true, nil
}

// GetByName retrieves a tileset by name.
//
// Postcondition: Returns ErrTilesetNotFound if no row matches.
func (r *TilesetRepository) GetByName(ctx context.Context, name string) (Record, error) {
	rec, err := scanRecord(r.db.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM tilesets WHERE name = $1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrTilesetNotFound
		}
		return Record{}, fmt.Errorf("querying tileset %q: %w", name, err)
	}
	return rec, nil
}

// List returns every stored tileset ordered by name. Source is not loaded.
func (r *TilesetRepository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, tile_count, column_count, wang_set_count, checksum, created_at, updated_at
		 FROM tilesets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing tilesets: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.TileCount, &rec.Columns, &rec.WangSetCount,
			&rec.Checksum, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning tileset: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tilesets: %w", err)
	}
	return out, nil
}

// Delete removes the tileset with the given name.
//
// Postcondition: Returns ErrTilesetNotFound if no row matched.
func (r *TilesetRepository) Delete(ctx context.Context, name string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tilesets WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("deleting tileset %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTilesetNotFound
	}
	return nil
}

// Checksum returns the stored checksum for name.
//
// Postcondition: Returns ErrTilesetNotFound if no row matches.
func (r *TilesetRepository) Checksum(ctx context.Context, name string) (string, error) {
	var sum string
	err := r.db.QueryRow(ctx, `SELECT checksum FROM tilesets WHERE name = $1`, name).Scan(&sum)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrTilesetNotFound
		}
		return "", fmt.Errorf("querying checksum for %q: %w", name, err)
	}
	return sum, nil
}
