package postgres_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tileset/internal/storage/postgres"
	"github.com/cory-johannsen/tileset/internal/testutil"
	"github.com/cory-johannsen/tileset/internal/tileset"
)

func altFloor(t *testing.T) (*tileset.Descriptor, []byte) {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("..", "..", "tileset", "testdata", "alt_floor.tsx"))
	require.NoError(t, err)
	d, err := tileset.Parse(raw)
	require.NoError(t, err)
	return d, raw
}

func TestChecksum_KnownValue(t *testing.T) {
	// BLAKE2b-256 of the empty input.
	assert.Equal(t, "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8", postgres.Checksum(nil))
	assert.Len(t, postgres.Checksum([]byte("tileset")), 64)
}

// Property: Checksum is deterministic and distinguishes distinct inputs.
func TestPropertyChecksum(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.SliceOf(rapid.Byte()).Draw(t, "a")
		b := rapid.SliceOf(rapid.Byte()).Draw(t, "b")
		if postgres.Checksum(a) != postgres.Checksum(append([]byte(nil), a...)) {
			t.Fatalf("checksum not deterministic")
		}
		if string(a) != string(b) && postgres.Checksum(a) == postgres.Checksum(b) {
			t.Fatalf("collision for %x and %x", a, b)
		}
	})
}

func TestRecord_Descriptor(t *testing.T) {
	_, raw := altFloor(t)
	d, err := postgres.Record{Name: "alt_floor", Source: raw}.Descriptor()
	require.NoError(t, err)
	assert.Equal(t, 48, d.TileCount)

	_, err = postgres.Record{Name: "bad", Source: []byte("<tileset")}.Descriptor()
	assert.ErrorIs(t, err, tileset.ErrMalformedInput)
}

func TestTilesetRepository_Lifecycle(t *testing.T) {
	repo := postgres.NewTilesetRepository(testutil.NewPool(t))
	ctx := context.Background()
	d, raw := altFloor(t)

	rec, err := repo.Upsert(ctx, d, raw)
	require.NoError(t, err)
	assert.Equal(t, "alt_floor", rec.Name)
	assert.Equal(t, 48, rec.TileCount)
	assert.Equal(t, 6, rec.Columns)
	assert.Equal(t, 1, rec.WangSetCount)
	assert.Equal(t, postgres.Checksum(raw), rec.Checksum)

	got, err := repo.GetByName(ctx, "alt_floor")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	back, err := got.Descriptor()
	require.NoError(t, err)
	assert.Equal(t, d, back)

	// unchanged source is not rewritten
	changed, err := repo.Save(ctx, d, raw)
	require.NoError(t, err)
	assert.False(t, changed)

	// a changed source keeps the row identity
	d.Tiles[0].Probability = 0.5
	canonical, err := tileset.Serialize(d)
	require.NoError(t, err)
	changed, err = repo.Save(ctx, d, canonical)
	require.NoError(t, err)
	assert.True(t, changed)
	updated, err := repo.GetByName(ctx, "alt_floor")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, updated.ID)
	assert.Equal(t, postgres.Checksum(canonical), updated.Checksum)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Source)

	require.NoError(t, repo.Delete(ctx, "alt_floor"))
	_, err = repo.GetByName(ctx, "alt_floor")
	assert.ErrorIs(t, err, postgres.ErrTilesetNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "alt_floor"), postgres.ErrTilesetNotFound)
	_, err = repo.Checksum(ctx, "alt_floor")
	assert.ErrorIs(t, err, postgres.ErrTilesetNotFound)
}

func TestTilesetRepository_SaveInserts(t *testing.T) {
	repo := postgres.NewTilesetRepository(testutil.NewPool(t))
	d, raw := altFloor(t)
	changed, err := repo.Save(context.Background(), d, raw)
	require.NoError(t, err)
	assert.True(t, changed)
}
