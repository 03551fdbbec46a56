package tileset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tileset/internal/tileset"
)

func TestSerialize_AltFloorGolden(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "alt_floor.tsx"))
	require.NoError(t, err)

	d, err := tileset.Parse(raw)
	require.NoError(t, err)

	out, err := tileset.Serialize(d)
	require.NoError(t, err)
	assert.Equal(t, string(raw), string(out), "re-encoding must reproduce the Tiled file byte for byte")
}

func TestSerialize_RejectsInvalid(t *testing.T) {
	d := genDescriptor().Example(0)
	d.WangSets = nil
	_, err := tileset.Serialize(d)
	assert.ErrorIs(t, err, tileset.ErrMissingField)

	_, err = tileset.Serialize(nil)
	assert.ErrorIs(t, err, tileset.ErrMalformedInput)
}

func TestSerialize_EscapesAttributes(t *testing.T) {
	d := genDescriptor().Example(1)
	d.Name = `a "quoted" <name> & more`
	out, err := tileset.Serialize(d)
	require.NoError(t, err)
	assert.NotContains(t, string(out), `<name>`)

	back, err := tileset.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, d.Name, back.Name)
}

// TestRoundTrip_Property verifies Parse(Serialize(d)) == d for generated valid descriptors.
func TestRoundTrip_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := genDescriptor().Draw(rt, "descriptor")
		require.NoError(rt, tileset.Validate(d))

		out, err := tileset.Serialize(d)
		if err != nil {
			rt.Fatalf("Serialize: %v", err)
		}
		back, err := tileset.Parse(out)
		if err != nil {
			rt.Fatalf("Parse(Serialize(d)): %v\n%s", err, out)
		}
		if diff := cmp.Diff(d, back, cmpopts.EquateEmpty()); diff != "" {
			rt.Fatalf("Parse(Serialize(d)) != d (-want +got):\n%s", diff)
		}
	})
}

// TestSerialize_Idempotent verifies canonical output is a fixed point.
func TestSerialize_Idempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := genDescriptor().Draw(rt, "descriptor")
		first, err := tileset.Serialize(d)
		require.NoError(rt, err)
		back, err := tileset.Parse(first)
		require.NoError(rt, err)
		second, err := tileset.Serialize(back)
		require.NoError(rt, err)
		assert.Equal(rt, string(first), string(second))
	})
}
