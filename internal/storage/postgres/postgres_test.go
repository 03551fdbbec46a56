package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tileset/internal/storage/postgres"
	"github.com/cory-johannsen/tileset/internal/testutil"
)

func TestPool_Health(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in -short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	ctx := context.Background()

	err := pc.Pool.Health(ctx, 5*time.Second)
	assert.ErrorIs(t, err, postgres.ErrSchemaMissing)

	pc.ApplyMigrations(t)
	require.NoError(t, pc.Pool.Health(ctx, 5*time.Second))
}

func TestPool_HealthCancelled(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in -short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pc.Pool.Health(ctx, 5*time.Second)
	require.Error(t, err)
	assert.NotErrorIs(t, err, postgres.ErrSchemaMissing)
}
