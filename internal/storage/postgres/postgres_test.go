package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/apprentice/internal/storage/postgres"
	"github.com/cory-johannsen/apprentice/internal/testutil"
)

func TestPool_HealthAndMonitor(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	require.NoError(t, pc.Pool.Health(context.Background(), time.Second))

	var application string
	require.NoError(t, pc.RawPool.QueryRow(context.Background(),
		`SELECT current_setting('application_name')`).Scan(&application))
	assert.Equal(t, "apprentice", application)

	core, logs := observer.New(zap.DebugLevel)
	stop := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- pc.Pool.Monitor(stop, 20*time.Millisecond, zap.New(core)) }()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("database healthy").Len() > 0
	}, 2*time.Second, 10*time.Millisecond)
	close(stop)
	require.NoError(t, <-done)
	assert.Zero(t, logs.FilterMessage("database health check failed").Len())
}

func TestMigrateUp_Idempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	require.NoError(t, postgres.MigrateUp(pc.DSN()))
	require.NoError(t, postgres.MigrateUp(pc.DSN()), "an up-to-date schema is not an error")

	var tables int
	require.NoError(t, pc.RawPool.QueryRow(context.Background(),
		`SELECT count(*) FROM information_schema.tables
		 WHERE table_schema = 'public' AND table_name IN ('accounts', 'save_slots')`).Scan(&tables))
	assert.Equal(t, 2, tables)

	m, err := postgres.NewMigrator(pc.DSN())
	require.NoError(t, err)
	defer m.Close()
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.EqualValues(t, 2, version)
}
