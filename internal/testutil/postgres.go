// Package testutil provides test helpers: PostgreSQL containers and a Telnet
// client.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cory-johannsen/apprentice/internal/config"
	"github.com/cory-johannsen/apprentice/internal/storage/postgres"
)

const postgresImage = "postgres:16-alpine"

// PostgresContainer is a running PostgreSQL server with a connected pool to
// its default database.
type PostgresContainer struct {
	container testcontainers.Container
	Pool      *postgres.Pool
	RawPool   *pgxpool.Pool
	Config    config.DatabaseConfig
}

// NewPostgresContainer starts a dedicated PostgreSQL container for one test.
//
// Precondition: Docker must be available.
// Postcondition: Returns a running container with a connected pool, or fails
// the test. The container is terminated when the test ends.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	pc, err := startPostgres(context.Background())
	if err != nil {
		t.Fatalf("%v", err)
	}
	t.Cleanup(func() {
		pc.Pool.Close()
		_ = pc.container.Terminate(context.Background())
	})
	return pc
}

func startPostgres(ctx context.Context) (*PostgresContainer, error) {
	start := time.Now()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("starting postgres container: %w [%s]", err, time.Since(start))
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("getting mapped port: %w", err)
	}

	cfg := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "test",
		Password:        "test",
		Name:            "test",
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("connecting to test postgres: %w", err)
	}
	return &PostgresContainer{container: container, Pool: pool, RawPool: pool.DB(), Config: cfg}, nil
}

// DSN returns the connection string for the default database.
func (pc *PostgresContainer) DSN() string {
	return pc.Config.DSN()
}

var (
	sharedOnce sync.Once
	shared     *PostgresContainer
	sharedErr  error
	databases  atomic.Int64
)

// NewPool returns a pool on a freshly created and migrated database inside a
// container shared by the whole test binary. The test is skipped under -short.
//
// Precondition: Docker must be available unless -short is set.
// Postcondition: The database is private to the calling test; the pool is
// closed when the test ends.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	sharedOnce.Do(func() {
		// Left running for the life of the test binary; the testcontainers
		// reaper removes it.
		shared, sharedErr = startPostgres(context.Background())
	})
	if sharedErr != nil {
		t.Fatalf("%v", sharedErr)
	}

	ctx := context.Background()
	cfg := shared.Config
	cfg.Name = fmt.Sprintf("test_%d", databases.Add(1))
	if _, err := shared.RawPool.Exec(ctx, "CREATE DATABASE "+cfg.Name); err != nil {
		t.Fatalf("creating database %s: %v", cfg.Name, err)
	}
	if err := postgres.MigrateUp(cfg.DSN()); err != nil {
		t.Fatalf("migrating database %s: %v", cfg.Name, err)
	}
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		t.Fatalf("connecting to database %s: %v", cfg.Name, err)
	}
	t.Cleanup(pool.Close)
	return pool.DB()
}
