//go:build integration_pg
// +build integration_pg

// Package pgtest boots throwaway Postgres containers for integration tests
package pgtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cartelera/internal/platform/store"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// StartPostgres runs a disposable postgres container and returns its DSN.
// Deadlines are generous to survive a first image pull
func StartPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mapped.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

// OpenStore opens the platform store against dsn and applies schema
func OpenStore(t *testing.T, ctx context.Context, dsn string, schema ...string) *store.Store {
	t.Helper()

	st, err := store.Open(ctx, store.Config{
		AppName: "cartelera-test",
		PG: store.PGConfig{
			Enabled:        true,
			URL:            dsn,
			MaxConns:       4,
			ConnectRetries: 5,
		},
	})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	for _, ddl := range schema {
		if _, err := st.PG.Exec(ctx, ddl); err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return st
}
