// Package dbtest starts a disposable Postgres container for integration tests.
//
// Tests that use it carry the integration build tag:
//
//	go test -tags integration ./...
package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"github.com/rein-network/rein-node/internal/database"
)

const (
	postgresImage = "postgres"
	postgresTag   = "17-alpine"
)

// NewPool starts Postgres, applies the migrations and returns a pool connected to it.
// The container is removed when the test finishes. The test is skipped when docker is not available.
func NewPool(t testing.TB) *pgxpool.Pool {
	t.Helper()

	dockerPool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	if err := dockerPool.Client.Ping(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
	dockerPool.MaxWait = 60 * time.Second

	resource, err := dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: postgresImage,
		Tag:        postgresTag,
		Env: []string{
			"POSTGRES_USER=rein",
			"POSTGRES_PASSWORD=rein",
			"POSTGRES_DB=rein",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("failed to start postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := dockerPool.Purge(resource); err != nil {
			t.Logf("failed to remove postgres container: %v", err)
		}
	})
	// the container is removed even if the test binary is killed
	_ = resource.Expire(300)

	databaseURL := fmt.Sprintf("postgres://rein:rein@%s/rein?sslmode=disable", resource.GetHostPort("5432/tcp"))

	var pool *pgxpool.Pool
	err = dockerPool.Retry(func() error {
		p, err := pgxpool.New(context.Background(), databaseURL)
		if err != nil {
			return err
		}
		if err := p.Ping(context.Background()); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		t.Fatalf("postgres did not become ready: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := database.Migrate(context.Background(), pool); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return pool
}
