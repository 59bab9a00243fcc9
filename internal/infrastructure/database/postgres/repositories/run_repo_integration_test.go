//go:build integration

// Integration tests for the run repository.  They require Docker and are
// gated behind the "integration" build tag.
package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/MolGrammar-Learner/internal/config"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/database/postgres"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/monitoring/logging"
)

// startPostgres launches a PostgreSQL 16 container and returns a migrated
// connection.
func startPostgres(t *testing.T) *postgres.Connection {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "molgrammar_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	conn, err := postgres.NewConnection(config.DatabaseConfig{
		Host:     host,
		Port:     port.Int(),
		User:     "test",
		Password: "test",
		DBName:   "molgrammar_test",
	}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.Migrate())
	return conn
}

func TestRunRepository_FullRunLifecycle(t *testing.T) {
	conn := startPostgres(t)
	repo := repositories.NewRunRepository(conn, logging.NewNopLogger())
	ctx := context.Background()

	run := &repositories.TrainingRun{
		RunID:        "run-integration-1",
		TrainingData: "data/crow.txt",
		NumMolecules: 30,
		MaxEpochs:    10,
		MCMCSize:     5,
	}
	require.NoError(t, repo.CreateRun(ctx, run))

	for epoch := 0; epoch < 3; epoch++ {
		require.NoError(t, repo.RecordEpoch(ctx, &repositories.EpochMetric{
			RunID:         run.RunID,
			Epoch:         epoch,
			MeanReturn:    1.0 + float64(epoch)*0.2,
			MeanDiversity: 0.8,
			MeanSyn:       0.3,
			Loss:          -1.5,
		}))
	}

	require.NoError(t, repo.CompleteRun(ctx, run.RunID, repositories.RunStatusCompleted, 1.4, 42))

	loaded, err := repo.GetRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, repositories.RunStatusCompleted, loaded.Status)
	require.True(t, loaded.BestReturn.Valid)
	assert.InDelta(t, 1.4, loaded.BestReturn.Float64, 1e-9)
	require.True(t, loaded.TotalGenerated.Valid)
	assert.Equal(t, int64(42), loaded.TotalGenerated.Int64)
	assert.True(t, loaded.CompletedAt.Valid)

	metrics, err := repo.ListEpochs(ctx, run.RunID)
	require.NoError(t, err)
	require.Len(t, metrics, 3)
	assert.InDelta(t, 1.4, metrics[2].MeanReturn, 1e-9)
}

func TestRunRepository_MigrateIsIdempotent(t *testing.T) {
	conn := startPostgres(t)
	require.NoError(t, conn.Migrate())
	require.NoError(t, conn.HealthCheck(context.Background()))
}

//Personal.AI order the ending
