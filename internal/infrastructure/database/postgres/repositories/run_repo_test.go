package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/database/postgres"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

type RunRepoTestSuite struct {
	suite.Suite
	db   *sql.DB
	mock sqlmock.Sqlmock
	repo *RunRepository
}

func (s *RunRepoTestSuite) SetupTest() {
	var err error
	s.db, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	conn := postgres.NewConnectionWithDB(s.db, logging.NewNopLogger())
	s.repo = NewRunRepository(conn, logging.NewNopLogger())
}

func (s *RunRepoTestSuite) TearDownTest() {
	s.db.Close()
	require.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *RunRepoTestSuite) TestCreateRun() {
	s.mock.ExpectExec("INSERT INTO training_runs").
		WithArgs("run-1", "data/crow.txt", 30, 1000, 5, RunStatusRunning, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.repo.CreateRun(context.Background(), &TrainingRun{
		RunID:        "run-1",
		TrainingData: "data/crow.txt",
		NumMolecules: 30,
		MaxEpochs:    1000,
		MCMCSize:     5,
	})
	s.NoError(err)
}

func (s *RunRepoTestSuite) TestCreateRun_EmptyRunID() {
	err := s.repo.CreateRun(context.Background(), &TrainingRun{})
	s.True(errors.IsCode(err, errors.ErrCodeValidation))
}

func (s *RunRepoTestSuite) TestCompleteRun() {
	s.mock.ExpectExec("UPDATE training_runs").
		WithArgs("run-1", RunStatusCompleted, 2.4, 100, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.repo.CompleteRun(context.Background(), "run-1", RunStatusCompleted, 2.4, 100)
	s.NoError(err)
}

func (s *RunRepoTestSuite) TestCompleteRun_NotFound() {
	s.mock.ExpectExec("UPDATE training_runs").
		WithArgs("missing", RunStatusCompleted, 0.0, 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.repo.CompleteRun(context.Background(), "missing", RunStatusCompleted, 0, 0)
	s.True(errors.IsCode(err, errors.ErrCodeNotFound))
}

func (s *RunRepoTestSuite) TestRecordEpoch() {
	s.mock.ExpectExec("INSERT INTO epoch_metrics").
		WithArgs("run-1", 7, 1.8, 0.9, 0.45, -3.1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.repo.RecordEpoch(context.Background(), &EpochMetric{
		RunID:         "run-1",
		Epoch:         7,
		MeanReturn:    1.8,
		MeanDiversity: 0.9,
		MeanSyn:       0.45,
		Loss:          -3.1,
	})
	s.NoError(err)
}

func (s *RunRepoTestSuite) TestGetRun() {
	started := time.Now().UTC()
	s.mock.ExpectQuery("SELECT (.+) FROM training_runs").
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"run_id", "training_data", "num_molecules", "max_epochs", "mcmc_size",
			"status", "best_return", "total_generated", "started_at", "completed_at",
		}).AddRow("run-1", "data/crow.txt", 30, 1000, 5, RunStatusRunning, nil, nil, started, nil))

	run, err := s.repo.GetRun(context.Background(), "run-1")
	s.NoError(err)
	s.Equal("run-1", run.RunID)
	s.Equal(30, run.NumMolecules)
	s.False(run.BestReturn.Valid)
	s.False(run.CompletedAt.Valid)
}

func (s *RunRepoTestSuite) TestGetRun_NotFound() {
	s.mock.ExpectQuery("SELECT (.+) FROM training_runs").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := s.repo.GetRun(context.Background(), "missing")
	s.True(errors.IsCode(err, errors.ErrCodeNotFound))
}

func (s *RunRepoTestSuite) TestListEpochs() {
	now := time.Now().UTC()
	s.mock.ExpectQuery("SELECT (.+) FROM epoch_metrics").
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"run_id", "epoch", "mean_return", "mean_diversity", "mean_syn", "loss", "completed_at",
		}).
			AddRow("run-1", 0, 1.0, 0.8, 0.1, -1.0, now).
			AddRow("run-1", 1, 1.5, 0.85, 0.325, -1.2, now))

	metrics, err := s.repo.ListEpochs(context.Background(), "run-1")
	s.NoError(err)
	s.Len(metrics, 2)
	s.Equal(0, metrics[0].Epoch)
	s.Equal(1, metrics[1].Epoch)
	s.InDelta(1.5, metrics[1].MeanReturn, 1e-12)
}

func TestRunRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RunRepoTestSuite))
}

//Personal.AI order the ending
