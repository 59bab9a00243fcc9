package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/database/postgres"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// TrainingRun is one row of the training_runs table.
type TrainingRun struct {
	RunID          string
	TrainingData   string
	NumMolecules   int
	MaxEpochs      int
	MCMCSize       int
	Status         string
	BestReturn     sql.NullFloat64
	TotalGenerated sql.NullInt64
	StartedAt      time.Time
	CompletedAt    sql.NullTime
}

// EpochMetric is one row of the epoch_metrics table.
type EpochMetric struct {
	RunID         string
	Epoch         int
	MeanReturn    float64
	MeanDiversity float64
	MeanSyn       float64
	Loss          float64
	CompletedAt   time.Time
}

// RunRepository persists training runs and their per-epoch metrics.
type RunRepository struct {
	db  queryExecutor
	log logging.Logger
}

// NewRunRepository builds a RunRepository over a postgres connection.
func NewRunRepository(conn *postgres.Connection, log logging.Logger) *RunRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &RunRepository{db: conn.DB(), log: log}
}

// CreateRun inserts a new run in the running state.
func (r *RunRepository) CreateRun(ctx context.Context, run *TrainingRun) error {
	if run.RunID == "" {
		return errors.New(errors.ErrCodeValidation, "run id must not be empty")
	}
	status := run.Status
	if status == "" {
		status = RunStatusRunning
	}
	startedAt := run.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}

	const q = `
		INSERT INTO training_runs
			(run_id, training_data, num_molecules, max_epochs, mcmc_size, status, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, q,
		run.RunID, run.TrainingData, run.NumMolecules, run.MaxEpochs, run.MCMCSize, status, startedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert training run")
	}
	return nil
}

// CompleteRun marks a run finished with its final statistics.
func (r *RunRepository) CompleteRun(ctx context.Context, runID, status string, bestReturn float64, totalGenerated int) error {
	const q = `
		UPDATE training_runs
		SET status = $2, best_return = $3, total_generated = $4, completed_at = $5
		WHERE run_id = $1`
	res, err := r.db.ExecContext(ctx, q, runID, status, bestReturn, totalGenerated, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to complete training run")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read rows affected")
	}
	if affected == 0 {
		return errors.New(errors.ErrCodeNotFound, "training run not found")
	}
	return nil
}

// RecordEpoch appends one epoch's summary metrics.
func (r *RunRepository) RecordEpoch(ctx context.Context, m *EpochMetric) error {
	if m.RunID == "" {
		return errors.New(errors.ErrCodeValidation, "run id must not be empty")
	}
	completedAt := m.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now().UTC()
	}

	const q = `
		INSERT INTO epoch_metrics
			(run_id, epoch, mean_return, mean_diversity, mean_syn, loss, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, q,
		m.RunID, m.Epoch, m.MeanReturn, m.MeanDiversity, m.MeanSyn, m.Loss, completedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert epoch metrics")
	}
	return nil
}

// GetRun loads one run by ID.
func (r *RunRepository) GetRun(ctx context.Context, runID string) (*TrainingRun, error) {
	const q = `
		SELECT run_id, training_data, num_molecules, max_epochs, mcmc_size,
		       status, best_return, total_generated, started_at, completed_at
		FROM training_runs
		WHERE run_id = $1`

	var run TrainingRun
	err := r.db.QueryRowContext(ctx, q, runID).Scan(
		&run.RunID, &run.TrainingData, &run.NumMolecules, &run.MaxEpochs, &run.MCMCSize,
		&run.Status, &run.BestReturn, &run.TotalGenerated, &run.StartedAt, &run.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeNotFound, "training run not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load training run")
	}
	return &run, nil
}

// ListEpochs returns a run's epoch metrics in epoch order.
func (r *RunRepository) ListEpochs(ctx context.Context, runID string) ([]*EpochMetric, error) {
	const q = `
		SELECT run_id, epoch, mean_return, mean_diversity, mean_syn, loss, completed_at
		FROM epoch_metrics
		WHERE run_id = $1
		ORDER BY epoch`

	rows, err := r.db.QueryContext(ctx, q, runID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list epoch metrics")
	}
	defer rows.Close()

	var out []*EpochMetric
	for rows.Next() {
		var m EpochMetric
		if err := rows.Scan(&m.RunID, &m.Epoch, &m.MeanReturn, &m.MeanDiversity, &m.MeanSyn, &m.Loss, &m.CompletedAt); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan epoch metrics")
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate epoch metrics")
	}
	return out, nil
}

//Personal.AI order the ending
