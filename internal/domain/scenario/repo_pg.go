package scenario

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgAttempts struct{ pool *pgxpool.Pool }

// NewPGAttempts returns a Postgres-backed attempt store.
func NewPGAttempts(pool *pgxpool.Pool) *pgAttempts { return &pgAttempts{pool: pool} }

var _ AttemptStore = (*pgAttempts)(nil)

const attemptCols = `id, encounter_id, learner_id, scenario_id, scenario_title,
	score, feedback, started_at, completed_at`

func (r *pgAttempts) Insert(ctx context.Context, a *Attempt) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO scenario_attempt (id, encounter_id, learner_id, scenario_id,
			scenario_title, score, feedback, started_at, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.EncounterID, a.LearnerID, a.ScenarioID, a.ScenarioTitle,
		a.Score, a.Feedback, a.StartedAt, a.CompletedAt)
	return err
}

func (r *pgAttempts) scanAttempt(row pgx.Row) (*Attempt, error) {
	var a Attempt
	err := row.Scan(&a.ID, &a.EncounterID, &a.LearnerID, &a.ScenarioID,
		&a.ScenarioTitle, &a.Score, &a.Feedback, &a.StartedAt, &a.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *pgAttempts) GetByID(ctx context.Context, id uuid.UUID) (*Attempt, error) {
	a, err := r.scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptCols+` FROM scenario_attempt WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (r *pgAttempts) ListByLearner(ctx context.Context, learnerID uuid.UUID, limit, offset int) ([]*Attempt, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM scenario_attempt WHERE learner_id = $1`, learnerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+attemptCols+` FROM scenario_attempt
		WHERE learner_id = $1 ORDER BY completed_at DESC LIMIT $2 OFFSET $3`,
		learnerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Attempt
	for rows.Next() {
		a, err := r.scanAttempt(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}
