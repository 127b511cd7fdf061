package assessment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgResults struct{ pool *pgxpool.Pool }

// NewPGResults returns a Postgres-backed result store.
func NewPGResults(pool *pgxpool.Pool) *pgResults { return &pgResults{pool: pool} }

var _ ResultStore = (*pgResults)(nil)

const resultCols = `id, assessment_id, learner_id, scenario_id, score, evaluation,
	started_at, completed_at`

func (r *pgResults) Insert(ctx context.Context, res *Result) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO assessment_result (id, assessment_id, learner_id, scenario_id,
			score, evaluation, started_at, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		res.ID, res.AssessmentID, res.LearnerID, res.ScenarioID,
		res.Score, res.Evaluation, res.StartedAt, res.CompletedAt)
	return err
}

func (r *pgResults) scanResult(row pgx.Row) (*Result, error) {
	var res Result
	err := row.Scan(&res.ID, &res.AssessmentID, &res.LearnerID, &res.ScenarioID,
		&res.Score, &res.Evaluation, &res.StartedAt, &res.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *pgResults) GetByID(ctx context.Context, id uuid.UUID) (*Result, error) {
	res, err := r.scanResult(r.pool.QueryRow(ctx,
		`SELECT `+resultCols+` FROM assessment_result WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return res, err
}

func (r *pgResults) ListByLearner(ctx context.Context, learnerID uuid.UUID, limit, offset int) ([]*Result, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM assessment_result WHERE learner_id = $1`, learnerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+resultCols+` FROM assessment_result
		WHERE learner_id = $1 ORDER BY completed_at DESC LIMIT $2 OFFSET $3`,
		learnerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Result
	for rows.Next() {
		res, err := r.scanResult(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, res)
	}
	return items, total, rows.Err()
}
