package template

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgStore struct{ pool *pgxpool.Pool }

// NewPGStore returns a Postgres-backed template catalog.
func NewPGStore(pool *pgxpool.Pool) *pgStore { return &pgStore{pool: pool} }

var _ Store = (*pgStore)(nil)
var _ Writer = (*pgStore)(nil)

const scenarioCols = `id, title, module_type, description, scene, initial_vitals, initial_patient,
	red_flags, critical_actions, sequence, expected_steps, excellence_markers,
	refresh_interval_secs, created_at, updated_at`

func (r *pgStore) scanScenario(row pgx.Row) (*ScenarioTemplate, error) {
	var t ScenarioTemplate
	var refreshSecs int64
	err := row.Scan(&t.ID, &t.Title, &t.ModuleType, &t.Description, &t.Scene, &t.InitialVitals,
		&t.InitialPatient, &t.RedFlags, &t.CriticalActions, &t.Sequence, &t.ExpectedSteps,
		&t.ExcellenceMarkers, &refreshSecs, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.RefreshInterval = time.Duration(refreshSecs) * time.Second
	return &t, nil
}

func (r *pgStore) GetScenario(ctx context.Context, id uuid.UUID) (*ScenarioTemplate, error) {
	t, err := r.scanScenario(r.pool.QueryRow(ctx,
		`SELECT `+scenarioCols+` FROM scenario_template WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (r *pgStore) ListScenarios(ctx context.Context, limit, offset int) ([]*ScenarioTemplate, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM scenario_template`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+scenarioCols+` FROM scenario_template ORDER BY title LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*ScenarioTemplate
	for rows.Next() {
		t, err := r.scanScenario(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

func (r *pgStore) GetAssessmentCriteria(ctx context.Context, scenarioID uuid.UUID) ([]*AssessmentCriterion, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, scenario_id, phase, ord, label, required, target_secs, dependencies, expected_findings
		FROM assessment_criterion WHERE scenario_id = $1 ORDER BY phase, ord, id`, scenarioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*AssessmentCriterion
	for rows.Next() {
		var c AssessmentCriterion
		var targetSecs int64
		if err := rows.Scan(&c.ID, &c.ScenarioID, &c.Phase, &c.Order, &c.Label, &c.Required,
			&targetSecs, &c.Dependencies, &c.ExpectedFindings); err != nil {
			return nil, err
		}
		c.Target = time.Duration(targetSecs) * time.Second
		items = append(items, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items, nil
}

func (r *pgStore) GetFindings(ctx context.Context, scenarioID uuid.UUID) ([]*AssessmentFinding, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, scenario_id, criterion_id, label
		FROM assessment_finding WHERE scenario_id = $1 ORDER BY criterion_id, id`, scenarioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*AssessmentFinding
	for rows.Next() {
		var f AssessmentFinding
		if err := rows.Scan(&f.ID, &f.ScenarioID, &f.CriterionID, &f.Label); err != nil {
			return nil, err
		}
		items = append(items, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items, nil
}

func (r *pgStore) PutScenario(ctx context.Context, t *ScenarioTemplate) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO scenario_template (id, title, module_type, description, scene, initial_vitals,
			initial_patient, red_flags, critical_actions, sequence, expected_steps,
			excellence_markers, refresh_interval_secs)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, module_type=EXCLUDED.module_type,
			description=EXCLUDED.description, scene=EXCLUDED.scene,
			initial_vitals=EXCLUDED.initial_vitals, initial_patient=EXCLUDED.initial_patient,
			red_flags=EXCLUDED.red_flags, critical_actions=EXCLUDED.critical_actions,
			sequence=EXCLUDED.sequence, expected_steps=EXCLUDED.expected_steps,
			excellence_markers=EXCLUDED.excellence_markers,
			refresh_interval_secs=EXCLUDED.refresh_interval_secs, updated_at=NOW()`,
		t.ID, t.Title, t.ModuleType, t.Description, t.Scene, t.InitialVitals, t.InitialPatient,
		t.RedFlags, t.CriticalActions, t.Sequence, t.ExpectedSteps, t.ExcellenceMarkers,
		int64(t.RefreshInterval/time.Second))
	return err
}

func (r *pgStore) PutAssessmentCriteria(ctx context.Context, scenarioID uuid.UUID, criteria []*AssessmentCriterion) error {
	for _, c := range criteria {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO assessment_criterion (id, scenario_id, phase, ord, label, required,
				target_secs, dependencies, expected_findings)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			ON CONFLICT (id, scenario_id) DO UPDATE SET phase=EXCLUDED.phase, ord=EXCLUDED.ord,
				label=EXCLUDED.label, required=EXCLUDED.required, target_secs=EXCLUDED.target_secs,
				dependencies=EXCLUDED.dependencies, expected_findings=EXCLUDED.expected_findings`,
			c.ID, scenarioID, c.Phase, c.Order, c.Label, c.Required,
			int64(c.Target/time.Second), c.Dependencies, c.ExpectedFindings)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *pgStore) PutFindings(ctx context.Context, scenarioID uuid.UUID, findings []*AssessmentFinding) error {
	for _, f := range findings {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO assessment_finding (id, scenario_id, criterion_id, label)
			VALUES ($1,$2,$3,$4)
			ON CONFLICT (id, scenario_id) DO UPDATE SET criterion_id=EXCLUDED.criterion_id,
				label=EXCLUDED.label`,
			f.ID, scenarioID, f.CriterionID, f.Label)
		if err != nil {
			return err
		}
	}
	return nil
}
