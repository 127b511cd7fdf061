package template

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown scenario ids or scenarios without an
// assessment catalog. Fatal to the operation, not to the session.
var ErrNotFound = errors.New("template not found")

// Store is the read-only template catalog consumed by the engine. All
// methods are idempotent and side-effect free.
type Store interface {
	GetScenario(ctx context.Context, id uuid.UUID) (*ScenarioTemplate, error)
	ListScenarios(ctx context.Context, limit, offset int) ([]*ScenarioTemplate, int, error)
	GetAssessmentCriteria(ctx context.Context, scenarioID uuid.UUID) ([]*AssessmentCriterion, error)
	GetFindings(ctx context.Context, scenarioID uuid.UUID) ([]*AssessmentFinding, error)
}

// Writer is the authoring-side interface used by migrations/seeding only;
// the engine never writes templates.
type Writer interface {
	PutScenario(ctx context.Context, t *ScenarioTemplate) error
	PutAssessmentCriteria(ctx context.Context, scenarioID uuid.UUID, criteria []*AssessmentCriterion) error
	PutFindings(ctx context.Context, scenarioID uuid.UUID, findings []*AssessmentFinding) error
}
