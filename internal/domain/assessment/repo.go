package assessment

import (
	"context"

	"github.com/google/uuid"
)

// ResultStore persists completed assessment results.
type ResultStore interface {
	Insert(ctx context.Context, r *Result) error
	GetByID(ctx context.Context, id uuid.UUID) (*Result, error)
	ListByLearner(ctx context.Context, learnerID uuid.UUID, limit, offset int) ([]*Result, int, error)
}
