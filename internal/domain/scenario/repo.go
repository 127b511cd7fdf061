package scenario

import (
	"context"

	"github.com/google/uuid"
)

// AttemptStore persists completed encounter attempts with their feedback.
type AttemptStore interface {
	Insert(ctx context.Context, a *Attempt) error
	GetByID(ctx context.Context, id uuid.UUID) (*Attempt, error)
	ListByLearner(ctx context.Context, learnerID uuid.UUID, limit, offset int) ([]*Attempt, int, error)
}
