package scenario

import (
	"errors"

	"github.com/emstrain/emstrain/internal/platform/oracle"
)

var (
	// ErrNotFound is returned when a stored attempt does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTemplateNotFound is returned by Start for an unknown scenario id.
	ErrTemplateNotFound = errors.New("scenario template not found")

	// ErrNoActiveEncounter is returned when a learner has no running session.
	ErrNoActiveEncounter = errors.New("no active encounter for learner")

	// ErrEncounterActive is returned when a learner tries to start a second
	// encounter while one is still running.
	ErrEncounterActive = errors.New("learner already has an active encounter")

	// ErrAlreadyCompleted is returned by mutating calls after the encounter
	// has reached a terminal status.
	ErrAlreadyCompleted = errors.New("encounter already completed")

	// ErrInvalidState is returned for operations that are not valid in the
	// encounter's current status.
	ErrInvalidState = errors.New("invalid encounter state")

	// ErrOracleUnavailable marks a failed oracle call. The encounter state
	// is guaranteed untouched when this is returned.
	ErrOracleUnavailable = oracle.ErrUnavailable
)
