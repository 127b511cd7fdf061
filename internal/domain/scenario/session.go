package scenario

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/emstrain/emstrain/internal/domain/template"
	"github.com/emstrain/emstrain/internal/platform/oracle"
)

const defaultRefreshInterval = 30 * time.Second

// Session drives one in-progress encounter. Every read and mutation goes
// through the session mutex, including the full read-state, oracle call,
// merge cycle, so learner actions and background ticks are strictly
// serialized.
type Session struct {
	mu  sync.Mutex
	enc *Encounter
	tpl *template.ScenarioTemplate
	orc oracle.Oracle
	log zerolog.Logger
	now func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func newSession(learnerID uuid.UUID, tpl *template.ScenarioTemplate, orc oracle.Oracle, log zerolog.Logger, now func() time.Time) *Session {
	flags := make([]RedFlag, len(tpl.RedFlags))
	for i, def := range tpl.RedFlags {
		flags[i] = RedFlag{Def: def}
	}

	enc := &Encounter{
		ID:            uuid.New(),
		LearnerID:     learnerID,
		ScenarioID:    tpl.ID,
		ScenarioTitle: tpl.Title,
		ModuleType:    tpl.ModuleType,
		Status:        StatusInProgress,
		StartedAt:     now(),
		Vitals:        tpl.InitialVitals.Clone(),
		Patient:       tpl.InitialPatient.Clone(),
		Scene:         tpl.Scene,
		RedFlags:      flags,
	}

	s := &Session{
		enc:  enc,
		tpl:  tpl,
		orc:  orc,
		log:  log.With().Str("encounter_id", enc.ID.String()).Logger(),
		now:  now,
		done: make(chan struct{}),
	}

	interval := tpl.RefreshInterval
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	s.appendLog("scene", tpl.Scene.Dispatch)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.refreshLoop(ctx, interval)
	return s
}

// Snapshot returns a deep copy of the encounter.
func (s *Session) Snapshot() *Encounter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Clone()
}

// Ask sends a learner question to the oracle and returns the narrative
// answer. Any state delta in the response is merged field-wise; an oracle
// failure leaves the encounter untouched.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireInProgress(); err != nil {
		return "", err
	}

	resp, err := s.orc.Respond(ctx, s.oracleState(), oracle.Input{
		Kind:     oracle.InputQuestion,
		Question: question,
	})
	if err != nil {
		return "", err
	}

	s.appendLog("question", question)
	s.appendLog("response", resp.Narrative)
	s.applyDelta(resp.Delta)
	return resp.Narrative, nil
}

// Intervene records a performed intervention after asking the oracle for its
// outcome. The sequence number is the intervention's ordinal in the log.
func (s *Session) Intervene(ctx context.Context, name, category string, params map[string]string, steps int) (*Intervention, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireInProgress(); err != nil {
		return nil, err
	}

	resp, err := s.orc.Respond(ctx, s.oracleState(), oracle.Input{
		Kind:     oracle.InputIntervention,
		Name:     name,
		Category: category,
		Params:   params,
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	iv := Intervention{
		Name:           name,
		Category:       category,
		Params:         params,
		SequenceNumber: len(s.enc.Interventions),
		StepsCompleted: steps,
		Outcome:        resp.Outcome,
		Effectiveness:  resp.Effectiveness,
		Elapsed:        now.Sub(s.enc.StartedAt),
		At:             now,
	}
	s.enc.Interventions = append(s.enc.Interventions, iv)
	s.appendLog("intervention", fmt.Sprintf("%s: %s", name, resp.Narrative))
	s.applyDelta(resp.Delta)
	return &iv, nil
}

// IdentifyRedFlag marks a red flag as identified. Re-identifying the same
// flag, or naming an unknown one, is a no-op returning the current state.
func (s *Session) IdentifyRedFlag(flagID string) (*RedFlag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireInProgress(); err != nil {
		return nil, err
	}

	for i := range s.enc.RedFlags {
		rf := &s.enc.RedFlags[i]
		if rf.Def.ID != flagID {
			continue
		}
		if !rf.Identified {
			rf.Identified = true
			rf.TimeIdentified = s.now().Sub(s.enc.StartedAt)
			s.appendLog("red_flag", "identified: "+rf.Def.Description)
		}
		cp := *rf
		return &cp, nil
	}
	return nil, nil
}

// AddNote appends a free-text learner note.
func (s *Session) AddNote(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireInProgress(); err != nil {
		return err
	}
	s.enc.Notes = append(s.enc.Notes, text)
	s.appendLog("note", text)
	return nil
}

// Complete transitions the encounter to completed and stops the refresh
// loop. A tick already holding the oracle finishes, then sees the terminal
// status and applies nothing; no further ticks are scheduled.
func (s *Session) Complete(ctx context.Context) (*Encounter, error) {
	return s.finish(ctx, StatusCompleted)
}

// Abandon marks the encounter failed without evaluation.
func (s *Session) Abandon(ctx context.Context) (*Encounter, error) {
	return s.finish(ctx, StatusFailed)
}

func (s *Session) finish(_ context.Context, status Status) (*Encounter, error) {
	s.mu.Lock()
	if s.enc.Status != StatusInProgress {
		s.mu.Unlock()
		return nil, ErrAlreadyCompleted
	}
	now := s.now()
	s.enc.Status = status
	s.enc.CompletedAt = &now
	snap := s.enc.Clone()
	s.mu.Unlock()

	// The lock is released before waiting so an in-flight tick can acquire
	// it, observe the terminal status, and exit.
	s.cancel()
	<-s.done
	return snap, nil
}

func (s *Session) refreshLoop(ctx context.Context, interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Session) tick(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enc.Status != StatusInProgress {
		return
	}

	delta, err := s.orc.Tick(ctx, s.oracleState())
	if err != nil {
		s.log.Warn().Err(err).Msg("vitals refresh failed, state unchanged")
		return
	}
	if s.applyDelta(delta) {
		s.appendLog("vitals", "patient condition evolved")
	}
}

// oracleState builds the full-state snapshot handed to the oracle.
// Callers must hold the session mutex.
func (s *Session) oracleState() oracle.State {
	names := make([]string, len(s.enc.Interventions))
	for i, iv := range s.enc.Interventions {
		names[i] = iv.Name
	}
	return oracle.State{
		ScenarioTitle: s.enc.ScenarioTitle,
		ModuleType:    s.enc.ModuleType,
		Vitals:        s.enc.Vitals.Clone(),
		Patient:       s.enc.Patient.Clone(),
		Scene:         s.enc.Scene,
		Elapsed:       s.now().Sub(s.enc.StartedAt),
		Interventions: names,
	}
}

// applyDelta merges a partial delta into the encounter. Only fields present
// in the patch overwrite; everything else is preserved.
func (s *Session) applyDelta(d *oracle.StateDelta) bool {
	if d == nil {
		return false
	}
	applied := false
	if d.Vitals != nil && !d.Vitals.IsZero() {
		s.enc.Vitals.Apply(d.Vitals)
		applied = true
	}
	if d.Patient != nil && !d.Patient.IsZero() {
		s.enc.Patient.Apply(d.Patient)
		applied = true
	}
	return applied
}

func (s *Session) requireInProgress() error {
	switch s.enc.Status {
	case StatusInProgress:
		return nil
	case StatusCompleted, StatusFailed:
		return ErrAlreadyCompleted
	default:
		return ErrInvalidState
	}
}

func (s *Session) appendLog(kind, text string) {
	now := s.now()
	s.enc.Narrative = append(s.enc.Narrative, LogEntry{
		At:      now,
		Elapsed: now.Sub(s.enc.StartedAt),
		Kind:    kind,
		Text:    text,
	})
}
