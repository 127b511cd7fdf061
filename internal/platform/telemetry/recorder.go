package telemetry

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Training event types emitted by the simulation engines.
const (
	EventActivityStarted   = "activity.started"
	EventActivityProgress  = "activity.progress"
	EventActivityCompleted = "activity.completed"
)

// Event is one training-activity tracking record. Events are advisory:
// recording never blocks or fails the operation that emitted it.
type Event struct {
	Type       string         `json:"type"`
	Activity   string         `json:"activity"`
	LearnerID  uuid.UUID      `json:"learner_id"`
	ActivityID uuid.UUID      `json:"activity_id"`
	Score      int            `json:"score,omitempty"`
	At         time.Time      `json:"at"`
	Detail     map[string]any `json:"detail,omitempty"`
}

// Recorder accepts training events. Implementations must be safe for
// concurrent use and must never return control-flow errors to callers.
type Recorder interface {
	Record(ev Event)
}

// LogRecorder writes each event to the structured log and bumps the
// training-event counter on the provider.
type LogRecorder struct {
	log zerolog.Logger
	tp  *Provider
}

func NewLogRecorder(log zerolog.Logger, tp *Provider) *LogRecorder {
	return &LogRecorder{log: log, tp: tp}
}

func (r *LogRecorder) Record(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	if r.tp != nil {
		r.tp.TrainingEventCounter(ev.Activity, ev.Type)
	}
	evt := r.log.Info().
		Str("event", ev.Type).
		Str("activity", ev.Activity).
		Str("learner_id", ev.LearnerID.String()).
		Str("activity_id", ev.ActivityID.String()).
		Time("at", ev.At)
	if ev.Score > 0 {
		evt = evt.Int("score", ev.Score)
	}
	evt.Msg("training event")
}

// AsyncRecorder decouples event emission from delivery with a bounded queue.
// When the queue is full the event is dropped and counted, never blocking the
// simulation path.
type AsyncRecorder struct {
	next    Recorder
	queue   chan Event
	dropped int64
	done    chan struct{}
	log     zerolog.Logger
}

func NewAsyncRecorder(next Recorder, buffer int, log zerolog.Logger) *AsyncRecorder {
	if buffer <= 0 {
		buffer = 256
	}
	r := &AsyncRecorder{
		next:  next,
		queue: make(chan Event, buffer),
		done:  make(chan struct{}),
		log:   log,
	}
	go r.drain()
	return r
}

func (r *AsyncRecorder) Record(ev Event) {
	select {
	case r.queue <- ev:
	default:
		atomic.AddInt64(&r.dropped, 1)
		r.log.Warn().Str("event", ev.Type).Msg("telemetry queue full, event dropped")
	}
}

// Dropped reports how many events were discarded because the queue was full.
func (r *AsyncRecorder) Dropped() int64 {
	return atomic.LoadInt64(&r.dropped)
}

func (r *AsyncRecorder) drain() {
	defer close(r.done)
	for ev := range r.queue {
		r.next.Record(ev)
	}
}

// Close flushes queued events and stops the drain goroutine.
func (r *AsyncRecorder) Close() {
	close(r.queue)
	<-r.done
}

// Noop discards all events. Used when tracking is disabled.
type Noop struct{}

func (Noop) Record(Event) {}
