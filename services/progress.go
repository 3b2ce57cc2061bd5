package services

import (
	"math/rand"
	"sync"
	"time"

	"github.com/EcoRoute/eco-route-backend/logger"
	"github.com/EcoRoute/eco-route-backend/types"
)

// ProgressEmitter publishes pipeline progress to a caller. Implementations
// must flush each update immediately and must tolerate their consumer
// disappearing mid-stream: writes after consumer loss are no-ops, never
// errors that could abort the pipeline.
type ProgressEmitter interface {
	Emit(update types.ProgressUpdate) error
}

// CollectingEmitter records every update in memory. It backs the
// synchronous plan endpoint and the tests.
type CollectingEmitter struct {
	mu      sync.Mutex
	updates []types.ProgressUpdate
}

var _ ProgressEmitter = (*CollectingEmitter)(nil)

func NewCollectingEmitter() *CollectingEmitter {
	return &CollectingEmitter{}
}

func (e *CollectingEmitter) Emit(update types.ProgressUpdate) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.updates = append(e.updates, update)
	return nil
}

// Updates returns a snapshot of the recorded updates.
func (e *CollectingEmitter) Updates() []types.ProgressUpdate {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]types.ProgressUpdate, len(e.updates))
	copy(out, e.updates)
	return out
}

// PacedEmitter decorates another emitter with a minimum perceived stage
// duration plus jitter. The pacing lives here, outside the coordinator, so
// the data-fetching pipeline can be tested without wall-clock delays.
// Provider calls have already been issued by the time a paced emission
// waits, so the delay never holds up actual work.
type PacedEmitter struct {
	next      ProgressEmitter
	minStage  time.Duration
	jitter    time.Duration
	lastStage types.Stage
	stageAt   time.Time
	sleep     func(time.Duration)
}

var _ ProgressEmitter = (*PacedEmitter)(nil)

// NewPacedEmitter wraps next so each stage transition happens at least
// minStage (plus up to jitter) after the previous stage began.
func NewPacedEmitter(next ProgressEmitter, minStage, jitter time.Duration) *PacedEmitter {
	return &PacedEmitter{
		next:     next,
		minStage: minStage,
		jitter:   jitter,
		sleep:    time.Sleep,
	}
}

func (e *PacedEmitter) Emit(update types.ProgressUpdate) error {
	// Terminal failures go out immediately; pacing is narration polish, not
	// something to delay an error behind.
	if update.Stage == types.StageError {
		return e.next.Emit(update)
	}

	// Delay only on stage transitions. Events within a stage (start and
	// completion) pass straight through.
	if update.Stage != e.lastStage {
		if e.lastStage != "" && e.minStage > 0 {
			elapsed := time.Since(e.stageAt)
			target := e.minStage
			if e.jitter > 0 {
				target += time.Duration(rand.Int63n(int64(e.jitter)))
			}
			if elapsed < target {
				e.sleep(target - elapsed)
			}
		}
		e.lastStage = update.Stage
		e.stageAt = time.Now()
	}

	logger.GetLogger().Debugw("Emitting progress update",
		"stage", update.Stage,
		"percent", update.ProgressPercent)

	return e.next.Emit(update)
}
