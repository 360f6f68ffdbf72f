// Package progress implements the curriculum progress and unlock state machine.
package progress

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/p-n-ai/pai-progress/internal/curriculum"
)

const publishTimeout = 3 * time.Second

// EngineConfig holds the optional collaborators of an engine.
type EngineConfig struct {
	Events    EventLogger
	Publisher Publisher
	Metrics   *Metrics
	Logger    *slog.Logger
	SessionID string // identifies this learner session in events (default: random UUID)
}

// Result is the outcome of ApplyProgressDelta.
type Result struct {
	Outcome  Outcome   `json:"outcome"`
	Changes  []Change  `json:"changes"`
	Snapshot *Snapshot `json:"snapshot"`
}

// Engine owns one learner's curriculum state for the lifetime of a session.
// Mutations are serialized; Snapshot never blocks.
type Engine struct {
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]

	events    EventLogger
	publisher Publisher
	metrics   *Metrics
	logger    *slog.Logger
	sessionID string

	subsMu  sync.Mutex
	subs    map[int]chan *Snapshot
	nextSub int
}

// NewEngine builds an engine whose initial state follows def: the first module
// and its first concept unlocked, everything else locked.
func NewEngine(def curriculum.Definition, cfg EngineConfig) (*Engine, error) {
	if err := curriculum.Validate(def); err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	events := cfg.Events
	if events == nil {
		events = NopEventLogger{}
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = NopPublisher{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	e := &Engine{
		events:    events,
		publisher: publisher,
		metrics:   cfg.Metrics,
		logger:    logger.With("session_id", sessionID),
		sessionID: sessionID,
		subs:      make(map[int]chan *Snapshot),
	}
	e.current.Store(initialSnapshot(def))
	return e, nil
}

// SessionID returns the identifier attached to this engine's events.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() *Snapshot {
	return e.current.Load()
}

// ApplyProgressDelta adds amount (a signed percentage) to a concept's progress,
// clamped to [0, 100], and applies the unlock cascade when the concept becomes
// completed. Locked, completed and unknown concepts are left untouched and the
// returned snapshot is the current one.
func (e *Engine) ApplyProgressDelta(conceptID ConceptID, amount int) Result {
	e.mu.Lock()
	prev := e.current.Load()
	next, outcome, changes := applyDelta(prev, conceptID, amount)
	if next != prev {
		e.current.Store(next)
		e.notify(next)
	}
	e.mu.Unlock()

	if changes == nil {
		changes = []Change{}
	}
	result := Result{Outcome: outcome, Changes: changes, Snapshot: next}
	e.metrics.observeDelta(result)

	if outcome != OutcomeApplied {
		e.logger.Debug("progress delta ignored",
			"concept_id", conceptID,
			"amount", amount,
			"outcome", outcome,
		)
		return result
	}

	e.logger.Info("progress applied",
		"concept_id", conceptID,
		"amount", amount,
		"version", next.Version,
		"changes", len(changes),
	)
	now := time.Now()
	for _, c := range changes {
		if c.Kind != ChangeProgress {
			e.logger.Info("progress transition", "kind", c.Kind, "module_id", c.ModuleID, "concept_id", c.ConceptID)
		}
		if err := e.events.LogEvent(eventFromChange(e.sessionID, c, next.Version, now)); err != nil {
			e.logger.Warn("failed to log progress event", "kind", c.Kind, "error", err)
		}
	}
	e.publish(next)

	return result
}

// ToggleModuleExpansion collapses moduleID if it is expanded and expands it
// otherwise. Unknown IDs are accepted. Progress state is never affected.
func (e *Engine) ToggleModuleExpansion(moduleID ModuleID) *Snapshot {
	e.mu.Lock()
	next := toggleExpansion(e.current.Load(), moduleID)
	e.current.Store(next)
	e.notify(next)
	e.mu.Unlock()

	e.metrics.observeToggle()
	e.logger.Debug("module expansion toggled",
		"module_id", moduleID,
		"expanded", next.IsExpanded(moduleID),
		"version", next.Version,
	)
	e.publish(next)

	return next
}

// Subscribe returns a channel receiving every new snapshot and a function
// that cancels the subscription. A slow reader skips intermediate snapshots
// but always receives the latest one.
func (e *Engine) Subscribe() (<-chan *Snapshot, func()) {
	ch := make(chan *Snapshot, 1)

	e.subsMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	e.subsMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			e.subsMu.Lock()
			delete(e.subs, id)
			close(ch)
			e.subsMu.Unlock()
		})
	}
	return ch, cancel
}

// notify hands s to every subscriber, replacing any snapshot still pending.
// Callers hold e.mu so subscribers observe versions in order.
func (e *Engine) notify(s *Snapshot) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()

	for _, ch := range e.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

func (e *Engine) publish(s *Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := e.publisher.Publish(ctx, s); err != nil {
		e.logger.Warn("failed to publish snapshot", "version", s.Version, "error", err)
	}
}
