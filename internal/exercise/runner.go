// Package exercise runs practice sessions for a concept and turns answers into
// progress deltas.
package exercise

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/p-n-ai/pai-progress/internal/curriculum"
	"github.com/p-n-ai/pai-progress/internal/progress"
)

// Scoring policy.
const (
	CorrectReward    = 25
	ExhaustedPenalty = -15
	MaxAttempts      = 3
)

var (
	ErrSessionNotFound = errors.New("exercise session not found")
	ErrSessionFinished = errors.New("exercise session finished")
	ErrNoExercises     = errors.New("concept has no exercises")
	ErrConceptLocked   = errors.New("concept is locked")
	ErrInvalidAnswer   = errors.New("answer must be an integer")
)

// Progressor is the part of the progress engine the runner drives.
type Progressor interface {
	ApplyProgressDelta(conceptID progress.ConceptID, amount int) progress.Result
	Snapshot() *progress.Snapshot
}

// AnswerResult reports what happened after an answer.
type AnswerResult struct {
	Correct      bool             `json:"correct"`
	AttemptsLeft int              `json:"attempts_left"`
	ScoreAdded   int              `json:"score_added"`
	Finished     bool             `json:"finished"`
	Penalized    bool             `json:"penalized"`
	NextProblem  string           `json:"next_problem,omitempty"`
	Outcome      progress.Outcome `json:"outcome,omitempty"`
}

// Session housekeeping defaults.
const (
	DefaultRetention   = 10 * time.Minute
	DefaultIdleTimeout = time.Hour
)

// RunnerConfig holds the optional settings of a runner.
type RunnerConfig struct {
	Store       Store            // default: MemoryStore
	Retention   time.Duration    // how long finished sessions answer ErrSessionFinished
	IdleTimeout time.Duration    // unfinished sessions untouched this long are dropped
	Now         func() time.Time // default: time.Now
}

// Runner owns exercise sessions for one progress engine.
type Runner struct {
	engine      Progressor
	store       Store
	exercises   map[curriculum.ConceptID][]curriculum.Exercise
	retention   time.Duration
	idleTimeout time.Duration
	now         func() time.Time
	mu          sync.Mutex
}

// NewRunner creates a runner over the exercises of def.
func NewRunner(engine Progressor, def curriculum.Definition, cfg RunnerConfig) *Runner {
	r := &Runner{
		engine:      engine,
		store:       cfg.Store,
		exercises:   def.Exercises(),
		retention:   cfg.Retention,
		idleTimeout: cfg.IdleTimeout,
		now:         cfg.Now,
	}
	if r.store == nil {
		r.store = NewMemoryStore()
	}
	if r.retention <= 0 {
		r.retention = DefaultRetention
	}
	if r.idleTimeout <= 0 {
		r.idleTimeout = DefaultIdleTimeout
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Start opens a new session on a concept. Expired sessions are swept first.
func (r *Runner) Start(conceptID curriculum.ConceptID) (Session, error) {
	exercises, ok := r.exercises[conceptID]
	if !ok {
		return Session{}, fmt.Errorf("concept %d: %w", conceptID, ErrNoExercises)
	}
	c, ok := r.engine.Snapshot().Concept(conceptID)
	if !ok {
		return Session{}, fmt.Errorf("concept %d: %w", conceptID, ErrNoExercises)
	}
	if !c.Unlocked {
		return Session{}, fmt.Errorf("concept %d: %w", conceptID, ErrConceptLocked)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	sess := Session{
		ID:           uuid.NewString(),
		ConceptID:    conceptID,
		Exercises:    exercises,
		AttemptsLeft: MaxAttempts,
		StartedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.store.Save(sess); err != nil {
		return Session{}, fmt.Errorf("saving session: %w", err)
	}

	slog.Info("exercise session started",
		"session_id", sess.ID,
		"concept_id", conceptID,
		"exercises", len(exercises),
	)
	return sess, nil
}

// Get returns a session by ID. Expired sessions are reported as not found.
func (r *Runner) Get(id string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, err := r.store.Get(id)
	if err != nil {
		return Session{}, err
	}
	if r.expired(sess, r.now()) {
		r.drop(sess)
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

// Answer checks input against the current problem. A correct answer rewards
// the concept and advances; the last failed attempt penalizes the concept and
// ends the session. Unparseable input does not consume an attempt.
func (r *Runner) Answer(sessionID, input string) (AnswerResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	sess, err := r.store.Get(sessionID)
	if err != nil {
		return AnswerResult{}, err
	}
	if r.expired(sess, now) {
		r.drop(sess)
		return AnswerResult{}, ErrSessionNotFound
	}
	if sess.Finished {
		return AnswerResult{}, ErrSessionFinished
	}

	answer, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return AnswerResult{}, fmt.Errorf("%w: %q", ErrInvalidAnswer, input)
	}

	var res AnswerResult
	switch {
	case answer == sess.Exercises[sess.Current].Answer:
		res.Correct = true
		res.Outcome = r.engine.ApplyProgressDelta(sess.ConceptID, CorrectReward).Outcome
		sess.ScoreAdded += CorrectReward
		sess.Current++
		sess.AttemptsLeft = MaxAttempts
		if sess.Current >= len(sess.Exercises) {
			r.finish(&sess, now)
		}
	case sess.AttemptsLeft <= 1:
		res.Penalized = true
		res.Outcome = r.engine.ApplyProgressDelta(sess.ConceptID, ExhaustedPenalty).Outcome
		sess.AttemptsLeft = 0
		r.finish(&sess, now)
	default:
		sess.AttemptsLeft--
	}
	sess.UpdatedAt = now

	if err := r.store.Save(sess); err != nil {
		return AnswerResult{}, fmt.Errorf("saving session: %w", err)
	}

	res.AttemptsLeft = sess.AttemptsLeft
	res.ScoreAdded = sess.ScoreAdded
	res.Finished = sess.Finished
	res.NextProblem = sess.Problem()
	return res, nil
}

func (r *Runner) finish(sess *Session, now time.Time) {
	sess.Finished = true
	sess.FinishedAt = &now
	slog.Info("exercise session finished",
		"session_id", sess.ID,
		"concept_id", sess.ConceptID,
		"score_added", sess.ScoreAdded,
	)
}

// expired reports whether a session is past its retention (finished) or idle
// timeout (unfinished).
func (r *Runner) expired(sess Session, now time.Time) bool {
	if sess.Finished && sess.FinishedAt != nil {
		return now.Sub(*sess.FinishedAt) >= r.retention
	}
	return now.Sub(sess.UpdatedAt) >= r.idleTimeout
}

// sweep deletes expired sessions. Callers hold r.mu.
func (r *Runner) sweep(now time.Time) {
	for _, sess := range r.store.List() {
		if r.expired(sess, now) {
			r.drop(sess)
		}
	}
}

func (r *Runner) drop(sess Session) {
	if err := r.store.Delete(sess.ID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		slog.Warn("failed to delete exercise session", "session_id", sess.ID, "error", err)
		return
	}
	slog.Debug("exercise session expired", "session_id", sess.ID, "finished", sess.Finished)
}
