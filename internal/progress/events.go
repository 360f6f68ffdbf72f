package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// Event is an analytics record of one progress transition. Events are an
// audit trail only; the engine never reads them back.
type Event struct {
	SessionID string
	EventType ChangeKind
	ModuleID  ModuleID
	ConceptID ConceptID
	Data      map[string]any
	CreatedAt time.Time
}

// EventLogger defines event logging behavior.
type EventLogger interface {
	LogEvent(event Event) error
}

// NopEventLogger ignores all events.
type NopEventLogger struct{}

func (NopEventLogger) LogEvent(Event) error {
	return nil
}

// MemoryEventLogger stores events in memory for tests.
type MemoryEventLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{
		events: []Event{},
	}
}

func (l *MemoryEventLogger) LogEvent(event Event) error {
	if event.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryEventLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

// PostgresEventLogger inserts events into the progress_events table.
type PostgresEventLogger struct {
	pool *pgxpool.Pool
}

func NewPostgresEventLogger(pool *pgxpool.Pool) *PostgresEventLogger {
	return &PostgresEventLogger{pool: pool}
}

// EnsureSchema creates the progress_events table if it does not exist.
func (l *PostgresEventLogger) EnsureSchema(ctx context.Context) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	_, err := l.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS progress_events (
		   id         BIGSERIAL PRIMARY KEY,
		   session_id TEXT NOT NULL,
		   event_type TEXT NOT NULL,
		   module_id  INTEGER NOT NULL,
		   concept_id INTEGER,
		   data       JSONB NOT NULL DEFAULT '{}'::jsonb,
		   created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		 )`)
	if err != nil {
		return fmt.Errorf("create progress_events: %w", err)
	}
	return nil
}

func (l *PostgresEventLogger) LogEvent(event Event) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	if event.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if event.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}

	payload := event.Data
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	_, err = l.pool.Exec(ctx,
		`INSERT INTO progress_events (session_id, event_type, module_id, concept_id, data, created_at)
		 VALUES ($1, $2, $3, $4, $5::jsonb, $6)`,
		event.SessionID,
		string(event.EventType),
		int(event.ModuleID),
		nullIfZero(int(event.ConceptID)),
		string(data),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	slog.Debug("event logged",
		"type", event.EventType,
		"session_id", event.SessionID,
		"concept_id", event.ConceptID,
	)
	return nil
}

func nullIfZero(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

// eventFromChange converts a transition into its analytics event. The
// snapshot version orders events written by concurrent mutations.
func eventFromChange(sessionID string, c Change, version uint64, at time.Time) Event {
	data := map[string]any{"version": version}
	if c.Kind == ChangeProgress {
		data["from"] = c.From
		data["to"] = c.To
	}
	return Event{
		SessionID: sessionID,
		EventType: c.Kind,
		ModuleID:  c.ModuleID,
		ConceptID: c.ConceptID,
		Data:      data,
		CreatedAt: at,
	}
}
