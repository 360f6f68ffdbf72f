package progress_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-n-ai/pai-progress/internal/progress"
)

func TestMemoryEventLogger_LogEvent(t *testing.T) {
	logger := progress.NewMemoryEventLogger()

	err := logger.LogEvent(progress.Event{
		SessionID: "session-1",
		EventType: progress.ChangeProgress,
		ModuleID:  1,
		ConceptID: 1,
		Data: map[string]any{
			"from": 0,
			"to":   25,
		},
	})
	require.NoError(t, err)

	events := logger.Events()
	require.Len(t, events, 1)
	assert.Equal(t, progress.ChangeProgress, events[0].EventType)
	assert.False(t, events[0].CreatedAt.IsZero(), "CreatedAt should be set")
}

func TestMemoryEventLogger_RequiresType(t *testing.T) {
	logger := progress.NewMemoryEventLogger()

	assert.Error(t, logger.LogEvent(progress.Event{SessionID: "session-1"}))
}

func TestPostgresEventLogger_LogEvent_NilPool(t *testing.T) {
	logger := progress.NewPostgresEventLogger(nil)

	err := logger.LogEvent(progress.Event{
		SessionID: "session-1",
		EventType: progress.ChangeModuleUnlocked,
	})
	assert.Error(t, err)
	assert.Error(t, logger.EnsureSchema(t.Context()))
}

func TestEngine_LogsTransitions(t *testing.T) {
	events := progress.NewMemoryEventLogger()
	e := newEngine(t, progress.EngineConfig{Events: events, SessionID: "learner-1"})

	for id := progress.ConceptID(1); id <= 3; id++ {
		e.ApplyProgressDelta(id, 100)
	}
	e.ApplyProgressDelta(4, 90)
	before := len(events.Events())

	e.ApplyProgressDelta(4, 10)
	e.ApplyProgressDelta(8, 10) // locked: no events

	got := events.Events()[before:]
	want := []progress.ChangeKind{
		progress.ChangeProgress,
		progress.ChangeConceptCompleted,
		progress.ChangeModuleCompleted,
		progress.ChangeModuleUnlocked,
		progress.ChangeConceptUnlocked,
	}
	require.Len(t, got, len(want))
	for i, ev := range got {
		assert.Equal(t, want[i], ev.EventType, "event[%d]", i)
		assert.Equal(t, "learner-1", ev.SessionID, "event[%d]", i)
		assert.Equal(t, uint64(5), ev.Data["version"], "event[%d] carries the snapshot version", i)
	}
	assert.Equal(t, 90, got[0].Data["from"])
	assert.Equal(t, 100, got[0].Data["to"])
	assert.NotContains(t, got[1].Data, "from")
	assert.EqualValues(t, 5, got[4].ConceptID)
	assert.EqualValues(t, 2, got[4].ModuleID)
}

func TestEngine_EventsFollowVersions(t *testing.T) {
	events := progress.NewMemoryEventLogger()
	e := newEngine(t, progress.EngineConfig{Events: events})

	e.ApplyProgressDelta(1, 10)
	e.ToggleModuleExpansion(1)
	e.ApplyProgressDelta(1, -10)

	got := events.Events()
	require.Len(t, got, 2)
	assert.Equal(t, uint64(1), got[0].Data["version"])
	assert.Equal(t, uint64(3), got[1].Data["version"])
	assert.Equal(t, 10, got[1].Data["from"])
	assert.Equal(t, 0, got[1].Data["to"])
}

func TestEngine_DefaultSessionID(t *testing.T) {
	a := newEngine(t, progress.EngineConfig{})
	b := newEngine(t, progress.EngineConfig{})

	require.NotEmpty(t, a.SessionID(), "SessionID() should default to a generated ID")
	assert.NotEqual(t, a.SessionID(), b.SessionID())
}
