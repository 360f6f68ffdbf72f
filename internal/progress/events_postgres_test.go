package progress_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/p-n-ai/pai-progress/internal/platform/config"
	"github.com/p-n-ai/pai-progress/internal/platform/database"
	"github.com/p-n-ai/pai-progress/internal/progress"
)

func TestPostgresEventLogger_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := t.Context()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("progress"),
		postgres.WithUsername("pai"),
		postgres.WithPassword("pai"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.New(ctx, config.DatabaseConfig{URL: url, MaxConns: 2, MinConns: 1})
	require.NoError(t, err)
	defer db.Close()

	logger := progress.NewPostgresEventLogger(db.Pool)
	require.NoError(t, logger.EnsureSchema(ctx))
	require.NoError(t, logger.EnsureSchema(ctx), "EnsureSchema must be idempotent")

	e := newEngine(t, progress.EngineConfig{Events: logger, SessionID: "learner-pg"})
	e.ApplyProgressDelta(1, 75)
	e.ApplyProgressDelta(1, 25)

	rows, err := db.Pool.Query(ctx,
		`SELECT event_type, module_id, concept_id, data->>'to', data->>'version', created_at
		 FROM progress_events
		 WHERE session_id = $1
		 ORDER BY id`,
		"learner-pg",
	)
	require.NoError(t, err)
	defer rows.Close()

	type row struct {
		kind      string
		moduleID  int
		conceptID *int
		to        *string
		version   string
		createdAt time.Time
	}
	var got []row
	for rows.Next() {
		var r row
		require.NoError(t, rows.Scan(&r.kind, &r.moduleID, &r.conceptID, &r.to, &r.version, &r.createdAt))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())

	require.Len(t, got, 4)
	assert.Equal(t, string(progress.ChangeProgress), got[0].kind)
	require.NotNil(t, got[0].to)
	assert.Equal(t, "75", *got[0].to)
	assert.Equal(t, "1", got[0].version)
	for _, r := range got[1:] {
		assert.Equal(t, "2", r.version, "%s", r.kind)
	}
	assert.Equal(t, string(progress.ChangeConceptCompleted), got[2].kind)
	assert.Equal(t, string(progress.ChangeConceptUnlocked), got[3].kind)
	require.NotNil(t, got[3].conceptID)
	assert.Equal(t, 2, *got[3].conceptID)
	assert.False(t, got[3].createdAt.IsZero())
}
