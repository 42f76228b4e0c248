package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kilupskalvis/shipout/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore creates a journal in a temp directory for testing.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	st, err := New(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Initialize())
	require.NoError(t, st.RunMigrations())
	t.Cleanup(func() { st.Close() })
	return st
}

func testRun(id string, started time.Time) *models.Run {
	return &models.Run{
		ID:         id,
		Flow:       models.FlowDev,
		Ref:        "HEAD",
		Commit:     "aaaabbbbccccddddeeeeffff0000111122223333",
		Target:     "/tmp/demo-dev",
		Message:    "Dev deployment - 2026-08-24 10:00:00",
		Outcome:    models.RunOK,
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
	}
}

func TestStore_Initialize(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	st, err := New(dbPath)
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Initialize())

	// Initialize is idempotent
	assert.NoError(t, st.Initialize())

	runs, err := st.ListRuns(0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStore_Migrations(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	st, err := New(dbPath)
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Initialize())
	require.NoError(t, st.RunMigrations())

	// Re-running is a no-op
	assert.NoError(t, st.RunMigrations())

	// A journal stamped by a newer shipout is refused
	require.NoError(t, st.setSchemaVersion(currentSchemaVersion+1))
	assert.Error(t, st.RunMigrations())
}

func TestStore_SaveAndGetRun(t *testing.T) {
	st := newTestStore(t)

	started := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	run := testRun("run-1", started)
	run.Tag = "v1.2.0"
	run.Error = ""
	require.NoError(t, st.SaveRun(run))

	got, err := st.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.Flow, got.Flow)
	assert.Equal(t, run.Ref, got.Ref)
	assert.Equal(t, run.Commit, got.Commit)
	assert.Equal(t, run.Target, got.Target)
	assert.Equal(t, run.Message, got.Message)
	assert.Equal(t, run.Tag, got.Tag)
	assert.Equal(t, models.RunOK, got.Outcome)
	assert.Equal(t, "", got.Error)
	assert.True(t, got.StartedAt.Equal(started))
	assert.True(t, got.FinishedAt.Equal(started.Add(3*time.Second)))
}

func TestStore_SaveRun_FailedOutcome(t *testing.T) {
	st := newTestStore(t)

	started := time.Date(2026, 8, 24, 11, 0, 0, 0, time.UTC)
	run := testRun("run-err", started)
	run.Outcome = models.RunFailed
	run.Error = "task build: exit status 2"
	require.NoError(t, st.SaveRun(run))

	got, err := st.GetRun("run-err")
	require.NoError(t, err)
	assert.Equal(t, models.RunFailed, got.Outcome)
	assert.Equal(t, "task build: exit status 2", got.Error)
}

func TestStore_ListRuns_OrderAndLimit(t *testing.T) {
	st := newTestStore(t)

	base := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		require.NoError(t, st.SaveRun(testRun(id, base.Add(time.Duration(i)*time.Minute))))
	}

	runs, err := st.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	// Newest first
	assert.Equal(t, "run-c", runs[0].ID)
	assert.Equal(t, "run-b", runs[1].ID)
	assert.Equal(t, "run-a", runs[2].ID)

	limited, err := st.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "run-c", limited[0].ID)
}
