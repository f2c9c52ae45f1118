package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikshitha/social-warmup/models"
	"github.com/nikshitha/social-warmup/risk"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "data", "warmup.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestActionLogRoundTrip(t *testing.T) {
	db := newTestDatabase(t)
	base := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	sink := db.ActionSink("session-1")

	require.NoError(t, sink.SaveAction(risk.Entry{Timestamp: base.Add(-2 * time.Hour), Category: models.CategoryLike, Outcome: models.StatusSuccess, Message: "old"}))
	require.NoError(t, sink.SaveAction(risk.Entry{Timestamp: base.Add(-30 * time.Minute), Category: models.CategoryFollow, Outcome: models.StatusSuccess, Message: "followed"}))
	require.NoError(t, sink.SaveAction(risk.Entry{Timestamp: base.Add(-30*time.Minute + 500*time.Millisecond), Category: models.CategoryLike, Outcome: models.StatusError}))

	entries, err := db.ActionsSince(base.Add(-time.Hour))

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.CategoryFollow, entries[0].Category)
	assert.Equal(t, "followed", entries[0].Message)
	assert.True(t, entries[0].Timestamp.Equal(base.Add(-30*time.Minute)))
	assert.Equal(t, models.StatusError, entries[1].Outcome)
	assert.True(t, entries[1].Timestamp.Equal(base.Add(-30*time.Minute+500*time.Millisecond)))
}

func TestActionsSinceEmpty(t *testing.T) {
	db := newTestDatabase(t)

	entries, err := db.ActionsSince(time.Now().Add(-time.Hour))

	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDailyStats(t *testing.T) {
	db := newTestDatabase(t)
	day := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, db.SaveAction("s", risk.Entry{Timestamp: day, Category: models.CategoryLike, Outcome: models.StatusSuccess}))
	}
	require.NoError(t, db.SaveAction("s", risk.Entry{Timestamp: day, Category: models.CategoryFollow, Outcome: models.StatusSuccess}))

	stats, err := db.GetDailyStats(day)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-04", stats.Date)
	assert.Equal(t, 3, stats.Likes)
	assert.Equal(t, 1, stats.Follows)
	assert.Zero(t, stats.Comments)

	empty, err := db.GetDailyStats(day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Zero(t, empty.Likes)
}

func TestSessionHistory(t *testing.T) {
	db := newTestDatabase(t)
	start := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	first := &models.SessionResult{
		SessionID:  "a",
		Phase:      1,
		Day:        1,
		Status:     models.StatusSuccess,
		State:      models.StateDone,
		StartedAt:  start,
		FinishedAt: start.Add(20 * time.Minute),
		Statistics: models.Statistics{LikesGiven: 2, ProfilesVisited: 3},
	}
	second := &models.SessionResult{
		SessionID:  "b",
		Phase:      1,
		Day:        2,
		Status:     models.StatusError,
		State:      models.StateError,
		Message:    "no budget configured for phase 1 day 2",
		StartedAt:  start.Add(24 * time.Hour),
		FinishedAt: start.Add(24 * time.Hour),
	}
	require.NoError(t, db.SaveSession(first))
	require.NoError(t, db.SaveSession(second))

	first.Statistics.LikesGiven = 4
	require.NoError(t, db.SaveSession(first))

	history, err := db.SessionHistory(10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "b", history[0].ID)
	assert.Equal(t, models.StatusError, history[0].Status)
	assert.Equal(t, "no budget configured for phase 1 day 2", history[0].Message)
	assert.Equal(t, "a", history[1].ID)
	assert.Equal(t, 4, history[1].Statistics.LikesGiven)
	assert.Equal(t, 3, history[1].Statistics.ProfilesVisited)
	assert.True(t, history[1].FinishedAt.Equal(start.Add(20*time.Minute)))

	limited, err := db.SessionHistory(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestProfileVisits(t *testing.T) {
	db := newTestDatabase(t)
	at := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	missing, err := db.GetProfile("alice")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, db.RecordProfileVisit("alice", true, at))
	require.NoError(t, db.RecordProfileVisit("alice", false, at.Add(time.Hour)))

	p, err := db.GetProfile("alice")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 2, p.Visits)
	assert.True(t, p.Followed)
	assert.True(t, p.FirstVisitedAt.Equal(at))
	assert.True(t, p.LastVisitedAt.Equal(at.Add(time.Hour)))
}
