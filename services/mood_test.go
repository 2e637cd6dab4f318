package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muslimlife/logging"
	"muslimlife/models"
	"muslimlife/testutil"
)

func TestMoodLog(t *testing.T) {
	db := testutil.NewDB(t)
	progress := &fakeProgress{}
	svc := NewMoodService(db, logging.Nop(), progress)
	ctx := context.Background()

	entry, err := svc.Log(ctx, 1, " Grateful ", 7, "good day")
	require.NoError(t, err)
	assert.Equal(t, "grateful", entry.Mood)
	assert.Equal(t, []recordedProgress{{userID: 1, kind: "moods_logged", delta: 1}}, progress.calls)

	_, err = svc.Log(ctx, 1, "bored", 5, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Log(ctx, 1, "calm", 11, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Log(ctx, 1, "calm", 0, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Len(t, progress.calls, 1)
}

func TestMoodRecentAndSummary(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewMoodService(db, logging.Nop(), nil)
	ctx := context.Background()

	base := time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC)
	entries := []models.MoodEntry{
		{UserID: 1, Mood: "sad", Intensity: 4, CreatedAt: base.Add(-10 * 24 * time.Hour)},
		{UserID: 1, Mood: "calm", Intensity: 6, CreatedAt: base.Add(-2 * time.Hour)},
		{UserID: 1, Mood: "anxious", Intensity: 8, CreatedAt: base.Add(-time.Hour)},
		{UserID: 1, Mood: "calm", Intensity: 2, CreatedAt: base},
		{UserID: 1, Mood: "anxious", Intensity: 4, CreatedAt: base.Add(time.Minute)},
		{UserID: 2, Mood: "happy", Intensity: 9, CreatedAt: base},
	}
	require.NoError(t, db.Create(&entries).Error)

	recent, err := svc.Recent(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "anxious", recent[0].Mood)
	assert.Equal(t, "calm", recent[1].Mood)

	summary, err := svc.Summary(ctx, 1, base.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Entries)
	assert.Equal(t, map[string]int{"calm": 2, "anxious": 2}, summary.Counts)
	assert.InDelta(t, 5, summary.AvgIntensity, 1e-9)
	// calm precedes anxious in Moods
	assert.Equal(t, "calm", summary.MostFrequent)

	empty, err := svc.Summary(ctx, 3, base)
	require.NoError(t, err)
	assert.Zero(t, empty.Entries)
	assert.Empty(t, empty.MostFrequent)
}

func TestSupportFor(t *testing.T) {
	for _, m := range Moods {
		s, err := SupportFor(m)
		require.NoError(t, err, m)
		assert.Equal(t, m, s.Mood)
		assert.NotEmpty(t, s.Reminder)
	}

	_, err := SupportFor("bored")
	assert.ErrorIs(t, err, ErrNotFound)
}
