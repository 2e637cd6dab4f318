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

func newPrayerService(t *testing.T, progress ProgressRecorder, activity ActivityLogger, today time.Time) *PrayerService {
	t.Helper()
	svc := NewPrayerService(testutil.NewDB(t), logging.Nop(), progress, activity)
	svc.SetClock(func() time.Time { return today })
	return svc
}

func markDay(t *testing.T, svc *PrayerService, userID uint, date string) {
	t.Helper()
	for _, p := range models.DailyPrayers {
		_, err := svc.Mark(context.Background(), userID, date, p, true)
		require.NoError(t, err)
	}
}

func TestPrayerMark(t *testing.T) {
	activity := &fakeActivity{}
	progress := &fakeProgress{}
	svc := newPrayerService(t, progress, activity, time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	created, err := svc.Mark(ctx, 1, "2025-05-01", models.PrayerFajr, false)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.Mark(ctx, 1, "2025-05-01", models.PrayerFajr, true)
	require.NoError(t, err)
	assert.False(t, created, "marking twice is a no-op")
	assert.Equal(t, []string{"prayers"}, activity.habits, "activity is logged once")
	assert.Equal(t, []recordedProgress{{userID: 1, kind: "prayers_logged", delta: 1}}, progress.calls)

	_, err = svc.Mark(ctx, 1, "01/05/2025", models.PrayerFajr, true)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Mark(ctx, 1, "2025-05-01", "tahajjud", true)
	assert.ErrorIs(t, err, ErrInvalidInput)

	day, err := svc.Day(ctx, 1, "2025-05-01")
	require.NoError(t, err)
	assert.Equal(t, 1, day.Count)
	require.Len(t, day.Prayers, 5)
	assert.Equal(t, models.PrayerFajr, day.Prayers[0].Prayer)
	assert.True(t, day.Prayers[0].Done)
	assert.False(t, day.Prayers[0].OnTime, "the late flag survives the insert")
	assert.False(t, day.Prayers[1].Done)
	assert.Nil(t, day.Prayers[1].PrayedAt)
}

func TestPrayerStreak(t *testing.T) {
	today := time.Date(2025, 5, 5, 20, 0, 0, 0, time.UTC)
	svc := newPrayerService(t, nil, nil, today)
	ctx := context.Background()

	markDay(t, svc, 1, "2025-05-01")
	markDay(t, svc, 1, "2025-05-03")
	markDay(t, svc, 1, "2025-05-04")
	_, err := svc.Mark(ctx, 1, "2025-05-05", models.PrayerFajr, true)
	require.NoError(t, err)

	streak, err := svc.Streak(ctx, 1, today)
	require.NoError(t, err)
	assert.Equal(t, 2, streak.Current, "an incomplete today does not break the streak")
	assert.Equal(t, "2025-05-04", streak.LastComplete)

	markDay(t, svc, 1, "2025-05-05")
	streak, err = svc.Streak(ctx, 1, today)
	require.NoError(t, err)
	assert.Equal(t, 3, streak.Current)
	assert.Equal(t, "2025-05-05", streak.LastComplete)

	streak, err = svc.Streak(ctx, 1, time.Date(2025, 5, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, streak.Current)

	streak, err = svc.Streak(ctx, 2, today)
	require.NoError(t, err)
	assert.Zero(t, streak.Current)
}

func TestPrayerMarkPastDay(t *testing.T) {
	activity := &fakeActivity{}
	progress := &fakeProgress{}
	svc := newPrayerService(t, progress, activity, time.Date(2025, 5, 10, 23, 30, 0, 0, time.UTC))
	ctx := context.Background()

	created, err := svc.Mark(ctx, 1, "2025-05-08", models.PrayerIsha, true)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Empty(t, activity.habits, "a past day does not feed today's habit")
	assert.Len(t, progress.calls, 1, "the log itself still counts")

	_, err = svc.Mark(ctx, 1, "2025-05-11", models.PrayerFajr, true)
	require.NoError(t, err, "clients ahead of UTC may already be on tomorrow")

	_, err = svc.Mark(ctx, 1, "2025-05-12", models.PrayerFajr, true)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Mark(ctx, 1, "2025-05-02", models.PrayerFajr, true)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Mark(ctx, 1, "2025-05-10", models.PrayerFajr, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"prayers"}, activity.habits)
}
