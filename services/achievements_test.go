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

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		name        string
		unlocked    bool
		current     int
		requirement int
		want        float64
	}{
		{name: "unlocked ignores counter", unlocked: true, current: 0, requirement: 10, want: 100},
		{name: "partial", current: 3, requirement: 12, want: 25},
		{name: "over requirement clamps", current: 50, requirement: 10, want: 100},
		{name: "negative clamps", current: -4, requirement: 10, want: 0},
		{name: "zero requirement", current: 1, requirement: 0, want: 100},
		{name: "zero requirement no progress", current: 0, requirement: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ProgressPercent(tt.unlocked, tt.current, tt.requirement), 1e-9)
		})
	}
}

func TestMergeAchievements(t *testing.T) {
	defs := []models.Achievement{
		{ID: 1, Title: "A", RequirementValue: 10, Points: 5},
		{ID: 2, Title: "B", RequirementValue: 4, Points: 20},
		{ID: 3, Title: "C", RequirementValue: 4, Points: 7},
		{ID: 4, Title: "D", RequirementValue: 100},
	}
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	unlocks := []models.UserAchievement{{AchievementID: 2, UnlockedAt: at}}
	progress := []models.AchievementProgress{
		{AchievementID: 1, CurrentValue: 5},
		{AchievementID: 2, CurrentValue: 1},
		{AchievementID: 3, CurrentValue: 2},
	}

	board := MergeAchievements(defs, unlocks, progress)

	require.Len(t, board.Items, 4)
	assert.Equal(t, 4, board.Total)
	assert.Equal(t, 1, board.UnlockedCount)
	assert.Equal(t, 20, board.TotalPoints)

	assert.True(t, board.Items[1].Unlocked)
	assert.Equal(t, at, *board.Items[1].UnlockedAt)
	assert.Equal(t, float64(100), board.Items[1].Progress)
	assert.Equal(t, float64(50), board.Items[0].Progress)
	assert.Equal(t, float64(0), board.Items[3].Progress)

	// A and C tie at 50%; the first one wins
	require.NotNil(t, board.Next)
	assert.Equal(t, uint(1), board.Next.ID)
}

func TestMergeAchievementsNoNext(t *testing.T) {
	defs := []models.Achievement{{ID: 1, RequirementValue: 3}}

	board := MergeAchievements(defs, []models.UserAchievement{{AchievementID: 1}}, nil)
	assert.Nil(t, board.Next, "unlocked items are never next")

	board = MergeAchievements(defs, nil, nil)
	assert.Nil(t, board.Next, "zero progress is never next")
}

func newAchievementService(t *testing.T) (*AchievementService, *fakeClock) {
	t.Helper()
	db := testutil.NewDB(t)
	clock := newFakeClock()
	svc := NewAchievementService(db, logging.Nop(), 30*time.Second)
	svc.SetClock(clock.Now)
	return svc, clock
}

func TestAchievementBoardCaching(t *testing.T) {
	svc, clock := newAchievementService(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, svc.db, "amina")
	testutil.CreateAchievement(t, svc.db, models.Achievement{Title: "First", RequirementType: "dhikr", RequirementValue: 5})

	first, err := svc.Board(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, first.Items, 1)

	clock.Advance(10 * time.Second)
	second, err := svc.Board(ctx, user.ID)
	require.NoError(t, err)
	assert.Same(t, first, second, "fresh board is served from cache")

	clock.Advance(21 * time.Second)
	third, err := svc.Board(ctx, user.ID)
	require.NoError(t, err)
	assert.NotSame(t, first, third, "expired board is refetched")
}

func TestRecordProgressInvalidatesAndUnlocksOnce(t *testing.T) {
	svc, _ := newAchievementService(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, svc.db, "yusuf")
	a := testutil.CreateAchievement(t, svc.db, models.Achievement{Title: "Reader", RequirementType: "quran_pages", RequirementValue: 5, Points: 40})
	testutil.CreateAchievement(t, svc.db, models.Achievement{Title: "Other", RequirementType: "dhikr", RequirementValue: 1, Points: 10})

	before, err := svc.Board(ctx, user.ID)
	require.NoError(t, err)

	unlocked, err := svc.RecordProgress(ctx, user.ID, "quran_pages", 3)
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	after, err := svc.Board(ctx, user.ID)
	require.NoError(t, err)
	assert.NotSame(t, before, after, "progress invalidates the cached board")
	require.NotNil(t, after.Next)
	assert.Equal(t, a.ID, after.Next.ID)
	assert.InDelta(t, 60, after.Next.Progress, 1e-9)

	unlocked, err = svc.RecordProgress(ctx, user.ID, "quran_pages", 2)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, a.ID, unlocked[0].ID)

	unlocked, err = svc.RecordProgress(ctx, user.ID, "quran_pages", 10)
	require.NoError(t, err)
	assert.Empty(t, unlocked, "an achievement unlocks only once")

	var reloaded models.User
	require.NoError(t, svc.db.First(&reloaded, user.ID).Error)
	assert.Equal(t, 40, reloaded.TotalPoints)

	board, err := svc.Board(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, board.UnlockedCount)
	assert.Equal(t, 40, board.TotalPoints)
}

func TestRecordProgressRejectsBadInput(t *testing.T) {
	svc, _ := newAchievementService(t)
	ctx := context.Background()

	_, err := svc.RecordProgress(ctx, 1, "dhikr", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.RecordProgress(ctx, 1, "", 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRefreshCancelledContext(t *testing.T) {
	svc, _ := newAchievementService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Refresh(ctx, 1)
	require.Error(t, err)
	assert.Equal(t, 0, svc.Cache().Len(), "a cancelled load never populates the cache")
}

func TestRefreshFailureServesStaleBoard(t *testing.T) {
	svc, clock := newAchievementService(t)
	user := testutil.CreateUser(t, svc.db, "maryam")
	testutil.CreateAchievement(t, svc.db, models.Achievement{Title: "Steady", RequirementType: "dhikr", RequirementValue: 10})

	fresh, err := svc.Board(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, fresh.Items, 1)

	clock.Advance(31 * time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stale, err := svc.Refresh(ctx, user.ID)
	require.NoError(t, err, "the previous board is served instead of the error")
	assert.True(t, stale.Stale)
	assert.Equal(t, fresh.Items, stale.Items)
	assert.False(t, fresh.Stale, "the cached board itself is not modified")
}

func TestLoadReadBeforeInvalidateIsNotCached(t *testing.T) {
	svc, _ := newAchievementService(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, svc.db, "zayd")
	testutil.CreateAchievement(t, svc.db, models.Achievement{Title: "First lecture", RequirementType: "lectures", RequirementValue: 1, Points: 10})

	// a load that read the tables before the unlock committed
	version := svc.cache.Version(user.ID)
	old, err := svc.load(ctx, user.ID)
	require.NoError(t, err)

	unlocked, err := svc.RecordProgress(ctx, user.ID, "lectures", 1)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)

	assert.False(t, svc.cache.SetAt(user.ID, old, version))

	board, err := svc.Board(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, board.UnlockedCount, "the board reflects the unlock")
}

func TestAdminCreateKeepsInactive(t *testing.T) {
	svc, _ := newAchievementService(t)
	ctx := context.Background()

	a := &models.Achievement{Title: "Hidden", RequirementType: "dhikr", RequirementValue: 1, IsActive: false}
	require.NoError(t, svc.Create(ctx, a))

	var stored models.Achievement
	require.NoError(t, svc.db.First(&stored, a.ID).Error)
	assert.False(t, stored.IsActive)

	updated, err := svc.Update(ctx, a.ID, map[string]interface{}{"is_active": true, "points": 15})
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
	assert.Equal(t, 15, updated.Points)

	require.NoError(t, svc.Delete(ctx, a.ID))
	assert.ErrorIs(t, svc.Delete(ctx, a.ID), ErrNotFound)
}
