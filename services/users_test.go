package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muslimlife/logging"
	"muslimlife/models"
	"muslimlife/testutil"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	user, err := svc.Register(ctx, " Amina@Example.com ", "amina", "bismillah1", "")
	require.NoError(t, err)
	assert.Equal(t, "amina@example.com", user.Email)
	assert.Equal(t, "amina", user.DisplayName)
	assert.NotEqual(t, "bismillah1", user.Password)

	_, err = svc.Register(ctx, "other@example.com", "amina", "bismillah1", "")
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.Register(ctx, "short@example.com", "short", "abc", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := svc.Authenticate(ctx, "AMINA@example.com", "bismillah1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotNil(t, got.LastLogin)

	_, err = svc.Authenticate(ctx, "amina", "wrong-password")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Authenticate(ctx, "nobody", "bismillah1")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUserAdminOperations(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	admin := testutil.CreateUser(t, db, "admin")
	require.NoError(t, db.Model(admin).Update("is_admin", true).Error)
	for i := 0; i < 25; i++ {
		testutil.CreateUser(t, db, fmt.Sprintf("user%02d", i))
	}

	page, err := svc.List(ctx, "", 2, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 26, page.Total)
	assert.Len(t, page.Users, 10)

	page, err = svc.List(ctx, "user1", 1, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 10, page.Total)
	assert.Equal(t, 20, page.Limit)

	member := page.Users[0]
	promoted, err := svc.SetAdmin(ctx, admin.ID, member.ID, true)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin)

	_, err = svc.SetAdmin(ctx, admin.ID, admin.ID, false)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.SetAdmin(ctx, admin.ID, 9999, true)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.ResetPassword(ctx, member.ID, "short"), ErrInvalidInput)
	assert.ErrorIs(t, svc.ResetPassword(ctx, 9999, "long-enough"), ErrNotFound)
	require.NoError(t, svc.ResetPassword(ctx, member.ID, "long-enough"))
	_, err = svc.Authenticate(ctx, member.Username, "long-enough")
	assert.NoError(t, err)
}

func TestDeleteUserRemovesOwnedRows(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	admin := testutil.CreateUser(t, db, "admin")
	require.NoError(t, db.Model(admin).Update("is_admin", true).Error)
	user := testutil.CreateUser(t, db, "yusuf")

	tracker := NewGoalTracker(db, logging.Nop(), nil)
	_, err := tracker.Goals(ctx, user.ID)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.MoodEntry{UserID: user.ID, Mood: "calm"}).Error)

	assert.ErrorIs(t, svc.Delete(ctx, admin.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, user.ID))

	var goals, moods int64
	db.Model(&models.UserGoal{}).Where("user_id = ?", user.ID).Count(&goals)
	db.Model(&models.MoodEntry{}).Where("user_id = ?", user.ID).Count(&moods)
	assert.Zero(t, goals)
	assert.Zero(t, moods)

	_, err = svc.Get(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
