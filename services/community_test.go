package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muslimlife/models"
	"muslimlife/testutil"
)

func TestCommunityLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCommunityService(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	ali := testutil.CreateUser(t, db, "ali")
	sara := testutil.CreateUser(t, db, "sara")

	c, err := svc.Create(ctx, "  Halaqa  ", "weekly circle", owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Halaqa", c.Name)
	assert.Len(t, c.InviteCode, 8)

	_, err = svc.Join(ctx, ali.ID, c.InviteCode)
	require.NoError(t, err)
	_, err = svc.Join(ctx, sara.ID, " "+c.InviteCode+" ")
	require.NoError(t, err)

	_, err = svc.Join(ctx, ali.ID, c.InviteCode)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.Join(ctx, ali.ID, "NOPE1234")
	assert.ErrorIs(t, err, ErrNotFound)

	members, err := svc.Members(ctx, c.ID, ali.ID)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, owner.ID, members[0].UserID)
	assert.Equal(t, models.CommunityRoleAdmin, members[0].Role)
	require.NotNil(t, members[1].User)
	assert.Equal(t, "ali", members[1].User.Username)

	mine, err := svc.ListForUser(ctx, sara.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, c.ID, mine[0].ID)

	outsider := testutil.CreateUser(t, db, "outsider")
	_, err = svc.Get(ctx, c.ID, outsider.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommunityAdminRules(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCommunityService(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	ali := testutil.CreateUser(t, db, "ali")
	c, err := svc.Create(ctx, "Circle", "", owner.ID)
	require.NoError(t, err)
	_, err = svc.Join(ctx, ali.ID, c.InviteCode)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RemoveMember(ctx, c.ID, ali.ID, owner.ID), ErrForbidden)
	assert.ErrorIs(t, svc.RemoveMember(ctx, c.ID, owner.ID, owner.ID), ErrInvalidInput)
	assert.ErrorIs(t, svc.Leave(ctx, c.ID, owner.ID), ErrConflict, "last admin cannot leave")
	assert.ErrorIs(t, svc.SetRole(ctx, c.ID, owner.ID, owner.ID, models.CommunityRoleMember), ErrConflict)
	assert.ErrorIs(t, svc.SetRole(ctx, c.ID, owner.ID, ali.ID, "owner"), ErrInvalidInput)

	require.NoError(t, svc.SetRole(ctx, c.ID, owner.ID, ali.ID, models.CommunityRoleAdmin))
	require.NoError(t, svc.Leave(ctx, c.ID, owner.ID))

	members, err := svc.Members(ctx, c.ID, ali.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, ali.ID, members[0].UserID)
}

func TestCommunityLeaderboard(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCommunityService(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	ali := testutil.CreateUser(t, db, "ali")
	sara := testutil.CreateUser(t, db, "sara")
	require.NoError(t, db.Model(owner).Update("total_points", 20).Error)
	require.NoError(t, db.Model(ali).Update("total_points", 50).Error)
	require.NoError(t, db.Model(sara).Update("total_points", 20).Error)

	c, err := svc.Create(ctx, "Circle", "", owner.ID)
	require.NoError(t, err)
	for _, u := range []*models.User{ali, sara} {
		_, err := svc.Join(ctx, u.ID, c.InviteCode)
		require.NoError(t, err)
	}
	require.NoError(t, svc.SetScoreVisibility(ctx, c.ID, ali.ID, true))

	board, err := svc.Leaderboard(ctx, c.ID, sara.ID)
	require.NoError(t, err)
	require.Len(t, board, 3)

	assert.Equal(t, ali.ID, board[0].UserID)
	assert.Nil(t, board[0].Score, "ali hid the score")
	assert.Equal(t, owner.ID, board[1].UserID, "ties keep join order")
	assert.Equal(t, sara.ID, board[2].UserID)
	assert.True(t, board[2].IsViewer)
	assert.Equal(t, 3, board[2].Rank)

	own, err := svc.Leaderboard(ctx, c.ID, ali.ID)
	require.NoError(t, err)
	require.NotNil(t, own[0].Score)
	assert.Equal(t, 50, *own[0].Score)
}

func TestGlobalLeaderboard(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	for i, name := range []string{"one", "two", "three"} {
		u := testutil.CreateUser(t, db, name)
		require.NoError(t, db.Model(u).Update("total_points", (i+1)*10).Error)
	}
	admin := testutil.CreateUser(t, db, "admin")
	require.NoError(t, db.Model(admin).Updates(map[string]interface{}{"is_admin": true, "total_points": 999}).Error)

	board, err := NewGlobalLeaderboard(db).Top(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "three", board[0].Username)
	assert.Equal(t, "two", board[1].Username)
}
