package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muslimlife/logging"
)

type fakeSweeper int

func (f fakeSweeper) Sweep() int { return int(f) }

type fakeResetter struct{ calls int }

func (f *fakeResetter) ResetDaily(context.Context) (int64, error) {
	f.calls++
	return 12, nil
}

func TestCleanupJobs(t *testing.T) {
	goals := &fakeResetter{}
	s, err := NewCleanupService(logging.Nop(), goals, "0 0 * * *", "@every 1m", fakeSweeper(2), fakeSweeper(3))
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 2)

	n, err := s.ResetGoals()
	require.NoError(t, err)
	assert.EqualValues(t, 12, n)
	assert.Equal(t, 1, goals.calls)

	assert.Equal(t, 5, s.SweepCaches())
}

func TestCleanupSchedules(t *testing.T) {
	_, err := NewCleanupService(logging.Nop(), &fakeResetter{}, "not a schedule", "")
	assert.Error(t, err)

	s, err := NewCleanupService(logging.Nop(), nil, "0 0 * * *", "")
	require.NoError(t, err)
	assert.Empty(t, s.cron.Entries(), "nothing to reset without goals")

	n, err := s.ResetGoals()
	require.NoError(t, err)
	assert.Zero(t, n)
}
