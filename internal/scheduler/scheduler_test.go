package scheduler

import (
	"errors"
	"mindagrow_backend/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeStreaks struct {
	calls int
	err   error
}

func (f *fakeStreaks) ResetStaleStreaks() (int64, error) {
	f.calls++
	return 3, f.err
}

type fakeSessions struct {
	calls int
}

func (f *fakeSessions) CleanupSessions() (int64, error) {
	f.calls++
	return 1, nil
}

func TestJobsCallServices(t *testing.T) {
	streaks := &fakeStreaks{}
	sessions := &fakeSessions{}
	s := New(config.SchedulerConfig{}, streaks, sessions)

	s.ResetStreaks()
	s.CleanupSessions()

	assert.Equal(t, 1, streaks.calls)
	assert.Equal(t, 1, sessions.calls)
}

func TestResetStreaksToleratesErrors(t *testing.T) {
	streaks := &fakeStreaks{err: errors.New("db down")}
	s := New(config.SchedulerConfig{}, streaks, &fakeSessions{})

	assert.NotPanics(t, s.ResetStreaks)
}

func TestStartRejectsBadResetTime(t *testing.T) {
	s := New(config.SchedulerConfig{StreakResetAt: "25:99"}, &fakeStreaks{}, &fakeSessions{})
	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s := New(config.SchedulerConfig{StreakResetAt: "00:05", SessionCleanupHours: 1}, &fakeStreaks{}, &fakeSessions{})
	assert.NoError(t, s.Start())
	s.Stop()
}
