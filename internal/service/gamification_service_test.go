package service

import (
	"context"
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/repository"
	"mindagrow_backend/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newGamification(db *gorm.DB, now time.Time) *GamificationService {
	s := NewGamificationService(repository.NewGamificationRepository(db), nil)
	s.now = fixedClock(now)
	return s
}

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		total   int
		level   int
		current int
	}{
		{0, 1, 0},
		{99, 1, 99},
		{100, 2, 0},
		{250, 3, 50},
		{-5, 1, 0},
	}
	for _, tt := range tests {
		level, current := LevelForXP(tt.total)
		assert.Equal(t, tt.level, level, "total %d", tt.total)
		assert.Equal(t, tt.current, current, "total %d", tt.total)
	}
}

func TestNextStreak(t *testing.T) {
	today := time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local)

	tests := []struct {
		name        string
		current     int
		longest     int
		last        string
		wantCurrent int
		wantLongest int
	}{
		{"first activity", 0, 0, "", 1, 1},
		{"same day", 3, 5, "2024-03-10", 3, 5},
		{"consecutive day", 3, 3, "2024-03-09", 4, 4},
		{"gap resets", 7, 9, "2024-03-07", 1, 9},
		{"reset by nightly job", 0, 4, "2024-03-09", 1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, longest := NextStreak(tt.current, tt.longest, tt.last, today)
			assert.Equal(t, tt.wantCurrent, current)
			assert.Equal(t, tt.wantLongest, longest)
		})
	}
}

func TestAddXPLevelsUp(t *testing.T) {
	db := testutil.PrepareDB(t)
	user := testutil.CreateSiswa(t, db, "budi", "1001")
	s := newGamification(db, time.Now())

	res, err := s.AddXP(nil, user.ID, 60)
	require.NoError(t, err)
	assert.False(t, res.LeveledUp)
	assert.Equal(t, 1, res.Level)
	assert.Equal(t, 40, res.XPToNextLevel)

	res, err = s.AddXP(nil, user.ID, 60)
	require.NoError(t, err)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 2, res.Level)
	assert.Equal(t, 20, res.CurrentXP)
	assert.Equal(t, 120, res.TotalXP)
}

func TestRecordActivityAwardsMissionOnce(t *testing.T) {
	db := testutil.PrepareDB(t)
	user := testutil.CreateSiswa(t, db, "sari", "1002")
	s := newGamification(db, time.Date(2024, 3, 10, 8, 0, 0, 0, time.Local))

	first, err := s.RecordActivity(nil, user.ID, model.MissionLogin, 0)
	require.NoError(t, err)
	require.Len(t, first.CompletedMissions, 1)
	assert.Equal(t, "daily_login", first.CompletedMissions[0].Code)
	assert.Equal(t, 5, first.XP.TotalXP)
	assert.Equal(t, 1, first.Streak.CurrentStreak)

	second, err := s.RecordActivity(nil, user.ID, model.MissionLogin, 0)
	require.NoError(t, err)
	assert.Empty(t, second.CompletedMissions)
	assert.Equal(t, 5, second.XP.TotalXP)
	assert.Equal(t, 1, second.Streak.CurrentStreak)
}

func TestMissionNeedsTargetCount(t *testing.T) {
	db := testutil.PrepareDB(t)
	user := testutil.CreateSiswa(t, db, "rani", "1003")
	s := newGamification(db, time.Now())

	// complete_two_lessons needs two activities
	res, err := s.RecordActivity(nil, user.ID, model.MissionCompleteLesson, 10)
	require.NoError(t, err)
	assert.Empty(t, res.CompletedMissions)

	res, err = s.RecordActivity(nil, user.ID, model.MissionCompleteLesson, 10)
	require.NoError(t, err)
	require.Len(t, res.CompletedMissions, 1)
	assert.Equal(t, 10+10+20, res.XP.TotalXP)

	missions, err := s.GetMissions(user.ID)
	require.NoError(t, err)
	for _, m := range missions {
		if m.MissionType == model.MissionCompleteLesson {
			assert.True(t, m.Completed)
			assert.Equal(t, 2, m.Progress)
		}
	}
}

func TestStreakAcrossDaysAndNightlyReset(t *testing.T) {
	db := testutil.PrepareDB(t)
	user := testutil.CreateSiswa(t, db, "dodi", "1004")
	day := time.Date(2024, 3, 10, 8, 0, 0, 0, time.Local)
	s := newGamification(db, day)

	_, err := s.UpdateStreak(nil, user.ID)
	require.NoError(t, err)
	s.now = fixedClock(day.AddDate(0, 0, 1))
	streak, err := s.UpdateStreak(nil, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, streak.CurrentStreak)
	assert.Equal(t, 2, streak.LongestStreak)

	// two days later the nightly job zeroes the streak
	s.now = fixedClock(day.AddDate(0, 0, 3))
	n, err := s.ResetStaleStreaks()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	view, err := s.GetStreak(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, view.CurrentStreak)
	assert.Equal(t, 2, view.LongestStreak)
	assert.False(t, view.ActiveToday)
}

func TestLeaderboardOrdersStudentsByXP(t *testing.T) {
	db := testutil.PrepareDB(t)
	a := testutil.CreateSiswa(t, db, "ani", "2001")
	b := testutil.CreateSiswa(t, db, "beni", "2002")
	teacher := testutil.CreateGuru(t, db, "bu_tini", "1234567890123456")
	s := newGamification(db, time.Now())

	_, err := s.AddXP(nil, a.ID, 30)
	require.NoError(t, err)
	_, err = s.AddXP(nil, b.ID, 150)
	require.NoError(t, err)
	_, err = s.AddXP(nil, teacher.ID, 500)
	require.NoError(t, err)

	entries, err := s.GetLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, b.ID, entries[0].UserID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 2, entries[0].Level)
	assert.Equal(t, a.ID, entries[1].UserID)

	profile, err := s.GetProfile(a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), profile.Rank)
}
