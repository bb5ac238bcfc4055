package service

import (
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/repository"
	"mindagrow_backend/internal/testutil"
	"mindagrow_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayGameTracksProgressAndXP(t *testing.T) {
	s := newServices(t)
	siswa := testutil.CreateSiswa(t, s.db, "siswa", "6001")

	game, err := s.games.Create(GameInput{Title: "Tebak Angka", GameType: "math", Subject: "Matematika"})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultGameXP, game.XPReward)
	assert.Equal(t, model.GameStatusActive, game.Status)

	res, err := s.games.Play(game.ID, siswa.ID, PlayInput{Score: intPtr(40), TimeSpentSeconds: 30})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Progress.Attempts)
	assert.False(t, res.Progress.Completed)
	assert.Zero(t, res.Gamification.XP.TotalXP)

	res, err = s.games.Play(game.ID, siswa.ID, PlayInput{Score: intPtr(90), Completed: true, TimeSpentSeconds: 20})
	require.NoError(t, err)
	assert.Equal(t, 90, res.Progress.BestScore)
	assert.Equal(t, model.DefaultGameXP, res.Gamification.XP.TotalXP)

	res, err = s.games.Play(game.ID, siswa.ID, PlayInput{Score: intPtr(70), Completed: true, TimeSpentSeconds: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Progress.Attempts)
	assert.Equal(t, 90, res.Progress.BestScore)
	assert.Equal(t, 70, res.Progress.LastScore)
	assert.Equal(t, 60, res.Progress.TotalTimeSeconds)
	assert.True(t, res.Progress.Completed)
	require.Len(t, res.Gamification.CompletedMissions, 1)
	assert.Equal(t, "play_three_games", res.Gamification.CompletedMissions[0].Code)
	assert.Equal(t, 2*model.DefaultGameXP+15, res.Gamification.XP.TotalXP)

	list, err := s.games.List(testutil.Claims(siswa), repository.GameFilter{GameType: "math"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Progress)
	assert.Equal(t, 3, list[0].Progress.Attempts)
}

func TestIncompletePlaysCountTowardPlayMission(t *testing.T) {
	s := newServices(t)
	siswa := testutil.CreateSiswa(t, s.db, "siswa", "6002")

	game, err := s.games.Create(GameInput{Title: "Puzzle", GameType: "puzzle"})
	require.NoError(t, err)

	var res *PlayResult
	for i := 0; i < 3; i++ {
		res, err = s.games.Play(game.ID, siswa.ID, PlayInput{Score: intPtr(10)})
		require.NoError(t, err)
	}
	assert.False(t, res.Progress.Completed)
	require.Len(t, res.Gamification.CompletedMissions, 1)
	mission := res.Gamification.CompletedMissions[0]
	assert.Equal(t, "play_three_games", mission.Code)
	assert.Contains(t, mission.Description, "Mainkan")
	assert.Equal(t, mission.XPReward, res.Gamification.XP.TotalXP)
}

func TestInactiveGameCannotBePlayed(t *testing.T) {
	s := newServices(t)
	siswa := testutil.CreateSiswa(t, s.db, "siswa", "6101")

	game, err := s.games.Create(GameInput{Title: "Memori", GameType: "memory"})
	require.NoError(t, err)
	require.NoError(t, s.games.Delete(game.ID))

	_, err = s.games.Play(game.ID, siswa.ID, PlayInput{Score: intPtr(10)})
	assert.ErrorIs(t, err, util.ErrGameNotFound)

	_, err = s.games.Get(game.ID, testutil.Claims(siswa))
	assert.ErrorIs(t, err, util.ErrGameNotFound)
}
