package service

import (
	"encoding/json"
	"errors"
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/repository"
	"mindagrow_backend/internal/util"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GameInput struct {
	Title       string          `json:"title" binding:"required,max=150"`
	Description string          `json:"description"`
	GameType    string          `json:"game_type" binding:"required,oneof=quiz puzzle memory math"`
	Subject     string          `json:"subject" binding:"omitempty,max=100"`
	GradeLevel  string          `json:"grade_level" binding:"omitempty,max=20"`
	Difficulty  string          `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	XPReward    *int            `json:"xp_reward" binding:"omitempty,min=0,max=1000"`
	Config      json.RawMessage `json:"config" swaggertype:"object"`
	Status      string          `json:"status" binding:"omitempty,oneof=active inactive"`
}

type PlayInput struct {
	Score            *int `json:"score" binding:"required,min=0"`
	Completed        bool `json:"completed"`
	TimeSpentSeconds int  `json:"time_spent_seconds" binding:"omitempty,min=0"`
}

type GameWithProgress struct {
	model.Game
	Progress *model.UserGameProgress `json:"progress,omitempty"`
}

type PlayResult struct {
	Progress     *model.UserGameProgress `json:"progress"`
	Gamification *ActivityResult         `json:"gamification"`
}

type GameService struct {
	DB           *gorm.DB
	GameRepo     *repository.GameRepository
	Gamification *GamificationService
	now          func() time.Time
}

func NewGameService(db *gorm.DB, gameRepo *repository.GameRepository, gamification *GamificationService) *GameService {
	return &GameService{DB: db, GameRepo: gameRepo, Gamification: gamification, now: time.Now}
}

func (s *GameService) find(id uint, includeInactive bool) (*model.Game, error) {
	g, err := s.GameRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !includeInactive && g.Status != model.GameStatusActive) {
		return nil, util.ErrGameNotFound
	}
	return g, err
}

func (s *GameService) List(caller *util.Claims, filter repository.GameFilter) ([]GameWithProgress, error) {
	filter.ActiveOnly = caller.Role != model.RoleAdmin
	games, err := s.GameRepo.List(filter)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.ID)
	}
	progress, err := s.GameRepo.ProgressByUser(caller.UserID, ids)
	if err != nil {
		return nil, err
	}

	result := make([]GameWithProgress, 0, len(games))
	for _, g := range games {
		item := GameWithProgress{Game: g}
		if p, ok := progress[g.ID]; ok {
			p := p
			item.Progress = &p
		}
		result = append(result, item)
	}
	return result, nil
}

func (s *GameService) Get(id uint, caller *util.Claims) (*GameWithProgress, error) {
	g, err := s.find(id, caller.Role == model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	result := &GameWithProgress{Game: *g}
	p, err := s.GameRepo.FindProgress(caller.UserID, g.ID)
	if err == nil {
		result.Progress = p
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return result, nil
}

func applyGameInput(g *model.Game, in GameInput) {
	g.Title = strings.TrimSpace(in.Title)
	g.Description = in.Description
	g.GameType = in.GameType
	g.Subject = in.Subject
	g.GradeLevel = in.GradeLevel
	g.Difficulty = in.Difficulty
	if in.XPReward != nil {
		g.XPReward = *in.XPReward
	}
	if len(in.Config) > 0 {
		g.Config = datatypes.JSON(in.Config)
	}
	if in.Status != "" {
		g.Status = in.Status
	}
}

func (s *GameService) Create(in GameInput) (*model.Game, error) {
	g := &model.Game{XPReward: model.DefaultGameXP, Status: model.GameStatusActive, Difficulty: "easy"}
	applyGameInput(g, in)
	if err := s.GameRepo.Create(g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GameService) Update(id uint, in GameInput) (*model.Game, error) {
	g, err := s.find(id, true)
	if err != nil {
		return nil, err
	}
	applyGameInput(g, in)
	if err := s.GameRepo.Update(g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GameService) Delete(id uint) error {
	g, err := s.find(id, true)
	if err != nil {
		return err
	}
	g.Status = model.GameStatusInactive
	return s.GameRepo.Update(g)
}

// Play records one attempt. Completed attempts award the game's XP every time.
func (s *GameService) Play(id, userID uint, in PlayInput) (*PlayResult, error) {
	g, err := s.find(id, false)
	if err != nil {
		return nil, err
	}

	result := &PlayResult{}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		games := s.GameRepo.WithTx(tx)
		now := s.now()

		progress, err := games.FindProgress(userID, g.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			progress = &model.UserGameProgress{UserID: userID, GameID: g.ID}
		} else if err != nil {
			return err
		}

		score := *in.Score
		progress.Attempts++
		progress.LastScore = score
		if score > progress.BestScore {
			progress.BestScore = score
		}
		progress.Completed = progress.Completed || in.Completed
		progress.TotalTimeSeconds += in.TimeSpentSeconds
		progress.LastPlayedAt = &now
		if err := games.SaveProgress(progress); err != nil {
			return err
		}
		result.Progress = progress

		xp := 0
		if in.Completed {
			xp = g.XPReward
		}
		result.Gamification, err = s.Gamification.RecordActivity(tx, userID, model.MissionPlayGame, xp)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
