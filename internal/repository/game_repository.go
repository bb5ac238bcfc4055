package repository

import (
	"mindagrow_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type GameRepository struct {
	DB *gorm.DB
}

func NewGameRepository(db *gorm.DB) *GameRepository {
	return &GameRepository{DB: db}
}

func (r *GameRepository) WithTx(tx *gorm.DB) *GameRepository {
	return &GameRepository{DB: tx}
}

func (r *GameRepository) Create(g *model.Game) error {
	return r.DB.Create(g).Error
}

func (r *GameRepository) Update(g *model.Game) error {
	return r.DB.Save(g).Error
}

// FindByID returns a game regardless of status; callers decide visibility.
func (r *GameRepository) FindByID(id uint) (*model.Game, error) {
	var g model.Game
	err := r.DB.First(&g, id).Error
	return &g, err
}

type GameFilter struct {
	Subject    string
	GradeLevel string
	GameType   string
	ActiveOnly bool
}

func (r *GameRepository) List(filter GameFilter) ([]model.Game, error) {
	var list []model.Game
	query := r.DB.Model(&model.Game{})
	if filter.ActiveOnly {
		query = query.Where("status = ?", model.GameStatusActive)
	}
	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}
	if filter.GradeLevel != "" {
		query = query.Where("grade_level = ?", filter.GradeLevel)
	}
	if filter.GameType != "" {
		query = query.Where("game_type = ?", filter.GameType)
	}
	err := query.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *GameRepository) FindProgress(userID, gameID uint) (*model.UserGameProgress, error) {
	var p model.UserGameProgress
	err := r.DB.Where("user_id = ? AND game_id = ?", userID, gameID).First(&p).Error
	return &p, err
}

func (r *GameRepository) SaveProgress(p *model.UserGameProgress) error {
	return r.DB.Save(p).Error
}

func (r *GameRepository) ProgressByUser(userID uint, gameIDs []uint) (map[uint]model.UserGameProgress, error) {
	result := make(map[uint]model.UserGameProgress, len(gameIDs))
	if len(gameIDs) == 0 {
		return result, nil
	}
	var list []model.UserGameProgress
	err := r.DB.Where("user_id = ? AND game_id IN ?", userID, gameIDs).Find(&list).Error
	for _, p := range list {
		result[p.GameID] = p
	}
	return result, err
}

func (r *GameRepository) PlayedTimesSince(userID uint, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.DB.Model(&model.UserGameProgress{}).
		Where("user_id = ? AND last_played_at >= ?", userID, since).
		Pluck("last_played_at", &times).Error
	return times, err
}

func (r *GameRepository) CountCompletedByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.UserGameProgress{}).Where("user_id = ? AND completed = ?", userID, true).Count(&count).Error
	return count, err
}
