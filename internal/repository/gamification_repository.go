package repository

import (
	"errors"
	"mindagrow_backend/internal/model"

	"gorm.io/gorm"
)

type GamificationRepository struct {
	DB *gorm.DB
}

func NewGamificationRepository(db *gorm.DB) *GamificationRepository {
	return &GamificationRepository{DB: db}
}

func (r *GamificationRepository) WithTx(tx *gorm.DB) *GamificationRepository {
	return &GamificationRepository{DB: tx}
}

// FindOrCreateLevel returns the user's level row, creating level 1 when absent.
func (r *GamificationRepository) FindOrCreateLevel(userID uint) (*model.UserLevel, error) {
	var lvl model.UserLevel
	err := r.DB.Where("user_id = ?", userID).First(&lvl).Error
	if err == nil {
		return &lvl, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	lvl = model.UserLevel{UserID: userID, Level: 1}
	if err := r.DB.Create(&lvl).Error; err != nil {
		return nil, err
	}
	return &lvl, nil
}

// AddTotalXP increments total_xp in place so concurrent awards never lose points.
func (r *GamificationRepository) AddTotalXP(userID uint, amount int) error {
	return r.DB.Model(&model.UserLevel{}).
		Where("user_id = ?", userID).
		UpdateColumn("total_xp", gorm.Expr("total_xp + ?", amount)).Error
}

func (r *GamificationRepository) SaveLevel(lvl *model.UserLevel) error {
	return r.DB.Omit("User").Save(lvl).Error
}

// TopByXP ranks students only.
func (r *GamificationRepository) TopByXP(limit int) ([]model.UserLevel, error) {
	var list []model.UserLevel
	err := r.DB.Model(&model.UserLevel{}).
		Joins("JOIN users ON users.id = user_levels.user_id").
		Where("users.role = ? AND users.status = ?", model.RoleSiswa, model.UserStatusActive).
		Preload("User").
		Order("user_levels.total_xp DESC, user_levels.user_id ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// RankOf counts students strictly ahead of totalXP.
func (r *GamificationRepository) RankOf(totalXP int) (int64, error) {
	var ahead int64
	err := r.DB.Model(&model.UserLevel{}).
		Joins("JOIN users ON users.id = user_levels.user_id").
		Where("users.role = ? AND users.status = ? AND user_levels.total_xp > ?", model.RoleSiswa, model.UserStatusActive, totalXP).
		Count(&ahead).Error
	return ahead + 1, err
}

func (r *GamificationRepository) FindOrCreateStreak(userID uint) (*model.UserStreak, error) {
	var s model.UserStreak
	err := r.DB.Where("user_id = ?", userID).First(&s).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	s = model.UserStreak{UserID: userID}
	if err := r.DB.Create(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GamificationRepository) SaveStreak(s *model.UserStreak) error {
	return r.DB.Save(s).Error
}

// ResetStale zeroes current streaks whose last activity is before the given date.
func (r *GamificationRepository) ResetStale(beforeDate string) (int64, error) {
	res := r.DB.Model(&model.UserStreak{}).
		Where("current_streak > 0 AND last_activity_date < ?", beforeDate).
		UpdateColumn("current_streak", 0)
	return res.RowsAffected, res.Error
}

func (r *GamificationRepository) ActiveMissionsByType(t model.MissionType) ([]model.DailyMission, error) {
	var list []model.DailyMission
	err := r.DB.Where("mission_type = ? AND is_active = ?", t, true).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *GamificationRepository) ListActiveMissions() ([]model.DailyMission, error) {
	var list []model.DailyMission
	err := r.DB.Where("is_active = ?", true).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *GamificationRepository) FindDailyProgress(userID, missionID uint, date string) (*model.UserDailyProgress, error) {
	var p model.UserDailyProgress
	err := r.DB.Where("user_id = ? AND mission_id = ? AND date = ?", userID, missionID, date).First(&p).Error
	return &p, err
}

func (r *GamificationRepository) SaveDailyProgress(p *model.UserDailyProgress) error {
	return r.DB.Omit("Mission").Save(p).Error
}

func (r *GamificationRepository) ListDailyProgress(userID uint, date string) ([]model.UserDailyProgress, error) {
	var list []model.UserDailyProgress
	err := r.DB.Where("user_id = ? AND date = ?", userID, date).Find(&list).Error
	return list, err
}
