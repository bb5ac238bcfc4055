package repository

import (
	"mindagrow_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByIDs(ids []uint) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.DB.Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

func (r *UserRepository) UpdateStatus(id uint, status string) error {
	return r.DB.Model(&model.User{}).Where("id = ?", id).Update("status", status).Error
}

func (r *UserRepository) UpdatePassword(id uint, hash string) error {
	return r.DB.Model(&model.User{}).Where("id = ?", id).Update("password", hash).Error
}

func (r *UserRepository) UpdateLastLogin(id uint, at time.Time) error {
	return r.DB.Model(&model.User{}).Where("id = ?", id).Update("last_login", at).Error
}

type UserFilter struct {
	Role   string
	Status string
	Search string
}

func (r *UserRepository) List(filter UserFilter, page, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := r.DB.Model(&model.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", term, term)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	return users, total, err
}

type RoleCount struct {
	Role  string `json:"role"`
	Total int64  `json:"total"`
}

func (r *UserRepository) CountByRole() ([]RoleCount, error) {
	var counts []RoleCount
	err := r.DB.Model(&model.User{}).
		Select("role, COUNT(*) AS total").
		Where("status = ?", model.UserStatusActive).
		Group("role").
		Scan(&counts).Error
	return counts, err
}
