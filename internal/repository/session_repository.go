package repository

import (
	"mindagrow_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(session *model.UserSession) error {
	return r.DB.Create(session).Error
}

// FindActive returns the session only when it is active and unexpired at now.
func (r *SessionRepository) FindActive(id string, now time.Time) (*model.UserSession, error) {
	var session model.UserSession
	err := r.DB.Where("id = ? AND is_active = ? AND expires_at > ?", id, true, now).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Deactivate(id string) error {
	return r.DB.Model(&model.UserSession{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// DeactivateAllForUser revokes every session of the user except keepID.
func (r *SessionRepository) DeactivateAllForUser(userID uint, keepID string) error {
	query := r.DB.Model(&model.UserSession{}).Where("user_id = ? AND is_active = ?", userID, true)
	if keepID != "" {
		query = query.Where("id <> ?", keepID)
	}
	return query.Update("is_active", false).Error
}

func (r *SessionRepository) Touch(id string, at time.Time) error {
	return r.DB.Model(&model.UserSession{}).
		Where("id = ?", id).
		UpdateColumn("last_activity", at).Error
}

// DeleteExpired removes sessions that expired or were revoked before the cutoff.
func (r *SessionRepository) DeleteExpired(cutoff time.Time) (int64, error) {
	res := r.DB.Where("expires_at < ? OR (is_active = ? AND updated_at < ?)", cutoff, false, cutoff).
		Delete(&model.UserSession{})
	return res.RowsAffected, res.Error
}
