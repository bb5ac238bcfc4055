package service

import (
	"encoding/json"
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/repository"
	"mindagrow_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AuditLogin          = "login"
	AuditLogout         = "logout"
	AuditRegister       = "register"
	AuditPasswordChange = "password_change"
	AuditPasswordReset  = "password_reset"
	AuditStatusChange   = "status_change"
	AuditClassDelete    = "class_delete"
	AuditGrade          = "grade"
)

type AuditEntry struct {
	UserID     uint
	Action     string
	EntityType string
	EntityID   string
	Details    map[string]interface{}
	IPAddress  string
}

type AuditService struct {
	Repo *repository.AuditRepository
}

func NewAuditService(repo *repository.AuditRepository) *AuditService {
	return &AuditService{Repo: repo}
}

// Record writes an audit row. Inside a transaction the error is returned so
// the caller rolls back; outside one it is only logged.
func (s *AuditService) Record(tx *gorm.DB, entry AuditEntry) error {
	log := &model.AuditLog{
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		IPAddress:  entry.IPAddress,
	}
	if entry.UserID != 0 {
		uid := entry.UserID
		log.UserID = &uid
	}
	if len(entry.Details) > 0 {
		raw, err := json.Marshal(entry.Details)
		if err == nil {
			log.Details = datatypes.JSON(raw)
		}
	}

	repo := s.Repo
	if tx != nil {
		repo = s.Repo.WithTx(tx)
	}
	if err := repo.Create(log); err != nil {
		if tx != nil {
			return err
		}
		logger.Log.Warn("Failed to write audit log", zap.String("action", entry.Action), zap.Error(err))
	}
	return nil
}

func (s *AuditService) List(action string, page, limit int) ([]model.AuditLog, int64, error) {
	return s.Repo.List(action, page, limit)
}
