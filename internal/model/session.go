package model

import (
	"time"

	"gorm.io/datatypes"
)

// UserSession backs revocable JWTs: the token's jti is the session ID.
type UserSession struct {
	UUIDBase
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	IPAddress    string    `gorm:"size:64" json:"ip_address"`
	UserAgent    string    `gorm:"size:255" json:"user_agent"`
	ExpiresAt    time.Time `gorm:"index;not null" json:"expires_at"`
	IsActive     bool      `gorm:"default:true;index" json:"is_active"`
	LastActivity time.Time `json:"last_activity"`
}

func (UserSession) TableName() string {
	return "user_sessions"
}

type AuditLog struct {
	ID         uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     *uint          `gorm:"index" json:"user_id"`
	Action     string         `gorm:"size:50;index;not null" json:"action"`
	EntityType string         `gorm:"size:50" json:"entity_type"`
	EntityID   string         `gorm:"size:64" json:"entity_id"`
	Details    datatypes.JSON `json:"details"`
	IPAddress  string         `gorm:"size:64" json:"ip_address"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
