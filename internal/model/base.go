package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rows are never hard-deleted; each table carries its own status column.
// swagger:model
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// swagger:model
type UUIDBase struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *UUIDBase) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}

func GenerateUUID() string {
	return uuid.New().String()
}

// All lists every model migrated at startup, in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Siswa{},
		&Guru{},
		&Orangtua{},
		&Class{},
		&ClassMember{},
		&Assignment{},
		&Submission{},
		&Material{},
		&Category{},
		&Course{},
		&Module{},
		&Lesson{},
		&Enrollment{},
		&LessonProgress{},
		&Game{},
		&UserGameProgress{},
		&UserLevel{},
		&UserStreak{},
		&DailyMission{},
		&UserDailyProgress{},
		&UserSession{},
		&AuditLog{},
	}
}
