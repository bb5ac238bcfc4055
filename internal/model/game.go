package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	GameStatusActive   = "active"
	GameStatusInactive = "inactive"

	DefaultGameXP = 20
)

// swagger:model Game
type Game struct {
	BaseModel
	Title       string         `gorm:"size:150;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	GameType    string         `gorm:"size:20;not null" json:"game_type"`
	Subject     string         `gorm:"size:100;index" json:"subject"`
	GradeLevel  string         `gorm:"size:20;index" json:"grade_level"`
	Difficulty  string         `gorm:"size:20" json:"difficulty"`
	XPReward    int            `gorm:"not null" json:"xp_reward"`
	Config      datatypes.JSON `json:"config"`
	Status      string         `gorm:"size:20;index;not null" json:"status"`
}

func (Game) TableName() string {
	return "games"
}

type UserGameProgress struct {
	BaseModel
	UserID           uint       `gorm:"uniqueIndex:idx_user_game;not null" json:"user_id"`
	GameID           uint       `gorm:"uniqueIndex:idx_user_game;not null" json:"game_id"`
	BestScore        int        `json:"best_score"`
	LastScore        int        `json:"last_score"`
	Attempts         int        `json:"attempts"`
	Completed        bool       `json:"completed"`
	TotalTimeSeconds int        `json:"total_time_seconds"`
	LastPlayedAt     *time.Time `json:"last_played_at"`
}

func (UserGameProgress) TableName() string {
	return "user_game_progress"
}
