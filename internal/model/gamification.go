package model

import "time"

const XPPerLevel = 100

type UserLevel struct {
	BaseModel
	UserID    uint  `gorm:"uniqueIndex;not null" json:"user_id"`
	Level     int   `gorm:"not null" json:"level"`
	CurrentXP int   `gorm:"column:current_xp;not null" json:"current_xp"`
	TotalXP   int   `gorm:"column:total_xp;index;not null" json:"total_xp"`
	User      *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (UserLevel) TableName() string {
	return "user_levels"
}

// UserStreak dates are local calendar days formatted as util.DateFormat.
type UserStreak struct {
	BaseModel
	UserID           uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	CurrentStreak    int    `gorm:"not null" json:"current_streak"`
	LongestStreak    int    `gorm:"not null" json:"longest_streak"`
	LastActivityDate string `gorm:"size:10;index" json:"last_activity_date"`
}

func (UserStreak) TableName() string {
	return "user_streaks"
}

type MissionType string

const (
	MissionLogin            MissionType = "login"
	MissionSubmitAssignment MissionType = "submit_assignment"
	MissionCompleteLesson   MissionType = "complete_lesson"
	MissionPlayGame         MissionType = "play_game"
)

type DailyMission struct {
	BaseModel
	Code        string      `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Title       string      `gorm:"size:150;not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	MissionType MissionType `gorm:"size:30;index;not null" json:"mission_type"`
	TargetCount int         `gorm:"not null" json:"target_count"`
	XPReward    int         `gorm:"not null" json:"xp_reward"`
	IsActive    bool        `gorm:"index" json:"is_active"`
}

func (DailyMission) TableName() string {
	return "daily_missions"
}

type UserDailyProgress struct {
	BaseModel
	UserID      uint          `gorm:"uniqueIndex:idx_user_mission_date;not null" json:"user_id"`
	MissionID   uint          `gorm:"uniqueIndex:idx_user_mission_date;not null" json:"mission_id"`
	Date        string        `gorm:"size:10;uniqueIndex:idx_user_mission_date;not null" json:"date"`
	Progress    int           `json:"progress"`
	Completed   bool          `json:"completed"`
	CompletedAt *time.Time    `json:"completed_at"`
	Mission     *DailyMission `gorm:"foreignKey:MissionID" json:"mission,omitempty"`
}

func (UserDailyProgress) TableName() string {
	return "user_daily_progress"
}
