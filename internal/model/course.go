package model

import "time"

const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
	CourseStatusArchived  = "archived"

	DefaultLessonXP = 10
	DefaultCourseXP = 50

	EnrollmentStatusActive    = "active"
	EnrollmentStatusCompleted = "completed"
	EnrollmentStatusDropped   = "dropped"

	LessonStatusNotStarted = "not_started"
	LessonStatusCompleted  = "completed"
)

type Category struct {
	BaseModel
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Slug        string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Icon        string `gorm:"size:100" json:"icon"`
}

func (Category) TableName() string {
	return "categories"
}

// swagger:model Course
type Course struct {
	BaseModel
	CategoryID  *uint     `gorm:"index" json:"category_id"`
	TeacherID   uint      `gorm:"index;not null" json:"teacher_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Level       string    `gorm:"size:20" json:"level"`
	GradeLevel  string    `gorm:"size:20" json:"grade_level"`
	Thumbnail   string    `gorm:"size:255" json:"thumbnail"`
	XPReward    int       `gorm:"not null" json:"xp_reward"`
	Status      string    `gorm:"size:20;index;not null" json:"status"`
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Modules     []Module  `gorm:"foreignKey:CourseID" json:"modules,omitempty"`

	LessonCount int64 `gorm:"-" json:"lesson_count"`
}

func (Course) TableName() string {
	return "courses"
}

type Module struct {
	BaseModel
	CourseID    uint     `gorm:"index;not null" json:"course_id"`
	Title       string   `gorm:"size:200;not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	OrderIndex  int      `json:"order_index"`
	Lessons     []Lesson `gorm:"foreignKey:ModuleID" json:"lessons,omitempty"`
}

func (Module) TableName() string {
	return "modules"
}

type Lesson struct {
	BaseModel
	ModuleID        uint   `gorm:"index;not null" json:"module_id"`
	CourseID        uint   `gorm:"index;not null" json:"course_id"`
	Title           string `gorm:"size:200;not null" json:"title"`
	Content         string `gorm:"type:text" json:"content"`
	VideoURL        string `gorm:"size:500" json:"video_url"`
	DurationMinutes int    `json:"duration_minutes"`
	XPReward        int    `gorm:"not null" json:"xp_reward"`
	OrderIndex      int    `json:"order_index"`

	Status string `gorm:"-" json:"status,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}

type Enrollment struct {
	BaseModel
	CourseID    uint       `gorm:"uniqueIndex:idx_enrollment_user;not null" json:"course_id"`
	UserID      uint       `gorm:"uniqueIndex:idx_enrollment_user;index;not null" json:"user_id"`
	Status      string     `gorm:"size:20;not null" json:"status"`
	Progress    int        `gorm:"not null" json:"progress"`
	EnrolledAt  time.Time  `json:"enrolled_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Course      *Course    `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

type LessonProgress struct {
	BaseModel
	EnrollmentID uint       `gorm:"index;not null" json:"enrollment_id"`
	LessonID     uint       `gorm:"uniqueIndex:idx_progress_user_lesson;not null" json:"lesson_id"`
	UserID       uint       `gorm:"uniqueIndex:idx_progress_user_lesson;not null" json:"user_id"`
	Status       string     `gorm:"size:20;not null" json:"status"`
	CompletedAt  *time.Time `json:"completed_at"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}
