package model

import "time"

const (
	AssignmentStatusActive  = "active"
	AssignmentStatusClosed  = "closed"
	AssignmentStatusDeleted = "deleted"

	DefaultAssignmentPoints = 100
)

// swagger:model Assignment
type Assignment struct {
	BaseModel
	ClassID     uint      `gorm:"index;not null" json:"class_id"`
	TeacherID   uint      `gorm:"index;not null" json:"teacher_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	DueDate     time.Time `gorm:"index" json:"due_date"`
	Points      int       `gorm:"not null" json:"points"`
	FilePath    string    `gorm:"size:255" json:"-"`
	FileName    string    `gorm:"size:255" json:"file_name"`
	FileMime    string    `gorm:"size:100" json:"file_mime"`
	Status      string    `gorm:"size:20;index;not null" json:"status"`
	Class       *Class    `gorm:"foreignKey:ClassID" json:"class,omitempty"`

	SubmissionCount int64       `gorm:"-" json:"submission_count,omitempty"`
	MySubmission    *Submission `gorm:"-" json:"my_submission,omitempty"`
}

func (Assignment) TableName() string {
	return "assignments"
}

func (a *Assignment) HasFile() bool {
	return a.FilePath != ""
}

const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusLate      = "late"
	SubmissionStatusGraded    = "graded"
	SubmissionStatusReturned  = "returned"
)

// swagger:model Submission
type Submission struct {
	BaseModel
	AssignmentID uint        `gorm:"uniqueIndex:idx_submission_student;not null" json:"assignment_id"`
	StudentID    uint        `gorm:"uniqueIndex:idx_submission_student;index;not null" json:"student_id"`
	Content      string      `gorm:"type:text" json:"content"`
	FilePath     string      `gorm:"size:255" json:"-"`
	FileName     string      `gorm:"size:255" json:"file_name"`
	FileMime     string      `gorm:"size:100" json:"file_mime"`
	Status       string      `gorm:"size:20;index;not null" json:"status"`
	Score        *int        `json:"score"`
	Feedback     string      `gorm:"type:text" json:"feedback"`
	SubmittedAt  time.Time   `json:"submitted_at"`
	GradedAt     *time.Time  `json:"graded_at"`
	GradedBy     *uint       `json:"graded_by"`
	Assignment   *Assignment `gorm:"foreignKey:AssignmentID" json:"assignment,omitempty"`
	Student      *User       `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

func (s *Submission) HasFile() bool {
	return s.FilePath != ""
}
