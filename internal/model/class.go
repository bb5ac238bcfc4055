package model

import "time"

const (
	ClassStatusActive   = "active"
	ClassStatusArchived = "archived"
	ClassStatusInactive = "inactive"

	MemberStatusActive  = "active"
	MemberStatusRemoved = "removed"
)

// swagger:model Class
type Class struct {
	BaseModel
	TeacherID    uint   `gorm:"index;not null" json:"teacher_id"`
	Name         string `gorm:"size:100;not null" json:"name"`
	Subject      string `gorm:"size:100" json:"subject"`
	GradeLevel   string `gorm:"size:20" json:"grade_level"`
	AcademicYear string `gorm:"size:20" json:"academic_year"`
	Description  string `gorm:"type:text" json:"description"`
	ClassCode    string `gorm:"size:10;uniqueIndex;not null" json:"class_code"`
	Status       string `gorm:"size:20;index;not null" json:"status"`
	Teacher      *User  `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`

	StudentCount int64 `gorm:"-" json:"student_count"`
}

func (Class) TableName() string {
	return "classes"
}

type ClassMember struct {
	BaseModel
	ClassID   uint      `gorm:"uniqueIndex:idx_class_member;not null" json:"class_id"`
	StudentID uint      `gorm:"uniqueIndex:idx_class_member;index;not null" json:"student_id"`
	Status    string    `gorm:"size:20;not null" json:"status"`
	JoinedAt  time.Time `json:"joined_at"`
	Student   *User     `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (ClassMember) TableName() string {
	return "class_members"
}
