package model

const (
	MaterialTypeDocument = "document"
	MaterialTypeVideo    = "video"
	MaterialTypeLink     = "link"
	MaterialTypeImage    = "image"

	MaterialStatusActive  = "active"
	MaterialStatusDeleted = "deleted"
)

// swagger:model Material
type Material struct {
	BaseModel
	ClassID         uint    `gorm:"index;not null" json:"class_id"`
	TeacherID       uint    `gorm:"index;not null" json:"teacher_id"`
	Title           string  `gorm:"size:200;not null" json:"title"`
	Description     string  `gorm:"type:text" json:"description"`
	Type            string  `gorm:"size:20;not null" json:"type"`
	FilePath        string  `gorm:"size:255" json:"-"`
	FileName        string  `gorm:"size:255" json:"file_name"`
	FileMime        string  `gorm:"size:100" json:"file_mime"`
	FileSize        int64   `json:"file_size"`
	LinkURL         string  `gorm:"size:500" json:"link_url"`
	DurationSeconds float64 `json:"duration_seconds"`
	Status          string  `gorm:"size:20;index;not null" json:"status"`
}

func (Material) TableName() string {
	return "materials"
}

func (m *Material) HasFile() bool {
	return m.FilePath != ""
}
