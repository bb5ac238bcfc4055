package model

import (
	"time"
)

type UserRole string

const (
	RoleSiswa    UserRole = "siswa"
	RoleGuru     UserRole = "guru"
	RoleOrangtua UserRole = "orangtua"
	RoleAdmin    UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleSiswa, RoleGuru, RoleOrangtua, RoleAdmin:
		return true
	}
	return false
}

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// swagger:model User
type User struct {
	BaseModel
	Name      string     `gorm:"size:100;not null" json:"name"`
	Email     *string    `gorm:"size:100;uniqueIndex" json:"email"`
	Password  string     `gorm:"size:100;not null" json:"-"`
	Role      UserRole   `gorm:"size:20;not null;index" json:"role"`
	Status    string     `gorm:"size:20;default:active;index" json:"status"`
	Phone     string     `gorm:"size:20" json:"phone"`
	Avatar    string     `gorm:"size:255" json:"avatar"`
	LastLogin *time.Time `json:"last_login"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsActive() bool {
	return u.Status == "" || u.Status == UserStatusActive
}

func (u *User) EmailValue() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// Siswa is the student profile keyed by NIS.
type Siswa struct {
	BaseModel
	UserID     uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	NIS        string `gorm:"column:nis;size:20;uniqueIndex;not null" json:"nis"`
	Grade      string `gorm:"size:20" json:"grade"`
	School     string `gorm:"size:150" json:"school"`
	OrangtuaID *uint  `gorm:"index" json:"orangtua_id"` // parent user id
	User       *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Siswa) TableName() string {
	return "siswa"
}

// Guru is the teacher profile keyed by NUPTK.
type Guru struct {
	BaseModel
	UserID  uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	NUPTK   string `gorm:"column:nuptk;size:20;uniqueIndex;not null" json:"nuptk"`
	Subject string `gorm:"size:100" json:"subject"`
	School  string `gorm:"size:150" json:"school"`
	User    *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Guru) TableName() string {
	return "guru"
}

// Orangtua is the parent profile keyed by NIK.
type Orangtua struct {
	BaseModel
	UserID     uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	NIK        string `gorm:"column:nik;size:20;uniqueIndex;not null" json:"nik"`
	Occupation string `gorm:"size:100" json:"occupation"`
	User       *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Orangtua) TableName() string {
	return "orangtua"
}
