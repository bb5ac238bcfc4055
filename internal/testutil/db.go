// Package testutil prepares an in-memory database migrated with the
// production models, plus fixtures shared by package tests.
package testutil

import (
	"fmt"
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/util"
	"mindagrow_backend/pkg/database"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const Password = "rahasia123"

// PrepareDB opens a fresh in-memory SQLite database with every table and
// the default seed rows. One connection keeps the memory database alive.
func PrepareDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

var passwordHash string

func hashed(t *testing.T) string {
	if passwordHash == "" {
		h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
		require.NoError(t, err)
		passwordHash = string(h)
	}
	return passwordHash
}

// CreateUser inserts an active user with level and streak rows.
func CreateUser(t *testing.T, db *gorm.DB, role model.UserRole, name string) *model.User {
	t.Helper()
	email := fmt.Sprintf("%s.%d@example.com", name, time.Now().UnixNano())
	user := &model.User{
		Name:     name,
		Email:    &email,
		Password: hashed(t),
		Role:     role,
		Status:   model.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&model.UserLevel{UserID: user.ID, Level: 1}).Error)
	require.NoError(t, db.Create(&model.UserStreak{UserID: user.ID}).Error)
	return user
}

func CreateSiswa(t *testing.T, db *gorm.DB, name, nis string) *model.User {
	t.Helper()
	user := CreateUser(t, db, model.RoleSiswa, name)
	require.NoError(t, db.Create(&model.Siswa{UserID: user.ID, NIS: nis, Grade: "7"}).Error)
	return user
}

func CreateGuru(t *testing.T, db *gorm.DB, name, nuptk string) *model.User {
	t.Helper()
	user := CreateUser(t, db, model.RoleGuru, name)
	require.NoError(t, db.Create(&model.Guru{UserID: user.ID, NUPTK: nuptk, Subject: "Matematika"}).Error)
	return user
}

func CreateOrangtua(t *testing.T, db *gorm.DB, name, nik string) *model.User {
	t.Helper()
	user := CreateUser(t, db, model.RoleOrangtua, name)
	require.NoError(t, db.Create(&model.Orangtua{UserID: user.ID, NIK: nik}).Error)
	return user
}

// CreateClass inserts an active class owned by teacherID with the given members.
func CreateClass(t *testing.T, db *gorm.DB, teacherID uint, code string, studentIDs ...uint) *model.Class {
	t.Helper()
	class := &model.Class{
		TeacherID: teacherID,
		Name:      "Kelas " + code,
		ClassCode: code,
		Status:    model.ClassStatusActive,
	}
	require.NoError(t, db.Create(class).Error)
	for _, id := range studentIDs {
		require.NoError(t, db.Create(&model.ClassMember{
			ClassID:   class.ID,
			StudentID: id,
			Status:    model.MemberStatusActive,
			JoinedAt:  time.Now(),
		}).Error)
	}
	return class
}

func CreateAssignment(t *testing.T, db *gorm.DB, class *model.Class, points int, due time.Time) *model.Assignment {
	t.Helper()
	a := &model.Assignment{
		ClassID:   class.ID,
		TeacherID: class.TeacherID,
		Title:     "Tugas " + class.ClassCode,
		DueDate:   due,
		Points:    points,
		Status:    model.AssignmentStatusActive,
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

func Claims(user *model.User) *util.Claims {
	return &util.Claims{UserID: user.ID, Role: user.Role, Email: user.EmailValue()}
}
