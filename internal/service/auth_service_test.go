package service

import (
	"mindagrow_backend/internal/config"
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/repository"
	"mindagrow_backend/internal/testutil"
	"mindagrow_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-with-enough-characters-123"

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Mode: "test"},
		JWT:     config.JWTConfig{Secret: testSecret, ExpireTime: time.Hour},
		Storage: config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		Upload: config.UploadConfig{
			MaxAssignmentMB: 1,
			MaxMaterialMB:   1,
			MaxSubmissionMB: 1,
			MaxAvatarMB:     1,
		},
	}
}

func newAuthService(t *testing.T, db *gorm.DB) *AuthService {
	gamification := NewGamificationService(repository.NewGamificationRepository(db), nil)
	return NewAuthService(
		db,
		repository.NewUserRepository(db),
		repository.NewProfileRepository(db),
		repository.NewSessionRepository(db),
		gamification,
		NewAuditService(repository.NewAuditRepository(db)),
		testConfig(t),
	)
}

var client = ClientInfo{IP: "127.0.0.1", UserAgent: "go-test"}

func TestRegisterCreatesProfileAndGamificationRows(t *testing.T) {
	db := testutil.PrepareDB(t)
	s := newAuthService(t, db)

	user, err := s.Register(RegisterInput{
		Role:     "siswa",
		Name:     "Budi Santoso",
		Email:    "Budi@Example.com",
		Password: "rahasia",
		NIS:      "12345",
		Grade:    "5",
	}, client)
	require.NoError(t, err)
	assert.Equal(t, "budi@example.com", user.EmailValue())

	var siswa model.Siswa
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&siswa).Error)
	assert.Equal(t, "12345", siswa.NIS)

	var level model.UserLevel
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&level).Error)
	assert.Equal(t, 1, level.Level)

	var streaks int64
	db.Model(&model.UserStreak{}).Where("user_id = ?", user.ID).Count(&streaks)
	assert.Equal(t, int64(1), streaks)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	db := testutil.PrepareDB(t)
	s := newAuthService(t, db)

	_, err := s.Register(RegisterInput{Role: "siswa", Name: "A", Email: "a@example.com", Password: "rahasia", NIS: "5555"}, client)
	require.NoError(t, err)

	_, err = s.Register(RegisterInput{Role: "siswa", Name: "B", Password: "rahasia", NIS: "5555"}, client)
	assert.ErrorIs(t, err, util.ErrDuplicateIdentifier)

	_, err = s.Register(RegisterInput{Role: "siswa", Name: "C", Email: "A@example.com", Password: "rahasia", NIS: "6666"}, client)
	assert.ErrorIs(t, err, util.ErrEmailRegistered)

	var users int64
	db.Model(&model.User{}).Count(&users)
	assert.Equal(t, int64(1), users)
}

func TestRegisterParentLinksChild(t *testing.T) {
	db := testutil.PrepareDB(t)
	s := newAuthService(t, db)
	child := testutil.CreateSiswa(t, db, "anak", "7777")

	_, err := s.Register(RegisterInput{Role: "orangtua", Name: "P", Password: "rahasia", NIK: "3201010101010001", ChildNIS: "0000"}, client)
	assert.ErrorIs(t, err, util.ErrChildNotFound)

	parent, err := s.Register(RegisterInput{Role: "orangtua", Name: "P", Password: "rahasia", NIK: "3201010101010001", ChildNIS: "7777"}, client)
	require.NoError(t, err)

	var siswa model.Siswa
	require.NoError(t, db.Where("user_id = ?", child.ID).First(&siswa).Error)
	require.NotNil(t, siswa.OrangtuaID)
	assert.Equal(t, parent.ID, *siswa.OrangtuaID)
}

func TestRegisterParentCannotTakeOverLinkedChild(t *testing.T) {
	db := testutil.PrepareDB(t)
	s := newAuthService(t, db)
	child := testutil.CreateSiswa(t, db, "anak", "5001")

	first, err := s.Register(RegisterInput{Role: "orangtua", Name: "Ibu", Password: "rahasia", NIK: "1111111111111111", ChildNIS: "5001"}, client)
	require.NoError(t, err)

	_, err = s.Register(RegisterInput{Role: "orangtua", Name: "Orang Lain", Password: "rahasia", NIK: "2222222222222222", ChildNIS: "5001"}, client)
	assert.ErrorIs(t, err, util.ErrChildLinked)

	var siswa model.Siswa
	require.NoError(t, db.Where("user_id = ?", child.ID).First(&siswa).Error)
	require.NotNil(t, siswa.OrangtuaID)
	assert.Equal(t, first.ID, *siswa.OrangtuaID)

	var count int64
	db.Model(&model.Orangtua{}).Where("nik = ?", "2222222222222222").Count(&count)
	assert.Zero(t, count)
}

func TestRegisterRequiresRoleIdentifier(t *testing.T) {
	db := testutil.PrepareDB(t)
	s := newAuthService(t, db)

	_, err := s.Register(RegisterInput{Role: "guru", Name: "G", Password: "rahasia"}, client)
	assert.ErrorIs(t, err, util.ErrMissingIdentifier)
}

func TestLoginByIdentifier(t *testing.T) {
	db := testutil.PrepareDB(t)
	s := newAuthService(t, db)
	student := testutil.CreateSiswa(t, db, "citra", "8888")

	res, err := s.Login(LoginInput{Identifier: "8888", Password: testutil.Password}, client)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, student.ID, res.User.ID)
	require.NotNil(t, res.User.Siswa)
	require.NotNil(t, res.Activity)
	assert.Equal(t, 1, res.Activity.Streak.CurrentStreak)

	claims, err := util.ParseJWT(res.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, student.ID, claims.UserID)

	var session model.UserSession
	require.NoError(t, db.First(&session, "id = ?", claims.SessionID()).Error)
	assert.True(t, session.IsActive)

	_, err = s.Login(LoginInput{Identifier: student.EmailValue(), Password: testutil.Password}, client)
	assert.NoError(t, err)

	_, err = s.Login(LoginInput{Identifier: "8888", Password: testutil.Password, Role: "guru"}, client)
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}

func TestLoginFailures(t *testing.T) {
	db := testutil.PrepareDB(t)
	s := newAuthService(t, db)
	student := testutil.CreateSiswa(t, db, "dewi", "9999")

	_, err := s.Login(LoginInput{Identifier: "9999", Password: "salah"}, client)
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, err = s.Login(LoginInput{Identifier: "unknown@example.com", Password: "x"}, client)
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	require.NoError(t, db.Model(student).Update("status", model.UserStatusInactive).Error)
	_, err = s.Login(LoginInput{Identifier: "9999", Password: testutil.Password}, client)
	assert.ErrorIs(t, err, util.ErrAccountInactive)
}

func TestLogoutAndChangePasswordRevokeSessions(t *testing.T) {
	db := testutil.PrepareDB(t)
	s := newAuthService(t, db)
	testutil.CreateSiswa(t, db, "eko", "4321")

	first, err := s.Login(LoginInput{Identifier: "4321", Password: testutil.Password}, client)
	require.NoError(t, err)
	second, err := s.Login(LoginInput{Identifier: "4321", Password: testutil.Password}, client)
	require.NoError(t, err)

	firstClaims, _ := util.ParseJWT(first.Token, testSecret)
	secondClaims, _ := util.ParseJWT(second.Token, testSecret)

	err = s.ChangePassword(secondClaims, ChangePasswordInput{OldPassword: "wrong", NewPassword: "baru123"}, client)
	assert.ErrorIs(t, err, util.ErrWrongPassword)

	require.NoError(t, s.ChangePassword(secondClaims, ChangePasswordInput{OldPassword: testutil.Password, NewPassword: "baru123"}, client))

	sessions := repository.NewSessionRepository(db)
	_, err = sessions.FindActive(firstClaims.SessionID(), time.Now())
	assert.Error(t, err, "other sessions are revoked")
	_, err = sessions.FindActive(secondClaims.SessionID(), time.Now())
	assert.NoError(t, err, "current session survives")

	require.NoError(t, s.Logout(secondClaims, client))
	_, err = sessions.FindActive(secondClaims.SessionID(), time.Now())
	assert.Error(t, err)

	_, err = s.Login(LoginInput{Identifier: "4321", Password: "baru123"}, client)
	assert.NoError(t, err)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	db := testutil.PrepareDB(t)
	s := newAuthService(t, db)

	admin, created, err := s.EnsureAdmin("Admin", "admin@sekolah.id", "rahasia")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	again, created, err := s.EnsureAdmin("Admin", "ADMIN@sekolah.id", "rahasia")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, admin.ID, again.ID)
}
