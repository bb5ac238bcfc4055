package service

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/testutil"
	"mindagrow_backend/internal/util"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeSessions(t *testing.T, s *services, userID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(&model.UserSession{}).Where("user_id = ? AND is_active = ?", userID, true).Count(&n).Error)
	return n
}

func TestSetStatusDeactivationRevokesSessions(t *testing.T) {
	s := newServices(t)
	auth := newAuthService(t, s.db)
	admin := testutil.CreateUser(t, s.db, model.RoleAdmin, "admin")
	siswa := testutil.CreateSiswa(t, s.db, "siswa", "8101")

	for i := 0; i < 2; i++ {
		_, err := auth.Login(LoginInput{Identifier: "8101", Password: testutil.Password}, client)
		require.NoError(t, err)
	}
	require.EqualValues(t, 2, activeSessions(t, s, siswa.ID))

	err := s.users.SetStatus(admin.ID, admin.ID, model.UserStatusInactive, client)
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	require.NoError(t, s.users.SetStatus(admin.ID, siswa.ID, model.UserStatusInactive, client))
	assert.Zero(t, activeSessions(t, s, siswa.ID))

	_, err = auth.Login(LoginInput{Identifier: "8101", Password: testutil.Password}, client)
	assert.ErrorIs(t, err, util.ErrAccountInactive)

	var logs []model.AuditLog
	require.NoError(t, s.db.Where("action = ?", AuditStatusChange).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, admin.ID, *logs[0].UserID)

	require.NoError(t, s.users.SetStatus(admin.ID, siswa.ID, model.UserStatusActive, client))
	_, err = auth.Login(LoginInput{Identifier: "8101", Password: testutil.Password}, client)
	assert.NoError(t, err)
}

func TestResetPasswordIssuesTemporaryPassword(t *testing.T) {
	s := newServices(t)
	auth := newAuthService(t, s.db)
	admin := testutil.CreateUser(t, s.db, model.RoleAdmin, "admin")
	guru := testutil.CreateGuru(t, s.db, "guru", "1234567890123456")

	_, err := auth.Login(LoginInput{Identifier: "1234567890123456", Password: testutil.Password}, client)
	require.NoError(t, err)

	temp, err := s.users.ResetPassword(admin.ID, guru.ID, client)
	require.NoError(t, err)
	assert.Len(t, temp, 10)
	assert.Zero(t, activeSessions(t, s, guru.ID))

	_, err = auth.Login(LoginInput{Identifier: "1234567890123456", Password: testutil.Password}, client)
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, err = auth.Login(LoginInput{Identifier: "1234567890123456", Password: temp}, client)
	assert.NoError(t, err)

	_, err = s.users.ResetPassword(admin.ID, 9999, client)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func wideImage(t *testing.T, w, h int) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestUpdateAvatarFitsAndReplaces(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	siswa := testutil.CreateSiswa(t, s.db, "siswa", "8201")

	user, err := s.users.UpdateAvatar(ctx, siswa.ID, testutil.FileHeader(t, "avatar", "foto.png", wideImage(t, 600, 300)))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(user.Avatar, "/uploads/avatars/"), user.Avatar)
	first := strings.TrimPrefix(user.Avatar, "/uploads/")

	f, err := s.users.Upload.Storage.Open(ctx, first)
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 256, cfg.Width)
	assert.Equal(t, 128, cfg.Height)

	user, err = s.users.UpdateAvatar(ctx, siswa.ID, testutil.FileHeader(t, "avatar", "kecil.png", wideImage(t, 64, 64)))
	require.NoError(t, err)
	assert.NotEqual(t, "/uploads/"+first, user.Avatar)

	_, err = s.users.Upload.Storage.Open(ctx, first)
	assert.Error(t, err)

	_, err = s.users.UpdateAvatar(ctx, siswa.ID, testutil.FileHeader(t, "avatar", "dok.txt", []byte("bukan gambar")))
	assert.ErrorIs(t, err, util.ErrFileTypeForbidden)
}
