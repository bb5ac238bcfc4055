package service

import (
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/testutil"
	"mindagrow_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateClassGeneratesCode(t *testing.T) {
	s := newServices(t)
	guru := testutil.CreateGuru(t, s.db, "guru", "1234567890123456")

	class, err := s.classes.Create(guru.ID, CreateClassInput{Name: "  Matematika 7A ", Subject: "Matematika"})
	require.NoError(t, err)
	assert.Equal(t, "Matematika 7A", class.Name)
	assert.Len(t, class.ClassCode, 6)
	assert.Equal(t, model.ClassStatusActive, class.Status)

	other, err := s.classes.Create(guru.ID, CreateClassInput{Name: "IPA"})
	require.NoError(t, err)
	assert.NotEqual(t, class.ClassCode, other.ClassCode)
}

func TestJoinClassAndReactivate(t *testing.T) {
	s := newServices(t)
	guru := testutil.CreateGuru(t, s.db, "guru", "1234567890123456")
	siswa := testutil.CreateSiswa(t, s.db, "siswa", "2001")
	class := testutil.CreateClass(t, s.db, guru.ID, "ABC123")

	_, err := s.classes.Join(siswa.ID, "zzz999")
	assert.ErrorIs(t, err, util.ErrClassNotFound)

	joined, err := s.classes.Join(siswa.ID, "abc123")
	require.NoError(t, err)
	assert.Equal(t, class.ID, joined.ID)

	_, err = s.classes.Join(siswa.ID, "ABC123")
	assert.ErrorIs(t, err, util.ErrAlreadyMember)

	require.NoError(t, s.classes.RemoveStudent(class.ID, testutil.Claims(guru), siswa.ID))
	ok, err := s.classes.ClassRepo.IsActiveMember(class.ID, siswa.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.classes.Join(siswa.ID, "ABC123")
	require.NoError(t, err)
	ok, _ = s.classes.ClassRepo.IsActiveMember(class.ID, siswa.ID)
	assert.True(t, ok)

	var members int64
	s.db.Model(&model.ClassMember{}).Where("class_id = ?", class.ID).Count(&members)
	assert.Equal(t, int64(1), members)
}

func TestClassOwnership(t *testing.T) {
	s := newServices(t)
	owner := testutil.CreateGuru(t, s.db, "owner", "1111111111111111")
	stranger := testutil.CreateGuru(t, s.db, "stranger", "2222222222222222")
	siswa := testutil.CreateSiswa(t, s.db, "siswa", "3001")
	outsider := testutil.CreateSiswa(t, s.db, "outsider", "3002")
	class := testutil.CreateClass(t, s.db, owner.ID, "OWN001", siswa.ID)

	_, err := s.classes.Roster(class.ID, testutil.Claims(stranger))
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = s.classes.AddStudent(class.ID, testutil.Claims(stranger), "3002")
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	roster, err := s.classes.Roster(class.ID, testutil.Claims(owner))
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "3001", roster[0].NIS)

	_, err = s.classes.Get(class.ID, testutil.Claims(outsider))
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	got, err := s.classes.Get(class.ID, testutil.Claims(siswa))
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.StudentCount)

	_, err = s.classes.AddStudent(class.ID, testutil.Claims(owner), "9999")
	assert.ErrorIs(t, err, util.ErrStudentNotFound)

	_, err = s.classes.AddStudent(class.ID, testutil.Claims(owner), "3002")
	require.NoError(t, err)
	roster, _ = s.classes.Roster(class.ID, testutil.Claims(owner))
	assert.Len(t, roster, 2)
}

func TestDeleteClassHidesIt(t *testing.T) {
	s := newServices(t)
	guru := testutil.CreateGuru(t, s.db, "guru", "1234567890123456")
	class := testutil.CreateClass(t, s.db, guru.ID, "DEL001")

	require.NoError(t, s.classes.Delete(class.ID, testutil.Claims(guru), client))

	_, err := s.classes.Get(class.ID, testutil.Claims(guru))
	assert.ErrorIs(t, err, util.ErrClassNotFound)

	list, err := s.classes.List(testutil.Claims(guru))
	require.NoError(t, err)
	assert.Empty(t, list)

	var logs int64
	s.db.Model(&model.AuditLog{}).Where("action = ?", AuditClassDelete).Count(&logs)
	assert.Equal(t, int64(1), logs)
}
