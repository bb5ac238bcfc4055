package service

import (
	"context"
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/testutil"
	"mindagrow_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseDueDate(t *testing.T) {
	got, err := ParseDueDate("2024-05-01T10:00:00+07:00")
	require.NoError(t, err)
	assert.Equal(t, 3, got.UTC().Hour())

	endOfDay, err := ParseDueDate("2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, 23, endOfDay.Hour())
	assert.Equal(t, 59, endOfDay.Minute())

	_, err = ParseDueDate("besok")
	assert.ErrorIs(t, err, util.ErrInvalidInput)
}

func TestCreateAssignmentRequiresOwnClass(t *testing.T) {
	s := newServices(t)
	owner := testutil.CreateGuru(t, s.db, "owner", "1111111111111111")
	other := testutil.CreateGuru(t, s.db, "other", "2222222222222222")
	class := testutil.CreateClass(t, s.db, owner.ID, "ASG001")
	ctx := context.Background()
	in := CreateAssignmentInput{ClassID: class.ID, Title: "PR Bab 1", DueDate: "2030-01-01"}

	_, err := s.assignments.Create(ctx, testutil.Claims(other), in, nil)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	fh := testutil.FileHeader(t, "file", "soal.txt", []byte("kerjakan nomor 1 sampai 10"))
	a, err := s.assignments.Create(ctx, testutil.Claims(owner), in, fh)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultAssignmentPoints, a.Points)
	assert.True(t, a.HasFile())

	exe := testutil.FileHeader(t, "file", "virus.exe", []byte("MZ\x90\x00\x03\x00\x00\x00\x04\x00"))
	_, err = s.assignments.Create(ctx, testutil.Claims(owner), in, exe)
	assert.ErrorIs(t, err, util.ErrFileTypeForbidden)
}

func TestListAssignmentsByRole(t *testing.T) {
	s := newServices(t)
	guru := testutil.CreateGuru(t, s.db, "guru", "1234567890123456")
	member := testutil.CreateSiswa(t, s.db, "member", "7001")
	outsider := testutil.CreateSiswa(t, s.db, "outsider", "7002")
	class := testutil.CreateClass(t, s.db, guru.ID, "ASG002", member.ID)
	a := testutil.CreateAssignment(t, s.db, class, 100, time.Now().Add(time.Hour))

	_, err := s.submissions.Submit(context.Background(), a.ID, member.ID, "jawaban", nil)
	require.NoError(t, err)

	forGuru, err := s.assignments.List(testutil.Claims(guru), 0, "")
	require.NoError(t, err)
	require.Len(t, forGuru, 1)
	assert.Equal(t, int64(1), forGuru[0].SubmissionCount)

	forMember, err := s.assignments.List(testutil.Claims(member), class.ID, "")
	require.NoError(t, err)
	require.Len(t, forMember, 1)
	require.NotNil(t, forMember[0].MySubmission)

	forOutsider, err := s.assignments.List(testutil.Claims(outsider), 0, "")
	require.NoError(t, err)
	assert.Empty(t, forOutsider)

	_, err = s.assignments.List(testutil.Claims(outsider), class.ID, "")
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = s.assignments.Get(a.ID, testutil.Claims(outsider))
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestExportGradesWorkbook(t *testing.T) {
	s := newServices(t)
	guru := testutil.CreateGuru(t, s.db, "guru", "1234567890123456")
	done := testutil.CreateSiswa(t, s.db, "Ani", "8001")
	missing := testutil.CreateSiswa(t, s.db, "Budi", "8002")
	class := testutil.CreateClass(t, s.db, guru.ID, "ASG003", done.ID, missing.ID)
	a := testutil.CreateAssignment(t, s.db, class, 100, time.Now().Add(time.Hour))

	res, err := s.submissions.Submit(context.Background(), a.ID, done.ID, "jawaban", nil)
	require.NoError(t, err)
	_, err = s.submissions.Grade(res.Submission.ID, testutil.Claims(guru), GradeInput{Score: intPtr(88)}, client)
	require.NoError(t, err)

	buf, name, err := s.assignments.ExportGrades(a.ID, testutil.Claims(guru))
	require.NoError(t, err)
	assert.Contains(t, name, ".xlsx")

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Nilai")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, a.Title, rows[0][0])
	assert.Equal(t, "NIS", rows[3][1])

	byNIS := map[string][]string{}
	for _, row := range rows[4:] {
		byNIS[row[1]] = row
	}
	assert.Equal(t, "Ani", byNIS["8001"][2])
	assert.Equal(t, model.SubmissionStatusGraded, byNIS["8001"][3])
	assert.Equal(t, "88", byNIS["8001"][5])
	assert.Equal(t, "belum mengumpulkan", byNIS["8002"][3])

	_, _, err = s.assignments.ExportGrades(a.ID, testutil.Claims(done))
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}
