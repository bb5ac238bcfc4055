package service

import (
	"context"
	"io"
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/testutil"
	"mindagrow_backend/internal/util"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestSubmitAwardsXPAndMission(t *testing.T) {
	s := newServices(t)
	guru := testutil.CreateGuru(t, s.db, "guru", "1234567890123456")
	siswa := testutil.CreateSiswa(t, s.db, "siswa", "4001")
	class := testutil.CreateClass(t, s.db, guru.ID, "SUB001", siswa.ID)
	a := testutil.CreateAssignment(t, s.db, class, 100, time.Now().Add(24*time.Hour))

	res, err := s.submissions.Submit(context.Background(), a.ID, siswa.ID, "  jawaban saya ", nil)
	require.NoError(t, err)
	assert.Equal(t, "jawaban saya", res.Submission.Content)
	assert.Equal(t, model.SubmissionStatusSubmitted, res.Submission.Status)
	require.NotNil(t, res.Gamification)
	require.Len(t, res.Gamification.CompletedMissions, 1)
	assert.Equal(t, "submit_one_assignment", res.Gamification.CompletedMissions[0].Code)
	assert.Equal(t, SubmissionXP+15, res.Gamification.XP.TotalXP)

	_, err = s.submissions.Submit(context.Background(), a.ID, siswa.ID, "lagi", nil)
	assert.ErrorIs(t, err, util.ErrAlreadySubmitted)
}

func TestSubmitValidation(t *testing.T) {
	s := newServices(t)
	guru := testutil.CreateGuru(t, s.db, "guru", "1234567890123456")
	member := testutil.CreateSiswa(t, s.db, "member", "4101")
	outsider := testutil.CreateSiswa(t, s.db, "outsider", "4102")
	class := testutil.CreateClass(t, s.db, guru.ID, "SUB002", member.ID)
	a := testutil.CreateAssignment(t, s.db, class, 100, time.Now().Add(time.Hour))

	_, err := s.submissions.Submit(context.Background(), a.ID, outsider.ID, "x", nil)
	assert.ErrorIs(t, err, util.ErrNotClassMember)

	_, err = s.submissions.Submit(context.Background(), a.ID, member.ID, "   ", nil)
	assert.ErrorIs(t, err, util.ErrEmptySubmission)

	_, err = s.submissions.Submit(context.Background(), 9999, member.ID, "x", nil)
	assert.ErrorIs(t, err, util.ErrAssignmentNotFound)

	require.NoError(t, s.db.Model(a).Update("status", model.AssignmentStatusClosed).Error)
	_, err = s.submissions.Submit(context.Background(), a.ID, member.ID, "x", nil)
	assert.ErrorIs(t, err, util.ErrAssignmentClosed)

	require.NoError(t, s.db.Model(a).Update("status", model.AssignmentStatusDeleted).Error)
	_, err = s.submissions.Submit(context.Background(), a.ID, member.ID, "x", nil)
	assert.ErrorIs(t, err, util.ErrAssignmentNotFound)
}

func TestLateSubmission(t *testing.T) {
	s := newServices(t)
	guru := testutil.CreateGuru(t, s.db, "guru", "1234567890123456")
	siswa := testutil.CreateSiswa(t, s.db, "siswa", "4201")
	class := testutil.CreateClass(t, s.db, guru.ID, "SUB003", siswa.ID)
	a := testutil.CreateAssignment(t, s.db, class, 100, time.Now().Add(-time.Hour))

	res, err := s.submissions.Submit(context.Background(), a.ID, siswa.ID, "terlambat", nil)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusLate, res.Submission.Status)
}

func TestSubmitWithFileAndDownload(t *testing.T) {
	s := newServices(t)
	guru := testutil.CreateGuru(t, s.db, "guru", "1234567890123456")
	siswa := testutil.CreateSiswa(t, s.db, "siswa", "4301")
	class := testutil.CreateClass(t, s.db, guru.ID, "SUB004", siswa.ID)
	a := testutil.CreateAssignment(t, s.db, class, 100, time.Now().Add(time.Hour))

	fh := testutil.FileHeader(t, "file", "tugas saya.txt", []byte("isi jawaban"))
	res, err := s.submissions.Submit(context.Background(), a.ID, siswa.ID, "", fh)
	require.NoError(t, err)
	assert.Equal(t, "tugas_saya.txt", res.Submission.FileName)
	assert.True(t, res.Submission.HasFile())

	dl, err := s.submissions.OpenFile(context.Background(), res.Submission.ID, testutil.Claims(guru))
	require.NoError(t, err)
	defer dl.Reader.Close()
	body, err := io.ReadAll(dl.Reader)
	require.NoError(t, err)
	assert.Equal(t, "isi jawaban", string(body))
	assert.Equal(t, "text/plain", dl.Mime)
}

func TestSubmitStoresFileUnderSniffedExtension(t *testing.T) {
	s := newServices(t)
	guru := testutil.CreateGuru(t, s.db, "guru", "1234567890123456")
	siswa := testutil.CreateSiswa(t, s.db, "siswa", "4302")
	class := testutil.CreateClass(t, s.db, guru.ID, "SUB014", siswa.ID)
	a := testutil.CreateAssignment(t, s.db, class, 100, time.Now().Add(time.Hour))

	fh := testutil.FileHeader(t, "file", "laporan.html", []byte("%PDF-1.4\n<html><script>alert(1)</script></html>"))
	res, err := s.submissions.Submit(context.Background(), a.ID, siswa.ID, "", fh)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", res.Submission.FileMime)
	assert.True(t, strings.HasSuffix(res.Submission.FilePath, ".pdf"), res.Submission.FilePath)

	dl, err := s.submissions.OpenFile(context.Background(), res.Submission.ID, testutil.Claims(siswa))
	require.NoError(t, err)
	defer dl.Reader.Close()
	assert.Equal(t, "application/pdf", dl.Mime)
}

func TestGradeSubmission(t *testing.T) {
	s := newServices(t)
	guru := testutil.CreateGuru(t, s.db, "guru", "1234567890123456")
	other := testutil.CreateGuru(t, s.db, "other", "6543210987654321")
	siswa := testutil.CreateSiswa(t, s.db, "siswa", "4401")
	class := testutil.CreateClass(t, s.db, guru.ID, "SUB005", siswa.ID)
	a := testutil.CreateAssignment(t, s.db, class, 80, time.Now().Add(time.Hour))

	res, err := s.submissions.Submit(context.Background(), a.ID, siswa.ID, "jawaban", nil)
	require.NoError(t, err)
	id := res.Submission.ID

	_, err = s.submissions.Grade(id, testutil.Claims(other), GradeInput{Score: intPtr(50)}, client)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = s.submissions.Grade(id, testutil.Claims(guru), GradeInput{Score: intPtr(81)}, client)
	assert.ErrorIs(t, err, util.ErrInvalidScore)

	_, err = s.submissions.Grade(id, testutil.Claims(guru), GradeInput{Score: intPtr(-1)}, client)
	assert.ErrorIs(t, err, util.ErrInvalidScore)

	graded, err := s.submissions.Grade(id, testutil.Claims(guru), GradeInput{Score: intPtr(75), Feedback: " bagus "}, client)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusGraded, graded.Status)
	assert.Equal(t, 75, *graded.Score)
	assert.Equal(t, "bagus", graded.Feedback)
	require.NotNil(t, graded.GradedBy)
	assert.Equal(t, guru.ID, *graded.GradedBy)

	regraded, err := s.submissions.Grade(id, testutil.Claims(guru), GradeInput{Score: intPtr(80)}, client)
	require.NoError(t, err)
	assert.Equal(t, 80, *regraded.Score)

	mine, err := s.submissions.Get(id, testutil.Claims(siswa))
	require.NoError(t, err)
	assert.Equal(t, 80, *mine.Score)

	_, err = s.submissions.Get(id, testutil.Claims(other))
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestGradeFollowsClassTeacherAndAssignmentStatus(t *testing.T) {
	s := newServices(t)
	author := testutil.CreateGuru(t, s.db, "author", "1234567890123456")
	successor := testutil.CreateGuru(t, s.db, "successor", "6543210987654321")
	siswa := testutil.CreateSiswa(t, s.db, "siswa", "4402")
	class := testutil.CreateClass(t, s.db, author.ID, "SUB015", siswa.ID)
	a := testutil.CreateAssignment(t, s.db, class, 100, time.Now().Add(time.Hour))

	res, err := s.submissions.Submit(context.Background(), a.ID, siswa.ID, "jawaban", nil)
	require.NoError(t, err)
	id := res.Submission.ID

	require.NoError(t, s.db.Model(&model.Class{}).Where("id = ?", class.ID).Update("teacher_id", successor.ID).Error)

	_, err = s.submissions.Grade(id, testutil.Claims(author), GradeInput{Score: intPtr(70)}, client)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = s.submissions.Grade(id, testutil.Claims(successor), GradeInput{Score: intPtr(70)}, client)
	require.NoError(t, err)

	require.NoError(t, s.db.Model(&model.Assignment{}).Where("id = ?", a.ID).Update("status", model.AssignmentStatusDeleted).Error)
	_, err = s.submissions.Grade(id, testutil.Claims(successor), GradeInput{Score: intPtr(90)}, client)
	assert.ErrorIs(t, err, util.ErrAssignmentNotFound)
}

func TestParentSeesChildSubmission(t *testing.T) {
	s := newServices(t)
	guru := testutil.CreateGuru(t, s.db, "guru", "1234567890123456")
	siswa := testutil.CreateSiswa(t, s.db, "siswa", "4501")
	parent := testutil.CreateOrangtua(t, s.db, "parent", "3201010101010001")
	stranger := testutil.CreateOrangtua(t, s.db, "stranger", "3201010101010002")
	class := testutil.CreateClass(t, s.db, guru.ID, "SUB006", siswa.ID)
	a := testutil.CreateAssignment(t, s.db, class, 100, time.Now().Add(time.Hour))

	_, err := s.users.LinkChild(parent.ID, "4501")
	require.NoError(t, err)

	res, err := s.submissions.Submit(context.Background(), a.ID, siswa.ID, "jawaban", nil)
	require.NoError(t, err)

	_, err = s.submissions.Get(res.Submission.ID, testutil.Claims(parent))
	assert.NoError(t, err)
	_, err = s.submissions.Get(res.Submission.ID, testutil.Claims(stranger))
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}
