package service

import (
	"context"
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivitySeriesBuckets(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	points := activitySeries(now,
		[]time.Time{now, now.AddDate(0, 0, -6), now.AddDate(0, 0, -7)},
		[]time.Time{now.Add(-time.Hour)},
		[]time.Time{now.AddDate(0, 0, -1), now.AddDate(0, 0, -1).Add(2 * time.Hour)},
	)

	require.Len(t, points, 7)
	assert.Equal(t, "2026-03-04", points[0].Date)
	assert.Equal(t, "2026-03-10", points[6].Date)
	assert.Equal(t, 1, points[0].Submissions)
	assert.Equal(t, 1, points[6].Submissions)
	assert.Equal(t, 1, points[6].Lessons)
	assert.Equal(t, 2, points[5].Games)

	total := 0
	for _, p := range points {
		total += p.Submissions
	}
	assert.Equal(t, 2, total)
}

func TestSiswaDashboard(t *testing.T) {
	s := newServices(t)
	guru := testutil.CreateGuru(t, s.db, "guru", "1234567890123456")
	siswa := testutil.CreateSiswa(t, s.db, "siswa", "9101")
	class := testutil.CreateClass(t, s.db, guru.ID, "DSB001", siswa.ID)
	done := testutil.CreateAssignment(t, s.db, class, 100, time.Now().Add(time.Hour))
	testutil.CreateAssignment(t, s.db, class, 100, time.Now().Add(2*time.Hour))

	_, err := s.submissions.Submit(context.Background(), done.ID, siswa.ID, "jawaban", nil)
	require.NoError(t, err)

	game, err := s.games.Create(GameInput{Title: "Kuis", GameType: "quiz"})
	require.NoError(t, err)
	_, err = s.games.Play(game.ID, siswa.ID, PlayInput{Score: intPtr(50)})
	require.NoError(t, err)

	d, err := s.dashboard.Siswa(siswa.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, d.ClassCount)
	assert.EqualValues(t, 1, d.PendingCount)
	require.Len(t, d.PendingAssignments, 1)
	assert.NotEqual(t, done.ID, d.PendingAssignments[0].ID)
	assert.Empty(t, d.RecentGrades)
	require.NotNil(t, d.Gamification)
	assert.Equal(t, SubmissionXP+15, d.Gamification.TotalXP)

	require.Len(t, d.Activity, 7)
	assert.Equal(t, time.Now().Format("2006-01-02"), d.Activity[6].Date)
	var submissions, games int
	for _, p := range d.Activity {
		submissions += p.Submissions
		games += p.Games
	}
	assert.Equal(t, 1, submissions)
	assert.Equal(t, 1, games)
}

func TestOrangtuaDashboardCoversLinkedChildrenOnly(t *testing.T) {
	s := newServices(t)
	guru := testutil.CreateGuru(t, s.db, "guru", "1234567890123456")
	child := testutil.CreateSiswa(t, s.db, "anak", "9201")
	stranger := testutil.CreateSiswa(t, s.db, "lain", "9202")
	parent := testutil.CreateOrangtua(t, s.db, "ibu", "3201010101010001")
	class := testutil.CreateClass(t, s.db, guru.ID, "DSB002", child.ID, stranger.ID)
	a := testutil.CreateAssignment(t, s.db, class, 100, time.Now().Add(time.Hour))
	testutil.CreateAssignment(t, s.db, class, 100, time.Now().Add(time.Hour))

	_, err := s.users.LinkChild(parent.ID, "9201")
	require.NoError(t, err)

	res, err := s.submissions.Submit(context.Background(), a.ID, child.ID, "jawaban", nil)
	require.NoError(t, err)
	_, err = s.submissions.Grade(res.Submission.ID, testutil.Claims(guru), GradeInput{Score: intPtr(88)}, client)
	require.NoError(t, err)

	d, err := s.dashboard.Orangtua(parent.ID)
	require.NoError(t, err)
	require.Len(t, d.Children, 1)
	summary := d.Children[0]
	assert.Equal(t, child.ID, summary.Student.UserID)
	assert.Equal(t, SubmissionXP+15, summary.TotalXP)
	assert.EqualValues(t, 1, summary.PendingCount)
	require.Len(t, summary.RecentGrades, 1)
	assert.Equal(t, 88, *summary.RecentGrades[0].Score)
	require.NotNil(t, summary.Streak)
	assert.Equal(t, 1, summary.Streak.CurrentStreak)

	empty, err := s.dashboard.Orangtua(stranger.ID)
	require.NoError(t, err)
	assert.Empty(t, empty.Children)
}

func TestAdminDashboard(t *testing.T) {
	s := newServices(t)
	testutil.CreateUser(t, s.db, model.RoleAdmin, "admin")
	guru := testutil.CreateGuru(t, s.db, "guru", "1234567890123456")
	siswa := testutil.CreateSiswa(t, s.db, "siswa", "9301")
	testutil.CreateSiswa(t, s.db, "siswa2", "9302")
	class := testutil.CreateClass(t, s.db, guru.ID, "DSB003", siswa.ID)
	a := testutil.CreateAssignment(t, s.db, class, 100, time.Now().Add(time.Hour))

	res, err := s.submissions.Submit(context.Background(), a.ID, siswa.ID, "jawaban", nil)
	require.NoError(t, err)
	_, err = s.submissions.Grade(res.Submission.ID, testutil.Claims(guru), GradeInput{Score: intPtr(90)}, client)
	require.NoError(t, err)

	d, err := s.dashboard.Admin()
	require.NoError(t, err)
	byRole := map[string]int64{}
	for _, c := range d.UserCounts {
		byRole[c.Role] = c.Total
	}
	assert.EqualValues(t, 2, byRole[string(model.RoleSiswa)])
	assert.EqualValues(t, 1, byRole[string(model.RoleGuru)])
	assert.EqualValues(t, 4, d.TotalUsers)
	assert.EqualValues(t, 1, d.ClassCount)
	assert.EqualValues(t, 1, d.SubmissionCount)
	require.NotEmpty(t, d.RecentAudit)
	assert.Equal(t, AuditGrade, d.RecentAudit[0].Action)
}
