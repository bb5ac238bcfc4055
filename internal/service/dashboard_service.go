package service

import (
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/repository"
	"mindagrow_backend/internal/util"
	"time"
)

const (
	activityDays    = 7
	dashboardRecent = 5
)

type DashboardService struct {
	UserRepo       *repository.UserRepository
	ProfileRepo    *repository.ProfileRepository
	ClassRepo      *repository.ClassRepository
	AssignmentRepo *repository.AssignmentRepository
	SubmissionRepo *repository.SubmissionRepository
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	GameRepo       *repository.GameRepository
	AuditRepo      *repository.AuditRepository
	Gamification   *GamificationService
	now            func() time.Time
}

func NewDashboardService(
	userRepo *repository.UserRepository,
	profileRepo *repository.ProfileRepository,
	classRepo *repository.ClassRepository,
	assignmentRepo *repository.AssignmentRepository,
	submissionRepo *repository.SubmissionRepository,
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	gameRepo *repository.GameRepository,
	auditRepo *repository.AuditRepository,
	gamification *GamificationService,
) *DashboardService {
	return &DashboardService{
		UserRepo:       userRepo,
		ProfileRepo:    profileRepo,
		ClassRepo:      classRepo,
		AssignmentRepo: assignmentRepo,
		SubmissionRepo: submissionRepo,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		GameRepo:       gameRepo,
		AuditRepo:      auditRepo,
		Gamification:   gamification,
		now:            time.Now,
	}
}

type ActivityPoint struct {
	Date        string `json:"date"`
	Submissions int    `json:"submissions"`
	Lessons     int    `json:"lessons"`
	Games       int    `json:"games"`
}

type SiswaDashboard struct {
	ClassCount         int                  `json:"class_count"`
	PendingCount       int64                `json:"pending_count"`
	PendingAssignments []model.Assignment   `json:"pending_assignments"`
	RecentGrades       []model.Submission   `json:"recent_grades"`
	Gamification       *GamificationProfile `json:"gamification"`
	Enrollments        []model.Enrollment   `json:"enrollments"`
	Activity           []ActivityPoint      `json:"activity"`
}

type ClassScoreView struct {
	ClassID   uint    `json:"class_id"`
	ClassName string  `json:"class_name"`
	AvgScore  float64 `json:"avg_score"`
	Graded    int64   `json:"graded"`
}

type GuruDashboard struct {
	ClassCount        int                `json:"class_count"`
	StudentCount      int64              `json:"student_count"`
	UngradedCount     int64              `json:"ungraded_count"`
	RecentSubmissions []model.Submission `json:"recent_submissions"`
	ClassScores       []ClassScoreView   `json:"class_scores"`
}

type ChildSummary struct {
	Student      model.Siswa        `json:"student"`
	Level        int                `json:"level"`
	TotalXP      int                `json:"total_xp"`
	Streak       *StreakView        `json:"streak"`
	RecentGrades []model.Submission `json:"recent_grades"`
	PendingCount int64              `json:"pending_count"`
}

type OrangtuaDashboard struct {
	Children []ChildSummary `json:"children"`
}

type AdminDashboard struct {
	UserCounts      []repository.RoleCount `json:"user_counts"`
	TotalUsers      int64                  `json:"total_users"`
	ClassCount      int64                  `json:"class_count"`
	CourseCount     int64                  `json:"course_count"`
	SubmissionCount int64                  `json:"submission_count"`
	RecentAudit     []model.AuditLog       `json:"recent_audit"`
}

// activitySeries buckets event times into the last activityDays local days,
// oldest first.
func activitySeries(now time.Time, submissions, lessons, games []time.Time) []ActivityPoint {
	points := make([]ActivityPoint, activityDays)
	index := make(map[string]int, activityDays)
	for i := 0; i < activityDays; i++ {
		day := now.AddDate(0, 0, i-activityDays+1).Format(util.DateFormat)
		points[i].Date = day
		index[day] = i
	}
	bucket := func(times []time.Time, inc func(p *ActivityPoint)) {
		for _, t := range times {
			if i, ok := index[t.In(now.Location()).Format(util.DateFormat)]; ok {
				inc(&points[i])
			}
		}
	}
	bucket(submissions, func(p *ActivityPoint) { p.Submissions++ })
	bucket(lessons, func(p *ActivityPoint) { p.Lessons++ })
	bucket(games, func(p *ActivityPoint) { p.Games++ })
	return points
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (s *DashboardService) Siswa(userID uint) (*SiswaDashboard, error) {
	classIDs, err := s.ClassRepo.ClassIDsForStudent(userID)
	if err != nil {
		return nil, err
	}
	pending, err := s.AssignmentRepo.ListPendingForStudent(userID, classIDs, dashboardRecent)
	if err != nil {
		return nil, err
	}
	pendingCount, err := s.AssignmentRepo.CountPendingForStudent(userID, classIDs)
	if err != nil {
		return nil, err
	}
	grades, err := s.SubmissionRepo.RecentGradedByStudent(userID, dashboardRecent)
	if err != nil {
		return nil, err
	}
	profile, err := s.Gamification.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.EnrollmentRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	since := startOfDay(now.AddDate(0, 0, -(activityDays - 1)))
	submitted, err := s.SubmissionRepo.SubmittedTimesSince(userID, since)
	if err != nil {
		return nil, err
	}
	lessons, err := s.EnrollmentRepo.CompletedTimesSince(userID, since)
	if err != nil {
		return nil, err
	}
	games, err := s.GameRepo.PlayedTimesSince(userID, since)
	if err != nil {
		return nil, err
	}

	return &SiswaDashboard{
		ClassCount:         len(classIDs),
		PendingCount:       pendingCount,
		PendingAssignments: pending,
		RecentGrades:       grades,
		Gamification:       profile,
		Enrollments:        enrollments,
		Activity:           activitySeries(now, submitted, lessons, games),
	}, nil
}

func (s *DashboardService) Guru(teacherID uint) (*GuruDashboard, error) {
	classes, err := s.ClassRepo.ListByTeacher(teacherID)
	if err != nil {
		return nil, err
	}
	students, err := s.ClassRepo.CountDistinctStudentsForTeacher(teacherID)
	if err != nil {
		return nil, err
	}
	ungraded, err := s.SubmissionRepo.CountUngradedForTeacher(teacherID)
	if err != nil {
		return nil, err
	}
	recent, err := s.SubmissionRepo.RecentForTeacher(teacherID, dashboardRecent)
	if err != nil {
		return nil, err
	}
	scores, err := s.SubmissionRepo.AverageScoreByClass(teacherID)
	if err != nil {
		return nil, err
	}

	byClass := make(map[uint]repository.ClassScore, len(scores))
	for _, sc := range scores {
		byClass[sc.ClassID] = sc
	}
	series := make([]ClassScoreView, 0, len(classes))
	for _, c := range classes {
		sc := byClass[c.ID]
		series = append(series, ClassScoreView{
			ClassID:   c.ID,
			ClassName: c.Name,
			AvgScore:  sc.AvgScore,
			Graded:    sc.Graded,
		})
	}

	return &GuruDashboard{
		ClassCount:        len(classes),
		StudentCount:      students,
		UngradedCount:     ungraded,
		RecentSubmissions: recent,
		ClassScores:       series,
	}, nil
}

func (s *DashboardService) Orangtua(parentID uint) (*OrangtuaDashboard, error) {
	children, err := s.ProfileRepo.ListChildren(parentID)
	if err != nil {
		return nil, err
	}

	result := &OrangtuaDashboard{Children: make([]ChildSummary, 0, len(children))}
	for _, child := range children {
		lvl, err := s.Gamification.Repo.FindOrCreateLevel(child.UserID)
		if err != nil {
			return nil, err
		}
		streak, err := s.Gamification.GetStreak(child.UserID)
		if err != nil {
			return nil, err
		}
		grades, err := s.SubmissionRepo.RecentGradedByStudent(child.UserID, dashboardRecent)
		if err != nil {
			return nil, err
		}
		classIDs, err := s.ClassRepo.ClassIDsForStudent(child.UserID)
		if err != nil {
			return nil, err
		}
		pending, err := s.AssignmentRepo.CountPendingForStudent(child.UserID, classIDs)
		if err != nil {
			return nil, err
		}

		result.Children = append(result.Children, ChildSummary{
			Student:      child,
			Level:        lvl.Level,
			TotalXP:      lvl.TotalXP,
			Streak:       streak,
			RecentGrades: grades,
			PendingCount: pending,
		})
	}
	return result, nil
}

func (s *DashboardService) Admin() (*AdminDashboard, error) {
	counts, err := s.UserRepo.CountByRole()
	if err != nil {
		return nil, err
	}
	var total int64
	for _, c := range counts {
		total += c.Total
	}
	classes, err := s.ClassRepo.CountActive()
	if err != nil {
		return nil, err
	}
	courses, err := s.CourseRepo.CountActive()
	if err != nil {
		return nil, err
	}
	submissions, err := s.SubmissionRepo.CountAll()
	if err != nil {
		return nil, err
	}
	audit, _, err := s.AuditRepo.List("", 1, 10)
	if err != nil {
		return nil, err
	}

	return &AdminDashboard{
		UserCounts:      counts,
		TotalUsers:      total,
		ClassCount:      classes,
		CourseCount:     courses,
		SubmissionCount: submissions,
		RecentAudit:     audit,
	}, nil
}
