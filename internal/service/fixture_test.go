package service

import (
	"mindagrow_backend/internal/repository"
	"mindagrow_backend/internal/testutil"
	"testing"

	"gorm.io/gorm"
)

// services wires the full service graph over one test database.
type services struct {
	db          *gorm.DB
	audit       *AuditService
	gam         *GamificationService
	classes     *ClassService
	assignments *AssignmentService
	submissions *SubmissionService
	materials   *MaterialService
	courses     *CourseService
	games       *GameService
	users       *UserService
	dashboard   *DashboardService
}

func newServices(t *testing.T) *services {
	db := testutil.PrepareDB(t)
	cfg := testConfig(t)

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	classRepo := repository.NewClassRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	storage := NewStorageService(cfg)
	upload := NewUploadService(storage, &cfg.Upload)
	export := NewExportService(classRepo, submissionRepo, profileRepo)
	auditRepo := repository.NewAuditRepository(db)
	audit := NewAuditService(auditRepo)
	gam := NewGamificationService(repository.NewGamificationRepository(db), nil)
	classes := NewClassService(classRepo, profileRepo, audit)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	gameRepo := repository.NewGameRepository(db)

	return &services{
		db:          db,
		audit:       audit,
		gam:         gam,
		classes:     classes,
		assignments: NewAssignmentService(assignmentRepo, submissionRepo, classRepo, classes, upload, export),
		submissions: NewSubmissionService(db, submissionRepo, assignmentRepo, classRepo, profileRepo, upload, gam, audit),
		materials:   NewMaterialService(repository.NewMaterialRepository(db), classRepo, classes, upload),
		courses:     NewCourseService(db, courseRepo, enrollmentRepo, gam),
		games:       NewGameService(db, gameRepo, gam),
		users:       NewUserService(userRepo, profileRepo, sessionRepo, upload, audit),
		dashboard:   NewDashboardService(userRepo, profileRepo, classRepo, assignmentRepo, submissionRepo, courseRepo, enrollmentRepo, gameRepo, auditRepo, gam),
	}
}
