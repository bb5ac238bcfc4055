package service

import (
	"errors"
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/repository"
	"mindagrow_backend/internal/util"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	return strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

type CategoryInput struct {
	Name        string `json:"name" binding:"required,max=100"`
	Slug        string `json:"slug" binding:"omitempty,max=100"`
	Description string `json:"description"`
	Icon        string `json:"icon" binding:"omitempty,max=100"`
}

type CourseInput struct {
	CategoryID  *uint  `json:"category_id"`
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	Level       string `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	GradeLevel  string `json:"grade_level" binding:"omitempty,max=20"`
	Thumbnail   string `json:"thumbnail" binding:"omitempty,max=255"`
	XPReward    *int   `json:"xp_reward" binding:"omitempty,min=0,max=1000"`
	Status      string `json:"status" binding:"omitempty,oneof=draft published"`
}

type UpdateCourseInput struct {
	CategoryID  *uint   `json:"category_id"`
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description"`
	Level       *string `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	GradeLevel  *string `json:"grade_level" binding:"omitempty,max=20"`
	Thumbnail   *string `json:"thumbnail" binding:"omitempty,max=255"`
	XPReward    *int    `json:"xp_reward" binding:"omitempty,min=0,max=1000"`
	Status      *string `json:"status" binding:"omitempty,oneof=draft published"`
}

type ModuleInput struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index"`
}

type LessonInput struct {
	Title           string `json:"title" binding:"required,max=200"`
	Content         string `json:"content"`
	VideoURL        string `json:"video_url" binding:"omitempty,url,max=500"`
	DurationMinutes int    `json:"duration_minutes" binding:"omitempty,min=0"`
	XPReward        *int   `json:"xp_reward" binding:"omitempty,min=0,max=1000"`
	OrderIndex      int    `json:"order_index"`
}

type CourseDetail struct {
	*model.Course
	Enrollment *model.Enrollment `json:"enrollment,omitempty"`
}

type LessonCompletion struct {
	LessonID         uint            `json:"lesson_id"`
	AlreadyCompleted bool            `json:"already_completed"`
	Progress         int             `json:"progress"`
	CourseCompleted  bool            `json:"course_completed"`
	Gamification     *ActivityResult `json:"gamification,omitempty"`
}

type CourseService struct {
	DB             *gorm.DB
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	Gamification   *GamificationService
	now            func() time.Time
}

func NewCourseService(db *gorm.DB, courseRepo *repository.CourseRepository, enrollmentRepo *repository.EnrollmentRepository, gamification *GamificationService) *CourseService {
	return &CourseService{
		DB:             db,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		Gamification:   gamification,
		now:            time.Now,
	}
}

func (s *CourseService) ListCategories() ([]model.Category, error) {
	return s.CourseRepo.ListCategories()
}

func (s *CourseService) CreateCategory(in CategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(in.Name)
	slug := slugify(in.Slug)
	if slug == "" {
		slug = slugify(name)
	}
	exists, err := s.CourseRepo.CategoryExists(name, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrCategoryExists
	}

	c := &model.Category{Name: name, Slug: slug, Description: in.Description, Icon: in.Icon}
	if err := s.CourseRepo.CreateCategory(c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrCategoryExists
		}
		return nil, err
	}
	return c, nil
}

func (s *CourseService) checkCategory(id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := s.CourseRepo.FindCategoryByID(*id); errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrCategoryNotFound
	} else if err != nil {
		return err
	}
	return nil
}

func canManage(caller *util.Claims) bool {
	return caller.Role == model.RoleGuru || caller.Role == model.RoleAdmin
}

func (s *CourseService) find(id uint) (*model.Course, error) {
	c, err := s.CourseRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	return c, err
}

func (s *CourseService) findOwned(id uint, caller *util.Claims) (*model.Course, error) {
	c, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if !isOwner(caller, c.TeacherID) {
		return nil, util.ErrPermissionDenied
	}
	return c, nil
}

func (s *CourseService) List(caller *util.Claims, filter repository.CourseFilter, page, limit int) ([]model.Course, int64, error) {
	if !canManage(caller) || filter.Status == model.CourseStatusArchived {
		filter.Status = model.CourseStatusPublished
	}
	courses, total, err := s.CourseRepo.List(filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	counts, err := s.CourseRepo.CountLessonsByCourse(ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range courses {
		courses[i].LessonCount = counts[courses[i].ID]
	}
	return courses, total, nil
}

// Get returns the course outline; drafts are only visible to their owner.
// Enrolled callers also get their enrollment and per-lesson status.
func (s *CourseService) Get(id uint, caller *util.Claims) (*CourseDetail, error) {
	c, err := s.CourseRepo.FindWithContent(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	} else if err != nil {
		return nil, err
	}
	if c.Status != model.CourseStatusPublished && !isOwner(caller, c.TeacherID) {
		return nil, util.ErrCourseNotFound
	}

	detail := &CourseDetail{Course: c}
	for _, m := range c.Modules {
		c.LessonCount += int64(len(m.Lessons))
	}

	enrollment, err := s.EnrollmentRepo.Find(c.ID, caller.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return detail, nil
	} else if err != nil {
		return nil, err
	}
	detail.Enrollment = enrollment

	progress, err := s.EnrollmentRepo.ListProgress(enrollment.ID)
	if err != nil {
		return nil, err
	}
	status := make(map[uint]string, len(progress))
	for _, p := range progress {
		status[p.LessonID] = p.Status
	}
	for i := range c.Modules {
		for j := range c.Modules[i].Lessons {
			lesson := &c.Modules[i].Lessons[j]
			lesson.Status = status[lesson.ID]
			if lesson.Status == "" {
				lesson.Status = model.LessonStatusNotStarted
			}
		}
	}
	return detail, nil
}

func (s *CourseService) Create(caller *util.Claims, in CourseInput) (*model.Course, error) {
	if err := s.checkCategory(in.CategoryID); err != nil {
		return nil, err
	}
	c := &model.Course{
		CategoryID:  in.CategoryID,
		TeacherID:   caller.UserID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Level:       in.Level,
		GradeLevel:  in.GradeLevel,
		Thumbnail:   in.Thumbnail,
		XPReward:    model.DefaultCourseXP,
		Status:      in.Status,
	}
	if in.XPReward != nil {
		c.XPReward = *in.XPReward
	}
	if c.Level == "" {
		c.Level = "beginner"
	}
	if c.Status == "" {
		c.Status = model.CourseStatusDraft
	}
	if err := s.CourseRepo.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CourseService) Update(id uint, caller *util.Claims, in UpdateCourseInput) (*model.Course, error) {
	c, err := s.findOwned(id, caller)
	if err != nil {
		return nil, err
	}
	if in.CategoryID != nil {
		if err := s.checkCategory(in.CategoryID); err != nil {
			return nil, err
		}
		c.CategoryID = in.CategoryID
		c.Category = nil
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		c.Title = strings.TrimSpace(*in.Title)
	}
	setIfPresent(&c.Description, in.Description)
	setIfPresent(&c.Level, in.Level)
	setIfPresent(&c.GradeLevel, in.GradeLevel)
	setIfPresent(&c.Thumbnail, in.Thumbnail)
	setIfPresent(&c.Status, in.Status)
	if in.XPReward != nil {
		c.XPReward = *in.XPReward
	}
	if err := s.CourseRepo.Update(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CourseService) Delete(id uint, caller *util.Claims) error {
	c, err := s.findOwned(id, caller)
	if err != nil {
		return err
	}
	c.Status = model.CourseStatusArchived
	return s.CourseRepo.Update(c)
}

func (s *CourseService) AddModule(courseID uint, caller *util.Claims, in ModuleInput) (*model.Module, error) {
	c, err := s.findOwned(courseID, caller)
	if err != nil {
		return nil, err
	}
	m := &model.Module{
		CourseID:    c.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		OrderIndex:  in.OrderIndex,
	}
	if err := s.CourseRepo.CreateModule(m); err != nil {
		return nil, err
	}
	return m, nil
}

// AddLesson also gives every existing enrollment a progress row for it.
func (s *CourseService) AddLesson(moduleID uint, caller *util.Claims, in LessonInput) (*model.Lesson, error) {
	m, err := s.CourseRepo.FindModuleByID(moduleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrModuleNotFound
	} else if err != nil {
		return nil, err
	}
	if _, err := s.findOwned(m.CourseID, caller); err != nil {
		return nil, err
	}

	lesson := &model.Lesson{
		ModuleID:        m.ID,
		CourseID:        m.CourseID,
		Title:           strings.TrimSpace(in.Title),
		Content:         in.Content,
		VideoURL:        in.VideoURL,
		DurationMinutes: in.DurationMinutes,
		XPReward:        model.DefaultLessonXP,
		OrderIndex:      in.OrderIndex,
	}
	if in.XPReward != nil {
		lesson.XPReward = *in.XPReward
	}
	if err := s.CourseRepo.CreateLesson(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// Enroll creates the enrollment and one not-started progress row per lesson.
func (s *CourseService) Enroll(courseID, userID uint) (*model.Enrollment, error) {
	c, err := s.find(courseID)
	if err != nil {
		return nil, err
	}
	if c.Status != model.CourseStatusPublished {
		return nil, util.ErrCourseNotPublished
	}

	enrollment := &model.Enrollment{
		CourseID:   c.ID,
		UserID:     userID,
		Status:     model.EnrollmentStatusActive,
		EnrolledAt: s.now(),
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		enrollments := s.EnrollmentRepo.WithTx(tx)
		if _, err := enrollments.Find(c.ID, userID); err == nil {
			return util.ErrAlreadyEnrolled
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := enrollments.Create(enrollment); err != nil {
			return err
		}

		lessonIDs, err := s.CourseRepo.WithTx(tx).ListLessonIDs(c.ID)
		if err != nil {
			return err
		}
		rows := make([]model.LessonProgress, 0, len(lessonIDs))
		for _, id := range lessonIDs {
			rows = append(rows, model.LessonProgress{
				EnrollmentID: enrollment.ID,
				LessonID:     id,
				UserID:       userID,
				Status:       model.LessonStatusNotStarted,
			})
		}
		return enrollments.CreateProgress(rows)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, util.ErrAlreadyEnrolled
	}
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *CourseService) MyEnrollments(userID uint) ([]model.Enrollment, error) {
	return s.EnrollmentRepo.ListByUser(userID)
}

// CompleteLesson is idempotent: completing a lesson twice awards nothing.
func (s *CourseService) CompleteLesson(lessonID, userID uint) (*LessonCompletion, error) {
	lesson, err := s.CourseRepo.FindLessonByID(lessonID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrLessonNotFound
	} else if err != nil {
		return nil, err
	}

	result := &LessonCompletion{LessonID: lesson.ID}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		enrollments := s.EnrollmentRepo.WithTx(tx)
		courses := s.CourseRepo.WithTx(tx)

		enrollment, err := enrollments.Find(lesson.CourseID, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && enrollment.Status == model.EnrollmentStatusDropped) {
			return util.ErrNotEnrolled
		} else if err != nil {
			return err
		}

		now := s.now()
		progress, err := enrollments.FindProgress(userID, lesson.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			progress = &model.LessonProgress{EnrollmentID: enrollment.ID, LessonID: lesson.ID, UserID: userID}
		} else if err != nil {
			return err
		}
		if progress.Status == model.LessonStatusCompleted {
			result.AlreadyCompleted = true
			result.Progress = enrollment.Progress
			result.CourseCompleted = enrollment.Status == model.EnrollmentStatusCompleted
			return nil
		}

		progress.Status = model.LessonStatusCompleted
		progress.CompletedAt = &now
		if err := enrollments.SaveProgress(progress); err != nil {
			return err
		}

		counts, err := courses.CountLessonsByCourse([]uint{lesson.CourseID})
		if err != nil {
			return err
		}
		completed, err := enrollments.CountCompleted(enrollment.ID)
		if err != nil {
			return err
		}
		enrollment.Progress = progressPercent(completed, counts[lesson.CourseID])

		xp := lesson.XPReward
		if enrollment.Progress >= 100 && enrollment.Status != model.EnrollmentStatusCompleted {
			enrollment.Status = model.EnrollmentStatusCompleted
			enrollment.CompletedAt = &now
			result.CourseCompleted = true

			course, err := courses.FindByID(lesson.CourseID)
			if err != nil {
				return err
			}
			xp += course.XPReward
		}
		if err := enrollments.Update(enrollment); err != nil {
			return err
		}
		result.Progress = enrollment.Progress

		result.Gamification, err = s.Gamification.RecordActivity(tx, userID, model.MissionCompleteLesson, xp)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// progressPercent rounds down and caps at 100.
func progressPercent(completed, total int64) int {
	if total <= 0 {
		return 100
	}
	pct := int(completed * 100 / total)
	if pct > 100 {
		pct = 100
	}
	return pct
}
