package repository

import (
	"mindagrow_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) WithTx(tx *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: tx}
}

func (r *EnrollmentRepository) Create(e *model.Enrollment) error {
	return r.DB.Create(e).Error
}

func (r *EnrollmentRepository) Update(e *model.Enrollment) error {
	return r.DB.Omit("Course").Save(e).Error
}

func (r *EnrollmentRepository) Find(courseID, userID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("course_id = ? AND user_id = ?", courseID, userID).First(&e).Error
	return &e, err
}

func (r *EnrollmentRepository) ListByUser(userID uint) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.DB.Preload("Course").
		Where("user_id = ? AND status <> ?", userID, model.EnrollmentStatusDropped).
		Order("enrolled_at DESC").
		Find(&list).Error
	return list, err
}

func (r *EnrollmentRepository) CreateProgress(rows []model.LessonProgress) error {
	if len(rows) == 0 {
		return nil
	}
	return r.DB.Create(&rows).Error
}

func (r *EnrollmentRepository) FindProgress(userID, lessonID uint) (*model.LessonProgress, error) {
	var p model.LessonProgress
	err := r.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&p).Error
	return &p, err
}

func (r *EnrollmentRepository) SaveProgress(p *model.LessonProgress) error {
	return r.DB.Save(p).Error
}

func (r *EnrollmentRepository) ListProgress(enrollmentID uint) ([]model.LessonProgress, error) {
	var list []model.LessonProgress
	err := r.DB.Where("enrollment_id = ?", enrollmentID).Find(&list).Error
	return list, err
}

func (r *EnrollmentRepository) CountCompleted(enrollmentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.LessonProgress{}).
		Where("enrollment_id = ? AND status = ?", enrollmentID, model.LessonStatusCompleted).
		Count(&count).Error
	return count, err
}

func (r *EnrollmentRepository) CountProgressRows(enrollmentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.LessonProgress{}).Where("enrollment_id = ?", enrollmentID).Count(&count).Error
	return count, err
}

func (r *EnrollmentRepository) CompletedTimesSince(userID uint, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.DB.Model(&model.LessonProgress{}).
		Where("user_id = ? AND status = ? AND completed_at >= ?", userID, model.LessonStatusCompleted, since).
		Pluck("completed_at", &times).Error
	return times, err
}
