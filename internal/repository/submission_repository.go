package repository

import (
	"mindagrow_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) WithTx(tx *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: tx}
}

func (r *SubmissionRepository) Create(s *model.Submission) error {
	return r.DB.Create(s).Error
}

func (r *SubmissionRepository) Update(s *model.Submission) error {
	return r.DB.Omit("Assignment", "Student").Save(s).Error
}

func (r *SubmissionRepository) FindByID(id uint) (*model.Submission, error) {
	var s model.Submission
	err := r.DB.Preload("Assignment").Preload("Assignment.Class").Preload("Student").
		First(&s, id).Error
	return &s, err
}

func (r *SubmissionRepository) FindByAssignmentAndStudent(assignmentID, studentID uint) (*model.Submission, error) {
	var s model.Submission
	err := r.DB.Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).First(&s).Error
	return &s, err
}

// MapByStudent returns the student's submissions for the given assignments.
func (r *SubmissionRepository) MapByStudent(studentID uint, assignmentIDs []uint) (map[uint]*model.Submission, error) {
	result := make(map[uint]*model.Submission, len(assignmentIDs))
	if len(assignmentIDs) == 0 {
		return result, nil
	}
	var list []model.Submission
	err := r.DB.Where("student_id = ? AND assignment_id IN ?", studentID, assignmentIDs).Find(&list).Error
	for i := range list {
		result[list[i].AssignmentID] = &list[i]
	}
	return result, err
}

func (r *SubmissionRepository) ListByAssignment(assignmentID uint) ([]model.Submission, error) {
	var list []model.Submission
	err := r.DB.Preload("Student").
		Where("assignment_id = ?", assignmentID).
		Order("submitted_at ASC").
		Find(&list).Error
	return list, err
}

func (r *SubmissionRepository) ListByStudent(studentID uint) ([]model.Submission, error) {
	var list []model.Submission
	err := r.DB.Preload("Assignment").Preload("Assignment.Class").
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&list).Error
	return list, err
}

func (r *SubmissionRepository) RecentGradedByStudent(studentID uint, limit int) ([]model.Submission, error) {
	var list []model.Submission
	err := r.DB.Preload("Assignment").
		Where("student_id = ? AND status = ?", studentID, model.SubmissionStatusGraded).
		Order("graded_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *SubmissionRepository) teacherScope(teacherID uint) *gorm.DB {
	return r.DB.Model(&model.Submission{}).
		Joins("JOIN assignments a ON a.id = submissions.assignment_id").
		Where("a.teacher_id = ? AND a.status <> ?", teacherID, model.AssignmentStatusDeleted)
}

func (r *SubmissionRepository) CountUngradedForTeacher(teacherID uint) (int64, error) {
	var count int64
	err := r.teacherScope(teacherID).
		Where("submissions.status IN ?", []string{model.SubmissionStatusSubmitted, model.SubmissionStatusLate}).
		Count(&count).Error
	return count, err
}

func (r *SubmissionRepository) RecentForTeacher(teacherID uint, limit int) ([]model.Submission, error) {
	var list []model.Submission
	err := r.teacherScope(teacherID).
		Preload("Assignment").Preload("Student").
		Order("submissions.submitted_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

type ClassScore struct {
	ClassID  uint    `json:"class_id"`
	AvgScore float64 `json:"avg_score"`
	Graded   int64   `json:"graded"`
}

// AverageScoreByClass aggregates graded scores per class of the teacher.
func (r *SubmissionRepository) AverageScoreByClass(teacherID uint) ([]ClassScore, error) {
	var rows []ClassScore
	err := r.teacherScope(teacherID).
		Select("a.class_id AS class_id, AVG(submissions.score) AS avg_score, COUNT(*) AS graded").
		Where("submissions.score IS NOT NULL").
		Group("a.class_id").
		Scan(&rows).Error
	return rows, err
}

func (r *SubmissionRepository) SubmittedTimesSince(studentID uint, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.DB.Model(&model.Submission{}).
		Where("student_id = ? AND submitted_at >= ?", studentID, since).
		Pluck("submitted_at", &times).Error
	return times, err
}

func (r *SubmissionRepository) CountAll() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Submission{}).Count(&count).Error
	return count, err
}
