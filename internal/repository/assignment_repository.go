package repository

import (
	"mindagrow_backend/internal/model"

	"gorm.io/gorm"
)

type AssignmentRepository struct {
	DB *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

func (r *AssignmentRepository) WithTx(tx *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: tx}
}

func (r *AssignmentRepository) Create(a *model.Assignment) error {
	return r.DB.Create(a).Error
}

func (r *AssignmentRepository) Update(a *model.Assignment) error {
	return r.DB.Omit("Class").Save(a).Error
}

func (r *AssignmentRepository) FindByID(id uint) (*model.Assignment, error) {
	var a model.Assignment
	err := r.DB.Preload("Class").
		Where("id = ? AND status <> ?", id, model.AssignmentStatusDeleted).
		First(&a).Error
	return &a, err
}

type AssignmentFilter struct {
	ClassIDs []uint
	Status   string
}

func (r *AssignmentRepository) List(filter AssignmentFilter) ([]model.Assignment, error) {
	var list []model.Assignment
	if len(filter.ClassIDs) == 0 {
		return list, nil
	}
	query := r.DB.Preload("Class").
		Where("class_id IN ?", filter.ClassIDs).
		Where("status <> ?", model.AssignmentStatusDeleted)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	err := query.Order("due_date ASC").Find(&list).Error
	return list, err
}

// CountSubmissions returns submission counts keyed by assignment ID.
func (r *AssignmentRepository) CountSubmissions(ids []uint) (map[uint]int64, error) {
	result := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []struct {
		AssignmentID uint
		Total        int64
	}
	err := r.DB.Model(&model.Submission{}).
		Select("assignment_id, COUNT(*) AS total").
		Where("assignment_id IN ?", ids).
		Group("assignment_id").
		Scan(&rows).Error
	for _, row := range rows {
		result[row.AssignmentID] = row.Total
	}
	return result, err
}

// ListPendingForStudent lists active assignments in the given classes the
// student has not submitted yet, soonest due first.
func (r *AssignmentRepository) ListPendingForStudent(studentID uint, classIDs []uint, limit int) ([]model.Assignment, error) {
	var list []model.Assignment
	if len(classIDs) == 0 {
		return list, nil
	}
	sub := r.DB.Model(&model.Submission{}).Select("assignment_id").Where("student_id = ?", studentID)
	query := r.DB.Preload("Class").
		Where("class_id IN ? AND status = ?", classIDs, model.AssignmentStatusActive).
		Where("id NOT IN (?)", sub).
		Order("due_date ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&list).Error
	return list, err
}

func (r *AssignmentRepository) CountPendingForStudent(studentID uint, classIDs []uint) (int64, error) {
	var count int64
	if len(classIDs) == 0 {
		return 0, nil
	}
	sub := r.DB.Model(&model.Submission{}).Select("assignment_id").Where("student_id = ?", studentID)
	err := r.DB.Model(&model.Assignment{}).
		Where("class_id IN ? AND status = ?", classIDs, model.AssignmentStatusActive).
		Where("id NOT IN (?)", sub).
		Count(&count).Error
	return count, err
}
