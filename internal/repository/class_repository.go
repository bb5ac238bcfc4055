package repository

import (
	"mindagrow_backend/internal/model"

	"gorm.io/gorm"
)

type ClassRepository struct {
	DB *gorm.DB
}

func NewClassRepository(db *gorm.DB) *ClassRepository {
	return &ClassRepository{DB: db}
}

func (r *ClassRepository) WithTx(tx *gorm.DB) *ClassRepository {
	return &ClassRepository{DB: tx}
}

func (r *ClassRepository) Create(class *model.Class) error {
	return r.DB.Create(class).Error
}

func (r *ClassRepository) Update(class *model.Class) error {
	return r.DB.Omit("Teacher").Save(class).Error
}

// FindByID skips classes that were soft-deleted (status inactive).
func (r *ClassRepository) FindByID(id uint) (*model.Class, error) {
	var class model.Class
	err := r.DB.Preload("Teacher").
		Where("id = ? AND status <> ?", id, model.ClassStatusInactive).
		First(&class).Error
	return &class, err
}

func (r *ClassRepository) FindByCode(code string) (*model.Class, error) {
	var class model.Class
	err := r.DB.Where("class_code = ? AND status = ?", code, model.ClassStatusActive).First(&class).Error
	return &class, err
}

func (r *ClassRepository) CodeExists(code string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Class{}).Where("class_code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *ClassRepository) ListByTeacher(teacherID uint) ([]model.Class, error) {
	var classes []model.Class
	err := r.DB.Where("teacher_id = ? AND status <> ?", teacherID, model.ClassStatusInactive).
		Order("created_at DESC").
		Find(&classes).Error
	return classes, err
}

func (r *ClassRepository) ListByStudent(studentID uint) ([]model.Class, error) {
	var classes []model.Class
	err := r.DB.Preload("Teacher").
		Joins("JOIN class_members cm ON cm.class_id = classes.id").
		Where("cm.student_id = ? AND cm.status = ? AND classes.status <> ?",
			studentID, model.MemberStatusActive, model.ClassStatusInactive).
		Order("classes.created_at DESC").
		Find(&classes).Error
	return classes, err
}

func (r *ClassRepository) ListAll() ([]model.Class, error) {
	var classes []model.Class
	err := r.DB.Preload("Teacher").
		Where("status <> ?", model.ClassStatusInactive).
		Order("created_at DESC").
		Find(&classes).Error
	return classes, err
}

func (r *ClassRepository) CountActive() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Class{}).Where("status <> ?", model.ClassStatusInactive).Count(&count).Error
	return count, err
}

type classCount struct {
	ClassID uint
	Total   int64
}

// CountStudents returns active member counts keyed by class ID.
func (r *ClassRepository) CountStudents(classIDs []uint) (map[uint]int64, error) {
	result := make(map[uint]int64, len(classIDs))
	if len(classIDs) == 0 {
		return result, nil
	}
	var rows []classCount
	err := r.DB.Model(&model.ClassMember{}).
		Select("class_id, COUNT(*) AS total").
		Where("class_id IN ? AND status = ?", classIDs, model.MemberStatusActive).
		Group("class_id").
		Scan(&rows).Error
	for _, row := range rows {
		result[row.ClassID] = row.Total
	}
	return result, err
}

// ClassIDsForStudent lists the classes where the student is an active member.
func (r *ClassRepository) ClassIDsForStudent(studentID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.ClassMember{}).
		Joins("JOIN classes c ON c.id = class_members.class_id").
		Where("class_members.student_id = ? AND class_members.status = ? AND c.status <> ?",
			studentID, model.MemberStatusActive, model.ClassStatusInactive).
		Pluck("class_members.class_id", &ids).Error
	return ids, err
}

func (r *ClassRepository) ClassIDsForTeacher(teacherID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Class{}).
		Where("teacher_id = ? AND status <> ?", teacherID, model.ClassStatusInactive).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *ClassRepository) FindMember(classID, studentID uint) (*model.ClassMember, error) {
	var member model.ClassMember
	err := r.DB.Where("class_id = ? AND student_id = ?", classID, studentID).First(&member).Error
	return &member, err
}

func (r *ClassRepository) CreateMember(member *model.ClassMember) error {
	return r.DB.Create(member).Error
}

func (r *ClassRepository) SaveMember(member *model.ClassMember) error {
	return r.DB.Omit("Student").Save(member).Error
}

func (r *ClassRepository) IsActiveMember(classID, studentID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.ClassMember{}).
		Where("class_id = ? AND student_id = ? AND status = ?", classID, studentID, model.MemberStatusActive).
		Count(&count).Error
	return count > 0, err
}

func (r *ClassRepository) ListMembers(classID uint) ([]model.ClassMember, error) {
	var members []model.ClassMember
	err := r.DB.Preload("Student").
		Where("class_id = ? AND status = ?", classID, model.MemberStatusActive).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}

// CountDistinctStudentsForTeacher counts students across all of a teacher's classes.
func (r *ClassRepository) CountDistinctStudentsForTeacher(teacherID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ClassMember{}).
		Joins("JOIN classes c ON c.id = class_members.class_id").
		Where("c.teacher_id = ? AND c.status <> ? AND class_members.status = ?",
			teacherID, model.ClassStatusInactive, model.MemberStatusActive).
		Distinct("class_members.student_id").
		Count(&count).Error
	return count, err
}
