package repository

import (
	"mindagrow_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) WithTx(tx *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: tx}
}

func (r *CourseRepository) ListCategories() ([]model.Category, error) {
	var list []model.Category
	err := r.DB.Order("name ASC").Find(&list).Error
	return list, err
}

func (r *CourseRepository) CreateCategory(c *model.Category) error {
	return r.DB.Create(c).Error
}

func (r *CourseRepository) FindCategoryByID(id uint) (*model.Category, error) {
	var c model.Category
	err := r.DB.First(&c, id).Error
	return &c, err
}

func (r *CourseRepository) CategoryExists(name, slug string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Category{}).Where("name = ? OR slug = ?", name, slug).Count(&count).Error
	return count > 0, err
}

func (r *CourseRepository) Create(c *model.Course) error {
	return r.DB.Create(c).Error
}

func (r *CourseRepository) Update(c *model.Course) error {
	return r.DB.Omit("Category", "Modules").Save(c).Error
}

// FindByID hides archived courses.
func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var c model.Course
	err := r.DB.Preload("Category").
		Where("id = ? AND status <> ?", id, model.CourseStatusArchived).
		First(&c).Error
	return &c, err
}

// FindWithContent loads modules and lessons in display order.
func (r *CourseRepository) FindWithContent(id uint) (*model.Course, error) {
	var c model.Course
	err := r.DB.Preload("Category").
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC, id ASC")
		}).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC, id ASC")
		}).
		Where("id = ? AND status <> ?", id, model.CourseStatusArchived).
		First(&c).Error
	return &c, err
}

type CourseFilter struct {
	CategoryID uint
	Level      string
	Status     string
	Search     string
}

func (r *CourseRepository) List(filter CourseFilter, page, limit int) ([]model.Course, int64, error) {
	var list []model.Course
	var total int64

	query := r.DB.Model(&model.Course{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	} else {
		query = query.Where("status <> ?", model.CourseStatusArchived)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", term, term)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Category").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&list).Error
	return list, total, err
}

func (r *CourseRepository) CountLessonsByCourse(courseIDs []uint) (map[uint]int64, error) {
	result := make(map[uint]int64, len(courseIDs))
	if len(courseIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		CourseID uint
		Total    int64
	}
	err := r.DB.Model(&model.Lesson{}).
		Select("course_id, COUNT(*) AS total").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error
	for _, row := range rows {
		result[row.CourseID] = row.Total
	}
	return result, err
}

func (r *CourseRepository) CountActive() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Course{}).Where("status <> ?", model.CourseStatusArchived).Count(&count).Error
	return count, err
}

func (r *CourseRepository) CreateModule(m *model.Module) error {
	return r.DB.Create(m).Error
}

func (r *CourseRepository) FindModuleByID(id uint) (*model.Module, error) {
	var m model.Module
	err := r.DB.First(&m, id).Error
	return &m, err
}

func (r *CourseRepository) CreateLesson(l *model.Lesson) error {
	return r.DB.Create(l).Error
}

func (r *CourseRepository) FindLessonByID(id uint) (*model.Lesson, error) {
	var l model.Lesson
	err := r.DB.First(&l, id).Error
	return &l, err
}

func (r *CourseRepository) ListLessonIDs(courseID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Lesson{}).Where("course_id = ?", courseID).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}
