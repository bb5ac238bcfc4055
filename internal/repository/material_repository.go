package repository

import (
	"mindagrow_backend/internal/model"

	"gorm.io/gorm"
)

type MaterialRepository struct {
	DB *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{DB: db}
}

func (r *MaterialRepository) Create(m *model.Material) error {
	return r.DB.Create(m).Error
}

func (r *MaterialRepository) Update(m *model.Material) error {
	return r.DB.Save(m).Error
}

func (r *MaterialRepository) FindByID(id uint) (*model.Material, error) {
	var m model.Material
	err := r.DB.Where("id = ? AND status <> ?", id, model.MaterialStatusDeleted).First(&m).Error
	return &m, err
}

func (r *MaterialRepository) ListByClasses(classIDs []uint, materialType string) ([]model.Material, error) {
	var list []model.Material
	if len(classIDs) == 0 {
		return list, nil
	}
	query := r.DB.Where("class_id IN ? AND status <> ?", classIDs, model.MaterialStatusDeleted)
	if materialType != "" {
		query = query.Where("type = ?", materialType)
	}
	err := query.Order("created_at DESC").Find(&list).Error
	return list, err
}
