package repository

import (
	"mindagrow_backend/internal/model"

	"gorm.io/gorm"
)

// ProfileRepository covers the role-specific siswa, guru and orangtua tables.
type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func (r *ProfileRepository) WithTx(tx *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: tx}
}

func (r *ProfileRepository) CreateSiswa(p *model.Siswa) error {
	return r.DB.Create(p).Error
}

func (r *ProfileRepository) CreateGuru(p *model.Guru) error {
	return r.DB.Create(p).Error
}

func (r *ProfileRepository) CreateOrangtua(p *model.Orangtua) error {
	return r.DB.Create(p).Error
}

func (r *ProfileRepository) SaveSiswa(p *model.Siswa) error {
	return r.DB.Omit("User").Save(p).Error
}

func (r *ProfileRepository) SaveGuru(p *model.Guru) error {
	return r.DB.Omit("User").Save(p).Error
}

func (r *ProfileRepository) SaveOrangtua(p *model.Orangtua) error {
	return r.DB.Omit("User").Save(p).Error
}

func (r *ProfileRepository) FindSiswaByNIS(nis string) (*model.Siswa, error) {
	var p model.Siswa
	err := r.DB.Preload("User").Where("nis = ?", nis).First(&p).Error
	return &p, err
}

func (r *ProfileRepository) FindGuruByNUPTK(nuptk string) (*model.Guru, error) {
	var p model.Guru
	err := r.DB.Preload("User").Where("nuptk = ?", nuptk).First(&p).Error
	return &p, err
}

func (r *ProfileRepository) FindOrangtuaByNIK(nik string) (*model.Orangtua, error) {
	var p model.Orangtua
	err := r.DB.Preload("User").Where("nik = ?", nik).First(&p).Error
	return &p, err
}

func (r *ProfileRepository) FindSiswaByUserID(userID uint) (*model.Siswa, error) {
	var p model.Siswa
	err := r.DB.Where("user_id = ?", userID).First(&p).Error
	return &p, err
}

func (r *ProfileRepository) FindGuruByUserID(userID uint) (*model.Guru, error) {
	var p model.Guru
	err := r.DB.Where("user_id = ?", userID).First(&p).Error
	return &p, err
}

func (r *ProfileRepository) FindOrangtuaByUserID(userID uint) (*model.Orangtua, error) {
	var p model.Orangtua
	err := r.DB.Where("user_id = ?", userID).First(&p).Error
	return &p, err
}

func (r *ProfileRepository) NISExists(nis string) (bool, error) {
	return r.exists(&model.Siswa{}, "nis = ?", nis)
}

func (r *ProfileRepository) NUPTKExists(nuptk string) (bool, error) {
	return r.exists(&model.Guru{}, "nuptk = ?", nuptk)
}

func (r *ProfileRepository) NIKExists(nik string) (bool, error) {
	return r.exists(&model.Orangtua{}, "nik = ?", nik)
}

func (r *ProfileRepository) exists(m interface{}, query string, arg interface{}) (bool, error) {
	var count int64
	err := r.DB.Model(m).Where(query, arg).Count(&count).Error
	return count > 0, err
}

// ListChildren returns the students linked to a parent profile.
func (r *ProfileRepository) ListChildren(orangtuaID uint) ([]model.Siswa, error) {
	var children []model.Siswa
	err := r.DB.Preload("User").Where("orangtua_id = ?", orangtuaID).Find(&children).Error
	return children, err
}
