package service

import (
	"context"
	"errors"
	"mime/multipart"
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/repository"
	"mindagrow_backend/internal/util"
	"strings"

	"gorm.io/gorm"
)

type CreateMaterialInput struct {
	ClassID     uint   `form:"class_id" binding:"required"`
	Title       string `form:"title" binding:"required,max=200"`
	Description string `form:"description"`
	Type        string `form:"type" binding:"omitempty,oneof=document video link image"`
	LinkURL     string `form:"link_url" binding:"omitempty,url,max=500"`
}

type UpdateMaterialInput struct {
	Title       *string `form:"title" binding:"omitempty,max=200"`
	Description *string `form:"description"`
	LinkURL     *string `form:"link_url" binding:"omitempty,url,max=500"`
}

type MaterialService struct {
	MaterialRepo *repository.MaterialRepository
	ClassRepo    *repository.ClassRepository
	Classes      *ClassService
	Upload       *UploadService
}

func NewMaterialService(materialRepo *repository.MaterialRepository, classRepo *repository.ClassRepository, classes *ClassService, upload *UploadService) *MaterialService {
	return &MaterialService{MaterialRepo: materialRepo, ClassRepo: classRepo, Classes: classes, Upload: upload}
}

func materialTypeFor(mime string) string {
	switch {
	case util.IsVideo(mime):
		return model.MaterialTypeVideo
	case util.IsImage(mime):
		return model.MaterialTypeImage
	default:
		return model.MaterialTypeDocument
	}
}

func (s *MaterialService) Create(ctx context.Context, caller *util.Claims, in CreateMaterialInput, fh *multipart.FileHeader) (*model.Material, error) {
	class, err := s.Classes.findOwned(in.ClassID, caller)
	if err != nil {
		return nil, err
	}

	m := &model.Material{
		ClassID:     class.ID,
		TeacherID:   class.TeacherID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Type:        in.Type,
		Status:      model.MaterialStatusActive,
	}

	if in.Type == model.MaterialTypeLink {
		if in.LinkURL == "" {
			return nil, util.ErrMissingLinkURL
		}
		m.LinkURL = in.LinkURL
	} else {
		if fh == nil {
			return nil, util.ErrFileRequired
		}
		stored, err := s.Upload.Save(ctx, fh, util.UploadMaterial)
		if err != nil {
			return nil, err
		}
		m.FilePath, m.FileName, m.FileMime = stored.Key, stored.Name, stored.Mime
		m.FileSize = stored.Size
		m.DurationSeconds = stored.DurationSeconds
		if m.Type == "" {
			m.Type = materialTypeFor(stored.Mime)
		}
	}

	if err := s.MaterialRepo.Create(m); err != nil {
		s.Upload.Storage.Delete(ctx, m.FilePath)
		return nil, err
	}
	return m, nil
}

func (s *MaterialService) find(id uint) (*model.Material, error) {
	m, err := s.MaterialRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrMaterialNotFound
	}
	return m, err
}

func (s *MaterialService) findVisible(id uint, caller *util.Claims) (*model.Material, error) {
	m, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if m.TeacherID == caller.UserID {
		return m, nil
	}
	class, err := s.Classes.find(m.ClassID)
	if err != nil {
		return nil, err
	}
	ok, err := s.Classes.CanView(class, caller)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrPermissionDenied
	}
	return m, nil
}

func (s *MaterialService) findOwned(id uint, caller *util.Claims) (*model.Material, error) {
	m, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if !isOwner(caller, m.TeacherID) {
		return nil, util.ErrPermissionDenied
	}
	return m, nil
}

// List returns materials of one class, or of every class visible to the caller.
func (s *MaterialService) List(caller *util.Claims, classID uint, materialType string) ([]model.Material, error) {
	if classID != 0 {
		if _, err := s.Classes.Get(classID, caller); err != nil {
			return nil, err
		}
		return s.MaterialRepo.ListByClasses([]uint{classID}, materialType)
	}

	var (
		ids []uint
		err error
	)
	switch caller.Role {
	case model.RoleGuru:
		ids, err = s.ClassRepo.ClassIDsForTeacher(caller.UserID)
	case model.RoleSiswa:
		ids, err = s.ClassRepo.ClassIDsForStudent(caller.UserID)
	case model.RoleAdmin:
		classes, lerr := s.ClassRepo.ListAll()
		err = lerr
		for _, c := range classes {
			ids = append(ids, c.ID)
		}
	default:
		return nil, util.ErrPermissionDenied
	}
	if err != nil {
		return nil, err
	}
	return s.MaterialRepo.ListByClasses(ids, materialType)
}

func (s *MaterialService) Get(id uint, caller *util.Claims) (*model.Material, error) {
	return s.findVisible(id, caller)
}

func (s *MaterialService) Update(ctx context.Context, id uint, caller *util.Claims, in UpdateMaterialInput, fh *multipart.FileHeader) (*model.Material, error) {
	m, err := s.findOwned(id, caller)
	if err != nil {
		return nil, err
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		m.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		m.Description = *in.Description
	}
	if in.LinkURL != nil && m.Type == model.MaterialTypeLink {
		if *in.LinkURL == "" {
			return nil, util.ErrMissingLinkURL
		}
		m.LinkURL = *in.LinkURL
	}

	oldFile, replaced := "", false
	if fh != nil && m.Type != model.MaterialTypeLink {
		stored, err := s.Upload.Save(ctx, fh, util.UploadMaterial)
		if err != nil {
			return nil, err
		}
		oldFile, replaced = m.FilePath, true
		m.FilePath, m.FileName, m.FileMime = stored.Key, stored.Name, stored.Mime
		m.FileSize = stored.Size
		m.DurationSeconds = stored.DurationSeconds
		m.Type = materialTypeFor(stored.Mime)
	}

	if err := s.MaterialRepo.Update(m); err != nil {
		if replaced {
			s.Upload.Storage.Delete(ctx, m.FilePath)
		}
		return nil, err
	}
	s.Upload.Storage.Delete(ctx, oldFile)
	return m, nil
}

func (s *MaterialService) Delete(id uint, caller *util.Claims) error {
	m, err := s.findOwned(id, caller)
	if err != nil {
		return err
	}
	m.Status = model.MaterialStatusDeleted
	return s.MaterialRepo.Update(m)
}

func (s *MaterialService) OpenFile(ctx context.Context, id uint, caller *util.Claims) (*FileDownload, error) {
	m, err := s.findVisible(id, caller)
	if err != nil {
		return nil, err
	}
	if !m.HasFile() {
		return nil, util.ErrNoFile
	}
	reader, err := s.Upload.Storage.Open(ctx, m.FilePath)
	if err != nil {
		return nil, err
	}
	return &FileDownload{Reader: reader, Name: m.FileName, Mime: downloadMime(m.FileMime, m.FileName)}, nil
}
