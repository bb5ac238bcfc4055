package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/repository"
	"mindagrow_backend/internal/util"
	"strings"
	"time"

	"gorm.io/gorm"
)

var dueDateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04:05", util.DateFormat}

// ParseDueDate accepts RFC3339 plus the layouts HTML date inputs submit.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			if layout == util.DateFormat {
				t = t.Add(24*time.Hour - time.Second)
			}
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: due_date must be RFC3339", util.ErrInvalidInput)
}

type CreateAssignmentInput struct {
	ClassID     uint   `form:"class_id" binding:"required"`
	Title       string `form:"title" binding:"required,max=200"`
	Description string `form:"description"`
	DueDate     string `form:"due_date" binding:"required"`
	Points      int    `form:"points" binding:"omitempty,min=1,max=1000"`
}

type UpdateAssignmentInput struct {
	Title       *string `form:"title" binding:"omitempty,max=200"`
	Description *string `form:"description"`
	DueDate     *string `form:"due_date"`
	Points      *int    `form:"points" binding:"omitempty,min=1,max=1000"`
	Status      *string `form:"status" binding:"omitempty,oneof=active closed"`
}

// FileDownload is an open stored file; the caller closes Reader.
type FileDownload struct {
	Reader io.ReadCloser
	Name   string
	Mime   string
}

type AssignmentService struct {
	AssignmentRepo *repository.AssignmentRepository
	SubmissionRepo *repository.SubmissionRepository
	ClassRepo      *repository.ClassRepository
	Classes        *ClassService
	Upload         *UploadService
	Export         *ExportService
}

func NewAssignmentService(
	assignmentRepo *repository.AssignmentRepository,
	submissionRepo *repository.SubmissionRepository,
	classRepo *repository.ClassRepository,
	classes *ClassService,
	upload *UploadService,
	export *ExportService,
) *AssignmentService {
	return &AssignmentService{
		AssignmentRepo: assignmentRepo,
		SubmissionRepo: submissionRepo,
		ClassRepo:      classRepo,
		Classes:        classes,
		Upload:         upload,
		Export:         export,
	}
}

func (s *AssignmentService) find(id uint) (*model.Assignment, error) {
	a, err := s.AssignmentRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAssignmentNotFound
	}
	return a, err
}

func isOwner(caller *util.Claims, teacherID uint) bool {
	return caller.Role == model.RoleAdmin || caller.UserID == teacherID
}

func (s *AssignmentService) findOwned(id uint, caller *util.Claims) (*model.Assignment, error) {
	a, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if !isOwner(caller, a.TeacherID) {
		return nil, util.ErrPermissionDenied
	}
	return a, nil
}

// findVisible returns the assignment when the caller can see its class.
func (s *AssignmentService) findVisible(id uint, caller *util.Claims) (*model.Assignment, error) {
	a, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if a.TeacherID == caller.UserID {
		return a, nil
	}
	class := a.Class
	if class == nil {
		if class, err = s.ClassRepo.FindByID(a.ClassID); err != nil {
			return nil, util.ErrClassNotFound
		}
	}
	ok, err := s.Classes.CanView(class, caller)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrPermissionDenied
	}
	return a, nil
}

func (s *AssignmentService) Create(ctx context.Context, caller *util.Claims, in CreateAssignmentInput, fh *multipart.FileHeader) (*model.Assignment, error) {
	class, err := s.Classes.findOwned(in.ClassID, caller)
	if err != nil {
		return nil, err
	}
	due, err := ParseDueDate(in.DueDate)
	if err != nil {
		return nil, err
	}

	a := &model.Assignment{
		ClassID:     class.ID,
		TeacherID:   class.TeacherID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		DueDate:     due,
		Points:      in.Points,
		Status:      model.AssignmentStatusActive,
	}
	if a.Points == 0 {
		a.Points = model.DefaultAssignmentPoints
	}

	if fh != nil {
		stored, err := s.Upload.Save(ctx, fh, util.UploadAssignment)
		if err != nil {
			return nil, err
		}
		a.FilePath, a.FileName, a.FileMime = stored.Key, stored.Name, stored.Mime
	}

	if err := s.AssignmentRepo.Create(a); err != nil {
		s.Upload.Storage.Delete(ctx, a.FilePath)
		return nil, err
	}
	return a, nil
}

// List returns assignments of the caller's classes, optionally narrowed to
// one class. Teachers get submission counts; students their own submission.
func (s *AssignmentService) List(caller *util.Claims, classID uint, status string) ([]model.Assignment, error) {
	var (
		classIDs []uint
		err      error
	)
	switch caller.Role {
	case model.RoleGuru:
		classIDs, err = s.ClassRepo.ClassIDsForTeacher(caller.UserID)
	case model.RoleSiswa:
		classIDs, err = s.ClassRepo.ClassIDsForStudent(caller.UserID)
	case model.RoleAdmin:
		var classes []model.Class
		classes, err = s.ClassRepo.ListAll()
		for _, c := range classes {
			classIDs = append(classIDs, c.ID)
		}
	default:
		return nil, util.ErrPermissionDenied
	}
	if err != nil {
		return nil, err
	}

	if classID != 0 {
		found := false
		for _, id := range classIDs {
			if id == classID {
				found = true
				break
			}
		}
		if !found {
			return nil, util.ErrPermissionDenied
		}
		classIDs = []uint{classID}
	}

	list, err := s.AssignmentRepo.List(repository.AssignmentFilter{ClassIDs: classIDs, Status: status})
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.ID)
	}

	if caller.Role == model.RoleSiswa {
		mine, err := s.SubmissionRepo.MapByStudent(caller.UserID, ids)
		if err != nil {
			return nil, err
		}
		for i := range list {
			list[i].MySubmission = mine[list[i].ID]
		}
		return list, nil
	}

	counts, err := s.AssignmentRepo.CountSubmissions(ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].SubmissionCount = counts[list[i].ID]
	}
	return list, nil
}

func (s *AssignmentService) Get(id uint, caller *util.Claims) (*model.Assignment, error) {
	a, err := s.findVisible(id, caller)
	if err != nil {
		return nil, err
	}
	if caller.Role == model.RoleSiswa {
		sub, err := s.SubmissionRepo.FindByAssignmentAndStudent(a.ID, caller.UserID)
		if err == nil {
			a.MySubmission = sub
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	} else {
		counts, err := s.AssignmentRepo.CountSubmissions([]uint{a.ID})
		if err != nil {
			return nil, err
		}
		a.SubmissionCount = counts[a.ID]
	}
	return a, nil
}

// Update applies the changed fields; a new file replaces the old one.
func (s *AssignmentService) Update(ctx context.Context, id uint, caller *util.Claims, in UpdateAssignmentInput, fh *multipart.FileHeader) (*model.Assignment, error) {
	a, err := s.findOwned(id, caller)
	if err != nil {
		return nil, err
	}

	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		a.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		a.Description = *in.Description
	}
	if in.DueDate != nil && *in.DueDate != "" {
		due, err := ParseDueDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
		a.DueDate = due
	}
	if in.Points != nil {
		a.Points = *in.Points
	}
	if in.Status != nil {
		a.Status = *in.Status
	}

	oldFile := ""
	if fh != nil {
		stored, err := s.Upload.Save(ctx, fh, util.UploadAssignment)
		if err != nil {
			return nil, err
		}
		oldFile = a.FilePath
		a.FilePath, a.FileName, a.FileMime = stored.Key, stored.Name, stored.Mime
	}

	if err := s.AssignmentRepo.Update(a); err != nil {
		if fh != nil {
			s.Upload.Storage.Delete(ctx, a.FilePath)
		}
		return nil, err
	}
	s.Upload.Storage.Delete(ctx, oldFile)
	return a, nil
}

func (s *AssignmentService) Delete(id uint, caller *util.Claims) error {
	a, err := s.findOwned(id, caller)
	if err != nil {
		return err
	}
	a.Status = model.AssignmentStatusDeleted
	return s.AssignmentRepo.Update(a)
}

func (s *AssignmentService) OpenFile(ctx context.Context, id uint, caller *util.Claims) (*FileDownload, error) {
	a, err := s.findVisible(id, caller)
	if err != nil {
		return nil, err
	}
	if !a.HasFile() {
		return nil, util.ErrNoFile
	}
	reader, err := s.Upload.Storage.Open(ctx, a.FilePath)
	if err != nil {
		return nil, err
	}
	return &FileDownload{Reader: reader, Name: a.FileName, Mime: downloadMime(a.FileMime, a.FileName)}, nil
}

func (s *AssignmentService) Submissions(id uint, caller *util.Claims) ([]model.Submission, error) {
	a, err := s.findOwned(id, caller)
	if err != nil {
		return nil, err
	}
	return s.SubmissionRepo.ListByAssignment(a.ID)
}

// ExportGrades renders the grade book and suggests a file name for it.
func (s *AssignmentService) ExportGrades(id uint, caller *util.Claims) (*bytes.Buffer, string, error) {
	a, err := s.findOwned(id, caller)
	if err != nil {
		return nil, "", err
	}
	buf, err := s.Export.GradeBook(a)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("nilai_tugas_%d.xlsx", a.ID), nil
}
