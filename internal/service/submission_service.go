package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/repository"
	"mindagrow_backend/internal/util"
	"mindagrow_backend/pkg/monitoring"
	"strings"
	"time"

	"gorm.io/gorm"
)

type GradeInput struct {
	Score    *int   `json:"score" binding:"required"`
	Feedback string `json:"feedback"`
}

type SubmitResult struct {
	Submission   *model.Submission `json:"submission"`
	Gamification *ActivityResult   `json:"gamification"`
}

type SubmissionService struct {
	DB             *gorm.DB
	SubmissionRepo *repository.SubmissionRepository
	AssignmentRepo *repository.AssignmentRepository
	ClassRepo      *repository.ClassRepository
	ProfileRepo    *repository.ProfileRepository
	Upload         *UploadService
	Gamification   *GamificationService
	Audit          *AuditService
	now            func() time.Time
}

func NewSubmissionService(
	db *gorm.DB,
	submissionRepo *repository.SubmissionRepository,
	assignmentRepo *repository.AssignmentRepository,
	classRepo *repository.ClassRepository,
	profileRepo *repository.ProfileRepository,
	upload *UploadService,
	gamification *GamificationService,
	audit *AuditService,
) *SubmissionService {
	return &SubmissionService{
		DB:             db,
		SubmissionRepo: submissionRepo,
		AssignmentRepo: assignmentRepo,
		ClassRepo:      classRepo,
		ProfileRepo:    profileRepo,
		Upload:         upload,
		Gamification:   gamification,
		Audit:          audit,
		now:            time.Now,
	}
}

// Submit stores the student's single submission for an assignment and
// applies the activity rewards in the same transaction.
func (s *SubmissionService) Submit(ctx context.Context, assignmentID, studentID uint, content string, fh *multipart.FileHeader) (*SubmitResult, error) {
	a, err := s.AssignmentRepo.FindByID(assignmentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAssignmentNotFound
	} else if err != nil {
		return nil, err
	}
	if a.Status != model.AssignmentStatusActive {
		return nil, util.ErrAssignmentClosed
	}

	member, err := s.ClassRepo.IsActiveMember(a.ClassID, studentID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, util.ErrNotClassMember
	}

	_, err = s.SubmissionRepo.FindByAssignmentAndStudent(a.ID, studentID)
	if err == nil {
		return nil, util.ErrAlreadySubmitted
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" && fh == nil {
		return nil, util.ErrEmptySubmission
	}

	now := s.now()
	sub := &model.Submission{
		AssignmentID: a.ID,
		StudentID:    studentID,
		Content:      content,
		Status:       model.SubmissionStatusSubmitted,
		SubmittedAt:  now,
	}
	if now.After(a.DueDate) {
		sub.Status = model.SubmissionStatusLate
	}

	if fh != nil {
		stored, err := s.Upload.Save(ctx, fh, util.UploadSubmission)
		if err != nil {
			return nil, err
		}
		sub.FilePath, sub.FileName, sub.FileMime = stored.Key, stored.Name, stored.Mime
	}

	var activity *ActivityResult
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.SubmissionRepo.WithTx(tx).Create(sub); err != nil {
			return err
		}
		var err error
		activity, err = s.Gamification.RecordActivity(tx, studentID, model.MissionSubmitAssignment, SubmissionXP)
		return err
	})
	if err != nil {
		s.Upload.Storage.Delete(ctx, sub.FilePath)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrAlreadySubmitted
		}
		return nil, err
	}

	monitoring.SubmissionCounter.WithLabelValues(sub.Status).Inc()
	return &SubmitResult{Submission: sub, Gamification: activity}, nil
}

func (s *SubmissionService) ListMine(studentID uint) ([]model.Submission, error) {
	return s.SubmissionRepo.ListByStudent(studentID)
}

func (s *SubmissionService) find(id uint) (*model.Submission, error) {
	sub, err := s.SubmissionRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSubmissionNotFound
	}
	return sub, err
}

// classTeacher is the class's current teacher, falling back to the
// assignment's author when the class is not loaded.
func classTeacher(a *model.Assignment) uint {
	if a.Class != nil {
		return a.Class.TeacherID
	}
	return a.TeacherID
}

// canView allows the student, the assignment's teacher, the student's
// parent and admins.
func (s *SubmissionService) canView(sub *model.Submission, caller *util.Claims) (bool, error) {
	switch caller.Role {
	case model.RoleAdmin:
		return true, nil
	case model.RoleSiswa:
		return sub.StudentID == caller.UserID, nil
	case model.RoleGuru:
		return sub.Assignment != nil && classTeacher(sub.Assignment) == caller.UserID, nil
	case model.RoleOrangtua:
		child, err := s.ProfileRepo.FindSiswaByUserID(sub.StudentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		} else if err != nil {
			return false, err
		}
		return child.OrangtuaID != nil && *child.OrangtuaID == caller.UserID, nil
	}
	return false, nil
}

func (s *SubmissionService) Get(id uint, caller *util.Claims) (*model.Submission, error) {
	sub, err := s.find(id)
	if err != nil {
		return nil, err
	}
	ok, err := s.canView(sub, caller)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrPermissionDenied
	}
	return sub, nil
}

// Grade scores a submission; regrading overwrites the previous result.
func (s *SubmissionService) Grade(id uint, caller *util.Claims, in GradeInput, client ClientInfo) (*model.Submission, error) {
	sub, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if sub.Assignment == nil || sub.Assignment.Status == model.AssignmentStatusDeleted {
		return nil, util.ErrAssignmentNotFound
	}
	if !isOwner(caller, classTeacher(sub.Assignment)) {
		return nil, util.ErrPermissionDenied
	}
	if in.Score == nil || *in.Score < 0 || *in.Score > sub.Assignment.Points {
		return nil, fmt.Errorf("%w (max %d)", util.ErrInvalidScore, sub.Assignment.Points)
	}

	now := s.now()
	score := *in.Score
	grader := caller.UserID
	sub.Score = &score
	sub.Feedback = strings.TrimSpace(in.Feedback)
	sub.Status = model.SubmissionStatusGraded
	sub.GradedAt = &now
	sub.GradedBy = &grader

	if err := s.SubmissionRepo.Update(sub); err != nil {
		return nil, err
	}

	s.Audit.Record(nil, AuditEntry{
		UserID:     caller.UserID,
		Action:     AuditGrade,
		EntityType: "submission",
		EntityID:   fmt.Sprint(sub.ID),
		Details:    map[string]interface{}{"score": score},
		IPAddress:  client.IP,
	})
	return sub, nil
}

func (s *SubmissionService) OpenFile(ctx context.Context, id uint, caller *util.Claims) (*FileDownload, error) {
	sub, err := s.Get(id, caller)
	if err != nil {
		return nil, err
	}
	if !sub.HasFile() {
		return nil, util.ErrNoFile
	}
	reader, err := s.Upload.Storage.Open(ctx, sub.FilePath)
	if err != nil {
		return nil, err
	}
	return &FileDownload{Reader: reader, Name: sub.FileName, Mime: downloadMime(sub.FileMime, sub.FileName)}, nil
}
