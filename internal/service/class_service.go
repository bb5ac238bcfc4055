package service

import (
	"errors"
	"fmt"
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/repository"
	"mindagrow_backend/internal/util"
	"strings"
	"time"

	"gorm.io/gorm"
)

const classCodeLength = 6

type CreateClassInput struct {
	Name         string `json:"name" binding:"required,max=100"`
	Subject      string `json:"subject" binding:"omitempty,max=100"`
	GradeLevel   string `json:"grade_level" binding:"omitempty,max=20"`
	AcademicYear string `json:"academic_year" binding:"omitempty,max=20"`
	Description  string `json:"description"`
}

type UpdateClassInput struct {
	Name         *string `json:"name" binding:"omitempty,max=100"`
	Subject      *string `json:"subject" binding:"omitempty,max=100"`
	GradeLevel   *string `json:"grade_level" binding:"omitempty,max=20"`
	AcademicYear *string `json:"academic_year" binding:"omitempty,max=20"`
	Description  *string `json:"description"`
	Status       *string `json:"status" binding:"omitempty,oneof=active archived"`
}

type RosterEntry struct {
	StudentID uint      `json:"student_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	NIS       string    `json:"nis"`
	Grade     string    `json:"grade"`
	JoinedAt  time.Time `json:"joined_at"`
}

type ClassService struct {
	ClassRepo   *repository.ClassRepository
	ProfileRepo *repository.ProfileRepository
	Audit       *AuditService
	now         func() time.Time
}

func NewClassService(classRepo *repository.ClassRepository, profileRepo *repository.ProfileRepository, audit *AuditService) *ClassService {
	return &ClassService{
		ClassRepo:   classRepo,
		ProfileRepo: profileRepo,
		Audit:       audit,
		now:         time.Now,
	}
}

func (s *ClassService) find(id uint) (*model.Class, error) {
	class, err := s.ClassRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrClassNotFound
	}
	return class, err
}

// findOwned returns the class when the caller is its teacher or an admin.
func (s *ClassService) findOwned(id uint, caller *util.Claims) (*model.Class, error) {
	class, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if caller.Role != model.RoleAdmin && class.TeacherID != caller.UserID {
		return nil, util.ErrPermissionDenied
	}
	return class, nil
}

// CanView reports whether the caller may read the class: its teacher, an
// active member or an admin.
func (s *ClassService) CanView(class *model.Class, caller *util.Claims) (bool, error) {
	switch caller.Role {
	case model.RoleAdmin:
		return true, nil
	case model.RoleGuru:
		return class.TeacherID == caller.UserID, nil
	case model.RoleSiswa:
		return s.ClassRepo.IsActiveMember(class.ID, caller.UserID)
	}
	return false, nil
}

func (s *ClassService) generateCode() (string, error) {
	for i := 0; i < 10; i++ {
		code := util.GenerateRandomString(classCodeLength)
		exists, err := s.ClassRepo.CodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique class code")
}

func (s *ClassService) Create(teacherID uint, in CreateClassInput) (*model.Class, error) {
	code, err := s.generateCode()
	if err != nil {
		return nil, err
	}
	class := &model.Class{
		TeacherID:    teacherID,
		Name:         strings.TrimSpace(in.Name),
		Subject:      in.Subject,
		GradeLevel:   in.GradeLevel,
		AcademicYear: in.AcademicYear,
		Description:  in.Description,
		ClassCode:    code,
		Status:       model.ClassStatusActive,
	}
	if err := s.ClassRepo.Create(class); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *ClassService) withCounts(classes []model.Class) ([]model.Class, error) {
	ids := make([]uint, 0, len(classes))
	for _, c := range classes {
		ids = append(ids, c.ID)
	}
	counts, err := s.ClassRepo.CountStudents(ids)
	if err != nil {
		return nil, err
	}
	for i := range classes {
		classes[i].StudentCount = counts[classes[i].ID]
	}
	return classes, nil
}

func (s *ClassService) List(caller *util.Claims) ([]model.Class, error) {
	var (
		classes []model.Class
		err     error
	)
	switch caller.Role {
	case model.RoleAdmin:
		classes, err = s.ClassRepo.ListAll()
	case model.RoleGuru:
		classes, err = s.ClassRepo.ListByTeacher(caller.UserID)
	case model.RoleSiswa:
		classes, err = s.ClassRepo.ListByStudent(caller.UserID)
	default:
		return nil, util.ErrPermissionDenied
	}
	if err != nil {
		return nil, err
	}
	return s.withCounts(classes)
}

func (s *ClassService) Get(id uint, caller *util.Claims) (*model.Class, error) {
	class, err := s.find(id)
	if err != nil {
		return nil, err
	}
	ok, err := s.CanView(class, caller)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrPermissionDenied
	}
	counts, err := s.ClassRepo.CountStudents([]uint{class.ID})
	if err != nil {
		return nil, err
	}
	class.StudentCount = counts[class.ID]
	return class, nil
}

func (s *ClassService) Update(id uint, caller *util.Claims, in UpdateClassInput) (*model.Class, error) {
	class, err := s.findOwned(id, caller)
	if err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		class.Name = strings.TrimSpace(*in.Name)
	}
	setIfPresent(&class.Subject, in.Subject)
	setIfPresent(&class.GradeLevel, in.GradeLevel)
	setIfPresent(&class.AcademicYear, in.AcademicYear)
	setIfPresent(&class.Description, in.Description)
	setIfPresent(&class.Status, in.Status)

	if err := s.ClassRepo.Update(class); err != nil {
		return nil, err
	}
	return class, nil
}

// Delete hides the class by flipping its status to inactive.
func (s *ClassService) Delete(id uint, caller *util.Claims, client ClientInfo) error {
	class, err := s.findOwned(id, caller)
	if err != nil {
		return err
	}
	class.Status = model.ClassStatusInactive
	if err := s.ClassRepo.Update(class); err != nil {
		return err
	}
	s.Audit.Record(nil, AuditEntry{
		UserID:     caller.UserID,
		Action:     AuditClassDelete,
		EntityType: "class",
		EntityID:   fmt.Sprint(class.ID),
		IPAddress:  client.IP,
	})
	return nil
}

// addMember creates or reactivates a membership.
func (s *ClassService) addMember(classID, studentID uint) (*model.ClassMember, error) {
	member, err := s.ClassRepo.FindMember(classID, studentID)
	if err == nil {
		if member.Status == model.MemberStatusActive {
			return nil, util.ErrAlreadyMember
		}
		member.Status = model.MemberStatusActive
		member.JoinedAt = s.now()
		if err := s.ClassRepo.SaveMember(member); err != nil {
			return nil, err
		}
		return member, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	member = &model.ClassMember{
		ClassID:   classID,
		StudentID: studentID,
		Status:    model.MemberStatusActive,
		JoinedAt:  s.now(),
	}
	if err := s.ClassRepo.CreateMember(member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrAlreadyMember
		}
		return nil, err
	}
	return member, nil
}

func (s *ClassService) Join(studentID uint, code string) (*model.Class, error) {
	class, err := s.ClassRepo.FindByCode(strings.ToUpper(strings.TrimSpace(code)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrClassNotFound
	} else if err != nil {
		return nil, err
	}
	if _, err := s.addMember(class.ID, studentID); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *ClassService) Roster(id uint, caller *util.Claims) ([]RosterEntry, error) {
	if _, err := s.findOwned(id, caller); err != nil {
		return nil, err
	}
	members, err := s.ClassRepo.ListMembers(id)
	if err != nil {
		return nil, err
	}

	roster := make([]RosterEntry, 0, len(members))
	for _, m := range members {
		entry := RosterEntry{StudentID: m.StudentID, JoinedAt: m.JoinedAt}
		if m.Student != nil {
			entry.Name = m.Student.Name
			entry.Email = m.Student.EmailValue()
			entry.Avatar = m.Student.Avatar
		}
		if p, err := s.ProfileRepo.FindSiswaByUserID(m.StudentID); err == nil {
			entry.NIS = p.NIS
			entry.Grade = p.Grade
		}
		roster = append(roster, entry)
	}
	return roster, nil
}

func (s *ClassService) AddStudent(id uint, caller *util.Claims, nis string) (*model.ClassMember, error) {
	if _, err := s.findOwned(id, caller); err != nil {
		return nil, err
	}
	student, err := s.ProfileRepo.FindSiswaByNIS(strings.TrimSpace(nis))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrStudentNotFound
	} else if err != nil {
		return nil, err
	}
	return s.addMember(id, student.UserID)
}

func (s *ClassService) RemoveStudent(id uint, caller *util.Claims, studentID uint) error {
	if _, err := s.findOwned(id, caller); err != nil {
		return err
	}
	member, err := s.ClassRepo.FindMember(id, studentID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && member.Status != model.MemberStatusActive) {
		return util.ErrStudentNotFound
	} else if err != nil {
		return err
	}
	member.Status = model.MemberStatusRemoved
	return s.ClassRepo.SaveMember(member)
}
