package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/repository"
	"mindagrow_backend/internal/util"
	"strings"

	"gorm.io/gorm"
)

// UserProfile is a user together with the profile row of its role.
type UserProfile struct {
	*model.User
	Siswa    *model.Siswa    `json:"siswa,omitempty"`
	Guru     *model.Guru     `json:"guru,omitempty"`
	Orangtua *model.Orangtua `json:"orangtua,omitempty"`
}

func loadProfile(profiles *repository.ProfileRepository, user *model.User) (*UserProfile, error) {
	result := &UserProfile{User: user}
	var err error
	switch user.Role {
	case model.RoleSiswa:
		result.Siswa, err = profiles.FindSiswaByUserID(user.ID)
	case model.RoleGuru:
		result.Guru, err = profiles.FindGuruByUserID(user.ID)
	case model.RoleOrangtua:
		result.Orangtua, err = profiles.FindOrangtuaByUserID(user.ID)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Admins and accounts created outside registration have no profile row.
		result.Siswa, result.Guru, result.Orangtua = nil, nil, nil
		return result, nil
	}
	return result, err
}

type UpdateProfileInput struct {
	Name       string  `json:"name" binding:"omitempty,max=100"`
	Email      *string `json:"email" binding:"omitempty,max=100"`
	Phone      *string `json:"phone" binding:"omitempty,max=20"`
	Grade      *string `json:"grade" binding:"omitempty,max=20"`
	School     *string `json:"school" binding:"omitempty,max=150"`
	Subject    *string `json:"subject" binding:"omitempty,max=100"`
	Occupation *string `json:"occupation" binding:"omitempty,max=100"`
}

type UpdateStatusInput struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

type UserService struct {
	UserRepo    *repository.UserRepository
	ProfileRepo *repository.ProfileRepository
	SessionRepo *repository.SessionRepository
	Upload      *UploadService
	Audit       *AuditService
}

func NewUserService(
	userRepo *repository.UserRepository,
	profileRepo *repository.ProfileRepository,
	sessionRepo *repository.SessionRepository,
	upload *UploadService,
	audit *AuditService,
) *UserService {
	return &UserService{
		UserRepo:    userRepo,
		ProfileRepo: profileRepo,
		SessionRepo: sessionRepo,
		Upload:      upload,
		Audit:       audit,
	}
}

func (s *UserService) findUser(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

func (s *UserService) GetProfile(userID uint) (*UserProfile, error) {
	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}
	return loadProfile(s.ProfileRepo, user)
}

func (s *UserService) UpdateProfile(userID uint, in UpdateProfileInput) (*UserProfile, error) {
	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = name
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email == "" {
			user.Email = nil
		} else if email != user.EmailValue() {
			existing, err := s.UserRepo.FindByEmail(email)
			if err == nil && existing.ID != user.ID {
				return nil, util.ErrEmailRegistered
			}
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			user.Email = &email
		}
	}
	if err := s.UserRepo.Update(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrEmailRegistered
		}
		return nil, err
	}

	profile, err := loadProfile(s.ProfileRepo, user)
	if err != nil {
		return nil, err
	}
	switch {
	case profile.Siswa != nil:
		setIfPresent(&profile.Siswa.Grade, in.Grade)
		setIfPresent(&profile.Siswa.School, in.School)
		err = s.ProfileRepo.SaveSiswa(profile.Siswa)
	case profile.Guru != nil:
		setIfPresent(&profile.Guru.Subject, in.Subject)
		setIfPresent(&profile.Guru.School, in.School)
		err = s.ProfileRepo.SaveGuru(profile.Guru)
	case profile.Orangtua != nil:
		setIfPresent(&profile.Orangtua.Occupation, in.Occupation)
		err = s.ProfileRepo.SaveOrangtua(profile.Orangtua)
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func setIfPresent(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// UpdateAvatar stores the resized image and removes the previous one.
func (s *UserService) UpdateAvatar(ctx context.Context, userID uint, fh *multipart.FileHeader) (*model.User, error) {
	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}

	stored, err := s.Upload.SaveAvatar(ctx, fh, userID)
	if err != nil {
		return nil, err
	}

	old := user.Avatar
	user.Avatar = s.Upload.Storage.GetURL(stored.Key)
	if err := s.UserRepo.Update(user); err != nil {
		s.Upload.Storage.Delete(ctx, stored.Key)
		return nil, err
	}

	if prefix := s.Upload.Storage.GetURL(""); old != "" && strings.HasPrefix(old, prefix) {
		s.Upload.Storage.Delete(ctx, strings.TrimPrefix(old, prefix))
	}
	return user, nil
}

// LinkChild attaches the student with the given NIS to the parent.
func (s *UserService) LinkChild(parentID uint, nis string) (*model.Siswa, error) {
	child, err := s.ProfileRepo.FindSiswaByNIS(strings.TrimSpace(nis))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrChildNotFound
	} else if err != nil {
		return nil, err
	}

	if child.OrangtuaID != nil {
		if *child.OrangtuaID == parentID {
			return child, nil
		}
		return nil, util.ErrChildLinked
	}

	child.OrangtuaID = &parentID
	if err := s.ProfileRepo.SaveSiswa(child); err != nil {
		return nil, err
	}
	return child, nil
}

func (s *UserService) ListChildren(parentID uint) ([]model.Siswa, error) {
	return s.ProfileRepo.ListChildren(parentID)
}

func (s *UserService) ListUsers(filter repository.UserFilter, page, limit int) ([]model.User, int64, error) {
	return s.UserRepo.List(filter, page, limit)
}

// SetStatus activates or deactivates an account; deactivation revokes its sessions.
func (s *UserService) SetStatus(adminID, userID uint, status string, client ClientInfo) error {
	if adminID == userID && status == model.UserStatusInactive {
		return fmt.Errorf("%w: cannot deactivate your own account", util.ErrInvalidInput)
	}
	user, err := s.findUser(userID)
	if err != nil {
		return err
	}

	if err := s.UserRepo.UpdateStatus(user.ID, status); err != nil {
		return err
	}
	if status == model.UserStatusInactive {
		if err := s.SessionRepo.DeactivateAllForUser(user.ID, ""); err != nil {
			return err
		}
	}

	s.Audit.Record(nil, AuditEntry{
		UserID:     adminID,
		Action:     AuditStatusChange,
		EntityType: "user",
		EntityID:   fmt.Sprint(user.ID),
		Details:    map[string]interface{}{"from": user.Status, "to": status},
		IPAddress:  client.IP,
	})
	return nil
}

// ResetPassword sets a random temporary password and returns it.
func (s *UserService) ResetPassword(adminID, userID uint, client ClientInfo) (string, error) {
	user, err := s.findUser(userID)
	if err != nil {
		return "", err
	}

	temp := util.GenerateRandomString(10)
	hashed, err := hashPassword(temp)
	if err != nil {
		return "", err
	}
	if err := s.UserRepo.UpdatePassword(user.ID, hashed); err != nil {
		return "", err
	}
	if err := s.SessionRepo.DeactivateAllForUser(user.ID, ""); err != nil {
		return "", err
	}

	s.Audit.Record(nil, AuditEntry{
		UserID:     adminID,
		Action:     AuditPasswordReset,
		EntityType: "user",
		EntityID:   fmt.Sprint(user.ID),
		IPAddress:  client.IP,
	})
	return temp, nil
}
