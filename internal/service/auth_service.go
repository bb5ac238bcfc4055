package service

import (
	"errors"
	"fmt"
	"mindagrow_backend/internal/config"
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/repository"
	"mindagrow_backend/internal/util"
	"mindagrow_backend/pkg/logger"
	"mindagrow_backend/pkg/monitoring"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Role       string `json:"role" binding:"required,oneof=siswa guru orangtua"`
	Name       string `json:"name" binding:"required,max=100"`
	Email      string `json:"email" binding:"omitempty,email,max=100"`
	Password   string `json:"password" binding:"required,min=6,max=72"`
	Phone      string `json:"phone" binding:"omitempty,max=20"`
	NIS        string `json:"nis" binding:"omitempty,nis"`
	NUPTK      string `json:"nuptk" binding:"omitempty,nuptk"`
	NIK        string `json:"nik" binding:"omitempty,nik"`
	Grade      string `json:"grade" binding:"omitempty,max=20"`
	School     string `json:"school" binding:"omitempty,max=150"`
	Subject    string `json:"subject" binding:"omitempty,max=100"`
	Occupation string `json:"occupation" binding:"omitempty,max=100"`
	ChildNIS   string `json:"child_nis" binding:"omitempty,nis"`
}

type LoginInput struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Role       string `json:"role" binding:"omitempty,oneof=siswa guru orangtua admin"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

// ClientInfo identifies the caller's device for sessions and audit rows.
type ClientInfo struct {
	IP        string
	UserAgent string
}

type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      *UserProfile    `json:"user"`
	Activity  *ActivityResult `json:"activity,omitempty"`
}

type AuthService struct {
	DB           *gorm.DB
	UserRepo     *repository.UserRepository
	ProfileRepo  *repository.ProfileRepository
	SessionRepo  *repository.SessionRepository
	Gamification *GamificationService
	Audit        *AuditService
	Cfg          *config.Config
	now          func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	profileRepo *repository.ProfileRepository,
	sessionRepo *repository.SessionRepository,
	gamification *GamificationService,
	audit *AuditService,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		DB:           db,
		UserRepo:     userRepo,
		ProfileRepo:  profileRepo,
		SessionRepo:  sessionRepo,
		Gamification: gamification,
		Audit:        audit,
		Cfg:          cfg,
		now:          time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Register creates the user, the role profile and the gamification rows in
// one transaction.
func (s *AuthService) Register(in RegisterInput, client ClientInfo) (*model.User, error) {
	role := model.UserRole(in.Role)
	switch role {
	case model.RoleSiswa:
		if in.NIS == "" {
			return nil, util.ErrMissingIdentifier
		}
	case model.RoleGuru:
		if in.NUPTK == "" {
			return nil, util.ErrMissingIdentifier
		}
	case model.RoleOrangtua:
		if in.NIK == "" {
			return nil, util.ErrMissingIdentifier
		}
	default:
		return nil, util.ErrInvalidRole
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     strings.TrimSpace(in.Name),
		Password: hashed,
		Role:     role,
		Status:   model.UserStatusActive,
		Phone:    in.Phone,
	}
	if email := normalizeEmail(in.Email); email != "" {
		user.Email = &email
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		users := s.UserRepo.WithTx(tx)
		profiles := s.ProfileRepo.WithTx(tx)

		if user.Email != nil {
			_, err := users.FindByEmail(*user.Email)
			if err == nil {
				return util.ErrEmailRegistered
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		var child *model.Siswa
		switch role {
		case model.RoleSiswa:
			if exists, err := profiles.NISExists(in.NIS); err != nil {
				return err
			} else if exists {
				return fmt.Errorf("%w: NIS %s", util.ErrDuplicateIdentifier, in.NIS)
			}
		case model.RoleGuru:
			if exists, err := profiles.NUPTKExists(in.NUPTK); err != nil {
				return err
			} else if exists {
				return fmt.Errorf("%w: NUPTK %s", util.ErrDuplicateIdentifier, in.NUPTK)
			}
		case model.RoleOrangtua:
			if exists, err := profiles.NIKExists(in.NIK); err != nil {
				return err
			} else if exists {
				return fmt.Errorf("%w: NIK %s", util.ErrDuplicateIdentifier, in.NIK)
			}
			if in.ChildNIS != "" {
				found, err := profiles.FindSiswaByNIS(in.ChildNIS)
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return util.ErrChildNotFound
				} else if err != nil {
					return err
				}
				if found.OrangtuaID != nil {
					return util.ErrChildLinked
				}
				child = found
			}
		}

		if err := users.Create(user); err != nil {
			return err
		}

		switch role {
		case model.RoleSiswa:
			err = profiles.CreateSiswa(&model.Siswa{UserID: user.ID, NIS: in.NIS, Grade: in.Grade, School: in.School})
		case model.RoleGuru:
			err = profiles.CreateGuru(&model.Guru{UserID: user.ID, NUPTK: in.NUPTK, Subject: in.Subject, School: in.School})
		case model.RoleOrangtua:
			err = profiles.CreateOrangtua(&model.Orangtua{UserID: user.ID, NIK: in.NIK, Occupation: in.Occupation})
		}
		if err != nil {
			return err
		}

		if child != nil {
			child.OrangtuaID = &user.ID
			if err := profiles.SaveSiswa(child); err != nil {
				return err
			}
		}

		if err := s.Gamification.InitUser(tx, user.ID); err != nil {
			return err
		}

		return s.Audit.Record(tx, AuditEntry{
			UserID:     user.ID,
			Action:     AuditRegister,
			EntityType: "user",
			EntityID:   fmt.Sprint(user.ID),
			Details:    map[string]interface{}{"role": role},
			IPAddress:  client.IP,
		})
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, util.ErrDuplicateIdentifier
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// findByIdentifier resolves an email, or a NIS/NUPTK/NIK narrowed by role.
func (s *AuthService) findByIdentifier(identifier string, role model.UserRole) (*model.User, error) {
	if strings.Contains(identifier, "@") {
		return s.UserRepo.FindByEmail(normalizeEmail(identifier))
	}

	lookups := map[model.UserRole]func() (*model.User, error){
		model.RoleSiswa: func() (*model.User, error) {
			p, err := s.ProfileRepo.FindSiswaByNIS(identifier)
			if err != nil {
				return nil, err
			}
			return p.User, nil
		},
		model.RoleGuru: func() (*model.User, error) {
			p, err := s.ProfileRepo.FindGuruByNUPTK(identifier)
			if err != nil {
				return nil, err
			}
			return p.User, nil
		},
		model.RoleOrangtua: func() (*model.User, error) {
			p, err := s.ProfileRepo.FindOrangtuaByNIK(identifier)
			if err != nil {
				return nil, err
			}
			return p.User, nil
		},
	}

	if lookup, ok := lookups[role]; ok {
		return lookup()
	}
	for _, r := range []model.UserRole{model.RoleSiswa, model.RoleGuru, model.RoleOrangtua} {
		user, err := lookups[r]()
		if err == nil && user != nil {
			return user, nil
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *AuthService) Login(in LoginInput, client ClientInfo) (*LoginResult, error) {
	user, err := s.findByIdentifier(strings.TrimSpace(in.Identifier), model.UserRole(in.Role))
	if err != nil || user == nil {
		monitoring.LoginCounter.WithLabelValues("invalid").Inc()
		if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		monitoring.LoginCounter.WithLabelValues("invalid").Inc()
		return nil, util.ErrInvalidCredentials
	}
	if !user.IsActive() {
		monitoring.LoginCounter.WithLabelValues("inactive").Inc()
		return nil, util.ErrAccountInactive
	}

	now := s.now()
	session := &model.UserSession{
		UserID:       user.ID,
		IPAddress:    client.IP,
		UserAgent:    truncate(client.UserAgent, 255),
		ExpiresAt:    now.Add(s.Cfg.JWT.ExpireTime),
		IsActive:     true,
		LastActivity: now,
	}
	if err := s.SessionRepo.Create(session); err != nil {
		return nil, err
	}

	token, err := util.GenerateJWT(user, session.ID, s.Cfg.JWT.Secret, session.ExpiresAt)
	if err != nil {
		return nil, err
	}

	if err := s.UserRepo.UpdateLastLogin(user.ID, now); err != nil {
		logger.Log.Warn("Failed to update last login", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	user.LastLogin = &now

	var activity *ActivityResult
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		activity, err = s.Gamification.RecordActivity(tx, user.ID, model.MissionLogin, 0)
		return err
	})
	if err != nil {
		logger.Log.Warn("Failed to record login activity", zap.Uint("user_id", user.ID), zap.Error(err))
		activity = nil
	}

	s.Audit.Record(nil, AuditEntry{
		UserID:     user.ID,
		Action:     AuditLogin,
		EntityType: "session",
		EntityID:   session.ID,
		IPAddress:  client.IP,
	})
	monitoring.LoginCounter.WithLabelValues("success").Inc()

	profile, err := loadProfile(s.ProfileRepo, user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      profile,
		Activity:  activity,
	}, nil
}

func (s *AuthService) Logout(claims *util.Claims, client ClientInfo) error {
	if err := s.SessionRepo.Deactivate(claims.SessionID()); err != nil {
		return err
	}
	s.Audit.Record(nil, AuditEntry{
		UserID:     claims.UserID,
		Action:     AuditLogout,
		EntityType: "session",
		EntityID:   claims.SessionID(),
		IPAddress:  client.IP,
	})
	return nil
}

// ChangePassword revokes every other session of the user.
func (s *AuthService) ChangePassword(claims *util.Claims, in ChangePasswordInput, client ClientInfo) error {
	user, err := s.UserRepo.FindByID(claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrUserNotFound
	} else if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.OldPassword)); err != nil {
		return util.ErrWrongPassword
	}

	hashed, err := hashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	if err := s.UserRepo.UpdatePassword(user.ID, hashed); err != nil {
		return err
	}
	if err := s.SessionRepo.DeactivateAllForUser(user.ID, claims.SessionID()); err != nil {
		return err
	}

	s.Audit.Record(nil, AuditEntry{
		UserID:     user.ID,
		Action:     AuditPasswordChange,
		EntityType: "user",
		EntityID:   fmt.Sprint(user.ID),
		IPAddress:  client.IP,
	})
	return nil
}

// CleanupSessions deletes expired and revoked sessions.
func (s *AuthService) CleanupSessions() (int64, error) {
	return s.SessionRepo.DeleteExpired(s.now())
}

// EnsureAdmin creates an active admin account unless one already uses the
// email. The bool reports whether a new account was created.
func (s *AuthService) EnsureAdmin(name, email, password string) (*model.User, bool, error) {
	email = normalizeEmail(email)
	if email == "" || len(password) < 6 {
		return nil, false, util.ErrInvalidInput
	}

	existing, err := s.UserRepo.FindByEmail(email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, false, err
	}
	user := &model.User{
		Name:     name,
		Email:    &email,
		Password: hashed,
		Role:     model.RoleAdmin,
		Status:   model.UserStatusActive,
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.UserRepo.WithTx(tx).Create(user); err != nil {
			return err
		}
		return s.Gamification.InitUser(tx, user.ID)
	})
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
