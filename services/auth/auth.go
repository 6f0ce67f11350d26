// Package authService registers users, checks credentials and keeps the
// login history.
package authService

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"lms/apperr"
	"lms/models"
	"lms/utils"
)

const (
	maxFailedLogins    = 3
	failedLoginWindow  = 15 * time.Minute
	loginBlockDuration = time.Minute
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,notblank,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72,nefield=CurrentPassword"`
	CnfPassword     string `json:"cnfPassword" validate:"required,eqfield=NewPassword"`
}

type HistoryFilter struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// Client identifies where a login came from.
type Client struct {
	IP     string
	Device string
}

type Service struct {
	db        *gorm.DB
	saltRound int
	log       *zap.Logger
	now       func() time.Time
}

func New(db *gorm.DB, saltRound int, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if saltRound < bcrypt.MinCost {
		saltRound = bcrypt.DefaultCost
	}
	return &Service{db: db, saltRound: saltRound, log: log, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.saltRound)
	if err != nil {
		return nil, apperr.Internal(err, "Failed to process your request!")
	}

	user := models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Role:     models.RoleUser,
		Password: string(hashed),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Unscoped().Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict("Email is already registered!")
		}
		return tx.Create(&user).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperr.Conflict("Email is already registered!")
	}
	if err != nil {
		return nil, internal(err, "Failed to Signup user!")
	}

	s.log.Info("user registered", zap.Uint("userId", user.ID))
	return &user, nil
}

// Login verifies the credentials and records the login. Repeated failures
// block the account for a short time.
func (s *Service) Login(ctx context.Context, in LoginInput, client Client) (*models.User, error) {
	db := s.db.WithContext(ctx)
	now := s.now()

	var user models.User
	err := db.Where("email = ?", normalizeEmail(in.Email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized("Invalid credentials!")
	}
	if err != nil {
		return nil, apperr.Internal(err, "Failed to login")
	}

	if user.BlockedUntil != nil && user.BlockedUntil.After(now) {
		return nil, apperr.Unauthorized("Your account is temporarily blocked. Try again later.")
	}

	if user.LastFailedLogin != nil && now.Sub(*user.LastFailedLogin) > failedLoginWindow {
		user.FailedLoginAttempts = 0
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		updates := map[string]interface{}{
			"failed_login_attempts": user.FailedLoginAttempts + 1,
			"last_failed_login":     now,
		}
		if user.FailedLoginAttempts+1 >= maxFailedLogins {
			updates["blocked_until"] = now.Add(loginBlockDuration)
			updates["failed_login_attempts"] = 0
			s.log.Warn("user blocked after failed logins", zap.Uint("userId", user.ID), zap.String("ip", client.IP))
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			s.log.Error("failed to record failed login", zap.Uint("userId", user.ID), zap.Error(err))
		}
		return nil, apperr.Unauthorized("Invalid credentials!")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"last_login":            now,
			"failed_login_attempts": 0,
			"last_failed_login":     nil,
			"blocked_until":         nil,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&models.LoginTracking{
			UserID:    user.ID,
			IPAddress: client.IP,
			Device:    client.Device,
			Timestamp: now,
		}).Error
	})
	if err != nil {
		return nil, apperr.Internal(err, "Failed to login")
	}
	user.LastLogin = &now

	s.log.Info("user logged in", zap.Uint("userId", user.ID), zap.String("ip", client.IP))
	return &user, nil
}

func (s *Service) LoginHistory(ctx context.Context, auth models.AuthContext, filter HistoryFilter) ([]models.LoginTracking, utils.Pagination, error) {
	page, limit, offset := utils.Paginate(filter.Page, filter.Limit)
	pg := utils.Pagination{Page: page, Limit: limit}

	scope := func(db *gorm.DB) *gorm.DB {
		return db.Model(&models.LoginTracking{}).Where("user_id = ?", auth.UserID)
	}
	db := s.db.WithContext(ctx)
	if err := db.Scopes(scope).Count(&pg.Total).Error; err != nil {
		return nil, pg, apperr.Internal(err, "Failed to fetch login history")
	}
	history := []models.LoginTracking{}
	if err := db.Scopes(scope).Order("timestamp DESC").Offset(offset).Limit(limit).Find(&history).Error; err != nil {
		return nil, pg, apperr.Internal(err, "Failed to fetch login history")
	}
	return history, pg, nil
}

func (s *Service) ChangePassword(ctx context.Context, auth models.AuthContext, in ChangePasswordInput) error {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, auth.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Unauthorized("User not found!")
		}
		return apperr.Internal(err, "Failed to update password!")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)); err != nil {
		return apperr.Unauthorized("Current password is incorrect!")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.saltRound)
	if err != nil {
		return apperr.Internal(err, "Failed to hash password!")
	}
	if err := db.Model(&user).Update("password", string(hashed)).Error; err != nil {
		return apperr.Internal(err, "Failed to update password!")
	}
	return nil
}

// SetRole changes the role of the user registered under email.
func (s *Service) SetRole(ctx context.Context, email, role string) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, apperr.Validation("Unknown role %q", role)
	}
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "Failed to load user")
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("role", role).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to update role")
	}
	user.Role = role
	return &user, nil
}

func internal(err error, msg string) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Internal(err, msg)
}
