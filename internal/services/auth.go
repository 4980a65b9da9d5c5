package services

import (
	"context"
	"strings"
	"time"

	"asahigaoka/internal/apperr"
	"asahigaoka/internal/logger"
	"asahigaoka/internal/models"
	"asahigaoka/internal/reqctx"
	"asahigaoka/internal/utils"

	"go.uber.org/zap"
)

type UserRepo interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	TouchLastLogin(ctx context.Context, id string) error
	UpdateUserFields(ctx context.Context, id string, input *models.UpdateUserRequest) error
	DeleteUser(ctx context.Context, id string) error
}

type AuthService struct {
	repo      UserRepo
	jwtSecret string
	accessTTL time.Duration
}

func NewAuthService(repo UserRepo, jwtSecret string, accessTTL time.Duration) *AuthService {
	return &AuthService{repo: repo, jwtSecret: jwtSecret, accessTTL: accessTTL}
}

var errBadCredentials = apperr.New(apperr.KindUnauthenticated, "invalid email or password")

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.TrimSpace(email)
	logger.Log.Info("Login attempt (service)", zap.String("email", email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			logger.Log.Warn("Unknown user (service)", zap.String("email", email))
			return "", nil, errBadCredentials
		}
		return "", nil, err
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		logger.Log.Warn("Wrong password (service)", zap.String("email", email))
		return "", nil, errBadCredentials
	}
	if !user.IsActive {
		logger.Log.Warn("Inactive user tried to log in (service)", zap.String("user_id", user.ID))
		return "", nil, apperr.Forbidden("this account is disabled")
	}

	token, err := utils.GenerateToken(s.jwtSecret, user.ID, user.Role, s.accessTTL)
	if err != nil {
		logger.Log.Error("Access token generation failed", zap.Error(err))
		return "", nil, err
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID); err != nil {
		logger.Log.Warn("last_login_at not updated", zap.String("user_id", user.ID), zap.Error(err))
	}

	logger.Log.Info("Login succeeded (service)", zap.String("user_id", user.ID), zap.String("role", user.Role))
	return token, user, nil
}

// CurrentUser resolves the authenticated user of ctx. Disabled accounts are
// rejected even while their token is still valid.
func (s *AuthService) CurrentUser(ctx context.Context) (*models.User, error) {
	id, ok := reqctx.GetUserID(ctx)
	if !ok {
		return nil, apperr.New(apperr.KindUnauthenticated, "login required")
	}
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.New(apperr.KindUnauthenticated, "session user no longer exists")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperr.Forbidden("this account is disabled")
	}
	return user, nil
}

// createUser hashes the password and stores a new account.
func createUser(ctx context.Context, repo UserRepo, email, name, password, role string, active bool) (*models.User, error) {
	logger.Log.Info("Creating user (service)", zap.String("email", email), zap.String("role", role))
	if role != models.RoleAdmin && role != models.RoleEditor {
		return nil, apperr.Validation(map[string]string{"role": "must be one of: admin editor"})
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		logger.Log.Error("Password hashing failed", zap.Error(err))
		return nil, err
	}
	u := &models.User{Email: strings.TrimSpace(email), Name: strings.TrimSpace(name), PasswordHash: hashed, Role: role, IsActive: active}
	if err := repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// EnsureAdmin creates the bootstrap administrator unless the email is taken.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err == nil {
		return nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return err
	}
	_, err = createUser(ctx, s.repo, email, "Administrator", password, models.RoleAdmin, true)
	return err
}
