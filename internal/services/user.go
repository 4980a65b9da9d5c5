package services

import (
	"context"
	"strings"

	"asahigaoka/internal/apperr"
	"asahigaoka/internal/logger"
	"asahigaoka/internal/models"
	"asahigaoka/internal/workflow"

	"go.uber.org/zap"
)

// UserService is the admin-only user management.
type UserService struct {
	repo UserRepo
}

func NewUserService(repo UserRepo) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	logger.WithCtx(ctx).Debug("Listing users (service)")
	return s.repo.GetAllUsers(ctx)
}

// Create adds an account. Emails are unique case-insensitively.
func (s *UserService) Create(ctx context.Context, input *models.CreateUserRequest) (*models.User, error) {
	log := logger.WithCtx(ctx)
	if err := workflow.ValidateStruct(input); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByEmail(ctx, strings.TrimSpace(input.Email)); err == nil {
		return nil, apperr.Validation(map[string]string{"email": "is already registered"})
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	u, err := createUser(ctx, s.repo, input.Email, input.Name, input.Password, input.Role, active)
	if err != nil {
		log.Error("User creation failed (service)", zap.String("email", input.Email), zap.Error(err))
		return nil, err
	}
	log.Info("User created (service)", zap.String("user_id", u.ID), zap.String("role", u.Role))
	return u, nil
}

// Delete removes an account. Accounts that still own content must be
// disabled through Update instead.
func (s *UserService) Delete(ctx context.Context, actor *models.User, id string) error {
	log := logger.WithCtx(ctx)
	log.Info("Deleting user (service)", zap.String("user_id", id))
	if actor.ID == id {
		return apperr.Validation(map[string]string{"id": "you cannot delete your own account"})
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		log.Warn("User delete failed (service)", zap.String("user_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *UserService) Update(ctx context.Context, actor *models.User, id string, input *models.UpdateUserRequest) (*models.User, error) {
	log := logger.WithCtx(ctx)
	log.Info("Updating user (service)", zap.String("user_id", id))

	if err := workflow.ValidateStruct(input); err != nil {
		return nil, err
	}
	// An admin cannot lock themselves out.
	if actor.ID == id {
		if input.Role != nil && *input.Role != models.RoleAdmin {
			return nil, apperr.Validation(map[string]string{"role": "you cannot remove your own admin role"})
		}
		if input.IsActive != nil && !*input.IsActive {
			return nil, apperr.Validation(map[string]string{"is_active": "you cannot disable your own account"})
		}
	}

	if err := s.repo.UpdateUserFields(ctx, id, input); err != nil {
		log.Error("User update failed (service)", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	log.Info("User updated (service)", zap.String("user_id", id))
	return s.repo.GetUserByID(ctx, id)
}
