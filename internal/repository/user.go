package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"asahigaoka/internal/apperr"
	"asahigaoka/internal/logger"
	"asahigaoka/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Postgres SQLSTATE codes surfaced as validation errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

const userColumns = `id::text, email, name, password_hash, role, is_active, last_login_at, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.IsActive,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	logger.Log.Info("Creating user (repo)", zap.String("email", user.Email), zap.String("role", user.Role))
	query := `
	INSERT INTO users (email, name, password_hash, role, is_active)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id::text, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, user.Email, user.Name, user.PasswordHash, user.Role, user.IsActive).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperr.Validation(map[string]string{"email": "is already registered"})
		}
		logger.Log.Error("Failed to create user (repo)", zap.Error(err))
		return apperr.Wrap(apperr.KindPersistence, "failed to create user", err)
	}
	return nil
}

// DeleteUser removes an account that owns no articles or media.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	logger.Log.Info("Deleting user (repo)", zap.String("user_id", id))
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return apperr.Validation(map[string]string{"id": "user still owns articles or files; disable the account instead"})
		}
		logger.Log.Error("Failed to delete user (repo)", zap.Error(err), zap.String("user_id", id))
		return apperr.Wrap(apperr.KindPersistence, "failed to delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	logger.Log.Debug("Loading user by email (repo)", zap.String("email", email))
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		logger.Log.Error("Failed to load user by email (repo)", zap.Error(err))
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to load user", err)
	}
	return u, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	logger.Log.Debug("Loading user by id (repo)", zap.String("user_id", id))
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		logger.Log.Error("Failed to load user by id (repo)", zap.String("user_id", id), zap.Error(err))
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to load user", err)
	}
	return u, nil
}

func (r *UserRepository) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	logger.Log.Debug("Listing users (repo)")
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		logger.Log.Error("Failed to list users (repo)", zap.Error(err))
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to list users", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindPersistence, "failed to read user row", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	if err != nil {
		logger.Log.Warn("Failed to update last_login_at (repo)", zap.String("user_id", id), zap.Error(err))
		return apperr.Wrap(apperr.KindPersistence, "failed to update last login", err)
	}
	return nil
}

func (r *UserRepository) UpdateUserFields(ctx context.Context, id string, input *models.UpdateUserRequest) error {
	logger.Log.Info("Updating user (repo)", zap.String("user_id", id))
	query := `UPDATE users SET`
	var args []any
	argNum := 1

	if input.Name != nil {
		query += fmt.Sprintf(" name = $%d,", argNum)
		args = append(args, *input.Name)
		argNum++
	}
	if input.Role != nil {
		query += fmt.Sprintf(" role = $%d,", argNum)
		args = append(args, *input.Role)
		argNum++
	}
	if input.IsActive != nil {
		query += fmt.Sprintf(" is_active = $%d,", argNum)
		args = append(args, *input.IsActive)
		argNum++
	}

	if len(args) == 0 {
		logger.Log.Warn("No user fields to update (repo)", zap.String("user_id", id))
		return nil
	}

	query += " updated_at = NOW()"
	query = strings.TrimSpace(query) + fmt.Sprintf(" WHERE id = $%d", argNum)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		logger.Log.Error("Failed to update user (repo)", zap.Error(err), zap.String("user_id", id))
		return apperr.Wrap(apperr.KindPersistence, "failed to update user", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}
