package repository

import (
	"context"
	"errors"

	"asahigaoka/internal/apperr"
	"asahigaoka/internal/logger"
	"asahigaoka/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type MediaRepo interface {
	Create(ctx context.Context, m *models.Media) (*models.Media, error)
	GetByID(ctx context.Context, id string) (*models.Media, error)
	ListByArticle(ctx context.Context, articleID string) ([]*models.Media, error)
	LinkToArticle(ctx context.Context, ids []string, articleID, uploadedBy string) (int64, error)
	SoftDelete(ctx context.Context, id string) error
}

type mediaRepo struct{ db *pgxpool.Pool }

func NewMediaRepo(db *pgxpool.Pool) MediaRepo { return &mediaRepo{db: db} }

const mediaColumns = `id::text, article_id::text, file_name, file_type, mime_type, file_size,
	file_url, storage_path, uploaded_by::text, created_at, deleted_at`

func scanMedia(row pgx.Row) (*models.Media, error) {
	var m models.Media
	err := row.Scan(&m.ID, &m.ArticleID, &m.FileName, &m.FileType, &m.MimeType, &m.FileSize,
		&m.FileURL, &m.StoragePath, &m.UploadedBy, &m.CreatedAt, &m.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mediaRepo) Create(ctx context.Context, m *models.Media) (*models.Media, error) {
	logger.WithCtx(ctx).Info("Recording media (repo)",
		zap.String("file_name", m.FileName), zap.String("storage_path", m.StoragePath))

	const q = `
		INSERT INTO media (article_id, file_name, file_type, mime_type, file_size, file_url, storage_path, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + mediaColumns

	out, err := scanMedia(r.db.QueryRow(ctx, q,
		m.ArticleID, m.FileName, m.FileType, m.MimeType, m.FileSize, m.FileURL, m.StoragePath, m.UploadedBy))
	if err != nil {
		logger.WithCtx(ctx).Error("Failed to record media (repo)", zap.Error(err))
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to record media", err)
	}
	return out, nil
}

func (r *mediaRepo) GetByID(ctx context.Context, id string) (*models.Media, error) {
	out, err := scanMedia(r.db.QueryRow(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE id = $1 AND deleted_at IS NULL`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("media not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to load media", err)
	}
	return out, nil
}

func (r *mediaRepo) ListByArticle(ctx context.Context, articleID string) ([]*models.Media, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE article_id = $1 AND deleted_at IS NULL ORDER BY created_at`, articleID)
	if err != nil {
		logger.WithCtx(ctx).Error("Failed to list media (repo)", zap.String("article_id", articleID), zap.Error(err))
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to list media", err)
	}
	defer rows.Close()

	list := []*models.Media{}
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindPersistence, "failed to read media row", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// LinkToArticle attaches unlinked uploads of uploadedBy to an article.
// An empty uploadedBy links regardless of uploader.
func (r *mediaRepo) LinkToArticle(ctx context.Context, ids []string, articleID, uploadedBy string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	logger.WithCtx(ctx).Info("Linking pending media (repo)",
		zap.String("article_id", articleID), zap.Int("count", len(ids)))

	tag, err := r.db.Exec(ctx, `
		UPDATE media SET article_id = $1
		WHERE id::text = ANY($2) AND article_id IS NULL AND deleted_at IS NULL
		  AND ($3 = '' OR uploaded_by::text = $3)`,
		articleID, ids, uploadedBy)
	if err != nil {
		logger.WithCtx(ctx).Error("Failed to link media (repo)", zap.Error(err))
		return 0, apperr.Wrap(apperr.KindPersistence, "failed to link media", err)
	}
	return tag.RowsAffected(), nil
}

func (r *mediaRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE media SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		logger.WithCtx(ctx).Error("Failed to delete media (repo)", zap.String("id", id), zap.Error(err))
		return apperr.Wrap(apperr.KindPersistence, "failed to delete media", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("media not found")
	}
	return nil
}
