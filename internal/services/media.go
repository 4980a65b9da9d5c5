package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"asahigaoka/internal/apperr"
	"asahigaoka/internal/logger"
	"asahigaoka/internal/models"
	"asahigaoka/internal/repository"
	"asahigaoka/internal/workflow"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MediaStore keeps uploaded binaries.
type MediaStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	Bucket() string
}

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var attachmentExts = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".txt": true, ".md": true, ".zip": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
}

type UploadInput struct {
	Kind        string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
	ArticleID   string
}

type MediaService struct {
	repo     repository.MediaRepo
	articles repository.ArticleRepo
	store    MediaStore
	maxBytes int64
	now      func() time.Time
}

func NewMediaService(repo repository.MediaRepo, articles repository.ArticleRepo, store MediaStore, maxBytes int64) *MediaService {
	return &MediaService{repo: repo, articles: articles, store: store, maxBytes: maxBytes, now: time.Now}
}

func (s *MediaService) Upload(ctx context.Context, actor *models.User, in UploadInput) (*models.Media, error) {
	log := logger.WithCtx(ctx)
	log.Info("Uploading media",
		zap.String("file_name", in.FileName),
		zap.String("content_type", in.ContentType),
		zap.Int64("size", in.Size),
		zap.String("kind", in.Kind),
	)

	if in.Kind == "" {
		in.Kind = models.MediaKindImage
	}
	if err := s.checkUpload(in); err != nil {
		log.Warn("Upload rejected", zap.Error(err))
		return nil, err
	}

	var articleID *string
	if in.ArticleID != "" {
		a, err := s.articles.GetByID(ctx, in.ArticleID)
		if err != nil {
			return nil, err
		}
		if !canEdit(actor, a) {
			return nil, apperr.Forbidden("you can only attach files to your own articles")
		}
		articleID = &a.ID
	}

	key := objectKey(s.now(), in.FileName)
	if err := s.store.Upload(ctx, key, in.ContentType, in.Body, in.Size); err != nil {
		return nil, err
	}

	m, err := s.repo.Create(ctx, &models.Media{
		ArticleID:   articleID,
		FileName:    in.FileName,
		FileType:    in.Kind,
		MimeType:    in.ContentType,
		FileSize:    in.Size,
		FileURL:     s.store.PublicURL(key),
		StoragePath: s.store.Bucket() + "/" + key,
		UploadedBy:  actor.ID,
	})
	if err != nil {
		if derr := s.store.Delete(ctx, key); derr != nil {
			log.Warn("Orphaned object left after failed insert", zap.String("key", key), zap.Error(derr))
		}
		return nil, err
	}

	log.Info("Media uploaded", zap.String("id", m.ID), zap.String("url", m.FileURL))
	return m, nil
}

func (s *MediaService) checkUpload(in UploadInput) error {
	if in.Size <= 0 {
		return apperr.Validation(map[string]string{"file": "is empty"})
	}
	if in.Size > s.maxBytes {
		return apperr.Validation(map[string]string{
			"file": fmt.Sprintf("must be at most %d MB", s.maxBytes/(1024*1024)),
		})
	}
	switch in.Kind {
	case models.MediaKindImage:
		if !imageTypes[in.ContentType] {
			return apperr.Validation(map[string]string{"file": "only JPEG, PNG, GIF and WebP images are allowed"})
		}
	case models.MediaKindAttachment:
		if !attachmentExts[strings.ToLower(filepath.Ext(in.FileName))] {
			return apperr.Validation(map[string]string{"file": "file type is not allowed"})
		}
	default:
		return apperr.Validation(map[string]string{"kind": "must be one of: image attachment"})
	}
	return nil
}

// objectKey is "{unix-ms}-{random}-{name}".
func objectKey(now time.Time, name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '?', '#', '%':
			return '_'
		}
		return r
	}, name)
	return fmt.Sprintf("%d-%s-%s", now.UnixMilli(), uuid.NewString()[:8], name)
}

func (s *MediaService) LinkPending(ctx context.Context, actor *models.User, req models.LinkMediaRequest) (int64, error) {
	if err := workflow.ValidateStruct(req); err != nil {
		return 0, err
	}
	a, err := s.articles.GetByID(ctx, req.ArticleID)
	if err != nil {
		return 0, err
	}
	if !canEdit(actor, a) {
		return 0, apperr.Forbidden("you can only attach files to your own articles")
	}

	uploader := actor.ID
	if actor.IsAdmin() {
		uploader = ""
	}
	return s.repo.LinkToArticle(ctx, req.MediaIDs, a.ID, uploader)
}

func (s *MediaService) ListForArticle(ctx context.Context, actor *models.User, articleID string) ([]*models.Media, error) {
	a, err := s.articles.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if !a.IsPublished() && !canEdit(actor, a) {
		return nil, apperr.Forbidden("you cannot view this article")
	}
	return s.repo.ListByArticle(ctx, articleID)
}

// Delete removes the stored object and then the record.
func (s *MediaService) Delete(ctx context.Context, actor *models.User, id string) error {
	log := logger.WithCtx(ctx)
	log.Info("Deleting media", zap.String("id", id))

	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && m.UploadedBy != actor.ID {
		return apperr.Forbidden("you can only delete your own files")
	}

	key := strings.TrimPrefix(m.StoragePath, s.store.Bucket()+"/")
	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	log.Info("Media deleted", zap.String("id", id))
	return nil
}
