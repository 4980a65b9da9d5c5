package services

import (
	"context"
	"fmt"
	"strings"

	"asahigaoka/internal/apperr"
	"asahigaoka/internal/cache"
	"asahigaoka/internal/logger"
	"asahigaoka/internal/models"
	"asahigaoka/internal/repository"
	"asahigaoka/internal/workflow"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

type ArticleService interface {
	// Save creates the article when id is empty.
	Save(ctx context.Context, actor *models.User, id string, in models.ArticleInput) (*workflow.Outcome, error)
	Publish(ctx context.Context, actor *models.User, id string, req models.StatusRequest) (*workflow.Outcome, error)
	Unpublish(ctx context.Context, actor *models.User, id string) (*workflow.Outcome, error)
	ToggleStatus(ctx context.Context, actor *models.User, id string, req models.StatusRequest) (*workflow.Outcome, error)
	Delete(ctx context.Context, actor *models.User, id string) (*workflow.Outcome, error)
	GetForEdit(ctx context.Context, actor *models.User, id string) (*models.Article, error)
	List(ctx context.Context, actor *models.User, f models.ArticleFilter) ([]*models.Article, error)
	ListPublished(ctx context.Context, f models.ArticleFilter) ([]*models.Article, error)
	Search(ctx context.Context, keyword string, limit int) ([]*models.Article, error)
}

type articleService struct {
	repo   repository.ArticleRepo
	media  repository.MediaRepo
	engine *workflow.Engine
	cache  cache.ListingCache
	policy *bluemonday.Policy
}

func NewArticleService(repo repository.ArticleRepo, media repository.MediaRepo, engine *workflow.Engine, c cache.ListingCache) ArticleService {
	p := bluemonday.UGCPolicy()
	p.AllowElements("img")
	p.AllowAttrs("src", "alt").OnElements("img")
	if c == nil {
		c = cache.Noop{}
	}
	return &articleService{repo: repo, media: media, engine: engine, cache: c, policy: p}
}

// canEdit: admins edit everything, editors only their own articles.
func canEdit(actor *models.User, a *models.Article) bool {
	return actor.IsAdmin() || (actor != nil && a.Author == actor.ID)
}

// loadForWrite loads id and checks the actor may change it.
func (s *articleService) loadForWrite(ctx context.Context, actor *models.User, id string) (*models.Article, error) {
	log := logger.WithCtx(ctx)
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.Warn("Article not found", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if !canEdit(actor, a) {
		log.Warn("Article access denied", zap.String("id", id), zap.String("author", a.Author))
		return nil, apperr.Forbidden("you can only edit your own articles")
	}
	return a, nil
}

func (s *articleService) Save(ctx context.Context, actor *models.User, id string, in models.ArticleInput) (*workflow.Outcome, error) {
	log := logger.WithCtx(ctx)
	log.Info("Saving article",
		zap.String("id", id),
		zap.String("title", strings.TrimSpace(in.Title)),
		zap.String("status", in.Status),
		zap.Bool("line", in.LineEnabled),
		zap.Bool("x", in.XEnabled),
	)

	var previous *models.Article
	if id != "" {
		a, err := s.loadForWrite(ctx, actor, id)
		if err != nil {
			return nil, err
		}
		previous = a
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Content = s.policy.Sanitize(in.Content)
	log.Debug("Content sanitized", zap.Int("clean_len", len(in.Content)))

	out, err := s.engine.ApplySave(ctx, previous, in, actor.ID)
	if err != nil {
		return nil, err
	}

	if out.Created && len(in.PendingMediaIDs) > 0 {
		n, err := s.media.LinkToArticle(ctx, in.PendingMediaIDs, out.Article.ID, actor.ID)
		if err != nil {
			log.Warn("Linking pending media failed", zap.Error(err))
			out.Warnings = append(out.Warnings, workflow.Warning{Step: "media", Message: apperr.MessageOf(err)})
		} else {
			log.Info("Pending media linked", zap.Int64("count", n))
		}
	}

	s.invalidate(ctx)
	log.Info("Article saved", zap.String("id", out.Article.ID), zap.String("message", out.Message), zap.Int("warnings", len(out.Warnings)))
	return out, nil
}

func (s *articleService) Publish(ctx context.Context, actor *models.User, id string, req models.StatusRequest) (*workflow.Outcome, error) {
	req.Status = models.StatusPublished
	return s.ToggleStatus(ctx, actor, id, req)
}

func (s *articleService) Unpublish(ctx context.Context, actor *models.User, id string) (*workflow.Outcome, error) {
	return s.ToggleStatus(ctx, actor, id, models.StatusRequest{Status: models.StatusDraft})
}

func (s *articleService) ToggleStatus(ctx context.Context, actor *models.User, id string, req models.StatusRequest) (*workflow.Outcome, error) {
	log := logger.WithCtx(ctx)
	log.Info("Changing article status", zap.String("id", id), zap.String("status", req.Status))

	a, err := s.loadForWrite(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	out, err := s.engine.ApplyStatusToggle(ctx, a, req, actor.ID)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	log.Info("Article status changed", zap.String("id", id), zap.String("message", out.Message))
	return out, nil
}

func (s *articleService) Delete(ctx context.Context, actor *models.User, id string) (*workflow.Outcome, error) {
	log := logger.WithCtx(ctx)
	log.Info("Deleting article", zap.String("id", id))

	a, err := s.loadForWrite(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	out, err := s.engine.ApplyDelete(ctx, a)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	log.Info("Article deleted", zap.String("id", id))
	return out, nil
}

func (s *articleService) GetForEdit(ctx context.Context, actor *models.User, id string) (*models.Article, error) {
	logger.WithCtx(ctx).Debug("Loading article for edit", zap.String("id", id))
	return s.loadForWrite(ctx, actor, id)
}

func (s *articleService) List(ctx context.Context, actor *models.User, f models.ArticleFilter) ([]*models.Article, error) {
	log := logger.WithCtx(ctx)
	if !actor.IsAdmin() {
		f.AuthorOrPublished = actor.ID
	}
	log.Debug("Listing articles",
		zap.String("status", f.Status),
		zap.String("category", f.Category),
		zap.Int("limit", f.Limit),
		zap.Int("offset", f.Offset),
	)

	list, err := s.repo.List(ctx, f)
	if err != nil {
		log.Error("Listing articles failed", zap.Error(err))
		return nil, err
	}
	return list, nil
}

func listingKey(f models.ArticleFilter) string {
	return fmt.Sprintf("%s:%s:%d:%d", f.Category, f.OrderBy, f.Limit, f.Offset)
}

func (s *articleService) ListPublished(ctx context.Context, f models.ArticleFilter) ([]*models.Article, error) {
	log := logger.WithCtx(ctx)
	f.Status = models.StatusPublished
	f.AuthorOrPublished = ""
	f.Keyword = ""
	key := listingKey(f)

	var cached []*models.Article
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Warn("Listing cache read failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		log.Debug("Listing cache hit", zap.String("key", key))
		return cached, nil
	}

	list, err := s.repo.List(ctx, f)
	if err != nil {
		log.Error("Listing published articles failed", zap.Error(err))
		return nil, err
	}
	if err := s.cache.Set(ctx, key, list); err != nil {
		log.Warn("Listing cache write failed", zap.String("key", key), zap.Error(err))
	}
	return list, nil
}

func (s *articleService) Search(ctx context.Context, keyword string, limit int) ([]*models.Article, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apperr.Validation(map[string]string{"q": "is required"})
	}
	logger.WithCtx(ctx).Debug("Searching articles", zap.String("q", keyword))
	return s.repo.List(ctx, models.ArticleFilter{
		Status:  models.StatusPublished,
		Keyword: keyword,
		Limit:   limit,
		OrderBy: "published_at",
	})
}

func (s *articleService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.WithCtx(ctx).Warn("Listing cache invalidation failed", zap.Error(err))
	}
}
