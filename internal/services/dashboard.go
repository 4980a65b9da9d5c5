package services

import (
	"context"

	"asahigaoka/internal/logger"
	"asahigaoka/internal/models"
	"asahigaoka/internal/repository"

	"go.uber.org/zap"
)

type DashboardService struct {
	articles repository.ArticleRepo
}

func NewDashboardService(articles repository.ArticleRepo) *DashboardService {
	return &DashboardService{articles: articles}
}

// Stats is scoped to the actor's own articles for editors.
func (s *DashboardService) Stats(ctx context.Context, actor *models.User) (*models.DashboardStats, error) {
	scope := actor.ID
	if actor.IsAdmin() {
		scope = ""
	}
	stats, err := s.articles.Stats(ctx, scope)
	if err != nil {
		logger.WithCtx(ctx).Error("Dashboard stats failed", zap.Error(err))
		return nil, err
	}
	if stats.TotalArticles > 0 {
		stats.PublishedPct = stats.PublishedArticles * 100 / stats.TotalArticles
	}
	return stats, nil
}
