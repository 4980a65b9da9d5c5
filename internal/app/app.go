package app

import (
	"context"
	"fmt"

	"asahigaoka/internal/cache"
	"asahigaoka/internal/clients/assist"
	"asahigaoka/internal/clients/sitegen"
	"asahigaoka/internal/clients/social"
	"asahigaoka/internal/config"
	"asahigaoka/internal/db"
	"asahigaoka/internal/handlers"
	"asahigaoka/internal/logger"
	"asahigaoka/internal/repository"
	"asahigaoka/internal/routes"
	"asahigaoka/internal/services"
	"asahigaoka/internal/storage"
	"asahigaoka/internal/workflow"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func InitApp(ctx context.Context, cfg *config.Config) (*mux.Router, error) {
	if cfg.Migrations {
		if err := db.RunMigrations(cfg); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	conn, err := db.NewPostgresConnection(cfg)
	if err != nil {
		return nil, err
	}

	// Repositories
	userRepo := repository.NewUserRepository(conn)
	articleRepo := repository.NewArticleRepo(conn)
	mediaRepo := repository.NewMediaRepo(conn)

	var listingCache cache.ListingCache = cache.Noop{}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			logger.Log.Warn("Redis unavailable, listing cache disabled", zap.Error(err))
		} else {
			listingCache = rc
		}
	}

	store, err := storage.NewS3Store(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("s3: %w", err)
	}

	// Collaborators
	siteClient := sitegen.New(cfg.PageGeneratorArticleURL, cfg.PageGeneratorNewsURL, cfg.HTTPTimeout)
	socialClient := social.New(cfg.LineBroadcastURL, cfg.XPostURL, cfg.HTTPTimeout)
	assistClient := assist.New(cfg.AssistURL, cfg.SiteURL+"/town.html", cfg.AssistTimeout)
	engine := workflow.NewEngine(articleRepo, siteClient, socialClient, workflow.Options{
		SiteURL:  cfg.SiteURL,
		Hashtags: cfg.XHashtags,
	})

	// Services
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.AccessTTL())
	if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}
	articleService := services.NewArticleService(articleRepo, mediaRepo, engine, listingCache)
	mediaService := services.NewMediaService(mediaRepo, articleRepo, store, cfg.MediaMaxBytes)
	userService := services.NewUserService(userRepo)
	dashboardService := services.NewDashboardService(articleRepo)
	draftService := services.NewDraftService(assistClient, cfg.SiteName)

	router := mux.NewRouter()
	routes.InitRoutes(router, cfg.JWTSecret, routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Articles:  handlers.NewArticleHandler(articleService, authService),
		Media:     handlers.NewMediaHandler(mediaService, authService, cfg.MediaMaxBytes),
		Users:     handlers.NewUserHandler(userService, authService),
		Dashboard: handlers.NewDashboardHandler(dashboardService, authService),
		Drafts:    handlers.NewDraftHandler(draftService),
	})

	return router, nil
}
