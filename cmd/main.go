package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	_ "asahigaoka/docs"
	"asahigaoka/internal/app"
	"asahigaoka/internal/config"
	"asahigaoka/internal/logger"

	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title Asahigaoka CMS API
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @version 1.0
// @description Article management for the Asahigaoka neighbourhood association site.
// @BasePath /
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	warnings, err := cfg.Validate()
	if err != nil {
		logger.Log.Fatal("Invalid configuration", zap.Error(err))
	}
	for _, w := range warnings {
		logger.Log.Warn(w)
	}

	router, err := app.InitApp(context.Background(), cfg)
	if err != nil {
		logger.Log.Fatal("App initialization failed", zap.Error(err))
	}

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
	})

	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	logger.Log.Info("Server started", zap.String("port", cfg.Port), zap.String("db", cfg.GetDSNSafe()))
	if err := http.ListenAndServe(":"+cfg.Port, corsMiddleware.Handler(router)); err != nil {
		logger.Log.Fatal("Server failed", zap.Error(err))
	}
}
