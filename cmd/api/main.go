package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teampop/popcommerce/internal/api"
	"github.com/teampop/popcommerce/internal/api/middleware"
	"github.com/teampop/popcommerce/internal/config"
	"github.com/teampop/popcommerce/internal/logger"
	"github.com/teampop/popcommerce/internal/repository"
	"github.com/teampop/popcommerce/internal/service"
	"github.com/teampop/popcommerce/internal/storage"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "popcommerce-api",
		LogFile:     cfg.Log.File,
	})
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	tenantRepo := repository.NewTenantRepository(db)
	elasticRepo := repository.NewElasticRepository(&repository.ElasticConnectionConfig{
		URL:         cfg.Elastic.URL,
		APIKey:      cfg.Elastic.APIKey,
		InferenceID: cfg.Elastic.InferenceID,
	})
	jobStore := repository.NewJobStore()
	crawlStore := repository.NewCrawlStore()

	// Initialize optional crawl log archive
	archive, err := storage.NewStorage(&cfg.Archive)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize archive storage")
	}
	if archive != nil {
		if err := archive.(*storage.S3Storage).EnsureBucket(context.Background()); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure archive bucket")
		}
		appLogger.Info("Crawl log archive enabled")
	}

	// Initialize services
	extractor, err := service.NewExtractor(&cfg.Extraction)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize extractor")
	}
	indexer := service.NewIndexer(elasticRepo)
	onboardService := service.NewOnboardService(extractor, indexer, jobStore, tenantRepo)
	crawlerService := service.NewCrawlerService(&cfg.Crawler, &cfg.Elastic, elasticRepo, crawlStore, archive)
	retriever := service.NewRetriever(elasticRepo, cfg.Retrieval.TopK)
	gemini := service.NewGeminiClient(&cfg.Gemini)
	answerService := service.NewAnswerService(retriever, gemini, &cfg.Persona)
	speechService := service.NewSpeechService(&cfg.Speech)

	// Setup router
	router := api.SetupRouter(&api.RouterConfig{
		OnboardService: onboardService,
		CrawlerService: crawlerService,
		AnswerService:  answerService,
		SpeechService:  speechService,
		TenantRepo:     tenantRepo,
		Mode:           cfg.Server.Mode,
		CORS: middleware.CORSConfig{
			AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
			AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
		},
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
