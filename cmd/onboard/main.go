package main

import (
	"context"
	"flag"
	"time"

	"github.com/teampop/popcommerce/internal/config"
	"github.com/teampop/popcommerce/internal/domain"
	"github.com/teampop/popcommerce/internal/logger"
	"github.com/teampop/popcommerce/internal/repository"
	"github.com/teampop/popcommerce/internal/service"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "popcommerce-onboard",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	siteDomain := flag.String("domain", "", "Merchant domain or seed URL to onboard")
	tenantID := flag.String("tenant", "", "Existing tenant id to re-onboard under")
	strategy := flag.String("strategy", "", "Extraction strategy override (site or pages)")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *siteDomain == "" {
		appLogger.Fatal("Flag -domain is required")
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if *strategy != "" {
		cfg.Extraction.Strategy = *strategy
	}

	appLogger.WithFields(logger.Fields{
		"domain":   *siteDomain,
		"strategy": cfg.Extraction.Strategy,
	}).Info("Starting onboarding")

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories and services
	tenantRepo := repository.NewTenantRepository(db)
	elasticRepo := repository.NewElasticRepository(&repository.ElasticConnectionConfig{
		URL:         cfg.Elastic.URL,
		APIKey:      cfg.Elastic.APIKey,
		InferenceID: cfg.Elastic.InferenceID,
	})
	jobStore := repository.NewJobStore()

	extractor, err := service.NewExtractor(&cfg.Extraction)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize extractor")
	}
	indexer := service.NewIndexer(elasticRepo)
	onboardService := service.NewOnboardService(extractor, indexer, jobStore, tenantRepo)

	// Run the pipeline and poll the job until it settles
	job := onboardService.StartOnboard(context.Background(), *siteDomain, *tenantID)

	for {
		time.Sleep(2 * time.Second)
		job, err = onboardService.GetJob(job.ID)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to poll job")
		}
		if job.Status == domain.JobStatusCompleted || job.Status == domain.JobStatusFailed {
			break
		}
		appLogger.WithFields(logger.Fields{
			"job_id": job.ID,
			"status": job.Status,
		}).Info("Onboarding in progress")
	}

	if job.Status == domain.JobStatusFailed {
		appLogger.WithFields(logger.Fields{
			"job_id": job.ID,
			"error":  job.Error,
		}).Fatal("Onboarding failed")
	}

	appLogger.WithFields(logger.Fields{
		"job_id":        job.ID,
		"tenant_id":     job.TenantID,
		"product_count": job.ProductCount,
	}).Info("Onboarding completed")
}
