package api

import (
	"github.com/gin-gonic/gin"
	"github.com/teampop/popcommerce/internal/api/handler"
	"github.com/teampop/popcommerce/internal/api/middleware"
	"github.com/teampop/popcommerce/internal/repository"
	"github.com/teampop/popcommerce/internal/service"
)

// RouterConfig bundles the services the router exposes.
type RouterConfig struct {
	OnboardService *service.OnboardService
	CrawlerService *service.CrawlerService
	AnswerService  *service.AnswerService
	SpeechService  *service.SpeechService
	TenantRepo     *repository.TenantRepository
	Mode           string
	CORS           middleware.CORSConfig
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(cfg *RouterConfig) *gin.Engine {
	// Set Gin mode
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORS(cfg.CORS))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	onboardHandler := handler.NewOnboardHandler(cfg.OnboardService, cfg.TenantRepo)
	crawlHandler := handler.NewCrawlHandler(cfg.CrawlerService)
	chatHandler := handler.NewChatHandler(cfg.AnswerService)
	speechHandler := handler.NewSpeechHandler(cfg.SpeechService)

	// Health check
	r.GET("/health", healthHandler.Health)

	// Voice widget endpoints, flat paths for the embedded frontend
	r.POST("/chat", chatHandler.Chat)
	r.POST("/stt", speechHandler.SpeechToText)
	r.POST("/tts", speechHandler.TextToSpeech)

	// API routes
	api := r.Group("/api")
	{
		// Onboarding
		api.POST("/onboard", onboardHandler.StartOnboard)
		api.GET("/job/:id", onboardHandler.GetJob)
		api.GET("/tenants", onboardHandler.ListTenants)

		// Crawling
		api.POST("/crawl", crawlHandler.StartCrawl)
		api.GET("/crawl/status", crawlHandler.GetStatus)
		api.GET("/crawl/count", crawlHandler.GetCount)
	}

	return r
}
