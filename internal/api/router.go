package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/modguard/internal/api/handler"
	"github.com/timmy/modguard/internal/api/middleware"
	"github.com/timmy/modguard/internal/config"
	"github.com/timmy/modguard/internal/logger"
	"github.com/timmy/modguard/internal/service"
)

// Services bundles the core services the HTTP layer exposes.
type Services struct {
	Profanity  *service.ProfanityService
	Moderation *service.ModerationService
}

// SetupRouter configures the Gin router with all routes.
// Parameters:
//   - svc: core services.
//   - cfg: server settings (mode, CORS, rate limit, admin token).
//   - limiter: per-IP limiter for routes that may reach the model; nil disables it.
//   - log: base request logger.
// Returns:
//   - *gin.Engine: configured router.
func SetupRouter(svc Services, cfg config.ServerConfig, limiter *middleware.IPRateLimiter, log *logger.Logger) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	if log == nil {
		log = logger.GetDefault()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(cfg.CORS))

	healthHandler := handler.NewHealthHandler()
	profanityHandler := handler.NewProfanityHandler(svc.Profanity)
	textHandler := handler.NewTextHandler(svc.Moderation, svc.Profanity)
	sentimentHandler := handler.NewSentimentHandler(svc.Moderation)

	limit := middleware.RateLimit(limiter)

	r.GET("/", healthHandler.Home)
	r.GET("/health", healthHandler.Health)

	apiGroup := r.Group("/api")
	{
		profanity := apiGroup.Group("/profanity")
		profanity.POST("/check", limit, profanityHandler.Check)
		profanity.GET("/word/:word", profanityHandler.IsSwearWord)

		text := apiGroup.Group("/text")
		text.POST("/submit", limit, textHandler.Submit)
		text.GET("/history", textHandler.History)
		text.POST("/word", middleware.AdminAuth(cfg.AdminToken), textHandler.AddWord)

		sentiment := apiGroup.Group("/sentiment")
		sentiment.POST("/analyze", limit, sentimentHandler.Analyze)
	}

	return r
}
