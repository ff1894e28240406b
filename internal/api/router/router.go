package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gadsdencode/Podster/internal/api/handlers"
	"github.com/gadsdencode/Podster/internal/api/middleware"
	"github.com/gadsdencode/Podster/internal/config"
	"github.com/gadsdencode/Podster/internal/services/auth"
)

type Router struct {
	engine *gin.Engine
	config *config.Config
}

func NewRouter(cfg *config.Config, transcriptHandler *handlers.TranscriptHandler, authHandler *handlers.AuthHandler, healthHandler *handlers.HealthHandler, jwtService *auth.JWTService) *Router {
	// Set Gin mode
	if cfg.Server.Host == "0.0.0.0" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Add middleware
	engine.Use(gin.Recovery())
	engine.Use(middleware.CorrelationIDMiddleware())

	// Health endpoints (no auth required)
	health := engine.Group("/")
	{
		health.GET("/health", healthHandler.Health)
		health.GET("/ready", healthHandler.Readiness)
		health.GET("/live", healthHandler.Liveness)
	}

	// Swagger documentation (no auth required)
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Token endpoints (no auth required)
	authGroup := engine.Group("/api/v1/auth")
	authGroup.Use(middleware.RateLimitMiddleware(&cfg.API))
	{
		authGroup.POST("/token", authHandler.Token)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	// API endpoints with authentication and rate limiting
	api := engine.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(&cfg.API, jwtService))
	api.Use(middleware.RateLimitMiddleware(&cfg.API))
	{
		// Transcript endpoints
		transcripts := api.Group("/transcripts")
		{
			transcripts.POST("/extract", transcriptHandler.ExtractTranscript)                  // /api/v1/transcripts/extract
			transcripts.GET("/list", transcriptHandler.ListTranscripts)                        // /api/v1/transcripts/list
			transcripts.GET("/info/:video_id", transcriptHandler.GetTranscript)                // /api/v1/transcripts/info/{video_id}
			transcripts.DELETE("/delete", transcriptHandler.DeleteTranscript)                  // /api/v1/transcripts/delete
			transcripts.POST("/enhance", transcriptHandler.EnhanceTranscript)                  // /api/v1/transcripts/enhance
			transcripts.GET("/download/:video_id", transcriptHandler.GetTranscriptDownloadURL) // /api/v1/transcripts/download/{video_id}
		}
	}

	return &Router{
		engine: engine,
		config: cfg,
	}
}

func (r *Router) Start() error {
	addr := r.config.Server.Host + ":" + r.config.Server.Port
	return r.engine.Run(addr)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
