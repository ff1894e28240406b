// Package main provides the entry point for the Podster transcript service.
// @title Podster Transcript API
// @version 1.0
// @description A Go-based microservice that extracts, stores and enhances YouTube video transcripts.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.example.com/support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT access token with Bearer prefix

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description Static service API key

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/gadsdencode/Podster/docs" // Import for swagger docs
	"github.com/gadsdencode/Podster/internal/api/handlers"
	"github.com/gadsdencode/Podster/internal/api/router"
	"github.com/gadsdencode/Podster/internal/config"
	"github.com/gadsdencode/Podster/internal/database"
	"github.com/gadsdencode/Podster/internal/services/auth"
	"github.com/gadsdencode/Podster/internal/services/enhancer"
	"github.com/gadsdencode/Podster/internal/services/extractor"
	"github.com/gadsdencode/Podster/internal/services/metadata"
	"github.com/gadsdencode/Podster/internal/services/storage"
	"github.com/gadsdencode/Podster/internal/services/transcriber"
	"github.com/gadsdencode/Podster/internal/services/whisper"
	"github.com/gadsdencode/Podster/internal/services/youtube"
	"github.com/gadsdencode/Podster/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.GetLogger()
	logger.Info("Starting Podster transcript service")

	// Initialize database
	db, err := database.NewPostgresDB(&cfg.Postgres)
	if err != nil {
		logger.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}

	// Initialize S3 storage
	s3Storage, err := storage.NewStorage(&cfg.S3)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}
	transcriptStore := storage.NewTranscriptStore(s3Storage)

	// Initialize YouTube clients
	ytClient := youtube.NewClient(cfg)
	transcriptClient := youtube.NewTranscriptClient(&cfg.YouTube)
	dataAPIClient := youtube.NewDataAPIClient(&cfg.YouTube)
	if dataAPIClient.Configured() {
		logger.Info("YouTube Data API key configured, captions strategy enabled")
	} else {
		logger.Info("No YouTube Data API key, captions strategy will be skipped")
	}

	// Initialize transcription and enhancement services
	whisperClient := whisper.NewClient(&cfg.Whisper)
	enhancerClient := enhancer.NewClient(&cfg.Enhancer)
	resolver := metadata.NewResolver(&cfg.YouTube, dataAPIClient, ytClient)

	// The strategy chain is rebuilt per extraction so the audio fallback can
	// honor the requested quality tier
	newChain := func(quality string) transcriber.ExtractionChain {
		return extractor.NewChain(
			extractor.NewAPIStrategy(transcriptClient),
			extractor.NewDataAPIStrategy(dataAPIClient),
			extractor.NewScrapeStrategy(&cfg.YouTube),
			extractor.NewAudioStrategy(ytClient, whisperClient, quality),
		)
	}

	// Initialize transcriber service
	transcriberService := transcriber.NewService(db, transcriptStore, resolver, enhancerClient, ytClient, newChain, cfg)

	// Initialize JWT service
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: cfg.API.JWTSecret})

	// Initialize handlers
	transcriptHandler := handlers.NewTranscriptHandler(db, transcriberService)
	authHandler := handlers.NewAuthHandler(&cfg.API, jwtService)
	healthHandler := handlers.NewHealthHandler(db, s3Storage)

	// Initialize router
	r := router.NewRouter(cfg, transcriptHandler, authHandler, healthHandler, jwtService)

	// Start server
	go func() {
		logger.Infof("Starting server on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := r.Start(); err != nil {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Close database connection
	db.Close()

	logger.Info("Server shutdown complete")
}
