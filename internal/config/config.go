package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	S3       S3Config
	YouTube  YouTubeConfig
	Whisper  WhisperConfig
	Enhancer EnhancerConfig
	API      APIConfig
	Extract  ExtractConfig
}

type ServerConfig struct {
	Port string
	Host string
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	Timeout  time.Duration
}

type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	EndpointURL     string
}

type YouTubeConfig struct {
	// DataAPIKey enables the authenticated captions strategy and the Data API
	// metadata probe. Empty means both are skipped.
	DataAPIKey       string
	Languages        []string
	RequestTimeout   time.Duration
	PageFetchRetries int
}

type WhisperConfig struct {
	ServiceURL string
	Quality    string
	Timeout    time.Duration
}

type EnhancerConfig struct {
	// APIKey empty disables enhancement entirely.
	APIKey       string
	BaseURL      string
	Model        string
	MaxChunkSize int
	AutoEnhance  bool
	Timeout      time.Duration
}

type APIConfig struct {
	APIKey            string
	JWTSecret         string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

type ExtractConfig struct {
	MaxConcurrentExtractions int
	ExtractionTimeout        time.Duration
	MaxAudioBytes            int64
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("SERVER_PORT", "8080")
	cfg.Server.Host = getEnv("SERVER_HOST", "0.0.0.0")

	// PostgreSQL configuration
	cfg.Postgres.Host = getEnv("POSTGRES_HOST", "localhost")
	cfg.Postgres.Port = getEnvInt("POSTGRES_PORT", 5432)
	cfg.Postgres.User = getEnvRequired("POSTGRES_USER")
	cfg.Postgres.Password = getEnvRequired("POSTGRES_PASSWORD")
	cfg.Postgres.Database = getEnv("POSTGRES_DATABASE", "podster")
	cfg.Postgres.SSLMode = getEnv("POSTGRES_SSLMODE", "disable")
	pgTimeout, err := time.ParseDuration(getEnv("POSTGRES_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid POSTGRES_TIMEOUT: %w", err)
	}
	cfg.Postgres.Timeout = pgTimeout

	// S3 configuration
	cfg.S3.Region = getEnv("AWS_REGION", "us-east-1")
	cfg.S3.BucketName = getEnvRequired("S3_BUCKET_NAME")
	cfg.S3.EndpointURL = getEnv("AWS_ENDPOINT_URL", "") // Optional for LocalStack
	cfg.S3.AccessKeyID = getEnvRequired("AWS_ACCESS_KEY_ID")
	cfg.S3.SecretAccessKey = getEnvRequired("AWS_SECRET_ACCESS_KEY")

	// YouTube configuration
	cfg.YouTube.DataAPIKey = getEnv("YOUTUBE_DATA_API_KEY", "")
	cfg.YouTube.Languages = getEnvStringSlice("YOUTUBE_LANGUAGES", []string{"en", "en-US", "en-GB"})
	ytTimeout, err := time.ParseDuration(getEnv("YOUTUBE_REQUEST_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid YOUTUBE_REQUEST_TIMEOUT: %w", err)
	}
	cfg.YouTube.RequestTimeout = ytTimeout
	cfg.YouTube.PageFetchRetries = getEnvInt("YOUTUBE_PAGE_FETCH_RETRIES", 3)

	// Whisper transcription service configuration
	cfg.Whisper.ServiceURL = getEnv("WHISPER_SERVICE_URL", "http://localhost:9000")
	cfg.Whisper.Quality = getEnv("WHISPER_QUALITY", "balanced")
	whisperTimeout, err := time.ParseDuration(getEnv("WHISPER_TIMEOUT", "300s"))
	if err != nil {
		return nil, fmt.Errorf("invalid WHISPER_TIMEOUT: %w", err)
	}
	cfg.Whisper.Timeout = whisperTimeout

	// Enhancement service configuration
	cfg.Enhancer.APIKey = getEnv("ENHANCER_API_KEY", "")
	cfg.Enhancer.BaseURL = getEnv("ENHANCER_BASE_URL", "https://api.openai.com/v1")
	cfg.Enhancer.Model = getEnv("ENHANCER_MODEL", "gpt-4o")
	cfg.Enhancer.MaxChunkSize = getEnvInt("ENHANCER_MAX_CHUNK_SIZE", 3000)
	cfg.Enhancer.AutoEnhance = getEnvBool("ENHANCER_AUTO_ENHANCE", false)
	enhancerTimeout, err := time.ParseDuration(getEnv("ENHANCER_TIMEOUT", "120s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENHANCER_TIMEOUT: %w", err)
	}
	cfg.Enhancer.Timeout = enhancerTimeout

	// API configuration
	cfg.API.APIKey = getEnvRequired("API_KEY")
	cfg.API.JWTSecret = getEnv("JWT_SECRET", "dev-jwt-secret-change-in-production-must-be-at-least-32-chars")
	cfg.API.RateLimitRequests = getEnvInt("RATE_LIMIT_REQUESTS", 100)
	rateLimitWindow, err := time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}
	cfg.API.RateLimitWindow = rateLimitWindow

	// Extraction configuration
	cfg.Extract.MaxConcurrentExtractions = getEnvInt("MAX_CONCURRENT_EXTRACTIONS", 3)
	extractionTimeout, err := time.ParseDuration(getEnv("EXTRACTION_TIMEOUT", "600s"))
	if err != nil {
		return nil, fmt.Errorf("invalid EXTRACTION_TIMEOUT: %w", err)
	}
	cfg.Extract.ExtractionTimeout = extractionTimeout
	cfg.Extract.MaxAudioBytes = getEnvInt64("MAX_AUDIO_BYTES", 512*1024*1024) // 512MB default

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(strings.TrimSpace(value), ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
