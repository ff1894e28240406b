package models

import (
	"time"

	"github.com/google/uuid"
)

type Transcript struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	VideoID          string           `json:"video_id" db:"video_id"`
	SourceURL        string           `json:"source_url" db:"source_url"`
	Title            string           `json:"title" db:"title"`
	Channel          string           `json:"channel" db:"channel"`
	UploadDate       string           `json:"date" db:"upload_date"`
	DurationSeconds  *int             `json:"duration,omitempty" db:"duration_seconds"`
	Transcript       string           `json:"transcript" db:"transcript"`
	ExtractionMethod string           `json:"extraction_method" db:"extraction_method"`
	Enhanced         bool             `json:"enhanced" db:"enhanced"`
	S3Key            string           `json:"-" db:"s3_key"`
	Status           TranscriptStatus `json:"status" db:"status"`
	ErrorMessage     *string          `json:"error_message,omitempty" db:"error_message"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

type TranscriptStatus string

const (
	TranscriptStatusPending    TranscriptStatus = "pending"
	TranscriptStatusProcessing TranscriptStatus = "processing"
	TranscriptStatusEnhancing  TranscriptStatus = "enhancing"
	TranscriptStatusCompleted  TranscriptStatus = "completed"
	TranscriptStatusFailed     TranscriptStatus = "failed"
)

type PaginationOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Sort  string `json:"sort"`
}

type TranscriptListOptions struct {
	PaginationOptions
	// Status narrows the listing to one processing state when set.
	Status TranscriptStatus
}

type ExtractRequest struct {
	URL     string `json:"url" binding:"required"`
	Quality string `json:"quality,omitempty"`
	Enhance bool   `json:"enhance,omitempty"`
}

type ExtractResponse struct {
	Status           string           `json:"status"`
	Message          string           `json:"message"`
	VideoID          string           `json:"video_id"`
	ProcessingStatus TranscriptStatus `json:"processing_status"`
}

type TranscriptListResponse struct {
	Total       int                  `json:"total"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	Transcripts []TranscriptListItem `json:"transcripts"`
}

type TranscriptListItem struct {
	VideoID          string           `json:"video_id"`
	Title            string           `json:"title"`
	Channel          string           `json:"channel"`
	UploadDate       string           `json:"date"`
	ExtractionMethod string           `json:"extraction_method,omitempty"`
	Enhanced         bool             `json:"enhanced"`
	Status           TranscriptStatus `json:"status"`
	AddedAt          time.Time        `json:"added_at"`
}

type DeleteTranscriptRequest struct {
	VideoID string `json:"video_id" binding:"required"`
}

type DeleteTranscriptResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	VideoID string `json:"video_id"`
}

type EnhanceRequest struct {
	VideoID string `json:"video_id" binding:"required"`
}

type EnhanceResponse struct {
	Status           string           `json:"status"`
	Message          string           `json:"message"`
	VideoID          string           `json:"video_id"`
	ProcessingStatus TranscriptStatus `json:"processing_status"`
}

type DownloadURIResponse struct {
	VideoID   string    `json:"video_id"`
	S3URL     string    `json:"s3_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type TokenRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}
