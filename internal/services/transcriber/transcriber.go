package transcriber

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/gadsdencode/Podster/internal/config"
	"github.com/gadsdencode/Podster/internal/models"
	"github.com/gadsdencode/Podster/internal/services/extractor"
	"github.com/gadsdencode/Podster/internal/services/metadata"
	"github.com/gadsdencode/Podster/internal/utils"
)

const (
	// DefaultDownloadExpiry bounds presigned transcript download links.
	DefaultDownloadExpiry = 15 * time.Minute

	// statusWriteTimeout bounds the status updates written after a run ends,
	// which must not reuse the run's possibly-expired context.
	statusWriteTimeout = 10 * time.Second
)

// Database is the subset of persistence operations the transcriber drives.
type Database interface {
	CreateTranscript(ctx context.Context, transcript *models.Transcript) error
	GetTranscriptByVideoID(ctx context.Context, videoID string) (*models.Transcript, error)
	UpdateTranscript(ctx context.Context, transcript *models.Transcript) error
	UpdateTranscriptStatus(ctx context.Context, videoID string, status models.TranscriptStatus, errorMessage *string) error
	DeleteTranscript(ctx context.Context, videoID string) error
}

// ArtifactStore persists transcript text artifacts alongside the database
// record and serves presigned download links for them.
type ArtifactStore interface {
	Save(ctx context.Context, videoID, text, extractionMethod string) (string, error)
	Delete(ctx context.Context, videoID string) error
	DownloadURL(ctx context.Context, videoID string, expiry time.Duration) (string, error)
}

// ExtractionChain runs the strategy chain for one video.
type ExtractionChain interface {
	Run(ctx context.Context, videoID string) (*extractor.Result, error)
}

// ChainFactory builds a chain for the requested transcription quality tier.
// Only the audio strategy cares about the tier; the caption strategies are
// identical across tiers.
type ChainFactory func(quality string) ExtractionChain

// MetadataResolver assembles display metadata for a video.
type MetadataResolver interface {
	Resolve(ctx context.Context, videoID string) *metadata.VideoMetadata
}

// Enhancer cleans up raw transcript text.
type Enhancer interface {
	Enabled() bool
	Enhance(ctx context.Context, text string) (string, error)
}

// URLParser validates YouTube URLs and extracts video IDs.
type URLParser interface {
	ParseYouTubeURL(url string) (string, error)
	IsYouTubeURL(url string) bool
}

// Service orchestrates transcript extraction: it deduplicates requests,
// bounds concurrency, drives the strategy chain, resolves metadata and
// assembles the stored record.
type Service struct {
	db             Database
	store          ArtifactStore
	resolver       MetadataResolver
	enhancer       Enhancer
	parser         URLParser
	newChain       ChainFactory
	config         *config.ExtractConfig
	defaultQuality string
	autoEnhance    bool
	semaphore      chan struct{}
	mu             sync.Mutex
	inflight       map[string]struct{}
}

func NewService(db Database, store ArtifactStore, resolver MetadataResolver, enhancer Enhancer, parser URLParser, newChain ChainFactory, cfg *config.Config) *Service {
	workers := cfg.Extract.MaxConcurrentExtractions
	if workers <= 0 {
		workers = 1
	}
	return &Service{
		db:             db,
		store:          store,
		resolver:       resolver,
		enhancer:       enhancer,
		parser:         parser,
		newChain:       newChain,
		config:         &cfg.Extract,
		defaultQuality: cfg.Whisper.Quality,
		autoEnhance:    cfg.Enhancer.AutoEnhance,
		semaphore:      make(chan struct{}, workers),
		inflight:       make(map[string]struct{}),
	}
}

// Extract starts transcript extraction for a video URL. The returned record
// reflects the state at return time; the chain itself runs asynchronously.
// A video already completed returns its record as-is, and a video already
// being processed is never run twice.
func (s *Service) Extract(ctx context.Context, req *models.ExtractRequest) (*models.Transcript, error) {
	videoID, err := s.parser.ParseYouTubeURL(req.URL)
	if err != nil {
		return nil, utils.NewVideoNotFoundError(req.URL)
	}

	if !s.markInflight(videoID) {
		existing, err := s.db.GetTranscriptByVideoID(ctx, videoID)
		if err != nil {
			return nil, utils.NewDatabaseError(err)
		}
		if existing != nil {
			return existing, nil
		}
		// The concurrent request is still creating the record.
		return &models.Transcript{
			VideoID:   videoID,
			SourceURL: req.URL,
			Status:    models.TranscriptStatusPending,
		}, nil
	}

	existing, err := s.db.GetTranscriptByVideoID(ctx, videoID)
	if err != nil {
		s.clearInflight(videoID)
		return nil, utils.NewDatabaseError(err)
	}

	if existing != nil && existing.Status == models.TranscriptStatusCompleted {
		s.clearInflight(videoID)
		return existing, nil
	}

	// Failed and interrupted runs are retried from scratch.
	transcript := &models.Transcript{
		VideoID:   videoID,
		SourceURL: req.URL,
		Status:    models.TranscriptStatusPending,
	}
	if existing != nil {
		transcript.ID = existing.ID
		transcript.CreatedAt = existing.CreatedAt
	}

	if err := s.saveTranscript(ctx, transcript); err != nil {
		s.clearInflight(videoID)
		return nil, utils.NewDatabaseError(err)
	}

	quality := req.Quality
	if quality == "" {
		quality = s.defaultQuality
	}
	enhance := req.Enhance || s.autoEnhance

	go s.process(context.Background(), transcript, quality, enhance)

	return transcript, nil
}

func (s *Service) process(ctx context.Context, transcript *models.Transcript, quality string, enhance bool) {
	defer s.clearInflight(transcript.VideoID)

	// Bound concurrent extractions
	s.semaphore <- struct{}{}
	defer func() { <-s.semaphore }()

	ctx, cancel := context.WithTimeout(ctx, s.config.ExtractionTimeout)
	defer cancel()

	if err := s.db.UpdateTranscriptStatus(ctx, transcript.VideoID, models.TranscriptStatusProcessing, nil); err != nil {
		utils.LogError(ctx, "Failed to update transcript status", err)
		return
	}

	result, err := s.newChain(quality).Run(ctx, transcript.VideoID)
	if err != nil {
		s.fail(transcript.VideoID, err)
		return
	}

	// The chain already enforces the threshold; re-validate before persisting
	// so no path can store a thin transcript.
	text := strings.TrimSpace(result.Text)
	if length := utf8.RuneCountInString(text); length < extractor.MinContentLength {
		s.fail(transcript.VideoID, utils.NewContentTooShortError(length))
		return
	}

	meta := s.resolver.Resolve(ctx, transcript.VideoID)

	s3Key, err := s.store.Save(ctx, transcript.VideoID, text, result.Method)
	if err != nil {
		s.fail(transcript.VideoID, utils.NewStorageError(err))
		return
	}

	transcript.Title = meta.Title
	transcript.Channel = meta.Channel
	transcript.UploadDate = meta.UploadDate
	transcript.DurationSeconds = meta.DurationSeconds
	transcript.Transcript = text
	transcript.ExtractionMethod = result.Method
	transcript.S3Key = s3Key
	transcript.Status = models.TranscriptStatusCompleted
	transcript.ErrorMessage = nil

	if enhance && s.enhancer != nil && s.enhancer.Enabled() {
		transcript.Status = models.TranscriptStatusEnhancing
	}

	if err := s.db.UpdateTranscript(ctx, transcript); err != nil {
		utils.LogError(ctx, "Failed to save transcript record", err, utils.Fields{
			"video_id": transcript.VideoID,
		})
		return
	}

	utils.LogInfo(ctx, "Transcript extraction completed", utils.Fields{
		"video_id": transcript.VideoID,
		"method":   result.Method,
		"length":   utf8.RuneCountInString(text),
	})

	if transcript.Status == models.TranscriptStatusEnhancing {
		s.enhance(ctx, transcript)
	}
}

// enhance rewrites the transcript through the enhancement service. Failures
// keep the raw transcript and return the record to completed; a finished
// extraction is never lost to a failed cleanup pass.
func (s *Service) enhance(ctx context.Context, transcript *models.Transcript) {
	enhanced, err := s.enhancer.Enhance(ctx, transcript.Transcript)
	if err != nil {
		utils.LogWarn(ctx, "Transcript enhancement failed, keeping raw transcript", utils.Fields{
			"video_id": transcript.VideoID,
			"error":    err.Error(),
		})
		writeCtx, cancel := context.WithTimeout(context.Background(), statusWriteTimeout)
		defer cancel()
		msg := "enhancement failed: " + err.Error()
		if dbErr := s.db.UpdateTranscriptStatus(writeCtx, transcript.VideoID, models.TranscriptStatusCompleted, &msg); dbErr != nil {
			utils.LogError(writeCtx, "Failed to restore transcript status", dbErr)
		}
		return
	}

	transcript.Transcript = enhanced
	transcript.Enhanced = true
	transcript.Status = models.TranscriptStatusCompleted
	transcript.ErrorMessage = nil

	if _, err := s.store.Save(ctx, transcript.VideoID, enhanced, transcript.ExtractionMethod); err != nil {
		// The database still carries the enhanced text; only the artifact
		// copy is stale.
		utils.LogWarn(ctx, "Failed to refresh stored artifact with enhanced transcript", utils.Fields{
			"video_id": transcript.VideoID,
			"error":    err.Error(),
		})
	}

	if err := s.db.UpdateTranscript(ctx, transcript); err != nil {
		utils.LogError(ctx, "Failed to save enhanced transcript", err, utils.Fields{
			"video_id": transcript.VideoID,
		})
		return
	}

	utils.LogInfo(ctx, "Transcript enhancement completed", utils.Fields{
		"video_id": transcript.VideoID,
	})
}

// Enhance starts enhancement of an already extracted transcript. Like
// Extract it returns immediately; the rewrite runs asynchronously.
func (s *Service) Enhance(ctx context.Context, videoID string) (*models.Transcript, error) {
	if s.enhancer == nil || !s.enhancer.Enabled() {
		return nil, utils.NewValidationError("transcript enhancement is not configured", nil)
	}

	transcript, err := s.db.GetTranscriptByVideoID(ctx, videoID)
	if err != nil {
		return nil, utils.NewDatabaseError(err)
	}
	if transcript == nil {
		return nil, utils.NewTranscriptNotFoundError(videoID)
	}
	if transcript.Enhanced {
		return transcript, nil
	}
	if transcript.Status != models.TranscriptStatusCompleted {
		return nil, utils.NewValidationError("transcript is not ready for enhancement", map[string]interface{}{
			"video_id": videoID,
			"status":   transcript.Status,
		})
	}

	if err := s.db.UpdateTranscriptStatus(ctx, videoID, models.TranscriptStatusEnhancing, nil); err != nil {
		return nil, utils.NewDatabaseError(err)
	}
	transcript.Status = models.TranscriptStatusEnhancing

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.ExtractionTimeout)
		defer cancel()
		s.enhance(ctx, transcript)
	}()

	return transcript, nil
}

// Delete removes a transcript record and its stored artifact. The database
// row is authoritative; artifact deletion is best effort.
func (s *Service) Delete(ctx context.Context, videoID string) error {
	transcript, err := s.db.GetTranscriptByVideoID(ctx, videoID)
	if err != nil {
		return utils.NewDatabaseError(err)
	}
	if transcript == nil {
		return utils.NewTranscriptNotFoundError(videoID)
	}

	if err := s.db.DeleteTranscript(ctx, videoID); err != nil {
		return utils.NewDatabaseError(err)
	}

	if transcript.S3Key != "" {
		if err := s.store.Delete(ctx, videoID); err != nil {
			utils.LogWarn(ctx, "Failed to delete stored transcript artifact", utils.Fields{
				"video_id": videoID,
				"error":    err.Error(),
			})
		}
	}

	return nil
}

// DownloadURL returns a presigned link to the stored transcript artifact.
func (s *Service) DownloadURL(ctx context.Context, videoID string, expiry time.Duration) (*models.DownloadURIResponse, error) {
	if expiry <= 0 {
		expiry = DefaultDownloadExpiry
	}

	transcript, err := s.db.GetTranscriptByVideoID(ctx, videoID)
	if err != nil {
		return nil, utils.NewDatabaseError(err)
	}
	if transcript == nil {
		return nil, utils.NewTranscriptNotFoundError(videoID)
	}
	if transcript.S3Key == "" {
		return nil, utils.NewValidationError("transcript has no stored artifact yet", map[string]interface{}{
			"video_id": videoID,
			"status":   transcript.Status,
		})
	}

	url, err := s.store.DownloadURL(ctx, videoID, expiry)
	if err != nil {
		return nil, utils.NewStorageError(err)
	}

	return &models.DownloadURIResponse{
		VideoID:   videoID,
		S3URL:     url,
		ExpiresAt: time.Now().Add(expiry),
	}, nil
}

func (s *Service) fail(videoID string, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), statusWriteTimeout)
	defer cancel()

	utils.LogError(ctx, "Transcript extraction failed", cause, utils.Fields{
		"video_id": videoID,
	})

	msg := cause.Error()
	var appErr *utils.AppError
	if errors.As(cause, &appErr) {
		msg = appErr.Message
	}
	if err := s.db.UpdateTranscriptStatus(ctx, videoID, models.TranscriptStatusFailed, &msg); err != nil {
		utils.LogError(ctx, "Failed to mark transcript as failed", err)
	}
}

func (s *Service) saveTranscript(ctx context.Context, transcript *models.Transcript) error {
	if transcript.ID == uuid.Nil {
		return s.db.CreateTranscript(ctx, transcript)
	}
	return s.db.UpdateTranscript(ctx, transcript)
}

func (s *Service) markInflight(videoID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[videoID]; busy {
		return false
	}
	s.inflight[videoID] = struct{}{}
	return true
}

func (s *Service) clearInflight(videoID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, videoID)
}
