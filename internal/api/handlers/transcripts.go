package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gadsdencode/Podster/internal/models"
	"github.com/gadsdencode/Podster/internal/utils"
)

// TranscriberService drives extraction workflows on behalf of the API.
type TranscriberService interface {
	Extract(ctx context.Context, req *models.ExtractRequest) (*models.Transcript, error)
	Enhance(ctx context.Context, videoID string) (*models.Transcript, error)
	Delete(ctx context.Context, videoID string) error
	DownloadURL(ctx context.Context, videoID string, expiry time.Duration) (*models.DownloadURIResponse, error)
}

// TranscriptReader serves stored transcript records.
type TranscriptReader interface {
	GetTranscriptByVideoID(ctx context.Context, videoID string) (*models.Transcript, error)
	ListTranscripts(ctx context.Context, opts models.TranscriptListOptions) ([]models.Transcript, int, error)
}

type TranscriptHandler struct {
	db      TranscriptReader
	service TranscriberService
}

func NewTranscriptHandler(db TranscriptReader, service TranscriberService) *TranscriptHandler {
	return &TranscriptHandler{
		db:      db,
		service: service,
	}
}

// ExtractTranscript godoc
// @Summary Extract a YouTube video transcript
// @Description Start transcript extraction for a YouTube video URL. Extraction runs asynchronously through caption and audio fallback strategies; poll the info endpoint for completion.
// @Tags transcripts
// @Accept json
// @Produce json
// @Param request body models.ExtractRequest true "Video URL with optional quality tier and enhancement flag"
// @Success 200 {object} models.ExtractResponse "Transcript already available"
// @Success 202 {object} models.ExtractResponse "Extraction started"
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/transcripts/extract [post]
// @Security BearerAuth
func (h *TranscriptHandler) ExtractTranscript(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, utils.NewValidationError("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		}))
		return
	}

	transcript, err := h.service.Extract(ctx, &req)
	if err != nil {
		if appErr, ok := err.(*utils.AppError); ok {
			h.errorResponse(c, appErr)
		} else {
			utils.LogError(ctx, "Failed to start extraction", err)
			h.errorResponse(c, utils.NewInternalError())
		}
		return
	}

	message := "Transcript extraction started"
	statusCode := http.StatusAccepted
	if transcript.Status == models.TranscriptStatusCompleted {
		message = "Transcript already available"
		statusCode = http.StatusOK
	}

	c.JSON(statusCode, models.ExtractResponse{
		Status:           "success",
		Message:          message,
		VideoID:          transcript.VideoID,
		ProcessingStatus: transcript.Status,
	})
}

// GetTranscript godoc
// @Summary Get a transcript record
// @Description Retrieve the full transcript record for a video, including text, metadata and processing status
// @Tags transcripts
// @Produce json
// @Param video_id path string true "YouTube video ID"
// @Success 200 {object} models.Transcript
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/transcripts/info/{video_id} [get]
// @Security BearerAuth
func (h *TranscriptHandler) GetTranscript(c *gin.Context) {
	ctx := c.Request.Context()
	videoID := c.Param("video_id")

	transcript, err := h.db.GetTranscriptByVideoID(ctx, videoID)
	if err != nil {
		utils.LogError(ctx, "Failed to find transcript", err)
		h.errorResponse(c, utils.NewDatabaseError(err))
		return
	}
	if transcript == nil {
		h.errorResponse(c, utils.NewTranscriptNotFoundError(videoID))
		return
	}

	c.JSON(http.StatusOK, transcript)
}

// ListTranscripts godoc
// @Summary List stored transcripts
// @Description Retrieve a paginated listing of transcript records, newest first
// @Tags transcripts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param status query string false "Filter by processing status" Enums(pending, processing, enhancing, completed, failed)
// @Success 200 {object} models.TranscriptListResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/transcripts/list [get]
// @Security BearerAuth
func (h *TranscriptHandler) ListTranscripts(c *gin.Context) {
	ctx := c.Request.Context()

	// Parse pagination parameters
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	status := models.TranscriptStatus(c.Query("status"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	switch status {
	case "", models.TranscriptStatusPending, models.TranscriptStatusProcessing,
		models.TranscriptStatusEnhancing, models.TranscriptStatusCompleted,
		models.TranscriptStatusFailed:
	default:
		h.errorResponse(c, utils.NewValidationError("Unknown status filter", map[string]interface{}{
			"status": status,
		}))
		return
	}

	transcripts, total, err := h.db.ListTranscripts(ctx, models.TranscriptListOptions{
		PaginationOptions: models.PaginationOptions{
			Page:  page,
			Limit: limit,
		},
		Status: status,
	})
	if err != nil {
		utils.LogError(ctx, "Failed to list transcripts", err)
		h.errorResponse(c, utils.NewDatabaseError(err))
		return
	}

	// Convert to response format
	items := make([]models.TranscriptListItem, len(transcripts))
	for i, transcript := range transcripts {
		items[i] = models.TranscriptListItem{
			VideoID:          transcript.VideoID,
			Title:            transcript.Title,
			Channel:          transcript.Channel,
			UploadDate:       transcript.UploadDate,
			ExtractionMethod: transcript.ExtractionMethod,
			Enhanced:         transcript.Enhanced,
			Status:           transcript.Status,
			AddedAt:          transcript.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, models.TranscriptListResponse{
		Total:       total,
		Page:        page,
		Limit:       limit,
		Transcripts: items,
	})
}

// DeleteTranscript godoc
// @Summary Delete a transcript
// @Description Delete a transcript record from the database and its stored text artifact
// @Tags transcripts
// @Accept json
// @Produce json
// @Param request body models.DeleteTranscriptRequest true "Video ID to delete"
// @Success 200 {object} models.DeleteTranscriptResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/transcripts/delete [delete]
// @Security BearerAuth
func (h *TranscriptHandler) DeleteTranscript(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.DeleteTranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, utils.NewValidationError("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		}))
		return
	}

	if err := h.service.Delete(ctx, req.VideoID); err != nil {
		if appErr, ok := err.(*utils.AppError); ok {
			h.errorResponse(c, appErr)
		} else {
			utils.LogError(ctx, "Failed to delete transcript", err)
			h.errorResponse(c, utils.NewInternalError())
		}
		return
	}

	c.JSON(http.StatusOK, models.DeleteTranscriptResponse{
		Status:  "success",
		Message: "Transcript deleted successfully",
		VideoID: req.VideoID,
	})
}

// EnhanceTranscript godoc
// @Summary Enhance a transcript
// @Description Re-run language model enhancement over a completed transcript. Enhancement runs asynchronously; poll the info endpoint for completion.
// @Tags transcripts
// @Accept json
// @Produce json
// @Param request body models.EnhanceRequest true "Video ID to enhance"
// @Success 200 {object} models.EnhanceResponse "Transcript already enhanced"
// @Success 202 {object} models.EnhanceResponse "Enhancement started"
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/transcripts/enhance [post]
// @Security BearerAuth
func (h *TranscriptHandler) EnhanceTranscript(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.EnhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, utils.NewValidationError("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		}))
		return
	}

	transcript, err := h.service.Enhance(ctx, req.VideoID)
	if err != nil {
		if appErr, ok := err.(*utils.AppError); ok {
			h.errorResponse(c, appErr)
		} else {
			utils.LogError(ctx, "Failed to start enhancement", err)
			h.errorResponse(c, utils.NewInternalError())
		}
		return
	}

	message := "Transcript enhancement started"
	statusCode := http.StatusAccepted
	if transcript.Enhanced {
		message = "Transcript already enhanced"
		statusCode = http.StatusOK
	}

	c.JSON(statusCode, models.EnhanceResponse{
		Status:           "success",
		Message:          message,
		VideoID:          transcript.VideoID,
		ProcessingStatus: transcript.Status,
	})
}

// GetTranscriptDownloadURL godoc
// @Summary Get a transcript download link
// @Description Get a pre-signed S3 URL for the plain-text transcript artifact with configurable expiration
// @Tags transcripts
// @Produce json
// @Param video_id path string true "YouTube video ID"
// @Param expiry_minutes query int false "Link validity in minutes" default(15)
// @Success 200 {object} models.DownloadURIResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/transcripts/download/{video_id} [get]
// @Security BearerAuth
func (h *TranscriptHandler) GetTranscriptDownloadURL(c *gin.Context) {
	ctx := c.Request.Context()
	videoID := c.Param("video_id")

	expiryMinutes, _ := strconv.Atoi(c.DefaultQuery("expiry_minutes", "15"))
	if expiryMinutes <= 0 || expiryMinutes > 24*60 {
		expiryMinutes = 15
	}

	response, err := h.service.DownloadURL(ctx, videoID, time.Duration(expiryMinutes)*time.Minute)
	if err != nil {
		if appErr, ok := err.(*utils.AppError); ok {
			h.errorResponse(c, appErr)
		} else {
			utils.LogError(ctx, "Failed to generate download URL", err)
			h.errorResponse(c, utils.NewInternalError())
		}
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *TranscriptHandler) errorResponse(c *gin.Context, err *utils.AppError) {
	c.JSON(err.StatusCode, gin.H{
		"error":      err,
		"request_id": c.GetString("request_id"),
		"timestamp":  time.Now().Format(time.RFC3339),
	})
}
