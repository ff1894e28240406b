package utils

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	// Extraction failure taxonomy.
	ErrorCodeNotFound               ErrorCode = "NOT_FOUND"
	ErrorCodeNoCaptionsAvailable    ErrorCode = "NO_CAPTIONS_AVAILABLE"
	ErrorCodeBlocked                ErrorCode = "BLOCKED"
	ErrorCodeContentTooShort        ErrorCode = "CONTENT_TOO_SHORT"
	ErrorCodeParseFailure           ErrorCode = "PARSE_FAILURE"
	ErrorCodeDownstreamServiceError ErrorCode = "DOWNSTREAM_SERVICE_ERROR"
	ErrorCodeAllStrategiesExhausted ErrorCode = "ALL_STRATEGIES_EXHAUSTED"

	// Service-level codes.
	ErrorCodeTranscriptNotFound ErrorCode = "TRANSCRIPT_NOT_FOUND"
	ErrorCodeStorageError       ErrorCode = "STORAGE_ERROR"
	ErrorCodeDatabaseError      ErrorCode = "DATABASE_ERROR"
	ErrorCodeRateLimitExceeded  ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrorCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrorCodeInternalError      ErrorCode = "INTERNAL_ERROR"
	ErrorCodeValidationError    ErrorCode = "VALIDATION_ERROR"
)

type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

func NewErrorWithDetails(code ErrorCode, message string, statusCode int, details map[string]interface{}) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Common error constructors
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return NewErrorWithDetails(ErrorCodeValidationError, message, http.StatusBadRequest, details)
}

func NewVideoNotFoundError(input string) *AppError {
	return NewErrorWithDetails(
		ErrorCodeNotFound,
		"Could not extract a video ID from the provided input",
		http.StatusBadRequest,
		map[string]interface{}{
			"accepted_formats": "watch URL, youtu.be short link, embed URL, /v/ URL, shorts URL, or a bare 11-character ID",
			"provided":         input,
		},
	)
}

func NewNoCaptionsError(videoID string) *AppError {
	return NewErrorWithDetails(
		ErrorCodeNoCaptionsAvailable,
		"No captions exist for this video",
		http.StatusNotFound,
		map[string]interface{}{"video_id": videoID},
	)
}

func NewBlockedError(detail string) *AppError {
	return NewErrorWithDetails(
		ErrorCodeBlocked,
		"The platform is blocking automated access from this environment; an alternate extraction method may succeed",
		http.StatusForbidden,
		map[string]interface{}{"detail": detail},
	)
}

func NewContentTooShortError(length int) *AppError {
	return NewErrorWithDetails(
		ErrorCodeContentTooShort,
		"Extracted content is too short to be a real transcript",
		http.StatusUnprocessableEntity,
		map[string]interface{}{
			"length":     length,
			"min_length": 50,
		},
	)
}

func NewParseFailureError(format string) *AppError {
	return NewErrorWithDetails(
		ErrorCodeParseFailure,
		"Caption payload was present but could not be parsed by any known format",
		http.StatusUnprocessableEntity,
		map[string]interface{}{"sniffed_format": format},
	)
}

func NewDownstreamServiceError(service string, err error) *AppError {
	return NewErrorWithDetails(
		ErrorCodeDownstreamServiceError,
		fmt.Sprintf("Downstream %s service failed", service),
		http.StatusBadGateway,
		map[string]interface{}{"cause": err.Error()},
	)
}

func NewAllStrategiesExhaustedError(videoID string, attempts []map[string]interface{}) *AppError {
	return NewErrorWithDetails(
		ErrorCodeAllStrategiesExhausted,
		"Every extraction strategy failed for this video",
		http.StatusBadGateway,
		map[string]interface{}{
			"video_id": videoID,
			"attempts": attempts,
		},
	)
}

func NewTranscriptNotFoundError(videoID string) *AppError {
	return NewError(
		ErrorCodeTranscriptNotFound,
		fmt.Sprintf("Transcript for video %s not found", videoID),
		http.StatusNotFound,
	)
}

func NewDatabaseError(err error) *AppError {
	return NewError(
		ErrorCodeDatabaseError,
		"Database operation failed",
		http.StatusInternalServerError,
	)
}

func NewStorageError(err error) *AppError {
	return NewError(
		ErrorCodeStorageError,
		"Artifact storage operation failed",
		http.StatusInternalServerError,
	)
}

func NewUnauthorizedError() *AppError {
	return NewError(
		ErrorCodeUnauthorized,
		"Invalid or missing authentication",
		http.StatusUnauthorized,
	)
}

func NewRateLimitError() *AppError {
	return NewError(
		ErrorCodeRateLimitExceeded,
		"Too many requests",
		http.StatusTooManyRequests,
	)
}

func NewInternalError() *AppError {
	return NewError(
		ErrorCodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)
}
