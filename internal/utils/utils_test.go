package utils

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func TestGenerateIDs(t *testing.T) {
	correlationID := GenerateCorrelationID()
	if correlationID == "" {
		t.Error("Expected non-empty correlation ID")
	}

	requestID := GenerateRequestID()
	if requestID == "" {
		t.Error("Expected non-empty request ID")
	}

	// Check that IDs are different
	if correlationID == requestID {
		t.Error("Correlation ID and request ID should be different")
	}
}

func TestGenerateRandomHex(t *testing.T) {
	hex, err := GenerateRandomHex(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hex) != 32 {
		t.Errorf("len = %d, want 32 (two hex chars per byte)", len(hex))
	}

	other, err := GenerateRandomHex(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hex == other {
		t.Error("two generated values should not collide")
	}
}

func TestAppErrorFormat(t *testing.T) {
	testCases := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "Blocked error",
			err:      NewBlockedError("ip belonging to a cloud provider"),
			expected: "[BLOCKED] The platform is blocking automated access from this environment; an alternate extraction method may succeed",
		},
		{
			name:     "Content too short",
			err:      NewContentTooShortError(12),
			expected: "[CONTENT_TOO_SHORT] Extracted content is too short to be a real transcript",
		},
		{
			name:     "Transcript not found",
			err:      NewTranscriptNotFoundError("dQw4w9WgXcQ"),
			expected: "[TRANSCRIPT_NOT_FOUND] Transcript for video dQw4w9WgXcQ not found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.expected {
				t.Errorf("Error() = %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestAppErrorStatusCodes(t *testing.T) {
	testCases := []struct {
		name   string
		err    *AppError
		status int
	}{
		{"NotFound", NewVideoNotFoundError("garbage"), 400},
		{"NoCaptions", NewNoCaptionsError("abc123def45"), 404},
		{"Blocked", NewBlockedError("blocked"), 403},
		{"TooShort", NewContentTooShortError(3), 422},
		{"ParseFailure", NewParseFailureError("unknown"), 422},
		{"Downstream", NewDownstreamServiceError("transcription", errors.New("boom")), 502},
		{"Exhausted", NewAllStrategiesExhaustedError("abc123def45", nil), 502},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.StatusCode != tc.status {
				t.Errorf("StatusCode = %d, want %d", tc.err.StatusCode, tc.status)
			}
		})
	}
}

func TestRetryDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := RetryDo(context.Background(), DefaultRetryConfig, func() (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %q, want %q", result, "ok")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryDoRetriesTransientErrors(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2.0}

	calls := 0
	result, err := RetryDo(context.Background(), cfg, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, &net.OpError{Op: "dial", Err: errors.New("connection refused")}
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 42 {
		t.Errorf("result = %d, want 42", result)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryDoStopsOnPermanentError(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2.0}

	permanent := errors.New("HTTP 404")
	calls := 0
	_, err := RetryDo(context.Background(), cfg, func() (int, error) {
		calls++
		return 0, permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("error = %v, want %v", err, permanent)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on permanent errors)", calls)
	}
}

func TestRetryDoExhaustsRetries(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 2, InitialWait: time.Millisecond, MaxWait: 2 * time.Millisecond, Multiplier: 2.0}

	calls := 0
	_, err := RetryDo(context.Background(), cfg, func() (int, error) {
		calls++
		return 0, &net.OpError{Op: "read", Err: errors.New("connection reset")}
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 (initial + 2 retries)", calls)
	}
}

func TestIsTransientNetError(t *testing.T) {
	testCases := []struct {
		name      string
		err       error
		transient bool
	}{
		{"nil", nil, false},
		{"op error", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"dns temp failure", &net.DNSError{Err: "server misbehaving", IsTemporary: true}, true},
		{"dns not found", &net.DNSError{Err: "no such host", IsNotFound: true}, false},
		{"plain error", errors.New("HTTP 500"), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTransientNetError(tc.err); got != tc.transient {
				t.Errorf("IsTransientNetError() = %v, want %v", got, tc.transient)
			}
		})
	}
}
