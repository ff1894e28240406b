package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// transcriptKeyPrefix groups transcript artifacts in the bucket.
const transcriptKeyPrefix = "transcripts/"

// TranscriptKey returns the object key for a video's transcript artifact.
func TranscriptKey(videoID string) string {
	return transcriptKeyPrefix + videoID + ".txt"
}

// TranscriptStore layers transcript semantics over a storage backend:
// plain-text artifacts keyed by video ID, tagged with how they were
// extracted.
type TranscriptStore struct {
	backend StorageInterface
}

func NewTranscriptStore(backend StorageInterface) *TranscriptStore {
	return &TranscriptStore{backend: backend}
}

// Save uploads the transcript text, replacing any previous artifact for the
// same video. Returns the object key.
func (t *TranscriptStore) Save(ctx context.Context, videoID, text, extractionMethod string) (string, error) {
	key := TranscriptKey(videoID)
	metadata := map[string]string{
		"video_id":          videoID,
		"extraction_method": extractionMethod,
		"uploaded_at":       time.Now().UTC().Format(time.RFC3339),
	}

	if err := t.backend.UploadWithMetadata(ctx, key, strings.NewReader(text), "text/plain; charset=utf-8", metadata); err != nil {
		return "", fmt.Errorf("saving transcript for %s: %w", videoID, err)
	}
	return key, nil
}

// Load downloads the transcript text.
func (t *TranscriptStore) Load(ctx context.Context, videoID string) (string, error) {
	body, err := t.backend.Download(ctx, TranscriptKey(videoID))
	if err != nil {
		return "", fmt.Errorf("loading transcript for %s: %w", videoID, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("reading transcript for %s: %w", videoID, err)
	}
	return string(data), nil
}

// Delete removes the transcript artifact.
func (t *TranscriptStore) Delete(ctx context.Context, videoID string) error {
	return t.backend.Delete(ctx, TranscriptKey(videoID))
}

// Exists reports whether a transcript artifact is stored for the video.
func (t *TranscriptStore) Exists(ctx context.Context, videoID string) (bool, error) {
	return t.backend.Exists(ctx, TranscriptKey(videoID))
}

// DownloadURL returns a presigned link for direct artifact download.
func (t *TranscriptStore) DownloadURL(ctx context.Context, videoID string, expiry time.Duration) (string, error) {
	return t.backend.GeneratePresignedURL(ctx, TranscriptKey(videoID), expiry)
}
