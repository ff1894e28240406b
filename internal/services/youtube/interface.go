package youtube

import (
	"context"
	"io"
	"time"
)

// YouTubeClient interface for YouTube video operations
type YouTubeClient interface {
	// ParseYouTubeURL extracts the video ID from a YouTube URL or bare video ID
	ParseYouTubeURL(url string) (string, error)

	// GetVideoInfo retrieves video metadata from the player API
	GetVideoInfo(ctx context.Context, videoID string) (*VideoInfo, error)

	// DownloadAudio downloads the smallest audio-only stream to local storage
	// and returns a reader that releases the storage when closed
	DownloadAudio(ctx context.Context, videoID string) (io.ReadCloser, error)

	// IsYouTubeURL checks if the provided URL is a valid YouTube URL
	IsYouTubeURL(url string) bool
}

// VideoInfo contains YouTube video metadata
type VideoInfo struct {
	ID           string
	Title        string
	Author       string
	Duration     time.Duration
	PublishDate  time.Time
	ThumbnailURL string
}
