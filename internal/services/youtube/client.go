package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kkdai/youtube/v2"

	"github.com/gadsdencode/Podster/internal/config"
)

type Client struct {
	client        *youtube.Client
	httpClient    *http.Client
	maxAudioBytes int64
}

// NewClient creates a new YouTube client
func NewClient(cfg *config.Config) *Client {
	httpClient := &http.Client{
		Timeout: cfg.Extract.ExtractionTimeout,
	}

	ytClient := &youtube.Client{
		HTTPClient: httpClient,
	}

	return &Client{
		client:        ytClient,
		httpClient:    httpClient,
		maxAudioBytes: cfg.Extract.MaxAudioBytes,
	}
}

// IsYouTubeURL checks if the provided URL is a valid YouTube URL
func (c *Client) IsYouTubeURL(url string) bool {
	patterns := []string{
		`^https?://(www\.)?youtube\.com/watch\?v=[\w-]+`,
		`^https?://(www\.)?youtube\.com/embed/[\w-]+`,
		`^https?://youtu\.be/[\w-]+`,
		`^https?://(www\.)?youtube\.com/v/[\w-]+`,
		`^https?://(www\.)?youtube\.com/shorts/[\w-]+`,
		`^https?://(www\.)?youtube\.com/live/[\w-]+`,
		`^https?://(m\.)?youtube\.com/watch\?v=[\w-]+`,
	}

	for _, pattern := range patterns {
		matched, _ := regexp.MatchString(pattern, url)
		if matched {
			return true
		}
	}
	return false
}

// ParseYouTubeURL extracts the video ID from a YouTube URL. A bare 11
// character video ID is accepted as-is.
func (c *Client) ParseYouTubeURL(url string) (string, error) {
	patterns := []string{
		`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/v/|youtube\.com/shorts/|youtube\.com/live/)([a-zA-Z0-9_-]{11})`,
		`^([a-zA-Z0-9_-]{11})$`,
	}

	for _, pattern := range patterns {
		re := regexp.MustCompile(pattern)
		matches := re.FindStringSubmatch(url)
		if len(matches) > 1 {
			return matches[1], nil
		}
	}

	return "", fmt.Errorf("could not extract video ID from YouTube URL: %s", url)
}

// GetVideoInfo retrieves video metadata
func (c *Client) GetVideoInfo(ctx context.Context, videoID string) (*VideoInfo, error) {
	video, err := c.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get video info: %w", err)
	}

	info := &VideoInfo{
		ID:          video.ID,
		Title:       video.Title,
		Author:      video.Author,
		Duration:    video.Duration,
		PublishDate: video.PublishDate,
	}

	if len(video.Thumbnails) > 0 {
		info.ThumbnailURL = video.Thumbnails[0].URL
	}

	return info, nil
}

// DownloadAudio downloads the smallest audio-only stream to a temporary file
// and returns a reader over it. Closing the reader removes the file.
func (c *Client) DownloadAudio(ctx context.Context, videoID string) (io.ReadCloser, error) {
	video, err := c.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	format := c.getSmallestAudioFormat(video.Formats)
	if format == nil {
		return nil, fmt.Errorf("no suitable audio format found")
	}

	if c.maxAudioBytes > 0 && format.ContentLength > c.maxAudioBytes {
		return nil, fmt.Errorf("audio stream is %d bytes, limit is %d", format.ContentLength, c.maxAudioBytes)
	}

	tempDir, err := os.MkdirTemp("", "podster_audio_*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	audioPath := filepath.Join(tempDir, "audio.m4a")
	if err := c.downloadStream(ctx, video, format, audioPath); err != nil {
		os.RemoveAll(tempDir)
		return nil, fmt.Errorf("failed to download audio stream: %w", err)
	}

	audioFile, err := os.Open(audioPath)
	if err != nil {
		os.RemoveAll(tempDir)
		return nil, fmt.Errorf("failed to open downloaded audio: %w", err)
	}

	return &tempFileWrapper{
		file:    audioFile,
		tempDir: tempDir,
	}, nil
}

// getSmallestAudioFormat selects the audio-only format with the lowest
// bitrate. Transcription does not benefit from audio fidelity, so the
// cheapest stream wins.
func (c *Client) getSmallestAudioFormat(formats youtube.FormatList) *youtube.Format {
	var bestFormat *youtube.Format
	var bestBitrate int

	for _, format := range formats {
		// Only consider audio formats
		if format.MimeType == "" || !strings.Contains(format.MimeType, "audio") {
			continue
		}

		// Prefer mp4/m4a container
		if strings.Contains(format.MimeType, "mp4") || strings.Contains(format.MimeType, "m4a") {
			if bestFormat == nil || format.Bitrate < bestBitrate {
				bestFormat = &format
				bestBitrate = format.Bitrate
			}
		}
	}

	// Fallback to any audio format
	if bestFormat == nil {
		for _, format := range formats {
			if format.MimeType != "" && strings.Contains(format.MimeType, "audio") {
				if bestFormat == nil || format.Bitrate < bestBitrate {
					bestFormat = &format
					bestBitrate = format.Bitrate
				}
			}
		}
	}

	return bestFormat
}

// downloadStream downloads a stream to a file, enforcing the audio size limit
func (c *Client) downloadStream(ctx context.Context, video *youtube.Video, format *youtube.Format, outputPath string) error {
	stream, _, err := c.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return fmt.Errorf("failed to get stream: %w", err)
	}
	defer stream.Close()

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	var src io.Reader = stream
	if c.maxAudioBytes > 0 {
		src = io.LimitReader(stream, c.maxAudioBytes+1)
	}

	written, err := io.Copy(file, src)
	if err != nil {
		return fmt.Errorf("failed to write stream to file: %w", err)
	}
	if c.maxAudioBytes > 0 && written > c.maxAudioBytes {
		return fmt.Errorf("audio stream exceeded the %d byte limit", c.maxAudioBytes)
	}

	return nil
}

// tempFileWrapper wraps a file and cleans up its temp directory when closed
type tempFileWrapper struct {
	file    *os.File
	tempDir string
}

func (w *tempFileWrapper) Read(p []byte) (n int, err error) {
	return w.file.Read(p)
}

func (w *tempFileWrapper) Close() error {
	err := w.file.Close()
	os.RemoveAll(w.tempDir)
	return err
}
