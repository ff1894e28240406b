package extractor

import (
	"context"
	"fmt"
	"io"
)

// AudioDownloader provides the audio stream for a video. The returned reader
// owns any temporary storage and releases it on Close.
type AudioDownloader interface {
	DownloadAudio(ctx context.Context, videoID string) (io.ReadCloser, error)
}

// SpeechTranscriber converts an audio stream to text at a quality tier.
type SpeechTranscriber interface {
	Transcribe(ctx context.Context, audio io.Reader, quality string) (string, error)
}

// AudioStrategy is the last resort: download the smallest audio stream and
// run it through speech recognition. Slow and expensive, so it only runs
// after every caption source has failed.
type AudioStrategy struct {
	downloader  AudioDownloader
	transcriber SpeechTranscriber
	quality     string
}

func NewAudioStrategy(downloader AudioDownloader, transcriber SpeechTranscriber, quality string) *AudioStrategy {
	return &AudioStrategy{
		downloader:  downloader,
		transcriber: transcriber,
		quality:     quality,
	}
}

func (s *AudioStrategy) Method() string { return "audio" }

func (s *AudioStrategy) Attempt(ctx context.Context, videoID string) (string, error) {
	audio, err := s.downloader.DownloadAudio(ctx, videoID)
	if err != nil {
		if IsBlockingError(err) {
			return "", fmt.Errorf("audio download is blocked from this environment, caption-based extraction usually works better: %w", err)
		}
		return "", fmt.Errorf("downloading audio: %w", err)
	}
	defer audio.Close()

	text, err := s.transcriber.Transcribe(ctx, audio, s.quality)
	if err != nil {
		return "", fmt.Errorf("transcribing audio: %w", err)
	}
	return text, nil
}
