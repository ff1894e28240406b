package extractor

import (
	"context"

	"github.com/gadsdencode/Podster/internal/services/captions"
	"github.com/gadsdencode/Podster/internal/services/youtube"
)

// TranscriptAPI is the managed transcript service surface the api strategy
// consumes.
type TranscriptAPI interface {
	GetTranscript(ctx context.Context, videoID string) ([]youtube.TranscriptSegment, error)
}

// APIStrategy is the first and cheapest strategy: ask the transcript API for
// pre-segmented caption text and join the normalized segments. Timing data
// on the segments is discarded.
type APIStrategy struct {
	api TranscriptAPI
}

func NewAPIStrategy(api TranscriptAPI) *APIStrategy {
	return &APIStrategy{api: api}
}

func (s *APIStrategy) Method() string { return "api" }

func (s *APIStrategy) Attempt(ctx context.Context, videoID string) (string, error) {
	segments, err := s.api.GetTranscript(ctx, videoID)
	if err != nil {
		return "", err
	}

	fragments := make([]string, 0, len(segments))
	for _, segment := range segments {
		if text := captions.Normalize(segment.Text); text != "" {
			fragments = append(fragments, text)
		}
	}
	return captions.JoinFragments(fragments), nil
}
