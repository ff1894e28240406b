package extractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/gadsdencode/Podster/internal/services/captions"
	"github.com/gadsdencode/Podster/internal/services/youtube"
)

// CaptionsAPI is the authenticated Data API surface the captions strategy
// consumes.
type CaptionsAPI interface {
	Configured() bool
	ListCaptions(ctx context.Context, videoID string) ([]youtube.DataAPICaption, error)
	DownloadCaption(ctx context.Context, captionID, format string) ([]byte, error)
}

// DataAPIStrategy downloads captions through the authenticated Data API.
// Authenticated access is worth trying after the transcript API because
// IP-based blocking does not apply to keyed requests.
type DataAPIStrategy struct {
	api CaptionsAPI
}

func NewDataAPIStrategy(api CaptionsAPI) *DataAPIStrategy {
	return &DataAPIStrategy{api: api}
}

func (s *DataAPIStrategy) Method() string { return "api_captions" }

func (s *DataAPIStrategy) Attempt(ctx context.Context, videoID string) (string, error) {
	if !s.api.Configured() {
		return "", fmt.Errorf("%w: no Data API key configured", ErrSkipped)
	}

	tracks, err := s.api.ListCaptions(ctx, videoID)
	if err != nil {
		return "", fmt.Errorf("listing caption tracks: %w", err)
	}

	track, ok := selectCaption(tracks)
	if !ok {
		return "", youtube.ErrNoCaptionTracks
	}

	payload, err := s.api.DownloadCaption(ctx, track.ID, "srt")
	if err != nil {
		return "", fmt.Errorf("downloading caption track %s: %w", track.ID, err)
	}

	text, format := captions.ParseToText(string(payload))
	if text == "" {
		return "", fmt.Errorf("%w: %s payload for track %s yielded no text", ErrParseFailure, format, track.ID)
	}
	return text, nil
}

// selectCaption applies the player track tie-break to Data API tracks:
// English manual first, then English auto-generated, then the first track of
// any language.
func selectCaption(tracks []youtube.DataAPICaption) (youtube.DataAPICaption, bool) {
	if len(tracks) == 0 {
		return youtube.DataAPICaption{}, false
	}

	var fallback *youtube.DataAPICaption
	for i := range tracks {
		if !strings.HasPrefix(tracks[i].Language, "en") {
			continue
		}
		if tracks[i].Manual() {
			return tracks[i], true
		}
		if fallback == nil {
			fallback = &tracks[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return tracks[0], true
}
