package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gadsdencode/Podster/internal/config"
	"github.com/gadsdencode/Podster/internal/services/captions"
)

// Innertube player endpoint constants. The ANDROID client surface returns
// caption metadata without the consent interstitials the web player applies.
const (
	innertubePlayerURL   = "https://www.youtube.com/youtubei/v1/player"
	androidClientVersion = "20.10.38"
	androidSDKVersion    = 30
	androidUserAgent     = "com.google.android.youtube/" + androidClientVersion + " (Linux; U; Android 11) gzip"

	maxPlayerResponseBytes = 2 * 1024 * 1024
	maxCaptionPayloadBytes = 512 * 1024
)

// ErrNoCaptionTracks indicates the player response carried no caption tracks
// at all, so no transcript can exist for the video.
var ErrNoCaptionTracks = errors.New("no caption tracks are available for this video")

// PlayabilityError reports a player response whose status prevents caption
// access, carrying the reason YouTube returned.
type PlayabilityError struct {
	Status string
	Reason string
}

func (e *PlayabilityError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("video is not playable: %s", e.Status)
	}
	return fmt.Sprintf("video is not playable: %s (%s)", e.Status, e.Reason)
}

// TranscriptSegment is one timed caption line from a transcript track.
type TranscriptSegment struct {
	Text     string
	Start    float64
	Duration float64
}

// TranscriptClient fetches video transcripts through the Innertube player API
type TranscriptClient struct {
	httpClient *http.Client
	playerURL  string
	languages  []string
}

// NewTranscriptClient creates a new transcript client
func NewTranscriptClient(cfg *config.YouTubeConfig) *TranscriptClient {
	return &TranscriptClient{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		playerURL:  innertubePlayerURL,
		languages:  cfg.Languages,
	}
}

type innertubeRequest struct {
	VideoID        string           `json:"videoId"`
	Context        innertubeContext `json:"context"`
	RacyCheckOk    bool             `json:"racyCheckOk"`
	ContentCheckOk bool             `json:"contentCheckOk"`
}

type innertubeContext struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type timedTextResponse struct {
	Segments []timedTextSegment `xml:"text"`
}

type timedTextSegment struct {
	Start    float64 `xml:"start,attr"`
	Duration float64 `xml:"dur,attr"`
	Text     string  `xml:",chardata"`
}

// GetTranscript fetches the caption track for a video in the preferred
// languages and returns its timed segments. Segment text is raw track
// content; callers run it through the caption text pipeline.
func (tc *TranscriptClient) GetTranscript(ctx context.Context, videoID string) ([]TranscriptSegment, error) {
	playerResp, err := tc.fetchPlayerResponse(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if status := playerResp.PlayabilityStatus; status != nil && status.Status != "" && status.Status != "OK" {
		return nil, &PlayabilityError{
			Status: status.Status,
			Reason: status.Reason,
		}
	}

	track, ok := captions.ResolveTrack(usableTracks(playerResp.Tracks()), tc.languages...)
	if !ok {
		return nil, ErrNoCaptionTracks
	}

	return tc.fetchTimedText(ctx, track.BaseURL)
}

// usableTracks drops tracks whose URLs require a browser-issued proof of
// origin token; those cannot be fetched server side.
func usableTracks(tracks []captions.CaptionTrack) []captions.CaptionTrack {
	usable := make([]captions.CaptionTrack, 0, len(tracks))
	for _, track := range tracks {
		if !strings.Contains(track.BaseURL, "&exp=xpe") {
			usable = append(usable, track)
		}
	}
	return usable
}

func (tc *TranscriptClient) fetchPlayerResponse(ctx context.Context, videoID string) (*captions.PlayerResponse, error) {
	reqBody, err := json.Marshal(innertubeRequest{
		VideoID: videoID,
		Context: innertubeContext{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     androidClientVersion,
				AndroidSdkVersion: androidSDKVersion,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode player request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tc.playerURL+"?prettyPrint=false", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build player request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", androidUserAgent)
	req.Header.Set("X-Youtube-Client-Name", "3")
	req.Header.Set("X-Youtube-Client-Version", androidClientVersion)

	resp, err := tc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("player request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("player request returned HTTP %d: %s", resp.StatusCode, snippet)
	}

	var playerResp captions.PlayerResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPlayerResponseBytes)).Decode(&playerResp); err != nil {
		return nil, fmt.Errorf("failed to decode player response: %w", err)
	}

	return &playerResp, nil
}

func (tc *TranscriptClient) fetchTimedText(ctx context.Context, baseURL string) ([]TranscriptSegment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build caption request: %w", err)
	}
	req.Header.Set("User-Agent", androidUserAgent)

	resp, err := tc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("caption request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("caption request returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCaptionPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read caption payload: %w", err)
	}

	var doc timedTextResponse
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse timed text: %w", err)
	}

	segments := make([]TranscriptSegment, 0, len(doc.Segments))
	for _, seg := range doc.Segments {
		segments = append(segments, TranscriptSegment{
			Text:     seg.Text,
			Start:    seg.Start,
			Duration: seg.Duration,
		})
	}

	return segments, nil
}
