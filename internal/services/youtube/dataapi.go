package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/gadsdencode/Podster/internal/config"
)

const dataAPIBaseURL = "https://www.googleapis.com/youtube/v3"

// DataAPIClient talks to the YouTube Data API v3. All methods require an API
// key; callers check Configured before use.
type DataAPIClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewDataAPIClient creates a new Data API client
func NewDataAPIClient(cfg *config.YouTubeConfig) *DataAPIClient {
	return &DataAPIClient{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		apiKey:     cfg.DataAPIKey,
		baseURL:    dataAPIBaseURL,
	}
}

// Configured reports whether an API key is available
func (c *DataAPIClient) Configured() bool {
	return c.apiKey != ""
}

// DataAPICaption describes one caption track listed by the captions endpoint
type DataAPICaption struct {
	ID        string
	Language  string
	TrackKind string
}

// Manual reports whether the track was uploaded rather than auto-generated
func (t DataAPICaption) Manual() bool {
	return t.TrackKind != "ASR"
}

// VideoDetails holds the metadata fields the videos endpoint returns
type VideoDetails struct {
	Title           string
	Channel         string
	PublishedAt     string
	DurationSeconds int
}

// ListCaptions lists the caption tracks registered for a video
func (c *DataAPIClient) ListCaptions(ctx context.Context, videoID string) ([]DataAPICaption, error) {
	endpoint := fmt.Sprintf("%s/captions?part=snippet&videoId=%s&key=%s",
		c.baseURL, url.QueryEscape(videoID), url.QueryEscape(c.apiKey))

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.decodeError(resp)
	}

	var payload struct {
		Items []struct {
			ID      string `json:"id"`
			Snippet struct {
				Language  string `json:"language"`
				TrackKind string `json:"trackKind"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPlayerResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode captions list: %w", err)
	}

	tracks := make([]DataAPICaption, 0, len(payload.Items))
	for _, item := range payload.Items {
		tracks = append(tracks, DataAPICaption{
			ID:        item.ID,
			Language:  item.Snippet.Language,
			TrackKind: item.Snippet.TrackKind,
		})
	}

	return tracks, nil
}

// DownloadCaption downloads a caption track body in the requested transfer
// format, typically "srt".
func (c *DataAPIClient) DownloadCaption(ctx context.Context, captionID, format string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/captions/%s?tfmt=%s&key=%s",
		c.baseURL, url.PathEscape(captionID), url.QueryEscape(format), url.QueryEscape(c.apiKey))

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.decodeError(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCaptionPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read caption body: %w", err)
	}

	return body, nil
}

// GetVideoDetails fetches title, channel, publish date and duration for a
// video.
func (c *DataAPIClient) GetVideoDetails(ctx context.Context, videoID string) (*VideoDetails, error) {
	endpoint := fmt.Sprintf("%s/videos?part=snippet,contentDetails&id=%s&key=%s",
		c.baseURL, url.QueryEscape(videoID), url.QueryEscape(c.apiKey))

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.decodeError(resp)
	}

	var payload struct {
		Items []struct {
			Snippet struct {
				Title        string `json:"title"`
				ChannelTitle string `json:"channelTitle"`
				PublishedAt  string `json:"publishedAt"`
			} `json:"snippet"`
			ContentDetails struct {
				Duration string `json:"duration"`
			} `json:"contentDetails"`
		} `json:"items"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPlayerResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode video details: %w", err)
	}

	if len(payload.Items) == 0 {
		return nil, fmt.Errorf("video %s was not found", videoID)
	}

	item := payload.Items[0]
	details := &VideoDetails{
		Title:   item.Snippet.Title,
		Channel: item.Snippet.ChannelTitle,
	}

	if published, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
		details.PublishedAt = published.Format("2006-01-02")
	}
	if seconds, ok := ParseISODuration(item.ContentDetails.Duration); ok {
		details.DurationSeconds = seconds
	}

	return details, nil
}

func (c *DataAPIClient) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build data api request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("data api request failed: %w", err)
	}

	return resp, nil
}

func (c *DataAPIClient) decodeError(resp *http.Response) error {
	var payload struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&payload); err == nil && payload.Error.Message != "" {
		return fmt.Errorf("data api returned HTTP %d: %s", resp.StatusCode, payload.Error.Message)
	}
	return fmt.Errorf("data api returned HTTP %d", resp.StatusCode)
}

var isoDurationRE = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISODuration converts an ISO 8601 duration such as PT3M32S into whole
// seconds. Durations with week or month designators are not supported; they
// do not occur for video lengths.
func ParseISODuration(value string) (int, bool) {
	m := isoDurationRE.FindStringSubmatch(value)
	if m == nil {
		return 0, false
	}
	if m[1] == "" && m[2] == "" && m[3] == "" && m[4] == "" {
		return 0, false
	}

	days, _ := strconv.Atoi(m[1])
	hours, _ := strconv.Atoi(m[2])
	minutes, _ := strconv.Atoi(m[3])
	seconds, _ := strconv.Atoi(m[4])

	return ((days*24+hours)*60+minutes)*60 + seconds, true
}
