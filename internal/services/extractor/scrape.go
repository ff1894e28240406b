package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gadsdencode/Podster/internal/config"
	"github.com/gadsdencode/Podster/internal/services/captions"
	"github.com/gadsdencode/Podster/internal/services/youtube"
	"github.com/gadsdencode/Podster/internal/utils"
)

const (
	defaultWatchURL = "https://www.youtube.com/watch"

	scrapeUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	maxWatchPageBytes = 6 * 1024 * 1024
	maxCaptionPayload = 512 * 1024
)

// ScrapeStrategy pulls captions straight out of the watch page: it extracts
// the embedded player configuration, resolves a track, fetches the payload,
// and sniffs the format. When the configuration blob is absent or mangled it
// degrades to scanning the raw HTML for a surviving caption URL.
type ScrapeStrategy struct {
	httpClient *http.Client
	watchURL   string
	languages  []string
	retry      utils.RetryConfig
}

func NewScrapeStrategy(cfg *config.YouTubeConfig) *ScrapeStrategy {
	retry := utils.DefaultRetryConfig
	if cfg.PageFetchRetries > 0 {
		retry.MaxRetries = cfg.PageFetchRetries
	}
	return &ScrapeStrategy{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		watchURL:   defaultWatchURL,
		languages:  cfg.Languages,
		retry:      retry,
	}
}

func (s *ScrapeStrategy) Method() string { return "web_scraping" }

func (s *ScrapeStrategy) Attempt(ctx context.Context, videoID string) (string, error) {
	html, err := s.fetchWatchPage(ctx, videoID)
	if err != nil {
		return "", fmt.Errorf("fetching watch page: %w", err)
	}

	player, err := captions.ExtractPlayerResponse(html)
	if err != nil {
		return s.attemptRawScan(ctx, string(html), err)
	}

	track, ok := captions.ResolveTrack(player.Tracks(), s.languages...)
	if !ok {
		return "", youtube.ErrNoCaptionTracks
	}

	payload, err := s.fetchCaptionPayload(ctx, track.BaseURL)
	if err != nil {
		return "", fmt.Errorf("fetching caption payload: %w", err)
	}

	text, format := captions.ParseToText(payload)
	if text == "" {
		return "", fmt.Errorf("%w: %s payload for track %q yielded no text", ErrParseFailure, format, track.LanguageCode)
	}
	return text, nil
}

// attemptRawScan is the degraded path: the structured configuration could not
// be used, but a caption URL may still survive in the raw HTML.
func (s *ScrapeStrategy) attemptRawScan(ctx context.Context, html string, playerErr error) (string, error) {
	captionURL, ok := captions.ScanCaptionURL(html)
	if !ok {
		return "", fmt.Errorf("no caption url in page html: %w", playerErr)
	}

	payload, err := s.fetchCaptionPayload(ctx, captionURL)
	if err != nil {
		return "", fmt.Errorf("fetching caption payload: %w", err)
	}

	text, format := captions.ParseToText(payload)
	if text == "" {
		return "", fmt.Errorf("%w: %s payload from raw page scan yielded no text", ErrParseFailure, format)
	}
	return text, nil
}

// fetchWatchPage retries transient network failures with backoff. Non-2xx
// statuses are not retried; those surface immediately so the chain can move
// on.
func (s *ScrapeStrategy) fetchWatchPage(ctx context.Context, videoID string) ([]byte, error) {
	pageURL := s.watchURL + "?v=" + url.QueryEscape(videoID)

	return utils.RetryDo(ctx, s.retry, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", scrapeUserAgent)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("watch page returned status %d", resp.StatusCode)
		}
		return io.ReadAll(io.LimitReader(resp.Body, maxWatchPageBytes))
	})
}

func (s *ScrapeStrategy) fetchCaptionPayload(ctx context.Context, captionURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, captionURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", scrapeUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("caption url returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCaptionPayload))
	if err != nil {
		return "", err
	}
	return string(body), nil
}
