package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/gadsdencode/Podster/internal/config"
	"github.com/gadsdencode/Podster/internal/services/youtube"
	"github.com/gadsdencode/Podster/internal/utils"
)

const (
	defaultOEmbedURL = "https://www.youtube.com/oembed"
	defaultWatchURL  = "https://www.youtube.com/watch"

	pageUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	maxWatchPageBytes = 6 * 1024 * 1024
)

// VideoMetadata is the display metadata attached to a stored transcript.
// Title, Channel and UploadDate are always populated; DurationSeconds is nil
// when no source could report it.
type VideoMetadata struct {
	Title           string
	Channel         string
	UploadDate      string
	DurationSeconds *int
}

// VideoDetailsProvider supplies metadata from the Data API
type VideoDetailsProvider interface {
	Configured() bool
	GetVideoDetails(ctx context.Context, videoID string) (*youtube.VideoDetails, error)
}

// PlayerInfoProvider supplies metadata from the player API
type PlayerInfoProvider interface {
	GetVideoInfo(ctx context.Context, videoID string) (*youtube.VideoInfo, error)
}

// Resolver assembles video metadata from whichever sources respond: the Data
// API first, then the oEmbed endpoint, then watch page probes, then the
// player API. Missing fields fall back to placeholder values, so resolution
// always yields a complete record and never fails an extraction.
type Resolver struct {
	httpClient *http.Client
	dataAPI    VideoDetailsProvider
	player     PlayerInfoProvider
	oembedURL  string
	watchURL   string
}

// NewResolver creates a new metadata resolver
func NewResolver(cfg *config.YouTubeConfig, dataAPI VideoDetailsProvider, player PlayerInfoProvider) *Resolver {
	return &Resolver{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		dataAPI:    dataAPI,
		player:     player,
		oembedURL:  defaultOEmbedURL,
		watchURL:   defaultWatchURL,
	}
}

// Resolve gathers metadata for a video. Sources are tried in order of
// reliability and each fills only the fields still missing; errors are logged
// and never propagated.
func (r *Resolver) Resolve(ctx context.Context, videoID string) *VideoMetadata {
	meta := &VideoMetadata{}

	if r.dataAPI != nil && r.dataAPI.Configured() {
		if details, err := r.dataAPI.GetVideoDetails(ctx, videoID); err == nil {
			meta.Title = details.Title
			meta.Channel = details.Channel
			meta.UploadDate = details.PublishedAt
			if details.DurationSeconds > 0 {
				meta.DurationSeconds = &details.DurationSeconds
			}
		} else {
			utils.LogWarn(ctx, "Data API metadata lookup failed", utils.Fields{
				"video_id": videoID,
				"error":    err.Error(),
			})
		}
	}

	if meta.Title == "" || meta.Channel == "" {
		if oe, err := r.fetchOEmbed(ctx, videoID); err == nil {
			if meta.Title == "" {
				meta.Title = oe.Title
			}
			if meta.Channel == "" {
				meta.Channel = oe.AuthorName
			}
		} else {
			utils.LogWarn(ctx, "oEmbed metadata lookup failed", utils.Fields{
				"video_id": videoID,
				"error":    err.Error(),
			})
		}
	}

	if meta.Title == "" || meta.Channel == "" || meta.UploadDate == "" || meta.DurationSeconds == nil {
		r.probeWatchPage(ctx, videoID, meta)
	}

	if r.player != nil && (meta.DurationSeconds == nil || meta.UploadDate == "" || meta.Title == "" || meta.Channel == "") {
		if info, err := r.player.GetVideoInfo(ctx, videoID); err == nil {
			if meta.Title == "" {
				meta.Title = info.Title
			}
			if meta.Channel == "" {
				meta.Channel = info.Author
			}
			if meta.UploadDate == "" && !info.PublishDate.IsZero() {
				meta.UploadDate = info.PublishDate.Format("2006-01-02")
			}
			if meta.DurationSeconds == nil && info.Duration > 0 {
				seconds := int(info.Duration.Seconds())
				meta.DurationSeconds = &seconds
			}
		}
	}

	if meta.Title == "" {
		meta.Title = "Video " + videoID
	}
	if meta.Channel == "" {
		meta.Channel = "Unknown Channel"
	}
	if meta.UploadDate == "" {
		meta.UploadDate = time.Now().Format("2006-01-02")
	}

	return meta
}

type oembedResponse struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
}

func (r *Resolver) fetchOEmbed(ctx context.Context, videoID string) (*oembedResponse, error) {
	endpoint := r.oembedURL + "?format=json&url=" + url.QueryEscape("https://www.youtube.com/watch?v="+videoID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build oembed request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oembed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oembed returned HTTP %d", resp.StatusCode)
	}

	var oe oembedResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&oe); err != nil {
		return nil, fmt.Errorf("failed to decode oembed response: %w", err)
	}

	return &oe, nil
}

var (
	pageTitleRE      = regexp.MustCompile(`"title":"([^"]+)"`)
	pageAuthorRE     = regexp.MustCompile(`"author":"([^"]+)"`)
	pageUploadDateRE = regexp.MustCompile(`"uploadDate":"([^"]+)"`)
	pageLengthRE     = regexp.MustCompile(`"lengthSeconds":"(\d+)"`)
)

// probeWatchPage scrapes the watch page for whichever fields are still
// missing. Structured DOM probes run first; raw regex probes over the page
// source cover the values only present inside embedded JSON.
func (r *Resolver) probeWatchPage(ctx context.Context, videoID string, meta *VideoMetadata) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.watchURL+"?v="+url.QueryEscape(videoID), nil)
	if err != nil {
		return
	}
	req.Header.Set("User-Agent", pageUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		utils.LogWarn(ctx, "Watch page metadata probe failed", utils.Fields{
			"video_id": videoID,
			"error":    err.Error(),
		})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		utils.LogWarn(ctx, "Watch page metadata probe failed", utils.Fields{
			"video_id": videoID,
			"status":   resp.StatusCode,
		})
		return
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWatchPageBytes))
	if err != nil {
		return
	}

	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body)); err == nil {
		if meta.Title == "" {
			if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
				meta.Title = strings.TrimSpace(og)
			}
		}
		if meta.Title == "" {
			meta.Title = strings.TrimSuffix(strings.TrimSpace(doc.Find("title").First().Text()), " - YouTube")
		}
		if meta.Channel == "" {
			if name, ok := doc.Find(`link[itemprop="name"]`).Attr("content"); ok {
				meta.Channel = strings.TrimSpace(name)
			}
		}
		if meta.UploadDate == "" {
			if date, ok := doc.Find(`meta[itemprop="uploadDate"]`).Attr("content"); ok {
				meta.UploadDate = normalizeDate(date)
			}
		}
	}

	html := string(body)
	if meta.Title == "" {
		if m := pageTitleRE.FindStringSubmatch(html); m != nil {
			meta.Title = decodeJSONString(m[1])
		}
	}
	if meta.Channel == "" {
		if m := pageAuthorRE.FindStringSubmatch(html); m != nil {
			meta.Channel = decodeJSONString(m[1])
		}
	}
	if meta.UploadDate == "" {
		if m := pageUploadDateRE.FindStringSubmatch(html); m != nil {
			meta.UploadDate = normalizeDate(m[1])
		}
	}
	if meta.DurationSeconds == nil {
		if m := pageLengthRE.FindStringSubmatch(html); m != nil {
			if seconds, err := strconv.Atoi(m[1]); err == nil && seconds > 0 {
				meta.DurationSeconds = &seconds
			}
		}
	}
}

// normalizeDate reduces a page-sourced timestamp to YYYY-MM-DD. Pages carry
// either bare dates or RFC 3339 timestamps with offsets.
func normalizeDate(value string) string {
	value = strings.TrimSpace(value)
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.Format("2006-01-02")
	}
	if len(value) >= 10 && value[4] == '-' && value[7] == '-' {
		if _, err := time.Parse("2006-01-02", value[:10]); err == nil {
			return value[:10]
		}
	}
	return ""
}

// decodeJSONString resolves escape sequences in a string captured from
// embedded JSON by round-tripping it through the JSON decoder.
func decodeJSONString(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return s
	}
	return out
}
