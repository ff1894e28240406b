package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sync"

	"github.com/gadsdencode/Podster/internal/config"
	"github.com/gadsdencode/Podster/internal/utils"
)

// Quality tiers map onto speech model sizes. Larger models transcribe more
// accurately and take longer; the tiers keep callers away from model names.
const (
	QualityFast     = "fast"
	QualityBalanced = "balanced"
	QualityBest     = "best"
)

var qualityModels = map[string]string{
	QualityFast:     "tiny",
	QualityBalanced: "base",
	QualityBest:     "small",
}

// Client transcribes audio through a speech-to-text service speaking the
// OpenAI transcription API shape.
type Client struct {
	httpClient *http.Client
	baseURL    string
	quality    string

	mu     sync.Mutex
	warmed map[string]bool
}

// NewClient creates a new transcription client
func NewClient(cfg *config.WhisperConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.ServiceURL,
		quality:    cfg.Quality,
		warmed:     make(map[string]bool),
	}
}

// ModelForQuality resolves a quality tier to its model name. Unknown or empty
// tiers resolve through the configured default.
func (c *Client) ModelForQuality(quality string) string {
	if model, ok := qualityModels[quality]; ok {
		return model
	}
	if model, ok := qualityModels[c.quality]; ok {
		return model
	}
	return qualityModels[QualityBalanced]
}

// Transcribe sends audio to the speech service and returns the recognized
// text. The audio reader is consumed fully.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, quality string) (string, error) {
	model := c.ModelForQuality(quality)
	c.ensureModel(ctx, model)

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", "audio.m4a")
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, audio); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := mw.WriteField("model", model); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := mw.WriteField("language", "en"); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := mw.WriteField("response_format", "json"); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/audio/transcriptions", pr)
	if err != nil {
		return "", fmt.Errorf("failed to build transcription request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("transcription service returned HTTP %d: %s", resp.StatusCode, snippet)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode transcription response: %w", err)
	}

	return result.Text, nil
}

// ensureModel asks the service to load a model ahead of the first
// transcription that uses it, once per model per process. Warm-up failures
// are not fatal; the transcription call reports the authoritative error.
func (c *Client) ensureModel(ctx context.Context, model string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.warmed[model] {
		return
	}

	utils.LogInfo(ctx, "Loading speech model", utils.Fields{"model": model})

	endpoint := c.baseURL + "/api/ps/" + url.PathEscape(model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err == nil {
		if resp, err := c.httpClient.Do(req); err != nil {
			utils.LogWarn(ctx, "Speech model warm-up failed", utils.Fields{
				"model": model,
				"error": err.Error(),
			})
		} else {
			resp.Body.Close()
		}
	}

	c.warmed[model] = true
}
