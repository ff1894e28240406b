package enhancer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gadsdencode/Podster/internal/config"
	"github.com/gadsdencode/Podster/internal/utils"
)

const enhancementPrompt = "You are a transcript editor. Clean up the following raw video transcript: " +
	"add punctuation and capitalization, break the text into readable paragraphs, and fix obvious " +
	"transcription mistakes. Do not summarize, do not add commentary, and do not remove content. " +
	"Return only the cleaned transcript."

// Client rewrites raw transcripts into readable text through a chat
// completion API. Long transcripts are enhanced chunk by chunk; a chunk that
// fails keeps its original text so one bad call never loses content.
type Client struct {
	httpClient   *http.Client
	apiKey       string
	baseURL      string
	model        string
	maxChunkSize int
}

// NewClient creates a new enhancement client
func NewClient(cfg *config.EnhancerConfig) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		model:        cfg.Model,
		maxChunkSize: cfg.MaxChunkSize,
	}
}

// Enabled reports whether an API key is configured
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Enhance cleans up a transcript. Chunks whose enhancement fails, or whose
// result shrinks implausibly, keep their original text. An error is returned
// only when no chunk could be enhanced at all.
func (c *Client) Enhance(ctx context.Context, text string) (string, error) {
	chunks := chunkText(text, c.maxChunkSize)
	enhanced := make([]string, 0, len(chunks))
	failed := 0

	for i, chunk := range chunks {
		out, err := c.enhanceChunk(ctx, chunk)
		if err != nil {
			utils.LogWarn(ctx, "Chunk enhancement failed, keeping original text", utils.Fields{
				"chunk": i,
				"error": err.Error(),
			})
			enhanced = append(enhanced, chunk)
			failed++
			continue
		}
		if len(out) < len(chunk)/2 {
			utils.LogWarn(ctx, "Enhanced chunk is suspiciously short, keeping original text", utils.Fields{
				"chunk":           i,
				"original_length": len(chunk),
				"enhanced_length": len(out),
			})
			enhanced = append(enhanced, chunk)
			continue
		}
		enhanced = append(enhanced, out)
	}

	if failed == len(chunks) {
		return "", fmt.Errorf("all %d transcript chunks failed to enhance", failed)
	}

	return strings.Join(enhanced, "\n\n"), nil
}

func (c *Client) enhanceChunk(ctx context.Context, chunk string) (string, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: enhancementPrompt},
			{Role: "user", Content: chunk},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode enhancement request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to build enhancement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("enhancement request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("enhancement service returned HTTP %d: %s", resp.StatusCode, snippet)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode enhancement response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("enhancement response carried no choices")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

// chunkText splits a transcript into chunks of at most maxSize bytes, cutting
// only at sentence boundaries. A single sentence longer than maxSize is split
// mid-sentence as a last resort.
func chunkText(text string, maxSize int) []string {
	if maxSize <= 0 || len(text) <= maxSize {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, sentence := range splitSentences(text) {
		if len(sentence) > maxSize {
			flush()
			for len(sentence) > maxSize {
				chunks = append(chunks, sentence[:maxSize])
				sentence = sentence[maxSize:]
			}
			if sentence != "" {
				current.WriteString(sentence)
			}
			continue
		}

		if current.Len() > 0 && current.Len()+1+len(sentence) > maxSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	flush()

	return chunks
}

// splitSentences cuts text after terminal punctuation followed by whitespace.
func splitSentences(text string) []string {
	var sentences []string
	start := 0

	for i := 0; i < len(text)-1; i++ {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && (text[i+1] == ' ' || text[i+1] == '\n') {
			if sentence := strings.TrimSpace(text[start : i+1]); sentence != "" {
				sentences = append(sentences, sentence)
			}
			start = i + 1
		}
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		sentences = append(sentences, tail)
	}

	return sentences
}
