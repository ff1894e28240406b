package whisper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(srv *httptest.Server, quality string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    srv.URL,
		quality:    quality,
		warmed:     make(map[string]bool),
	}
}

func TestModelForQuality(t *testing.T) {
	client := &Client{quality: QualityBalanced}

	testCases := []struct {
		quality string
		model   string
	}{
		{QualityFast, "tiny"},
		{QualityBalanced, "base"},
		{QualityBest, "small"},
		{"", "base"},
		{"ultra", "base"},
	}

	for _, tc := range testCases {
		if got := client.ModelForQuality(tc.quality); got != tc.model {
			t.Errorf("ModelForQuality(%q) = %q, want %q", tc.quality, got, tc.model)
		}
	}
}

func TestModelForQualityConfiguredDefault(t *testing.T) {
	client := &Client{quality: QualityBest}
	if got := client.ModelForQuality(""); got != "small" {
		t.Errorf("ModelForQuality(\"\") = %q, want small", got)
	}
}

func TestTranscribe(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/api/ps/", func(w http.ResponseWriter, r *http.Request) {})

	mux.HandleFunc("/v1/audio/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
			return
		}
		if got := r.FormValue("model"); got != "tiny" {
			t.Errorf("model = %q, want tiny", got)
		}
		if got := r.FormValue("language"); got != "en" {
			t.Errorf("language = %q, want en", got)
		}

		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing audio file part: %v", err)
			return
		}
		defer file.Close()
		audio, _ := io.ReadAll(file)
		if string(audio) != "fake audio bytes" {
			t.Errorf("audio body = %q", audio)
		}

		fmt.Fprint(w, `{"text": "never gonna give you up"}`)
	})

	client := newTestClient(srv, QualityBalanced)
	text, err := client.Transcribe(context.Background(), strings.NewReader("fake audio bytes"), QualityFast)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "never gonna give you up" {
		t.Errorf("text = %q", text)
	}
}

func TestTranscribeServiceError(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/api/ps/", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/v1/audio/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	})

	client := newTestClient(srv, QualityBalanced)
	_, err := client.Transcribe(context.Background(), strings.NewReader("fake audio"), QualityFast)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error = %q, want status in message", err)
	}
}

func TestEnsureModelWarmsOnce(t *testing.T) {
	var warmups int64

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/api/ps/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&warmups, 1)
	})
	mux.HandleFunc("/v1/audio/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"text": "ok"}`)
	})

	client := newTestClient(srv, QualityBalanced)
	for i := 0; i < 3; i++ {
		if _, err := client.Transcribe(context.Background(), strings.NewReader("audio"), QualityFast); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := atomic.LoadInt64(&warmups); got != 1 {
		t.Errorf("warm-up requests = %d, want 1", got)
	}
}
