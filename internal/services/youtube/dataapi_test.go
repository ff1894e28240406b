package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestDataAPIClient(srv *httptest.Server) *DataAPIClient {
	return &DataAPIClient{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		apiKey:     "test-key",
		baseURL:    srv.URL,
	}
}

func TestParseISODuration(t *testing.T) {
	testCases := []struct {
		value   string
		seconds int
		ok      bool
	}{
		{"PT3M32S", 212, true},
		{"PT1H2M10S", 3730, true},
		{"PT45S", 45, true},
		{"PT1H", 3600, true},
		{"P1DT2H", 93600, true},
		{"PT0S", 0, true},
		{"P", 0, false},
		{"", 0, false},
		{"3:32", 0, false},
		{"PT3M32", 0, false},
	}

	for _, tc := range testCases {
		seconds, ok := ParseISODuration(tc.value)
		if ok != tc.ok || seconds != tc.seconds {
			t.Errorf("ParseISODuration(%q) = (%d, %v), want (%d, %v)", tc.value, seconds, ok, tc.seconds, tc.ok)
		}
	}
}

func TestGetVideoDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/videos") {
			t.Errorf("path = %q, want /videos", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("key = %q, want test-key", r.URL.Query().Get("key"))
		}
		if r.URL.Query().Get("id") != "dQw4w9WgXcQ" {
			t.Errorf("id = %q, want dQw4w9WgXcQ", r.URL.Query().Get("id"))
		}

		fmt.Fprint(w, `{"items": [{
			"snippet": {
				"title": "Rick Astley - Never Gonna Give You Up (Official Music Video)",
				"channelTitle": "Rick Astley",
				"publishedAt": "2009-10-25T06:57:33Z"
			},
			"contentDetails": {"duration": "PT3M32S"}
		}]}`)
	}))
	defer srv.Close()

	client := newTestDataAPIClient(srv)
	details, err := client.GetVideoDetails(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if details.Channel != "Rick Astley" {
		t.Errorf("channel = %q", details.Channel)
	}
	if details.PublishedAt != "2009-10-25" {
		t.Errorf("published = %q, want 2009-10-25", details.PublishedAt)
	}
	if details.DurationSeconds != 212 {
		t.Errorf("duration = %d, want 212", details.DurationSeconds)
	}
}

func TestGetVideoDetailsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": []}`)
	}))
	defer srv.Close()

	client := newTestDataAPIClient(srv)
	if _, err := client.GetVideoDetails(context.Background(), "missingvid1"); err == nil {
		t.Fatal("expected an error for an unknown video")
	}
}

func TestListCaptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("videoId") != "dQw4w9WgXcQ" {
			t.Errorf("videoId = %q", r.URL.Query().Get("videoId"))
		}
		fmt.Fprint(w, `{"items": [
			{"id": "track-1", "snippet": {"language": "en", "trackKind": "standard"}},
			{"id": "track-2", "snippet": {"language": "en", "trackKind": "ASR"}}
		]}`)
	}))
	defer srv.Close()

	client := newTestDataAPIClient(srv)
	tracks, err := client.ListCaptions(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tracks) != 2 {
		t.Fatalf("track count = %d, want 2", len(tracks))
	}
	if !tracks[0].Manual() {
		t.Error("standard track must report as manual")
	}
	if tracks[1].Manual() {
		t.Error("ASR track must not report as manual")
	}
}

func TestDownloadCaption(t *testing.T) {
	srt := "1\n00:00:00,000 --> 00:00:02,000\nNever gonna give you up\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("tfmt") != "srt" {
			t.Errorf("tfmt = %q, want srt", r.URL.Query().Get("tfmt"))
		}
		fmt.Fprint(w, srt)
	}))
	defer srv.Close()

	client := newTestDataAPIClient(srv)
	body, err := client.DownloadCaption(context.Background(), "track-1", "srt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != srt {
		t.Errorf("body = %q", body)
	}
}

func TestDataAPIErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error": {"code": 403, "message": "The request cannot be completed because you have exceeded your quota."}}`)
	}))
	defer srv.Close()

	client := newTestDataAPIClient(srv)
	_, err := client.ListCaptions(context.Background(), "dQw4w9WgXcQ")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "quota") || !strings.Contains(err.Error(), "403") {
		t.Errorf("error = %q, want quota message with status", err)
	}
}
