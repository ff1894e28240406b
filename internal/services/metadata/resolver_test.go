package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gadsdencode/Podster/internal/services/youtube"
)

type stubDetails struct {
	details *youtube.VideoDetails
	err     error
	calls   int
}

func (s *stubDetails) Configured() bool { return true }

func (s *stubDetails) GetVideoDetails(ctx context.Context, videoID string) (*youtube.VideoDetails, error) {
	s.calls++
	return s.details, s.err
}

type stubPlayerInfo struct {
	info *youtube.VideoInfo
	err  error
}

func (s *stubPlayerInfo) GetVideoInfo(ctx context.Context, videoID string) (*youtube.VideoInfo, error) {
	return s.info, s.err
}

func newTestResolver(srv *httptest.Server, dataAPI VideoDetailsProvider, player PlayerInfoProvider) *Resolver {
	return &Resolver{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		dataAPI:    dataAPI,
		player:     player,
		oembedURL:  srv.URL + "/oembed",
		watchURL:   srv.URL + "/watch",
	}
}

func TestResolveFromDataAPI(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	api := &stubDetails{details: &youtube.VideoDetails{
		Title:           "Rick Astley - Never Gonna Give You Up (Official Music Video)",
		Channel:         "Rick Astley",
		PublishedAt:     "2009-10-25",
		DurationSeconds: 212,
	}}

	meta := newTestResolver(srv, api, nil).Resolve(context.Background(), "dQw4w9WgXcQ")

	if api.calls != 1 {
		t.Errorf("data api calls = %d, want 1", api.calls)
	}
	if meta.Channel != "Rick Astley" || meta.UploadDate != "2009-10-25" {
		t.Errorf("meta = %+v", meta)
	}
	if meta.DurationSeconds == nil || *meta.DurationSeconds != 212 {
		t.Errorf("duration = %v, want 212", meta.DurationSeconds)
	}
}

func TestResolveFromOEmbed(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/oembed", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"title": "Test Video", "author_name": "Test Channel"}`)
	})

	meta := newTestResolver(srv, nil, nil).Resolve(context.Background(), "dQw4w9WgXcQ")

	if meta.Title != "Test Video" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.Channel != "Test Channel" {
		t.Errorf("channel = %q", meta.Channel)
	}
	if today := time.Now().Format("2006-01-02"); meta.UploadDate != today {
		t.Errorf("upload date = %q, want %q", meta.UploadDate, today)
	}
	if meta.DurationSeconds != nil {
		t.Errorf("duration = %v, want nil", meta.DurationSeconds)
	}
}

func TestResolveWatchPageProbes(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
			<meta property="og:title" content="Probed Title">
			<link itemprop="name" content="Probed Channel">
			<meta itemprop="uploadDate" content="2009-10-24T23:57:33-07:00">
			</head><body><script>var cfg = {"lengthSeconds":"212"};</script></body></html>`)
	})

	meta := newTestResolver(srv, nil, nil).Resolve(context.Background(), "dQw4w9WgXcQ")

	if meta.Title != "Probed Title" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.Channel != "Probed Channel" {
		t.Errorf("channel = %q", meta.Channel)
	}
	if meta.UploadDate != "2009-10-24" {
		t.Errorf("upload date = %q, want 2009-10-24", meta.UploadDate)
	}
	if meta.DurationSeconds == nil || *meta.DurationSeconds != 212 {
		t.Errorf("duration = %v, want 212", meta.DurationSeconds)
	}
}

func TestResolvePageTitleSuffixStripped(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Some Video - YouTube</title></head><body></body></html>`)
	})

	meta := newTestResolver(srv, nil, nil).Resolve(context.Background(), "dQw4w9WgXcQ")

	if meta.Title != "Some Video" {
		t.Errorf("title = %q, want Some Video", meta.Title)
	}
}

func TestResolveDefaults(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	meta := newTestResolver(srv, nil, nil).Resolve(context.Background(), "dQw4w9WgXcQ")

	if meta.Title != "Video dQw4w9WgXcQ" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.Channel != "Unknown Channel" {
		t.Errorf("channel = %q", meta.Channel)
	}
	if today := time.Now().Format("2006-01-02"); meta.UploadDate != today {
		t.Errorf("upload date = %q, want %q", meta.UploadDate, today)
	}
}

func TestResolvePlayerFallback(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/oembed", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"title": "Test Video", "author_name": "Test Channel"}`)
	})

	player := &stubPlayerInfo{info: &youtube.VideoInfo{
		Title:       "Test Video",
		Author:      "Test Channel",
		Duration:    212 * time.Second,
		PublishDate: time.Date(2009, 10, 25, 6, 57, 33, 0, time.UTC),
	}}

	meta := newTestResolver(srv, nil, player).Resolve(context.Background(), "dQw4w9WgXcQ")

	if meta.UploadDate != "2009-10-25" {
		t.Errorf("upload date = %q, want 2009-10-25", meta.UploadDate)
	}
	if meta.DurationSeconds == nil || *meta.DurationSeconds != 212 {
		t.Errorf("duration = %v, want 212", meta.DurationSeconds)
	}
}

func TestNormalizeDate(t *testing.T) {
	testCases := []struct {
		value    string
		expected string
	}{
		{"2009-10-25", "2009-10-25"},
		{"2009-10-24T23:57:33-07:00", "2009-10-24"},
		{"2009-10-25T06:57:33Z", "2009-10-25"},
		{"October 25, 2009", ""},
		{"", ""},
	}

	for _, tc := range testCases {
		if got := normalizeDate(tc.value); got != tc.expected {
			t.Errorf("normalizeDate(%q) = %q, want %q", tc.value, got, tc.expected)
		}
	}
}

func TestDecodeJSONString(t *testing.T) {
	escapedAmp := `Escaped \` + `u0026 Title`
	if got := decodeJSONString(escapedAmp); got != "Escaped & Title" {
		t.Errorf("decodeJSONString(%q) = %q, want %q", escapedAmp, got, "Escaped & Title")
	}

	plain := "No escapes here"
	if got := decodeJSONString(plain); got != plain {
		t.Errorf("decodeJSONString(%q) = %q", plain, got)
	}

	invalid := `broken \` + `x escape`
	if got := decodeJSONString(invalid); got != invalid {
		t.Errorf("decodeJSONString(%q) = %q, want input unchanged", invalid, got)
	}
}
