package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestTranscriptClient(srv *httptest.Server, languages ...string) *TranscriptClient {
	return &TranscriptClient{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		playerURL:  srv.URL + "/player",
		languages:  languages,
	}
}

func TestGetTranscript(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/player", func(w http.ResponseWriter, r *http.Request) {
		var req innertubeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode player request: %v", err)
		}
		if req.VideoID != "dQw4w9WgXcQ" {
			t.Errorf("videoId = %q, want dQw4w9WgXcQ", req.VideoID)
		}
		if req.Context.Client.ClientName != "ANDROID" {
			t.Errorf("clientName = %q, want ANDROID", req.Context.Client.ClientName)
		}
		if !req.RacyCheckOk || !req.ContentCheckOk {
			t.Error("content check flags must be set")
		}

		fmt.Fprintf(w, `{
			"captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [
				{"baseUrl": "%s/timedtext?lang=en", "languageCode": "en"}
			]}},
			"playabilityStatus": {"status": "OK"}
		}`, srv.URL)
	})

	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8"?><transcript>`+
			`<text start="0" dur="2.36">Never gonna give you up</text>`+
			`<text start="2.36" dur="2.2">never gonna let you down</text>`+
			`</transcript>`)
	})

	client := newTestTranscriptClient(srv, "en")
	segments, err := client.GetTranscript(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(segments) != 2 {
		t.Fatalf("segment count = %d, want 2", len(segments))
	}
	if segments[0].Text != "Never gonna give you up" {
		t.Errorf("segment text = %q", segments[0].Text)
	}
	if segments[1].Start != 2.36 || segments[1].Duration != 2.2 {
		t.Errorf("segment timing = (%v, %v), want (2.36, 2.2)", segments[1].Start, segments[1].Duration)
	}
}

func TestGetTranscriptNoCaptions(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/player", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"playabilityStatus": {"status": "OK"}}`)
	})

	client := newTestTranscriptClient(srv, "en")
	if _, err := client.GetTranscript(context.Background(), "dQw4w9WgXcQ"); !errors.Is(err, ErrNoCaptionTracks) {
		t.Errorf("err = %v, want ErrNoCaptionTracks", err)
	}
}

func TestGetTranscriptNotPlayable(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/player", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"playabilityStatus": {"status": "LOGIN_REQUIRED", "reason": "Sign in to confirm you're not a bot"}}`)
	})

	client := newTestTranscriptClient(srv, "en")
	_, err := client.GetTranscript(context.Background(), "dQw4w9WgXcQ")

	var playErr *PlayabilityError
	if !errors.As(err, &playErr) {
		t.Fatalf("err = %v, want PlayabilityError", err)
	}
	if playErr.Reason != "Sign in to confirm you're not a bot" {
		t.Errorf("reason = %q", playErr.Reason)
	}
}

func TestGetTranscriptSkipsProofOfOriginTracks(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/player", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [
				{"baseUrl": "%s/timedtext?lang=en&exp=xpe", "languageCode": "en"},
				{"baseUrl": "%s/timedtext?lang=en&kind=asr", "languageCode": "en", "kind": "asr"}
			]}},
			"playabilityStatus": {"status": "OK"}
		}`, srv.URL, srv.URL)
	})

	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("exp") == "xpe" {
			t.Error("fetched a track that requires a proof of origin token")
		}
		fmt.Fprint(w, `<transcript><text start="0" dur="1">hello there</text></transcript>`)
	})

	client := newTestTranscriptClient(srv, "en")
	segments, err := client.GetTranscript(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segments) != 1 || segments[0].Text != "hello there" {
		t.Errorf("segments = %+v", segments)
	}
}

func TestGetTranscriptPlayerError(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/player", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	client := newTestTranscriptClient(srv, "en")
	if _, err := client.GetTranscript(context.Background(), "dQw4w9WgXcQ"); err == nil {
		t.Fatal("expected an error")
	}
}
