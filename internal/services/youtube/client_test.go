package youtube

import (
	"testing"

	"github.com/kkdai/youtube/v2"
)

func TestIsYouTubeURL(t *testing.T) {
	client := &Client{}

	testCases := []struct {
		url      string
		expected bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"http://youtu.be/dQw4w9WgXcQ", true},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", true},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", true},
		{"https://www.youtube.com/live/dQw4w9WgXcQ", true},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://vimeo.com/123456", false},
		{"not a url", false},
		{"dQw4w9WgXcQ", false},
	}

	for _, tc := range testCases {
		if got := client.IsYouTubeURL(tc.url); got != tc.expected {
			t.Errorf("IsYouTubeURL(%q) = %v, want %v", tc.url, got, tc.expected)
		}
	}
}

func TestParseYouTubeURL(t *testing.T) {
	client := &Client{}

	testCases := []struct {
		name    string
		url     string
		videoID string
		wantErr bool
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"watch url with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", false},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"shorts url", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"live url", "https://www.youtube.com/live/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"bare video id", "dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"unrelated url", "https://example.com/watch?v=dQw4w9WgXcQ", "", true},
		{"id too short", "dQw4w9WgXc", "", true},
		{"garbage", "definitely not a video", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := client.ParseYouTubeURL(tc.url)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.videoID {
				t.Errorf("video ID = %q, want %q", got, tc.videoID)
			}
		})
	}
}

func TestGetSmallestAudioFormat(t *testing.T) {
	client := &Client{}

	formats := youtube.FormatList{
		{MimeType: `video/mp4; codecs="avc1.640028"`, Bitrate: 2000000},
		{MimeType: `audio/mp4; codecs="mp4a.40.2"`, Bitrate: 128000},
		{MimeType: `audio/mp4; codecs="mp4a.40.5"`, Bitrate: 48000},
		{MimeType: `audio/webm; codecs="opus"`, Bitrate: 32000},
	}

	format := client.getSmallestAudioFormat(formats)
	if format == nil {
		t.Fatal("expected a format")
	}
	// mp4 container preferred even though the webm stream is smaller
	if format.Bitrate != 48000 {
		t.Errorf("bitrate = %d, want 48000", format.Bitrate)
	}
}

func TestGetSmallestAudioFormatFallsBackToWebm(t *testing.T) {
	client := &Client{}

	formats := youtube.FormatList{
		{MimeType: `video/mp4; codecs="avc1.640028"`, Bitrate: 2000000},
		{MimeType: `audio/webm; codecs="opus"`, Bitrate: 64000},
		{MimeType: `audio/webm; codecs="opus"`, Bitrate: 32000},
	}

	format := client.getSmallestAudioFormat(formats)
	if format == nil {
		t.Fatal("expected a format")
	}
	if format.Bitrate != 32000 {
		t.Errorf("bitrate = %d, want 32000", format.Bitrate)
	}
}

func TestGetSmallestAudioFormatNoAudio(t *testing.T) {
	client := &Client{}

	formats := youtube.FormatList{
		{MimeType: `video/mp4; codecs="avc1.640028"`, Bitrate: 2000000},
	}

	if format := client.getSmallestAudioFormat(formats); format != nil {
		t.Errorf("expected nil, got %+v", format)
	}
}
