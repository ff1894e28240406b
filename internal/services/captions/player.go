package captions

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// kindASR marks auto-generated tracks in player responses.
const kindASR = "asr"

// CaptionTrack describes one available caption stream for a video. Tracks are
// discovered transiently from a player configuration payload and never
// persisted.
type CaptionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// Manual reports whether the track was authored by a person rather than
// generated by speech recognition.
func (t CaptionTrack) Manual() bool {
	return t.Kind != kindASR
}

// PlayerResponse is the subset of the embedded player configuration blob that
// caption extraction needs.
type PlayerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []CaptionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

// Tracks returns the caption track list, or nil when the captions section is
// absent.
func (p *PlayerResponse) Tracks() []CaptionTrack {
	if p == nil || p.Captions == nil {
		return nil
	}
	return p.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
}

// playerResponseMarker precedes the configuration blob in watch page HTML.
const playerResponseMarker = "ytInitialPlayerResponse"

var (
	ErrPlayerResponseNotFound = errors.New("player response not found in page")
	ErrPlayerResponseInvalid  = errors.New("player response JSON is malformed")
)

// ExtractPlayerResponse locates the player configuration assignment in watch
// page HTML and decodes the balanced JSON object on its right-hand side.
func ExtractPlayerResponse(html []byte) (*PlayerResponse, error) {
	idx := bytes.Index(html, []byte(playerResponseMarker))
	if idx < 0 {
		return nil, ErrPlayerResponseNotFound
	}

	rest := html[idx+len(playerResponseMarker):]
	eq := bytes.IndexByte(rest, '=')
	if eq < 0 {
		return nil, ErrPlayerResponseNotFound
	}

	raw := ExtractJSON(rest[eq+1:])
	if raw == nil {
		return nil, ErrPlayerResponseInvalid
	}

	var resp PlayerResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, ErrPlayerResponseInvalid
	}
	return &resp, nil
}

// ExtractJSON returns the first balanced JSON object in b, honoring string
// literals and escapes so braces inside values do not end the scan early.
func ExtractJSON(b []byte) []byte {
	start := bytes.IndexByte(b, '{')
	if start < 0 {
		return nil
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(b); i++ {
		c := b[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return b[start : i+1]
				}
			}
		}
	}
	return nil
}

// ResolveTrack selects a caption track by preferred language prefixes, tried
// in order: a manual preferred-language track wins, the first
// preferred-language track of any kind is remembered as fallback, and when no
// track matches any preference the first track in the list is returned rather
// than nothing. An empty list resolves to no track.
func ResolveTrack(tracks []CaptionTrack, langs ...string) (CaptionTrack, bool) {
	if len(tracks) == 0 {
		return CaptionTrack{}, false
	}

	var fallback *CaptionTrack
	for _, lang := range langs {
		for i := range tracks {
			if !strings.HasPrefix(tracks[i].LanguageCode, lang) {
				continue
			}
			if tracks[i].Manual() {
				return tracks[i], true
			}
			if fallback == nil {
				fallback = &tracks[i]
			}
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return tracks[0], true
}

// captionURLPatterns match escaped caption payload URLs in raw watch page
// HTML, used when the structured player response is absent or malformed.
var captionURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"baseUrl"\s*:\s*"([^"]*timedtext[^"]*)"`),
	regexp.MustCompile(`"baseUrl"\s*:\s*"([^"]*transcript[^"]*)"`),
	regexp.MustCompile(`"baseUrl"\s*:\s*"([^"]*caption[^"]*)"`),
}

// ScanCaptionURL scans raw HTML for any caption payload URL carrying an
// English language parameter and returns it unescaped.
func ScanCaptionURL(html string) (string, bool) {
	for _, re := range captionURLPatterns {
		for _, m := range re.FindAllStringSubmatch(html, -1) {
			u := strings.ReplaceAll(decodeUnicodeEscapes(m[1]), `\/`, "/")
			if strings.Contains(u, "lang=en") || strings.Contains(u, "tlang=en") {
				return u, true
			}
		}
	}
	return "", false
}
