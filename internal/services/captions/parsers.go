package captions

import (
	"encoding/json"
	"encoding/xml"
	"regexp"
	"strings"
)

type timedText struct {
	Lines []timedTextLine `xml:"text"`
}

type timedTextLine struct {
	Text string `xml:",chardata"`
}

// textElementRE recovers <text ...>content</text> elements when the XML
// decoder rejects the document as a whole.
var textElementRE = regexp.MustCompile(`<text[^>]*>([^<]+)</text>`)

// parseTimedTextXML extracts one fragment per <text> element. When the
// element grammar differs from the expected shape it degrades twice: first to
// a regex scan for text elements, then to stripping all markup from the whole
// payload and treating the remainder as a single fragment.
func parseTimedTextXML(payload string) []string {
	var tt timedText
	if err := xml.Unmarshal([]byte(payload), &tt); err == nil && len(tt.Lines) > 0 {
		fragments := make([]string, 0, len(tt.Lines))
		for _, line := range tt.Lines {
			if text := Normalize(line.Text); text != "" {
				fragments = append(fragments, text)
			}
		}
		if len(fragments) > 0 {
			return fragments
		}
	}

	if matches := textElementRE.FindAllStringSubmatch(payload, -1); len(matches) > 0 {
		fragments := make([]string, 0, len(matches))
		for _, m := range matches {
			if text := Normalize(m[1]); text != "" {
				fragments = append(fragments, text)
			}
		}
		if len(fragments) > 0 {
			return fragments
		}
	}

	return parsePlain(payload)
}

type json3Doc struct {
	Events []json3Event `json:"events"`
}

type json3Event struct {
	Segs []json3Seg `json:"segs"`
	Utf8 string     `json:"utf8"`
}

type json3Seg struct {
	Utf8 string `json:"utf8"`
}

// parseJSON3 walks the events array of a JSON3 stream: one fragment per
// segment, or the event's own text field when it carries no segments.
// Malformed JSON yields an empty slice, not an error.
func parseJSON3(payload string) []string {
	var doc json3Doc
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil
	}

	var fragments []string
	for _, event := range doc.Events {
		if len(event.Segs) > 0 {
			for _, seg := range event.Segs {
				if text := Normalize(seg.Utf8); text != "" {
					fragments = append(fragments, text)
				}
			}
			continue
		}
		if text := Normalize(event.Utf8); text != "" {
			fragments = append(fragments, text)
		}
	}
	return fragments
}

// sequenceLineRE matches SRT cue sequence numbers on their own line.
var sequenceLineRE = regexp.MustCompile(`^\d+$`)

// parseSRT keeps dialogue lines only: sequence-number lines and timing lines
// are dropped, everything else is normalized in file order.
func parseSRT(payload string) []string {
	var fragments []string
	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if sequenceLineRE.MatchString(line) {
			continue
		}
		if strings.Contains(line, "-->") {
			continue
		}
		if text := Normalize(line); text != "" {
			fragments = append(fragments, text)
		}
	}
	return fragments
}

// parseVTT applies the SRT line logic plus the WebVTT header and metadata
// line filters (WEBVTT, NOTE, Kind:, Language:).
func parseVTT(payload string) []string {
	var fragments []string
	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "WEBVTT") || strings.HasPrefix(line, "NOTE") {
			continue
		}
		if strings.HasPrefix(line, "Kind:") || strings.HasPrefix(line, "Language:") {
			continue
		}
		if sequenceLineRE.MatchString(line) {
			continue
		}
		if strings.Contains(line, "-->") {
			continue
		}
		if text := Normalize(line); text != "" {
			fragments = append(fragments, text)
		}
	}
	return fragments
}

// parsePlain treats the whole payload as a single fragment.
func parsePlain(payload string) []string {
	if text := Normalize(payload); text != "" {
		return []string{text}
	}
	return nil
}
