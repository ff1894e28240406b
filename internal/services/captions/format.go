package captions

import "strings"

// Format identifies a caption payload's wire format, inferred by content
// sniffing rather than declared content type.
type Format int

const (
	FormatUnknown Format = iota
	FormatTimedTextXML
	FormatJSON3
	FormatSRT
	FormatVTT
)

func (f Format) String() string {
	switch f {
	case FormatTimedTextXML:
		return "timed-text-xml"
	case FormatJSON3:
		return "json3"
	case FormatSRT:
		return "srt"
	case FormatVTT:
		return "vtt"
	default:
		return "unknown"
	}
}

// Sniff classifies a raw payload. Order matters: WebVTT carries arrow timing
// lines too, so its header is checked before the SRT arrow test.
func Sniff(payload string) Format {
	trimmed := strings.TrimSpace(payload)
	switch {
	case trimmed == "":
		return FormatUnknown
	case strings.HasPrefix(trimmed, "WEBVTT"):
		return FormatVTT
	case strings.Contains(trimmed, "<text"):
		return FormatTimedTextXML
	case strings.HasPrefix(trimmed, "{"):
		return FormatJSON3
	case strings.Contains(trimmed, "-->"):
		return FormatSRT
	default:
		return FormatUnknown
	}
}

var parsers = map[Format]func(string) []string{
	FormatTimedTextXML: parseTimedTextXML,
	FormatJSON3:        parseJSON3,
	FormatSRT:          parseSRT,
	FormatVTT:          parseVTT,
	FormatUnknown:      parsePlain,
}

// Parse sniffs the payload format and runs the matching parser. Parsers never
// fail; irrecoverable input yields an empty fragment slice so the caller can
// fall through to the next source.
func Parse(payload string) ([]string, Format) {
	format := Sniff(payload)
	return parsers[format](payload), format
}

// ParseToText is the common fetch-side helper: parse and join in one step.
func ParseToText(payload string) (string, Format) {
	fragments, format := Parse(payload)
	return JoinFragments(fragments), format
}
