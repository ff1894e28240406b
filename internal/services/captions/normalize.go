// Package captions turns raw subtitle payloads into clean transcript text.
// It covers the four caption formats served by the platform (timed-text XML,
// JSON3 event streams, SRT, WebVTT), format sniffing, caption track selection
// from the embedded player configuration, and text normalization.
package captions

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// entityReplacer decodes the entity set that shows up in caption payloads.
	// Payloads are frequently double-encoded, so &amp; is decoded first.
	entityReplacer = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&apos;", "'",
		"&nbsp;", " ",
	)

	// escapeReplacer handles backslash escapes that survive JSON extraction.
	escapeReplacer = strings.NewReplacer(
		`\n`, " ",
		`\r`, " ",
		`\"`, `"`,
		`\'`, "'",
		`\/`, "/",
	)

	tagRE = regexp.MustCompile(`<[^>]+>`)

	// annotationRE removes non-speech markers only. Stripping arbitrary
	// bracketed text deletes genuine spoken content, so the list is fixed.
	annotationRE = regexp.MustCompile(`(?i)\[\s*(music|applause|laughter|inaudible)\s*\]`)

	spaceRE = regexp.MustCompile(`\s+`)
)

// Normalize cleans one raw caption fragment: decodes entities and escapes,
// strips markup and non-speech annotations, and collapses whitespace. It is
// pure and total; unparsable input degrades to best-effort cleaned output.
func Normalize(fragment string) string {
	if fragment == "" {
		return ""
	}

	text := entityReplacer.Replace(fragment)
	text = strings.ReplaceAll(text, " ", " ")
	text = decodeUnicodeEscapes(text)
	text = escapeReplacer.Replace(text)
	text = tagRE.ReplaceAllString(text, "")
	text = annotationRE.ReplaceAllString(text, " ")
	text = spaceRE.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// decodeUnicodeEscapes converts \uXXXX sequences to their runes. Invalid
// sequences pass through unchanged.
func decodeUnicodeEscapes(s string) string {
	if !strings.Contains(s, `\u`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '\\' && i+6 <= len(s) && s[i+1] == 'u' {
			if code, err := strconv.ParseUint(s[i+2:i+6], 16, 32); err == nil {
				b.WriteRune(rune(code))
				i += 6
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// JoinFragments concatenates cleaned fragments in source order with single
// spaces, producing the transcript text for one payload.
func JoinFragments(fragments []string) string {
	return strings.Join(fragments, " ")
}
