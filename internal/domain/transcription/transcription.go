package transcription

import (
	"regexp"
	"strings"
)

// UnknownLanguage is reported when the generator output carries no language tag.
const UnknownLanguage = "Unknown"

var languageTag = regexp.MustCompile(`^\[Language: (.+?)\]`)

// Result is a parsed transcription.
type Result struct {
	Language   string
	Transcript string
	Raw        string
}

// Parse extracts the leading "[Language: X]" tag from a generator response.
// Without a tag the language is UnknownLanguage and the transcript is the whole response.
func Parse(raw string) Result {
	m := languageTag.FindStringSubmatchIndex(raw)
	if m == nil {
		return Result{Language: UnknownLanguage, Transcript: raw, Raw: raw}
	}
	return Result{
		Language:   raw[m[2]:m[3]],
		Transcript: strings.TrimSpace(raw[m[1]:]),
		Raw:        raw,
	}
}
