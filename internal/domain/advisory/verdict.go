// Package advisory holds the outcomes of knowledge verification and crop diagnosis.
package advisory

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Reasons reported when the verifier answer carries no reason of its own.
const (
	ReasonVerified    = "Verified Safe by AI"
	ReasonFlagged     = "Flagged as unsafe/irrelevant by AI"
	ReasonUnparseable = "AI parsing failed, requires human review"
)

// Verdict is the result of checking a knowledge tip before it is shared.
type Verdict struct {
	Safe   bool
	Reason string
}

var (
	safeTrue  = regexp.MustCompile(`"safe"\s*:\s*true`)
	safeFalse = regexp.MustCompile(`"safe"\s*:\s*false`)
	reasonRe  = regexp.MustCompile(`"reason"\s*:\s*"((?:[^"\\]|\\.)*)"`)
)

// ParseVerdict reads the verifier's JSON answer. Anything it cannot read as an
// explicit true or false verdict is unsafe, pending human review.
func ParseVerdict(raw string) Verdict {
	body := stripFences(raw)

	var v struct {
		Safe   *bool  `json:"safe"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(body), &v); err == nil && v.Safe != nil {
		return verdict(*v.Safe, v.Reason)
	}

	// Loose match for answers wrapped in prose.
	lower := strings.ToLower(body)
	switch {
	case safeTrue.MatchString(lower):
		return verdict(true, "")
	case safeFalse.MatchString(lower):
		reason := ""
		if m := reasonRe.FindStringSubmatch(body); m != nil {
			reason = m[1]
		}
		return verdict(false, reason)
	default:
		return Verdict{Safe: false, Reason: ReasonUnparseable}
	}
}

func verdict(safe bool, reason string) Verdict {
	if safe {
		return Verdict{Safe: true, Reason: ReasonVerified}
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = ReasonFlagged
	}
	return Verdict{Safe: false, Reason: reason}
}

// stripFences removes a markdown code fence around a JSON answer.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
