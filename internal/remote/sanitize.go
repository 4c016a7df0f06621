package remote

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/zgloszenie/accident-form/internal/api"
)

// The validation backend relays raw LLM output in the justification field.
// That text can arrive wrapped in code fences, as a whole JSON object, or
// with leftover scaffolding tokens, and none of it may reach the user.
var (
	fenceJSONRe    = regexp.MustCompile("(?i)```json\\s*")
	fenceRe        = regexp.MustCompile("```\\s*")
	embeddedJustRe = regexp.MustCompile(`\{[^{}]*"justification"\s*:\s*"([^"]+)"[^{}]*\}`)
	jsonObjectRe   = regexp.MustCompile(`\{[^}]*\}`)
	statusKVRe     = regexp.MustCompile(`"status"\s*:\s*"[^"]*"`)
	justKeyRe      = regexp.MustCompile(`"justification"\s*:\s*"?`)
	scaffoldRe     = regexp.MustCompile(`<\|[^|]+\|>`)
	needJSONRe     = regexp.MustCompile(`(?i)We need JSON[^.]*\.`)
	mustOutputRe   = regexp.MustCompile(`(?i)We must output[^.]*\.`)
	actualKeysRe   = regexp.MustCompile(`(?i)Actually keys:[^.]*\.`)
	emptyBracketRe = regexp.MustCompile(`\[\s*\]`)
	multiSpaceRe   = regexp.MustCompile(`\s{2,}`)
	punctOnlyRe    = regexp.MustCompile(`^[{}\[\]"':,\s]+$`)
)

const maxJustificationLen = 150

func fallbackMessage(status string) string {
	if status == api.StatusSuccess {
		return "Pole poprawne."
	}
	return "Pole wymaga poprawy."
}

// SanitizeJustification turns a raw backend justification into a short,
// human-readable hint. Unsalvageable input collapses to a generic message
// for the given status.
func SanitizeJustification(raw, status string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return fallbackMessage(status)
	}

	text = fenceJSONRe.ReplaceAllString(text, "")
	text = fenceRe.ReplaceAllString(text, "")

	if strings.HasPrefix(text, "{") || strings.Contains(text, `{"status"`) {
		if m := embeddedJustRe.FindStringSubmatch(text); m != nil {
			text = m[1]
		} else {
			var parsed struct {
				Justification string `json:"justification"`
			}
			if err := json.Unmarshal([]byte(text), &parsed); err == nil {
				// parsed fine: the justification is all we keep, even when
				// empty, so stripped-object fragments never reach the user
				text = parsed.Justification
			} else {
				text = jsonObjectRe.ReplaceAllString(text, "")
				text = statusKVRe.ReplaceAllString(text, "")
				text = justKeyRe.ReplaceAllString(text, "")
				text = strings.TrimSpace(text)
			}
		}
	}

	text = scaffoldRe.ReplaceAllString(text, "")
	text = needJSONRe.ReplaceAllString(text, "")
	text = mustOutputRe.ReplaceAllString(text, "")
	text = actualKeysRe.ReplaceAllString(text, "")
	text = emptyBracketRe.ReplaceAllString(text, "")
	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	runes := []rune(text)
	if len(runes) < 3 || punctOnlyRe.MatchString(text) {
		return fallbackMessage(status)
	}
	if len(runes) > maxJustificationLen {
		return string(runes[:maxJustificationLen-3]) + "..."
	}
	return text
}
