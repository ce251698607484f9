package detectors

import (
	"strings"

	"github.com/tracewall/sentinel/internal/engine"
)

// MaskCookieValue masks only the value half of a "key=value" match, leaving
// the key name untouched — the cookie-allowlist shape from §8 scenario 4
// ("session_token=se****23"): the first and last runes of the value stay
// visible around a fixed "****", whatever the value's length. A value no
// longer than first+last becomes "****" alone. Falls back to
// engine.MaskFirstAndLastVisible over the whole matched text if no '=' is
// present.
func MaskCookieValue(first, last int) engine.Masker {
	inner := engine.MaskFirstAndLastVisible(first, last)
	return func(matchedText string, d *engine.Detector) string {
		eq := strings.IndexByte(matchedText, '=')
		if eq < 0 {
			return inner(matchedText, d)
		}
		value := []rune(matchedText[eq+1:])
		if len(value) <= first+last {
			return matchedText[:eq+1] + "****"
		}
		return matchedText[:eq+1] + string(value[:first]) + "****" + string(value[len(value)-last:])
	}
}

// fixedReplacement returns a masker that ignores the matched text entirely
// and substitutes a fixed placeholder — used for injection/jailbreak classes
// where the redacted form is a sentinel string, not a shape-preserving mask
// (§8 scenario 5).
func fixedReplacement(placeholder string) engine.Masker {
	return func(matchedText string, d *engine.Detector) string {
		return placeholder
	}
}

// DefaultMaskers returns the MaskerID -> Masker bindings the built-in
// detectors in this package reference. Callers merge this into whatever
// masker set they pass to engine.ApplyActions/RedactAll.
func DefaultMaskers() map[string]engine.Masker {
	return map[string]engine.Masker{
		"bullet":              engine.MaskBullet,
		"last4":               engine.MaskLastNVisible(4),
		"cookie_value":        MaskCookieValue(2, 2),
		"sanitize_override":   fixedReplacement("[REQUEST_TO_IGNORE_INSTRUCTIONS]"),
		"sanitize_extraction": fixedReplacement("[INFO_EXTRACTION_ATTEMPT]"),
		"sanitize_delimiter":  fixedReplacement("[DELIMITER_INJECTION_ATTEMPT]"),
		"sanitize_jailbreak":  fixedReplacement("[JAILBREAK_ATTEMPT]"),
	}
}
