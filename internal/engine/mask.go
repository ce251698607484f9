package engine

import "strings"

// Masker turns a matched substring into its redacted representation. The
// detector registry (internal/detectors) assigns these by MaskerID;
// Compile's caller wires the map passed to ApplyActions.
type Masker func(matchedText string, d *Detector) string

// MaskGeneric is the default masker when a detector has no MaskerID:
// "[REDACTED:<TYPE>]" (§6).
func MaskGeneric(matchedText string, d *Detector) string {
	return "[REDACTED:" + d.Label() + "]"
}

// MaskBullet produces a character-preserving bullet mask: every
// alphanumeric rune becomes '•', delimiters (anything else) pass through
// unchanged — e.g. "090-1234-5678" -> "•••-••••-••••".
func MaskBullet(matchedText string, d *Detector) string {
	var b strings.Builder
	for _, r := range matchedText {
		if isWordRune(r) {
			b.WriteRune('•')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MaskLastNVisible masks every alphanumeric rune except the last n,
// preserving delimiters — e.g. SSN "123-45-6789" with n=4 ->
// "***-**-6789".
func MaskLastNVisible(n int) Masker {
	return func(matchedText string, d *Detector) string {
		runes := []rune(matchedText)
		alnumIdx := make([]int, 0, len(runes))
		for i, r := range runes {
			if isWordRune(r) {
				alnumIdx = append(alnumIdx, i)
			}
		}
		visibleFrom := len(alnumIdx) - n
		visible := make(map[int]bool, n)
		for i := visibleFrom; i >= 0 && i < len(alnumIdx); i++ {
			visible[alnumIdx[i]] = true
		}
		var b strings.Builder
		for i, r := range runes {
			switch {
			case !isWordRune(r):
				b.WriteRune(r)
			case visible[i]:
				b.WriteRune(r)
			default:
				b.WriteRune('*')
			}
		}
		return b.String()
	}
}

// MaskFirstAndLastVisible masks the middle of a value while leaving a fixed
// number of leading and trailing alphanumeric characters visible, one '*'
// per hidden character — e.g. "secret123" with first=2, last=2 ->
// "se*****23".
func MaskFirstAndLastVisible(first, last int) Masker {
	return func(matchedText string, d *Detector) string {
		runes := []rune(matchedText)
		alnumIdx := make([]int, 0, len(runes))
		for i, r := range runes {
			if isWordRune(r) {
				alnumIdx = append(alnumIdx, i)
			}
		}
		visible := make(map[int]bool, first+last)
		for i := 0; i < first && i < len(alnumIdx); i++ {
			visible[alnumIdx[i]] = true
		}
		for i := len(alnumIdx) - last; i < len(alnumIdx); i++ {
			if i >= 0 {
				visible[alnumIdx[i]] = true
			}
		}
		var b strings.Builder
		for i, r := range runes {
			switch {
			case !isWordRune(r):
				b.WriteRune(r)
			case visible[i]:
				b.WriteRune(r)
			default:
				b.WriteRune('*')
			}
		}
		return b.String()
	}
}

func isWordRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r > 0x7f:
		// Treat other-script letters (e.g. Japanese address text) as
		// maskable content too, so bullet masks fully obscure the value.
		return true
	}
	return false
}
