package engine

import "strings"

// Scorer tuning constants. Each scorer term has a configured maximum (§4.4);
// these values are fixed — a Policy has no field that overrides them.
const (
	baseRiskLow    = 30
	baseRiskMedium = 55
	baseRiskHigh   = 75

	boundaryBonusMax  = 10
	contextHintMax    = 20
	contextHintRadius = 40 // bytes; bonus decays linearly to 0 at this distance
	negativeHintMax   = 25

	trustInjectionSystem    = -20
	trustInjectionUntrusted = 15

	structuralPenaltyMax = 15
)

func baseRiskScore(r Risk) int {
	switch r {
	case RiskHigh:
		return baseRiskHigh
	case RiskMedium:
		return baseRiskMedium
	default:
		return baseRiskLow
	}
}

// Score computes a hit's final confidence in [0,100] per §4.4's formula.
// It is pure: given the hit, the surrounding text, the detector and the
// trust level, the output is deterministic — no hidden state, no RNG.
func Score(hit *Hit, text string, d *Detector, trust Trust, policy *Policy) {
	f := HitFeatures{BaseRisk: baseRiskScore(d.Risk)}

	if isBoundary(text, hit.Start) && isBoundary(text, hit.End) {
		f.Boundary = boundaryBonusMax
	}

	hints := d.ContextHints
	if policy != nil && len(policy.ContextHintsGlobal) > 0 {
		hints = append(append([]string{}, hints...), policy.ContextHintsGlobal...)
	}
	if dist, found := nearestHintDistance(text, hit.Start, hit.End, hints); found {
		f.ContextHintBonus = decayBonus(dist, contextHintRadius, contextHintMax)
	}

	if _, found := nearestHintDistance(text, hit.Start, hit.End, d.NegativeHints); found {
		f.NegativePenalty = negativeHintMax
	}

	if d.Category == CategoryInjection {
		switch trust {
		case TrustSystem:
			f.TrustAdjustment = trustInjectionSystem
		case TrustUntrusted:
			f.TrustAdjustment = trustInjectionUntrusted
		}
	}

	if looksLikeLongerToken(text, hit.Start, hit.End) {
		f.StructuralPenalty = structuralPenaltyMax
	}

	total := f.BaseRisk + f.Boundary + f.ContextHintBonus - f.NegativePenalty + f.TrustAdjustment - f.StructuralPenalty
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	hit.Confidence = total
	hit.Features = f
}

// isBoundary reports whether position pos in text sits at a non-alphanumeric
// (or string-edge) boundary — the start/end of the string always counts.
func isBoundary(text string, pos int) bool {
	if pos <= 0 || pos >= len(text) {
		return true
	}
	return !isWordByte(text[pos-1]) || !isWordByte(text[pos])
}

func isWordByte(b byte) bool {
	switch {
	case b >= '0' && b <= '9':
		return true
	case b >= 'a' && b <= 'z':
		return true
	case b >= 'A' && b <= 'Z':
		return true
	}
	return false
}

// looksLikeLongerToken reports whether the hit is immediately flanked by a
// byte of the same "word" class, suggesting it's a slice of a longer
// identifier/number rather than a standalone token (§4.4's "parses as a
// number where a token is expected" case generalized to any word-class
// adjacency).
func looksLikeLongerToken(text string, start, end int) bool {
	if start > 0 && isWordByte(text[start-1]) && isWordByte(text[start]) {
		return true
	}
	if end < len(text) && isWordByte(text[end-1]) && isWordByte(text[end]) {
		return true
	}
	return false
}

// nearestHintDistance finds the smallest byte distance from [start,end) to
// any occurrence of any hint, searching both directions.
func nearestHintDistance(text string, start, end int, hints []string) (int, bool) {
	best := -1
	lo := start - contextHintRadius
	if lo < 0 {
		lo = 0
	}
	hi := end + contextHintRadius
	if hi > len(text) {
		hi = len(text)
	}
	window := text[lo:hi]

	for _, h := range hints {
		if h == "" {
			continue
		}
		for searchFrom := 0; ; {
			idx := strings.Index(window[searchFrom:], h)
			if idx < 0 {
				break
			}
			abs := lo + searchFrom + idx
			var dist int
			switch {
			case abs+len(h) <= start:
				dist = start - (abs + len(h))
			case abs >= end:
				dist = abs - end
			default:
				dist = 0 // hint overlaps the hit itself
			}
			if best < 0 || dist < best {
				best = dist
			}
			searchFrom += idx + 1
			if searchFrom >= len(window) {
				break
			}
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// decayBonus linearly decays max to 0 as dist goes from 0 to radius.
func decayBonus(dist, radius, max int) int {
	if dist >= radius {
		return 0
	}
	if dist <= 0 {
		return max
	}
	return max - (max*dist)/radius
}
