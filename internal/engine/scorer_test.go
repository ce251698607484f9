package engine

import "testing"

func TestScoreBoundaryBonus(t *testing.T) {
	d := &Detector{ID: "x", Risk: RiskLow}
	text := "value=123 end"
	h := Hit{Start: 6, End: 9, MatchedText: "123"}
	Score(&h, text, d, TrustUser, nil)
	if h.Features.Boundary != boundaryBonusMax {
		t.Fatalf("expected boundary bonus, got features %+v", h.Features)
	}
}

func TestScoreContextHintBonusDecaysWithDistance(t *testing.T) {
	d := &Detector{ID: "x", Risk: RiskLow, ContextHints: []string{"ssn"}}
	near := "ssn: 123-45-6789"
	far := "123-45-6789" + paddedSpaces(30) + "ssn"

	hNear := Hit{Start: 5, End: 16, MatchedText: "123-45-6789"}
	Score(&hNear, near, d, TrustUser, nil)

	hFar := Hit{Start: 0, End: 11, MatchedText: "123-45-6789"}
	Score(&hFar, far, d, TrustUser, nil)

	if hNear.Features.ContextHintBonus <= hFar.Features.ContextHintBonus {
		t.Fatalf("expected closer hint to score higher bonus: near=%d far=%d",
			hNear.Features.ContextHintBonus, hFar.Features.ContextHintBonus)
	}
}

func TestScoreNegativeHintLowersConfidence(t *testing.T) {
	d := &Detector{ID: "x", Risk: RiskLow, NegativeHints: []string{"example"}}
	text := "example: 123-45-6789"
	withHint := Hit{Start: 9, End: 20, MatchedText: "123-45-6789"}
	Score(&withHint, text, d, TrustUser, nil)

	d2 := &Detector{ID: "x", Risk: RiskLow}
	withoutHint := Hit{Start: 9, End: 20, MatchedText: "123-45-6789"}
	Score(&withoutHint, text, d2, TrustUser, nil)

	if withHint.Confidence >= withoutHint.Confidence {
		t.Fatalf("expected negative hint to reduce confidence: with=%d without=%d",
			withHint.Confidence, withoutHint.Confidence)
	}
}

func TestScoreMonotoneContextHint(t *testing.T) {
	// Adding a matching positive context hint near a true match must never
	// decrease its emitted confidence (§8 monotone-context property).
	without := &Detector{ID: "x", Risk: RiskMedium}
	text := "phone 555-123-4567"
	h1 := Hit{Start: 6, End: 18, MatchedText: "555-123-4567"}
	Score(&h1, text, without, TrustUser, nil)

	withHint := &Detector{ID: "x", Risk: RiskMedium, ContextHints: []string{"phone"}}
	h2 := Hit{Start: 6, End: 18, MatchedText: "555-123-4567"}
	Score(&h2, text, withHint, TrustUser, nil)

	if h2.Confidence < h1.Confidence {
		t.Fatalf("adding matching context hint lowered confidence: %d -> %d", h1.Confidence, h2.Confidence)
	}
}

func TestScoreTrustAdjustmentOnlyAppliesToInjectionCategory(t *testing.T) {
	piiDetector := &Detector{ID: "x", Risk: RiskMedium, Category: CategoryPII}
	text := "123-45-6789"
	hSystem := Hit{Start: 0, End: 11, MatchedText: text}
	Score(&hSystem, text, piiDetector, TrustSystem, nil)
	hUntrusted := Hit{Start: 0, End: 11, MatchedText: text}
	Score(&hUntrusted, text, piiDetector, TrustUntrusted, nil)
	if hSystem.Confidence != hUntrusted.Confidence {
		t.Fatalf("trust adjustment should not apply to non-injection categories: system=%d untrusted=%d",
			hSystem.Confidence, hUntrusted.Confidence)
	}

	injDetector := &Detector{ID: "y", Risk: RiskMedium, Category: CategoryInjection}
	hSys := Hit{Start: 0, End: 11, MatchedText: text}
	Score(&hSys, text, injDetector, TrustSystem, nil)
	hUn := Hit{Start: 0, End: 11, MatchedText: text}
	Score(&hUn, text, injDetector, TrustUntrusted, nil)
	if hSys.Confidence >= hUn.Confidence {
		t.Fatalf("expected untrusted > system for injection category: system=%d untrusted=%d",
			hSys.Confidence, hUn.Confidence)
	}
}

func TestScoreClampedToRange(t *testing.T) {
	d := &Detector{ID: "x", Risk: RiskHigh, ContextHints: []string{"a", "b", "c"}}
	text := "a b c 999999999"
	h := Hit{Start: 6, End: 15, MatchedText: "999999999"}
	Score(&h, text, d, TrustUntrusted, nil)
	if h.Confidence < 0 || h.Confidence > 100 {
		t.Fatalf("confidence out of range: %d", h.Confidence)
	}
}

func paddedSpaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
