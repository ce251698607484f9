package engine

import (
	"testing"

	"go.uber.org/zap"
)

func buildTestEngine(t *testing.T, detectors []Detector, policy *Policy) *CompiledEngine {
	t.Helper()
	eng, err := Compile(detectors, policy, zap.NewNop())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return eng
}

func TestResolveDropsBelowThreshold(t *testing.T) {
	eng := buildTestEngine(t, []Detector{{
		ID: "x", Kind: KindLiteral, Literals: []string{"x"}, Risk: RiskLow,
		DefaultAction: ActionMask, MinConfidence: 90,
	}}, &Policy{})

	hits := []Hit{{DetectorID: "x", Start: 0, End: 1, Confidence: 10}}
	result := Resolve(hits, eng)
	if len(result) != 0 {
		t.Fatalf("expected hit below threshold to be dropped, got %v", result)
	}
}

func TestResolveKeepsPriorWhenNewHitDoesNotFullyContain(t *testing.T) {
	eng := buildTestEngine(t, []Detector{
		{ID: "a", Kind: KindLiteral, Literals: []string{"a"}, Risk: RiskLow, DefaultAction: ActionMask},
		{ID: "b", Kind: KindLiteral, Literals: []string{"b"}, Risk: RiskLow, DefaultAction: ActionMask},
	}, &Policy{})

	hits := []Hit{
		{DetectorID: "a", Start: 0, End: 5, Confidence: 80},
		{DetectorID: "b", Start: 3, End: 6, Confidence: 95}, // overlaps but does not fully contain
	}
	result := Resolve(hits, eng)
	if len(result) != 1 || result[0].DetectorID != "a" {
		t.Fatalf("expected only the first (fully-contained check failed) hit to survive, got %v", result)
	}
}

func TestResolveReplacesWhenFullyContainedAndHigherConfidence(t *testing.T) {
	eng := buildTestEngine(t, []Detector{
		{ID: "a", Kind: KindLiteral, Literals: []string{"a"}, Risk: RiskLow, DefaultAction: ActionMask},
		{ID: "b", Kind: KindLiteral, Literals: []string{"b"}, Risk: RiskLow, DefaultAction: ActionMask},
	}, &Policy{})

	hits := []Hit{
		{DetectorID: "a", Start: 2, End: 5, Confidence: 50},
		{DetectorID: "b", Start: 0, End: 8, Confidence: 90}, // fully contains "a"'s span
	}
	result := Resolve(hits, eng)
	if len(result) != 1 || result[0].DetectorID != "b" {
		t.Fatalf("expected fully-containing higher-confidence hit to win, got %v", result)
	}
}

func TestResolveOutputsInOriginalOrder(t *testing.T) {
	eng := buildTestEngine(t, []Detector{
		{ID: "a", Kind: KindLiteral, Literals: []string{"a"}, Risk: RiskLow, DefaultAction: ActionMask},
		{ID: "b", Kind: KindLiteral, Literals: []string{"b"}, Risk: RiskLow, DefaultAction: ActionMask},
	}, &Policy{})

	hits := []Hit{
		{DetectorID: "b", Start: 10, End: 11, Confidence: 80},
		{DetectorID: "a", Start: 0, End: 1, Confidence: 80},
	}
	result := Resolve(hits, eng)
	if len(result) != 2 || result[0].Start != 0 || result[1].Start != 10 {
		t.Fatalf("expected ascending-start order, got %v", result)
	}
}

func TestResolveAssignsAction(t *testing.T) {
	eng := buildTestEngine(t, []Detector{
		{ID: "a", Kind: KindLiteral, Literals: []string{"a"}, Risk: RiskLow, DefaultAction: ActionRemove},
	}, &Policy{Rules: map[string]PolicyRule{"a": {Action: ActionTokenize}}, HMACKey: []byte("k")})

	hits := []Hit{{DetectorID: "a", Start: 0, End: 1, Confidence: 80}}
	result := Resolve(hits, eng)
	if len(result) != 1 || result[0].Action != ActionTokenize {
		t.Fatalf("expected policy rule action override to win, got %v", result)
	}
}
