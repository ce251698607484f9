package engine

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

func ssnDetector() Detector {
	return Detector{
		ID:            "ssn",
		Category:      CategoryPII,
		Kind:          KindRegex,
		PatternSource: `\b\d{3}-\d{2}-\d{4}\b`,
		Risk:          RiskHigh,
		DefaultAction: ActionMask,
		MinConfidence: 50,
	}
}

func TestCompileDropsInvalidRegexButSucceeds(t *testing.T) {
	good := ssnDetector()
	bad := Detector{ID: "broken", Kind: KindRegex, PatternSource: `(unterminated`, Risk: RiskLow}

	eng, err := Compile([]Detector{good, bad}, &Policy{}, zap.NewNop())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, ok := eng.Detectors["broken"]; ok {
		t.Fatalf("expected invalid detector to be dropped")
	}
	if _, ok := eng.Detectors["ssn"]; !ok {
		t.Fatalf("expected valid detector to survive")
	}
}

func TestCompileAllInvalidReturnsPolicyEmpty(t *testing.T) {
	bad := Detector{ID: "broken", Kind: KindRegex, PatternSource: `(unterminated`, Risk: RiskLow}
	_, err := Compile([]Detector{bad}, &Policy{}, zap.NewNop())
	if !errors.Is(err, ErrPolicyEmpty) {
		t.Fatalf("expected ErrPolicyEmpty, got %v", err)
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	detectors := []Detector{ssnDetector(), {
		ID: "aaa", Kind: KindLiteral, Literals: []string{"foo", "bar"}, Risk: RiskLow, DefaultAction: ActionMask,
	}}
	e1, err := Compile(detectors, &Policy{}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	e2, err := Compile(detectors, &Policy{}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if e1.Version != e2.Version {
		t.Fatalf("expected identical version stamps for identical input, got %q vs %q", e1.Version, e2.Version)
	}
	for i := range e1.Order {
		if e1.Order[i] != e2.Order[i] {
			t.Fatalf("detector order differs: %v vs %v", e1.Order, e2.Order)
		}
	}
}

func TestCompileUsesAutomatonAtThreshold(t *testing.T) {
	var detectors []Detector
	for i := 0; i < compileThreshold; i++ {
		detectors = append(detectors, Detector{
			ID: string(rune('a' + i)), Kind: KindLiteral, Literals: []string{string(rune('a' + i))},
			Risk: RiskLow, DefaultAction: ActionMask,
		})
	}
	eng, err := Compile(detectors, &Policy{}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if !eng.useAutomaton {
		t.Fatalf("expected automaton to be used at %d literal patterns", compileThreshold)
	}
}

func TestCompileMissingKeyForTokenizeAction(t *testing.T) {
	d := ssnDetector()
	d.DefaultAction = ActionTokenize
	_, err := Compile([]Detector{d}, &Policy{}, zap.NewNop())
	if !errors.Is(err, ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey, got %v", err)
	}
}

func TestCompileTokenizeWithKeySucceeds(t *testing.T) {
	d := ssnDetector()
	d.DefaultAction = ActionTokenize
	_, err := Compile([]Detector{d}, &Policy{HMACKey: []byte("k")}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
