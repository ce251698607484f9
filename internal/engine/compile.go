package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"

	"go.uber.org/zap"
)

// CompiledEngine is the immutable output of Compile (§3). It is shared by
// multiple readers and never mutated after construction; swapping the
// published engine is a single pointer replacement (internal/reload).
type CompiledEngine struct {
	Version   string
	Detectors map[string]*Detector
	Order     []string // stable detector id order, ascending

	useAutomaton bool
	automaton    *automaton
	literals     []literalEntry // used directly when below compileThreshold
	regexes      *regexSet

	Policy *Policy
}

// droppedDetector records a detector that failed to compile, for logging
// and tests — never fatal on its own (§7).
type droppedDetector struct {
	id     string
	reason string
}

// Compile classifies each detector as literal or regex, builds the
// automaton or linear literal scanner per the size threshold, combines
// regex detectors into one alternation set, and returns an immutable
// CompiledEngine. Compilation is deterministic: detector order is sorted by
// id before any construction step runs, so the same detector set always
// yields the same engine.
func Compile(detectors []Detector, policy *Policy, logger *zap.Logger) (*CompiledEngine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == nil {
		policy = &Policy{}
	}

	sorted := make([]Detector, len(detectors))
	copy(sorted, detectors)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	valid := make(map[string]*Detector, len(sorted))
	var order []string
	var dropped []droppedDetector

	for i := range sorted {
		d := sorted[i]
		if d.ID == "" {
			dropped = append(dropped, droppedDetector{id: "<empty>", reason: "missing id"})
			continue
		}
		if _, dup := valid[d.ID]; dup {
			dropped = append(dropped, droppedDetector{id: d.ID, reason: "duplicate id"})
			continue
		}
		if d.Kind == KindRegex || d.Kind == KindComposite {
			if d.Pattern == nil {
				compiled, err := regexp.Compile(d.PatternSource)
				if err != nil {
					dropped = append(dropped, droppedDetector{id: d.ID, reason: err.Error()})
					logger.Warn("dropping detector with invalid pattern",
						zap.String("detector_id", d.ID), zap.Error(err))
					continue
				}
				d.Pattern = compiled
			}
		}
		if d.Kind == KindLiteral && len(d.Literals) == 0 {
			dropped = append(dropped, droppedDetector{id: d.ID, reason: "no literal patterns"})
			continue
		}
		dCopy := d
		valid[d.ID] = &dCopy
		order = append(order, d.ID)
	}

	if len(valid) == 0 {
		return nil, ErrPolicyEmpty
	}

	if err := validateTokenizeKey(valid, policy); err != nil {
		return nil, err
	}

	var literalEntries []literalEntry
	var regexDetectors []*Detector
	for _, id := range order {
		d := valid[id]
		if d.Kind == KindLiteral || d.Kind == KindComposite {
			for _, lit := range d.Literals {
				literalEntries = append(literalEntries, literalEntry{detectorID: d.ID, pattern: lit})
			}
		}
		if d.Kind == KindRegex || d.Kind == KindComposite {
			regexDetectors = append(regexDetectors, d)
		}
	}

	eng := &CompiledEngine{
		Detectors: valid,
		Order:     order,
		Policy:    policy,
	}

	if len(literalEntries) >= compileThreshold {
		eng.useAutomaton = true
		eng.automaton = buildAutomaton(literalEntries)
	} else {
		eng.literals = literalEntries
	}

	regexSet, err := buildRegexSet(regexDetectors)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	eng.regexes = regexSet

	eng.Version = versionStamp(order, valid)

	for _, dd := range dropped {
		logger.Warn("detector dropped at compile time", zap.String("detector_id", dd.id), zap.String("reason", dd.reason))
	}

	return eng, nil
}

// validateTokenizeKey enforces that MissingKey is raised synchronously at
// compile time, not at redact time (§4.6, §7).
func validateTokenizeKey(detectors map[string]*Detector, policy *Policy) error {
	for _, d := range detectors {
		if policy.effectiveAction(d) == ActionTokenize && len(policy.HMACKey) == 0 {
			return fmt.Errorf("engine: detector %q resolves to tokenize: %w", d.ID, ErrMissingKey)
		}
	}
	return nil
}

// versionStamp derives a stable version string from the compiled detector
// set so callers (and the reloader's on_swap callback) can tell engines
// apart without comparing pointers.
func versionStamp(order []string, detectors map[string]*Detector) string {
	h := sha256.New()
	for _, id := range order {
		d := detectors[id]
		h.Write([]byte(id))
		h.Write([]byte{0})
		h.Write([]byte(d.Kind))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
