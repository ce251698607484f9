package detectors

import "github.com/tracewall/sentinel/internal/engine"

// All returns every built-in detector this package contributes: the
// hardcoded PII/secret/injection tables plus the embedded YAML
// supplemental dictionary. Compile errors from the embedded dictionary are
// a packaging bug, not a runtime condition, so All panics rather than
// returning an error — callers who need the fallible form can call
// LoadDefaultDictionary directly.
func All() []engine.Detector {
	out := make([]engine.Detector, 0, 64)
	out = append(out, PII()...)
	out = append(out, Secrets()...)
	out = append(out, Injection()...)

	supplemental, err := LoadDefaultDictionary()
	if err != nil {
		panic("detectors: embedded dictionary failed to parse: " + err.Error())
	}
	out = append(out, supplemental...)
	return out
}
