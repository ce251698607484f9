package detectors

import (
	"embed"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/tracewall/sentinel/internal/engine"
)

//go:embed dictionaries/*.yaml
var defaultDictionaryFS embed.FS

// dictionaryFile mirrors ghostsecurity-poltergeist's RuleFile: a thin YAML
// wrapper around a list of entries, loaded once at startup via go:embed
// rather than fetched at request time.
type dictionaryFile struct {
	Entries []dictionaryEntry `yaml:"entries"`
}

// dictionaryEntry is the on-disk shape for one supplemental detector,
// narrower than engine.Detector the same way poltergeist's Rule is narrower
// than its RuntimeRule — authors don't write risk scoring internals by hand.
type dictionaryEntry struct {
	ID            string   `yaml:"id"`
	TypeLabel     string   `yaml:"type"`
	Pattern       string   `yaml:"pattern"`
	Risk          string   `yaml:"risk"`
	Action        string   `yaml:"action"`
	Masker        string   `yaml:"masker"`
	ContextHints  []string `yaml:"context_hints"`
	NegativeHints []string `yaml:"negative_hints"`
	MinConfidence int      `yaml:"min_confidence"`
}

func (e dictionaryEntry) toDetector() (engine.Detector, error) {
	if e.ID == "" {
		return engine.Detector{}, fmt.Errorf("detectors: dictionary entry missing id")
	}
	if e.Pattern == "" {
		return engine.Detector{}, fmt.Errorf("detectors: dictionary entry %q missing pattern", e.ID)
	}
	risk := engine.Risk(e.Risk)
	switch risk {
	case engine.RiskLow, engine.RiskMedium, engine.RiskHigh:
	case "":
		risk = engine.RiskMedium
	default:
		return engine.Detector{}, fmt.Errorf("detectors: dictionary entry %q has unknown risk %q", e.ID, e.Risk)
	}
	action := engine.Action(e.Action)
	if action == "" {
		action = engine.ActionMask
	}
	return engine.Detector{
		ID:            e.ID,
		Category:      engine.CategoryCustom,
		Kind:          engine.KindRegex,
		PatternSource: e.Pattern,
		Risk:          risk,
		DefaultAction: action,
		MaskerID:      e.Masker,
		TypeLabel:     e.TypeLabel,
		ContextHints:  e.ContextHints,
		NegativeHints: e.NegativeHints,
		MinConfidence: e.MinConfidence,
	}, nil
}

// LoadDefaultDictionary parses the dictionaries embedded at build time,
// following poltergeist's LoadDefaultRules shape (embed.FS + yaml.Unmarshal,
// no network access for the built-in set).
func LoadDefaultDictionary() ([]engine.Detector, error) {
	entries, err := fs.Glob(defaultDictionaryFS, "dictionaries/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("detectors: globbing embedded dictionaries: %w", err)
	}
	var out []engine.Detector
	for _, name := range entries {
		raw, err := defaultDictionaryFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("detectors: reading %s: %w", name, err)
		}
		ds, err := ParseDictionaryYAML(raw)
		if err != nil {
			return nil, fmt.Errorf("detectors: parsing %s: %w", name, err)
		}
		out = append(out, ds...)
	}
	return out, nil
}

// ParseDictionaryYAML parses one YAML dictionary document into Detectors.
// Supplemental dictionaries delivered through internal/reload's dictionary
// manifest use the JSON DictionaryDocument shape in internal/engine/schema.go
// instead; this YAML form is for the embedded built-ins and hand-authored
// local overrides.
func ParseDictionaryYAML(raw []byte) ([]engine.Detector, error) {
	var file dictionaryFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("detectors: invalid dictionary yaml: %w", err)
	}
	out := make([]engine.Detector, 0, len(file.Entries))
	for _, e := range file.Entries {
		d, err := e.toDetector()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
