package engine

import "strings"

// ScanOptions configures a single Detect/Redact call.
type ScanOptions struct {
	Trust   Trust
	Maskers map[string]Masker
}

func (o ScanOptions) trustOrDefault() Trust {
	if o.Trust == "" {
		return TrustUser
	}
	return o.Trust
}

// Detect runs C3→C5: scan, score, resolve — no output text produced.
// Callers pass already-normalized text (internal/normalize's job happens a
// layer up, in the sentinel facade, so OrigStart/OrigEnd can be filled in).
func Detect(text string, eng *CompiledEngine, opts ScanOptions) []Hit {
	if eng == nil {
		return nil
	}
	candidates := Scan(text, eng)
	trust := opts.trustOrDefault()
	for i := range candidates {
		d := eng.Detectors[candidates[i].DetectorID]
		if d == nil {
			continue
		}
		Score(&candidates[i], text, d, trust, eng.Policy)
	}
	return Resolve(candidates, eng)
}

// Redact runs C3→C6 over already-normalized text: detect, then apply each surviving
// hit's resolved action, producing the redacted text plus the structured
// hit report. Hits in the report carry the action actually applied.
func Redact(text string, eng *CompiledEngine, opts ScanOptions) (string, []Hit, error) {
	hits := Detect(text, eng, opts)
	return ApplyActions(text, hits, eng, opts.Maskers)
}

// ApplyActions implements C6 given already-resolved hits (as Resolve
// returns — sorted, non-overlapping, with Action set). It builds the
// output by walking hits in order and copying untouched spans verbatim.
func ApplyActions(text string, hits []Hit, eng *CompiledEngine, maskers map[string]Masker) (string, []Hit, error) {
	var b strings.Builder
	b.Grow(len(text))
	cursor := 0

	for i := range hits {
		h := &hits[i]
		if h.Start < cursor {
			// Defensive: Resolve guarantees non-overlap, but never let a
			// malformed hit corrupt the output by rewinding the cursor.
			continue
		}
		b.WriteString(text[cursor:h.Start])

		d := eng.Detectors[h.DetectorID]
		if d == nil {
			b.WriteString(h.MatchedText)
			cursor = h.End
			continue
		}

		switch h.Action {
		case ActionRemove:
			// emit nothing
		case ActionTokenize:
			if len(eng.Policy.HMACKey) == 0 {
				return "", nil, ErrMissingKey
			}
			b.WriteString(Tokenize(d.ID, h.MatchedText, eng.Policy.HMACKey))
		case ActionIgnore:
			b.WriteString(h.MatchedText)
		default: // ActionMask
			b.WriteString(resolveMasker(d, eng, maskers)(h.MatchedText, d))
		}
		cursor = h.End
	}
	b.WriteString(text[cursor:])

	return b.String(), hits, nil
}

func resolveMasker(d *Detector, eng *CompiledEngine, maskers map[string]Masker) Masker {
	id := eng.Policy.effectiveMaskerID(d)
	if id != "" && maskers != nil {
		if m, ok := maskers[id]; ok {
			return m
		}
	}
	return MaskGeneric
}
