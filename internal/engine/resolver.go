package engine

import "sort"

// Resolve implements C5: drop hits below threshold, sort by
// (start asc, end desc, confidence desc), then walk the list keeping the
// last emitted winner unless a later hit strictly outscores it and fully
// contains its span. Ties on confidence break by detector risk
// (high > medium > low), then by detector id, lexicographically, ascending
// (§4.5).
func Resolve(hits []Hit, eng *CompiledEngine) []Hit {
	if eng == nil {
		return nil
	}

	filtered := make([]Hit, 0, len(hits))
	for _, h := range hits {
		d, ok := eng.Detectors[h.DetectorID]
		if !ok {
			continue
		}
		threshold := eng.Policy.effectiveMinConfidence(d)
		if h.Confidence < threshold {
			continue
		}
		filtered = append(filtered, h)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End > b.End
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Risk.rank() != b.Risk.rank() {
			return a.Risk.rank() > b.Risk.rank()
		}
		return a.DetectorID < b.DetectorID
	})

	var result []Hit
	lastEnd := -1
	for _, h := range filtered {
		if h.Start >= lastEnd {
			result = append(result, h)
			lastEnd = h.End
			continue
		}
		if len(result) == 0 {
			continue
		}
		prev := &result[len(result)-1]
		fullyContains := h.Start <= prev.Start && h.End >= prev.End
		if h.Confidence > prev.Confidence && fullyContains {
			*prev = h
			lastEnd = h.End
		}
		// else: prior winner stands, h is dropped.
	}

	for i := range result {
		d := eng.Detectors[result[i].DetectorID]
		result[i].Action = eng.Policy.effectiveAction(d)
	}

	return result
}
