package engine

import (
	"sort"

	"github.com/google/uuid"
)

// Scan runs the multi-pattern matcher (C3) over already-normalized text,
// returning every candidate hit — including overlaps, which C5 resolves
// later — tagged with its detector id and byte span. Hits come back in
// start-ascending order, ties broken by end-descending (longer first), per
// §4.3. Literal hits include every overlapping occurrence. Regex hits come
// from a single leftmost-first pass of the combined alternation, so
// overlapping regex matches are not reported, and where two regex detectors
// could match at the same start only the one earliest in id order is.
func Scan(text string, eng *CompiledEngine) []Hit {
	if eng == nil {
		return nil
	}

	var raw []rawCandidate

	if eng.useAutomaton {
		acHits, _ := eng.automaton.scan(text, 0)
		for _, h := range acHits {
			raw = append(raw, rawCandidate{detectorID: h.detectorID, start: h.start, end: h.end})
		}
	} else if len(eng.literals) > 0 {
		for _, h := range literalScan(text, eng.literals) {
			raw = append(raw, rawCandidate{detectorID: h.detectorID, start: h.start, end: h.end})
		}
	}

	for _, h := range eng.regexes.scan(text) {
		raw = append(raw, rawCandidate{detectorID: h.detectorID, start: h.start, end: h.end})
	}

	sort.SliceStable(raw, func(i, j int) bool {
		if raw[i].start != raw[j].start {
			return raw[i].start < raw[j].start
		}
		return raw[i].end > raw[j].end
	})

	hits := make([]Hit, 0, len(raw))
	for _, r := range raw {
		d, ok := eng.Detectors[r.detectorID]
		if !ok {
			continue
		}
		hits = append(hits, Hit{
			ID:          uuid.NewString(),
			DetectorID:  d.ID,
			Category:    d.Category,
			Risk:        d.Risk,
			Start:       r.start,
			End:         r.end,
			MatchedText: text[r.start:r.end],
		})
	}
	return hits
}

type rawCandidate struct {
	detectorID string
	start, end int
}
