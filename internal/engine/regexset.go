package engine

import (
	"fmt"
	"regexp"
)

// regexSet combines every regex-kind (and the regex half of composite-kind)
// detector into one alternation, each branch wrapped in a named group so a
// single FindAllStringSubmatchIndex pass identifies which detector fired —
// avoids running N separate regexes over the same text (§4.2).
type regexSet struct {
	re      *regexp.Regexp
	byGroup map[string]string // group name -> detector id
}

func buildRegexSet(detectors []*Detector) (*regexSet, error) {
	var parts []string
	byGroup := make(map[string]string)
	n := 0
	for _, d := range detectors {
		if d.Kind != KindRegex && d.Kind != KindComposite {
			continue
		}
		if d.Pattern == nil {
			continue
		}
		name := fmt.Sprintf("g%d", n)
		n++
		parts = append(parts, fmt.Sprintf("(?P<%s>%s)", name, d.Pattern.String()))
		byGroup[name] = d.ID
	}
	if len(parts) == 0 {
		return &regexSet{}, nil
	}
	combined := parts[0]
	for _, p := range parts[1:] {
		combined = combined + "|" + p
	}
	re, err := regexp.Compile(combined)
	if err != nil {
		return nil, fmt.Errorf("engine: combined regex set failed to compile: %w", err)
	}
	return &regexSet{re: re, byGroup: byGroup}, nil
}

type reHit struct {
	detectorID string
	start, end int
}

func (rs *regexSet) scan(text string) []reHit {
	if rs == nil || rs.re == nil {
		return nil
	}
	names := rs.re.SubexpNames()
	matches := rs.re.FindAllStringSubmatchIndex(text, -1)
	var hits []reHit
	for _, m := range matches {
		for gi := 1; gi < len(names); gi++ {
			if names[gi] == "" {
				continue
			}
			s, e := m[2*gi], m[2*gi+1]
			if s < 0 {
				continue
			}
			detID, ok := rs.byGroup[names[gi]]
			if !ok {
				continue
			}
			hits = append(hits, reHit{detectorID: detID, start: s, end: e})
		}
	}
	return hits
}
