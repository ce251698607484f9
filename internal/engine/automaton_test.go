package engine

import (
	"reflect"
	"sort"
	"testing"
)

func TestBuildAutomatonFindsAllPatterns(t *testing.T) {
	entries := []literalEntry{
		{detectorID: "he", pattern: "he"},
		{detectorID: "she", pattern: "she"},
		{detectorID: "his", pattern: "his"},
		{detectorID: "hers", pattern: "hers"},
	}
	a := buildAutomaton(entries)
	hits, _ := a.scan("ushers", 0)

	var got []string
	for _, h := range hits {
		got = append(got, h.detectorID)
	}
	sort.Strings(got)
	want := []string{"he", "hers", "she"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAutomatonScanOffsetsExact(t *testing.T) {
	entries := []literalEntry{{detectorID: "tkn", pattern: "token"}}
	a := buildAutomaton(entries)
	hits, _ := a.scan("a token here", 0)
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].start != 2 || hits[0].end != 7 {
		t.Fatalf("got span [%d,%d), want [2,7)", hits[0].start, hits[0].end)
	}
}

func TestAutomatonResumesAcrossChunkBoundary(t *testing.T) {
	entries := []literalEntry{{detectorID: "tkn", pattern: "secret"}}
	a := buildAutomaton(entries)

	hits1, state := a.scan("this is a sec", 0)
	if len(hits1) != 0 {
		t.Fatalf("expected no hit in first chunk, got %v", hits1)
	}
	hits2, _ := a.scan("ret value", state)
	if len(hits2) != 1 {
		t.Fatalf("expected the pattern to be found resuming from saved state, got %v", hits2)
	}
}

func TestLiteralScanBelowThreshold(t *testing.T) {
	entries := []literalEntry{
		{detectorID: "a", pattern: "foo"},
		{detectorID: "b", pattern: "bar"},
	}
	hits := literalScan("foobar and foobar again", entries)
	if len(hits) != 4 {
		t.Fatalf("expected 4 hits, got %d: %v", len(hits), hits)
	}
}

func TestBuildRegexSetIdentifiesDetector(t *testing.T) {
	d1 := &Detector{ID: "ssn", Kind: KindRegex, Pattern: mustRegexp(`\d{3}-\d{2}-\d{4}`)}
	d2 := &Detector{ID: "email", Kind: KindRegex, Pattern: mustRegexp(`[a-z]+@[a-z]+\.[a-z]+`)}
	rs, err := buildRegexSet([]*Detector{d1, d2})
	if err != nil {
		t.Fatalf("buildRegexSet: %v", err)
	}
	hits := rs.scan("ssn 123-45-6789 email bob@example.com")
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d: %v", len(hits), hits)
	}
	byDetector := map[string]bool{}
	for _, h := range hits {
		byDetector[h.detectorID] = true
	}
	if !byDetector["ssn"] || !byDetector["email"] {
		t.Fatalf("expected both detectors to fire, got %v", hits)
	}
}
