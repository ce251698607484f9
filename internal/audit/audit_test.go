package audit

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tracewall/sentinel/internal/engine"
)

func TestNewEventSummarizesHits(t *testing.T) {
	hits := []engine.Hit{
		{DetectorID: "ssn", Category: engine.CategoryPII, Risk: engine.RiskHigh, Confidence: 90, Action: engine.ActionMask},
		{DetectorID: "email", Category: engine.CategoryPII, Risk: engine.RiskMedium, Confidence: 70, Action: engine.ActionMask},
	}
	e := NewEvent("req-1", "abc123", engine.TrustUser, "my ssn is 123-45-6789", hits, 1.5, "sync")

	if e.HitCount != 2 {
		t.Fatalf("expected HitCount 2, got %d", e.HitCount)
	}
	if len(e.DetectorIDs) != 2 || e.DetectorIDs[0] != "ssn" || e.DetectorIDs[1] != "email" {
		t.Fatalf("unexpected DetectorIDs: %v", e.DetectorIDs)
	}
	if e.TextHash == "" {
		t.Fatal("expected a non-empty text hash")
	}
}

func TestTruncatePreviewNeverSplitsARune(t *testing.T) {
	text := "héllo wörld"
	got := TruncatePreview(text, 3)
	if len([]rune(got)) != 3 {
		t.Fatalf("expected 3 runes, got %q (%d runes)", got, len([]rune(got)))
	}
}

func TestLogWriterEmitsOneEntryPerEvent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	w := NewLogWriter(zap.New(core))
	defer w.Close()

	w.Write(NewEvent("req-2", "v1", engine.TrustUser, "text", nil, 0.1, "sync"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Message != "redaction_event" {
		t.Errorf("unexpected log message: %q", entries[0].Message)
	}
}
