// Package audit records a structured trail of redaction outcomes. It sits
// entirely outside the redact path: Write is fire-and-forget, and a down
// sink never slows or blocks a caller's Redact call.
//
// Grounded on guard/internal/storage/events.go's SecurityEvent/EventWriter
// shape, renamed from a single gateway-verdict schema to one row per
// Redact call's hit report.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/tracewall/sentinel/internal/engine"
)

// EventWriter persists Events. Write must never block the caller; a writer
// backed by a slow sink buffers internally and drops on overflow.
type EventWriter interface {
	Write(event *Event)
	Close()
}

// Event is one Redact/Stream call's outcome.
type Event struct {
	RequestID      string
	EngineVersion  string
	Timestamp      time.Time
	Trust          engine.Trust
	TextPreview    string // first PreviewLength runes of the input
	TextHash       string // sha256 of the full input
	TextSize       uint32
	HitCount       int
	DetectorIDs    []string
	DetectorRisks  []string
	Confidences    []float32
	Actions        []string
	Categories     []string
	LatencyMs      float32
	Source         string // "sync" | "stream"
}

// PreviewLength is the max runes stored in TextPreview.
const PreviewLength = 500

// TruncatePreview returns the first maxLen runes of text, never splitting a
// multi-byte rune.
func TruncatePreview(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen])
}

// NewEvent builds an Event from a Redact call's inputs and outputs.
func NewEvent(requestID, engineVersion string, trust engine.Trust, text string, hits []engine.Hit, latencyMs float32, source string) *Event {
	sum := sha256.Sum256([]byte(text))
	e := &Event{
		RequestID:     requestID,
		EngineVersion: engineVersion,
		Timestamp:     time.Now(),
		Trust:         trust,
		TextPreview:   TruncatePreview(text, PreviewLength),
		TextHash:      hex.EncodeToString(sum[:]),
		TextSize:      uint32(len(text)),
		HitCount:      len(hits),
		LatencyMs:     latencyMs,
		Source:        source,
	}
	for _, h := range hits {
		e.DetectorIDs = append(e.DetectorIDs, h.DetectorID)
		e.DetectorRisks = append(e.DetectorRisks, string(h.Risk))
		e.Confidences = append(e.Confidences, float32(h.Confidence))
		e.Actions = append(e.Actions, string(h.Action))
		e.Categories = append(e.Categories, string(h.Category))
	}
	return e
}
