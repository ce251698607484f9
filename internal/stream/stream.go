// Package stream wraps internal/engine's scan/score/resolve/apply pipeline
// for unbounded input delivered as a sequence of chunks (C7), preserving
// matcher state across chunk boundaries the way laplaque's
// StreamingDeanonymize preserves a trailing suffix across SSE frames — an
// explicit carried struct, never package-level state.
package stream

import (
	"strings"

	"github.com/tracewall/sentinel/internal/engine"
)

// State is handed through every Write call and owned exclusively by its
// caller (§3, §5 "tail_buffer is exclusively owned by its StreamState").
// A hit that straddles a chunk boundary is never split between an emitted
// chunk and the retained tail: it is held back whole and re-detected, along
// with the rest of the tail, on the next Write or on Flush. The tail itself
// is the only record of unresolved state — there is no separate pending-hit
// list to keep in sync with it.
type State struct {
	eng  *engine.CompiledEngine
	opts engine.ScanOptions

	tail       string // bytes retained across the boundary: retainLen-1 bytes, or more when a held-back hit starts before that cut
	retainLen  int    // L: longest literal length + regex lookahead budget
	byteOffset int    // absolute position of tail[0] in the logical stream
}

// regexLookaheadBudget is the portion of the retention window reserved for
// variable-length regex matches that might span a chunk boundary. Sized to
// comfortably cover the built-in regex detectors' longest practical matches
// (a Bearer/JWT token, a street address, an IBAN), none of which approach
// it; unlike a literal, a regex has no fixed length to measure instead.
const regexLookaheadBudget = 256

// New creates streaming state bound to a compiled engine. The retention
// window (§4.7's L) covers the longest literal pattern in the engine, plus
// regexLookaheadBudget whenever the engine has any regex detectors, so a
// match longer than the longest literal can still span a chunk boundary
// without being silently dropped.
func New(eng *engine.CompiledEngine, opts engine.ScanOptions) *State {
	return &State{
		eng:       eng,
		opts:      opts,
		retainLen: retentionWindow(eng),
	}
}

func retentionWindow(eng *engine.CompiledEngine) int {
	if eng == nil {
		return 0
	}
	longest := 0
	hasRegex := false
	for _, id := range eng.Order {
		d := eng.Detectors[id]
		for _, lit := range d.Literals {
			if len(lit) > longest {
				longest = len(lit)
			}
		}
		if d.Kind == engine.KindRegex || d.Kind == engine.KindComposite {
			hasRegex = true
		}
	}
	if hasRegex {
		longest += regexLookaheadBudget
	}
	if longest == 0 {
		longest = regexLookaheadBudget
	}
	return longest
}

// Write scans tail+chunk, emits a redacted chunk for everything up to the
// new retained tail, and keeps the remaining bytes for the next call.
// Output bytes are produced in strict input order; no byte is ever counted
// in both the emitted output and the new tail, and no hit is ever emitted
// partially: the boundary is pulled back below the start of every hit that
// would otherwise straddle it, so a held hit's bytes stay in the tail
// whole, to be re-detected (and redacted) on the next Write or on Flush.
func (s *State) Write(chunk string) (string, []engine.Hit) {
	logical := s.tail + chunk
	hits := engine.Detect(logical, s.eng, s.opts)

	cut := len(logical) - (s.retainLen - 1)
	if s.retainLen <= 1 {
		cut = len(logical)
	}
	if cut < 0 {
		cut = 0
	}

	boundary := cut
	for moved := true; moved; {
		moved = false
		for _, h := range hits {
			if h.Start < boundary && h.End > boundary {
				boundary = h.Start
				moved = true
			}
		}
	}

	var emit []engine.Hit
	for _, h := range hits {
		if h.End <= boundary {
			emit = append(emit, h)
		}
	}

	emitText := logical[:boundary]
	out, reported, err := engine.ApplyActions(emitText, emit, s.eng, s.opts.Maskers)
	if err != nil {
		// MissingKey can only happen if the engine was compiled with a
		// tokenize action lacking a key, which Compile already rejects —
		// defensive only.
		out = emitText
		reported = nil
	}

	s.byteOffset += boundary
	s.tail = logical[boundary:]

	return out, reported
}

// Flush scans whatever remains in the tail with no further retention,
// emitting all remaining hits, per §4.7's end-of-stream behavior.
func (s *State) Flush() (string, []engine.Hit) {
	hits := engine.Detect(s.tail, s.eng, s.opts)
	out, reported, err := engine.ApplyActions(s.tail, hits, s.eng, s.opts.Maskers)
	if err != nil {
		out = s.tail
		reported = nil
	}
	s.byteOffset += len(s.tail)
	s.tail = ""
	return out, reported
}

// ByteOffset reports the absolute position in the logical stream that has
// been fully emitted (not counting the tail still held).
func (s *State) ByteOffset() int { return s.byteOffset }

// Transform is the engine-bound streaming function sentinel.Stream()
// returns: repeated Write calls followed by a final Flush.
type Transform struct {
	state *State
}

func NewTransform(eng *engine.CompiledEngine, opts engine.ScanOptions) *Transform {
	return &Transform{state: New(eng, opts)}
}

func (t *Transform) Write(chunk string) (string, []engine.Hit) { return t.state.Write(chunk) }
func (t *Transform) Flush() (string, []engine.Hit)             { return t.state.Flush() }

// RedactAll is a convenience helper that feeds an io-free slice of chunks
// through a Transform and concatenates the result — used by tests asserting
// the streaming-equivalence property (§8) and by small callers that already
// have all chunks in memory.
func RedactAll(chunks []string, eng *engine.CompiledEngine, opts engine.ScanOptions) (string, []engine.Hit) {
	tr := NewTransform(eng, opts)
	var b strings.Builder
	var hits []engine.Hit
	for _, c := range chunks {
		out, h := tr.Write(c)
		b.WriteString(out)
		hits = append(hits, h...)
	}
	out, h := tr.Flush()
	b.WriteString(out)
	hits = append(hits, h...)
	return b.String(), hits
}
