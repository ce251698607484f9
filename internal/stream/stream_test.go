package stream

import (
	"testing"

	"go.uber.org/zap"

	"github.com/tracewall/sentinel/internal/engine"
)

func testSSNEngine(t *testing.T) *engine.CompiledEngine {
	t.Helper()
	d := engine.Detector{
		ID: "ssn", Category: engine.CategoryPII, Kind: engine.KindRegex,
		PatternSource: `\b\d{3}-\d{2}-\d{4}\b`, Risk: engine.RiskHigh,
		DefaultAction: engine.ActionMask,
	}
	eng, err := engine.Compile([]engine.Detector{d}, &engine.Policy{}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

func testSecretEngine(t *testing.T) *engine.CompiledEngine {
	t.Helper()
	d := engine.Detector{
		ID: "magic", Kind: engine.KindLiteral, Literals: []string{"supersecretvalue"},
		Risk: engine.RiskHigh, DefaultAction: engine.ActionMask,
	}
	eng, err := engine.Compile([]engine.Detector{d}, &engine.Policy{}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

func TestStreamingEquivalenceWholeInput(t *testing.T) {
	eng := testSSNEngine(t)
	input := "contact me, SSN 123-45-6789 thanks"

	oneShot, _, err := engine.Redact(input, eng, engine.ScanOptions{})
	if err != nil {
		t.Fatal(err)
	}

	for _, chunkSize := range []int{1, 2, 3, 5, 7, 11, len(input)} {
		chunks := splitIntoChunks(input, chunkSize)
		streamed, _ := RedactAll(chunks, eng, engine.ScanOptions{})
		if streamed != oneShot {
			t.Fatalf("chunk size %d: streamed=%q, want %q", chunkSize, streamed, oneShot)
		}
	}
}

func TestStreamingHitSplitAcrossChunkBoundary(t *testing.T) {
	eng := testSecretEngine(t)
	input := "prefix supersecretvalue suffix"

	// Split exactly in the middle of the literal pattern.
	splitAt := len("prefix super")
	chunks := []string{input[:splitAt], input[splitAt:]}

	streamed, hits := RedactAll(chunks, eng, engine.ScanOptions{})
	oneShot, _, err := engine.Redact(input, eng, engine.ScanOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if streamed != oneShot {
		t.Fatalf("streamed=%q, want %q", streamed, oneShot)
	}
	if len(hits) != 1 {
		t.Fatalf("expected exactly one hit across the boundary, got %d: %v", len(hits), hits)
	}
}

func TestStreamEmptyInput(t *testing.T) {
	eng := testSSNEngine(t)
	tr := NewTransform(eng, engine.ScanOptions{})
	out, hits := tr.Write("")
	if out != "" || len(hits) != 0 {
		t.Fatalf("expected empty output for empty chunk, got %q %v", out, hits)
	}
	out, hits = tr.Flush()
	if out != "" || len(hits) != 0 {
		t.Fatalf("expected empty flush for empty stream, got %q %v", out, hits)
	}
}

func TestStreamNoByteLostOrDoubled(t *testing.T) {
	eng := testSecretEngine(t)
	input := "aaaaaaaaaa supersecretvalue bbbbbbbbbb"
	chunks := splitIntoChunks(input, 4)

	var total int
	tr := NewTransform(eng, engine.ScanOptions{})
	for _, c := range chunks {
		out, _ := tr.Write(c)
		total += len(out)
	}
	out, _ := tr.Flush()
	total += len(out)

	// Every byte of input is accounted for exactly once in the combined
	// output stream (the literal hit is masked, not removed, so lengths
	// still line up one-for-one with the input in this case).
	if total != len(input) {
		t.Fatalf("accumulated write lengths (%d) don't match input length (%d)", total, len(input))
	}
}

func splitIntoChunks(s string, size int) []string {
	var chunks []string
	for i := 0; i < len(s); i += size {
		end := i + size
		if end > len(s) {
			end = len(s)
		}
		chunks = append(chunks, s[i:end])
	}
	if len(chunks) == 0 {
		chunks = append(chunks, "")
	}
	return chunks
}
