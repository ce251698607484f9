// Package normalize canonicalizes text before it reaches the matcher (C1).
//
// Normalization never allocates more than it has to: pure-ASCII input (the
// overwhelming common case for logs and API payloads) takes an identity
// fast path and is returned unchanged, mirroring the precompiled-pattern,
// no-surprise-allocation style of guard/internal/engine/detectors.
package normalize

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// Options controls optional normalization behavior beyond the mandatory
// Unicode folding and invisible-character stripping.
type Options struct {
	// CollapseWhitespace collapses runs of whitespace into a single space.
	// Disabled by default because it changes byte offsets more aggressively
	// than callers may expect from a "normalize" step.
	CollapseWhitespace bool
}

// segment records a contiguous mapping between a range of the output
// (normalized-domain) string and a range of the input to this stage.
type segment struct {
	normStart, normEnd int
	origStart, origEnd int
}

// OffsetMap translates a byte offset in normalized text back to the
// corresponding byte offset in the original input. It is monotone: later
// normalized offsets never map to earlier original offsets.
type OffsetMap struct {
	identity bool
	breaks   []segment
	normLen  int
	origLen  int
	chain    *OffsetMap // applied to this map's output before returning
}

func identityMap(n int) OffsetMap {
	return OffsetMap{identity: true, normLen: n, origLen: n}
}

// Translate maps a byte offset in this map's normalized domain to a byte
// offset in the original input that produced it.
func (m *OffsetMap) Translate(off int) int {
	if m == nil {
		return off
	}
	mid := m.translateLocal(off)
	if m.chain != nil {
		return m.chain.Translate(mid)
	}
	return mid
}

func (m *OffsetMap) translateLocal(off int) int {
	if m.identity {
		return off
	}
	if off <= 0 {
		return 0
	}
	if off >= m.normLen {
		return m.origLen
	}
	i := sort.Search(len(m.breaks), func(i int) bool {
		return m.breaks[i].normEnd > off
	})
	if i == len(m.breaks) {
		return m.origLen
	}
	seg := m.breaks[i]
	if off < seg.normStart {
		// Can't happen for contiguous construction, but stay defensive.
		return seg.origStart
	}
	if seg.normEnd-seg.normStart == seg.origEnd-seg.origStart {
		// Length-preserving segment: offsets translate proportionally.
		return seg.origStart + (off - seg.normStart)
	}
	// Length-changing segment (composition or stripping collapsed several
	// source runes into fewer output bytes, or vice versa): the whole
	// output segment maps back to the whole source segment.
	return seg.origStart
}

// Span maps a [start,end) byte range in normalized text back to the
// smallest original-input byte range that produced it.
func (m *OffsetMap) Span(start, end int) (int, int) {
	return m.Translate(start), m.Translate(end)
}

// isASCIIFast reports whether b is printable ASCII or plain whitespace —
// the set of bytes the fast path accepts unchanged.
func isASCIIFast(b byte) bool {
	if b >= 0x20 && b < 0x7f {
		return true
	}
	return b == '\t' || b == '\n' || b == '\r'
}

func isPureASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isASCIIFast(s[i]) {
			return false
		}
	}
	return true
}

// Normalize canonicalizes input for matching: it strips zero-width and
// bidi-control characters (Unicode category Cf), folds fullwidth ASCII and
// the fullwidth space to their halfwidth forms, composes combining marks
// onto their base characters, and, if requested, collapses whitespace runs.
// It returns the normalized text plus an OffsetMap translating
// normalized-text offsets back to the original input.
//
// Malformed UTF-8 is replaced with U+FFFD and processing continues; this
// function never returns an error.
func Normalize(input string, opts Options) (string, OffsetMap) {
	if input == "" {
		return "", identityMap(0)
	}
	if isPureASCII(input) && !opts.CollapseWhitespace {
		return input, identityMap(len(input))
	}

	stageA, mapA := foldAndStrip(input)
	stageB, mapB := composeMarks(stageA)
	mapB.chain = &mapA

	if !opts.CollapseWhitespace {
		return stageB, mapB
	}

	stageC, mapC := collapseWhitespace(stageB)
	mapC.chain = &mapB
	return stageC, mapC
}

// foldAndStrip removes invisible/bidi-control runes and folds fullwidth
// ASCII (and the fullwidth space) to their halfwidth forms, one rune at a
// time so the offset map stays exact per rune.
func foldAndStrip(s string) (string, OffsetMap) {
	var b strings.Builder
	b.Grow(len(s))
	breaks := make([]segment, 0, len(s)/2+1)

	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])

		if unicode.Is(unicode.Cf, r) {
			i += size
			continue
		}

		out := r
		switch r {
		case 0x3000: // IDEOGRAPHIC SPACE
			out = ' '
		default:
			if p := width.LookupRune(r); p.Kind() == width.EastAsianFullwidth || p.Kind() == width.EastAsianHalfwidth {
				if f := p.Folded(); f != 0 {
					out = f
				}
			}
		}

		normStart := b.Len()
		b.WriteRune(out)
		breaks = append(breaks, segment{
			normStart: normStart,
			normEnd:   b.Len(),
			origStart: i,
			origEnd:   i + size,
		})
		i += size
	}

	out := b.String()
	return out, OffsetMap{breaks: breaks, normLen: len(out), origLen: len(s)}
}

// composeMarks folds sequences of a base rune followed by combining marks
// (Unicode category Mn/Mc) into their precomposed form where one exists,
// the narrow compatibility-composition step relevant to this domain (most
// evasion attempts use combining diacritics to break literal matches, not
// exotic multi-rune compatibility decompositions). Clusters that don't
// compose collapse the whole cluster into one output segment.
func composeMarks(s string) (string, OffsetMap) {
	var b strings.Builder
	b.Grow(len(s))
	breaks := make([]segment, 0, len(s)/2+1)

	runes := make([]rune, 0, 4)
	pos := 0

	flush := func(clusterStart int) {
		if len(runes) == 0 {
			return
		}
		composed := composeCluster(runes)
		normStart := b.Len()
		b.WriteString(composed)
		breaks = append(breaks, segment{
			normStart: normStart,
			normEnd:   b.Len(),
			origStart: clusterStart,
			origEnd:   pos,
		})
		runes = runes[:0]
	}

	clusterStart := 0
	for pos < len(s) {
		r, size := utf8.DecodeRuneInString(s[pos:])
		isMark := unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)
		if !isMark && len(runes) > 0 {
			flush(clusterStart)
			clusterStart = pos
		}
		if !isMark && len(runes) == 0 {
			clusterStart = pos
		}
		runes = append(runes, r)
		pos += size
	}
	flush(clusterStart)

	out := b.String()
	return out, OffsetMap{breaks: breaks, normLen: len(out), origLen: len(s)}
}

// composeCluster combines a base rune and trailing combining marks into a
// single precomposed rune when the combination is one of the common
// Latin/diacritic forms; otherwise it returns the cluster unchanged.
func composeCluster(runes []rune) string {
	if len(runes) == 1 {
		return string(runes[0])
	}
	if composed, ok := precomposed[[2]rune{runes[0], runes[1]}]; ok && len(runes) == 2 {
		return string(composed)
	}
	var b strings.Builder
	for _, r := range runes {
		b.WriteRune(r)
	}
	return b.String()
}

// precomposed maps {base, combining-mark} pairs to their NFC precomposed
// form for the diacritics most commonly used to break literal pattern
// matching (accented Latin letters).
var precomposed = map[[2]rune]rune{
	{'a', 0x0301}: 'á', {'a', 0x0300}: 'à', {'a', 0x0303}: 'ã', {'a', 0x0308}: 'ä', {'a', 0x0302}: 'â',
	{'e', 0x0301}: 'é', {'e', 0x0300}: 'è', {'e', 0x0308}: 'ë', {'e', 0x0302}: 'ê',
	{'i', 0x0301}: 'í', {'i', 0x0300}: 'ì', {'i', 0x0308}: 'ï', {'i', 0x0302}: 'î',
	{'o', 0x0301}: 'ó', {'o', 0x0300}: 'ò', {'o', 0x0303}: 'õ', {'o', 0x0308}: 'ö', {'o', 0x0302}: 'ô',
	{'u', 0x0301}: 'ú', {'u', 0x0300}: 'ù', {'u', 0x0308}: 'ü', {'u', 0x0302}: 'û',
	{'n', 0x0303}: 'ñ', {'c', 0x0327}: 'ç',
	{'A', 0x0301}: 'Á', {'A', 0x0300}: 'À', {'A', 0x0303}: 'Ã', {'A', 0x0308}: 'Ä',
	{'E', 0x0301}: 'É', {'E', 0x0300}: 'È', {'E', 0x0308}: 'Ë',
	{'O', 0x0301}: 'Ó', {'O', 0x0303}: 'Õ', {'O', 0x0308}: 'Ö',
	{'U', 0x0301}: 'Ú', {'U', 0x0308}: 'Ü',
	{'N', 0x0303}: 'Ñ', {'C', 0x0327}: 'Ç',
}

// collapseWhitespace replaces every maximal run of Unicode whitespace with
// a single ASCII space.
func collapseWhitespace(s string) (string, OffsetMap) {
	var b strings.Builder
	b.Grow(len(s))
	breaks := make([]segment, 0, 16)

	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			normStart := b.Len()
			b.WriteRune(r)
			breaks = append(breaks, segment{normStart: normStart, normEnd: b.Len(), origStart: i, origEnd: i + size})
			i += size
			continue
		}
		runStart := i
		for i < len(s) {
			r2, size2 := utf8.DecodeRuneInString(s[i:])
			if !unicode.IsSpace(r2) {
				break
			}
			i += size2
		}
		normStart := b.Len()
		b.WriteByte(' ')
		breaks = append(breaks, segment{normStart: normStart, normEnd: b.Len(), origStart: runStart, origEnd: i})
	}

	out := b.String()
	return out, OffsetMap{breaks: breaks, normLen: len(out), origLen: len(s)}
}
