package engine

import "strings"

// automaton is a multi-pattern byte matcher built by the Aho–Corasick
// construction (goto + failure + output links), used once the literal
// pattern count crosses compileThreshold. Below that, literalScanner does a
// plain per-pattern scan — cheaper to build, and at small N the automaton's
// setup cost dwarfs the scan savings.
//
// The node/edge table is built once at compile time and never mutated,
// matching the CompiledEngine immutability invariant: scan() only reads.
type automaton struct {
	nodes []acNode
}

type acNode struct {
	children map[byte]int32
	fail     int32
	output   []acOutput
}

type acOutput struct {
	detectorID string
	length     int
}

// literalEntry is one literal pattern contributed by a detector.
type literalEntry struct {
	detectorID string
	pattern    string
}

// compileThreshold is the literal-pattern-count cutoff for automaton vs.
// linear scan (§4.2).
const compileThreshold = 5

func newAutomatonNode() acNode {
	return acNode{children: make(map[byte]int32), fail: 0}
}

// buildAutomaton constructs the trie, then computes failure links and
// merges output sets breadth-first, the standard two-pass Aho–Corasick
// construction.
func buildAutomaton(entries []literalEntry) *automaton {
	a := &automaton{nodes: []acNode{newAutomatonNode()}}

	for _, e := range entries {
		if e.pattern == "" {
			continue
		}
		cur := int32(0)
		for i := 0; i < len(e.pattern); i++ {
			b := e.pattern[i]
			next, ok := a.nodes[cur].children[b]
			if !ok {
				a.nodes = append(a.nodes, newAutomatonNode())
				next = int32(len(a.nodes) - 1)
				a.nodes[cur].children[b] = next
			}
			cur = next
		}
		a.nodes[cur].output = append(a.nodes[cur].output, acOutput{
			detectorID: e.detectorID,
			length:     len(e.pattern),
		})
	}

	// BFS to assign failure links and merge inherited output.
	queue := make([]int32, 0, len(a.nodes))
	for b, child := range a.nodes[0].children {
		_ = b
		a.nodes[child].fail = 0
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for b, v := range a.nodes[u].children {
			queue = append(queue, v)
			f := a.nodes[u].fail
			for {
				if nf, ok := a.nodes[f].children[b]; ok && nf != v {
					a.nodes[v].fail = nf
					break
				}
				if f == 0 {
					a.nodes[v].fail = 0
					break
				}
				f = a.nodes[f].fail
			}
			a.nodes[v].output = append(a.nodes[v].output, a.nodes[a.nodes[v].fail].output...)
		}
	}

	return a
}

// acHit is a raw automaton match before scoring.
type acHit struct {
	detectorID string
	start, end int
}

// scan runs the automaton over text from the given starting state, used
// both for one-shot scans (start state 0) and for streaming resumption
// (start state = the prior chunk's final node). It returns every hit plus
// the automaton's node index at end-of-input, so callers can resume across
// a chunk boundary.
func (a *automaton) scan(text string, startState int32) ([]acHit, int32) {
	if a == nil {
		return nil, startState
	}
	state := startState
	if int(state) >= len(a.nodes) {
		state = 0
	}
	var hits []acHit
	for i := 0; i < len(text); i++ {
		b := text[i]
		for {
			if next, ok := a.nodes[state].children[b]; ok {
				state = next
				break
			}
			if state == 0 {
				break
			}
			state = a.nodes[state].fail
		}
		for _, out := range a.nodes[state].output {
			hits = append(hits, acHit{
				detectorID: out.detectorID,
				start:      i + 1 - out.length,
				end:        i + 1,
			})
		}
	}
	return hits, state
}

// literalScan does a plain substring scan for small literal sets, avoiding
// automaton construction overhead below compileThreshold.
func literalScan(text string, entries []literalEntry) []acHit {
	var hits []acHit
	for _, e := range entries {
		if e.pattern == "" {
			continue
		}
		start := 0
		for start <= len(text) {
			idx := strings.Index(text[start:], e.pattern)
			if idx < 0 {
				break
			}
			abs := idx + start
			hits = append(hits, acHit{detectorID: e.detectorID, start: abs, end: abs + len(e.pattern)})
			start = abs + 1
		}
	}
	return hits
}
