// Package sentinel is the C10 facade: Use wires detectors and maskers,
// Detect/Redact/Stream run the engine, UpdatePolicy/SwapEngine publish a new
// CompiledEngine. It binds internal/normalize, internal/engine,
// internal/stream, internal/reload and an optional internal/audit sink
// behind one atomically-swappable reference, the shape
// guard/internal/server/guard_server.go gives its GuardServer (construct
// detectors once, hold an engine handle, expose request-scoped methods).
package sentinel

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tracewall/sentinel/internal/audit"
	"github.com/tracewall/sentinel/internal/detectors"
	"github.com/tracewall/sentinel/internal/engine"
	"github.com/tracewall/sentinel/internal/normalize"
	"github.com/tracewall/sentinel/internal/reload"
	"github.com/tracewall/sentinel/internal/stream"
)

// Sentinel is the long-lived handle a process keeps: one per policy/detector
// set. Safe for concurrent use.
type Sentinel struct {
	published atomic.Pointer[engine.CompiledEngine]
	maskers   map[string]engine.Masker
	normOpts  normalize.Options
	reloader  *reload.Reloader
	logger    *zap.Logger
	audit     audit.EventWriter
}

// Option configures a Sentinel at construction time.
type Option func(*config)

type config struct {
	detectors   []engine.Detector
	maskers     map[string]engine.Masker
	policy      *engine.Policy
	normOpts    normalize.Options
	logger      *zap.Logger
	useBuiltins bool
	audit       audit.EventWriter
}

// WithDetectors adds detectors to the compiled set, on top of any built-ins
// requested via WithBuiltinDetectors.
func WithDetectors(ds ...engine.Detector) Option {
	return func(c *config) { c.detectors = append(c.detectors, ds...) }
}

// WithBuiltinDetectors registers internal/detectors' full built-in set
// (PII, secrets, injection/jailbreak, embedded YAML dictionary).
func WithBuiltinDetectors() Option {
	return func(c *config) { c.useBuiltins = true }
}

// WithMaskers merges m into the masker bindings passed to every
// Detect/Redact/Stream call.
func WithMaskers(m map[string]engine.Masker) Option {
	return func(c *config) {
		for k, v := range m {
			c.maskers[k] = v
		}
	}
}

// WithPolicy sets the initial Policy. Defaults to an empty Policy (each
// detector's own default action, no overrides) if omitted.
func WithPolicy(p *engine.Policy) Option {
	return func(c *config) { c.policy = p }
}

// WithNormalizeOptions configures C1's normalizer.
func WithNormalizeOptions(o normalize.Options) Option {
	return func(c *config) { c.normOpts = o }
}

// WithLogger sets the zap logger used for compile-time and reload warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithAuditWriter attaches an audit.EventWriter that receives a summary of
// every Redact call. Never consulted on the hot path beyond the call itself:
// a slow or failing writer does not change Redact's return value.
func WithAuditWriter(w audit.EventWriter) Option {
	return func(c *config) { c.audit = w }
}

// Use constructs a Sentinel from a static detector set (no background
// reloader). Call UpdatePolicy or SwapEngine later to change it, or call
// StartReload for a self-refreshing instance.
func Use(opts ...Option) (*Sentinel, error) {
	cfg := newConfig(opts)
	eng, err := compileFrom(cfg)
	if err != nil {
		return nil, err
	}
	s := &Sentinel{maskers: cfg.maskers, normOpts: cfg.normOpts, logger: cfg.logger, audit: cfg.audit}
	s.published.Store(eng)
	return s, nil
}

func newConfig(opts []Option) *config {
	cfg := &config{maskers: make(map[string]engine.Masker), logger: zap.NewNop()}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.useBuiltins {
		cfg.detectors = append(cfg.detectors, detectors.All()...)
		for k, v := range detectors.DefaultMaskers() {
			if _, ok := cfg.maskers[k]; !ok {
				cfg.maskers[k] = v
			}
		}
	}
	return cfg
}

func compileFrom(cfg *config) (*engine.CompiledEngine, error) {
	if len(cfg.detectors) == 0 {
		return nil, fmt.Errorf("sentinel: no detectors configured; pass WithDetectors or WithBuiltinDetectors")
	}
	return engine.Compile(cfg.detectors, cfg.policy, cfg.logger)
}

// Engine returns the currently published CompiledEngine, primarily for
// diagnostics (Version, Order).
func (s *Sentinel) Engine() *engine.CompiledEngine {
	return s.published.Load()
}

// Detect runs C1 (normalize) through C5 (resolve) and maps resolved hits'
// spans back to the caller's original byte offsets.
func (s *Sentinel) Detect(text string, trust engine.Trust) []engine.Hit {
	eng := s.published.Load()
	normText, offsets := normalize.Normalize(text, s.normOpts)
	hits := engine.Detect(normText, eng, engine.ScanOptions{Trust: trust, Maskers: s.maskers})
	mapOffsets(hits, &offsets)
	return hits
}

// Redact runs the full C1-C6 pipeline and returns the redacted text (built
// over the normalized text, since mask placeholders needn't preserve
// original-encoding byte widths) plus the hit report with original-offset
// spans filled in.
func (s *Sentinel) Redact(text string, trust engine.Trust) (string, []engine.Hit, error) {
	start := time.Now()
	eng := s.published.Load()
	normText, offsets := normalize.Normalize(text, s.normOpts)
	out, hits, err := engine.Redact(normText, eng, engine.ScanOptions{Trust: trust, Maskers: s.maskers})
	if err != nil {
		return "", nil, err
	}
	mapOffsets(hits, &offsets)
	if s.audit != nil {
		latencyMs := float32(time.Since(start).Microseconds()) / 1000
		s.audit.Write(audit.NewEvent(uuid.NewString(), eng.Version, trust, text, hits, latencyMs, "sync"))
	}
	return out, hits, nil
}

func mapOffsets(hits []engine.Hit, offsets *normalize.OffsetMap) {
	for i := range hits {
		hits[i].OrigStart, hits[i].OrigEnd = offsets.Span(hits[i].Start, hits[i].End)
	}
}

// Stream returns a streaming transform bound to the currently published
// engine (§4.7). The transform keeps its own reference, so a later
// UpdatePolicy/SwapEngine will not change the behavior of transforms already
// in flight — matching the immutable-CompiledEngine contract.
func (s *Sentinel) Stream(trust engine.Trust) *stream.Transform {
	eng := s.published.Load()
	return stream.NewTransform(eng, engine.ScanOptions{Trust: trust, Maskers: s.maskers})
}

// SwapEngine atomically publishes a pre-compiled engine, e.g. one produced
// by a caller-managed reload.Reloader.
func (s *Sentinel) SwapEngine(eng *engine.CompiledEngine) {
	s.published.Store(eng)
}

// UpdatePolicy recompiles the currently published detector set against a new
// Policy and swaps it in. Detector definitions are unchanged; only the
// policy-level action/threshold/masker overrides change.
func (s *Sentinel) UpdatePolicy(policy *engine.Policy) error {
	cur := s.published.Load()
	ds := make([]engine.Detector, 0, len(cur.Order))
	for _, id := range cur.Order {
		ds = append(ds, *cur.Detectors[id])
	}
	eng, err := engine.Compile(ds, policy, s.logger)
	if err != nil {
		return fmt.Errorf("sentinel: recompiling with new policy: %w", err)
	}
	s.published.Store(eng)
	return nil
}

// StartReload builds and starts a background reload.Reloader bound to this
// Sentinel's masker set: it recompiles from fetched policy/manifest
// documents plus, when includeBuiltins is set, internal/detectors' built-ins,
// and on every successful swap republishes the result here. Detectors given
// through WithDetectors are not part of the recompiled set. The reloader itself is returned so callers
// can Stop/ForceReload it; Sentinel keeps a copy so SwapEngine calls from
// elsewhere don't race it silently (last writer wins, as with any atomic
// pointer).
func (s *Sentinel) StartReload(ctx context.Context, cfg reload.Config, includeBuiltins bool) (*reload.Reloader, error) {
	cfg.Compile = s.reloadCompileFunc(includeBuiltins)
	onSwap := cfg.OnSwap
	cfg.OnSwap = func(eng *engine.CompiledEngine, changed []string) {
		s.published.Store(eng)
		if onSwap != nil {
			onSwap(eng, changed)
		}
	}
	r := reload.New(cfg)
	if err := r.Start(ctx); err != nil {
		return nil, err
	}
	s.reloader = r
	return r, nil
}

// reloadCompileFunc bridges reload.CompileFunc to internal/engine's schema
// parsers, merging fetched documents with the built-in detector set.
func (s *Sentinel) reloadCompileFunc(includeBuiltins bool) reload.CompileFunc {
	return func(policyRaw []byte, dictsRaw map[string][]byte) (*engine.CompiledEngine, error) {
		policy, err := engine.ParsePolicyDocument(policyRaw)
		if err != nil {
			return nil, err
		}

		var ds []engine.Detector
		if includeBuiltins {
			ds = append(ds, detectors.All()...)
		}
		for id, raw := range dictsRaw {
			parsed, err := engine.ParseDictionaryDocument(raw)
			if err != nil {
				return nil, fmt.Errorf("sentinel: parsing dictionary %q: %w", id, err)
			}
			ds = append(ds, parsed...)
		}
		return engine.Compile(ds, policy, s.logger)
	}
}
