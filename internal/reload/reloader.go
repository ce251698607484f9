// Package reload implements the Policy/Dict Reloader (C8): a background
// task that periodically performs conditional GETs against a policy
// document, a manifest, and the dictionaries it lists, recompiling and
// atomically swapping the published CompiledEngine on any change.
//
// The long-lived-task-with-start/stop/force-reload shape, and serializing
// on_swap so at most one runs at a time, follows §9's design notes directly;
// the TTL-cache stale/refresh bookkeeping is modeled on
// guard/internal/auth/cache.go's AuthCache.
package reload

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tracewall/sentinel/internal/engine"
)

// CompileFunc builds a CompiledEngine from a policy document and the
// dictionary documents currently named in the manifest. It is the only
// point where the reloader depends on internal/engine's schema, injected so
// this package stays independently testable.
type CompileFunc func(policyRaw []byte, dictsRaw map[string][]byte) (*engine.CompiledEngine, error)

// Config configures a Reloader.
type Config struct {
	PolicyURL   string
	ManifestURL string // optional; no manifest means no dictionary sources

	Interval    time.Duration // default 30s
	JitterFrac  float64       // default 0.2 (±20%)
	MaxInterval time.Duration // backoff cap, default 5 minutes

	HTTPClient *http.Client
	File       FileSourceConfig
	DB         *sql.DB // optional, for postgres:// policy sources

	Compile CompileFunc
	OnSwap  func(eng *engine.CompiledEngine, changed []string)
	OnError func(err error)

	Cache  Cache // optional durable SourceMeta cache; defaults to in-memory
	Logger *zap.Logger
}

func (c *Config) setDefaults() {
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.JitterFrac <= 0 {
		c.JitterFrac = 0.2
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = 5 * time.Minute
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if c.Cache == nil {
		c.Cache = NewMemoryCache()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

// Reloader is the C8 background task. Safe for concurrent use: readers call
// GetCompiled, at most one goroutine runs the tick loop, and swap callbacks
// are serialized per §5.
type Reloader struct {
	cfg Config

	published atomic.Pointer[engine.CompiledEngine]
	compiled  atomic.Bool // whether a successful compile has ever happened

	mu       sync.Mutex // guards metas/manifest below
	metas    map[string]*SourceMeta
	manifest map[string]string // dict id -> url, from the last parsed manifest

	swapMu sync.Mutex // serializes OnSwap/OnError per §5

	backoff   time.Duration
	forceCh   chan struct{}
	stopCh    chan struct{}
	stoppedCh chan struct{}
	startOnce sync.Once
	started   bool
}

// New constructs a Reloader from cfg. It does not start the tick loop;
// call Start.
func New(cfg Config) *Reloader {
	cfg.setDefaults()
	return &Reloader{
		cfg:       cfg,
		metas:     make(map[string]*SourceMeta),
		manifest:  make(map[string]string),
		forceCh:   make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// GetCompiled returns the most recently published CompiledEngine. It
// returns ErrNotCompiled only before the first successful compile (§4.8).
func (r *Reloader) GetCompiled() (*engine.CompiledEngine, error) {
	if !r.compiled.Load() {
		return nil, ErrNotCompiled
	}
	return r.published.Load(), nil
}

// Start runs the first tick synchronously, surfacing its error to the
// caller, then schedules subsequent ticks on a ticker regardless of the
// first tick's outcome — the open question in spec.md §9 resolved in favor
// of awaiting the first tick.
func (r *Reloader) Start(ctx context.Context) error {
	var firstErr error
	r.startOnce.Do(func() {
		r.started = true
		firstErr = r.tick(ctx, false)
		go r.loop(ctx)
	})
	return firstErr
}

// Stop signals the tick loop to exit between ticks; an in-flight tick runs
// to completion (§5).
func (r *Reloader) Stop() {
	if !r.started {
		return
	}
	select {
	case <-r.stopCh:
		// already stopped
	default:
		close(r.stopCh)
	}
	<-r.stoppedCh
}

// ForceReload requests an out-of-band tick with cache-busting headers,
// regardless of the current backoff state. Non-blocking: if a force is
// already pending, this is a no-op.
func (r *Reloader) ForceReload() {
	select {
	case r.forceCh <- struct{}{}:
	default:
	}
}

func (r *Reloader) loop(ctx context.Context) {
	defer close(r.stoppedCh)
	for {
		interval := r.nextInterval()
		timer := time.NewTimer(interval)
		select {
		case <-r.stopCh:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			_ = r.tick(ctx, false)
		case <-r.forceCh:
			timer.Stop()
			_ = r.tick(ctx, true)
		}
	}
}

// nextInterval applies ±JitterFrac jitter to the current interval — the
// current interval is cfg.Interval normally, or the backed-off interval
// after a failed tick.
func (r *Reloader) nextInterval() time.Duration {
	base := r.cfg.Interval
	if r.backoff > base {
		base = r.backoff
	}
	jitter := 1 + (rand.Float64()*2-1)*r.cfg.JitterFrac
	d := time.Duration(float64(base) * jitter)
	if d <= 0 {
		d = base
	}
	return d
}

// tick performs one reload attempt: fetch policy + manifest + dictionaries,
// compile on any change (or when forced), swap atomically on success.
// Fetch errors trigger backoff and leave the previously-published engine
// serving (§7).
func (r *Reloader) tick(ctx context.Context, forced bool) error {
	changed := make([]string, 0, 4)

	policyResult, err := r.fetchSource(ctx, "policy", r.cfg.PolicyURL, forced)
	if err != nil {
		return r.fail(err)
	}
	if !policyResult.unchanged {
		changed = append(changed, "policy")
	}

	dictsRaw := make(map[string][]byte)
	if r.cfg.ManifestURL != "" {
		manifestResult, err := r.fetchSource(ctx, "manifest", r.cfg.ManifestURL, forced)
		if err != nil {
			return r.fail(err)
		}
		if !manifestResult.unchanged {
			changed = append(changed, "manifest")
		}

		manifestText := r.sourceText("manifest")
		doc, err := engine.ParseManifestDocument([]byte(manifestText))
		if err != nil {
			return r.fail(fmt.Errorf("reload: parsing manifest: %w", err))
		}

		newManifest := make(map[string]string, len(doc.Dicts))
		for _, d := range doc.Dicts {
			newManifest[d.ID] = d.URL
		}

		r.mu.Lock()
		removed := make([]string, 0)
		for id := range r.manifest {
			if _, ok := newManifest[id]; !ok {
				removed = append(removed, id)
			}
		}
		r.manifest = newManifest
		r.mu.Unlock()
		for _, id := range removed {
			r.mu.Lock()
			delete(r.metas, dictCacheKey(id))
			r.mu.Unlock()
			changed = append(changed, "dict-removed:"+id)
		}

		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		for id, u := range newManifest {
			id, u := id, u
			g.Go(func() error {
				res, err := r.fetchSource(gctx, dictCacheKey(id), u, forced)
				if err != nil {
					return err
				}
				mu.Lock()
				defer mu.Unlock()
				if !res.unchanged {
					changed = append(changed, "dict:"+id)
				}
				dictsRaw[id] = []byte(r.sourceText(dictCacheKey(id)))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return r.fail(err)
		}
	}

	if len(changed) == 0 && !forced {
		r.backoff = 0
		return nil
	}
	sort.Strings(changed)

	eng, err := r.cfg.Compile([]byte(r.sourceText("policy")), dictsRaw)
	if err != nil {
		return r.fail(fmt.Errorf("reload: compile: %w", err))
	}

	r.published.Store(eng)
	r.compiled.Store(true)
	r.backoff = 0

	r.swapMu.Lock()
	if r.cfg.OnSwap != nil {
		r.cfg.OnSwap(eng, changed)
	}
	r.swapMu.Unlock()

	return nil
}

func dictCacheKey(id string) string { return "dict:" + id }

// fetchSource dispatches to the scheme-appropriate fetcher, updates the
// cached SourceMeta on change, and returns the fetchResult.
func (r *Reloader) fetchSource(ctx context.Context, key, rawURL string, forced bool) (*fetchResult, error) {
	r.mu.Lock()
	prior, ok := r.metas[key]
	r.mu.Unlock()
	if !ok {
		if cached, hit := r.cfg.Cache.Get(key); hit {
			prior = cached
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("reload: %w: %v", ErrInvalidURL, err)
	}

	var res *fetchResult
	switch u.Scheme {
	case "http", "https":
		res, err = fetchHTTP(ctx, r.cfg.HTTPClient, rawURL, prior, forced)
	case "file":
		res, err = fetchFile(rawURL, r.cfg.File, prior)
	case "postgres":
		res, err = fetchPostgres(ctx, r.cfg.DB, u.Host, prior)
	default:
		return nil, fmt.Errorf("reload: %w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if err != nil {
		return nil, err
	}

	if !res.unchanged {
		r.mu.Lock()
		r.metas[key] = &res.meta
		r.mu.Unlock()
		r.cfg.Cache.Set(key, &res.meta)
	}
	return res, nil
}

// sourceText returns the last-fetched body for a source key, from the live
// meta map if present or the durable cache otherwise (covers the
// unchanged-on-this-tick case where metas wasn't just written).
func (r *Reloader) sourceText(key string) string {
	r.mu.Lock()
	m, ok := r.metas[key]
	r.mu.Unlock()
	if ok {
		return m.Text
	}
	if cached, hit := r.cfg.Cache.Get(key); hit {
		return cached.Text
	}
	return ""
}

func (r *Reloader) fail(err error) error {
	if r.backoff == 0 {
		r.backoff = r.cfg.Interval
	} else {
		r.backoff *= 2
	}
	if r.backoff > r.cfg.MaxInterval {
		r.backoff = r.cfg.MaxInterval
	}
	r.swapMu.Lock()
	if r.cfg.OnError != nil {
		r.cfg.OnError(err)
	}
	r.swapMu.Unlock()
	r.cfg.Logger.Warn("reload tick failed, backing off",
		zap.Error(err), zap.Duration("next_backoff", r.backoff))
	return err
}
