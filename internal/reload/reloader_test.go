package reload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/tracewall/sentinel/internal/engine"
)

// fakeCompile returns a trivial CompiledEngine whose version stamp encodes
// the policy body length, so tests can tell compiles apart without caring
// about real detector semantics.
func fakeCompile(t *testing.T) CompileFunc {
	t.Helper()
	return func(policyRaw []byte, dictsRaw map[string][]byte) (*engine.CompiledEngine, error) {
		d := engine.Detector{
			ID: "probe", Kind: engine.KindLiteral, Literals: []string{"x"},
			Risk: engine.RiskLow, DefaultAction: engine.ActionMask,
		}
		return engine.Compile([]engine.Detector{d}, &engine.Policy{}, nil)
	}
}

func TestGetCompiledBeforeFirstTickReturnsNotCompiled(t *testing.T) {
	r := New(Config{PolicyURL: "http://example.invalid/policy.json", Compile: fakeCompile(t)})
	if _, err := r.GetCompiled(); err != ErrNotCompiled {
		t.Fatalf("expected ErrNotCompiled, got %v", err)
	}
}

// TestHotReloadSequence drives scenario 6 from §8: initial compile, 304
// unchanged ticks with no swap, a changed tick with a swap whose changed set
// is non-empty, then Stop halting further ticks. The ticks come from the
// regular 20ms interval, not ForceReload: a forced tick recompiles and swaps
// even when every source answers 304.
func TestHotReloadSequence(t *testing.T) {
	var mu sync.Mutex
	etag := "v1"
	body := `{"defaultAction":"mask"}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		mu.Lock()
		curEtag, curBody := etag, body
		mu.Unlock()
		if req.Header.Get("if-none-match") == curEtag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("etag", curEtag)
		w.Write([]byte(curBody))
	}))
	defer srv.Close()

	var swapCount int
	var lastChanged []string
	r := New(Config{
		PolicyURL: srv.URL,
		Interval:  20 * time.Millisecond,
		Compile:   fakeCompile(t),
		OnSwap: func(eng *engine.CompiledEngine, changed []string) {
			swapCount++
			lastChanged = changed
		},
	})

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if swapCount != 1 {
		t.Fatalf("expected initial compile to swap once, got %d", swapCount)
	}

	// Unchanged ticks: let several regular ticks run, expect no additional swap.
	time.Sleep(100 * time.Millisecond)
	if swapCount != 1 {
		t.Fatalf("expected no swap on unchanged (304) tick, got %d swaps", swapCount)
	}

	// Changed tick.
	mu.Lock()
	etag = "v2"
	body = `{"defaultAction":"remove"}`
	mu.Unlock()
	time.Sleep(150 * time.Millisecond)
	if swapCount != 2 {
		t.Fatalf("expected a swap after etag change, got %d swaps", swapCount)
	}
	if len(lastChanged) == 0 {
		t.Fatalf("expected non-empty changed set on swap")
	}

	r.Stop()
	afterStopCount := swapCount
	time.Sleep(60 * time.Millisecond)
	if swapCount != afterStopCount {
		t.Fatalf("expected no ticks after Stop, swap count moved from %d to %d", afterStopCount, swapCount)
	}
}

func TestFetchFileRejectsAccessOutsideBase(t *testing.T) {
	base := t.TempDir()
	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.json")
	if err := os.WriteFile(secret, []byte(`{}`), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := fetchFile("file://"+secret, FileSourceConfig{BaseDir: base}, nil)
	if err == nil {
		t.Fatal("expected error for path outside base dir")
	}
}

func TestFetchFileRejectsQueryAndFragment(t *testing.T) {
	base := t.TempDir()
	p := filepath.Join(base, "policy.json")
	if err := os.WriteFile(p, []byte(`{}`), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := fetchFile("file://"+p+"?x=1", FileSourceConfig{BaseDir: base}, nil)
	if err == nil {
		t.Fatal("expected error for url with query string")
	}
}

func TestFetchFileEnforcesMaxBytes(t *testing.T) {
	base := t.TempDir()
	p := filepath.Join(base, "big.json")
	if err := os.WriteFile(p, []byte(`{"padding":"xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := fetchFile("file://"+p, FileSourceConfig{BaseDir: base, MaxBytes: 8}, nil)
	if err == nil {
		t.Fatal("expected FileTooLarge error")
	}
}

func TestFetchFileUnchangedByHash(t *testing.T) {
	base := t.TempDir()
	p := filepath.Join(base, "policy.json")
	if err := os.WriteFile(p, []byte(`{"defaultAction":"mask"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	first, err := fetchFile("file://"+p, FileSourceConfig{BaseDir: base}, nil)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := fetchFile("file://"+p, FileSourceConfig{BaseDir: base}, &first.meta)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if !second.unchanged {
		t.Fatalf("expected second fetch of an untouched file to report unchanged")
	}
}

func TestDictRemovedFromManifestStopsFiring(t *testing.T) {
	var mu sync.Mutex
	var dicts []byte

	policySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"defaultAction":"mask"}`))
	}))
	defer policySrv.Close()

	dictASrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"entries":[{"pattern":"foo","type":"a","risk":"low"}]}`))
	}))
	defer dictASrv.Close()
	dictBSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"entries":[{"pattern":"bar","type":"b","risk":"low"}]}`))
	}))
	defer dictBSrv.Close()

	mu.Lock()
	dicts = []byte(`{"dicts":[{"id":"a","url":"` + dictASrv.URL + `"},{"id":"b","url":"` + dictBSrv.URL + `"}]}`)
	mu.Unlock()

	manifestSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		w.Write(dicts)
	}))
	defer manifestSrv.Close()

	var lastDictIDs []string
	r := New(Config{
		PolicyURL:   policySrv.URL,
		ManifestURL: manifestSrv.URL,
		Interval:    20 * time.Millisecond,
		Compile: func(policyRaw []byte, dictsRaw map[string][]byte) (*engine.CompiledEngine, error) {
			lastDictIDs = lastDictIDs[:0]
			for id := range dictsRaw {
				lastDictIDs = append(lastDictIDs, id)
			}
			d := engine.Detector{ID: "probe", Kind: engine.KindLiteral, Literals: []string{"x"}, Risk: engine.RiskLow, DefaultAction: engine.ActionMask}
			return engine.Compile([]engine.Detector{d}, &engine.Policy{}, nil)
		},
	})
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(lastDictIDs) != 2 {
		t.Fatalf("expected both dicts present initially, got %v", lastDictIDs)
	}

	mu.Lock()
	dicts = []byte(`{"dicts":[{"id":"a","url":"` + dictASrv.URL + `"}]}`)
	mu.Unlock()
	r.ForceReload()
	time.Sleep(100 * time.Millisecond)
	r.Stop()

	if len(lastDictIDs) != 1 || lastDictIDs[0] != "a" {
		t.Fatalf("expected only dict 'a' to remain after removal, got %v", lastDictIDs)
	}
}
