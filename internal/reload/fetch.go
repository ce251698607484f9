package reload

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// fetchResult is the outcome of a single conditional-GET-equivalent probe
// against one source, regardless of scheme.
type fetchResult struct {
	unchanged bool // true on HTTP 304 or an unchanged content hash
	meta      SourceMeta
}

// fetchHTTP implements §6's HTTP fetch contract: cache-control: no-cache,
// plus if-none-match/if-modified-since when prior meta is known; a forced
// reload adds _bust=<epoch-ms> and pragma: no-cache. 200 and 304 are the
// only accepted statuses.
func fetchHTTP(ctx context.Context, client *http.Client, rawURL string, prior *SourceMeta, forced bool) (*fetchResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("reload: %w: %v", ErrInvalidURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("reload: %w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("cache-control", "no-cache")
	if prior != nil {
		if prior.ETag != "" {
			req.Header.Set("if-none-match", prior.ETag)
		} else if prior.LastModified != "" {
			req.Header.Set("if-modified-since", prior.LastModified)
		}
	}
	if forced {
		q := req.URL.Query()
		q.Set("_bust", strconv.FormatInt(time.Now().UnixMilli(), 10))
		req.URL.RawQuery = q.Encode()
		req.Header.Set("pragma", "no-cache")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reload: %w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		return &fetchResult{unchanged: true}, nil
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reload: %w: reading body: %v", ErrFetchFailed, err)
		}
		etag := resp.Header.Get("etag")
		lastMod := resp.Header.Get("last-modified")
		if etag == "" && lastMod == "" {
			etag = synthesizeWeakETag(body)
		}
		return &fetchResult{meta: SourceMeta{
			ETag:         etag,
			LastModified: lastMod,
			Hash:         sha256Hex(body),
			Text:         string(body),
			FetchedAt:    time.Now(),
		}}, nil
	default:
		return nil, fmt.Errorf("reload: %w: unexpected status %d from %s", ErrFetchFailed, resp.StatusCode, rawURL)
	}
}

// synthesizeWeakETag builds a W/"sha256:<hex>" weak etag over the body when
// the origin supplies neither etag nor last-modified, so change detection
// stays stable across ticks (§4.8).
func synthesizeWeakETag(body []byte) string {
	return `W/"sha256:` + sha256Hex(body) + `"`
}

func sha256Hex(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// FileSourceConfig bounds file:// access per §4.8's guarantees.
type FileSourceConfig struct {
	BaseDir      string
	MaxBytes     int64
	AllowedHosts map[string]bool // hostnames permitted on a file:// URL (rare; most are host-less)
}

// fetchFile implements the file:// source contract: resolve symlinks,
// require the real path to lie under BaseDir, reject non-regular files,
// enforce MaxBytes, reject query/fragment, reject remote hostnames unless
// allowlisted. Etag is synthesized from content hash; last-modified from
// mtime.
func fetchFile(rawURL string, cfg FileSourceConfig, prior *SourceMeta) (*fetchResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("reload: %w: %v", ErrInvalidURL, err)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, fmt.Errorf("reload: %w: file:// url must not carry a query or fragment", ErrInvalidURL)
	}
	if u.Host != "" && u.Host != "localhost" {
		if !cfg.AllowedHosts[u.Host] {
			return nil, fmt.Errorf("reload: %w: remote host %q not allowlisted", ErrInvalidURL, u.Host)
		}
	}

	path := u.Path
	if cfg.BaseDir == "" {
		return nil, fmt.Errorf("reload: %w: no base directory configured for file:// sources", ErrAccessOutsideBase)
	}
	realBase, err := filepath.EvalSymlinks(cfg.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("reload: resolving base dir: %w", err)
	}
	realPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, fmt.Errorf("reload: %w: resolving %s: %v", ErrFetchFailed, path, err)
	}
	rel, err := filepath.Rel(realBase, realPath)
	if err != nil || rel == ".." || len(rel) >= 3 && rel[:3] == "../" {
		return nil, fmt.Errorf("reload: %w: %s resolves outside %s", ErrAccessOutsideBase, path, cfg.BaseDir)
	}
	for p := rel; p != "." && p != string(filepath.Separator); p = filepath.Dir(p) {
		if p == ".." {
			return nil, fmt.Errorf("reload: %w: %s resolves outside %s", ErrAccessOutsideBase, path, cfg.BaseDir)
		}
	}

	info, err := os.Lstat(realPath)
	if err != nil {
		return nil, fmt.Errorf("reload: %w: stat %s: %v", ErrFetchFailed, realPath, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("reload: %w: %s is not a regular file", ErrFetchFailed, realPath)
	}
	if cfg.MaxBytes > 0 && info.Size() > cfg.MaxBytes {
		return nil, fmt.Errorf("reload: %w: %s is %d bytes, max %d", ErrFileTooLarge, realPath, info.Size(), cfg.MaxBytes)
	}

	lastMod := info.ModTime().UTC().Format(http.TimeFormat)
	if prior != nil && prior.LastModified == lastMod && prior.LastModified != "" {
		return &fetchResult{unchanged: true}, nil
	}

	f, err := os.Open(realPath)
	if err != nil {
		return nil, fmt.Errorf("reload: %w: open %s: %v", ErrFetchFailed, realPath, err)
	}
	defer f.Close()

	var body []byte
	if cfg.MaxBytes > 0 {
		body, err = io.ReadAll(io.LimitReader(f, cfg.MaxBytes+1))
		if err == nil && int64(len(body)) > cfg.MaxBytes {
			return nil, fmt.Errorf("reload: %w: %s exceeds %d bytes", ErrFileTooLarge, realPath, cfg.MaxBytes)
		}
	} else {
		body, err = io.ReadAll(f)
	}
	if err != nil {
		return nil, fmt.Errorf("reload: %w: read %s: %v", ErrFetchFailed, realPath, err)
	}

	hash := sha256Hex(body)
	if prior != nil && prior.Hash == hash {
		return &fetchResult{unchanged: true}, nil
	}

	return &fetchResult{meta: SourceMeta{
		ETag:         "sha256:" + hash,
		LastModified: lastMod,
		Hash:         hash,
		Text:         string(body),
		FetchedAt:    time.Now(),
	}}, nil
}

// fetchPostgres polls a policies table for a given project id, treating
// updated_at plus a content hash as the conditional-GET equivalent — the
// Postgres-backed policy source supplement (§ SPEC_FULL §4), adapted from
// guard/internal/store/policies.go's GetPolicy query shape.
func fetchPostgres(ctx context.Context, db *sql.DB, projectID string, prior *SourceMeta) (*fetchResult, error) {
	if db == nil {
		return nil, fmt.Errorf("reload: %w: postgres source configured without a database handle", ErrFetchFailed)
	}
	var body []byte
	var updatedAt time.Time
	err := db.QueryRowContext(ctx, `
		SELECT detector_config, updated_at FROM policies WHERE project_id = $1`, projectID,
	).Scan(&body, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("reload: %w: no policy row for project %s", ErrFetchFailed, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("reload: %w: %v", ErrFetchFailed, err)
	}

	lastMod := updatedAt.UTC().Format(http.TimeFormat)
	hash := sha256Hex(body)
	if prior != nil && prior.LastModified == lastMod && prior.Hash == hash {
		return &fetchResult{unchanged: true}, nil
	}
	return &fetchResult{meta: SourceMeta{
		ETag:         "sha256:" + hash,
		LastModified: lastMod,
		Hash:         hash,
		Text:         string(body),
		FetchedAt:    time.Now(),
	}}, nil
}
