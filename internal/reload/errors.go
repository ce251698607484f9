package reload

import "errors"

// Sentinel error values for the reloader (§7), wrapped with
// fmt.Errorf("...: %w", err) at each call site that adds context.
var (
	// ErrNotCompiled is returned by GetCompiled before the first successful
	// compile has happened.
	ErrNotCompiled = errors.New("reload: no compiled engine published yet")

	// ErrFetchFailed wraps a non-200/304 HTTP status or a transport error.
	ErrFetchFailed = errors.New("reload: fetch failed")

	// ErrAccessOutsideBase is returned when a file:// URL's resolved real
	// path (after symlinks) lies outside the configured BaseDir.
	ErrAccessOutsideBase = errors.New("reload: file access outside base directory")

	// ErrFileTooLarge is returned when a file:// source exceeds MaxBytes.
	ErrFileTooLarge = errors.New("reload: file exceeds max size")

	// ErrInvalidURL is returned for malformed URLs, unsupported schemes, or
	// file:// URLs carrying a query or fragment.
	ErrInvalidURL = errors.New("reload: invalid source url")
)
