package engine

import "errors"

// Sentinel error values for the compiler and action applier (§7). Wrapped
// with fmt.Errorf("...: %w", err) at each call site that adds context,
// following store/policies.go's wrapping convention.
var (
	// ErrPolicyEmpty is returned by Compile when zero valid detectors remain
	// after dropping ones with invalid patterns.
	ErrPolicyEmpty = errors.New("engine: policy empty, no valid detectors")

	// ErrPolicyInvalid is returned when a policy or dictionary document
	// fails schema validation.
	ErrPolicyInvalid = errors.New("engine: policy document invalid")

	// ErrMissingKey is returned at compile time (not redact time) when any
	// rule resolves to the tokenize action but no hmac_key is configured.
	ErrMissingKey = errors.New("engine: tokenize action configured without hmac key")
)
