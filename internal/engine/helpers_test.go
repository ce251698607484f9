package engine

import "regexp"

func mustRegexp(pattern string) *regexp.Regexp {
	return regexp.MustCompile(pattern)
}

func intPtr(n int) *int { return &n }
