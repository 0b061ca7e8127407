// Package copyfilter decides which template files are copied byte-for-byte
// instead of being rendered.
//
// Patterns are '/'-separated. Inside one segment '*' matches any run of
// characters; a segment that is exactly "**" matches zero or more whole path
// segments. Bracket classes are not supported and are rejected when the
// filter is compiled. A path is copied raw when any pattern matches it.
package copyfilter

import (
	"strings"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
)

const recursiveWildcard = "**"

// Filter is a compiled, ordered set of glob patterns
type Filter struct {
	patterns []string
	segments [][]string
}

// Compile validates and normalizes patterns.
// Whitespace is trimmed and '\' becomes '/'. Empty patterns and patterns
// containing '[' or ']' fail with INVALID_GLOB.
func Compile(patterns []string) (*Filter, error) {
	logger := logging.GetLogger("copyfilter")

	f := &Filter{}
	for _, raw := range patterns {
		p := strings.TrimSpace(raw)
		if p == "" {
			return nil, errors.New(errors.ErrInvalidGlob, "empty copy pattern").
				WithDetail("pattern", raw)
		}
		if strings.ContainsAny(p, "[]") {
			return nil, errors.Newf(errors.ErrInvalidGlob, "invalid glob pattern %q: bracket classes are not supported", raw).
				WithDetail("pattern", raw)
		}

		p = strings.ReplaceAll(p, `\`, "/")
		f.patterns = append(f.patterns, p)
		f.segments = append(f.segments, strings.Split(p, "/"))
	}

	logger.Debug().Strs("patterns", f.patterns).Msg("compiled copy filter")
	return f, nil
}

// MustCompile is like Compile but panics on invalid patterns.
// Only use it with hardcoded patterns.
func MustCompile(patterns ...string) *Filter {
	f, err := Compile(patterns)
	if err != nil {
		panic(err)
	}
	return f
}

// Patterns returns the normalized patterns in declaration order
func (f *Filter) Patterns() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.patterns...)
}

// Match reports whether rel matches any pattern. rel is relative to the
// project directory and may use either separator.
func (f *Filter) Match(rel string) bool {
	if f == nil || len(f.segments) == 0 {
		return false
	}

	path := strings.Split(strings.ReplaceAll(rel, `\`, "/"), "/")
	for _, segs := range f.segments {
		if matchSegments(segs, path) {
			return true
		}
	}
	return false
}

// matchSegments fills a table where cell j of row i tells whether pattern
// segments [i:] match path segments [j:]. Rows are built from the last
// pattern segment backwards and only two are kept.
func matchSegments(pattern, path []string) bool {
	n := len(path)
	next := make([]bool, n+1)
	cur := make([]bool, n+1)
	next[n] = true

	for i := len(pattern) - 1; i >= 0; i-- {
		p := pattern[i]
		if p == recursiveWildcard {
			cur[n] = next[n]
			for j := n - 1; j >= 0; j-- {
				cur[j] = next[j] || cur[j+1]
			}
		} else {
			cur[n] = false
			for j := n - 1; j >= 0; j-- {
				cur[j] = next[j+1] && matchSegment(p, path[j])
			}
		}
		next, cur = cur, next
	}

	return next[0]
}

// matchSegment matches one path segment against a pattern segment with '*'
// wildcards. Tokens are found by left-to-right substring search; the first
// token is anchored at the start unless the pattern starts with '*', and the
// last at the end unless it ends with '*'.
func matchSegment(pattern, s string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == s
	}

	tokens := strings.Split(pattern, "*")
	first, last := tokens[0], tokens[len(tokens)-1]

	if !strings.HasPrefix(s, first) {
		return false
	}
	rest := s[len(first):]

	if len(rest) < len(last) || !strings.HasSuffix(rest, last) {
		return false
	}
	rest = rest[:len(rest)-len(last)]

	for _, tok := range tokens[1 : len(tokens)-1] {
		if tok == "" {
			continue
		}
		idx := strings.Index(rest, tok)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(tok):]
	}
	return true
}
