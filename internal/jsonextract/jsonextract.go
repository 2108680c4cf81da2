// Package jsonextract pulls a JSON object out of a noisy model reply.
// Models asked for JSON frequently wrap the object in markdown fences or
// surrounding prose; these helpers recover the object text before it is
// unmarshalled.
package jsonextract

import "strings"

// Normalize extracts the most plausible JSON object text from raw model
// output. It tries, in order: the interior of a ```json fenced block, a
// single-backtick-wrapped object, and the first balanced {...} span. If
// none apply the input is returned unchanged.
func Normalize(raw string) string {
	if fenced, ok := FencedBlock(raw); ok {
		return fenced
	}
	if inline, ok := backtickObject(raw); ok {
		return inline
	}
	if span, ok := BalancedObject(raw); ok {
		return span
	}
	return raw
}

// FencedBlock returns the interior of the first ```json fenced code block.
func FencedBlock(s string) (string, bool) {
	lower := strings.ToLower(s)
	start := strings.Index(lower, "```json")
	if start < 0 {
		return "", false
	}
	rest := s[start+len("```json"):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// backtickObject returns the interior of a `{...}` span wrapped in single
// backticks.
func backtickObject(s string) (string, bool) {
	start := strings.Index(s, "`{")
	if start < 0 {
		return "", false
	}
	rest := s[start+1:]
	end := strings.Index(rest, "}`")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end+1]), true
}

// BalancedObject scans for the first '{' and walks forward counting brace
// depth, returning the span that closes it.
//
// The scan is not escape-aware: a literal '{' or '}' inside a JSON string
// value (common in LaTeX such as \frac{a}{b}) is counted like any other
// brace, so unbalanced braces inside string content shift or break the
// detected span. Known limitation, kept from the original heuristic.
func BalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
