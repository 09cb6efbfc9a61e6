package extraction

import "regexp"

// Match is the outcome of trying one pattern against one line: either no
// match, or a matched value.
type Match[T any] struct {
	value T
	ok    bool
}

// Matched wraps a value found by a pattern.
func Matched[T any](v T) Match[T] { return Match[T]{value: v, ok: true} }

// NoMatch reports that a pattern did not produce a value.
func NoMatch[T any]() Match[T] { return Match[T]{} }

// Get returns the value and whether there was one.
func (m Match[T]) Get() (T, bool) { return m.value, m.ok }

// rule pairs a pattern with the function that turns its submatches into a
// value. extract may still answer NoMatch when the captured text fails
// validation, in which case the cascade moves on.
type rule[T any] struct {
	re      *regexp.Regexp
	extract func(groups []string) Match[T]
}

// firstMatch walks lines in order and, for each line, rules in order. The
// first rule on the first line that yields a value wins.
func firstMatch[T any](lines []string, rules []rule[T]) (T, bool) {
	for _, line := range lines {
		for _, r := range rules {
			groups := r.re.FindStringSubmatch(line)
			if groups == nil {
				continue
			}
			if v, ok := r.extract(groups).Get(); ok {
				return v, true
			}
		}
	}
	var zero T
	return zero, false
}

func captured(groups []string) Match[string] {
	if len(groups) < 2 || groups[1] == "" {
		return NoMatch[string]()
	}
	return Matched(groups[1])
}
