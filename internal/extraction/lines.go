// Package extraction turns recognized marksheet text into a header and a
// list of subject records, and decides whether the result can be trusted.
package extraction

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SplitLines normalizes recognized text and splits it into trimmed,
// non-blank lines in original order. Runs of interior whitespace are kept
// because column gaps are meaningful to the row patterns.
func SplitLines(raw string) []string {
	if raw == "" {
		return nil
	}

	text := norm.NFKC.String(raw)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.Map(dropInvisible, text)

	parts := strings.Split(text, "\n")
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		if line := strings.TrimSpace(p); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func dropInvisible(r rune) rune {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
		return -1
	case '\t', '\n':
		return r
	}
	if unicode.IsControl(r) {
		return -1
	}
	return r
}
