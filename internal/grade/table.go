// Package grade maps letter grades to grade points.
package grade

import (
	"sort"
	"strings"
)

// Table is a mapping from grade key to integer grade points, plus the set
// of grades that are excluded from credit and GPA computation.
// Lookups are case-insensitive. A Table is immutable once built and safe
// for concurrent use.
type Table struct {
	points      map[string]int
	nonCounting map[string]struct{}
}

// Default returns the 10-point scale used by the marksheets EduTrack reads.
func Default() *Table {
	return New(map[string]int{
		"O":  10,
		"A+": 9,
		"A":  8,
		"B+": 7,
		"B":  6,
		"C":  5,
		"D":  4,
		"F":  0,
		"U":  0,
		"RA": 0,
	}, "U", "RA")
}

// New builds a table from a points map and the list of non-counting keys.
// Keys are stored upper-cased.
func New(points map[string]int, nonCounting ...string) *Table {
	t := &Table{
		points:      make(map[string]int, len(points)),
		nonCounting: make(map[string]struct{}, len(nonCounting)),
	}
	for k, v := range points {
		t.points[normalize(k)] = v
	}
	for _, k := range nonCounting {
		t.nonCounting[normalize(k)] = struct{}{}
	}
	return t
}

// PointsFor returns the grade points for g. ok is false when g is not a
// key of the table, which tells an unknown grade apart from F, U or RA.
func (t *Table) PointsFor(g string) (points int, ok bool) {
	points, ok = t.points[normalize(g)]
	return points, ok
}

// IsNonCounting reports whether g is excluded from credits and GPA.
func (t *Table) IsNonCounting(g string) bool {
	_, ok := t.nonCounting[normalize(g)]
	return ok
}

// IsKnown reports whether g is a key of the table.
func (t *Table) IsKnown(g string) bool {
	_, ok := t.PointsFor(g)
	return ok
}

// Counts reports whether a subject graded g contributes to credits and GPA.
// Blank grades never count.
func (t *Table) Counts(g string) bool {
	return normalize(g) != "" && !t.IsNonCounting(g)
}

// Keys returns the table keys ordered from highest to lowest points.
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.points))
	for k := range t.points {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return t.less(keys[i], keys[j]) })
	return keys
}

func (t *Table) less(a, b string) bool {
	if t.points[a] != t.points[b] {
		return t.points[a] > t.points[b]
	}
	return a < b
}

// Normalize upper-cases and trims a grade key.
func Normalize(g string) string { return normalize(g) }

func normalize(g string) string {
	return strings.ToUpper(strings.TrimSpace(g))
}
