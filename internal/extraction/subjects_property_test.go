package extraction

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/stemsi/edutrack-backend/internal/grade"
)

var (
	propCodes  = []string{"CS201", "CS202", "MA101", "PH102", "EC210", "HS1001", "ME305"}
	propNames  = []string{"Data Structures", "Operating Systems", "Engineering Physics", "Signals", "English"}
	propGrades = []string{"O", "A+", "A", "B+", "B", "C", "D", "F", "U", "RA"}
)

// row builds a marksheet line from a generated index.
func row(i int) string {
	code := propCodes[i%len(propCodes)]
	name := propNames[(i/7)%len(propNames)]
	credits := 1 + (i/3)%10
	g := propGrades[(i/5)%len(propGrades)]
	return fmt.Sprintf("%s %s %d %s", code, name, credits, g)
}

func rows(idx []int) []string {
	lines := make([]string, len(idx))
	for i, n := range idx {
		lines[i] = row(n)
	}
	return lines
}

func TestSubjectParser_Idempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)
	p := NewSubjectParser(grade.Default())

	properties.Property("parsing the same lines twice yields the same records", prop.ForAll(
		func(idx []int) bool {
			lines := rows(idx)
			a := strip(p.Parse(lines))
			b := strip(p.Parse(lines))
			if len(a) != len(b) {
				return false
			}
			for i := range a {
				if a[i] != b[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 999)),
	))

	properties.TestingRun(t)
}

func TestSubjectParser_DeduplicatesByFirstOccurrence(t *testing.T) {
	properties := gopter.NewProperties(nil)
	p := NewSubjectParser(grade.Default())

	properties.Property("one record per code, taken from its first line", prop.ForAll(
		func(idx []int) bool {
			lines := rows(idx)
			got := p.Parse(lines)

			first := make(map[string]string)
			for _, l := range lines {
				code := strings.Fields(l)[0]
				if _, ok := first[code]; !ok {
					first[code] = l
				}
			}
			if len(got) != len(first) {
				return false
			}
			for _, r := range got {
				want := fmt.Sprintf("%s %s %d %s", r.Code, r.Name, r.Credits, r.Grade)
				if first[r.Code] != want {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 999)),
	))

	properties.TestingRun(t)
}

func TestExtract_ConfidenceBelowThresholdAlwaysRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)
	e := New(DefaultConfig())

	properties.Property("confidence under 60 never parses", prop.ForAll(
		func(c float64, idx []int) bool {
			text := "Name: Jane Doe\nSemester 3\n" + strings.Join(rows(idx), "\n")
			rej, ok := e.Extract(text, c).(Rejected)
			return ok && rej.Reason == ReasonLowConfidence && rej.RawText == text
		},
		gen.Float64Range(0, 59.999),
		gen.SliceOf(gen.IntRange(0, 999)),
	))

	properties.TestingRun(t)
}
