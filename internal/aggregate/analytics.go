package aggregate

import (
	"math"
	"sort"

	"github.com/stemsi/edutrack-backend/internal/grade"
	"github.com/stemsi/edutrack-backend/internal/model"
)

// Direction is the movement of SGPA from the previous semester.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// Summary is the dashboard view of a user's record.
type Summary struct {
	CGPA          float64 `json:"cgpa"`
	AverageSGPA   float64 `json:"average_sgpa"`
	TotalCredits  int     `json:"total_credits"`
	TotalSubjects int     `json:"total_subjects"`
	SemesterCount int     `json:"semester_count"`
	Band          string  `json:"band"`
}

// GradeCount is one bar of the grade distribution.
type GradeCount struct {
	Grade      string  `json:"grade"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SubjectPerformance aggregates every attempt at subjects sharing a name.
type SubjectPerformance struct {
	Name          string   `json:"name"`
	AveragePoints float64  `json:"average_points"`
	Attempts      int      `json:"attempts"`
	Grades        []string `json:"grades"`
}

// TrendPoint is one semester on the SGPA timeline.
type TrendPoint struct {
	SemesterID     string    `json:"semester_id"`
	Name           string    `json:"name"`
	SemesterNumber int       `json:"semester_number"`
	SGPA           float64   `json:"sgpa"`
	Credits        int       `json:"credits"`
	Direction      Direction `json:"direction,omitempty"`
	Band           string    `json:"band"`
}

// Summarize computes CGPA, counting credits, the number of subjects and
// the plain mean of semester SGPAs.
func (e *Engine) Summarize(semesters []model.Semester) Summary {
	s := Summary{
		CGPA:          e.CGPA(semesters),
		SemesterCount: len(semesters),
	}
	var cents int64
	for _, sem := range semesters {
		s.TotalCredits += e.TotalCredits(sem.Subjects)
		s.TotalSubjects += len(sem.Subjects)
		cents += int64(math.Round(e.SGPA(sem.Subjects) * 100))
	}
	s.AverageSGPA = roundRatio(cents, int64(len(semesters))*100)
	s.Band = CGPABand(s.CGPA)
	return s
}

// GradeDistribution counts counting grades across all semesters, ordered
// from the highest grade down. Grades with no subjects are omitted.
func (e *Engine) GradeDistribution(semesters []model.Semester) []GradeCount {
	counts := make(map[string]int)
	total := 0
	for _, sem := range semesters {
		for _, sub := range sem.Subjects {
			if !e.table.Counts(sub.Grade) {
				continue
			}
			counts[grade.Normalize(sub.Grade)]++
			total++
		}
	}

	out := make([]GradeCount, 0, len(counts))
	for _, g := range e.table.Keys() {
		n, ok := counts[g]
		if !ok {
			continue
		}
		out = append(out, GradeCount{
			Grade:      g,
			Count:      n,
			Percentage: percentage(n, total),
		})
		delete(counts, g)
	}
	// grades outside the table sort after the known ones
	rest := make([]string, 0, len(counts))
	for g := range counts {
		rest = append(rest, g)
	}
	sort.Strings(rest)
	for _, g := range rest {
		out = append(out, GradeCount{Grade: g, Count: counts[g], Percentage: percentage(counts[g], total)})
	}
	return out
}

// SubjectPerformance groups counting subjects by name and returns up to
// limit of the strongest and weakest by average grade points.
func (e *Engine) SubjectPerformance(semesters []model.Semester, limit int) (best, worst []SubjectPerformance) {
	type acc struct {
		total  int64
		grades []string
	}
	byName := make(map[string]*acc)
	for _, sem := range semesters {
		for _, sub := range sem.Subjects {
			if sub.Name == "" || !e.table.Counts(sub.Grade) {
				continue
			}
			a, ok := byName[sub.Name]
			if !ok {
				a = &acc{}
				byName[sub.Name] = a
			}
			a.total += nonNegative(sub.Points)
			a.grades = append(a.grades, grade.Normalize(sub.Grade))
		}
	}

	all := make([]SubjectPerformance, 0, len(byName))
	for name, a := range byName {
		all = append(all, SubjectPerformance{
			Name:          name,
			AveragePoints: roundRatio(a.total, int64(len(a.grades))),
			Attempts:      len(a.grades),
			Grades:        a.grades,
		})
	}

	best = append([]SubjectPerformance(nil), all...)
	sort.SliceStable(best, func(i, j int) bool {
		if best[i].AveragePoints != best[j].AveragePoints {
			return best[i].AveragePoints > best[j].AveragePoints
		}
		return best[i].Name < best[j].Name
	})
	worst = append([]SubjectPerformance(nil), all...)
	sort.SliceStable(worst, func(i, j int) bool {
		if worst[i].AveragePoints != worst[j].AveragePoints {
			return worst[i].AveragePoints < worst[j].AveragePoints
		}
		return worst[i].Name < worst[j].Name
	})

	if limit > 0 {
		best = best[:min(limit, len(best))]
		worst = worst[:min(limit, len(worst))]
	}
	return best, worst
}

// Trend lists each semester's SGPA in the given order with its movement
// against the previous one. The first point has no direction.
func (e *Engine) Trend(semesters []model.Semester) []TrendPoint {
	out := make([]TrendPoint, 0, len(semesters))
	for i, sem := range semesters {
		p := TrendPoint{
			SemesterID:     sem.ID,
			Name:           sem.Name,
			SemesterNumber: sem.SemesterNumber,
			SGPA:           e.SGPA(sem.Subjects),
			Credits:        e.TotalCredits(sem.Subjects),
		}
		p.Band = SGPABand(p.SGPA)
		if i > 0 {
			prev := out[i-1].SGPA
			switch {
			case p.SGPA > prev:
				p.Direction = DirectionUp
			case p.SGPA < prev:
				p.Direction = DirectionDown
			default:
				p.Direction = DirectionFlat
			}
		}
		out = append(out, p)
	}
	return out
}

// percentage returns n/total as a percentage with one decimal, half-up.
func percentage(n, total int) float64 {
	if total <= 0 {
		return 0
	}
	tenths := (int64(n)*2000 + int64(total)) / (2 * int64(total))
	return float64(tenths) / 10
}

// CGPABand labels a CGPA.
func CGPABand(cgpa float64) string {
	switch {
	case cgpa >= 9:
		return "Excellent"
	case cgpa >= 8:
		return "Very Good"
	case cgpa >= 7:
		return "Good"
	case cgpa >= 6:
		return "Average"
	default:
		return "Below Average"
	}
}

// SGPABand labels a single semester's SGPA.
func SGPABand(sgpa float64) string {
	switch {
	case sgpa >= 8:
		return "Excellent"
	case sgpa >= 6:
		return "Good"
	default:
		return "Needs Improvement"
	}
}
