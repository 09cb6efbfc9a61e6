// Package aggregate computes grade point averages and the statistics built
// on them.
package aggregate

import (
	"github.com/stemsi/edutrack-backend/internal/grade"
	"github.com/stemsi/edutrack-backend/internal/model"
)

// Engine computes SGPA, CGPA and credit totals. Subjects with a
// non-counting or blank grade are left out of every sum. Negative credits
// or points are read as 0.
type Engine struct {
	table *grade.Table
}

// NewEngine returns an engine over table, or over the default table when
// table is nil.
func NewEngine(table *grade.Table) *Engine {
	if table == nil {
		table = grade.Default()
	}
	return &Engine{table: table}
}

// Table returns the grade table the engine counts with.
func (e *Engine) Table() *grade.Table { return e.table }

// SGPA is the credit-weighted mean of grade points over the counting
// subjects, rounded half-up to two decimals. It is 0 when no credits count.
func (e *Engine) SGPA(subjects []model.SubjectRecord) float64 {
	num, den := e.sums(subjects)
	return roundRatio(num, den)
}

// CGPA pools the counting subjects of every semester into one ratio. It is
// not the mean of the semester SGPAs.
func (e *Engine) CGPA(semesters []model.Semester) float64 {
	var num, den int64
	for _, s := range semesters {
		n, d := e.sums(s.Subjects)
		num += n
		den += d
	}
	return roundRatio(num, den)
}

// TotalCredits sums credits over counting subjects.
func (e *Engine) TotalCredits(subjects []model.SubjectRecord) int {
	_, den := e.sums(subjects)
	return int(den)
}

// Recompute refreshes every derived field of s: subject points from the
// grade table, then totals and SGPA.
func (e *Engine) Recompute(s *model.Semester) {
	for i := range s.Subjects {
		s.Subjects[i].Grade = grade.Normalize(s.Subjects[i].Grade)
		s.Subjects[i].Points, _ = e.table.PointsFor(s.Subjects[i].Grade)
	}
	s.TotalSubjects = len(s.Subjects)
	s.TotalCredits = e.TotalCredits(s.Subjects)
	s.SGPA = e.SGPA(s.Subjects)
}

func (e *Engine) sums(subjects []model.SubjectRecord) (num, den int64) {
	for _, sub := range subjects {
		if !e.table.Counts(sub.Grade) {
			continue
		}
		credits := nonNegative(sub.Credits)
		num += nonNegative(sub.Points) * credits
		den += credits
	}
	return num, den
}

func nonNegative(v int) int64 {
	if v < 0 {
		return 0
	}
	return int64(v)
}

// roundRatio returns num/den rounded half-up at the second decimal, using
// integer arithmetic so 8.005 becomes 8.01.
func roundRatio(num, den int64) float64 {
	if den <= 0 || num <= 0 {
		return 0
	}
	hundredths := (num*200 + den) / (2 * den)
	return float64(hundredths) / 100
}
