package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stemsi/edutrack-backend/internal/model"
)

func sub(code string, credits int, g string, points int) model.SubjectRecord {
	return model.SubjectRecord{ID: code, Code: code, Name: code, Credits: credits, Grade: g, Points: points}
}

func TestSGPA_ExcludesNonCounting(t *testing.T) {
	e := NewEngine(nil)

	subjects := []model.SubjectRecord{
		sub("CS201", 4, "A+", 9),
		sub("CS202", 3, "U", 0),
	}

	assert.Equal(t, 9.0, e.SGPA(subjects))
	assert.Equal(t, 4, e.TotalCredits(subjects))
}

func TestSGPA_LowerCaseNonCounting(t *testing.T) {
	e := NewEngine(nil)

	subjects := []model.SubjectRecord{
		sub("CS201", 4, "B", 6),
		sub("CS202", 10, "ra", 0),
		sub("CS203", 10, "u", 0),
	}

	assert.Equal(t, 6.0, e.SGPA(subjects))
	assert.Equal(t, 4, e.TotalCredits(subjects))
}

func TestEmptyInputs(t *testing.T) {
	e := NewEngine(nil)

	assert.Equal(t, 0.0, e.SGPA(nil))
	assert.Equal(t, 0.0, e.CGPA(nil))
	assert.Equal(t, 0, e.TotalCredits(nil))
	assert.Equal(t, 0.0, e.SGPA([]model.SubjectRecord{sub("CS202", 3, "U", 0)}))
	assert.Equal(t, 0.0, e.SGPA([]model.SubjectRecord{sub("CS203", 0, "A", 8)}))
}

func TestCGPA_IsPooled(t *testing.T) {
	e := NewEngine(nil)

	semesters := []model.Semester{
		{Subjects: []model.SubjectRecord{sub("A1", 4, "C", 5)}},
		{Subjects: []model.SubjectRecord{sub("B1", 6, "B+", 7)}},
	}

	// (20 + 42) / (4 + 6); the mean of 5.00 and 7.00 would be 6.00
	assert.Equal(t, 6.2, e.CGPA(semesters))
}

func TestRounding_HalfUp(t *testing.T) {
	e := NewEngine(nil)

	// (9*1 + 8*199) / 200 = 8.005
	subjects := []model.SubjectRecord{
		sub("X1", 1, "A+", 9),
		sub("X2", 199, "A", 8),
	}
	assert.Equal(t, 8.01, e.SGPA(subjects))

	assert.Equal(t, 8.01, roundRatio(1601, 200))
	assert.Equal(t, 8.0, roundRatio(16009, 2000))
	assert.Equal(t, 8.86, roundRatio(62, 7))
	assert.Equal(t, 0.0, roundRatio(5, 0))
}

func TestCoercesInvalidValues(t *testing.T) {
	e := NewEngine(nil)

	subjects := []model.SubjectRecord{
		sub("X1", -3, "A", 8),
		sub("X2", 2, "B", -6),
		sub("X3", 2, "A", 8),
		sub("X4", 5, "", 10),
	}

	// X1 adds nothing, X2 adds 2 credits at 0 points, X4 has no grade
	assert.Equal(t, 4.0, e.SGPA(subjects))
	assert.Equal(t, 4, e.TotalCredits(subjects))
}

func TestRecompute(t *testing.T) {
	e := NewEngine(nil)

	s := model.Semester{
		Subjects: []model.SubjectRecord{
			{Code: "CS201", Name: "Data Structures", Credits: 4, Grade: "a+", Points: 0},
			{Code: "CS202", Name: "Operating Systems", Credits: 3, Grade: "U", Points: 5},
			{Code: "CS203", Name: "Discrete Mathematics", Credits: 4, Grade: "b", Points: 0},
		},
		TotalCredits: 99,
		SGPA:         1,
	}

	e.Recompute(&s)

	assert.Equal(t, "A+", s.Subjects[0].Grade)
	assert.Equal(t, 9, s.Subjects[0].Points)
	assert.Equal(t, 0, s.Subjects[1].Points)
	assert.Equal(t, 6, s.Subjects[2].Points)
	assert.Equal(t, 3, s.TotalSubjects)
	assert.Equal(t, 8, s.TotalCredits)
	assert.Equal(t, 7.5, s.SGPA)
}
