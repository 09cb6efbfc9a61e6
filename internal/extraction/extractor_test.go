package extraction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/edutrack-backend/internal/grade"
)

const janeDoe = "Name: Jane Doe\nSemester 3\nCS201 Data Structures 4 A+\nCS202 Operating Systems 3 U\n"

func TestExtract_Scenario(t *testing.T) {
	e := New(DefaultConfig())

	res := e.Extract(janeDoe, 75)

	acc, ok := res.(Accepted)
	require.True(t, ok, "expected Accepted, got %#v", res)
	assert.Equal(t, 75.0, acc.Confidence)
	assert.Equal(t, "Jane Doe", acc.Header.StudentName)
	require.NotNil(t, acc.Header.SemesterNumber)
	assert.Equal(t, 3, *acc.Header.SemesterNumber)

	require.Len(t, acc.Subjects, 2)
	assert.Equal(t, "CS201", acc.Subjects[0].Code)
	assert.Equal(t, 4, acc.Subjects[0].Credits)
	assert.Equal(t, "A+", acc.Subjects[0].Grade)
	assert.Equal(t, 9, acc.Subjects[0].Points)
	assert.Equal(t, "CS202", acc.Subjects[1].Code)
	assert.Equal(t, 3, acc.Subjects[1].Credits)
	assert.Equal(t, "U", acc.Subjects[1].Grade)
	assert.Equal(t, 0, acc.Subjects[1].Points)
}

func TestExtract_ConfidenceGate(t *testing.T) {
	e := New(DefaultConfig())

	low := e.Extract(janeDoe, 59.9)
	rej, ok := low.(Rejected)
	require.True(t, ok)
	assert.Equal(t, ReasonLowConfidence, rej.Reason)
	assert.Equal(t, janeDoe, rej.RawText)
	assert.Contains(t, rej.Message, "59.9%")

	_, ok = e.Extract(janeDoe, 60.0).(Accepted)
	assert.True(t, ok)
}

func TestExtract_NaNConfidenceIsRejected(t *testing.T) {
	e := New(DefaultConfig())

	rej, ok := e.Extract(janeDoe, math.NaN()).(Rejected)
	require.True(t, ok)
	assert.Equal(t, ReasonLowConfidence, rej.Reason)
}

func TestExtract_CustomThreshold(t *testing.T) {
	e := New(Config{ConfidenceThreshold: 80, Table: grade.Default()})

	rej, ok := e.Extract(janeDoe, 75).(Rejected)
	require.True(t, ok)
	assert.Equal(t, ReasonLowConfidence, rej.Reason)
	assert.Equal(t, 80.0, e.Threshold())
}

func TestExtract_Unparseable(t *testing.T) {
	e := New(DefaultConfig())

	cases := map[string]string{
		"no name":     "Semester 3\nCS201 Data Structures 4 A+",
		"no semester": "Name: Jane Doe\nCS201 Data Structures 4 A+",
		"no subjects": "Name: Jane Doe\nSemester 3\nTotal 0",
		"empty":       "",
		"blank lines": "\n   \n\t\n",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			rej, ok := e.Extract(text, 90).(Rejected)
			require.True(t, ok)
			assert.Equal(t, ReasonUnparseable, rej.Reason)
			assert.Equal(t, text, rej.RawText)
			assert.Equal(t, 90.0, rej.Confidence)
			assert.NotEmpty(t, rej.Message)
		})
	}
}

func TestExtract_SemesterLineWithoutNumberIsEnough(t *testing.T) {
	e := New(DefaultConfig())

	acc, ok := e.Extract("B.Tech Semester Examination\nName: Jane Doe\nCS201 Data Structures 4 A+", 80).(Accepted)
	require.True(t, ok)
	assert.Nil(t, acc.Header.SemesterNumber)
	assert.Equal(t, "B.Tech Semester Examination", acc.Header.SemesterLine)
}

func TestExtract_NormalizesText(t *testing.T) {
	e := New(DefaultConfig())

	// CRLF line endings, a zero-width space and a non-breaking space
	text := "Name: Jane Doe\r\nSemester 3\r\n\u200bCS201 Data\u00a0Structures 4 A+\r\n"
	acc, ok := e.Extract(text, 70).(Accepted)
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", acc.Header.StudentName)
	require.Len(t, acc.Subjects, 1)
	assert.Equal(t, "CS201", acc.Subjects[0].Code)
}

func TestOutcome(t *testing.T) {
	e := New(DefaultConfig())

	acc := Outcome(e.Extract(janeDoe, 75))
	assert.True(t, acc.Accepted)
	require.NotNil(t, acc.Header)
	assert.Len(t, acc.Subjects, 2)
	assert.Empty(t, acc.Reason)

	rej := Outcome(e.Extract(janeDoe, 10))
	assert.False(t, rej.Accepted)
	assert.Equal(t, "low-confidence", rej.Reason)
	assert.Equal(t, janeDoe, rej.RawText)

	pdf := Outcome(UnsupportedFileType("application/pdf"))
	assert.Equal(t, "unsupported-file-type", pdf.Reason)
	assert.Contains(t, pdf.Message, "application/pdf")
}

func TestSplitLines(t *testing.T) {
	lines := SplitLines("  first  \r\n\r\n second\n\n\tthird\t")

	assert.Equal(t, []string{"first", "second", "third"}, lines)
	assert.Nil(t, SplitLines(""))
}

