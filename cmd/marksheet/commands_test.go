package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/edutrack-backend/internal/model"
)

const marksheet = "Name: Jane Doe\nSemester 3\nCS201 Data Structures 4 A+\nCS202 Operating Systems 3 U\n"

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"extract", "gpa", "recognize"})

	out, err := run(t, "", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Available Commands:")
}

func TestExtractCommand(t *testing.T) {
	out, err := run(t, marksheet, "extract", "--confidence", "85")
	require.NoError(t, err)

	var res model.ExtractionOutcome
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Accepted)
	require.NotNil(t, res.Header)
	assert.Equal(t, "Jane Doe", res.Header.StudentName)
	require.NotNil(t, res.SGPA)
	assert.Equal(t, 9.0, *res.SGPA)

	out, err = run(t, marksheet, "extract", "-", "--confidence", "85", "--threshold", "90")
	require.NoError(t, err)
	res = model.ExtractionOutcome{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Accepted)
	assert.Equal(t, "low-confidence", res.Reason)
}

func TestGPACommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "semesters.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name": "Semester 1", "subjects": [
			{"code": "CS201", "name": "Data Structures", "credits": 4, "grade": "A+"},
			{"code": "CS202", "name": "Operating Systems", "credits": 3, "grade": "U"},
			{"code": "MA101", "name": "Mathematics", "credits": 4, "grade": "B"}
		]},
		{"name": "Semester 2", "subjects": [
			{"code": "CS301", "name": "Networks", "credits": 3, "grade": "O"},
			{"code": "MA102", "name": "Mathematics", "credits": 4, "grade": "A"}
		]}
	]`), 0o600))

	out, err := run(t, "", "gpa", path, "--format", "json")
	require.NoError(t, err)
	var report gpaReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Semesters, 2)
	assert.Equal(t, 7.5, report.Semesters[0].SGPA)
	assert.Equal(t, 8.86, report.Semesters[1].SGPA)
	assert.Equal(t, 8.13, report.CGPA)
	assert.Equal(t, 15, report.Credits)

	out, err = run(t, "", "gpa", path)
	require.NoError(t, err)
	assert.Contains(t, out, "SEMESTER")
	assert.Contains(t, out, "8.13")

	_, err = run(t, "", "gpa", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRecognizeCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ocr/image" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ocr":{"width":200,"height":120,"regions":[
			{"box":{"X":5,"Y":5,"W":100,"H":10},"text":"Name: Jane Doe","rec_confidence":0.9},
			{"box":{"X":5,"Y":25,"W":100,"H":10},"text":"Semester 3","rec_confidence":0.9},
			{"box":{"X":5,"Y":45,"W":150,"H":10},"text":"CS201 Data Structures 4 A+","rec_confidence":0.9}
		]}}`))
	}))
	defer srv.Close()

	img := image.NewGray(image.Rect(0, 0, 200, 120))
	for x := 0; x < 200; x++ {
		img.SetGray(x, 60, color.Gray{Y: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(t.TempDir(), "scan.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	out, err := run(t, "", "recognize", path, "--url", srv.URL)
	require.NoError(t, err)

	var res model.ExtractionOutcome
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Accepted)
	assert.InDelta(t, 90, res.Confidence, 0.001)
	require.Len(t, res.Subjects, 1)
	assert.Equal(t, "CS201", res.Subjects[0].Code)
}
