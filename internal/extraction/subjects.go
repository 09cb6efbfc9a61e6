package extraction

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/stemsi/edutrack-backend/internal/grade"
	"github.com/stemsi/edutrack-backend/internal/model"
)

// Validation bounds for a subject row.
const (
	minCodeLen = 4
	minNameLen = 3
	maxCredits = model.MaxCredits
)

// rowPatterns are the table layouts seen on marksheets, most common first.
// Each captures code, name, credits and grade in that order.
var rowPatterns = []*regexp.Regexp{
	// CS201 Data Structures 4 A+
	regexp.MustCompile(`([A-Z]{2,4}\d{2,4})\s+([A-Za-z\s&\-.]{3,40}?)\s+(\d+)\s+([A-Z+]{1,3})(?:\s|$)`),
	// 1. CS201 Data Structures 4 A+
	regexp.MustCompile(`\d+\.\s*([A-Z]{2,4}\d{2,4})\s+([A-Za-z\s&\-.]{3,40}?)\s+(\d+)\s+([A-Z+]{1,3})(?:\s|$)`),
	// CS201: Data Structures Credits: 4 Grade: A+
	regexp.MustCompile(`(?i)([A-Z]{2,4}\d{2,4})\s*[:\-]?\s*([A-Za-z\s&\-.]{3,40}?)\s+(?:credits?|cr)\s*[:\-]?\s*(\d+)\s+(?:grade|gr)\s*[:\-]?\s*([A-Z+]{1,3})`),
	regexp.MustCompile(`([A-Z]{2,4}\d{2,4})\s+([A-Za-z][A-Za-z\s&\-.]{3,40}?)\s+(\d+)\s+([A-Z+]{1,3})(?:\s|$)`),
	// columns separated by wide gaps
	regexp.MustCompile(`([A-Z]{2,4}\d{2,4})\s{2,}([A-Za-z\s&\-.]{3,40}?)\s{2,}(\d+)\s{2,}([A-Z+]{1,3})`),
	// CS201 | Data Structures | 4 | A+
	regexp.MustCompile(`([A-Z]{2,4}\d{2,4})\s*[-|]\s*([A-Za-z\s&\-.]{3,40}?)\s*[-|]\s*(\d+)\s*[-|]\s*([A-Z+]{1,3})`),
}

// SubjectParser reads subject rows out of recognized lines.
type SubjectParser struct {
	table *grade.Table
	newID func() string
}

// NewSubjectParser returns a parser that validates grades against table.
func NewSubjectParser(table *grade.Table) *SubjectParser {
	return &SubjectParser{table: table, newID: uuid.NewString}
}

// Parse returns one record per valid row, in line order, keeping only the
// first record for each subject code. A line contributes at most one row:
// the first pattern that matches it decides, even if the row then fails
// validation.
func (p *SubjectParser) Parse(lines []string) []model.SubjectRecord {
	records := make([]model.SubjectRecord, 0)
	seen := make(map[string]struct{})

	for _, line := range lines {
		rec, ok := p.parseLine(line).Get()
		if !ok {
			continue
		}
		if _, dup := seen[rec.Code]; dup {
			continue
		}
		seen[rec.Code] = struct{}{}
		rec.ID = p.newID()
		records = append(records, rec)
	}
	return records
}

func (p *SubjectParser) parseLine(line string) Match[model.SubjectRecord] {
	for _, re := range rowPatterns {
		groups := re.FindStringSubmatch(line)
		if groups == nil {
			continue
		}
		return p.validate(groups[1], groups[2], groups[3], groups[4])
	}
	return NoMatch[model.SubjectRecord]()
}

// validate drops rows with a short code or name, credits outside (0, 10],
// or a grade the table does not know.
func (p *SubjectParser) validate(code, name, credits, g string) Match[model.SubjectRecord] {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	g = grade.Normalize(g)

	n, err := strconv.Atoi(strings.TrimSpace(credits))
	if err != nil || n <= 0 || n > maxCredits {
		return NoMatch[model.SubjectRecord]()
	}
	points, known := p.table.PointsFor(g)
	if len(code) < minCodeLen || len(name) < minNameLen || !known {
		return NoMatch[model.SubjectRecord]()
	}

	return Matched(model.SubjectRecord{
		Code:    code,
		Name:    name,
		Credits: n,
		Grade:   g,
		Points:  points,
	})
}
