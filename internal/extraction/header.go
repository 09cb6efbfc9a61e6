package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/stemsi/edutrack-backend/internal/model"
)

const maxSemesterNumber = 12

var semesterNumberRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)semester\s*[:\-]?\s*(\d+)`),
	regexp.MustCompile(`(?i)(?:semester|sem)\s*[:\-]?\s*(\d+)`),
	regexp.MustCompile(`(?i)(\d+)(?:st|nd|rd|th)?\s*semester`),
	regexp.MustCompile(`(?i)sem\s*(\d+)`),
	regexp.MustCompile(`(?i)(\d+)\s*sem\b`),
}

var (
	ordinalSemester = regexp.MustCompile(`(?i)\b(first|second|third|fourth|fifth|sixth|seventh|eighth|1st|2nd|3rd|4th|5th|6th|7th|8th|viii|vii|vi|iv|v|iii|ii|i)\s*(?:semester|sem)\b`)
	semesterMention = regexp.MustCompile(`(?i)\bsem(?:ester)?\b`)
)

var ordinals = []struct {
	n     int
	forms [3]string
}{
	{1, [3]string{"first", "1st", "i"}},
	{2, [3]string{"second", "2nd", "ii"}},
	{3, [3]string{"third", "3rd", "iii"}},
	{4, [3]string{"fourth", "4th", "iv"}},
	{5, [3]string{"fifth", "5th", "v"}},
	{6, [3]string{"sixth", "6th", "vi"}},
	{7, [3]string{"seventh", "7th", "vii"}},
	{8, [3]string{"eighth", "8th", "viii"}},
}

var yearRules = []rule[string]{
	{re: regexp.MustCompile(`(?i)academic\s*year\s*[:\-]?\s*(\d{4}\s*[-/]?\s*\d{2,4})`), extract: academicYear},
	{re: regexp.MustCompile(`(?i)year\s*[:\-]?\s*(\d{4}\s*[-/]?\s*\d{2,4})`), extract: academicYear},
	{re: regexp.MustCompile(`\b((?:19|20)\d{2}\s*[-/]\s*\d{2,4})\b`), extract: academicYear},
}

var nameRules = []rule[string]{
	{re: regexp.MustCompile(`(?i)\b(?:student\s*name|name)\s*[:\-]?\s*([a-z\s.]+)`), extract: studentName},
	{re: regexp.MustCompile(`(?i)\bname\s*[:\-]\s*([a-z\s.]+)`), extract: studentName},
	{re: regexp.MustCompile(`(?i)\bstudent\s*[:\-]\s*([a-z\s.]+)`), extract: studentName},
}

var rollRules = []rule[string]{
	{re: regexp.MustCompile(`(?i)\b(?:roll\s*number|roll\s*no|registration\s*number|registration\s*no|reg\s*no)\b\.?\s*[:\-]?\s*([a-z0-9/\-]+)`), extract: captured},
	{re: regexp.MustCompile(`(?i)\broll\s*[:\-]\s*([a-z0-9/\-]+)`), extract: captured},
	{re: regexp.MustCompile(`(?i)\breg\s*[:\-]\s*([a-z0-9/\-]+)`), extract: captured},
}

// labels that end a captured name when OCR keeps several fields on one line,
// including subject table column headings
var nameStop = regexp.MustCompile(`(?i)\s{2,}|\b(?:roll|reg|registration|register|semester|sem|year|class|branch|dob|credits?|grade|subject|code)\b`)

// ExtractHeader reads the semester number, academic year, student name and
// roll number from lines. Each field is searched independently; within a
// field the first line with a usable match wins.
func ExtractHeader(lines []string) model.HeaderInfo {
	var h model.HeaderInfo

	n, line, ok := semesterNumber(lines)
	h.SemesterLine = line
	if ok {
		h.SemesterNumber = &n
	}
	if v, ok := firstMatch(lines, yearRules); ok {
		h.AcademicYear = v
	}
	if v, ok := firstMatch(lines, nameRules); ok {
		h.StudentName = v
	}
	if v, ok := firstMatch(lines, rollRules); ok {
		h.RollNumber = v
	}
	return h
}

// semesterNumber returns the first semester number it can read and the line
// it came from. When a line mentions a semester but no number can be read,
// that line is still returned with ok=false so callers can tell the
// marksheet named a semester.
func semesterNumber(lines []string) (int, string, bool) {
	mention := ""
	for _, line := range lines {
		if m, ok := numericSemester(line).Get(); ok {
			return m, line, true
		}
		if !semesterMention.MatchString(line) && !ordinalSemester.MatchString(line) {
			continue
		}
		if mention == "" {
			mention = line
		}
		if m, ok := ordinalSemesterNumber(line).Get(); ok {
			return m, line, true
		}
	}
	return 0, mention, false
}

func numericSemester(line string) Match[int] {
	for _, re := range semesterNumberRules {
		groups := re.FindStringSubmatch(line)
		if groups == nil {
			continue
		}
		n, err := strconv.Atoi(groups[1])
		if err != nil || n < 1 || n > maxSemesterNumber {
			continue
		}
		return Matched(n)
	}
	return NoMatch[int]()
}

// ordinalSemesterNumber prefers the ordinal written right before
// "semester" and falls back to any ordinal word on the line.
func ordinalSemesterNumber(line string) Match[int] {
	if groups := ordinalSemester.FindStringSubmatch(line); groups != nil {
		if n, ok := ordinalValue(groups[1]); ok {
			return Matched(n)
		}
	}

	words := strings.FieldsFunc(strings.ToLower(line), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	present := make(map[string]struct{}, len(words))
	for _, w := range words {
		present[w] = struct{}{}
	}
	for _, o := range ordinals {
		for _, f := range o.forms {
			if _, ok := present[f]; ok {
				return Matched(o.n)
			}
		}
	}
	return NoMatch[int]()
}

func ordinalValue(word string) (int, bool) {
	w := strings.ToLower(word)
	for _, o := range ordinals {
		for _, f := range o.forms {
			if f == w {
				return o.n, true
			}
		}
	}
	return 0, false
}

func academicYear(groups []string) Match[string] {
	v, ok := captured(groups).Get()
	if !ok {
		return NoMatch[string]()
	}
	parts := strings.FieldsFunc(v, func(r rune) bool { return !unicode.IsDigit(r) })
	if len(parts) == 2 {
		return Matched(parts[0] + "-" + parts[1])
	}
	return Matched(strings.Join(parts, ""))
}

func studentName(groups []string) Match[string] {
	v, ok := captured(groups).Get()
	if !ok {
		return NoMatch[string]()
	}
	if loc := nameStop.FindStringIndex(v); loc != nil {
		v = v[:loc[0]]
	}
	v = strings.TrimSpace(v)
	if len(v) <= 2 || len(v) >= 50 || !strings.ContainsFunc(v, unicode.IsLetter) {
		return NoMatch[string]()
	}
	return Matched(v)
}
