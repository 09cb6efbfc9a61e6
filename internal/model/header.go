package model

// HeaderInfo is the marksheet header read from recognized text. Every
// field is optional.
type HeaderInfo struct {
	SemesterNumber *int   `json:"semester_number,omitempty"`
	AcademicYear   string `json:"academic_year,omitempty"`
	StudentName    string `json:"student_name,omitempty"`
	RollNumber     string `json:"roll_number,omitempty"`
	// SemesterLine is the line that mentioned the semester, kept even when
	// no number could be read from it.
	SemesterLine string `json:"semester_line,omitempty"`
}
