package model

import "time"

// UploadMethod records how a semester's subjects were captured.
type UploadMethod string

const (
	UploadMethodOCR    UploadMethod = "ocr"
	UploadMethodManual UploadMethod = "manual"
)

// Semester is one marksheet owned by a single user. TotalCredits,
// TotalSubjects and SGPA are derived from Subjects and rewritten after
// every mutation.
type Semester struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"owner_id"`
	Name           string          `json:"name"`
	AcademicYear   string          `json:"academic_year"`
	SemesterNumber int             `json:"semester_number"`
	RollNumber     string          `json:"roll_number"`
	Institution    string          `json:"institution"`
	StudentName    string          `json:"student_name,omitempty"`
	Subjects       []SubjectRecord `json:"subjects"`
	TotalCredits   int             `json:"total_credits"`
	TotalSubjects  int             `json:"total_subjects"`
	SGPA           float64         `json:"sgpa"`
	UploadMethod   UploadMethod    `json:"upload_method"`
	SourceFileID   string          `json:"source_file_id,omitempty"`
	SourceFileName string          `json:"source_file_name,omitempty"`
	OCRConfidence  *float64        `json:"ocr_confidence,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CreateSemesterRequest is the payload for saving a reviewed or manually
// entered semester.
type CreateSemesterRequest struct {
	Name           string         `json:"name" binding:"required,min=1,max=100"`
	AcademicYear   string         `json:"academic_year" binding:"required,max=20"`
	SemesterNumber int            `json:"semester_number" binding:"required,min=1,max=20"`
	RollNumber     string         `json:"roll_number" binding:"omitempty,max=40"`
	Institution    string         `json:"institution" binding:"omitempty,max=200"`
	StudentName    string         `json:"student_name" binding:"omitempty,max=100"`
	UploadMethod   UploadMethod   `json:"upload_method" binding:"omitempty,oneof=ocr manual"`
	SourceFileID   string         `json:"source_file_id" binding:"omitempty,uuid"`
	OCRConfidence  *float64       `json:"ocr_confidence" binding:"omitempty,min=0,max=100"`
	Subjects       []SubjectInput `json:"subjects" binding:"omitempty,dive"`
}

// UpdateSemesterRequest edits header fields. Nil fields are left unchanged.
type UpdateSemesterRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=100"`
	AcademicYear   *string `json:"academic_year" binding:"omitempty,max=20"`
	SemesterNumber *int    `json:"semester_number" binding:"omitempty,min=1,max=20"`
	RollNumber     *string `json:"roll_number" binding:"omitempty,max=40"`
	Institution    *string `json:"institution" binding:"omitempty,max=200"`
	StudentName    *string `json:"student_name" binding:"omitempty,max=100"`
}

// SemesterGroup collects the semesters that carry the same student name.
type SemesterGroup struct {
	StudentName string     `json:"student_name"`
	Semesters   []Semester `json:"semesters"`
}

// SemesterFilter narrows a listing. Search matches name, student name or
// academic year case-insensitively; Student matches the student name
// exactly.
type SemesterFilter struct {
	Search  string `form:"q" binding:"omitempty,max=100"`
	Student string `form:"student" binding:"omitempty,max=100"`
}
