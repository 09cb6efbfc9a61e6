package model

// MaxCredits is the largest credit value a subject row may carry. Credits
// are positive integers.
const MaxCredits = 10

// SubjectRecord is one row of a marksheet. Points mirrors the grade table
// value for Grade and is recomputed whenever Grade changes.
type SubjectRecord struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Credits int    `json:"credits"`
	Grade   string `json:"grade"`
	Points  int    `json:"points"`
}

// SubjectInput is the payload for adding or editing a subject row.
type SubjectInput struct {
	Code    string `json:"code" binding:"required,min=2,max=20"`
	Name    string `json:"name" binding:"required,min=1,max=120"`
	Credits int    `json:"credits" binding:"credits"`
	Grade   string `json:"grade" binding:"required,grade"`
}

// ReplaceSubjectsRequest replaces every subject of a semester at once.
type ReplaceSubjectsRequest struct {
	Subjects []SubjectInput `json:"subjects" binding:"required,dive"`
}

// SGPAPreviewRequest carries draft subjects under review.
type SGPAPreviewRequest struct {
	Subjects []SubjectInput `json:"subjects" binding:"required,dive"`
}

// SGPAPreviewResponse is the SGPA of a draft subject list.
type SGPAPreviewResponse struct {
	SGPA          float64 `json:"sgpa"`
	TotalCredits  int     `json:"total_credits"`
	TotalSubjects int     `json:"total_subjects"`
}
