package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrUnknownGrade   ErrCode = "UNKNOWN_GRADE"
	ErrInvalidCredits ErrCode = "INVALID_CREDITS"
	ErrInvalidSubject ErrCode = "INVALID_SUBJECT"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrSemesterNotFound ErrCode = "SEMESTER_NOT_FOUND"
	ErrSubjectNotFound  ErrCode = "SUBJECT_NOT_FOUND"
	ErrFileNotFound     ErrCode = "FILE_NOT_FOUND"
	ErrJobNotFound      ErrCode = "EXTRACTION_JOB_NOT_FOUND"

	// ─── Files ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"
	ErrQuotaExceeded   ErrCode = "STORAGE_QUOTA_EXCEEDED"

	// ─── Extraction ────────────────────────────────────────────────────
	ErrRecognitionDisabled ErrCode = "RECOGNITION_DISABLED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Incorrect email or password."
	case ErrEmailTaken:
		return "An account with this email already exists."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrUnknownGrade:
		return "Grade is not on the grading scale."
	case ErrInvalidCredits:
		return "Credits must be a whole number between 1 and 10."
	case ErrInvalidSubject:
		return "Subject code and name are required."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrSemesterNotFound:
		return "Semester not found."
	case ErrSubjectNotFound:
		return "Subject not found in this semester."
	case ErrFileNotFound:
		return "File not found."
	case ErrJobNotFound:
		return "Extraction job not found."

	// ─── Files ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "Only PDF, JPG and PNG files are supported."
	case ErrFileTooLarge:
		return "File size exceeds the limit."
	case ErrQuotaExceeded:
		return "Storage limit reached. Delete some files and try again."

	// ─── Extraction ────────────────────────────────────────────────────
	case ErrRecognitionDisabled:
		return "Automatic recognition is not available. Please enter the marksheet manually."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
