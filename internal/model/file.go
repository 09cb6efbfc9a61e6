package model

import "time"

// StoredFile is the metadata of an uploaded marksheet. The payload itself
// lives in the blob store under the same id.
type StoredFile struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	SemesterID  string    `json:"semester_id,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// StorageUsage summarizes a user's quota.
type StorageUsage struct {
	UsedBytes  int64 `json:"used_bytes"`
	LimitBytes int64 `json:"limit_bytes"`
	FileCount  int   `json:"file_count"`
}
