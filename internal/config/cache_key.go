package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SemesterDataKey returns the store key holding a user's semester collection
func (r *CacheKeyStruct) SemesterDataKey(userID string) string {
	return fmt.Sprintf("semesterData:%s", userID)
}

// UploadedFilesKey returns the store key holding a user's file index
func (r *CacheKeyStruct) UploadedFilesKey(userID string) string {
	return fmt.Sprintf("uploadedFiles:%s", userID)
}

// FilePayloadKey returns the store key holding the raw bytes of one uploaded file
func (r *CacheKeyStruct) FilePayloadKey(userID, fileID string) string {
	return fmt.Sprintf("filePayload:%s:%s", userID, fileID)
}

// FileObjectKey returns the object name of an uploaded file in the s3 bucket
func (r *CacheKeyStruct) FileObjectKey(userID, fileID string) string {
	return fmt.Sprintf("marksheets/%s/%s", userID, fileID)
}

// ExtractionJobKey returns the store key for an extraction job record
func (r *CacheKeyStruct) ExtractionJobKey(jobID string) string {
	return fmt.Sprintf("extractionJob:%s", jobID)
}

// ExtractionJobChannel returns the Redis PubSub channel carrying job status updates
func (r *CacheKeyStruct) ExtractionJobChannel(jobID string) string {
	return fmt.Sprintf("extractionJob:%s:events", jobID)
}

// UserSessionKey returns the cache key for a user's active session id
func (r *CacheKeyStruct) UserSessionKey(userID string) string {
	return fmt.Sprintf("session:%s", userID)
}

var CacheKey = NewCacheKeyStruct()

// UserKey returns the store key holding an account on key-value backends
func (r *CacheKeyStruct) UserKey(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

// UserEmailKey returns the store key mapping a lower-cased email to its user id
func (r *CacheKeyStruct) UserEmailKey(email string) string {
	return fmt.Sprintf("userEmail:%s", email)
}
