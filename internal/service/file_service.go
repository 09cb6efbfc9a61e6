package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/edutrack-backend/internal/blob"
	"github.com/stemsi/edutrack-backend/internal/config"
	"github.com/stemsi/edutrack-backend/internal/metrics"
	"github.com/stemsi/edutrack-backend/internal/model"
	"github.com/stemsi/edutrack-backend/internal/repository"
)

// Sentinel errors for uploads.
var (
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file too large")
	ErrEmptyFile            = errors.New("file is empty")
	ErrStorageQuotaExceeded = errors.New("storage quota exceeded")
	ErrFileNotFound         = errors.New("file not found")
)

// Accepted upload types. image/jpg is a common non-standard alias browsers
// still send.
var allowedMIMETypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
}

// FileService stores uploaded marksheets under per-file and per-user limits.
type FileService struct {
	repo         *repository.FileRepository
	blobs        blob.Store
	maxFileBytes int64
	maxUserBytes int64
	locks        *userLocks
	log          zerolog.Logger
}

// NewFileService creates a new FileService.
func NewFileService(cfg *config.Config, repo *repository.FileRepository, blobs blob.Store, log zerolog.Logger) *FileService {
	return &FileService{
		repo:         repo,
		blobs:        blobs,
		maxFileBytes: cfg.MaxFileBytes,
		maxUserBytes: cfg.MaxUserStorageBytes,
		locks:        newUserLocks(),
		log:          log.With().Str("component", "file_service").Logger(),
	}
}

// Upload validates and stores a file. Both the declared content type and
// the sniffed payload type must be on the allow-list.
func (s *FileService) Upload(ctx context.Context, userID, name, declaredType string, data []byte) (*model.StoredFile, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	size := int64(len(data))
	if size > s.maxFileBytes {
		return nil, fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, size, s.maxFileBytes)
	}

	declared := baseMediaType(declaredType)
	if !allowedMIMETypes[declared] {
		return nil, fmt.Errorf("%w: %s (allowed: %s)",
			ErrUnsupportedFileType, declared, strings.Join(allowedTypes(), ", "))
	}
	sniffed := baseMediaType(mimetype.Detect(data).String())
	if !allowedMIMETypes[sniffed] {
		return nil, fmt.Errorf("%w: content is %s", ErrUnsupportedFileType, sniffed)
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	files, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	if used := usedBytes(files); used+size > s.maxUserBytes {
		return nil, fmt.Errorf("%w: %d of %d bytes used", ErrStorageQuotaExceeded, used, s.maxUserBytes)
	}

	file := model.StoredFile{
		ID:          uuid.New().String(),
		OwnerID:     userID,
		Name:        name,
		ContentType: sniffed,
		Size:        size,
		UploadedAt:  time.Now().UTC(),
	}
	if err := s.blobs.Put(ctx, userID, file.ID, file.ContentType, data); err != nil {
		return nil, fmt.Errorf("store payload: %w", err)
	}
	if err := s.repo.Save(ctx, userID, append(files, file)); err != nil {
		if delErr := s.blobs.Delete(ctx, userID, file.ID); delErr != nil {
			s.log.Warn().Err(delErr).Str("file_id", file.ID).Msg("Failed to remove orphaned payload")
		}
		return nil, fmt.Errorf("save file index: %w", err)
	}

	metrics.UploadSizeBytes.Observe(float64(size))
	s.log.Info().Str("user_id", userID).Str("file_id", file.ID).Int64("size", size).Msg("File uploaded")
	return &file, nil
}

// List returns the user's files, newest first.
func (s *FileService) List(ctx context.Context, userID string) ([]model.StoredFile, error) {
	files, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].UploadedAt.After(files[j].UploadedAt)
	})
	return files, nil
}

// Get returns one file's metadata.
func (s *FileService) Get(ctx context.Context, userID, fileID string) (*model.StoredFile, error) {
	files, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	i := indexOfFile(files, fileID)
	if i < 0 {
		return nil, ErrFileNotFound
	}
	return &files[i], nil
}

// Open returns a file's metadata together with its payload.
func (s *FileService) Open(ctx context.Context, userID, fileID string) (*model.StoredFile, []byte, error) {
	file, err := s.Get(ctx, userID, fileID)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.blobs.Get(ctx, userID, fileID)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("read payload: %w", err)
	}
	return file, data, nil
}

// Delete removes a file's payload and metadata.
func (s *FileService) Delete(ctx context.Context, userID, fileID string) error {
	unlock := s.locks.lock(userID)
	defer unlock()

	files, err := s.repo.List(ctx, userID)
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}
	i := indexOfFile(files, fileID)
	if i < 0 {
		return ErrFileNotFound
	}

	if err := s.blobs.Delete(ctx, userID, fileID); err != nil && !errors.Is(err, blob.ErrNotFound) {
		return fmt.Errorf("delete payload: %w", err)
	}
	files = append(files[:i], files[i+1:]...)
	if err := s.repo.Save(ctx, userID, files); err != nil {
		return fmt.Errorf("save file index: %w", err)
	}

	s.log.Info().Str("user_id", userID).Str("file_id", fileID).Msg("File deleted")
	return nil
}

// Link records the semester a file was saved with.
func (s *FileService) Link(ctx context.Context, userID, fileID, semesterID string) (*model.StoredFile, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	files, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	i := indexOfFile(files, fileID)
	if i < 0 {
		return nil, ErrFileNotFound
	}
	files[i].SemesterID = semesterID
	if err := s.repo.Save(ctx, userID, files); err != nil {
		return nil, fmt.Errorf("save file index: %w", err)
	}
	return &files[i], nil
}

// Usage reports how much of the quota the user has consumed.
func (s *FileService) Usage(ctx context.Context, userID string) (*model.StorageUsage, error) {
	files, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return &model.StorageUsage{
		UsedBytes:  usedBytes(files),
		LimitBytes: s.maxUserBytes,
		FileCount:  len(files),
	}, nil
}

// IsImage reports whether the recognition path can read contentType.
func IsImage(contentType string) bool {
	return strings.HasPrefix(baseMediaType(contentType), "image/")
}

func baseMediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

func usedBytes(files []model.StoredFile) int64 {
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return total
}

func indexOfFile(files []model.StoredFile, id string) int {
	for i := range files {
		if files[i].ID == id {
			return i
		}
	}
	return -1
}

func allowedTypes() []string {
	types := make([]string, 0, len(allowedMIMETypes))
	for t := range allowedMIMETypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
