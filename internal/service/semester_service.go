package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/edutrack-backend/internal/aggregate"
	"github.com/stemsi/edutrack-backend/internal/grade"
	"github.com/stemsi/edutrack-backend/internal/model"
	"github.com/stemsi/edutrack-backend/internal/repository"
)

// Sentinel errors for semester operations.
var (
	ErrSemesterNotFound = errors.New("semester not found")
	ErrSubjectNotFound  = errors.New("subject not found")
	ErrUnknownGrade     = errors.New("unknown grade")
	ErrInvalidCredits   = errors.New("credits out of range")
	ErrInvalidSubject   = errors.New("subject code and name are required")
)

// UnknownStudent labels semesters saved without a student name.
const UnknownStudent = "Unknown Student"

// SemesterService manages a user's semesters. Every mutation rewrites the
// derived fields before the collection is saved.
type SemesterService struct {
	repo   *repository.SemesterRepository
	files  *FileService
	engine *aggregate.Engine
	locks  *userLocks
	log    zerolog.Logger
}

// NewSemesterService creates a new SemesterService.
func NewSemesterService(repo *repository.SemesterRepository, files *FileService, engine *aggregate.Engine, log zerolog.Logger) *SemesterService {
	return &SemesterService{
		repo:   repo,
		files:  files,
		engine: engine,
		locks:  newUserLocks(),
		log:    log.With().Str("component", "semester_service").Logger(),
	}
}

// Create saves a new semester. A source file, when given, must belong to
// the user and gets linked to the new semester.
func (s *SemesterService) Create(ctx context.Context, userID string, req model.CreateSemesterRequest) (*model.Semester, error) {
	subjects, err := s.toRecords(req.Subjects)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sem := model.Semester{
		ID:             uuid.New().String(),
		OwnerID:        userID,
		Name:           strings.TrimSpace(req.Name),
		AcademicYear:   strings.TrimSpace(req.AcademicYear),
		SemesterNumber: req.SemesterNumber,
		RollNumber:     strings.TrimSpace(req.RollNumber),
		Institution:    strings.TrimSpace(req.Institution),
		StudentName:    strings.TrimSpace(req.StudentName),
		Subjects:       subjects,
		UploadMethod:   req.UploadMethod,
		OCRConfidence:  req.OCRConfidence,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if sem.UploadMethod == "" {
		sem.UploadMethod = model.UploadMethodManual
		if req.SourceFileID != "" {
			sem.UploadMethod = model.UploadMethodOCR
		}
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	semesters, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}

	var previousLink string
	if req.SourceFileID != "" {
		current, err := s.files.Get(ctx, userID, req.SourceFileID)
		if err != nil {
			return nil, err
		}
		previousLink = current.SemesterID

		file, err := s.files.Link(ctx, userID, req.SourceFileID, sem.ID)
		if err != nil {
			return nil, err
		}
		sem.SourceFileID = file.ID
		sem.SourceFileName = file.Name
	}

	s.engine.Recompute(&sem)
	if err := s.repo.Save(ctx, userID, append(semesters, sem)); err != nil {
		if sem.SourceFileID != "" {
			if _, uerr := s.files.Link(ctx, userID, sem.SourceFileID, previousLink); uerr != nil {
				s.log.Warn().Err(uerr).Str("file_id", sem.SourceFileID).Msg("Failed to restore file link")
			}
		}
		return nil, fmt.Errorf("save semesters: %w", err)
	}

	s.log.Info().
		Str("user_id", userID).
		Str("semester_id", sem.ID).
		Str("method", string(sem.UploadMethod)).
		Int("subjects", sem.TotalSubjects).
		Msg("Semester created")
	return &sem, nil
}

// List returns the user's semesters in insertion order, narrowed by filter.
func (s *SemesterService) List(ctx context.Context, userID string, filter model.SemesterFilter) ([]model.Semester, error) {
	semesters, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	if filter.Search == "" && filter.Student == "" {
		return semesters, nil
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]model.Semester, 0, len(semesters))
	for _, sem := range semesters {
		if filter.Student != "" && sem.StudentName != filter.Student {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(sem.Name), search) &&
			!strings.Contains(strings.ToLower(sem.StudentName), search) &&
			!strings.Contains(strings.ToLower(sem.AcademicYear), search) {
			continue
		}
		out = append(out, sem)
	}
	return out, nil
}

// GroupByStudent groups semesters by student name in order of first
// appearance.
func (s *SemesterService) GroupByStudent(semesters []model.Semester) []model.SemesterGroup {
	groups := make([]model.SemesterGroup, 0)
	index := make(map[string]int)
	for _, sem := range semesters {
		name := sem.StudentName
		if name == "" {
			name = UnknownStudent
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, model.SemesterGroup{StudentName: name})
		}
		groups[i].Semesters = append(groups[i].Semesters, sem)
	}
	return groups
}

// Get returns one semester.
func (s *SemesterService) Get(ctx context.Context, userID, semesterID string) (*model.Semester, error) {
	semesters, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	i := indexOfSemester(semesters, semesterID)
	if i < 0 {
		return nil, ErrSemesterNotFound
	}
	return &semesters[i], nil
}

// Update edits header fields.
func (s *SemesterService) Update(ctx context.Context, userID, semesterID string, req model.UpdateSemesterRequest) (*model.Semester, error) {
	return s.mutate(ctx, userID, semesterID, func(sem *model.Semester) error {
		if req.Name != nil {
			sem.Name = strings.TrimSpace(*req.Name)
		}
		if req.AcademicYear != nil {
			sem.AcademicYear = strings.TrimSpace(*req.AcademicYear)
		}
		if req.SemesterNumber != nil {
			sem.SemesterNumber = *req.SemesterNumber
		}
		if req.RollNumber != nil {
			sem.RollNumber = strings.TrimSpace(*req.RollNumber)
		}
		if req.Institution != nil {
			sem.Institution = strings.TrimSpace(*req.Institution)
		}
		if req.StudentName != nil {
			sem.StudentName = strings.TrimSpace(*req.StudentName)
		}
		return nil
	})
}

// ReplaceSubjects swaps every subject of a semester.
func (s *SemesterService) ReplaceSubjects(ctx context.Context, userID, semesterID string, inputs []model.SubjectInput) (*model.Semester, error) {
	subjects, err := s.toRecords(inputs)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, semesterID, func(sem *model.Semester) error {
		sem.Subjects = subjects
		return nil
	})
}

// AddSubject appends one subject.
func (s *SemesterService) AddSubject(ctx context.Context, userID, semesterID string, input model.SubjectInput) (*model.Semester, error) {
	subjects, err := s.toRecords([]model.SubjectInput{input})
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, semesterID, func(sem *model.Semester) error {
		sem.Subjects = append(sem.Subjects, subjects[0])
		return nil
	})
}

// UpdateSubject overwrites one subject in place, keeping its id.
func (s *SemesterService) UpdateSubject(ctx context.Context, userID, semesterID, subjectID string, input model.SubjectInput) (*model.Semester, error) {
	subjects, err := s.toRecords([]model.SubjectInput{input})
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, semesterID, func(sem *model.Semester) error {
		i := indexOfSubject(sem.Subjects, subjectID)
		if i < 0 {
			return ErrSubjectNotFound
		}
		subjects[0].ID = subjectID
		sem.Subjects[i] = subjects[0]
		return nil
	})
}

// RemoveSubject deletes one subject.
func (s *SemesterService) RemoveSubject(ctx context.Context, userID, semesterID, subjectID string) (*model.Semester, error) {
	return s.mutate(ctx, userID, semesterID, func(sem *model.Semester) error {
		i := indexOfSubject(sem.Subjects, subjectID)
		if i < 0 {
			return ErrSubjectNotFound
		}
		sem.Subjects = append(sem.Subjects[:i], sem.Subjects[i+1:]...)
		return nil
	})
}

// Delete removes a semester together with its source file.
func (s *SemesterService) Delete(ctx context.Context, userID, semesterID string) error {
	unlock := s.locks.lock(userID)
	defer unlock()

	semesters, err := s.repo.List(ctx, userID)
	if err != nil {
		return fmt.Errorf("list semesters: %w", err)
	}
	i := indexOfSemester(semesters, semesterID)
	if i < 0 {
		return ErrSemesterNotFound
	}
	sourceFile := semesters[i].SourceFileID

	semesters = append(semesters[:i], semesters[i+1:]...)
	if err := s.repo.Save(ctx, userID, semesters); err != nil {
		return fmt.Errorf("save semesters: %w", err)
	}

	if sourceFile != "" {
		if err := s.files.Delete(ctx, userID, sourceFile); err != nil && !errors.Is(err, ErrFileNotFound) {
			s.log.Warn().Err(err).Str("file_id", sourceFile).Msg("Failed to delete source file")
		}
	}

	s.log.Info().Str("user_id", userID).Str("semester_id", semesterID).Msg("Semester deleted")
	return nil
}

func (s *SemesterService) mutate(ctx context.Context, userID, semesterID string, fn func(*model.Semester) error) (*model.Semester, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	semesters, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	i := indexOfSemester(semesters, semesterID)
	if i < 0 {
		return nil, ErrSemesterNotFound
	}

	sem := &semesters[i]
	if err := fn(sem); err != nil {
		return nil, err
	}
	s.engine.Recompute(sem)
	sem.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, userID, semesters); err != nil {
		return nil, fmt.Errorf("save semesters: %w", err)
	}
	out := *sem
	return &out, nil
}

// toRecords builds subject records with fresh ids. Grades must be known to
// the engine's table and credits must lie in 1..MaxCredits.
func (s *SemesterService) toRecords(inputs []model.SubjectInput) ([]model.SubjectRecord, error) {
	table := s.engine.Table()
	records := make([]model.SubjectRecord, 0, len(inputs))
	for _, in := range inputs {
		code := strings.ToUpper(strings.TrimSpace(in.Code))
		name := strings.TrimSpace(in.Name)
		if code == "" || name == "" {
			return nil, ErrInvalidSubject
		}
		if in.Credits < 1 || in.Credits > model.MaxCredits {
			return nil, fmt.Errorf("%w: %s has %d", ErrInvalidCredits, code, in.Credits)
		}
		g := grade.Normalize(in.Grade)
		points, known := table.PointsFor(g)
		if !known {
			return nil, fmt.Errorf("%w: %q", ErrUnknownGrade, in.Grade)
		}
		records = append(records, model.SubjectRecord{
			ID:      uuid.New().String(),
			Code:    code,
			Name:    name,
			Credits: in.Credits,
			Grade:   g,
			Points:  points,
		})
	}
	return records, nil
}

func indexOfSemester(semesters []model.Semester, id string) int {
	for i := range semesters {
		if semesters[i].ID == id {
			return i
		}
	}
	return -1
}

func indexOfSubject(subjects []model.SubjectRecord, id string) int {
	for i := range subjects {
		if subjects[i].ID == id {
			return i
		}
	}
	return -1
}
