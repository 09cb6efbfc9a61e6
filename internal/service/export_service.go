package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/edutrack-backend/internal/aggregate"
	"github.com/stemsi/edutrack-backend/internal/model"
	"github.com/stemsi/edutrack-backend/internal/repository"
	"github.com/xuri/excelize/v2"
)

// Transcript workbook layout.
const (
	SummarySheet  = "Summary"
	SubjectsSheet = "Subjects"

	TranscriptContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	summaryHeader  = []interface{}{"Semester", "Academic Year", "Semester No", "Student", "Subjects", "Credits", "SGPA"}
	subjectsHeader = []interface{}{"Semester", "Code", "Subject", "Credits", "Grade", "Points"}
)

// ExportService renders a user's record as an .xlsx transcript.
type ExportService struct {
	repo   *repository.SemesterRepository
	engine *aggregate.Engine
	log    zerolog.Logger
}

// NewExportService creates a new ExportService.
func NewExportService(repo *repository.SemesterRepository, engine *aggregate.Engine, log zerolog.Logger) *ExportService {
	return &ExportService{
		repo:   repo,
		engine: engine,
		log:    log.With().Str("component", "export_service").Logger(),
	}
}

// Transcript builds the workbook: one summary row per semester followed by
// the CGPA, and every subject row on a second sheet.
func (s *ExportService) Transcript(ctx context.Context, userID string) ([]byte, error) {
	semesters, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SubjectsSheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	if err := writeSummary(f, s.engine, semesters, bold); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}
	if err := writeSubjects(f, semesters, bold); err != nil {
		return nil, fmt.Errorf("write subjects: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}

	s.log.Debug().Str("user_id", userID).Int("semesters", len(semesters)).Msg("Transcript exported")
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, engine *aggregate.Engine, semesters []model.Semester, bold int) error {
	if err := writeRow(f, SummarySheet, 1, summaryHeader); err != nil {
		return err
	}
	row := 2
	for _, sem := range semesters {
		values := []interface{}{
			sem.Name,
			sem.AcademicYear,
			sem.SemesterNumber,
			sem.StudentName,
			len(sem.Subjects),
			engine.TotalCredits(sem.Subjects),
			engine.SGPA(sem.Subjects),
		}
		if err := writeRow(f, SummarySheet, row, values); err != nil {
			return err
		}
		row++
	}

	if err := writeRow(f, SummarySheet, row, []interface{}{"CGPA", nil, nil, nil, nil, nil, engine.CGPA(semesters)}); err != nil {
		return err
	}
	if err := f.SetRowStyle(SummarySheet, 1, 1, bold); err != nil {
		return err
	}
	if err := f.SetRowStyle(SummarySheet, row, row, bold); err != nil {
		return err
	}
	return f.SetColWidth(SummarySheet, "A", "D", 22)
}

func writeSubjects(f *excelize.File, semesters []model.Semester, bold int) error {
	if err := writeRow(f, SubjectsSheet, 1, subjectsHeader); err != nil {
		return err
	}
	row := 2
	for _, sem := range semesters {
		for _, sub := range sem.Subjects {
			values := []interface{}{sem.Name, sub.Code, sub.Name, sub.Credits, sub.Grade, sub.Points}
			if err := writeRow(f, SubjectsSheet, row, values); err != nil {
				return err
			}
			row++
		}
	}
	if err := f.SetRowStyle(SubjectsSheet, 1, 1, bold); err != nil {
		return err
	}
	return f.SetColWidth(SubjectsSheet, "C", "C", 40)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
