package service

import (
	"context"
	"fmt"

	"github.com/stemsi/edutrack-backend/internal/aggregate"
	"github.com/stemsi/edutrack-backend/internal/model"
	"github.com/stemsi/edutrack-backend/internal/repository"
)

// SubjectRankLimit is how many subjects each side of the ranking shows.
const SubjectRankLimit = 5

// SubjectRanking is the strongest and weakest subjects of a user.
type SubjectRanking struct {
	Best  []aggregate.SubjectPerformance `json:"best"`
	Worst []aggregate.SubjectPerformance `json:"worst"`
}

// AnalyticsService computes the dashboard statistics of a user.
type AnalyticsService struct {
	repo   *repository.SemesterRepository
	engine *aggregate.Engine
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(repo *repository.SemesterRepository, engine *aggregate.Engine) *AnalyticsService {
	return &AnalyticsService{repo: repo, engine: engine}
}

// Summary returns CGPA, totals, average SGPA and the performance band.
func (s *AnalyticsService) Summary(ctx context.Context, userID string) (aggregate.Summary, error) {
	semesters, err := s.semesters(ctx, userID)
	if err != nil {
		return aggregate.Summary{}, err
	}
	return s.engine.Summarize(semesters), nil
}

// Grades returns the grade distribution.
func (s *AnalyticsService) Grades(ctx context.Context, userID string) ([]aggregate.GradeCount, error) {
	semesters, err := s.semesters(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.engine.GradeDistribution(semesters), nil
}

// Subjects ranks subjects by average grade points.
func (s *AnalyticsService) Subjects(ctx context.Context, userID string) (SubjectRanking, error) {
	semesters, err := s.semesters(ctx, userID)
	if err != nil {
		return SubjectRanking{}, err
	}
	best, worst := s.engine.SubjectPerformance(semesters, SubjectRankLimit)
	return SubjectRanking{Best: best, Worst: worst}, nil
}

// Trend returns the SGPA timeline in insertion order.
func (s *AnalyticsService) Trend(ctx context.Context, userID string) ([]aggregate.TrendPoint, error) {
	semesters, err := s.semesters(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.engine.Trend(semesters), nil
}

// PreviewSGPA computes the SGPA of draft subjects without saving them.
// Grades are expected to be known; the handler rejects others at bind time.
func (s *AnalyticsService) PreviewSGPA(inputs []model.SubjectInput) model.SGPAPreviewResponse {
	table := s.engine.Table()
	subjects := make([]model.SubjectRecord, 0, len(inputs))
	for _, in := range inputs {
		points, _ := table.PointsFor(in.Grade)
		subjects = append(subjects, model.SubjectRecord{
			Code:    in.Code,
			Name:    in.Name,
			Credits: in.Credits,
			Grade:   in.Grade,
			Points:  points,
		})
	}
	return model.SGPAPreviewResponse{
		SGPA:          s.engine.SGPA(subjects),
		TotalCredits:  s.engine.TotalCredits(subjects),
		TotalSubjects: len(subjects),
	}
}

func (s *AnalyticsService) semesters(ctx context.Context, userID string) ([]model.Semester, error) {
	semesters, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	return semesters, nil
}
