package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolware/timetable-api/internal/dto"
	"github.com/schoolware/timetable-api/internal/models"
	appErrors "github.com/schoolware/timetable-api/pkg/errors"
)

type termRepository interface {
	ListAcademicYears(ctx context.Context) ([]models.AcademicYear, error)
	FindAcademicYearByID(ctx context.Context, id string) (*models.AcademicYear, error)
	FindActiveAcademicYear(ctx context.Context) (*models.AcademicYear, error)
	CreateAcademicYear(ctx context.Context, year *models.AcademicYear) error
	UpdateAcademicYear(ctx context.Context, year *models.AcademicYear) error
	ListTerms(ctx context.Context, academicYearID string) ([]models.Term, error)
	FindTermByID(ctx context.Context, id string) (*models.Term, error)
	CreateTerm(ctx context.Context, term *models.Term) error
	UpdateTerm(ctx context.Context, term *models.Term) error
	DeleteTerm(ctx context.Context, id string) error
}

const dateLayout = "2006-01-02"

// TermService manages academic years and their terms.
type TermService struct {
	repo      termRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTermService constructs a TermService.
func NewTermService(repo termRepository, validate *validator.Validate, logger *zap.Logger) *TermService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermService{repo: repo, validator: validate, logger: logger}
}

// ListAcademicYears returns all academic years.
func (s *TermService) ListAcademicYears(ctx context.Context) ([]models.AcademicYear, error) {
	years, err := s.repo.ListAcademicYears(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list academic years")
	}
	return years, nil
}

// GetActiveAcademicYear returns the currently active academic year.
func (s *TermService) GetActiveAcademicYear(ctx context.Context) (*models.AcademicYear, error) {
	year, err := s.repo.FindActiveAcademicYear(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active academic year")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active academic year")
	}
	return year, nil
}

// CreateAcademicYear adds a new academic year.
func (s *TermService) CreateAcademicYear(ctx context.Context, req dto.AcademicYearRequest) (*models.AcademicYear, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic year payload")
	}
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	year := &models.AcademicYear{Name: req.Name, StartDate: start, EndDate: end, IsActive: req.IsActive}
	if err := s.repo.CreateAcademicYear(ctx, year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create academic year")
	}
	return year, nil
}

// UpdateAcademicYear modifies an academic year.
func (s *TermService) UpdateAcademicYear(ctx context.Context, id string, req dto.AcademicYearRequest) (*models.AcademicYear, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic year payload")
	}
	year, err := s.repo.FindAcademicYearByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	year.Name = req.Name
	year.StartDate = start
	year.EndDate = end
	year.IsActive = req.IsActive
	if err := s.repo.UpdateAcademicYear(ctx, year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update academic year")
	}
	return year, nil
}

// ListTerms returns terms of one academic year.
func (s *TermService) ListTerms(ctx context.Context, academicYearID string) ([]models.Term, error) {
	if _, err := s.repo.FindAcademicYearByID(ctx, academicYearID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}
	terms, err := s.repo.ListTerms(ctx, academicYearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list terms")
	}
	return terms, nil
}

// GetTerm returns one term by id.
func (s *TermService) GetTerm(ctx context.Context, id string) (*models.Term, error) {
	term, err := s.repo.FindTermByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	return term, nil
}

// CreateTerm adds a term under an academic year.
func (s *TermService) CreateTerm(ctx context.Context, req dto.TermRequest) (*models.Term, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term payload")
	}
	if _, err := s.repo.FindAcademicYearByID(ctx, req.AcademicYearID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	term := &models.Term{AcademicYearID: req.AcademicYearID, Name: req.Name, StartDate: start, EndDate: end}
	if err := s.repo.CreateTerm(ctx, term); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create term")
	}
	return term, nil
}

// UpdateTerm modifies a term.
func (s *TermService) UpdateTerm(ctx context.Context, id string, req dto.TermRequest) (*models.Term, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term payload")
	}
	term, err := s.repo.FindTermByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	term.AcademicYearID = req.AcademicYearID
	term.Name = req.Name
	term.StartDate = start
	term.EndDate = end
	if err := s.repo.UpdateTerm(ctx, term); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update term")
	}
	return term, nil
}

// DeleteTerm removes a term.
func (s *TermService) DeleteTerm(ctx context.Context, id string) error {
	if _, err := s.repo.FindTermByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	if err := s.repo.DeleteTerm(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete term")
	}
	return nil
}

func parseDateRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid start_date")
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid end_date")
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "end_date must be after start_date")
	}
	return start, end, nil
}
