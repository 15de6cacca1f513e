package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolware/timetable-api/internal/dto"
	"github.com/schoolware/timetable-api/internal/models"
	appErrors "github.com/schoolware/timetable-api/pkg/errors"
)

type allocationRepository interface {
	ListByTerm(ctx context.Context, termID string) ([]models.Allocation, error)
	FindByID(ctx context.Context, id string) (*models.Allocation, error)
	Exists(ctx context.Context, termID, classID, subjectID, teacherID, excludeID string) (bool, error)
	Create(ctx context.Context, allocation *models.Allocation) error
	Update(ctx context.Context, allocation *models.Allocation) error
	Delete(ctx context.Context, id string) error
}

// AllocationService manages teaching allocations, the demand feeding the
// timetable generator.
type AllocationService struct {
	repo      allocationRepository
	terms     timetableTermReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAllocationService constructs an AllocationService.
func NewAllocationService(repo allocationRepository, terms timetableTermReader, validate *validator.Validate, logger *zap.Logger) *AllocationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationService{repo: repo, terms: terms, validator: validate, logger: logger}
}

// ListByTerm returns all allocations of one term.
func (s *AllocationService) ListByTerm(ctx context.Context, termID string) ([]models.Allocation, error) {
	if termID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term_id is required")
	}
	allocations, err := s.repo.ListByTerm(ctx, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list allocations")
	}
	return allocations, nil
}

// Get returns one allocation by id.
func (s *AllocationService) Get(ctx context.Context, id string) (*models.Allocation, error) {
	allocation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "allocation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allocation")
	}
	return allocation, nil
}

// Create adds an allocation enforcing one class-subject-teacher row per term.
func (s *AllocationService) Create(ctx context.Context, req dto.AllocationRequest) (*models.Allocation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid allocation payload")
	}
	if _, err := s.terms.FindTermByID(ctx, req.TermID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	exists, err := s.repo.Exists(ctx, req.TermID, req.ClassID, req.SubjectID, req.TeacherID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check allocation")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "allocation already exists for this term")
	}
	allocation := &models.Allocation{
		ClassID:        req.ClassID,
		SubjectID:      req.SubjectID,
		TeacherID:      req.TeacherID,
		PeriodsPerWeek: req.PeriodsPerWeek,
		AcademicYearID: req.AcademicYearID,
		TermID:         req.TermID,
	}
	if err := s.repo.Create(ctx, allocation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create allocation")
	}
	return allocation, nil
}

// Update modifies an allocation.
func (s *AllocationService) Update(ctx context.Context, id string, req dto.AllocationRequest) (*models.Allocation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid allocation payload")
	}
	allocation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "allocation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allocation")
	}
	exists, err := s.repo.Exists(ctx, req.TermID, req.ClassID, req.SubjectID, req.TeacherID, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check allocation")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "allocation already exists for this term")
	}
	allocation.ClassID = req.ClassID
	allocation.SubjectID = req.SubjectID
	allocation.TeacherID = req.TeacherID
	allocation.PeriodsPerWeek = req.PeriodsPerWeek
	allocation.AcademicYearID = req.AcademicYearID
	allocation.TermID = req.TermID
	if err := s.repo.Update(ctx, allocation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update allocation")
	}
	return allocation, nil
}

// Delete removes an allocation.
func (s *AllocationService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "allocation not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allocation")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete allocation")
	}
	return nil
}
