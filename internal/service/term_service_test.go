package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schoolware/timetable-api/internal/dto"
	"github.com/schoolware/timetable-api/internal/models"
	appErrors "github.com/schoolware/timetable-api/pkg/errors"
)

type termRepoStub struct {
	years  map[string]*models.AcademicYear
	terms  map[string]*models.Term
	nextID int
}

func newTermRepoStub() *termRepoStub {
	return &termRepoStub{
		years: make(map[string]*models.AcademicYear),
		terms: make(map[string]*models.Term),
	}
}

func (s *termRepoStub) ListAcademicYears(ctx context.Context) ([]models.AcademicYear, error) {
	var out []models.AcademicYear
	for _, y := range s.years {
		out = append(out, *y)
	}
	return out, nil
}

func (s *termRepoStub) FindAcademicYearByID(ctx context.Context, id string) (*models.AcademicYear, error) {
	y, ok := s.years[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *y
	return &copied, nil
}

func (s *termRepoStub) FindActiveAcademicYear(ctx context.Context) (*models.AcademicYear, error) {
	for _, y := range s.years {
		if y.IsActive {
			copied := *y
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *termRepoStub) CreateAcademicYear(ctx context.Context, year *models.AcademicYear) error {
	s.nextID++
	year.ID = fmt.Sprintf("year-%d", s.nextID)
	copied := *year
	s.years[year.ID] = &copied
	return nil
}

func (s *termRepoStub) UpdateAcademicYear(ctx context.Context, year *models.AcademicYear) error {
	if _, ok := s.years[year.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *year
	s.years[year.ID] = &copied
	return nil
}

func (s *termRepoStub) ListTerms(ctx context.Context, academicYearID string) ([]models.Term, error) {
	var out []models.Term
	for _, term := range s.terms {
		if term.AcademicYearID == academicYearID {
			out = append(out, *term)
		}
	}
	return out, nil
}

func (s *termRepoStub) FindTermByID(ctx context.Context, id string) (*models.Term, error) {
	term, ok := s.terms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *term
	return &copied, nil
}

func (s *termRepoStub) CreateTerm(ctx context.Context, term *models.Term) error {
	s.nextID++
	term.ID = fmt.Sprintf("term-%d", s.nextID)
	copied := *term
	s.terms[term.ID] = &copied
	return nil
}

func (s *termRepoStub) UpdateTerm(ctx context.Context, term *models.Term) error {
	if _, ok := s.terms[term.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *term
	s.terms[term.ID] = &copied
	return nil
}

func (s *termRepoStub) DeleteTerm(ctx context.Context, id string) error {
	delete(s.terms, id)
	return nil
}

func newTermFixture(t *testing.T) (*termRepoStub, *TermService) {
	t.Helper()
	repo := newTermRepoStub()
	return repo, NewTermService(repo, validator.New(), zap.NewNop())
}

func TestTermServiceCreateAcademicYear(t *testing.T) {
	_, svc := newTermFixture(t)

	year, err := svc.CreateAcademicYear(context.Background(), dto.AcademicYearRequest{
		Name:      "2026/2027",
		StartDate: "2026-09-07",
		EndDate:   "2027-07-16",
		IsActive:  true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, year.ID)
	assert.True(t, year.IsActive)
}

func TestTermServiceCreateAcademicYearRejectsInvertedDates(t *testing.T) {
	_, svc := newTermFixture(t)

	_, err := svc.CreateAcademicYear(context.Background(), dto.AcademicYearRequest{
		Name:      "2026/2027",
		StartDate: "2027-07-16",
		EndDate:   "2026-09-07",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTermServiceGetActiveAcademicYearNoneActive(t *testing.T) {
	_, svc := newTermFixture(t)

	_, err := svc.GetActiveAcademicYear(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTermServiceCreateTermRequiresKnownYear(t *testing.T) {
	_, svc := newTermFixture(t)

	_, err := svc.CreateTerm(context.Background(), dto.TermRequest{
		AcademicYearID: "year-404",
		Name:           "First Term",
		StartDate:      "2026-09-07",
		EndDate:        "2026-12-18",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTermServiceListTermsByYear(t *testing.T) {
	_, svc := newTermFixture(t)
	year, err := svc.CreateAcademicYear(context.Background(), dto.AcademicYearRequest{
		Name:      "2026/2027",
		StartDate: "2026-09-07",
		EndDate:   "2027-07-16",
	})
	require.NoError(t, err)

	_, err = svc.CreateTerm(context.Background(), dto.TermRequest{
		AcademicYearID: year.ID,
		Name:           "First Term",
		StartDate:      "2026-09-07",
		EndDate:        "2026-12-18",
	})
	require.NoError(t, err)

	terms, err := svc.ListTerms(context.Background(), year.ID)
	require.NoError(t, err)
	assert.Len(t, terms, 1)
}
