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

type teacherRepoStub struct {
	teachers     map[string]*models.Teacher
	availability map[string][]models.TeacherAvailabilitySlot
	nextID       int
}

func newTeacherRepoStub() *teacherRepoStub {
	return &teacherRepoStub{
		teachers:     make(map[string]*models.Teacher),
		availability: make(map[string][]models.TeacherAvailabilitySlot),
	}
}

func (s *teacherRepoStub) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	var out []models.Teacher
	for _, t := range s.teachers {
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (s *teacherRepoStub) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	t, ok := s.teachers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *t
	return &copied, nil
}

func (s *teacherRepoStub) Create(ctx context.Context, teacher *models.Teacher) error {
	s.nextID++
	teacher.ID = fmt.Sprintf("teacher-%d", s.nextID)
	copied := *teacher
	s.teachers[teacher.ID] = &copied
	return nil
}

func (s *teacherRepoStub) Update(ctx context.Context, teacher *models.Teacher) error {
	if _, ok := s.teachers[teacher.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *teacher
	s.teachers[teacher.ID] = &copied
	return nil
}

func (s *teacherRepoStub) Delete(ctx context.Context, id string) error {
	delete(s.teachers, id)
	return nil
}

func (s *teacherRepoStub) ListAvailability(ctx context.Context, teacherID string) ([]models.TeacherAvailabilitySlot, error) {
	return s.availability[teacherID], nil
}

func (s *teacherRepoStub) ReplaceAvailability(ctx context.Context, teacherID string, slots []models.TeacherAvailabilitySlot) error {
	s.availability[teacherID] = slots
	return nil
}

func newTeacherFixture(t *testing.T) (*teacherRepoStub, *TeacherService) {
	t.Helper()
	repo := newTeacherRepoStub()
	return repo, NewTeacherService(repo, validator.New(), zap.NewNop())
}

func TestTeacherServiceCreateAndGet(t *testing.T) {
	_, svc := newTeacherFixture(t)

	created, err := svc.Create(context.Background(), dto.TeacherRequest{Name: "A. Okafor"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	loaded, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "A. Okafor", loaded.Name)
}

func TestTeacherServiceGetUnknown(t *testing.T) {
	_, svc := newTeacherFixture(t)

	_, err := svc.Get(context.Background(), "teacher-404")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTeacherServiceListPaginates(t *testing.T) {
	_, svc := newTeacherFixture(t)
	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), dto.TeacherRequest{Name: fmt.Sprintf("Teacher %d", i)})
		require.NoError(t, err)
	}

	teachers, page, err := svc.List(context.Background(), models.TeacherFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, teachers, 3)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
}

func TestTeacherServiceReplaceAvailability(t *testing.T) {
	repo, svc := newTeacherFixture(t)
	created, err := svc.Create(context.Background(), dto.TeacherRequest{Name: "A. Okafor"})
	require.NoError(t, err)

	slots, err := svc.ReplaceAvailability(context.Background(), created.ID, dto.ReplaceAvailabilityRequest{
		Slots: []dto.AvailabilitySlotRequest{
			{SchoolDayID: "mon", TimeSlotID: "p1", IsAvailable: false},
			{SchoolDayID: "tue", TimeSlotID: "p2", IsAvailable: true},
		},
	})
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, created.ID, slots[0].TeacherID)
	assert.Len(t, repo.availability[created.ID], 2)
}

func TestTeacherServiceReplaceAvailabilityRejectsDuplicateCell(t *testing.T) {
	_, svc := newTeacherFixture(t)
	created, err := svc.Create(context.Background(), dto.TeacherRequest{Name: "A. Okafor"})
	require.NoError(t, err)

	_, err = svc.ReplaceAvailability(context.Background(), created.ID, dto.ReplaceAvailabilityRequest{
		Slots: []dto.AvailabilitySlotRequest{
			{SchoolDayID: "mon", TimeSlotID: "p1", IsAvailable: false},
			{SchoolDayID: "mon", TimeSlotID: "p1", IsAvailable: true},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTeacherServiceReplaceAvailabilityUnknownTeacher(t *testing.T) {
	_, svc := newTeacherFixture(t)

	_, err := svc.ReplaceAvailability(context.Background(), "teacher-404", dto.ReplaceAvailabilityRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
