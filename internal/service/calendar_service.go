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

type calendarRepository interface {
	ListSchoolDays(ctx context.Context) ([]models.SchoolDay, error)
	FindSchoolDayByID(ctx context.Context, id string) (*models.SchoolDay, error)
	CreateSchoolDay(ctx context.Context, day *models.SchoolDay) error
	UpdateSchoolDay(ctx context.Context, day *models.SchoolDay) error
	DeleteSchoolDay(ctx context.Context, id string) error
	ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error)
	FindTimeSlotByID(ctx context.Context, id string) (*models.TimeSlot, error)
	CreateTimeSlot(ctx context.Context, slot *models.TimeSlot) error
	UpdateTimeSlot(ctx context.Context, slot *models.TimeSlot) error
	DeleteTimeSlot(ctx context.Context, id string) error
	ListBreakPeriods(ctx context.Context) ([]models.BreakPeriod, error)
	CreateBreakPeriod(ctx context.Context, brk *models.BreakPeriod) error
	DeleteBreakPeriod(ctx context.Context, id string) error
}

// CalendarService manages the weekly grid axes: school days, time slots
// and break periods.
type CalendarService struct {
	repo      calendarRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCalendarService constructs a CalendarService.
func NewCalendarService(repo calendarRepository, validate *validator.Validate, logger *zap.Logger) *CalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{repo: repo, validator: validate, logger: logger}
}

// ListSchoolDays returns school days in calendar order.
func (s *CalendarService) ListSchoolDays(ctx context.Context) ([]models.SchoolDay, error) {
	days, err := s.repo.ListSchoolDays(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list school days")
	}
	return days, nil
}

// CreateSchoolDay adds one teaching day to the calendar.
func (s *CalendarService) CreateSchoolDay(ctx context.Context, req dto.SchoolDayRequest) (*models.SchoolDay, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid school day payload")
	}
	day := &models.SchoolDay{Name: req.Name, DayOrder: req.DayOrder}
	if err := s.repo.CreateSchoolDay(ctx, day); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create school day")
	}
	return day, nil
}

// UpdateSchoolDay modifies a school day.
func (s *CalendarService) UpdateSchoolDay(ctx context.Context, id string, req dto.SchoolDayRequest) (*models.SchoolDay, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid school day payload")
	}
	day, err := s.repo.FindSchoolDayByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school day not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school day")
	}
	day.Name = req.Name
	day.DayOrder = req.DayOrder
	if err := s.repo.UpdateSchoolDay(ctx, day); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update school day")
	}
	return day, nil
}

// DeleteSchoolDay removes a school day.
func (s *CalendarService) DeleteSchoolDay(ctx context.Context, id string) error {
	if _, err := s.repo.FindSchoolDayByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "school day not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school day")
	}
	if err := s.repo.DeleteSchoolDay(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete school day")
	}
	return nil
}

// ListTimeSlots returns time slots in period order.
func (s *CalendarService) ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error) {
	slots, err := s.repo.ListTimeSlots(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time slots")
	}
	return slots, nil
}

// CreateTimeSlot adds one teaching period.
func (s *CalendarService) CreateTimeSlot(ctx context.Context, req dto.TimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}
	slot := &models.TimeSlot{
		Name:      req.Name,
		SlotOrder: req.SlotOrder,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if err := s.repo.CreateTimeSlot(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create time slot")
	}
	return slot, nil
}

// UpdateTimeSlot modifies a time slot.
func (s *CalendarService) UpdateTimeSlot(ctx context.Context, id string, req dto.TimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}
	slot, err := s.repo.FindTimeSlotByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}
	slot.Name = req.Name
	slot.SlotOrder = req.SlotOrder
	slot.StartTime = req.StartTime
	slot.EndTime = req.EndTime
	if err := s.repo.UpdateTimeSlot(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update time slot")
	}
	return slot, nil
}

// DeleteTimeSlot removes a time slot.
func (s *CalendarService) DeleteTimeSlot(ctx context.Context, id string) error {
	if _, err := s.repo.FindTimeSlotByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}
	if err := s.repo.DeleteTimeSlot(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete time slot")
	}
	return nil
}

// ListBreakPeriods returns all break exclusions.
func (s *CalendarService) ListBreakPeriods(ctx context.Context) ([]models.BreakPeriod, error) {
	breaks, err := s.repo.ListBreakPeriods(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list break periods")
	}
	return breaks, nil
}

// CreateBreakPeriod excludes a slot from scheduling, on one day or on
// every day when no day is given.
func (s *CalendarService) CreateBreakPeriod(ctx context.Context, req dto.BreakPeriodRequest) (*models.BreakPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid break period payload")
	}
	if _, err := s.repo.FindTimeSlotByID(ctx, req.TimeSlotID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}
	if req.SchoolDayID != nil {
		if _, err := s.repo.FindSchoolDayByID(ctx, *req.SchoolDayID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "school day not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school day")
		}
	}
	brk := &models.BreakPeriod{
		TimeSlotID:  req.TimeSlotID,
		SchoolDayID: req.SchoolDayID,
		Name:        req.Name,
	}
	if err := s.repo.CreateBreakPeriod(ctx, brk); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create break period")
	}
	return brk, nil
}

// DeleteBreakPeriod removes a break exclusion.
func (s *CalendarService) DeleteBreakPeriod(ctx context.Context, id string) error {
	if err := s.repo.DeleteBreakPeriod(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete break period")
	}
	return nil
}
