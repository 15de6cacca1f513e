package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolware/timetable-api/internal/models"
)

// CalendarRepository persists the weekly calendar: school days, time slots
// and break periods.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository creates a new calendar repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// ListSchoolDays returns all school days ordered by day_order.
func (r *CalendarRepository) ListSchoolDays(ctx context.Context) ([]models.SchoolDay, error) {
	const query = `SELECT id, name, day_order, created_at, updated_at FROM school_days ORDER BY day_order ASC`
	var days []models.SchoolDay
	if err := r.db.SelectContext(ctx, &days, query); err != nil {
		return nil, fmt.Errorf("list school days: %w", err)
	}
	return days, nil
}

// FindSchoolDayByID loads a school day by id.
func (r *CalendarRepository) FindSchoolDayByID(ctx context.Context, id string) (*models.SchoolDay, error) {
	const query = `SELECT id, name, day_order, created_at, updated_at FROM school_days WHERE id = $1`
	var day models.SchoolDay
	if err := r.db.GetContext(ctx, &day, query, id); err != nil {
		return nil, err
	}
	return &day, nil
}

// CreateSchoolDay inserts a new school day.
func (r *CalendarRepository) CreateSchoolDay(ctx context.Context, day *models.SchoolDay) error {
	if day.ID == "" {
		day.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if day.CreatedAt.IsZero() {
		day.CreatedAt = now
	}
	day.UpdatedAt = now

	const query = `INSERT INTO school_days (id, name, day_order, created_at, updated_at) VALUES (:id, :name, :day_order, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, day); err != nil {
		return fmt.Errorf("create school day: %w", err)
	}
	return nil
}

// UpdateSchoolDay modifies an existing school day.
func (r *CalendarRepository) UpdateSchoolDay(ctx context.Context, day *models.SchoolDay) error {
	day.UpdatedAt = time.Now().UTC()
	const query = `UPDATE school_days SET name = :name, day_order = :day_order, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, day); err != nil {
		return fmt.Errorf("update school day: %w", err)
	}
	return nil
}

// DeleteSchoolDay removes a school day by id.
func (r *CalendarRepository) DeleteSchoolDay(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM school_days WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete school day: %w", err)
	}
	return nil
}

// ListTimeSlots returns all time slots ordered by slot_order.
func (r *CalendarRepository) ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error) {
	const query = `SELECT id, name, slot_order, start_time, end_time, created_at, updated_at FROM time_slots ORDER BY slot_order ASC`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}

// FindTimeSlotByID loads a time slot by id.
func (r *CalendarRepository) FindTimeSlotByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	const query = `SELECT id, name, slot_order, start_time, end_time, created_at, updated_at FROM time_slots WHERE id = $1`
	var slot models.TimeSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// CreateTimeSlot inserts a new time slot.
func (r *CalendarRepository) CreateTimeSlot(ctx context.Context, slot *models.TimeSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now

	const query = `INSERT INTO time_slots (id, name, slot_order, start_time, end_time, created_at, updated_at) VALUES (:id, :name, :slot_order, :start_time, :end_time, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create time slot: %w", err)
	}
	return nil
}

// UpdateTimeSlot modifies an existing time slot.
func (r *CalendarRepository) UpdateTimeSlot(ctx context.Context, slot *models.TimeSlot) error {
	slot.UpdatedAt = time.Now().UTC()
	const query = `UPDATE time_slots SET name = :name, slot_order = :slot_order, start_time = :start_time, end_time = :end_time, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("update time slot: %w", err)
	}
	return nil
}

// DeleteTimeSlot removes a time slot by id.
func (r *CalendarRepository) DeleteTimeSlot(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM time_slots WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete time slot: %w", err)
	}
	return nil
}

// ListBreakPeriods returns all configured break periods.
func (r *CalendarRepository) ListBreakPeriods(ctx context.Context) ([]models.BreakPeriod, error) {
	const query = `SELECT id, time_slot_id, school_day_id, name, created_at FROM break_periods`
	var breaks []models.BreakPeriod
	if err := r.db.SelectContext(ctx, &breaks, query); err != nil {
		return nil, fmt.Errorf("list break periods: %w", err)
	}
	return breaks, nil
}

// CreateBreakPeriod inserts a break period. A nil SchoolDayID marks the
// slot as a break on every day.
func (r *CalendarRepository) CreateBreakPeriod(ctx context.Context, brk *models.BreakPeriod) error {
	if brk.ID == "" {
		brk.ID = uuid.NewString()
	}
	if brk.CreatedAt.IsZero() {
		brk.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO break_periods (id, time_slot_id, school_day_id, name, created_at) VALUES (:id, :time_slot_id, :school_day_id, :name, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, brk); err != nil {
		return fmt.Errorf("create break period: %w", err)
	}
	return nil
}

// DeleteBreakPeriod removes a break period by id.
func (r *CalendarRepository) DeleteBreakPeriod(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM break_periods WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete break period: %w", err)
	}
	return nil
}
