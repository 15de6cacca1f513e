package models

import "time"

// SchoolDay is one teaching day of the weekly calendar.
type SchoolDay struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	DayOrder  int       `db:"day_order" json:"day_order"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TimeSlot is one teaching period within a school day.
type TimeSlot struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	SlotOrder int       `db:"slot_order" json:"slot_order"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// BreakPeriod excludes a time slot from scheduling, either on one day or,
// when SchoolDayID is nil, on every day.
type BreakPeriod struct {
	ID          string    `db:"id" json:"id"`
	TimeSlotID  string    `db:"time_slot_id" json:"time_slot_id"`
	SchoolDayID *string   `db:"school_day_id" json:"school_day_id,omitempty"`
	Name        *string   `db:"name" json:"name,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
