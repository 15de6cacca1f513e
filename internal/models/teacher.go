package models

import "time"

// Teacher represents an instructor record.
type Teacher struct {
	ID        string    `db:"id" json:"id"`
	UserID    *string   `db:"user_id" json:"user_id,omitempty"`
	Name      string    `db:"name" json:"name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// TeacherAvailabilitySlot marks a teacher's availability for one calendar
// cell. Cells without a row are treated as available.
type TeacherAvailabilitySlot struct {
	ID          string `db:"id" json:"id"`
	TeacherID   string `db:"teacher_id" json:"teacher_id"`
	SchoolDayID string `db:"school_day_id" json:"school_day_id"`
	TimeSlotID  string `db:"time_slot_id" json:"time_slot_id"`
	IsAvailable bool   `db:"is_available" json:"is_available"`
}
