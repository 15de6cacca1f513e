package models

import "time"

// TimetableEntry is one committed placement of a recurring lesson on the
// weekly grid. RoomID is nil when no room could be assigned.
type TimetableEntry struct {
	ID             string    `db:"id" json:"id"`
	ClassID        string    `db:"class_id" json:"class_id"`
	TeacherID      string    `db:"teacher_id" json:"teacher_id"`
	SubjectID      string    `db:"subject_id" json:"subject_id"`
	RoomID         *string   `db:"room_id" json:"room_id,omitempty"`
	SchoolDayID    string    `db:"school_day_id" json:"school_day_id"`
	TimeSlotID     string    `db:"time_slot_id" json:"time_slot_id"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	TermID         string    `db:"term_id" json:"term_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`

	// Display fields joined from reference tables.
	ClassName   string  `db:"class_name" json:"class_name,omitempty"`
	SubjectName string  `db:"subject_name" json:"subject_name,omitempty"`
	TeacherName string  `db:"teacher_name" json:"teacher_name,omitempty"`
	RoomName    *string `db:"room_name" json:"room_name,omitempty"`
	DayName     string  `db:"day_name" json:"day_name,omitempty"`
	DayOrder    int     `db:"day_order" json:"day_order,omitempty"`
	SlotName    string  `db:"slot_name" json:"slot_name,omitempty"`
	SlotOrder   int     `db:"slot_order" json:"slot_order,omitempty"`
}

// TimetableFilter narrows entry listings to one scope and optional entity.
type TimetableFilter struct {
	TermID    string
	ClassID   string
	TeacherID string
}

// TimetableConflictReport groups double-booked entries per dimension. Each
// inner slice is one clashing group, listed verbatim.
type TimetableConflictReport struct {
	TeacherConflicts [][]TimetableEntry `json:"teacher_conflicts"`
	RoomConflicts    [][]TimetableEntry `json:"room_conflicts"`
	ClassConflicts   [][]TimetableEntry `json:"class_conflicts"`
}

// Empty reports whether no conflict group exists in any dimension.
func (r TimetableConflictReport) Empty() bool {
	return len(r.TeacherConflicts) == 0 && len(r.RoomConflicts) == 0 && len(r.ClassConflicts) == 0
}

// GenerationResult is the payload returned by a successful generation run.
type GenerationResult struct {
	TermID         string           `json:"term_id"`
	AcademicYearID string           `json:"academic_year_id"`
	EntriesCount   int              `json:"entries_count"`
	Entries        []TimetableEntry `json:"entries"`
}
