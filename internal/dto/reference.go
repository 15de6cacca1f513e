package dto

// SchoolDayRequest creates or updates a school day.
type SchoolDayRequest struct {
	Name     string `json:"name" validate:"required"`
	DayOrder int    `json:"day_order" validate:"required,gt=0"`
}

// TimeSlotRequest creates or updates a time slot.
type TimeSlotRequest struct {
	Name      string `json:"name" validate:"required"`
	SlotOrder int    `json:"slot_order" validate:"required,gt=0"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// BreakPeriodRequest marks a slot as a break, globally or on one day.
type BreakPeriodRequest struct {
	TimeSlotID  string  `json:"time_slot_id" validate:"required"`
	SchoolDayID *string `json:"school_day_id,omitempty"`
	Name        *string `json:"name,omitempty"`
}

// TeacherRequest creates or updates a teacher.
type TeacherRequest struct {
	Name   string  `json:"name" validate:"required"`
	Email  *string `json:"email,omitempty" validate:"omitempty,email"`
	UserID *string `json:"user_id,omitempty"`
}

// AvailabilitySlotRequest marks one calendar cell for a teacher.
type AvailabilitySlotRequest struct {
	SchoolDayID string `json:"school_day_id" validate:"required"`
	TimeSlotID  string `json:"time_slot_id" validate:"required"`
	IsAvailable bool   `json:"is_available"`
}

// ReplaceAvailabilityRequest swaps a teacher's availability rows.
type ReplaceAvailabilityRequest struct {
	Slots []AvailabilitySlotRequest `json:"slots" validate:"dive"`
}

// ClassRequest creates or updates a class.
type ClassRequest struct {
	Name  string `json:"name" validate:"required"`
	Level string `json:"level" validate:"required"`
}

// SubjectRequest creates or updates a subject.
type SubjectRequest struct {
	Code string `json:"code" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// RoomRequest creates or updates a room.
type RoomRequest struct {
	Name     string `json:"name" validate:"required"`
	Capacity int    `json:"capacity" validate:"gte=0"`
	RoomType string `json:"room_type" validate:"required"`
}

// AcademicYearRequest creates or updates an academic year.
type AcademicYearRequest struct {
	Name      string `json:"name" validate:"required"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	IsActive  bool   `json:"is_active"`
}

// TermRequest creates or updates a term.
type TermRequest struct {
	AcademicYearID string `json:"academic_year_id" validate:"required"`
	Name           string `json:"name" validate:"required"`
	StartDate      string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// AllocationRequest creates or updates a teaching allocation.
type AllocationRequest struct {
	ClassID        string `json:"class_id" validate:"required"`
	SubjectID      string `json:"subject_id" validate:"required"`
	TeacherID      string `json:"teacher_id" validate:"required"`
	PeriodsPerWeek int    `json:"periods_per_week" validate:"required,gt=0"`
	AcademicYearID string `json:"academic_year_id" validate:"required"`
	TermID         string `json:"term_id" validate:"required"`
}
