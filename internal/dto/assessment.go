package dto

// CreateAssessmentSessionRequest opens a CA or exam window within a term.
type CreateAssessmentSessionRequest struct {
	Name      string `json:"name" validate:"required"`
	Type      string `json:"type" validate:"required,oneof=ca exam"`
	TermID    string `json:"term_id" validate:"required"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// RegisterAssessmentSubjectRequest registers one class-subject sitting.
type RegisterAssessmentSubjectRequest struct {
	ClassID             string  `json:"class_id" validate:"required"`
	SubjectID           string  `json:"subject_id" validate:"required"`
	DurationMinutes     *int    `json:"duration_minutes,omitempty" validate:"omitempty,gt=0"`
	SupervisorTeacherID *string `json:"supervisor_teacher_id,omitempty"`
}

// MoveAssessmentEntryRequest relocates one sitting to a new cell.
type MoveAssessmentEntryRequest struct {
	SchoolDayID string  `json:"school_day_id" validate:"required"`
	TimeSlotID  string  `json:"time_slot_id" validate:"required"`
	RoomID      *string `json:"room_id,omitempty"`
}

// SwapAssessmentEntriesRequest exchanges the grid positions of two sittings.
type SwapAssessmentEntriesRequest struct {
	EntryAID string `json:"entry_a_id" validate:"required"`
	EntryBID string `json:"entry_b_id" validate:"required"`
}
