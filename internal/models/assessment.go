package models

import "time"

// AssessmentSessionType distinguishes continuous assessment from exams.
type AssessmentSessionType string

const (
	AssessmentTypeCA   AssessmentSessionType = "ca"
	AssessmentTypeExam AssessmentSessionType = "exam"
)

// AssessmentSession is one bounded CA or exam window.
type AssessmentSession struct {
	ID        string                `db:"id" json:"id"`
	Name      string                `db:"name" json:"name"`
	Type      AssessmentSessionType `db:"type" json:"type"`
	TermID    string                `db:"term_id" json:"term_id"`
	StartDate time.Time             `db:"start_date" json:"start_date"`
	EndDate   time.Time             `db:"end_date" json:"end_date"`
	CreatedAt time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt time.Time             `db:"updated_at" json:"updated_at"`
}

// AssessmentSubject registers one class-subject sitting within a session.
type AssessmentSubject struct {
	ID                  string    `db:"id" json:"id"`
	SessionID           string    `db:"assessment_session_id" json:"assessment_session_id"`
	ClassID             string    `db:"class_id" json:"class_id"`
	SubjectID           string    `db:"subject_id" json:"subject_id"`
	DurationMinutes     *int      `db:"duration_minutes" json:"duration_minutes,omitempty"`
	SupervisorTeacherID *string   `db:"supervisor_teacher_id" json:"supervisor_teacher_id,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// AssessmentEntry is one committed sitting on the session grid. ClassID and
// SubjectID are joined in from the assessment subject for display and audit.
type AssessmentEntry struct {
	ID                  string    `db:"id" json:"id"`
	SessionID           string    `db:"assessment_session_id" json:"assessment_session_id"`
	AssessmentSubjectID string    `db:"assessment_subject_id" json:"assessment_subject_id"`
	RoomID              *string   `db:"room_id" json:"room_id,omitempty"`
	SchoolDayID         string    `db:"school_day_id" json:"school_day_id"`
	TimeSlotID          string    `db:"time_slot_id" json:"time_slot_id"`
	SupervisorTeacherID *string   `db:"supervisor_teacher_id" json:"supervisor_teacher_id,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`

	ClassID        string  `db:"class_id" json:"class_id"`
	SubjectID      string  `db:"subject_id" json:"subject_id"`
	ClassName      string  `db:"class_name" json:"class_name,omitempty"`
	SubjectName    string  `db:"subject_name" json:"subject_name,omitempty"`
	RoomName       *string `db:"room_name" json:"room_name,omitempty"`
	SupervisorName *string `db:"supervisor_name" json:"supervisor_name,omitempty"`
	DayName        string  `db:"day_name" json:"day_name,omitempty"`
	DayOrder       int     `db:"day_order" json:"day_order,omitempty"`
	SlotName       string  `db:"slot_name" json:"slot_name,omitempty"`
	SlotOrder      int     `db:"slot_order" json:"slot_order,omitempty"`
}

// AssessmentConflictReport groups double-booked sittings per dimension.
type AssessmentConflictReport struct {
	SupervisorConflicts [][]AssessmentEntry `json:"supervisor_conflicts"`
	RoomConflicts       [][]AssessmentEntry `json:"room_conflicts"`
	ClassConflicts      [][]AssessmentEntry `json:"class_conflicts"`
}

// Empty reports whether no conflict group exists in any dimension.
func (r AssessmentConflictReport) Empty() bool {
	return len(r.SupervisorConflicts) == 0 && len(r.RoomConflicts) == 0 && len(r.ClassConflicts) == 0
}

// AssessmentGenerationResult is the payload of a successful session run.
type AssessmentGenerationResult struct {
	SessionID    string            `json:"assessment_session_id"`
	EntriesCount int               `json:"entries_count"`
	Entries      []AssessmentEntry `json:"entries"`
}
