package models

import "time"

// Allocation states that a teacher teaches a subject to a class for a
// number of periods per week within one term. One allocation per
// class-subject-teacher combination per term.
type Allocation struct {
	ID             string    `db:"id" json:"id"`
	ClassID        string    `db:"class_id" json:"class_id"`
	SubjectID      string    `db:"subject_id" json:"subject_id"`
	TeacherID      string    `db:"teacher_id" json:"teacher_id"`
	PeriodsPerWeek int       `db:"periods_per_week" json:"periods_per_week"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	TermID         string    `db:"term_id" json:"term_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
