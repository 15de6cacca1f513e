package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolware/timetable-api/internal/models"
)

const assessmentEntryColumns = `e.id, e.assessment_session_id, e.assessment_subject_id, e.room_id, e.school_day_id, e.time_slot_id, e.supervisor_teacher_id, e.created_at, e.updated_at,
	asub.class_id, asub.subject_id, c.name AS class_name, s.name AS subject_name,
	r.name AS room_name, sup.name AS supervisor_name,
	d.name AS day_name, d.day_order, ts.name AS slot_name, ts.slot_order`

const assessmentEntryJoins = `FROM assessment_entries e
	JOIN assessment_subjects asub ON asub.id = e.assessment_subject_id
	JOIN classes c ON c.id = asub.class_id
	JOIN subjects s ON s.id = asub.subject_id
	LEFT JOIN rooms r ON r.id = e.room_id
	LEFT JOIN teachers sup ON sup.id = e.supervisor_teacher_id
	JOIN school_days d ON d.id = e.school_day_id
	JOIN time_slots ts ON ts.id = e.time_slot_id`

// AssessmentRepository persists assessment sessions, their registered
// subjects and committed entries.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository creates a new assessment repository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// ListSessions returns assessment sessions for a term, newest first.
func (r *AssessmentRepository) ListSessions(ctx context.Context, termID string) ([]models.AssessmentSession, error) {
	const query = `SELECT id, name, type, term_id, start_date, end_date, created_at, updated_at FROM assessment_sessions WHERE term_id = $1 ORDER BY start_date DESC`
	var sessions []models.AssessmentSession
	if err := r.db.SelectContext(ctx, &sessions, query, termID); err != nil {
		return nil, fmt.Errorf("list assessment sessions: %w", err)
	}
	return sessions, nil
}

// FindSessionByID loads an assessment session by id.
func (r *AssessmentRepository) FindSessionByID(ctx context.Context, id string) (*models.AssessmentSession, error) {
	const query = `SELECT id, name, type, term_id, start_date, end_date, created_at, updated_at FROM assessment_sessions WHERE id = $1`
	var session models.AssessmentSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateSession inserts a new assessment session.
func (r *AssessmentRepository) CreateSession(ctx context.Context, session *models.AssessmentSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	const query = `INSERT INTO assessment_sessions (id, name, type, term_id, start_date, end_date, created_at, updated_at) VALUES (:id, :name, :type, :term_id, :start_date, :end_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create assessment session: %w", err)
	}
	return nil
}

// UpdateSession modifies an existing assessment session.
func (r *AssessmentRepository) UpdateSession(ctx context.Context, session *models.AssessmentSession) error {
	session.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assessment_sessions SET name = :name, type = :type, start_date = :start_date, end_date = :end_date, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("update assessment session: %w", err)
	}
	return nil
}

// DeleteSession removes a session and cascades to subjects and entries.
func (r *AssessmentRepository) DeleteSession(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assessment_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete assessment session: %w", err)
	}
	return nil
}

// ListSubjects returns the registered sittings of a session.
func (r *AssessmentRepository) ListSubjects(ctx context.Context, sessionID string) ([]models.AssessmentSubject, error) {
	const query = `SELECT id, assessment_session_id, class_id, subject_id, duration_minutes, supervisor_teacher_id, created_at FROM assessment_subjects WHERE assessment_session_id = $1`
	var subjects []models.AssessmentSubject
	if err := r.db.SelectContext(ctx, &subjects, query, sessionID); err != nil {
		return nil, fmt.Errorf("list assessment subjects: %w", err)
	}
	return subjects, nil
}

// FindSubjectByID loads a registered sitting by id.
func (r *AssessmentRepository) FindSubjectByID(ctx context.Context, id string) (*models.AssessmentSubject, error) {
	const query = `SELECT id, assessment_session_id, class_id, subject_id, duration_minutes, supervisor_teacher_id, created_at FROM assessment_subjects WHERE id = $1`
	var subject models.AssessmentSubject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// CreateSubject registers a class-subject sitting within a session.
func (r *AssessmentRepository) CreateSubject(ctx context.Context, subject *models.AssessmentSubject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO assessment_subjects (id, assessment_session_id, class_id, subject_id, duration_minutes, supervisor_teacher_id, created_at) VALUES (:id, :assessment_session_id, :class_id, :subject_id, :duration_minutes, :supervisor_teacher_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create assessment subject: %w", err)
	}
	return nil
}

// DeleteSubject removes a registered sitting by id.
func (r *AssessmentRepository) DeleteSubject(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assessment_subjects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete assessment subject: %w", err)
	}
	return nil
}

// ListEntries returns a session's committed entries with display fields
// joined, ordered by day, slot and class name.
func (r *AssessmentRepository) ListEntries(ctx context.Context, sessionID string) ([]models.AssessmentEntry, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE e.assessment_session_id = $1 ORDER BY d.day_order ASC, ts.slot_order ASC, c.name ASC", assessmentEntryColumns, assessmentEntryJoins)
	var entries []models.AssessmentEntry
	if err := r.db.SelectContext(ctx, &entries, query, sessionID); err != nil {
		return nil, fmt.Errorf("list assessment entries: %w", err)
	}
	return entries, nil
}

// FindEntryByID loads one entry with display fields joined.
func (r *AssessmentRepository) FindEntryByID(ctx context.Context, id string) (*models.AssessmentEntry, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE e.id = $1", assessmentEntryColumns, assessmentEntryJoins)
	var entry models.AssessmentEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// BulkCreateEntries inserts a solved session timetable within a single
// transaction.
func (r *AssessmentRepository) BulkCreateEntries(ctx context.Context, entries []models.AssessmentEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk create assessment entries: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for i := range entries {
		payload := entries[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}
		payload.UpdatedAt = now

		if _, err = tx.NamedExecContext(ctx, `INSERT INTO assessment_entries (id, assessment_session_id, assessment_subject_id, room_id, school_day_id, time_slot_id, supervisor_teacher_id, created_at, updated_at) VALUES (:id, :assessment_session_id, :assessment_subject_id, :room_id, :school_day_id, :time_slot_id, :supervisor_teacher_id, :created_at, :updated_at)`, &payload); err != nil {
			return fmt.Errorf("bulk insert assessment entry: %w", err)
		}
		entries[i] = payload
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk create assessment entries: %w", err)
	}
	return nil
}

// UpdateEntry modifies an entry's placement fields.
func (r *AssessmentRepository) UpdateEntry(ctx context.Context, entry *models.AssessmentEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assessment_entries SET room_id = :room_id, school_day_id = :school_day_id, time_slot_id = :time_slot_id, supervisor_teacher_id = :supervisor_teacher_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("update assessment entry: %w", err)
	}
	return nil
}

// DeleteEntriesBySession wipes a session's committed entries.
func (r *AssessmentRepository) DeleteEntriesBySession(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assessment_entries WHERE assessment_session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete assessment entries by session: %w", err)
	}
	return nil
}

// DeleteEntry removes a single entry by id.
func (r *AssessmentRepository) DeleteEntry(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assessment_entries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete assessment entry: %w", err)
	}
	return nil
}
