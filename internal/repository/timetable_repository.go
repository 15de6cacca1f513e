package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolware/timetable-api/internal/models"
)

const timetableColumns = `t.id, t.class_id, t.teacher_id, t.subject_id, t.room_id, t.school_day_id, t.time_slot_id, t.academic_year_id, t.term_id, t.created_at, t.updated_at,
	c.name AS class_name, s.name AS subject_name, te.name AS teacher_name, r.name AS room_name,
	d.name AS day_name, d.day_order, ts.name AS slot_name, ts.slot_order`

const timetableJoins = `FROM timetable_entries t
	JOIN classes c ON c.id = t.class_id
	JOIN subjects s ON s.id = t.subject_id
	JOIN teachers te ON te.id = t.teacher_id
	LEFT JOIN rooms r ON r.id = t.room_id
	JOIN school_days d ON d.id = t.school_day_id
	JOIN time_slots ts ON ts.id = t.time_slot_id`

// TimetableRepository persists committed timetable entries.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new timetable repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// ListByTerm returns every entry of one term with display fields joined,
// ordered by day, slot and class name.
func (r *TimetableRepository) ListByTerm(ctx context.Context, termID string) ([]models.TimetableEntry, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE t.term_id = $1 ORDER BY d.day_order ASC, ts.slot_order ASC, c.name ASC", timetableColumns, timetableJoins)
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, termID); err != nil {
		return nil, fmt.Errorf("list timetable by term: %w", err)
	}
	return entries, nil
}

// ListByClass returns one class's entries within a term.
func (r *TimetableRepository) ListByClass(ctx context.Context, termID, classID string) ([]models.TimetableEntry, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE t.term_id = $1 AND t.class_id = $2 ORDER BY d.day_order ASC, ts.slot_order ASC", timetableColumns, timetableJoins)
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, termID, classID); err != nil {
		return nil, fmt.Errorf("list timetable by class: %w", err)
	}
	return entries, nil
}

// ListByTeacher returns one teacher's entries within a term.
func (r *TimetableRepository) ListByTeacher(ctx context.Context, termID, teacherID string) ([]models.TimetableEntry, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE t.term_id = $1 AND t.teacher_id = $2 ORDER BY d.day_order ASC, ts.slot_order ASC", timetableColumns, timetableJoins)
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, termID, teacherID); err != nil {
		return nil, fmt.Errorf("list timetable by teacher: %w", err)
	}
	return entries, nil
}

// FindByID loads one entry with display fields joined.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.TimetableEntry, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE t.id = $1", timetableColumns, timetableJoins)
	var entry models.TimetableEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// BulkCreate inserts a solved timetable within a single transaction.
func (r *TimetableRepository) BulkCreate(ctx context.Context, entries []models.TimetableEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk create timetable: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = r.bulkInsertEntries(ctx, tx, entries); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk create timetable: %w", err)
	}
	return nil
}

// BulkCreateWithTx inserts entries using an existing transaction.
func (r *TimetableRepository) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, entries []models.TimetableEntry) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	return r.bulkInsertEntries(ctx, tx, entries)
}

func (r *TimetableRepository) bulkInsertEntries(ctx context.Context, exec sqlx.ExtContext, entries []models.TimetableEntry) error {
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

		if _, err := sqlx.NamedExecContext(ctx, exec, `INSERT INTO timetable_entries (id, class_id, teacher_id, subject_id, room_id, school_day_id, time_slot_id, academic_year_id, term_id, created_at, updated_at) VALUES (:id, :class_id, :teacher_id, :subject_id, :room_id, :school_day_id, :time_slot_id, :academic_year_id, :term_id, :created_at, :updated_at)`, &payload); err != nil {
			return fmt.Errorf("bulk insert timetable entry: %w", err)
		}
		entries[i] = payload
	}
	return nil
}

// Update modifies an entry's placement fields.
func (r *TimetableRepository) Update(ctx context.Context, entry *models.TimetableEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	const query = `UPDATE timetable_entries SET class_id = :class_id, teacher_id = :teacher_id, subject_id = :subject_id, room_id = :room_id, school_day_id = :school_day_id, time_slot_id = :time_slot_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("update timetable entry: %w", err)
	}
	return nil
}

// DeleteByTerm wipes an entire term's timetable.
func (r *TimetableRepository) DeleteByTerm(ctx context.Context, termID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM timetable_entries WHERE term_id = $1`, termID); err != nil {
		return fmt.Errorf("delete timetable by term: %w", err)
	}
	return nil
}

// Delete removes a single entry by id.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM timetable_entries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete timetable entry: %w", err)
	}
	return nil
}
