package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolware/timetable-api/internal/models"
)

// AllocationRepository manages teaching allocations, the demand side of
// timetable generation.
type AllocationRepository struct {
	db *sqlx.DB
}

// NewAllocationRepository constructs an AllocationRepository.
func NewAllocationRepository(db *sqlx.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

// ListByTerm returns every allocation within one term.
func (r *AllocationRepository) ListByTerm(ctx context.Context, termID string) ([]models.Allocation, error) {
	const query = `SELECT id, class_id, subject_id, teacher_id, periods_per_week, academic_year_id, term_id, created_at, updated_at FROM allocations WHERE term_id = $1`
	var allocations []models.Allocation
	if err := r.db.SelectContext(ctx, &allocations, query, termID); err != nil {
		return nil, fmt.Errorf("list allocations by term: %w", err)
	}
	return allocations, nil
}

// FindByID loads an allocation by id.
func (r *AllocationRepository) FindByID(ctx context.Context, id string) (*models.Allocation, error) {
	const query = `SELECT id, class_id, subject_id, teacher_id, periods_per_week, academic_year_id, term_id, created_at, updated_at FROM allocations WHERE id = $1`
	var allocation models.Allocation
	if err := r.db.GetContext(ctx, &allocation, query, id); err != nil {
		return nil, err
	}
	return &allocation, nil
}

// Exists checks whether a class-subject-teacher allocation already exists
// within a term.
func (r *AllocationRepository) Exists(ctx context.Context, termID, classID, subjectID, teacherID, excludeID string) (bool, error) {
	query := "SELECT 1 FROM allocations WHERE term_id = $1 AND class_id = $2 AND subject_id = $3 AND teacher_id = $4"
	args := []interface{}{termID, classID, subjectID, teacherID}
	if excludeID != "" {
		query += " AND id <> $5"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check allocation: %w", err)
	}
	return true, nil
}

// Create inserts a new allocation record.
func (r *AllocationRepository) Create(ctx context.Context, allocation *models.Allocation) error {
	if allocation.ID == "" {
		allocation.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if allocation.CreatedAt.IsZero() {
		allocation.CreatedAt = now
	}
	allocation.UpdatedAt = now

	const query = `INSERT INTO allocations (id, class_id, subject_id, teacher_id, periods_per_week, academic_year_id, term_id, created_at, updated_at) VALUES (:id, :class_id, :subject_id, :teacher_id, :periods_per_week, :academic_year_id, :term_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, allocation); err != nil {
		return fmt.Errorf("create allocation: %w", err)
	}
	return nil
}

// Update modifies an existing allocation record.
func (r *AllocationRepository) Update(ctx context.Context, allocation *models.Allocation) error {
	allocation.UpdatedAt = time.Now().UTC()
	const query = `UPDATE allocations SET class_id = :class_id, subject_id = :subject_id, teacher_id = :teacher_id, periods_per_week = :periods_per_week, academic_year_id = :academic_year_id, term_id = :term_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, allocation); err != nil {
		return fmt.Errorf("update allocation: %w", err)
	}
	return nil
}

// Delete removes an allocation by id.
func (r *AllocationRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM allocations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete allocation: %w", err)
	}
	return nil
}
