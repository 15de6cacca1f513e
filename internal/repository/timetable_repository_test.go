package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolware/timetable-api/internal/models"
)

func timetableRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "class_id", "teacher_id", "subject_id", "room_id", "school_day_id", "time_slot_id",
		"academic_year_id", "term_id", "created_at", "updated_at",
		"class_name", "subject_name", "teacher_name", "room_name",
		"day_name", "day_order", "slot_name", "slot_order",
	}).AddRow(
		"entry-1", "class-1", "teacher-1", "subject-1", "room-1", "mon", "p1",
		"year-1", "term-1", now, now,
		"JSS1A", "Mathematics", "A. Okafor", "Room 1",
		"Monday", 1, "Period 1", 1,
	)
}

func TestTimetableRepositoryListByTerm(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM timetable_entries t").
		WithArgs("term-1").
		WillReturnRows(timetableRows(time.Now()))

	entries, err := repo.ListByTerm(context.Background(), "term-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "entry-1", entries[0].ID)
	assert.Equal(t, "Mathematics", entries[0].SubjectName)
	assert.Equal(t, "Monday", entries[0].DayName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM timetable_entries t").
		WithArgs("entry-404").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "entry-404")
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryBulkCreateCommits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO timetable_entries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO timetable_entries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	entries := []models.TimetableEntry{
		{ClassID: "class-1", TeacherID: "teacher-1", SubjectID: "subject-1", SchoolDayID: "mon", TimeSlotID: "p1", AcademicYearID: "year-1", TermID: "term-1"},
		{ClassID: "class-1", TeacherID: "teacher-2", SubjectID: "subject-2", SchoolDayID: "mon", TimeSlotID: "p2", AcademicYearID: "year-1", TermID: "term-1"},
	}
	err := repo.BulkCreate(context.Background(), entries)
	require.NoError(t, err)
	assert.NotEmpty(t, entries[0].ID, "insert assigns a fresh id")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryBulkCreateRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO timetable_entries").WillReturnError(errors.New("constraint violated"))
	mock.ExpectRollback()

	err := repo.BulkCreate(context.Background(), []models.TimetableEntry{
		{ClassID: "class-1", TeacherID: "teacher-1", SubjectID: "subject-1", SchoolDayID: "mon", TimeSlotID: "p1", AcademicYearID: "year-1", TermID: "term-1"},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec("UPDATE timetable_entries SET").WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.TimetableEntry{ID: "entry-1", ClassID: "class-1", TeacherID: "teacher-1", SubjectID: "subject-1", SchoolDayID: "tue", TimeSlotID: "p2"}
	err := repo.Update(context.Background(), entry)
	require.NoError(t, err)
	assert.False(t, entry.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryDeleteByTerm(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec("DELETE FROM timetable_entries WHERE term_id").
		WithArgs("term-1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	err := repo.DeleteByTerm(context.Background(), "term-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
