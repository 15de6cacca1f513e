package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolware/timetable-api/internal/models"
)

func TestAssessmentRepositoryListSessions(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssessmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "type", "term_id", "start_date", "end_date", "created_at", "updated_at"}).
		AddRow("session-1", "Midterm CA", "ca", "term-1", now, now.AddDate(0, 0, 4), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, type, term_id, start_date, end_date, created_at, updated_at FROM assessment_sessions WHERE term_id = $1 ORDER BY start_date DESC")).
		WithArgs("term-1").
		WillReturnRows(rows)

	sessions, err := repo.ListSessions(context.Background(), "term-1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, models.AssessmentTypeCA, sessions[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentRepositoryCreateSessionAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssessmentRepository(db)

	mock.ExpectExec("INSERT INTO assessment_sessions").WillReturnResult(sqlmock.NewResult(1, 1))

	session := &models.AssessmentSession{
		Name:      "Final Exams",
		Type:      models.AssessmentTypeExam,
		TermID:    "term-1",
		StartDate: time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 7, 17, 0, 0, 0, 0, time.UTC),
	}
	err := repo.CreateSession(context.Background(), session)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentRepositoryFindSessionNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssessmentRepository(db)

	mock.ExpectQuery("SELECT id, name, type, term_id").
		WithArgs("session-404").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindSessionByID(context.Background(), "session-404")
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentRepositoryListEntries(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssessmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "assessment_session_id", "assessment_subject_id", "room_id", "school_day_id", "time_slot_id",
		"supervisor_teacher_id", "created_at", "updated_at",
		"class_id", "subject_id", "class_name", "subject_name",
		"room_name", "supervisor_name",
		"day_name", "day_order", "slot_name", "slot_order",
	}).AddRow(
		"ae-1", "session-1", "sitting-1", "room-1", "mon", "p1",
		"teacher-1", now, now,
		"class-1", "subject-1", "JSS1A", "Mathematics",
		"Hall A", "A. Okafor",
		"Monday", 1, "Period 1", 1,
	)
	mock.ExpectQuery("SELECT (.+) FROM assessment_entries e").
		WithArgs("session-1").
		WillReturnRows(rows)

	entries, err := repo.ListEntries(context.Background(), "session-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "class-1", entries[0].ClassID)
	assert.Equal(t, "Hall A", *entries[0].RoomName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentRepositoryBulkCreateEntriesCommits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssessmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO assessment_entries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	entries := []models.AssessmentEntry{
		{SessionID: "session-1", AssessmentSubjectID: "sitting-1", SchoolDayID: "mon", TimeSlotID: "p1"},
	}
	err := repo.BulkCreateEntries(context.Background(), entries)
	require.NoError(t, err)
	assert.NotEmpty(t, entries[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentRepositoryDeleteEntriesBySession(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssessmentRepository(db)

	mock.ExpectExec("DELETE FROM assessment_entries WHERE assessment_session_id").
		WithArgs("session-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := repo.DeleteEntriesBySession(context.Background(), "session-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
