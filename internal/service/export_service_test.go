package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schoolware/timetable-api/internal/models"
	appErrors "github.com/schoolware/timetable-api/pkg/errors"
)

func newExportFixture(t *testing.T) (*timetableStoreStub, *assessmentStoreStub, *ExportService) {
	t.Helper()
	timetables := &timetableStoreStub{}
	assessments := newAssessmentStoreStub()
	svc := NewExportService(timetables, assessments, nil, nil, "Hillcrest High", zap.NewNop())
	return timetables, assessments, svc
}

func TestExportServiceTimetableCSV(t *testing.T) {
	timetables, _, svc := newExportFixture(t)
	timetables.entries = []models.TimetableEntry{
		{
			ID: "entry-1", TermID: "term-1", ClassID: "class-1", TeacherID: "teacher-1",
			SchoolDayID: "mon", TimeSlotID: "p1",
			DayName: "Monday", SlotName: "Period 1", ClassName: "JSS1A",
			SubjectName: "Mathematics", TeacherName: "A. Okafor", RoomName: optionalID("Room 1"),
		},
	}

	file, err := svc.ExportTimetable(context.Background(), models.TimetableFilter{TermID: "term-1"}, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasPrefix(file.Filename, "timetable_term-1_"))
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))

	body := string(file.Data)
	assert.Contains(t, body, "Day,Period,Class,Subject,Teacher,Room")
	assert.Contains(t, body, "Monday,Period 1,JSS1A,Mathematics,A. Okafor,Room 1")
}

func TestExportServiceTimetableDefaultsToCSV(t *testing.T) {
	_, _, svc := newExportFixture(t)

	file, err := svc.ExportTimetable(context.Background(), models.TimetableFilter{TermID: "term-1"}, "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
}

func TestExportServiceTimetablePDF(t *testing.T) {
	timetables, _, svc := newExportFixture(t)
	timetables.entries = []models.TimetableEntry{
		{ID: "entry-1", TermID: "term-1", DayName: "Monday", SlotName: "Period 1", ClassName: "JSS1A", SubjectName: "Mathematics", TeacherName: "A. Okafor"},
	}

	file, err := svc.ExportTimetable(context.Background(), models.TimetableFilter{TermID: "term-1"}, ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".pdf"))
	require.NotEmpty(t, file.Data)
	assert.True(t, strings.HasPrefix(string(file.Data), "%PDF"))
}

func TestExportServiceTimetableRequiresTerm(t *testing.T) {
	_, _, svc := newExportFixture(t)

	_, err := svc.ExportTimetable(context.Background(), models.TimetableFilter{}, ExportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceTimetableRejectsUnknownFormat(t *testing.T) {
	_, _, svc := newExportFixture(t)

	_, err := svc.ExportTimetable(context.Background(), models.TimetableFilter{TermID: "term-1"}, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceAssessmentCSV(t *testing.T) {
	_, assessments, svc := newExportFixture(t)
	session := &models.AssessmentSession{
		Name:      "Midterm CA",
		Type:      models.AssessmentTypeCA,
		TermID:    "term-1",
		StartDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, assessments.CreateSession(context.Background(), session))
	assessments.entries = []models.AssessmentEntry{
		{
			ID: "ae-1", SessionID: session.ID, SchoolDayID: "mon", TimeSlotID: "p1",
			DayName: "Monday", SlotName: "Period 1", ClassName: "JSS1A",
			SubjectName: "Mathematics", SupervisorName: optionalID("A. Okafor"), RoomName: optionalID("Hall A"),
		},
	}

	file, err := svc.ExportAssessment(context.Background(), session.ID, ExportFormatCSV)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(file.Filename, "ca_"+session.ID))

	body := string(file.Data)
	assert.Contains(t, body, "Day,Period,Class,Subject,Supervisor,Room")
	assert.Contains(t, body, "Monday,Period 1,JSS1A,Mathematics,A. Okafor,Hall A")
}

func TestExportServiceAssessmentUnknownSession(t *testing.T) {
	_, _, svc := newExportFixture(t)

	_, err := svc.ExportAssessment(context.Background(), "session-404", ExportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
