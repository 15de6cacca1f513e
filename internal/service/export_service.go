package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/schoolware/timetable-api/internal/models"
	"github.com/schoolware/timetable-api/pkg/export"
	appErrors "github.com/schoolware/timetable-api/pkg/errors"
)

// Export formats accepted by the download endpoints.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type exportTimetableReader interface {
	ListByTerm(ctx context.Context, termID string) ([]models.TimetableEntry, error)
	ListByClass(ctx context.Context, termID, classID string) ([]models.TimetableEntry, error)
	ListByTeacher(ctx context.Context, termID, teacherID string) ([]models.TimetableEntry, error)
}

type exportAssessmentReader interface {
	FindSessionByID(ctx context.Context, id string) (*models.AssessmentSession, error)
	ListEntries(ctx context.Context, sessionID string) ([]models.AssessmentEntry, error)
}

type tableRenderer interface {
	Render(table export.Table) ([]byte, error)
}

// ExportFile is a rendered download payload.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders committed schedules into downloadable files.
type ExportService struct {
	timetables  exportTimetableReader
	assessments exportAssessmentReader
	csv         tableRenderer
	pdf         tableRenderer
	schoolName  string
	logger      *zap.Logger
}

// NewExportService constructs an ExportService. The school name heads every
// rendered document.
func NewExportService(timetables exportTimetableReader, assessments exportAssessmentReader, csv, pdf tableRenderer, schoolName string, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		timetables:  timetables,
		assessments: assessments,
		csv:         csv,
		pdf:         pdf,
		schoolName:  schoolName,
		logger:      logger,
	}
}

func (s *ExportService) title(suffix string) string {
	if s.schoolName == "" {
		return suffix
	}
	return fmt.Sprintf("%s %s", s.schoolName, suffix)
}

// ExportTimetable renders the term timetable, optionally narrowed to one
// class or teacher.
func (s *ExportService) ExportTimetable(ctx context.Context, filter models.TimetableFilter, format string) (*ExportFile, error) {
	if filter.TermID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term_id is required")
	}

	var (
		entries []models.TimetableEntry
		err     error
	)
	switch {
	case filter.ClassID != "":
		entries, err = s.timetables.ListByClass(ctx, filter.TermID, filter.ClassID)
	case filter.TeacherID != "":
		entries, err = s.timetables.ListByTeacher(ctx, filter.TermID, filter.TeacherID)
	default:
		entries, err = s.timetables.ListByTerm(ctx, filter.TermID)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entries")
	}

	table := export.Table{
		Title:   s.title("Weekly Timetable"),
		Headers: []string{"Day", "Period", "Class", "Subject", "Teacher", "Room"},
		Rows:    make([][]string, 0, len(entries)),
	}
	for _, entry := range entries {
		table.Rows = append(table.Rows, []string{
			entry.DayName,
			entry.SlotName,
			entry.ClassName,
			entry.SubjectName,
			entry.TeacherName,
			derefID(entry.RoomName),
		})
	}

	return s.render(table, format, fmt.Sprintf("timetable_%s", filter.TermID))
}

// ExportAssessment renders the committed sittings of one session.
func (s *ExportService) ExportAssessment(ctx context.Context, sessionID, format string) (*ExportFile, error) {
	session, err := s.assessments.FindSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	entries, err := s.assessments.ListEntries(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session entries")
	}

	table := export.Table{
		Title:   s.title(fmt.Sprintf("%s Schedule", session.Name)),
		Headers: []string{"Day", "Period", "Class", "Subject", "Supervisor", "Room"},
		Rows:    make([][]string, 0, len(entries)),
	}
	for _, entry := range entries {
		table.Rows = append(table.Rows, []string{
			entry.DayName,
			entry.SlotName,
			entry.ClassName,
			entry.SubjectName,
			derefID(entry.SupervisorName),
			derefID(entry.RoomName),
		})
	}

	return s.render(table, format, fmt.Sprintf("%s_%s", strings.ToLower(string(session.Type)), sessionID))
}

func (s *ExportService) render(table export.Table, format, baseName string) (*ExportFile, error) {
	timestamp := time.Now().UTC().Format("20060102_150405")
	switch format {
	case ExportFormatCSV, "":
		data, err := s.csv.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("%s_%s.csv", baseName, timestamp),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case ExportFormatPDF:
		data, err := s.pdf.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("%s_%s.pdf", baseName, timestamp),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
