package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolware/timetable-api/internal/dto"
	"github.com/schoolware/timetable-api/internal/models"
	"github.com/schoolware/timetable-api/internal/scheduler"
	appErrors "github.com/schoolware/timetable-api/pkg/errors"
)

type assessmentStore interface {
	ListSessions(ctx context.Context, termID string) ([]models.AssessmentSession, error)
	FindSessionByID(ctx context.Context, id string) (*models.AssessmentSession, error)
	CreateSession(ctx context.Context, session *models.AssessmentSession) error
	UpdateSession(ctx context.Context, session *models.AssessmentSession) error
	DeleteSession(ctx context.Context, id string) error
	ListSubjects(ctx context.Context, sessionID string) ([]models.AssessmentSubject, error)
	FindSubjectByID(ctx context.Context, id string) (*models.AssessmentSubject, error)
	CreateSubject(ctx context.Context, subject *models.AssessmentSubject) error
	DeleteSubject(ctx context.Context, id string) error
	ListEntries(ctx context.Context, sessionID string) ([]models.AssessmentEntry, error)
	FindEntryByID(ctx context.Context, id string) (*models.AssessmentEntry, error)
	BulkCreateEntries(ctx context.Context, entries []models.AssessmentEntry) error
	UpdateEntry(ctx context.Context, entry *models.AssessmentEntry) error
	DeleteEntriesBySession(ctx context.Context, sessionID string) error
}

type assessmentTermReader interface {
	FindTermByID(ctx context.Context, id string) (*models.Term, error)
}

// AssessmentServiceConfig tunes the assessment generators.
type AssessmentServiceConfig struct {
	// CASittingsPerClassPerDay caps CA sittings a class may have on one day.
	// Exam sessions are never capped.
	CASittingsPerClassPerDay int
	// Seed pins the candidate shuffle order when non-zero.
	Seed int64
}

// AssessmentService owns CA and exam timetabling: session and sitting
// registration, generation, mutations and conflict audits.
type AssessmentService struct {
	store     assessmentStore
	terms     assessmentTermReader
	calendar  timetableCalendarReader
	teachers  unavailabilityLister
	rooms     timetableRoomLister
	caCap     int
	seed      int64
	locks     *scopeLocks
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssessmentService wires assessment dependencies.
func NewAssessmentService(
	store assessmentStore,
	terms assessmentTermReader,
	calendar timetableCalendarReader,
	teachers unavailabilityLister,
	rooms timetableRoomLister,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg AssessmentServiceConfig,
) *AssessmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CASittingsPerClassPerDay <= 0 {
		cfg.CASittingsPerClassPerDay = 2
	}
	return &AssessmentService{
		store:     store,
		terms:     terms,
		calendar:  calendar,
		teachers:  teachers,
		rooms:     rooms,
		caCap:     cfg.CASittingsPerClassPerDay,
		seed:      cfg.Seed,
		locks:     newScopeLocks(),
		validator: validate,
		logger:    logger,
	}
}

// CreateSession opens a CA or exam window within a term.
func (s *AssessmentService) CreateSession(ctx context.Context, req dto.CreateAssessmentSessionRequest) (*models.AssessmentSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	if _, err := s.terms.FindTermByID(ctx, req.TermID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not precede start_date")
	}

	session := &models.AssessmentSession{
		Name:      req.Name,
		Type:      models.AssessmentSessionType(req.Type),
		TermID:    req.TermID,
		StartDate: start,
		EndDate:   end,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	return session, nil
}

// ListSessions returns a term's assessment sessions.
func (s *AssessmentService) ListSessions(ctx context.Context, termID string) ([]models.AssessmentSession, error) {
	if termID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term_id is required")
	}
	sessions, err := s.store.ListSessions(ctx, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, nil
}

// GetSession loads one session.
func (s *AssessmentService) GetSession(ctx context.Context, id string) (*models.AssessmentSession, error) {
	return s.findSession(ctx, id)
}

// DeleteSession removes a session together with its sittings and entries.
func (s *AssessmentService) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.findSession(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteSession(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	return nil
}

// RegisterSubject registers one class-subject sitting within a session.
func (s *AssessmentService) RegisterSubject(ctx context.Context, sessionID string, req dto.RegisterAssessmentSubjectRequest) (*models.AssessmentSubject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sitting payload")
	}
	if _, err := s.findSession(ctx, sessionID); err != nil {
		return nil, err
	}

	subject := &models.AssessmentSubject{
		SessionID:           sessionID,
		ClassID:             req.ClassID,
		SubjectID:           req.SubjectID,
		DurationMinutes:     req.DurationMinutes,
		SupervisorTeacherID: req.SupervisorTeacherID,
	}
	if err := s.store.CreateSubject(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register sitting")
	}
	return subject, nil
}

// ListSubjects returns the registered sittings of a session.
func (s *AssessmentService) ListSubjects(ctx context.Context, sessionID string) ([]models.AssessmentSubject, error) {
	if _, err := s.findSession(ctx, sessionID); err != nil {
		return nil, err
	}
	subjects, err := s.store.ListSubjects(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sittings")
	}
	return subjects, nil
}

// RemoveSubject deletes a registered sitting.
func (s *AssessmentService) RemoveSubject(ctx context.Context, id string) error {
	if _, err := s.store.FindSubjectByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "sitting not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sitting")
	}
	if err := s.store.DeleteSubject(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete sitting")
	}
	return nil
}

// Generate wipes the session's entries and solves a fresh assessment
// timetable from its registered sittings. CA sessions cap sittings per class
// per day; exam sessions run uncapped. The search runs in memory and commits
// only complete solutions.
func (s *AssessmentService) Generate(ctx context.Context, sessionID string) (*models.AssessmentGenerationResult, error) {
	if !s.locks.TryAcquire(sessionID) {
		return nil, appErrors.ErrGenerationInProgress
	}
	defer s.locks.Release(sessionID)

	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	grid, err := s.buildGrid(ctx)
	if err != nil {
		return nil, err
	}

	subjects, err := s.store.ListSubjects(ctx, session.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sittings")
	}
	if len(subjects) == 0 {
		return nil, appErrors.ErrNoDemand
	}

	demands := make([]scheduler.SessionDemand, 0, len(subjects))
	for _, sub := range subjects {
		demand := scheduler.SessionDemand{
			AssessmentSubjectID: sub.ID,
			ClassID:             sub.ClassID,
			SubjectID:           sub.SubjectID,
			SupervisorID:        derefID(sub.SupervisorTeacherID),
		}
		if sub.DurationMinutes != nil {
			demand.DurationMinutes = *sub.DurationMinutes
		}
		demands = append(demands, demand)
	}

	availability, err := s.buildAvailability(ctx)
	if err != nil {
		return nil, err
	}
	roomIDs, err := s.roomIDs(ctx)
	if err != nil {
		return nil, err
	}

	engine := &scheduler.SessionEngine{
		Grid:          grid,
		Rooms:         scheduler.FirstFit{RoomIDs: roomIDs},
		Availability:  availability,
		Shuffler:      scheduler.NewShuffler(s.seed),
		ClassDailyCap: s.dailyCap(session.Type),
	}

	if err := s.store.DeleteEntriesBySession(ctx, session.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear previous entries")
	}

	placed, err := engine.Solve(demands)
	if err != nil {
		if errors.Is(err, scheduler.ErrInfeasible) {
			s.logger.Info("assessment generation infeasible",
				zap.String("session_id", session.ID),
				zap.String("type", string(session.Type)),
				zap.Int("sittings", len(demands)))
			return nil, appErrors.ErrGenerationInfeasible
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "assessment search failed")
	}

	records := make([]models.AssessmentEntry, 0, len(placed))
	for _, p := range placed {
		sub := subjects[p.Demand]
		records = append(records, models.AssessmentEntry{
			SessionID:           session.ID,
			AssessmentSubjectID: sub.ID,
			RoomID:              optionalID(p.RoomID),
			SchoolDayID:         p.Cell.DayID,
			TimeSlotID:          p.Cell.SlotID,
			SupervisorTeacherID: sub.SupervisorTeacherID,
		})
	}
	if err := s.store.BulkCreateEntries(ctx, records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist entries")
	}

	stored, err := s.store.ListEntries(ctx, session.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload entries")
	}

	s.logger.Info("assessment timetable generated",
		zap.String("session_id", session.ID),
		zap.String("type", string(session.Type)),
		zap.Int("entries", len(stored)))

	return &models.AssessmentGenerationResult{
		SessionID:    session.ID,
		EntriesCount: len(stored),
		Entries:      stored,
	}, nil
}

// ListEntries returns a session's committed entries.
func (s *AssessmentService) ListEntries(ctx context.Context, sessionID string) ([]models.AssessmentEntry, error) {
	if _, err := s.findSession(ctx, sessionID); err != nil {
		return nil, err
	}
	entries, err := s.store.ListEntries(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list entries")
	}
	return entries, nil
}

// Swap exchanges the full (day, slot, room) placements of two sittings of
// the same session. For CA sessions the per-class daily cap is re-checked at
// both target days; a same-day swap leaves every per-day count unchanged and
// is exempt. The updated pair comes back with a fresh conflict audit.
func (s *AssessmentService) Swap(ctx context.Context, req dto.SwapAssessmentEntriesRequest) ([]models.AssessmentEntry, *models.AssessmentConflictReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid swap payload")
	}
	if req.EntryAID == req.EntryBID {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "cannot swap an entry with itself")
	}

	a, err := s.findEntry(ctx, req.EntryAID)
	if err != nil {
		return nil, nil, err
	}
	b, err := s.findEntry(ctx, req.EntryBID)
	if err != nil {
		return nil, nil, err
	}
	if a.SessionID != b.SessionID {
		return nil, nil, appErrors.ErrCrossScopeSwap
	}
	session, err := s.findSession(ctx, a.SessionID)
	if err != nil {
		return nil, nil, err
	}

	others, occ, err := s.sessionOccupancy(ctx, a.SessionID, a.ID, b.ID)
	if err != nil {
		return nil, nil, err
	}

	cellA := scheduler.Cell{DayID: a.SchoolDayID, SlotID: a.TimeSlotID}
	cellB := scheduler.Cell{DayID: b.SchoolDayID, SlotID: b.TimeSlotID}

	if !occ.ClassFree(a.ClassID, cellB) || !occ.ClassFree(b.ClassID, cellA) {
		return nil, nil, appErrors.ErrSlotTaken
	}
	if !occ.TeacherFree(derefID(a.SupervisorTeacherID), cellB) || !occ.TeacherFree(derefID(b.SupervisorTeacherID), cellA) {
		return nil, nil, appErrors.ErrSupervisorBusy
	}
	// Rooms travel with the cell, so each room is re-checked at the cell it
	// stays in.
	if !occ.RoomFree(derefID(b.RoomID), cellB) || !occ.RoomFree(derefID(a.RoomID), cellA) {
		return nil, nil, appErrors.ErrRoomBusy
	}

	limit := s.dailyCap(session.Type)
	if limit > 0 && a.SchoolDayID != b.SchoolDayID {
		counts := classDayCounts(others)
		if counts[classDayKey{a.ClassID, b.SchoolDayID}] >= limit || counts[classDayKey{b.ClassID, a.SchoolDayID}] >= limit {
			return nil, nil, appErrors.ErrClassDailyCapExceeded
		}
	}

	a.SchoolDayID, b.SchoolDayID = b.SchoolDayID, a.SchoolDayID
	a.TimeSlotID, b.TimeSlotID = b.TimeSlotID, a.TimeSlotID
	a.RoomID, b.RoomID = b.RoomID, a.RoomID

	if err := s.store.UpdateEntry(ctx, a); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update entry")
	}
	if err := s.store.UpdateEntry(ctx, b); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update entry")
	}

	report, err := s.Conflicts(ctx, a.SessionID)
	if err != nil {
		return nil, nil, err
	}
	return []models.AssessmentEntry{*a, *b}, report, nil
}

// Move relocates one sitting to a new cell, optionally changing its room.
// The updated entry comes back with a fresh conflict audit of the session.
func (s *AssessmentService) Move(ctx context.Context, entryID string, req dto.MoveAssessmentEntryRequest) (*models.AssessmentEntry, *models.AssessmentConflictReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move payload")
	}

	entry, err := s.findEntry(ctx, entryID)
	if err != nil {
		return nil, nil, err
	}
	session, err := s.findSession(ctx, entry.SessionID)
	if err != nil {
		return nil, nil, err
	}

	grid, err := s.buildGrid(ctx)
	if err != nil {
		return nil, nil, err
	}
	target := scheduler.Cell{DayID: req.SchoolDayID, SlotID: req.TimeSlotID}
	if !cellOnGrid(grid, target) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "target cell is not schedulable")
	}

	others, occ, err := s.sessionOccupancy(ctx, entry.SessionID, entry.ID)
	if err != nil {
		return nil, nil, err
	}

	roomID := derefID(entry.RoomID)
	if req.RoomID != nil {
		roomID = *req.RoomID
	}

	if !occ.ClassFree(entry.ClassID, target) {
		return nil, nil, appErrors.ErrSlotTaken
	}
	if !occ.TeacherFree(derefID(entry.SupervisorTeacherID), target) {
		return nil, nil, appErrors.ErrSupervisorBusy
	}
	if !occ.RoomFree(roomID, target) {
		return nil, nil, appErrors.ErrRoomBusy
	}

	limit := s.dailyCap(session.Type)
	if limit > 0 && target.DayID != entry.SchoolDayID {
		counts := classDayCounts(others)
		if counts[classDayKey{entry.ClassID, target.DayID}] >= limit {
			return nil, nil, appErrors.ErrClassDailyCapExceeded
		}
	}

	entry.SchoolDayID = req.SchoolDayID
	entry.TimeSlotID = req.TimeSlotID
	entry.RoomID = optionalID(roomID)

	if err := s.store.UpdateEntry(ctx, entry); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update entry")
	}

	report, err := s.Conflicts(ctx, entry.SessionID)
	if err != nil {
		return nil, nil, err
	}
	return entry, report, nil
}

// Conflicts audits a session's committed entries and groups double bookings
// by supervisor, room and class.
func (s *AssessmentService) Conflicts(ctx context.Context, sessionID string) (*models.AssessmentConflictReport, error) {
	if _, err := s.findSession(ctx, sessionID); err != nil {
		return nil, err
	}
	entries, err := s.store.ListEntries(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list entries")
	}

	byID := make(map[string]models.AssessmentEntry, len(entries))
	audit := make([]scheduler.AuditEntry, 0, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
		audit = append(audit, scheduler.AuditEntry{
			EntryID:   e.ID,
			ClassID:   e.ClassID,
			TeacherID: derefID(e.SupervisorTeacherID),
			RoomID:    derefID(e.RoomID),
			DayID:     e.SchoolDayID,
			SlotID:    e.TimeSlotID,
		})
	}

	report := scheduler.DetectConflicts(audit)
	return &models.AssessmentConflictReport{
		SupervisorConflicts: resolveAssessmentGroups(report.Teacher, byID),
		RoomConflicts:       resolveAssessmentGroups(report.Room, byID),
		ClassConflicts:      resolveAssessmentGroups(report.Class, byID),
	}, nil
}

func (s *AssessmentService) dailyCap(sessionType models.AssessmentSessionType) int {
	if sessionType == models.AssessmentTypeExam {
		return 0
	}
	return s.caCap
}

func (s *AssessmentService) findSession(ctx context.Context, id string) (*models.AssessmentSession, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session id is required")
	}
	session, err := s.store.FindSessionByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

func (s *AssessmentService) findEntry(ctx context.Context, id string) (*models.AssessmentEntry, error) {
	entry, err := s.store.FindEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load entry")
	}
	return entry, nil
}

// sessionOccupancy indexes a session's committed entries minus the excluded
// ids, returning both the remaining entries and the occupancy over them.
func (s *AssessmentService) sessionOccupancy(ctx context.Context, sessionID string, excludeIDs ...string) ([]models.AssessmentEntry, *scheduler.Occupancy, error) {
	entries, err := s.store.ListEntries(ctx, sessionID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list entries")
	}
	skip := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		skip[id] = true
	}
	var others []models.AssessmentEntry
	occ := scheduler.NewOccupancy()
	for _, e := range entries {
		if skip[e.ID] {
			continue
		}
		others = append(others, e)
		occ.Take(e.ClassID, derefID(e.SupervisorTeacherID), derefID(e.RoomID), scheduler.Cell{DayID: e.SchoolDayID, SlotID: e.TimeSlotID})
	}
	return others, occ, nil
}

func (s *AssessmentService) buildGrid(ctx context.Context) (*scheduler.Grid, error) {
	days, err := s.calendar.ListSchoolDays(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school days")
	}
	slots, err := s.calendar.ListTimeSlots(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slots")
	}
	breaks, err := s.calendar.ListBreakPeriods(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load break periods")
	}

	gridDays := make([]scheduler.Day, 0, len(days))
	for _, d := range days {
		gridDays = append(gridDays, scheduler.Day{ID: d.ID, Order: d.DayOrder})
	}
	gridSlots := make([]scheduler.Slot, 0, len(slots))
	for _, ts := range slots {
		gridSlots = append(gridSlots, scheduler.Slot{ID: ts.ID, Order: ts.SlotOrder})
	}
	exclusions := make([]scheduler.Exclusion, 0, len(breaks))
	for _, b := range breaks {
		exclusions = append(exclusions, scheduler.Exclusion{SlotID: b.TimeSlotID, DayID: derefID(b.SchoolDayID)})
	}

	grid, err := scheduler.BuildGrid(gridDays, gridSlots, exclusions)
	if err != nil {
		if errors.Is(err, scheduler.ErrEmptyGrid) {
			return nil, appErrors.ErrNoSchedulableSlots
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build grid")
	}
	return grid, nil
}

func (s *AssessmentService) buildAvailability(ctx context.Context) (*scheduler.Availability, error) {
	unavailable, err := s.teachers.ListUnavailableSlots(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher availability")
	}
	availability := scheduler.NewAvailability()
	for _, slot := range unavailable {
		availability.Block(slot.TeacherID, scheduler.Cell{DayID: slot.SchoolDayID, SlotID: slot.TimeSlotID})
	}
	return availability, nil
}

func (s *AssessmentService) roomIDs(ctx context.Context) ([]string, error) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	ids := make([]string, 0, len(rooms))
	for _, room := range rooms {
		ids = append(ids, room.ID)
	}
	return ids, nil
}

type classDayKey struct {
	classID string
	dayID   string
}

func classDayCounts(entries []models.AssessmentEntry) map[classDayKey]int {
	counts := make(map[classDayKey]int, len(entries))
	for _, e := range entries {
		counts[classDayKey{e.ClassID, e.SchoolDayID}]++
	}
	return counts
}

func resolveAssessmentGroups(groups [][]scheduler.AuditEntry, byID map[string]models.AssessmentEntry) [][]models.AssessmentEntry {
	if len(groups) == 0 {
		return nil
	}
	resolved := make([][]models.AssessmentEntry, 0, len(groups))
	for _, group := range groups {
		full := make([]models.AssessmentEntry, 0, len(group))
		for _, e := range group {
			full = append(full, byID[e.EntryID])
		}
		resolved = append(resolved, full)
	}
	return resolved
}
