package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolware/timetable-api/internal/dto"
	"github.com/schoolware/timetable-api/internal/models"
	"github.com/schoolware/timetable-api/internal/scheduler"
	appErrors "github.com/schoolware/timetable-api/pkg/errors"
)

type timetableCalendarReader interface {
	ListSchoolDays(ctx context.Context) ([]models.SchoolDay, error)
	ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error)
	ListBreakPeriods(ctx context.Context) ([]models.BreakPeriod, error)
	FindSchoolDayByID(ctx context.Context, id string) (*models.SchoolDay, error)
	FindTimeSlotByID(ctx context.Context, id string) (*models.TimeSlot, error)
}

type allocationLister interface {
	ListByTerm(ctx context.Context, termID string) ([]models.Allocation, error)
}

type unavailabilityLister interface {
	ListUnavailableSlots(ctx context.Context) ([]models.TeacherAvailabilitySlot, error)
}

type timetableRoomLister interface {
	List(ctx context.Context) ([]models.Room, error)
}

type timetableTermReader interface {
	FindTermByID(ctx context.Context, id string) (*models.Term, error)
}

type timetableStore interface {
	ListByTerm(ctx context.Context, termID string) ([]models.TimetableEntry, error)
	ListByClass(ctx context.Context, termID, classID string) ([]models.TimetableEntry, error)
	ListByTeacher(ctx context.Context, termID, teacherID string) ([]models.TimetableEntry, error)
	FindByID(ctx context.Context, id string) (*models.TimetableEntry, error)
	BulkCreate(ctx context.Context, entries []models.TimetableEntry) error
	Update(ctx context.Context, entry *models.TimetableEntry) error
	DeleteByTerm(ctx context.Context, termID string) error
}

type timetableCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// TimetableServiceConfig tunes generation and read-side caching.
type TimetableServiceConfig struct {
	// Seed pins the candidate shuffle order when non-zero.
	Seed     int64
	CacheTTL time.Duration
}

// TimetableService owns the recurring weekly timetable: generation, listing,
// manual swap/move mutations and conflict audits.
type TimetableService struct {
	terms       timetableTermReader
	calendar    timetableCalendarReader
	allocations allocationLister
	teachers    unavailabilityLister
	rooms       timetableRoomLister
	entries     timetableStore
	cache       timetableCache
	cacheTTL    time.Duration
	seed        int64
	locks       *scopeLocks
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTimetableService wires timetable dependencies. cache may be nil to
// disable read-side caching.
func NewTimetableService(
	terms timetableTermReader,
	calendar timetableCalendarReader,
	allocations allocationLister,
	teachers unavailabilityLister,
	rooms timetableRoomLister,
	entries timetableStore,
	cache timetableCache,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableServiceConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &TimetableService{
		terms:       terms,
		calendar:    calendar,
		allocations: allocations,
		teachers:    teachers,
		rooms:       rooms,
		entries:     entries,
		cache:       cache,
		cacheTTL:    cfg.CacheTTL,
		seed:        cfg.Seed,
		locks:       newScopeLocks(),
		validator:   validate,
		logger:      logger,
	}
}

// Generate wipes the term's timetable and solves a fresh one from the
// current allocations. The search runs entirely in memory; entries reach the
// database only when every demand is satisfied, so a failed run leaves the
// term empty rather than partially filled.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*models.GenerationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}
	if !s.locks.TryAcquire(req.TermID) {
		return nil, appErrors.ErrGenerationInProgress
	}
	defer s.locks.Release(req.TermID)

	term, err := s.terms.FindTermByID(ctx, req.TermID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}

	grid, err := s.buildGrid(ctx)
	if err != nil {
		return nil, err
	}

	allocations, err := s.allocations.ListByTerm(ctx, term.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allocations")
	}
	if len(allocations) == 0 {
		return nil, appErrors.ErrNoDemand
	}

	demands := make([]scheduler.RecurringDemand, 0, len(allocations))
	for _, a := range allocations {
		demands = append(demands, scheduler.RecurringDemand{
			ClassID:   a.ClassID,
			SubjectID: a.SubjectID,
			TeacherID: a.TeacherID,
			Periods:   a.PeriodsPerWeek,
		})
	}

	availability, err := s.buildAvailability(ctx)
	if err != nil {
		return nil, err
	}
	roomIDs, err := s.roomIDs(ctx)
	if err != nil {
		return nil, err
	}

	engine := &scheduler.RecurringEngine{
		Grid:         grid,
		Rooms:        scheduler.FirstFit{RoomIDs: roomIDs},
		Availability: availability,
		Shuffler:     scheduler.NewShuffler(s.seed),
	}

	if err := s.entries.DeleteByTerm(ctx, term.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear previous timetable")
	}
	s.invalidate(ctx, term.ID)

	placed, err := engine.Solve(demands)
	if err != nil {
		if errors.Is(err, scheduler.ErrInfeasible) {
			s.logger.Info("timetable generation infeasible",
				zap.String("term_id", term.ID),
				zap.Int("demands", len(demands)),
				zap.Int("grid_cells", grid.Size()))
			return nil, appErrors.ErrGenerationInfeasible
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "timetable search failed")
	}

	records := make([]models.TimetableEntry, 0, len(placed))
	for _, p := range placed {
		a := allocations[p.Demand]
		records = append(records, models.TimetableEntry{
			ClassID:        a.ClassID,
			TeacherID:      a.TeacherID,
			SubjectID:      a.SubjectID,
			RoomID:         optionalID(p.RoomID),
			SchoolDayID:    p.Cell.DayID,
			TimeSlotID:     p.Cell.SlotID,
			AcademicYearID: a.AcademicYearID,
			TermID:         term.ID,
		})
	}
	if err := s.entries.BulkCreate(ctx, records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable")
	}

	stored, err := s.entries.ListByTerm(ctx, term.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload timetable")
	}

	s.logger.Info("timetable generated",
		zap.String("term_id", term.ID),
		zap.Int("entries", len(stored)))

	return &models.GenerationResult{
		TermID:         term.ID,
		AcademicYearID: term.AcademicYearID,
		EntriesCount:   len(stored),
		Entries:        stored,
	}, nil
}

// List returns a term's entries, optionally narrowed to one class or one
// teacher. Term-wide listings are served through the cache when enabled.
func (s *TimetableService) List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableEntry, error) {
	if filter.TermID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term_id is required")
	}
	switch {
	case filter.ClassID != "":
		entries, err := s.entries.ListByClass(ctx, filter.TermID, filter.ClassID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable")
		}
		return entries, nil
	case filter.TeacherID != "":
		entries, err := s.entries.ListByTeacher(ctx, filter.TermID, filter.TeacherID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable")
		}
		return entries, nil
	}

	key := timetableCacheKey(filter.TermID)
	if s.cache != nil {
		var cached []models.TimetableEntry
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	entries, err := s.entries.ListByTerm(ctx, filter.TermID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, entries, s.cacheTTL); err != nil {
			s.logger.Warn("timetable cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return entries, nil
}

// Swap exchanges the full (day, slot, room) placements of two entries of the
// same term. Both directions are checked against the rest of the term,
// including each entry's teacher at the other entry's cell. The updated pair
// comes back with a fresh conflict audit of the term.
func (s *TimetableService) Swap(ctx context.Context, req dto.SwapEntriesRequest) ([]models.TimetableEntry, *models.TimetableConflictReport, error) {
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
	if a.TermID != b.TermID {
		return nil, nil, appErrors.ErrCrossScopeSwap
	}

	occ, err := s.termOccupancy(ctx, a.TermID, a.ID, b.ID)
	if err != nil {
		return nil, nil, err
	}

	cellA := scheduler.Cell{DayID: a.SchoolDayID, SlotID: a.TimeSlotID}
	cellB := scheduler.Cell{DayID: b.SchoolDayID, SlotID: b.TimeSlotID}

	if !occ.ClassFree(a.ClassID, cellB) || !occ.ClassFree(b.ClassID, cellA) {
		return nil, nil, appErrors.ErrSlotTaken
	}
	if !occ.TeacherFree(a.TeacherID, cellB) || !occ.TeacherFree(b.TeacherID, cellA) {
		return nil, nil, appErrors.ErrTeacherBusy
	}
	// Rooms travel with the cell, so each room is re-checked at the cell it
	// stays in.
	if !occ.RoomFree(derefID(b.RoomID), cellB) || !occ.RoomFree(derefID(a.RoomID), cellA) {
		return nil, nil, appErrors.ErrRoomBusy
	}

	a.SchoolDayID, b.SchoolDayID = b.SchoolDayID, a.SchoolDayID
	a.TimeSlotID, b.TimeSlotID = b.TimeSlotID, a.TimeSlotID
	a.RoomID, b.RoomID = b.RoomID, a.RoomID

	if err := s.entries.Update(ctx, a); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update entry")
	}
	if err := s.entries.Update(ctx, b); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update entry")
	}
	s.invalidate(ctx, a.TermID)

	report, err := s.Conflicts(ctx, a.TermID)
	if err != nil {
		return nil, nil, err
	}
	return []models.TimetableEntry{*a, *b}, report, nil
}

// Move relocates one entry to a new cell, optionally changing its room.
// Checks run in class, teacher, room order so callers get the most
// actionable refusal first. The updated entry comes back with a fresh
// conflict audit of the term.
func (s *TimetableService) Move(ctx context.Context, entryID string, req dto.MoveEntryRequest) (*models.TimetableEntry, *models.TimetableConflictReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move payload")
	}

	entry, err := s.findEntry(ctx, entryID)
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

	occ, err := s.termOccupancy(ctx, entry.TermID, entry.ID)
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
	if !occ.TeacherFree(entry.TeacherID, target) {
		return nil, nil, appErrors.ErrTeacherBusy
	}
	if !occ.RoomFree(roomID, target) {
		return nil, nil, appErrors.ErrRoomBusy
	}

	entry.SchoolDayID = req.SchoolDayID
	entry.TimeSlotID = req.TimeSlotID
	entry.RoomID = optionalID(roomID)

	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update entry")
	}
	s.invalidate(ctx, entry.TermID)

	report, err := s.Conflicts(ctx, entry.TermID)
	if err != nil {
		return nil, nil, err
	}
	return entry, report, nil
}

// Conflicts audits a term's committed entries and groups double bookings by
// teacher, room and class.
func (s *TimetableService) Conflicts(ctx context.Context, termID string) (*models.TimetableConflictReport, error) {
	if termID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term_id is required")
	}
	entries, err := s.entries.ListByTerm(ctx, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable")
	}

	byID := make(map[string]models.TimetableEntry, len(entries))
	audit := make([]scheduler.AuditEntry, 0, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
		audit = append(audit, scheduler.AuditEntry{
			EntryID:   e.ID,
			ClassID:   e.ClassID,
			TeacherID: e.TeacherID,
			RoomID:    derefID(e.RoomID),
			DayID:     e.SchoolDayID,
			SlotID:    e.TimeSlotID,
		})
	}

	report := scheduler.DetectConflicts(audit)
	return &models.TimetableConflictReport{
		TeacherConflicts: resolveGroups(report.Teacher, byID),
		RoomConflicts:    resolveGroups(report.Room, byID),
		ClassConflicts:   resolveGroups(report.Class, byID),
	}, nil
}

func (s *TimetableService) findEntry(ctx context.Context, id string) (*models.TimetableEntry, error) {
	entry, err := s.entries.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load entry")
	}
	return entry, nil
}

func (s *TimetableService) buildGrid(ctx context.Context) (*scheduler.Grid, error) {
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

func (s *TimetableService) buildAvailability(ctx context.Context) (*scheduler.Availability, error) {
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

func (s *TimetableService) roomIDs(ctx context.Context) ([]string, error) {
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

// termOccupancy indexes a term's committed entries, skipping the given ids
// so mutation checks do not collide with the entries being moved.
func (s *TimetableService) termOccupancy(ctx context.Context, termID string, excludeIDs ...string) (*scheduler.Occupancy, error) {
	entries, err := s.entries.ListByTerm(ctx, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable")
	}
	skip := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		skip[id] = true
	}
	occ := scheduler.NewOccupancy()
	for _, e := range entries {
		if skip[e.ID] {
			continue
		}
		occ.Take(e.ClassID, e.TeacherID, derefID(e.RoomID), scheduler.Cell{DayID: e.SchoolDayID, SlotID: e.TimeSlotID})
	}
	return occ, nil
}

func (s *TimetableService) invalidate(ctx context.Context, termID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, timetableCacheKey(termID)); err != nil {
		s.logger.Warn("timetable cache invalidation failed", zap.String("term_id", termID), zap.Error(err))
	}
}

func timetableCacheKey(termID string) string {
	return fmt.Sprintf("timetable:%s", termID)
}

func cellOnGrid(grid *scheduler.Grid, cell scheduler.Cell) bool {
	for _, c := range grid.Cells() {
		if c == cell {
			return true
		}
	}
	return false
}

func resolveGroups(groups [][]scheduler.AuditEntry, byID map[string]models.TimetableEntry) [][]models.TimetableEntry {
	if len(groups) == 0 {
		return nil
	}
	resolved := make([][]models.TimetableEntry, 0, len(groups))
	for _, group := range groups {
		full := make([]models.TimetableEntry, 0, len(group))
		for _, e := range group {
			full = append(full, byID[e.EntryID])
		}
		resolved = append(resolved, full)
	}
	return resolved
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func derefID(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}
