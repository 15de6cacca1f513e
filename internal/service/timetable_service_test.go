package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schoolware/timetable-api/internal/dto"
	"github.com/schoolware/timetable-api/internal/models"
	appErrors "github.com/schoolware/timetable-api/pkg/errors"
)

// --- Stubs shared by the scheduling service tests ---

type termReaderStub struct {
	terms map[string]*models.Term
}

func (s *termReaderStub) FindTermByID(ctx context.Context, id string) (*models.Term, error) {
	term, ok := s.terms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return term, nil
}

type calendarStub struct {
	days   []models.SchoolDay
	slots  []models.TimeSlot
	breaks []models.BreakPeriod
}

func (s *calendarStub) ListSchoolDays(ctx context.Context) ([]models.SchoolDay, error) {
	return s.days, nil
}

func (s *calendarStub) ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error) {
	return s.slots, nil
}

func (s *calendarStub) ListBreakPeriods(ctx context.Context) ([]models.BreakPeriod, error) {
	return s.breaks, nil
}

func (s *calendarStub) FindSchoolDayByID(ctx context.Context, id string) (*models.SchoolDay, error) {
	for i := range s.days {
		if s.days[i].ID == id {
			return &s.days[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *calendarStub) FindTimeSlotByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	for i := range s.slots {
		if s.slots[i].ID == id {
			return &s.slots[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

type allocationListerStub struct {
	items []models.Allocation
}

func (s *allocationListerStub) ListByTerm(ctx context.Context, termID string) ([]models.Allocation, error) {
	var out []models.Allocation
	for _, a := range s.items {
		if a.TermID == termID {
			out = append(out, a)
		}
	}
	return out, nil
}

type unavailabilityStub struct {
	slots []models.TeacherAvailabilitySlot
}

func (s *unavailabilityStub) ListUnavailableSlots(ctx context.Context) ([]models.TeacherAvailabilitySlot, error) {
	return s.slots, nil
}

type roomListerStub struct {
	rooms []models.Room
}

func (s *roomListerStub) List(ctx context.Context) ([]models.Room, error) {
	return s.rooms, nil
}

type timetableStoreStub struct {
	entries []models.TimetableEntry
	nextID  int
}

func (s *timetableStoreStub) ListByTerm(ctx context.Context, termID string) ([]models.TimetableEntry, error) {
	var out []models.TimetableEntry
	for _, e := range s.entries {
		if e.TermID == termID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *timetableStoreStub) ListByClass(ctx context.Context, termID, classID string) ([]models.TimetableEntry, error) {
	var out []models.TimetableEntry
	for _, e := range s.entries {
		if e.TermID == termID && e.ClassID == classID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *timetableStoreStub) ListByTeacher(ctx context.Context, termID, teacherID string) ([]models.TimetableEntry, error) {
	var out []models.TimetableEntry
	for _, e := range s.entries {
		if e.TermID == termID && e.TeacherID == teacherID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *timetableStoreStub) FindByID(ctx context.Context, id string) (*models.TimetableEntry, error) {
	for i := range s.entries {
		if s.entries[i].ID == id {
			entry := s.entries[i]
			return &entry, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *timetableStoreStub) BulkCreate(ctx context.Context, entries []models.TimetableEntry) error {
	for _, e := range entries {
		s.nextID++
		e.ID = fmt.Sprintf("entry-%d", s.nextID)
		s.entries = append(s.entries, e)
	}
	return nil
}

func (s *timetableStoreStub) Update(ctx context.Context, entry *models.TimetableEntry) error {
	for i := range s.entries {
		if s.entries[i].ID == entry.ID {
			s.entries[i] = *entry
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *timetableStoreStub) DeleteByTerm(ctx context.Context, termID string) error {
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.TermID != termID {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}

type cacheStub struct {
	data map[string][]byte
	gets int
	hits int
	sets int
}

func newCacheStub() *cacheStub {
	return &cacheStub{data: make(map[string][]byte)}
}

func (c *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	c.gets++
	raw, ok := c.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	c.hits++
	return json.Unmarshal(raw, dest)
}

func (c *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.sets++
	c.data[key] = raw
	return nil
}

func (c *cacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	delete(c.data, pattern)
	return nil
}

// --- Fixture ---

type timetableFixture struct {
	terms       *termReaderStub
	calendar    *calendarStub
	allocations *allocationListerStub
	teachers    *unavailabilityStub
	rooms       *roomListerStub
	store       *timetableStoreStub
	cache       *cacheStub
	svc         *TimetableService
}

// newTimetableFixture wires a service over a two day, two slot grid with a
// single term and two rooms.
func newTimetableFixture(t *testing.T) *timetableFixture {
	t.Helper()
	f := &timetableFixture{
		terms: &termReaderStub{terms: map[string]*models.Term{
			"term-1": {ID: "term-1", AcademicYearID: "year-1", Name: "First Term"},
		}},
		calendar: &calendarStub{
			days: []models.SchoolDay{
				{ID: "mon", Name: "Monday", DayOrder: 1},
				{ID: "tue", Name: "Tuesday", DayOrder: 2},
			},
			slots: []models.TimeSlot{
				{ID: "p1", Name: "Period 1", SlotOrder: 1},
				{ID: "p2", Name: "Period 2", SlotOrder: 2},
			},
		},
		allocations: &allocationListerStub{},
		teachers:    &unavailabilityStub{},
		rooms: &roomListerStub{rooms: []models.Room{
			{ID: "room-1", Name: "Room 1"},
			{ID: "room-2", Name: "Room 2"},
		}},
		store: &timetableStoreStub{},
		cache: newCacheStub(),
	}
	f.svc = NewTimetableService(f.terms, f.calendar, f.allocations, f.teachers, f.rooms, f.store, f.cache,
		validator.New(), zap.NewNop(), TimetableServiceConfig{Seed: 1})
	return f
}

func allocation(id, classID, subjectID, teacherID string, periods int) models.Allocation {
	return models.Allocation{
		ID:             id,
		ClassID:        classID,
		SubjectID:      subjectID,
		TeacherID:      teacherID,
		PeriodsPerWeek: periods,
		AcademicYearID: "year-1",
		TermID:         "term-1",
	}
}

// --- Generation ---

func TestTimetableServiceGenerateSuccess(t *testing.T) {
	f := newTimetableFixture(t)
	f.allocations.items = []models.Allocation{
		allocation("alloc-1", "class-1", "math", "teacher-1", 2),
		allocation("alloc-2", "class-1", "science", "teacher-2", 2),
	}

	result, err := f.svc.Generate(context.Background(), dto.GenerateTimetableRequest{TermID: "term-1"})
	require.NoError(t, err)
	assert.Equal(t, "term-1", result.TermID)
	assert.Equal(t, "year-1", result.AcademicYearID)
	assert.Equal(t, 4, result.EntriesCount)
	assert.Len(t, f.store.entries, 4)

	report, err := f.svc.Conflicts(context.Background(), "term-1")
	require.NoError(t, err)
	assert.True(t, report.Empty())
}

func TestTimetableServiceGenerateReplacesPreviousRun(t *testing.T) {
	f := newTimetableFixture(t)
	f.allocations.items = []models.Allocation{
		allocation("alloc-1", "class-1", "math", "teacher-1", 2),
	}

	_, err := f.svc.Generate(context.Background(), dto.GenerateTimetableRequest{TermID: "term-1"})
	require.NoError(t, err)
	_, err = f.svc.Generate(context.Background(), dto.GenerateTimetableRequest{TermID: "term-1"})
	require.NoError(t, err)
	assert.Len(t, f.store.entries, 2, "regeneration should not accumulate entries")
}

func TestTimetableServiceGenerateInfeasibleLeavesTermEmpty(t *testing.T) {
	f := newTimetableFixture(t)
	f.store.entries = []models.TimetableEntry{
		{ID: "stale-1", TermID: "term-1", ClassID: "class-1", TeacherID: "teacher-1", SchoolDayID: "mon", TimeSlotID: "p1"},
	}
	// Five periods cannot fit a four cell grid.
	f.allocations.items = []models.Allocation{
		allocation("alloc-1", "class-1", "math", "teacher-1", 5),
	}

	_, err := f.svc.Generate(context.Background(), dto.GenerateTimetableRequest{TermID: "term-1"})
	require.ErrorIs(t, err, appErrors.ErrGenerationInfeasible)
	assert.Empty(t, f.store.entries, "failed run must leave the term wiped, not partially filled")
}

func TestTimetableServiceGenerateNoDemand(t *testing.T) {
	f := newTimetableFixture(t)

	_, err := f.svc.Generate(context.Background(), dto.GenerateTimetableRequest{TermID: "term-1"})
	require.ErrorIs(t, err, appErrors.ErrNoDemand)
}

func TestTimetableServiceGenerateNoSchedulableSlots(t *testing.T) {
	f := newTimetableFixture(t)
	f.allocations.items = []models.Allocation{
		allocation("alloc-1", "class-1", "math", "teacher-1", 1),
	}
	// Daily breaks on every slot empty the grid.
	f.calendar.breaks = []models.BreakPeriod{
		{ID: "b1", TimeSlotID: "p1"},
		{ID: "b2", TimeSlotID: "p2"},
	}

	_, err := f.svc.Generate(context.Background(), dto.GenerateTimetableRequest{TermID: "term-1"})
	require.ErrorIs(t, err, appErrors.ErrNoSchedulableSlots)
}

func TestTimetableServiceGenerateUnknownTerm(t *testing.T) {
	f := newTimetableFixture(t)

	_, err := f.svc.Generate(context.Background(), dto.GenerateTimetableRequest{TermID: "term-404"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceGenerateRejectsConcurrentRun(t *testing.T) {
	f := newTimetableFixture(t)
	f.allocations.items = []models.Allocation{
		allocation("alloc-1", "class-1", "math", "teacher-1", 1),
	}

	require.True(t, f.svc.locks.TryAcquire("term-1"))
	_, err := f.svc.Generate(context.Background(), dto.GenerateTimetableRequest{TermID: "term-1"})
	require.ErrorIs(t, err, appErrors.ErrGenerationInProgress)

	f.svc.locks.Release("term-1")
	_, err = f.svc.Generate(context.Background(), dto.GenerateTimetableRequest{TermID: "term-1"})
	require.NoError(t, err)
}

func TestTimetableServiceGenerateHonoursTeacherUnavailability(t *testing.T) {
	f := newTimetableFixture(t)
	f.allocations.items = []models.Allocation{
		allocation("alloc-1", "class-1", "math", "teacher-1", 2),
	}
	f.teachers.slots = []models.TeacherAvailabilitySlot{
		{TeacherID: "teacher-1", SchoolDayID: "mon", TimeSlotID: "p1"},
		{TeacherID: "teacher-1", SchoolDayID: "mon", TimeSlotID: "p2"},
	}

	result, err := f.svc.Generate(context.Background(), dto.GenerateTimetableRequest{TermID: "term-1"})
	require.NoError(t, err)
	for _, entry := range result.Entries {
		assert.NotEqual(t, "mon", entry.SchoolDayID, "teacher-1 is blocked all Monday")
	}
}

// --- Listing and caching ---

func TestTimetableServiceListTermWideUsesCache(t *testing.T) {
	f := newTimetableFixture(t)
	f.store.entries = []models.TimetableEntry{
		{ID: "entry-1", TermID: "term-1", ClassID: "class-1", TeacherID: "teacher-1", SchoolDayID: "mon", TimeSlotID: "p1"},
	}

	first, err := f.svc.List(context.Background(), models.TimetableFilter{TermID: "term-1"})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, f.cache.sets)

	second, err := f.svc.List(context.Background(), models.TimetableFilter{TermID: "term-1"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.cache.hits)
}

func TestTimetableServiceListRequiresTerm(t *testing.T) {
	f := newTimetableFixture(t)

	_, err := f.svc.List(context.Background(), models.TimetableFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceListByClassBypassesCache(t *testing.T) {
	f := newTimetableFixture(t)
	f.store.entries = []models.TimetableEntry{
		{ID: "entry-1", TermID: "term-1", ClassID: "class-1", TeacherID: "teacher-1", SchoolDayID: "mon", TimeSlotID: "p1"},
		{ID: "entry-2", TermID: "term-1", ClassID: "class-2", TeacherID: "teacher-2", SchoolDayID: "mon", TimeSlotID: "p1"},
	}

	entries, err := f.svc.List(context.Background(), models.TimetableFilter{TermID: "term-1", ClassID: "class-1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "entry-1", entries[0].ID)
	assert.Zero(t, f.cache.gets)
}

// --- Swap ---

func seedSwapEntries(f *timetableFixture) {
	f.store.entries = []models.TimetableEntry{
		{ID: "entry-a", TermID: "term-1", ClassID: "class-1", TeacherID: "teacher-1", SubjectID: "math", RoomID: optionalID("room-1"), SchoolDayID: "mon", TimeSlotID: "p1"},
		{ID: "entry-b", TermID: "term-1", ClassID: "class-2", TeacherID: "teacher-2", SubjectID: "science", RoomID: optionalID("room-2"), SchoolDayID: "tue", TimeSlotID: "p2"},
	}
}

func TestTimetableServiceSwapExchangesCellsAndRooms(t *testing.T) {
	f := newTimetableFixture(t)
	seedSwapEntries(f)

	swapped, conflicts, err := f.svc.Swap(context.Background(), dto.SwapEntriesRequest{EntryAID: "entry-a", EntryBID: "entry-b"})
	require.NoError(t, err)
	require.Len(t, swapped, 2)
	require.NotNil(t, conflicts)
	assert.True(t, conflicts.Empty())

	a, _ := f.store.FindByID(context.Background(), "entry-a")
	b, _ := f.store.FindByID(context.Background(), "entry-b")
	assert.Equal(t, "tue", a.SchoolDayID)
	assert.Equal(t, "p2", a.TimeSlotID)
	assert.Equal(t, "mon", b.SchoolDayID)
	assert.Equal(t, "p1", b.TimeSlotID)
	assert.Equal(t, "room-2", derefID(a.RoomID), "rooms travel with the cell")
	assert.Equal(t, "room-1", derefID(b.RoomID))
}

func TestTimetableServiceSwapTwiceRestoresOriginal(t *testing.T) {
	f := newTimetableFixture(t)
	seedSwapEntries(f)
	req := dto.SwapEntriesRequest{EntryAID: "entry-a", EntryBID: "entry-b"}

	_, _, err := f.svc.Swap(context.Background(), req)
	require.NoError(t, err)
	_, _, err = f.svc.Swap(context.Background(), req)
	require.NoError(t, err)

	a, _ := f.store.FindByID(context.Background(), "entry-a")
	b, _ := f.store.FindByID(context.Background(), "entry-b")
	assert.Equal(t, "mon", a.SchoolDayID)
	assert.Equal(t, "p1", a.TimeSlotID)
	assert.Equal(t, "room-1", derefID(a.RoomID))
	assert.Equal(t, "tue", b.SchoolDayID)
	assert.Equal(t, "p2", b.TimeSlotID)
	assert.Equal(t, "room-2", derefID(b.RoomID))
}

func TestTimetableServiceSwapRejectsSelf(t *testing.T) {
	f := newTimetableFixture(t)
	seedSwapEntries(f)

	_, _, err := f.svc.Swap(context.Background(), dto.SwapEntriesRequest{EntryAID: "entry-a", EntryBID: "entry-a"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceSwapRejectsCrossTerm(t *testing.T) {
	f := newTimetableFixture(t)
	seedSwapEntries(f)
	f.store.entries[1].TermID = "term-2"

	_, _, err := f.svc.Swap(context.Background(), dto.SwapEntriesRequest{EntryAID: "entry-a", EntryBID: "entry-b"})
	require.ErrorIs(t, err, appErrors.ErrCrossScopeSwap)
}

func TestTimetableServiceSwapRejectsBusyTeacher(t *testing.T) {
	f := newTimetableFixture(t)
	seedSwapEntries(f)
	// teacher-1 already teaches elsewhere at entry-b's cell.
	f.store.entries = append(f.store.entries, models.TimetableEntry{
		ID: "entry-c", TermID: "term-1", ClassID: "class-3", TeacherID: "teacher-1", SchoolDayID: "tue", TimeSlotID: "p2",
	})

	_, _, err := f.svc.Swap(context.Background(), dto.SwapEntriesRequest{EntryAID: "entry-a", EntryBID: "entry-b"})
	require.ErrorIs(t, err, appErrors.ErrTeacherBusy)
}

func TestTimetableServiceSwapRejectsBusyClass(t *testing.T) {
	f := newTimetableFixture(t)
	seedSwapEntries(f)
	f.store.entries = append(f.store.entries, models.TimetableEntry{
		ID: "entry-c", TermID: "term-1", ClassID: "class-1", TeacherID: "teacher-3", SchoolDayID: "tue", TimeSlotID: "p2",
	})

	_, _, err := f.svc.Swap(context.Background(), dto.SwapEntriesRequest{EntryAID: "entry-a", EntryBID: "entry-b"})
	require.ErrorIs(t, err, appErrors.ErrSlotTaken)
}

// --- Move ---

func TestTimetableServiceMoveRelocatesEntry(t *testing.T) {
	f := newTimetableFixture(t)
	seedSwapEntries(f)

	moved, conflicts, err := f.svc.Move(context.Background(), "entry-a", dto.MoveEntryRequest{SchoolDayID: "mon", TimeSlotID: "p2"})
	require.NoError(t, err)
	assert.Equal(t, "mon", moved.SchoolDayID)
	assert.Equal(t, "p2", moved.TimeSlotID)
	assert.Equal(t, "room-1", derefID(moved.RoomID))
	require.NotNil(t, conflicts)
	assert.True(t, conflicts.Empty())
}

func TestTimetableServiceMoveRoundTripRestoresOriginal(t *testing.T) {
	f := newTimetableFixture(t)
	seedSwapEntries(f)

	_, _, err := f.svc.Move(context.Background(), "entry-a", dto.MoveEntryRequest{SchoolDayID: "mon", TimeSlotID: "p2"})
	require.NoError(t, err)
	_, _, err = f.svc.Move(context.Background(), "entry-a", dto.MoveEntryRequest{SchoolDayID: "mon", TimeSlotID: "p1"})
	require.NoError(t, err)

	a, _ := f.store.FindByID(context.Background(), "entry-a")
	assert.Equal(t, "mon", a.SchoolDayID)
	assert.Equal(t, "p1", a.TimeSlotID)
	assert.Equal(t, "room-1", derefID(a.RoomID))
}

func TestTimetableServiceMoveCanReassignRoom(t *testing.T) {
	f := newTimetableFixture(t)
	seedSwapEntries(f)

	moved, _, err := f.svc.Move(context.Background(), "entry-a", dto.MoveEntryRequest{
		SchoolDayID: "mon",
		TimeSlotID:  "p2",
		RoomID:      optionalID("room-2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "room-2", derefID(moved.RoomID))
}

func TestTimetableServiceMoveRejectsOffGridCell(t *testing.T) {
	f := newTimetableFixture(t)
	seedSwapEntries(f)
	f.calendar.breaks = []models.BreakPeriod{{ID: "b1", TimeSlotID: "p2", SchoolDayID: optionalID("mon")}}

	_, _, err := f.svc.Move(context.Background(), "entry-a", dto.MoveEntryRequest{SchoolDayID: "mon", TimeSlotID: "p2"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceMoveRejectsOccupiedClassSlot(t *testing.T) {
	f := newTimetableFixture(t)
	seedSwapEntries(f)
	// class-1 already sits at the target cell through another entry.
	f.store.entries = append(f.store.entries, models.TimetableEntry{
		ID: "entry-c", TermID: "term-1", ClassID: "class-1", TeacherID: "teacher-3", SchoolDayID: "mon", TimeSlotID: "p2",
	})

	_, _, err := f.svc.Move(context.Background(), "entry-a", dto.MoveEntryRequest{SchoolDayID: "mon", TimeSlotID: "p2"})
	require.ErrorIs(t, err, appErrors.ErrSlotTaken)
}

func TestTimetableServiceMoveRejectsOccupiedRoom(t *testing.T) {
	f := newTimetableFixture(t)
	seedSwapEntries(f)
	f.store.entries = append(f.store.entries, models.TimetableEntry{
		ID: "entry-c", TermID: "term-1", ClassID: "class-3", TeacherID: "teacher-3", RoomID: optionalID("room-1"), SchoolDayID: "mon", TimeSlotID: "p2",
	})

	_, _, err := f.svc.Move(context.Background(), "entry-a", dto.MoveEntryRequest{SchoolDayID: "mon", TimeSlotID: "p2"})
	require.ErrorIs(t, err, appErrors.ErrRoomBusy)
}

func TestTimetableServiceMoveUnknownEntry(t *testing.T) {
	f := newTimetableFixture(t)

	_, _, err := f.svc.Move(context.Background(), "entry-404", dto.MoveEntryRequest{SchoolDayID: "mon", TimeSlotID: "p1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

// --- Conflicts ---

func TestTimetableServiceConflictsGroupsDoubleBookings(t *testing.T) {
	f := newTimetableFixture(t)
	f.store.entries = []models.TimetableEntry{
		{ID: "entry-1", TermID: "term-1", ClassID: "class-1", TeacherID: "teacher-1", SchoolDayID: "mon", TimeSlotID: "p1"},
		{ID: "entry-2", TermID: "term-1", ClassID: "class-2", TeacherID: "teacher-1", SchoolDayID: "mon", TimeSlotID: "p1"},
	}

	report, err := f.svc.Conflicts(context.Background(), "term-1")
	require.NoError(t, err)
	require.Len(t, report.TeacherConflicts, 1)
	assert.Len(t, report.TeacherConflicts[0], 2)
	assert.Empty(t, report.RoomConflicts)
	assert.Empty(t, report.ClassConflicts)
}

func TestTimetableServiceMutationInvalidatesCache(t *testing.T) {
	f := newTimetableFixture(t)
	seedSwapEntries(f)

	_, err := f.svc.List(context.Background(), models.TimetableFilter{TermID: "term-1"})
	require.NoError(t, err)
	require.Contains(t, f.cache.data, timetableCacheKey("term-1"))

	_, _, err = f.svc.Move(context.Background(), "entry-a", dto.MoveEntryRequest{SchoolDayID: "mon", TimeSlotID: "p2"})
	require.NoError(t, err)
	assert.NotContains(t, f.cache.data, timetableCacheKey("term-1"))
}
